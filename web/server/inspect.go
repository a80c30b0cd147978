package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-progressive-pathtracer/pkg/camera"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Properties   map[string]interface{} `json:"properties"`
}

func toArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	c := v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo classifies a material and lists its parameters
func (s *Server) extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := map[string]interface{}{
		"baseColor":  toArray(mat.BaseColor),
		"color":      hexColor(mat.BaseColor),
		"smoothness": mat.Smoothness,
		"glossiness": mat.Glossiness,
	}

	switch {
	case mat.IsEmissive():
		properties["emissionColor"] = toArray(mat.EmissionColor)
		properties["emissionStrength"] = mat.EmissionStrength
		properties["color"] = hexColor(mat.EmissionColor)
		return "emissive", properties
	case mat.Smoothness >= 1 && mat.Glossiness >= 1:
		return "mirror", properties
	case mat.Smoothness > 0 && mat.Glossiness > 0:
		return "glossy", properties
	default:
		return "lambertian", properties
	}
}

// InspectResult contains information about the object hit by an inspection ray
type InspectResult struct {
	Hit       bool
	HitRecord geometry.HitRecord
	Shape     geometry.Shape // The shape that was hit, nil if unknown
}

// inspectPixel casts the camera ray through an image pixel (row 0 at the top)
// and returns the closest hit
func inspectPixel(sceneObj *scene.Scene, pixelX, pixelY int) (InspectResult, error) {
	cam, err := camera.New(sceneObj.CameraConfig)
	if err != nil {
		return InspectResult{}, err
	}

	ray := cam.GetRay(pixelX, cam.Height()-1-pixelY)
	hit := sceneObj.Hit(ray)
	if !hit.Hit {
		return InspectResult{Hit: false}, nil
	}

	// The closest-hit query does not say which shape it was, so find the
	// shape reporting the same distance
	for _, shape := range sceneObj.Shapes() {
		if shapeHit := shape.Intersect(ray); shapeHit.Hit && shapeHit.Distance == hit.Distance {
			return InspectResult{Hit: true, HitRecord: hit, Shape: shape}, nil
		}
	}
	return InspectResult{Hit: true, HitRecord: hit}, nil
}

// extractGeometryInfo extracts detailed geometry information
func (s *Server) extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = toArray(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Triangle:
		a, b, c := geom.Vertices()
		properties["vertices"] = [][3]float64{toArray(a), toArray(b), toArray(c)}
		properties["normal"] = toArray(geom.Normal())
		return "triangle", properties

	default:
		return "unknown", properties
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	inspectReq := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid x coordinate"})
		return
	}

	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid y coordinate"})
		return
	}

	if pixelX < 0 || pixelX >= inspectReq.Width || pixelY < 0 || pixelY >= inspectReq.Height {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	const configOnly = true
	sceneObj := s.createScene(inspectReq, configOnly, nil)
	if sceneObj == nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Unknown scene: " + inspectReq.Scene})
		return
	}

	result, err := inspectPixel(sceneObj, pixelX, pixelY)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	if !result.Hit {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := s.extractMaterialInfo(result.HitRecord.Material)
	geometryType, geometryProps := s.extractGeometryInfo(result.Shape)

	response := InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        toArray(result.HitRecord.Point),
		Normal:       toArray(result.HitRecord.Normal),
		Distance:     result.HitRecord.Distance,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
