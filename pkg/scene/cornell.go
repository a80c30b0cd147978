package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/camera"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Cornell box layout. The box is centred on CornellCenter with +X pointing
// into the box, +Y to the right and +Z up. The side facing the camera is open.
var (
	CornellCenter = core.NewVec3(1, 0, 0)
	CornellSize   = 1.0
)

// NewCornellScene creates an enclosed box lit by its ceiling: green left wall,
// red right wall, white back wall and floor, and a glossy sphere in the middle.
// The camera sits at the origin just outside the open side, looking in.
func NewCornellScene() *Scene {
	h := CornellSize / 2

	// Corners relative to the box centre
	backBottomLeft := core.NewVec3(h, -h, -h)
	backBottomRight := core.NewVec3(h, h, -h)
	backTopLeft := core.NewVec3(h, -h, h)
	backTopRight := core.NewVec3(h, h, h)
	frontBottomLeft := core.NewVec3(-h, -h, -h)
	frontBottomRight := core.NewVec3(-h, h, -h)
	frontTopLeft := core.NewVec3(-h, -h, h)
	frontTopRight := core.NewVec3(-h, h, h)

	white := material.NewLambertian(core.NewVec3(1, 1, 1))
	red := material.NewLambertian(core.NewVec3(1, 0, 0))
	green := material.NewLambertian(core.NewVec3(0, 1, 0))
	light := material.NewEmissive(core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1), 3)
	glossy := material.NewGlossy(core.NewVec3(1, 1, 1), 0.4, 8)

	var shapes []geometry.Shape
	shapes = append(shapes, quad(CornellCenter, backTopLeft, backBottomLeft, frontBottomLeft, frontTopLeft, green)...)
	shapes = append(shapes, quad(CornellCenter, backTopRight, frontTopRight, frontBottomRight, backBottomRight, red)...)
	shapes = append(shapes, quad(CornellCenter, backBottomLeft, backTopLeft, backTopRight, backBottomRight, white)...)
	shapes = append(shapes, quad(CornellCenter, backBottomLeft, backBottomRight, frontBottomRight, frontBottomLeft, white)...)
	shapes = append(shapes, quad(CornellCenter, backTopLeft, frontTopLeft, frontTopRight, backTopRight, light)...)
	shapes = append(shapes, geometry.NewSphere(CornellCenter, 0.3, glossy))

	s := New(shapes...)
	s.CameraConfig = camera.Config{
		Position:    core.NewVec3(0, 0, 0),
		Forward:     core.NewVec3(1, 0, 0),
		Width:       700,
		Height:      400,
		FieldOfView: 90,
		NearClip:    0.1,
	}
	s.SamplingConfig = DefaultSamplingConfig()
	return s
}

// quad splits the planar quadrilateral p0-p1-p2-p3 into two triangles sharing
// the anchor and the p0-p2 diagonal
func quad(anchor, p0, p1, p2, p3 core.Vec3, mat material.Material) []geometry.Shape {
	return []geometry.Shape{
		geometry.NewTriangle(anchor, p0, p1, p2, mat),
		geometry.NewTriangle(anchor, p0, p2, p3, mat),
	}
}
