package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/output"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// DefaultTileSize is the tile edge used for web renders
const DefaultTileSize = 32

// Server handles web requests for the progressive path tracer
type Server struct {
	port int
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene           string        `json:"scene"`           // Scene name (e.g., "cornell")
	Width           int           `json:"width"`           // Image width
	Height          int           `json:"height"`          // Image height
	SamplesPerPixel int           `json:"samplesPerPixel"` // Samples per pixel per pass
	BounceLimit     int           `json:"bounceLimit"`     // Maximum bounces per path
	MaxPasses       int           `json:"maxPasses"`       // Maximum number of passes
	Seed            int64         `json:"seed"`            // Base seed for tile generators
	Format          output.Format `json:"format"`          // Encoding of streamed frames
}

// Handler returns the HTTP routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// parseCommonSceneParams parses the scene and image size shared by render and inspect requests
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	req.Scene = r.URL.Query().Get("scene")
	if req.Scene == "" {
		req.Scene = "cornell"
	}

	var err error
	if req.Width, err = parseIntParam(r.URL.Query(), "width", 700, 1, 2000); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(r.URL.Query(), "height", 400, 1, 2000); err != nil {
		return err
	}
	return nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene creates a scene and applies the requested image size.
// Sampling overrides are applied unless configOnly is set.
func (s *Server) createScene(req *RenderRequest, configOnly bool, logger core.Logger) *scene.Scene {
	sceneObj, err := scene.Create(req.Scene)
	if err != nil {
		if logger != nil {
			logger.Printf("%v\n", err)
		}
		return nil
	}

	sceneObj.CameraConfig.Width = req.Width
	sceneObj.CameraConfig.Height = req.Height
	if !configOnly {
		if req.SamplesPerPixel > 0 {
			sceneObj.SamplingConfig.SamplesPerPixel = req.SamplesPerPixel
		}
		if req.BounceLimit > 0 {
			sceneObj.SamplingConfig.BounceLimit = req.BounceLimit
		}
	}
	if logger != nil {
		logger.Printf("Created %s scene with %d shapes\n", req.Scene, sceneObj.GetPrimitiveCount())
	}
	return sceneObj
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "cornell" // Default scene
	}

	sceneObj, err := scene.Create(sceneName)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Unknown scene: " + sceneName})
		return
	}

	config := sceneObj.SamplingConfig
	response := map[string]interface{}{
		"scene":  sceneName,
		"scenes": scene.Names(),
		"defaults": map[string]interface{}{
			"width":           sceneObj.CameraConfig.Width,
			"height":          sceneObj.CameraConfig.Height,
			"fieldOfView":     sceneObj.CameraConfig.FieldOfView,
			"samplesPerPixel": config.SamplesPerPixel,
			"bounceLimit":     config.BounceLimit,
		},
		"limits": map[string]interface{}{
			"width":           map[string]int{"min": 1, "max": 2000},
			"height":          map[string]int{"min": 1, "max": 2000},
			"samplesPerPixel": map[string]int{"min": 1, "max": 10000},
			"bounceLimit":     map[string]int{"min": 1, "max": 1000},
			"maxPasses":       map[string]int{"min": 1, "max": 10000},
		},
		"formats": output.Formats(),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
