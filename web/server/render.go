package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/output"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "passComplete", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// PassUpdate is the payload of a passComplete event
type PassUpdate struct {
	Event             string  `json:"event"`
	PassNumber        int     `json:"passNumber"`
	TotalPasses       int     `json:"totalPasses"`
	ElapsedMs         int64   `json:"elapsedMs"`
	PassMs            int64   `json:"passMs"`
	FramesAccumulated int     `json:"framesAccumulated"`
	TotalPixels       int     `json:"totalPixels"`
	TotalSamples      int     `json:"totalSamples"`
	AverageSamples    float64 `json:"averageSamples"`
	AverageBounces    float64 `json:"averageBounces"`
	PrimitiveCount    int     `json:"primitiveCount"`
	Format            string  `json:"format"`
	ImageData         string  `json:"imageData"` // Base64 encoded accumulated frame
	IsLast            bool    `json:"isLast"`
}

// RenderingPipeline contains the configured scene and raytracer
type RenderingPipeline struct {
	Scene     *scene.Scene
	Raytracer *renderer.ProgressiveRaytracer
}

// handleRender streams accumulated frames via SSE as each pass completes.
// Closing the connection stops the render after the pass in flight.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Single SSE writer goroutine; it is drained before the handler returns
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		s.writeSSEEvents(w, ctx, sseEventChan)
		close(writerDone)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Setup console logging and streaming
	consoleChan, webLogger := s.setupConsoleLogging()
	consoleCtx, stopConsole := context.WithCancel(ctx)
	consoleDone := make(chan struct{})
	go func() {
		s.streamConsoleMessages(consoleCtx, consoleChan, sseEventChan)
		close(consoleDone)
	}()
	defer func() {
		stopConsole()
		<-consoleDone
	}()

	pipeline, err := s.setupRenderingPipeline(req, webLogger)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	startTime := time.Now()
	passChan, errChan := pipeline.Raytracer.RenderProgressive(ctx, nil)
	s.handleRenderingEvents(ctx, sseEventChan, passChan, errChan, pipeline.Scene, req, startTime)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvents handles writing all SSE events in a single goroutine (thread-safe)
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}

			// Check if client is still connected before writing
			select {
			case <-ctx.Done():
				return
			default:
			}

			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			return
		}
	}
}

// streamConsoleMessages forwards log lines until ctx ends, then flushes what is buffered
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	forward := func(consoleMsg ConsoleMessage) {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			log.Printf("Error marshaling console message: %v", err)
			return
		}
		select {
		case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
		default:
			// Channel full, skip message to avoid blocking
		}
	}

	for {
		select {
		case consoleMsg := <-consoleChan:
			forward(consoleMsg)
		case <-ctx.Done():
			for {
				select {
				case consoleMsg := <-consoleChan:
					forward(consoleMsg)
				default:
					return
				}
			}
		}
	}
}

// setupRenderingPipeline creates and configures the scene and raytracer
func (s *Server) setupRenderingPipeline(req *RenderRequest, logger core.Logger) (*RenderingPipeline, error) {
	sceneObj := s.createScene(req, false, logger)
	if sceneObj == nil {
		return nil, fmt.Errorf("Unknown scene: %s", req.Scene)
	}

	config := renderer.ProgressiveConfig{
		TileSize:   DefaultTileSize,
		NumWorkers: 0, // Auto-detect
		Seed:       req.Seed,
		MaxPasses:  req.MaxPasses,
	}

	raytracer, err := renderer.NewProgressiveRaytracer(sceneObj, config, logger)
	if err != nil {
		return nil, err
	}
	return &RenderingPipeline{
		Scene:     sceneObj,
		Raytracer: raytracer,
	}, nil
}

// handleRenderingEvents processes the main rendering event loop
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan SSEEvent,
	passChan <-chan renderer.PassResult, errChan <-chan error,
	scene *scene.Scene, req *RenderRequest, startTime time.Time) {

renderLoop:
	for {
		select {
		case passResult, ok := <-passChan:
			if !ok {
				break renderLoop
			}
			s.handlePassComplete(ctx, sseEventChan, passResult, req, scene, startTime)

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}

	if err := <-errChan; err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// handlePassComplete encodes the accumulated frame and sends a pass completion event
func (s *Server) handlePassComplete(ctx context.Context, sseEventChan chan SSEEvent, passResult renderer.PassResult, req *RenderRequest, scene *scene.Scene, startTime time.Time) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	imageData, err := s.encodeImage(passResult.Image, req.Format)
	if err != nil {
		log.Printf("Error encoding pass %d: %v", passResult.PassNumber, err)
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Failed to encode pass %d", passResult.PassNumber))
		return
	}

	passUpdate := PassUpdate{
		Event:             "passComplete",
		PassNumber:        passResult.PassNumber,
		TotalPasses:       req.MaxPasses,
		ElapsedMs:         time.Since(startTime).Milliseconds(),
		PassMs:            passResult.Duration.Milliseconds(),
		FramesAccumulated: passResult.FramesAccumulated,
		TotalPixels:       passResult.Stats.TotalPixels,
		TotalSamples:      passResult.Stats.TotalSamples,
		AverageSamples:    passResult.Stats.AverageSamples,
		AverageBounces:    passResult.Stats.AverageBounces,
		PrimitiveCount:    scene.GetPrimitiveCount(),
		Format:            string(req.Format),
		ImageData:         imageData,
		IsLast:            passResult.IsLast,
	}

	data, err := json.Marshal(passUpdate)
	if err != nil {
		log.Printf("Error marshaling pass update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "passComplete", Data: string(data)}:
	case <-ctx.Done():
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}

	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	query := r.URL.Query()
	var err error
	if req.SamplesPerPixel, err = parseIntParam(query, "samplesPerPixel", 0, 1, 10000); err != nil {
		return nil, err
	}
	if req.BounceLimit, err = parseIntParam(query, "bounceLimit", 0, 1, 1000); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(query, "maxPasses", 50, 1, 10000); err != nil {
		return nil, err
	}

	req.Seed = renderer.DefaultSeed
	if value := query.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
	}

	req.Format = output.FormatPNG
	if value := query.Get("format"); value != "" {
		if req.Format, err = output.ParseFormat(value); err != nil {
			return nil, err
		}
		if req.Format == output.FormatTGA {
			return nil, fmt.Errorf("browsers cannot display %s frames", req.Format)
		}
	}

	// Performance warning
	if req.Width*req.Height > 800*600 && req.SamplesPerPixel > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// encodeImage converts an image to base64 in the requested format
func (s *Server) encodeImage(img image.Image, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.Encode(&buf, img, format); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
