package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-progressive-pathtracer/pkg/camera"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Command is a control signal delivered to a running progressive render
type Command int

const (
	CommandStart Command = iota // Resume rendering passes
	CommandStop                 // Pause after the current pass
	CommandQuit                 // Finish after the current pass
)

func (c Command) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandStop:
		return "stop"
	case CommandQuit:
		return "quit"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize    int   // Size of each tile (64x64 recommended)
	NumWorkers  int   // Number of parallel workers (0 = use CPU count)
	Seed        int64 // Base seed for tile generators
	MaxPasses   int   // Stop after this many passes (0 = until quit)
	StartPaused bool  // Wait for CommandStart before the first pass
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:    64,
		NumWorkers:  0, // Auto-detect CPU count
		Seed:        DefaultSeed,
		MaxPasses:   0,
		StartPaused: false,
	}
}

// ProgressiveRaytracer renders passes and blends them into an ever less noisy frame
type ProgressiveRaytracer struct {
	scene        *scene.Scene
	config       ProgressiveConfig
	passRenderer *PassRenderer
	frame        *FrameState
	currentPass  int
	logger       core.Logger
}

// NewProgressiveRaytracer creates a progressive raytracer for a scene, using
// the scene's camera and sampling configs
func NewProgressiveRaytracer(sc *scene.Scene, config ProgressiveConfig, logger core.Logger) (*ProgressiveRaytracer, error) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	cam, err := camera.New(sc.CameraConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera: %w", err)
	}

	passRenderer, err := NewPassRenderer(cam, sc, sc.SamplingConfig, PassConfig{
		TileSize:   config.TileSize,
		NumWorkers: config.NumWorkers,
		Seed:       config.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pass renderer: %w", err)
	}

	return &ProgressiveRaytracer{
		scene:        sc,
		config:       config,
		passRenderer: passRenderer,
		frame:        NewFrameState(cam.Width(), cam.Height()),
		logger:       logger,
	}, nil
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber        int
	Image             *image.RGBA // Accumulated frame after this pass, owned by the receiver
	Stats             RenderStats
	FramesAccumulated int
	Duration          time.Duration
	IsLast            bool
}

// RenderPass renders one pass, blends it into the frame and returns the result
func (pr *ProgressiveRaytracer) RenderPass() (PassResult, error) {
	pr.currentPass++
	startTime := time.Now()

	pixels, stats, err := pr.passRenderer.RenderPass()
	if err != nil {
		return PassResult{}, err
	}
	if err := pr.frame.Blend(pixels); err != nil {
		return PassResult{}, fmt.Errorf("blend pass %d: %w", pr.currentPass, err)
	}

	passTime := time.Since(startTime)
	pr.logger.Printf("Pass %d completed in %v (%d frames accumulated, %.2f bounces/sample)\n",
		pr.currentPass, passTime, pr.frame.FramesAccumulated, stats.AverageBounces)

	return PassResult{
		PassNumber:        pr.currentPass,
		Image:             pr.frame.Image(),
		Stats:             stats,
		FramesAccumulated: pr.frame.FramesAccumulated,
		Duration:          passTime,
		IsLast:            pr.config.MaxPasses > 0 && pr.currentPass >= pr.config.MaxPasses,
	}, nil
}

// Reset discards the accumulated frame. The next pass starts a new mean.
func (pr *ProgressiveRaytracer) Reset() {
	pr.frame.Reset()
	pr.logger.Printf("Accumulation reset\n")
}

// Frame returns the accumulation state. It must not be touched while
// RenderProgressive is running.
func (pr *ProgressiveRaytracer) Frame() *FrameState {
	return pr.frame
}

// RenderProgressive renders passes until MaxPasses is reached, a quit command
// arrives, the controls channel closes or ctx is cancelled. Commands and ctx
// are only looked at between passes; a pass that has started always finishes.
// Cancellation is reported on the error channel, a quit is not.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, controls <-chan Command) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)

		running := !pr.config.StartPaused
		if running {
			pr.logger.Printf("Starting progressive rendering with %d workers...\n", pr.passRenderer.GetNumWorkers())
		} else {
			pr.logger.Printf("Rendering paused, waiting for start\n")
		}

		for pr.config.MaxPasses == 0 || pr.currentPass < pr.config.MaxPasses {
			if running {
				select {
				case <-ctx.Done():
					pr.logger.Printf("Rendering cancelled before pass %d\n", pr.currentPass+1)
					errChan <- ctx.Err()
					return
				case cmd, ok := <-controls:
					if !pr.handleCommand(cmd, ok, &running) {
						return
					}
					continue
				default:
				}
			} else {
				select {
				case <-ctx.Done():
					pr.logger.Printf("Rendering cancelled while paused\n")
					errChan <- ctx.Err()
					return
				case cmd, ok := <-controls:
					if !pr.handleCommand(cmd, ok, &running) {
						return
					}
					continue
				}
			}

			result, err := pr.RenderPass()
			if err != nil {
				errChan <- err
				return
			}

			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}

		pr.logger.Printf("Reached %d passes, stopping.\n", pr.config.MaxPasses)
	}()

	return passChan, errChan
}

// handleCommand applies a control command and reports whether rendering should continue
func (pr *ProgressiveRaytracer) handleCommand(cmd Command, ok bool, running *bool) bool {
	if !ok {
		pr.logger.Printf("Control source closed, stopping\n")
		return false
	}

	switch cmd {
	case CommandStart:
		if !*running {
			pr.logger.Printf("Rendering started at pass %d\n", pr.currentPass+1)
		}
		*running = true
	case CommandStop:
		if *running {
			pr.logger.Printf("Rendering paused after pass %d\n", pr.currentPass)
		}
		*running = false
	case CommandQuit:
		pr.logger.Printf("Quit requested after pass %d\n", pr.currentPass)
		return false
	default:
		pr.logger.Printf("Ignoring unknown command %v\n", cmd)
	}
	return true
}
