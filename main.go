package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/df07/go-progressive-pathtracer/pkg/config"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/output"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Optional JSON config file")
	sceneType := flag.String("scene", "", "Scene: "+strings.Join(scene.Names(), ", ")+" (default cornell)")
	width := flag.Int("width", 0, "Image width (default: scene setting)")
	height := flag.Int("height", 0, "Image height (default: scene setting)")
	samples := flag.Int("samples", 0, "Samples per pixel per pass (default: scene setting)")
	bounces := flag.Int("bounces", 0, "Bounce limit per path (default: scene setting)")
	passes := flag.Int("passes", 0, "Number of passes, 0 renders until quit")
	workers := flag.Int("workers", 0, "Number of parallel workers (default: CPU count)")
	seed := flag.Int64("seed", config.DefaultSeed, "Base random seed")
	outputDir := flag.String("output", "", "Output directory (default output)")
	format := flag.String("format", "", "Output format: png, webp or tga (default png)")
	interactive := flag.Bool("interactive", false, "Read start/stop/quit commands from stdin")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	cfg := config.Config{}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Only an explicit -seed overrides the file, so -seed 0 is honoured
	var seedFlag *int64
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedFlag = seed
		}
	})

	cfg.Resolve(config.Flags{
		Scene:           *sceneType,
		Width:           *width,
		Height:          *height,
		SamplesPerPixel: *samples,
		BounceLimit:     *bounces,
		Passes:          *passes,
		Workers:         *workers,
		Seed:            seedFlag,
		OutputDir:       *outputDir,
		Format:          *format,
	})
	if *interactive {
		cfg.StartPaused = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	controls := make(chan renderer.Command, 4)

	// SIGINT/SIGTERM finish the pass in flight and quit
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range signals {
			controls <- renderer.CommandQuit
		}
	}()

	if *interactive {
		fmt.Println("Commands: start (r), stop (s), quit (q)")
		go readCommands(os.Stdin, controls)
	}

	fmt.Println("Starting Progressive Path Tracer...")
	if err := run(context.Background(), cfg, controls, renderer.NewDefaultLogger()); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Println("Progressive Path Tracer")
	fmt.Println("Usage: pathtracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	fmt.Println("  cornell - Cornell box with a glossy sphere and a lit ceiling")
	fmt.Println("  spheres - Glossy spheres on a ground sphere under a spherical light")
	fmt.Println()
	fmt.Println("The accumulated frame is rewritten to output/<scene>/render.<format> after every pass.")
}

// run renders until the pass limit, a quit command or ctx ends it, writing every pass to the sink
func run(ctx context.Context, cfg config.Config, controls <-chan renderer.Command, logger core.Logger) error {
	selectedScene, err := cfg.BuildScene()
	if err != nil {
		return err
	}
	sink, err := cfg.FileSink()
	if err != nil {
		return err
	}

	raytracer, err := renderer.NewProgressiveRaytracer(selectedScene, renderer.ProgressiveConfig{
		TileSize:    cfg.TileSize,
		NumWorkers:  cfg.Workers,
		Seed:        cfg.RenderSeed(),
		MaxPasses:   cfg.Passes,
		StartPaused: cfg.StartPaused,
	}, logger)
	if err != nil {
		return err
	}

	logger.Printf("Rendering %s (%d shapes) at %dx%d, %d samples/pixel, %d bounces\n",
		cfg.Scene, selectedScene.GetPrimitiveCount(),
		selectedScene.CameraConfig.Width, selectedScene.CameraConfig.Height,
		selectedScene.SamplingConfig.SamplesPerPixel, selectedScene.SamplingConfig.BounceLimit)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	passChan, errChan := raytracer.RenderProgressive(ctx, controls)

	frames := output.MultiSink{sink, progressSink{logger: logger, path: sink.Path()}}

	var writeErr error
	for result := range passChan {
		if writeErr != nil {
			continue
		}
		if err := frames.WriteFrame(result.Image, result.PassNumber); err != nil {
			writeErr = fmt.Errorf("failed to save pass %d: %w", result.PassNumber, err)
			cancel()
			continue
		}
	}

	if writeErr != nil {
		return writeErr
	}
	return <-errChan
}

// progressSink logs each frame once the file sink ahead of it has saved it
type progressSink struct {
	logger core.Logger
	path   string
}

func (ps progressSink) WriteFrame(img *image.RGBA, pass int) error {
	ps.logger.Printf("Saved pass %d to %s (average luminance %.3f)\n",
		pass, ps.path, renderer.CalculateAverageLuminance(img))
	return nil
}

// parseCommand maps an input line to a control command
func parseCommand(line string) (renderer.Command, bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "r", "start":
		return renderer.CommandStart, true
	case "s", "stop":
		return renderer.CommandStop, true
	case "q", "quit", "exit":
		return renderer.CommandQuit, true
	default:
		return 0, false
	}
}

// readCommands forwards commands read line by line; end of input quits
func readCommands(r io.Reader, controls chan<- renderer.Command) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if cmd, ok := parseCommand(scanner.Text()); ok {
			controls <- cmd
			if cmd == renderer.CommandQuit {
				return
			}
		} else if strings.TrimSpace(scanner.Text()) != "" {
			fmt.Printf("Unknown command %q\n", scanner.Text())
		}
	}
	controls <- renderer.CommandQuit
}
