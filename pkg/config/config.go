package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/df07/go-progressive-pathtracer/pkg/output"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// ErrInvalid is returned by Validate for unusable settings
var ErrInvalid = errors.New("invalid config")

// DefaultSeed is used when neither the file nor the flags set a seed
const DefaultSeed int64 = 42

// Config holds the render settings that can come from a file or the command line.
// Zero values mean "use the scene's own setting" or the documented default.
type Config struct {
	// Scene
	Scene string `json:"scene"`

	// Camera overrides
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FieldOfView float64 `json:"fov"`

	// Sampling overrides
	SamplesPerPixel int `json:"samples_per_pixel"`
	BounceLimit     int `json:"bounce_limit"`

	// Progressive loop
	Passes      int    `json:"passes"`
	Workers     int    `json:"workers"`
	TileSize    int    `json:"tile_size"`
	Seed        *int64 `json:"seed,omitempty"` // nil means DefaultSeed; 0 is a valid seed
	StartPaused bool   `json:"start_paused"`

	// Output
	OutputDir  string `json:"output_dir"`
	Format     string `json:"format"`
	KeepPasses bool   `json:"keep_passes"`
	MaxWidth   int    `json:"max_width"`
	MaxHeight  int    `json:"max_height"`
}

// Flags holds CLI flag values that override config file settings
type Flags struct {
	Scene           string
	Width           int
	Height          int
	SamplesPerPixel int
	BounceLimit     int
	Passes          int
	Workers         int
	Seed            *int64 // nil when -seed was not given
	OutputDir       string
	Format          string
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve applies CLI flags over the file settings, then fills defaults.
// Flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Scene != "" {
		c.Scene = flags.Scene
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.SamplesPerPixel > 0 {
		c.SamplesPerPixel = flags.SamplesPerPixel
	}
	if flags.BounceLimit > 0 {
		c.BounceLimit = flags.BounceLimit
	}
	if flags.Passes > 0 {
		c.Passes = flags.Passes
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Seed != nil {
		seed := *flags.Seed
		c.Seed = &seed
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}

	if c.Scene == "" {
		c.Scene = "cornell"
	}
	if c.TileSize <= 0 {
		c.TileSize = 64
	}
	if c.Seed == nil {
		seed := DefaultSeed
		c.Seed = &seed
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.Format == "" {
		c.Format = string(output.FormatPNG)
	}
}

// Validate checks settings that would otherwise fail deep inside the renderer
func (c *Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.FieldOfView < 0 || c.FieldOfView >= 180 {
		return fmt.Errorf("%w: field of view %g must be in (0, 180)", ErrInvalid, c.FieldOfView)
	}
	if c.SamplesPerPixel < 0 || c.BounceLimit < 0 {
		return fmt.Errorf("%w: samples %d, bounces %d", ErrInvalid, c.SamplesPerPixel, c.BounceLimit)
	}
	if c.Passes < 0 || c.Workers < 0 {
		return fmt.Errorf("%w: passes %d, workers %d", ErrInvalid, c.Passes, c.Workers)
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// BuildScene creates the configured scene and applies the camera and sampling overrides
func (c *Config) BuildScene() (*scene.Scene, error) {
	sc, err := scene.Create(c.Scene)
	if err != nil {
		return nil, err
	}

	if c.Width > 0 {
		sc.CameraConfig.Width = c.Width
	}
	if c.Height > 0 {
		sc.CameraConfig.Height = c.Height
	}
	if c.FieldOfView > 0 {
		sc.CameraConfig.FieldOfView = c.FieldOfView
	}
	if c.SamplesPerPixel > 0 {
		sc.SamplingConfig.SamplesPerPixel = c.SamplesPerPixel
	}
	if c.BounceLimit > 0 {
		sc.SamplingConfig.BounceLimit = c.BounceLimit
	}
	return sc, nil
}

// RenderSeed returns the base seed for tile generators
func (c *Config) RenderSeed() int64 {
	if c.Seed == nil {
		return DefaultSeed
	}
	return *c.Seed
}

// FileSink creates the output sink for a scene
func (c *Config) FileSink() (*output.FileSink, error) {
	format, err := output.ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	sink := output.NewFileSink(filepath.Join(c.OutputDir, c.Scene), "render", format)
	sink.KeepPasses = c.KeepPasses
	sink.MaxWidth = c.MaxWidth
	sink.MaxHeight = c.MaxHeight
	return sink, nil
}
