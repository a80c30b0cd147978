package renderer

import (
	"errors"
	"fmt"
	"image"

	"github.com/df07/go-progressive-pathtracer/pkg/camera"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// ErrInvalidSampling is returned for non-positive sample or bounce counts
var ErrInvalidSampling = errors.New("invalid sampling config")

// DefaultSeed is the base seed tiles derive their generators from
const DefaultSeed int64 = 42

// PassConfig controls how a pass is split across workers
type PassConfig struct {
	TileSize   int   // Size of each tile (64x64 recommended)
	NumWorkers int   // Number of parallel workers (0 = use CPU count)
	Seed       int64 // Base seed; tile i uses Seed+i
}

// DefaultPassConfig returns sensible default values
func DefaultPassConfig() PassConfig {
	return PassConfig{
		TileSize:   64,
		NumWorkers: 0,
		Seed:       DefaultSeed,
	}
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1), row 0 at the top
	PassesCompleted int             // Number of passes completed for this tile
	Sampler         core.Sampler    // Tile-owned generator, never shared between goroutines
}

// NewTile creates a new tile whose generator is seeded with seed+id
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:      id,
		Bounds:  bounds,
		Sampler: core.NewSeededSampler(seed + int64(id)),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}

// PassRenderer renders full-frame passes. Tile generators persist between
// passes, so consecutive passes draw fresh samples.
type PassRenderer struct {
	camera       *camera.Camera
	tiles        []*Tile
	pool         *WorkerPool
	tileRenderer *TileRenderer
	passes       int
}

// NewPassRenderer creates a pass renderer for a camera and scene
func NewPassRenderer(cam *camera.Camera, sc integrator.Intersector, sampling scene.SamplingConfig, config PassConfig) (*PassRenderer, error) {
	if cam == nil {
		return nil, errors.New("pass renderer needs a camera")
	}
	if sampling.SamplesPerPixel <= 0 {
		return nil, fmt.Errorf("%w: samples per pixel must be positive, got %d", ErrInvalidSampling, sampling.SamplesPerPixel)
	}
	if sampling.BounceLimit <= 0 {
		return nil, fmt.Errorf("%w: bounce limit must be positive, got %d", ErrInvalidSampling, sampling.BounceLimit)
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultPassConfig().TileSize
	}

	pt := integrator.NewPathTracingIntegrator(sampling)
	return &PassRenderer{
		camera:       cam,
		tiles:        NewTileGrid(cam.Width(), cam.Height(), config.TileSize, config.Seed),
		pool:         NewWorkerPool(config.NumWorkers),
		tileRenderer: NewTileRenderer(cam, sc, pt, sampling.SamplesPerPixel),
	}, nil
}

// RenderPass renders one pass and returns the per-pixel linear RGB estimates,
// row-major with row 0 at the top of the image
func (pr *PassRenderer) RenderPass() ([]core.Vec3, RenderStats, error) {
	pr.passes++
	pixels := make([]core.Vec3, pr.camera.Width()*pr.camera.Height())

	tasks := make([]TileTask, len(pr.tiles))
	for i, tile := range pr.tiles {
		tasks[i] = TileTask{Tile: tile, PassNumber: pr.passes, TaskID: i, Pixels: pixels}
	}

	results, err := pr.pool.Run(tasks, func(task TileTask) (RenderStats, error) {
		stats := pr.tileRenderer.RenderTileBounds(task.Tile.Bounds, task.Pixels, task.Tile.Sampler)
		task.Tile.PassesCompleted++
		return stats, nil
	})
	if err != nil {
		return nil, RenderStats{}, fmt.Errorf("render pass %d: %w", pr.passes, err)
	}

	var stats RenderStats
	for _, result := range results {
		stats.Merge(result.Stats)
	}
	return pixels, stats, nil
}

// GetNumWorkers returns the number of workers used per pass
func (pr *PassRenderer) GetNumWorkers() int {
	return pr.pool.GetNumWorkers()
}

// RenderPass renders a single pass of the scene through the camera with the
// default tiling and seed. Repeated calls return the same samples; use a
// PassRenderer to draw new ones each pass.
func RenderPass(cam *camera.Camera, sc integrator.Intersector, samplesPerPixel, bounceLimit int) ([]core.Vec3, error) {
	pr, err := NewPassRenderer(cam, sc, scene.SamplingConfig{
		SamplesPerPixel: samplesPerPixel,
		BounceLimit:     bounceLimit,
	}, DefaultPassConfig())
	if err != nil {
		return nil, err
	}
	pixels, _, err := pr.RenderPass()
	return pixels, err
}
