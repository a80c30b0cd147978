package renderer

import (
	"image"

	"github.com/df07/go-progressive-pathtracer/pkg/camera"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
)

// PathTracer traces one camera sample and reports how many bounces it used
type PathTracer interface {
	TracePath(ray core.Ray, scene integrator.Intersector, sampler core.Sampler) integrator.PathResult
}

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	camera          *camera.Camera
	scene           integrator.Intersector
	integrator      PathTracer
	samplesPerPixel int
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator
func NewTileRenderer(cam *camera.Camera, scene integrator.Intersector, integratorInst PathTracer, samplesPerPixel int) *TileRenderer {
	return &TileRenderer{
		camera:          cam,
		scene:           scene,
		integrator:      integratorInst,
		samplesPerPixel: samplesPerPixel,
	}
}

// RenderTileBounds renders the pixels within bounds into the pass buffer.
// Bounds are image coordinates with row 0 at the top; the camera counts rows
// from the bottom, so image row j is camera row height-1-j.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixels []core.Vec3, sampler core.Sampler) RenderStats {
	width := tr.camera.Width()
	height := tr.camera.Height()

	stats := RenderStats{
		TotalPixels:     bounds.Dx() * bounds.Dy(),
		SamplesPerPixel: tr.samplesPerPixel,
	}

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ray := tr.camera.GetRay(i, height-1-j)

			var ps PixelStats
			for s := 0; s < tr.samplesPerPixel; s++ {
				result := tr.integrator.TracePath(ray, tr.scene, sampler)
				ps.AddSample(result.Radiance)
				stats.TotalBounces += result.Bounces
			}
			pixels[j*width+i] = ps.GetColor()
			stats.TotalSamples += ps.SampleCount
		}
	}

	stats.finalize()
	return stats
}
