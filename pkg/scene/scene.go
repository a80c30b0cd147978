package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/camera"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

// Scene is an ordered, immutable collection of shapes. It is safe to share
// between goroutines once built.
type Scene struct {
	shapes []geometry.Shape

	CameraConfig   camera.Config  // Recommended camera for this scene
	SamplingConfig SamplingConfig // Recommended sampling for this scene
}

// SamplingConfig contains per-scene rendering recommendations
type SamplingConfig struct {
	SamplesPerPixel int // Samples averaged per pixel in each pass
	BounceLimit     int // Maximum ray bounces per sample
}

// DefaultSamplingConfig returns the sampling used when a scene has no opinion
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 20,
		BounceLimit:     10,
	}
}

// New builds a scene from the given shapes. The slice is copied, so later
// changes by the caller do not affect the scene.
func New(shapes ...geometry.Shape) *Scene {
	return &Scene{
		shapes:         append([]geometry.Shape(nil), shapes...),
		CameraConfig:   camera.DefaultConfig(),
		SamplingConfig: DefaultSamplingConfig(),
	}
}

// Shapes returns a copy of the scene's shapes in insertion order
func (s *Scene) Shapes() []geometry.Shape {
	return append([]geometry.Shape(nil), s.shapes...)
}

// GetPrimitiveCount returns the number of shapes in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.shapes)
}

// Hit returns the closest intersection of the ray with any shape, or
// geometry.NoHit(). This is a linear scan; there is no acceleration structure.
func (s *Scene) Hit(ray core.Ray) geometry.HitRecord {
	closest := geometry.NoHit()
	for _, shape := range s.shapes {
		hit := shape.Intersect(ray)
		if hit.Hit && hit.Distance < closest.Distance {
			closest = hit
		}
	}
	return closest
}
