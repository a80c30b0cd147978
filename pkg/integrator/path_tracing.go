package integrator

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// PathTracingIntegrator implements unidirectional path tracing with uniform
// hemisphere sampling. Bounces are not weighted by any sampling density, so
// the estimate is a simple, slightly biased approximation of global illumination.
type PathTracingIntegrator struct {
	config scene.SamplingConfig
}

// PathResult is the outcome of tracing a single path
type PathResult struct {
	Radiance core.Vec3 // Light gathered along the path
	Bounces  int       // Surfaces hit before the path ended
}

var _ Integrator = (*PathTracingIntegrator)(nil)

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor computes the radiance carried back along a single ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene Intersector, sampler core.Sampler) core.Vec3 {
	return pt.TracePath(ray, scene, sampler).Radiance
}

// TracePath follows one random light path from ray. The loop runs at most
// BounceLimit times whatever the scene looks like, so light-trapping geometry
// such as facing mirrors always terminates.
func (pt *PathTracingIntegrator) TracePath(ray core.Ray, scene Intersector, sampler core.Sampler) PathResult {
	incomingLight := core.Vec3{}
	throughput := core.NewVec3(1, 1, 1)

	bounces := 0
	for ; bounces < pt.config.BounceLimit; bounces++ {
		hit := scene.Hit(ray)
		if !hit.Hit {
			break
		}

		// Diffuse bounces leave on the side the shape's normal points to,
		// so a ray hitting a sphere from inside continues outward
		mat := hit.Material
		direction := mat.Scatter(ray.Direction, hit.Normal, sampler)

		incomingLight = incomingLight.Add(mat.Emitted().MultiplyVec(throughput))
		throughput = throughput.MultiplyVec(mat.BaseColor)

		ray = core.NewRay(hit.Point, direction)
	}

	return PathResult{Radiance: incomingLight, Bounces: bounces}
}
