package integrator

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

// Intersector answers closest-hit queries; *scene.Scene implements it
type Intersector interface {
	Hit(ray core.Ray) geometry.HitRecord
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor returns a linear RGB radiance estimate for one sample along ray
	RayColor(ray core.Ray, scene Intersector, sampler core.Sampler) core.Vec3
}
