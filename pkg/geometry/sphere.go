package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

func (s *Sphere) shape() {}

// Intersect tests the ray against the sphere. The direction is normalized
// first, so the reported distance is in world units whatever the caller passed.
// An origin inside the sphere hits the far side.
func (s *Sphere) Intersect(ray core.Ray) HitRecord {
	dir := ray.Direction.Normalize()
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := dir.Dot(dir)
	b := 2 * oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return NoHit()
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first, then the far side
	root := (-b - sqrtD) / (2 * a)
	if !(root > Epsilon) {
		root = (-b + sqrtD) / (2 * a)
		if !(root > Epsilon) {
			return NoHit()
		}
	}

	point := ray.Origin.Add(dir.Multiply(root))
	return HitRecord{
		Hit:      true,
		Distance: root,
		Point:    point,
		Normal:   point.Subtract(s.Center).Normalize(),
		Material: s.Material,
	}
}
