package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Epsilon rejects near-parallel triangle hits and hits at the ray origin
const Epsilon = 1e-7

// MissDistance is the distance carried by a record that hit nothing
var MissDistance = math.Inf(1)

// HitRecord contains information about a ray-object intersection.
// Point, Normal and Material are meaningless unless Hit is true.
type HitRecord struct {
	Hit      bool
	Distance float64   // World-space distance from the ray origin
	Point    core.Vec3 // Point of intersection
	Normal   core.Vec3 // Geometric normal, not flipped toward the ray
	Material material.Material
}

// NoHit returns the sentinel record used when nothing was intersected
func NoHit() HitRecord {
	return HitRecord{Distance: MissDistance}
}

// Shape is the closed set of primitives a scene can hold: *Sphere and *Triangle.
type Shape interface {
	Intersect(ray core.Ray) HitRecord
	shape()
}
