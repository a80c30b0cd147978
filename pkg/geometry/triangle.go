package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Triangle is defined by an anchor point and three vertex offsets from it
type Triangle struct {
	Anchor   core.Vec3
	A, B, C  core.Vec3 // Vertex offsets from Anchor
	Material material.Material
}

// NewTriangle creates a triangle whose vertices are anchor+a, anchor+b, anchor+c
func NewTriangle(anchor, a, b, c core.Vec3, mat material.Material) *Triangle {
	return &Triangle{
		Anchor:   anchor,
		A:        a,
		B:        b,
		C:        c,
		Material: mat,
	}
}

func (t *Triangle) shape() {}

// Vertices returns the world-space vertices
func (t *Triangle) Vertices() (core.Vec3, core.Vec3, core.Vec3) {
	return t.Anchor.Add(t.A), t.Anchor.Add(t.B), t.Anchor.Add(t.C)
}

// Normal returns the unit geometric normal. Its sign follows the winding order.
func (t *Triangle) Normal() core.Vec3 {
	v0, v1, v2 := t.Vertices()
	return v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
}

// Intersect tests the ray against the triangle using the Möller-Trumbore algorithm.
// The direction is used as given; the reported distance is |direction·t|.
func (t *Triangle) Intersect(ray core.Ray) HitRecord {
	v0, v1, v2 := t.Vertices()
	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)

	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)

	// Ray lies in (or is nearly parallel to) the triangle's plane
	if det > -Epsilon && det < Epsilon {
		return NoHit()
	}

	f := 1.0 / det
	s := ray.Origin.Subtract(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return NoHit()
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return NoHit()
	}

	tParam := f * edge2.Dot(q)
	if tParam <= Epsilon {
		// Line intersection behind (or at) the origin
		return NoHit()
	}

	step := ray.Direction.Multiply(tParam)
	return HitRecord{
		Hit:      true,
		Distance: step.Length(),
		Point:    ray.Origin.Add(step),
		Normal:   edge1.Cross(edge2).Normalize(),
		Material: t.Material,
	}
}
