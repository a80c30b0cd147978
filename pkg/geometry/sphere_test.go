package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

var testMaterial = material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

func TestSphere_Intersect_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)

	tests := []struct {
		name string
		ray  core.Ray
	}{
		{"passes beside", core.Ray{Origin: core.NewVec3(2, 0, 0), Direction: core.NewVec3(0, 1, 0)}},
		{"points away", core.Ray{Origin: core.NewVec3(0, 0, 3), Direction: core.NewVec3(0, 0, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := sphere.Intersect(tt.ray)
			if hit.Hit {
				t.Errorf("Expected miss, but got hit at distance %f", hit.Distance)
			}
			if !math.IsInf(hit.Distance, 1) {
				t.Errorf("Expected sentinel distance, got %f", hit.Distance)
			}
		})
	}
}

func TestSphere_Intersect_DistanceFromOutside(t *testing.T) {
	tests := []struct {
		name      string
		radius    float64
		origin    core.Vec3
		direction core.Vec3
	}{
		{"unit sphere on x axis", 1.0, core.NewVec3(5, 0, 0), core.NewVec3(-1, 0, 0)},
		{"unnormalized direction", 2.0, core.NewVec3(0, 7, 0), core.NewVec3(0, -30, 0)},
		{"diagonal origin", 0.5, core.NewVec3(3, -4, 12), core.NewVec3(-3, 4, -12)},
		{"tiny sphere", 0.01, core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 0.001)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := NewSphere(core.Vec3{}, tt.radius, testMaterial)
			hit := sphere.Intersect(core.Ray{Origin: tt.origin, Direction: tt.direction})
			if !hit.Hit {
				t.Fatal("Expected hit, but got miss")
			}

			expected := tt.origin.Length() - tt.radius
			if math.Abs(hit.Distance-expected) > 1e-9 {
				t.Errorf("Expected distance %f, got %f", expected, hit.Distance)
			}

			expectedNormal := tt.origin.Normalize()
			if hit.Normal.Subtract(expectedNormal).Length() > 1e-9 {
				t.Errorf("Expected outward normal %v, got %v", expectedNormal, hit.Normal)
			}
			if hit.Material != testMaterial {
				t.Errorf("Expected the sphere's material on the hit record")
			}
		})
	}
}

func TestSphere_Intersect_FromInside(t *testing.T) {
	sphere := NewSphere(core.NewVec3(1, 0, 0), 0.3, testMaterial)
	ray := core.NewRay(core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1))

	hit := sphere.Intersect(ray)
	if !hit.Hit {
		t.Fatal("Expected an inside hit on the far wall")
	}
	if math.Abs(hit.Distance-0.3) > 1e-9 {
		t.Errorf("Expected distance 0.3, got %f", hit.Distance)
	}
	// The normal stays outward even though the ray came from inside
	if hit.Normal.Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-9 {
		t.Errorf("Expected outward normal (0, 0, 1), got %v", hit.Normal)
	}
}

func TestSphere_Intersect_GlancingHit(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)
	ray := core.NewRay(core.NewVec3(1, 0, 2), core.NewVec3(0, 0, -1))

	hit := sphere.Intersect(ray)
	if !hit.Hit {
		t.Fatal("Expected glancing hit, but got miss")
	}

	expectedPoint := core.NewVec3(1, 0, 0)
	if hit.Point.Subtract(expectedPoint).Length() > 1e-9 {
		t.Errorf("Expected hit point %v, got %v", expectedPoint, hit.Point)
	}
}

func TestSphere_Intersect_LeavingSurface(t *testing.T) {
	// A ray starting on the surface and heading outward must not re-hit it
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, testMaterial)
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0.3, 1, 0))

	if hit := sphere.Intersect(ray); hit.Hit {
		t.Errorf("Expected no self-intersection, got hit at distance %g", hit.Distance)
	}
}
