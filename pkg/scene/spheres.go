package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/camera"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// NewSpheresScene lines up three white spheres of increasing smoothness on a
// large yellow ground sphere, lit by an emissive sphere overhead
func NewSpheresScene() *Scene {
	yellow := material.Material{
		BaseColor:     core.NewVec3(1.0, 0.5, 0.1),
		EmissionColor: core.NewVec3(1.0, 0.5, 0.1),
	}
	light := material.NewEmissive(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1), 3)

	s := New(
		geometry.NewSphere(core.NewVec3(5, 3, 0), 1, material.NewGlossy(core.NewVec3(1, 1, 1), 0.3, 1)),
		geometry.NewSphere(core.NewVec3(5, 0, 0), 1, material.NewGlossy(core.NewVec3(1, 1, 1), 0.6, 1)),
		geometry.NewSphere(core.NewVec3(5, -3, 0), 1, material.NewGlossy(core.NewVec3(1, 1, 1), 1.0, 1)),
		geometry.NewSphere(core.NewVec3(5, 0, -51), 50, yellow),
		geometry.NewSphere(core.NewVec3(5, 0, 8), 5, light),
	)
	s.CameraConfig = camera.DefaultConfig()
	return s
}
