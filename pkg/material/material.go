package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Material describes how a surface reflects and emits light.
//
// Smoothness blends specular bounces from diffuse (0) to a perfect mirror (1).
// Glossiness is the probability that a bounce is specular at all. Both are
// meant to lie in [0, 1] but are never clamped.
type Material struct {
	BaseColor        core.Vec3 // Per-channel reflectance, multiplied into path throughput
	EmissionColor    core.Vec3 // Color of emitted light
	EmissionStrength float64   // Scale applied to EmissionColor
	Smoothness       float64
	Glossiness       float64
}

// NewLambertian creates a purely diffuse, non-emissive material
func NewLambertian(albedo core.Vec3) Material {
	return Material{BaseColor: albedo}
}

// NewEmissive creates a diffuse material that also emits light
func NewEmissive(albedo, emissionColor core.Vec3, strength float64) Material {
	return Material{
		BaseColor:        albedo,
		EmissionColor:    emissionColor,
		EmissionStrength: strength,
	}
}

// NewGlossy creates a material that bounces specularly with probability
// glossiness, blended toward the mirror direction by smoothness
func NewGlossy(albedo core.Vec3, smoothness, glossiness float64) Material {
	return Material{
		BaseColor:  albedo,
		Smoothness: smoothness,
		Glossiness: glossiness,
	}
}

// NewMirror creates a perfect mirror
func NewMirror(albedo core.Vec3) Material {
	return NewGlossy(albedo, 1, 1)
}

// Emitted returns the light emitted by the surface
func (m Material) Emitted() core.Vec3 {
	return m.EmissionColor.Multiply(m.EmissionStrength)
}

// IsEmissive reports whether the material contributes any light
func (m Material) IsEmissive() bool {
	return !m.Emitted().IsZero()
}

// Scatter picks the outgoing direction for a ray arriving along incoming at a
// surface with the given unit normal, which must face against incoming.
//
// A uniform direction in the normal's hemisphere is drawn first, then a single
// uniform number decides whether the bounce is specular. Only specular bounces
// blend toward the mirror direction, weighted by Smoothness.
func (m Material) Scatter(incoming, normal core.Vec3, sampler core.Sampler) core.Vec3 {
	diffuse := core.SampleHemisphere(normal, sampler)
	specular := incoming.Reflect(normal)

	specularBounce := 0.0
	if m.Glossiness >= sampler.Get1D() {
		specularBounce = 1.0
	}

	return diffuse.Lerp(specular, m.Smoothness*specularBounce)
}
