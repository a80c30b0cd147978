package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms.
// Implementations are not safe for concurrent use; each worker owns one.
type Sampler interface {
	Get1D() float64
	Get2D() (float64, float64)
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded from seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() (float64, float64) {
	return r.random.Float64(), r.random.Float64()
}

// SampleOnUnitSphere maps two uniform numbers to a uniform direction on the unit sphere
func SampleOnUnitSphere(u, v float64) Vec3 {
	z := 1.0 - 2.0*u // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * v
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// SampleHemisphere draws a uniform direction on the unit sphere and flips it
// into the hemisphere around normal.
func SampleHemisphere(normal Vec3, sampler Sampler) Vec3 {
	dir := SampleOnUnitSphere(sampler.Get2D())
	if dir.Dot(normal) < 0 {
		return dir.Negate()
	}
	return dir
}
