package renderer

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// ErrBufferSize is returned when buffers handed to the accumulator disagree in length
var ErrBufferSize = errors.New("buffer size mismatch")

// Encode packs a linear RGB color as R<<24 | G<<16 | B<<8 | A with 8 bits per
// channel. Channels are clamped to [0,1] and rounded to the nearest level;
// alpha is always opaque.
func Encode(color core.Vec3) uint32 {
	c := color.Clamp(0, 1)
	r := uint32(math.Round(c.X * 255))
	g := uint32(math.Round(c.Y * 255))
	b := uint32(math.Round(c.Z * 255))
	return r<<24 | g<<16 | b<<8 | 0xFF
}

// Decode unpacks an encoded color back into [0,1] per channel. Alpha is ignored.
func Decode(packed uint32) core.Vec3 {
	return core.Vec3{
		X: float64(packed>>24&0xFF) / 255,
		Y: float64(packed>>16&0xFF) / 255,
		Z: float64(packed>>8&0xFF) / 255,
	}
}

// Accumulate blends a pass into the previously accumulated frame as an online
// mean: the pass gets weight 1/(n+1) and the history the rest. It returns the
// new encoded frame and n+1.
func Accumulate(previous []uint32, pass []core.Vec3, framesAccumulated int) ([]uint32, int, error) {
	next := make([]uint32, len(pass))
	n, err := AccumulateInto(next, previous, pass, framesAccumulated)
	if err != nil {
		return nil, framesAccumulated, err
	}
	return next, n, nil
}

// AccumulateInto is Accumulate writing into dst, which may not alias previous.
func AccumulateInto(dst, previous []uint32, pass []core.Vec3, framesAccumulated int) (int, error) {
	if len(dst) != len(pass) || len(previous) != len(pass) {
		return framesAccumulated, fmt.Errorf("accumulate %d pass pixels into %d/%d: %w",
			len(pass), len(previous), len(dst), ErrBufferSize)
	}
	if framesAccumulated < 0 {
		return framesAccumulated, fmt.Errorf("negative frame count %d", framesAccumulated)
	}

	w := 1.0 / float64(framesAccumulated+1)
	for i, sample := range pass {
		if framesAccumulated == 0 {
			dst[i] = Encode(sample)
			continue
		}
		history := Decode(previous[i])
		dst[i] = Encode(history.Multiply(1 - w).Add(sample.Multiply(w)))
	}
	return framesAccumulated + 1, nil
}

// FrameState holds the double-buffered accumulated frame. Current is the most
// recent result; Previous is the back buffer written by the next Blend.
type FrameState struct {
	Width, Height     int
	Current           []uint32
	Previous          []uint32
	FramesAccumulated int
}

// NewFrameState creates an empty frame of the given size
func NewFrameState(width, height int) *FrameState {
	return &FrameState{
		Width:    width,
		Height:   height,
		Current:  make([]uint32, width*height),
		Previous: make([]uint32, width*height),
	}
}

// Blend accumulates a pass into the back buffer and swaps it to the front
func (fs *FrameState) Blend(pass []core.Vec3) error {
	n, err := AccumulateInto(fs.Previous, fs.Current, pass, fs.FramesAccumulated)
	if err != nil {
		return err
	}
	fs.Current, fs.Previous = fs.Previous, fs.Current
	fs.FramesAccumulated = n
	return nil
}

// Reset discards accumulated history. Nothing calls this implicitly: a scene
// or camera change keeps blending with stale frames until the caller resets.
func (fs *FrameState) Reset() {
	clear(fs.Current)
	clear(fs.Previous)
	fs.FramesAccumulated = 0
}

// Image converts the current frame into a new RGBA image, row 0 at the top
func (fs *FrameState) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fs.Width, fs.Height))
	for i, packed := range fs.Current {
		offset := i * 4
		img.Pix[offset] = uint8(packed >> 24)
		img.Pix[offset+1] = uint8(packed >> 16)
		img.Pix[offset+2] = uint8(packed >> 8)
		img.Pix[offset+3] = uint8(packed)
	}
	return img
}
