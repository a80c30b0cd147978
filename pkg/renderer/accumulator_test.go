package renderer

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		color core.Vec3
		want  uint32
	}{
		{"black", core.NewVec3(0, 0, 0), 0x000000FF},
		{"white", core.NewVec3(1, 1, 1), 0xFFFFFFFF},
		{"red", core.NewVec3(1, 0, 0), 0xFF0000FF},
		{"green", core.NewVec3(0, 1, 0), 0x00FF00FF},
		{"blue", core.NewVec3(0, 0, 1), 0x0000FFFF},
		{"over bright clamps", core.NewVec3(7, 1.5, 300), 0xFFFFFFFF},
		{"negative clamps", core.NewVec3(-1, -0.2, 0), 0x000000FF},
		{"mid grey", core.NewVec3(0.5, 0.5, 0.5), 0x808080FF},
		{"rounds to nearest", core.NewVec3(10.4/255, 10.6/255, 0), 0x0A0B00FF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.color); got != tt.want {
				t.Errorf("Encode(%v) = %#08x, want %#08x", tt.color, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	got := Decode(0xFF8000FF)
	want := core.NewVec3(1, 128.0/255, 0)
	if got != want {
		t.Errorf("Decode = %v, want %v", got, want)
	}

	// Alpha carries no color
	if Decode(0x00000000) != Decode(0x000000FF) {
		t.Error("Expected alpha to be ignored")
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	// Every 8-bit level survives exactly
	for level := 0; level <= 255; level++ {
		packed := uint32(level)<<24 | uint32(255-level)<<16 | uint32(level/2)<<8 | 0xFF
		if got := Encode(Decode(packed)); got != packed {
			t.Errorf("Level %d: round trip %#08x -> %#08x", level, packed, got)
		}
	}

	// Arbitrary values come back within one level
	for i := 0; i <= 1000; i++ {
		v := float64(i) / 1000
		c := core.NewVec3(v, 1-v, v*v)
		back := Decode(Encode(c))
		if math.Abs(back.X-c.X) > 1.0/255 || math.Abs(back.Y-c.Y) > 1.0/255 || math.Abs(back.Z-c.Z) > 1.0/255 {
			t.Errorf("Round trip of %v drifted to %v", c, back)
		}
	}
}

func TestAccumulate_FirstFrameHasFullWeight(t *testing.T) {
	pass := []core.Vec3{
		core.NewVec3(0.25, 0.5, 0.75),
		core.NewVec3(1, 0, 0.1),
	}
	// Whatever is in the history is ignored
	previous := []uint32{0xFFFFFFFF, 0x12345678}

	got, n, err := Accumulate(previous, pass, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 frame accumulated, got %d", n)
	}
	for i := range pass {
		if got[i] != Encode(pass[i]) {
			t.Errorf("Pixel %d: got %#08x, want %#08x", i, got[i], Encode(pass[i]))
		}
	}
}

func TestAccumulate_SteadyStateConverges(t *testing.T) {
	frame := []core.Vec3{
		core.NewVec3(0.25, 0.6, 0.9),
		core.NewVec3(0.1, 0.333, 0.777),
		core.NewVec3(0, 1, 0.5),
	}

	buffer := make([]uint32, len(frame))
	n := 0
	for i := 0; i < 100; i++ {
		var err error
		buffer, n, err = Accumulate(buffer, frame, n)
		if err != nil {
			t.Fatalf("Pass %d: unexpected error: %v", i, err)
		}
		for p := range frame {
			if buffer[p] != Encode(frame[p]) {
				t.Fatalf("Pass %d pixel %d drifted: got %#08x, want %#08x", i, p, buffer[p], Encode(frame[p]))
			}
		}
	}
	if n != 100 {
		t.Errorf("Expected 100 frames accumulated, got %d", n)
	}
}

func TestAccumulate_OnlineMean(t *testing.T) {
	passes := []float64{0.2, 0.6, 0.4, 0.8}

	buffer := make([]uint32, 1)
	n := 0
	sum := 0.0
	for i, v := range passes {
		var err error
		buffer, n, err = Accumulate(buffer, []core.Vec3{core.NewVec3(v, v, v)}, n)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		sum += v
		mean := sum / float64(i+1)

		// Each blend can add at most half a level of quantization error
		got := Decode(buffer[0]).X
		if math.Abs(got-mean) > float64(i+1)*0.5/255 {
			t.Errorf("After %d passes expected mean %.4f, got %.4f", i+1, mean, got)
		}
	}
}

func TestAccumulate_Errors(t *testing.T) {
	pass := []core.Vec3{{}, {}}

	if _, _, err := Accumulate(make([]uint32, 3), pass, 1); !errors.Is(err, ErrBufferSize) {
		t.Errorf("Expected ErrBufferSize, got %v", err)
	}
	if _, _, err := Accumulate(make([]uint32, 2), pass, -1); err == nil {
		t.Error("Expected an error for a negative frame count")
	}
	if _, err := AccumulateInto(make([]uint32, 1), make([]uint32, 2), pass, 0); !errors.Is(err, ErrBufferSize) {
		t.Errorf("Expected ErrBufferSize for a short destination, got %v", err)
	}
}

func TestFrameState_BlendSwapsBuffers(t *testing.T) {
	fs := NewFrameState(2, 1)
	front := fs.Current
	back := fs.Previous

	pass := []core.Vec3{core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1)}
	if err := fs.Blend(pass); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if &fs.Current[0] != &back[0] || &fs.Previous[0] != &front[0] {
		t.Error("Expected the buffers to swap after a blend")
	}
	if fs.FramesAccumulated != 1 {
		t.Errorf("Expected 1 frame accumulated, got %d", fs.FramesAccumulated)
	}
	if fs.Current[0] != 0xFF0000FF || fs.Current[1] != 0x0000FFFF {
		t.Errorf("Unexpected frame contents %#08x %#08x", fs.Current[0], fs.Current[1])
	}

	// A second identical pass leaves the frame unchanged
	if err := fs.Blend(pass); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fs.Current[0] != 0xFF0000FF || fs.Current[1] != 0x0000FFFF {
		t.Errorf("Frame changed on identical pass: %#08x %#08x", fs.Current[0], fs.Current[1])
	}

	if err := fs.Blend(pass[:1]); !errors.Is(err, ErrBufferSize) {
		t.Errorf("Expected ErrBufferSize for a short pass, got %v", err)
	}
	if fs.FramesAccumulated != 2 {
		t.Errorf("Failed blend must not count, got %d frames", fs.FramesAccumulated)
	}
}

func TestFrameState_Reset(t *testing.T) {
	fs := NewFrameState(1, 1)
	if err := fs.Blend([]core.Vec3{core.NewVec3(1, 1, 1)}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := fs.Blend([]core.Vec3{core.NewVec3(1, 1, 1)}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	fs.Reset()
	if fs.FramesAccumulated != 0 {
		t.Errorf("Expected frame count 0 after reset, got %d", fs.FramesAccumulated)
	}

	// After a reset the next pass replaces the history entirely
	if err := fs.Blend([]core.Vec3{core.NewVec3(0, 0, 0)}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fs.Current[0] != 0x000000FF {
		t.Errorf("Expected black after reset, got %#08x", fs.Current[0])
	}
}

func TestFrameState_Image(t *testing.T) {
	fs := NewFrameState(2, 2)
	pass := []core.Vec3{
		core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
		core.NewVec3(0, 0, 1), core.NewVec3(1, 1, 1),
	}
	if err := fs.Blend(pass); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	img := fs.Image()
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("Unexpected image bounds %v", img.Bounds())
	}

	tests := []struct {
		x, y       int
		r, g, b, a uint8
	}{
		{0, 0, 255, 0, 0, 255},
		{1, 0, 0, 255, 0, 255},
		{0, 1, 0, 0, 255, 255},
		{1, 1, 255, 255, 255, 255},
	}
	for _, tt := range tests {
		c := img.RGBAAt(tt.x, tt.y)
		if c.R != tt.r || c.G != tt.g || c.B != tt.b || c.A != tt.a {
			t.Errorf("Pixel (%d,%d): got %v", tt.x, tt.y, c)
		}
	}
}
