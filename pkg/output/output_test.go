package output

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 60), uint8(y * 100), 200, 255})
		}
	}
	return img
}

func sameRGB(t *testing.T, want *image.RGBA, got image.Image) {
	t.Helper()
	if got.Bounds().Dx() != want.Bounds().Dx() || got.Bounds().Dy() != want.Bounds().Dy() {
		t.Fatalf("Bounds differ: want %v, got %v", want.Bounds(), got.Bounds())
	}
	for y := 0; y < want.Bounds().Dy(); y++ {
		for x := 0; x < want.Bounds().Dx(); x++ {
			w := want.RGBAAt(x, y)
			r, g, b, _ := got.At(got.Bounds().Min.X+x, got.Bounds().Min.Y+y).RGBA()
			if uint8(r>>8) != w.R || uint8(g>>8) != w.G || uint8(b>>8) != w.B {
				t.Errorf("Pixel (%d,%d): want %v, got (%d,%d,%d)", x, y, w, r>>8, g>>8, b>>8)
			}
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"png", FormatPNG},
		{".PNG", FormatPNG},
		{"webp", FormatWebP},
		{"tga", FormatTGA},
		{"Targa", FormatTGA},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("bmp"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	img := testImage()

	decoders := map[Format]func(*bytes.Buffer) (image.Image, error){
		FormatPNG:  func(b *bytes.Buffer) (image.Image, error) { return png.Decode(b) },
		FormatWebP: func(b *bytes.Buffer) (image.Image, error) { return webp.Decode(b) },
		FormatTGA:  func(b *bytes.Buffer) (image.Image, error) { return tga.Decode(b) },
	}

	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, img, format); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			decoded, err := decoders[format](&buf)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			sameRGB(t, img, decoded)
		})
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testImage(), Format("gif")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func TestRescale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	scaled := Rescale(img, 4, 2)
	if scaled.Bounds().Dx() != 4 || scaled.Bounds().Dy() != 2 {
		t.Fatalf("Unexpected bounds %v", scaled.Bounds())
	}
	// A flat image stays flat
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if c := scaled.RGBAAt(x, y); c != (color.RGBA{255, 255, 255, 255}) {
				t.Errorf("Pixel (%d,%d): expected white, got %v", x, y, c)
			}
		}
	}

	if Rescale(img, 8, 4) != img {
		t.Error("Expected the same image when the size already matches")
	}
	if Rescale(img, 0, 4) != img {
		t.Error("Expected the same image for a non-positive size")
	}
}

func TestScaleToFit(t *testing.T) {
	bounds := image.Rect(0, 0, 700, 400)
	tests := []struct {
		name         string
		maxW, maxH   int
		wantW, wantH int
	}{
		{"width bound", 350, 0, 350, 200},
		{"height bound", 0, 100, 175, 100},
		{"both, width tighter", 70, 1000, 70, 40},
		{"both, height tighter", 7000, 40, 70, 40},
		{"no limit", 0, 0, 700, 400},
		{"upscale", 1400, 0, 1400, 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ScaleToFit(bounds, tt.maxW, tt.maxH)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFileSink_WriteFrame(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cornell")
	sink := NewFileSink(dir, "render", FormatPNG)
	sink.KeepPasses = true

	img := testImage()
	for pass := 1; pass <= 2; pass++ {
		if err := sink.WriteFrame(img, pass); err != nil {
			t.Fatalf("Pass %d: WriteFrame failed: %v", pass, err)
		}
	}

	for _, path := range []string{sink.Path(), sink.PassPath(1), sink.PassPath(2)} {
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("Expected %s to exist: %v", path, err)
		}
		decoded, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("Decode %s: %v", path, err)
		}
		sameRGB(t, img, decoded)
	}

	if filepath.Base(sink.PassPath(12)) != "render_pass_0012.png" {
		t.Errorf("Unexpected pass file name %s", sink.PassPath(12))
	}
	if _, err := os.Stat(sink.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("Expected no temporary file to remain, got %v", err)
	}
}

func TestFileSink_Rescales(t *testing.T) {
	sink := NewFileSink(t.TempDir(), "small", FormatTGA)
	sink.MaxWidth = 2

	if err := sink.WriteFrame(testImage(), 1); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	f, err := os.Open(sink.Path())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	cfg, err := tga.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if cfg.Width != 2 || cfg.Height != 2 {
		t.Errorf("Expected 2x2 (4x3 scaled to width 2), got %dx%d", cfg.Width, cfg.Height)
	}
}

type failingSink struct{ err error }

func (f failingSink) WriteFrame(*image.RGBA, int) error { return f.err }

type countingSink struct{ frames []int }

func (c *countingSink) WriteFrame(_ *image.RGBA, pass int) error {
	c.frames = append(c.frames, pass)
	return nil
}

func TestMultiSink(t *testing.T) {
	first := &countingSink{}
	boom := errors.New("disk full")
	last := &countingSink{}

	ms := MultiSink{first, failingSink{boom}, last}
	if err := ms.WriteFrame(testImage(), 3); !errors.Is(err, boom) {
		t.Errorf("Expected the sink error, got %v", err)
	}
	if len(first.frames) != 1 || first.frames[0] != 3 {
		t.Errorf("Expected first sink to get pass 3, got %v", first.frames)
	}
	if len(last.frames) != 0 {
		t.Errorf("Expected sinks after a failure to be skipped, got %v", last.frames)
	}
}
