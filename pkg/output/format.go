package output

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// ErrUnknownFormat is returned for image formats no encoder exists for
var ErrUnknownFormat = errors.New("unknown image format")

// Format names an output image encoding
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp" // lossless
	FormatTGA  Format = "tga"
)

// Formats lists every supported format
func Formats() []Format {
	return []Format{FormatPNG, FormatWebP, FormatTGA}
}

// ParseFormat accepts a format name or file extension, case-insensitively
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	case "tga", "targa":
		return FormatTGA, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Extension returns the file extension for the format, including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// Encode writes img to w in the given format
func Encode(w io.Writer, img image.Image, format Format) error {
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatWebP:
		err = nativewebp.Encode(w, img, nil)
	case FormatTGA:
		err = tga.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
	}
	if err != nil {
		return fmt.Errorf("%s encode: %w", format, err)
	}
	return nil
}
