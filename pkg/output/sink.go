package output

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// FrameSink receives accumulated frames as passes complete
type FrameSink interface {
	WriteFrame(img *image.RGBA, pass int) error
}

// FileSink writes frames to disk. The latest frame always lands in
// <Dir>/<Name><ext>; with KeepPasses every pass also gets its own file.
type FileSink struct {
	Dir        string
	Name       string
	Format     Format
	MaxWidth   int  // Rescale to fit before encoding (0 = native size)
	MaxHeight  int  // Rescale to fit before encoding (0 = native size)
	KeepPasses bool // Also write <Name>_pass_NNNN<ext>
}

// NewFileSink creates a sink writing <dir>/<name> in the given format
func NewFileSink(dir, name string, format Format) *FileSink {
	return &FileSink{Dir: dir, Name: name, Format: format}
}

// Path returns the file the latest frame is written to
func (fs *FileSink) Path() string {
	return filepath.Join(fs.Dir, fs.Name+fs.Format.Extension())
}

// PassPath returns the file a given pass is kept in
func (fs *FileSink) PassPath(pass int) string {
	return filepath.Join(fs.Dir, fmt.Sprintf("%s_pass_%04d%s", fs.Name, pass, fs.Format.Extension()))
}

// WriteFrame encodes the frame and replaces the latest file
func (fs *FileSink) WriteFrame(img *image.RGBA, pass int) error {
	if err := os.MkdirAll(fs.Dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if fs.MaxWidth > 0 || fs.MaxHeight > 0 {
		w, h := ScaleToFit(img.Bounds(), fs.MaxWidth, fs.MaxHeight)
		img = Rescale(img, w, h)
	}

	if fs.KeepPasses {
		if err := writeFile(fs.PassPath(pass), img, fs.Format); err != nil {
			return err
		}
	}
	return writeFile(fs.Path(), img, fs.Format)
}

// writeFile encodes into a temporary file first so readers never see a partial frame
func writeFile(path string, img image.Image, format Format) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}

	if err := Encode(f, img, format); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// MultiSink fans a frame out to several sinks, stopping at the first error
type MultiSink []FrameSink

func (ms MultiSink) WriteFrame(img *image.RGBA, pass int) error {
	for _, sink := range ms {
		if err := sink.WriteFrame(img, pass); err != nil {
			return err
		}
	}
	return nil
}
