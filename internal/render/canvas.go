// Package render draws grid products onto world maps and writes PNG images.
//
// Every render call builds a fresh [Canvas] and hands it back to the caller.
// Nothing is shared between calls, so figures never accumulate earlier draws.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DPI of rendered images.
const DPI = 100

// Canvas is one raster figure.
type Canvas struct {
	img *vgimg.Canvas
}

// NewCanvas allocates a white figure of the given size.
func NewCanvas(w, h vg.Length) *Canvas {
	return &Canvas{img: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(DPI))}
}

// Draw returns the drawing area covering the whole figure.
func (c *Canvas) Draw() draw.Canvas {
	return draw.New(c.img)
}

// WritePNG encodes the figure as PNG.
func (c *Canvas) WritePNG(w io.Writer) error {
	if _, err := (vgimg.PngCanvas{Canvas: c.img}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Save writes the figure to path, creating parent folders as needed.
func (c *Canvas) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output folder: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := c.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
