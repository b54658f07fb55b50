// Package trace reconstructs plotted curves from raster images by color
// matching, and cleans up the resulting point lists.
package trace

import (
	"image"

	"graph-digitizer/pkg/colorutil"
)

// Buffer is a read-only grid of RGB samples addressed by (column, row).
// Implementations must not change while a trace is running.
type Buffer interface {
	Width() int
	Height() int
	At(col, row int) colorutil.RGB
}

// ImageBuffer is an immutable Buffer snapshot of an image.Image.
type ImageBuffer struct {
	width  int
	height int
	pix    []colorutil.RGB
}

// NewImageBuffer copies img into a normalized RGB grid. Column 0, row 0 is
// the top-left pixel of img.Bounds().
func NewImageBuffer(img image.Image) *ImageBuffer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	buf := &ImageBuffer{width: w, height: h, pix: make([]colorutil.RGB, w*h)}

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < h; y++ {
			row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
			for x := 0; x < w; x++ {
				buf.pix[y*w+x] = colorutil.FromBytes(row[x*4], row[x*4+1], row[x*4+2])
			}
		}
		return buf
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf.pix[y*w+x] = colorutil.FromColor(img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return buf
}

// Width returns the number of columns.
func (b *ImageBuffer) Width() int { return b.width }

// Height returns the number of rows.
func (b *ImageBuffer) Height() int { return b.height }

// At returns the sample at (col, row). Out-of-range reads panic.
func (b *ImageBuffer) At(col, row int) colorutil.RGB {
	return b.pix[row*b.width+col]
}

// Contains reports whether p lies inside buf.
func Contains(buf Buffer, p image.Point) bool {
	return p.X >= 0 && p.X < buf.Width() && p.Y >= 0 && p.Y < buf.Height()
}
