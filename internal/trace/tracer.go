package trace

import (
	"fmt"
	"image"

	"graph-digitizer/internal/transform"
	"graph-digitizer/pkg/colorutil"
	"graph-digitizer/pkg/geometry"

	"gonum.org/v1/gonum/floats"
)

// Tracer finds curve pixels in a Buffer and converts them to data space.
// It only reads from the buffer and transformer, so one Tracer may serve
// several goroutines as long as the buffer stays unmodified.
type Tracer struct {
	buf    Buffer
	tf     *transform.Transformer
	startX int
	endX   int
}

// New creates a Tracer over columns [startX, endX], clamped to the buffer.
func New(buf Buffer, tf *transform.Transformer, startX, endX int) *Tracer {
	return &Tracer{
		buf:    buf,
		tf:     tf,
		startX: max(0, startX),
		endX:   min(buf.Width()-1, endX),
	}
}

// NewForCalibration creates a Tracer spanning the X anchors of tf.
func NewForCalibration(buf Buffer, tf *transform.Transformer) *Tracer {
	start, end := tf.XSpan()
	return New(buf, tf, start, end)
}

// Span returns the inclusive column range the tracer scans.
func (t *Tracer) Span() (start, end int) {
	return t.startX, t.endX
}

// ColumnCount returns the number of columns in the span.
func (t *Tracer) ColumnCount() int {
	return max(0, t.endX-t.startX+1)
}

// SampleColor returns the buffer color at p, the usual target for a seeded trace.
func (t *Tracer) SampleColor(p image.Point) (colorutil.RGB, error) {
	if !Contains(t.buf, p) {
		return colorutil.RGB{}, fmt.Errorf("%w: %v", ErrSeedOutOfBounds, p)
	}
	return t.buf.At(p.X, p.Y), nil
}

// ScanColumns returns, for every column in the span, the row whose color is
// closest to target. The best row is always taken, however poor the match.
func (t *Tracer) ScanColumns(target colorutil.RGB) []image.Point {
	h := t.buf.Height()
	if h == 0 || t.ColumnCount() == 0 {
		return nil
	}

	hits := make([]image.Point, 0, t.ColumnCount())
	dists := make([]float64, h)
	for x := t.startX; x <= t.endX; x++ {
		row, _ := t.bestRow(x, 0, h-1, target, dists)
		hits = append(hits, image.Point{X: x, Y: row})
	}
	return hits
}

// TraceDataset runs ScanColumns and converts the hits to data space.
// The result has exactly one point per scanned column.
func (t *Tracer) TraceDataset(target colorutil.RGB, useSecondary bool) ([]geometry.Point2D, error) {
	return t.toData(t.ScanColumns(target), useSecondary)
}

// bestRow returns the row in [lo, hi] of column x closest to target, and its
// distance. Ties go to the topmost row. dists must hold hi-lo+1 entries.
func (t *Tracer) bestRow(x, lo, hi int, target colorutil.RGB, dists []float64) (int, float64) {
	d := dists[:hi-lo+1]
	for i := range d {
		d[i] = colorutil.Distance(target, t.buf.At(x, lo+i))
	}
	i := floats.MinIdx(d)
	return lo + i, d[i]
}

func (t *Tracer) inSpan(x int) bool {
	return x >= t.startX && x <= t.endX
}

// toData converts pixel hits to data points, stopping at the first error.
func (t *Tracer) toData(hits []image.Point, useSecondary bool) ([]geometry.Point2D, error) {
	points := make([]geometry.Point2D, 0, len(hits))
	for _, p := range hits {
		d, err := t.tf.PixelToData(float64(p.X), float64(p.Y), useSecondary)
		if err != nil {
			return nil, fmt.Errorf("column %d row %d: %w", p.X, p.Y, err)
		}
		points = append(points, d)
	}
	return points, nil
}
