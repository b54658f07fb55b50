package trace

import (
	"image"
	"image/color"
	"math"
	"sync"
	"testing"

	"graph-digitizer/internal/calibration"
	"graph-digitizer/internal/transform"
	"graph-digitizer/pkg/colorutil"
	"graph-digitizer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lineColor = color.RGBA{R: 220, G: 30, B: 30, A: 255}

// blankPlot returns a white w x h image.
func blankPlot(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// pixelCalibration maps column c to x=c and row r to y=(h-1)-r.
func pixelCalibration(w, h int) *calibration.State {
	s := calibration.New()
	s.SetAnchor(calibration.AnchorXLeft, geometry.NewPoint2D(0, float64(h-1)))
	s.SetAnchor(calibration.AnchorXRight, geometry.NewPoint2D(float64(w-1), float64(h-1)))
	s.SetAnchor(calibration.AnchorYBottom, geometry.NewPoint2D(0, float64(h-1)))
	s.SetAnchor(calibration.AnchorYTop, geometry.NewPoint2D(0, 0))
	s.SetXRange(0, float64(w-1))
	s.SetYRange(0, float64(h-1))
	return s
}

func newTracer(t *testing.T, img *image.RGBA) *Tracer {
	t.Helper()
	b := img.Bounds()
	tf, err := transform.New(pixelCalibration(b.Dx(), b.Dy()))
	require.NoError(t, err)
	return NewForCalibration(NewImageBuffer(img), tf)
}

func target() colorutil.RGB {
	return colorutil.FromColor(lineColor)
}

func TestImageBuffer(t *testing.T) {
	img := blankPlot(4, 3)
	img.Set(2, 1, lineColor)

	buf := NewImageBuffer(img)
	assert.Equal(t, 4, buf.Width())
	assert.Equal(t, 3, buf.Height())
	assert.Equal(t, target(), buf.At(2, 1))
	assert.Equal(t, colorutil.White, buf.At(0, 0))

	// Non-RGBA images take the generic path and honour a non-zero origin.
	gray := image.NewGray(image.Rect(5, 5, 8, 7))
	gray.SetGray(6, 6, color.Gray{Y: 255})
	gbuf := NewImageBuffer(gray)
	assert.Equal(t, 3, gbuf.Width())
	assert.Equal(t, colorutil.White, gbuf.At(1, 1))
	assert.Equal(t, colorutil.Black, gbuf.At(0, 0))
}

func TestScanColumnsFindsLineRow(t *testing.T) {
	const w, h, row = 40, 30, 12
	img := blankPlot(w, h)
	for x := 0; x < w; x++ {
		img.Set(x, row, lineColor)
	}
	tr := newTracer(t, img)

	hits := tr.ScanColumns(target())
	require.Len(t, hits, w)
	for i, p := range hits {
		assert.Equal(t, image.Point{X: i, Y: row}, p)
	}

	points, err := tr.TraceDataset(target(), false)
	require.NoError(t, err)
	require.Len(t, points, w)
	for i, p := range points {
		assert.InDelta(t, float64(i), p.X, 1e-9)
		assert.InDelta(t, float64(h-1-row), p.Y, 1e-9)
	}
}

func TestScanColumnsAlwaysAcceptsBestRow(t *testing.T) {
	img := blankPlot(10, 8)
	tr := newTracer(t, img)

	hits := tr.ScanColumns(target())
	require.Len(t, hits, 10)
	for _, p := range hits {
		assert.Equal(t, 0, p.Y, "ties resolve to the top row")
	}
}

func TestSpanClamped(t *testing.T) {
	img := blankPlot(10, 8)
	tf, err := transform.New(pixelCalibration(10, 8))
	require.NoError(t, err)

	tr := New(NewImageBuffer(img), tf, -5, 100)
	start, end := tr.Span()
	assert.Equal(t, 0, start)
	assert.Equal(t, 9, end)
	assert.Equal(t, 10, tr.ColumnCount())

	empty := New(NewImageBuffer(img), tf, 7, 3)
	assert.Equal(t, 0, empty.ColumnCount())
	assert.Empty(t, empty.ScanColumns(target()))
}

func TestWalkFollowsSlope(t *testing.T) {
	const w, h = 80, 50
	rowAt := func(x int) int { return 10 + x/4 }
	img := blankPlot(w, h)
	for x := 0; x < w; x++ {
		img.Set(x, rowAt(x), lineColor)
	}
	tr := newTracer(t, img)

	seed := image.Point{X: 20, Y: rowAt(20)}
	hits, err := tr.WalkFromSeed(seed, target(), DefaultSeedOptions())
	require.NoError(t, err)
	require.Len(t, hits, w)
	for i, p := range hits {
		assert.Equal(t, image.Point{X: i, Y: rowAt(i)}, p)
	}
}

// dashedLine draws row across all columns except gapStart..gapStart+gapLen-1.
func dashedLine(w, h, row, gapStart, gapLen int) *image.RGBA {
	img := blankPlot(w, h)
	for x := 0; x < w; x++ {
		if x >= gapStart && x < gapStart+gapLen {
			continue
		}
		img.Set(x, row, lineColor)
	}
	return img
}

func TestWalkGapBridging(t *testing.T) {
	const w, h, row = 60, 30, 15
	img := dashedLine(w, h, row, 30, 2)
	tr := newTracer(t, img)
	seed := image.Point{X: 10, Y: row}

	tests := []struct {
		name      string
		maxGap    int
		lookahead int
		lastCol   int
		count     int
	}{
		{"lookahead bridges", 2, 2, w - 1, w - 2},
		{"misses bridge without lookahead", 2, 0, w - 1, w - 2},
		{"lookahead ignores max gap", 0, 2, w - 1, w - 2},
		{"stops at gap", 1, 0, 29, 30},
		{"short lookahead stops", 0, 1, 29, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := SeedOptions{WindowHalfHeight: 3, Tolerance: 0.1, MaxGap: tt.maxGap, Lookahead: tt.lookahead}
			hits, err := tr.WalkFromSeed(seed, target(), opts)
			require.NoError(t, err)
			require.Len(t, hits, tt.count)
			assert.Equal(t, tt.lastCol, hits[len(hits)-1].X)
			assert.Equal(t, 0, hits[0].X)
			for i, p := range hits {
				assert.Equal(t, row, p.Y)
				assert.NotContains(t, []int{30, 31}, p.X, "no points inside the gap")
				if i > 0 {
					assert.Greater(t, p.X, hits[i-1].X)
				}
			}
		})
	}
}

func TestWalkStaysOnSeededCurve(t *testing.T) {
	const w, h = 50, 40
	img := blankPlot(w, h)
	for x := 0; x < w; x++ {
		img.Set(x, 5, lineColor)
		img.Set(x, 30, lineColor)
	}
	tr := newTracer(t, img)

	hits, err := tr.WalkFromSeed(image.Point{X: 25, Y: 30}, target(), DefaultSeedOptions())
	require.NoError(t, err)
	require.Len(t, hits, w)
	for _, p := range hits {
		assert.Equal(t, 30, p.Y)
	}
}

func TestWalkRespectsSpan(t *testing.T) {
	const w, h, row = 50, 20, 8
	img := dashedLine(w, h, row, w, 0)
	tf, err := transform.New(pixelCalibration(w, h))
	require.NoError(t, err)
	tr := New(NewImageBuffer(img), tf, 10, 40)

	hits, err := tr.WalkFromSeed(image.Point{X: 20, Y: row}, target(), DefaultSeedOptions())
	require.NoError(t, err)
	require.Len(t, hits, 31)
	assert.Equal(t, 10, hits[0].X)
	assert.Equal(t, 40, hits[len(hits)-1].X)
}

func TestWalkSeedAlwaysIncluded(t *testing.T) {
	img := blankPlot(20, 20)
	tr := newTracer(t, img)

	seed := image.Point{X: 7, Y: 4}
	hits, err := tr.WalkFromSeed(seed, target(), DefaultSeedOptions())
	require.NoError(t, err)
	assert.Equal(t, []image.Point{seed}, hits)
}

func TestWalkErrors(t *testing.T) {
	img := blankPlot(20, 20)
	tr := newTracer(t, img)

	_, err := tr.WalkFromSeed(image.Point{X: 20, Y: 3}, target(), DefaultSeedOptions())
	assert.ErrorIs(t, err, ErrSeedOutOfBounds)
	_, err = tr.SampleColor(image.Point{X: -1, Y: 0})
	assert.ErrorIs(t, err, ErrSeedOutOfBounds)

	bad := DefaultSeedOptions()
	bad.WindowHalfHeight = 0
	_, err = tr.WalkFromSeed(image.Point{X: 2, Y: 3}, target(), bad)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestTraceFromSeedDomainError(t *testing.T) {
	const w, h, row = 30, 20, 6
	img := dashedLine(w, h, row, w, 0)
	cal := pixelCalibration(w, h)
	cal.SetY2Range(0, 100)
	cal.SetY2Log(true)
	tf, err := transform.New(cal)
	require.NoError(t, err)
	tr := NewForCalibration(NewImageBuffer(img), tf)

	seed := image.Point{X: 3, Y: row}
	_, err = tr.TraceFromSeed(seed, target(), true, DefaultSeedOptions())
	assert.ErrorIs(t, err, transform.ErrDomain)

	points, err := tr.TraceFromSeed(seed, target(), false, DefaultSeedOptions())
	require.NoError(t, err)
	assert.Len(t, points, w)
}

func TestSampleColorAsTarget(t *testing.T) {
	const w, h, row = 30, 20, 9
	img := blankPlot(w, h)
	aa := color.RGBA{R: 40, G: 90, B: 200, A: 255}
	for x := 0; x < w; x++ {
		img.Set(x, row, aa)
	}
	tr := newTracer(t, img)
	seed := image.Point{X: 12, Y: row}

	c, err := tr.SampleColor(seed)
	require.NoError(t, err)
	opts := DefaultSeedOptions()
	opts.Tolerance = 0.01

	hits, err := tr.WalkFromSeed(seed, c, opts)
	require.NoError(t, err)
	assert.Len(t, hits, w)
}

func TestConcurrentSeeds(t *testing.T) {
	const w, h = 60, 60
	rows := []int{10, 30, 50}
	img := blankPlot(w, h)
	for _, r := range rows {
		for x := 0; x < w; x++ {
			img.Set(x, r, lineColor)
		}
	}
	tr := newTracer(t, img)

	results := make([][]image.Point, len(rows))
	errs := make([]error, len(rows))
	var wg sync.WaitGroup
	for i, r := range rows {
		wg.Add(1)
		go func(i, r int) {
			defer wg.Done()
			results[i], errs[i] = tr.WalkFromSeed(image.Point{X: w / 2, Y: r}, target(), DefaultSeedOptions())
		}(i, r)
	}
	wg.Wait()

	for i, r := range rows {
		require.NoError(t, errs[i])
		require.Len(t, results[i], w)
		for _, p := range results[i] {
			assert.Equal(t, r, p.Y)
		}
	}
}

func TestWalkWindowLargerThanImage(t *testing.T) {
	const w, h = 40, 20
	img := blankPlot(w, h)
	for x := 0; x < w; x++ {
		img.Set(x, 12, lineColor)
	}
	tr := newTracer(t, img)

	for _, half := range []int{h, 1 << 40, math.MaxInt} {
		opts := SeedOptions{WindowHalfHeight: half, Tolerance: 0.1, MaxGap: 1, Lookahead: 1}
		hits, err := tr.WalkFromSeed(image.Point{X: 20, Y: 12}, target(), opts)
		require.NoError(t, err, "half height %d", half)
		require.Len(t, hits, w, "half height %d", half)
		for _, p := range hits {
			assert.Equal(t, 12, p.Y)
		}
	}
}
