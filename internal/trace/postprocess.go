package trace

import (
	"math"
	"sort"

	"graph-digitizer/internal/calibration"
	"graph-digitizer/pkg/geometry"
)

// PostProcess applies MedianSmooth and then RejectOutliers. The jump limit is
// opts.OutlierFraction of the span of yRange, the Y axis the points belong to.
func PostProcess(points []geometry.Point2D, opts PostOptions, yRange calibration.Range) ([]geometry.Point2D, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	smoothed := MedianSmooth(points, opts.MedianWindow)
	return RejectOutliers(smoothed, opts.OutlierFraction*yRange.Span()), nil
}

// MedianSmooth replaces each Y with the median of the Y values in a window
// of the given size centred on it, clamped at both ends of the sequence.
// Where clamping leaves an even count the upper middle value is used.
// X values are untouched. A window of 1 or less returns a copy.
func MedianSmooth(points []geometry.Point2D, window int) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	copy(out, points)
	if window <= 1 || len(points) < 2 {
		return out
	}

	half := window / 2
	buf := make([]float64, 0, window)
	for i := range points {
		a := max(0, i-half)
		b := min(len(points)-1, i+half)
		buf = buf[:0]
		for j := a; j <= b; j++ {
			buf = append(buf, points[j].Y)
		}
		sort.Float64s(buf)
		out[i].Y = buf[len(buf)/2]
	}
	return out
}

// RejectOutliers drops every point whose Y differs from the previously kept
// point by more than maxJump. The first point is always kept. A maxJump of
// zero or less disables rejection.
func RejectOutliers(points []geometry.Point2D, maxJump float64) []geometry.Point2D {
	if len(points) == 0 {
		return []geometry.Point2D{}
	}
	if maxJump <= 0 {
		maxJump = math.Inf(1)
	}

	kept := make([]geometry.Point2D, 0, len(points))
	kept = append(kept, points[0])
	last := points[0]
	for _, p := range points[1:] {
		if math.Abs(p.Y-last.Y) > maxJump {
			continue
		}
		kept = append(kept, p)
		last = p
	}
	return kept
}
