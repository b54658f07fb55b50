package dataset

import (
	"math"
	"sort"

	"graph-digitizer/pkg/geometry"
)

// Snapper moves X values onto the nearest of a fixed list of grid values,
// so that several traced curves share the same X samples.
type Snapper struct {
	values []float64
}

// NewSnapper returns a Snapper with the given grid values.
func NewSnapper(values ...float64) *Snapper {
	s := &Snapper{}
	s.SetValues(values)
	return s
}

// SetValues replaces the grid values.
func (s *Snapper) SetValues(values []float64) {
	s.values = append(s.values[:0], values...)
	sort.Float64s(s.values)
}

// Add inserts one grid value.
func (s *Snapper) Add(x float64) {
	i := sort.SearchFloat64s(s.values, x)
	s.values = append(s.values, 0)
	copy(s.values[i+1:], s.values[i:])
	s.values[i] = x
}

// Clear removes all grid values; SnapX then returns its input.
func (s *Snapper) Clear() {
	s.values = s.values[:0]
}

// Values returns a copy of the sorted grid values.
func (s *Snapper) Values() []float64 {
	return append([]float64(nil), s.values...)
}

// SnapX returns the grid value nearest to x, or x when the grid is empty.
func (s *Snapper) SnapX(x float64) float64 {
	if len(s.values) == 0 {
		return x
	}
	i := sort.SearchFloat64s(s.values, x)
	switch {
	case i == 0:
		return s.values[0]
	case i == len(s.values):
		return s.values[len(s.values)-1]
	}
	lo, hi := s.values[i-1], s.values[i]
	if x-lo <= hi-x {
		return lo
	}
	return hi
}

// SnapPoint snaps the X of p, leaving Y alone.
func (s *Snapper) SnapPoint(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{X: s.SnapX(p.X), Y: p.Y}
}

// SnapAll snaps every point. When several points land on the same grid value
// only the one originally closest to it is kept, so the result stays
// one-point-per-X.
func (s *Snapper) SnapAll(points []geometry.Point2D) []geometry.Point2D {
	if len(s.values) == 0 {
		return append([]geometry.Point2D(nil), points...)
	}

	type pick struct {
		idx  int
		dist float64
	}
	best := make(map[float64]pick)
	order := make([]float64, 0, len(points))
	for i, p := range points {
		gx := s.SnapX(p.X)
		d := math.Abs(gx - p.X)
		cur, ok := best[gx]
		if !ok {
			order = append(order, gx)
		}
		if !ok || d < cur.dist {
			best[gx] = pick{idx: i, dist: d}
		}
	}

	out := make([]geometry.Point2D, 0, len(order))
	for _, gx := range order {
		out = append(out, geometry.Point2D{X: gx, Y: points[best[gx].idx].Y})
	}
	return out
}
