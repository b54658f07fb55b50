package trace

import (
	"errors"
	"fmt"
	"image"

	"graph-digitizer/pkg/colorutil"
	"graph-digitizer/pkg/geometry"
)

// ErrSeedOutOfBounds is returned when a seed pixel lies outside the buffer.
var ErrSeedOutOfBounds = errors.New("seed outside image")

// WalkFromSeed follows a curve left and right from seed. At each column it
// searches a vertical window around the previous hit for the pixel closest
// to target and accepts it when within opts.Tolerance. Missed columns may be
// bridged by looking up to opts.Lookahead columns further on; a walk stops
// after more than opts.MaxGap consecutive misses or at the end of the span.
//
// The seed is always part of the result. Hits are ordered by column.
func (t *Tracer) WalkFromSeed(seed image.Point, target colorutil.RGB, opts SeedOptions) ([]image.Point, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if !Contains(t.buf, seed) {
		return nil, fmt.Errorf("%w: %v", ErrSeedOutOfBounds, seed)
	}

	dists := make([]float64, 2*min(opts.WindowHalfHeight, t.buf.Height())+1)
	left := t.walk(seed, -1, target, opts, dists)
	right := t.walk(seed, 1, target, opts, dists)

	hits := make([]image.Point, 0, len(left)+1+len(right))
	for i := len(left) - 1; i >= 0; i-- {
		hits = append(hits, left[i])
	}
	hits = append(hits, seed)
	hits = append(hits, right...)
	return hits, nil
}

// TraceFromSeed runs WalkFromSeed and converts the hits to data space.
func (t *Tracer) TraceFromSeed(seed image.Point, target colorutil.RGB, useSecondary bool, opts SeedOptions) ([]geometry.Point2D, error) {
	hits, err := t.WalkFromSeed(seed, target, opts)
	if err != nil {
		return nil, err
	}
	return t.toData(hits, useSecondary)
}

// walk collects hits in one direction (dir = -1 or +1), nearest first.
func (t *Tracer) walk(seed image.Point, dir int, target colorutil.RGB, opts SeedOptions, dists []float64) []image.Point {
	var hits []image.Point
	prevRow := seed.Y
	misses := 0

	for x := seed.X + dir; t.inSpan(x); {
		if row, ok := t.matchNear(x, prevRow, target, opts, dists); ok {
			hits = append(hits, image.Point{X: x, Y: row})
			prevRow = row
			misses = 0
			x += dir
			continue
		}

		// Bridge dashes: jump straight to the next matching column.
		if xa, row, ok := t.lookahead(x, dir, prevRow, target, opts, dists); ok {
			hits = append(hits, image.Point{X: xa, Y: row})
			prevRow = row
			misses = 0
			x = xa + dir
			continue
		}

		misses++
		if misses > opts.MaxGap {
			break
		}
		x += dir
	}
	return hits
}

// matchNear searches column x within the window around prevRow. The window
// never extends past the buffer, whatever opts.WindowHalfHeight says.
func (t *Tracer) matchNear(x, prevRow int, target colorutil.RGB, opts SeedOptions, dists []float64) (int, bool) {
	win := min(opts.WindowHalfHeight, t.buf.Height())
	lo := max(0, prevRow-win)
	hi := min(t.buf.Height()-1, prevRow+win)
	if lo > hi {
		return 0, false
	}
	row, d := t.bestRow(x, lo, hi, target, dists)
	return row, d <= opts.Tolerance
}

// lookahead tries columns x+dir .. x+dir*opts.Lookahead, keeping the window
// centred on prevRow, and returns the first acceptable one.
func (t *Tracer) lookahead(x, dir, prevRow int, target colorutil.RGB, opts SeedOptions, dists []float64) (int, int, bool) {
	for h := 1; h <= opts.Lookahead; h++ {
		xa := x + dir*h
		if !t.inSpan(xa) {
			break
		}
		if row, ok := t.matchNear(xa, prevRow, target, opts, dists); ok {
			return xa, row, true
		}
	}
	return 0, 0, false
}
