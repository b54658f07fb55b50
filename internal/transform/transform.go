// Package transform converts between image pixel coordinates and plot data
// coordinates using a completed calibration.
package transform

import (
	"errors"
	"fmt"
	"math"

	"graph-digitizer/internal/calibration"
	"graph-digitizer/pkg/geometry"
)

var (
	// ErrInvalidCalibration is returned when building a Transformer from an
	// incomplete calibration.
	ErrInvalidCalibration = errors.New("calibration incomplete: all four anchors are required")

	// ErrDomain is returned when a log axis is asked to map a non-positive
	// value, or its bounds are not both positive.
	ErrDomain = errors.New("value outside log axis domain")
)

// Transformer maps between pixel space and data space. It is a snapshot of
// the calibration at construction time, so later edits to the calibration
// do not affect it. A Transformer is immutable and safe for concurrent use.
type Transformer struct {
	xLeft, xRight float64 // pixel X of the X anchors
	yBottom, yTop float64 // pixel Y of the Y anchors
	x, y          calibration.Range
	y2            calibration.Range
	hasY2         bool
	generation    uint64
}

// New builds a Transformer from a calibrated state.
func New(cal *calibration.State) (*Transformer, error) {
	if cal == nil || !cal.IsCalibrated() {
		return nil, ErrInvalidCalibration
	}

	left, _ := cal.Anchor(calibration.AnchorXLeft)
	right, _ := cal.Anchor(calibration.AnchorXRight)
	bottom, _ := cal.Anchor(calibration.AnchorYBottom)
	top, _ := cal.Anchor(calibration.AnchorYTop)

	t := &Transformer{
		xLeft:      left.X,
		xRight:     right.X,
		yBottom:    bottom.Y,
		yTop:       top.Y,
		x:          cal.X(),
		y:          cal.Y(),
		generation: cal.Generation(),
	}
	t.y2, t.hasY2 = cal.Y2()
	return t, nil
}

// Generation returns the calibration generation the Transformer was built from.
func (t *Transformer) Generation() uint64 {
	return t.generation
}

// YRange returns the Y range used for useSecondary. The secondary range
// falls back to the primary one when it is not configured.
func (t *Transformer) YRange(useSecondary bool) calibration.Range {
	if useSecondary && t.hasY2 {
		return t.y2
	}
	return t.y
}

// XRange returns the X axis range.
func (t *Transformer) XRange() calibration.Range {
	return t.x
}

// XSpan returns the integer pixel columns covered by the X anchors, low to high.
func (t *Transformer) XSpan() (start, end int) {
	lo := math.Min(t.xLeft, t.xRight)
	hi := math.Max(t.xLeft, t.xRight)
	return int(math.Floor(lo)), int(math.Ceil(hi))
}

// DataToPixel maps a data-space point to a pixel position.
func (t *Transformer) DataToPixel(x, y float64, useSecondary bool) (geometry.Point2D, error) {
	fx, err := fraction(x, t.x)
	if err != nil {
		return geometry.Point2D{}, fmt.Errorf("x axis: %w", err)
	}
	fy, err := fraction(y, t.YRange(useSecondary))
	if err != nil {
		return geometry.Point2D{}, fmt.Errorf("%s axis: %w", yAxisName(useSecondary && t.hasY2), err)
	}

	return geometry.Point2D{
		X: geometry.Lerp(t.xLeft, t.xRight, fx),
		Y: geometry.Lerp(t.yBottom, t.yTop, fy),
	}, nil
}

// PixelToData maps a pixel position to a data-space point.
func (t *Transformer) PixelToData(px, py float64, useSecondary bool) (geometry.Point2D, error) {
	fx := geometry.InverseLerp(t.xLeft, t.xRight, px)
	fy := geometry.InverseLerp(t.yBottom, t.yTop, py)

	x, err := invert(fx, t.x)
	if err != nil {
		return geometry.Point2D{}, fmt.Errorf("x axis: %w", err)
	}
	y, err := invert(fy, t.YRange(useSecondary))
	if err != nil {
		return geometry.Point2D{}, fmt.Errorf("%s axis: %w", yAxisName(useSecondary && t.hasY2), err)
	}
	return geometry.Point2D{X: x, Y: y}, nil
}

// fraction returns the position of v within r, 0 at Min and 1 at Max.
func fraction(v float64, r calibration.Range) (float64, error) {
	if !r.Log {
		return geometry.InverseLerp(r.Min, r.Max, v), nil
	}
	if err := checkLogBounds(r); err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: value %g", ErrDomain, v)
	}
	return geometry.InverseLerp(math.Log10(r.Min), math.Log10(r.Max), math.Log10(v)), nil
}

// invert is the inverse of fraction.
func invert(f float64, r calibration.Range) (float64, error) {
	if !r.Log {
		return geometry.Lerp(r.Min, r.Max, f), nil
	}
	if err := checkLogBounds(r); err != nil {
		return 0, err
	}
	return math.Pow(10, geometry.Lerp(math.Log10(r.Min), math.Log10(r.Max), f)), nil
}

func checkLogBounds(r calibration.Range) error {
	if r.Min <= 0 || r.Max <= 0 {
		return fmt.Errorf("%w: bounds [%g, %g]", ErrDomain, r.Min, r.Max)
	}
	return nil
}

func yAxisName(secondary bool) string {
	if secondary {
		return "secondary y"
	}
	return "y"
}
