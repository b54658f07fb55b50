// Package calibration holds the axis mapping recorded while calibrating a plot:
// four pixel anchors plus the numeric ranges they correspond to.
package calibration

import (
	"fmt"

	"graph-digitizer/pkg/geometry"
)

// Anchor identifies one of the four calibration anchors.
type Anchor int

const (
	AnchorXLeft   Anchor = iota // Pixel position of the X axis minimum
	AnchorXRight                // Pixel position of the X axis maximum
	AnchorYBottom               // Pixel position of the Y axis minimum
	AnchorYTop                  // Pixel position of the Y axis maximum
)

// Anchors lists all anchors in calibration order.
var Anchors = [4]Anchor{AnchorXLeft, AnchorXRight, AnchorYBottom, AnchorYTop}

func (a Anchor) String() string {
	switch a {
	case AnchorXLeft:
		return "X-left"
	case AnchorXRight:
		return "X-right"
	case AnchorYBottom:
		return "Y-bottom"
	case AnchorYTop:
		return "Y-top"
	default:
		return "Unknown"
	}
}

// Range is the numeric extent of one axis.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Log bool    `json:"log"`
}

// Span returns |Max - Min|.
func (r Range) Span() float64 {
	if r.Max > r.Min {
		return r.Max - r.Min
	}
	return r.Min - r.Max
}

// DefaultRange is the neutral range used until bounds are set.
func DefaultRange() Range {
	return Range{Min: 0, Max: 1}
}

// State is the caller-owned axis mapping. It performs no validation: setting
// any field always succeeds and completeness is checked with IsCalibrated.
// State is not safe for concurrent use.
type State struct {
	anchors [4]*geometry.Point2D

	x  Range
	y  Range
	y2 *Range

	generation uint64
}

// New returns an empty, uncalibrated State with neutral ranges.
func New() *State {
	return &State{x: DefaultRange(), y: DefaultRange()}
}

// SetAnchor records the pixel position of an anchor.
func (s *State) SetAnchor(a Anchor, p geometry.Point2D) {
	if a < AnchorXLeft || a > AnchorYTop {
		return
	}
	s.anchors[a] = &p
	s.generation++
}

// Anchor returns the pixel position of an anchor and whether it is set.
func (s *State) Anchor(a Anchor) (geometry.Point2D, bool) {
	if a < AnchorXLeft || a > AnchorYTop || s.anchors[a] == nil {
		return geometry.Point2D{}, false
	}
	return *s.anchors[a], true
}

// ClearAnchor unsets a single anchor.
func (s *State) ClearAnchor(a Anchor) {
	if a < AnchorXLeft || a > AnchorYTop {
		return
	}
	s.anchors[a] = nil
	s.generation++
}

// SetXRange sets the X axis bounds.
func (s *State) SetXRange(minV, maxV float64) {
	s.x.Min, s.x.Max = minV, maxV
	s.generation++
}

// SetYRange sets the primary Y axis bounds.
func (s *State) SetYRange(minV, maxV float64) {
	s.y.Min, s.y.Max = minV, maxV
	s.generation++
}

// SetY2Range sets the secondary Y axis bounds, enabling the secondary axis.
func (s *State) SetY2Range(minV, maxV float64) {
	if s.y2 == nil {
		s.y2 = &Range{}
	}
	s.y2.Min, s.y2.Max = minV, maxV
	s.generation++
}

// ClearY2Range removes the secondary Y axis.
func (s *State) ClearY2Range() {
	s.y2 = nil
	s.generation++
}

// SetXLog sets the X axis log flag.
func (s *State) SetXLog(log bool) {
	s.x.Log = log
	s.generation++
}

// SetYLog sets the primary Y axis log flag.
func (s *State) SetYLog(log bool) {
	s.y.Log = log
	s.generation++
}

// SetY2Log sets the secondary Y axis log flag, creating a neutral
// secondary range if none is set.
func (s *State) SetY2Log(log bool) {
	if s.y2 == nil {
		s.y2 = &Range{Min: 0, Max: 1}
	}
	s.y2.Log = log
	s.generation++
}

// X returns the X axis range.
func (s *State) X() Range { return s.x }

// Y returns the primary Y axis range.
func (s *State) Y() Range { return s.y }

// Y2 returns the secondary Y axis range and whether it is configured.
func (s *State) Y2() (Range, bool) {
	if s.y2 == nil {
		return Range{}, false
	}
	return *s.y2, true
}

// YRange returns the secondary range when requested and configured,
// otherwise the primary range.
func (s *State) YRange(useSecondary bool) Range {
	if useSecondary && s.y2 != nil {
		return *s.y2
	}
	return s.y
}

// IsCalibrated reports whether all four anchors are set.
func (s *State) IsCalibrated() bool {
	for _, p := range s.anchors {
		if p == nil {
			return false
		}
	}
	return true
}

// Reset clears all anchors and restores neutral ranges.
func (s *State) Reset() {
	s.anchors = [4]*geometry.Point2D{}
	s.x = DefaultRange()
	s.y = DefaultRange()
	s.y2 = nil
	s.generation++
}

// Generation increases on every mutation. A trace started at one generation
// is stale once the generation moves on.
func (s *State) Generation() uint64 {
	return s.generation
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	c := &State{x: s.x, y: s.y, generation: s.generation}
	for i, p := range s.anchors {
		if p != nil {
			v := *p
			c.anchors[i] = &v
		}
	}
	if s.y2 != nil {
		v := *s.y2
		c.y2 = &v
	}
	return c
}

func (s *State) String() string {
	fmtAnchor := func(a Anchor) string {
		if p, ok := s.Anchor(a); ok {
			return fmt.Sprintf("(%.1f,%.1f)", p.X, p.Y)
		}
		return "unset"
	}
	return fmt.Sprintf("calibration{%s=%s %s=%s %s=%s %s=%s x=[%g,%g log=%t] y=[%g,%g log=%t]}",
		AnchorXLeft, fmtAnchor(AnchorXLeft), AnchorXRight, fmtAnchor(AnchorXRight),
		AnchorYBottom, fmtAnchor(AnchorYBottom), AnchorYTop, fmtAnchor(AnchorYTop),
		s.x.Min, s.x.Max, s.x.Log, s.y.Min, s.y.Max, s.y.Log)
}
