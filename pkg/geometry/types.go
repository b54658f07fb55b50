// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"image"
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
// It is used both for pixel positions and for data-space samples.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Round returns the nearest integer pixel position.
func (p Point2D) Round() image.Point {
	return image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// PointInt represents a 2D point with integer coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToImage converts to an image.Point.
func (p PointInt) ToImage() image.Point {
	return image.Point{X: p.X, Y: p.Y}
}

// Lerp interpolates linearly between a and b. t=0 gives a, t=1 gives b.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// InverseLerp returns the fraction of v between a and b, or 0 when a == b.
func InverseLerp(a, b, v float64) float64 {
	den := b - a
	if den == 0 {
		return 0
	}
	return (v - a) / den
}
