// Package dataset holds the named point series that traced curves are stored in.
package dataset

import (
	"errors"
	"fmt"

	"graph-digitizer/pkg/colorutil"
	"graph-digitizer/pkg/geometry"
)

// ErrEmptyName is returned when creating or renaming a dataset with no name.
var ErrEmptyName = errors.New("dataset name must not be empty")

// Dataset is a named, colored series of data-space points.
type Dataset struct {
	Name          string             `json:"name"`
	Color         string             `json:"color"`
	Points        []geometry.Point2D `json:"points"`
	UseSecondaryY bool               `json:"use_secondary_y"`
	Visible       bool               `json:"visible"`
}

// New creates a visible, empty dataset. The color is normalized to "#RRGGBB".
func New(name, hexColor string) (*Dataset, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	c, err := colorutil.ParseHex(hexColor)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}
	return &Dataset{Name: name, Color: c.Hex(), Visible: true}, nil
}

// NewDefaults creates n datasets named "Dataset 1".. using the default palette.
func NewDefaults(n int) []*Dataset {
	out := make([]*Dataset, n)
	for i := range out {
		out[i] = &Dataset{
			Name:    fmt.Sprintf("Dataset %d", i+1),
			Color:   colorutil.Palette[i%len(colorutil.Palette)],
			Visible: true,
		}
	}
	return out
}

// RGB returns the dataset color, or black if it does not parse.
func (d *Dataset) RGB() colorutil.RGB {
	c, err := colorutil.ParseHex(d.Color)
	if err != nil {
		return colorutil.Black
	}
	return c
}

// SetColor changes the dataset color.
func (d *Dataset) SetColor(hexColor string) error {
	c, err := colorutil.ParseHex(hexColor)
	if err != nil {
		return err
	}
	d.Color = c.Hex()
	return nil
}

// AddPoint appends a single point.
func (d *Dataset) AddPoint(p geometry.Point2D) {
	d.Points = append(d.Points, p)
}

// ReplacePoints discards existing points and stores a copy of points.
func (d *Dataset) ReplacePoints(points []geometry.Point2D) {
	d.Points = append(make([]geometry.Point2D, 0, len(points)), points...)
}

// RemovePoint deletes the point at index i.
func (d *Dataset) RemovePoint(i int) error {
	if i < 0 || i >= len(d.Points) {
		return fmt.Errorf("point index %d out of range [0,%d)", i, len(d.Points))
	}
	d.Points = append(d.Points[:i], d.Points[i+1:]...)
	return nil
}

// Clear removes all points.
func (d *Dataset) Clear() {
	d.Points = nil
}

// Len returns the number of points.
func (d *Dataset) Len() int {
	return len(d.Points)
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	c := *d
	c.Points = append([]geometry.Point2D(nil), d.Points...)
	return &c
}

func (d *Dataset) String() string {
	return fmt.Sprintf("dataset{name=%q color=%s points=%d}", d.Name, d.Color, len(d.Points))
}
