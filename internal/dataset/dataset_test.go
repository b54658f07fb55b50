package dataset

import (
	"testing"

	"graph-digitizer/pkg/colorutil"
	"graph-digitizer/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	d, err := New("Series A", "#f80")
	require.NoError(t, err)
	assert.Equal(t, "#FF8800", d.Color)
	assert.True(t, d.Visible)
	assert.Equal(t, 0, d.Len())

	_, err = New("", "#000")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = New("x", "purple")
	assert.ErrorIs(t, err, colorutil.ErrInvalidHex)
}

func TestPoints(t *testing.T) {
	d, err := New("s", "#000000")
	require.NoError(t, err)

	src := []geometry.Point2D{{X: 1, Y: 2}, {X: 3, Y: 4}}
	d.ReplacePoints(src)
	src[0].X = 99
	assert.Equal(t, 1.0, d.Points[0].X, "ReplacePoints copies")

	d.AddPoint(geometry.NewPoint2D(5, 6))
	require.Equal(t, 3, d.Len())
	require.NoError(t, d.RemovePoint(1))
	assert.Equal(t, []geometry.Point2D{{X: 1, Y: 2}, {X: 5, Y: 6}}, d.Points)
	assert.Error(t, d.RemovePoint(7))

	c := d.Clone()
	d.Clear()
	assert.Equal(t, 0, d.Len())
	assert.Equal(t, 2, c.Len())
}

func TestNewDefaults(t *testing.T) {
	ds := NewDefaults(8)
	require.Len(t, ds, 8)
	assert.Equal(t, "Dataset 1", ds[0].Name)
	assert.Equal(t, colorutil.Palette[0], ds[6].Color)
	assert.NotEqual(t, colorutil.Black, ds[1].RGB())
}

func TestSnapX(t *testing.T) {
	s := NewSnapper(10, 0, 5)
	assert.Equal(t, []float64{0, 5, 10}, s.Values())

	assert.Equal(t, 0.0, s.SnapX(-3))
	assert.Equal(t, 5.0, s.SnapX(4.2))
	assert.Equal(t, 5.0, s.SnapX(7.5), "ties go low")
	assert.Equal(t, 10.0, s.SnapX(40))

	s.Add(7)
	assert.Equal(t, []float64{0, 5, 7, 10}, s.Values())
	assert.Equal(t, 7.0, s.SnapX(7.4))

	s.Clear()
	assert.Equal(t, 3.3, s.SnapX(3.3))
}

func TestSnapAll(t *testing.T) {
	s := NewSnapper(0, 1, 2)
	in := []geometry.Point2D{{X: 0.1, Y: 10}, {X: 0.4, Y: 11}, {X: 0.9, Y: 12}, {X: 2.2, Y: 13}}
	out := s.SnapAll(in)

	assert.Equal(t, []geometry.Point2D{{X: 0, Y: 10}, {X: 1, Y: 12}, {X: 2, Y: 13}}, out)
	assert.Equal(t, geometry.Point2D{X: 2, Y: 13}, s.SnapPoint(in[3]))
}
