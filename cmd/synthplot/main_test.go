package main

import (
	"image"
	"math"
	"path/filepath"
	"testing"

	"graph-digitizer/internal/app"
	"graph-digitizer/internal/trace"
	"graph-digitizer/pkg/colorutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSeedsLieOnCurves(t *testing.T) {
	opts := options{width: 320, height: 240, curves: []string{"sine", "line"}, dash: 6, gap: 3, thickness: 2}
	img, seeds, err := render(opts)
	require.NoError(t, err)
	require.Len(t, seeds, 2)

	for i, s := range seeds {
		want, err := colorutil.ParseHex(colorutil.Palette[i])
		require.NoError(t, err)
		got := colorutil.FromColor(img.At(s.X, s.Y))
		assert.InDelta(t, 0, colorutil.Distance(want, got), 1e-9, "seed %d", i)
	}
}

func TestRenderErrors(t *testing.T) {
	_, _, err := render(options{width: 50, height: 50, curves: []string{"sine"}})
	assert.Error(t, err)
	_, _, err = render(options{width: 200, height: 200, curves: []string{"spiral"}})
	assert.ErrorContains(t, err, "unknown curve")
}

func TestDashedSineTracesBack(t *testing.T) {
	opts := options{width: 400, height: 300, curves: []string{"sine"}, dash: 8, gap: 2, thickness: 1}
	img, seeds, err := render(opts)
	require.NoError(t, err)

	dir := t.TempDir()
	job := newJob(opts, filepath.Join(dir, "job.json"), filepath.Join(dir, "plot.png"), seeds)
	require.Len(t, job.Datasets, 1)
	require.Len(t, job.Datasets[0].Seeds, 1)

	s := app.NewState()
	s.SetImage(img)
	s.SetCalibration(job.CalibrationState())
	sets, err := job.BuildDatasets()
	require.NoError(t, err)
	s.SetDatasets(sets)

	seed := image.Point{X: seeds[0].X, Y: seeds[0].Y}
	require.NoError(t, s.TraceAndWait([]app.TraceRequest{{Dataset: 0, Seeds: []image.Point{seed}}},
		trace.DefaultSeedOptions(), trace.DefaultPostOptions()))

	ds, err := s.Dataset(0)
	require.NoError(t, err)
	require.Greater(t, ds.Len(), 200)
	for _, p := range ds.Points {
		// One pixel is 3/219 in y.
		assert.InDelta(t, math.Sin(p.X), p.Y, 0.05, "x=%g", p.X)
	}
}
