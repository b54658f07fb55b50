package config

import (
	"os"
	"path/filepath"
	"testing"

	"graph-digitizer/internal/trace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileGivesDefaults(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "none.json"))
	assert.Equal(t, trace.DefaultSeedOptions(), p.SeedOptions())
	assert.Equal(t, trace.DefaultPostOptions(), p.PostOptions())
	assert.Equal(t, 1, p.DenoiseKernel())
	assert.Equal(t, "", p.LastJob())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", prefsFile)
	p := LoadFrom(path)

	seed := trace.SeedOptions{WindowHalfHeight: 12, Tolerance: 0.4, MaxGap: 5, Lookahead: 0}
	post := trace.PostOptions{MedianWindow: 5, OutlierFraction: 0}
	p.SetSeedOptions(seed)
	p.SetPostOptions(post)
	p.SetLastJob("/tmp/job.json")
	require.NoError(t, p.Save())

	q := LoadFrom(path)
	assert.Equal(t, seed, q.SeedOptions())
	assert.Equal(t, post, q.PostOptions())
	assert.Equal(t, "/tmp/job.json", q.LastJob())
}

func TestNonIntegralIntFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"trace.seed_max_gap": 2.5, "trace.seed_tolerance": 1}`), 0o644))

	p := LoadFrom(path)
	o := p.SeedOptions()
	assert.Equal(t, trace.DefaultSeedOptions().MaxGap, o.MaxGap)
	assert.Equal(t, 1.0, o.Tolerance)
}

func TestCorruptFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	p := LoadFrom(path)
	assert.Equal(t, trace.DefaultSeedOptions(), p.SeedOptions())
}
