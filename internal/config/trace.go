package config

import "graph-digitizer/internal/trace"

// Preference keys for trace parameters.
const (
	KeySeedWindow      = "trace.seed_window_half_height"
	KeySeedTolerance   = "trace.seed_tolerance"
	KeySeedMaxGap      = "trace.seed_max_gap"
	KeySeedLookahead   = "trace.seed_lookahead"
	KeyMedianWindow    = "trace.median_window"
	KeyOutlierFraction = "trace.outlier_fraction"
	KeyDenoiseKernel   = "image.denoise_kernel"
	KeyLastJob         = "trace.last_job"
)

// SeedOptions returns seeded-trace options, with built-in defaults for
// anything not stored.
func (p *Prefs) SeedOptions() trace.SeedOptions {
	d := trace.DefaultSeedOptions()
	return trace.SeedOptions{
		WindowHalfHeight: p.IntWithFallback(KeySeedWindow, d.WindowHalfHeight),
		Tolerance:        p.FloatWithFallback(KeySeedTolerance, d.Tolerance),
		MaxGap:           p.IntWithFallback(KeySeedMaxGap, d.MaxGap),
		Lookahead:        p.IntWithFallback(KeySeedLookahead, d.Lookahead),
	}
}

// SetSeedOptions stores seeded-trace options.
func (p *Prefs) SetSeedOptions(o trace.SeedOptions) {
	p.SetInt(KeySeedWindow, o.WindowHalfHeight)
	p.SetFloat(KeySeedTolerance, o.Tolerance)
	p.SetInt(KeySeedMaxGap, o.MaxGap)
	p.SetInt(KeySeedLookahead, o.Lookahead)
}

// PostOptions returns post-processing options, with built-in defaults for
// anything not stored.
func (p *Prefs) PostOptions() trace.PostOptions {
	d := trace.DefaultPostOptions()
	return trace.PostOptions{
		MedianWindow:    p.IntWithFallback(KeyMedianWindow, d.MedianWindow),
		OutlierFraction: p.FloatWithFallback(KeyOutlierFraction, d.OutlierFraction),
	}
}

// SetPostOptions stores post-processing options.
func (p *Prefs) SetPostOptions(o trace.PostOptions) {
	p.SetInt(KeyMedianWindow, o.MedianWindow)
	p.SetFloat(KeyOutlierFraction, o.OutlierFraction)
}

// DenoiseKernel returns the median kernel applied before tracing; 1 means off.
func (p *Prefs) DenoiseKernel() int {
	return p.IntWithFallback(KeyDenoiseKernel, 1)
}

// SetDenoiseKernel stores the median kernel applied before tracing.
func (p *Prefs) SetDenoiseKernel(k int) {
	p.SetInt(KeyDenoiseKernel, k)
}

// LastJob returns the job file most recently traced, or "".
func (p *Prefs) LastJob() string {
	return p.String(KeyLastJob)
}

// SetLastJob records the job file most recently traced.
func (p *Prefs) SetLastJob(path string) {
	p.SetString(KeyLastJob, path)
}
