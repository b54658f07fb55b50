package app

import (
	"fmt"
	goimage "image"
	"log"
	"sort"
	"sync"
	"time"

	"graph-digitizer/internal/calibration"
	"graph-digitizer/internal/trace"
	"graph-digitizer/internal/transform"
	"graph-digitizer/pkg/colorutil"
	"graph-digitizer/pkg/geometry"
)

// TraceRequest asks for one dataset to be traced. Without seeds the
// full-column scan runs with the dataset color. Each seed walks the curve
// through that pixel, matching the seed pixel's own color; the walks are
// merged by X and post-processed.
type TraceRequest struct {
	Dataset int
	Seeds   []goimage.Point
}

// TraceResult is delivered once per request.
type TraceResult struct {
	Dataset  int
	Points   []geometry.Point2D
	Err      error
	Elapsed  time.Duration
	Seeded   bool
	genStart uint64
}

// Generation returns the calibration generation the trace ran against.
func (r TraceResult) Generation() uint64 {
	return r.genStart
}

// StartTrace runs every request on its own goroutine against a snapshot of
// the calibration and the current pixels. Results arrive on the returned
// channel in completion order; it is closed after the last one.
func (s *State) StartTrace(reqs []TraceRequest, seedOpts trace.SeedOptions, postOpts trace.PostOptions) (<-chan TraceResult, error) {
	if err := seedOpts.Validate(); err != nil {
		return nil, err
	}
	if err := postOpts.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	buf := s.buffer
	tf, err := transform.New(s.calibration)
	s.mu.RUnlock()
	if buf == nil {
		return nil, ErrNoImage
	}
	if err != nil {
		return nil, err
	}
	gen := tf.Generation()

	type job struct {
		req    TraceRequest
		target colorutil.RGB
		useY2  bool
		name   string
	}
	jobs := make([]job, 0, len(reqs))
	for _, r := range reqs {
		ds, err := s.Dataset(r.Dataset)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job{req: r, target: ds.RGB(), useY2: ds.UseSecondaryY, name: ds.Name})
	}

	tracer := trace.NewForCalibration(buf, tf)
	out := make(chan TraceResult, len(jobs))
	var wg sync.WaitGroup

	s.Emit(EventTraceStarted, len(jobs))
	log.Printf("Trace: starting %d request(s) at calibration generation %d", len(jobs), gen)

	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			start := time.Now()
			res := TraceResult{Dataset: j.req.Dataset, genStart: gen, Seeded: len(j.req.Seeds) > 0}

			if len(j.req.Seeds) == 0 {
				res.Points, res.Err = tracer.TraceDataset(j.target, j.useY2)
			} else {
				res.Points, res.Err = traceSeeds(tracer, j.req.Seeds, j.useY2, seedOpts, postOpts, tf.YRange(j.useY2))
			}
			res.Elapsed = time.Since(start)

			if res.Err != nil {
				log.Printf("Trace: %s failed: %v", j.name, res.Err)
			} else {
				log.Printf("Trace: %s produced %d points in %v", j.name, len(res.Points), res.Elapsed)
			}
			out <- res
		}(j)
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}

func traceSeeds(t *trace.Tracer, seeds []goimage.Point, useY2 bool, seedOpts trace.SeedOptions, postOpts trace.PostOptions, yRange calibration.Range) ([]geometry.Point2D, error) {
	var merged []geometry.Point2D
	for _, seed := range seeds {
		target, err := t.SampleColor(seed)
		if err != nil {
			return nil, err
		}
		pts, err := t.TraceFromSeed(seed, target, useY2, seedOpts)
		if err != nil {
			return nil, err
		}
		merged = append(merged, pts...)
	}
	if len(seeds) > 1 {
		merged = mergeByX(merged)
	}
	return trace.PostProcess(merged, postOpts, yRange)
}

// mergeByX orders points by X and keeps the first point seen for each X.
func mergeByX(points []geometry.Point2D) []geometry.Point2D {
	sort.SliceStable(points, func(i, j int) bool { return points[i].X < points[j].X })
	out := points[:0]
	for i, p := range points {
		if i > 0 && p.X == out[len(out)-1].X {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Commit stores a finished trace into its dataset, applying the snapper if
// one is set. Results whose calibration generation is no longer current are
// dropped with ErrStaleTrace.
func (s *State) Commit(res TraceResult) error {
	if res.Err != nil {
		return res.Err
	}

	s.mu.Lock()
	if res.genStart != s.calibration.Generation() {
		cur := s.calibration.Generation()
		s.mu.Unlock()
		log.Printf("Trace: discarding result for dataset %d (generation %d, now %d)", res.Dataset, res.genStart, cur)
		s.Emit(EventTraceDiscarded, res.Dataset)
		return ErrStaleTrace
	}
	if res.Dataset < 0 || res.Dataset >= len(s.datasets) {
		n := len(s.datasets)
		s.mu.Unlock()
		return fmt.Errorf("dataset index %d out of range [0,%d)", res.Dataset, n)
	}
	points := res.Points
	if s.Snapper != nil {
		points = s.Snapper.SnapAll(points)
	}
	s.datasets[res.Dataset].ReplacePoints(points)
	s.mu.Unlock()

	s.Emit(EventTraceComplete, res.Dataset)
	return nil
}

// TraceAndWait runs StartTrace and commits every result. The first error
// is returned after all results have been handled.
func (s *State) TraceAndWait(reqs []TraceRequest, seedOpts trace.SeedOptions, postOpts trace.PostOptions) error {
	results, err := s.StartTrace(reqs, seedOpts, postOpts)
	if err != nil {
		return err
	}
	var first error
	for res := range results {
		if err := s.Commit(res); err != nil && first == nil {
			first = fmt.Errorf("dataset %d: %w", res.Dataset, err)
		}
	}
	return first
}
