package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"graph-digitizer/internal/app"
	"graph-digitizer/internal/dataset"
	"graph-digitizer/internal/export"
	"graph-digitizer/internal/project"
	"graph-digitizer/internal/trace"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type traceFlags struct {
	output    string
	save      bool
	watch     bool
	interval  time.Duration
	denoise   int
	window    int
	tolerance float64
	maxGap    int
	lookahead int
	median    int
	outlier   float64
	savePrefs bool
	onlyNamed []string
}

func newTraceCmd() *cobra.Command {
	var f traceFlags
	cmd := &cobra.Command{
		Use:   "trace [job.json]",
		Short: "Trace every dataset in a job file",
		Long: `Trace every dataset in a job file. Without an argument the job traced
last is used again.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, args, &f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "Write results to file (.csv, .xlsx or .json); '-' for CSV on stdout")
	fl.BoolVar(&f.save, "save", false, "Store traced points back into the job file")
	fl.BoolVar(&f.watch, "watch", false, "Re-run whenever the job file or image changes")
	fl.DurationVar(&f.interval, "interval", time.Second, "Polling interval for --watch")
	fl.IntVar(&f.denoise, "denoise", 1, "Median blur kernel applied before tracing (odd, 1 = off)")
	fl.IntVar(&f.window, "window", 0, "Seeded walk: rows searched above and below the previous row")
	fl.Float64Var(&f.tolerance, "tolerance", 0, "Seeded walk: maximum color distance for a match")
	fl.IntVar(&f.maxGap, "max-gap", 0, "Seeded walk: consecutive misses tolerated before stopping")
	fl.IntVar(&f.lookahead, "lookahead", 0, "Seeded walk: columns searched ahead to bridge dashes")
	fl.IntVar(&f.median, "median", 0, "Median smoothing window (odd, 1 = off)")
	fl.Float64Var(&f.outlier, "outlier", 0, "Outlier jump limit as a fraction of the Y range (0 = off)")
	fl.BoolVar(&f.savePrefs, "save-prefs", false, "Remember the effective trace parameters as defaults")
	fl.StringSliceVar(&f.onlyNamed, "dataset", nil, "Only trace the named dataset(s)")
	return cmd
}

// options resolves trace parameters: preferences, then the job file, then
// flags given explicitly on the command line.
func (f *traceFlags) options(fs *pflag.FlagSet, job *project.File, seed trace.SeedOptions, post trace.PostOptions, denoise int) (trace.SeedOptions, trace.PostOptions, int) {
	if job.Settings.Seed != nil {
		seed = *job.Settings.Seed
	}
	if job.Settings.Post != nil {
		post = *job.Settings.Post
	}
	if job.Settings.DenoiseKernel > 0 {
		denoise = job.Settings.DenoiseKernel
	}

	if fs.Changed("window") {
		seed.WindowHalfHeight = f.window
	}
	if fs.Changed("tolerance") {
		seed.Tolerance = f.tolerance
	}
	if fs.Changed("max-gap") {
		seed.MaxGap = f.maxGap
	}
	if fs.Changed("lookahead") {
		seed.Lookahead = f.lookahead
	}
	if fs.Changed("median") {
		post.MedianWindow = f.median
	}
	if fs.Changed("outlier") {
		post.OutlierFraction = f.outlier
	}
	if fs.Changed("denoise") {
		denoise = f.denoise
	}
	return seed, post, denoise
}

func runTrace(cmd *cobra.Command, args []string, f *traceFlags) error {
	prefs := loadPrefs()
	jobPath := prefs.LastJob()
	if len(args) > 0 {
		jobPath = args[0]
	}
	if jobPath == "" {
		return errors.New("no job file given and none traced before")
	}

	run := func() error {
		job, err := project.Load(jobPath)
		if err != nil {
			return err
		}
		seedOpts, postOpts, denoise := f.options(cmd.Flags(), job, prefs.SeedOptions(), prefs.PostOptions(), prefs.DenoiseKernel())

		datasets, err := traceJob(jobPath, job, seedOpts, postOpts, denoise, f.onlyNamed)
		if err != nil {
			return err
		}

		if f.save {
			for i, ds := range datasets {
				if err := job.SetResults(i, ds.Points); err != nil {
					return err
				}
			}
			if err := job.Save(jobPath); err != nil {
				return fmt.Errorf("failed to save job: %w", err)
			}
			log.Printf("Job: saved results to %s", jobPath)
		}
		if f.savePrefs {
			prefs.SetSeedOptions(seedOpts)
			prefs.SetPostOptions(postOpts)
			prefs.SetDenoiseKernel(denoise)
		}
		if abs, err := filepath.Abs(jobPath); err == nil {
			prefs.SetLastJob(abs)
		}
		if err := prefs.Save(); err != nil {
			log.Printf("Prefs: failed to save %s: %v", prefs.Path(), err)
		}
		return writeOutput(cmd, f.output, job, datasets)
	}

	if err := run(); err != nil {
		if !f.watch {
			return err
		}
		log.Printf("Trace: %v", err)
	}
	if !f.watch {
		return nil
	}

	job, err := project.Load(jobPath)
	if err != nil {
		return err
	}
	w := app.NewFileWatcher(f.interval, jobPath, job.GetImagePath(jobPath))
	changed := make(chan string, 1)
	w.OnChange(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	log.Printf("Watch: watching %v", w.Paths())
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-changed:
			log.Printf("Watch: %s changed, re-tracing", path)
			if err := run(); err != nil {
				log.Printf("Trace: %v", err)
			}
		}
	}
}

// traceJob runs every selected dataset of job through a fresh session and
// returns all datasets, traced or not, in job order.
func traceJob(jobPath string, job *project.File, seedOpts trace.SeedOptions, postOpts trace.PostOptions, denoise int, only []string) ([]*dataset.Dataset, error) {
	imgPath := job.GetImagePath(jobPath)
	if imgPath == "" {
		return nil, fmt.Errorf("job %s: %w", jobPath, app.ErrNoImage)
	}

	datasets, err := job.BuildDatasets()
	if err != nil {
		return nil, err
	}

	state := app.NewState()
	if err := state.LoadImage(imgPath, denoise); err != nil {
		return nil, err
	}
	state.SetCalibration(job.CalibrationState())
	state.SetDatasets(datasets)
	if len(job.Settings.SnapX) > 0 {
		state.Snapper = dataset.NewSnapper(job.Settings.SnapX...)
	}

	var reqs []app.TraceRequest
	for i, e := range job.Datasets {
		if !selected(e.Name, only) {
			continue
		}
		req := app.TraceRequest{Dataset: i}
		for _, s := range e.Seeds {
			req.Seeds = append(req.Seeds, s.ToImage())
		}
		reqs = append(reqs, req)
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("job %s: no datasets to trace", jobPath)
	}

	if err := state.TraceAndWait(reqs, seedOpts, postOpts); err != nil {
		return nil, err
	}
	return state.Datasets(), nil
}

func selected(name string, only []string) bool {
	if len(only) == 0 {
		return true
	}
	for _, n := range only {
		if n == name {
			return true
		}
	}
	return false
}

func writeOutput(cmd *cobra.Command, output string, job *project.File, datasets []*dataset.Dataset) error {
	switch output {
	case "":
		for _, ds := range datasets {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", ds)
		}
		return nil
	case "-":
		return export.WriteCSV(cmd.OutOrStdout(), datasets)
	}

	switch export.FormatFromPath(output) {
	case export.FormatXLSX:
		return export.WriteXLSX(output, datasets)
	case export.FormatJSON:
		out, err := os.Create(output)
		if err != nil {
			return err
		}
		labels := export.Labels{Title: job.Title, XLabel: job.XLabel, YLabel: job.YLabel}
		if err := export.WriteJSON(out, export.NewDocument(labels, job.CalibrationState(), datasets)); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	default:
		out, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := export.WriteCSV(out, datasets); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	}
}
