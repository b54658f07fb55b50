package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"graph-digitizer/internal/calibration"
	"graph-digitizer/internal/dataset"
	"graph-digitizer/internal/image"
	"graph-digitizer/internal/project"
	"graph-digitizer/internal/transform"
	"graph-digitizer/pkg/geometry"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		imagePath string
		name      string
		count     int
		force     bool
	)
	cmd := &cobra.Command{
		Use:   "init <job.json>",
		Short: "Create a job file for an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobPath := args[0]
			if _, err := os.Stat(jobPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", jobPath)
			}
			if imagePath == "" {
				return errors.New("--image is required")
			}
			if !image.IsSupportedFormat(imagePath) {
				return fmt.Errorf("unsupported image format: %s (supported: %s)",
					imagePath, strings.Join(image.SupportedFormats(), ", "))
			}
			abs, err := filepath.Abs(imagePath)
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
			}

			job := project.New(name)
			job.SetImage(jobPath, abs)
			for _, ds := range dataset.NewDefaults(count) {
				job.AddDataset(ds)
			}
			if err := job.Save(jobPath); err != nil {
				return err
			}
			log.Printf("Job: created %s for %s with %d dataset(s)", jobPath, imagePath, count)
			return nil
		},
	}
	cmd.Flags().StringVar(&imagePath, "image", "", "Plot image")
	cmd.Flags().StringVar(&name, "name", "", "Job name (default: image file name)")
	cmd.Flags().IntVar(&count, "datasets", 1, "Number of default datasets to create")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing job file")
	return cmd
}

func newCalibrateCmd() *cobra.Command {
	var (
		anchors           [4][]float64
		xRange, yRange    []float64
		y2Range           []float64
		xLog, yLog, y2Log bool
		noY2, reset       bool
		clearAnchors      []string
	)
	flagNames := [4]string{"x-left", "x-right", "y-bottom", "y-top"}

	cmd := &cobra.Command{
		Use:   "calibrate <job.json>",
		Short: "Set calibration anchors and axis ranges",
		Long: `Anchors are pixel positions given as "col,row". Ranges are "min,max".
Only the flags given are changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobPath := args[0]
			job, err := project.Load(jobPath)
			if err != nil {
				return err
			}
			cal := job.CalibrationState()
			fs := cmd.Flags()

			if reset {
				cal.Reset()
			}
			for _, n := range clearAnchors {
				a, ok := anchorByFlag(flagNames, n)
				if !ok {
					return fmt.Errorf("unknown anchor %q (want one of %s)", n, strings.Join(flagNames[:], ", "))
				}
				cal.ClearAnchor(a)
			}
			for i, a := range calibration.Anchors {
				if !fs.Changed(flagNames[i]) {
					continue
				}
				p, err := pair(flagNames[i], anchors[i])
				if err != nil {
					return err
				}
				cal.SetAnchor(a, p)
			}
			if fs.Changed("x") {
				r, err := pair("x", xRange)
				if err != nil {
					return err
				}
				cal.SetXRange(r.X, r.Y)
			}
			if fs.Changed("y") {
				r, err := pair("y", yRange)
				if err != nil {
					return err
				}
				cal.SetYRange(r.X, r.Y)
			}
			if fs.Changed("y2") {
				r, err := pair("y2", y2Range)
				if err != nil {
					return err
				}
				cal.SetY2Range(r.X, r.Y)
			}
			if fs.Changed("x-log") {
				cal.SetXLog(xLog)
			}
			if fs.Changed("y-log") {
				cal.SetYLog(yLog)
			}
			if fs.Changed("y2-log") {
				cal.SetY2Log(y2Log)
			}
			if noY2 {
				cal.ClearY2Range()
			}

			job.SetCalibration(cal)
			if err := job.Save(jobPath); err != nil {
				return err
			}
			log.Printf("Calibration: %s", cal)
			if !cal.IsCalibrated() {
				log.Printf("Calibration: incomplete, tracing needs all four anchors")
			}
			return nil
		},
	}
	fl := cmd.Flags()
	for i, n := range flagNames {
		fl.Float64SliceVar(&anchors[i], n, nil, "Pixel position of the "+calibration.Anchors[i].String()+" anchor (col,row)")
	}
	fl.Float64SliceVar(&xRange, "x", nil, "X axis range (min,max)")
	fl.Float64SliceVar(&yRange, "y", nil, "Y axis range (min,max)")
	fl.Float64SliceVar(&y2Range, "y2", nil, "Secondary Y axis range (min,max)")
	fl.BoolVar(&xLog, "x-log", false, "Logarithmic X axis")
	fl.BoolVar(&yLog, "y-log", false, "Logarithmic Y axis")
	fl.BoolVar(&y2Log, "y2-log", false, "Logarithmic secondary Y axis")
	fl.BoolVar(&noY2, "no-y2", false, "Remove the secondary Y axis")
	fl.BoolVar(&reset, "reset", false, "Clear the calibration before applying other flags")
	fl.StringSliceVar(&clearAnchors, "clear", nil, "Unset the named anchors (x-left, x-right, y-bottom, y-top)")
	return cmd
}

func newAddCmd() *cobra.Command {
	var (
		name      string
		hexColor  string
		seeds     []string
		secondary bool
	)
	cmd := &cobra.Command{
		Use:   "add <job.json>",
		Short: "Add a dataset, optionally with seed pixels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobPath := args[0]
			job, err := project.Load(jobPath)
			if err != nil {
				return err
			}
			ds, err := dataset.New(name, hexColor)
			if err != nil {
				return err
			}
			ds.UseSecondaryY = secondary

			var pts []geometry.PointInt
			for _, s := range seeds {
				var p geometry.PointInt
				if _, err := fmt.Sscanf(s, "%d,%d", &p.X, &p.Y); err != nil {
					return fmt.Errorf("invalid seed %q (want col,row): %w", s, err)
				}
				pts = append(pts, p)
			}
			idx := job.AddDataset(ds, pts...)
			if err := job.Save(jobPath); err != nil {
				return err
			}
			log.Printf("Job: added dataset %d %s with %d seed(s)", idx, ds, len(pts))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Dataset name")
	cmd.Flags().StringVar(&hexColor, "color", "#0072B2", "Curve color (#RRGGBB)")
	cmd.Flags().StringArrayVar(&seeds, "seed", nil, "Seed pixel on the curve (col,row); repeatable")
	cmd.Flags().BoolVar(&secondary, "secondary", false, "Map the dataset to the secondary Y axis")
	return cmd
}

func newConvertCmd() *cobra.Command {
	var (
		toData    []float64
		toPixel   []float64
		secondary bool
	)
	cmd := &cobra.Command{
		Use:   "convert <job.json>",
		Short: "Convert a point between pixel and data coordinates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := project.Load(args[0])
			if err != nil {
				return err
			}
			tf, err := transform.New(job.CalibrationState())
			if err != nil {
				return err
			}

			fs := cmd.Flags()
			switch {
			case fs.Changed("pixel"):
				p, err := pair("pixel", toData)
				if err != nil {
					return err
				}
				d, err := tf.PixelToData(p.X, p.Y, secondary)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%.10g,%.10g\n", d.X, d.Y)
			case fs.Changed("data"):
				d, err := pair("data", toPixel)
				if err != nil {
					return err
				}
				p, err := tf.DataToPixel(d.X, d.Y, secondary)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%.4f,%.4f\n", p.X, p.Y)
			default:
				return errors.New("one of --pixel or --data is required")
			}
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&toData, "pixel", nil, "Pixel position to convert to data (col,row)")
	cmd.Flags().Float64SliceVar(&toPixel, "data", nil, "Data position to convert to pixels (x,y)")
	cmd.Flags().BoolVar(&secondary, "secondary", false, "Use the secondary Y axis")
	cmd.MarkFlagsMutuallyExclusive("pixel", "data")
	return cmd
}

func anchorByFlag(names [4]string, name string) (calibration.Anchor, bool) {
	for i, n := range names {
		if n == name {
			return calibration.Anchors[i], true
		}
	}
	return 0, false
}

func newSnapCmd() *cobra.Command {
	var (
		add   []float64
		reset bool
	)
	cmd := &cobra.Command{
		Use:   "snap <job.json>",
		Short: "Edit the X values traced points are snapped to",
		Long: `Traced points are moved onto the nearest X value of the snap grid, keeping
one point per grid value. With no flags the current grid is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobPath := args[0]
			job, err := project.Load(jobPath)
			if err != nil {
				return err
			}

			s := dataset.NewSnapper(job.Settings.SnapX...)
			if reset {
				s.Clear()
			}
			for _, x := range add {
				s.Add(x)
			}
			values := s.Values()

			if reset || len(add) > 0 {
				job.Settings.SnapX = values
				if err := job.Save(jobPath); err != nil {
					return err
				}
				log.Printf("Job: snap grid now has %d value(s)", len(values))
			}

			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, ","))
			return nil
		},
	}
	cmd.Flags().Float64SliceVar(&add, "add", nil, "X values to add to the grid")
	cmd.Flags().BoolVar(&reset, "clear", false, "Remove all grid values before adding")
	return cmd
}

// pair turns a two-element flag value into a point.
func pair(flag string, v []float64) (geometry.Point2D, error) {
	if len(v) != 2 {
		return geometry.Point2D{}, fmt.Errorf("--%s needs exactly two values, got %d", flag, len(v))
	}
	return geometry.NewPoint2D(v[0], v[1]), nil
}
