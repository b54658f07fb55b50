// Command synthplot renders a synthetic plot image, and optionally a job file
// calibrated to it, for exercising the tracer by hand.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"os"
	"strings"

	"graph-digitizer/internal/calibration"
	"graph-digitizer/internal/dataset"
	"graph-digitizer/internal/project"
	"graph-digitizer/internal/transform"
	"graph-digitizer/pkg/colorutil"
	"graph-digitizer/pkg/geometry"
)

const margin = 40

type options struct {
	width, height int
	curves        []string
	dash, gap     int
	thickness     int
	speckle       float64
	seed          int64
}

// curveFuncs map x in [0,10] to y in roughly [-1.5,1.5].
var curveFuncs = map[string]func(x float64) float64{
	"sine":  func(x float64) float64 { return math.Sin(x) },
	"line":  func(x float64) float64 { return 0.25*x - 1.25 },
	"decay": func(x float64) float64 { return 1.4 * math.Exp(-x/3) },
	"step":  func(x float64) float64 { return math.Floor(x/2.5)*0.6 - 1 },
}

func main() {
	outPath := flag.String("out", "plot.png", "Output PNG path")
	jobPath := flag.String("job", "", "Also write a calibrated job file here")
	width := flag.Int("width", 640, "Image width")
	height := flag.Int("height", 480, "Image height")
	curves := flag.String("curves", "sine", "Comma-separated curves: sine, line, decay, step")
	dash := flag.Int("dash", 0, "Dash length in columns (0 = solid)")
	gap := flag.Int("gap", 3, "Gap length in columns when dashed")
	thickness := flag.Int("thickness", 2, "Line thickness in pixels")
	speckle := flag.Float64("speckle", 0, "Fraction of pixels replaced by random noise")
	seed := flag.Int64("seed", 1, "Random seed for speckle")
	flag.Parse()

	opts := options{
		width:     *width,
		height:    *height,
		curves:    strings.Split(*curves, ","),
		dash:      *dash,
		gap:       *gap,
		thickness: *thickness,
		speckle:   *speckle,
		seed:      *seed,
	}

	img, seeds, err := render(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Failed to encode PNG: %v\n", err)
		os.Exit(1)
	}
	f.Close()
	fmt.Printf("Wrote %dx%d plot with %d curve(s) to %s\n", opts.width, opts.height, len(opts.curves), *outPath)

	if *jobPath != "" {
		job := newJob(opts, *jobPath, *outPath, seeds)
		if err := job.Save(*jobPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write job: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote job file %s\n", *jobPath)
	}
}

// plotCalibration maps the inner plot box to x in [0,10], y in [-1.5,1.5].
func plotCalibration(w, h int) *calibration.State {
	c := calibration.New()
	left, right := float64(margin), float64(w-1-margin)
	bottom, top := float64(h-1-margin), float64(margin)
	c.SetAnchor(calibration.AnchorXLeft, geometry.NewPoint2D(left, bottom))
	c.SetAnchor(calibration.AnchorXRight, geometry.NewPoint2D(right, bottom))
	c.SetAnchor(calibration.AnchorYBottom, geometry.NewPoint2D(left, bottom))
	c.SetAnchor(calibration.AnchorYTop, geometry.NewPoint2D(left, top))
	c.SetXRange(0, 10)
	c.SetYRange(-1.5, 1.5)
	return c
}

// render draws axes and curves. It returns, per curve, a pixel on the curve
// in the middle of the plot, suitable as a trace seed.
func render(opts options) (*image.RGBA, []geometry.PointInt, error) {
	if opts.width <= 2*margin+1 || opts.height <= 2*margin+1 {
		return nil, nil, fmt.Errorf("image must be larger than %dx%d", 2*margin+1, 2*margin+1)
	}
	tf, err := transform.New(plotCalibration(opts.width, opts.height))
	if err != nil {
		return nil, nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.width, opts.height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	black := color.RGBA{A: 255}
	x0, x1 := tf.XSpan()
	for x := x0; x <= x1; x++ {
		img.Set(x, opts.height-1-margin, black)
	}
	for y := margin; y <= opts.height-1-margin; y++ {
		img.Set(margin, y, black)
	}

	var seeds []geometry.PointInt
	for i, name := range opts.curves {
		fn, ok := curveFuncs[strings.TrimSpace(name)]
		if !ok {
			return nil, nil, fmt.Errorf("unknown curve %q", name)
		}
		rgb, err := colorutil.ParseHex(colorutil.Palette[i%len(colorutil.Palette)])
		if err != nil {
			return nil, nil, err
		}
		c := rgb.Color()

		prev := -1
		mid := (x0 + x1) / 2
		for x := x0 + 1; x <= x1; x++ {
			d, err := tf.PixelToData(float64(x), 0, false)
			if err != nil {
				return nil, nil, err
			}
			p, err := tf.DataToPixel(d.X, fn(d.X), false)
			if err != nil {
				return nil, nil, err
			}
			row := p.Round().Y
			if opts.dash > 0 && (x-x0)%(opts.dash+opts.gap) >= opts.dash {
				prev = -1
				continue
			}
			if x >= mid && len(seeds) == i {
				seeds = append(seeds, geometry.PointInt{X: x, Y: row})
			}
			lo, hi := row, row
			if prev >= 0 {
				lo, hi = min(row, prev), max(row, prev)
			}
			for y := lo; y <= hi+opts.thickness-1; y++ {
				img.Set(x, y, c)
			}
			prev = row
		}
	}

	if opts.speckle > 0 {
		rng := rand.New(rand.NewSource(opts.seed))
		n := int(opts.speckle * float64(opts.width*opts.height))
		for i := 0; i < n; i++ {
			img.Set(rng.Intn(opts.width), rng.Intn(opts.height), color.RGBA{
				R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255,
			})
		}
	}
	return img, seeds, nil
}

func newJob(opts options, jobPath, imgPath string, seeds []geometry.PointInt) *project.File {
	job := project.New("synthetic " + strings.Join(opts.curves, "+"))
	job.SetImage(jobPath, imgPath)
	job.SetCalibration(plotCalibration(opts.width, opts.height))
	for i, ds := range dataset.NewDefaults(len(opts.curves)) {
		ds.Name = strings.TrimSpace(opts.curves[i])
		if opts.dash > 0 {
			job.AddDataset(ds, seeds[i])
		} else {
			job.AddDataset(ds)
		}
	}
	return job
}
