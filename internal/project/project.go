// Package project provides job file handling and persistence.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"graph-digitizer/internal/calibration"
	"graph-digitizer/internal/dataset"
	"graph-digitizer/internal/trace"
	"graph-digitizer/pkg/geometry"
)

// CurrentVersion is the job file format version written by Save.
const CurrentVersion = 1

// File represents a digitizer job file (.json).
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Image path (relative to job file)
	ImagePath string `json:"image,omitempty"`

	Title  string `json:"title,omitempty"`
	XLabel string `json:"x_label,omitempty"`
	YLabel string `json:"y_label,omitempty"`

	Calibration CalibrationSection `json:"calibration"`
	Datasets    []DatasetEntry     `json:"datasets"`

	Settings Settings `json:"settings"`
}

// CalibrationSection stores the axis mapping. Unset anchors are omitted.
type CalibrationSection struct {
	XLeft   *geometry.Point2D  `json:"x_left,omitempty"`
	XRight  *geometry.Point2D  `json:"x_right,omitempty"`
	YBottom *geometry.Point2D  `json:"y_bottom,omitempty"`
	YTop    *geometry.Point2D  `json:"y_top,omitempty"`
	X       calibration.Range  `json:"x"`
	Y       calibration.Range  `json:"y"`
	Y2      *calibration.Range `json:"y2,omitempty"`
}

// DatasetEntry is one curve to trace. With no seeds the full-column scan is
// used; otherwise each seed is walked and the results are merged.
type DatasetEntry struct {
	Name          string              `json:"name"`
	Color         string              `json:"color"`
	UseSecondaryY bool                `json:"use_secondary_y,omitempty"`
	Seeds         []geometry.PointInt `json:"seeds,omitempty"`
	Points        []geometry.Point2D  `json:"points,omitempty"`
}

// Settings holds per-job trace parameters. Nil sections fall back to
// preferences.
type Settings struct {
	Seed          *trace.SeedOptions `json:"seed,omitempty"`
	Post          *trace.PostOptions `json:"post,omitempty"`
	DenoiseKernel int                `json:"denoise_kernel,omitempty"`
	SnapX         []float64          `json:"snap_x,omitempty"`
}

// New creates a new job file with a neutral calibration.
func New(name string) *File {
	now := time.Now()
	f := &File{
		Version:  CurrentVersion,
		Name:     name,
		Created:  now,
		Modified: now,
	}
	f.SetCalibration(calibration.New())
	return f
}

// Load loads a job from a .json file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("failed to parse job file %s: %w", path, err)
	}
	if proj.Version > CurrentVersion {
		return nil, fmt.Errorf("job file %s: unsupported version %d", path, proj.Version)
	}

	return &proj, nil
}

// Save saves the job to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()
	if p.Version == 0 {
		p.Version = CurrentVersion
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetImage sets the image path (relative to the job file).
func (p *File) SetImage(projectPath, imagePath string) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), imagePath)
	if err != nil {
		p.ImagePath = imagePath
	} else {
		p.ImagePath = rel
	}
	p.Modified = time.Now()
}

// GetImagePath returns the absolute path to the image.
func (p *File) GetImagePath(projectPath string) string {
	if p.ImagePath == "" {
		return ""
	}
	if filepath.IsAbs(p.ImagePath) {
		return p.ImagePath
	}
	return filepath.Join(filepath.Dir(projectPath), p.ImagePath)
}

// CalibrationState rebuilds the axis mapping stored in the file.
func (p *File) CalibrationState() *calibration.State {
	c := p.Calibration
	s := calibration.New()
	for a, pt := range map[calibration.Anchor]*geometry.Point2D{
		calibration.AnchorXLeft:   c.XLeft,
		calibration.AnchorXRight:  c.XRight,
		calibration.AnchorYBottom: c.YBottom,
		calibration.AnchorYTop:    c.YTop,
	} {
		if pt != nil {
			s.SetAnchor(a, *pt)
		}
	}
	s.SetXRange(c.X.Min, c.X.Max)
	s.SetXLog(c.X.Log)
	s.SetYRange(c.Y.Min, c.Y.Max)
	s.SetYLog(c.Y.Log)
	if c.Y2 != nil {
		s.SetY2Range(c.Y2.Min, c.Y2.Max)
		s.SetY2Log(c.Y2.Log)
	}
	return s
}

// SetCalibration stores a copy of cal in the file.
func (p *File) SetCalibration(cal *calibration.State) {
	anchor := func(a calibration.Anchor) *geometry.Point2D {
		if pt, ok := cal.Anchor(a); ok {
			return &pt
		}
		return nil
	}
	sec := CalibrationSection{
		XLeft:   anchor(calibration.AnchorXLeft),
		XRight:  anchor(calibration.AnchorXRight),
		YBottom: anchor(calibration.AnchorYBottom),
		YTop:    anchor(calibration.AnchorYTop),
		X:       cal.X(),
		Y:       cal.Y(),
	}
	if y2, ok := cal.Y2(); ok {
		sec.Y2 = &y2
	}
	p.Calibration = sec
	p.Modified = time.Now()
}

// BuildDatasets converts the dataset entries, validating names and colors.
func (p *File) BuildDatasets() ([]*dataset.Dataset, error) {
	out := make([]*dataset.Dataset, 0, len(p.Datasets))
	for i, e := range p.Datasets {
		ds, err := dataset.New(e.Name, e.Color)
		if err != nil {
			return nil, fmt.Errorf("dataset %d: %w", i, err)
		}
		ds.UseSecondaryY = e.UseSecondaryY
		ds.ReplacePoints(e.Points)
		out = append(out, ds)
	}
	return out, nil
}

// AddDataset appends a dataset entry and returns its index.
func (p *File) AddDataset(ds *dataset.Dataset, seeds ...geometry.PointInt) int {
	p.Datasets = append(p.Datasets, DatasetEntry{
		Name:          ds.Name,
		Color:         ds.Color,
		UseSecondaryY: ds.UseSecondaryY,
		Seeds:         append([]geometry.PointInt(nil), seeds...),
		Points:        append([]geometry.Point2D(nil), ds.Points...),
	})
	p.Modified = time.Now()
	return len(p.Datasets) - 1
}

// SetResults stores traced points for entry i.
func (p *File) SetResults(i int, points []geometry.Point2D) error {
	if i < 0 || i >= len(p.Datasets) {
		return fmt.Errorf("dataset index %d out of range [0,%d)", i, len(p.Datasets))
	}
	p.Datasets[i].Points = append([]geometry.Point2D(nil), points...)
	p.Modified = time.Now()
	return nil
}
