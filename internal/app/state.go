// Package app provides the digitizing session: image, calibration, datasets,
// events and background tracing.
package app

import (
	"errors"
	"fmt"
	goimage "image"
	"log"
	"sync"

	"graph-digitizer/internal/calibration"
	"graph-digitizer/internal/dataset"
	"graph-digitizer/internal/image"
	"graph-digitizer/internal/trace"
	"graph-digitizer/internal/transform"
	"graph-digitizer/pkg/geometry"
)

var (
	// ErrNoImage is returned when tracing before an image is loaded.
	ErrNoImage = errors.New("no image loaded")
	// ErrStaleTrace is returned by Commit when the calibration changed while
	// the trace was running.
	ErrStaleTrace = errors.New("calibration changed since trace started")
)

// State holds the session state: the image being digitized, its calibration
// and the datasets traced from it.
type State struct {
	mu sync.RWMutex

	// Image
	Image  *image.Layer
	buffer trace.Buffer

	calibration *calibration.State
	datasets    []*dataset.Dataset

	// Optional X grid applied to committed points
	Snapper *dataset.Snapper

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different session events.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventCalibrationChanged
	EventDatasetsChanged
	EventTraceStarted
	EventTraceComplete
	EventTraceDiscarded
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates an empty session with a neutral calibration.
func NewState() *State {
	return &State{
		calibration: calibration.New(),
		listeners:   make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// LoadImage decodes the image at path. A denoise kernel above 1 runs a
// median blur before the pixels are captured for tracing.
func (s *State) LoadImage(path string, denoiseKernel int) error {
	layer, err := image.Load(path)
	if err != nil {
		return err
	}
	if denoiseKernel > 1 {
		img, err := image.Denoise(layer.Image, denoiseKernel)
		if err != nil {
			return fmt.Errorf("denoise %s: %w", path, err)
		}
		layer.Image = img
		log.Printf("Image: denoised %s with kernel %d", path, denoiseKernel)
	}

	s.setLayer(layer)
	return nil
}

// SetImage installs an already decoded image.
func (s *State) SetImage(img goimage.Image) {
	s.setLayer(&image.Layer{Image: img})
}

func (s *State) setLayer(layer *image.Layer) {
	buf := layer.Buffer()

	s.mu.Lock()
	s.Image = layer
	s.buffer = buf
	s.mu.Unlock()

	log.Printf("Image: loaded %dx%d %s", buf.Width(), buf.Height(), layer.Path)
	s.Emit(EventImageLoaded, layer)
}

// Calibrate applies fn to the calibration under the session lock.
func (s *State) Calibrate(fn func(c *calibration.State)) {
	s.mu.Lock()
	fn(s.calibration)
	gen := s.calibration.Generation()
	s.mu.Unlock()
	s.Emit(EventCalibrationChanged, gen)
}

// SetCalibration replaces the calibration. The generation keeps increasing
// so traces started against the old mapping become stale.
func (s *State) SetCalibration(c *calibration.State) {
	s.Calibrate(func(cur *calibration.State) {
		cur.Reset()
		for _, a := range calibration.Anchors {
			if p, ok := c.Anchor(a); ok {
				cur.SetAnchor(a, p)
			}
		}
		x, y := c.X(), c.Y()
		cur.SetXRange(x.Min, x.Max)
		cur.SetXLog(x.Log)
		cur.SetYRange(y.Min, y.Max)
		cur.SetYLog(y.Log)
		if y2, ok := c.Y2(); ok {
			cur.SetY2Range(y2.Min, y2.Max)
			cur.SetY2Log(y2.Log)
		}
	})
}

// ResetCalibration clears the calibration. In-flight traces are discarded
// when they are committed.
func (s *State) ResetCalibration() {
	s.Calibrate(func(c *calibration.State) { c.Reset() })
}

// Calibration returns a copy of the current calibration.
func (s *State) Calibration() *calibration.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calibration.Clone()
}

// SetDatasets replaces the dataset list.
func (s *State) SetDatasets(ds []*dataset.Dataset) {
	s.mu.Lock()
	s.datasets = append([]*dataset.Dataset(nil), ds...)
	s.mu.Unlock()
	s.Emit(EventDatasetsChanged, len(ds))
}

// Datasets returns copies of the datasets.
func (s *State) Datasets() []*dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*dataset.Dataset, len(s.datasets))
	for i, d := range s.datasets {
		out[i] = d.Clone()
	}
	return out
}

// Dataset returns a copy of dataset i.
func (s *State) Dataset(i int) (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.datasets) {
		return nil, fmt.Errorf("dataset index %d out of range [0,%d)", i, len(s.datasets))
	}
	return s.datasets[i].Clone(), nil
}

// Transformer snapshots the current calibration.
func (s *State) Transformer() (*transform.Transformer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transform.New(s.calibration)
}

// PixelToData converts a pixel position through the current calibration.
func (s *State) PixelToData(p geometry.Point2D, useSecondary bool) (geometry.Point2D, error) {
	tf, err := s.Transformer()
	if err != nil {
		return geometry.Point2D{}, err
	}
	return tf.PixelToData(p.X, p.Y, useSecondary)
}

// DataToPixel converts a data position through the current calibration.
func (s *State) DataToPixel(p geometry.Point2D, useSecondary bool) (geometry.Point2D, error) {
	tf, err := s.Transformer()
	if err != nil {
		return geometry.Point2D{}, err
	}
	return tf.DataToPixel(p.X, p.Y, useSecondary)
}
