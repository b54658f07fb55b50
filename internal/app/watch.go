package app

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileWatcher polls a set of files and calls back whenever any of them has
// a newer modification time than last seen. It is used to re-run a job when
// the job file or its image is edited.
type FileWatcher struct {
	mu            sync.Mutex
	paths         []string
	baseline      map[string]time.Time
	checkInterval time.Duration
	stopCh        chan struct{}
	doneCh        chan struct{}
	onChange      func(path string)
}

// NewFileWatcher creates a watcher for paths. Symlinks are resolved so that
// editors that replace the target are still noticed.
func NewFileWatcher(checkInterval time.Duration, paths ...string) *FileWatcher {
	w := &FileWatcher{
		baseline:      make(map[string]time.Time),
		checkInterval: checkInterval,
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if real, err := filepath.EvalSymlinks(p); err == nil {
			p = real
		}
		w.paths = append(w.paths, p)
	}
	w.ResetBaseline()
	return w
}

// OnChange sets the callback. It runs on the watcher goroutine.
func (w *FileWatcher) OnChange(callback func(path string)) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// Paths returns the watched paths.
func (w *FileWatcher) Paths() []string {
	return append([]string(nil), w.paths...)
}

// Start begins watching in a background goroutine.
func (w *FileWatcher) Start() {
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.watchLoop()
}

// Stop stops the watcher goroutine and waits for it to exit.
func (w *FileWatcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *FileWatcher) watchLoop() {
	defer close(w.doneCh)
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if path, ok := w.Check(); ok {
				w.mu.Lock()
				cb := w.onChange
				w.mu.Unlock()
				if cb != nil {
					cb(path)
				}
			}
		}
	}
}

// Check reports the first path modified since the baseline and moves the
// baseline forward for all paths.
func (w *FileWatcher) Check() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := ""
	for _, p := range w.paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.ModTime().After(w.baseline[p]) {
			if changed == "" {
				changed = p
			}
			w.baseline[p] = info.ModTime()
		}
	}
	return changed, changed != ""
}

// ResetBaseline records the current modification times as seen.
func (w *FileWatcher) ResetBaseline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.paths {
		if info, err := os.Stat(p); err == nil {
			w.baseline[p] = info.ModTime()
		}
	}
}
