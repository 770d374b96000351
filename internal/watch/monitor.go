// Package watch bridges the capture device to the session orchestrator. It
// watches a single directory, non-recursively, and emits an ingestion event
// for each new image file once the file has stopped growing.
package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/snapstudio/server/internal/domain/session"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
}

// IsImageFile reports whether the path has a recognized raster-image
// extension.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Options tunes the stability window applied before a file is ingested.
type Options struct {
	// StabilityThreshold is how long a file's size and mtime must hold
	// still before it is considered fully written.
	StabilityThreshold time.Duration
	// PollInterval is how often candidates are re-checked.
	PollInterval time.Duration
}

// Monitor watches a directory for newly completed image files. Files already
// present when watching starts are never ingested.
type Monitor struct {
	dir    string
	opts   Options
	logger *slog.Logger

	photos chan session.IngestedFile
	errs   chan error

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewMonitor creates a monitor for the given directory.
func NewMonitor(dir string, logger *slog.Logger, opts Options) *Monitor {
	if opts.StabilityThreshold <= 0 {
		opts.StabilityThreshold = 2 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		dir:    dir,
		opts:   opts,
		logger: logger,
		photos: make(chan session.IngestedFile, 256),
		errs:   make(chan error, 16),
	}
}

// Photos is the stream of stable ingested files.
func (m *Monitor) Photos() <-chan session.IngestedFile { return m.photos }

// Errors surfaces watch failures (directory removed, permission revoked).
// The monitor keeps running after an error where the OS watch allows it.
func (m *Monitor) Errors() <-chan error { return m.errs }

// Start begins watching. Calling Start while a watch is active restarts it.
func (m *Monitor) Start() error {
	m.Stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating filesystem watcher: %w", err)
	}
	if err := watcher.Add(m.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", m.dir, err)
	}

	m.mu.Lock()
	m.watcher = watcher
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(watcher, done)

	m.logger.Info("watching for photos", "dir", m.dir)
	return nil
}

// Stop tears down the watch. Safe to call repeatedly or with no watch
// active; pending unstable candidates are discarded.
func (m *Monitor) Stop() {
	m.mu.Lock()
	watcher := m.watcher
	done := m.done
	m.watcher = nil
	m.done = nil
	m.mu.Unlock()

	if watcher == nil {
		return
	}
	close(done)
	watcher.Close()
	m.wg.Wait()
}

type candidate struct {
	size      int64
	modTime   time.Time
	stableFor time.Duration
}

func (m *Monitor) run(watcher *fsnotify.Watcher, done chan struct{}) {
	defer m.wg.Done()

	pending := make(map[string]*candidate)
	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(ev.Name)
			if strings.HasPrefix(name, ".") || !IsImageFile(ev.Name) {
				continue
			}
			if _, tracked := pending[ev.Name]; !tracked && ev.Has(fsnotify.Create) {
				pending[ev.Name] = &candidate{}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Error("filesystem watch error", "error", err)
			select {
			case m.errs <- err:
			default:
			}

		case <-ticker.C:
			for path, cand := range pending {
				stable, err := m.observe(path, cand)
				if err != nil {
					// File vanished mid-write; forget it.
					delete(pending, path)
					continue
				}
				if stable {
					delete(pending, path)
					m.emit(path, cand, done)
				}
			}
		}
	}
}

// observe re-stats a candidate and reports whether it has held still for the
// full stability threshold.
func (m *Monitor) observe(path string, cand *candidate) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	if info.Size() != cand.size || !info.ModTime().Equal(cand.modTime) {
		cand.size = info.Size()
		cand.modTime = info.ModTime()
		cand.stableFor = 0
		return false, nil
	}

	cand.stableFor += m.opts.PollInterval
	return cand.stableFor >= m.opts.StabilityThreshold, nil
}

func (m *Monitor) emit(path string, cand *candidate, done chan struct{}) {
	file := session.IngestedFile{
		ID:          uuid.NewString(),
		Filename:    filepath.Base(path),
		SourcePath:  path,
		CaptureTime: cand.modTime,
	}
	select {
	case m.photos <- file:
		m.logger.Info("photo detected", "file", file.Filename)
	case <-done:
	}
}
