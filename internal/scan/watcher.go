package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/babyscan/babyscan/internal/types"
)

const (
	// outcomeChannelBuffer is the size of the watcher outcome channel.
	outcomeChannelBuffer = 64

	defaultDebounce = 500 * time.Millisecond
)

// FileScanner scans an image file for a baby. *Service implements it.
type FileScanner interface {
	ScanFile(ctx context.Context, babyID, path string, scaleCmPerPx float64, notes string) (*types.Measurement, error)
}

// WatchConfig configures inbox watching.
type WatchConfig struct {
	// Dir is the inbox directory. It is created if missing.
	Dir string

	// Pattern selects files relative to Dir, doublestar syntax (e.g. "**/*.png").
	Pattern string

	// BabyID receives every measurement taken from the inbox.
	BabyID string

	// ScaleCmPerPx is passed to each scan; zero means the service default.
	ScaleCmPerPx float64

	// Debounce is how long a file must be quiet before it is scanned.
	Debounce time.Duration

	// ScanExisting scans files already present when the watcher starts.
	ScanExisting bool
}

// Outcome reports the result of scanning one inbox file.
type Outcome struct {
	Path        string
	Measurement *types.Measurement
	Err         error
}

// Watcher scans new images that appear in an inbox directory.
type Watcher struct {
	config  WatchConfig
	scanner FileScanner
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// Debouncing: last event time per path
	pendingMu sync.Mutex
	pending   map[string]time.Time

	// Content hashes of scanned files, so rewrites of identical bytes are skipped
	hashes map[string]string

	outcomes chan Outcome
}

// NewWatcher creates an inbox watcher. Call Start to begin watching.
func NewWatcher(config WatchConfig, scanner FileScanner, logger *slog.Logger) (*Watcher, error) {
	if scanner == nil {
		return nil, fmt.Errorf("scanner is required")
	}
	if config.Dir == "" {
		return nil, fmt.Errorf("inbox directory is required")
	}
	if config.BabyID == "" {
		return nil, fmt.Errorf("baby id is required")
	}
	if config.Pattern == "" {
		config.Pattern = "**/*.{jpg,jpeg,png}"
	}
	if !doublestar.ValidatePattern(config.Pattern) {
		return nil, fmt.Errorf("invalid inbox pattern %q", config.Pattern)
	}
	if config.Debounce <= 0 {
		config.Debounce = defaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		config:   config,
		scanner:  scanner,
		watcher:  fsw,
		logger:   logger,
		pending:  make(map[string]time.Time),
		hashes:   make(map[string]string),
		outcomes: make(chan Outcome, outcomeChannelBuffer),
	}, nil
}

// Outcomes returns the channel of scan outcomes. It is closed when the
// watcher stops.
func (w *Watcher) Outcomes() <-chan Outcome {
	return w.outcomes
}

// Start begins watching. Processing stops when ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.config.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create inbox: %w", err)
	}
	if err := w.addWatchesRecursive(w.config.Dir); err != nil {
		return err
	}

	var existing []string
	if w.config.ScanExisting {
		matches, err := doublestar.Glob(os.DirFS(w.config.Dir), w.config.Pattern, doublestar.WithFilesOnly())
		if err != nil {
			return fmt.Errorf("failed to list inbox: %w", err)
		}
		for _, rel := range matches {
			existing = append(existing, filepath.Join(w.config.Dir, filepath.FromSlash(rel)))
		}
	}

	go w.processEvents(ctx, existing)

	w.logger.Info("Inbox watcher started",
		"dir", w.config.Dir,
		"pattern", w.config.Pattern,
		"debounce", w.config.Debounce,
		"existing", len(existing))
	return nil
}

// Stop stops the watcher. The outcomes channel is closed by the processing
// goroutine when it exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		base := d.Name()
		if strings.HasPrefix(base, ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context, existing []string) {
	defer close(w.outcomes)

	for _, path := range existing {
		if ctx.Err() != nil {
			return
		}
		w.scan(ctx, path)
	}

	ticker := time.NewTicker(w.config.Debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case now := <-ticker.C:
			w.flushPending(ctx, now)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addWatchesRecursive(path); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	if !w.matches(path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = time.Now()
	w.pendingMu.Unlock()
}

// matches reports whether path, relative to the inbox, fits the pattern.
func (w *Watcher) matches(path string) bool {
	rel, err := filepath.Rel(w.config.Dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	ok, err := doublestar.Match(w.config.Pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

// flushPending scans files that have been quiet for at least the debounce delay.
func (w *Watcher) flushPending(ctx context.Context, now time.Time) {
	w.pendingMu.Lock()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.config.Debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	for _, path := range ready {
		if ctx.Err() != nil {
			return
		}
		w.scan(ctx, path)
	}
}

func (w *Watcher) scan(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("Failed to read inbox file", "path", path, "error", err)
		}
		return
	}
	if len(content) == 0 {
		return
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])
	if w.hashes[path] == hash {
		return
	}
	w.hashes[path] = hash

	m, err := w.scanner.ScanFile(ctx, w.config.BabyID, path, w.config.ScaleCmPerPx, "")
	if err != nil {
		w.logger.Warn("Inbox scan failed", "path", path, "error", err)
	} else {
		w.logger.Info("Inbox scan recorded", "path", path, "measurement_id", m.ID, "category", m.HAZCategory)
	}

	select {
	case w.outcomes <- Outcome{Path: path, Measurement: m, Err: err}:
	case <-ctx.Done():
	}
}
