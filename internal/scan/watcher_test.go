package scan

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babyscan/babyscan/internal/types"
)

type recordingScanner struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingScanner) ScanFile(_ context.Context, babyID, path string, _ float64, _ string) (*types.Measurement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return &types.Measurement{ID: filepath.Base(path), BabyID: babyID, HAZCategory: "Normal"}, nil
}

func (r *recordingScanner) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func waitOutcome(t *testing.T, w *Watcher) Outcome {
	t.Helper()
	select {
	case o, ok := <-w.Outcomes():
		require.True(t, ok, "outcomes channel closed")
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for scan outcome")
		return Outcome{}
	}
}

func startWatcher(t *testing.T, cfg WatchConfig, scanner FileScanner) *Watcher {
	t.Helper()
	w, err := NewWatcher(cfg, scanner, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	return w
}

func TestWatcherScansMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	scanner := &recordingScanner{}
	w := startWatcher(t, WatchConfig{
		Dir:      dir,
		Pattern:  "*.png",
		BabyID:   "baby-1",
		Debounce: 50 * time.Millisecond,
	}, scanner)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.png"), []byte("png"), 0644))

	o := waitOutcome(t, w)
	require.NoError(t, o.Err)
	assert.Equal(t, filepath.Join(dir, "photo.png"), o.Path)
	assert.Equal(t, "baby-1", o.Measurement.BabyID)

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{filepath.Join(dir, "photo.png")}, scanner.calls())
}

func TestWatcherScansExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "day1"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "day1", "a.jpg"), []byte("jpg"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.gif"), []byte("gif"), 0644))

	scanner := &recordingScanner{}
	w := startWatcher(t, WatchConfig{
		Dir:          dir,
		BabyID:       "baby-1",
		Debounce:     50 * time.Millisecond,
		ScanExisting: true,
	}, scanner)

	o := waitOutcome(t, w)
	assert.Equal(t, filepath.Join(dir, "day1", "a.jpg"), o.Path)
	assert.Len(t, scanner.calls(), 1)
}

func TestWatcherSkipsUnchangedRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, []byte("same"), 0644))

	scanner := &recordingScanner{}
	w := startWatcher(t, WatchConfig{
		Dir:          dir,
		Pattern:      "*.png",
		BabyID:       "baby-1",
		Debounce:     50 * time.Millisecond,
		ScanExisting: true,
	}, scanner)
	waitOutcome(t, w)

	require.NoError(t, os.WriteFile(path, []byte("same"), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.Len(t, scanner.calls(), 1)
}

func TestWatcherStopClosesOutcomes(t *testing.T) {
	w, err := NewWatcher(WatchConfig{Dir: t.TempDir(), BabyID: "b"}, &recordingScanner{}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())

	select {
	case _, ok := <-w.Outcomes():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("outcomes channel not closed after Stop")
	}
}

func TestNewWatcherValidation(t *testing.T) {
	scanner := &recordingScanner{}
	_, err := NewWatcher(WatchConfig{Dir: "x", BabyID: "b"}, nil, nil)
	assert.Error(t, err)
	_, err = NewWatcher(WatchConfig{BabyID: "b"}, scanner, nil)
	assert.Error(t, err)
	_, err = NewWatcher(WatchConfig{Dir: "x"}, scanner, nil)
	assert.Error(t, err)
	_, err = NewWatcher(WatchConfig{Dir: "x", BabyID: "b", Pattern: "[bad"}, scanner, nil)
	assert.Error(t, err)
}
