package ml

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWatcherMarksStale(t *testing.T) {
	dir := copyArtifacts(t)
	files := DefaultArtifactFiles()

	w, err := NewWatcher(dir, files, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(100 * time.Millisecond)
	assert.False(t, w.Stale())

	require.NoError(t, os.WriteFile(filepath.Join(dir, files.Scaler), []byte(`{}`), 0o600))
	assert.Eventually(t, w.Stale, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherNil(t *testing.T) {
	var w *Watcher
	assert.False(t, w.Stale())
	assert.NoError(t, w.Close())
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher("/nonexistent/artifacts", DefaultArtifactFiles(), nil)
	assert.Error(t, err)
}
