package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstats/shelfstats-server/internal/logger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewRequiresExistingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.csv"), 0, func() error { return nil }, logger.Discard())
	assert.Error(t, err)
}

func TestWriteTriggersSingleReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.csv")
	writeFile(t, path, "a,b\n1,2\n")

	var calls atomic.Int32
	w, err := New(path, 50*time.Millisecond, func() error {
		calls.Add(1)
		return nil
	}, logger.Discard())
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	// A burst of writes inside the debounce window collapses to one reload.
	writeFile(t, path, "a,b\n1,3\n")
	writeFile(t, path, "a,b\n1,4\n")
	writeFile(t, path, "a,b\n1,5\n")

	assert.Eventually(t, func() bool {
		return calls.Load() == 1
	}, 2*time.Second, 20*time.Millisecond)

	// Give a trailing timer the chance to misfire before checking.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUnrelatedFileIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.csv")
	writeFile(t, path, "a,b\n")

	var calls atomic.Int32
	w, err := New(path, 30*time.Millisecond, func() error {
		calls.Add(1)
		return nil
	}, logger.Discard())
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	writeFile(t, filepath.Join(dir, "other.csv"), "x\n")

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestStopPreventsFurtherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.csv")
	writeFile(t, path, "a,b\n")

	var calls atomic.Int32
	w, err := New(path, 30*time.Millisecond, func() error {
		calls.Add(1)
		return nil
	}, logger.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	require.NoError(t, w.Stop())

	writeFile(t, path, "a,b\n9,9\n")
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}
