package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcherTriggersReload(t *testing.T) {
	dir := t.TempDir()
	var reloads atomic.Int32
	w, err := New(dir, func() { reloads.Add(1) }, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Close()) }()
	w.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.tpl"), []byte("A"), 0o644))

	require.Eventually(t, func() bool {
		return reloads.Load() >= 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	var reloads atomic.Int32
	w, err := New(dir, func() { reloads.Add(1) }, WithDebounce(100*time.Millisecond))
	require.NoError(t, err)
	defer func() { require.NoError(t, w.Close()) }()
	w.Start()

	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "burst.tpl")
		require.NoError(t, os.WriteFile(name, []byte{byte('a' + i)}, 0o644))
	}

	require.Eventually(t, func() bool {
		return reloads.Load() >= 1
	}, 3*time.Second, 10*time.Millisecond)

	// once the burst settles the count stays put
	settled := reloads.Load()
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, settled, reloads.Load())
}

func TestWatcherCloseStopsEventLoop(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, func() {})
	require.NoError(t, err)
	w.Start()
	require.NoError(t, w.Close())
}

func TestWatcherMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), func() {})
	assert.Error(t, err)
}
