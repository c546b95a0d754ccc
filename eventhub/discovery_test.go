package eventhub

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanDirFiltersToEventNodes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "event0"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "event1"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mouse0"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "by-id"), 0o755))

	paths, err := scanDir(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "event0"),
		filepath.Join(dir, "event1"),
	}, paths)
}

func TestWatcherReportsCreateAndRemove(t *testing.T) {
	dir := t.TempDir()
	w, err := newWatcher(dir)
	require.NoError(t, err)
	defer w.close()

	path := filepath.Join(dir, "event5")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	var created []string
	for i := 0; i < 50 && len(created) == 0; i++ {
		c, _ := w.poll()
		created = append(created, c...)
		time.Sleep(10 * time.Millisecond)
	}
	assert.Contains(t, created, path)

	require.NoError(t, os.Remove(path))
	var removed []string
	for i := 0; i < 50 && len(removed) == 0; i++ {
		_, rm := w.poll()
		removed = append(removed, rm...)
		time.Sleep(10 * time.Millisecond)
	}
	assert.Contains(t, removed, path)
}
