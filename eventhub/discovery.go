package eventhub

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// scanDir lists candidate evdev nodes under dir, sorted for deterministic
// device-id assignment across restarts given the same hardware set.
func scanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// watcher wraps fsnotify to report create/delete under dir, mirroring the
// "subscribe to a kernel directory-watch... on subsequent polls" step of
// §4.1's discovery contract. fsnotify is already the pack's directory-watch
// library (pulled by the teacher's config hot-reload path); reused here for
// its intended purpose rather than a hand-rolled inotify wrapper.
type watcher struct {
	w *fsnotify.Watcher
}

func newWatcher(dir string) (*watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return &watcher{w: w}, nil
}

// poll drains pending fsnotify events without blocking, returning newly
// created and removed paths.
func (w *watcher) poll() (created, removed []string) {
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !strings.Contains(filepath.Base(ev.Name), "event") {
				continue
			}
			switch {
			case ev.Op&fsnotify.Create != 0:
				created = append(created, ev.Name)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				removed = append(removed, ev.Name)
			}
		default:
			return
		}
	}
}

func (w *watcher) close() error {
	return w.w.Close()
}
