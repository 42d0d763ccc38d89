package server

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/logfields"
)

// debounceWindow coalesces editor save bursts into one rebuild request.
const debounceWindow = 300 * time.Millisecond

// newWatcher creates a recursive filesystem watcher over root, never
// descending into skipDir (the destination lives inside the source tree in
// the default layout).
func newWatcher(root, skipDir string) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addDirsRecursive(w, root, skipDir); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func addDirsRecursive(w *fsnotify.Watcher, root, skipDir string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if skipDir != "" && path == skipDir {
			return fs.SkipDir
		}
		if base := filepath.Base(path); path != root && strings.HasPrefix(base, ".") {
			return fs.SkipDir
		}
		if err := w.Add(path); err != nil {
			slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// newDebouncer returns a request channel of capacity one and a trigger
// function that coalesces calls within the debounce window.
func newDebouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceWindow, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

// underDir reports whether path is dir itself or a descendant of it.
func underDir(path, dir string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// shouldIgnoreEvent filters filesystem events that must not trigger rebuilds:
// hidden files, editor temp and swap files, OS metadata.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	if base == "Thumbs.db" {
		return true
	}
	return false
}
