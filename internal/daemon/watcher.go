package daemon

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/mdx2md/internal/foundation/errors"
	"git.home.luguber.info/inful/mdx2md/internal/logfields"
)

// watchedExts are the source files whose changes affect exported output.
var watchedExts = []string{".mdx", ".md", ".js", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}

// Watcher reports changes below a docs tree. fsnotify watches single directories, so
// every directory is added at start and new ones as they appear.
type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	onEvent func(path string)

	mu       sync.Mutex
	stopChan chan struct{}
	stopped  bool
}

// NewWatcher creates a watcher for root. onEvent receives changed file paths.
func NewWatcher(root string, onEvent func(path string)) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.FileSystemError("failed to resolve watch root").WithCause(err).WithPath(root).Build()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.DaemonError("failed to create file watcher").WithCause(err).Build()
	}
	return &Watcher{root: absRoot, watcher: w, onEvent: onEvent, stopChan: make(chan struct{})}, nil
}

// Start adds the tree to the watch list and begins delivering events.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.root); err != nil {
		return err
	}
	slog.Info("Watching docs tree", logfields.Path(w.root), slog.Int("directories", len(w.watcher.WatchList())))
	go w.watchLoop(ctx)
	return nil
}

// Stop stops delivering events and releases the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)
	return w.watcher.Close()
}

func (w *Watcher) addTree(dir string) error {
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
	if err != nil {
		return ferrors.FileSystemError("failed to watch directory").WithCause(err).WithPath(dir).Build()
	}
	return nil
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Docs watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	if event.Has(fsnotify.Create) {
		if isDir(event.Name) {
			if err := w.addTree(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
			}
			return
		}
	}
	if !slices.Contains(watchedExts, strings.ToLower(filepath.Ext(event.Name))) {
		return
	}
	slog.Debug("Docs change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
	w.onEvent(event.Name)
}
