package themes

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/interfaces"
)

// Watcher invalidates cached theme chains when files under the themes folder
// change.
type Watcher struct {
	pass     *Pass
	root     string
	watcher  *fsnotify.Watcher
	logger   interfaces.Logger
	onChange func(themeID string)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(logger interfaces.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithChangeHook is called after a theme has been invalidated.
func WithChangeHook(fn func(themeID string)) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// NewWatcher watches every folder under the pass loader's themes path.
func NewWatcher(pass *Pass, opts ...WatcherOption) (*Watcher, error) {
	if pass == nil || pass.loader == nil {
		return nil, ErrThemesDirRequired
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{
		pass:    pass,
		root:    pass.loader.ThemesPath(),
		watcher: fsw,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	if err := w.addDirsRecursive(w.root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("themes.watcher.error", "error", err)
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(ev.Name)
		}
	}
	id := w.themeOf(ev.Name)
	if id == "" {
		return
	}
	removed := w.pass.Invalidate(id)
	w.logger.Debug("themes.watcher.invalidated", "theme_id", id, "op", ev.Op.String(), "entries", removed)
	if w.onChange != nil {
		w.onChange(id)
	}
}

// themeOf maps a changed path to the theme folder that contains it.
func (w *Watcher) themeOf(name string) string {
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || strings.HasPrefix(rel, "../") {
		return ""
	}
	id, _, _ := strings.Cut(rel, "/")
	return id
}

func (w *Watcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.watcher.Add(p); err != nil {
				w.logger.Warn("themes.watcher.add_failed", "dir", p, "error", err)
			}
		}
		return nil
	})
}
