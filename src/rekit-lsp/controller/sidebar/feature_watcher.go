package sidebar

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/internal/fs"
	"go.uber.org/zap"
)

// featureWatcher reports features appearing in or disappearing from a features directory.
// Generators run silently, so this is how their effect shows up in the output panel.
type featureWatcher struct {
	watcher *fsnotify.Watcher
	fs      fs.WorkspaceFS
	dir     string
	sink    io.Writer
	logger  *zap.SugaredLogger

	known  map[string]struct{}
	closer chan struct{}
	done   chan struct{}
	once   sync.Once
	err    error
}

func newFeatureWatcher(wfs fs.WorkspaceFS, dir string, sink io.Writer, logger *zap.SugaredLogger) (*featureWatcher, error) {
	entries, err := wfs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing features: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fs watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &featureWatcher{
		watcher: watcher,
		fs:      wfs,
		dir:     dir,
		sink:    sink,
		logger:  logger,
		known:   make(map[string]struct{}),
		closer:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, e := range entries {
		if e.IsDir() {
			w.known[e.Name()] = struct{}{}
		}
	}
	go w.handleChanges()
	return w, nil
}

func (w *featureWatcher) handleChanges() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnf("Failure in feature watcher for %s: %v", w.dir, err)
		case <-w.closer:
			return
		}
	}
}

func (w *featureWatcher) handle(event fsnotify.Event) {
	if filepath.Dir(event.Name) != w.dir {
		return
	}
	name := filepath.Base(event.Name)

	switch {
	case event.Has(fsnotify.Create):
		if ok, err := w.fs.DirExists(event.Name); err != nil || !ok {
			return
		}
		if _, seen := w.known[name]; seen {
			return
		}
		w.known[name] = struct{}{}
		w.report("feature added: %s\n", name)
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		if _, seen := w.known[name]; !seen {
			return
		}
		delete(w.known, name)
		w.report("feature removed: %s\n", name)
	}
}

func (w *featureWatcher) report(format, name string) {
	if _, err := fmt.Fprintf(w.sink, format, name); err != nil {
		w.logger.Warnf("reporting feature change: %v", err)
	}
}

// Close stops watching. It is safe to call more than once.
func (w *featureWatcher) Close() error {
	w.once.Do(func() {
		close(w.closer)
		<-w.done
		w.err = w.watcher.Close()
	})
	return w.err
}
