// Package watcher auto-ingests policy documents dropped into watched
// directories, using fsnotify with per-file debouncing.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/docproc"
	"github.com/claimsight/claimsight/internal/models"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches directories and feeds changed files to the processor.
// A rewritten file replaces its previously indexed fragments; a removed
// file drops them.
type Watcher struct {
	roots      []string
	extensions []string
	processor  *docproc.Processor
	debounce   time.Duration
	watcher    *fsnotify.Watcher
	logger     *zap.Logger

	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	documents   map[string]string // absolute path -> document id
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
}

// New creates a watcher over roots. extensions filter which files are
// ingested (empty means all).
func New(roots []string, extensions []string, processor *docproc.Processor, logger *zap.Logger) *Watcher {
	return &Watcher{
		roots:       roots,
		extensions:  extensions,
		processor:   processor,
		debounce:    defaultDebounce,
		logger:      logger,
		debounceMap: make(map[string]*time.Timer),
		documents:   make(map[string]string),
		done:        make(chan struct{}),
	}
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
// Missing roots are created.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	for _, root := range w.roots {
		if err := w.addRootLocked(root); err != nil {
			_ = w.watcher.Close()
			w.watcher = nil
			w.started = false
			w.mu.Unlock()
			return err
		}
	}
	w.mu.Unlock()

	w.logger.Info("watching directories",
		zap.Strings("roots", w.roots),
		zap.Strings("extensions", w.extensions))
	go w.run(ctx)
	return nil
}

// SyncExisting ingests files already present under the watched roots.
// Call after Start to pick up documents that predate the watcher.
func (w *Watcher) SyncExisting(ctx context.Context) {
	w.mu.Lock()
	roots := append([]string(nil), w.roots...)
	w.mu.Unlock()
	for _, root := range roots {
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			if w.matchExtension(path) {
				w.ingest(ctx, path)
			}
			return nil
		})
	}
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watch error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	path := ev.Name
	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			w.addDirectory(ctx, path)
			return
		}
		if w.matchExtension(path) {
			w.debounceIngest(ctx, path)
		}
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.cancelDebounce(path)
		w.remove(ctx, path)
	}
}

// addDirectory registers a newly created subdirectory and ingests its
// contents.
func (w *Watcher) addDirectory(ctx context.Context, dir string) {
	w.mu.Lock()
	watcher := w.watcher
	w.mu.Unlock()
	if watcher == nil {
		return
	}
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				w.logger.Debug("failed to watch directory", zap.String("path", path), zap.Error(err))
			}
			return nil
		}
		if w.matchExtension(path) {
			w.debounceIngest(ctx, path)
		}
		return nil
	})
}

func (w *Watcher) addRootLocked(root string) error {
	root = filepath.Clean(root)
	if _, err := os.Stat(root); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		if err := os.MkdirAll(root, 0755); err != nil {
			return err
		}
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) matchExtension(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range w.extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

func (w *Watcher) debounceIngest(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()
		w.ingest(ctx, path)
	})
}

func (w *Watcher) cancelDebounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
		delete(w.debounceMap, path)
	}
}

// ingest indexes path, replacing any fragments from a previous version of
// the same file.
func (w *Watcher) ingest(ctx context.Context, path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	w.mu.Lock()
	previous := w.documents[abs]
	w.mu.Unlock()
	if previous != "" {
		if err := w.processor.Remove(ctx, previous); err != nil {
			w.logger.Warn("failed to drop stale document",
				zap.String("path", abs),
				zap.String("document_id", previous),
				zap.Error(err))
		}
	}

	result, err := w.processor.IngestFile(ctx, abs, map[string]interface{}{
		models.MetaSource: filepath.Base(abs),
	})
	if err != nil {
		w.logger.Warn("failed to ingest file", zap.String("path", abs), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.documents[abs] = result.DocumentID
	w.mu.Unlock()
	w.logger.Info("ingested watched file",
		zap.String("path", abs),
		zap.String("document_id", result.DocumentID),
		zap.Int("fragments", result.FragmentsAdded))
}

func (w *Watcher) remove(ctx context.Context, path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	w.mu.Lock()
	documentID := w.documents[abs]
	delete(w.documents, abs)
	w.mu.Unlock()
	if documentID == "" {
		return
	}

	if err := w.processor.Remove(ctx, documentID); err != nil {
		w.logger.Warn("failed to remove document",
			zap.String("path", abs),
			zap.String("document_id", documentID),
			zap.Error(err))
		return
	}
	w.logger.Info("removed watched file",
		zap.String("path", abs),
		zap.String("document_id", documentID))
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
