package indexer

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last filesystem event
// before a re-index run starts.
const DefaultDebounce = 500 * time.Millisecond

// Watcher re-indexes a project root whenever Go files under it change.
// Events are debounced so bursts of writes (editor saves, git checkout)
// trigger a single incremental run.
type Watcher struct {
	indexer  *Indexer
	rootPath string
	config   *Config
	onRun    func(*Statistics, error)

	fsw      *fsnotify.Watcher
	debounce time.Duration
	runCh    chan struct{}

	dirty   bool
	dirtyMu sync.Mutex

	debounceTimer *time.Timer
	timerMu       sync.Mutex

	cancel   context.CancelFunc
	stopOnce sync.Once
	doneCh   chan struct{}
}

// Watch starts watching rootPath recursively. Each debounced change set
// triggers an incremental IndexProject run; onRun, when non-nil, receives
// every run's result. The watcher stops when ctx is cancelled or Stop is
// called.
func (idx *Indexer) Watch(ctx context.Context, rootPath string, config *Config, onRun func(*Statistics, error)) (*Watcher, error) {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		indexer:  idx,
		rootPath: absRoot,
		config:   config,
		onRun:    onRun,
		fsw:      fsw,
		debounce: DefaultDebounce,
		runCh:    make(chan struct{}, 1),
		doneCh:   make(chan struct{}),
	}

	if err := w.addDirectoriesRecursively(absRoot); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	wctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	go w.run(wctx)
	return w, nil
}

// Stop halts event processing and waits for the watch loop to exit.
// Safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.cancel()
		<-w.doneCh
		err = w.fsw.Close()
	})
	return err
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			w.stopDebounceTimer()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			// New directories join the watch set immediately
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						log.Printf("watcher: failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}

			if !w.shouldProcessEvent(event) {
				continue
			}

			w.dirtyMu.Lock()
			w.dirty = true
			w.dirtyMu.Unlock()

			w.resetDebounceTimer()

		case <-w.runCh:
			w.reindex(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		}
	}
}

// reindex runs one incremental indexing pass if changes are pending.
func (w *Watcher) reindex(ctx context.Context) {
	w.dirtyMu.Lock()
	dirty := w.dirty
	w.dirty = false
	w.dirtyMu.Unlock()

	if !dirty {
		return
	}

	stats, err := w.indexer.IndexProject(ctx, w.rootPath, w.config)
	if errors.Is(err, ErrIndexingInProgress) {
		// Another run holds the lock. Keep the changes pending and let
		// the next debounce window pick them up.
		w.dirtyMu.Lock()
		w.dirty = true
		w.dirtyMu.Unlock()
		w.resetDebounceTimer()
	}

	if w.onRun != nil {
		w.onRun(stats, err)
	}
}

// shouldProcessEvent checks if an event concerns a Go source file.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return strings.HasSuffix(event.Name, ".go")
}

// resetDebounceTimer restarts the quiet-period timer.
func (w *Watcher) resetDebounceTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		select {
		case w.runCh <- struct{}{}:
		default:
		}
	})
}

// stopDebounceTimer stops the debounce timer if it exists.
func (w *Watcher) stopDebounceTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}

// addDirectoriesRecursively adds all directories in the tree to the
// watch set, skipping the same directories discovery never walks.
func (w *Watcher) addDirectoriesRecursively(rootPath string) error {
	includeVendor := w.config != nil && w.config.IncludeVendor

	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// The root must be watchable; subdirectory errors are logged
			// and skipped.
			if path == rootPath {
				return err
			}
			log.Printf("watcher: error accessing %s: %v", path, err)
			return nil
		}

		if !info.IsDir() {
			return nil
		}

		if path != rootPath {
			if skipDirName(info.Name()) || (!includeVendor && info.Name() == "vendor") {
				return filepath.SkipDir
			}
		}

		if err := w.fsw.Add(path); err != nil {
			log.Printf("watcher: failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
