// Package watch re-runs the smoke sequence when files behind it change.
// It monitors the servers definition file and the server command binary,
// so a rebuild of the server under test triggers a fresh run.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the settle delay applied after a change before
// rerunning. Editors and build tools rewrite files in several events.
const DefaultDebounce = 300 * time.Millisecond

// Rerun is invoked after changes have settled. Invocations are serialized:
// changes arriving during a run coalesce into at most one follow-up run.
type Rerun func(ctx context.Context)

// Config holds watcher configuration.
type Config struct {
	// Paths are the files whose changes trigger a rerun.
	Paths []string

	// Debounce is the settle delay after a change before rerunning.
	// Default: DefaultDebounce.
	Debounce time.Duration
}

// Watcher triggers a callback when any watched file is rewritten. The parent
// directories are watched rather than the files themselves, so editors that
// replace files by rename still trigger.
type Watcher struct {
	mu sync.Mutex

	paths map[string]struct{}
	dirs  []string
	delay time.Duration

	logger zerolog.Logger
	rerun  Rerun

	debounce *time.Timer
	runMu    sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a watcher over cfg.Paths that invokes rerun after changes.
func New(cfg Config, rerun Rerun, logger zerolog.Logger) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("watch: no paths configured")
	}
	if rerun == nil {
		return nil, errors.New("watch: nil rerun callback")
	}

	delay := cfg.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}

	paths := make(map[string]struct{}, len(cfg.Paths))
	seen := make(map[string]struct{})
	var dirs []string
	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("watch: resolving %s: %w", p, err)
		}
		paths[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}

	return &Watcher{
		paths:  paths,
		dirs:   dirs,
		delay:  delay,
		logger: logger,
		rerun:  rerun,
	}, nil
}

// Start begins watching and returns immediately. The watch loop stops when
// ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: creating watcher: %w", err)
	}
	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return fmt.Errorf("watch: watching %s: %w", dir, err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.logger.Info().Strs("dirs", w.dirs).Msg("watching for changes")

	w.wg.Add(1)
	go w.loop(runCtx, fw)
	return nil
}

// Stop halts the watch loop and any pending debounce timer. A rerun already
// in flight finishes on its own.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()

	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			name := filepath.Clean(event.Name)
			if _, watched := w.paths[name]; !watched {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug().Str("path", name).Stringer("op", event.Op).Msg("watched file changed")
			w.schedule(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}

	w.debounce = time.AfterFunc(w.delay, func() {
		if ctx.Err() != nil {
			return
		}
		w.runMu.Lock()
		defer w.runMu.Unlock()
		w.rerun(ctx)
	})
}
