// Package watch re-runs a sync whenever the template tree changes.
//
// Filesystem events are debounced into batches. Each settled batch triggers
// a run in the background so the event loop keeps draining while a sync is
// in flight. Runs go through a singleflight group: triggers that arrive
// while a run is in flight share it, and the run repeats once so changes
// made during it are not lost.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"
)

// DefaultDebounce is used when Options.Debounce is zero
const DefaultDebounce = 500 * time.Millisecond

// DefaultIgnore lists base-name patterns never worth a run
var DefaultIgnore = []string{".git", ".hg", ".svn", "*.swp", "*.swx", "*~", ".#*", "*.tmp", ".DS_Store"}

// RunFunc performs one sync
type RunFunc func(ctx context.Context) error

// Options configures a Watcher
type Options struct {
	// Root is the template tree to watch. Required.
	Root string

	// Debounce is the quiet period after the last event before a run.
	Debounce time.Duration

	// Ignore holds base-name glob patterns; matching paths never trigger a run.
	Ignore []string

	// Run is called for the initial sync and after every batch of changes.
	Run RunFunc
}

// Watcher watches a directory tree and serializes runs
type Watcher struct {
	opts    Options
	group   singleflight.Group
	pending atomic.Int64
	runs    atomic.Int64
}

// New creates a Watcher
func New(opts Options) (*Watcher, error) {
	if opts.Root == "" {
		return nil, errors.New(errors.ErrInvalidInput, "no directory to watch")
	}
	if opts.Run == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no run function")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Ignore == nil {
		opts.Ignore = DefaultIgnore
	}
	return &Watcher{opts: opts}, nil
}

// Runs returns how many times Run has been called
func (w *Watcher) Runs() int64 {
	return w.runs.Load()
}

// Pending returns how many triggers are waiting for the next run
func (w *Watcher) Pending() int64 {
	return w.pending.Load()
}

// Trigger requests a run and waits for one that started after the request.
// Concurrent triggers share a single run.
func (w *Watcher) Trigger(ctx context.Context) error {
	w.pending.Add(1)
	for {
		_, err, _ := w.group.Do("sync", func() (interface{}, error) {
			var err error
			for w.pending.Swap(0) > 0 {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				w.runs.Add(1)
				err = w.opts.Run(ctx)
			}
			return nil, err
		})
		// A request that landed after the in-flight loop last checked is
		// still pending; go round again so it gets its own run.
		if w.pending.Load() == 0 || ctx.Err() != nil {
			return err
		}
	}
}

// Watch runs once, then again after each batch of changes, until ctx is
// done. Run errors are logged and do not stop watching. Watch returns only
// after every run it started has finished.
func (w *Watcher) Watch(ctx context.Context) error {
	logger := logging.GetLogger("watch")

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to create file watcher")
	}
	defer func() { _ = fw.Close() }()

	if err := w.addRecursive(fw, w.opts.Root); err != nil {
		return err
	}
	logger.Info().Str("root", w.opts.Root).Dur("debounce", w.opts.Debounce).Msg("watching template tree")

	var inflight sync.WaitGroup
	defer inflight.Wait()
	trigger := func(reason string) {
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			w.runAndLog(ctx, reason)
		}()
	}

	trigger("initial")

	var timer *time.Timer
	var timerC <-chan time.Time
	batch := 0

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			logger.Trace().Str("path", event.Name).Str("op", event.Op.String()).Msg("template change")

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(fw, event.Name); err != nil {
						logger.Warn().Err(err).Str("path", event.Name).Msg("cannot watch new directory")
					}
				}
			}

			batch++
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.opts.Debounce)
			}

		case <-timerC:
			timer, timerC = nil, nil
			logger.Debug().Int("events", batch).Msg("template settled")
			batch = 0
			trigger("change")

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func (w *Watcher) runAndLog(ctx context.Context, reason string) {
	logger := logging.GetLogger("watch")
	if err := w.Trigger(ctx); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Str("reason", reason).Msg("sync run failed")
		return
	}
	logger.Debug().Str("reason", reason).Int64("runs", w.Runs()).Msg("sync run finished")
}

func (w *Watcher) addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return errors.Wrapf(err, errors.ErrTemplateRoot, "cannot watch %s", root).
					WithDetail("path", root)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot watch %s", path).
				WithDetail("path", path)
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.opts.Ignore {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
