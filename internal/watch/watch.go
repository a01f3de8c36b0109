// Package watch re-runs a callback when any of a set of files changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces editor save bursts into one callback.
const DefaultDebounce = 150 * time.Millisecond

// Option configures Run.
type Option func(*config)

type config struct {
	debounce time.Duration
	onError  func(error)
}

// WithDebounce sets the quiet period before the callback fires.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.debounce = d
		}
	}
}

// WithErrorHandler receives watcher errors. Errors are dropped otherwise.
func WithErrorHandler(fn func(error)) Option {
	return func(c *config) {
		c.onError = fn
	}
}

// Run blocks until ctx is done, calling onChange with the changed file after
// each debounced burst. Parent directories are watched so files replaced by
// rename (as most editors save) keep being tracked. Callbacks run on the
// caller's goroutine one at a time.
func Run(ctx context.Context, files []string, onChange func(path string), opts ...Option) error {
	if len(files) == 0 {
		return errors.New("watch: no files to watch")
	}
	if onChange == nil {
		return errors.New("watch: change handler is required")
	}
	cfg := config{debounce: DefaultDebounce}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]struct{}, len(files))
	dirs := make(map[string]struct{})
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("watch: resolve %s: %w", file, err)
		}
		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch: add %s: %w", dir, err)
		}
	}

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending string
	)
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, tracked := targets[name]; !tracked {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending = name
			stop()
			timer = time.NewTimer(cfg.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			onChange(pending)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if cfg.onError != nil {
				cfg.onError(err)
			}
		}
	}
}
