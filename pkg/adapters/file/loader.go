package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/guide/internal/logging"
	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/scenario"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 100 * time.Millisecond

// Loader reads a scenario document (YAML or JSON) from a single file.
type Loader struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// Option configures the Loader.
type Option func(*Loader)

// WithDebounce sets how long Watch waits for writes to settle.
func WithDebounce(d time.Duration) Option {
	return func(l *Loader) {
		l.debounce = d
	}
}

// WithLogger configures a logger for watch errors.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a loader for path.
func New(path string, opts ...Option) *Loader {
	l := &Loader{
		path:     path,
		debounce: defaultDebounce,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the scenario file path.
func (l *Loader) Path() string {
	return l.path
}

// Load implements ports.ScenarioLoader.
func (l *Loader) Load(_ context.Context) (*domain.Scenario, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	sc, err := scenario.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return sc, nil
}

// Watch implements ports.Watchable.
// The parent directory is watched so that editors replacing the file are noticed.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	abs, err := filepath.Abs(l.path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		ch     = make(chan struct{}, 1)
		mu     sync.Mutex
		timer  *time.Timer
		closed bool
	)
	notify := func() {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- struct{}{}:
		default:
		}
	}

	go func() {
		defer func() {
			watcher.Close()
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			closed = true
			close(ch)
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(l.debounce, notify)
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Error("watcher error", "path", l.path, "err", err)
			}
		}
	}()

	return ch, nil
}
