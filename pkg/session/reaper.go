package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/guide/internal/logging"
	"github.com/aretw0/guide/pkg/domain"
	"github.com/robfig/cron/v3"
)

// Reaper evicts abandoned and finished sessions from a Store.
type Reaper struct {
	store    *Store
	period   time.Duration
	lifetime time.Duration
	logger   *slog.Logger
}

// ReaperOption configures the Reaper.
type ReaperOption func(*Reaper)

// WithPeriod sets the sweep period. The scheduler works at one-second resolution.
func WithPeriod(d time.Duration) ReaperOption {
	return func(r *Reaper) {
		if d > 0 {
			r.period = d
		}
	}
}

// WithLifetime sets the maximum idle time of a session.
func WithLifetime(d time.Duration) ReaperOption {
	return func(r *Reaper) {
		if d > 0 {
			r.lifetime = d
		}
	}
}

// WithReaperLogger configures a logger for the Reaper.
func WithReaperLogger(logger *slog.Logger) ReaperOption {
	return func(r *Reaper) {
		r.logger = logger
	}
}

// NewReaper creates a reaper with the default period and lifetime.
func NewReaper(store *Store, opts ...ReaperOption) *Reaper {
	r := &Reaper{
		store:    store,
		period:   domain.DefaultCleanPeriod,
		lifetime: domain.DefaultMaxSessionLifetime,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sweep runs one eviction cycle and returns the evicted session ids.
func (r *Reaper) Sweep() []string {
	evicted := r.store.Evict(r.lifetime)
	if len(evicted) > 0 {
		r.logger.Debug("sessions reaped", "count", len(evicted), "remaining", r.store.Len())
	}
	return evicted
}

// Run sweeps on every period until ctx is cancelled.
// It waits for an in-flight sweep before returning.
func (r *Reaper) Run(ctx context.Context) error {
	c := cron.New(cron.WithLogger(cronLogger{r.logger}), cron.WithChain(cron.Recover(cronLogger{r.logger})))
	c.Schedule(cron.Every(r.period), cron.FuncJob(func() { r.Sweep() }))
	c.Start()

	r.logger.Info("reaper started", "period", r.period, "lifetime", r.lifetime)
	<-ctx.Done()

	<-c.Stop().Done()
	r.logger.Info("reaper stopped")
	return nil
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"err", err}, keysAndValues...)...)
}
