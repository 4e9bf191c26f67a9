package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/scenario"
	backend "github.com/redis/go-redis/v9"
)

// Loader reads the scenario document from a Redis key so that every replica
// serves the same scenario. Sessions themselves are never stored in Redis.
type Loader struct {
	client *backend.Client
	prefix string
	name   string
}

type Option func(*Loader)

// WithPrefix sets the key prefix for scenarios.
func WithPrefix(prefix string) Option {
	return func(l *Loader) {
		l.prefix = prefix
	}
}

// WithName selects which scenario to read (default "default").
func WithName(name string) Option {
	return func(l *Loader) {
		l.name = name
	}
}

// New creates a new Redis loader with options.
func New(address, password string, db int, opts ...Option) *Loader {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromURL creates a loader from a redis:// URL.
func NewFromURL(url string, opts ...Option) (*Loader, error) {
	options, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(options), opts...), nil
}

// NewFromClient creates a new Redis loader from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Loader {
	l := &Loader{
		client: client,
		prefix: "guide:scenario:",
		name:   "default",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) key() string {
	return l.prefix + l.name
}

func (l *Loader) channel() string {
	return l.key() + ":updates"
}

// Load implements ports.ScenarioLoader.
func (l *Loader) Load(ctx context.Context) (*domain.Scenario, error) {
	data, err := l.client.Get(ctx, l.key()).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, fmt.Errorf("scenario %q not published", l.name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return scenario.Parse(data)
}

// Put parses data and, if it is a well-formed document, stores it and notifies watchers.
// Graph validation is left to the caller since it needs the action catalog.
func (l *Loader) Put(ctx context.Context, data []byte) error {
	if _, err := scenario.Parse(data); err != nil {
		return err
	}

	if err := l.client.Set(ctx, l.key(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store scenario: %w", err)
	}
	if err := l.client.Publish(ctx, l.channel(), l.name).Err(); err != nil {
		return fmt.Errorf("failed to notify update: %w", err)
	}
	return nil
}

// Watch implements ports.Watchable through Redis pub/sub.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	pubsub := l.client.Subscribe(ctx, l.channel())
	// Wait for confirmation that subscription is created.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}

// Close releases the underlying client.
func (l *Loader) Close() error {
	return l.client.Close()
}
