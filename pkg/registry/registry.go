package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/guide/internal/logging"
	"github.com/aretw0/guide/pkg/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aretw0/guide/pkg/registry"

// Handler is the implementation of an action.
// args holds only the declared request arguments. session is the live session context
// and may be mutated by the handler.
type Handler func(ctx context.Context, args map[string]any, session map[string]any) (any, error)

// Action is a named capability with its declared inputs.
type Action struct {
	Handler Handler
	// RequiredArgs must be present in the request arguments.
	RequiredArgs []string
	// RequiredSession must be present in the session context.
	RequiredSession []string
}

// Registry manages the available actions.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action

	tracer trace.Tracer
	logger *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLogger configures a logger for the Registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Registry) {
		r.tracer = tp.Tracer(tracerName)
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		actions: make(map[string]Action),
		tracer:  otel.Tracer(tracerName),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds an action to the registry.
// If an action with the same name exists, it is overwritten.
func (r *Registry) Register(name string, action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = action
}

// RegisterFunc registers fn with the given required request arguments and no session requirements.
func (r *Registry) RegisterFunc(name string, fn Handler, requiredArgs ...string) {
	r.Register(name, Action{Handler: fn, RequiredArgs: requiredArgs})
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[name]
	return ok
}

// Names returns the registered action names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch validates the inputs of the named action and invokes it.
// A nil session is treated as an empty context.
// Handler errors and panics are returned as *domain.ActionError.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any, session map[string]any) (any, error) {
	r.mu.RLock()
	action, ok := r.actions[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &domain.UndefinedActionError{Action: name}
	}

	selected := make(map[string]any, len(action.RequiredArgs))
	for _, arg := range action.RequiredArgs {
		v, ok := args[arg]
		if !ok {
			return nil, &domain.MissingArgumentError{Action: name, Kind: domain.ArgumentRequest, Name: arg}
		}
		selected[arg] = v
	}

	if session == nil {
		session = map[string]any{}
	}
	for _, key := range action.RequiredSession {
		if _, ok := session[key]; !ok {
			return nil, &domain.MissingArgumentError{Action: name, Kind: domain.ArgumentSession, Name: key}
		}
	}

	ctx, span := r.tracer.Start(ctx, "action "+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("guide.action", name)),
	)
	defer span.End()

	start := time.Now()
	result, err := invoke(ctx, name, action.Handler, selected, session)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Warn("action failed", "action", name, "duration", time.Since(start), "err", err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	r.logger.Debug("action executed", "action", name, "duration", time.Since(start))
	return result, nil
}

func invoke(ctx context.Context, name string, fn Handler, args, session map[string]any) (result any, err error) {
	if fn == nil {
		return nil, &domain.ActionError{Action: name, Err: fmt.Errorf("no handler")}
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = &domain.ActionError{Action: name, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	result, err = fn(ctx, args, session)
	if err != nil {
		return nil, &domain.ActionError{Action: name, Err: err}
	}
	return result, nil
}
