package guide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/guide/internal/logging"
	"github.com/aretw0/guide/pkg/adapters/file"
	loamAdapter "github.com/aretw0/guide/pkg/adapters/loam"
	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/ports"
	"github.com/aretw0/guide/pkg/registry"
	"github.com/aretw0/guide/pkg/scenario"
	"github.com/aretw0/guide/pkg/session"
)

// Supervisor is the dialogue-processing boundary.
// It owns the validated scenario, the session store and its reaper, and turns
// every interaction into a domain.Response. Runtime errors never escape it.
type Supervisor struct {
	name    string
	graph   *scenario.Graph
	store   *session.Store
	reaper  *session.Reaper
	loader  ports.ScenarioLoader
	actions ports.ActionDispatcher

	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	now         func() time.Time
	lifetime    time.Duration
	cleanPeriod time.Duration
}

// Option defines a functional option for configuring the Supervisor.
type Option func(*Supervisor)

// WithLoader injects a custom ScenarioLoader, bypassing path detection.
func WithLoader(l ports.ScenarioLoader) Option {
	return func(s *Supervisor) {
		s.loader = l
	}
}

// WithActions sets the action dispatcher. The scenario is validated against it.
func WithActions(actions ports.ActionDispatcher) Option {
	return func(s *Supervisor) {
		s.actions = actions
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Supervisor) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		s.logger = logger
	}
}

// WithClock overrides the time source of the session store.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		s.now = now
	}
}

// WithSessionLifetime sets how long an idle session survives (default 1h).
func WithSessionLifetime(d time.Duration) Option {
	return func(s *Supervisor) {
		s.lifetime = d
	}
}

// WithCleanPeriod sets the reaper period (default 1m).
func WithCleanPeriod(d time.Duration) Option {
	return func(s *Supervisor) {
		s.cleanPeriod = d
	}
}

// New loads and validates the scenario, then prepares an empty session store.
// By default, a directory path is read with Loam (one document per step) and a
// file path as a single YAML/JSON document. If WithLoader option is provided,
// path is only used as a label.
func New(path string, opts ...Option) (*Supervisor, error) {
	s := &Supervisor{
		now:         time.Now,
		lifetime:    domain.DefaultMaxSessionLifetime,
		cleanPeriod: domain.DefaultCleanPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	if s.loader == nil {
		if path == "" {
			return nil, fmt.Errorf("path is required when no custom loader is provided")
		}
		loader, err := loaderFor(path, s.logger)
		if err != nil {
			return nil, err
		}
		s.loader = loader
	}
	if path != "" {
		s.name = filepath.Base(path)
		s.logger = s.logger.With("scenario", s.name)
	}

	// Without a dispatcher every action reference is undefined.
	if s.actions == nil {
		s.actions = registry.NewRegistry(registry.WithLogger(s.logger))
	}

	graph, err := scenario.Load(context.Background(), s.loader, s.actions)
	if err != nil {
		return nil, err
	}
	s.graph = graph

	s.store = session.NewStore(graph.InitialStep(), graph.TerminalStep(), graph.Rules(),
		session.WithClock(s.now),
		session.WithLogger(s.logger),
		session.WithHooks(s.hooks),
	)
	s.reaper = session.NewReaper(s.store,
		session.WithPeriod(s.cleanPeriod),
		session.WithLifetime(s.lifetime),
		session.WithReaperLogger(s.logger),
	)

	s.logger.Debug("scenario loaded", "steps", len(graph.Steps()), "rules", len(graph.Rules()))
	return s, nil
}

func loaderFor(path string, logger *slog.Logger) (ports.ScenarioLoader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if info.IsDir() {
		return loamAdapter.Open(path)
	}
	return file.New(path, file.WithLogger(logger)), nil
}

// Run evicts idle and finished sessions until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	return s.reaper.Run(ctx)
}

// Begin creates (or resets) the session machine and asks the initial question.
func (s *Supervisor) Begin(sessionID string) domain.Response {
	s.store.Create(sessionID)
	return s.ask(s.graph.InitialStep(), "")
}

// Guide processes one event for the session.
//
// An event unknown to the current step is answered with a reprompt. An event
// without a destination runs its action and answers with a statement, leaving
// the session in place. Otherwise the transition is applied first and the action
// runs after it; if the action fails the transition is rolled back, unless
// another caller has moved the session since.
func (s *Supervisor) Guide(ctx context.Context, sessionID, event string, args, attrs map[string]any) domain.Response {
	current, err := s.store.CurrentStep(sessionID)
	if err != nil {
		return s.fail(sessionID, err)
	}

	step, _ := s.graph.Step(current)
	ev, ok := step.Events[event]
	if !ok {
		return s.reprompt(current, fmt.Errorf("%w: %q on step %q", domain.ErrBadTrigger, event, current))
	}

	if ev.Next == "" {
		result, err := s.dispatch(ctx, sessionID, ev.Action, args, attrs)
		if err != nil {
			return s.fail(sessionID, err)
		}
		return domain.Response{
			Type:     domain.ResponseStatement,
			Step:     current,
			Prompt:   ev.Prompt,
			Reprompt: step.Reprompt,
			Result:   result,
		}
	}

	// The rule is resolved again from the step the store actually moved from:
	// a concurrent caller may have consumed current in the meantime.
	from, to, moved, err := s.store.Trigger(sessionID, event)
	if err != nil {
		return s.fail(sessionID, err)
	}
	if !moved {
		return s.reprompt(from, fmt.Errorf("%w: %q on step %q", domain.ErrBadTrigger, event, from))
	}
	step, _ = s.graph.Step(from)
	ev = step.Events[event]

	result, err := s.dispatch(ctx, sessionID, ev.Action, args, attrs)
	if err != nil {
		undone, rbErr := s.store.Undo(sessionID, from, to)
		switch {
		case rbErr != nil:
			s.logger.Warn("rollback after action failure", "session_id", sessionID, "err", rbErr)
		case !undone:
			s.logger.Debug("rollback skipped, session moved on", "session_id", sessionID, "from", from, "to", to)
		}
		return s.fail(sessionID, err)
	}

	resp := s.ask(to, ev.Prompt)
	resp.Result = result
	return resp
}

// RepromptError rolls the session back one step and repeats that step's prompt.
func (s *Supervisor) RepromptError(sessionID string) domain.Response {
	if err := s.store.Rollback(sessionID); err != nil {
		return s.fail(sessionID, err)
	}
	current, err := s.store.CurrentStep(sessionID)
	if err != nil {
		return s.fail(sessionID, err)
	}
	return s.reprompt(current, nil)
}

// MoveToStep redirects the session to a defined step.
func (s *Supervisor) MoveToStep(sessionID, step string) domain.Response {
	if _, ok := s.graph.Step(step); !ok {
		return s.fail(sessionID, &domain.UndefinedStepError{Step: step})
	}
	if err := s.store.SetStep(sessionID, step); err != nil {
		return s.fail(sessionID, err)
	}
	return s.ask(step, "")
}

// CurrentStep returns the step the session is in.
func (s *Supervisor) CurrentStep(sessionID string) (string, error) {
	return s.store.CurrentStep(sessionID)
}

// Help answers with the current step help, or the scenario default help.
func (s *Supervisor) Help(sessionID string) domain.Response {
	current, err := s.store.CurrentStep(sessionID)
	if err != nil {
		return s.fail(sessionID, err)
	}
	step, _ := s.graph.Step(current)

	help := step.Help
	if help == "" {
		help = s.graph.DefaultHelp()
	}
	return domain.Response{
		Type:     domain.ResponseQuestion,
		Step:     current,
		Prompt:   help,
		Reprompt: step.Reprompt,
	}
}

// End removes the session.
func (s *Supervisor) End(sessionID string) error {
	return s.store.Delete(sessionID)
}

// Snapshot returns the session machine without touching its access time.
func (s *Supervisor) Snapshot(sessionID string) (session.Machine, error) {
	return s.store.Snapshot(sessionID)
}

// Name returns the base name of the scenario path, or "" for an injected loader without a path.
func (s *Supervisor) Name() string {
	return s.name
}

// Graph returns the validated scenario.
func (s *Supervisor) Graph() *scenario.Graph {
	return s.graph
}

// Store returns the session store.
func (s *Supervisor) Store() *session.Store {
	return s.store
}

// Loader returns the underlying ScenarioLoader.
func (s *Supervisor) Loader() ports.ScenarioLoader {
	return s.loader
}

// Watch returns a channel that signals when the underlying scenario changes.
// Returns error if the loader does not support watching.
func (s *Supervisor) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := s.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// ask answers with the step question. Terminal steps answer with a statement.
func (s *Supervisor) ask(name, prompt string) domain.Response {
	step, _ := s.graph.Step(name)

	typ := domain.ResponseQuestion
	if step.Terminal() || name == s.graph.TerminalStep() {
		typ = domain.ResponseStatement
	}
	if prompt == "" {
		prompt = step.Reprompt
	}
	return domain.Response{
		Type:     typ,
		Step:     name,
		Prompt:   prompt,
		Reprompt: step.Reprompt,
	}
}

func (s *Supervisor) reprompt(current string, cause error) domain.Response {
	step, _ := s.graph.Step(current)
	resp := domain.Response{
		Type:     domain.ResponseReprompt,
		Step:     current,
		Prompt:   step.Reprompt,
		Reprompt: step.Reprompt,
		Err:      cause,
	}
	if cause != nil {
		resp.Reason = domain.ReasonBadTrigger
	}
	return resp
}

func (s *Supervisor) dispatch(ctx context.Context, sessionID, action string, args, attrs map[string]any) (any, error) {
	if action == "" {
		return nil, nil
	}

	base := domain.EventBase{Timestamp: s.now(), Type: domain.EventActionCall, SessionID: sessionID}
	if s.hooks.OnActionCall != nil {
		s.hooks.OnActionCall(&domain.ActionEvent{EventBase: base, Action: action})
	}

	start := time.Now()
	result, err := s.actions.Dispatch(ctx, action, args, attrs)

	if s.hooks.OnActionReturn != nil {
		base.Type = domain.EventActionReturn
		base.Timestamp = s.now()
		s.hooks.OnActionReturn(&domain.ActionEvent{
			EventBase: base,
			Action:    action,
			Duration:  time.Since(start),
			Err:       err,
		})
	}
	return result, err
}

// fail translates a runtime error into a generic error answer.
func (s *Supervisor) fail(sessionID string, err error) domain.Response {
	reason := domain.ReasonGeneral
	switch {
	case errors.Is(err, domain.ErrUninitializedSession):
		reason = domain.ReasonUninitializedSession
	case errors.Is(err, domain.ErrUndefinedStep):
		reason = domain.ReasonUndefinedStep
	case errors.Is(err, domain.ErrUndefinedAction):
		reason = domain.ReasonUndefinedAction
	case errors.Is(err, domain.ErrMissingArgument):
		reason = domain.ReasonMissingArgument
	default:
		var actionErr *domain.ActionError
		if errors.As(err, &actionErr) {
			reason = domain.ReasonActionFailed
		}
	}

	if reason == domain.ReasonUninitializedSession {
		s.logger.Debug("session not found", "session_id", sessionID)
	} else {
		s.logger.Warn("interaction failed", "session_id", sessionID, "reason", reason, "err", err)
	}

	return domain.Response{
		Type:   domain.ResponseError,
		Prompt: domain.InternalErrorMessage,
		Reason: reason,
		Err:    err,
	}
}
