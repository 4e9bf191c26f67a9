package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/guide/internal/logging"
	"github.com/aretw0/guide/pkg/domain"
)

// Machine is the runtime state of one session.
type Machine struct {
	ID         string    `json:"id"`
	Current    string    `json:"current"`
	Previous   string    `json:"previous,omitempty"`
	LastAccess time.Time `json:"last_access"`
}

// Store owns every session machine.
type Store struct {
	initial  string
	terminal string
	// rules is indexed as source -> event -> destination.
	rules map[string]map[string]string

	mu       sync.Mutex
	machines map[string]*Machine

	now    func() time.Time
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the Store.
type Option func(*Store)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle hooks. They run after the store lock is released.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Store) {
		s.hooks = hooks
	}
}

// NewStore creates an empty store for a compiled scenario.
func NewStore(initial, terminal string, rules []domain.TransitionRule, opts ...Option) *Store {
	s := &Store{
		initial:  initial,
		terminal: terminal,
		rules:    make(map[string]map[string]string),
		machines: make(map[string]*Machine),
		now:      time.Now,
		logger:   logging.NewNop(),
	}
	for _, r := range rules {
		bySource, ok := s.rules[r.Source]
		if !ok {
			bySource = make(map[string]string)
			s.rules[r.Source] = bySource
		}
		bySource[r.Event] = r.Destination
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create installs a fresh machine at the initial step, replacing any previous one.
func (s *Store) Create(sessionID string) {
	s.mu.Lock()
	now := s.now()
	s.machines[sessionID] = &Machine{ID: sessionID, Current: s.initial, LastAccess: now}
	s.mu.Unlock()

	s.logger.Debug("session created", "session_id", sessionID, "step", s.initial)
	s.hooks.Emit(&domain.SessionEvent{
		EventBase: domain.EventBase{Timestamp: now, Type: domain.EventSessionStart, SessionID: sessionID},
		To:        s.initial,
	})
}

// CanTrigger applies the transition for event if the current step allows it.
// It reports false, leaving the machine untouched, when no rule matches.
func (s *Store) CanTrigger(sessionID, event string) (bool, error) {
	_, _, ok, err := s.Trigger(sessionID, event)
	return ok, err
}

// Trigger is CanTrigger that also reports the rule it matched against.
// from is the step the event was checked on; to is the destination, or from
// when the event was rejected. Both are read under the same lock that applies
// the move, so callers must resolve the event against from and never against
// an earlier CurrentStep read.
func (s *Store) Trigger(sessionID, event string) (from, to string, ok bool, err error) {
	s.mu.Lock()
	m, err := s.touch(sessionID)
	if err != nil {
		s.mu.Unlock()
		return "", "", false, err
	}

	from = m.Current
	to, ok = s.rules[from][event]
	if ok {
		m.Previous = from
		m.Current = to
	} else {
		to = from
	}
	at := m.LastAccess
	s.mu.Unlock()

	e := &domain.SessionEvent{
		EventBase: domain.EventBase{Timestamp: at, Type: domain.EventTransition, SessionID: sessionID},
		From:      from,
		To:        to,
		Trigger:   event,
	}
	if !ok {
		e.Type = domain.EventRejected
		s.logger.Debug("trigger rejected", "session_id", sessionID, "step", from, "event", event)
	} else {
		s.logger.Debug("transition", "session_id", sessionID, "from", from, "to", to, "event", event)
	}
	s.hooks.Emit(e)

	return from, to, ok, nil
}

// CurrentStep returns the step the session is in.
func (s *Store) CurrentStep(sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.touch(sessionID)
	if err != nil {
		return "", err
	}
	return m.Current, nil
}

// SetStep overwrites the current step. The previous step is left untouched.
// The step is trusted: it is not checked against the scenario.
func (s *Store) SetStep(sessionID, step string) error {
	s.mu.Lock()
	m, err := s.touch(sessionID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	from := m.Current
	m.Current = step
	at := m.LastAccess
	s.mu.Unlock()

	s.hooks.Emit(&domain.SessionEvent{
		EventBase: domain.EventBase{Timestamp: at, Type: domain.EventOverride, SessionID: sessionID},
		From:      from,
		To:        step,
	})
	return nil
}

// Rollback moves the session back to the step held before the last transition.
// Only one level is kept: rolling back twice lands on the same step.
// Without any prior transition it is a no-op.
func (s *Store) Rollback(sessionID string) error {
	s.mu.Lock()
	m, err := s.touch(sessionID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if m.Previous == "" {
		s.mu.Unlock()
		return nil
	}
	from := m.Current
	m.Current = m.Previous
	at := m.LastAccess
	to := m.Current
	s.mu.Unlock()

	s.hooks.Emit(&domain.SessionEvent{
		EventBase: domain.EventBase{Timestamp: at, Type: domain.EventRollback, SessionID: sessionID},
		From:      from,
		To:        to,
	})
	return nil
}

// Undo reverts the transition from -> to, and only that one. It reports false
// and changes nothing when the session has since moved elsewhere.
func (s *Store) Undo(sessionID, from, to string) (bool, error) {
	s.mu.Lock()
	m, err := s.touch(sessionID)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	if m.Current != to || m.Previous != from {
		s.mu.Unlock()
		return false, nil
	}
	m.Current = from
	at := m.LastAccess
	s.mu.Unlock()

	s.hooks.Emit(&domain.SessionEvent{
		EventBase: domain.EventBase{Timestamp: at, Type: domain.EventRollback, SessionID: sessionID},
		From:      to,
		To:        from,
	})
	return true, nil
}

// Delete removes the session machine.
func (s *Store) Delete(sessionID string) error {
	s.mu.Lock()
	m, ok := s.machines[sessionID]
	if !ok {
		s.mu.Unlock()
		return &domain.UninitializedSessionError{SessionID: sessionID}
	}
	delete(s.machines, sessionID)
	last := m.Current
	at := s.now()
	s.mu.Unlock()

	s.logger.Debug("session deleted", "session_id", sessionID)
	s.hooks.Emit(&domain.SessionEvent{
		EventBase: domain.EventBase{Timestamp: at, Type: domain.EventSessionEnd, SessionID: sessionID},
		From:      last,
		Reason:    domain.EndReasonDeleted,
	})
	return nil
}

// Snapshot returns a copy of the machine without refreshing its access time.
func (s *Store) Snapshot(sessionID string) (Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.machines[sessionID]
	if !ok {
		return Machine{}, &domain.UninitializedSessionError{SessionID: sessionID}
	}
	return *m, nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.machines)
}

// Evict removes every session idle for longer than lifetime or sitting on the terminal step.
// It returns the evicted ids.
func (s *Store) Evict(lifetime time.Duration) []string {
	var ended []*domain.SessionEvent

	s.mu.Lock()
	now := s.now()
	for id, m := range s.machines {
		reason := ""
		switch {
		case m.Current == s.terminal:
			reason = domain.EndReasonTerminal
		case now.Sub(m.LastAccess) > lifetime:
			reason = domain.EndReasonIdle
		default:
			continue
		}
		delete(s.machines, id)
		ended = append(ended, &domain.SessionEvent{
			EventBase: domain.EventBase{Timestamp: now, Type: domain.EventSessionEnd, SessionID: id},
			From:      m.Current,
			Reason:    reason,
		})
	}
	s.mu.Unlock()

	ids := make([]string, 0, len(ended))
	for _, e := range ended {
		ids = append(ids, e.SessionID)
		s.hooks.Emit(e)
	}
	return ids
}

// touch returns the machine and refreshes its access time. Caller holds s.mu.
func (s *Store) touch(sessionID string) (*Machine, error) {
	m, ok := s.machines[sessionID]
	if !ok {
		return nil, &domain.UninitializedSessionError{SessionID: sessionID}
	}
	m.LastAccess = s.now()
	return m, nil
}
