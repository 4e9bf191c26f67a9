package domain

import (
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventSessionStart EventType = "session_start"
	EventSessionEnd   EventType = "session_end"
	EventTransition   EventType = "transition"
	EventRejected     EventType = "rejected"
	EventOverride     EventType = "override"
	EventRollback     EventType = "rollback"
	EventActionCall   EventType = "action_call"
	EventActionReturn EventType = "action_return"
)

// End reasons reported on EventSessionEnd.
const (
	EndReasonDeleted  = "deleted"
	EndReasonIdle     = "idle"
	EndReasonTerminal = "terminal"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// SessionEvent reports a change in a session machine.
type SessionEvent struct {
	EventBase
	// From and To are the step before and after the change (equal for rejected triggers).
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	// Trigger is the event name for transitions and rejected triggers.
	Trigger string `json:"trigger,omitempty"`
	// Reason is set on session end.
	Reason string `json:"reason,omitempty"`
}

// ActionEvent represents an action invocation.
type ActionEvent struct {
	EventBase
	Action   string        `json:"action"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run outside the session store lock and must not block for long.
type LifecycleHooks struct {
	OnSessionStart func(*SessionEvent)
	OnSessionEnd   func(*SessionEvent)
	// OnStep fires for transitions, rejected triggers, overrides and rollbacks.
	OnStep         func(*SessionEvent)
	OnActionCall   func(*ActionEvent)
	OnActionReturn func(*ActionEvent)
}

// Emit routes a session event to the matching hook.
func (h LifecycleHooks) Emit(e *SessionEvent) {
	switch e.Type {
	case EventSessionStart:
		if h.OnSessionStart != nil {
			h.OnSessionStart(e)
		}
	case EventSessionEnd:
		if h.OnSessionEnd != nil {
			h.OnSessionEnd(e)
		}
	default:
		if h.OnStep != nil {
			h.OnStep(e)
		}
	}
}

// CombineHooks fans every event out to all the given hooks, in order.
func CombineHooks(all ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnSessionStart: func(e *SessionEvent) {
			for _, h := range all {
				if h.OnSessionStart != nil {
					h.OnSessionStart(e)
				}
			}
		},
		OnSessionEnd: func(e *SessionEvent) {
			for _, h := range all {
				if h.OnSessionEnd != nil {
					h.OnSessionEnd(e)
				}
			}
		},
		OnStep: func(e *SessionEvent) {
			for _, h := range all {
				if h.OnStep != nil {
					h.OnStep(e)
				}
			}
		},
		OnActionCall: func(e *ActionEvent) {
			for _, h := range all {
				if h.OnActionCall != nil {
					h.OnActionCall(e)
				}
			}
		},
		OnActionReturn: func(e *ActionEvent) {
			for _, h := range all {
				if h.OnActionReturn != nil {
					h.OnActionReturn(e)
				}
			}
		},
	}
}
