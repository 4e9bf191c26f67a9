package observability

import (
	"log/slog"

	"github.com/aretw0/guide/pkg/domain"
)

// LogHooks returns lifecycle hooks that log every event.
// Step changes are logged at debug level, session boundaries and action failures at info/warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(e *domain.SessionEvent) {
			logger.Info("session_start", "session_id", e.SessionID, "step", e.To)
		},
		OnSessionEnd: func(e *domain.SessionEvent) {
			logger.Info("session_end", "session_id", e.SessionID, "step", e.From, "reason", e.Reason)
		},
		OnStep: func(e *domain.SessionEvent) {
			logger.Debug(string(e.Type),
				"session_id", e.SessionID,
				"from", e.From,
				"to", e.To,
				"event", e.Trigger,
			)
		},
		OnActionCall: func(e *domain.ActionEvent) {
			logger.Debug("action_call", "session_id", e.SessionID, "action", e.Action)
		},
		OnActionReturn: func(e *domain.ActionEvent) {
			if e.Err != nil {
				logger.Warn("action_return",
					"session_id", e.SessionID,
					"action", e.Action,
					"duration", e.Duration,
					"err", e.Err,
				)
				return
			}
			logger.Debug("action_return", "session_id", e.SessionID, "action", e.Action, "duration", e.Duration)
		},
	}
}
