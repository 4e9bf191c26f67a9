package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/guide/internal/logging"
	"github.com/aretw0/guide/pkg/domain"
)

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// Hooks returns lifecycle hooks broadcasting every session event as JSON.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	publish := func(e *domain.SessionEvent) {
		data, err := json.Marshal(e)
		if err != nil {
			sm.logger.Error("SSE: encode failed", "err", err)
			return
		}
		sm.Broadcast(e.SessionID, string(data))
	}
	return domain.LifecycleHooks{
		OnSessionStart: publish,
		OnSessionEnd:   publish,
		OnStep:         publish,
	}
}
