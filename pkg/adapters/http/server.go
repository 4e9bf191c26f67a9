package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/guide"
	"github.com/aretw0/guide/internal/input"
	"github.com/aretw0/guide/internal/logging"
	"github.com/aretw0/guide/internal/presentation/graph"
	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/scenario"
	"github.com/aretw0/guide/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Supervisor defines what the webhook needs from the dialogue boundary.
type Supervisor interface {
	Begin(sessionID string) domain.Response
	Guide(ctx context.Context, sessionID, event string, args, attrs map[string]any) domain.Response
	RepromptError(sessionID string) domain.Response
	MoveToStep(sessionID, step string) domain.Response
	Help(sessionID string) domain.Response
	End(sessionID string) error
	Snapshot(sessionID string) (session.Machine, error)
	Graph() *scenario.Graph
	Watch(ctx context.Context) (<-chan struct{}, error)
}

var _ Supervisor = (*guide.Supervisor)(nil)

// EventRequest is the body of POST /sessions/{id}/events/{event}.
// Attributes is the session context owned by the caller; it comes back updated.
type EventRequest struct {
	Args       map[string]any `json:"args,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// StepRequest is the body of PUT /sessions/{id}/step.
type StepRequest struct {
	Step string `json:"step"`
}

// Envelope is the body of every dialogue answer.
type Envelope struct {
	Response   domain.Response `json:"response"`
	Attributes map[string]any  `json:"attributes,omitempty"`
}

// Server exposes a Supervisor over HTTP.
type Server struct {
	Supervisor Supervisor
	Streams    *StreamManager
	metrics    http.Handler
	logger     *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager whose Hooks feed the supervisor.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics mounts a metrics handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the supervisor.
func NewHandler(sup Supervisor, opts ...Option) http.Handler {
	server := &Server{
		Supervisor: sup,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager(server.logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/events", server.SubscribeScenario)
	r.Get("/scenario", server.GetScenario)
	r.Get("/scenario/graph", server.GetScenarioGraph)
	if server.metrics != nil {
		r.Handle("/metrics", server.metrics)
	}

	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Post("/", server.Begin)
		r.Get("/", server.GetSession)
		r.Delete("/", server.End)
		r.Post("/events/{event}", server.Trigger)
		r.Post("/rollback", server.Rollback)
		r.Put("/step", server.MoveToStep)
		r.Get("/help", server.Help)
		r.Get("/graph", server.GetSessionGraph)
		r.Get("/events", server.SubscribeSession)
	})

	return r
}

// Begin handles POST /sessions/{id}.
func (s *Server) Begin(w http.ResponseWriter, r *http.Request) {
	resp := s.Supervisor.Begin(chi.URLParam(r, "sessionID"))
	s.writeJSON(w, http.StatusOK, Envelope{Response: resp})
}

// Trigger handles POST /sessions/{id}/events/{event}.
func (s *Server) Trigger(w http.ResponseWriter, r *http.Request) {
	var body EventRequest
	if r.ContentLength != 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(input.MaxInputSize()))
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				s.logger.Warn("Trigger: Request body too large", "limit", tooLarge.Limit)
				return
			}
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("Trigger: Invalid request body", "err", err)
			return
		}
	}
	if body.Attributes == nil {
		body.Attributes = map[string]any{}
	}

	event, err := input.EventName(chi.URLParam(r, "event"))
	if err != nil {
		http.Error(w, "Invalid event", http.StatusBadRequest)
		s.logger.Warn("Trigger: Event rejected", "err", err)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	resp := s.Supervisor.Guide(r.Context(), sessionID, event, body.Args, body.Attributes)
	s.writeJSON(w, http.StatusOK, Envelope{Response: resp, Attributes: body.Attributes})
}

// Rollback handles POST /sessions/{id}/rollback.
func (s *Server) Rollback(w http.ResponseWriter, r *http.Request) {
	resp := s.Supervisor.RepromptError(chi.URLParam(r, "sessionID"))
	s.writeJSON(w, http.StatusOK, Envelope{Response: resp})
}

// MoveToStep handles PUT /sessions/{id}/step.
func (s *Server) MoveToStep(w http.ResponseWriter, r *http.Request) {
	var body StepRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Step == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	resp := s.Supervisor.MoveToStep(chi.URLParam(r, "sessionID"), body.Step)
	s.writeJSON(w, http.StatusOK, Envelope{Response: resp})
}

// Help handles GET /sessions/{id}/help.
func (s *Server) Help(w http.ResponseWriter, r *http.Request) {
	resp := s.Supervisor.Help(chi.URLParam(r, "sessionID"))
	s.writeJSON(w, http.StatusOK, Envelope{Response: resp})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	m, err := s.Supervisor.Snapshot(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

// End handles DELETE /sessions/{id}.
func (s *Server) End(w http.ResponseWriter, r *http.Request) {
	if err := s.Supervisor.End(chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetScenario handles GET /scenario.
func (s *Server) GetScenario(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Supervisor.Graph().Scenario())
}

// GetScenarioGraph handles GET /scenario/graph.
func (s *Server) GetScenarioGraph(w http.ResponseWriter, r *http.Request) {
	s.writeMermaid(w, graph.GenerateMermaid(s.Supervisor.Graph().Scenario(), nil))
}

// GetSessionGraph handles GET /sessions/{id}/graph.
func (s *Server) GetSessionGraph(w http.ResponseWriter, r *http.Request) {
	m, err := s.Supervisor.Snapshot(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	overlay := &graph.GraphOverlay{CurrentStep: m.Current}
	if m.Previous != "" {
		overlay.VisitedSteps = []string{m.Previous}
	}
	s.writeMermaid(w, graph.GenerateMermaid(s.Supervisor.Graph().Scenario(), overlay))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "guide-http",
		"version": strings.TrimSpace(guide.Version),
	})
}

// SubscribeScenario handles GET /events (SSE), signaling scenario changes.
func (s *Server) SubscribeScenario(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, err := s.Supervisor.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusNotImplemented)
		return
	}

	startStream(w, flusher)
	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: reload\n\n")
			flusher.Flush()
		}
	}
}

// SubscribeSession handles GET /sessions/{id}/events (SSE), streaming lifecycle events.
func (s *Server) SubscribeSession(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", sessionID)

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	startStream(w, flusher)
	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func startStream(w http.ResponseWriter, flusher http.Flusher) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
}

func (s *Server) writeMermaid(w http.ResponseWriter, chart string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(chart))
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrUninitializedSession) {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
