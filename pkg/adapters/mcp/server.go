package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/guide"
	"github.com/aretw0/guide/internal/input"
	"github.com/aretw0/guide/internal/logging"
	"github.com/aretw0/guide/internal/presentation/graph"
	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/scenario"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const scenarioURI = "guide://scenario"

// ToolResponse aligns with the HTTP envelope and provides a unified structure across adapters.
type ToolResponse struct {
	Response   domain.Response `json:"response" jsonschema_description:"The dialogue answer"`
	Attributes map[string]any  `json:"attributes,omitempty" jsonschema_description:"Session attributes after the interaction"`
}

// Supervisor defines what the MCP server needs from the dialogue boundary.
type Supervisor interface {
	Begin(sessionID string) domain.Response
	Guide(ctx context.Context, sessionID, event string, args, attrs map[string]any) domain.Response
	RepromptError(sessionID string) domain.Response
	MoveToStep(sessionID, step string) domain.Response
	CurrentStep(sessionID string) (string, error)
	Help(sessionID string) domain.Response
	End(sessionID string) error
	Graph() *scenario.Graph
}

var _ Supervisor = (*guide.Supervisor)(nil)

// Server wraps the Supervisor and exposes it as an MCP Server.
type Server struct {
	supervisor Supervisor
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sup Supervisor, opts ...Option) *Server {
	s := &Server{
		supervisor: sup,
		mcpServer:  server.NewMCPServer("guide-mcp", strings.TrimSpace(guide.Version)),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sessionParam := mcp.WithString("session_id", mcp.Required(), mcp.Description("Opaque session identifier"))

	s.mcpServer.AddTool(mcp.NewTool("begin_session",
		mcp.WithDescription("Start (or restart) a session at the initial step."),
		sessionParam,
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleBegin))

	s.mcpServer.AddTool(mcp.NewTool("trigger_event",
		mcp.WithDescription("Send a named event to the session. Unknown events answer with a reprompt."),
		sessionParam,
		mcp.WithString("event", mcp.Required(), mcp.Description("Event name")),
		mcp.WithString("args", mcp.Description("JSON object of request arguments (optional)")),
		mcp.WithString("attributes", mcp.Description("JSON object of session attributes (optional)")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleTrigger))

	s.mcpServer.AddTool(mcp.NewTool("rollback",
		mcp.WithDescription("Return the session to its previous step and repeat its prompt."),
		sessionParam,
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleRollback))

	s.mcpServer.AddTool(mcp.NewTool("move_to_step",
		mcp.WithDescription("Force the session onto a defined step."),
		sessionParam,
		mcp.WithString("step", mcp.Required(), mcp.Description("Destination step")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleMove))

	s.mcpServer.AddTool(mcp.NewTool("help",
		mcp.WithDescription("Get the help message of the current step."),
		sessionParam,
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleHelp))

	s.mcpServer.AddTool(mcp.NewTool("current_step",
		mcp.WithDescription("Get the step the session is in."),
		sessionParam,
	), s.handleCurrentStep)

	s.mcpServer.AddTool(mcp.NewTool("end_session",
		mcp.WithDescription("Remove the session."),
		sessionParam,
	), s.handleEnd)

	s.mcpServer.AddTool(mcp.NewTool("get_scenario",
		mcp.WithDescription("Get the validated scenario definition."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.supervisor.Graph().Scenario())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the scenario as a Mermaid flowchart."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(graph.GenerateMermaid(s.supervisor.Graph().Scenario(), nil)), nil
	})
}

func (s *Server) handleBegin(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ToolResponse, error) {
	id, err := sessionID(args)
	if err != nil {
		return ToolResponse{}, err
	}
	return ToolResponse{Response: s.supervisor.Begin(id)}, nil
}

func (s *Server) handleTrigger(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ToolResponse, error) {
	id, err := sessionID(args)
	if err != nil {
		return ToolResponse{}, err
	}
	raw, _ := args["event"].(string)
	event, err := input.EventName(raw)
	if err != nil {
		s.logger.Warn("MCP Trigger: Event rejected", "err", err, "size", len(raw))
		return ToolResponse{}, fmt.Errorf("event rejected: %w", err)
	}

	eventArgs, err := jsonObject(args, "args")
	if err != nil {
		return ToolResponse{}, err
	}
	attrs, err := jsonObject(args, "attributes")
	if err != nil {
		return ToolResponse{}, err
	}

	resp := s.supervisor.Guide(ctx, id, event, eventArgs, attrs)
	if resp.Err != nil {
		s.logger.Debug("MCP Trigger", "session_id", id, "event", event, "reason", resp.Reason, "err", resp.Err)
	}
	return ToolResponse{Response: resp, Attributes: attrs}, nil
}

func (s *Server) handleRollback(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ToolResponse, error) {
	id, err := sessionID(args)
	if err != nil {
		return ToolResponse{}, err
	}
	return ToolResponse{Response: s.supervisor.RepromptError(id)}, nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ToolResponse, error) {
	id, err := sessionID(args)
	if err != nil {
		return ToolResponse{}, err
	}
	step, _ := args["step"].(string)
	if step == "" {
		return ToolResponse{}, errors.New("step is required")
	}
	return ToolResponse{Response: s.supervisor.MoveToStep(id, step)}, nil
}

func (s *Server) handleHelp(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ToolResponse, error) {
	id, err := sessionID(args)
	if err != nil {
		return ToolResponse{}, err
	}
	return ToolResponse{Response: s.supervisor.Help(id)}, nil
}

func (s *Server) handleCurrentStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionID(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	step, err := s.supervisor.CurrentStep(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("current step: %v", err)), nil
	}
	return mcp.NewToolResultText(step), nil
}

func (s *Server) handleEnd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := sessionID(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.supervisor.End(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("end session: %v", err)), nil
	}
	return mcp.NewToolResultText("ended"), nil
}

func (s *Server) registerResources() {
	// EXPOSE: guide://scenario
	s.mcpServer.AddResource(mcp.NewResource(scenarioURI, "Current Scenario Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.supervisor.Graph().Scenario())
		if err != nil {
			return nil, fmt.Errorf("failed to encode scenario: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      scenarioURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func sessionID(args map[string]interface{}) (string, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		return "", errors.New("session_id is required")
	}
	return id, nil
}

// jsonObject decodes an optional JSON object argument. Missing means empty.
func jsonObject(args map[string]interface{}, key string) (map[string]any, error) {
	out := map[string]any{}
	switch v := args[key].(type) {
	case nil:
	case string:
		if v == "" {
			break
		}
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("%s: invalid JSON object: %w", key, err)
		}
	case map[string]interface{}:
		for k, val := range v {
			out[k] = val
		}
	default:
		return nil, fmt.Errorf("%s: expected a JSON object", key)
	}
	return out, nil
}
