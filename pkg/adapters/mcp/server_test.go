package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/guide"
	"github.com/aretw0/guide/pkg/adapters/memory"
	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/registry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lamp = `
initial_step: dark
terminal_step: broken
steps:
  dark:
    reprompt: The lamp is off.
    events:
      switch:
        next: lit
        action: count
  lit:
    reprompt: The lamp is on.
    events:
      switch:
        next: dark
      smash:
        next: broken
  broken:
    reprompt: The lamp is broken.
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	actions := registry.NewRegistry()
	actions.RegisterFunc("count", func(_ context.Context, _ map[string]any, session map[string]any) (any, error) {
		n, _ := session["switches"].(float64)
		session["switches"] = n + 1
		return nil, nil
	})

	sup, err := guide.New("", guide.WithLoader(memory.NewLoader(lamp)), guide.WithActions(actions))
	require.NoError(t, err)
	return NewServer(sup)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestTools_Dialogue(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleBegin(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "s1"})
	require.NoError(t, err)
	assert.Equal(t, "dark", resp.Response.Step)
	assert.Equal(t, domain.ResponseQuestion, resp.Response.Type)

	resp, err = s.handleTrigger(ctx, mcp.CallToolRequest{}, map[string]any{
		"session_id": "s1",
		"event":      "switch",
		"attributes": `{"switches": 2}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "lit", resp.Response.Step)
	assert.Equal(t, float64(3), resp.Attributes["switches"])

	res, err := s.handleCurrentStep(ctx, callRequest(map[string]any{"session_id": "s1"}))
	require.NoError(t, err)
	assert.Equal(t, "lit", resultText(t, res))

	resp, err = s.handleRollback(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "s1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ResponseReprompt, resp.Response.Type)
	assert.Equal(t, "dark", resp.Response.Step)

	resp, err = s.handleMove(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "s1", "step": "broken"})
	require.NoError(t, err)
	assert.Equal(t, domain.ResponseStatement, resp.Response.Type)

	res, err = s.handleEnd(ctx, callRequest(map[string]any{"session_id": "s1"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = s.handleEnd(ctx, callRequest(map[string]any{"session_id": "s1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestTrigger_BadEvent(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.handleBegin(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "s1"})
	require.NoError(t, err)

	resp, err := s.handleTrigger(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": "s1", "event": "smash"})
	require.NoError(t, err)
	assert.Equal(t, domain.ResponseReprompt, resp.Response.Type)
	assert.Equal(t, domain.ReasonBadTrigger, resp.Response.Reason)
}

func TestTrigger_InvalidArguments(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing session", map[string]any{"event": "switch"}},
		{"missing event", map[string]any{"session_id": "s1"}},
		{"bad attributes", map[string]any{"session_id": "s1", "event": "switch", "attributes": "{"}},
		{"attributes not an object", map[string]any{"session_id": "s1", "event": "switch", "attributes": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.handleTrigger(ctx, mcp.CallToolRequest{}, tt.args)
			assert.Error(t, err)
		})
	}
}

func TestCurrentStep_UnknownSession(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleCurrentStep(context.Background(), callRequest(map[string]any{"session_id": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestJSONObject(t *testing.T) {
	out, err := jsonObject(map[string]any{"a": map[string]any{"k": "v"}}, "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, out)

	out, err = jsonObject(map[string]any{}, "a")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = jsonObject(map[string]any{"a": ""}, "a")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestScenarioEncodes(t *testing.T) {
	s := newTestServer(t)
	data, err := json.Marshal(s.supervisor.Graph().Scenario())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"initial_step":"dark"`)
}
