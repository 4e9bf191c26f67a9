package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func brew(_ context.Context, args map[string]any, session map[string]any) (any, error) {
	session["cups"] = session["cups"].(int) + 1
	return args, nil
}

func TestRegistry_Dispatch(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("brew", registry.Action{
		Handler:         brew,
		RequiredArgs:    []string{"size"},
		RequiredSession: []string{"cups"},
	})

	session := map[string]any{"cups": 1, "user": "ana"}
	result, err := r.Dispatch(context.Background(), "brew", map[string]any{"size": "large", "extra": true}, session)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"size": "large"}, result, "only declared arguments reach the handler")
	assert.Equal(t, 2, session["cups"], "session context is shared with the handler")
}

func TestRegistry_DispatchErrors(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("brew", registry.Action{
		Handler:         brew,
		RequiredArgs:    []string{"size"},
		RequiredSession: []string{"cups"},
	})
	r.RegisterFunc("fail", func(context.Context, map[string]any, map[string]any) (any, error) {
		return nil, errors.New("boiler is cold")
	})
	r.RegisterFunc("explode", func(context.Context, map[string]any, map[string]any) (any, error) {
		panic("kaboom")
	})

	tests := []struct {
		name    string
		action  string
		args    map[string]any
		session map[string]any
		wantErr error
		check   func(t *testing.T, err error)
	}{
		{
			name:    "Undefined Action",
			action:  "grind",
			wantErr: domain.ErrUndefinedAction,
		},
		{
			name:    "Missing Request Argument",
			action:  "brew",
			session: map[string]any{"cups": 0},
			wantErr: domain.ErrMissingArgument,
			check: func(t *testing.T, err error) {
				var missing *domain.MissingArgumentError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, domain.ArgumentRequest, missing.Kind)
				assert.Equal(t, "size", missing.Name)
			},
		},
		{
			name:    "Missing Session Key",
			action:  "brew",
			args:    map[string]any{"size": "small"},
			wantErr: domain.ErrMissingArgument,
			check: func(t *testing.T, err error) {
				var missing *domain.MissingArgumentError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, domain.ArgumentSession, missing.Kind)
				assert.Equal(t, "cups", missing.Name)
			},
		},
		{
			name:   "Handler Error Is Wrapped",
			action: "fail",
			check: func(t *testing.T, err error) {
				var actionErr *domain.ActionError
				require.ErrorAs(t, err, &actionErr)
				assert.Equal(t, "fail", actionErr.Action)
				assert.EqualError(t, actionErr.Err, "boiler is cold")
			},
		},
		{
			name:   "Panic Is Recovered",
			action: "explode",
			check: func(t *testing.T, err error) {
				var actionErr *domain.ActionError
				require.ErrorAs(t, err, &actionErr)
				assert.Contains(t, err.Error(), "kaboom")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Dispatch(context.Background(), tt.action, tt.args, tt.session)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestRegistry_Catalog(t *testing.T) {
	r := registry.NewRegistry()
	r.RegisterFunc("b", brew)
	r.RegisterFunc("a", brew)

	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("c"))
	assert.Equal(t, []string{"a", "b"}, r.Names())
}

func TestRegistry_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	r := registry.NewRegistry(registry.WithTracerProvider(tp))
	r.RegisterFunc("ok", func(context.Context, map[string]any, map[string]any) (any, error) { return "done", nil })
	r.RegisterFunc("fail", func(context.Context, map[string]any, map[string]any) (any, error) {
		return nil, errors.New("nope")
	})

	_, err := r.Dispatch(context.Background(), "ok", nil, nil)
	require.NoError(t, err)
	_, err = r.Dispatch(context.Background(), "fail", nil, nil)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "action ok", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, "action fail", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
