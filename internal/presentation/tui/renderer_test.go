package tui

import (
	"errors"
	"testing"

	"github.com/aretw0/guide/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatResponse(t *testing.T) {
	tests := []struct {
		name string
		resp domain.Response
		want string
	}{
		{
			name: "question",
			resp: domain.Response{Type: domain.ResponseQuestion, Prompt: "Coffee?"},
			want: "Coffee?",
		},
		{
			name: "reprompt",
			resp: domain.Response{Type: domain.ResponseReprompt, Prompt: "Coffee?"},
			want: "_Sorry, I did not get that._\n\nCoffee?",
		},
		{
			name: "error hides cause",
			resp: domain.Response{
				Type:   domain.ResponseError,
				Prompt: domain.InternalErrorMessage,
				Reason: domain.ReasonActionFailed,
				Err:    errors.New("db password wrong"),
			},
			want: "**server error occurred** _(action_failed)_",
		},
		{
			name: "statement with result",
			resp: domain.Response{Type: domain.ResponseStatement, Prompt: "Done.", Result: 3},
			want: "Done.\n\n`3`",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatResponse(tt.resp))
		})
	}
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer()
	out, err := render("**hello**")
	assert.NoError(t, err)
	assert.Contains(t, out, "hello")
}
