package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/guide/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewRenderer returns a function that renders markdown using glamour.
// Plain text is returned unchanged when the renderer cannot be built.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// FormatResponse turns a dialogue answer into the markdown shown in the chat.
func FormatResponse(resp domain.Response) string {
	var sb strings.Builder
	switch resp.Type {
	case domain.ResponseError:
		fmt.Fprintf(&sb, "**%s**", resp.Prompt)
		if resp.Reason != "" {
			fmt.Fprintf(&sb, " _(%s)_", resp.Reason)
		}
	case domain.ResponseReprompt:
		fmt.Fprintf(&sb, "_Sorry, I did not get that._\n\n%s", resp.Prompt)
	default:
		sb.WriteString(resp.Prompt)
	}
	if resp.Result != nil {
		fmt.Fprintf(&sb, "\n\n`%v`", resp.Result)
	}
	return sb.String()
}

// StepLabel renders the step indicator shown before each prompt.
func StepLabel(step string) string {
	p := termenv.ColorProfile()
	return termenv.String("[" + step + "]").Foreground(p.Color("#818cf8")).Faint().String()
}
