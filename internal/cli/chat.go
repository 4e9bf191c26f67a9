package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/guide/internal/input"
	"github.com/aretw0/guide/internal/presentation/tui"
	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/scenario"
	"github.com/google/uuid"
)

// Dialogue is what the chat needs from the Supervisor.
type Dialogue interface {
	Begin(sessionID string) domain.Response
	Guide(ctx context.Context, sessionID, event string, args, attrs map[string]any) domain.Response
	RepromptError(sessionID string) domain.Response
	MoveToStep(sessionID, step string) domain.Response
	CurrentStep(sessionID string) (string, error)
	Help(sessionID string) domain.Response
	End(sessionID string) error
	Graph() *scenario.Graph
}

// Chat runs a terminal conversation against a Dialogue.
//
// Each input line is an event name optionally followed by key=value request
// arguments. Lines starting with ':' are commands:
//
//	:back         roll back one step
//	:help         show the step help
//	:step         show the current step
//	:goto <step>  jump to a step
//	:attrs        show the session attributes
//	:quit         end the session
type Chat struct {
	Dialogue  Dialogue
	In        io.Reader
	Out       io.Writer
	Renderer  func(string) (string, error)
	Logger    *slog.Logger
	SessionID string
	ShowSteps bool

	attrs map[string]any
}

// Run starts the session and reads input until the session ends, input is
// exhausted or ctx is cancelled.
func (c *Chat) Run(ctx context.Context) error {
	if c.SessionID == "" {
		c.SessionID = uuid.NewString()
	}
	c.attrs = map[string]any{}

	lines := pumpLines(ctx, c.In)
	defer c.Dialogue.End(c.SessionID)

	printSystemMessage(c.Out, "Session '%s' active. Type :help for help, :quit to leave.", c.SessionID)
	if c.show(c.Dialogue.Begin(c.SessionID)) {
		return nil
	}

	for {
		fmt.Fprint(c.Out, "> ")
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.Out)
			printSystemMessage(c.Out, "Interrupted.")
			return nil
		case line, ok = <-lines:
			if !ok {
				fmt.Fprintln(c.Out)
				return nil
			}
		}

		line, err := input.Sanitize(line)
		if err != nil {
			printSystemMessage(c.Out, "Input rejected: %v", err)
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			done, err := c.command(line)
			if err != nil {
				printSystemMessage(c.Out, "%v", err)
			}
			if done {
				return nil
			}
			continue
		}

		event, args := ParseInput(line)
		if c.show(c.Dialogue.Guide(ctx, c.SessionID, event, args, c.attrs)) {
			printSystemMessage(c.Out, "Conversation finished.")
			return nil
		}
	}
}

func (c *Chat) command(line string) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		printSystemMessage(c.Out, "Bye.")
		return true, nil
	case ":back":
		c.show(c.Dialogue.RepromptError(c.SessionID))
	case ":help":
		c.show(c.Dialogue.Help(c.SessionID))
	case ":step":
		step, err := c.Dialogue.CurrentStep(c.SessionID)
		if err != nil {
			return false, err
		}
		printSystemMessage(c.Out, "Current step: %s", step)
	case ":goto":
		if len(fields) != 2 {
			return false, fmt.Errorf("usage: :goto <step>")
		}
		return c.show(c.Dialogue.MoveToStep(c.SessionID, fields[1])), nil
	case ":attrs":
		printSystemMessage(c.Out, "Attributes: %v", c.attrs)
	default:
		return false, fmt.Errorf("unknown command %q", fields[0])
	}
	return false, nil
}

// show prints the answer and reports whether the conversation is over.
func (c *Chat) show(resp domain.Response) bool {
	if resp.Err != nil && c.Logger != nil {
		c.Logger.Debug("interaction", "session_id", c.SessionID, "reason", resp.Reason, "err", resp.Err)
	}

	text := tui.FormatResponse(resp)
	if c.Renderer != nil {
		if rendered, err := c.Renderer(text); err == nil {
			text = strings.TrimRight(rendered, "\n")
		}
	}
	if c.ShowSteps && resp.Step != "" {
		fmt.Fprintln(c.Out, tui.StepLabel(resp.Step))
	}
	fmt.Fprintln(c.Out, text)

	return resp.Type == domain.ResponseStatement && resp.Step != "" && c.finished(resp.Step)
}

// finished reports whether the step ends the conversation.
func (c *Chat) finished(step string) bool {
	g := c.Dialogue.Graph()
	if step == g.TerminalStep() {
		return true
	}
	st, ok := g.Step(step)
	return ok && st.Terminal()
}

// ParseInput splits "event key=value ..." into the event name and its arguments.
func ParseInput(line string) (string, map[string]any) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	var args map[string]any
	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			continue
		}
		if args == nil {
			args = map[string]any{}
		}
		args[key] = value
	}
	return fields[0], args
}

// pumpLines reads lines in the background so that a blocked read never
// holds the conversation after ctx is cancelled.
func pumpLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
