package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/guide"
	"github.com/aretw0/guide/pkg/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a polling test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newChat(t *testing.T, input string) (*Chat, *guide.Supervisor, *bytes.Buffer) {
	t.Helper()
	sup, err := guide.New("",
		guide.WithLoader(memory.NewLoader(coffee)),
		guide.WithActions(EchoActions([]string{"brew", "list_menu"}, nil)),
	)
	require.NoError(t, err)

	var out bytes.Buffer
	return &Chat{
		Dialogue:  sup,
		In:        strings.NewReader(input),
		Out:       &out,
		SessionID: "chat-1",
	}, sup, &out
}

func TestChat_ReachesTerminal(t *testing.T) {
	chat, sup, out := newChat(t, "menu\norder size=large\nthanks\nnever read\n")

	require.NoError(t, chat.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Would you like a coffee?")
	assert.Contains(t, text, "Espresso or latte.")
	assert.Contains(t, text, "Anything else?")
	assert.Contains(t, text, "Bye!")
	assert.Contains(t, text, "Conversation finished.")

	_, err := sup.CurrentStep("chat-1")
	assert.Error(t, err, "session is removed when the chat ends")
}

func TestChat_Commands(t *testing.T) {
	chat, _, out := newChat(t, "order\n:step\n:back\n:help\n:goto brewing\n:goto\n:attrs\n:nope\ndance\n:quit\n")

	require.NoError(t, chat.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Current step: brewing")
	assert.Contains(t, text, "Say order or leave.")
	assert.Contains(t, text, "usage: :goto <step>")
	assert.Contains(t, text, `unknown command ":nope"`)
	assert.Contains(t, text, "Sorry, I did not get that.")
	assert.Contains(t, text, "Bye.")
}

func TestChat_GeneratesSessionID(t *testing.T) {
	chat, _, _ := newChat(t, ":quit\n")
	chat.SessionID = ""

	require.NoError(t, chat.Run(context.Background()))
	assert.Len(t, chat.SessionID, 36)
}

func TestChat_EndOfInput(t *testing.T) {
	chat, _, out := newChat(t, "order\n")

	require.NoError(t, chat.Run(context.Background()))
	assert.Contains(t, out.String(), "Anything else?")
	assert.NotContains(t, out.String(), "Conversation finished.")
}

func TestChat_StripsControlCharacters(t *testing.T) {
	chat, _, out := newChat(t, "ord\x1ber\n:quit\n")

	require.NoError(t, chat.Run(context.Background()))
	assert.Contains(t, out.String(), "Anything else?")
}
