package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// PrintBanner outputs the ASCII art banner for Guide.
// Nothing is printed when stdout is not a terminal.
func PrintBanner(w io.Writer) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   ____       _     _      ", "#34d399"},
		{"  / ___|_   _(_) __| | ___ ", "#2dd4bf"},
		{" | |  _| | | | |/ _` |/ _ \\", "#22d3ee"},
		{" | |_| | |_| | | (_| |  __/", "#38bdf8"},
		{"  \\____|\\__,_|_|\\__,_|\\___|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
