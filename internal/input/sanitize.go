// Package input cleans text received from end users before it reaches the
// dialogue boundary.
package input

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "GUIDE_MAX_INPUT_SIZE"
	// MaxEventNameSize bounds event names, which are identifiers, not free text.
	MaxEventNameSize = 256
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
	ErrInvalidEvent  = errors.New("invalid event name")
)

// Sanitize cleans user input by enforcing size limits,
// validating UTF-8, and stripping dangerous control characters.
func Sanitize(input string) (string, error) {
	limit := MaxInputSize()
	if len(input) > limit {
		// Rejected rather than truncated so the outcome stays deterministic.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Newline, tab and carriage return survive. ESC, NULL, BEL and friends
	// are dropped to prevent log poisoning and terminal corruption.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// EventName sanitizes an event name: trimmed, bounded and without whitespace.
func EventName(raw string) (string, error) {
	name, err := Sanitize(raw)
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidEvent)
	case len(name) > MaxEventNameSize:
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInvalidEvent, len(name), MaxEventNameSize)
	case strings.IndexFunc(name, unicode.IsSpace) >= 0:
		return "", fmt.Errorf("%w: %q contains whitespace", ErrInvalidEvent, name)
	}
	return name, nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

// MaxInputSize returns the input limit in bytes, honouring EnvMaxInputSize.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
