package domain

// Event describes what happens when a named event is received on a step.
type Event struct {
	// Name is the event identifier (e.g. an intent name).
	Name string `json:"name" yaml:"name"`

	// Next is the destination step. Empty means the event does not move the session.
	Next string `json:"next,omitempty" yaml:"next,omitempty"`

	// Action is the name of a registered side-effect to invoke. Optional.
	Action string `json:"action,omitempty" yaml:"action,omitempty"`

	// Prompt is a reference to the message answered when the event is accepted.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

// Step is a named node of the dialogue graph.
type Step struct {
	Name string `json:"name" yaml:"name"`

	// Events maps event names to their outcome on this step.
	Events map[string]Event `json:"events,omitempty" yaml:"events,omitempty"`

	// Reprompt is the message reference repeated when the user input does not fit the step.
	Reprompt string `json:"reprompt,omitempty" yaml:"reprompt,omitempty"`

	// Help is an optional contextual help message reference.
	Help string `json:"help,omitempty" yaml:"help,omitempty"`
}

// Terminal reports whether the step has no outbound events.
func (s Step) Terminal() bool {
	return len(s.Events) == 0
}

// Scenario is the declarative dialogue document as loaded from a source.
// Steps keeps the raw declaration order and may contain duplicates until validated.
type Scenario struct {
	InitialStep  string `json:"initial_step" yaml:"initial_step"`
	TerminalStep string `json:"terminal_step" yaml:"terminal_step"`
	DefaultHelp  string `json:"default_help,omitempty" yaml:"default_help,omitempty"`
	Steps        []Step `json:"steps" yaml:"steps"`
}
