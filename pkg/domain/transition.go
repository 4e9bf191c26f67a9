package domain

import "fmt"

// TransitionRule is an immutable (event, source, destination) triple compiled from the steps.
// The same event name may appear in several rules with different sources.
type TransitionRule struct {
	Event       string `json:"event"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

func (r TransitionRule) String() string {
	return fmt.Sprintf("%s: %s -> %s", r.Event, r.Source, r.Destination)
}
