package scenario

import "github.com/aretw0/guide/pkg/domain"

// Compile flattens steps into transition rules, one per event with a destination.
// Action-only events are left to the dialogue layer and emit nothing.
func Compile(steps []domain.Step) []domain.TransitionRule {
	var rules []domain.TransitionRule
	for _, s := range steps {
		for _, name := range eventNames(s) {
			next := s.Events[name].Next
			if next == "" {
				continue
			}
			rules = append(rules, domain.TransitionRule{
				Event:       name,
				Source:      s.Name,
				Destination: next,
			})
		}
	}
	return rules
}
