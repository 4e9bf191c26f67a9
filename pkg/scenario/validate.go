package scenario

import (
	"sort"

	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/ports"
)

// Validate checks a raw, ordered step list against initial.
// It stops on the first violation, in this order: duplicate step, undefined step
// (the initial step included), undefined action, unreachable steps.
// A nil catalog skips the action check.
func Validate(initial string, steps []domain.Step, actions ports.ActionCatalog) error {
	defined := make(map[string]domain.Step, len(steps))
	for _, s := range steps {
		if _, dup := defined[s.Name]; dup {
			return &domain.DuplicateStepError{Step: s.Name}
		}
		defined[s.Name] = s
	}

	if _, ok := defined[initial]; !ok {
		return &domain.UndefinedStepError{Step: initial}
	}

	for _, s := range steps {
		for _, name := range eventNames(s) {
			next := s.Events[name].Next
			if next == "" {
				continue
			}
			if _, ok := defined[next]; !ok {
				return &domain.UndefinedStepError{Step: next, Source: s.Name, Event: name}
			}
		}
	}

	if actions != nil {
		for _, s := range steps {
			for _, name := range eventNames(s) {
				action := s.Events[name].Action
				if action != "" && !actions.Has(action) {
					return &domain.UndefinedActionError{Action: action, Step: s.Name, Event: name}
				}
			}
		}
	}

	visited := reachable(initial, defined)
	if len(visited) == len(defined) {
		return nil
	}

	var unreachable []string
	for name := range defined {
		if !visited[name] {
			unreachable = append(unreachable, name)
		}
	}
	sort.Strings(unreachable)
	return &domain.UnreachableStepsError{Steps: unreachable}
}

// reachable walks the graph depth-first over Next references.
func reachable(initial string, defined map[string]domain.Step) map[string]bool {
	visited := make(map[string]bool, len(defined))

	var visit func(name string)
	visit = func(name string) {
		visited[name] = true
		for _, ev := range defined[name].Events {
			if ev.Next != "" && !visited[ev.Next] {
				visit(ev.Next)
			}
		}
	}
	visit(initial)

	return visited
}

func eventNames(s domain.Step) []string {
	names := make([]string, 0, len(s.Events))
	for name := range s.Events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
