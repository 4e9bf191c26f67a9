package dsl

import "github.com/aretw0/guide/pkg/domain"

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step    domain.Step
	builder *Builder
}

// Say sets the step reprompt, asked on entry and repeated on bad input.
func (s *StepBuilder) Say(reprompt string) *StepBuilder {
	s.step.Reprompt = reprompt
	return s
}

// Help sets the contextual help of the step.
func (s *StepBuilder) Help(help string) *StepBuilder {
	s.step.Help = help
	return s
}

// On declares an event on the step and returns its builder.
// Declaring the same event twice returns the existing builder.
func (s *StepBuilder) On(event string) *EventBuilder {
	if s.step.Events == nil {
		s.step.Events = make(map[string]domain.Event)
	}
	if _, ok := s.step.Events[event]; !ok {
		s.step.Events[event] = domain.Event{Name: event}
	}
	return &EventBuilder{step: s, name: event}
}

// Build returns a copy of the underlying domain.Step.
func (s *StepBuilder) Build() domain.Step {
	out := s.step
	if s.step.Events != nil {
		out.Events = make(map[string]domain.Event, len(s.step.Events))
		for k, v := range s.step.Events {
			out.Events[k] = v
		}
	}
	return out
}

// EventBuilder configures one event of a step.
type EventBuilder struct {
	step *StepBuilder
	name string
}

func (e *EventBuilder) update(fn func(*domain.Event)) *EventBuilder {
	ev := e.step.step.Events[e.name]
	fn(&ev)
	e.step.step.Events[e.name] = ev
	return e
}

// To sets the destination step.
func (e *EventBuilder) To(step string) *EventBuilder {
	return e.update(func(ev *domain.Event) { ev.Next = step })
}

// Do sets the action invoked when the event is accepted.
func (e *EventBuilder) Do(action string) *EventBuilder {
	return e.update(func(ev *domain.Event) { ev.Action = action })
}

// Prompt sets the message answered when the event is accepted.
func (e *EventBuilder) Prompt(prompt string) *EventBuilder {
	return e.update(func(ev *domain.Event) { ev.Prompt = prompt })
}

// On declares another event on the same step.
func (e *EventBuilder) On(event string) *EventBuilder {
	return e.step.On(event)
}

// Step switches to another step of the scenario.
func (e *EventBuilder) Step(name string) *StepBuilder {
	return e.step.builder.Step(name)
}
