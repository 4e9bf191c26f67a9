package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Load-time errors. A scenario failing with any of them must not serve sessions.
var (
	// ErrMalformedScenario is returned when the document cannot be parsed or violates the document schema.
	ErrMalformedScenario = errors.New("malformed scenario")

	// ErrDuplicateStep is returned when two steps share a name.
	ErrDuplicateStep = errors.New("duplicate step")

	// ErrUndefinedStep is returned when a step name is referenced but never defined.
	ErrUndefinedStep = errors.New("undefined step")

	// ErrUndefinedAction is returned when an action name is referenced but not registered.
	ErrUndefinedAction = errors.New("undefined action")

	// ErrUnreachableSteps is returned when some steps cannot be reached from the initial step.
	ErrUnreachableSteps = errors.New("unreachable steps")
)

// Runtime errors.
var (
	// ErrUninitializedSession is returned when an operation references a session id without a machine.
	// It is a normal condition (the session may have been reaped) and callers should recover from it.
	ErrUninitializedSession = errors.New("uninitialized session")

	// ErrBadTrigger marks an event that is not valid in the current step.
	ErrBadTrigger = errors.New("bad trigger")

	// ErrMissingArgument is returned when an action is invoked without one of its required arguments.
	ErrMissingArgument = errors.New("missing argument")
)

// DuplicateStepError names the step declared more than once.
type DuplicateStepError struct {
	Step string
}

func (e *DuplicateStepError) Error() string {
	return fmt.Sprintf("duplicate step %q", e.Step)
}

func (e *DuplicateStepError) Unwrap() error { return ErrDuplicateStep }

// UndefinedStepError names a referenced step that is not defined.
// Source and Event are empty when the reference is the initial or terminal step.
type UndefinedStepError struct {
	Step   string
	Source string
	Event  string
}

func (e *UndefinedStepError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("step %q not defined in scenario", e.Step)
	}
	return fmt.Sprintf("step %q not defined in scenario (referenced by event %q of step %q)", e.Step, e.Event, e.Source)
}

func (e *UndefinedStepError) Unwrap() error { return ErrUndefinedStep }

// UndefinedActionError names an action that is not registered.
type UndefinedActionError struct {
	Action string
	Step   string
	Event  string
}

func (e *UndefinedActionError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("undefined action %q", e.Action)
	}
	return fmt.Sprintf("undefined action %q (referenced by event %q of step %q)", e.Action, e.Event, e.Step)
}

func (e *UndefinedActionError) Unwrap() error { return ErrUndefinedAction }

// UnreachableStepsError lists the steps that cannot be reached from the initial step, sorted.
type UnreachableStepsError struct {
	Steps []string
}

func (e *UnreachableStepsError) Error() string {
	return fmt.Sprintf("following steps are unreachable: %s", strings.Join(e.Steps, ", "))
}

func (e *UnreachableStepsError) Unwrap() error { return ErrUnreachableSteps }

// UninitializedSessionError names the session id that has no machine.
type UninitializedSessionError struct {
	SessionID string
}

func (e *UninitializedSessionError) Error() string {
	return fmt.Sprintf("no machine for session: %s", e.SessionID)
}

func (e *UninitializedSessionError) Unwrap() error { return ErrUninitializedSession }

// ArgumentKind tells where a required argument was expected.
type ArgumentKind string

const (
	ArgumentRequest ArgumentKind = "request"
	ArgumentSession ArgumentKind = "session"
)

// MissingArgumentError names the missing argument and the context it was expected in.
type MissingArgumentError struct {
	Action string
	Kind   ArgumentKind
	Name   string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("action %q: missing %s argument %q", e.Action, e.Kind, e.Name)
}

func (e *MissingArgumentError) Unwrap() error { return ErrMissingArgument }

// ActionError wraps any failure raised by an action handler.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %q failed: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }
