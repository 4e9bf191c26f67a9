package ports

import "context"

// ActionCatalog answers whether an action name can be invoked.
type ActionCatalog interface {
	Has(name string) bool
}

// ActionDispatcher defines how side-effects are executed.
// The engine names the action, the integrator implements it.
type ActionDispatcher interface {
	ActionCatalog

	// Dispatch invokes the action with the request arguments and the live session context.
	// The session map is owned by the caller and may be mutated by the action.
	Dispatch(ctx context.Context, name string, args map[string]any, session map[string]any) (any, error)
}
