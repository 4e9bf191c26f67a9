package ports

import (
	"context"

	"github.com/aretw0/guide/pkg/domain"
)

// ScenarioLoader defines how the engine retrieves the scenario document.
// This allows the source (file, directory, Redis, memory) to be decoupled.
type ScenarioLoader interface {
	// Load returns the raw scenario. Validation is the caller's job.
	Load(ctx context.Context) (*domain.Scenario, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for dev-mode re-validation.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying scenario changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
