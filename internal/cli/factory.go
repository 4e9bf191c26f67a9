package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/guide"
	"github.com/aretw0/guide/internal/logging"
	"github.com/aretw0/guide/pkg/adapters/file"
	loamAdapter "github.com/aretw0/guide/pkg/adapters/loam"
	"github.com/aretw0/guide/pkg/adapters/redis"
	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/ports"
	"github.com/aretw0/guide/pkg/registry"
)

// Options carries the settings shared by every command that builds a Supervisor.
type Options struct {
	// Scenario is a document file, a directory of step documents or a
	// redis:// URL whose fragment names the scenario (redis://host:6379/0#coffee).
	Scenario        string
	Actions         []string
	CleanPeriod     time.Duration
	SessionLifetime time.Duration
	Hooks           domain.LifecycleHooks
}

// NewLoader selects the scenario source from its location.
func NewLoader(location string, logger *slog.Logger) (ports.ScenarioLoader, error) {
	if location == "" {
		return nil, fmt.Errorf("no scenario given")
	}

	if strings.HasPrefix(location, "redis://") || strings.HasPrefix(location, "rediss://") {
		u, err := url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		var opts []redis.Option
		if u.Fragment != "" {
			opts = append(opts, redis.WithName(u.Fragment))
		}
		u.Fragment = ""
		return redis.NewFromURL(u.String(), opts...)
	}

	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if info.IsDir() {
		return loamAdapter.Open(location)
	}
	return file.New(location, file.WithLogger(logger)), nil
}

// EchoActions registers a placeholder handler for each name. The handler
// answers with the action name, which is enough to walk a scenario from a
// terminal or a webhook without the production action code.
func EchoActions(names []string, logger *slog.Logger) *registry.Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	actions := registry.NewRegistry(registry.WithLogger(logger))
	for _, name := range names {
		result := name
		actions.RegisterFunc(name, func(context.Context, map[string]any, map[string]any) (any, error) {
			return result, nil
		})
	}
	return actions
}

// ReferencedActions lists the action names used by the scenario, sorted.
func ReferencedActions(sc *domain.Scenario) []string {
	seen := map[string]bool{}
	for _, step := range sc.Steps {
		for _, ev := range step.Events {
			if ev.Action != "" {
				seen[ev.Action] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewSupervisor builds a Supervisor for the CLI.
// Without an explicit action list, every action the scenario references gets
// an echo handler.
func NewSupervisor(ctx context.Context, opts Options, logger *slog.Logger) (*guide.Supervisor, error) {
	loader, err := NewLoader(opts.Scenario, logger)
	if err != nil {
		return nil, err
	}

	names := opts.Actions
	if len(names) == 0 {
		sc, err := loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		names = ReferencedActions(sc)
	}

	guideOpts := []guide.Option{
		guide.WithLoader(loader),
		guide.WithActions(EchoActions(names, logger)),
		guide.WithLogger(logger),
		guide.WithLifecycleHooks(opts.Hooks),
	}
	if opts.CleanPeriod > 0 {
		guideOpts = append(guideOpts, guide.WithCleanPeriod(opts.CleanPeriod))
	}
	if opts.SessionLifetime > 0 {
		guideOpts = append(guideOpts, guide.WithSessionLifetime(opts.SessionLifetime))
	}

	sup, err := guide.New(opts.Scenario, guideOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing supervisor: %w", err)
	}
	return sup, nil
}
