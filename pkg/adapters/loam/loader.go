package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/loam"
)

// Default entry points when the directory does not say otherwise.
const (
	DefaultInitialStep  = "start"
	DefaultTerminalStep = "end"
)

// Loader adapts a Loam repository (one document per step) to ports.ScenarioLoader.
// The markdown body of a document is used as the reprompt when the frontmatter has none.
type Loader struct {
	Repo *loam.TypedRepository[StepMetadata]

	initial     string
	terminal    string
	defaultHelp string
}

// Option configures the Loader.
type Option func(*Loader)

// WithInitialStep overrides DefaultInitialStep.
func WithInitialStep(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.initial = name
		}
	}
}

// WithTerminalStep overrides DefaultTerminalStep.
func WithTerminalStep(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.terminal = name
		}
	}
}

// WithDefaultHelp sets the scenario-wide help message.
func WithDefaultHelp(help string) Option {
	return func(l *Loader) {
		l.defaultHelp = help
	}
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[StepMetadata], opts ...Option) *Loader {
	l := &Loader{
		Repo:     repo,
		initial:  DefaultInitialStep,
		terminal: DefaultTerminalStep,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open initializes a read-only, strict Loam repository at dir and wraps it.
func Open(dir string, opts ...Option) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// The engine never writes the scenario, so ReadOnly avoids Loam's dev sandbox.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return New(loam.NewTypedRepository[StepMetadata](repo), opts...), nil
}

// Load lists every document and folds them into a scenario.
// Two documents resolving to the same step name are reported as a duplicate step.
func (l *Loader) Load(ctx context.Context) (*domain.Scenario, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	// Loam gives no ordering guarantee, sort by document path.
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	sc := &domain.Scenario{
		InitialStep:  l.initial,
		TerminalStep: l.terminal,
		DefaultHelp:  l.defaultHelp,
		Steps:        make([]domain.Step, 0, len(docs)),
	}

	seen := make(map[string]string, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		name := trimExtension(rawID)

		if existingPath, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w (defined in both '%s' and '%s')", &domain.DuplicateStepError{Step: name}, existingPath, doc.ID)
		}
		seen[name] = doc.ID

		sc.Steps = append(sc.Steps, toStep(name, doc.Data, doc.Content))
	}

	return sc, nil
}

func toStep(name string, meta StepMetadata, content string) domain.Step {
	step := domain.Step{
		Name:     name,
		Reprompt: meta.Reprompt,
		Help:     meta.Help,
	}
	if step.Reprompt == "" {
		step.Reprompt = strings.TrimSpace(content)
	}

	if len(meta.Events) > 0 {
		step.Events = make(map[string]domain.Event, len(meta.Events))
		for evName, ev := range meta.Events {
			step.Events[evName] = domain.Event{
				Name:   evName,
				Next:   trimExtension(ev.Next),
				Action: ev.Action,
				Prompt: ev.Prompt,
			}
		}
	}
	return step
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces, coalesce what is left.
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()

	return ch, nil
}
