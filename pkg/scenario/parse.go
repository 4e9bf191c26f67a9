package scenario

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/aretw0/guide/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var documentSchema string

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// StepDocument is the on-disk shape of a single step.
// It is shared with loaders that store one step per document.
type StepDocument struct {
	Reprompt string                   `mapstructure:"reprompt" yaml:"reprompt,omitempty"`
	Help     string                   `mapstructure:"help" yaml:"help,omitempty"`
	Events   map[string]EventDocument `mapstructure:"events" yaml:"events,omitempty"`
}

// EventDocument is the on-disk shape of an event.
type EventDocument struct {
	Next   string `mapstructure:"next" yaml:"next,omitempty"`
	Action string `mapstructure:"action" yaml:"action,omitempty"`
	Prompt string `mapstructure:"prompt" yaml:"prompt,omitempty"`
}

// ToStep converts the document into a domain step named name.
func (d StepDocument) ToStep(name string) domain.Step {
	step := domain.Step{Name: name, Reprompt: d.Reprompt, Help: d.Help}
	if len(d.Events) > 0 {
		step.Events = make(map[string]domain.Event, len(d.Events))
		for evName, ev := range d.Events {
			step.Events[evName] = domain.Event{
				Name:   evName,
				Next:   ev.Next,
				Action: ev.Action,
				Prompt: ev.Prompt,
			}
		}
	}
	return step
}

// DecodeStep decodes a generic map (e.g. frontmatter) into a step.
// A nil map yields a terminal step without messages.
func DecodeStep(name string, raw map[string]any) (domain.Step, error) {
	var doc StepDocument
	if raw == nil {
		return doc.ToStep(name), nil
	}
	if err := mapstructure.Decode(raw, &doc); err != nil {
		return domain.Step{}, fmt.Errorf("%w: step %q: %v", domain.ErrMalformedScenario, name, err)
	}
	return doc.ToStep(name), nil
}

// Parse decodes a YAML (or JSON) scenario document.
// Step order follows the document. Raw duplicate step keys are reported as DuplicateStep,
// anything else that does not fit the document schema as MalformedScenario.
func Parse(data []byte) (*domain.Scenario, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedScenario, err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrMalformedScenario)
	}

	// Step collisions must be caught on the node tree, before folding into a map.
	order, err := stepOrder(root.Content[0])
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := root.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedScenario, err)
	}

	if err := checkSchema(raw); err != nil {
		return nil, err
	}

	sc := &domain.Scenario{
		InitialStep:  stringField(raw, "initial_step"),
		TerminalStep: stringField(raw, "terminal_step"),
		DefaultHelp:  stringField(raw, "default_help"),
		Steps:        make([]domain.Step, 0, len(order)),
	}

	steps, _ := raw["steps"].(map[string]any)
	for _, name := range order {
		stepRaw, _ := steps[name].(map[string]any)
		step, err := DecodeStep(name, stepRaw)
		if err != nil {
			return nil, err
		}
		sc.Steps = append(sc.Steps, step)
	}

	return sc, nil
}

func stepOrder(doc *yaml.Node) ([]string, error) {
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: document root must be a mapping", domain.ErrMalformedScenario)
	}

	var steps *yaml.Node
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value == "steps" {
			steps = doc.Content[i+1]
			break
		}
	}
	if steps == nil || steps.Kind != yaml.MappingNode {
		// Let the schema report it.
		return nil, nil
	}

	seen := make(map[string]bool, len(steps.Content)/2)
	order := make([]string, 0, len(steps.Content)/2)
	for i := 0; i+1 < len(steps.Content); i += 2 {
		name := steps.Content[i].Value
		if seen[name] {
			return nil, &domain.DuplicateStepError{Step: name}
		}
		seen[name] = true
		order = append(order, name)
	}
	return order, nil
}

func checkSchema(raw map[string]any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedScenario, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", domain.ErrMalformedScenario, strings.Join(msgs, "; "))
	}
	return nil
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}
