package loam

// StepMetadata represents the frontmatter of a step document.
// It uses "mapstructure" tags to match the scenario document keys.
type StepMetadata struct {
	// ID overrides the file name as the step name.
	ID       string                   `json:"id" mapstructure:"id"`
	Reprompt string                   `json:"reprompt" mapstructure:"reprompt"`
	Help     string                   `json:"help" mapstructure:"help"`
	Events   map[string]EventMetadata `json:"events" mapstructure:"events"`
}

type EventMetadata struct {
	Next   string `json:"next" mapstructure:"next"`
	Action string `json:"action" mapstructure:"action"`
	Prompt string `json:"prompt" mapstructure:"prompt"`
}
