package domain

// ResponseType tells the voice front-end how to answer.
type ResponseType string

const (
	// ResponseQuestion keeps the session open and waits for the next user input.
	ResponseQuestion ResponseType = "question"
	// ResponseStatement answers without expecting more input on this step.
	ResponseStatement ResponseType = "statement"
	// ResponseReprompt repeats the current step prompt (the event did not fit).
	ResponseReprompt ResponseType = "reprompt"
	// ResponseError is a generic failure answer; Reason carries the category only.
	ResponseError ResponseType = "error"
)

// Error reasons carried by ResponseError. They never include internal detail.
const (
	ReasonUninitializedSession = "uninitialized_session"
	ReasonUndefinedStep        = "undefined_step"
	ReasonUndefinedAction      = "undefined_action"
	ReasonMissingArgument      = "missing_argument"
	ReasonActionFailed         = "action_failed"
	ReasonBadTrigger           = "bad_trigger"
	ReasonGeneral              = "general"
)

// Response is the outcome of one interaction at the dialogue boundary.
type Response struct {
	Type     ResponseType `json:"type"`
	Step     string       `json:"step,omitempty"`
	Prompt   string       `json:"prompt,omitempty"`
	Reprompt string       `json:"reprompt,omitempty"`
	Reason   string       `json:"reason,omitempty"`
	Result   any          `json:"result,omitempty"`

	// Err keeps the underlying error for logging. It is never serialized.
	Err error `json:"-"`
}
