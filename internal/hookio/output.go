package hookio

import (
	"encoding/json"
	"io"
)

// Event names used in hookSpecificOutput.
const (
	EventSessionStart     = "SessionStart"
	EventSessionEnd       = "SessionEnd"
	EventUserPromptSubmit = "UserPromptSubmit"
	EventSubagentStop     = "SubagentStop"
	EventPreCompact       = "PreCompact"
	EventPreToolUse       = "PreToolUse"
	EventPostToolUse      = "PostToolUse"
)

// DecisionBlock stops the prompt from reaching the model; Reason is shown to the user.
const DecisionBlock = "block"

// Output is the JSON Claude Code accepts on stdout from hooks.
type Output struct {
	SystemMessage      string    `json:"systemMessage,omitempty"`
	Decision           string    `json:"decision,omitempty"`
	Reason             string    `json:"reason,omitempty"`
	HookSpecificOutput *Specific `json:"hookSpecificOutput,omitempty"`
}

// Specific carries event-scoped output.
type Specific struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext,omitempty"`
}

// Context builds an Output that injects additionalContext for eventName.
func Context(eventName, context string) Output {
	return Output{HookSpecificOutput: &Specific{HookEventName: eventName, AdditionalContext: context}}
}

// Block builds a UserPromptSubmit Output that blocks the prompt with reason.
func Block(reason string) Output {
	return Output{
		Decision:           DecisionBlock,
		Reason:             reason,
		HookSpecificOutput: &Specific{HookEventName: EventUserPromptSubmit},
	}
}

// Emit writes out as a single JSON line.
func Emit(w io.Writer, out Output) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
