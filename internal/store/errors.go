package store

import "fmt"

// ValidationError reports a hook event that cannot be stored.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid hook event %s: %s", e.Field, e.Reason)
}

// ErrorCode lets the CLI envelope report a stable code.
func (e *ValidationError) ErrorCode() string { return "INVALID_HOOK_EVENT" }
