package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Hook event size limits.
const (
	MaxHookNameLength  = 64
	MaxEventNameLength = 64
	MaxDetailLength    = 4096
)

// createdAtLayout sorts lexically in time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// HookEvent is one journal row: a hook invocation and what it did.
type HookEvent struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Hook       string    `json:"hook"`
	EventName  string    `json:"event_name,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	ProjectDir string    `json:"project_dir,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}

// ValidateHookEvent enforces required fields and size limits. Detail longer
// than MaxDetailLength is truncated rather than rejected.
func ValidateHookEvent(e *HookEvent) error {
	e.Hook = strings.TrimSpace(e.Hook)
	if e.Hook == "" {
		return &ValidationError{Field: "hook", Reason: "required"}
	}
	if len(e.Hook) > MaxHookNameLength {
		return &ValidationError{Field: "hook", Reason: fmt.Sprintf("exceeds max length (%d)", MaxHookNameLength)}
	}
	if len(e.EventName) > MaxEventNameLength {
		return &ValidationError{Field: "event_name", Reason: fmt.Sprintf("exceeds max length (%d)", MaxEventNameLength)}
	}
	if len(e.Detail) > MaxDetailLength {
		cut := MaxDetailLength
		for cut > 0 && !utf8.RuneStart(e.Detail[cut]) {
			cut--
		}
		e.Detail = e.Detail[:cut]
	}
	return nil
}

// RecordHookEvent inserts e, assigning its id and timestamp.
func RecordHookEvent(ctx context.Context, db *sql.DB, e HookEvent) (HookEvent, error) {
	if err := ValidateHookEvent(&e); err != nil {
		return HookEvent{}, err
	}
	e.ID = uuid.NewString()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	err := RetryWithBackoff(func() error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO hook_events (id, created_at, hook, event_name, session_id, project_dir, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, e.ID, e.CreatedAt.Format(createdAtLayout), e.Hook, e.EventName, e.SessionID, e.ProjectDir, e.Detail)
		return err
	})
	if err != nil {
		return HookEvent{}, fmt.Errorf("failed to insert hook event: %w", err)
	}
	return e, nil
}
