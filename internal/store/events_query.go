package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ListHookEventsParams filters ListHookEvents. Zero values match everything.
type ListHookEventsParams struct {
	Hook      string
	SessionID string
	Since     time.Time
	Limit     int
}

// ListHookEvents returns matching events, newest first.
func ListHookEvents(ctx context.Context, db *sql.DB, p ListHookEventsParams) ([]HookEvent, error) {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 1000 {
		p.Limit = 1000
	}

	where := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if p.Hook != "" {
		where = append(where, "hook = ?")
		args = append(args, p.Hook)
	}
	if p.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, p.SessionID)
	}
	if !p.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, p.Since.UTC().Format(createdAtLayout))
	}

	query := `
		SELECT id, created_at, hook, event_name, session_id, project_dir, detail
		FROM hook_events
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, p.Limit)

	var out []HookEvent
	err := RetryWithBackoff(func() error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to list hook events: %w", err)
		}
		defer func() { _ = rows.Close() }()

		out = make([]HookEvent, 0)
		for rows.Next() {
			var e HookEvent
			var created string
			if err := rows.Scan(&e.ID, &created, &e.Hook, &e.EventName, &e.SessionID, &e.ProjectDir, &e.Detail); err != nil {
				return fmt.Errorf("failed to scan hook event: %w", err)
			}
			if ts, perr := time.Parse(createdAtLayout, created); perr == nil {
				e.CreatedAt = ts
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PruneHookEvents deletes events older than before and reports how many went.
func PruneHookEvents(ctx context.Context, db *sql.DB, before time.Time) (int64, error) {
	var n int64
	err := Transact(ctx, db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM hook_events WHERE created_at < ?`, before.UTC().Format(createdAtLayout))
		if err != nil {
			return fmt.Errorf("failed to prune hook events: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// CountHookEvents returns the number of journal rows.
func CountHookEvents(ctx context.Context, db *sql.DB) (int64, error) {
	var n int64
	err := RetryWithBackoff(func() error {
		return db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hook_events`).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count hook events: %w", err)
	}
	return n, nil
}
