package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/dothook/internal/output"
	"github.com/dotcommander/dothook/internal/store"
)

func NewEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the hook event journal",
	}

	cmd.AddCommand(newEventsListCmd())
	cmd.AddCommand(newEventsPruneCmd())
	return cmd
}

func newEventsListCmd() *cobra.Command {
	var (
		hook    string
		session string
		since   time.Duration
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled hook invocations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return cmdErr(cmd, fmt.Errorf("--limit must be >= 0"))
			}
			params := store.ListHookEventsParams{Hook: hook, SessionID: session, Limit: limit}
			if since > 0 {
				params.Since = time.Now().Add(-since)
			}

			var events []store.HookEvent
			if err := withDB(cmd, func(db *DB) error {
				ev, err := store.ListHookEvents(cmd.Context(), db, params)
				if err != nil {
					return err
				}
				events = ev
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Hook    string            `json:"hook,omitempty"`
				Session string            `json:"session_id,omitempty"`
				Count   int               `json:"count"`
				Events  []store.HookEvent `json:"events"`
			}
			return output.PrintWith(output.ConfigFor(cmd.OutOrStdout()), output.Success(resp{
				Hook:    hook,
				Session: session,
				Count:   len(events),
				Events:  events,
			}))
		},
	}

	cmd.Flags().StringVar(&hook, "hook", "", "Filter by hook name (e.g. handoff, subagent-stop)")
	cmd.Flags().StringVar(&session, "session", "", "Filter by session id")
	cmd.Flags().DurationVar(&since, "since", 0, "Only events newer than this (e.g. 24h)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Max events (<= 1000)")
	return cmd
}

func newEventsPruneCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal rows older than --older-than",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return cmdErr(cmd, fmt.Errorf("--older-than must be positive"))
			}
			before := time.Now().Add(-olderThan)

			var deleted int64
			if err := withDB(cmd, func(db *DB) error {
				n, err := store.PruneHookEvents(cmd.Context(), db, before)
				if err != nil {
					return err
				}
				deleted = n
				return nil
			}); err != nil {
				return err
			}

			type resp struct {
				Before  time.Time `json:"before"`
				Deleted int64     `json:"deleted"`
			}
			return output.PrintWith(output.ConfigFor(cmd.OutOrStdout()), output.Success(resp{Before: before.UTC(), Deleted: deleted}))
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age threshold")
	return cmd
}
