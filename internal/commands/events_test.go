package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/dothook/internal/store"
)

func TestNewEventsCmd_HasExpectedSubcommands(t *testing.T) {
	cmd := NewEventsCmd()
	require.Equal(t, "events", cmd.Use)
	require.Equal(t, "Inspect the hook event journal", cmd.Short)

	for _, name := range []string{"list", "prune"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		require.NotNil(t, sub)
		require.Equal(t, name, sub.Name())
	}
}

func TestEventsFlagSetup(t *testing.T) {
	list := newEventsListCmd()
	for _, name := range []string{"hook", "session", "since", "limit"} {
		require.NotNil(t, list.Flags().Lookup(name), name)
	}
	require.Equal(t, "50", list.Flags().Lookup("limit").DefValue)

	prune := newEventsPruneCmd()
	require.Equal(t, "720h0m0s", prune.Flags().Lookup("older-than").DefValue)
}

func TestEventsListCmd_RejectsNegativeLimit(t *testing.T) {
	setupHookEnv(t)

	cmd := newEventsListCmd()
	cmd.SetArgs([]string{"--limit", "-1"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	require.IsType(t, printedError{}, err)
}

func TestEventsPruneCmd_RejectsNonPositiveAge(t *testing.T) {
	setupHookEnv(t)

	cmd := newEventsPruneCmd()
	cmd.SetArgs([]string{"--older-than", "0s"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	require.EqualError(t, err, "error already printed")
}

func TestEventsPruneCmd_DeletesOldRows(t *testing.T) {
	setupHookEnv(t)

	db, closeDB, err := openDB()
	require.NoError(t, err)
	ctx := context.Background()
	_, err = store.RecordHookEvent(ctx, db, store.HookEvent{Hook: "pickup", SessionID: "s1"})
	require.NoError(t, err)
	closeDB()

	// Nothing is older than an hour yet.
	cmd := NewEventsCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"prune", "--older-than", "1h"})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Before  time.Time `json:"before"`
			Deleted int64     `json:"deleted"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp), stdout.String())
	require.True(t, resp.Success)
	require.Zero(t, resp.Data.Deleted)
	require.False(t, resp.Data.Before.IsZero())
}
