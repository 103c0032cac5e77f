package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcquireMigrationLock_ReleaseAndReacquire(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "journal.db")

	unlock, err := acquireMigrationLock(dbPath)
	require.NoError(t, err)
	require.FileExists(t, dbPath+".migrate.lock")
	unlock()

	unlock, err = acquireMigrationLock(dbPath)
	require.NoError(t, err)
	unlock()
}

func TestAcquireMigrationLock_GivesUpWhileHeld(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the lock timeout")
	}
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	unlock, err := acquireMigrationLock(dbPath)
	require.NoError(t, err)
	defer unlock()

	_, err = acquireMigrationLock(dbPath)
	require.Error(t, err)
}
