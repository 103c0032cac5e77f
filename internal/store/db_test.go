package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "nested", "test.db")
}

func TestInitDB(t *testing.T) {
	path := openTestDB(t)

	db, err := InitDBWithPath(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	require.NoError(t, err, "database file should be created")

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='hook_events'").Scan(&name))

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	current, latest, err := SchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, latest, current)
	assert.GreaterOrEqual(t, latest, int64(1))
}

func TestInitDBIsIdempotent(t *testing.T) {
	path := openTestDB(t)

	db, err := InitDBWithPath(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = InitDBWithPath(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path + ".migrate.lock")
	require.NoError(t, err)
}

func TestBusyTimeoutFromEnv(t *testing.T) {
	t.Setenv(busyTimeoutEnv, "")
	assert.Equal(t, defaultBusyTimeoutMS, busyTimeoutMS())

	t.Setenv(busyTimeoutEnv, "12000")
	assert.Equal(t, 12000, busyTimeoutMS())
	assert.Equal(t, "PRAGMA busy_timeout=12000", journalPragmas(busyTimeoutMS())[0])

	for _, bad := range []string{"0", "-5", "soon"} {
		t.Setenv(busyTimeoutEnv, bad)
		assert.Equal(t, defaultBusyTimeoutMS, busyTimeoutMS(), bad)
	}
}

func TestInitDBAppliesBusyTimeout(t *testing.T) {
	t.Setenv(busyTimeoutEnv, "7500")

	db, err := InitDBWithPath(openTestDB(t))
	require.NoError(t, err)
	defer db.Close()

	var timeout int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 7500, timeout)
}

func TestNormalizeSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:/tmp/x.db?mode=rwc", normalizeSQLiteDSN("/tmp/x.db"))
	assert.Equal(t, "file::memory:?cache=shared", normalizeSQLiteDSN(":memory:"))
	assert.Equal(t, "file:y.db?mode=ro", normalizeSQLiteDSN("file:y.db?mode=ro"))
}
