package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dotcommander/dothook/internal/app"
	_ "modernc.org/sqlite"
)

// busyTimeoutEnv raises the lock wait when many hook processes share one journal.
const busyTimeoutEnv = "DOTHOOK_BUSY_TIMEOUT_MS"

// defaultBusyTimeoutMS covers the handful of hooks Claude Code fires per prompt.
const defaultBusyTimeoutMS = 5000

// busyTimeoutMS returns DOTHOOK_BUSY_TIMEOUT_MS when it is a positive integer.
func busyTimeoutMS() int {
	if v := os.Getenv(busyTimeoutEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultBusyTimeoutMS
}

// journalPragmas lists the per-connection settings for the hook journal.
// busy_timeout is first so the WAL switch also waits on a sibling hook's lock.
func journalPragmas(busyTimeout int) []string {
	return []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		"PRAGMA synchronous=NORMAL",
		"PRAGMA journal_mode=WAL",
	}
}

// InitDBWithPath opens the hook journal at dbPath, creating its directory,
// and brings the hook_events schema up to date.
func InitDBWithPath(dbPath string) (*sql.DB, error) {
	if _, err := app.EnsureDBDir(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", normalizeSQLiteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// Each hook process records a single row and exits.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range journalPragmas(busyTimeoutMS()) {
		if err := RetryWithBackoff(func() error {
			_, err := db.ExecContext(context.Background(), pragma)
			return err
		}); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal pragma %q: %w", pragma, err)
		}
	}

	if err := RetryWithBackoff(func() error { return MigrateDB(db, dbPath) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return db, nil
}

// normalizeSQLiteDSN turns a plain journal path into a read/write/create
// file: URI. DSNs that are already URIs pass through.
func normalizeSQLiteDSN(dbPath string) string {
	if strings.HasPrefix(dbPath, "file:") {
		return dbPath
	}
	if dbPath == ":memory:" {
		return "file::memory:?cache=shared"
	}
	return "file:" + dbPath + "?mode=rwc"
}
