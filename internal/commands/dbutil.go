package commands

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dotcommander/dothook/internal/app"
	"github.com/dotcommander/dothook/internal/output"
	"github.com/dotcommander/dothook/internal/store"
)

// DB is an alias so command code doesn't need to import database/sql.
type DB = sql.DB

// printedError marks an error whose JSON envelope is already on stdout.
type printedError struct {
	err error
}

func (e printedError) Error() string {
	// Intentionally hide the original error: the JSON error response is the output.
	return "error already printed"
}

func (e printedError) Unwrap() error { return e.err }

// ExitCodeError makes main exit with Code. Whatever the command had to say
// was already written to stderr.
type ExitCodeError struct {
	Code int
}

func (e ExitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// openDB opens the journal at the resolved path, migrating it if needed.
func openDB() (*DB, func(), error) {
	dbPath, err := app.GetDBPath()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve journal path: %w", err)
	}

	db, err := store.InitDBWithPath(dbPath)
	if err != nil {
		return nil, nil, err
	}

	return db, func() { _ = db.Close() }, nil
}

// withDB runs fn against the journal; failures become a JSON error on cmd's stdout.
func withDB(cmd *cobra.Command, fn func(db *DB) error) error {
	db, closeDB, err := openDB()
	if err != nil {
		return cmdErr(cmd, err)
	}
	defer closeDB()

	if err := fn(db); err != nil {
		return cmdErr(cmd, err)
	}
	return nil
}

// cmdErr prints err as the command's JSON error envelope and logs it.
func cmdErr(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	attrs := []any{"command", cmd.CommandPath(), "error", err.Error()}
	var validation *store.ValidationError
	if errors.As(err, &validation) {
		attrs = append(attrs, "error_code", validation.ErrorCode())
	}
	slog.Default().Error("command error", attrs...)

	if printErr := output.PrintWith(output.ConfigFor(cmd.OutOrStdout()), output.Error(err)); printErr != nil {
		return printErr
	}
	return printedError{err: err}
}
