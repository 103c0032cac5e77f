package commands

import (
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/dotcommander/dothook/internal/app"
	"github.com/dotcommander/dothook/internal/output"
	"github.com/dotcommander/dothook/internal/store"
)

func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, journal database and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, dbSource, err := app.ResolveDBPathDetailed()
			if err != nil {
				return cmdErr(cmd, err)
			}

			var (
				dbOK          bool
				dbErr         string
				queryOK       bool
				queryErr      string
				schemaCurrent int64
				schemaLatest  int64
				eventCount    int64
			)

			db, err := store.InitDBWithPath(dbPath)
			if err != nil {
				dbOK = false
				dbErr = err.Error()
			} else {
				dbOK = true
				defer db.Close()
			}

			if dbOK {
				var one int
				if err := db.QueryRowContext(cmd.Context(), "SELECT 1").Scan(&one); err != nil {
					queryOK = false
					queryErr = err.Error()
				} else {
					queryOK = true
					schemaCurrent, schemaLatest, _ = store.SchemaVersion(db)
					eventCount, _ = store.CountHookEvents(cmd.Context(), db)
				}
			} else {
				queryOK = false
				queryErr = "db not available"
			}

			summary := app.EffectiveSummarySettings()
			tools := map[string]bool{}
			for _, name := range []string{"claude", summary.Command, "pbcopy", "wl-copy", "xclip"} {
				_, lookErr := exec.LookPath(name)
				tools[name] = lookErr == nil
			}

			type resp struct {
				DBPath        string          `json:"db_path"`
				DBSource      string          `json:"db_source"`
				DBOK          bool            `json:"db_ok"`
				DBErr         string          `json:"db_error,omitempty"`
				QueryOK       bool            `json:"query_ok"`
				QueryErr      string          `json:"query_error,omitempty"`
				SchemaVersion int64           `json:"schema_version"`
				SchemaLatest  int64           `json:"schema_latest"`
				HookEvents    int64           `json:"hook_events"`
				Journal       bool            `json:"journal"`
				Tools         map[string]bool `json:"tools"`
				Hint          string          `json:"hint,omitempty"`
			}
			hint := ""
			if !dbOK {
				hint = "If this is running in a sandboxed environment, set db_path to a writable location or use --db-path."
			}
			return output.PrintWith(output.ConfigFor(cmd.OutOrStdout()), output.Success(resp{
				DBPath:        dbPath,
				DBSource:      dbSource,
				DBOK:          dbOK,
				DBErr:         dbErr,
				QueryOK:       queryOK,
				QueryErr:      queryErr,
				SchemaVersion: schemaCurrent,
				SchemaLatest:  schemaLatest,
				HookEvents:    eventCount,
				Journal:       app.JournalEnabled(),
				Tools:         tools,
				Hint:          hint,
			}))
		},
	}

	return cmd
}
