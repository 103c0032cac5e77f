package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dotcommander/dothook/internal/app"
	"github.com/dotcommander/dothook/internal/hookio"
	"github.com/dotcommander/dothook/internal/output"
)

// Execute runs the CLI application.
func Execute(version string) error {
	level := new(slog.LevelVar)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	root := &cobra.Command{
		Use:           "dothook",
		Short:         "Claude Code hooks: handoffs, session logs, subagent ids, bash guard, statusline",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return output.PrintSuccess(resp{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Existing variables win over .env; a missing file is normal.
			_ = godotenv.Load()

			debug, _ := cmd.Flags().GetBool("debug")
			if hookio.DebugEnabled(debug) {
				level.Set(slog.LevelDebug)
			}

			if err := app.EnsureConfigDir(); err != nil {
				if !isHookHandler(cmd) {
					return err
				}
				slog.Default().Warn("config dir unavailable", "error", err)
			}

			// Wire --db-path into app-level resolver.
			if dbPath, err := cmd.Flags().GetString("db-path"); err == nil && dbPath != "" {
				app.SetDBPathOverride(dbPath)
			}

			return nil
		},
	}

	root.PersistentFlags().String("db-path", "", "Override journal database path")
	root.Flags().BoolP("version", "v", false, "version for dothook")

	root.AddCommand(NewHookCmd())
	root.AddCommand(NewStatuslineCmd())
	root.AddCommand(NewEventsCmd())
	root.AddCommand(NewDoctorCmd())

	err := root.Execute()
	if err != nil {
		var pe printedError
		var ee ExitCodeError
		if !errors.As(err, &pe) && !errors.As(err, &ee) {
			slog.Error("command failed", "error", err.Error())
		}
	}
	return err
}
