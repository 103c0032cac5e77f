package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dotcommander/dothook/internal/app"
	"github.com/dotcommander/dothook/internal/commands/hookcmd"
	"github.com/dotcommander/dothook/internal/hookio"
	"github.com/dotcommander/dothook/internal/store"
)

// hookAnnotation marks commands invoked by Claude Code rather than people.
const hookAnnotation = "dothook/hook"

// journalTimeout bounds the best-effort journal write so a locked database
// never stalls the host.
const journalTimeout = 2 * time.Second

// NewHookCmd creates the hook parent command.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Hook handlers and installers for Claude Code",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(hookcmd.NewInstallCmd())
	cmd.AddCommand(hookcmd.NewUninstallCmd())

	// Handlers are called by the hook system; keep them out of help output.
	for _, sub := range []*cobra.Command{
		newHookSessionStartCmd(),
		newHookSessionHandoffCmd(),
		newHookSessionSummaryCmd(),
		newHookSessionEndCmd(),
		newHookSubagentStopCmd(),
		newHookLastAgentCmd(),
		newHookHandoffCmd(),
		newHookPickupCmd(),
		newHookPostPickupCmd(),
		newHookSyncCmd(),
		newHookPreCompactCmd(),
		newHookGuardBashCmd(),
	} {
		sub.Hidden = true
		cmd.AddCommand(sub)
	}

	return cmd
}

func isHookHandler(cmd *cobra.Command) bool {
	return cmd.Annotations[hookAnnotation] == "handler"
}

// hookContext holds resolved state shared by every hook handler.
type hookContext struct {
	Ctx        context.Context
	Name       string
	Input      hookio.Input
	ProjectDir string
	Verbose    bool
	Quiet      bool
	Debug      *hookio.DebugLogger

	stdout io.Writer
	stderr io.Writer
	// detail is recorded in the journal row for this invocation.
	detail string
}

// emit writes out to stdout as the hook result.
func (hc *hookContext) emit(out hookio.Output) error {
	return hookio.Emit(hc.stdout, out)
}

// note writes a diagnostic line to stderr when --verbose is set.
func (hc *hookContext) note(format string, args ...any) {
	if hc.Verbose && !hc.Quiet {
		_, _ = fmt.Fprintf(hc.stderr, format+"\n", args...)
	}
}

// say writes a diagnostic line to stderr unless --quiet is set.
func (hc *hookContext) say(format string, args ...any) {
	if !hc.Quiet {
		_, _ = fmt.Fprintf(hc.stderr, format+"\n", args...)
	}
}

func (hc *hookContext) record(format string, args ...any) {
	hc.detail = fmt.Sprintf(format, args...)
}

// newHookHandlerCmd wraps run with the shared hook contract: read stdin,
// ignore empty or malformed payloads, fail open on errors and panics, and
// journal the invocation. Only ExitCodeError escapes to main.
func newHookHandlerCmd(name, short string, run func(hc *hookContext) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:         name,
		Short:       short,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{hookAnnotation: "handler"},
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			input, readErr := hookio.Read(cmd.InOrStdin())
			if readErr != nil {
				if !errors.Is(readErr, hookio.ErrEmptyInput) {
					slog.Default().Warn("hook input ignored", "hook", name, "error", readErr)
				}
				return nil
			}

			hc := newHookContext(cmd, name, input)
			defer func() {
				if r := recover(); r != nil {
					slog.Default().Error("hook panicked", "hook", name, "panic", fmt.Sprint(r))
					err = nil
				}
			}()

			runErr := run(hc)
			journalHookEvent(hc)

			var exitErr ExitCodeError
			if errors.As(runErr, &exitErr) {
				return runErr
			}
			if runErr != nil {
				slog.Default().Warn("hook failed", "hook", name, "session_id", input.SessionID, "error", runErr)
			}
			return nil
		},
	}

	addHandlerFlags(cmd.Flags())
	return cmd
}

// addHandlerFlags registers the diagnostics flags every handler accepts.
func addHandlerFlags(fs *pflag.FlagSet) {
	fs.Bool("verbose", false, "Print diagnostics to stderr")
	fs.Bool("quiet", false, "Suppress diagnostics")
	fs.Bool("debug", false, "Write debug JSONL under .claude/logs (or CLAUDE_HOOK_DEBUG=1)")
}

func newHookContext(cmd *cobra.Command, name string, input hookio.Input) *hookContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	debug, _ := cmd.Flags().GetBool("debug")

	projectDir := hookio.ProjectDir(input)
	return &hookContext{
		Ctx:        ctx,
		Name:       name,
		Input:      input,
		ProjectDir: projectDir,
		Verbose:    verbose,
		Quiet:      quiet,
		Debug:      hookio.NewDebugLogger(projectDir, debugLogName(name), input.SessionID, hookio.DebugEnabled(debug)),
		stdout:     cmd.OutOrStdout(),
		stderr:     cmd.ErrOrStderr(),
	}
}

// debugLogName keeps the debug file names the hooks have always used.
func debugLogName(hook string) string {
	switch hook {
	case "subagent-stop":
		return "subagent_remind"
	case "last-agent":
		return "get_last_agent"
	default:
		return hook
	}
}

// journalHookEvent records the invocation. Failures are logged and ignored.
func journalHookEvent(hc *hookContext) {
	if !app.JournalEnabled() {
		return
	}
	db, closeDB, err := openDB()
	if err != nil {
		slog.Default().Debug("journal unavailable", "hook", hc.Name, "error", err)
		return
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(hc.Ctx, journalTimeout)
	defer cancel()
	_, err = store.RecordHookEvent(ctx, db, store.HookEvent{
		Hook:       hc.Name,
		EventName:  hc.Input.HookEventName,
		SessionID:  hc.Input.SessionID,
		ProjectDir: hc.ProjectDir,
		Detail:     hc.detail,
	})
	if err != nil {
		slog.Default().Debug("journal write failed", "hook", hc.Name, "error", err)
	}
}
