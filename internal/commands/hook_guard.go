package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/dothook/internal/guard"
)

// blockExitCode tells Claude Code to refuse the tool call and show stderr.
const blockExitCode = 2

func newHookGuardBashCmd() *cobra.Command {
	return newHookHandlerCmd("guard-bash", "PreToolUse: block find/grep and repository-changing git commands", runGuardBash)
}

func runGuardBash(hc *hookContext) error {
	command := hc.Input.ToolInputString("command")
	rule := guard.Check(hc.Input.ToolName, command)
	if rule == nil {
		return nil
	}
	guard.Report(hc.stderr, rule, hc.Input.ToolName, command, hc.Verbose)
	hc.record("blocked=%s", rule.Name)
	return ExitCodeError{Code: blockExitCode}
}
