// Package hookcmd provides hook installation and uninstallation commands.
// This package is separate from the main commands package to allow independent
// evolution of hook lifecycle management.
package hookcmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dotcommander/dothook/internal/output"
)

const dothookCommandFallback = "dothook"

// Handler timeouts in seconds. /handoff waits on an LLM call and SessionEnd
// on a summary, so both get more room than the bookkeeping hooks.
const (
	defaultTimeout    = 10
	handoffTimeout    = 90
	sessionEndTimeout = 45
)

//nolint:gochecknoglobals // sync.Once singleton cache for hook definitions; required by the sync.Once pattern
var (
	dothookHooksOnce  sync.Once
	dothookHooksCache map[string]hookEntry
)

type hookHandler struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout"`
}

type hookEntry struct {
	Matcher string        `json:"matcher"`
	Hooks   []hookHandler `json:"hooks"`
}

// handlerSubcommands lists every `dothook hook <name>` handler.
var handlerSubcommands = map[string]bool{ //nolint:gochecknoglobals // read-only lookup table
	"session-start":   true,
	"session-handoff": true,
	"session-summary": true,
	"session-end":     true,
	"subagent-stop":   true,
	"last-agent":      true,
	"handoff":         true,
	"pickup":          true,
	"post-pickup":     true,
	"sync":            true,
	"pre-compact":     true,
	"guard-bash":      true,
}

func claudeSettingsPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "settings.json")
}

func projectClaudeSettingsPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".", ".claude", "settings.json")
	}
	return filepath.Join(wd, ".claude", "settings.json")
}

func resolveClaudeSettingsPath(projectScoped bool) string {
	if projectScoped {
		return projectClaudeSettingsPath()
	}
	return claudeSettingsPath()
}

func dothookExecutable() string {
	exe, err := os.Executable()
	if err != nil || strings.TrimSpace(exe) == "" {
		return dothookCommandFallback
	}
	return exe
}

func buildDothookCommand(args string) string {
	exe := dothookExecutable()
	if exe == dothookCommandFallback {
		return "dothook " + args
	}
	return fmt.Sprintf("%q %s", exe, args)
}

func handler(subcommand string, timeout int) hookHandler {
	return hookHandler{Type: "command", Command: buildDothookCommand("hook " + subcommand), Timeout: timeout}
}

func dothookHooks() map[string]hookEntry {
	dothookHooksOnce.Do(func() {
		dothookHooksCache = buildDothookHooks()
	})
	return dothookHooksCache
}

func buildDothookHooks() map[string]hookEntry {
	return map[string]hookEntry{
		"SessionStart": {
			Hooks: []hookHandler{
				handler("session-start", defaultTimeout),
				handler("session-handoff", defaultTimeout),
				handler("session-summary", defaultTimeout),
			},
		},
		"SessionEnd": {
			Hooks: []hookHandler{handler("session-end", sessionEndTimeout)},
		},
		"SubagentStop": {
			Hooks: []hookHandler{handler("subagent-stop", defaultTimeout)},
		},
		"UserPromptSubmit": {
			Hooks: []hookHandler{
				handler("last-agent", defaultTimeout),
				handler("handoff", handoffTimeout),
				handler("pickup", defaultTimeout),
				handler("sync", defaultTimeout),
			},
		},
		"PostToolUse": {
			Matcher: "SlashCommand",
			Hooks:   []hookHandler{handler("post-pickup", defaultTimeout)},
		},
		"PreToolUse": {
			Matcher: "Bash",
			Hooks:   []hookHandler{handler("guard-bash", defaultTimeout)},
		},
		"PreCompact": {
			Hooks: []hookHandler{handler("pre-compact", defaultTimeout)},
		},
	}
}

func dothookHookEventNames() []string {
	events := make([]string, 0, len(dothookHooks()))
	for name := range dothookHooks() {
		events = append(events, name)
	}
	sort.Strings(events)
	return events
}

func readSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Claude settings path
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings, nil
}

func writeSettings(path string, settings map[string]any) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// commandTokens splits a hook command, keeping a quoted executable whole.
func commandTokens(command string) []string {
	command = strings.TrimSpace(command)
	if strings.HasPrefix(command, `"`) {
		if end := strings.IndexByte(command[1:], '"'); end >= 0 {
			exe := command[1 : end+1]
			return append([]string{exe}, strings.Fields(command[end+2:])...)
		}
	}
	return strings.Fields(command)
}

// isDothookExec accepts any binary named dothook, plus the running
// executable so renamed installs are still recognised.
func isDothookExec(token string) bool {
	token = strings.Trim(token, `"'`)
	return filepath.Base(token) == "dothook" || token == dothookExecutable()
}

// IsDothookHookCommand checks if a command string runs a dothook hook handler.
func IsDothookHookCommand(command string) bool {
	parts := commandTokens(command)
	if len(parts) < 3 {
		return false
	}
	if !isDothookExec(parts[0]) || parts[1] != "hook" {
		return false
	}
	return handlerSubcommands[parts[2]]
}

// IsDothookStatusline checks if a statusLine setting runs `dothook statusline`.
func IsDothookStatusline(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	cmd, _ := m["command"].(string)
	parts := commandTokens(cmd)
	return len(parts) >= 2 && isDothookExec(parts[0]) && parts[1] == "statusline"
}

// isDothookEntry reports whether a hooks entry carries any dothook handler.
func isDothookEntry(entry any) bool {
	entryMap, ok := entry.(map[string]any)
	if !ok {
		return false
	}
	hooks, ok := entryMap["hooks"].([]any)
	if !ok {
		return false
	}
	for _, h := range hooks {
		hMap, ok := h.(map[string]any)
		if !ok {
			continue
		}
		cmd, _ := hMap["command"].(string)
		if IsDothookHookCommand(cmd) {
			return true
		}
	}
	return false
}

// HasDothookHook checks if a hooks array already contains a dothook hook command.
func HasDothookHook(entries []any) bool {
	for _, entry := range entries {
		if isDothookEntry(entry) {
			return true
		}
	}
	return false
}

func hookEntryEqual(a, b map[string]any) bool {
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	return string(aj) == string(bj)
}

type installOutcome int

const (
	hookInstalled installOutcome = iota
	hookUpdated
	hookSkipped
)

func upsertDothookHookEntry(existing []any, newEntry map[string]any) ([]any, installOutcome) {
	var kept []any
	hadDothook := false
	matchingDothook := false

	for _, currentEntry := range existing {
		if !isDothookEntry(currentEntry) {
			kept = append(kept, currentEntry)
			continue
		}
		hadDothook = true
		if entryObj, ok := currentEntry.(map[string]any); ok && hookEntryEqual(entryObj, newEntry) {
			matchingDothook = true
		}
	}

	entries := append(kept, newEntry)
	if matchingDothook {
		return entries, hookSkipped
	}
	if hadDothook {
		return entries, hookUpdated
	}
	return entries, hookInstalled
}

// removeDothookEntries drops dothook entries and reports whether any went.
func removeDothookEntries(entries []any) ([]any, bool) {
	var kept []any
	for _, entry := range entries {
		if !isDothookEntry(entry) {
			kept = append(kept, entry)
		}
	}
	return kept, len(kept) != len(entries)
}

func toMap(v any) map[string]any {
	data, _ := json.Marshal(v)
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	return m
}

func statuslineSetting() map[string]any {
	return map[string]any{"type": "command", "command": buildDothookCommand("statusline")}
}

// Statusline install outcomes.
const (
	statuslineInstalled = "installed"
	statuslineUpdated   = "updated"
	statuslineSkipped   = "skipped"
	statuslineKept      = "kept-existing"
	statuslineDisabled  = "disabled"
)

func upsertStatusline(settings map[string]any, force bool) string {
	want := statuslineSetting()
	current, exists := settings["statusLine"]
	switch {
	case !exists:
		settings["statusLine"] = want
		return statuslineInstalled
	case IsDothookStatusline(current):
		if cur, ok := current.(map[string]any); ok && hookEntryEqual(cur, want) {
			return statuslineSkipped
		}
		settings["statusLine"] = want
		return statuslineUpdated
	case force:
		settings["statusLine"] = want
		return statuslineUpdated
	default:
		return statuslineKept
	}
}

func printResult(cmd *cobra.Command, v any) error {
	return output.PrintWith(output.ConfigFor(cmd.OutOrStdout()), output.Success(v))
}

// NewInstallCmd creates the hook install command.
//
//nolint:gocognit,funlen
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install dothook hooks and statusline into Claude Code settings",
		Long:  "Registers every dothook hook handler (and the statusline) in ~/.claude/settings.json, or ./.claude/settings.json with --project. Hooks from other tools are preserved.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectScoped, _ := cmd.Flags().GetBool("project")
			noStatusline, _ := cmd.Flags().GetBool("no-statusline")
			force, _ := cmd.Flags().GetBool("force-statusline")

			type result struct {
				Message    string   `json:"message"`
				Path       string   `json:"path"`
				Installed  []string `json:"installed"`
				Updated    []string `json:"updated,omitempty"`
				Skipped    []string `json:"skipped"`
				Statusline string   `json:"statusline"`
			}

			path := resolveClaudeSettingsPath(projectScoped)
			settings, err := readSettings(path)
			if err != nil {
				return err
			}

			hooksObj, _ := settings["hooks"].(map[string]any)
			if hooksObj == nil {
				hooksObj = map[string]any{}
			}

			installed := []string{}
			updated := []string{}
			skipped := []string{}
			for _, eventName := range dothookHookEventNames() {
				existing, _ := hooksObj[eventName].([]any)
				entries, outcome := upsertDothookHookEntry(existing, toMap(dothookHooks()[eventName]))
				hooksObj[eventName] = entries

				switch outcome {
				case hookInstalled:
					installed = append(installed, eventName)
				case hookUpdated:
					updated = append(updated, eventName)
				case hookSkipped:
					skipped = append(skipped, eventName)
				}
			}
			settings["hooks"] = hooksObj

			statusline := statuslineDisabled
			if !noStatusline {
				statusline = upsertStatusline(settings, force)
			}

			if err := writeSettings(path, settings); err != nil {
				return err
			}

			var parts []string
			if len(installed) > 0 {
				parts = append(parts, fmt.Sprintf("Claude Code hooks installed (%s)", strings.Join(installed, ", ")))
			}
			if len(updated) > 0 {
				parts = append(parts, fmt.Sprintf("Claude Code hooks updated (%s)", strings.Join(updated, ", ")))
			}
			if len(installed) == 0 && len(updated) == 0 {
				parts = append(parts, "Claude Code hooks already installed")
			}
			if statusline == statuslineKept {
				parts = append(parts, "existing statusLine kept (use --force-statusline to replace)")
			}

			return printResult(cmd, result{
				Message:    strings.Join(parts, "; ") + ". Run 'dothook doctor' to verify.",
				Path:       path,
				Installed:  installed,
				Updated:    updated,
				Skipped:    skipped,
				Statusline: statusline,
			})
		},
	}

	cmd.Flags().Bool("project", false, "Install into ./.claude/settings.json")
	cmd.Flags().Bool("no-statusline", false, "Leave the statusLine setting alone")
	cmd.Flags().Bool("force-statusline", false, "Replace a statusLine that is not dothook's")

	return cmd
}

// NewUninstallCmd creates the hook uninstall command.
func NewUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove dothook hooks and statusline from Claude Code settings",
		Long:  "Removes only dothook's hook entries and statusLine; everything else in settings.json is kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectScoped, _ := cmd.Flags().GetBool("project")

			type result struct {
				Path              string   `json:"path"`
				Removed           []string `json:"removed"`
				StatuslineRemoved bool     `json:"statusline_removed"`
			}

			path := resolveClaudeSettingsPath(projectScoped)
			settings, err := readSettings(path)
			if err != nil {
				return err
			}

			removed := []string{}
			if hooksObj, ok := settings["hooks"].(map[string]any); ok {
				for _, eventName := range dothookHookEventNames() {
					entries, ok := hooksObj[eventName].([]any)
					if !ok {
						continue
					}
					kept, changed := removeDothookEntries(entries)
					if changed {
						removed = append(removed, eventName)
					}
					if len(kept) == 0 {
						delete(hooksObj, eventName)
					} else {
						hooksObj[eventName] = kept
					}
				}
				settings["hooks"] = hooksObj
			}

			statuslineRemoved := false
			if IsDothookStatusline(settings["statusLine"]) {
				delete(settings, "statusLine")
				statuslineRemoved = true
			}

			if len(removed) > 0 || statuslineRemoved {
				if err := writeSettings(path, settings); err != nil {
					return err
				}
			}

			return printResult(cmd, result{Path: path, Removed: removed, StatuslineRemoved: statuslineRemoved})
		},
	}

	cmd.Flags().Bool("project", false, "Uninstall from ./.claude/settings.json")

	return cmd
}
