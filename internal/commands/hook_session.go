package commands

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/dothook/internal/app"
	"github.com/dotcommander/dothook/internal/handoff"
	"github.com/dotcommander/dothook/internal/hookio"
	"github.com/dotcommander/dothook/internal/llm"
	"github.com/dotcommander/dothook/internal/session"
	"github.com/dotcommander/dothook/internal/transcript"
	"github.com/dotcommander/dothook/internal/vcs"
)

const (
	sourceClear  = "clear"
	syncPrefix   = "/sync"
	dateLayout   = "2006-01-02"
	kiroDirEnv   = "KIRO_DIR"
	sessionLogFn = "session_start.json"
	preCompactFn = "pre_compact.jsonl"
)

func newHookSessionStartCmd() *cobra.Command {
	return newHookHandlerCmd("session-start", "SessionStart reminder (project, date, repo type)", runSessionStart)
}

func runSessionStart(hc *hookContext) error {
	sessionID, ok := hc.Input.Raw["session_id"].(string)
	if !ok || sessionID == "" {
		return nil
	}
	sessionID = hookio.Sanitize(sessionID)
	projectDir := os.Getenv("CLAUDE_PROJECT_DIR")
	if projectDir == "" {
		projectDir = hc.Input.CWD
	}
	projectDir = hookio.Sanitize(projectDir)

	entry := map[string]any{
		"timestamp":       hookio.Timestamp(),
		"session_id":      hc.Input.Raw["session_id"],
		"cwd":             hc.Input.Raw["cwd"],
		"hook_event_name": hc.Input.Raw["hook_event_name"],
		"source":          hc.Input.Raw["source"],
	}
	if err := hookio.AppendJSONArray(filepath.Join(hookio.LogsDir(hc.ProjectDir), sessionLogFn), entry); err != nil {
		hc.note("session log not written: %v", err)
	}

	kiroDir := strings.TrimSpace(os.Getenv(kiroDirEnv))
	repo := vcs.Detect(projectDir)
	msg := reminderMessage(app.EffectiveReminderSettings().Tools, sessionID, projectDir, repo, kiroDir, hookio.Now())

	hc.note("Session reminder injected. %s... | Project: %s", truncateRunes(sessionID, 8), projectDir)

	out := hookio.Context(hookio.EventSessionStart, msg)
	out.SystemMessage = "Remind - Project: " + projectDir
	if kiroDir != "" {
		out.SystemMessage += ", Kiro: " + filepath.Base(kiroDir)
	}
	hc.record("source=%s repo=%s", hc.Input.Source, repo)
	return hc.emit(out)
}

// reminderMessage builds the context injected at session start.
func reminderMessage(tools, sessionID, projectDir, repo, kiroDir string, now time.Time) string {
	var b strings.Builder
	b.WriteString(tools + "\n")
	b.WriteString("Session ID: " + sessionID + "\n")
	b.WriteString("Today is: " + now.Format(dateLayout) + "\n")
	if projectDir != "" {
		b.WriteString("Current project root: " + projectDir)
	}
	if repo != "" {
		b.WriteString("\nRepo type: " + repo)
		if note := vcs.Note(repo); note != "" {
			b.WriteString("\nNote: " + note)
		}
	}
	if kiroDir != "" {
		b.WriteString("\nKiro spec dir: " + kiroDir)
	}
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func newHookSessionHandoffCmd() *cobra.Command {
	return newHookHandlerCmd("session-handoff", "SessionStart: suggest picking up a pending handoff", runSessionHandoff)
}

func runSessionHandoff(hc *hookContext) error {
	if hc.Input.Source != sourceClear {
		return nil
	}
	pending, err := handoff.Pending(hc.ProjectDir)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	out := hookio.Context(hookio.EventSessionStart, handoff.TriggerContext(pending))
	out.SystemMessage = handoff.PendingNotice(pending)
	hc.record("pending=%d latest=%s", len(pending), pending[0].Name)
	return hc.emit(out)
}

func newHookSessionSummaryCmd() *cobra.Command {
	return newHookHandlerCmd("session-summary", "SessionStart: load the previous session summary", runSessionSummary)
}

func runSessionSummary(hc *hookContext) error {
	if hc.Input.Source != sourceClear {
		return nil
	}
	summary, err := session.LatestSummary(hc.ProjectDir)
	if err != nil {
		return err
	}
	if summary == "" {
		return nil
	}

	out := hookio.Context(hookio.EventSessionStart, session.SummaryContext(summary))
	out.SystemMessage = "History context loaded"
	hc.record("summary_chars=%d", len(summary))
	return hc.emit(out)
}

func newHookSessionEndCmd() *cobra.Command {
	return newHookHandlerCmd("session-end", "SessionEnd: save the session log and a short summary", runSessionEnd)
}

func runSessionEnd(hc *hookContext) error {
	if hc.Input.HookEventName != hookio.EventSessionEnd {
		return nil
	}
	path := hc.Input.TranscriptPath
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil //nolint:nilerr // a vanished transcript leaves nothing to save
	}
	projectDir := os.Getenv("CLAUDE_PROJECT_DIR")
	if projectDir == "" {
		projectDir = hc.Input.CWD
	}
	if projectDir == "" {
		return nil
	}

	entries, err := transcript.ReadEntries(path)
	if err != nil {
		return err
	}
	items := transcript.SessionLog(entries)
	if len(items) == 0 {
		return nil
	}

	stamp := session.Stamp()
	saved, err := session.Save(projectDir, stamp, items)
	if err != nil {
		return err
	}
	hc.record("saved=%s items=%d", filepath.Base(saved), len(items))

	cfg := app.EffectiveSummarySettings()
	runner := llm.NewAichatRunner(cfg.Command, cfg.Role)
	summary, err := session.Summarize(hc.Ctx, runner, projectDir, items, cfg.MaxMessages, time.Duration(cfg.TimeoutSeconds)*time.Second)
	if err != nil {
		// The session log is saved; a missing summary is not worth failing over.
		hc.note("summary skipped: %v", err)
		return nil
	}
	summaryPath, err := session.SaveSummary(projectDir, stamp, hc.Input.SessionID, summary)
	if err != nil {
		return err
	}
	if summaryPath != "" {
		hc.record("saved=%s items=%d summary=%s", filepath.Base(saved), len(items), filepath.Base(summaryPath))
	}
	return nil
}

func newHookSyncCmd() *cobra.Command {
	return newHookHandlerCmd("sync", "UserPromptSubmit: /sync saves the session without ending it", runSync)
}

func runSync(hc *hookContext) error {
	if !strings.HasPrefix(strings.TrimSpace(hc.Input.Prompt), syncPrefix) {
		return nil
	}
	if hc.Input.TranscriptPath == "" {
		return hc.emit(hookio.Block("Error: No transcript_path provided"))
	}
	if hc.Input.SessionID == "" {
		return hc.emit(hookio.Block("Error: No session_id provided"))
	}

	entries, err := transcript.ReadEntries(hc.Input.TranscriptPath)
	if err != nil && !errors.Is(err, transcript.ErrNoTranscript) {
		return hc.emit(hookio.Block("Error during sync: " + err.Error()))
	}
	items := transcript.SessionLog(entries)
	if len(items) == 0 {
		return hc.emit(hookio.Block("No conversation history found to save."))
	}

	path, err := session.Sync(hc.ProjectDir, hc.Input.SessionID, items)
	if err != nil {
		hc.record("error=%v", err)
		return hc.emit(hookio.Block("Failed to save session."))
	}
	hc.record("synced=%s items=%d", filepath.Base(path), len(items))
	return hc.emit(hookio.Block(session.SyncMessage(path, len(items))))
}

func newHookPreCompactCmd() *cobra.Command {
	return newHookHandlerCmd("pre-compact", "PreCompact: log compaction events", runPreCompact)
}

func runPreCompact(hc *hookContext) error {
	entry := map[string]any{
		"timestamp":  hookio.Timestamp(),
		"session_id": hc.Input.SessionID,
		"trigger":    hc.Input.Trigger,
	}
	hc.record("trigger=%s", hc.Input.Trigger)
	return hookio.AppendJSONL(filepath.Join(hookio.LogsDir(hc.ProjectDir), preCompactFn), entry)
}
