package hookio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DebugEnabled reports whether per-project debug JSONL should be written.
func DebugEnabled(flag bool) bool {
	return flag || os.Getenv("CLAUDE_HOOK_DEBUG") == "1"
}

// DebugLogger appends structured debug events to
// <project>/.claude/logs/<hook>_debug_<session>.jsonl.
type DebugLogger struct {
	path    string
	enabled bool
}

// NewDebugLogger returns a logger; a disabled logger drops every event.
func NewDebugLogger(projectDir, hook, sessionID string, enabled bool) *DebugLogger {
	if sessionID == "" {
		sessionID = "unknown"
	}
	name := fmt.Sprintf("%s_debug_%s.jsonl", hook, sessionID)
	return &DebugLogger{path: filepath.Join(LogsDir(projectDir), name), enabled: enabled}
}

// Log records event with fields. Failures are logged and swallowed.
func (d *DebugLogger) Log(event string, fields map[string]any) {
	if d == nil || !d.enabled {
		return
	}
	entry := map[string]any{"timestamp": Timestamp(), "event": event}
	for k, v := range fields {
		entry[k] = v
	}
	if err := AppendJSONL(d.path, entry); err != nil {
		slog.Default().Debug("debug log write failed", "path", d.path, "error", err)
	}
}

// Path returns the debug file path.
func (d *DebugLogger) Path() string { return d.path }
