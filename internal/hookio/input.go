// Package hookio implements the stdin/stdout JSON contract shared by every
// Claude Code hook handler, plus the small file helpers the hooks use to
// persist state under a project's .claude directory.
package hookio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// MaxStdinBytes caps stdin reads. Hook payloads are small JSON objects.
const MaxStdinBytes = 1 << 20

// ErrEmptyInput is returned by Read when stdin carried no payload.
var ErrEmptyInput = errors.New("empty hook input")

// Input is the JSON Claude Code sends on stdin to hooks.
type Input struct {
	SessionID      string          `json:"session_id"`
	TranscriptPath string          `json:"transcript_path"`
	CWD            string          `json:"cwd"`
	HookEventName  string          `json:"hook_event_name"`
	Prompt         string          `json:"prompt"`
	Source         string          `json:"source"`
	Trigger        string          `json:"trigger"`
	ToolName       string          `json:"tool_name"`
	ToolInput      json.RawMessage `json:"tool_input"`
	ToolResponse   json.RawMessage `json:"tool_response"`
	Raw            map[string]any  `json:"-"`
}

// Read decodes a hook payload. Empty input yields ErrEmptyInput; malformed
// JSON yields a wrapped decode error. Callers fail open on either.
func Read(r io.Reader) (Input, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxStdinBytes))
	if err != nil {
		return Input{}, fmt.Errorf("read hook input: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Input{}, ErrEmptyInput
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Input{}, fmt.Errorf("parse hook input: %w", err)
	}

	// Typed fields are decoded leniently: a non-string session_id must not
	// discard the rest of the payload.
	var input Input
	_ = json.Unmarshal(data, &input)
	input.Raw = raw
	if input.SessionID == "" {
		input.SessionID = rawString(raw, "session_id")
	}
	return input, nil
}

// String returns the first non-empty string value among keys in Raw.
func (in Input) String(keys ...string) string {
	for _, k := range keys {
		if v := rawString(in.Raw, k); v != "" {
			return v
		}
	}
	return ""
}

// ToolInputString returns a string field from tool_input.
func (in Input) ToolInputString(key string) string {
	if len(in.ToolInput) == 0 {
		return ""
	}
	var m map[string]any
	if err := json.Unmarshal(in.ToolInput, &m); err != nil {
		return ""
	}
	return rawString(m, key)
}

func rawString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// ProjectDir resolves the project root: $CLAUDE_PROJECT_DIR, then cwd from
// the payload, then ".".
func ProjectDir(in Input) string {
	if dir := os.Getenv("CLAUDE_PROJECT_DIR"); dir != "" {
		return dir
	}
	if in.CWD != "" {
		return in.CWD
	}
	return "."
}

// Sanitize collapses every whitespace run (newlines included) into a single
// space and trims the result.
func Sanitize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ShortSessionID returns the portion of a session id before its first dash.
func ShortSessionID(sessionID string) string {
	if i := strings.IndexByte(sessionID, '-'); i >= 0 {
		return sessionID[:i]
	}
	return sessionID
}
