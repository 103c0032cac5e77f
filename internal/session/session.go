// Package session saves conversation logs and short summaries under the
// project's .claude directory.
package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dotcommander/dothook/internal/hookio"
	"github.com/dotcommander/dothook/internal/transcript"
)

// StampLayout names session and summary files.
const StampLayout = "20060102-150405"

const fallbackDescription = "session"

// ErrNoMessages is returned when a transcript holds nothing worth saving.
var ErrNoMessages = errors.New("no conversation history found to save")

// Dir returns <project>/.claude/sessions.
func Dir(projectDir string) string {
	return filepath.Join(projectDir, ".claude", "sessions")
}

// Stamp returns the current time in StampLayout.
func Stamp() string {
	return hookio.Now().Format(StampLayout)
}

// Description derives a filename fragment from the first user message.
func Description(items []transcript.LogItem) string {
	for _, it := range items {
		if it.Kind != transcript.KindUser || it.Content == "" {
			continue
		}
		head := strings.TrimSpace(transcript.TruncateRunes(it.Content, 30, ""))
		var b strings.Builder
		for _, r := range head {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
				b.WriteRune(r)
			}
		}
		desc := strings.ToLower(strings.ReplaceAll(b.String(), " ", "-"))
		if desc == "" {
			return fallbackDescription
		}
		return desc
	}
	return fallbackDescription
}

// Render formats items as <user>, <agent> and <tool_call> blocks.
func Render(items []transcript.LogItem) string {
	blocks := make([]string, 0, len(items))
	for _, it := range items {
		switch it.Kind {
		case transcript.KindUser, transcript.KindAgent, transcript.KindToolCall:
			blocks = append(blocks, "<"+it.Kind+">\n"+it.Content+"\n</"+it.Kind+">\n")
		}
	}
	return strings.Join(blocks, "\n")
}

// Save writes <stamp>-session-<description>.txt and returns its path.
func Save(projectDir, stamp string, items []transcript.LogItem) (string, error) {
	if len(items) == 0 {
		return "", ErrNoMessages
	}
	path := filepath.Join(Dir(projectDir), stamp+"-session-"+Description(items)+".txt")
	if err := hookio.WritePrivate(path, []byte(Render(items))); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return path, nil
}

// Sync writes the full log for sessionID, reusing the file from an earlier
// sync of the same session when there is one.
func Sync(projectDir, sessionID string, items []transcript.LogItem) (string, error) {
	if sessionID == "" || strings.ContainsAny(sessionID, `/\*?[`) {
		return "", fmt.Errorf("invalid session id %q", sessionID)
	}
	if len(items) == 0 {
		return "", ErrNoMessages
	}

	path := existingSync(projectDir, sessionID)
	if path == "" {
		name := Stamp() + "-session-" + Description(items) + "-ID_" + sessionID + ".md"
		path = filepath.Join(Dir(projectDir), name)
	}
	if err := hookio.WritePrivate(path, []byte(Render(items))); err != nil {
		return "", fmt.Errorf("sync session: %w", err)
	}
	return path, nil
}

func existingSync(projectDir, sessionID string) string {
	matches, err := filepath.Glob(filepath.Join(Dir(projectDir), "*-session-*-ID_"+sessionID+".md"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// SyncMessage is the text shown to the user after /sync.
func SyncMessage(path string, total int) string {
	return fmt.Sprintf("✅ **Session Synced Successfully**\n\n"+
		"📝 **File**: `.claude/sessions/%s`\n"+
		"📊 **Total Messages**: %d\n\n"+
		"The session has been saved to disk. You can continue working in this session.",
		filepath.Base(path), total)
}
