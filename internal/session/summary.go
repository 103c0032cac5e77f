package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dotcommander/dothook/internal/hookio"
	"github.com/dotcommander/dothook/internal/transcript"
)

// SummaryDir returns <project>/.claude/session-summary.
func SummaryDir(projectDir string) string {
	return filepath.Join(projectDir, ".claude", "session-summary")
}

// Summarizer runs a prompt through an LLM CLI in dir.
type Summarizer interface {
	Run(ctx context.Context, dir, prompt string) (string, error)
}

// SummaryPrompt builds the prompt from the last maxMessages user/agent items,
// each capped at 300 characters. It returns "" when there is nothing to summarise.
func SummaryPrompt(projectDir string, items []transcript.LogItem, maxMessages int) string {
	var relevant []transcript.LogItem
	for _, it := range items {
		if it.Kind == transcript.KindUser || it.Kind == transcript.KindAgent {
			relevant = append(relevant, it)
		}
	}
	if maxMessages > 0 && len(relevant) > maxMessages {
		relevant = relevant[len(relevant)-maxMessages:]
	}
	if len(relevant) == 0 {
		return ""
	}

	lines := make([]string, 0, len(relevant))
	for _, it := range relevant {
		role := "ASSISTANT"
		if it.Kind == transcript.KindUser {
			role = "USER"
		}
		lines = append(lines, role+": "+transcript.TruncateRunes(it.Content, 300, "..."))
	}
	return "Project: " + projectDir + "\n\nConversation:\n" + strings.Join(lines, "\n\n")
}

// StripEmphasis removes markdown bold and italic markers.
func StripEmphasis(s string) string {
	return strings.ReplaceAll(s, "*", "")
}

// Summarize produces a one or two sentence summary, or "" on any failure.
func Summarize(ctx context.Context, s Summarizer, projectDir string, items []transcript.LogItem, maxMessages int, timeout time.Duration) (string, error) {
	prompt := SummaryPrompt(projectDir, items, maxMessages)
	if prompt == "" {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := s.Run(ctx, projectDir, prompt)
	if err != nil {
		return "", fmt.Errorf("summarise session: %w", err)
	}
	return StripEmphasis(strings.TrimSpace(out)), nil
}

// SaveSummary writes <stamp>-summary-ID_<session>.md. Empty summaries are skipped.
func SaveSummary(projectDir, stamp, sessionID, summary string) (string, error) {
	if summary == "" {
		return "", nil
	}
	if sessionID == "" {
		sessionID = "unknown"
	}
	path := filepath.Join(SummaryDir(projectDir), stamp+"-summary-ID_"+sessionID+".md")
	if err := hookio.WritePrivate(path, []byte(summary)); err != nil {
		return "", fmt.Errorf("save summary: %w", err)
	}
	return path, nil
}

// LatestSummary returns the newest saved summary (by filename), trimmed.
// A missing directory or no summaries yields "".
func LatestSummary(projectDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(SummaryDir(projectDir), "*-summary-ID_*.md"))
	if err != nil || len(matches) == 0 {
		return "", nil //nolint:nilerr // a malformed pattern cannot happen; treat as empty
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	data, err := os.ReadFile(matches[0])
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read summary: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SummaryContext wraps a summary for injection into a new session.
func SummaryContext(summary string) string {
	return "<last-session>\n\n" + summary + "</last-session>"
}
