package handoff

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dotcommander/dothook/internal/hookio"
)

const (
	fileStampLayout    = "2006-01-02-150405"
	createdStampLayout = "2006-01-02 15:04:05"
)

// Dir returns <project>/.claude/handoffs.
func Dir(projectDir string) string {
	return filepath.Join(projectDir, ".claude", "handoffs")
}

// Document is a handoff ready to be written.
type Document struct {
	Slug    string
	Summary string
	// Note is the user's text after /handoff. It is never sent to the LLM.
	Note string
}

// Render returns the markdown body for a document saved as filename.
func (d Document) Render(filename, created string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Handoff: %s\n\n", d.Slug)
	fmt.Fprintf(&b, "**Created**: %s\n\n", created)
	if d.Note != "" {
		b.WriteString("## User Note\n\n")
		fmt.Fprintf(&b, "> %s\n\n", d.Note)
	}
	b.WriteString("---\n\n")
	b.WriteString(d.Summary)
	b.WriteString("\n\n---\n\n")
	fmt.Fprintf(&b, "**To resume**: Run `/pickup %s` in a new session\n", filename)
	return b.String()
}

// Save writes d to <project>/.claude/handoffs/<slug>-<stamp>.md and returns
// the project-relative path.
func Save(projectDir string, d Document) (string, error) {
	dir := Dir(projectDir)
	if err := os.MkdirAll(dir, hookio.DirMode); err != nil {
		return "", fmt.Errorf("create handoffs dir: %w", err)
	}
	now := hookio.Now()
	filename := d.Slug + "-" + now.Format(fileStampLayout) + ".md"
	body := d.Render(filename, now.Format(createdStampLayout))
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(body), 0o644); err != nil { //nolint:gosec // handoffs are meant to be shared with the user
		return "", fmt.Errorf("write handoff: %w", err)
	}
	return filepath.ToSlash(filepath.Join(".claude", "handoffs", filename)), nil
}

// ResultMessage is the text shown to the user after a handoff was saved.
func ResultMessage(relPath string, copied bool) string {
	pickup := PickupCommand(relPath)
	clip := ""
	if copied {
		clip = "📋 Copied to clipboard!"
	}
	msg := "✅ **Handoff Created Successfully**\n\n" +
		"📝 **File**: `" + relPath + "`\n\n" +
		"🔄 **Next Steps**:\n" +
		"1. Run `/new` to start a fresh session\n" +
		"2. Run the command below to resume:\n\n" +
		pickup + "\n" + clip
	return strings.TrimSpace(msg)
}

// PickupCommand returns "/pickup <basename>".
func PickupCommand(relPath string) string {
	return "/pickup " + filepath.Base(relPath)
}
