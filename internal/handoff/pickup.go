package handoff

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Prompt commands intercepted by the hooks.
const (
	HandoffPrefix = "/handoff"
	PickupPrefix  = "/pickup"
)

var pickupArgPattern = regexp.MustCompile(`^/pickup\s+(.+)$`) //nolint:gochecknoglobals // compiled once

// PickupArg returns the argument of a "/pickup <arg>" prompt and whether the
// prompt is a /pickup command at all.
func PickupArg(prompt string) (arg string, ok bool) {
	prompt = strings.TrimSpace(prompt)
	if !strings.HasPrefix(prompt, PickupPrefix) {
		return "", false
	}
	i := strings.IndexFunc(prompt, unicode.IsSpace)
	if i < 0 {
		return "", true
	}
	return strings.TrimSpace(prompt[i:]), true
}

// NoteFromPrompt returns the text after /handoff and whether the prompt is a
// /handoff command.
func NoteFromPrompt(prompt string) (note string, ok bool) {
	prompt = strings.TrimSpace(prompt)
	if !strings.HasPrefix(prompt, HandoffPrefix) {
		return "", false
	}
	return strings.TrimSpace(prompt[len(HandoffPrefix):]), true
}

// SlashCommandHandoff extracts the handoff file name from a SlashCommand
// tool invocation such as "/pickup notes.md". A name without the .md
// extension gets one.
func SlashCommandHandoff(command string) (string, bool) {
	m := pickupArgPattern.FindStringSubmatch(strings.TrimSpace(command))
	if m == nil {
		return "", false
	}
	name := filepath.Base(strings.TrimSpace(m[1]))
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return name, true
}

// ListingContext renders the numbered list injected on /pickup.
func ListingContext(infos []Info) string {
	if len(infos) == 0 {
		return "No handoffs found in `.claude/handoffs/`"
	}
	lines := []string{
		"Handoff files are manually created by user",
		fmt.Sprintf("**Available handoffs under `.claude/handoffs/`** (%d files):", len(infos)),
		"",
	}
	for i, info := range infos {
		line := fmt.Sprintf("%d. `%s` — %s", i+1, info.Name, info.ModifiedString())
		if info.Title != "" {
			line += " (" + info.Title + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// olderNote reports how many pending handoffs sit behind the latest.
func olderNote(pending []Info) string {
	if len(pending) < 2 {
		return ""
	}
	return fmt.Sprintf("(%d older handoff(s) also available)", len(pending)-1)
}

// TriggerContext tells a freshly cleared session to pick up the newest
// pending handoff when the user sends a bare go-ahead.
func TriggerContext(pending []Info) string {
	if len(pending) == 0 {
		return ""
	}
	latest := pending[0]
	lines := []string{
		"## AUTO-PICKUP TRIGGER",
		"",
		"When user sends single dot '.' or 'start' or 'go', you MUST immediately execute:",
		"```",
		"/pickup " + latest.Name,
		"```",
		"Do NOT ask questions. Do NOT explain. Just run the SlashCommand tool with that command.",
		"",
		"Pending handoff: `" + latest.Name + "`",
	}
	if note := olderNote(pending); note != "" {
		lines = append(lines, note)
	}
	return strings.Join(lines, "\n")
}

// PendingNotice is the user-facing message for a pending handoff.
func PendingNotice(pending []Info) string {
	if len(pending) == 0 {
		return ""
	}
	latest := pending[0]
	msg := fmt.Sprintf("📋 Pending handoff detected: `%s` (created: %s)\nRun `/pickup %s` to continue, or proceed with a new task.",
		latest.Name, latest.ModifiedString(), latest.Name)
	if note := olderNote(pending); note != "" {
		msg += "\n" + note
	}
	return msg
}
