package transcript

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Role values carried by conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const noContentPlaceholder = "(no content)"

// ConversationMessage is a user or assistant turn prepared for summarisation.
type ConversationMessage struct {
	// Index is the ordinal among extracted messages, used to show gaps after filtering.
	Index   int
	Role    string
	Content string
}

// ConversationMessages extracts readable user/assistant turns. Tool results
// are dropped, tool-only turns are skipped and tool calls are counted into a
// " [+N tool call(s)]" suffix. Each content is capped at maxContentLen runes.
func ConversationMessages(entries []Entry, maxContentLen int) []ConversationMessage {
	var out []ConversationMessage
	for _, e := range entries {
		if e.Type != RoleUser && e.Type != RoleAssistant {
			continue
		}
		role := e.Message.Role
		content := DecodeContent(e.Message.Content)
		if role == "" || content.Empty() {
			continue
		}

		var text string
		switch {
		case content.IsText:
			text = content.Text
		case content.IsBlock:
			if content.HasType("tool_result") {
				continue
			}
			var parts []string
			toolCount := 0
			for _, b := range content.Blocks {
				switch {
				case b.Plain:
					parts = append(parts, b.Text)
				case b.Type == "text":
					trimmed := strings.TrimSpace(b.Text)
					if trimmed != "" && trimmed != noContentPlaceholder {
						parts = append(parts, b.Text)
					}
				case b.Type == "tool_use":
					toolCount++
				}
			}
			if len(parts) == 0 {
				continue
			}
			text = strings.Join(parts, "\n")
			if toolCount > 0 {
				text += " [+" + strconv.Itoa(toolCount) + " tool call(s)]"
			}
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		text = TruncateRunes(text, maxContentLen, "...")
		out = append(out, ConversationMessage{Index: len(out), Role: role, Content: text})
	}
	return out
}

// TruncateRunes caps s at max runes, appending suffix when it cut. max <= 0
// disables truncation.
func TruncateRunes(s string, max int, suffix string) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + suffix
}
