package transcript

import (
	"strings"
)

// Kinds of session log items.
const (
	KindUser     = "user"
	KindAgent    = "agent"
	KindToolCall = "tool_call"
)

const interruptedMarker = "[Request interrupted by user]"

// importantTools are the tool calls worth recording in a saved session.
var importantTools = map[string]bool{ //nolint:gochecknoglobals // read-only lookup table
	"Bash": true, "Execute": true, "Write": true, "Edit": true, "Create": true, "Task": true,
}

// LogItem is one tagged element of a saved session.
type LogItem struct {
	Kind    string
	Content string
	Line    int
}

// SessionLog extracts user turns, agent text and important tool calls.
// Meta entries, slash-command echoes, tool results and interrupted turns are
// dropped. Within an assistant entry, tool calls precede its text.
func SessionLog(entries []Entry) []LogItem {
	var items []LogItem
	for _, e := range entries {
		if e.Type != RoleUser && e.Type != RoleAssistant {
			continue
		}
		if e.IsMeta {
			continue
		}
		role := e.Message.Role
		content := DecodeContent(e.Message.Content)

		switch {
		case e.Type == RoleUser && role == RoleUser:
			if item, ok := userLogItem(content); ok {
				item.Line = e.Line
				items = append(items, item)
			}
		case e.Type == RoleAssistant && role == RoleAssistant:
			items = append(items, assistantLogItems(content, e.Line)...)
		}
	}
	return items
}

func userLogItem(content Content) (LogItem, bool) {
	switch {
	case content.IsBlock:
		if content.HasType("tool_result") {
			return LogItem{}, false
		}
		text := joinTextBlocks(content.Blocks)
		if text == "" || strings.Contains(text, interruptedMarker) {
			return LogItem{}, false
		}
		return LogItem{Kind: KindUser, Content: text}, true
	case content.IsText && content.Text != "":
		if strings.Contains(content.Text, "<command-") || strings.Contains(content.Text, "<local-command") {
			return LogItem{}, false
		}
		return LogItem{Kind: KindUser, Content: content.Text}, true
	default:
		return LogItem{}, false
	}
}

func assistantLogItems(content Content, line int) []LogItem {
	var items []LogItem
	switch {
	case content.IsBlock:
		var textParts []string
		for _, b := range content.Blocks {
			if b.Plain {
				continue
			}
			switch b.Type {
			case "text":
				if t := strings.TrimSpace(b.Text); t != "" {
					textParts = append(textParts, t)
				}
			case "tool_use":
				if importantTools[b.Name] {
					items = append(items, LogItem{Kind: KindToolCall, Content: FormatToolCall(b.Name, b.Input), Line: line})
				}
			}
		}
		if len(textParts) > 0 {
			items = append(items, LogItem{Kind: KindAgent, Content: strings.Join(textParts, "\n"), Line: line})
		}
	case content.IsText:
		if t := strings.TrimSpace(content.Text); t != "" {
			items = append(items, LogItem{Kind: KindAgent, Content: t, Line: line})
		}
	}
	return items
}

// joinTextBlocks joins text blocks and bare strings with newlines.
func joinTextBlocks(blocks []Block) string {
	var parts []string
	for _, b := range blocks {
		if b.Plain || b.Type == "text" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// FormatToolCall renders a tool call as "[Name] detail".
func FormatToolCall(name string, input map[string]any) string {
	str := func(key string) string {
		s, _ := input[key].(string)
		return s
	}
	switch name {
	case "Bash", "Execute":
		return "[" + name + "] " + str("command")
	case "Write", "Create":
		path, ok := input["file_path"].(string)
		if !ok {
			path = str("path")
		}
		return "[" + name + "] " + path
	case "Edit":
		return "[" + name + "] " + str("file_path")
	case "Task":
		return "[" + name + "] " + str("description")
	default:
		return "[" + name + "]"
	}
}
