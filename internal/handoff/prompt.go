package handoff

import (
	"fmt"
	"strings"

	"github.com/dotcommander/dothook/internal/transcript"
)

// FormatTodos renders todos with status markers, one per line.
func FormatTodos(todos []transcript.Todo) string {
	lines := make([]string, 0, len(todos))
	for _, td := range todos {
		marker := "☐"
		switch td.Status {
		case transcript.TodoCompleted:
			marker = "☑"
		case transcript.TodoInProgress:
			marker = "▶"
		}
		lines = append(lines, "  "+marker+" "+td.Content)
	}
	return strings.Join(lines, "\n")
}

// FormatConversation renders messages as "ROLE: content" blocks. Messages
// dropped by Select show up as an omission marker.
func FormatConversation(msgs []transcript.ConversationMessage) string {
	lines := make([]string, 0, len(msgs))
	prev := -1
	for _, m := range msgs {
		if gap := m.Index - prev - 1; gap > 0 {
			lines = append(lines, fmt.Sprintf("[... %d earlier message(s) omitted ...]\n", gap))
		}
		prev = m.Index
		lines = append(lines, strings.ToUpper(m.Role)+": "+m.Content+"\n")
	}
	return strings.Join(lines, "\n")
}

// Prompt builds the summarisation prompt for absProjectDir.
func Prompt(absProjectDir string, msgs []transcript.ConversationMessage, todos []transcript.Todo) string {
	todosSection := ""
	if formatted := FormatTodos(todos); formatted != "" {
		todosSection = `
# Current Todo List (from session):
The following is the EXACT todo list from the session. Include ALL items in your handoff summary, preserving EXACT wording:

` + formatted + "\n\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are creating a handoff summary for a coding session in project directory: `%s`\n\n", absProjectDir)
	b.WriteString("Analyze this conversation and create a comprehensive handoff document that includes:\n\n")
	b.WriteString("1. **Session Overview**: What was being worked on?\n")
	b.WriteString("2. **Key Decisions**: Important technical decisions made\n")
	b.WriteString("3. **Work Completed**: What was successfully implemented\n")
	b.WriteString("4. **Pending Tasks**: What remains to be done\n")
	b.WriteString("5. **Todo List**: List ALL todo items below in the \"Current Todo List\" section - copy them EXACTLY as shown, preserving markers (☑/▶/☐) and text verbatim\n")
	b.WriteString("6. **Context for Next Session**: Critical information the next person needs to know\n")
	fmt.Fprintf(&b, "7. **Files Modified**: Key files that were changed (if mentioned) - use absolute paths relative to `%s`\n\n", absProjectDir)
	b.WriteString("Be concise but thorough. Format the output in markdown.\n")
	b.WriteString("CRITICAL: The \"Current Todo List\" section below contains the EXACT todo items. You MUST copy them verbatim - do NOT paraphrase or summarize.\n")
	b.WriteString(todosSection)
	b.WriteString("\n# Conversation:\n\n")
	b.WriteString(FormatConversation(msgs))
	b.WriteString("\n\n# Handoff Summary:")
	return b.String()
}
