package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const fixture = `{"type":"file-history-snapshot","snapshot":{}}
{"type":"user","message":{"role":"user","content":"Refactor the session loader please"}}

{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"Looking at it."},{"type":"tool_use","name":"Bash","input":{"command":"go test ./..."}}]}}
not json at all
{"type":"user","message":{"role":"user","content":[{"type":"tool_result","content":"PASS"}]}}
{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","name":"Read","input":{"file_path":"/a.go"}}]}}
{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"(no content)"},{"type":"text","text":"Done."},{"type":"tool_use","name":"Write","input":{"file_path":"/b.go"}},{"type":"tool_use","name":"Edit","input":{"file_path":"/c.go"}}]}}
{"type":"user","isMeta":true,"message":{"role":"user","content":"meta injection"}}
{"type":"user","message":{"role":"user","content":"<command-name>/clear</command-name>"}}
{"type":"user","message":{"role":"user","content":[{"type":"text","text":"[Request interrupted by user]"}]}}
`

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadEntries_SkipsBlankAndMalformed(t *testing.T) {
	entries, err := ReadEntries(writeFixture(t, fixture))
	require.NoError(t, err)
	require.Len(t, entries, 9)
	require.Equal(t, 1, entries[0].Line)
	require.Equal(t, 2, entries[1].Line)
	require.Equal(t, 4, entries[2].Line)
}

func TestReadEntries_MissingFile(t *testing.T) {
	_, err := ReadEntries(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.ErrorIs(t, err, ErrNoTranscript)

	_, err = ReadEntries("")
	require.ErrorIs(t, err, ErrNoTranscript)
}

func TestDecodeEntries_LongLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	entries, err := DecodeEntries(strings.NewReader(`{"type":"user","message":{"role":"user","content":"` + long + `"}}`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestConversationMessages(t *testing.T) {
	entries, err := ReadEntries(writeFixture(t, fixture))
	require.NoError(t, err)

	msgs := ConversationMessages(entries, 500)
	require.Len(t, msgs, 6)
	require.Equal(t, ConversationMessage{Index: 0, Role: "user", Content: "Refactor the session loader please"}, msgs[0])
	require.Equal(t, "Looking at it. [+1 tool call(s)]", msgs[1].Content)
	require.Equal(t, "Done. [+2 tool call(s)]", msgs[2].Content)
	require.Equal(t, "meta injection", msgs[3].Content)
	require.Equal(t, 5, msgs[5].Index)
}

func TestConversationMessages_Truncates(t *testing.T) {
	entries := []Entry{{Type: "user", Message: Message{Role: "user", Content: []byte(`"` + strings.Repeat("é", 12) + `"`)}}}
	msgs := ConversationMessages(entries, 10)
	require.Len(t, msgs, 1)
	require.Equal(t, strings.Repeat("é", 10)+"...", msgs[0].Content)
}

func TestSessionLog(t *testing.T) {
	entries, err := ReadEntries(writeFixture(t, fixture))
	require.NoError(t, err)

	items := SessionLog(entries)
	require.Equal(t, []LogItem{
		{Kind: KindUser, Content: "Refactor the session loader please", Line: 2},
		{Kind: KindToolCall, Content: "[Bash] go test ./...", Line: 4},
		{Kind: KindAgent, Content: "Looking at it.", Line: 4},
		{Kind: KindToolCall, Content: "[Write] /b.go", Line: 8},
		{Kind: KindToolCall, Content: "[Edit] /c.go", Line: 8},
		{Kind: KindAgent, Content: "(no content)\nDone.", Line: 8},
	}, items)
}

func TestFormatToolCall(t *testing.T) {
	require.Equal(t, "[Create] /p", FormatToolCall("Create", map[string]any{"path": "/p"}))
	require.Equal(t, "[Task] explore", FormatToolCall("Task", map[string]any{"description": "explore"}))
	require.Equal(t, "[Glob]", FormatToolCall("Glob", nil))
}

func TestLatestTodos(t *testing.T) {
	body := `{"type":"user","toolUseResult":{"newTodos":[{"content":"old","status":"pending"}]}}
{"type":"user","toolUseResult":"Error: string result"}
{"type":"assistant","toolUseResult":{"newTodos":[{"content":"ignored","status":"pending"}]}}
{"type":"user","toolUseResult":{"newTodos":[{"content":"write tests","status":"in_progress","activeForm":"Writing tests"},{"content":"ship","status":"completed"}]}}
`
	entries, err := ReadEntries(writeFixture(t, body))
	require.NoError(t, err)

	todos := LatestTodos(entries)
	require.Len(t, todos, 2)
	require.Equal(t, "write tests", todos[0].Content)
	require.Equal(t, TodoInProgress, todos[0].Status)
	require.Equal(t, "Writing tests", todos[0].ActiveForm)
}

func TestTokenMetrics(t *testing.T) {
	body := `{"timestamp":"2025-01-01T00:00:01Z","message":{"usage":{"input_tokens":100,"output_tokens":10,"cache_read_input_tokens":1000,"cache_creation_input_tokens":50}}}
{"timestamp":"2025-01-01T00:00:05Z","isSidechain":true,"message":{"usage":{"input_tokens":7,"output_tokens":1}}}
{"timestamp":"2025-01-01T00:00:03Z","message":{"usage":{"input_tokens":200,"output_tokens":20,"cache_read_input_tokens":3000}}}
{"message":{"role":"user","content":"no usage"}}
`
	entries, err := ReadEntries(writeFixture(t, body))
	require.NoError(t, err)

	m := TokenMetrics(entries)
	require.Equal(t, int64(307), m.InputTokens)
	require.Equal(t, int64(31), m.OutputTokens)
	require.Equal(t, int64(4050), m.CachedTokens)
	require.Equal(t, int64(4388), m.TotalTokens)
	require.Equal(t, int64(3200), m.ContextLength)
}
