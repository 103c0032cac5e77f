package handoff

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/dothook/internal/hookio"
	"github.com/dotcommander/dothook/internal/llm"
	"github.com/dotcommander/dothook/internal/transcript"
)

func msgs(contents ...string) []transcript.ConversationMessage {
	out := make([]transcript.ConversationMessage, len(contents))
	for i, c := range contents {
		role := transcript.RoleUser
		if i%2 == 1 {
			role = transcript.RoleAssistant
		}
		out[i] = transcript.ConversationMessage{Index: i, Role: role, Content: c}
	}
	return out
}

func indexes(ms []transcript.ConversationMessage) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = m.Index
	}
	return out
}

func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := hookio.Now
	hookio.Now = func() time.Time { return at }
	t.Cleanup(func() { hookio.Now = prev })
}

func TestSelectKeepsAllWithinBudget(t *testing.T) {
	in := msgs("a", "b", "c")
	got := Select(in, DefaultBudget)
	assert.Equal(t, []int{0, 1, 2}, indexes(got))
	assert.Nil(t, Select(nil, DefaultBudget))
}

func TestSelectDropsUnprotectedFirst(t *testing.T) {
	in := msgs("first", "x1", "we decided to use sqlite", "x3", "x4", "t5", "t6")
	got := Select(in, Budget{MaxMessages: 5, KeepTail: 2})
	assert.Equal(t, []int{0, 2, 4, 5, 6}, indexes(got))
}

func TestSelectDropsDecisionsThenTail(t *testing.T) {
	in := msgs("first", "must do A", "don't do B", "t3", "t4", "t5")
	got := Select(in, Budget{MaxMessages: 3, KeepTail: 4})
	// Decisions inside the tail are protected as tail; the tail loses its oldest.
	assert.Equal(t, []int{0, 4, 5}, indexes(got))

	got = Select(in, Budget{MaxMessages: 1, KeepTail: 4})
	assert.Equal(t, []int{0, 5}, indexes(got), "first and last always survive")

	got = Select(msgs("first", "must a", "must b", "last"), Budget{MaxMessages: 3, KeepTail: 1})
	assert.Equal(t, []int{0, 2, 3}, indexes(got))
}

func TestSelectKeepsLastWithoutTail(t *testing.T) {
	in := msgs("first", "x1", "x2", "x3", "x4", "last")
	for _, keepTail := range []int{0, -3} {
		got := Select(in, Budget{MaxMessages: 1, KeepTail: keepTail})
		assert.Equal(t, []int{0, 5}, indexes(got), "keep tail %d", keepTail)
	}

	got := Select(in, Budget{MaxMessages: 3, KeepTail: 0})
	assert.Equal(t, []int{0, 4, 5}, indexes(got))
}

func TestSelectHonoursCharBudget(t *testing.T) {
	long := strings.Repeat("z", 100)
	in := msgs("first", long, long, "last")
	got := Select(in, Budget{MaxChars: 120, KeepTail: 1})
	assert.Equal(t, []int{0, 2, 3}, indexes(got))
}

func TestFormatConversationMarksGaps(t *testing.T) {
	in := msgs("hello", "hi", "more", "done")
	out := FormatConversation([]transcript.ConversationMessage{in[0], in[3]})
	assert.Equal(t, "USER: hello\n\n[... 2 earlier message(s) omitted ...]\n\nASSISTANT: done\n", out)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "handoff", Slug(nil))
	assert.Equal(t, "please-refactor-cache", Slug(msgs("Please refactor the cachÉ layer now")))
}

func TestSlugWords(t *testing.T) {
	got := Slug(msgs("Fix the résumé parser, then ship", "ignored assistant text", "more words here"))
	assert.Equal(t, "resume-then-ship", got)

	assert.Equal(t, "handoff", Slug(msgs("a b c d")))
}

func TestFormatTodos(t *testing.T) {
	out := FormatTodos([]transcript.Todo{
		{Content: "done", Status: transcript.TodoCompleted},
		{Content: "doing", Status: transcript.TodoInProgress},
		{Content: "later", Status: transcript.TodoPending},
	})
	assert.Equal(t, "  ☑ done\n  ▶ doing\n  ☐ later", out)
}

func TestPromptIncludesTodosAndProject(t *testing.T) {
	p := Prompt("/abs/proj", msgs("hello"), []transcript.Todo{{Content: "ship it", Status: "pending"}})
	assert.Contains(t, p, "project directory: `/abs/proj`")
	assert.Contains(t, p, "# Current Todo List (from session):")
	assert.Contains(t, p, "  ☐ ship it")
	assert.True(t, strings.HasSuffix(p, "USER: hello\n\n\n# Handoff Summary:"))

	p = Prompt("/abs/proj", msgs("hello"), nil)
	assert.NotContains(t, p, "Current Todo List (from session)")
}

func TestSaveAndScan(t *testing.T) {
	project := t.TempDir()
	freezeClock(t, time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local))

	rel, err := Save(project, Document{Slug: "fix-parser", Summary: "## Summary\nDone.", Note: "check CI"})
	require.NoError(t, err)
	assert.Equal(t, ".claude/handoffs/fix-parser-2026-03-04-050607.md", rel)

	data, err := os.ReadFile(filepath.Join(project, rel))
	require.NoError(t, err)
	body := string(data)
	assert.True(t, strings.HasPrefix(body, "# Handoff: fix-parser\n\n**Created**: 2026-03-04 05:06:07\n\n## User Note\n\n> check CI\n\n---\n\n## Summary\nDone.\n\n---\n\n"))
	assert.True(t, strings.HasSuffix(body, "**To resume**: Run `/pickup fix-parser-2026-03-04-050607.md` in a new session\n"))

	infos, err := Scan(project)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "fix-parser-2026-03-04-050607.md", infos[0].Name)
	assert.Equal(t, "Handoff: fix-parser", infos[0].Title)
}

func TestPendingExcludesHandled(t *testing.T) {
	project := t.TempDir()
	dir := Dir(project)
	require.NoError(t, os.MkdirAll(dir, 0o750))

	old := filepath.Join(dir, "old.md")
	newer := filepath.Join(dir, "new.md")
	require.NoError(t, os.WriteFile(old, []byte("# Old"), 0o600))
	require.NoError(t, os.WriteFile(newer, []byte("# New *one*"), 0o600))
	require.NoError(t, os.Chtimes(old, time.Now().Add(-time.Hour), time.Now().Add(-time.Hour)))

	infos, err := Pending(project)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "new.md", infos[0].Name)
	assert.Equal(t, "New one", infos[0].Title)

	require.NoError(t, MarkHandled(project, "new.md"))
	infos, err = Pending(project)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "old.md", infos[0].Name)

	handled, err := LoadHandled(project)
	require.NoError(t, err)
	assert.Contains(t, handled, "new.md")
}

func TestMarkHandledKeepsCorruptFile(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.MkdirAll(Dir(project), 0o750))
	require.NoError(t, os.WriteFile(HandledPath(project), []byte("{oops"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(Dir(project), "a.md"), []byte("x"), 0o600))

	require.Error(t, MarkHandled(project, "a.md"))
	data, err := os.ReadFile(HandledPath(project))
	require.NoError(t, err)
	assert.Equal(t, "{oops", string(data))

	infos, err := Pending(project)
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestResultMessage(t *testing.T) {
	msg := ResultMessage(".claude/handoffs/x-1.md", true)
	assert.Contains(t, msg, "📝 **File**: `.claude/handoffs/x-1.md`")
	assert.Contains(t, msg, "/pickup x-1.md\n📋 Copied to clipboard!")

	msg = ResultMessage(".claude/handoffs/x-1.md", false)
	assert.True(t, strings.HasSuffix(msg, "/pickup x-1.md"))
}

type fakeSummarizer struct {
	out string
	err error
	dir string
}

func (f *fakeSummarizer) Run(_ context.Context, dir, _ string) (string, error) {
	f.dir = dir
	return f.out, f.err
}

func TestSummarizeMapsErrors(t *testing.T) {
	ctx := context.Background()

	f := &fakeSummarizer{out: "fine"}
	assert.Equal(t, "fine", Summarize(ctx, f, "/p", "x", time.Minute))
	assert.Equal(t, "/p", f.dir)

	cases := map[string]struct {
		err  error
		want string
	}{
		"timeout":   {err: llm.ErrTimeout, want: "Error: Summary generation timed out after 60 seconds"},
		"not found": {err: llm.ErrCommandNotFound, want: "Error: 'claude' command not found. Is Claude CLI installed?"},
		"exit":      {err: &llm.ExitError{Command: "claude", Stderr: "boom"}, want: "Error generating summary: boom"},
		"exit bare": {err: &llm.ExitError{Command: "claude"}, want: "Error generating summary: Unknown error"},
		"other":     {err: errors.New("weird"), want: "Error calling claude: weird"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Summarize(ctx, &fakeSummarizer{err: tc.err}, ".", "x", time.Minute))
		})
	}
}
