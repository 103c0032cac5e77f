package agentid

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		in   any
		want string
		ok   bool
	}{
		"hex lower":    {in: "a1b2c3d4", want: "a1b2c3d4", ok: true},
		"hex upper":    {in: " A1B2C3D4 ", want: "A1B2C3D4", ok: true},
		"too short":    {in: "a1b2c3"},
		"too long":     {in: "a1b2c3d4e5f60"},
		"non hex":      {in: "zzzzzzzz"},
		"uuid":         {in: "a1b2c3d4-1111-2222-3333-444455556666"},
		"not a string": {in: 12345678},
		"empty":        {in: ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := Validate(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromObjectOnlyTrustsToolUseResult(t *testing.T) {
	obj := map[string]any{
		"sessionId": "deadbeef",
		"uuid":      "cafebabe",
		"leafUuid":  "12345678",
		"agentId":   "abcdef01",
		"message": map[string]any{
			"content": []any{
				map[string]any{"text": "agentId: 99999999"},
			},
		},
	}
	assert.Empty(t, FromObject(obj))

	obj["nested"] = []any{
		map[string]any{"toolUseResult": map[string]any{"agent_id": "0badf00d"}},
	}
	assert.Equal(t, "0badf00d", FromObject(obj))
}

func TestFromObjectIsDeterministic(t *testing.T) {
	obj := map[string]any{
		"cccc": map[string]any{"toolUseResult": map[string]any{"agentId": "cccccccc"}},
		"aaaa": map[string]any{"toolUseResult": map[string]any{"agentId": "aaaaaaaa"}},
		"bbbb": []any{map[string]any{"toolUseResult": map[string]any{"agentId": "bbbbbbbb"}}},
	}
	for range 200 {
		require.Equal(t, "aaaaaaaa", FromObject(obj))
	}
}

func TestTrustedAgentIDPrecedence(t *testing.T) {
	cases := map[string]struct {
		result map[string]any
		want   string
	}{
		"agentId wins":             {result: map[string]any{"agentId": "11111111", "agent_id": "22222222"}, want: "11111111"},
		"malformed agentId":        {result: map[string]any{"agentId": "not-hex!", "agent_id": "abcd1234"}},
		"empty agentId falls back": {result: map[string]any{"agentId": "", "agent_id": "abcd1234"}, want: "abcd1234"},
		"null agentId falls back":  {result: map[string]any{"agentId": nil, "agent_id": "abcd1234"}, want: "abcd1234"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			line := map[string]any{"toolUseResult": tc.result}
			assert.Equal(t, tc.want, Trusted(line))
			assert.Equal(t, tc.want, FromObject(map[string]any{"nested": line}))
		})
	}
}

func TestFromTranscriptLine(t *testing.T) {
	assert.Equal(t, "12121212", FromTranscriptLine(map[string]any{"agentId": "12121212"}))
	assert.Equal(t, "34343434", FromTranscriptLine(map[string]any{
		"message": map[string]any{
			"content": []any{map[string]any{"toolUseResult": map[string]any{"agentId": "34343434"}}},
		},
	}))
	assert.Empty(t, FromTranscriptLine(map[string]any{"uuid": "56565656"}))
}

func TestFromHookInput(t *testing.T) {
	assert.Equal(t, "aaaaaaaa", FromHookInput(map[string]any{"agentIdValue": "aaaaaaaa"}))
	assert.Equal(t, "bbbbbbbb", FromHookInput(map[string]any{
		"agentId":         "not-valid",
		"tool_use_result": map[string]any{"agentId": "bbbbbbbb"},
	}))
	assert.Equal(t, "cccccccc", FromHookInput(map[string]any{
		"toolResponse": map[string]any{"toolUseResult": map[string]any{"agent_id": "cccccccc"}},
	}))
	assert.Empty(t, FromHookInput(map[string]any{"session_id": "dddddddd"}))
}

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	data := ""
	for _, l := range lines {
		data += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
}

func TestScanTranscriptReturnsLastID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	writeLines(t, path,
		`{"toolUseResult":{"agentId":"11111111"}}`,
		``,
		`not json`,
		`{"sessionId":"22222222"}`,
		`{"toolUseResult":{"agentId":"33333333"}}`,
	)

	id, err := ScanTranscript(path, Trusted)
	require.NoError(t, err)
	assert.Equal(t, "33333333", id)

	_, err = ScanTranscript(filepath.Join(t.TempDir(), "missing.jsonl"), Trusted)
	require.Error(t, err)
}

func TestPollTranscriptGivesUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	writeLines(t, path, `{"uuid":"44444444"}`)

	_, attempts, err := PollTranscript(context.Background(), path, FromHookInput, Poll{Attempts: 3, Delay: time.Millisecond})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 3, attempts)
}

func TestPollTranscriptReportsReadFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.jsonl")

	_, attempts, err := PollTranscript(context.Background(), missing, FromHookInput, Poll{Attempts: 2, Delay: time.Millisecond})
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, attempts)
}

func TestPollTranscriptFindsID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.jsonl")
	writeLines(t, path, `{"agentId":"55555555"}`)

	id, attempts, err := PollTranscript(context.Background(), path, FromHookInput, Poll{Attempts: 3, Delay: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, "55555555", id)
	assert.Equal(t, 1, attempts)
}

func TestSearchProjects(t *testing.T) {
	home := t.TempDir()
	projects := ProjectsDir(home)
	writeLines(t, filepath.Join(projects, "-tmp-a", "other.jsonl"),
		`{"toolUseResult":{"agentId":"66666666"}}`)
	writeLines(t, filepath.Join(projects, "-tmp-b", "sess-123.jsonl"),
		`{"toolUseResult":{"agentId":"77777777"}}`,
		`{"agentId":"88888888"}`)

	p := Poll{Attempts: 1, Delay: time.Millisecond}

	id, source, err := SearchProjects(context.Background(), projects, "sess-123", p)
	require.NoError(t, err)
	assert.Equal(t, "77777777", id)
	assert.Equal(t, "sess-123.jsonl", filepath.Base(source))

	id, _, err = SearchProjects(context.Background(), projects, "no-match", p)
	require.NoError(t, err)
	assert.Contains(t, []string{"66666666", "77777777"}, id)

	_, _, err = SearchProjects(context.Background(), filepath.Join(home, "absent"), "x", p)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLastAgentFiles(t *testing.T) {
	project := t.TempDir()

	path, fallback := FindLastFile(project, "abc-def")
	assert.Empty(t, path)
	assert.False(t, fallback)

	written, err := WriteLast(project, "abc", "9abcdef0")
	require.NoError(t, err)
	info, err := os.Stat(written)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	path, fallback = FindLastFile(project, "abc-def")
	assert.Equal(t, written, path)
	assert.False(t, fallback)

	path, fallback = FindLastFile(project, "zzz")
	assert.Equal(t, written, path)
	assert.True(t, fallback)

	id, err := ReadLast(path)
	require.NoError(t, err)
	assert.Equal(t, "9abcdef0", id)

	empty := LastFilePath(project, "")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o600))
	_, err = ReadLast(empty)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "last_agent_id_unknown.txt", filepath.Base(empty))
}
