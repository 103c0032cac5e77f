package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderStatusline_InvalidJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := renderStatusline(strings.NewReader("{oops"), &stdout, &stderr, 200000, false)

	var exitErr ExitCodeError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.Code)
	require.Empty(t, stdout.String())
	require.True(t, strings.HasPrefix(stderr.String(), "Error parsing JSON: "))
}

func TestRenderStatusline_PlainLine(t *testing.T) {
	dir := t.TempDir()
	in := `{"model":{"display_name":"Opus"},"workspace":{"current_dir":"` + dir + `"},"cost":{"total_cost_usd":0}}`

	var stdout, stderr bytes.Buffer
	require.NoError(t, renderStatusline(strings.NewReader(in), &stdout, &stderr, 200000, false))

	line := stdout.String()
	require.True(t, strings.HasSuffix(line, "\n"))
	require.True(t, strings.HasPrefix(line, "[Opus]  "))
	require.Contains(t, line, lastPathElem(dir))
	require.NotContains(t, line, "\x1b[")
	require.Empty(t, stderr.String())
}

func TestStatuslineCmd_ReadsStdin(t *testing.T) {
	setupHookEnv(t)

	cmd := NewStatuslineCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(`{"model":{"display_name":"Sonnet"},"workspace":{"current_dir":"/tmp"}}`))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	require.Contains(t, stdout.String(), "[Sonnet]")
}

func lastPathElem(p string) string {
	p = strings.TrimRight(p, "/")
	return p[strings.LastIndex(p, "/")+1:]
}
