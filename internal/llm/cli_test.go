package llm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+body), 0o755)) //nolint:gosec // test script must be executable
}

func TestClaudeRunnerArgs(t *testing.T) {
	r := NewClaudeRunner("m1", "Read,Write")
	assert.Equal(t, "claude", r.Command())
	assert.Equal(t, []string{"--model", "m1", "--allowedTools", "Read,Write", "-p", "hello"}, r.args("hello"))
	assert.False(t, r.stdin)
}

func TestAichatRunnerArgs(t *testing.T) {
	r := NewAichatRunner("", "session-summary")
	assert.Equal(t, "aichat", r.Command())
	assert.Equal(t, []string{"-r", "session-summary"}, r.args("ignored"))
	assert.True(t, r.stdin)
}

func TestRun_ClaudeDispatch(t *testing.T) {
	bin := t.TempDir()
	work := t.TempDir()
	writeScript(t, bin, "claude", `
if [ "$1" != "--model" ] || [ "$5" != "-p" ]; then
  echo "bad args: $*" >&2
  exit 1
fi
echo "summary of: $6"
pwd
`)
	t.Setenv("PATH", bin)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := NewClaudeRunner("m", "Read").Run(ctx, work, "the prompt")
	require.NoError(t, err)
	assert.Contains(t, out, "summary of: the prompt")
	assert.Contains(t, out, filepath.Base(work))
}

func TestRun_StdinPrompt(t *testing.T) {
	bin := t.TempDir()
	writeScript(t, bin, "aichat", "cat\n")
	t.Setenv("PATH", bin+":/bin:/usr/bin")

	out, err := NewAichatRunner("aichat", "r").Run(context.Background(), t.TempDir(), "  piped text  ")
	require.NoError(t, err)
	assert.Equal(t, "piped text", out)
}

func TestRun_ExitErrorCarriesStderr(t *testing.T) {
	bin := t.TempDir()
	writeScript(t, bin, "claude", "echo 'rate limited' >&2\nexit 3\n")
	t.Setenv("PATH", bin)

	_, err := NewClaudeRunner("m", "Read").Run(context.Background(), t.TempDir(), "p")
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, "rate limited", exitErr.Stderr)
}

func TestRun_Timeout(t *testing.T) {
	bin := t.TempDir()
	writeScript(t, bin, "claude", "exec sleep 5\n")
	t.Setenv("PATH", bin+":/bin:/usr/bin")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := NewClaudeRunner("m", "Read").Run(ctx, t.TempDir(), "p")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestRun_CommandNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := NewClaudeRunner("m", "Read").Run(context.Background(), ".", "p")
	require.ErrorIs(t, err, ErrCommandNotFound)
}

func TestRun_Disabled(t *testing.T) {
	t.Setenv(disableExternalLLMEnv, "1")
	_, err := NewClaudeRunner("m", "Read").Run(context.Background(), ".", "p")
	require.ErrorIs(t, err, ErrDisabled)
}

func TestRun_RejectsBadPrompt(t *testing.T) {
	_, err := NewClaudeRunner("m", "Read").Run(context.Background(), ".", "")
	require.Error(t, err)
	_, err = NewClaudeRunner("m", "Read").Run(context.Background(), ".", "a\x00b")
	require.Error(t, err)
}
