package clipboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExec(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755)) //nolint:gosec // executable fixture
}

func TestCopyUsesFirstWorkingTool(t *testing.T) {
	bin := t.TempDir()
	out := filepath.Join(t.TempDir(), "clip.txt")
	writeExec(t, filepath.Join(bin, "pbcopy"), "exit 1\n")
	writeExec(t, filepath.Join(bin, "wl-copy"), "cat > "+out+"\n")
	t.Setenv("PATH", bin+":/bin:/usr/bin")

	assert.True(t, Copy(context.Background(), "/pickup x.md"))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "/pickup x.md", string(data))
}

func TestCopyWithoutTools(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	assert.False(t, Copy(context.Background(), "x"))
}
