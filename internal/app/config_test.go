package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigDir_UsesHomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := ConfigDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "dothook"), dir)
}

func TestEnsureConfigDir_KeepsUserJournalPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, EnsureConfigDir())

	dir, err := ConfigDir()
	require.NoError(t, err)
	configFile := filepath.Join(dir, "config.yaml")
	b, err := os.ReadFile(configFile)
	require.NoError(t, err)
	require.Equal(t, defaultConfig, string(b))

	// A user who moved the journal keeps their setting on the next run.
	custom := []byte("db_path: /tmp/hooks-journal.db\njournal: false\n")
	require.NoError(t, os.WriteFile(configFile, custom, 0o600))
	require.NoError(t, EnsureConfigDir())

	b, err = os.ReadFile(configFile)
	require.NoError(t, err)
	require.Equal(t, string(custom), string(b))
}

func TestDefaultConfig_IsCommentedOutYAML(t *testing.T) {
	var s Settings
	require.NoError(t, yaml.Unmarshal([]byte(defaultConfig), &s))
	require.Equal(t, Settings{}, s, "every default stays commented so built-in defaults apply")
}
