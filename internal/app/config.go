package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/dothook/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dothook"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# dothook configuration
# Run: dothook --help

# Optional: override the SQLite journal location.
# Can also be set via DOTHOOK_DB_PATH or --db-path.
# db_path: ~/.config/dothook/dothook.db

# Record every hook invocation in the journal (dothook events list).
# journal: true

# handoff:
#   model: opencodeai/claude-haiku-4-5
#   allowed_tools: "Write,Read,Bash(mkdir:*),Bash(touch:*),Bash(ls:*)"
#   timeout_seconds: 60
#   max_messages: 30
#   max_content_chars: 500
#   max_total_chars: 12000
#   keep_tail: 4

# summary:
#   command: aichat
#   role: session-summary
#   timeout_seconds: 30
#   max_messages: 8

# statusline:
#   max_context_tokens: 200000
#   color: false

# reminder:
#   tools: "Shell: fish, tools: rg, git, jj, fd, ast-greap, bun, exa"
`
