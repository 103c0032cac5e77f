package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/dothook/internal/llm"
)

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys.
type Settings struct {
	DBPath     string             `yaml:"db_path"`
	Journal    *bool              `yaml:"journal"`
	Handoff    HandoffSettings    `yaml:"handoff"`
	Summary    SummarySettings    `yaml:"summary"`
	Statusline StatuslineSettings `yaml:"statusline"`
	Reminder   ReminderSettings   `yaml:"reminder"`
}

// HandoffSettings tunes /handoff generation.
type HandoffSettings struct {
	Model           string `yaml:"model"`
	AllowedTools    string `yaml:"allowed_tools"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	MaxMessages     int    `yaml:"max_messages"`
	MaxContentChars int    `yaml:"max_content_chars"`
	MaxTotalChars   int    `yaml:"max_total_chars"`
	KeepTail        int    `yaml:"keep_tail"`
}

// SummarySettings tunes the SessionEnd summary.
type SummarySettings struct {
	Command        string `yaml:"command"`
	Role           string `yaml:"role"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxMessages    int    `yaml:"max_messages"`
}

// StatuslineSettings tunes the statusline renderer.
type StatuslineSettings struct {
	MaxContextTokens int  `yaml:"max_context_tokens"`
	Color            bool `yaml:"color"`
}

// ReminderSettings tunes the SessionStart reminder.
type ReminderSettings struct {
	Tools string `yaml:"tools"`
}

const (
	defaultHandoffModel        = "opencodeai/claude-haiku-4-5"
	defaultHandoffAllowedTools = "Write,Read,Bash(mkdir:*),Bash(touch:*),Bash(ls:*)"
	defaultHandoffTimeout      = 60
	defaultHandoffMaxMessages  = 30
	defaultHandoffContentChars = 500
	defaultHandoffTotalChars   = 12000
	defaultHandoffKeepTail     = 4

	// Budgets count runes and a rune is at most four bytes; the rest of the
	// prompt template and todo list must fit in what remains.
	maxHandoffTotalChars   = llm.MaxPromptBytes / 5
	maxHandoffContentChars = maxHandoffTotalChars/2 - 3

	defaultSummaryCommand     = "aichat"
	defaultSummaryRole        = "session-summary"
	defaultSummaryTimeout     = 30
	defaultSummaryMaxMessages = 8

	defaultMaxContextTokens = 200000

	defaultReminderTools = "Shell: fish, tools: rg, git, jj, fd, ast-greap, bun, exa"
)

// EffectiveHandoffSettings returns handoff settings with defaults applied.
// Invalid or missing config values fall back to safe defaults.
func EffectiveHandoffSettings() HandoffSettings {
	s, _ := LoadSettings()
	cfg := s.Handoff
	if cfg.Model == "" {
		cfg.Model = defaultHandoffModel
	}
	if cfg.AllowedTools == "" {
		cfg.AllowedTools = defaultHandoffAllowedTools
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = defaultHandoffTimeout
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = defaultHandoffMaxMessages
	}
	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = defaultHandoffContentChars
	}
	cfg.MaxContentChars = min(cfg.MaxContentChars, maxHandoffContentChars)
	if cfg.MaxTotalChars <= 0 {
		cfg.MaxTotalChars = defaultHandoffTotalChars
	}
	cfg.MaxTotalChars = min(cfg.MaxTotalChars, maxHandoffTotalChars)
	if cfg.KeepTail <= 0 {
		cfg.KeepTail = defaultHandoffKeepTail
	}
	// The first and last message must always fit.
	if minTotal := 2 * (cfg.MaxContentChars + 3); cfg.MaxTotalChars < minTotal {
		cfg.MaxTotalChars = minTotal
	}
	return cfg
}

// EffectiveSummarySettings returns session summary settings with defaults applied.
func EffectiveSummarySettings() SummarySettings {
	s, _ := LoadSettings()
	cfg := s.Summary
	if cfg.Command == "" {
		cfg.Command = defaultSummaryCommand
	}
	if cfg.Role == "" {
		cfg.Role = defaultSummaryRole
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = defaultSummaryTimeout
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = defaultSummaryMaxMessages
	}
	return cfg
}

// EffectiveStatuslineSettings returns statusline settings with defaults applied.
func EffectiveStatuslineSettings() StatuslineSettings {
	s, _ := LoadSettings()
	cfg := s.Statusline
	if cfg.MaxContextTokens <= 0 {
		cfg.MaxContextTokens = defaultMaxContextTokens
	}
	return cfg
}

// EffectiveReminderSettings returns reminder settings with defaults applied.
func EffectiveReminderSettings() ReminderSettings {
	s, _ := LoadSettings()
	cfg := s.Reminder
	if cfg.Tools == "" {
		cfg.Tools = defaultReminderTools
	}
	return cfg
}

// JournalEnabled reports whether hooks should record journal rows.
// Defaults to true when unset.
func JournalEnabled() bool {
	s, err := LoadSettings()
	if err != nil || s.Journal == nil {
		return true
	}
	return *s.Journal
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load singleton for config.
// dbPathOverrideMu and dbPathOverride implement a mutex-protected process-wide override for CLI --db-path.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	dbPathOverrideMu sync.RWMutex
	dbPathOverride   string
)

// SetDBPathOverride sets a process-wide database path override.
// Intended for CLI flag support (e.g. --db-path).
func SetDBPathOverride(path string) {
	dbPathOverrideMu.Lock()
	dbPathOverride = path
	dbPathOverrideMu.Unlock()
}

func getDBPathOverride() string {
	dbPathOverrideMu.RLock()
	v := dbPathOverride
	dbPathOverrideMu.RUnlock()
	return v
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) ~/.config/dothook/config.yaml
// 2) /etc/dothook/config.yaml
// 3) ./config.yaml
// Environment variables are handled separately.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		dir, err := ConfigDir()
		if err != nil {
			settingsErr = err
			return
		}
		for _, p := range settingsPaths(dir) {
			s, err := loadSettingsFile(p)
			if err == nil {
				settings = s
				return
			}
			if !errors.Is(err, os.ErrNotExist) {
				settingsErr = err
				return
			}
		}
	})

	return settings, settingsErr
}

func settingsPaths(configDir string) []string {
	return []string{
		filepath.Join(configDir, "config.yaml"),
		filepath.Join(string(os.PathSeparator), "etc", "dothook", "config.yaml"),
		"config.yaml",
	}
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path) //nolint:gosec // G304: fixed config lookup paths
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
