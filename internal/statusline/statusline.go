// Package statusline renders the one-line session status shown by the CLI.
package statusline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dotcommander/dothook/internal/transcript"
)

// Nerd-font icons per segment.
const (
	IconBranch   = "󰊢"
	IconSession  = "󰓹"
	IconContext  = ""
	IconCost     = ""
	IconLines    = ""
	IconDuration = "󱑆"
)

const separator = " | "

// Input is the JSON document the host pipes to the statusline command.
type Input struct {
	Model struct {
		DisplayName string `json:"display_name"`
	} `json:"model"`
	Workspace struct {
		CurrentDir string `json:"current_dir"`
	} `json:"workspace"`
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	Cost           struct {
		TotalCostUSD      float64 `json:"total_cost_usd"`
		TotalLinesAdded   float64 `json:"total_lines_added"`
		TotalLinesRemoved float64 `json:"total_lines_removed"`
		TotalDurationMS   float64 `json:"total_duration_ms"`
	} `json:"cost"`
}

// Parse decodes the statusline input.
func Parse(r io.Reader) (Input, error) {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return Input{}, fmt.Errorf("parse statusline input: %w", err)
	}
	return in, nil
}

// Options controls how the line is built.
type Options struct {
	MaxContextTokens int64
	// Branch resolves the VCS branch for a directory; nil disables the segment.
	Branch func(dir string) string
	// Metrics reads token usage from a transcript; nil disables the segment.
	Metrics func(path string) (transcript.Metrics, bool)
	// Renderer colours segments when set.
	Renderer *lipgloss.Renderer
}

// NewRenderer returns a 256-colour renderer writing to w.
func NewRenderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI256)
	return r
}

var palette = map[string]lipgloss.Color{ //nolint:gochecknoglobals // read-only colour table
	"model":    lipgloss.Color("75"),
	"dir":      lipgloss.Color("252"),
	"branch":   lipgloss.Color("141"),
	"session":  lipgloss.Color("244"),
	"context":  lipgloss.Color("114"),
	"cost":     lipgloss.Color("221"),
	"lines":    lipgloss.Color("180"),
	"duration": lipgloss.Color("109"),
}

// Build assembles the status line.
func Build(in Input, opts Options) string {
	paint := func(kind, s string) string {
		if opts.Renderer == nil || s == "" {
			return s
		}
		st := opts.Renderer.NewStyle().Foreground(palette[kind])
		if kind == "model" {
			st = st.Bold(true)
		}
		return st.Render(s)
	}

	model := in.Model.DisplayName
	if model == "" {
		model = "Unknown"
	}
	dir := in.Workspace.CurrentDir
	if dir == "" {
		dir, _ = os.Getwd()
	}

	var b strings.Builder
	b.WriteString(paint("model", "["+model+"]"))
	b.WriteString("  ")
	b.WriteString(paint("dir", filepath.Base(dir)))

	add := func(kind, seg string) {
		if seg != "" {
			b.WriteString(separator)
			b.WriteString(paint(kind, seg))
		}
	}

	if opts.Branch != nil {
		if branch := opts.Branch(dir); branch != "" {
			add("branch", IconBranch+" "+branch)
		}
	}
	add("session", FormatSession(in.SessionID))
	if opts.Metrics != nil && in.TranscriptPath != "" {
		if m, ok := opts.Metrics(in.TranscriptPath); ok {
			add("context", FormatContext(m.ContextLength, opts.MaxContextTokens))
		}
	}
	add("cost", FormatCost(in.Cost.TotalCostUSD))
	add("lines", FormatLines(int64(in.Cost.TotalLinesAdded), int64(in.Cost.TotalLinesRemoved)))
	add("duration", FormatDuration(in.Cost.TotalDurationMS))
	return b.String()
}

// TranscriptMetrics reads token metrics from a transcript file.
func TranscriptMetrics(path string) (transcript.Metrics, bool) {
	entries, err := transcript.ReadEntries(path)
	if err != nil {
		return transcript.Metrics{}, false
	}
	return transcript.TokenMetrics(entries), true
}

// FormatTokens renders a count as 1.2M, 3.4k or a plain integer.
func FormatTokens(n int64) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1000:
		return strconv.FormatFloat(float64(n)/1000, 'f', 1, 64) + "k"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatSession shows the first eight characters of the session id.
func FormatSession(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	return IconSession + " " + transcript.TruncateRunes(sessionID, 8, "")
}

// FormatContext shows context size and its share of maxTokens, capped at 100%.
func FormatContext(contextLen, maxTokens int64) string {
	if contextLen == 0 || maxTokens <= 0 {
		return ""
	}
	pct := min(100, float64(contextLen)/float64(maxTokens)*100)
	return fmt.Sprintf("%s %s (%.1f%%)", IconContext, FormatTokens(contextLen), pct)
}

// FormatCost shows the session cost in USD with four decimals.
func FormatCost(usd float64) string {
	if usd == 0 {
		return ""
	}
	return fmt.Sprintf("%s $%.4f", IconCost, usd)
}

// FormatLines shows lines added and removed, omitting zero sides.
func FormatLines(added, removed int64) string {
	var parts []string
	if added > 0 {
		parts = append(parts, "+"+strconv.FormatInt(added, 10))
	}
	if removed > 0 {
		parts = append(parts, "-"+strconv.FormatInt(removed, 10))
	}
	if len(parts) == 0 {
		return ""
	}
	return IconLines + " " + strings.Join(parts, "/")
}

// FormatDuration shows durations under a minute as 12.3s and longer ones as 4m 5s.
func FormatDuration(ms float64) string {
	if ms == 0 {
		return ""
	}
	seconds := ms / 1000
	if seconds < 60 {
		return fmt.Sprintf("%s %.1fs", IconDuration, seconds)
	}
	return fmt.Sprintf("%s %dm %ds", IconDuration, int64(seconds)/60, int64(seconds)%60)
}
