// Package guard blocks shell commands the agent should not run itself.
package guard

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

const bannerWidth = 80

const askUser = "ask user to run it"

// Rule is a forbidden command and the alternative to suggest.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Alternative string
	Examples    []string
	Benefits    string
}

// Rules are checked in order; the first match wins.
var Rules = []Rule{ //nolint:gochecknoglobals // read-only rule table
	{
		Name:        "find",
		Pattern:     regexp.MustCompile(`(?i)\bfind\b`),
		Alternative: "fd",
		Examples: []string{
			`fd "*.py"                       # Find Python files`,
			`fd -e js "component"            # Find JS files matching "component"`,
			`fd -d 2                        # Search 2 directories deep`,
			`fd --hidden                      # Include hidden files`,
			`fd -i "config"                  # Case-insensitive search`,
		},
	},
	{
		Name:        "grep",
		Pattern:     regexp.MustCompile(`(?i)\bgrep\b`),
		Alternative: "rg",
		Examples: []string{
			`rg "TODO"                         # Search for TODO in all files`,
			`rg -tpy "import"                  # Search only in Python files`,
			`rg -tjs "useState"                # Search only in JavaScript files`,
			`rg --glob "*.md" "# Heading"        # Search only in markdown files`,
			`rg -C 2 "error"                  # Show 2 lines of context`,
			`rg -i "error"                      # Case-insensitive search`,
		},
	},
	{
		Name:        "jj git init",
		Pattern:     regexp.MustCompile(`(?i)\bjj\s+git\s+init\b`),
		Alternative: askUser,
		Examples:    []string{"User, please initialize the jj git repo."},
		Benefits:    "Prevents accidental jj repo creation",
	},
	{
		Name:        "jj git push",
		Pattern:     regexp.MustCompile(`(?i)\bjj\s+git\s+push\b`),
		Alternative: askUser,
		Examples:    []string{"User, please push the changes with jj."},
		Benefits:    "Prevents accidental jj pushes",
	},
	{
		Name:        "git init",
		Pattern:     regexp.MustCompile(`(?i)\bgit\s+init\b`),
		Alternative: askUser,
		Examples:    []string{"User, please initialize the git repository."},
		Benefits:    "Prevents accidental repo creation",
	},
	{
		Name:        "git push",
		Pattern:     regexp.MustCompile(`(?i)\bgit\s+push\b`),
		Alternative: askUser,
		Examples:    []string{"User, please push the changes."},
		Benefits:    "Prevents accidental pushes",
	},
	{
		Name:        "git clean",
		Pattern:     regexp.MustCompile(`(?i)\bgit\s+clean\b`),
		Alternative: askUser,
		Examples:    []string{"User, please clean the repository."},
		Benefits:    "Prevents accidental deletion of untracked files",
	},
}

// Check returns the first rule matching a Bash command, or nil.
func Check(toolName, command string) *Rule {
	if toolName != "Bash" || command == "" {
		return nil
	}
	for i := range Rules {
		if Rules[i].Pattern.MatchString(command) {
			return &Rules[i]
		}
	}
	return nil
}

// HelpMessage explains why command was blocked and what to use instead.
func HelpMessage(r *Rule, command string) string {
	tried := command
	if runes := []rune(command); len(runes) >= 50 {
		tried = string(runes[:47]) + "..."
	}

	lines := []string{
		fmt.Sprintf("🚫 Command blocked: 'Bash(%s)' detected", r.Name),
		"",
		fmt.Sprintf("💡 Use '%s' instead - a better, faster alternative", r.Alternative),
		"",
		fmt.Sprintf("❌ You tried: Bash(%s)", tried),
		fmt.Sprintf("✅ Better: %s [options] [pattern]", r.Alternative),
		"",
		fmt.Sprintf("📚 Examples with %s:", r.Alternative),
	}
	for _, ex := range r.Examples {
		lines = append(lines, "   "+ex)
	}
	lines = append(lines, "",
		fmt.Sprintf("💡 To continue, replace your Bash(%s) call with appropriate %s command.", r.Name, r.Alternative))

	if r.Alternative == "fd" || r.Alternative == "rg" {
		lines = append(lines, "",
			fmt.Sprintf("📖 Common %s options:", r.Alternative),
			"   fd: --hidden, --no-ignore, -e [ext], -d [depth], -i",
			"   rg: -t[type], --glob, -C [lines], -i, --no-ignore",
		)
	}
	return strings.Join(lines, "\n")
}

// Report writes the framed help message to w, plus debug lines when verbose.
func Report(w io.Writer, r *Rule, toolName, command string, verbose bool) {
	banner := strings.Repeat("=", bannerWidth)
	fmt.Fprintf(w, "\n%s\n%s\n%s\n\n", banner, HelpMessage(r, command), banner)
	if verbose {
		fmt.Fprintf(w, "[DEBUG] Tool: %s\n", toolName)
		fmt.Fprintf(w, "[DEBUG] Command: %s\n", command)
		fmt.Fprintf(w, "[DEBUG] Pattern matched: %s\n", r.Pattern.String())
		fmt.Fprintf(w, "[DEBUG] Suggested alternative: %s\n\n", r.Alternative)
	}
}
