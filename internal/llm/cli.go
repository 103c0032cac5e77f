package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const disableExternalLLMEnv = "DOTHOOK_DISABLE_EXTERNAL_LLM"

// MaxPromptBytes stays well under the per-argument limit of execve.
const MaxPromptBytes = 100_000

var (
	// ErrDisabled is returned when DOTHOOK_DISABLE_EXTERNAL_LLM is set.
	ErrDisabled = errors.New("external LLM CLI execution disabled by " + disableExternalLLMEnv)
	// ErrCommandNotFound is returned when the CLI binary is not in PATH.
	ErrCommandNotFound = errors.New("cli tool not found in PATH")
	// ErrTimeout is returned when the CLI did not finish before the deadline.
	ErrTimeout = errors.New("cli tool timed out")
)

// ExitError carries the stderr of a CLI that exited non-zero.
type ExitError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("cli %s failed: %v (stderr: %s)", e.Command, e.Err, e.Stderr)
}

func (e *ExitError) Unwrap() error { return e.Err }

// validatePrompt checks for unsafe characters in prompts.
// exec avoids a shell, but the CLIs themselves may be shell scripts.
func validatePrompt(s string) error {
	if len(s) == 0 {
		return errors.New("empty prompt")
	}
	if len(s) > MaxPromptBytes {
		return fmt.Errorf("prompt exceeds %d byte limit (%d bytes)", MaxPromptBytes, len(s))
	}
	if strings.ContainsRune(s, 0) {
		return errors.New("prompt contains null byte")
	}
	return nil
}

// Runner invokes a summarising CLI. The prompt is passed either as an
// argument or on stdin. The CLIs handle their own auth.
type Runner struct {
	command string
	args    func(prompt string) []string
	stdin   bool
}

// NewClaudeRunner runs `claude --model <model> --allowedTools <tools> -p <prompt>`.
func NewClaudeRunner(model, allowedTools string) *Runner {
	return &Runner{
		command: "claude",
		args: func(p string) []string {
			return []string{"--model", model, "--allowedTools", allowedTools, "-p", p}
		},
	}
}

// NewAichatRunner runs `aichat -r <role>` with the prompt on stdin.
func NewAichatRunner(command, role string) *Runner {
	if command == "" {
		command = "aichat"
	}
	return &Runner{
		command: command,
		args:    func(string) []string { return []string{"-r", role} },
		stdin:   true,
	}
}

// limitedWriter caps writes at maxBytes, silently discarding overflow.
// This prevents unbounded stderr from a misbehaving CLI.
type limitedWriter struct {
	buf      bytes.Buffer
	maxBytes int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	originalLen := len(p)
	remaining := w.maxBytes - w.buf.Len()
	if remaining <= 0 {
		return originalLen, nil // discard but report success
	}
	if len(p) > remaining {
		p = p[:remaining]
	}
	w.buf.Write(p)
	return originalLen, nil // always report original len to avoid short write errors
}

// Run executes the CLI in dir and returns its trimmed stdout.
func (r *Runner) Run(ctx context.Context, dir, prompt string) (string, error) {
	if strings.TrimSpace(os.Getenv(disableExternalLLMEnv)) != "" {
		return "", ErrDisabled
	}
	if err := validatePrompt(prompt); err != nil {
		return "", fmt.Errorf("invalid prompt: %w", err)
	}
	if _, err := exec.LookPath(r.command); err != nil {
		return "", fmt.Errorf("%w: %s", ErrCommandNotFound, r.command)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context expired before exec: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.command, r.args(prompt)...) //nolint:gosec // G204: fixed CLI binary, prompt validated above
	cmd.Env = os.Environ()
	cmd.Dir = dir
	if r.stdin {
		cmd.Stdin = strings.NewReader(prompt)
	}

	var stdout bytes.Buffer
	stderrW := &limitedWriter{maxBytes: 4096}
	cmd.Stdout = &stdout
	cmd.Stderr = stderrW

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		stderrMsg := strings.TrimSpace(stderrW.buf.String())
		if stderrW.buf.Len() >= stderrW.maxBytes {
			stderrMsg += " (truncated)"
		}
		return "", &ExitError{Command: r.command, Stderr: stderrMsg, Err: err}
	}

	return strings.TrimSpace(stdout.String()), nil
}

// Command returns the CLI command name for this runner.
func (r *Runner) Command() string {
	return r.command
}
