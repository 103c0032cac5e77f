package handoff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dotcommander/dothook/internal/llm"
)

// Summarizer runs a prompt through an LLM CLI in dir.
type Summarizer interface {
	Run(ctx context.Context, dir, prompt string) (string, error)
}

// Summarize asks s for a handoff summary. Failures are returned as the
// summary text so the handoff file still records what happened.
func Summarize(ctx context.Context, s Summarizer, dir, prompt string, timeout time.Duration) string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := s.Run(ctx, dir, prompt)
	if err == nil {
		return out
	}

	var exitErr *llm.ExitError
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return fmt.Sprintf("Error: Summary generation timed out after %d seconds", int(timeout.Seconds()))
	case errors.Is(err, llm.ErrCommandNotFound):
		return "Error: 'claude' command not found. Is Claude CLI installed?"
	case errors.As(err, &exitErr):
		msg := exitErr.Stderr
		if msg == "" {
			msg = "Unknown error"
		}
		return "Error generating summary: " + msg
	default:
		return "Error calling claude: " + err.Error()
	}
}
