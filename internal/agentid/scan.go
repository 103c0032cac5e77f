package agentid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dotcommander/dothook/internal/transcript"
)

// ErrNotFound is returned when no agent id could be located.
var ErrNotFound = errors.New("agent id not found")

// Poll controls how long to wait for a transcript to be flushed.
type Poll struct {
	Attempts int
	Delay    time.Duration
}

// DefaultPoll retries ten times, 150ms apart. The host may still be writing
// the transcript when SubagentStop fires.
var DefaultPoll = Poll{Attempts: 10, Delay: 150 * time.Millisecond} //nolint:gochecknoglobals // immutable default policy

func (p Poll) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(attempts-1)) //nolint:gosec // attempts >= 1
	return backoff.WithContext(b, ctx)
}

// ScanTranscript returns the last id extract finds in the JSONL file at path.
// Malformed lines are skipped.
func ScanTranscript(path string, extract Extractor) (string, error) {
	if path == "" {
		return "", ErrNotFound
	}
	f, err := os.Open(path) //nolint:gosec // G304: transcript path supplied by the hook host
	if err != nil {
		return "", fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	last := ""
	err = transcript.EachLine(f, func(_ int, line []byte) {
		var obj map[string]any
		if json.Unmarshal(line, &obj) != nil {
			return
		}
		if id := extract(obj); id != "" {
			last = id
		}
	})
	if err != nil {
		return "", err
	}
	if last == "" {
		return "", ErrNotFound
	}
	return last, nil
}

// PollTranscript rescans path until an id shows up or the policy is exhausted.
// It returns the id and the number of attempts made. When no id turns up the
// error is the last scan's: ErrNotFound for a readable transcript without one,
// otherwise the read failure.
func PollTranscript(ctx context.Context, path string, extract Extractor, p Poll) (string, int, error) {
	var found string
	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		id, err := ScanTranscript(path, extract)
		if err != nil {
			return err
		}
		found = id
		return nil
	}, p.backOff(ctx))
	if err != nil {
		return "", attempts, err
	}
	return found, attempts, nil
}

// ProjectsDir returns ~/.claude/projects for home.
func ProjectsDir(home string) string {
	return filepath.Join(home, ".claude", "projects")
}

// Candidates lists transcripts under projectsDir whose name contains
// sessionID, or every transcript when none match.
func Candidates(projectsDir, sessionID string) []string {
	var named, all []string
	_ = filepath.WalkDir(projectsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable subtrees are skipped
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}
		all = append(all, path)
		if sessionID != "" && strings.Contains(d.Name(), sessionID) {
			named = append(named, path)
		}
		return nil
	})
	if len(named) > 0 {
		return named
	}
	return all
}

// SearchProjects looks for a trusted agent id in the host's stored
// transcripts for sessionID. It returns the id and the transcript it came from.
func SearchProjects(ctx context.Context, projectsDir, sessionID string, p Poll) (string, string, error) {
	if _, err := os.Stat(projectsDir); err != nil {
		return "", "", ErrNotFound
	}
	candidates := Candidates(projectsDir, sessionID)
	if len(candidates) == 0 {
		return "", "", ErrNotFound
	}

	var id, source string
	err := backoff.Retry(func() error {
		for _, path := range candidates {
			found, err := ScanTranscript(path, Trusted)
			if err == nil {
				id, source = found, path
				return nil
			}
		}
		return ErrNotFound
	}, p.backOff(ctx))
	if err != nil {
		return "", "", ErrNotFound
	}
	return id, source, nil
}
