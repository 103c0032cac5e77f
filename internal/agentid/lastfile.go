package agentid

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dotcommander/dothook/internal/hookio"
)

const lastFilePrefix = "last_agent_id_"

// LastFilePath returns <project>/.claude/logs/last_agent_id_<session>.txt.
func LastFilePath(projectDir, sessionID string) string {
	if sessionID == "" {
		sessionID = "unknown"
	}
	return filepath.Join(hookio.LogsDir(projectDir), lastFilePrefix+sessionID+".txt")
}

// WriteLast records id as the latest subagent of sessionID (mode 0600).
func WriteLast(projectDir, sessionID, id string) (string, error) {
	path := LastFilePath(projectDir, sessionID)
	if err := hookio.WritePrivate(path, []byte(id)); err != nil {
		return "", err
	}
	return path, nil
}

// FindLastFile locates the last-agent file for sessionID: the exact session,
// then its short form, then (fallback=true) the newest file of any session.
func FindLastFile(projectDir, sessionID string) (path string, fallback bool) {
	if sessionID != "" {
		for _, sid := range []string{sessionID, hookio.ShortSessionID(sessionID)} {
			p := LastFilePath(projectDir, sid)
			if _, err := os.Stat(p); err == nil {
				return p, false
			}
		}
	}

	matches, err := filepath.Glob(filepath.Join(hookio.LogsDir(projectDir), lastFilePrefix+"*.txt"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	newest := ""
	var newestMod int64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest, newestMod = m, mod
		}
	}
	return newest, newest != ""
}

// ReadLast reads an agent id file. Empty files yield ErrNotFound.
func ReadLast(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path under project .claude/logs
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read last agent file: %w", err)
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", ErrNotFound
	}
	return id, nil
}
