package hookio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// File modes for state written under .claude/.
const (
	DirMode  os.FileMode = 0o750
	FileMode os.FileMode = 0o600
)

// TimestampLayout matches an ISO-8601 local timestamp with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Now is the clock used for timestamps; tests may replace it.
var Now = time.Now //nolint:gochecknoglobals // test seam for deterministic filenames

// Timestamp returns Now formatted with TimestampLayout.
func Timestamp() string {
	return Now().Format(TimestampLayout)
}

// LogsDir returns <project>/.claude/logs.
func LogsDir(projectDir string) string {
	return filepath.Join(projectDir, ".claude", "logs")
}

// WritePrivate writes data to path with owner-only permissions, creating parents.
func WritePrivate(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, data, FileMode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file.
	_ = os.Chmod(path, FileMode)
	return nil
}

// AppendJSONL appends v as one JSON line to path.
func AppendJSONL(path string, v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal jsonl entry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, FileMode) //nolint:gosec // G304: path under project .claude/
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	line = append(line, '\n')
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append %s: %w", path, err)
	}
	return nil
}

// AppendJSONArray loads a JSON array from path (an unreadable or corrupt file
// starts a fresh array), appends entry and rewrites it indented.
func AppendJSONArray(path string, entry any) error {
	var entries []any
	if data, err := os.ReadFile(path); err == nil { //nolint:gosec // G304: path under project .claude/
		if jsonErr := json.Unmarshal(data, &entries); jsonErr != nil {
			entries = nil
		}
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal log: %w", err)
	}
	return WritePrivate(path, data)
}
