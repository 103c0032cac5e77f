package handoff

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dotcommander/dothook/internal/hookio"
)

const handledFile = ".handled.json"

// HandledPath returns the metadata file listing picked-up handoffs.
func HandledPath(projectDir string) string {
	return filepath.Join(Dir(projectDir), handledFile)
}

// LoadHandled reads the handled map (filename -> timestamp). A missing file
// yields an empty map.
func LoadHandled(projectDir string) (map[string]string, error) {
	data, err := os.ReadFile(HandledPath(projectDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read handled metadata: %w", err)
	}
	handled := map[string]string{}
	if err := json.Unmarshal(data, &handled); err != nil {
		return nil, fmt.Errorf("parse handled metadata: %w", err)
	}
	return handled, nil
}

// MarkHandled records name as picked up. A corrupt metadata file is left
// untouched and reported.
func MarkHandled(projectDir, name string) error {
	handled, err := LoadHandled(projectDir)
	if err != nil {
		return err
	}
	handled[name] = hookio.Now().Format(createdStampLayout)

	data, err := json.MarshalIndent(handled, "", "  ")
	if err != nil {
		return fmt.Errorf("encode handled metadata: %w", err)
	}
	if err := os.MkdirAll(Dir(projectDir), hookio.DirMode); err != nil {
		return fmt.Errorf("create handoffs dir: %w", err)
	}
	if err := os.WriteFile(HandledPath(projectDir), data, hookio.FileMode); err != nil {
		return fmt.Errorf("write handled metadata: %w", err)
	}
	return nil
}
