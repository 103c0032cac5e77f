// Package transcript reads Claude Code session transcripts (JSON Lines) and
// derives the views the hooks need: conversation messages for handoffs, the
// tagged session log, the latest todo list and token usage.
package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Entry is one transcript line. Unknown fields are ignored.
type Entry struct {
	Line          int             `json:"-"`
	Type          string          `json:"type"`
	IsMeta        bool            `json:"isMeta"`
	IsSidechain   bool            `json:"isSidechain"`
	Timestamp     string          `json:"timestamp"`
	Message       Message         `json:"message"`
	ToolUseResult json.RawMessage `json:"toolUseResult"`
}

// Message is the model-facing message inside an entry.
type Message struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Usage   *Usage          `json:"usage"`
}

// Usage is the per-message token accounting reported by the API.
type Usage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
}

// Block is one element of a list-form message content.
type Block struct {
	Type  string         `json:"type"`
	Text  string         `json:"text"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
	// Plain is set for bare string elements.
	Plain bool `json:"-"`
}

// Content is a decoded message content: either a string or a block list.
type Content struct {
	Text    string
	IsText  bool
	Blocks  []Block
	IsBlock bool
}

// Empty reports whether the content carries nothing.
func (c Content) Empty() bool {
	switch {
	case c.IsText:
		return c.Text == ""
	case c.IsBlock:
		return len(c.Blocks) == 0
	default:
		return true
	}
}

// HasType reports whether any block has the given type.
func (c Content) HasType(blockType string) bool {
	for _, b := range c.Blocks {
		if !b.Plain && b.Type == blockType {
			return true
		}
	}
	return false
}

// DecodeContent decodes a raw content value. Non-string, non-list values
// decode to an empty Content.
func DecodeContent(raw json.RawMessage) Content {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Content{}
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Content{}
		}
		return Content{Text: s, IsText: true}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Content{}
		}
		blocks := make([]Block, 0, len(items))
		for _, item := range items {
			item = bytes.TrimSpace(item)
			if len(item) == 0 {
				continue
			}
			switch item[0] {
			case '"':
				var s string
				if json.Unmarshal(item, &s) == nil {
					blocks = append(blocks, Block{Text: s, Plain: true})
				}
			case '{':
				var b Block
				if json.Unmarshal(item, &b) == nil {
					blocks = append(blocks, b)
				}
			}
		}
		return Content{Blocks: blocks, IsBlock: true}
	default:
		return Content{}
	}
}

// ErrNoTranscript is returned when the transcript path is empty or missing.
var ErrNoTranscript = errors.New("transcript not found")

// ReadEntries parses every well-formed line of the transcript at path.
// Blank and malformed lines are skipped; line numbers are 1-based.
func ReadEntries(path string) ([]Entry, error) {
	if path == "" {
		return nil, ErrNoTranscript
	}
	f, err := os.Open(path) //nolint:gosec // G304: transcript path supplied by the hook host
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoTranscript, path)
		}
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()
	return DecodeEntries(f)
}

// DecodeEntries parses JSON Lines from r. Lines may be arbitrarily long.
func DecodeEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	err := EachLine(r, func(lineNo int, line []byte) {
		var e Entry
		if json.Unmarshal(line, &e) != nil {
			return
		}
		e.Line = lineNo
		entries = append(entries, e)
	})
	return entries, err
}

// EachLine calls fn for each non-blank line of r with its 1-based number.
func EachLine(r io.Reader, fn func(lineNo int, line []byte)) error {
	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				fn(lineNo, trimmed)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read transcript: %w", err)
		}
	}
}
