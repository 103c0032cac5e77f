package handoff

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dotcommander/dothook/internal/hookio"
)

// Info describes a handoff file on disk.
type Info struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	Modified time.Time     `json:"modified"`
	Age      time.Duration `json:"age"`
	Title    string        `json:"title,omitempty"`
}

// ModifiedString formats the modification time as YYYY-MM-DD HH:MM:SS.
func (i Info) ModifiedString() string {
	return i.Modified.Format(createdStampLayout)
}

// Scan lists *.md handoffs, newest first. A missing directory is not an error.
func Scan(projectDir string) ([]Info, error) {
	dir := Dir(projectDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read handoffs dir: %w", err)
	}

	now := hookio.Now()
	var out []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, e.Name())
		out = append(out, Info{
			Name:     e.Name(),
			Path:     filepath.ToSlash(filepath.Join(".claude", "handoffs", e.Name())),
			Modified: fi.ModTime(),
			Age:      now.Sub(fi.ModTime()),
			Title:    readTitle(path),
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Modified.After(out[b].Modified)
	})
	return out, nil
}

// Pending is Scan without the handoffs recorded in .handled.json. Corrupt
// metadata is treated as empty.
func Pending(projectDir string) ([]Info, error) {
	all, err := Scan(projectDir)
	if err != nil {
		return nil, err
	}
	handled, err := LoadHandled(projectDir)
	if err != nil {
		handled = map[string]string{}
	}
	out := all[:0]
	for _, info := range all {
		if _, done := handled[info.Name]; !done {
			out = append(out, info)
		}
	}
	return out, nil
}

func readTitle(path string) string {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path under project handoffs dir
	if err != nil {
		return ""
	}
	return Title(data)
}

// Title returns the plain text of the first heading in a markdown document.
func Title(src []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(src))
	title := ""
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		title = inlineText(h, src)
		return gmast.WalkStop, nil
	})
	return strings.TrimSpace(title)
}

func inlineText(n gmast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gmast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}
