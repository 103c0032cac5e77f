// Package clipboard copies text with whichever clipboard tool is installed.
package clipboard

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

type tool struct {
	name string
	args []string
}

var tools = []tool{ //nolint:gochecknoglobals // read-only lookup table
	{name: "pbcopy"},
	{name: "wl-copy"},
	{name: "xclip", args: []string{"-selection", "clipboard"}},
}

const copyTimeout = 2 * time.Second

// Copy writes text to the first available clipboard tool and reports success.
func Copy(ctx context.Context, text string) bool {
	for _, t := range tools {
		if _, err := exec.LookPath(t.name); err != nil {
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, copyTimeout)
		cmd := exec.CommandContext(cctx, t.name, t.args...) //nolint:gosec // G204: fixed tool table
		cmd.Stdin = strings.NewReader(text)
		err := cmd.Run()
		cancel()
		if err == nil {
			return true
		}
	}
	return false
}
