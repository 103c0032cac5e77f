package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dotcommander/dothook/internal/app"
	"github.com/dotcommander/dothook/internal/hookio"
	"github.com/dotcommander/dothook/internal/statusline"
	"github.com/dotcommander/dothook/internal/vcs"
)

// NewStatuslineCmd renders Claude Code's status line from the JSON on stdin.
func NewStatuslineCmd() *cobra.Command {
	var color bool

	cmd := &cobra.Command{
		Use:   "statusline",
		Short: "Render the Claude Code status line from stdin JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.EffectiveStatuslineSettings()
			if !cmd.Flags().Changed("color") {
				color = cfg.Color
			}
			return renderStatusline(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), int64(cfg.MaxContextTokens), color)
		},
	}

	cmd.Flags().BoolVar(&color, "color", false, "Colour segments (default from statusline.color)")
	return cmd
}

func renderStatusline(in io.Reader, stdout, stderr io.Writer, maxContextTokens int64, color bool) error {
	input, err := statusline.Parse(io.LimitReader(in, hookio.MaxStdinBytes))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error parsing JSON: %v\n", err)
		return ExitCodeError{Code: 1}
	}

	opts := statusline.Options{
		MaxContextTokens: maxContextTokens,
		Branch:           vcs.Branch,
		Metrics:          statusline.TranscriptMetrics,
	}
	if color {
		opts.Renderer = statusline.NewRenderer(stdout)
	}
	_, err = fmt.Fprintln(stdout, statusline.Build(input, opts))
	return err
}
