package commands

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/mdclip/internal/logger"
	"github.com/jmylchreest/mdclip/pkg/mdclip"
)

func (a *app) copyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy [file]",
		Short: "Copy markdown to the clipboard as rich text or HTML",
		Long: `Render markdown and place it on the clipboard.

Modes:
  rich  styled HTML plus the markdown source, for word processors and mail
  html  formatted HTML markup as both representations

Markdown is read from the file argument or stdin.

Examples:
  mdclip copy README.md
  cat notes.md | mdclip copy --mode html`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runCopy,
	}
	cmd.Flags().StringP("mode", "m", "rich", "copy mode: rich, html")
	return cmd
}

func (a *app) runCopy(cmd *cobra.Command, args []string) error {
	svc, err := a.service()
	if err != nil {
		return err
	}
	markdown, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	mode, _ := cmd.Flags().GetString("mode")
	ctx := cmd.Context()
	start := time.Now()

	var r mdclip.Result
	switch mode {
	case "rich":
		r = svc.CopyRichText(ctx, markdown)
	case "html":
		r = svc.CopyHTML(ctx, markdown)
	default:
		return fmt.Errorf("unknown copy mode %q", mode)
	}
	if err := report(cmd, r, start); err != nil {
		return err
	}

	logger.Info("copied to clipboard", "representation", r.Source, "size", humanize.Bytes(uint64(len(r.Text))))
	return nil
}
