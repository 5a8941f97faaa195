package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/mdclip/pkg/cleaner/tidy"
	"github.com/jmylchreest/mdclip/pkg/mdclip"
)

func (a *app) pasteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Print the clipboard as markdown",
		Long: `Read the clipboard and print it as markdown.

Modes:
  markdown  convert the HTML representation; plain text is printed as-is
  html      like markdown, but plain text that looks like HTML is converted
  text      print plain text, reducing HTML to its text content

Examples:
  mdclip paste
  mdclip paste --mode html -w notes.md
  mdclip paste --mode text`,
		Args: cobra.NoArgs,
		RunE: a.runPaste,
	}
	cmd.Flags().StringP("mode", "m", "markdown", "paste mode: markdown, html, text")
	cmd.Flags().StringP("write", "w", "", "write to file instead of stdout")
	return cmd
}

func (a *app) runPaste(cmd *cobra.Command, _ []string) error {
	svc, err := a.service()
	if err != nil {
		return err
	}

	mode, _ := cmd.Flags().GetString("mode")
	ctx := cmd.Context()
	start := time.Now()

	var r mdclip.Result
	switch mode {
	case "markdown", "md":
		r = svc.PasteMarkdown(ctx)
	case "html":
		r = svc.PasteFromHTML(ctx)
	case "text":
		r = svc.ReadPlainText(ctx)
	default:
		return fmt.Errorf("unknown paste mode %q", mode)
	}
	if err := report(cmd, r, start); err != nil {
		return err
	}

	return writeText(cmd, r.Text)
}

// writeText prints text to stdout or the --write file.
func writeText(cmd *cobra.Command, text string) error {
	path, _ := cmd.Flags().GetString("write")
	if path == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(path, []byte(tidy.WithTrailingNewline(text)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
