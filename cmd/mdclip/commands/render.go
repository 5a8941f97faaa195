package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/mdclip/pkg/richtext"
)

func (a *app) renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Print markdown rendered as HTML",
		Long: `Render markdown to HTML on stdout, as copy would place it on the
clipboard.

Examples:
  mdclip render README.md
  mdclip render --mode html < notes.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runRender,
	}
	cmd.Flags().StringP("mode", "m", "rich", "render mode: rich, html")
	return cmd
}

func (a *app) runRender(cmd *cobra.Command, args []string) error {
	markdown, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	r := richtext.NewRenderer()
	mode, _ := cmd.Flags().GetString("mode")

	var out string
	switch mode {
	case "rich":
		out, err = r.RenderStyled(markdown, a.cfg.Stylesheet())
	case "html":
		out, err = r.Render(markdown)
		out = richtext.FormatHTML(out)
	default:
		return fmt.Errorf("unknown render mode %q", mode)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
