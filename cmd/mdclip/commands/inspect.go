package commands

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/mdclip/internal/output"
	"github.com/jmylchreest/mdclip/pkg/clipboard"
)

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "List the representations on the clipboard",
		Long: `List each clipboard representation with its size. Use --output
json, jsonl or yaml to include the content.`,
		Args: cobra.NoArgs,
		RunE: a.runInspect,
	}
}

func (a *app) runInspect(cmd *cobra.Command, _ []string) error {
	svc, err := a.service()
	if err != nil {
		return err
	}
	items, err := svc.Inspect(cmd.Context())
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}

	format, err := output.ParseFormat(a.cfg.Output)
	if err != nil {
		return err
	}
	w, err := output.NewWriter(cmd.OutOrStdout(), format)
	if err != nil {
		return err
	}

	data := make([]any, 0, len(items))
	for _, it := range items {
		if format == output.FormatText {
			data = append(data, summary(it))
		} else {
			data = append(data, it)
		}
	}
	if err := w.WriteAll(data); err != nil {
		return err
	}
	return w.Close()
}

func summary(it clipboard.Item) string {
	preview := strings.Join(strings.Fields(it.Data), " ")
	if len(preview) > 60 {
		preview = preview[:57] + "..."
	}
	return fmt.Sprintf("%-10s %8s  %s", it.Type, humanize.Bytes(uint64(len(it.Data))), preview)
}
