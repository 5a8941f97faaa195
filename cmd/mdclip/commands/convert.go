package commands

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/mdclip/internal/logger"
	"github.com/jmylchreest/mdclip/internal/output"
	"github.com/jmylchreest/mdclip/pkg/cleaner"
	"github.com/jmylchreest/mdclip/pkg/fetcher"
	"github.com/jmylchreest/mdclip/pkg/mdclip"
)

func (a *app) convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert HTML to markdown without the clipboard",
		Long: `Convert HTML from a file, stdin or a URL to markdown using the same
pipeline as paste.

Examples:
  mdclip convert page.html
  mdclip convert --url "https://example.com/post" --readable
  pbpaste | mdclip convert --stats --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runConvert,
	}

	flags := cmd.Flags()
	flags.StringP("url", "u", "", "fetch HTML from URL")
	flags.Bool("readable", false, "keep only the main article before converting")
	flags.Duration("timeout", 30*time.Second, "fetch timeout")
	flags.Bool("stats", false, "print normalizer statistics to stderr")
	flags.StringP("write", "w", "", "write to file instead of stdout")

	_ = a.v.BindPFlag("readable", flags.Lookup("readable"))
	_ = a.v.BindPFlag("timeout", flags.Lookup("timeout"))
	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	src, baseURL, err := a.convertInput(cmd, args)
	if err != nil {
		return err
	}
	logger.Debug("converting", "size", humanize.Bytes(uint64(len(src))), "readable", a.cfg.Readable)

	var stages []cleaner.Cleaner
	if a.cfg.Readable {
		stages = append(stages, cleaner.NewReadability(&cleaner.ReadabilityConfig{BaseURL: baseURL}))
	}
	svc, err := a.service(mdclip.WithPreprocessors(stages...))
	if err != nil {
		return err
	}

	r := svc.ConvertHTML(ctx, src)
	if err := report(cmd, r, start); err != nil {
		return err
	}

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		if err := a.writeStats(cmd, r); err != nil {
			return err
		}
	}
	return writeText(cmd, r.Text)
}

func (a *app) convertInput(cmd *cobra.Command, args []string) (string, string, error) {
	target, _ := cmd.Flags().GetString("url")
	if target == "" {
		src, err := readInput(cmd, args)
		return src, "", err
	}
	if len(args) > 0 {
		return "", "", fmt.Errorf("give either a file or --url, not both")
	}

	f := fetcher.NewStatic(fetcher.StaticConfig{Timeout: a.cfg.Timeout})
	defer func() { _ = f.Close() }()

	content, err := f.Fetch(cmd.Context(), target, fetcher.Options{})
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", target, err)
	}
	logger.Info("fetched page", "url", target, "title", content.Title, "status", content.StatusCode, "size", humanize.Bytes(uint64(len(content.HTML))))
	return content.HTML, target, nil
}

func (a *app) writeStats(cmd *cobra.Command, r mdclip.Result) error {
	format, err := output.ParseFormat(a.cfg.Output)
	if err != nil {
		return err
	}
	w, err := output.NewWriter(cmd.ErrOrStderr(), format)
	if err != nil {
		return err
	}

	if format == output.FormatText {
		if r.Stats != nil {
			_ = w.Write(r.Stats.String())
		}
		_ = w.Write(fmt.Sprintf("Tables: %d", r.Tables))
		for _, warn := range r.Warnings {
			_ = w.Write("Warning: " + warn.String())
		}
		return w.Close()
	}

	_ = w.Write(struct {
		Status   mdclip.Status `json:"status" yaml:"status"`
		Tables   int           `json:"tables" yaml:"tables"`
		Stats    any           `json:"stats,omitempty" yaml:"stats,omitempty"`
		Warnings any           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	}{r.Status, r.Tables, r.Stats, r.Warnings})
	return w.Close()
}
