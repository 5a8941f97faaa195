// Package commands implements the CLI commands for mdclip.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/mdclip/internal/config"
	"github.com/jmylchreest/mdclip/internal/logger"
	"github.com/jmylchreest/mdclip/pkg/clipboard"
	"github.com/jmylchreest/mdclip/pkg/convert"
	"github.com/jmylchreest/mdclip/pkg/mdclip"
	"github.com/jmylchreest/mdclip/pkg/mdformat"
	"github.com/jmylchreest/mdclip/pkg/richtext"
)

// app carries state shared by the commands of one invocation.
type app struct {
	v         *viper.Viper
	cfg       *config.Config
	clipboard clipboard.Clipboard
}

// NewRootCmd builds the command tree. A nil clipboard uses the system
// clipboard.
func NewRootCmd(cb clipboard.Clipboard) *cobra.Command {
	a := &app{v: viper.New(), clipboard: cb}

	rootCmd := &cobra.Command{
		Use:   "mdclip",
		Short: "Move content between markdown and the clipboard",
		Long: `mdclip converts rich clipboard content to clean markdown and
markdown to styled rich text.

Examples:
  # Paste the clipboard as markdown (tables and vendor markup cleaned up)
  mdclip paste

  # Copy a markdown file as styled rich text
  mdclip copy README.md

  # Convert a saved page, keeping only the main article
  mdclip convert --url "https://example.com/post" --readable

  # Show what is on the clipboard
  mdclip inspect --output yaml`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.mdclip.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Bool("log-json", false, "log as JSON")
	flags.String("preset", "default", "normalizer preset: default, clean")
	flags.String("max-input-size", "5MB", "largest markup run through the full pipeline (e.g. 512KB, 5MB, 0=unlimited)")
	flags.Bool("format", true, "format pasted markdown (use --format=false to disable)")
	flags.StringP("output", "o", "text", "report format: text, json, jsonl, yaml")

	_ = a.v.BindPFlag("debug", flags.Lookup("debug"))
	_ = a.v.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log_json", flags.Lookup("log-json"))
	_ = a.v.BindPFlag("mode", flags.Lookup("preset"))
	_ = a.v.BindPFlag("max_input_size", flags.Lookup("max-input-size"))
	_ = a.v.BindPFlag("format", flags.Lookup("format"))
	_ = a.v.BindPFlag("output", flags.Lookup("output"))

	rootCmd.AddCommand(
		a.pasteCmd(),
		a.copyCmd(),
		a.convertCmd(),
		a.renderCmd(),
		a.inspectCmd(),
		a.versionCmd(),
	)
	return rootCmd
}

// Execute runs the root command against the system clipboard.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return NewRootCmd(nil).ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.Setup(a.v, cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger.Init(logger.Options{
		Debug:  cfg.Debug,
		Quiet:  cfg.Quiet,
		Level:  cfg.LogLevel,
		JSON:   cfg.LogJSON,
		Output: cmd.ErrOrStderr(),
	})
	logger.Debug("config loaded", "file", a.v.ConfigFileUsed(), "settings", cfg.String())

	if a.clipboard == nil {
		sys := clipboard.NewSystem()
		if !sys.Available() {
			logger.Debug("no system clipboard utility found")
		}
		a.clipboard = sys
	}
	return nil
}

// service builds the orchestrator from the loaded config.
func (a *app) service(extra ...mdclip.Option) (*mdclip.Service, error) {
	maxInput, err := a.cfg.MaxInputBytes()
	if err != nil {
		return nil, err
	}

	opts := []mdclip.Option{
		mdclip.WithClipboard(a.clipboard),
		mdclip.WithConverter(convert.New(
			convert.WithNormalizer(a.cfg.Normalizer()),
			convert.WithMaxInputBytes(maxInput),
		)),
		mdclip.WithRenderer(richtext.NewRenderer()),
		mdclip.WithStylesheet(a.cfg.Stylesheet()),
	}
	if !a.cfg.Format {
		opts = append(opts, mdclip.WithFormatter(mdformat.NewNoop()))
	}
	return mdclip.New(append(opts, extra...)...), nil
}

// readInput reads the file named by the first argument, or stdin.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// report logs the outcome of a clipboard operation and turns an
// unavailable result into an error.
func report(cmd *cobra.Command, r mdclip.Result, start time.Time) error {
	args := []any{"mode", r.Mode, "status", r.Status, "source", r.Source, "duration", time.Since(start).Round(time.Millisecond)}
	switch r.Status {
	case mdclip.StatusUnavailable:
		logger.Error("clipboard content unavailable", append(args, "error", r.Err)...)
		if r.Err != nil {
			return fmt.Errorf("%s: %w", r.Mode, r.Err)
		}
		return fmt.Errorf("%s: nothing available", r.Mode)
	case mdclip.StatusDegraded:
		logger.Warn("completed with fallback", append(args, "error", r.Err)...)
	default:
		logger.Debug("completed", args...)
	}
	return nil
}
