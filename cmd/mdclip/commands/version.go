package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/mdclip/internal/output"
	"github.com/jmylchreest/mdclip/internal/version"
)

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.ParseFormat(a.cfg.Output)
			if err != nil {
				return err
			}
			if format == output.FormatText {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Full())
				return err
			}
			w, err := output.NewWriter(cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}
			_ = w.Write(version.Get())
			return w.Close()
		},
	}
}
