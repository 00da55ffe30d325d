package cli

import (
	"github.com/spf13/cobra"
	"go.seanlatimer.dev/imgedit/internal/config"
	"go.seanlatimer.dev/imgedit/internal/tui"
)

func newEditCommand(opts *Options) *cobra.Command {
	var prompt string
	var model string

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Open the interactive editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts)
			if err != nil {
				return err
			}
			logPath, err := config.GetLogPath(s.cfg)
			if err != nil {
				return err
			}
			if model == "" {
				model = s.cfg.DefaultModel
			}
			return tui.Run(s.client, s.prober(), tui.Options{
				Prompt:  prompt,
				Model:   model,
				LogPath: logPath,
			})
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Prompt preset to open")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model to select (default from config)")
	return cmd
}
