package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.seanlatimer.dev/imgedit/internal/presets"
)

type Options struct {
	ConfigPath string
	Server     string
	Verbose    bool
	Quiet      bool
}

var Version = "dev"

func Execute() error {
	opts := &Options{}
	root := NewRootCommand(opts)
	return root.Execute()
}

func NewRootCommand(opts *Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "imgedit",
		Short:         "Terminal editor for an image generation server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Config file path")
	root.PersistentFlags().StringVar(&opts.Server, "server", "", "Server URL (overrides config and $IMGEDIT_SERVER)")
	root.PersistentFlags().BoolVar(&opts.Verbose, "verbose", false, "Enable verbose output")
	root.PersistentFlags().BoolVar(&opts.Quiet, "quiet", false, "Suppress non-error output")

	root.AddCommand(
		newEditCommand(opts),
		newPresetCommand(opts, presets.KindPrompt),
		newPresetCommand(opts, presets.KindStyle),
		newUploadCommand(opts),
		newSizesCommand(opts),
		newConfigCommand(opts),
	)

	root.Version = Version
	root.SetVersionTemplate(fmt.Sprintf("imgedit %s\n", Version))

	return root
}

func ExitWithError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
