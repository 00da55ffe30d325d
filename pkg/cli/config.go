package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.seanlatimer.dev/imgedit/internal/config"
)

func newConfigCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	cmd.AddCommand(
		newConfigShowCommand(opts),
		newConfigSetCommand(opts),
		newConfigSetServerCommand(opts),
	)
	return cmd
}

func configPath(opts *Options) (string, error) {
	if opts.ConfigPath != "" {
		return opts.ConfigPath, nil
	}
	return config.GetConfigPath()
}

func newConfigShowCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(opts)
			if err != nil {
				return err
			}
			cfg, err := config.LoadConfigFrom(path)
			if err != nil {
				return err
			}
			server := cfg.Server()
			if opts.Server != "" {
				server = opts.Server
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n", path)
			fmt.Fprintf(out, "%s: %s\n", config.KeyServerURL, server)
			fmt.Fprintf(out, "%s: %s\n", config.KeyDefaultModel, cfg.DefaultModel)
			fmt.Fprintf(out, "%s: %t\n", config.KeyProbeImages, cfg.Probe())
			logPath, err := config.GetLogPath(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %s\n", config.KeyLogFile, logPath)
			return nil
		},
	}
}

func newConfigSetCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: fmt.Sprintf("Change one setting. Keys: %s, %s, %s, %s.",
			config.KeyServerURL, config.KeyLogFile, config.KeyDefaultModel, config.KeyProbeImages),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(cmd, opts, args[0], args[1])
		},
	}
}

func newConfigSetServerCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "set-server <url>",
		Short: "Set the server URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(cmd, opts, config.KeyServerURL, args[0])
		},
	}
}

func updateConfig(cmd *cobra.Command, opts *Options, key, value string) error {
	path, err := configPath(opts)
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfigFrom(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.SaveConfigTo(path, cfg); err != nil {
		return err
	}
	if !opts.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", key, value)
	}
	return nil
}
