package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSizesCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "sizes <model>",
		Short: "Show the image sizes a model accepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts)
			if err != nil {
				return err
			}
			sizes, err := s.client.ModelSizes(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load sizes for %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sizes: %s\n", strings.Join(sizes.Sizes, ", "))
			fmt.Fprintf(out, "Default: %s\n", sizes.Default)
			fmt.Fprintf(out, "Image references: %s\n", yesNo(sizes.SupportsImageURLs))
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
