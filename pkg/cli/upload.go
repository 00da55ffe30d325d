package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUploadCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a reference image and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openEditor(cmd, opts)
			if err != nil {
				return err
			}

			h.W.UploadPath.SetValue(args[0])
			h.Drive(h.Images.Upload())
			if err := h.failure(nil); err != nil {
				return err
			}
			ref := h.Images.LastUpload()
			if ref == "" {
				return fmt.Errorf("upload returned no reference")
			}
			fmt.Fprintln(cmd.OutOrStdout(), ref)
			return nil
		},
	}
}
