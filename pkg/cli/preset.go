package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.seanlatimer.dev/imgedit/internal/api"
	"go.seanlatimer.dev/imgedit/internal/presets"
	"go.seanlatimer.dev/imgedit/internal/tui"
)

func newPresetCommand(opts *Options, kind presets.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   kind.String(),
		Short: fmt.Sprintf("Manage %s presets on the server", kind),
	}

	cmd.AddCommand(
		newPresetListCommand(opts, kind),
		newPresetShowCommand(opts, kind),
		newPresetSaveCommand(opts, kind),
		newPresetDeleteCommand(opts, kind),
	)
	if kind == presets.KindPrompt {
		cmd.AddCommand(newPromptDuplicateCommand(opts))
	}
	return cmd
}

func newPresetListCommand(opts *Options, kind presets.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s presets", kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openEditor(cmd, opts)
			if err != nil {
				return err
			}
			if err := h.load("", ""); err != nil {
				return err
			}
			names := h.Controller(kind).Selector().Options()
			if len(names) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No %s presets found.\n", kind)
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// pickName chooses a preset interactively when show gets no name.
var pickName = tui.PickName

func newPresetShowCommand(opts *Options, kind presets.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: fmt.Sprintf("Print a %s preset", kind),
		Long:  fmt.Sprintf("Print a %s preset. Without a name, pick one from the server's list.", kind),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts)
			if err != nil {
				return err
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				h := s.newEditor(cmd, opts)
				if err := h.load("", ""); err != nil {
					return err
				}
				names := h.Controller(kind).Selector().Options()
				if len(names) == 0 {
					return fmt.Errorf("no %s presets on the server", kind)
				}
				name, err = pickName("Select "+kind.Title(), names)
				if errors.Is(err, tui.ErrCancelled) {
					return nil
				}
				if err != nil {
					return err
				}
			}

			// Lookups are silent in the editor; here the caller needs the outcome.
			text, err := s.client.Preset(context.Background(), kind, name)
			if api.IsNotFound(err) {
				return fmt.Errorf("%s not found: %s", kind, name)
			}
			if err != nil {
				return fmt.Errorf("failed to load %s %s: %s", kind, name, api.Message(err, err.Error()))
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newPresetSaveCommand(opts *Options, kind presets.Kind) *cobra.Command {
	var text string
	var file string

	long := fmt.Sprintf("Save a %s preset. The text comes from --text, --file, or standard input.", kind)
	if kind == presets.KindStyle {
		long += " A taken style name is stored under the next free name_N."
	}

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: fmt.Sprintf("Save a %s preset", kind),
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := presetText(cmd, text, file)
			if err != nil {
				return err
			}
			h, err := openEditor(cmd, opts)
			if err != nil {
				return err
			}
			if err := h.load("", ""); err != nil {
				return err
			}

			ctrl := h.Controller(kind)
			ctrl.Text().SetValue(body)
			if err := ctrl.Save(); err != nil {
				return h.report(cmd, opts)
			}
			h.W.ModalInput.SetValue(args[0])
			h.Drive(h.ConfirmModal())
			return h.report(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Preset text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read preset text from a file (- for stdin)")
	return cmd
}

func newPresetDeleteCommand(opts *Options, kind presets.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: fmt.Sprintf("Delete a %s preset", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openEditor(cmd, opts)
			if err != nil {
				return err
			}
			if err := h.load("", ""); err != nil {
				return err
			}

			ctrl := h.Controller(kind)
			ctrl.Selector().SetValue(args[0])
			if err := ctrl.Delete(); err != nil {
				return h.report(cmd, opts)
			}
			h.Drive(h.ConfirmModal())
			return h.report(cmd, opts)
		},
	}
}

func newPromptDuplicateCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <name>",
		Short: "Copy a prompt preset to the next free name_copy name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openEditor(cmd, opts)
			if err != nil {
				return err
			}
			if err := h.load(args[0], ""); err != nil {
				return err
			}
			if !slices.Contains(h.W.PromptPreset.Options(), args[0]) || h.W.PromptPreset.Value() != args[0] {
				return fmt.Errorf("prompt not found: %s", args[0])
			}
			h.Drive(h.Prompt.Duplicate())
			return h.report(cmd, opts)
		},
	}
}

func presetText(cmd *cobra.Command, text, file string) (string, error) {
	if text != "" {
		return text, nil
	}
	var r io.Reader = cmd.InOrStdin()
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", file, err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read preset text: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func openEditor(cmd *cobra.Command, opts *Options) (*headless, error) {
	s, err := newSession(opts)
	if err != nil {
		return nil, err
	}
	return s.newEditor(cmd, opts), nil
}
