package tui

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "charm.land/bubbletea/v2"
	"go.seanlatimer.dev/imgedit/internal/editor"
)

// Run starts the interactive editor and blocks until the user quits. When
// opts.LogPath is set, request logging goes to that file; otherwise it is
// discarded.
func Run(backend editor.Backend, prober editor.Prober, opts Options) error {
	if opts.LogPath != "" {
		f, err := tea.LogToFile(opts.LogPath, "imgedit")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
	} else {
		// Stderr belongs to the terminal while the program runs.
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}

	program := tea.NewProgram(NewModel(backend, prober, opts))
	_, err := program.Run()
	return err
}
