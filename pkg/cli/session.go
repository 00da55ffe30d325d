package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"go.seanlatimer.dev/imgedit/internal/api"
	"go.seanlatimer.dev/imgedit/internal/config"
	"go.seanlatimer.dev/imgedit/internal/editor"
)

// session is what every server command needs: the effective config and a
// client for the configured server.
type session struct {
	cfg    config.Config
	client *api.Client
}

func loadConfig(opts *Options) (config.Config, error) {
	if opts.ConfigPath != "" {
		return config.LoadConfigFrom(opts.ConfigPath)
	}
	return config.LoadConfig()
}

func newSession(opts *Options) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	server := cfg.Server()
	if s := strings.TrimSpace(opts.Server); s != "" {
		server = s
	}
	client, err := api.New(server)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, client: client}, nil
}

func (s *session) prober() editor.Prober {
	if !s.cfg.Probe() {
		return nil
	}
	return s.client
}

// headless runs the editor controllers over in-memory widgets, so one-shot
// commands get the same preconditions and messages as the TUI.
type headless struct {
	*editor.Editor
	status *editor.StatusLine
}

func (s *session) newEditor(cmd *cobra.Command, opts *Options) *headless {
	if opts.Verbose {
		log.SetOutput(cmd.ErrOrStderr())
	} else {
		log.SetOutput(io.Discard)
	}
	status := &editor.StatusLine{}
	e := editor.New(editor.NewWidgets(), editor.Options{
		Backend:  s.client,
		Prober:   s.prober(),
		Notifier: status,
	})
	return &headless{Editor: e, status: status}
}

// load fetches the page state. The editor reports load failures as a
// notice, which becomes the returned error.
func (h *headless) load(prompt, model string) error {
	h.Drive(h.Load(prompt, model))
	if !h.Loaded() {
		return h.failure(errors.New("failed to load the editor page"))
	}
	h.status.Clear()
	return nil
}

// report prints info notices and returns the first error notice.
func (h *headless) report(cmd *cobra.Command, opts *Options) error {
	defer h.status.Clear()
	for _, n := range h.status.Notices() {
		if n.Error {
			return errors.New(n.Text)
		}
		if !opts.Quiet {
			fmt.Fprintln(cmd.OutOrStdout(), n.Text)
		}
	}
	return nil
}

func (h *headless) failure(fallback error) error {
	for _, n := range h.status.Notices() {
		if n.Error {
			return errors.New(n.Text)
		}
	}
	return fallback
}
