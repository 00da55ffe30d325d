package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"go.seanlatimer.dev/imgedit/internal/api"
	"go.seanlatimer.dev/imgedit/internal/presets"
)

// PresetConfig is everything that differs between the prompt and style
// controllers.
type PresetConfig struct {
	Kind                  presets.Kind
	ClearOnEmptySelection bool
	SupportsInsert        bool
	SupportsDuplicate     bool
}

func PromptConfig() PresetConfig {
	return PresetConfig{Kind: presets.KindPrompt, SupportsDuplicate: true}
}

func StyleConfig() PresetConfig {
	return PresetConfig{Kind: presets.KindStyle, ClearOnEmptySelection: true, SupportsInsert: true}
}

// ReloadFunc re-fetches the page. name is the preset the reloaded page
// should select, if any.
type ReloadFunc func(kind presets.Kind, name string) tea.Cmd

// PresetDeps are the collaborators of one PresetController. InsertTarget is
// only used with SupportsInsert and Duplicate only with SupportsDuplicate.
type PresetDeps struct {
	Backend      Backend
	Selector     Selector
	Text         TextField
	InsertTarget TextField
	Duplicate    Control
	Modal        *Modal
	Notifier     Notifier
	Reload       ReloadFunc
}

// PresetController binds a preset selector to its text field and drives
// save, delete and duplicate through the modal.
type PresetController struct {
	cfg  PresetConfig
	deps PresetDeps
	seq  Sequence
}

func NewPresetController(cfg PresetConfig, deps PresetDeps) *PresetController {
	if deps.Reload == nil {
		deps.Reload = func(presets.Kind, string) tea.Cmd { return nil }
	}
	return &PresetController{cfg: cfg, deps: deps}
}

func (c *PresetController) Config() PresetConfig { return c.cfg }

func (c *PresetController) Kind() presets.Kind { return c.cfg.Kind }

func (c *PresetController) Selector() Selector { return c.deps.Selector }

// Text is the field the preset body is bound to.
func (c *PresetController) Text() TextField { return c.deps.Text }

// Select loads the content of name into the text field. An empty name
// clears the field for kinds configured to do so and leaves it alone
// otherwise. Either way any lookup still in flight becomes stale.
func (c *PresetController) Select(name string) tea.Cmd {
	name = strings.TrimSpace(name)
	c.deps.Selector.SetValue(name)
	seq := c.seq.Next()
	if name == "" {
		if c.cfg.ClearOnEmptySelection {
			c.deps.Text.SetValue("")
		}
		return nil
	}

	backend, kind, id := c.deps.Backend, c.cfg.Kind, newRequestID()
	return func() tea.Msg {
		var text string
		err := call(id, func(ctx context.Context) error {
			var err error
			text, err = backend.Preset(ctx, kind, name)
			return err
		})
		return lookupMsg{ctrl: c, seq: seq, id: id, name: name, text: text, err: err}
	}
}

type lookupMsg struct {
	ctrl *PresetController
	seq  uint64
	id   string
	name string
	text string
	err  error
}

func (m lookupMsg) apply() tea.Cmd {
	c := m.ctrl
	if !c.seq.Latest(m.seq) {
		logf(m.id, "discarding stale %s lookup for %q", c.cfg.Kind, m.name)
		return nil
	}
	if m.err != nil {
		logf(m.id, "load %s %q: %v", c.cfg.Kind, m.name, m.err)
		return nil
	}
	c.deps.Text.SetValue(m.text)
	return nil
}

// Insert prepends the trimmed style text to the prompt field.
func (c *PresetController) Insert() {
	if !c.cfg.SupportsInsert || c.deps.InsertTarget == nil {
		return
	}
	style := strings.TrimSpace(c.deps.Text.Value())
	if style == "" {
		return
	}
	c.deps.InsertTarget.SetValue(presets.PrependStyle(style, c.deps.InsertTarget.Value()))
}

// Save opens the save dialog pre-filled with the selected name. The text to
// save is captured now, not when the dialog is confirmed.
func (c *PresetController) Save() error {
	text := strings.TrimSpace(c.deps.Text.Value())
	err := c.deps.Modal.Open(Session{
		Action: ActionSave,
		Kind:   c.cfg.Kind,
		Target: c.deps.Selector.Value(),
		Text:   text,
		Prompt: fmt.Sprintf("Save %s as", c.cfg.Kind),
	}, func() error {
		if text == "" {
			return ErrEmptyText
		}
		return nil
	})
	if err != nil {
		c.reject(err, "saving")
	}
	return err
}

// ConfirmSave sends the open save session. The modal closes once the
// response arrives, whatever it is.
func (c *PresetController) ConfirmSave() tea.Cmd {
	modal := c.deps.Modal
	s := modal.Session()
	if !modal.IsOpen() || s.Action != ActionSave || s.Kind != c.cfg.Kind {
		return nil
	}
	name := strings.TrimSpace(modal.Input.Value())
	if name == "" {
		c.deps.Notifier.Error(fmt.Sprintf("Enter a name for the %s.", c.cfg.Kind))
		return nil
	}
	busy, err := Acquire(modal.Confirm, "Saving...")
	if err != nil {
		c.reject(err, "saving")
		return nil
	}

	backend, kind, text, id := c.deps.Backend, c.cfg.Kind, s.Text, newRequestID()
	return func() tea.Msg {
		var saved string
		err := call(id, func(ctx context.Context) error {
			var err error
			saved, err = backend.SavePreset(ctx, kind, name, text)
			return err
		})
		return mutationMsg{ctrl: c, busy: busy, id: id, op: opSave, name: name, result: saved, err: err}
	}
}

// Delete opens a confirmation naming the selected preset.
func (c *PresetController) Delete() error {
	name := strings.TrimSpace(c.deps.Selector.Value())
	err := c.deps.Modal.Open(Session{
		Action: ActionDelete,
		Kind:   c.cfg.Kind,
		Target: name,
		Prompt: fmt.Sprintf("Delete %s '%s'?", c.cfg.Kind, name),
	}, func() error {
		if name == "" {
			return ErrNothingSelected
		}
		return nil
	})
	if err != nil {
		c.reject(err, "deleting")
	}
	return err
}

func (c *PresetController) ConfirmDelete() tea.Cmd {
	modal := c.deps.Modal
	s := modal.Session()
	if !modal.IsOpen() || s.Action != ActionDelete || s.Kind != c.cfg.Kind {
		return nil
	}
	busy, err := Acquire(modal.Confirm, "Deleting...")
	if err != nil {
		c.reject(err, "deleting")
		return nil
	}

	backend, kind, name, id := c.deps.Backend, c.cfg.Kind, s.Target, newRequestID()
	return func() tea.Msg {
		var deleted string
		err := call(id, func(ctx context.Context) error {
			var err error
			deleted, err = backend.DeletePreset(ctx, kind, name)
			return err
		})
		return mutationMsg{ctrl: c, busy: busy, id: id, op: opDelete, name: name, result: deleted, err: err}
	}
}

// Duplicate stores the current text under the next free copy name of the
// selected prompt.
func (c *PresetController) Duplicate() tea.Cmd {
	if !c.cfg.SupportsDuplicate || c.deps.Duplicate == nil {
		return nil
	}
	name := strings.TrimSpace(c.deps.Selector.Value())
	text := strings.TrimSpace(c.deps.Text.Value())
	switch {
	case name == "":
		c.reject(ErrNothingSelected, "duplicating")
		return nil
	case text == "":
		c.reject(ErrEmptyText, "duplicating")
		return nil
	}
	busy, err := Acquire(c.deps.Duplicate, "Duplicating...")
	if err != nil {
		c.reject(err, "duplicating")
		return nil
	}

	backend, id := c.deps.Backend, newRequestID()
	return func() tea.Msg {
		var copyName string
		err := call(id, func(ctx context.Context) error {
			var err error
			copyName, err = backend.DuplicatePrompt(ctx, name, text)
			return err
		})
		return mutationMsg{ctrl: c, busy: busy, id: id, op: opDuplicate, name: name, result: copyName, err: err}
	}
}

type mutation int

const (
	opSave mutation = iota
	opDelete
	opDuplicate
)

type mutationMsg struct {
	ctrl   *PresetController
	busy   *Busy
	id     string
	op     mutation
	name   string
	result string
	err    error
}

func (m mutationMsg) apply() tea.Cmd {
	c := m.ctrl
	if m.op != opDuplicate {
		defer c.deps.Modal.Close()
	}
	defer m.busy.Release()

	kind := c.cfg.Kind
	if m.err != nil {
		logf(m.id, "%s %s %q: %v", m.op, kind, m.name, m.err)
		c.deps.Notifier.Error(api.Message(m.err, m.op.fallback()))
		return nil
	}

	switch m.op {
	case opSave:
		c.deps.Notifier.Info(fmt.Sprintf("Saved %s '%s'.", kind, m.result))
		return c.deps.Reload(kind, m.result)
	case opDelete:
		c.deps.Notifier.Info(fmt.Sprintf("Deleted %s '%s'.", kind, m.result))
		return c.deps.Reload(kind, "")
	default:
		c.deps.Notifier.Info(fmt.Sprintf("Duplicated %s as '%s'.", kind, m.result))
		return c.deps.Reload(kind, m.result)
	}
}

func (op mutation) String() string {
	switch op {
	case opSave:
		return "save"
	case opDelete:
		return "delete"
	default:
		return "duplicate"
	}
}

func (op mutation) fallback() string {
	switch op {
	case opSave:
		return "Failed to save preset."
	case opDelete:
		return "Failed to delete preset."
	default:
		return "Failed to duplicate prompt."
	}
}

// reject reports a precondition failure before any request is made.
func (c *PresetController) reject(err error, doing string) {
	c.deps.Notifier.Error(rejection(err, c.cfg.Kind.String(), doing))
}

func rejection(err error, subject, doing string) string {
	switch {
	case errors.Is(err, ErrEmptyText):
		return fmt.Sprintf("Enter some text before %s.", doing)
	case errors.Is(err, ErrNothingSelected):
		return fmt.Sprintf("Select a %s first.", subject)
	case errors.Is(err, ErrBusy):
		return "Wait for the current request to finish."
	case errors.Is(err, ErrStaleIndex):
		return "The image list changed. Try again."
	}
	return err.Error()
}
