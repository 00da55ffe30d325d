package editor

import "go.seanlatimer.dev/imgedit/internal/presets"

// Action identifies what a modal session confirms.
type Action int

const (
	ActionNone Action = iota
	ActionSave
	ActionDelete
	ActionConfirm
)

// Session is the state of one open dialog. Text is captured when the dialog
// opens; Prompt is the question shown to the user.
type Session struct {
	Action Action
	Kind   presets.Kind
	Target string
	Text   string
	Prompt string
}

// Modal is the dialog lifecycle shared by every create and destructive
// action: closed, open, closed. Busy-ness lives entirely in Confirm.
type Modal struct {
	Input   TextField
	Confirm Control

	open    bool
	session Session
}

func NewModal(input TextField, confirm Control) *Modal {
	return &Modal{Input: input, Confirm: confirm}
}

// Open runs check and opens only when it passes. The input is pre-filled
// with the session target and focused.
func (m *Modal) Open(s Session, check func() error) error {
	if check != nil {
		if err := check(); err != nil {
			return err
		}
	}
	if m.Confirm != nil && !m.Confirm.Enabled() {
		return ErrBusy
	}
	m.open = true
	m.session = s
	if m.Input != nil {
		m.Input.SetValue(s.Target)
		focus(m.Input)
	}
	return nil
}

// Close clears the session and the transient input.
func (m *Modal) Close() {
	m.open = false
	m.session = Session{}
	if m.Input != nil {
		m.Input.SetValue("")
	}
}

func (m *Modal) Cancel() { m.Close() }

// ClickOutside is a click on the backdrop.
func (m *Modal) ClickOutside() { m.Close() }

func (m *Modal) IsOpen() bool { return m.open }

func (m *Modal) Session() Session { return m.session }

// Busy reports whether the confirm control is held by a request.
func (m *Modal) Busy() bool {
	return m.Confirm != nil && !m.Confirm.Enabled()
}
