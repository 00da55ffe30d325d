package editor

import "errors"

var (
	ErrNothingSelected = errors.New("nothing selected")
	ErrEmptyText       = errors.New("text is empty")
	ErrStaleIndex      = errors.New("image list changed since it was rendered")
	ErrBusy            = errors.New("a request is already in progress")
)

// Busy is the disabled and relabeled state of a control while its request
// is outstanding. Release restores the control exactly once.
type Busy struct {
	ctrl     Control
	label    string
	enabled  bool
	released bool
	hooks    []func()
}

// Acquire disables ctrl and swaps its label for busyLabel (kept when empty).
// It fails with ErrBusy when ctrl is already disabled.
func Acquire(ctrl Control, busyLabel string) (*Busy, error) {
	if !ctrl.Enabled() {
		return nil, ErrBusy
	}
	b := &Busy{ctrl: ctrl, label: ctrl.Label(), enabled: true}
	ctrl.SetEnabled(false)
	if busyLabel != "" {
		ctrl.SetLabel(busyLabel)
	}
	return b, nil
}

// OnRelease registers f to run after the control is restored.
func (b *Busy) OnRelease(f func()) {
	b.hooks = append(b.hooks, f)
}

func (b *Busy) Release() {
	if b == nil || b.released {
		return
	}
	b.released = true
	b.ctrl.SetLabel(b.label)
	b.ctrl.SetEnabled(b.enabled)
	for _, f := range b.hooks {
		f()
	}
}

func (b *Busy) Released() bool {
	return b == nil || b.released
}
