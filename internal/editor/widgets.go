package editor

import (
	"slices"

	"charm.land/lipgloss/v2"
)

// TextField is any control holding a single string value.
type TextField interface {
	Value() string
	SetValue(string)
}

// Control is a clickable action whose label and enabled state the
// controllers toggle while a request is outstanding.
type Control interface {
	Label() string
	SetLabel(string)
	Enabled() bool
	SetEnabled(bool)
}

// Selector is a single-choice list. Marked is a styling state only: a marked
// selector stays interactive.
type Selector interface {
	Value() string
	SetValue(string)
	Options() []string
	SetOptions([]string)
	Marked() bool
	SetMarked(bool)
}

// Focuser is implemented by widgets that can take keyboard focus.
type Focuser interface {
	Focus()
}

// Sizer is implemented by controls whose rendered width can be pinned.
// PinWidth(0) releases the pin.
type Sizer interface {
	Width() int
	PinWidth(int)
}

// Field is an in-memory TextField.
type Field struct {
	value   string
	focused bool
}

func NewField(value string) *Field { return &Field{value: value} }

func (f *Field) Value() string { return f.value }
func (f *Field) SetValue(v string) { f.value = v }
func (f *Field) Focus() { f.focused = true }
func (f *Field) Blur() { f.focused = false }
func (f *Field) Focused() bool { return f.focused }

// Button is an in-memory Control and Sizer.
type Button struct {
	label    string
	disabled bool
	pinned   int
}

func NewButton(label string) *Button { return &Button{label: label} }

func (b *Button) Label() string { return b.label }
func (b *Button) SetLabel(l string) { b.label = l }
func (b *Button) Enabled() bool { return !b.disabled }
func (b *Button) SetEnabled(on bool) { b.disabled = !on }
func (b *Button) PinWidth(w int) { b.pinned = max(w, 0) }
func (b *Button) Pinned() int { return b.pinned }

// Width is the rendered cell width of the label, or the pinned width.
func (b *Button) Width() int {
	if b.pinned > 0 {
		return b.pinned
	}
	return lipgloss.Width("[ " + b.label + " ]")
}

// Choice is an in-memory Selector.
type Choice struct {
	value   string
	options []string
	marked  bool
}

func NewChoice(options ...string) *Choice {
	return &Choice{options: slices.Clone(options)}
}

func (c *Choice) Value() string { return c.value }
func (c *Choice) SetValue(v string) { c.value = v }
func (c *Choice) Options() []string { return slices.Clone(c.options) }
func (c *Choice) Marked() bool { return c.marked }
func (c *Choice) SetMarked(m bool) { c.marked = m }

// SetOptions replaces the options. A value no longer offered is cleared.
func (c *Choice) SetOptions(options []string) {
	c.options = slices.Clone(options)
	if c.value != "" && !slices.Contains(c.options, c.value) {
		c.value = ""
	}
}

func focus(w any) {
	if f, ok := w.(Focuser); ok {
		f.Focus()
	}
}
