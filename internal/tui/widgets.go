package tui

import (
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
)

// inputField exposes a textinput to the editor.
type inputField struct {
	m *textinput.Model
}

func (f inputField) Value() string { return f.m.Value() }
func (f inputField) SetValue(v string) { f.m.SetValue(v) }
func (f inputField) Focus() { f.m.Focus() }

// areaField exposes a textarea to the editor.
type areaField struct {
	m *textarea.Model
}

func (f areaField) Value() string { return f.m.Value() }
func (f areaField) SetValue(v string) { f.m.SetValue(v) }
func (f areaField) Focus() { f.m.Focus() }

func newInput(placeholder string, width int) *textinput.Model {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = placeholder
	input.SetWidth(width)
	return &input
}

func newArea(placeholder string, height int) *textarea.Model {
	area := textarea.New()
	area.Placeholder = placeholder
	area.ShowLineNumbers = false
	area.SetHeight(height)
	return &area
}
