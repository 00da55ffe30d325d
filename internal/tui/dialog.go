package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"go.seanlatimer.dev/imgedit/internal/editor"
	"go.seanlatimer.dev/imgedit/internal/presets"
)

const dialogWidth = 48

// dialogView draws the open name/confirm dialog, or "" when none is open.
func (m *Model) dialogView() string {
	if t, ok := m.editor.Guard.Pending(); ok {
		return renderConfirm(t)
	}
	if !m.editor.Modal.IsOpen() {
		return ""
	}
	return renderSession(m.editor.Modal.Session(), m.modalInput.View(), m.modalInput.Value(), m.confirm)
}

func renderSession(s editor.Session, inputView, input string, confirm *editor.Button) string {
	fixedWidth := lipgloss.NewStyle().Width(dialogWidth)
	title := s.Kind.Title()

	var lines []string
	switch s.Action {
	case editor.ActionSave:
		lines = append(lines, fixedWidth.Render(getStyles().SelectedStyle.Render("Save "+title)), "")
		lines = append(lines, getStyles().LabelStyle.Render("Name: ")+getStyles().InputStyle.Render(inputView))
		if stored := presets.NormalizeName(input); stored != "" && stored != input {
			lines = append(lines, fixedWidth.Render(getStyles().SubtleStyle.Render("Stored as: "+stored)))
		}
	case editor.ActionDelete:
		lines = append(lines, fixedWidth.Render(getStyles().SelectedStyle.Render("Delete "+title)), "")
		lines = append(lines, fixedWidth.Render(s.Prompt))
	default:
		lines = append(lines, fixedWidth.Render(getStyles().SelectedStyle.Render("Confirm")), "")
		lines = append(lines, fixedWidth.Render(s.Prompt))
	}
	lines = append(lines, "", renderButton(confirm, false))
	lines = append(lines, "", fixedWidth.Render(getStyles().FooterStyle.Render("Enter confirm • Esc cancel")))
	return getStyles().DialogStyle.Render(strings.Join(lines, "\n"))
}

func renderConfirm(t editor.Trigger) string {
	fixedWidth := lipgloss.NewStyle().Width(dialogWidth)
	lines := []string{
		fixedWidth.Render(getStyles().SelectedStyle.Render("Confirm")),
		"",
		fixedWidth.Render(t.Confirm),
		"",
		fixedWidth.Render(getStyles().FooterStyle.Render("y confirm • n/Esc/Enter cancel (default: No)")),
	}
	return getStyles().DialogStyle.Render(strings.Join(lines, "\n"))
}

// centered reports where lipgloss.Place puts content in a w×h area.
func centered(content string, w, h int) (left, top, cw, ch int) {
	cw = lipgloss.Width(content)
	ch = lipgloss.Height(content)
	left = max(0, (w-cw)/2)
	top = max(0, (h-ch)/2)
	return left, top, cw, ch
}
