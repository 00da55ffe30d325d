package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"go.seanlatimer.dev/imgedit/internal/editor"
)

const (
	defaultListHeight = 10
)

func renderButton(b *editor.Button, focused bool) string {
	style := getStyles().ButtonStyle
	if !b.Enabled() {
		style = getStyles().BusyButtonStyle
	}
	label := "[ " + b.Label() + " ]"
	if w := b.Pinned(); w > 0 {
		// Busy labels keep the footprint of the idle one.
		label = truncateToWidth(label, w)
		style = style.Width(w)
	}
	prefix := "  "
	if focused {
		prefix = "> "
	}
	return prefix + style.Render(label)
}

func renderSelector(label string, c *editor.Choice, focused bool) string {
	v := c.Value()
	if v == "" {
		v = noneLabel
	}
	value := getStyles().InputStyle.Render(v)
	if c.Marked() {
		value = getStyles().MarkedStyle.Render(v)
	}
	return renderLabel(label, focused) + value
}

func renderLabel(label string, focused bool) string {
	if focused {
		return getStyles().SelectedStyle.Render("> " + label + ": ")
	}
	return getStyles().LabelStyle.Render("  " + label + ": ")
}

func renderCheckbox(label string, on, focused bool) string {
	mark := " "
	if on {
		mark = "x"
	}
	return renderLabel(label, focused) + fmt.Sprintf("[%s]", mark)
}

// renderCells draws the preview of the image reference list.
func renderCells(cells []editor.Cell, cursor int, focused bool, width int) []string {
	lines := make([]string, 0, len(cells))
	for i, c := range cells {
		mark := " "
		if focused && i == cursor {
			mark = ">"
		}
		var text string
		switch c.State {
		case editor.CellEmpty:
			text = getStyles().SubtleStyle.Render(c.Label())
		case editor.CellBroken:
			text = getStyles().BrokenStyle.Render(c.Label())
		case editor.CellLoading:
			text = c.Ref + getStyles().SubtleStyle.Render(" (loading)")
		default:
			text = c.Ref
		}
		line := fmt.Sprintf("%s %s", mark, text)
		if focused && i == cursor {
			line = getStyles().SelectedStyle.Render(line)
		}
		lines = append(lines, truncateToWidth(line, width))
	}
	return lines
}

func renderGallery(names []string, cursor int, focused bool, width int) []string {
	if len(names) == 0 {
		return []string{getStyles().FooterStyle.Render("  (no images)")}
	}
	limit := min(len(names), defaultListHeight)
	start := 0
	if cursor >= limit {
		start = cursor - limit + 1
	}
	lines := make([]string, 0, limit)
	for i := start; i < start+limit && i < len(names); i++ {
		mark := " "
		if focused && i == cursor {
			mark = ">"
		}
		line := fmt.Sprintf("%s %s", mark, names[i])
		if focused && i == cursor {
			line = getStyles().SelectedStyle.Render(line)
		}
		lines = append(lines, truncateToWidth(line, width))
	}
	return lines
}

func renderStatus(status *editor.StatusLine, width int) string {
	n, ok := status.Last()
	if !ok {
		return ""
	}
	if n.Error {
		return truncateToWidth(getStyles().ErrorStyle.Render("✗ "+n.Text), width)
	}
	return truncateToWidth(getStyles().SuccessStyle.Render("✓ "+n.Text), width)
}

func renderFooter(width int) string {
	footer := "Tab move • Enter choose • ^S save • ^X delete • ^O duplicate • ^T insert style • ^A append style • ^E preview • ^U upload • ^R run • ^L reload • ^Q quit"
	return truncateToWidth(getStyles().FooterStyle.Render(footer), width)
}

func section(title string, lines []string) string {
	body := append([]string{getStyles().SelectedStyle.Render(title)}, lines...)
	return getStyles().BorderStyle.Render(strings.Join(body, "\n"))
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Truncate(text, width, "…")
}
