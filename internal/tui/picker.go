package tui

import (
	"fmt"
	"io"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/list"
	"charm.land/bubbles/v2/textinput"
	"charm.land/lipgloss/v2"
)

type pickerItem string

func (i pickerItem) Title() string { return string(i) }
func (i pickerItem) Description() string { return "" }
func (i pickerItem) FilterValue() string { return string(i) }

// picker chooses one name from a fuzzy-filtered list. allowEmpty adds a
// leading "(none)" entry that picks "".
type picker struct {
	title      string
	all        []string
	allowEmpty bool
	list       list.Model
	input      textinput.Model
	lastQuery  string
}

// pickerResult is what a picker reports once it is closed.
type pickerResult struct {
	value     string
	cancelled bool
}

const noneLabel = "(none)"

func newPicker(title string, names []string, current string, allowEmpty bool) *picker {
	input := textinput.New()
	input.Prompt = ""
	input.Placeholder = "Search..."
	input.SetWidth(40)
	input.Blur() // Start unfocused so navigation works immediately

	p := &picker{title: title, all: names, allowEmpty: allowEmpty, input: input}
	p.list = list.New(p.items(names), pickerDelegate{}, 0, 0)
	p.list.SetSize(44, defaultListHeight)
	p.list.SetShowTitle(false)
	p.list.SetShowStatusBar(false)
	p.list.SetShowHelp(false)
	p.list.SetFilteringEnabled(false)
	p.list.SetShowPagination(false)

	for i, item := range p.list.Items() {
		if value(item) == current {
			p.list.Select(i)
			break
		}
	}
	return p
}

func (p *picker) items(names []string) []list.Item {
	results := make([]list.Item, 0, len(names)+1)
	if p.allowEmpty {
		results = append(results, pickerItem(noneLabel))
	}
	for _, name := range names {
		results = append(results, pickerItem(name))
	}
	return results
}

func value(item list.Item) string {
	name, _ := item.(pickerItem)
	if name == noneLabel {
		return ""
	}
	return string(name)
}

// update handles one message. A non-nil result means the picker is done.
func (p *picker) update(msg tea.Msg) (tea.Cmd, *pickerResult) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		keyStr := msg.String()
		switch keyStr {
		case "ctrl+c":
			return nil, &pickerResult{cancelled: true}
		case "esc":
			// Layered escape: unfocus -> clear -> cancel
			if p.input.Focused() {
				p.input.Blur()
				return nil, nil
			}
			if p.input.Value() != "" {
				p.input.SetValue("")
				p.lastQuery = ""
				p.list.SetItems(p.items(p.all))
				return nil, nil
			}
			return nil, &pickerResult{cancelled: true}
		case "enter":
			item := p.list.SelectedItem()
			if item == nil {
				return nil, &pickerResult{cancelled: true}
			}
			return nil, &pickerResult{value: value(item)}
		case "/":
			if !p.input.Focused() {
				return p.input.Focus(), nil
			}
		}

		// Navigation works regardless of focus
		if keyStr == "up" || keyStr == "down" || (!p.input.Focused() && (keyStr == "k" || keyStr == "j")) {
			var cmd tea.Cmd
			p.list, cmd = p.list.Update(msg)
			return cmd, nil
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if p.input.Focused() {
		p.input, cmd = p.input.Update(msg)
		cmds = append(cmds, cmd)

		query := p.input.Value()
		if query != p.lastQuery {
			p.lastQuery = query
			p.list.SetItems(p.items(FilterNames(query, p.all)))
		}
	}
	p.list, cmd = p.list.Update(msg)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...), nil
}

func (p *picker) view() string {
	contentWidth := 44
	fixedWidth := lipgloss.NewStyle().Width(contentWidth)

	var lines []string
	lines = append(lines, fixedWidth.Render(getStyles().SelectedStyle.Render(p.title)), "")

	var searchLine string
	if p.input.Focused() {
		searchLine = getStyles().SelectedStyle.Render("/ ") + getStyles().InputStyle.Render(p.input.View())
	} else if p.input.Value() != "" {
		searchLine = getStyles().SubtleStyle.Render("/ ") + getStyles().InputStyle.Render(p.input.Value())
	} else {
		searchLine = getStyles().SubtleStyle.Render("/ Press / to search")
	}
	lines = append(lines, fixedWidth.Render(searchLine), "")

	if len(p.list.Items()) == 0 {
		lines = append(lines, getStyles().FooterStyle.Render("(no matches)"))
	} else {
		lines = append(lines, p.list.View())
	}
	lines = append(lines, "")

	footer := "Enter select • / search • Esc cancel"
	if p.input.Focused() {
		footer = "Type to filter • ↑↓ navigate • Esc done"
	}
	lines = append(lines, fixedWidth.Render(getStyles().FooterStyle.Render(footer)))
	return getStyles().DialogStyle.Render(strings.Join(lines, "\n"))
}

type pickerDelegate struct{}

func (d pickerDelegate) Height() int { return 1 }
func (d pickerDelegate) Spacing() int { return 0 }
func (d pickerDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d pickerDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(pickerItem)
	if !ok {
		return
	}
	cursor := " "
	if index == m.Index() {
		cursor = ">"
	}
	line := fmt.Sprintf("%s %s", cursor, string(item))
	if index == m.Index() {
		line = getStyles().SelectedStyle.Render(line)
	}
	fmt.Fprint(w, line)
}

// pickerModel runs a picker as its own program.
type pickerModel struct {
	picker *picker
	result *pickerResult
}

// PickName lets the user choose one of names. It returns ErrCancelled when
// the user backs out.
func PickName(title string, names []string) (string, error) {
	program := tea.NewProgram(pickerModel{picker: newPicker(title, names, "", false)})
	final, err := program.Run()
	if err != nil {
		return "", err
	}
	res := final.(pickerModel).result
	if res == nil || res.cancelled {
		return "", ErrCancelled
	}
	return res.value, nil
}

func (m pickerModel) Init() tea.Cmd {
	return tea.RequestBackgroundColor
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.BackgroundColorMsg); ok {
		appStyles = newStyles()
		return m, nil
	}
	cmd, res := m.picker.update(msg)
	if res != nil {
		m.result = res
		return m, tea.Quit
	}
	return m, cmd
}

func (m pickerModel) View() tea.View {
	v := tea.NewView("")
	v.SetContent(m.picker.view())
	return v
}

// press applies a bare key name. Used when there is no terminal event.
func (p *picker) press(key string) *pickerResult {
	switch key {
	case "up", "k":
		p.list.CursorUp()
	case "down", "j":
		p.list.CursorDown()
	case "enter":
		item := p.list.SelectedItem()
		if item == nil {
			return &pickerResult{cancelled: true}
		}
		return &pickerResult{value: value(item)}
	case "esc", "ctrl+c":
		return &pickerResult{cancelled: true}
	}
	return nil
}
