// Package tui hosts the editor in a Bubble Tea program.
package tui

import (
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	"charm.land/lipgloss/v2"
	"go.seanlatimer.dev/imgedit/internal/editor"
	"go.seanlatimer.dev/imgedit/internal/presets"
)

var ErrCancelled = errors.New("selection cancelled")

type pane int

const (
	panePromptPreset pane = iota
	panePromptCustom
	panePromptText
	paneStylePreset
	paneStyleCustom
	paneStyleText
	paneModel
	paneSize
	paneMetadata
	paneImages
	paneUpload
	paneGalleryWidth
	paneGalleryHeight
	paneGallery
	paneRun
	paneCount
)

// Options configure the editor program.
type Options struct {
	Prompt  string
	Model   string
	LogPath string
}

// Model is the editor screen.
type Model struct {
	editor *editor.Editor
	status *editor.StatusLine
	opts   Options

	promptCustom  *textinput.Model
	styleCustom   *textinput.Model
	uploadPath    *textinput.Model
	galleryWidth  *textinput.Model
	galleryHeight *textinput.Model
	modalInput    *textinput.Model
	promptText    *textarea.Model
	styleText     *textarea.Model
	imageURLs     *textarea.Model

	promptPreset *editor.Choice
	stylePreset  *editor.Choice
	model        *editor.Choice
	size         *editor.Choice
	confirm      *editor.Button
	duplicate    *editor.Button
	upload       *editor.Button
	run          *editor.Button

	focus         pane
	picker        *picker
	pickFor       pane
	appendPick    bool
	imageCursor   int
	galleryCursor int
	width         int
	height        int
}

func NewModel(backend editor.Backend, prober editor.Prober, opts Options) *Model {
	m := &Model{
		status:        &editor.StatusLine{},
		opts:          opts,
		promptCustom:  newInput("new prompt name", 30),
		styleCustom:   newInput("new style name", 30),
		uploadPath:    newInput("path to a local image", 30),
		galleryWidth:  newInput("3", 4),
		galleryHeight: newInput("100", 6),
		modalInput:    newInput("name", 36),
		promptText:    newArea("Describe the image...", 6),
		styleText:     newArea("Style text", 4),
		imageURLs:     newArea("One image URL per line", 4),
		promptPreset:  editor.NewChoice(),
		stylePreset:   editor.NewChoice(),
		model:         editor.NewChoice(),
		size:          editor.NewChoice(),
		confirm:       editor.NewButton("Confirm"),
		duplicate:     editor.NewButton("Duplicate"),
		upload:        editor.NewButton("Upload"),
		run:           editor.NewButton("Run"),
	}

	w := editor.Widgets{
		PromptPreset:  m.promptPreset,
		PromptCustom:  inputField{m.promptCustom},
		PromptText:    areaField{m.promptText},
		StylePreset:   m.stylePreset,
		StyleCustom:   inputField{m.styleCustom},
		StyleText:     areaField{m.styleText},
		Model:         m.model,
		Size:          m.size,
		ImageURLs:     areaField{m.imageURLs},
		UploadPath:    inputField{m.uploadPath},
		GalleryWidth:  inputField{m.galleryWidth},
		GalleryHeight: inputField{m.galleryHeight},
		ModalInput:    inputField{m.modalInput},
		ModalConfirm:  m.confirm,
		Duplicate:     m.duplicate,
		Upload:        m.upload,
		Run:           m.run,
	}
	m.editor = editor.New(w, editor.Options{Backend: backend, Prober: prober, Notifier: m.status})
	m.setFocus(panePromptText)
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(tea.RequestBackgroundColor, m.editor.Load(m.opts.Prompt, m.opts.Model))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.BackgroundColorMsg:
		appStyles = newStyles()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.MouseClickMsg:
		mouse := msg.Mouse()
		m.click(mouse.X, mouse.Y)
		return m, nil
	case tea.KeyMsg:
		return m, m.dispatch(msg.String(), msg)
	}

	cmd := m.editor.Update(msg)
	if !m.editor.Modal.IsOpen() && m.modalInput.Focused() {
		m.setFocus(m.focus)
	}
	return m, tea.Batch(cmd, m.forward(msg))
}

func (m *Model) resize() {
	col := m.columnWidth()
	for _, area := range []*textarea.Model{m.promptText, m.styleText, m.imageURLs} {
		area.SetWidth(col - 4)
	}
	for _, input := range []*textinput.Model{m.promptCustom, m.styleCustom, m.uploadPath} {
		input.SetWidth(col - 20)
	}
}

func (m *Model) columnWidth() int {
	if m.width <= 0 {
		return 60
	}
	if m.width >= 100 {
		return max(40, (m.width-2)/2)
	}
	return max(40, m.width-2)
}

// dispatch handles one key. msg is forwarded to the focused widget when the
// key is not an editor binding; it may be nil.
func (m *Model) dispatch(key string, msg tea.Msg) tea.Cmd {
	if m.picker != nil {
		var cmd tea.Cmd
		var res *pickerResult
		if msg != nil {
			cmd, res = m.picker.update(msg)
		} else {
			res = m.picker.press(key)
		}
		if res == nil {
			return cmd
		}
		m.picker = nil
		if res.cancelled {
			return nil
		}
		return m.picked(res.value)
	}

	if _, ok := m.editor.Guard.Pending(); ok {
		switch strings.ToLower(key) {
		case "y":
			return m.editor.Guard.ConfirmYes()
		case "n", "esc", "enter", "ctrl+c":
			m.editor.Guard.ConfirmNo()
		}
		return nil
	}

	if m.editor.Modal.IsOpen() {
		switch key {
		case "esc":
			m.editor.Modal.Cancel()
			m.setFocus(m.focus)
			return nil
		case "enter":
			return m.editor.ConfirmModal()
		}
		if msg == nil {
			return nil
		}
		var cmd tea.Cmd
		*m.modalInput, cmd = m.modalInput.Update(msg)
		return cmd
	}

	switch key {
	case "ctrl+c", "ctrl+q":
		return tea.Quit
	case "tab":
		m.setFocus((m.focus + 1) % paneCount)
		return nil
	case "shift+tab":
		m.setFocus((m.focus + paneCount - 1) % paneCount)
		return nil
	case "ctrl+s":
		kind := m.focusKind()
		if m.editor.Controller(kind).Save() == nil {
			if name := m.editor.Name(kind.String() + "_name").Authoritative(); name != "" {
				m.modalInput.SetValue(name)
			}
			m.blurAll()
		}
		return nil
	case "ctrl+x":
		if m.editor.Controller(m.focusKind()).Delete() == nil {
			m.blurAll()
		}
		return nil
	case "ctrl+o":
		return m.editor.Prompt.Duplicate()
	case "ctrl+t":
		m.editor.Style.Insert()
		return nil
	case "ctrl+u":
		return m.editor.Images.Upload()
	case "ctrl+e":
		m.imageCursor = 0
		return m.editor.Images.Toggle()
	case "ctrl+r":
		return m.editor.Guard.Run()
	case "ctrl+l":
		return m.editor.Reload(presets.KindPrompt, m.promptPreset.Value())
	case "ctrl+a":
		m.openPicker(paneStylePreset, true)
		return nil
	}

	return m.paneKey(key, msg)
}

func (m *Model) paneKey(key string, msg tea.Msg) tea.Cmd {
	switch m.focus {
	case panePromptPreset, paneStylePreset, paneModel, paneSize:
		if key == "enter" || key == "space" {
			m.openPicker(m.focus, false)
		}
		return nil
	case paneMetadata:
		if key == "enter" || key == "space" {
			m.editor.IncludeMetadata = !m.editor.IncludeMetadata
		}
		return nil
	case paneImages:
		if m.editor.Images.Preview() {
			return m.previewKey(key)
		}
	case paneUpload:
		if key == "enter" {
			return m.editor.Images.Upload()
		}
	case paneGalleryWidth, paneGalleryHeight:
		if key == "enter" {
			return m.editor.Guard.OnDimensionChange()
		}
	case paneGallery:
		return m.galleryKey(key)
	case paneRun:
		if key == "enter" {
			return m.editor.Guard.Run()
		}
		return nil
	}

	cmd := m.forward(msg)
	switch m.focus {
	case panePromptCustom:
		m.editor.Name("prompt_name").OnInput()
	case paneStyleCustom:
		m.editor.Name("style_name").OnInput()
	}
	return cmd
}

func (m *Model) previewKey(key string) tea.Cmd {
	cells := m.editor.Images.Cells()
	if len(cells) == 0 {
		return nil
	}
	m.imageCursor = min(max(m.imageCursor, 0), len(cells)-1)
	switch key {
	case "up", "k":
		m.imageCursor = max(0, m.imageCursor-1)
	case "down", "j":
		m.imageCursor = min(len(cells)-1, m.imageCursor+1)
	case "x", "delete":
		if m.imageCursor >= len(cells) || cells[m.imageCursor].Index < 0 {
			return nil
		}
		cmd, err := m.editor.Images.Remove(m.editor.Images.Generation(), cells[m.imageCursor].Index)
		if err != nil {
			m.status.Error("The image list changed. Try again.")
			return nil
		}
		m.imageCursor = min(m.imageCursor, max(0, len(cells)-2))
		return cmd
	case "y":
		if m.imageCursor >= len(cells) || cells[m.imageCursor].Index < 0 {
			return nil
		}
		if err := m.editor.Images.Copy(m.editor.Images.Generation(), cells[m.imageCursor].Index); err != nil {
			m.status.Error(err.Error())
		}
	}
	return nil
}

func (m *Model) galleryKey(key string) tea.Cmd {
	gallery := m.editor.Gallery
	if len(gallery) == 0 {
		return nil
	}
	m.galleryCursor = min(m.galleryCursor, len(gallery)-1)
	switch key {
	case "up", "k":
		m.galleryCursor = max(0, m.galleryCursor-1)
	case "down", "j":
		m.galleryCursor = min(len(gallery)-1, m.galleryCursor+1)
	case "enter":
		return m.editor.LoadAsset(gallery[m.galleryCursor])
	case "d", "delete":
		return m.editor.DeleteAsset(gallery[m.galleryCursor])
	}
	return nil
}

// forward passes msg to the focused text widget.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	if msg == nil {
		return nil
	}
	var cmd tea.Cmd
	switch m.focus {
	case panePromptCustom:
		*m.promptCustom, cmd = m.promptCustom.Update(msg)
	case paneStyleCustom:
		*m.styleCustom, cmd = m.styleCustom.Update(msg)
	case panePromptText:
		*m.promptText, cmd = m.promptText.Update(msg)
	case paneStyleText:
		*m.styleText, cmd = m.styleText.Update(msg)
	case paneImages:
		if !m.editor.Images.Preview() {
			*m.imageURLs, cmd = m.imageURLs.Update(msg)
		}
	case paneUpload:
		*m.uploadPath, cmd = m.uploadPath.Update(msg)
	case paneGalleryWidth:
		*m.galleryWidth, cmd = m.galleryWidth.Update(msg)
	case paneGalleryHeight:
		*m.galleryHeight, cmd = m.galleryHeight.Update(msg)
	}
	return cmd
}

func (m *Model) openPicker(target pane, appendStyle bool) {
	var title string
	var names []string
	var current string
	allowEmpty := false
	switch target {
	case panePromptPreset:
		title, names, current, allowEmpty = "Select Prompt", m.promptPreset.Options(), m.promptPreset.Value(), true
	case paneStylePreset:
		title, names, current, allowEmpty = "Select Style", m.stylePreset.Options(), m.stylePreset.Value(), !appendStyle
		if appendStyle {
			title = "Append Style"
		}
	case paneModel:
		title, names, current = "Select Model", m.model.Options(), m.model.Value()
	case paneSize:
		title, names, current = "Select Size", m.size.Options(), m.size.Value()
	default:
		return
	}
	m.picker = newPicker(title, names, current, allowEmpty)
	m.pickFor = target
	m.appendPick = appendStyle
}

func (m *Model) picked(value string) tea.Cmd {
	switch m.pickFor {
	case panePromptPreset:
		cmd := m.editor.Prompt.Select(value)
		m.editor.Name("prompt_name").OnSelect()
		return cmd
	case paneStylePreset:
		if m.appendPick {
			// The lookup keeps the style text bound to the new selection
			// even when the append itself fails.
			lookup := m.editor.Style.Select(value)
			m.editor.Name("style_name").OnSelect()
			return tea.Batch(lookup, m.editor.Guard.OnAppendSelect())
		}
		cmd := m.editor.Style.Select(value)
		m.editor.Name("style_name").OnSelect()
		return cmd
	case paneModel:
		m.model.SetValue(value)
		return m.editor.Sizes.OnModelChange()
	case paneSize:
		m.size.SetValue(value)
	}
	return nil
}

// focusKind is the preset kind the save and delete keys act on.
func (m *Model) focusKind() presets.Kind {
	switch m.focus {
	case paneStylePreset, paneStyleCustom, paneStyleText:
		return presets.KindStyle
	}
	return presets.KindPrompt
}

func (m *Model) blurAll() {
	for _, input := range []*textinput.Model{m.promptCustom, m.styleCustom, m.uploadPath, m.galleryWidth, m.galleryHeight} {
		input.Blur()
	}
	for _, area := range []*textarea.Model{m.promptText, m.styleText, m.imageURLs} {
		area.Blur()
	}
}

func (m *Model) setFocus(p pane) {
	m.blurAll()
	m.modalInput.Blur()
	m.focus = p
	switch p {
	case panePromptCustom:
		m.promptCustom.Focus()
	case paneStyleCustom:
		m.styleCustom.Focus()
	case panePromptText:
		m.promptText.Focus()
	case paneStyleText:
		m.styleText.Focus()
	case paneImages:
		m.imageURLs.Focus()
	case paneUpload:
		m.uploadPath.Focus()
	case paneGalleryWidth:
		m.galleryWidth.Focus()
	case paneGalleryHeight:
		m.galleryHeight.Focus()
	}
}

// click treats a click outside an open dialog as cancel.
func (m *Model) click(x, y int) {
	if !m.editor.Modal.IsOpen() || m.width <= 0 || m.height <= 0 {
		return
	}
	left, top, w, h := centered(m.dialogView(), m.width, m.height)
	if x < left || x >= left+w || y < top || y >= top+h {
		m.editor.Modal.ClickOutside()
		m.setFocus(m.focus)
	}
}

func (m *Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.SetContent(m.render())
	return v
}

func (m *Model) render() string {
	width, height := m.width, m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	if m.picker != nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.picker.view())
	}
	if d := m.dialogView(); d != "" {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, d)
	}

	col := m.columnWidth()
	left := lipgloss.JoinVertical(lipgloss.Left, m.presetSection(presets.KindPrompt, col), m.presetSection(presets.KindStyle, col))
	right := lipgloss.JoinVertical(lipgloss.Left, m.modelSection(col), m.imageSection(col), m.gallerySection(col))
	var body string
	if m.width >= 100 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, left, right)
	}

	lines := []string{body, renderButton(m.run, m.focus == paneRun)}
	if !m.editor.Loaded() {
		lines = append(lines, getStyles().SubtleStyle.Render("Loading..."))
	}
	lines = append(lines, renderStatus(m.status, width), renderFooter(width))
	return strings.Join(lines, "\n")
}

func (m *Model) presetSection(kind presets.Kind, width int) string {
	selector, custom, text := m.promptPreset, m.promptCustom, m.promptText
	focusSelector, focusCustom, _ := panePromptPreset, panePromptCustom, panePromptText
	if kind == presets.KindStyle {
		selector, custom, text = m.stylePreset, m.styleCustom, m.styleText
		focusSelector, focusCustom, _ = paneStylePreset, paneStyleCustom, paneStyleText
	}

	lines := []string{
		renderSelector("Preset", selector, m.focus == focusSelector),
		renderLabel("New name", m.focus == focusCustom) + custom.View(),
		text.View(),
	}
	if kind == presets.KindPrompt {
		hint := renderButton(m.duplicate, false)
		if name := selector.Value(); name != "" {
			hint += getStyles().SubtleStyle.Render(" as " + presets.NextCopyName(name))
		}
		lines = append(lines, hint)
	}
	return lipgloss.NewStyle().Width(width).Render(section(kind.Title(), lines))
}

func (m *Model) modelSection(width int) string {
	lines := []string{
		renderSelector("Model", m.model, m.focus == paneModel),
		renderSelector("Size", m.size, m.focus == paneSize),
		renderCheckbox("Include metadata", m.editor.IncludeMetadata, m.focus == paneMetadata),
	}
	return lipgloss.NewStyle().Width(width).Render(section("Model", lines))
}

func (m *Model) imageSection(width int) string {
	focused := m.focus == paneImages
	var lines []string
	switch {
	case !m.editor.Images.Visible():
		lines = append(lines, getStyles().SubtleStyle.Render("This model does not take image references."))
	case m.editor.Images.Preview():
		lines = append(lines, renderLabel("References (x remove • y copy)", focused))
		lines = append(lines, renderCells(m.editor.Images.Cells(), m.imageCursor, focused, width-4)...)
	default:
		lines = append(lines, renderLabel("References", focused), m.imageURLs.View())
	}
	if m.editor.Images.Visible() {
		lines = append(lines, renderLabel("Upload", m.focus == paneUpload)+m.uploadPath.View()+" "+renderButton(m.upload, false))
	}
	return lipgloss.NewStyle().Width(width).Render(section("Images", lines))
}

func (m *Model) gallerySection(width int) string {
	lines := []string{
		renderLabel("Columns", m.focus == paneGalleryWidth) + m.galleryWidth.View() +
			renderLabel("Height", m.focus == paneGalleryHeight) + m.galleryHeight.View(),
	}
	lines = append(lines, renderGallery(m.editor.Gallery, m.galleryCursor, m.focus == paneGallery, width-4)...)
	return lipgloss.NewStyle().Width(width).Render(section("Gallery", lines))
}
