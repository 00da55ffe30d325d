// Package editor keeps the editor form in sync with the server: preset
// bindings, the name overrides, the image reference list, the model sizes
// and form submission. It holds state and returns tea.Cmds; it renders
// nothing.
package editor

import (
	"context"
	"net/url"
	"slices"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"go.seanlatimer.dev/imgedit/internal/api"
	"go.seanlatimer.dev/imgedit/internal/presets"
)

// Widgets are the form controls the editor drives. NewWidgets fills them
// with in-memory implementations; a UI swaps in its own.
type Widgets struct {
	PromptPreset Selector
	PromptCustom TextField
	PromptText   TextField
	StylePreset  Selector
	StyleCustom  TextField
	StyleText    TextField

	Model Selector
	Size  Selector

	ImageURLs  TextField
	UploadPath TextField

	GalleryWidth  TextField
	GalleryHeight TextField

	ModalInput   TextField
	ModalConfirm Control
	Duplicate    Control
	Upload       Control
	Run          Control
}

func NewWidgets() Widgets {
	return Widgets{
		PromptPreset:  NewChoice(),
		PromptCustom:  NewField(""),
		PromptText:    NewField(""),
		StylePreset:   NewChoice(),
		StyleCustom:   NewField(""),
		StyleText:     NewField(""),
		Model:         NewChoice(),
		Size:          NewChoice(),
		ImageURLs:     NewField(""),
		UploadPath:    NewField(""),
		GalleryWidth:  NewField(strconv.Itoa(api.DefaultGalleryWidth)),
		GalleryHeight: NewField(strconv.Itoa(api.DefaultGalleryHeight)),
		ModalInput:    NewField(""),
		ModalConfirm:  NewButton("Confirm"),
		Duplicate:     NewButton("Duplicate"),
		Upload:        NewButton("Upload"),
		Run:           NewButton("Run"),
	}
}

// result is a response message that knows which controller it belongs to.
type result interface {
	apply() tea.Cmd
}

// Editor assembles the controllers over one set of widgets.
type Editor struct {
	W Widgets

	Modal   *Modal
	Prompt  *PresetController
	Style   *PresetController
	Names   []*DualInput
	Images  *ImageList
	Sizes   *ModelSizes
	Guard   *Guard
	Notices Notifier

	IncludeMetadata bool
	Generated       []string
	Gallery         []string

	backend Backend
	loaded  bool
}

// Options configure New. Prober may be nil; Notifier defaults to a
// StatusLine.
type Options struct {
	Backend  Backend
	Prober   Prober
	Notifier Notifier
}

func New(w Widgets, opts Options) *Editor {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = &StatusLine{}
	}
	e := &Editor{W: w, Notices: notifier, backend: opts.Backend, IncludeMetadata: true}
	e.Modal = NewModal(w.ModalInput, w.ModalConfirm)

	e.Prompt = NewPresetController(PromptConfig(), PresetDeps{
		Backend:   opts.Backend,
		Selector:  w.PromptPreset,
		Text:      w.PromptText,
		Duplicate: w.Duplicate,
		Modal:     e.Modal,
		Notifier:  notifier,
		Reload:    e.Reload,
	})
	e.Style = NewPresetController(StyleConfig(), PresetDeps{
		Backend:      opts.Backend,
		Selector:     w.StylePreset,
		Text:         w.StyleText,
		InsertTarget: w.PromptText,
		Modal:        e.Modal,
		Notifier:     notifier,
		Reload:       e.Reload,
	})

	e.Names = PairDualInputs(
		map[string]Selector{
			api.FieldPromptPreset: w.PromptPreset,
			api.FieldStylePreset:  w.StylePreset,
		},
		map[string]TextField{
			api.FieldPromptCustom: w.PromptCustom,
			api.FieldStyleCustom:  w.StyleCustom,
		},
	)

	e.Images = NewImageList(ImageListDeps{
		Backend:  opts.Backend,
		Prober:   opts.Prober,
		Text:     w.ImageURLs,
		File:     w.UploadPath,
		Upload:   w.Upload,
		Notifier: notifier,
	})
	e.Sizes = NewModelSizes(opts.Backend, w.Model, w.Size, e.Images)
	e.Guard = NewGuard(GuardDeps{
		Backend:       opts.Backend,
		Run:           w.Run,
		AppendStyle:   w.StylePreset,
		GalleryWidth:  w.GalleryWidth,
		GalleryHeight: w.GalleryHeight,
		Notifier:      notifier,
		Form:          e.Form,
		Apply:         e.ApplyPage,
	})
	return e
}

// Controller returns the preset controller for kind.
func (e *Editor) Controller(kind presets.Kind) *PresetController {
	if kind == presets.KindStyle {
		return e.Style
	}
	return e.Prompt
}

// Name returns the dual input group with the given base name ("prompt_name"
// or "style_name").
func (e *Editor) Name(base string) *DualInput {
	for _, d := range e.Names {
		if d.Name == base {
			return d
		}
	}
	return nil
}

// Loaded reports whether a page has been applied.
func (e *Editor) Loaded() bool { return e.loaded }

// Update routes a response message to the controller that issued it.
func (e *Editor) Update(msg tea.Msg) tea.Cmd {
	if r, ok := msg.(result); ok {
		return r.apply()
	}
	return nil
}

// Load fetches the page, optionally pre-selecting a prompt and model.
func (e *Editor) Load(prompt, model string) tea.Cmd {
	query := url.Values{}
	if prompt != "" {
		query.Set("prompt", prompt)
	}
	if model != "" {
		query.Set("model", model)
	}
	return e.fetch(query, "", "")
}

// Reload re-fetches the page and keeps nothing but the preset to select.
func (e *Editor) Reload(kind presets.Kind, name string) tea.Cmd {
	query := url.Values{}
	if kind == presets.KindPrompt && name != "" {
		query.Set("prompt", name)
	}
	if model := e.W.Model.Value(); model != "" {
		query.Set("model", model)
	}
	return e.fetch(query, kind, name)
}

func (e *Editor) fetch(query url.Values, kind presets.Kind, name string) tea.Cmd {
	backend, id := e.backend, newRequestID()
	return func() tea.Msg {
		var page api.Page
		err := call(id, func(ctx context.Context) error {
			var err error
			page, err = backend.Page(ctx, query)
			return err
		})
		return pageMsg{editor: e, id: id, kind: kind, name: name, page: page, err: err}
	}
}

type pageMsg struct {
	editor *Editor
	id     string
	kind   presets.Kind
	name   string
	page   api.Page
	err    error
}

func (m pageMsg) apply() tea.Cmd {
	if m.err != nil {
		logf(m.id, "load page: %v", m.err)
		m.editor.Notices.Error(api.Message(m.err, "Failed to load the editor page."))
		return nil
	}
	cmd := m.editor.ApplyPage(m.page)
	if m.name == "" {
		return cmd
	}
	return tea.Batch(cmd, m.editor.reselect(m.kind, m.name))
}

// reselect selects name after a reload when the page did not already.
func (e *Editor) reselect(kind presets.Kind, name string) tea.Cmd {
	ctrl := e.Controller(kind)
	sel := ctrl.deps.Selector
	if sel.Value() == name || !slices.Contains(sel.Options(), name) {
		return nil
	}
	cmd := ctrl.Select(name)
	if d := e.Name(string(kind) + "_name"); d != nil {
		d.OnSelect()
	}
	return cmd
}

// ApplyPage replaces the editor state with what the server rendered.
func (e *Editor) ApplyPage(p api.Page) tea.Cmd {
	w := e.W
	e.loaded = true

	// The page wins over anything still in flight.
	e.Prompt.seq.Next()
	e.Sizes.seq.Next()

	w.PromptPreset.SetOptions(p.PromptNames)
	w.PromptPreset.SetValue(p.SelectedPrompt)
	w.PromptCustom.SetValue(p.PromptCustom)
	w.PromptText.SetValue(p.PromptText)

	w.StylePreset.SetOptions(p.StyleNames)
	w.StyleCustom.SetValue(p.StyleCustom)
	var cmds []tea.Cmd
	cmds = append(cmds, e.Style.Select(p.SelectedStyle))

	w.Model.SetOptions(p.Models)
	w.Model.SetValue(p.SelectedModel)
	w.Size.SetOptions(p.Sizes)
	w.Size.SetValue(p.SelectedSize)

	e.IncludeMetadata = p.IncludeMetadata
	w.ImageURLs.SetValue(p.ImageURLs)
	e.Images.SetVisible(p.SupportsImageURLs)
	w.GalleryWidth.SetValue(strconv.Itoa(p.GalleryWidth))
	w.GalleryHeight.SetValue(strconv.Itoa(p.GalleryHeight))
	e.Generated = slices.Clone(p.Generated)
	e.Gallery = slices.Clone(p.Gallery)

	for _, d := range e.Names {
		d.Init()
	}
	if e.Images.Preview() {
		cmds = append(cmds, e.Images.Render(ParseRefs(w.ImageURLs.Value())))
	}

	if p.Status != "" {
		e.Notices.Info(p.Status)
	}
	if p.Error != "" {
		e.Notices.Error(p.Error)
	}
	return tea.Batch(cmds...)
}

// Form collects the values the page form would post.
func (e *Editor) Form() url.Values {
	w := e.W
	form := url.Values{}
	form.Set(api.FieldPromptPreset, w.PromptPreset.Value())
	form.Set(api.FieldPromptCustom, w.PromptCustom.Value())
	form.Set(api.FieldPromptText, w.PromptText.Value())
	form.Set(api.FieldStylePreset, w.StylePreset.Value())
	form.Set(api.FieldStyleCustom, w.StyleCustom.Value())
	form.Set(api.FieldModel, w.Model.Value())
	form.Set(api.FieldSize, w.Size.Value())
	if e.IncludeMetadata {
		form.Set(api.FieldIncludeMetadata, "on")
	}
	form.Set(api.FieldImageURLs, w.ImageURLs.Value())
	form.Set(api.FieldGalleryWidth, w.GalleryWidth.Value())
	form.Set(api.FieldGalleryHeight, w.GalleryHeight.Value())
	return form
}

// LoadAsset asks the server to restore the prompt stored in an asset.
func (e *Editor) LoadAsset(name string) tea.Cmd {
	return e.Guard.Activate(Trigger{
		Action: SubmitAssetLoad,
		Extra:  url.Values{api.FieldAssetFilename: {name}},
	})
}

// DeleteAsset asks for confirmation, then deletes an asset.
func (e *Editor) DeleteAsset(name string) tea.Cmd {
	return e.Guard.Activate(Trigger{
		Action:  SubmitAssetDelete,
		Extra:   url.Values{api.FieldAssetFilename: {name}},
		Confirm: "Delete asset '" + name + "'?",
	})
}

// ConfirmModal confirms whichever preset session is open.
func (e *Editor) ConfirmModal() tea.Cmd {
	if !e.Modal.IsOpen() {
		return nil
	}
	s := e.Modal.Session()
	ctrl := e.Controller(s.Kind)
	switch s.Action {
	case ActionSave:
		return ctrl.ConfirmSave()
	case ActionDelete:
		return ctrl.ConfirmDelete()
	}
	return nil
}

// Drive runs cmd and every command its messages produce until none are
// left. It is the headless counterpart of the Bubble Tea runtime.
func (e *Editor) Drive(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			queue = append(queue, e.Update(msg))
		}
	}
}
