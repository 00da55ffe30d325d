package editor

import (
	"context"
	"net/url"
	"strconv"

	tea "charm.land/bubbletea/v2"
	"go.seanlatimer.dev/imgedit/internal/api"
)

// Form actions the server understands.
const (
	SubmitRun         = "run"
	SubmitAppendStyle = "append_style"
	SubmitAssetLoad   = "asset_load"
	SubmitAssetDelete = "asset_delete"
)

// Trigger is a control that submits the form. A non-empty Confirm marks it
// dangerous: the submission waits for a yes.
type Trigger struct {
	Action  string
	Extra   url.Values
	Confirm string
}

// GuardDeps are the collaborators of a Guard. Form collects the current form
// values; Apply takes over the page the server answers with.
type GuardDeps struct {
	Backend       Backend
	Run           Control
	AppendStyle   Selector
	GalleryWidth  TextField
	GalleryHeight TextField
	Notifier      Notifier
	Form          func() url.Values
	Apply         func(api.Page) tea.Cmd
}

// Guard wires form submission: auto-submit on dimension changes, the style
// append trigger, confirmation of dangerous triggers and the busy run
// button.
type Guard struct {
	deps    GuardDeps
	pending *Trigger
}

func NewGuard(deps GuardDeps) *Guard {
	return &Guard{deps: deps}
}

// Activate submits t, or parks it until ConfirmYes when it is dangerous.
func (g *Guard) Activate(t Trigger) tea.Cmd {
	if t.Confirm != "" {
		g.pending = &t
		return nil
	}
	return g.submit(t)
}

// Pending returns the trigger awaiting confirmation.
func (g *Guard) Pending() (Trigger, bool) {
	if g.pending == nil {
		return Trigger{}, false
	}
	return *g.pending, true
}

func (g *Guard) ConfirmYes() tea.Cmd {
	t := g.pending
	g.pending = nil
	if t == nil {
		return nil
	}
	return g.submit(*t)
}

// ConfirmNo cancels the pending trigger entirely.
func (g *Guard) ConfirmNo() {
	g.pending = nil
}

// Run submits the form through the run action.
func (g *Guard) Run() tea.Cmd {
	return g.Activate(Trigger{Action: SubmitRun})
}

// OnDimensionChange clamps the gallery dimensions the way the server does
// and submits.
func (g *Guard) OnDimensionChange() tea.Cmd {
	if g.deps.GalleryWidth != nil {
		g.deps.GalleryWidth.SetValue(strconv.Itoa(api.ClampGalleryWidth(g.deps.GalleryWidth.Value())))
	}
	if g.deps.GalleryHeight != nil {
		g.deps.GalleryHeight.SetValue(strconv.Itoa(api.ClampGalleryHeight(g.deps.GalleryHeight.Value())))
	}
	return g.submit(Trigger{})
}

// OnAppendSelect fires the hidden append action for a chosen style.
func (g *Guard) OnAppendSelect() tea.Cmd {
	if g.deps.AppendStyle == nil || g.deps.AppendStyle.Value() == "" {
		return nil
	}
	return g.Activate(Trigger{Action: SubmitAppendStyle})
}

func (g *Guard) submit(t Trigger) tea.Cmd {
	form := g.deps.Form()
	if t.Action != "" {
		form.Set(api.FieldAction, t.Action)
	}
	for key, values := range t.Extra {
		form[key] = values
	}

	var busy *Busy
	if t.Action == SubmitRun && g.deps.Run != nil {
		width := 0
		sizer, sized := g.deps.Run.(Sizer)
		if sized {
			width = sizer.Width()
		}
		var err error
		busy, err = Acquire(g.deps.Run, "Running...")
		if err != nil {
			g.deps.Notifier.Error(rejection(err, "", "running"))
			return nil
		}
		if sized {
			sizer.PinWidth(width)
			busy.OnRelease(func() { sizer.PinWidth(0) })
		}
	}

	backend, id := g.deps.Backend, newRequestID()
	return func() tea.Msg {
		var page api.Page
		err := call(id, func(ctx context.Context) error {
			var err error
			page, err = backend.Submit(ctx, form)
			return err
		})
		return submitMsg{guard: g, busy: busy, id: id, action: t.Action, page: page, err: err}
	}
}

type submitMsg struct {
	guard  *Guard
	busy   *Busy
	id     string
	action string
	page   api.Page
	err    error
}

func (m submitMsg) apply() tea.Cmd {
	defer m.busy.Release()
	g := m.guard
	if m.err != nil {
		logf(m.id, "submit %q: %v", m.action, m.err)
		g.deps.Notifier.Error(api.Message(m.err, "Request failed."))
		return nil
	}
	if g.deps.Apply == nil {
		return nil
	}
	return g.deps.Apply(m.page)
}
