package tui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.seanlatimer.dev/imgedit/internal/api"
	"go.seanlatimer.dev/imgedit/internal/presets"
	"go.seanlatimer.dev/imgedit/testutil"
)

func newTestModel(t *testing.T) (*Model, *testutil.FakeServer) {
	t.Helper()
	srv := testutil.NewFakeServer(t)
	client, err := api.New(srv.URL)
	if err != nil {
		t.Fatalf("api.New() error = %v", err)
	}
	m := NewModel(client, client, Options{})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, srv
}

func load(m *Model, prompt, model string) {
	m.editor.Drive(m.editor.Load(prompt, model))
}

func content(m *Model) string {
	return m.render()
}

func lastStatus(t *testing.T, m *Model) string {
	t.Helper()
	n, ok := m.status.Last()
	if !ok {
		t.Fatal("no notice")
	}
	return n.Text
}

func TestSaveStyleThroughDialog(t *testing.T) {
	m, srv := newTestModel(t)
	load(m, "", "")

	m.setFocus(paneStyleText)
	m.styleText.SetValue("black and white")
	m.dispatch("ctrl+s", nil)

	if !m.editor.Modal.IsOpen() {
		t.Fatal("save dialog not open")
	}
	m.modalInput.SetValue("Noir.txt")
	if view := content(m); !strings.Contains(view, "Save Style") || !strings.Contains(view, "Stored as: Noir") {
		t.Errorf("dialog view = %q", view)
	}

	m.editor.Drive(m.dispatch("enter", nil))

	if text, ok := srv.Preset(presets.KindStyle, "Noir"); !ok || text != "black and white" {
		t.Fatalf("stored = %q, %v", text, ok)
	}
	if m.editor.Modal.IsOpen() {
		t.Error("dialog still open")
	}
	if got := lastStatus(t, m); got != "Saved style 'Noir'." {
		t.Errorf("status = %q", got)
	}
	if !m.confirm.Enabled() || m.confirm.Label() != "Confirm" {
		t.Errorf("confirm = %q enabled=%v", m.confirm.Label(), m.confirm.Enabled())
	}
}

func TestSaveWithoutTextKeepsDialogClosed(t *testing.T) {
	m, srv := newTestModel(t)
	load(m, "", "")

	m.setFocus(panePromptText)
	m.dispatch("ctrl+s", nil)

	if m.editor.Modal.IsOpen() {
		t.Error("dialog opened for empty prompt")
	}
	if got := lastStatus(t, m); got != "Enter some text before saving." {
		t.Errorf("status = %q", got)
	}
	if srv.Hits("POST /api/save-prompt") != 0 {
		t.Error("request sent")
	}
}

func TestDialogDismissal(t *testing.T) {
	tests := []struct {
		name    string
		dismiss func(m *Model)
	}{
		{name: "escape", dismiss: func(m *Model) { m.dispatch("esc", nil) }},
		{name: "click outside", dismiss: func(m *Model) { m.click(0, 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, srv := newTestModel(t)
			srv.SetPreset(presets.KindPrompt, "cats", "a cat")
			load(m, "cats", "")

			m.setFocus(panePromptPreset)
			m.dispatch("ctrl+x", nil)
			if !m.editor.Modal.IsOpen() {
				t.Fatal("delete dialog not open")
			}
			if view := content(m); !strings.Contains(view, "Delete prompt 'cats'?") {
				t.Errorf("dialog view = %q", view)
			}

			tt.dismiss(m)

			if m.editor.Modal.IsOpen() {
				t.Error("dialog still open")
			}
			if srv.Hits("POST /api/delete-prompt") != 0 {
				t.Error("delete sent")
			}
		})
	}
}

func TestClickInsideDialogKeepsItOpen(t *testing.T) {
	m, srv := newTestModel(t)
	srv.SetPreset(presets.KindPrompt, "cats", "a cat")
	load(m, "cats", "")

	m.dispatch("ctrl+x", nil)
	m.click(60, 20)

	if !m.editor.Modal.IsOpen() {
		t.Error("click inside closed the dialog")
	}
}

func TestPickerSelectsPrompt(t *testing.T) {
	m, srv := newTestModel(t)
	srv.SetPreset(presets.KindPrompt, "cats", "a cat")
	load(m, "", "")

	m.setFocus(panePromptPreset)
	m.dispatch("enter", nil)
	if m.picker == nil {
		t.Fatal("picker not open")
	}
	if view := content(m); !strings.Contains(view, "Select Prompt") || !strings.Contains(view, noneLabel) {
		t.Errorf("picker view = %q", view)
	}

	m.dispatch("down", nil)
	m.editor.Drive(m.dispatch("enter", nil))

	if m.picker != nil {
		t.Error("picker still open")
	}
	if got := m.promptText.Value(); got != "a cat" {
		t.Errorf("prompt text = %q", got)
	}
}

func TestPickerCancelKeepsSelection(t *testing.T) {
	m, srv := newTestModel(t)
	srv.SetPreset(presets.KindStyle, "noir", "black and white")
	load(m, "", "")

	m.setFocus(paneStylePreset)
	m.dispatch("enter", nil)
	m.dispatch("down", nil)
	m.dispatch("esc", nil)

	if m.picker != nil {
		t.Error("picker still open")
	}
	if got := m.stylePreset.Value(); got != "" {
		t.Errorf("style = %q", got)
	}
	if srv.Hits("GET /api/style/{name}") != 0 {
		t.Error("lookup sent")
	}
}

func TestAppendStylePicker(t *testing.T) {
	m, srv := newTestModel(t)
	srv.SetPreset(presets.KindStyle, "noir", "black and white")
	load(m, "", "")
	m.promptText.SetValue("a cat")

	m.dispatch("ctrl+a", nil)
	m.editor.Drive(m.dispatch("enter", nil))

	if got := m.promptText.Value(); got != "a cat\nStyle: noir\nblack and white" {
		t.Errorf("prompt = %q", got)
	}
	if got := lastStatus(t, m); got != "Added style 'noir'." {
		t.Errorf("status = %q", got)
	}
}

func TestAppendStyleFailureKeepsStyleBound(t *testing.T) {
	m, srv := newTestModel(t)
	srv.SetPreset(presets.KindStyle, "noir", "black and white")
	srv.SetPreset(presets.KindStyle, "pastel", "soft colours")
	load(m, "", "")
	m.editor.Drive(m.editor.Style.Select("noir"))
	m.promptText.SetValue("a cat")
	srv.Fail("POST /", testutil.Failure{Status: 500})

	m.dispatch("ctrl+a", nil)
	m.dispatch("down", nil)
	m.editor.Drive(m.dispatch("enter", nil))

	if got := lastStatus(t, m); got != "Request failed." {
		t.Errorf("status = %q", got)
	}
	if got := m.stylePreset.Value(); got != "pastel" {
		t.Errorf("style = %q", got)
	}
	if got := m.styleText.Value(); got != "soft colours" {
		t.Errorf("style text = %q, want the selected preset's text", got)
	}
	if got := m.promptText.Value(); got != "a cat" {
		t.Errorf("prompt = %q", got)
	}
}

func TestSaveDialogStartsWithCustomName(t *testing.T) {
	m, srv := newTestModel(t)
	srv.SetPreset(presets.KindPrompt, "cats", "a cat")
	load(m, "cats", "")

	m.setFocus(panePromptCustom)
	m.promptCustom.SetValue("kittens")
	m.editor.Name("prompt_name").OnInput()
	m.dispatch("ctrl+s", nil)

	if got := m.modalInput.Value(); got != "kittens" {
		t.Errorf("dialog name = %q, want the typed override", got)
	}
}

func TestModelPickerUpdatesSizesAndImages(t *testing.T) {
	m, _ := newTestModel(t)
	load(m, "", "")
	if m.editor.Images.Visible() {
		t.Fatal("images visible for default model")
	}

	m.setFocus(paneModel)
	m.dispatch("enter", nil)
	for range m.model.Options() {
		if m.picker.list.SelectedItem() == pickerItem("seedream") {
			break
		}
		m.dispatch("down", nil)
	}
	m.editor.Drive(m.dispatch("enter", nil))

	if got := m.size.Value(); got != "auto_2K" {
		t.Errorf("size = %q", got)
	}
	if !m.editor.Images.Visible() {
		t.Error("images hidden for seedream")
	}
	if view := content(m); !strings.Contains(view, "Upload") {
		t.Errorf("view missing upload row: %q", view)
	}
}

func TestGalleryDeleteNeedsConfirmation(t *testing.T) {
	m, srv := newTestModel(t)
	srv.SetAsset("cats-1.png", testutil.PNG(t))
	load(m, "", "")

	m.setFocus(paneGallery)
	m.dispatch("d", nil)
	if view := content(m); !strings.Contains(view, "Delete asset 'cats-1.png'?") {
		t.Errorf("confirm view = %q", view)
	}

	m.dispatch("n", nil)
	if _, ok := m.editor.Guard.Pending(); ok {
		t.Error("confirmation still pending")
	}
	if len(srv.Forms()) != 0 {
		t.Error("form submitted after cancel")
	}

	m.dispatch("d", nil)
	m.editor.Drive(m.dispatch("y", nil))
	if got := lastStatus(t, m); got != "Deleted asset 'cats-1.png'." {
		t.Errorf("status = %q", got)
	}
	if len(m.editor.Gallery) != 0 {
		t.Errorf("gallery = %q", m.editor.Gallery)
	}
}

func TestRunRestoresButton(t *testing.T) {
	m, _ := newTestModel(t)
	load(m, "", "")
	m.promptText.SetValue("a cat")

	m.editor.Drive(m.dispatch("ctrl+r", nil))

	if m.run.Label() != "Run" || !m.run.Enabled() || m.run.Pinned() != 0 {
		t.Errorf("run = %q enabled=%v pinned=%d", m.run.Label(), m.run.Enabled(), m.run.Pinned())
	}
	if got := lastStatus(t, m); got != "Generated 1 image(s) with 'schnell'." {
		t.Errorf("status = %q", got)
	}
}

func TestMetadataToggle(t *testing.T) {
	m, _ := newTestModel(t)
	m.setFocus(paneMetadata)

	m.dispatch("space", nil)
	if m.editor.IncludeMetadata {
		t.Error("metadata still included")
	}
	if m.editor.Form().Get(api.FieldIncludeMetadata) != "" {
		t.Error("form carries metadata flag")
	}
}

func TestTabCyclesPanes(t *testing.T) {
	m, _ := newTestModel(t)
	m.setFocus(paneRun)

	m.dispatch("tab", nil)
	if m.focus != panePromptPreset {
		t.Errorf("focus = %d, want %d", m.focus, panePromptPreset)
	}
	m.dispatch("shift+tab", nil)
	if m.focus != paneRun {
		t.Errorf("focus = %d, want %d", m.focus, paneRun)
	}
}

func TestSaveKeyFollowsFocusedKind(t *testing.T) {
	m, _ := newTestModel(t)
	for _, tt := range []struct {
		focus pane
		want  presets.Kind
	}{
		{panePromptPreset, presets.KindPrompt},
		{panePromptText, presets.KindPrompt},
		{paneStyleCustom, presets.KindStyle},
		{paneStyleText, presets.KindStyle},
		{paneRun, presets.KindPrompt},
	} {
		m.focus = tt.focus
		if got := m.focusKind(); got != tt.want {
			t.Errorf("focusKind() at %d = %s, want %s", tt.focus, got, tt.want)
		}
	}
}
