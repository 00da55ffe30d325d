package editor

import (
	"errors"
	"testing"

	"go.seanlatimer.dev/imgedit/internal/api"
)

func TestRunDecoratesButton(t *testing.T) {
	backend := newFakeBackend()
	e, _ := newTestEditor(t, backend)
	run := e.W.Run.(*Button)
	before := run.Width()

	cmd := e.Guard.Run()
	if run.Enabled() || run.Label() != "Running..." {
		t.Errorf("run = %q enabled=%v", run.Label(), run.Enabled())
	}
	if run.Pinned() != before || run.Width() != before {
		t.Errorf("pinned = %d, want %d", run.Pinned(), before)
	}

	e.Drive(cmd)

	if len(backend.forms) != 1 || backend.forms[0].Get(api.FieldAction) != SubmitRun {
		t.Fatalf("forms = %v", backend.forms)
	}
	if !run.Enabled() || run.Label() != "Run" || run.Pinned() != 0 {
		t.Errorf("after run: label=%q enabled=%v pinned=%d", run.Label(), run.Enabled(), run.Pinned())
	}
}

func TestOnlyRunIsDecorated(t *testing.T) {
	backend := newFakeBackend()
	e, _ := newTestEditor(t, backend)
	e.W.StylePreset.SetValue("noir")

	cmd := e.Guard.OnAppendSelect()
	if !e.W.Run.Enabled() || e.W.Run.Label() != "Run" {
		t.Error("append decorated the run button")
	}
	e.Drive(cmd)

	if len(backend.forms) != 1 || backend.forms[0].Get(api.FieldAction) != SubmitAppendStyle {
		t.Errorf("forms = %v", backend.forms)
	}
}

func TestAppendSelectNeedsStyle(t *testing.T) {
	e, _ := newTestEditor(t, newFakeBackend())
	if cmd := e.Guard.OnAppendSelect(); cmd != nil {
		t.Error("empty style triggered append")
	}
}

func TestDimensionChangeSubmitsClamped(t *testing.T) {
	backend := newFakeBackend()
	e, _ := newTestEditor(t, backend)
	e.W.GalleryWidth.SetValue("9")
	e.W.GalleryHeight.SetValue("zero")

	e.Drive(e.Guard.OnDimensionChange())

	if len(backend.forms) != 1 {
		t.Fatalf("forms = %d", len(backend.forms))
	}
	form := backend.forms[0]
	if form.Has(api.FieldAction) {
		t.Errorf("action = %q, want none", form.Get(api.FieldAction))
	}
	if form.Get(api.FieldGalleryWidth) != "5" || form.Get(api.FieldGalleryHeight) != "100" {
		t.Errorf("dimensions = %s x %s", form.Get(api.FieldGalleryWidth), form.Get(api.FieldGalleryHeight))
	}
}

func TestDangerousTrigger(t *testing.T) {
	backend := newFakeBackend()
	e, _ := newTestEditor(t, backend)

	if cmd := e.DeleteAsset("old.png"); cmd != nil {
		t.Fatal("dangerous trigger submitted without confirmation")
	}
	pending, ok := e.Guard.Pending()
	if !ok || pending.Confirm != "Delete asset 'old.png'?" {
		t.Fatalf("pending = %+v, %v", pending, ok)
	}

	e.Guard.ConfirmNo()
	if _, ok := e.Guard.Pending(); ok {
		t.Error("decline left the trigger pending")
	}
	if cmd := e.Guard.ConfirmYes(); cmd != nil {
		t.Error("yes after decline submitted")
	}
	if len(backend.forms) != 0 {
		t.Fatal("declined trigger reached the server")
	}

	_ = e.DeleteAsset("old.png")
	e.Drive(e.Guard.ConfirmYes())

	if len(backend.forms) != 1 {
		t.Fatalf("forms = %d", len(backend.forms))
	}
	form := backend.forms[0]
	if form.Get(api.FieldAction) != SubmitAssetDelete || form.Get(api.FieldAssetFilename) != "old.png" {
		t.Errorf("form = %v", form)
	}
}

func TestSubmitFailureRestoresRun(t *testing.T) {
	backend := newFakeBackend()
	backend.submitErr = errors.New("connection reset")
	e, status := newTestEditor(t, backend)

	e.Drive(e.Guard.Run())

	if n := lastNotice(t, status); n.Text != "Request failed." {
		t.Errorf("notice = %+v", n)
	}
	if !e.W.Run.Enabled() || e.W.Run.Label() != "Run" {
		t.Error("run control not restored")
	}
}

func TestRunWhileRunning(t *testing.T) {
	backend := newFakeBackend()
	e, _ := newTestEditor(t, backend)

	first := e.Guard.Run()
	if second := e.Guard.Run(); second != nil {
		t.Error("second run issued a request")
	}
	e.Drive(first)
	if len(backend.forms) != 1 {
		t.Errorf("forms = %d, want 1", len(backend.forms))
	}
}
