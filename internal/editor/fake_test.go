package editor

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.seanlatimer.dev/imgedit/internal/api"
	"go.seanlatimer.dev/imgedit/internal/presets"
)

type recorded struct {
	Kind presets.Kind
	Name string
	Text string
}

// fakeBackend records every call and answers from its fields.
type fakeBackend struct {
	mu sync.Mutex

	texts   map[string]string
	lookups []recorded
	saves   []recorded
	deletes []recorded
	dups    []recorded
	uploads []string
	forms   []url.Values
	pages   []url.Values

	saveErr, deleteErr, dupErr, uploadErr, sizesErr, submitErr error
	lookupErr                                                  error
	panicOn                                                    string

	sizes map[string]api.ModelSizes
	page  api.Page
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{texts: map[string]string{}, sizes: map[string]api.ModelSizes{}}
}

func (f *fakeBackend) maybePanic(op string) {
	if f.panicOn == op {
		panic("boom: " + op)
	}
}

func (f *fakeBackend) Preset(_ context.Context, kind presets.Kind, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, recorded{Kind: kind, Name: name})
	if f.lookupErr != nil {
		return "", f.lookupErr
	}
	text, ok := f.texts[string(kind)+"/"+name]
	if !ok {
		return "", &api.Error{Status: 404}
	}
	return text, nil
}

func (f *fakeBackend) SavePreset(_ context.Context, kind presets.Kind, name, text string) (string, error) {
	f.maybePanic("save")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, recorded{Kind: kind, Name: name, Text: text})
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.texts[string(kind)+"/"+name] = text
	return name, nil
}

func (f *fakeBackend) DeletePreset(_ context.Context, kind presets.Kind, name string) (string, error) {
	f.maybePanic("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, recorded{Kind: kind, Name: name})
	if f.deleteErr != nil {
		return "", f.deleteErr
	}
	delete(f.texts, string(kind)+"/"+name)
	return name, nil
}

func (f *fakeBackend) DuplicatePrompt(_ context.Context, name, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dups = append(f.dups, recorded{Kind: presets.KindPrompt, Name: name, Text: text})
	if f.dupErr != nil {
		return "", f.dupErr
	}
	copyName := presets.NextCopyName(name)
	f.texts["prompt/"+copyName] = text
	return copyName, nil
}

func (f *fakeBackend) Upload(_ context.Context, path string) (string, error) {
	f.maybePanic("upload")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, path)
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "https://cdn.example.test/uploaded.png", nil
}

func (f *fakeBackend) ModelSizes(_ context.Context, model string) (api.ModelSizes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sizesErr != nil {
		return api.ModelSizes{}, f.sizesErr
	}
	return f.sizes[model], nil
}

func (f *fakeBackend) Page(_ context.Context, query url.Values) (api.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, query)
	return f.page, nil
}

func (f *fakeBackend) Submit(_ context.Context, form url.Values) (api.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forms = append(f.forms, form)
	if f.submitErr != nil {
		return api.Page{}, f.submitErr
	}
	return f.page, nil
}

// fakeProber fails for the listed references.
type fakeProber map[string]bool

func (p fakeProber) Probe(_ context.Context, ref string) error {
	if p[ref] {
		return errors.New("not an image")
	}
	return nil
}

// countingButton counts how often the control is restored.
type countingButton struct {
	*Button
	restores int
}

func (b *countingButton) SetEnabled(on bool) {
	if on {
		b.restores++
	}
	b.Button.SetEnabled(on)
}

func newTestEditor(t *testing.T, backend *fakeBackend) (*Editor, *StatusLine) {
	t.Helper()
	status := &StatusLine{}
	e := New(NewWidgets(), Options{Backend: backend, Notifier: status})
	return e, status
}

// resolve runs cmd once and applies the message it produced, without
// following up on any command the handler returns.
func resolve(t *testing.T, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	r, ok := cmd().(result)
	if !ok {
		t.Fatal("command did not produce a response message")
	}
	return r.apply()
}

func lastNotice(t *testing.T, s *StatusLine) Notice {
	t.Helper()
	n, ok := s.Last()
	if !ok {
		t.Fatal("expected a notice")
	}
	return n
}
