package editor

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"go.seanlatimer.dev/imgedit/internal/api"
)

var writeClipboard = clipboard.WriteAll

type CellState int

const (
	CellLoading CellState = iota
	CellLoaded
	CellBroken
	CellEmpty
)

// Cell is one rendered reference. Index addresses the sequence the cell was
// rendered from; the placeholder cell has Index -1.
type Cell struct {
	Index int
	Ref   string
	State CellState
}

// Label is the text a cell shows.
func (c Cell) Label() string {
	switch c.State {
	case CellEmpty:
		return "No image references."
	case CellBroken:
		return "Broken: " + TruncateRef(c.Ref, BrokenRefMaxLen)
	}
	return c.Ref
}

// ImageListDeps are the collaborators of an ImageList. Prober may be nil to
// skip load checks.
type ImageListDeps struct {
	Backend  Backend
	Prober   Prober
	Text     TextField
	File     TextField
	Upload   Control
	Notifier Notifier
}

// ImageList edits the reference blob either as raw text or as a preview of
// cells. The blob is the only source of truth; cells are rebuilt from it.
type ImageList struct {
	deps    ImageListDeps
	preview bool
	visible bool
	refs    []string
	cells   []Cell
	gen     uint64

	uploaded string
}

func NewImageList(deps ImageListDeps) *ImageList {
	return &ImageList{deps: deps, visible: true}
}

func (l *ImageList) Preview() bool { return l.preview }

func (l *ImageList) Visible() bool { return l.visible }

// SetVisible follows the selected model's support for image references.
func (l *ImageList) SetVisible(v bool) { l.visible = v }

// Generation identifies the current render. Removals must carry it.
func (l *ImageList) Generation() uint64 { return l.gen }

func (l *ImageList) Cells() []Cell { return slices.Clone(l.cells) }

func (l *ImageList) Refs() []string { return slices.Clone(l.refs) }

// LastUpload is the reference returned by the most recent successful upload.
func (l *ImageList) LastUpload() string { return l.uploaded }

// Toggle switches between editing the blob and previewing it.
func (l *ImageList) Toggle() tea.Cmd {
	l.preview = !l.preview
	if !l.preview {
		l.cells = nil
		return nil
	}
	return l.Render(ParseRefs(l.deps.Text.Value()))
}

// Render rebuilds the cells from refs and starts a load check for each.
func (l *ImageList) Render(refs []string) tea.Cmd {
	l.gen++
	l.refs = slices.Clone(refs)
	if len(refs) == 0 {
		l.cells = []Cell{{Index: -1, State: CellEmpty}}
		return nil
	}

	l.cells = make([]Cell, len(refs))
	cmds := make([]tea.Cmd, 0, len(refs))
	for i, ref := range refs {
		l.cells[i] = Cell{Index: i, Ref: ref, State: CellLoading}
		if l.deps.Prober == nil {
			l.cells[i].State = CellLoaded
			continue
		}
		cmds = append(cmds, l.probe(l.gen, i, ref))
	}
	return tea.Batch(cmds...)
}

func (l *ImageList) probe(gen uint64, i int, ref string) tea.Cmd {
	prober, id := l.deps.Prober, newRequestID()
	return func() tea.Msg {
		err := call(id, func(ctx context.Context) error {
			return prober.Probe(ctx, ref)
		})
		return probeMsg{list: l, gen: gen, index: i, id: id, err: err}
	}
}

type probeMsg struct {
	list  *ImageList
	gen   uint64
	index int
	id    string
	err   error
}

func (m probeMsg) apply() tea.Cmd {
	l := m.list
	if m.gen != l.gen || m.index >= len(l.cells) {
		return nil
	}
	if m.err != nil {
		logf(m.id, "image reference %q did not load: %v", l.cells[m.index].Ref, m.err)
		l.cells[m.index].State = CellBroken
		return nil
	}
	l.cells[m.index].State = CellLoaded
	return nil
}

// Remove drops index i of the render identified by gen, writes the rest back
// to the blob and renders again. It fails with ErrStaleIndex when the blob
// changed since that render.
func (l *ImageList) Remove(gen uint64, i int) (tea.Cmd, error) {
	if !l.preview || gen != l.gen || !slices.Equal(ParseRefs(l.deps.Text.Value()), l.refs) {
		return nil, ErrStaleIndex
	}
	refs, err := RemoveRef(l.refs, i)
	if err != nil {
		return nil, err
	}
	l.deps.Text.SetValue(SerializeRefs(refs))
	return l.Render(refs), nil
}

// Append adds ref to the end of the blob and refreshes an open preview.
func (l *ImageList) Append(ref string) tea.Cmd {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	current := l.deps.Text.Value()
	switch {
	case strings.TrimSpace(current) == "":
		l.deps.Text.SetValue(ref)
	case strings.HasSuffix(current, "\n"):
		l.deps.Text.SetValue(current + ref)
	default:
		l.deps.Text.SetValue(current + "\n" + ref)
	}
	if l.preview {
		return l.Render(ParseRefs(l.deps.Text.Value()))
	}
	return nil
}

// Upload sends the chosen file. The file field is reset once the attempt
// finishes, whatever the outcome.
func (l *ImageList) Upload() tea.Cmd {
	path := strings.TrimSpace(l.deps.File.Value())
	if path == "" {
		l.deps.Notifier.Error("Choose a file to upload.")
		return nil
	}
	busy, err := Acquire(l.deps.Upload, "Uploading...")
	if err != nil {
		l.deps.Notifier.Error(rejection(err, "file", "uploading"))
		return nil
	}
	busy.OnRelease(func() { l.deps.File.SetValue("") })

	backend, id := l.deps.Backend, newRequestID()
	return func() tea.Msg {
		var ref string
		err := call(id, func(ctx context.Context) error {
			var err error
			ref, err = backend.Upload(ctx, path)
			return err
		})
		return uploadMsg{list: l, busy: busy, id: id, path: path, ref: ref, err: err}
	}
}

type uploadMsg struct {
	list *ImageList
	busy *Busy
	id   string
	path string
	ref  string
	err  error
}

func (m uploadMsg) apply() tea.Cmd {
	defer m.busy.Release()
	l := m.list
	if m.err != nil {
		logf(m.id, "upload %s: %v", m.path, m.err)
		l.deps.Notifier.Error(api.Message(m.err, "Upload failed."))
		return nil
	}
	l.uploaded = m.ref
	l.deps.Notifier.Info("Uploaded " + m.ref)
	return l.Append(m.ref)
}

// Copy puts the reference at index i of the current render on the clipboard.
func (l *ImageList) Copy(gen uint64, i int) error {
	if gen != l.gen || i < 0 || i >= len(l.refs) {
		return ErrStaleIndex
	}
	if err := writeClipboard(l.refs[i]); err != nil {
		return fmt.Errorf("copy reference: %w", err)
	}
	l.deps.Notifier.Info("Copied " + TruncateRef(l.refs[i], BrokenRefMaxLen))
	return nil
}
