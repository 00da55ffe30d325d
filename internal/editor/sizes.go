package editor

import (
	"context"
	"slices"

	tea "charm.land/bubbletea/v2"
	"go.seanlatimer.dev/imgedit/internal/api"
)

// ModelSizes rebuilds the size selector when the model changes and shows or
// hides the image reference section.
type ModelSizes struct {
	backend Backend
	model   Selector
	size    Selector
	images  *ImageList
	seq     Sequence
}

func NewModelSizes(backend Backend, model, size Selector, images *ImageList) *ModelSizes {
	return &ModelSizes{backend: backend, model: model, size: size, images: images}
}

func (s *ModelSizes) OnModelChange() tea.Cmd {
	model := s.model.Value()
	seq := s.seq.Next()
	if model == "" {
		return nil
	}
	backend, id := s.backend, newRequestID()
	return func() tea.Msg {
		var sizes api.ModelSizes
		err := call(id, func(ctx context.Context) error {
			var err error
			sizes, err = backend.ModelSizes(ctx, model)
			return err
		})
		return sizesMsg{ctrl: s, seq: seq, id: id, model: model, sizes: sizes, err: err}
	}
}

type sizesMsg struct {
	ctrl  *ModelSizes
	seq   uint64
	id    string
	model string
	sizes api.ModelSizes
	err   error
}

func (m sizesMsg) apply() tea.Cmd {
	s := m.ctrl
	if !s.seq.Latest(m.seq) {
		return nil
	}
	if m.err != nil {
		logf(m.id, "sizes for %q: %v", m.model, m.err)
		return nil
	}
	current := s.size.Value()
	s.size.SetOptions(m.sizes.Sizes)
	if current == "" || !slices.Contains(m.sizes.Sizes, current) {
		current = m.sizes.Default
	}
	s.size.SetValue(current)
	if s.images != nil {
		s.images.SetVisible(m.sizes.SupportsImageURLs)
	}
	return nil
}
