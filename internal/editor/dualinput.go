package editor

import (
	"sort"
	"strings"
)

const (
	selectorSuffix = "_preset"
	freeTextSuffix = "_custom"
)

// DualInput couples a selector with a free-text override so only one of
// them is authoritative. Both values are kept; the free text wins while it
// is non-blank.
type DualInput struct {
	Name     string
	selector Selector
	free     TextField
}

func NewDualInput(name string, selector Selector, free TextField) *DualInput {
	d := &DualInput{Name: name, selector: selector, free: free}
	d.Init()
	return d
}

// PairDualInputs builds a group for every "<base>_preset" selector that has a
// matching "<base>_custom" text field. Groups are ordered by name.
func PairDualInputs(selectors map[string]Selector, fields map[string]TextField) []*DualInput {
	var groups []*DualInput
	for name, sel := range selectors {
		base, ok := strings.CutSuffix(name, selectorSuffix)
		if !ok {
			continue
		}
		free, ok := fields[base+freeTextSuffix]
		if !ok {
			continue
		}
		groups = append(groups, NewDualInput(base, sel, free))
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

// Init derives the marking from the current free text.
func (d *DualInput) Init() {
	d.selector.SetMarked(!d.SelectorEnabled())
}

// OnInput runs after the free text changed.
func (d *DualInput) OnInput() {
	d.Init()
}

// OnSelect runs after the selector changed. A non-empty choice clears the
// free text.
func (d *DualInput) OnSelect() {
	if d.selector.Value() != "" {
		d.free.SetValue("")
	}
	d.Init()
}

func (d *DualInput) SelectorEnabled() bool {
	return strings.TrimSpace(d.free.Value()) == ""
}

// Authoritative returns the value consumers should use.
func (d *DualInput) Authoritative() string {
	if free := strings.TrimSpace(d.free.Value()); free != "" {
		return free
	}
	return d.selector.Value()
}
