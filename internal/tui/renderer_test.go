package tui

import (
	"slices"
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"go.seanlatimer.dev/imgedit/internal/editor"
)

func TestTruncateToWidth(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{name: "fits", text: "cats", width: 10, want: "cats"},
		{name: "exact", text: "cats", width: 4, want: "cats"},
		{name: "cut", text: "black cats", width: 6, want: "black…"},
		{name: "unbounded", text: "cats", width: 0, want: "cats"},
		{name: "wide runes", text: "ねこねこ", width: 5, want: "ねこ…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateToWidth(tt.text, tt.width); got != tt.want {
				t.Errorf("truncateToWidth(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestRenderButtonKeepsPinnedWidth(t *testing.T) {
	b := editor.NewButton("Run")
	idle := renderButton(b, false)

	b.PinWidth(b.Width())
	b.SetLabel("Running...")
	b.SetEnabled(false)
	busy := renderButton(b, false)

	if lipgloss.Width(busy) != lipgloss.Width(idle) {
		t.Errorf("busy button %q width differs from idle %q", busy, idle)
	}
	if !strings.Contains(busy, "…") {
		t.Errorf("busy label not truncated: %q", busy)
	}
}

func TestRenderCellsMarksBroken(t *testing.T) {
	cells := []editor.Cell{
		{Index: 0, Ref: "/assets/a.png", State: editor.CellLoaded},
		{Index: 1, Ref: "/assets/gone.png", State: editor.CellBroken},
	}
	lines := renderCells(cells, 1, true, 80)

	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.Contains(lines[1], "Broken: /assets/gone.png") || !strings.Contains(lines[1], ">") {
		t.Errorf("broken line = %q", lines[1])
	}
}

func TestFilterNames(t *testing.T) {
	names := []string{"cats", "dogs", "cat_copy"}

	if got := FilterNames("", names); !slices.Equal(got, names) {
		t.Errorf("empty query = %q", got)
	}
	got := FilterNames("cat", names)
	if len(got) != 2 || slices.Contains(got, "dogs") {
		t.Errorf("FilterNames(cat) = %q", got)
	}
	if got := FilterNames("zzz", names); len(got) != 0 {
		t.Errorf("FilterNames(zzz) = %q", got)
	}
}
