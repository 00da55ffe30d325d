package editor

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParseRefs(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{text: "", want: nil},
		{text: " \n , \n", want: nil},
		{text: "http://a\n\nhttp://b,http://c", want: []string{"http://a", "http://b", "http://c"}},
		{text: " http://a , http://b\r\nhttp://c ", want: []string{"http://a", "http://b", "http://c"}},
	}
	for _, tt := range tests {
		if got := ParseRefs(tt.text); !slices.Equal(got, tt.want) {
			t.Errorf("ParseRefs(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestSerializeNormalizes(t *testing.T) {
	text := "http://a,http://b\n\n"
	if got := SerializeRefs(ParseRefs(text)); got != "http://a\nhttp://b" {
		t.Errorf("SerializeRefs() = %q", got)
	}
}

func TestRemoveRef(t *testing.T) {
	refs := []string{"a", "b", "c"}
	got, err := RemoveRef(refs, 1)
	if err != nil {
		t.Fatalf("RemoveRef() error = %v", err)
	}
	if !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("RemoveRef() = %q", got)
	}
	if !slices.Equal(refs, []string{"a", "b", "c"}) {
		t.Error("RemoveRef modified its input")
	}
	for _, i := range []int{-1, 3} {
		if _, err := RemoveRef(refs, i); !errors.Is(err, ErrStaleIndex) {
			t.Errorf("RemoveRef(%d) error = %v", i, err)
		}
	}
}

func TestTruncateRef(t *testing.T) {
	long := strings.Repeat("é", 60)
	got := TruncateRef(long, BrokenRefMaxLen)
	if want := strings.Repeat("é", BrokenRefMaxLen) + "…"; got != want {
		t.Errorf("TruncateRef() = %q", got)
	}
	if got := TruncateRef("short", BrokenRefMaxLen); got != "short" {
		t.Errorf("TruncateRef() = %q", got)
	}
}

// genBlob builds reference blobs from a small alphabet of references,
// separators and padding.
func genBlob() gopter.Gen {
	piece := gen.OneGenOf(
		gen.Const("http://a"),
		gen.Const("https://b/x.png"),
		gen.Const("/assets/c.png"),
		gen.Const("\n"),
		gen.Const(","),
		gen.Const(" "),
		gen.Const("\r\n"),
		gen.AlphaString(),
	)
	return gen.SliceOf(piece).Map(func(parts []string) string {
		return strings.Join(parts, "")
	})
}

func TestRefsProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("parse is idempotent through serialize", prop.ForAll(
		func(text string) bool {
			refs := ParseRefs(text)
			return slices.Equal(ParseRefs(SerializeRefs(refs)), refs)
		},
		genBlob(),
	))

	properties.Property("removal keeps order and drops one", prop.ForAll(
		func(text string, pick int) bool {
			refs := ParseRefs(text)
			if len(refs) == 0 {
				return true
			}
			i := pick % len(refs)
			got, err := RemoveRef(refs, i)
			if err != nil || len(got) != len(refs)-1 {
				return false
			}
			want := append(slices.Clone(refs[:i]), refs[i+1:]...)
			return slices.Equal(got, want)
		},
		genBlob(),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
