package editor

import (
	"fmt"
	"slices"
	"strings"
)

// BrokenRefMaxLen is how many runes of a reference a broken cell shows.
const BrokenRefMaxLen = 48

// ParseRefs splits a reference blob on newlines and commas, trimming entries
// and dropping blanks.
func ParseRefs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var refs []string
	for _, line := range strings.Split(text, "\n") {
		for _, part := range strings.Split(line, ",") {
			if part = strings.TrimSpace(part); part != "" {
				refs = append(refs, part)
			}
		}
	}
	return refs
}

// SerializeRefs joins refs one per line.
func SerializeRefs(refs []string) string {
	return strings.Join(refs, "\n")
}

// RemoveRef returns a copy of refs without index i.
func RemoveRef(refs []string, i int) ([]string, error) {
	if i < 0 || i >= len(refs) {
		return nil, fmt.Errorf("remove reference %d of %d: %w", i, len(refs), ErrStaleIndex)
	}
	return slices.Delete(slices.Clone(refs), i, i+1), nil
}

// TruncateRef shortens ref to at most n runes, marking the cut with an
// ellipsis.
func TruncateRef(ref string, n int) string {
	runes := []rune(ref)
	if n <= 0 || len(runes) <= n {
		return ref
	}
	return string(runes[:n]) + "…"
}
