package tui

import "github.com/sahilm/fuzzy"

// FilterNames returns the names matching query, best match first.
func FilterNames(query string, names []string) []string {
	if query == "" {
		return names
	}

	matches := fuzzy.FindFrom(query, stringSource(names))
	filtered := make([]string, 0, len(matches))
	for _, match := range matches {
		filtered = append(filtered, names[match.Index])
	}
	return filtered
}

type stringSource []string

func (s stringSource) Len() int {
	return len(s)
}

func (s stringSource) String(i int) string {
	return s[i]
}
