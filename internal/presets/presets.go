// Package presets describes the two kinds of server-stored text presets and
// the naming rules the server applies to them.
package presets

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

type Kind string

const (
	KindPrompt Kind = "prompt"
	KindStyle  Kind = "style"
)

// Kinds lists every preset kind in display order.
var Kinds = []Kind{KindPrompt, KindStyle}

func (k Kind) String() string { return string(k) }

// Title returns the capitalized kind for headings.
func (k Kind) Title() string {
	s := string(k)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// NormalizeName mirrors the server's canonical name: trimmed, base name only,
// without a trailing .txt. Empty input stays empty.
func NormalizeName(raw string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return ""
	}
	candidate = path.Base(strings.ReplaceAll(candidate, "\\", "/"))
	if candidate == "/" || candidate == "." {
		return ""
	}
	return strings.TrimSuffix(candidate, ".txt")
}

var copyPattern = regexp.MustCompile(`^(.+)_copy(\d+)?$`)

// NextCopyName returns the name a duplicated prompt is stored under:
// "x" -> "x_copy" -> "x_copy2" -> "x_copy3".
func NextCopyName(name string) string {
	match := copyPattern.FindStringSubmatch(name)
	if match == nil {
		return name + "_copy"
	}
	if match[2] == "" {
		return match[1] + "_copy2"
	}
	n, err := strconv.Atoi(match[2])
	if err != nil {
		return name + "_copy"
	}
	return fmt.Sprintf("%s_copy%d", match[1], n+1)
}

// PrependStyle puts style text in front of a prompt, separated by a newline.
// An empty prompt is replaced; an empty style leaves the prompt unchanged.
func PrependStyle(style, prompt string) string {
	style = strings.TrimSpace(style)
	if style == "" {
		return prompt
	}
	if prompt == "" {
		return style
	}
	return style + "\n" + prompt
}
