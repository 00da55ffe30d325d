package api

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Form control names shared by the page and by form submission.
const (
	FieldAction          = "action"
	FieldPromptPreset    = "prompt_name_preset"
	FieldPromptCustom    = "prompt_name_custom"
	FieldPromptText      = "prompt_text"
	FieldStylePreset     = "style_name_preset"
	FieldStyleCustom     = "style_name_custom"
	FieldModel           = "model_name"
	FieldSize            = "image_size_preset"
	FieldIncludeMetadata = "include_prompt_metadata"
	FieldImageURLs       = "image_urls"
	FieldGalleryWidth    = "gallery_width"
	FieldGalleryHeight   = "gallery_height"
	FieldAssetFilename   = "asset_filename"
)

// Page is the form state the server rendered.
type Page struct {
	PromptNames    []string
	SelectedPrompt string
	PromptCustom   string
	PromptText     string

	StyleNames    []string
	SelectedStyle string
	StyleCustom   string

	Models        []string
	SelectedModel string
	Sizes         []string
	SelectedSize  string

	IncludeMetadata   bool
	ImageURLs         string
	SupportsImageURLs bool

	GalleryWidth  int
	GalleryHeight int

	Status string
	Error  string

	// Generated lists assets produced by the last run; Gallery the most
	// recent assets on disk. Both are paths relative to /assets/.
	Generated []string
	Gallery   []string
}

// ParsePage extracts the editor form state from the page markup.
func ParsePage(r io.Reader) (Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Page{}, fmt.Errorf("parse page: %w", err)
	}

	p := pageParser{
		page: Page{
			SupportsImageURLs: true,
			GalleryWidth:      DefaultGalleryWidth,
			GalleryHeight:     DefaultGalleryHeight,
		},
		selects: map[string]*selectState{},
	}
	p.walk(doc, "")

	p.page.PromptNames, p.page.SelectedPrompt = p.selectValues(FieldPromptPreset)
	p.page.StyleNames, p.page.SelectedStyle = p.selectValues(FieldStylePreset)
	p.page.Models, p.page.SelectedModel = p.selectValues(FieldModel)
	p.page.Sizes, p.page.SelectedSize = p.selectValues(FieldSize)
	return p.page, nil
}

type selectState struct {
	options  []string
	selected string
}

type pageParser struct {
	page    Page
	selects map[string]*selectState
}

func (p *pageParser) selectValues(name string) ([]string, string) {
	s, ok := p.selects[name]
	if !ok {
		return nil, ""
	}
	return s.options, s.selected
}

// walk visits n; section is the id of the nearest asset container.
func (p *pageParser) walk(n *html.Node, section string) {
	if n.Type == html.ElementNode {
		switch id := attr(n, "id"); id {
		case "generated", "gallery":
			section = id
		case "status-message":
			p.page.Status = strings.TrimSpace(textContent(n))
		case "error-message":
			p.page.Error = strings.TrimSpace(textContent(n))
		case "image-urls-section":
			if hasAttr(n, "hidden") {
				p.page.SupportsImageURLs = false
			}
		}

		switch n.Data {
		case "select":
			p.readSelect(n)
			return
		case "textarea":
			p.readTextarea(n)
			return
		case "input":
			p.readInput(n)
		case "a":
			p.readLink(n, section)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, section)
	}
}

func (p *pageParser) readSelect(n *html.Node) {
	name := attr(n, "name")
	if name == "" {
		return
	}
	state := &selectState{}
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "option" {
			value, ok := attrOK(node, "value")
			if !ok {
				value = strings.TrimSpace(textContent(node))
			}
			if value != "" {
				state.options = append(state.options, value)
				if hasAttr(node, "selected") {
					state.selected = value
				}
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	p.selects[name] = state
}

func (p *pageParser) readTextarea(n *html.Node) {
	value := textContent(n)
	switch attr(n, "name") {
	case FieldPromptText:
		p.page.PromptText = value
	case FieldImageURLs:
		p.page.ImageURLs = value
	}
}

func (p *pageParser) readInput(n *html.Node) {
	value := attr(n, "value")
	switch attr(n, "name") {
	case FieldPromptCustom:
		p.page.PromptCustom = value
	case FieldStyleCustom:
		p.page.StyleCustom = value
	case FieldIncludeMetadata:
		p.page.IncludeMetadata = hasAttr(n, "checked")
	case FieldGalleryWidth:
		p.page.GalleryWidth = ClampGalleryWidth(value)
	case FieldGalleryHeight:
		p.page.GalleryHeight = ClampGalleryHeight(value)
	}
}

func (p *pageParser) readLink(n *html.Node, section string) {
	href := attr(n, "href")
	if !strings.HasPrefix(href, "/assets/") {
		return
	}
	asset := strings.TrimPrefix(href, "/assets/")
	switch section {
	case "generated":
		p.page.Generated = append(p.page.Generated, asset)
	case "gallery":
		p.page.Gallery = append(p.page.Gallery, asset)
	}
}

const (
	DefaultGalleryWidth  = 3
	MaxGalleryWidth      = 5
	DefaultGalleryHeight = 100
)

// ClampGalleryWidth applies the server's rule: integer in 1..5, default 3.
func ClampGalleryWidth(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		v = DefaultGalleryWidth
	}
	return max(1, min(v, MaxGalleryWidth))
}

// ClampGalleryHeight applies the server's rule: integer >= 1, default 100.
func ClampGalleryHeight(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		v = DefaultGalleryHeight
	}
	return max(1, v)
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := attrOK(n, key)
	return ok
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return b.String()
}
