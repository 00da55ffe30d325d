// Package testutil provides an in-memory stand-in for the image editor
// service.
package testutil

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.seanlatimer.dev/imgedit/internal/presets"
)

// Model describes the size options the fake server reports for a model.
type Model struct {
	Sizes             []string
	Default           string
	SupportsImageURLs bool
}

// Failure makes the next request to a route answer with Status and an
// {"error": Message} body. An empty Message sends no body.
type Failure struct {
	Status  int
	Message string
}

// Form is one POST / submission as the server received it.
type Form map[string][]string

func (f Form) Get(key string) string {
	if v := f[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

type FakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	store    map[presets.Kind]map[string]string
	models   map[string]Model
	assets   map[string][]byte
	gallery  []string
	failures map[string][]Failure
	hits     map[string]int
	bodies   map[string][]map[string]string
	forms    []Form
	ids      []string
	uploads  map[string][]byte
	status   string
}

// NewFakeServer starts a server seeded with a few models and closes it when
// the test ends.
func NewFakeServer(t *testing.T) *FakeServer {
	t.Helper()
	s := &FakeServer{
		store: map[presets.Kind]map[string]string{
			presets.KindPrompt: {},
			presets.KindStyle:  {},
		},
		models: map[string]Model{
			"schnell":         {Sizes: []string{"landscape_4_3", "portrait_4_3", "square"}, Default: "landscape_4_3"},
			"flux-2-pro-edit": {Sizes: []string{"auto", "square_hd"}, Default: "auto", SupportsImageURLs: true},
			"seedream":        {Sizes: []string{"auto_2K", "auto_4K", "square_hd"}, Default: "auto_2K", SupportsImageURLs: true},
		},
		assets:   map[string][]byte{},
		failures: map[string][]Failure{},
		hits:     map[string]int{},
		bodies:   map[string][]map[string]string{},
		uploads:  map[string][]byte{},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *FakeServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.track)

	r.Get("/", s.page)
	r.Post("/", s.page)
	r.Get("/assets/*", s.asset)
	for _, kind := range presets.Kinds {
		r.Get("/api/"+string(kind)+"/{name}", s.getPreset(kind))
		r.Post("/api/save-"+string(kind), s.savePreset(kind))
		r.Post("/api/delete-"+string(kind), s.deletePreset(kind))
	}
	r.Post("/api/duplicate-prompt", s.duplicatePrompt)
	r.Post("/api/upload", s.upload)
	r.Get("/api/model-sizes/{model}", s.modelSizes)
	return r
}

// Route keys used by Hits and Fail are "METHOD /path" with the preset name
// collapsed, e.g. "GET /api/style/{name}".
func routeKey(r *http.Request) string {
	path := r.URL.Path
	for _, prefix := range []string{"/api/prompt/", "/api/style/", "/api/model-sizes/", "/assets/"} {
		if strings.HasPrefix(path, prefix) {
			path = prefix + "{name}"
			break
		}
	}
	return r.Method + " " + path
}

func (s *FakeServer) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r)
		s.mu.Lock()
		s.hits[key]++
		s.ids = append(s.ids, r.Header.Get("X-Request-ID"))
		var failure *Failure
		if queue := s.failures[key]; len(queue) > 0 {
			failure = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if failure != nil {
			if failure.Message == "" {
				w.WriteHeader(failure.Status)
				return
			}
			writeJSON(w, failure.Status, map[string]any{"error": failure.Message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetPreset stores a preset directly.
func (s *FakeServer) SetPreset(kind presets.Kind, name, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[kind][name] = text
}

// Preset returns a stored preset.
func (s *FakeServer) Preset(kind presets.Kind, name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.store[kind][name]
	return text, ok
}

// SetAsset serves data under /assets/name and lists it in the gallery.
func (s *FakeServer) SetAsset(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[name]; !ok {
		s.gallery = append(s.gallery, name)
	}
	s.assets[name] = data
}

// Fail queues a failure for the next request matching route.
func (s *FakeServer) Fail(route string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], f)
}

// Hits returns how many requests reached route.
func (s *FakeServer) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// Bodies returns the decoded JSON bodies posted to route.
func (s *FakeServer) Bodies(route string) []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string(nil), s.bodies[route]...)
}

// Forms returns every POST / submission.
func (s *FakeServer) Forms() []Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Form(nil), s.forms...)
}

// RequestIDs returns the X-Request-ID header of every request in order.
func (s *FakeServer) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

// Uploaded returns the bytes received for an uploaded file name.
func (s *FakeServer) Uploaded(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.uploads[name]
	return data, ok
}

// SetStatus sets the status message the next rendered page carries.
func (s *FakeServer) SetStatus(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = msg
}

func (s *FakeServer) getPreset(kind presets.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "name")
		if unescaped, err := url.PathUnescape(raw); err == nil {
			raw = unescaped
		}
		text, ok := s.Preset(kind, presets.NormalizeName(raw))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"text": ""})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"text": text})
	}
}

func (s *FakeServer) decode(w http.ResponseWriter, r *http.Request, required ...string) (map[string]string, bool) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing " + strings.Join(required, " or ")})
		return nil, false
	}
	s.mu.Lock()
	s.bodies[routeKey(r)] = append(s.bodies[routeKey(r)], body)
	s.mu.Unlock()
	for _, key := range required {
		if _, ok := body[key]; !ok {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Missing " + strings.Join(required, " or ")})
			return nil, false
		}
	}
	return body, true
}

func (s *FakeServer) savePreset(kind presets.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.save(w, r, kind)
	}
}

func (s *FakeServer) save(w http.ResponseWriter, r *http.Request, kind presets.Kind) {
	body, ok := s.decode(w, r, "name", "text")
	if !ok {
		return
	}
	name := presets.NormalizeName(body["name"])
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": kind.Title() + " name cannot be empty"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == presets.KindStyle {
		base := name
		for attempt := 0; ; attempt++ {
			name = collisionName(base, attempt)
			if _, taken := s.store[kind][name]; !taken {
				break
			}
		}
	}
	s.store[kind][name] = normalizeNewlines(body["text"])
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "saved_name": name})
}

func (s *FakeServer) deletePreset(kind presets.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.remove(w, r, kind)
	}
}

func (s *FakeServer) remove(w http.ResponseWriter, r *http.Request, kind presets.Kind) {
	body, ok := s.decode(w, r, "name")
	if !ok {
		return
	}
	name := strings.TrimSpace(body["name"])
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": kind.Title() + " name cannot be empty"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := presets.NormalizeName(name)
	if _, exists := s.store[kind][key]; !exists {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": fmt.Sprintf("%s '%s' not found", kind.Title(), name)})
		return
	}
	delete(s.store[kind], key)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted_name": name})
}

func (s *FakeServer) duplicatePrompt(w http.ResponseWriter, r *http.Request) {
	body, ok := s.decode(w, r, "name", "text")
	if !ok {
		return
	}
	name := strings.TrimSpace(body["name"])
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Prompt name cannot be empty"})
		return
	}
	copyName := presets.NextCopyName(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[presets.KindPrompt][presets.NormalizeName(copyName)] = normalizeNewlines(body["text"])
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "duplicated_name": copyName})
}

func (s *FakeServer) upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No file provided"})
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No file selected"})
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.uploads[header.Filename] = data
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"url": "https://cdn.example.test/" + header.Filename})
}

func (s *FakeServer) modelSizes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	model := s.models[chi.URLParam(r, "model")]
	s.mu.Unlock()
	sizes := model.Sizes
	if sizes == nil {
		sizes = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sizes":               sizes,
		"default":             model.Default,
		"supports_image_urls": model.SupportsImageURLs,
	})
}

func (s *FakeServer) asset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	s.mu.Lock()
	data, ok := s.assets[name]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}

type pageData struct {
	PromptNames, StyleNames, Models, Sizes []string
	SelectedPrompt, SelectedStyle          string
	PromptCustom, StyleCustom              string
	SelectedModel, SelectedSize            string
	PromptText, ImageURLs                  string
	IncludeMetadata, SupportsImageURLs     bool
	GalleryWidth, GalleryHeight            string
	Status, Error                          string
	Generated, Gallery                     []string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html><body>
{{if .Status}}<p id="status-message">{{.Status}}</p>{{end}}
{{if .Error}}<p id="error-message">{{.Error}}</p>{{end}}
<form method="post" action="/">
<select name="prompt_name_preset"><option value="">-- new --</option>{{range .PromptNames}}<option value="{{.}}"{{if eq . $.SelectedPrompt}} selected{{end}}>{{.}}</option>{{end}}</select>
<input type="text" name="prompt_name_custom" value="{{.PromptCustom}}">
<textarea name="prompt_text">{{.PromptText}}</textarea>
<select name="style_name_preset"><option value="">-- none --</option>{{range .StyleNames}}<option value="{{.}}"{{if eq . $.SelectedStyle}} selected{{end}}>{{.}}</option>{{end}}</select>
<input type="text" name="style_name_custom" value="{{.StyleCustom}}">
<select name="model_name">{{range .Models}}<option value="{{.}}"{{if eq . $.SelectedModel}} selected{{end}}>{{.}}</option>{{end}}</select>
<select name="image_size_preset">{{range .Sizes}}<option value="{{.}}"{{if eq . $.SelectedSize}} selected{{end}}>{{.}}</option>{{end}}</select>
<input type="checkbox" name="include_prompt_metadata"{{if .IncludeMetadata}} checked{{end}}>
<div id="image-urls-section"{{if not .SupportsImageURLs}} hidden{{end}}><textarea name="image_urls">{{.ImageURLs}}</textarea></div>
<input type="number" name="gallery_width" value="{{.GalleryWidth}}">
<input type="number" name="gallery_height" value="{{.GalleryHeight}}">
</form>
<div id="generated">{{range .Generated}}<a href="/assets/{{.}}">{{.}}</a>{{end}}</div>
<div id="gallery">{{range .Gallery}}<a href="/assets/{{.}}">{{.}}</a>{{end}}</div>
</body></html>`))

func (s *FakeServer) page(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := pageData{
		PromptNames:     sortedKeys(s.store[presets.KindPrompt]),
		StyleNames:      sortedKeys(s.store[presets.KindStyle]),
		Models:          sortedKeys(s.models),
		SelectedModel:   firstNonEmpty(r.Form.Get("model_name"), r.URL.Query().Get("model"), "schnell"),
		IncludeMetadata: true,
		GalleryWidth:    firstNonEmpty(r.Form.Get("gallery_width"), "3"),
		GalleryHeight:   firstNonEmpty(r.Form.Get("gallery_height"), "100"),
		Gallery:         append([]string(nil), s.gallery...),
		Status:          s.status,
	}
	s.status = ""

	model := s.models[data.SelectedModel]
	data.Sizes = model.Sizes
	data.SelectedSize = firstNonEmpty(r.Form.Get("image_size_preset"), model.Default)
	data.SupportsImageURLs = model.SupportsImageURLs

	if r.Method == http.MethodGet {
		data.SelectedPrompt = presets.NormalizeName(r.URL.Query().Get("prompt"))
		if text, ok := s.store[presets.KindPrompt][data.SelectedPrompt]; ok {
			data.PromptText = text
		}
	} else {
		s.forms = append(s.forms, Form(r.PostForm))
		data.SelectedPrompt = presets.NormalizeName(firstNonEmpty(r.PostForm.Get("prompt_name_custom"), r.PostForm.Get("prompt_name_preset")))
		data.SelectedStyle = presets.NormalizeName(firstNonEmpty(r.PostForm.Get("style_name_custom"), r.PostForm.Get("style_name_preset")))
		data.PromptText = r.PostForm.Get("prompt_text")
		data.ImageURLs = r.PostForm.Get("image_urls")
		data.IncludeMetadata = r.PostForm.Get("include_prompt_metadata") == "on"
		s.applyAction(r.PostForm, &data)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = pageTemplate.Execute(w, data)
}

func (s *FakeServer) applyAction(form map[string][]string, data *pageData) {
	get := func(key string) string {
		if v := form[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	switch action := get("action"); action {
	case "":
	case "run":
		name := firstNonEmpty(data.SelectedPrompt, "untitled")
		s.store[presets.KindPrompt][name] = data.PromptText
		asset := name + "-1.png"
		data.Generated = []string{asset}
		data.Status = fmt.Sprintf("Generated 1 image(s) with '%s'.", data.SelectedModel)
	case "append_style":
		if text, ok := s.store[presets.KindStyle][data.SelectedStyle]; ok {
			data.PromptText = strings.TrimRight(data.PromptText, "\n") + "\nStyle: " + data.SelectedStyle + "\n" + text
			data.Status = fmt.Sprintf("Added style '%s'.", data.SelectedStyle)
		}
	case "asset_delete", "asset_load":
		name := get("asset_filename")
		if _, ok := s.assets[name]; !ok {
			data.Error = "Asset file not found."
			return
		}
		if action == "asset_delete" {
			delete(s.assets, name)
			kept := s.gallery[:0]
			for _, g := range s.gallery {
				if g != name {
					kept = append(kept, g)
				}
			}
			s.gallery = kept
			data.Gallery = append([]string(nil), kept...)
			data.Status = fmt.Sprintf("Deleted asset '%s'.", name)
			return
		}
		data.Status = fmt.Sprintf("Loaded prompt from asset '%s'.", name)
	default:
		data.Error = "Unknown action: " + action
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// collisionName is the candidate tried for a taken style name on the given
// attempt: base, base_1, base_2, ...
func collisionName(base string, attempt int) string {
	if attempt <= 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, attempt)
}
