// Package api talks to the image editor service: preset lookups and
// mutations, uploads, model sizes and the editor page itself.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.seanlatimer.dev/imgedit/internal/presets"
)

const requestIDHeader = "X-Request-ID"

type Client struct {
	base *url.URL
	http *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client. The default has no timeout:
// a hung request stays pending until the server answers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("server url is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url must be http or https: %s", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	c := &Client{base: u, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base.String()
}

type requestIDKey struct{}

// WithRequestID tags ctx so the outgoing request carries id. Requests without
// one get a fresh id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type textResponse struct {
	Text  *string `json:"text"`
	Error string  `json:"error"`
}

type mutationResponse struct {
	SavedName      string `json:"saved_name"`
	DeletedName    string `json:"deleted_name"`
	DuplicatedName string `json:"duplicated_name"`
	URL            string `json:"url"`
	Error          string `json:"error"`
}

type nameText struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type nameOnly struct {
	Name string `json:"name"`
}

// Preset fetches the content of one preset. A response without a text field
// yields "".
func (c *Client) Preset(ctx context.Context, kind presets.Kind, name string) (string, error) {
	var out textResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/"+string(kind)+"/"+url.PathEscape(name), nil, &out); err != nil {
		return "", fmt.Errorf("get %s %q: %w", kind, name, err)
	}
	if out.Text == nil {
		return "", nil
	}
	return *out.Text, nil
}

// SavePreset creates or updates a preset and returns the name the server
// stored it under.
func (c *Client) SavePreset(ctx context.Context, kind presets.Kind, name, text string) (string, error) {
	var out mutationResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/save-"+string(kind), nameText{Name: name, Text: text}, &out); err != nil {
		return "", fmt.Errorf("save %s %q: %w", kind, name, err)
	}
	return out.SavedName, nil
}

func (c *Client) DeletePreset(ctx context.Context, kind presets.Kind, name string) (string, error) {
	var out mutationResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/delete-"+string(kind), nameOnly{Name: name}, &out); err != nil {
		return "", fmt.Errorf("delete %s %q: %w", kind, name, err)
	}
	return out.DeletedName, nil
}

// DuplicatePrompt stores text under the next free copy name of name.
func (c *Client) DuplicatePrompt(ctx context.Context, name, text string) (string, error) {
	var out mutationResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/duplicate-prompt", nameText{Name: name, Text: text}, &out); err != nil {
		return "", fmt.Errorf("duplicate prompt %q: %w", name, err)
	}
	return out.DuplicatedName, nil
}

// Upload sends a local file and returns the hosted reference.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return c.UploadReader(ctx, filepath.Base(path), f)
}

func (c *Client) UploadReader(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out mutationResponse
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	return out.URL, nil
}

type ModelSizes struct {
	Sizes             []string `json:"sizes"`
	Default           string   `json:"default"`
	SupportsImageURLs bool     `json:"supports_image_urls"`
}

func (c *Client) ModelSizes(ctx context.Context, model string) (ModelSizes, error) {
	var out ModelSizes
	if err := c.doJSON(ctx, http.MethodGet, "/api/model-sizes/"+url.PathEscape(model), nil, &out); err != nil {
		return ModelSizes{}, fmt.Errorf("model sizes %q: %w", model, err)
	}
	return out, nil
}

// Page loads the editor page and extracts its form state.
func (c *Client) Page(ctx context.Context, query url.Values) (Page, error) {
	path := "/"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return Page{}, err
	}
	page, err := c.doPage(req)
	if err != nil {
		return Page{}, fmt.Errorf("load page: %w", err)
	}
	return page, nil
}

// Submit posts the editor form and returns the page the server renders in
// response.
func (c *Client) Submit(ctx context.Context, form url.Values) (Page, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/", strings.NewReader(form.Encode()))
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	page, err := c.doPage(req)
	if err != nil {
		return Page{}, fmt.Errorf("submit %q: %w", form.Get("action"), err)
	}
	return page, nil
}

func (c *Client) doPage(req *http.Request) (Page, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, &Error{Status: resp.StatusCode}
	}
	return ParsePage(resp.Body)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	target := c.base.String() + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	id := RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set(requestIDHeader, id)
	return req, nil
}

// do sends req and decodes the JSON body into out. Non-2xx statuses become
// *Error, with the body's "error" field when it parses.
func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &body) == nil {
			apiErr.Message = strings.TrimSpace(body.Error)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
