package api

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// probeLimit caps how much of a reference is read to identify it.
const probeLimit = 1 << 20

// Probe checks that ref loads as an image. Relative references resolve
// against the server root.
func (c *Client) Probe(ctx context.Context, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("empty reference")
	}
	target, err := c.resolve(ref)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build probe: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode}
	}

	head, err := io.ReadAll(io.LimitReader(resp.Body, probeLimit))
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(head)); err == nil {
		return nil
	}
	// Formats without a registered decoder (webp, avif) still count when the
	// server labels them as images.
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") && len(head) > 0 {
		return nil
	}
	return fmt.Errorf("not an image: %s", ref)
}

func (c *Client) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse reference: %w", err)
	}
	if u.IsAbs() {
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("unsupported reference scheme: %s", u.Scheme)
		}
		return u.String(), nil
	}
	return c.base.ResolveReference(u).String(), nil
}
