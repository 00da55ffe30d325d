package api_test

import (
	"context"
	"testing"

	"go.seanlatimer.dev/imgedit/testutil"
)

func TestProbe(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.SetAsset("ok.png", testutil.PNG(t))
	srv.SetAsset("notes.txt", []byte("plain text, not an image"))
	c := newClient(t, srv)
	ctx := context.Background()

	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{name: "relative asset", ref: "/assets/ok.png"},
		{name: "absolute asset", ref: srv.URL + "/assets/ok.png"},
		{name: "missing asset", ref: "/assets/missing.png", wantErr: true},
		{name: "not an image", ref: "/assets/notes.txt", wantErr: true},
		{name: "bad scheme", ref: "ftp://example.test/x.png", wantErr: true},
		{name: "data uri", ref: "data:image/png;base64,AAAA", wantErr: true},
		{name: "empty", ref: "  ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Probe(ctx, tt.ref)
			if (err != nil) != tt.wantErr {
				t.Errorf("Probe(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
		})
	}
}
