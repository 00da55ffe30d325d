package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.seanlatimer.dev/imgedit/internal/presets"
	"go.seanlatimer.dev/imgedit/internal/tui"
	"go.seanlatimer.dev/imgedit/testutil"
)

func TestPresetList(t *testing.T) {
	srv := testutil.NewFakeServer(t)

	out, err := runCommand(t, srv, "", "prompt", "list")
	if err != nil {
		t.Fatalf("prompt list error = %v", err)
	}
	if strings.TrimSpace(out) != "No prompt presets found." {
		t.Errorf("output = %q", out)
	}

	srv.SetPreset(presets.KindStyle, "noir", "black and white")
	srv.SetPreset(presets.KindStyle, "pastel", "soft colours")
	out, err = runCommand(t, srv, "", "style", "list")
	if err != nil {
		t.Fatalf("style list error = %v", err)
	}
	if err := testutil.CheckCommandOutput(out, "noir\n", "pastel\n"); err != nil {
		t.Error(err)
	}
}

func TestPresetShow(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.SetPreset(presets.KindPrompt, "cats", "a cat\non a mat")

	out, err := runCommand(t, srv, "", "prompt", "show", "cats")
	if err != nil {
		t.Fatalf("prompt show error = %v", err)
	}
	if out != "a cat\non a mat\n" {
		t.Errorf("output = %q", out)
	}

	_, err = runCommand(t, srv, "", "prompt", "show", "ghost")
	if err == nil || err.Error() != "prompt not found: ghost" {
		t.Errorf("missing preset error = %v", err)
	}
}

func TestPresetShowReportsLookupFailure(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.SetPreset(presets.KindStyle, "noir", "black and white")
	srv.Fail("GET /api/style/{name}", testutil.Failure{Status: 500, Message: "disk full"})

	out, err := runCommand(t, srv, "", "style", "show", "noir")
	if err == nil || err.Error() != "failed to load style noir: disk full" {
		t.Errorf("error = %v", err)
	}
	if out != "" {
		t.Errorf("output = %q, want none", out)
	}
}

func TestPresetShowPicksName(t *testing.T) {
	original := pickName
	t.Cleanup(func() { pickName = original })

	srv := testutil.NewFakeServer(t)
	srv.SetPreset(presets.KindPrompt, "cats", "a cat")
	srv.SetPreset(presets.KindPrompt, "dogs", "a dog")

	var offered []string
	pickName = func(title string, names []string) (string, error) {
		if title != "Select Prompt" {
			t.Errorf("title = %q", title)
		}
		offered = names
		return "dogs", nil
	}
	out, err := runCommand(t, srv, "", "prompt", "show")
	if err != nil {
		t.Fatalf("prompt show error = %v", err)
	}
	if out != "a dog\n" {
		t.Errorf("output = %q", out)
	}
	if strings.Join(offered, ",") != "cats,dogs" {
		t.Errorf("offered = %q", offered)
	}

	pickName = func(string, []string) (string, error) { return "", tui.ErrCancelled }
	out, err = runCommand(t, srv, "", "prompt", "show")
	if err != nil || out != "" {
		t.Errorf("cancelled pick = %q, %v", out, err)
	}
}

func TestPresetShowWithoutPresets(t *testing.T) {
	srv := testutil.NewFakeServer(t)

	_, err := runCommand(t, srv, "", "style", "show")
	if err == nil || err.Error() != "no style presets on the server" {
		t.Errorf("error = %v", err)
	}
}

func TestPresetSave(t *testing.T) {
	tests := []struct {
		name     string
		kind     presets.Kind
		existing map[string]string
		args     []string
		stdin    string
		wantOut  string
		wantName string
		wantText string
	}{
		{
			name:     "prompt from flag",
			kind:     presets.KindPrompt,
			args:     []string{"prompt", "save", "cats", "--text", "a cat"},
			wantOut:  "Saved prompt 'cats'.",
			wantName: "cats",
			wantText: "a cat",
		},
		{
			name:     "prompt overwrite",
			kind:     presets.KindPrompt,
			existing: map[string]string{"cats": "old"},
			args:     []string{"prompt", "save", "cats", "--text", "new"},
			wantOut:  "Saved prompt 'cats'.",
			wantName: "cats",
			wantText: "new",
		},
		{
			name:     "style from stdin",
			kind:     presets.KindStyle,
			args:     []string{"style", "save", "noir"},
			stdin:    "black and white\n",
			wantOut:  "Saved style 'noir'.",
			wantName: "noir",
			wantText: "black and white",
		},
		{
			name:     "style collision",
			kind:     presets.KindStyle,
			existing: map[string]string{"noir": "first"},
			args:     []string{"style", "save", "noir", "--text", "second"},
			wantOut:  "Saved style 'noir_1'.",
			wantName: "noir_1",
			wantText: "second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewFakeServer(t)
			for name, text := range tt.existing {
				srv.SetPreset(tt.kind, name, text)
			}

			out, err := runCommand(t, srv, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("save error = %v", err)
			}
			if strings.TrimSpace(out) != tt.wantOut {
				t.Errorf("output = %q, want %q", out, tt.wantOut)
			}
			if text, ok := srv.Preset(tt.kind, tt.wantName); !ok || text != tt.wantText {
				t.Errorf("stored %s = %q, %v", tt.wantName, text, ok)
			}
		})
	}
}

func TestPresetSaveFromFile(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	path := filepath.Join(t.TempDir(), "cats.txt")
	if err := os.WriteFile(path, []byte("a cat\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCommand(t, srv, "", "prompt", "save", "cats", "--file", path); err != nil {
		t.Fatalf("save error = %v", err)
	}
	if text, _ := srv.Preset(presets.KindPrompt, "cats"); text != "a cat" {
		t.Errorf("stored = %q", text)
	}
}

func TestPresetSaveRejectsEmptyText(t *testing.T) {
	srv := testutil.NewFakeServer(t)

	_, err := runCommand(t, srv, "  \n", "prompt", "save", "cats")
	if err == nil || err.Error() != "Enter some text before saving." {
		t.Errorf("error = %v", err)
	}
	if srv.Hits("POST /api/save-prompt") != 0 {
		t.Error("request sent for empty text")
	}
}

func TestPresetDelete(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.SetPreset(presets.KindStyle, "noir", "black and white")

	out, err := runCommand(t, srv, "", "style", "delete", "noir")
	if err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if strings.TrimSpace(out) != "Deleted style 'noir'." {
		t.Errorf("output = %q", out)
	}
	if _, ok := srv.Preset(presets.KindStyle, "noir"); ok {
		t.Error("style still stored")
	}

	_, err = runCommand(t, srv, "", "style", "delete", "ghost")
	if err == nil || err.Error() != "Style 'ghost' not found" {
		t.Errorf("missing style error = %v", err)
	}
}

func TestPromptDuplicate(t *testing.T) {
	srv := testutil.NewFakeServer(t)
	srv.SetPreset(presets.KindPrompt, "cats", "a cat")

	out, err := runCommand(t, srv, "", "prompt", "duplicate", "cats")
	if err != nil {
		t.Fatalf("duplicate error = %v", err)
	}
	if strings.TrimSpace(out) != "Duplicated prompt as 'cats_copy'." {
		t.Errorf("output = %q", out)
	}
	if text, ok := srv.Preset(presets.KindPrompt, "cats_copy"); !ok || text != "a cat" {
		t.Errorf("copy = %q, %v", text, ok)
	}

	if _, err := runCommand(t, srv, "", "prompt", "duplicate", "ghost"); err == nil {
		t.Error("duplicate of missing prompt succeeded")
	}
}

func TestQuietSuppressesNotices(t *testing.T) {
	srv := testutil.NewFakeServer(t)

	out, err := runCommand(t, srv, "", "--quiet", "prompt", "save", "cats", "--text", "a cat")
	if err != nil {
		t.Fatalf("save error = %v", err)
	}
	if out != "" {
		t.Errorf("output = %q, want none", out)
	}
}
