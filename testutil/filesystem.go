package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
)

// UseTempXDG points the XDG config and state homes at fresh temp directories
// for the duration of the test.
func UseTempXDG(t *testing.T) (configHome, stateHome string) {
	t.Helper()
	configHome = t.TempDir()
	stateHome = t.TempDir()

	originalConfig := xdg.ConfigHome
	originalState := xdg.StateHome
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_STATE_HOME", stateHome)

	// xdg reads the environment at init time.
	xdg.ConfigHome = configHome
	xdg.StateHome = stateHome
	t.Cleanup(func() {
		xdg.ConfigHome = originalConfig
		xdg.StateHome = originalState
	})
	return configHome, stateHome
}

// CreateTestConfig writes a config.yaml under dir/imgedit and returns its path.
func CreateTestConfig(t *testing.T, dir string, values map[string]string) string {
	t.Helper()
	configDir := filepath.Join(dir, "imgedit")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	var content strings.Builder
	for key, value := range values {
		content.WriteString(key + ": " + value + "\n")
	}

	path := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// PNG returns a small encoded PNG.
func PNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data to a file named name in a temp directory and returns
// the path.
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}
