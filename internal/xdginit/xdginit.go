// Package xdginit adjusts XDG base directories before any package reads them.
// Import it for side effects.
package xdginit

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
)

func init() {
	if runtime.GOOS != "darwin" {
		return
	}
	// macOS defaults both homes to ~/Library/Application Support. The config
	// file and the log belong in the dot-directories other CLI tools use,
	// unless the user set the variables explicitly.
	if os.Getenv("XDG_CONFIG_HOME") == "" {
		xdg.ConfigHome = filepath.Join(xdg.Home, ".config")
	}
	if os.Getenv("XDG_STATE_HOME") == "" {
		xdg.StateHome = filepath.Join(xdg.Home, ".local", "state")
	}
}
