// Package clipboard copies report text to the system clipboard.
package clipboard

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Hooks for tests.
var (
	goos     = runtime.GOOS
	lookPath = exec.LookPath
	run      = func(name string, args []string, input string) error {
		cmd := exec.Command(name, args...)
		cmd.Stdin = strings.NewReader(input)
		return cmd.Run()
	}
)

// linuxTools are tried in order of preference.
var linuxTools = [][]string{
	{"wl-copy"},                          // Wayland
	{"xclip", "-selection", "clipboard"}, // X11
	{"xsel", "--clipboard", "--input"},   // X11 alternative
}

// Copy places text on the system clipboard.
func Copy(text string) error {
	switch goos {
	case "linux":
		return copyLinux(text)
	case "darwin":
		return run("pbcopy", nil, text)
	case "windows":
		return run("clip", nil, text)
	default:
		return fmt.Errorf("unsupported platform: %s", goos)
	}
}

func copyLinux(text string) error {
	var lastErr error
	for _, tool := range linuxTools {
		if _, err := lookPath(tool[0]); err != nil {
			continue
		}
		if err := run(tool[0], tool[1:], text); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("clipboard tools failed: %w", lastErr)
	}
	return fmt.Errorf("no suitable clipboard tool found (tried: wl-copy, xclip, xsel)")
}
