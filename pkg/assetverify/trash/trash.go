// Package trash moves unexpected asset files to the system trash instead of
// unlinking them, so a deletion run can be undone from the desktop. When no
// trash is available the file is removed.
package trash

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultTimeout bounds each external trash command.
const DefaultTimeout = 30 * time.Second

// Remover moves files to the trash. It satisfies verifier.Remover.
type Remover struct {
	// Timeout bounds each trash command. Zero means DefaultTimeout.
	Timeout time.Duration

	goos     string
	lookPath func(string) (string, error)
}

// New returns a Remover for the running platform.
func New() *Remover {
	return &Remover{
		Timeout:  DefaultTimeout,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
	}
}

// Remove moves a single file to the trash. Directories are refused.
func (r *Remover) Remove(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("cannot trash %q: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot trash %q: is a directory", path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve absolute path for %q: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()

	switch r.goos {
	case "darwin":
		script := `tell application "Finder" to delete POSIX file ` + appleScriptString(absPath)
		if r.run(ctx, "osascript", "-e", script) {
			return nil
		}
	case "linux":
		// gio covers GNOME/GTK desktops, trash-put everything XDG compliant.
		if r.run(ctx, "gio", "trash", absPath) || r.run(ctx, "trash-put", absPath) {
			return nil
		}
	}

	return fallbackDelete(absPath)
}

// appleScriptString quotes s as an AppleScript string literal. Only
// backslash and double quote need escaping; everything else is literal.
func appleScriptString(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// run executes name if it is installed and reports whether it succeeded.
func (r *Remover) run(ctx context.Context, name string, args ...string) bool {
	lookPath := r.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	bin, err := lookPath(name)
	if err != nil {
		return false
	}
	return exec.CommandContext(ctx, bin, args...).Run() == nil
}

func (r *Remover) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// fallbackDelete permanently removes a file when no trash is available.
func fallbackDelete(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete %q: %w", path, err)
	}
	return nil
}
