package logserver

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open launches the default browser at the dashboard URL. Best-effort:
// callers log the error and continue, the dashboard can always be opened
// by hand.
func Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening dashboard: %w", err)
	}
	return nil
}
