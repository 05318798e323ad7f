package render

import (
	"os/exec"
	"runtime"
)

// OpenBrowser asks the desktop environment to open path. The launch is
// fire-and-forget; callers treat failures as non-fatal.
func OpenBrowser(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
