package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// OpenBrowser opens the system browser to the given URL so the user can
// approve the authorization request.
//
// Setting REVEILLE_NO_BROWSER skips the launch; the auth command prints
// the URL instead, which is the sane path on headless machines.
func OpenBrowser(url string) error {
	if os.Getenv("REVEILLE_NO_BROWSER") != "" {
		return fmt.Errorf("browser launch disabled by REVEILLE_NO_BROWSER")
	}

	var cmd *exec.Cmd
	switch rt := getRuntime(); rt {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
