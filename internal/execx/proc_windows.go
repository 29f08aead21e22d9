//go:build windows

package execx

import "os/exec"

func setProcessGroup(cmd *exec.Cmd) {
	// Process groups are a Unix concept; on Windows the direct child is
	// killed and grandchildren are left to the OS.
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
