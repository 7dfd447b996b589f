//go:build !windows

package command

import (
	"os"
	"syscall"
)

// sysProcAttr puts the child in its own process group so Terminate
// can signal the script and everything it spawned.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// terminateProcess signals the whole process group, falling back to
// killing the direct child when the group signal fails.
func terminateProcess(p *os.Process) error {
	if err := syscall.Kill(-p.Pid, syscall.SIGTERM); err == nil {
		return nil
	}
	return p.Kill()
}
