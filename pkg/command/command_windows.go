//go:build windows

package command

import (
	"os"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

func terminateProcess(p *os.Process) error {
	return p.Kill()
}
