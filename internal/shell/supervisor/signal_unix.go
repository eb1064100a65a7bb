//go:build !windows

package supervisor

import (
	"os"
	"os/exec"
	"syscall"
)

// configureSysProcAttr puts the core in its own process group so a terminal
// SIGINT aimed at the shell does not reach it; the shell stops it on teardown.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func terminateProcess(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
