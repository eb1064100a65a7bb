//go:build windows

package supervisor

import (
	"os"
	"os/exec"
	"syscall"
)

const createNewProcessGroup = 0x00000200

func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNewProcessGroup}
}

// Windows has no SIGTERM for arbitrary processes; stop means kill.
func terminateProcess(p *os.Process) error {
	return p.Kill()
}
