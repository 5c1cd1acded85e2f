//go:build linux

package recovery

import (
	"os"

	"golang.org/x/sys/unix"
)

func syncAll() {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		_ = f.Sync()
	}
	unix.Sync()
}

func powerCycle(reboot bool) error {
	if reboot {
		return unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART)
	}
	return unix.Reboot(unix.LINUX_REBOOT_CMD_POWER_OFF)
}
