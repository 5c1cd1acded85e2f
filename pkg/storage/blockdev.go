package storage

import (
	"bufio"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// LinuxMountsPath is the kernel's table of mounted filesystems.
var LinuxMountsPath = "/proc/mounts"

// ErrNotMounted is returned when a block device has no mount point.
var ErrNotMounted = errors.New("device is not mounted")

var mountsUnescaper = strings.NewReplacer(`\040`, " ", `\011`, "\t", `\012`, "\n", `\134`, `\`)

// IsDevice reports whether root names a block device rather than a
// directory.
func IsDevice(root string) bool {
	return strings.HasPrefix(root, "/dev/")
}

// GetMountpointByDevice returns the first mount point of device found in
// LinuxMountsPath.
func GetMountpointByDevice(fs afero.Fs, device string) (string, error) {
	f, err := fs.Open(LinuxMountsPath)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		if mountsUnescaper.Replace(fields[0]) == device {
			return mountsUnescaper.Replace(fields[1]), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.WithStack(err)
	}
	return "", errors.Wrap(ErrNotMounted, device)
}
