// Package device describes the hardware the bootloader runs on, as far as
// choosing a device tree is concerned.
package device

import (
	"bytes"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// ProcDeviceTree is where the running kernel exposes its device tree.
const ProcDeviceTree = "/proc/device-tree"

// Descriptor identifies the running device.
type Descriptor struct {
	Model string
	// DTBFiles are candidate device tree file names relative to an fdtdir,
	// most specific first.
	DTBFiles []string
}

// DTBFilesFromCompatible turns compatible strings into dtb file names. A
// "vendor,board" entry yields "vendor/board.dtb" as laid out by kernel
// dtbs_install, followed by the flat "board.dtb" form.
func DTBFilesFromCompatible(compatible []string) []string {
	nested := lo.FilterMap(compatible, func(c string, _ int) (string, bool) {
		vendor, board, ok := strings.Cut(c, ",")
		return path.Join(vendor, board+".dtb"), ok && vendor != "" && board != ""
	})
	flat := lo.FilterMap(compatible, func(c string, _ int) (string, bool) {
		_, board, ok := strings.Cut(c, ",")
		if !ok {
			board = c
		}
		return board + ".dtb", board != ""
	})
	return lo.Uniq(append(nested, flat...))
}

// FromProcDeviceTree reads the model and compatible list of the running
// device tree from fs.
func FromProcDeviceTree(fs afero.Fs) (*Descriptor, error) {
	compatible, err := afero.ReadFile(fs, path.Join(ProcDeviceTree, "compatible"))
	if err != nil {
		return nil, errors.Wrap(err, "reading compatible")
	}
	d := &Descriptor{
		DTBFiles: DTBFilesFromCompatible(splitStrings(compatible)),
	}
	if model, err := afero.ReadFile(fs, path.Join(ProcDeviceTree, "model")); err == nil {
		d.Model = strings.Join(splitStrings(model), " ")
	}
	return d, nil
}

func splitStrings(prop []byte) []string {
	parts := bytes.Split(bytes.TrimRight(prop, "\x00"), []byte{0})
	return lo.Compact(lo.Map(parts, func(p []byte, _ int) string {
		return string(p)
	}))
}
