// Package handoff transfers control to a loaded kernel.
package handoff

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrUnsupported is returned by handoffs the host cannot perform.
var ErrUnsupported = errors.New("handoff is not supported on this platform")

// Args describes the images placed in memory.
type Args struct {
	KernelAddr  uint64
	KernelSize  uint64
	TagsAddr    uint64
	TagsSize    uint64
	Cmdline     string
	MachType    uint32
	RamdiskAddr uint64
	RamdiskSize uint64
	BootType    uint32
}

// Handoff jumps into the kernel. A successful jump does not return.
type Handoff interface {
	Boot(args Args) error
}

// DryRun logs the handoff and returns without booting.
type DryRun struct {
	Log *zap.Logger
}

// Boot implements Handoff.
func (d *DryRun) Boot(args Args) error {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("Dry-run mode: will not boot",
		zap.String("kernel", hex(args.KernelAddr)),
		zap.Uint64("kernelSize", args.KernelSize),
		zap.String("tags", hex(args.TagsAddr)),
		zap.Uint64("tagsSize", args.TagsSize),
		zap.String("cmdline", args.Cmdline),
		zap.Uint32("machtype", args.MachType),
		zap.String("ramdisk", hex(args.RamdiskAddr)),
		zap.Uint64("ramdiskSize", args.RamdiskSize),
		zap.Uint32("bootType", args.BootType),
	)
	return nil
}

func hex(v uint64) string {
	return fmt.Sprintf("0x%x", v)
}
