//go:build linux

package handoff

import (
	"github.com/pkg/errors"
	"github.com/u-root/u-root/pkg/boot/kexec"
	"go.uber.org/zap"

	"github.com/systemboot/extlinuxboot/pkg/platform"
)

// NewKexec returns a Kexec handoff for images staged in mem.
func NewKexec(mem platform.Memory, log *zap.Logger) *Kexec {
	return &Kexec{
		Memory: mem,
		Log:    log,
		load:   kexecLoad,
		reboot: kexec.Reboot,
	}
}

func kexecLoad(entry uint64, images []Image) error {
	segments := make(kexec.Segments, 0, len(images))
	for _, img := range images {
		segments = append(segments, kexec.NewSegment(img.Data, kexec.Range{
			Start: uintptr(img.Addr),
			Size:  uint(len(img.Data)),
		}))
	}
	return errors.WithStack(kexec.Load(uintptr(entry), segments, 0))
}
