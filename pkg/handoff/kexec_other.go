//go:build !linux

package handoff

import (
	"go.uber.org/zap"

	"github.com/systemboot/extlinuxboot/pkg/platform"
)

// NewKexec returns a Kexec handoff that can only prepare images; Boot
// fails with ErrUnsupported.
func NewKexec(mem platform.Memory, log *zap.Logger) *Kexec {
	return &Kexec{Memory: mem, Log: log}
}
