// Package platform describes the memory layout the bootloader loads images
// into.
package platform

import (
	"github.com/pkg/errors"
)

// ErrInvalidLayout is returned by Validate for an unusable layout.
var ErrInvalidLayout = errors.New("invalid platform memory layout")

// Platform holds the fixed physical addresses and limits of a board.
type Platform struct {
	// MaxFlashSize is the size of the scratch region, and the largest image
	// that can be staged.
	MaxFlashSize uint64 `mapstructure:"max_flash_size"`
	ScratchAddr  uint64 `mapstructure:"scratch_addr"`
	KernelAddr   uint64 `mapstructure:"kernel_addr"`
	// TagsAddr is where the device tree goes. It bounds the kernel region.
	TagsAddr uint64 `mapstructure:"tags_addr"`
	// RamdiskAddr bounds the device tree region.
	RamdiskAddr uint64 `mapstructure:"ramdisk_addr"`
	MachType    uint32 `mapstructure:"machtype"`
	BootType    uint32 `mapstructure:"boot_type"`
}

// Default returns the msm8916 layout for 64-bit kernels.
func Default() Platform {
	return Platform{
		MaxFlashSize: 0x10000000,
		ScratchAddr:  0x90000000,
		KernelAddr:   0x80080000,
		TagsAddr:     0x81e00000,
		RamdiskAddr:  0x82000000,
	}
}

// Validate checks the ordering of the load regions.
func (p Platform) Validate() error {
	if p.MaxFlashSize == 0 {
		return errors.Wrap(ErrInvalidLayout, "max_flash_size is zero")
	}
	if p.KernelAddr >= p.TagsAddr {
		return errors.Wrapf(ErrInvalidLayout, "kernel_addr 0x%x is not below tags_addr 0x%x", p.KernelAddr, p.TagsAddr)
	}
	if p.TagsAddr >= p.RamdiskAddr {
		return errors.Wrapf(ErrInvalidLayout, "tags_addr 0x%x is not below ramdisk_addr 0x%x", p.TagsAddr, p.RamdiskAddr)
	}
	return nil
}

// KernelRegionSize is the room for the decompressed kernel.
func (p Platform) KernelRegionSize() uint64 {
	return p.TagsAddr - p.KernelAddr
}

// TagsRegionSize is the room for the device tree.
func (p Platform) TagsRegionSize() uint64 {
	return p.RamdiskAddr - p.TagsAddr
}
