package booter

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/systemboot/extlinuxboot/pkg/decompress"
	"github.com/systemboot/extlinuxboot/pkg/extlinux"
	"github.com/systemboot/extlinuxboot/pkg/handoff"
	"github.com/systemboot/extlinuxboot/pkg/measure"
)

var (
	// ErrLoad is returned when an image cannot be read into its region.
	ErrLoad = errors.New("failed to load image")
	// ErrDecompress is returned when the kernel cannot be unpacked.
	ErrDecompress = errors.New("failed to decompress the kernel")
)

// BootConfig loads the images of cfg into the platform's load addresses and
// calls the handoff. Every step runs once; on failure the regions are left
// as they are.
func (eb *ExtlinuxBooter) BootConfig(cfg *extlinux.Config) error {
	log := eb.logger()
	p := eb.Platform
	if err := p.Validate(); err != nil {
		return err
	}

	scratch, err := eb.Memory.Region(p.ScratchAddr, p.MaxFlashSize)
	if err != nil {
		return errors.Wrapf(ErrLoad, "scratch region: %v", err)
	}
	n, err := eb.FS.LoadFile(cfg.Kernel, scratch)
	if err != nil {
		log.Info("Failed to load the kernel", zap.Error(err))
		return errors.Wrapf(ErrLoad, "kernel: %v", err)
	}
	image := scratch[:n]
	measure.Try(eb.Measurer, log, measure.BlobPCR, image, cfg.Kernel)

	kernel, err := eb.Memory.Region(p.KernelAddr, p.KernelRegionSize())
	if err != nil {
		return errors.Wrapf(ErrLoad, "kernel region: %v", err)
	}
	var kernelSize int
	if format := decompress.Detect(image); format != decompress.None {
		log.Info("Decompressing the kernel...", zap.Stringer("format", format))
		kernelSize, err = decompress.Decompress(format, image, kernel)
		if err != nil {
			log.Info("Failed to decompress the kernel", zap.Error(err))
			return errors.Wrap(ErrDecompress, err.Error())
		}
	} else {
		log.Info("Copying uncompressed kernel...")
		if len(image) > len(kernel) {
			return errors.Wrapf(ErrLoad, "kernel of %d bytes does not fit the %d byte region", len(image), len(kernel))
		}
		kernelSize = copy(kernel, image)
	}

	tags, err := eb.Memory.Region(p.TagsAddr, p.TagsRegionSize())
	if err != nil {
		return errors.Wrapf(ErrLoad, "dtb region: %v", err)
	}
	dtbSize, err := eb.FS.LoadFile(cfg.DTB, tags)
	if err != nil {
		log.Info("Failed to load the dtb", zap.Error(err))
		return errors.Wrapf(ErrLoad, "dtb: %v", err)
	}
	measure.Try(eb.Measurer, log, measure.BlobPCR, tags[:dtbSize], cfg.DTB)

	var ramdiskSize int
	if cfg.Initramfs != "" {
		ramdisk, err := eb.Memory.Region(p.RamdiskAddr, p.MaxFlashSize)
		if err != nil {
			return errors.Wrapf(ErrLoad, "ramdisk region: %v", err)
		}
		ramdiskSize, err = eb.FS.LoadFile(cfg.Initramfs, ramdisk)
		if err != nil {
			log.Info("Failed to load the initramfs", zap.Error(err))
			return errors.Wrapf(ErrLoad, "initramfs: %v", err)
		}
		measure.Try(eb.Measurer, log, measure.BlobPCR, ramdisk[:ramdiskSize], cfg.Initramfs)
	}

	err = eb.Handoff.Boot(handoff.Args{
		KernelAddr:  p.KernelAddr,
		KernelSize:  uint64(kernelSize),
		TagsAddr:    p.TagsAddr,
		TagsSize:    uint64(dtbSize),
		Cmdline:     cfg.Cmdline,
		MachType:    p.MachType,
		RamdiskAddr: p.RamdiskAddr,
		RamdiskSize: uint64(ramdiskSize),
		BootType:    p.BootType,
	})
	return errors.Wrap(err, "handoff")
}
