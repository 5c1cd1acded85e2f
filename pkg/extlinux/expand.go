package extlinux

import (
	"path"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrNoKernel is returned when the file has no kernel directive.
	ErrNoKernel = errors.New("kernel is not specified")
	// ErrKernelNotFound is returned when the kernel file is missing.
	ErrKernelNotFound = errors.New("kernel does not exist")
	// ErrNoDeviceTree is returned when neither fdt nor fdtdir is given.
	ErrNoDeviceTree = errors.New("neither fdt nor fdtdir is specified")
	// ErrNoDeviceDTBs is returned for fdtdir when the device has no dtb
	// candidate list.
	ErrNoDeviceDTBs = errors.New("the dtb files for this device are not set")
	// ErrDTBNotFound is returned when the device tree file is missing, or no
	// candidate exists in fdtdir.
	ErrDTBNotFound = errors.New("fdt does not exist")
	// ErrInitramfsNotFound is returned when the initramfs file is missing.
	ErrInitramfsNotFound = errors.New("initramfs does not exist")
)

// Config is a validated boot configuration. All paths are absolute on the
// boot volume and the strings do not reference the parse buffer.
type Config struct {
	Kernel    string
	Initramfs string
	DTB       string
	DTBDir    string
	Cmdline   string
}

// FileChecker reports whether a file exists on the boot volume.
type FileChecker interface {
	Exists(name string) bool
}

// Expander validates Labels against the boot volume.
type Expander struct {
	Files FileChecker
	// DTBFiles lists the device tree file names that fit the running
	// device, most specific first. Used to resolve fdtdir.
	DTBFiles []string
	Log      *zap.Logger
}

// Expand checks that label is bootable from root and rewrites it into a
// Config with full paths. It either accepts the label completely or
// returns an error.
func (e *Expander) Expand(label *Label, root string) (*Config, error) {
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}

	if !label.Kernel.IsSet() {
		log.Info("Kernel is not specified")
		return nil, errors.WithStack(ErrNoKernel)
	}

	cfg := &Config{
		Kernel: path.Join(root, label.Value(label.Kernel)),
	}
	if !e.Files.Exists(cfg.Kernel) {
		log.Info("Kernel does not exist", zap.String("path", cfg.Kernel))
		return nil, errors.Wrap(ErrKernelNotFound, cfg.Kernel)
	}

	if !label.DTBDir.IsSet() && !label.DTB.IsSet() {
		log.Info("Neither fdt nor fdtdir is specified")
		return nil, errors.WithStack(ErrNoDeviceTree)
	}

	if label.DTBDir.IsSet() {
		if len(e.DTBFiles) == 0 {
			log.Info("The dtb files for this device are not set")
			return nil, errors.WithStack(ErrNoDeviceDTBs)
		}

		cfg.DTBDir = path.Join(root, label.Value(label.DTBDir))
		for _, name := range e.DTBFiles {
			candidate := path.Join(cfg.DTBDir, name)
			log.Debug("Check", zap.String("path", candidate))
			if e.Files.Exists(candidate) {
				cfg.DTB = candidate
				break
			}
		}
		// An fdtdir without a matching file leaves nothing to load.
		if cfg.DTB == "" {
			log.Info("No dtb for this device in fdtdir", zap.String("dir", cfg.DTBDir))
			return nil, errors.Wrap(ErrDTBNotFound, cfg.DTBDir)
		}
	} else {
		cfg.DTB = path.Join(root, label.Value(label.DTB))
		if !e.Files.Exists(cfg.DTB) {
			log.Info("FDT does not exist", zap.String("path", cfg.DTB))
			return nil, errors.Wrap(ErrDTBNotFound, cfg.DTB)
		}
	}

	if label.Initramfs.IsSet() {
		cfg.Initramfs = path.Join(root, label.Value(label.Initramfs))
		if !e.Files.Exists(cfg.Initramfs) {
			log.Info("Initramfs does not exist", zap.String("path", cfg.Initramfs))
			return nil, errors.Wrap(ErrInitramfsNotFound, cfg.Initramfs)
		}
	}

	cfg.Cmdline = label.Value(label.Cmdline)

	return cfg, nil
}
