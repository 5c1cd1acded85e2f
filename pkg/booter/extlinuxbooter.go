package booter

import (
	"encoding/json"
	"path"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/systemboot/extlinuxboot/pkg/bootfs"
	"github.com/systemboot/extlinuxboot/pkg/device"
	"github.com/systemboot/extlinuxboot/pkg/extlinux"
	"github.com/systemboot/extlinuxboot/pkg/handoff"
	"github.com/systemboot/extlinuxboot/pkg/measure"
	"github.com/systemboot/extlinuxboot/pkg/platform"
	"github.com/systemboot/extlinuxboot/pkg/storage"
)

// ConfigPath is the location of the configuration file below a root.
const ConfigPath = "extlinux/extlinux.conf"

// ErrNoConfig is returned when a root has no extlinux.conf.
var ErrNoConfig = errors.New("no extlinux config")

// ExtlinuxBooter implements the Booter interface for partitions carrying an
// extlinux.conf. It loads the kernel, device tree and initramfs into the
// fixed load addresses of the platform and hands over to the kernel.
type ExtlinuxBooter struct {
	Type         string   `json:"type"`
	Roots        []string `json:"roots"`
	PlatformFile string   `json:"platform,omitempty"`
	DTBFiles     []string `json:"dtb_files,omitempty"`
	DryRun       bool     `json:"dry_run,omitempty"`
	Measure      bool     `json:"measure,omitempty"`

	FS       *bootfs.FS        `json:"-"`
	Platform platform.Platform `json:"-"`
	Memory   platform.Memory   `json:"-"`
	Handoff  handoff.Handoff   `json:"-"`
	Measurer measure.Measurer  `json:"-"`
	Log      *zap.Logger       `json:"-"`
	// Device describes the running hardware. It is consulted for fdtdir
	// when DTBFiles is empty.
	Device func() (*device.Descriptor, error) `json:"-"`
	// Mounts resolves roots given as block devices to their mount point.
	Mounts afero.Fs `json:"-"`
}

// NewExtlinuxBooter parses a boot entry config and returns a Booter instance,
// or an error if any
func NewExtlinuxBooter(config []byte) (Booter, error) {
	// The configuration format for an ExtlinuxBooter entry is a JSON with the
	// following structure:
	// {
	//     "type": "extlinux",
	//     "roots": ["/dev/mmcblk0p28", "/mnt/sda2"],
	//     "platform": "/etc/extlinuxboot/platform.yaml",
	//     "dtb_files": ["qcom/msm8916-samsung-a3u-eur.dtb"],
	//     "dry_run": false,
	//     "measure": true
	// }
	//
	// `type` is always set to "extlinux".
	// `roots` are tried in order, each must contain extlinux/extlinux.conf.
	// A root below /dev is replaced by the place the device is mounted at.
	// Without `platform` the msm8916 layout is used. Without `dtb_files`
	// the candidates are derived from /proc/device-tree.
	eb := ExtlinuxBooter{}
	if err := json.Unmarshal(config, &eb); err != nil {
		return nil, errors.WithStack(err)
	}
	if eb.Type != "extlinux" {
		return nil, errors.Errorf("wrong type for ExtlinuxBooter: %s", eb.Type)
	}
	if len(eb.Roots) == 0 {
		eb.Roots = []string{"/boot"}
	}

	p, err := platform.Load(eb.PlatformFile)
	if err != nil {
		return nil, err
	}

	eb.Log = zap.L()
	eb.Platform = p
	eb.FS = bootfs.OS()
	ram := platform.NewRAM()
	eb.Memory = ram
	if eb.DryRun {
		eb.Handoff = &handoff.DryRun{Log: eb.Log}
	} else {
		eb.Handoff = handoff.NewKexec(ram, eb.Log)
	}
	if eb.Measure {
		eb.Measurer = &measure.TPM{}
	}
	eb.Device = func() (*device.Descriptor, error) {
		return device.FromProcDeviceTree(afero.NewOsFs())
	}
	eb.Mounts = afero.NewOsFs()
	return &eb, nil
}

// TypeName returns the name of the booter type
func (eb *ExtlinuxBooter) TypeName() string {
	return "extlinux"
}

// Boot tries every configured root in order.
func (eb *ExtlinuxBooter) Boot() error {
	return eb.TryRoots(eb.Roots...)
}

// TryRoots tries each root in turn and stops at the first one that boots.
// The error of the last root is returned when none does.
func (eb *ExtlinuxBooter) TryRoots(roots ...string) error {
	err := errors.WithStack(ErrNoConfig)
	for _, root := range roots {
		if err = eb.TryRoot(root); err == nil {
			return nil
		}
		eb.logger().Info("Cannot boot from root", zap.String("root", root), zap.Error(err))
	}
	return err
}

// TryRoot boots root/extlinux/extlinux.conf if it exists.
func (eb *ExtlinuxBooter) TryRoot(root string) error {
	if storage.IsDevice(root) && eb.Mounts != nil {
		mountpoint, err := storage.GetMountpointByDevice(eb.Mounts, root)
		if err != nil {
			return err
		}
		eb.logger().Debug("Resolved root", zap.String("device", root), zap.String("mountpoint", mountpoint))
		root = mountpoint
	}
	cfg, err := eb.ReadConfig(root)
	if err != nil {
		return err
	}
	return eb.BootConfig(cfg)
}

// ReadConfig reads, parses and validates the configuration of root. The
// raw file buffer does not outlive the call.
func (eb *ExtlinuxBooter) ReadConfig(root string) (*extlinux.Config, error) {
	log := eb.logger()
	confPath := path.Join(root, ConfigPath)

	file, err := eb.FS.Open(confPath)
	if err != nil {
		log.Info("No extlinux config", zap.String("root", root), zap.Error(err))
		return nil, errors.Wrap(ErrNoConfig, root)
	}
	size, err := bootfs.Size(file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	buf := extlinux.NewBuffer(int(size))
	defer buf.Release()

	_, err = bootfs.ReadAt(file, buf.Data(), 0)
	_ = file.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", confPath)
	}

	// Parsing rewrites the buffer, so measure first.
	measure.Try(eb.Measurer, log, measure.ConfigDataPCR, buf.Data(), confPath)

	expander := extlinux.Expander{
		Files:    eb.FS,
		DTBFiles: eb.dtbFiles(),
		Log:      log,
	}
	cfg, err := expander.Expand(extlinux.Parse(buf, log), root)
	if err != nil {
		log.Info("Failed to parse extlinux.conf", zap.String("path", confPath))
		return nil, err
	}

	log.Info("Parsed extlinux.conf",
		zap.String("path", confPath),
		zap.String("kernel", cfg.Kernel),
		zap.String("dtb", cfg.DTB),
		zap.String("dtbdir", cfg.DTBDir),
		zap.String("initramfs", cfg.Initramfs),
		zap.String("cmdline", cfg.Cmdline),
	)
	return cfg, nil
}

func (eb *ExtlinuxBooter) dtbFiles() []string {
	if len(eb.DTBFiles) > 0 || eb.Device == nil {
		return eb.DTBFiles
	}
	d, err := eb.Device()
	if err != nil {
		eb.logger().Debug("Cannot describe device", zap.Error(err))
		return nil
	}
	eb.logger().Debug("Device", zap.String("model", d.Model), zap.Strings("dtbFiles", d.DTBFiles))
	return d.DTBFiles
}

func (eb *ExtlinuxBooter) logger() *zap.Logger {
	if eb.Log == nil {
		return zap.NewNop()
	}
	return eb.Log
}
