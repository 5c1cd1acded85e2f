package platform

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding the layout,
// e.g. EXTLINUXBOOT_KERNEL_ADDR.
const EnvPrefix = "EXTLINUXBOOT"

// Load reads a platform description. Values missing from the file, or the
// whole file when path is empty, fall back to Default. Environment
// variables take precedence over the file.
func Load(path string) (Platform, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("max_flash_size", def.MaxFlashSize)
	v.SetDefault("scratch_addr", def.ScratchAddr)
	v.SetDefault("kernel_addr", def.KernelAddr)
	v.SetDefault("tags_addr", def.TagsAddr)
	v.SetDefault("ramdisk_addr", def.RamdiskAddr)
	v.SetDefault("machtype", def.MachType)
	v.SetDefault("boot_type", def.BootType)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Platform{}, errors.Wrapf(err, "reading platform file %s", path)
		}
	}

	var p Platform
	if err := v.Unmarshal(&p); err != nil {
		return Platform{}, errors.Wrap(err, "decoding platform")
	}
	if err := p.Validate(); err != nil {
		return Platform{}, err
	}
	return p, nil
}
