package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())
	require.EqualValues(t, 0x1d80000, p.KernelRegionSize())
	require.EqualValues(t, 0x200000, p.TagsRegionSize())
}

func TestValidate(t *testing.T) {
	p := Default()
	p.TagsAddr = p.KernelAddr
	require.True(t, errors.Is(p.Validate(), ErrInvalidLayout))

	p = Default()
	p.RamdiskAddr = p.TagsAddr - 1
	require.True(t, errors.Is(p.Validate(), ErrInvalidLayout))

	p = Default()
	p.MaxFlashSize = 0
	require.True(t, errors.Is(p.Validate(), ErrInvalidLayout))
}

func TestLoadDefaults(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), p)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platform.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
kernel_addr: 0x1000
tags_addr: 0x2000
ramdisk_addr: 0x3000
machtype: 3366
`), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	require.EqualValues(t, 0x1000, p.KernelAddr)
	require.EqualValues(t, 0x2000, p.TagsAddr)
	require.EqualValues(t, 0x3000, p.RamdiskAddr)
	require.EqualValues(t, 3366, p.MachType)
	require.Equal(t, Default().MaxFlashSize, p.MaxFlashSize)
	require.Equal(t, Default().ScratchAddr, p.ScratchAddr)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("EXTLINUXBOOT_MACHTYPE", "42")
	p, err := Load("")
	require.NoError(t, err)
	require.EqualValues(t, 42, p.MachType)
}

func TestLoadInvalidLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platform.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kernel_addr: 0x90000000\n"), 0o644))
	_, err := Load(path)
	require.True(t, errors.Is(err, ErrInvalidLayout))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRAMRegion(t *testing.T) {
	ram := NewRAM()
	region, err := ram.Region(0x1000, 4)
	require.NoError(t, err)
	copy(region, "abcd")

	again, err := ram.Region(0x1000, 2)
	require.NoError(t, err)
	require.Equal(t, []byte("ab"), again)

	grown, err := ram.Region(0x1000, 8)
	require.NoError(t, err)
	require.Equal(t, []byte("abcd\x00\x00\x00\x00"), grown)
	require.Equal(t, []uint64{0x1000}, ram.Addresses())

	ram.Limit = 4
	_, err = ram.Region(0x2000, 5)
	require.Error(t, err)
}
