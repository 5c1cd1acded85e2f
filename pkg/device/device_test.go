package device

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestDTBFilesFromCompatible(t *testing.T) {
	files := DTBFilesFromCompatible([]string{"samsung,a3u-eur", "qcom,msm8916", "generic-board"})
	require.Equal(t, []string{
		"samsung/a3u-eur.dtb",
		"qcom/msm8916.dtb",
		"a3u-eur.dtb",
		"msm8916.dtb",
		"generic-board.dtb",
	}, files)
}

func TestDTBFilesFromCompatibleEmpty(t *testing.T) {
	require.Empty(t, DTBFilesFromCompatible(nil))
	require.Empty(t, DTBFilesFromCompatible([]string{""}))
}

func TestFromProcDeviceTree(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proc/device-tree/compatible", []byte("wingtech,wt88047\x00qcom,msm8916\x00"), 0o444))
	require.NoError(t, afero.WriteFile(fs, "/proc/device-tree/model", []byte("Xiaomi Redmi 2\x00"), 0o444))

	d, err := FromProcDeviceTree(fs)
	require.NoError(t, err)
	require.Equal(t, "Xiaomi Redmi 2", d.Model)
	require.Equal(t, []string{"wingtech/wt88047.dtb", "qcom/msm8916.dtb", "wt88047.dtb", "msm8916.dtb"}, d.DTBFiles)
}

func TestFromProcDeviceTreeMissing(t *testing.T) {
	_, err := FromProcDeviceTree(afero.NewMemMapFs())
	require.Error(t, err)
}
