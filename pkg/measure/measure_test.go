package measure

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	pcrs  []uint32
	infos []string
	err   error
}

func (r *recorder) Measure(pcr uint32, data []byte, info string) error {
	r.pcrs = append(r.pcrs, pcr)
	r.infos = append(r.infos, info)
	return r.err
}

func TestTry(t *testing.T) {
	r := &recorder{}
	Try(r, nil, ConfigDataPCR, []byte("kernel x\n"), "/boot/extlinux/extlinux.conf")
	require.Equal(t, []uint32{ConfigDataPCR}, r.pcrs)
	require.Equal(t, []string{"/boot/extlinux/extlinux.conf"}, r.infos)
}

func TestTryLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	Try(&recorder{err: errors.New("no tpm")}, zap.New(core), BlobPCR, nil, "kernel")
	require.Equal(t, 1, logs.FilterMessage("Cannot measure").Len())
}

func TestTryNilMeasurer(t *testing.T) {
	require.NotPanics(t, func() { Try(nil, nil, BlobPCR, nil, "kernel") })
}

func TestTPMMissingDevice(t *testing.T) {
	tpm := &TPM{Device: filepath.Join(t.TempDir(), "tpm0")}
	require.Error(t, tpm.Measure(BlobPCR, []byte("data"), "data"))
}
