// Package measure extends TPM PCRs with the data the bootloader acts on.
package measure

import (
	"crypto/sha256"

	"github.com/google/go-tpm/legacy/tpm2"
	"github.com/google/go-tpm/tpmutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// BlobPCR receives loaded images.
	BlobPCR uint32 = 7
	// ConfigDataPCR receives configuration files.
	ConfigDataPCR uint32 = 8
)

// DefaultDevice is the TPM character device.
const DefaultDevice = "/dev/tpm0"

// Measurer extends a PCR with the digest of data.
type Measurer interface {
	Measure(pcr uint32, data []byte, info string) error
}

// TPM measures into a TPM 2.0 with SHA-256.
type TPM struct {
	Device string
}

// Measure implements Measurer.
func (t *TPM) Measure(pcr uint32, data []byte, info string) error {
	device := t.Device
	if device == "" {
		device = DefaultDevice
	}
	rw, err := tpm2.OpenTPM(device)
	if err != nil {
		return errors.Wrapf(err, "opening %s", device)
	}
	defer rw.Close()

	digest := sha256.Sum256(data)
	if err := tpm2.PCRExtend(rw, tpmutil.Handle(pcr), tpm2.AlgSHA256, digest[:], ""); err != nil {
		return errors.Wrapf(err, "extending PCR %d with %s", pcr, info)
	}
	return nil
}

// Try measures data and logs failures. A missing or broken TPM never
// stops the boot.
func Try(m Measurer, log *zap.Logger, pcr uint32, data []byte, info string) {
	if m == nil {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	log.Debug("Measuring blob", zap.String("info", info), zap.Uint32("pcr", pcr))
	if err := m.Measure(pcr, data, info); err != nil {
		log.Warn("Cannot measure", zap.String("info", info), zap.Error(err))
	}
}
