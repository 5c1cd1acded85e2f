//go:build !linux

package recovery

import (
	"github.com/pkg/errors"
)

func syncAll() {}

func powerCycle(bool) error {
	return errors.WithStack(ErrUnsupported)
}
