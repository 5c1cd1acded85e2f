package recovery

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrUnsupported is returned when the power action is not available on
// this platform.
var ErrUnsupported = errors.New("power action not supported")

// Recoverer offers the ability to recover from a boot failure after every
// boot root was tried.
type Recoverer interface {
	Recover(message string) error
}

// PermissiveRecoverer logs the failure and hands control back to the
// caller, which continues with whatever boot path comes next.
type PermissiveRecoverer struct {
	Log *zap.Logger
}

// Recover logs message.
func (pr PermissiveRecoverer) Recover(message string) error {
	if pr.Log != nil && message != "" {
		pr.Log.Warn("Boot failed, falling through", zap.String("reason", message))
	}
	return nil
}

// SecureRecoverer reboots or powers off the machine.
type SecureRecoverer struct {
	// Reboot restarts the machine if true, powers it off otherwise.
	Reboot bool
	// Sync flushes filesystems first.
	Sync bool
	Log  *zap.Logger

	power func(reboot bool) error
	sync  func()
}

// NewSecureRecoverer returns a SecureRecoverer backed by the platform power
// calls.
func NewSecureRecoverer(reboot, sync bool, log *zap.Logger) *SecureRecoverer {
	return &SecureRecoverer{
		Reboot: reboot,
		Sync:   sync,
		Log:    log,
		power:  powerCycle,
		sync:   syncAll,
	}
}

// Recover syncs if requested and then reboots or powers off. It only
// returns on failure.
func (sr *SecureRecoverer) Recover(message string) error {
	log := sr.Log
	if log == nil {
		log = zap.NewNop()
	}
	if message != "" {
		log.Error("Boot failed", zap.String("reason", message))
	}

	if sr.Sync && sr.sync != nil {
		sr.sync()
	}
	if sr.power == nil {
		return errors.WithStack(ErrUnsupported)
	}

	log.Info("Power cycle", zap.Bool("reboot", sr.Reboot))
	if err := sr.power(sr.Reboot); err != nil {
		return errors.Wrap(err, "power cycle")
	}
	return errors.New("power cycle returned")
}

// New returns the Recoverer for action: "" and "continue" fall through,
// "reboot" and "poweroff" are secure.
func New(action string, log *zap.Logger) (Recoverer, error) {
	switch action {
	case "", "continue":
		return PermissiveRecoverer{Log: log}, nil
	case "reboot":
		return NewSecureRecoverer(true, true, log), nil
	case "poweroff":
		return NewSecureRecoverer(false, true, log), nil
	}
	return nil, errors.Errorf("unknown recovery action %q", action)
}
