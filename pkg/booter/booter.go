package booter

import "go.uber.org/zap"

// Booter is an interface that defines custom boot types. Implementations can be
// like extlinux boot, local boot, etc.
type Booter interface {
	Boot() error
	TypeName() string
}

// NullBooter is a dummy booter that does nothing. It is used when no other
// booter has been found
type NullBooter struct {
	Log *zap.Logger
}

// TypeName returns the name of the booter type
func (nb *NullBooter) TypeName() string {
	return "null"
}

// Boot does nothing
func (nb *NullBooter) Boot() error {
	if nb.Log != nil {
		nb.Log.Info("Null booter does nothing")
	}
	return nil
}
