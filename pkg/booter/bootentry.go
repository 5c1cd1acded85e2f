package booter

import (
	"go.uber.org/zap"
)

// BootEntry represents a boot entry, with its name, configuration, and Booter
// instance.
type BootEntry struct {
	Name   string
	Config []byte
	Booter Booter
}

var supportedBooterParsers = []func([]byte) (Booter, error){
	NewExtlinuxBooter,
}

// GetBooterFor looks for a supported Booter implementation and returns it, if
// found. If not found, a NullBooter is returned.
func GetBooterFor(entry BootEntry) Booter {
	log := zap.L()
	var booter Booter
	for _, booterParser := range supportedBooterParsers {
		b, err := booterParser(entry.Config)
		if err != nil {
			log.Debug("This config is not valid for booter", zap.String("entry", entry.Name), zap.Error(err))
			continue
		}
		booter = b
		break
	}
	if booter == nil {
		log.Info("No booter found for entry", zap.String("entry", entry.Name))
		return &NullBooter{Log: log}
	}
	return booter
}
