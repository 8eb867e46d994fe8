package vfskit

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DriverFactory builds a backend from the loaded configuration.
type DriverFactory func(cfg *Config) (FileSystem, error)

var (
	driverMu sync.RWMutex
	drivers  = map[string]DriverFactory{}
)

// RegisterDriver makes a backend constructor selectable through
// Config.Driver. Driver packages call it from init, so importing a driver
// is all it takes to enable it:
//
//	import _ "github.com/gobeaver/vfskit/driver/memory"
//
// Registering a name twice replaces the earlier factory.
func RegisterDriver(name string, factory DriverFactory) {
	driverMu.Lock()
	defer driverMu.Unlock()
	drivers[name] = factory
}

// Drivers returns the names of the registered backends, sorted.
func Drivers() []string {
	driverMu.RLock()
	defer driverMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateDriver builds the backend cfg.Driver selects. Asking for a driver
// that was never registered (usually a missing blank import) fails with
// ErrNotSupported naming the drivers that are available.
func CreateDriver(cfg *Config) (FileSystem, error) {
	driverMu.RLock()
	factory, ok := drivers[cfg.Driver]
	driverMu.RUnlock()

	if !ok {
		known := strings.Join(Drivers(), ", ")
		if known == "" {
			known = "none"
		}
		return nil, fmt.Errorf("%w: driver %q is not registered (registered: %s)", ErrNotSupported, cfg.Driver, known)
	}
	return factory(cfg)
}

// Open loads Config from the VFSKIT_* environment and builds the selected
// backend. It is the one-call entry point for programs that just want the
// configured filesystem.
func Open() (FileSystem, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return CreateDriver(cfg)
}
