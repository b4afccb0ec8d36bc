// Package input delivers synthetic mouse and keyboard events to the
// application under test and brings its window to the front.
//
// Drivers register themselves by name, the way database/sql drivers do.
package input

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNoDriver is returned by Open for an unregistered driver name.
var ErrNoDriver = errors.New("no input driver")

// Driver injects input events at absolute screen coordinates.
type Driver interface {
	Move(ctx context.Context, x, y int) error
	Click(ctx context.Context, x, y int) error
	DoubleClick(ctx context.Context, x, y int) error

	// KeyTap presses key while holding modifiers ("cmd", "shift", "alt", "ctrl").
	KeyTap(ctx context.Context, key string, modifiers ...string) error

	// Type enters text as individual key strokes.
	Type(ctx context.Context, text string) error
}

// Factory constructs a Driver.
type Factory func() (Driver, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Factory)
)

// Register makes a driver available under name. It panics on a duplicate
// or nil factory.
func Register(name string, f Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if f == nil {
		panic("input: Register factory is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("input: Register called twice for driver " + name)
	}
	drivers[name] = f
}

// Open constructs the named driver.
func Open(name string) (Driver, error) {
	driversMu.RLock()
	f, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrNoDriver, name, Drivers())
	}
	d, err := f()
	if err != nil {
		return nil, fmt.Errorf("open input driver %q: %w", name, err)
	}
	return d, nil
}

func registered(name string) bool {
	driversMu.RLock()
	defer driversMu.RUnlock()
	_, ok := drivers[name]
	return ok
}

// Drivers returns the sorted names of registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
