//go:build cgo && (darwin || linux || windows)

package input

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-vgo/robotgo"
)

func init() {
	Register(DriverRobotgo, func() (Driver, error) { return &RobotDriver{}, nil })
}

// robotgoKeys maps key names that robotgo spells differently.
var robotgoKeys = map[string]string{
	"escape": "esc",
	"option": "alt",
}

func robotgoKey(k string) string {
	if name, ok := robotgoKeys[k]; ok {
		return name
	}
	return k
}

// RobotDriver injects input in-process through robotgo.
//
// robotgo calls are synchronous and cannot be interrupted, so the context
// is only checked before each event.
type RobotDriver struct {
	mu sync.Mutex
}

// Move puts the pointer at (x, y).
func (d *RobotDriver) Move(ctx context.Context, x, y int) error {
	return d.do(ctx, func() error {
		robotgo.Move(x, y)
		return nil
	})
}

// Click moves to (x, y) and presses the left button once.
func (d *RobotDriver) Click(ctx context.Context, x, y int) error {
	return d.do(ctx, func() error {
		robotgo.Move(x, y)
		robotgo.Click("left", false)
		return nil
	})
}

// DoubleClick moves to (x, y) and double-clicks the left button.
func (d *RobotDriver) DoubleClick(ctx context.Context, x, y int) error {
	return d.do(ctx, func() error {
		robotgo.Move(x, y)
		robotgo.Click("left", true)
		return nil
	})
}

// KeyTap presses key with modifiers held.
func (d *RobotDriver) KeyTap(ctx context.Context, key string, modifiers ...string) error {
	args := make([]interface{}, 0, len(modifiers))
	for _, m := range modifiers {
		args = append(args, robotgoKey(m))
	}
	return d.do(ctx, func() error {
		return robotgo.KeyTap(robotgoKey(key), args...)
	})
}

// Type enters text.
func (d *RobotDriver) Type(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	return d.do(ctx, func() error {
		robotgo.TypeStr(text)
		return nil
	})
}

func (d *RobotDriver) do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := fn(); err != nil {
		return fmt.Errorf("input: robotgo: %w", err)
	}
	return nil
}
