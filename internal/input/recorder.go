package input

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Event is one input call captured by Recorder.
type Event struct {
	Kind string
	X, Y int
	Key  string
	Mods []string
	Text string
}

// String renders e compactly, e.g. "click(110,190)" or "key(cmd+shift+g)".
func (e Event) String() string {
	switch e.Kind {
	case "move", "click", "double_click":
		return fmt.Sprintf("%s(%d,%d)", e.Kind, e.X, e.Y)
	case "key":
		return fmt.Sprintf("key(%s)", strings.Join(append(append([]string{}, e.Mods...), e.Key), "+"))
	case "type":
		return fmt.Sprintf("type(%q)", e.Text)
	default:
		return e.Kind
	}
}

// Recorder is a Driver that records calls instead of injecting them.
// It backs the "record" driver used for dry runs.
type Recorder struct {
	mu     sync.Mutex
	events []Event

	// Fail, when set, is consulted before each call and its error returned.
	Fail func(Event) error
}

var _ Driver = (*Recorder)(nil)

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) record(e Event) error {
	if r.Fail != nil {
		if err := r.Fail(e); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

// Move records a pointer move.
func (r *Recorder) Move(_ context.Context, x, y int) error {
	return r.record(Event{Kind: "move", X: x, Y: y})
}

// Click records a click at (x, y).
func (r *Recorder) Click(_ context.Context, x, y int) error {
	return r.record(Event{Kind: "click", X: x, Y: y})
}

// DoubleClick records a double-click at (x, y).
func (r *Recorder) DoubleClick(_ context.Context, x, y int) error {
	return r.record(Event{Kind: "double_click", X: x, Y: y})
}

// KeyTap records key with a copy of modifiers.
func (r *Recorder) KeyTap(_ context.Context, key string, modifiers ...string) error {
	return r.record(Event{Kind: "key", Key: key, Mods: append([]string(nil), modifiers...)})
}

// Type records text, including empty text.
func (r *Recorder) Type(_ context.Context, text string) error {
	return r.record(Event{Kind: "type", Text: text})
}
