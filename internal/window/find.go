package window

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Defaults for Find.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultInterval = time.Second
)

// FindOptions configures Find.
type FindOptions struct {
	Scope    Scope
	Timeout  time.Duration
	Interval time.Duration
	Logger   *slog.Logger
}

// Find polls l until m matches a window, the timeout elapses or ctx is
// done. The timeout is reported as ErrNotFound; cancellation of ctx is
// reported as ctx.Err().
func Find(ctx context.Context, l Lister, m *Matcher, opts FindOptions) (Descriptor, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for polls := 1; ; polls++ {
		ds, err := l.List(pollCtx, opts.Scope)
		if err != nil {
			lastErr = err
			logger.Debug("window listing failed", "poll", polls, "error", err)
		} else if d, ok := m.First(ds); ok {
			logger.Debug("window found", "poll", polls, "owner", d.Owner, "title", d.Title)
			return d, nil
		}

		select {
		case <-pollCtx.Done():
			if err := ctx.Err(); err != nil {
				return Descriptor{}, err
			}
			if lastErr != nil {
				return Descriptor{}, fmt.Errorf("%w after %s (%d polls): last error: %v", ErrNotFound, timeout, polls, lastErr)
			}
			return Descriptor{}, fmt.Errorf("%w after %s (%d polls)", ErrNotFound, timeout, polls)
		case <-ticker.C:
		}
	}
}

// Dump writes one diagnostic line per descriptor. The output is never
// empty: an empty registry prints a placeholder line.
func Dump(w io.Writer, ds []Descriptor) error {
	if len(ds) == 0 {
		_, err := fmt.Fprintln(w, "  (no windows reported by the window server)")
		return err
	}
	for _, d := range ds {
		if _, err := fmt.Fprintf(w, "  %s\n", d); err != nil {
			return err
		}
	}
	return nil
}

// IsNotFound reports whether err is a window timeout.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
