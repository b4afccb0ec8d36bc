package harness

import (
	"context"
	"fmt"

	"github.com/roach88/uiharness/internal/input"
	"github.com/roach88/uiharness/internal/scenario"
)

// do performs one script action. Returned errors are fatal.
func (r *run) do(ctx context.Context, a scenario.Action) error {
	switch a.Do {
	case scenario.ActionFocus:
		return r.focus(ctx)

	case scenario.ActionClick, scenario.ActionDoubleClick, scenario.ActionMove:
		p, ok := r.sc.Layout.Anchor(a.Target)
		if !ok {
			return fmt.Errorf("unknown anchor %q", a.Target)
		}
		x, y := p.Offset(r.win.X, r.win.Y)
		note := a.Note
		if note == "" {
			note = a.Target
		}
		switch a.Do {
		case scenario.ActionClick:
			return r.click(ctx, x, y, note)
		case scenario.ActionDoubleClick:
			return r.doubleClick(ctx, x, y, note)
		}
		if err := r.deps.Driver.Move(ctx, x, y); err != nil {
			return fmt.Errorf("move: %w", err)
		}
		r.trace(KindMove, fmt.Sprintf("(%d, %d) %s", x, y, note), nil)
		return r.sleep(ctx, r.sc.Input.Pause)

	case scenario.ActionKey, scenario.ActionPress:
		combo, err := input.ParseCombo(a.Keys)
		if err != nil {
			return err
		}
		if err := combo.Tap(ctx, r.deps.Driver); err != nil {
			return fmt.Errorf("%s %s: %w", a.Do, combo, err)
		}
		kind := KindKey
		if a.Do == scenario.ActionPress {
			kind = KindPress
		}
		r.trace(kind, combo.String(), nil)
		return r.sleep(ctx, r.sc.Input.Pause)

	case scenario.ActionType:
		text := input.Normalize(a.Text)
		if err := r.typeText(ctx, text, a.Interval); err != nil {
			return err
		}
		r.trace(KindType, text, nil)
		return r.sleep(ctx, r.sc.Input.Pause)

	case scenario.ActionSleep:
		r.trace(KindSleep, a.Duration.String(), nil)
		return r.sleep(ctx, a.Duration)

	case scenario.ActionScreenshot:
		r.screenshot(ctx, a.Label)
		return nil

	case scenario.ActionRefreshWindow:
		return r.refresh(ctx)

	case scenario.ActionSort:
		return r.sort(ctx, a)

	default:
		return fmt.Errorf("unknown action %q", a.Do)
	}
}

// click clicks at absolute screen coordinates, then waits for the input
// pause plus the click settle time.
func (r *run) click(ctx context.Context, x, y int, note string) error {
	fmt.Fprintf(r.out, "  [click] (%d, %d) – %s\n", x, y, note)
	if err := r.deps.Driver.Click(ctx, x, y); err != nil {
		return fmt.Errorf("click (%d, %d): %w", x, y, err)
	}
	r.trace(KindClick, fmt.Sprintf("(%d, %d) %s", x, y, note), nil)
	if err := r.sleep(ctx, r.sc.Input.Pause); err != nil {
		return err
	}
	return r.sleep(ctx, r.sc.Input.ClickSettle)
}

// doubleClick is click with a double press.
func (r *run) doubleClick(ctx context.Context, x, y int, note string) error {
	fmt.Fprintf(r.out, "  [double-click] (%d, %d) – %s\n", x, y, note)
	if err := r.deps.Driver.DoubleClick(ctx, x, y); err != nil {
		return fmt.Errorf("double-click (%d, %d): %w", x, y, err)
	}
	r.trace(KindDoubleClick, fmt.Sprintf("(%d, %d) %s", x, y, note), nil)
	if err := r.sleep(ctx, r.sc.Input.Pause); err != nil {
		return err
	}
	return r.sleep(ctx, r.sc.Input.ClickSettle)
}

// typeText sends text in one call, or rune by rune when interval is set.
func (r *run) typeText(ctx context.Context, text string, interval scenario.Duration) error {
	if interval <= 0 {
		if err := r.deps.Driver.Type(ctx, text); err != nil {
			return fmt.Errorf("type: %w", err)
		}
		return nil
	}
	for _, ch := range text {
		if err := r.deps.Driver.Type(ctx, string(ch)); err != nil {
			return fmt.Errorf("type: %w", err)
		}
		if err := r.sleep(ctx, interval); err != nil {
			return err
		}
	}
	return nil
}

// sort clicks each column header twice, capturing the ascending and the
// descending state.
func (r *run) sort(ctx context.Context, a scenario.Action) error {
	cols := r.sc.Layout.Columns
	for _, name := range a.Columns {
		p, ok := cols.HeaderCenter(name)
		if !ok {
			return fmt.Errorf("unknown column %q", name)
		}
		x, y := p.Offset(r.win.X, r.win.Y)
		r.trace(KindSort, name, nil)

		if err := r.focus(ctx); err != nil {
			return err
		}
		for _, dir := range []struct{ suffix, word string }{
			{"asc", "ascending"},
			{"desc", "descending"},
		} {
			if dir.suffix == "asc" {
				fmt.Fprintf(r.out, "\n  Sorting by %s (%s) …\n", name, dir.word)
			} else {
				fmt.Fprintf(r.out, "  Sorting by %s (%s) …\n", name, dir.word)
			}
			if err := r.click(ctx, x, y, name+" header"); err != nil {
				return err
			}
			if err := r.sleep(ctx, a.Settle); err != nil {
				return err
			}
			r.screenshot(ctx, fmt.Sprintf("sort_%s_%s", name, dir.suffix))
		}
	}
	return nil
}
