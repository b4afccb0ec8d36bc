package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/uiharness/internal/scenario"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion %s failed: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// Check evaluates one assertion against a finished result.
func Check(res *Result, a scenario.Assertion) error {
	switch a.Type {
	case scenario.AssertScreenshotOrder:
		return assertScreenshotOrder(res.ScreenshotLabels(), a.Labels)
	case scenario.AssertScreenshotCount:
		n := len(res.ScreenshotLabels())
		if n != a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d screenshots", a.Count), Actual: fmt.Sprintf("%d", n)}
		}
		return nil
	case scenario.AssertStepCount:
		n := len(res.Steps)
		if n != a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%d steps", a.Count), Actual: fmt.Sprintf("%d", n)}
		}
		return nil
	case scenario.AssertTraceContains:
		for _, e := range res.Trace {
			if strings.Contains(e.String(), a.Label) {
				return nil
			}
		}
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("an event matching %q", a.Label), Actual: "no match in trace"}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertScreenshotOrder checks that want appears in got in order.
// Other labels may appear in between.
func assertScreenshotOrder(got, want []string) error {
	i := 0
	for _, label := range got {
		if i < len(want) && label == want[i] {
			i++
		}
	}
	if i == len(want) {
		return nil
	}
	return &AssertionError{
		Type:     scenario.AssertScreenshotOrder,
		Expected: fmt.Sprintf("%q after %d matched labels", want[i], i),
		Actual:   "[" + strings.Join(got, " ") + "]",
	}
}

// check runs the scenario assertions and fails the result on any miss.
func (r *run) check() {
	if len(r.sc.Assertions) == 0 {
		return
	}
	failed := 0
	for _, a := range r.sc.Assertions {
		if err := Check(r.result, a); err != nil {
			failed++
			fmt.Fprintf(r.out, "  [assert] FAILED: %v\n", err)
			r.result.AddError(err.Error())
		}
	}
	fmt.Fprintf(r.out, "  [assert] %d/%d passed\n", len(r.sc.Assertions)-failed, len(r.sc.Assertions))
}
