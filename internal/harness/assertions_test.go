package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uiharness/internal/scenario"
)

func resultWithShots(labels ...string) *Result {
	r := NewResult("r", "s", testEpoch)
	for i, l := range labels {
		r.Artifacts = append(r.Artifacts, Artifact{Seq: i + 1, Kind: ArtifactScreenshot, Label: l, OK: true})
	}
	return r
}

func TestCheck_ScreenshotOrder(t *testing.T) {
	r := resultWithShots("app_launched", "after_button_click", "sort_Name_asc", "final_state")

	tests := []struct {
		name   string
		labels []string
		pass   bool
	}{
		{"exact", []string{"app_launched", "after_button_click", "sort_Name_asc", "final_state"}, true},
		{"gaps allowed", []string{"app_launched", "final_state"}, true},
		{"wrong order", []string{"final_state", "app_launched"}, false},
		{"missing", []string{"app_launched", "replay_loaded"}, false},
		{"empty", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(r, scenario.Assertion{Type: scenario.AssertScreenshotOrder, Labels: tt.labels})
			if tt.pass {
				assert.NoError(t, err)
				return
			}
			var ae *AssertionError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, scenario.AssertScreenshotOrder, ae.Type)
		})
	}
}

func TestCheck_ScreenshotOrderMessage(t *testing.T) {
	r := resultWithShots("a", "b")
	err := Check(r, scenario.Assertion{Type: scenario.AssertScreenshotOrder, Labels: []string{"a", "c"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"c" after 1 matched labels`)
	assert.Contains(t, err.Error(), "[a b]")
}

func TestCheck_Counts(t *testing.T) {
	r := resultWithShots("a", "b", "c")
	r.Steps = []StepRecord{{Seq: 1}, {Seq: 2}}

	assert.NoError(t, Check(r, scenario.Assertion{Type: scenario.AssertScreenshotCount, Count: 3}))
	assert.Error(t, Check(r, scenario.Assertion{Type: scenario.AssertScreenshotCount, Count: 2}))
	assert.NoError(t, Check(r, scenario.Assertion{Type: scenario.AssertStepCount, Count: 2}))
	assert.Error(t, Check(r, scenario.Assertion{Type: scenario.AssertStepCount, Count: 10}))
}

func TestCheck_ScreenshotCountIgnoresVideo(t *testing.T) {
	r := resultWithShots("a", "b")
	r.Artifacts = append(r.Artifacts, Artifact{Seq: 3, Kind: ArtifactVideo, Label: "stitched"})

	assert.NoError(t, Check(r, scenario.Assertion{Type: scenario.AssertScreenshotCount, Count: 2}))
}

func TestCheck_TraceContains(t *testing.T) {
	r := NewResult("r", "s", testEpoch)
	r.Trace = []TraceEvent{
		{Seq: 1, Step: 4, Kind: KindClick, Detail: "(140, 110) Select Replay File area"},
		{Seq: 2, Step: 4, Kind: KindScreenshot, Detail: "after_button_click"},
	}

	assert.NoError(t, Check(r, scenario.Assertion{Type: scenario.AssertTraceContains, Label: "Select Replay File"}))
	assert.NoError(t, Check(r, scenario.Assertion{Type: scenario.AssertTraceContains, Label: "04 screenshot"}))
	assert.Error(t, Check(r, scenario.Assertion{Type: scenario.AssertTraceContains, Label: "sort_Name_asc"}))
}

func TestCheck_UnknownType(t *testing.T) {
	err := Check(NewResult("r", "s", testEpoch), scenario.Assertion{Type: "pixel_diff"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown assertion type")
}
