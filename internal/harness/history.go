package harness

import (
	"context"

	"github.com/roach88/uiharness/internal/store"
)

// ToRun converts a result into a run history record.
func (r *Result) ToRun() store.Run {
	run := store.Run{
		ID:            r.RunID,
		Scenario:      r.Scenario,
		Replay:        r.Replay,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		Status:        store.StatusPassed,
		ExitCode:      r.ExitCode,
		ScreenshotDir: r.ScreenshotDir,
		Video:         r.Video,
	}
	if !r.Pass {
		run.Status = store.StatusFailed
	}
	if len(r.Errors) > 0 {
		run.Error = r.Errors[0]
	}
	for _, s := range r.Steps {
		run.Steps = append(run.Steps, store.Step{Seq: s.Seq, Title: s.Title, StartedAt: s.StartedAt})
	}
	for _, a := range r.Artifacts {
		kind := store.KindScreenshot
		if a.Kind == ArtifactVideo {
			kind = store.KindVideo
		}
		run.Artifacts = append(run.Artifacts, store.Artifact{
			Seq:   a.Seq,
			Step:  a.Step,
			Kind:  kind,
			Label: a.Label,
			Path:  a.Path,
			OK:    a.OK,
			Error: a.Error,
		})
	}
	return run
}

// Save persists the result to the run history.
func Save(ctx context.Context, st *store.Store, r *Result) error {
	return st.SaveRun(ctx, r.ToRun())
}
