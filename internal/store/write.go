package store

import (
	"context"
	"fmt"
	"time"
)

// timeLayout is used for every stored timestamp. Fixed width keeps
// lexical and chronological order identical.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// SaveRun writes a run with its steps and artifacts in one transaction.
// Saving a run ID that already exists replaces it.
func (s *Store) SaveRun(ctx context.Context, r Run) error {
	if r.ID == "" {
		return fmt.Errorf("save run: id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	defer tx.Rollback()

	// Cascades to steps and artifacts.
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, r.ID); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, scenario, replay, started_at, finished_at, status, exit_code, error, screenshot_dir, video)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.Scenario,
		r.Replay,
		formatTime(r.StartedAt),
		formatTime(r.FinishedAt),
		r.Status,
		r.ExitCode,
		r.Error,
		r.ScreenshotDir,
		r.Video,
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	for _, st := range r.Steps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO steps (run_id, seq, title, started_at) VALUES (?, ?, ?, ?)
		`, r.ID, st.Seq, st.Title, formatTime(st.StartedAt))
		if err != nil {
			return fmt.Errorf("save step %d: %w", st.Seq, err)
		}
	}

	for _, a := range r.Artifacts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO artifacts (run_id, seq, step, kind, label, path, ok, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, a.Seq, a.Step, a.Kind, a.Label, a.Path, a.OK, a.Error)
		if err != nil {
			return fmt.Errorf("save artifact %d: %w", a.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}
