package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned by GetRun for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, scenario, replay, started_at, finished_at, status, exit_code, error, screenshot_dir, video`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var started, finished string
	err := sc.Scan(&r.ID, &r.Scenario, &r.Replay, &started, &finished,
		&r.Status, &r.ExitCode, &r.Error, &r.ScreenshotDir, &r.Video)
	if err != nil {
		return Run{}, err
	}
	if r.StartedAt, err = parseTime(started); err != nil {
		return Run{}, err
	}
	if r.FinishedAt, err = parseTime(finished); err != nil {
		return Run{}, err
	}
	return r, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// ListRuns returns the most recent runs first, without steps or
// artifacts. A non-positive limit returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a run with its steps and artifacts in seq order.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	if r.Steps, err = s.readSteps(ctx, id); err != nil {
		return nil, err
	}
	if r.Artifacts, err = s.readArtifacts(ctx, id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) readSteps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, title, started_at FROM steps WHERE run_id = ? ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read steps: %w", err)
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var st Step
		var started string
		if err := rows.Scan(&st.Seq, &st.Title, &started); err != nil {
			return nil, fmt.Errorf("read steps: %w", err)
		}
		if st.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("read steps: %w", err)
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

func (s *Store) readArtifacts(ctx context.Context, runID string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, step, kind, label, path, ok, error FROM artifacts WHERE run_id = ? ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read artifacts: %w", err)
	}
	defer rows.Close()

	var arts []Artifact
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.Seq, &a.Step, &a.Kind, &a.Label, &a.Path, &a.OK, &a.Error); err != nil {
			return nil, fmt.Errorf("read artifacts: %w", err)
		}
		arts = append(arts, a)
	}
	return arts, rows.Err()
}
