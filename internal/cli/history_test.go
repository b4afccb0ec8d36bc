package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uiharness/internal/store"
)

var testEpoch = time.Date(2026, 1, 31, 15, 34, 27, 0, time.UTC)

// seedHistory writes two runs: a passing one and a newer failing one.
func seedHistory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.SaveRun(ctx, store.Run{
		ID:         "run-a",
		Scenario:   "botornot",
		Replay:     "/replays/a.replay",
		StartedAt:  testEpoch,
		FinishedAt: testEpoch.Add(42 * time.Second),
		Status:     store.StatusPassed,
		Steps: []store.Step{
			{Seq: 1, Title: "Building the solution", StartedAt: testEpoch},
			{Seq: 2, Title: "Launching BotOrNot", StartedAt: testEpoch.Add(3 * time.Second)},
		},
		Artifacts: []store.Artifact{
			{Seq: 1, Step: 2, Kind: store.KindScreenshot, Label: "app_launched", Path: "/shots/02_app_launched_153430.png", OK: true},
			{Seq: 2, Step: 2, Kind: store.KindScreenshot, Label: "after_button_click", Error: "screenshot not saved"},
		},
	}))
	require.NoError(t, st.SaveRun(ctx, store.Run{
		ID:         "run-b",
		Scenario:   "botornot",
		StartedAt:  testEpoch.Add(time.Hour),
		FinishedAt: testEpoch.Add(time.Hour + 31*time.Second),
		Status:     store.StatusFailed,
		ExitCode:   1,
		Error:      "window (step 3): window not found after 30s (30 polls)",
	}))
	return path
}

func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHistory_Text(t *testing.T) {
	path := seedHistory(t)

	out, err := executeCommand(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "RUN")
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "42s")
	assert.Contains(t, out, "window not found")

	// Newest first.
	assert.Less(t, bytes.Index([]byte(out), []byte("run-b")), bytes.Index([]byte(out), []byte("run-a")))
}

func TestHistory_JSONLimit(t *testing.T) {
	path := seedHistory(t)

	out, err := executeCommand(t, NewHistoryCommand(&RootOptions{Format: "json"}), "--db", path, "--limit", "1")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   []store.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "run-b", resp.Data[0].ID)
}

func TestHistory_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := executeCommand(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")
}

func TestHistory_Errors(t *testing.T) {
	t.Run("missing db flag", func(t *testing.T) {
		_, err := executeCommand(t, NewHistoryCommand(&RootOptions{Format: "text"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required flag")
	})

	t.Run("database not found", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.db")
		_, err := executeCommand(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", path)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.ErrorIs(t, err, errNoDatabase)
		assert.NoFileExists(t, path, "a missing database must not be created")
	})

	t.Run("negative limit", func(t *testing.T) {
		path := seedHistory(t)
		_, err := executeCommand(t, NewHistoryCommand(&RootOptions{Format: "text"}), "--db", path, "--limit", "-1")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}

func TestTrace_Text(t *testing.T) {
	path := seedHistory(t)

	out, err := executeCommand(t, NewTraceCommand(&RootOptions{Format: "text"}), "--db", path, "--run", "run-a")
	require.NoError(t, err)
	assert.Contains(t, out, "Run: run-a")
	assert.Contains(t, out, "Status: passed (exit 0)")
	assert.Contains(t, out, "  [1] Building the solution (+0s)")
	assert.Contains(t, out, "  [2] Launching BotOrNot (+3s)")
	assert.Contains(t, out, "screenshot app_launched -> /shots/02_app_launched_153430.png")
	assert.Contains(t, out, "screenshot after_button_click FAILED: screenshot not saved")
	assert.Contains(t, out, "Artifacts: 2 (1 saved)")
}

func TestTrace_JSON(t *testing.T) {
	path := seedHistory(t)

	out, err := executeCommand(t, NewTraceCommand(&RootOptions{Format: "json"}), "--db", path, "--run", "run-b")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   store.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, store.StatusFailed, resp.Data.Status)
	assert.Equal(t, 1, resp.Data.ExitCode)
}

func TestTrace_RunNotFound(t *testing.T) {
	path := seedHistory(t)

	out, err := executeCommand(t, NewTraceCommand(&RootOptions{Format: "text"}), "--db", path, "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, store.ErrRunNotFound)
	assert.Contains(t, out, "No run found: nope")
}

func TestTrace_MissingFlags(t *testing.T) {
	_, err := executeCommand(t, NewTraceCommand(&RootOptions{Format: "text"}), "--db", "runs.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run")
}
