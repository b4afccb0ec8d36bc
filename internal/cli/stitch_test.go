package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uiharness/internal/capture"
	"github.com/roach88/uiharness/internal/proc"
)

func shotDir(t *testing.T, n int) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "screenshots")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for i := 1; i <= n; i++ {
		name := filepath.Join(dir, string(rune('0'+i))+"_shot.png")
		require.NoError(t, os.WriteFile(name, []byte("png"), 0o644))
	}
	return dir
}

// fakeFFmpeg writes the output file named by the last argument.
func fakeFFmpeg(calls *[]proc.Command) proc.Runner {
	return func(_ context.Context, c proc.Command) ([]byte, error) {
		*calls = append(*calls, c)
		return nil, os.WriteFile(c.Args[len(c.Args)-1], []byte("mp4 data"), 0o644)
	}
}

func lookFFmpeg(string) (string, error) { return "/usr/bin/ffmpeg", nil }

// newStitchCmd runs opts as given; flags on the returned command are not
// bound to opts.
func newStitchCmd(opts *StitchOptions) *cobra.Command {
	cmd := NewStitchCommand(opts.RootOptions)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runStitch(opts, args[0], cmd)
	}
	return cmd
}

func TestStitch_DefaultOutput(t *testing.T) {
	dir := shotDir(t, 3)
	var calls []proc.Command
	opts := &StitchOptions{
		RootOptions:   &RootOptions{Format: "text"},
		FrameDuration: capture.DefaultFrameDuration,
		Runner:        fakeFFmpeg(&calls),
		LookPath:      lookFFmpeg,
	}

	out, err := executeCommand(t, newStitchCmd(opts), dir)
	require.NoError(t, err)

	want := filepath.Join(filepath.Dir(dir), "test_run.mp4")
	assert.FileExists(t, want)
	assert.Contains(t, out, "Video saved: "+want+" (3 frames, 8 bytes)")
	require.Len(t, calls, 1)
	assert.Equal(t, "/usr/bin/ffmpeg", calls[0].Path)
}

func TestStitch_JSON(t *testing.T) {
	dir := shotDir(t, 2)
	output := filepath.Join(t.TempDir(), "out.mp4")
	var calls []proc.Command
	opts := &StitchOptions{
		RootOptions:   &RootOptions{Format: "json"},
		Output:        output,
		FrameDuration: 3 * time.Second,
		Runner:        fakeFFmpeg(&calls),
		LookPath:      lookFFmpeg,
	}

	out, err := executeCommand(t, newStitchCmd(opts), dir)
	require.NoError(t, err)

	var resp struct {
		Status string               `json:"status"`
		Data   capture.StitchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, output, resp.Data.Output)
	assert.Equal(t, 2, resp.Data.Frames)

	list, err := os.ReadFile(filepath.Join(dir, capture.FrameList))
	require.NoError(t, err)
	assert.Contains(t, string(list), "duration 3")
}

func TestStitch_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		opts := &StitchOptions{RootOptions: &RootOptions{Format: "text"}, FrameDuration: capture.DefaultFrameDuration}
		_, err := executeCommand(t, newStitchCmd(opts), filepath.Join(t.TempDir(), "none"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("ffmpeg missing", func(t *testing.T) {
		opts := &StitchOptions{
			RootOptions:   &RootOptions{Format: "text"},
			FrameDuration: capture.DefaultFrameDuration,
			LookPath:      func(string) (string, error) { return "", os.ErrNotExist },
		}
		_, err := executeCommand(t, newStitchCmd(opts), shotDir(t, 3))
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.ErrorIs(t, err, capture.ErrToolUnavailable)
	})

	t.Run("one frame", func(t *testing.T) {
		var calls []proc.Command
		opts := &StitchOptions{
			RootOptions:   &RootOptions{Format: "text"},
			FrameDuration: capture.DefaultFrameDuration,
			Runner:        fakeFFmpeg(&calls),
			LookPath:      lookFFmpeg,
		}
		_, err := executeCommand(t, newStitchCmd(opts), shotDir(t, 1))
		require.Error(t, err)
		assert.ErrorIs(t, err, capture.ErrNotEnoughFrames)
		assert.Empty(t, calls)
	})
}
