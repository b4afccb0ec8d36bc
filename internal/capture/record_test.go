package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCommand_Darwin(t *testing.T) {
	c, err := RecorderCommand(RecorderOptions{GOOS: "darwin", Output: "/tmp/live.mp4", LookPath: foundAt("/opt/homebrew/bin/ffmpeg")})
	require.NoError(t, err)
	assert.Equal(t, "/opt/homebrew/bin/ffmpeg", c.Path)
	assert.Equal(t, []string{
		"-y", "-f", "avfoundation", "-capture_cursor", "1", "-framerate", "30", "-i", "1:none",
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "/tmp/live.mp4",
	}, c.Args)
}

func TestRecorderCommand_Linux(t *testing.T) {
	c, err := RecorderCommand(RecorderOptions{GOOS: "linux", Device: ":99", Framerate: 10, Output: "out.mp4", LookPath: foundAt("ffmpeg")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-y", "-f", "x11grab", "-framerate", "10", "-i", ":99",
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "out.mp4",
	}, c.Args)
}

func TestRecorderCommand_Errors(t *testing.T) {
	_, err := RecorderCommand(RecorderOptions{GOOS: "darwin", LookPath: foundAt("ffmpeg")})
	require.Error(t, err, "output is required")

	_, err = RecorderCommand(RecorderOptions{GOOS: "darwin", Output: "x.mp4", LookPath: notFound})
	assert.ErrorIs(t, err, ErrToolUnavailable)

	_, err = RecorderCommand(RecorderOptions{GOOS: "windows", Output: "x.mp4", LookPath: foundAt("ffmpeg")})
	assert.ErrorIs(t, err, ErrToolUnavailable)
}
