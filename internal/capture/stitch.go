package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/uiharness/internal/proc"
)

// Stitch defaults.
const (
	DefaultFrameDuration = 1500 * time.Millisecond
	DefaultStitchTimeout = 60 * time.Second
)

// ErrNotEnoughFrames is returned when fewer than two screenshots exist.
var ErrNotEnoughFrames = errors.New("not enough screenshots for a video")

// StitchOptions configures Stitch.
type StitchOptions struct {
	FFmpeg        string
	FrameDuration time.Duration
	Timeout       time.Duration
	Runner        proc.Runner
	LookPath      LookPathFunc
}

// StitchResult describes the produced video.
type StitchResult struct {
	Output string `json:"output"`
	Frames int    `json:"frames"`
	Bytes  int64  `json:"bytes"`
}

// Stitch concatenates the screenshots in dir, in name order, into an
// H.264 MP4 at out. Each frame is shown for FrameDuration and the last
// frame is repeated so it is not dropped.
func Stitch(ctx context.Context, dir, out string, opts StitchOptions) (*StitchResult, error) {
	name := opts.FFmpeg
	if name == "" {
		name = "ffmpeg"
	}
	tool, err := resolve(opts.LookPath, name)
	if err != nil {
		return nil, err
	}

	// concat resolves relative entries against the list file, not the cwd
	if dir, err = filepath.Abs(dir); err != nil {
		return nil, fmt.Errorf("resolve screenshot dir: %w", err)
	}
	pngs, err := ListPNGs(dir)
	if err != nil {
		return nil, err
	}
	if len(pngs) < 2 {
		return nil, fmt.Errorf("%w: found %d in %s", ErrNotEnoughFrames, len(pngs), dir)
	}

	duration := opts.FrameDuration
	if duration <= 0 {
		duration = DefaultFrameDuration
	}
	list := filepath.Join(dir, FrameList)
	if err := os.WriteFile(list, []byte(concatList(pngs, duration)), 0o644); err != nil {
		return nil, fmt.Errorf("write frame list: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultStitchTimeout
	}
	runner := opts.Runner
	if runner == nil {
		runner = proc.Run
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err = runner(ctx, proc.Command{Path: tool, Args: []string{
		"-y", "-f", "concat", "-safe", "0",
		"-i", list, "-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "-r", "1",
		out,
	}})
	if err != nil {
		return nil, fmt.Errorf("stitch video: %w", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		return nil, fmt.Errorf("stitch video: %s was not written", out)
	}
	return &StitchResult{Output: out, Frames: len(pngs), Bytes: info.Size()}, nil
}

// concatList renders an ffmpeg concat demuxer script.
func concatList(pngs []string, frame time.Duration) string {
	secs := strconv.FormatFloat(frame.Seconds(), 'f', -1, 64)
	var b strings.Builder
	for _, p := range pngs {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcat(p))
		fmt.Fprintf(&b, "duration %s\n", secs)
	}
	fmt.Fprintf(&b, "file '%s'\n", escapeConcat(pngs[len(pngs)-1]))
	return b.String()
}

func escapeConcat(p string) string {
	return strings.ReplaceAll(p, `'`, `'\''`)
}
