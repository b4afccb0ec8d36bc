package window

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/uiharness/internal/osa"
	"github.com/roach88/uiharness/internal/proc"
)

const quartzFixture = `[
 {"kCGWindowNumber":41,"kCGWindowOwnerPID":311,"kCGWindowOwnerName":"Dock","kCGWindowName":"Dock","kCGWindowLayer":20,
  "kCGWindowBounds":{"X":0,"Y":0,"Width":1728,"Height":1117}},
 {"kCGWindowNumber":88,"kCGWindowOwnerPID":4242,"kCGWindowOwnerName":"BotOrNot.Avalonia","kCGWindowLayer":0,
  "kCGWindowBounds":{"X":212.5,"Y":140,"Width":1200,"Height":800}}
]`

func TestQuartzLister_List(t *testing.T) {
	var args [][]string
	bridge := &osa.Bridge{Runner: func(ctx context.Context, c proc.Command) ([]byte, error) {
		args = append(args, c.Args)
		return []byte(quartzFixture), nil
	}}
	l := &QuartzLister{Bridge: bridge}

	ds, err := l.List(context.Background(), ScopeOnScreen)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, Descriptor{ID: 88, PID: 4242, Owner: "BotOrNot.Avalonia", X: 212, Y: 140, Width: 1200, Height: 800}, ds[1])
	assert.Equal(t, "", ds[1].Title)
	assert.Equal(t, 20, ds[0].Layer)

	require.Len(t, args, 1)
	assert.Equal(t, []string{"-l", "JavaScript"}, args[0][:2])
	assert.Contains(t, args[0][3], "CGWindowListCopyWindowInfo(17, 0)")

	_, err = l.List(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.Contains(t, args[1][3], "CGWindowListCopyWindowInfo(16, 0)")
}

func TestQuartzLister_BadJSON(t *testing.T) {
	bridge := &osa.Bridge{Runner: func(ctx context.Context, c proc.Command) ([]byte, error) {
		return []byte("execution error: not allowed"), nil
	}}
	_, err := (&QuartzLister{Bridge: bridge}).List(context.Background(), ScopeOnScreen)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode window list")
}

const wmctrlFixture = `0x01e00003 -1 1200   0    0    1920 32   host Top Panel
0x03c00007  0 4242   10   40   1280 800  host Bot or Not  -  Replay
0x04000001  1 5151   0    0    800  600  host Other desktop
`

func wmctrlRunner(t *testing.T) proc.Runner {
	return func(ctx context.Context, c proc.Command) ([]byte, error) {
		require.Equal(t, "wmctrl", c.Path)
		switch c.Args[0] {
		case "-lGp":
			return []byte(wmctrlFixture), nil
		case "-d":
			return []byte("0  * DG: 1920x1080  VP: 0,0  WA: 0,32 1920x1048  Main\n1  - DG: 1920x1080  VP: N/A  WA: 0,32 1920x1048  Second\n"), nil
		}
		t.Fatalf("unexpected wmctrl args %v", c.Args)
		return nil, nil
	}
}

func TestWmctrlLister_OnScreen(t *testing.T) {
	l := &WmctrlLister{
		Runner:    wmctrlRunner(t),
		OwnerName: func(pid int) string { return map[int]string{1200: "panel", 4242: "BotOrNot.Avalonia"}[pid] },
	}

	ds, err := l.List(context.Background(), ScopeOnScreen)
	require.NoError(t, err)
	require.Len(t, ds, 2)

	assert.Equal(t, "panel", ds[0].Owner)
	assert.Equal(t, 1, ds[0].Layer)

	assert.Equal(t, Descriptor{
		ID: 0x03c00007, PID: 4242, Owner: "BotOrNot.Avalonia", Title: "Bot or Not  -  Replay",
		X: 10, Y: 40, Width: 1280, Height: 800,
	}, ds[1])
}

func TestWmctrlLister_AllDesktops(t *testing.T) {
	l := &WmctrlLister{Runner: wmctrlRunner(t), OwnerName: func(int) string { return "" }}

	ds, err := l.List(context.Background(), ScopeAll)
	require.NoError(t, err)
	assert.Len(t, ds, 3)
	assert.Equal(t, "Other desktop", ds[2].Title)
}

func TestParseWmctrl_Malformed(t *testing.T) {
	_, err := parseWmctrl([]byte("0x01 0 12\n"))
	require.Error(t, err)

	_, err = parseWmctrl([]byte("zz 0 1 2 3 4 5 host t\n"))
	require.Error(t, err)
}

func TestListerFor(t *testing.T) {
	l, err := ListerFor("darwin", osa.New(), proc.Run)
	require.NoError(t, err)
	assert.IsType(t, &QuartzLister{}, l)

	l, err = ListerFor("linux", osa.New(), proc.Run)
	require.NoError(t, err)
	assert.IsType(t, &WmctrlLister{}, l)

	_, err = ListerFor("plan9", osa.New(), proc.Run)
	require.Error(t, err)
}
