package window

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/uiharness/internal/osa"
)

// CGWindowListOption bits.
const (
	cgOptionAll                    = 0
	cgOptionOnScreenOnly           = 1 << 0
	cgOptionExcludeDesktopElements = 1 << 4
)

const quartzScriptTemplate = `ObjC.import('CoreGraphics');
var list = $.CGWindowListCopyWindowInfo(%d, 0);
JSON.stringify(ObjC.deepUnwrap(ObjC.castRefToObject(list)) || []);`

// QuartzLister lists windows through CGWindowListCopyWindowInfo.
type QuartzLister struct {
	Bridge *osa.Bridge
}

type quartzWindow struct {
	Number int    `json:"kCGWindowNumber"`
	PID    int    `json:"kCGWindowOwnerPID"`
	Owner  string `json:"kCGWindowOwnerName"`
	Name   string `json:"kCGWindowName"`
	Layer  int    `json:"kCGWindowLayer"`
	Bounds struct {
		X      float64 `json:"X"`
		Y      float64 `json:"Y"`
		Width  float64 `json:"Width"`
		Height float64 `json:"Height"`
	} `json:"kCGWindowBounds"`
}

// List implements Lister.
func (l *QuartzLister) List(ctx context.Context, scope Scope) ([]Descriptor, error) {
	opts := cgOptionOnScreenOnly | cgOptionExcludeDesktopElements
	if scope == ScopeAll {
		opts = cgOptionAll | cgOptionExcludeDesktopElements
	}

	bridge := l.Bridge
	if bridge == nil {
		bridge = osa.New()
	}
	out, err := bridge.JavaScript(ctx, fmt.Sprintf(quartzScriptTemplate, opts))
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	return parseQuartz([]byte(out))
}

func parseQuartz(data []byte) ([]Descriptor, error) {
	var raw []quartzWindow
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode window list: %w", err)
	}

	out := make([]Descriptor, 0, len(raw))
	for _, w := range raw {
		out = append(out, Descriptor{
			ID:     w.Number,
			PID:    w.PID,
			Owner:  w.Owner,
			Title:  w.Name,
			Layer:  w.Layer,
			X:      int(w.Bounds.X),
			Y:      int(w.Bounds.Y),
			Width:  int(w.Bounds.Width),
			Height: int(w.Bounds.Height),
		})
	}
	return out, nil
}
