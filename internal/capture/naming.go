package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"
)

// FrameList is the ffmpeg concat list written by Stitch.
const FrameList = "frames.txt"

// Namer produces screenshot paths of the form
// {step:02d}_{label}_{HHMMSS}.png. Names are unique within a Namer: a
// collision gets a -N suffix before the extension.
type Namer struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	used map[string]bool
}

// NewNamer returns a Namer for dir. A nil now uses time.Now.
func NewNamer(dir string, now func() time.Time) *Namer {
	if now == nil {
		now = time.Now
	}
	return &Namer{dir: dir, now: now, used: make(map[string]bool)}
}

// Dir returns the screenshot directory.
func (n *Namer) Dir() string {
	return n.dir
}

// Next returns the path for a screenshot taken at step.
func (n *Namer) Next(step int, label string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	base := fmt.Sprintf("%02d_%s_%s", step, sanitizeLabel(label), n.now().Format("150405"))
	name := base + ".png"
	for i := 2; n.taken(name); i++ {
		name = fmt.Sprintf("%s-%d.png", base, i)
	}
	n.used[name] = true
	return filepath.Join(n.dir, name)
}

func (n *Namer) taken(name string) bool {
	if n.used[name] {
		return true
	}
	_, err := os.Stat(filepath.Join(n.dir, name))
	return err == nil
}

// sanitizeLabel keeps labels usable as file name segments.
func sanitizeLabel(label string) string {
	label = norm.NFC.String(strings.TrimSpace(label))
	if label == "" {
		return "screenshot"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ', '\t', '\n', 0:
			return '_'
		}
		return r
	}, label)
}

// Purge prepares dir for a run: it is created if missing and cleared of
// previous screenshots and the stitch list. Other files are left alone.
func Purge(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create screenshot dir: %w", err)
	}
	pngs, err := ListPNGs(dir)
	if err != nil {
		return err
	}
	for _, p := range append(pngs, filepath.Join(dir, FrameList)) {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("purge %s: %w", p, err)
		}
	}
	return nil
}

// ListPNGs returns the screenshots in dir, sorted by name.
func ListPNGs(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}
