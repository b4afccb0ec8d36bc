package proc

import (
	"os"
	"os/exec"
	"strings"
	"sync"
)

// DefaultTailBytes is how much of a process's stdout/stderr is retained
// for diagnostics.
const DefaultTailBytes = 2000

// Command describes an executable invocation.
type Command struct {
	// Path is the executable, resolved through PATH when it has no separator.
	Path string `json:"path"`

	// Args are passed after Path.
	Args []string `json:"args,omitempty"`

	// Dir is the working directory. Empty means the current directory.
	Dir string `json:"dir,omitempty"`

	// Env entries are appended to the current environment.
	Env []string `json:"env,omitempty"`
}

// String renders the command line for logs.
func (c Command) String() string {
	parts := append([]string{c.Path}, c.Args...)
	return strings.Join(parts, " ")
}

func (c Command) exec() *exec.Cmd {
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

// TailBuffer is an io.Writer that keeps only the last max bytes written.
//
// Thread-safety: safe for concurrent use; exec.Cmd may write stdout and
// stderr from separate goroutines.
type TailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

// NewTailBuffer creates a buffer retaining at most max bytes.
// A non-positive max uses DefaultTailBytes.
func NewTailBuffer(max int) *TailBuffer {
	if max <= 0 {
		max = DefaultTailBytes
	}
	return &TailBuffer{max: max}
}

// Write implements io.Writer. It never fails.
func (b *TailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

// String returns the retained bytes.
func (b *TailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
