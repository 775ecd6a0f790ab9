//go:build windows

package desktop

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// Host wires a Desktop to a real terminal on Windows. Grounded on
// majorcontext-moat's internal/term/raw.go, which uses golang.org/x/term
// rather than direct unix syscalls — the idiomatic choice once unix
// termios ioctls aren't available.
type Host struct {
	desktop *Desktop
	fd      int

	mu       sync.Mutex
	oldState *term.State
	inRaw    bool
}

// NewHost creates a host for stdout's terminal, driving d.
func NewHost(d *Desktop) *Host {
	return &Host{desktop: d, fd: int(os.Stdout.Fd())}
}

// TerminalSize reads the current terminal dimensions.
func TerminalSize(fd int) (width, height int, err error) {
	return term.GetSize(fd)
}

// EnterRawMode puts the console into raw mode and enters the alternate
// screen. Windows has no SIGWINCH; callers poll TerminalSize or rely on
// ConPTY-driven resize events from an embedded terminal instead.
func (h *Host) EnterRawMode() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inRaw {
		return nil
	}
	state, err := term.MakeRaw(h.fd)
	if err != nil {
		return fmt.Errorf("make raw: %w", err)
	}
	h.oldState = state
	h.inRaw = true
	fmt.Fprint(h.desktop.writer, "\x1b[?1049h\x1b[2J\x1b[H\x1b[?25l")
	return nil
}

// ExitRawMode restores the console's original mode.
func (h *Host) ExitRawMode() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.inRaw {
		return nil
	}
	fmt.Fprint(h.desktop.writer, "\x1b[?25h\x1b[?1049l")
	if err := term.Restore(h.fd, h.oldState); err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	h.inRaw = false
	return nil
}
