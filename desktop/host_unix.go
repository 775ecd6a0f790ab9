//go:build linux || darwin

package desktop

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// Host wires a Desktop to a real terminal: raw mode, alternate screen,
// and SIGWINCH-driven resize, manipulating unix.Termios directly rather
// than going through a higher-level terminal-mode wrapper.
type Host struct {
	desktop *Desktop
	fd      int

	mu          sync.Mutex
	origTermios *unix.Termios
	inRawMode   bool

	sigChan chan os.Signal
	done    chan struct{}
}

// NewHost creates a host for stdout's terminal, driving d.
func NewHost(d *Desktop) *Host {
	return &Host{
		desktop: d,
		fd:      int(os.Stdout.Fd()),
		sigChan: make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
}

// TerminalSize reads the current terminal dimensions via TIOCGWINSZ.
func TerminalSize(fd int) (width, height int, err error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Col), int(ws.Row), nil
}

// EnterRawMode puts the controlling terminal into raw mode, enters the
// alternate screen, and starts the SIGWINCH resize watcher.
func (h *Host) EnterRawMode() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inRawMode {
		return nil
	}

	termios, err := unix.IoctlGetTermios(h.fd, ioctlGetTermios)
	if err != nil {
		return fmt.Errorf("get termios: %w", err)
	}
	h.origTermios = termios

	raw := *termios
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(h.fd, ioctlSetTermios, &raw); err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	h.inRawMode = true

	signal.Notify(h.sigChan, syscall.SIGWINCH)
	go h.watchResize()

	io := h.desktop.writer
	fmt.Fprint(io, "\x1b[?1049h\x1b[2J\x1b[H\x1b[?25l\x1b[?2004h")
	return nil
}

// ExitRawMode restores the terminal's original mode and leaves the
// alternate screen.
func (h *Host) ExitRawMode() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.inRawMode {
		return nil
	}

	io := h.desktop.writer
	fmt.Fprint(io, "\x1b[?2004l\x1b[?25h\x1b[?1049l")

	close(h.done)
	signal.Stop(h.sigChan)

	if h.origTermios != nil {
		if err := unix.IoctlSetTermios(h.fd, ioctlSetTermios, h.origTermios); err != nil {
			return fmt.Errorf("restore termios: %w", err)
		}
	}
	h.inRawMode = false
	return nil
}

func (h *Host) watchResize() {
	for {
		select {
		case <-h.done:
			return
		case <-h.sigChan:
			width, height, err := TerminalSize(h.fd)
			if err != nil {
				continue
			}
			h.desktop.Resize(width, height)
		}
	}
}
