// Package embterm wires a PTY backend and a VT100 emulator into a
// desktop.Window, letting a child process appear embedded inside the
// desktop as an ordinary paintable, focusable window.
package embterm

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/kungfusheep/tvwm/cellbuf"
	"github.com/kungfusheep/tvwm/desktop"
	"github.com/kungfusheep/tvwm/input"
	"github.com/kungfusheep/tvwm/ptyio"
	"github.com/kungfusheep/tvwm/vt100"
)

// Terminal embeds a PTY-backed child process as a desktop.Window. It owns
// a ptyio.Backend and a vt100.Emulator pair and runs the background
// reader thread described in §4.E "Reader loop".
type Terminal struct {
	mu sync.Mutex

	backend  ptyio.Backend
	emulator *vt100.Emulator
	rect     desktop.Rect
	zOrder   int
	visible  bool
	dirty    bool

	log zerolog.Logger

	closeOnce sync.Once
	onClose   func(*Terminal)

	readBuf [4096]byte
}

// Option configures a Terminal at construction.
type Option func(*Terminal)

// WithZOrder sets the paint order (default 0).
func WithZOrder(z int) Option { return func(t *Terminal) { t.zOrder = z } }

// WithLogger attaches diagnostics. The zero value is zerolog's disabled
// logger, matching the library-not-daemon posture of the rest of the
// module.
func WithLogger(l zerolog.Logger) Option { return func(t *Terminal) { t.log = l } }

// OnClose registers a callback fired exactly once, after the child exits
// or the terminal is disposed, so the embedding desktop can remove the
// window (§3 "Lifecycle... the control's containing window is closed
// exactly once").
func OnClose(fn func(*Terminal)) Option { return func(t *Terminal) { t.onClose = fn } }

// New spawns command in a PTY sized to rect and starts the background
// reader. A non-nil error here is §7's PtyUnavailable — the caller must
// treat construction as having failed outright.
func New(rect desktop.Rect, command string, args []string, opts ...Option) (*Terminal, error) {
	backend, err := ptyio.Start(ptyio.Options{
		Command: command,
		Args:    args,
		Rows:    rect.Height,
		Cols:    rect.Width,
	})
	if err != nil {
		return nil, err
	}

	t := &Terminal{
		backend:  backend,
		emulator: vt100.New(rect.Width, rect.Height),
		rect:     rect,
		visible:  true,
		dirty:    true,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	go t.readLoop()
	return t, nil
}

// newWithBackend builds a Terminal around an already-constructed backend,
// bypassing ptyio.Start. Used by tests to exercise the reader/close-once
// logic without spawning a real child process.
func newWithBackend(rect desktop.Rect, backend ptyio.Backend, opts ...Option) *Terminal {
	t := &Terminal{
		backend:  backend,
		emulator: vt100.New(rect.Width, rect.Height),
		rect:     rect,
		visible:  true,
		dirty:    true,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	go t.readLoop()
	return t
}

func (t *Terminal) readLoop() {
	for {
		n, err := t.backend.Read(t.readBuf[:])
		if n > 0 {
			t.emulator.Process(t.readBuf[:n])
			t.mu.Lock()
			t.dirty = true
			t.mu.Unlock()
		}
		if err != nil {
			t.log.Debug().Err(err).Msg("pty reader observed eof")
			t.handleExit()
			return
		}
	}
}

// handleExit disposes the backend and fires onClose exactly once (§4.E
// "On EOF, disposes the backend, fires a process-exited notification, and
// closes the containing window exactly once").
func (t *Terminal) handleExit() {
	t.closeOnce.Do(func() {
		t.backend.Dispose()
		if t.onClose != nil {
			t.onClose(t)
		}
	})
}

// Dispose tears the terminal down: closes the PTY master (the reader's
// next read then returns EOF) and lets handleExit run exactly once.
func (t *Terminal) Dispose() {
	t.closeOnce.Do(func() {
		t.backend.Dispose()
		if t.onClose != nil {
			t.onClose(t)
		}
	})
}

// Rect implements desktop.Window.
func (t *Terminal) Rect() desktop.Rect {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rect
}

// SetRect moves/resizes the terminal, resizing both the PTY and the
// emulator screen.
func (t *Terminal) SetRect(r desktop.Rect) {
	t.mu.Lock()
	t.rect = r
	t.dirty = true
	t.mu.Unlock()
	t.emulator.Resize(r.Width, r.Height)
	t.backend.Resize(r.Height, r.Width)
}

// ZOrder implements desktop.Window.
func (t *Terminal) ZOrder() int { return t.zOrder }

// Visible implements desktop.Window.
func (t *Terminal) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// SetVisible toggles paint participation.
func (t *Terminal) SetVisible(v bool) {
	t.mu.Lock()
	t.visible = v
	t.dirty = true
	t.mu.Unlock()
}

// PaintInto copies the emulator's visible screen into dst (§2 "The
// Terminal control plugs the emulator's buffer into the paint path").
func (t *Terminal) PaintInto(dst *cellbuf.Buffer, defaultStyle cellbuf.Style) error {
	t.emulator.Lock()
	defer t.emulator.Unlock()
	src := t.emulator.Screen()
	w, h := src.Size()
	dst.CopyRegion(src, 0, 0, 0, 0, w, h)
	return nil
}

// IsDirty implements desktop.Window.
func (t *Terminal) IsDirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dirty
}

// ClearDirty implements desktop.Window.
func (t *Terminal) ClearDirty() {
	t.mu.Lock()
	t.dirty = false
	t.mu.Unlock()
}

// HandleKey implements desktop.FocusableWindow: encodes the key per §4.E
// and writes it to the PTY.
func (t *Terminal) HandleKey(ev input.KeyEvent) bool {
	t.emulator.Lock()
	appCursor := t.emulator.AppCursorKeys()
	t.emulator.Unlock()
	seq := ptyio.EncodeKey(ev, appCursor)
	if seq == nil {
		return false
	}
	if _, err := t.backend.Write(seq); err != nil {
		t.log.Debug().Err(err).Msg("pty write failed")
	}
	return true
}

// HandleMouse implements desktop.FocusableWindow: forwards the event only
// when the emulator has mouse reporting enabled (§4.E "Mouse encoding").
func (t *Terminal) HandleMouse(ev input.MouseEvent) bool {
	t.emulator.Lock()
	mode := t.emulator.MouseReportingMode()
	sgr := t.emulator.SGRMouseEnabled()
	t.emulator.Unlock()
	if mode == vt100.MouseOff {
		return false
	}
	local := ev
	rect := t.Rect()
	local.Position.X -= rect.X
	local.Position.Y -= rect.Y
	seq := ptyio.EncodeMouse(local, mode, sgr)
	if seq == nil {
		return false
	}
	if _, err := t.backend.Write(seq); err != nil {
		t.log.Debug().Err(err).Msg("pty write failed")
	}
	return true
}

// Write forwards raw bytes to the child unmodified. Hosts that already
// hold xterm-encoded input (a raw-mode stdin, a recorded session) use
// this instead of decoding to KeyEvents and re-encoding.
func (t *Terminal) Write(p []byte) (int, error) {
	return t.backend.Write(p)
}

// Paste forwards text to the child unmodified, bracketed in DEC paste
// markers, matching how real terminal multiplexers treat paste as raw
// passthrough rather than re-encoding it key-by-key (see SPEC_FULL.md
// "Bracketed paste passthrough").
func (t *Terminal) Paste(text string) {
	t.backend.Write([]byte("\x1b[200~"))
	t.backend.Write([]byte(text))
	t.backend.Write([]byte("\x1b[201~"))
}
