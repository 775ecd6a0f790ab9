package desktop

import (
	"github.com/kungfusheep/tvwm/cellbuf"
	"github.com/kungfusheep/tvwm/input"
)

// Rect is an absolute rectangle on the physical terminal, in character
// cells.
type Rect struct {
	X, Y, Width, Height int
}

// Contains reports whether (x,y) falls inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Window is the external contract any drawable surface on the desktop
// must satisfy (§3 "Window Surface"). Ownership of a window's own control
// tree belongs entirely to the window; the desktop only ever holds a
// plain, non-owning reference to it (§9 "cyclic references").
type Window interface {
	// Rect returns the window's absolute rectangle on the physical
	// terminal.
	Rect() Rect
	// ZOrder returns the window's paint order; higher paints later
	// (on top).
	ZOrder() int
	// Visible reports whether the window should be painted this frame.
	Visible() bool
	// PaintInto writes the window's content into dst, which is already
	// clipped to the window's rect by the caller. defaultStyle is the
	// desktop's blank-cell style, for windows that want to match it.
	// A returned error is a PaintCallbackFailure (§7): the orchestrator
	// skips the rest of this window's paint for the frame and continues.
	PaintInto(dst *cellbuf.Buffer, defaultStyle cellbuf.Style) error
	// IsDirty reports whether the window has invalidated itself since
	// its last paint.
	IsDirty() bool
	// ClearDirty clears the window's own invalidation flag. Called by
	// the orchestrator once per frame, after paint.
	ClearDirty()
}

// FocusableWindow is implemented by windows that want keyboard/mouse
// input routed to them while focused. Not all windows need receive
// input (e.g. purely decorative background panes).
type FocusableWindow interface {
	Window
	// HandleKey processes a key event and reports whether it consumed
	// it.
	HandleKey(ev input.KeyEvent) bool
	// HandleMouse processes a mouse event and reports whether it
	// consumed it.
	HandleMouse(ev input.MouseEvent) bool
}
