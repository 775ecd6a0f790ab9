package desktop

import (
	"bytes"
	"errors"
	"testing"

	"github.com/kungfusheep/tvwm/cellbuf"
)

// textWindow is a minimal Window used only for orchestrator tests.
type textWindow struct {
	rect    Rect
	z       int
	visible bool
	dirty   bool
	text    string
}

func (w *textWindow) Rect() Rect    { return w.rect }
func (w *textWindow) ZOrder() int   { return w.z }
func (w *textWindow) Visible() bool { return w.visible }
func (w *textWindow) IsDirty() bool { return w.dirty }
func (w *textWindow) ClearDirty()   { w.dirty = false }
func (w *textWindow) PaintInto(dst *cellbuf.Buffer, defaultStyle cellbuf.Style) error {
	dst.Fill(' ', defaultStyle)
	for i, r := range w.text {
		dst.Set(i, 0, r, defaultStyle)
	}
	return nil
}

func newTextWindow(x, y, w, h int, text string) *textWindow {
	return &textWindow{rect: Rect{X: x, Y: y, Width: w, Height: h}, visible: true, dirty: true, text: text}
}

// S1 — static frame: two consecutive UpdateDisplay calls with no
// invalidation between them produce bytes_written == 0 on the second.
func TestStaticFrame(t *testing.T) {
	var out bytes.Buffer
	d := New(&out, 80, 25)
	w := newTextWindow(10, 5, 30, 10, "Static content")
	d.AddWindow(w)

	m1 := d.UpdateDisplay()
	if m1.BytesWritten <= 100 {
		t.Fatalf("expected frame 1 bytes_written > 100, got %d", m1.BytesWritten)
	}

	m2 := d.UpdateDisplay()
	if m2.BytesWritten != 0 || m2.DirtyCellsMarked != 0 || !m2.IsStaticFrame {
		t.Fatalf("expected static second frame, got %+v", m2)
	}
}

// Property 1 of §8: no invalidations, no input -> zero bytes, zero dirty.
func TestNoRenderWithoutInvalidation(t *testing.T) {
	var out bytes.Buffer
	d := New(&out, 20, 5)
	w := newTextWindow(0, 0, 10, 1, "hi")
	d.AddWindow(w)
	d.UpdateDisplay()

	out.Reset()
	m := d.UpdateDisplay()
	if m.BytesWritten != 0 {
		t.Fatalf("expected no bytes written absent invalidation, got %d", m.BytesWritten)
	}
}

// Property 5 of §8: closing the last window still renders a clearing
// frame.
func TestClosingLastWindowRendersClearingFrame(t *testing.T) {
	var out bytes.Buffer
	d := New(&out, 20, 5)
	w := newTextWindow(0, 0, 10, 1, "hi")
	d.AddWindow(w)
	d.UpdateDisplay()

	d.RemoveWindow(w)
	m := d.UpdateDisplay()
	if m.BytesWritten <= 0 {
		t.Fatalf("expected clearing frame to write bytes, got %d", m.BytesWritten)
	}
}

func TestOldPositionClearingOnMove(t *testing.T) {
	var out bytes.Buffer
	d := New(&out, 20, 5)
	w := newTextWindow(0, 0, 5, 1, "AAAAA")
	d.AddWindow(w)
	d.UpdateDisplay()

	w.rect.X = 10
	w.dirty = true
	d.UpdateDisplay()

	// After the move, cell (0,0) must be back to desktop default blank,
	// because nothing repaints it once the window has moved away.
	if got := d.front.Get(0, 0).Ch; got != ' ' {
		t.Fatalf("expected old position cleared, got %q", got)
	}
}

func TestHidingWindowClearsItsRegion(t *testing.T) {
	var out bytes.Buffer
	d := New(&out, 20, 5)
	w := newTextWindow(0, 0, 5, 1, "AAAAA")
	d.AddWindow(w)
	d.UpdateDisplay()

	// Hiding marks the window dirty; that alone must be enough to get
	// the clearing frame rendered — no desktop-level invalidation.
	w.visible = false
	w.dirty = true
	d.UpdateDisplay()

	if got := d.front.Get(0, 0).Ch; got != ' ' {
		t.Fatalf("expected hidden window's region cleared, got %q", got)
	}
}

func TestPaintPanicDoesNotAbortFrame(t *testing.T) {
	var out bytes.Buffer
	d := New(&out, 20, 5)
	ok := newTextWindow(0, 0, 5, 1, "ok")
	bad := &panicWindow{rect: Rect{X: 6, Y: 0, Width: 5, Height: 1}, visible: true, dirty: true}
	d.AddWindow(ok)
	d.AddWindow(bad)

	m := d.UpdateDisplay()
	if m.BytesWritten == 0 {
		t.Fatalf("expected the non-panicking window to still render")
	}
	if got := d.front.Get(0, 0).Ch; got != 'o' {
		t.Fatalf("expected ok window's content present, got %q", got)
	}
}

// failWriter refuses its first `refusals` writes (flush retries once, so
// refusing a whole frame takes two), then behaves normally.
type failWriter struct {
	out      bytes.Buffer
	refusals int
}

func (w *failWriter) Write(p []byte) (int, error) {
	if w.refusals > 0 {
		w.refusals--
		return 0, errors.New("write refused")
	}
	return w.out.Write(p)
}

// §7 TerminalIO: a failed terminal write must force the next frame to
// re-emit everything, even cells the renderer had already advanced into
// the front buffer.
func TestWriteFailureForcesFullResync(t *testing.T) {
	w := &failWriter{refusals: 2}
	d := New(w, 20, 5)
	win := newTextWindow(0, 0, 5, 1, "hello")
	d.AddWindow(win)

	m1 := d.UpdateDisplay()
	if m1.BytesWritten == 0 {
		t.Fatal("first frame should have attempted a write")
	}
	if w.out.Len() != 0 {
		t.Fatalf("first write should have been refused, terminal got %d bytes", w.out.Len())
	}

	m2 := d.UpdateDisplay()
	if m2.IsStaticFrame {
		t.Fatal("frame after a failed write must not be static")
	}
	if w.out.Len() == 0 {
		t.Fatal("expected the retry frame's bytes to reach the terminal")
	}
	if got := d.front.Get(0, 0).Ch; got != 'h' {
		t.Fatalf("front buffer not re-synced, got %q at (0,0)", got)
	}

	m3 := d.UpdateDisplay()
	if !m3.IsStaticFrame {
		t.Fatalf("expected static frame once re-synced, got %+v", m3)
	}
}

type panicWindow struct {
	rect    Rect
	visible bool
	dirty   bool
}

func (w *panicWindow) Rect() Rect    { return w.rect }
func (w *panicWindow) ZOrder() int   { return 0 }
func (w *panicWindow) Visible() bool { return w.visible }
func (w *panicWindow) IsDirty() bool { return w.dirty }
func (w *panicWindow) ClearDirty()   { w.dirty = false }
func (w *panicWindow) PaintInto(dst *cellbuf.Buffer, defaultStyle cellbuf.Style) error {
	panic("boom")
}
