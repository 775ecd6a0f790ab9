package desktop

import (
	"bytes"
	"io"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kungfusheep/tvwm/cellbuf"
	"github.com/kungfusheep/tvwm/diffrender"
)

// Desktop is the frame orchestrator: it decides when to render, walks
// windows bottom-to-top in z-order, owns the front/back buffer swap,
// and hands the populated back buffer to the dirty diff engine. Render
// requests coalesce: invalidations only set flags, and each
// UpdateDisplay call renders at most one frame, under the desktop's
// mutex, on the caller's goroutine.
type Desktop struct {
	mu sync.Mutex

	writer io.Writer
	mode   diffrender.Mode
	log    zerolog.Logger

	front *cellbuf.Buffer
	back  *cellbuf.Buffer

	windows     []Window
	prevRects   map[Window]Rect
	needsRender bool // desktop_needs_render

	focus *FocusManager

	lastMetrics diffrender.Metrics
	scratch     bytes.Buffer
}

// Option configures a Desktop at construction.
type Option func(*Desktop)

// WithMode sets the dirty diff mode. Defaults to Smart.
func WithMode(mode diffrender.Mode) Option {
	return func(d *Desktop) { d.mode = mode }
}

// WithLogger attaches a diagnostics logger. Defaults to a disabled
// logger — the core is a library, not a daemon, and never assumes
// ownership of os.Stderr (teacher posture: Screen/App take an io.Writer,
// never hardcode one).
func WithLogger(log zerolog.Logger) Option {
	return func(d *Desktop) { d.log = log }
}

// New creates a Desktop sized width x height, writing its output to w.
func New(w io.Writer, width, height int, opts ...Option) *Desktop {
	d := &Desktop{
		writer:      w,
		mode:        diffrender.Smart,
		log:         zerolog.Nop(),
		front:       cellbuf.NewBuffer(width, height),
		back:        cellbuf.NewBuffer(width, height),
		prevRects:   make(map[Window]Rect),
		needsRender: true,
		focus:       NewFocusManager(),
	}
	for _, opt := range opts {
		opt(d)
	}
	// The physical terminal's contents are unknown before the first frame,
	// so that frame repaints every cell.
	d.front.InvalidateContents()
	return d
}

// Focus returns the desktop's focus manager.
func (d *Desktop) Focus() *FocusManager { return d.focus }

// AddWindow adds w to the desktop and marks a render needed.
func (d *Desktop) AddWindow(w Window) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.windows = append(d.windows, w)
	d.needsRender = true
}

// RemoveWindow removes w from the desktop. Per §4.A's invariant "closing
// the last window still renders the clearing frame", the window's old
// rect stays recorded in prevRects so the next frame clears it even
// though the window itself is already gone.
func (d *Desktop) RemoveWindow(w Window) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.windows {
		if existing == w {
			d.windows = append(d.windows[:i], d.windows[i+1:]...)
			break
		}
	}
	d.needsRender = true
}

// Invalidate sets desktop_needs_render directly — used for full-desktop
// effects (resize, theme change) that aren't any single window's doing.
func (d *Desktop) Invalidate() {
	d.mu.Lock()
	d.needsRender = true
	d.mu.Unlock()
}

// Resize changes both buffers' dimensions and forces a full render.
func (d *Desktop) Resize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.front.Resize(width, height)
	d.back.Resize(width, height)
	d.front.MarkAllDirty()
	d.back.MarkAllDirty()
	d.needsRender = true
}

// Size returns the desktop's current dimensions.
func (d *Desktop) Size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.back.Size()
}

// LastMetrics returns the metrics recorded by the most recent
// UpdateDisplay call.
func (d *Desktop) LastMetrics() diffrender.Metrics {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastMetrics
}

func (d *Desktop) anyWindowDirty() bool {
	for _, w := range d.windows {
		// Visibility doesn't gate this: a window that just hid itself is
		// dirty precisely because its region now needs clearing.
		if w.IsDirty() {
			return true
		}
	}
	return false
}

// UpdateDisplay runs one frame of the orchestration contract (§4.A steps
// 1-6): should_render check, old-position clearing, z-order paint walk,
// diff + flush, front/back swap, dirty-flag clearing, metrics.
func (d *Desktop) UpdateDisplay() diffrender.Metrics {
	d.mu.Lock()
	defer d.mu.Unlock()

	shouldRender := d.anyWindowDirty() || d.needsRender
	if !shouldRender {
		m := diffrender.Metrics{IsStaticFrame: true}
		d.lastMetrics = m
		return m
	}

	defaultStyle := cellbuf.DefaultStyle()

	// Step 2: clear regions previously occupied by windows that have
	// since moved, hidden, or been removed. Invisible windows are not
	// live: hiding one must clear its region the same way removal does.
	liveRects := make(map[Window]Rect, len(d.windows))
	for _, w := range d.windows {
		if w.Visible() {
			liveRects[w] = w.Rect()
		}
	}
	for w, old := range d.prevRects {
		cur, stillPresent := liveRects[w]
		if !stillPresent || cur != old {
			d.back.ClearRect(old.X, old.Y, old.Width, old.Height, defaultStyle)
		}
	}

	// Step 3: paint bottom to top.
	ordered := make([]Window, len(d.windows))
	copy(ordered, d.windows)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ZOrder() < ordered[j].ZOrder() })

	newPrevRects := make(map[Window]Rect, len(ordered))
	for _, w := range ordered {
		if !w.Visible() {
			continue
		}
		rect := w.Rect()
		newPrevRects[w] = rect
		if rect.Empty() {
			continue
		}
		scratch := cellbuf.NewBuffer(rect.Width, rect.Height)
		if err := paintSafely(w, scratch, defaultStyle); err != nil {
			// PaintCallbackFailure (§7): skip this window, leave its
			// region as whatever lower windows already painted, continue.
			d.log.Warn().Err(err).Msg("window paint failed")
			continue
		}
		d.back.CopyRegion(scratch, 0, 0, rect.X, rect.Y, rect.Width, rect.Height)
	}
	d.prevRects = newPrevRects

	// Step 4: diff + flush in one write.
	d.scratch.Reset()
	metrics := diffrender.Render(&d.scratch, d.front, d.back, d.mode)
	flushFailed := false
	if d.scratch.Len() > 0 {
		if err := d.flush(d.scratch.Bytes()); err != nil {
			d.log.Error().Err(err).Msg("terminal write failed")
			// TerminalIO (§7): best effort. Render has already advanced
			// front to match back, but those bytes never reached the
			// terminal — forget front's contents so the next frame
			// re-emits everything, and force that frame to happen.
			d.front.InvalidateContents()
			flushFailed = true
		}
	}

	// Step 5 is implicit: Render already advanced front to match back
	// for every cell it touched, which is the pointer-swap's effect
	// without an actual buffer swap (back stays the drawing target for
	// the next frame; ClearRect/paint will simply overwrite it again).

	// Step 6: clear invalidation flags, record metrics.
	d.needsRender = flushFailed
	for _, w := range d.windows {
		w.ClearDirty()
	}
	d.lastMetrics = metrics
	return metrics
}

// paintSafely wraps a window's PaintInto so a panicking or erroring
// control never aborts the whole frame (§4.A "Paint-callback failures in
// a single window must not abort the frame").
func paintSafely(w Window, scratch *cellbuf.Buffer, defaultStyle cellbuf.Style) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PaintPanicError{Window: w, Recovered: r}
		}
	}()
	return w.PaintInto(scratch, defaultStyle)
}

// PaintPanicError reports that a window's paint callback panicked.
type PaintPanicError struct {
	Window    Window
	Recovered any
}

func (e *PaintPanicError) Error() string {
	return "window paint panicked"
}

func (d *Desktop) flush(b []byte) error {
	n, err := d.writer.Write(b)
	if err != nil && n < len(b) {
		// Short write: one retry of the remainder, then discard (§4.A
		// failure handling — best effort, never blocks the UI thread).
		_, retryErr := d.writer.Write(b[n:])
		if retryErr != nil {
			return retryErr
		}
		return nil
	}
	return err
}
