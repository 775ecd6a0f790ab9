// Package vt100 implements a VT100/xterm-256color emulator: a
// byte-oriented parser state machine that interprets ESC/CSI/OSC
// sequences and writes into its own cellbuf.Buffer, exposing cursor
// state, mode flags, and scrollback.
//
// Hand-implemented per the parser state machine this package's
// originating design calls out explicitly (rather than wrapping an
// existing VTE library): see danielgatis-go-headless-term for the
// Cell/colour naming this package's style borrows, and the rest of the
// retrieval pack's VT100 snippets for SGR/scrollback idiom.
package vt100

import (
	"sync"

	"github.com/kungfusheep/tvwm/cellbuf"
)

// MouseMode is the emulator's current mouse-reporting mode.
type MouseMode int

const (
	MouseOff  MouseMode = 0
	Mouse1000 MouseMode = 1000
	Mouse1002 MouseMode = 1002
	Mouse1003 MouseMode = 1003
)

// parserState is the tagged union of §3 "Parser state".
type parserState int

const (
	stateNormal parserState = iota
	stateEscape
	stateCsi
	stateCsiPrivate
	stateOscString
	stateDesignatingCharset
)

const defaultScrollbackCapacity = 2000

// Emulator is the VT100 screen model. All process calls and all state
// reads must happen under Lock/Unlock (§4.D, §5, §9 "one lock per
// emulator instance held for the entire process(bytes) call").
type Emulator struct {
	mu sync.Mutex

	width, height int

	primary  *cellbuf.Buffer
	alt      *cellbuf.Buffer
	usingAlt bool

	cx, cy                 int
	savedCx, savedCy       int
	altSavedCx, altSavedCy int // cursor save slot used specifically by 1049
	cursorVisible          bool

	appCursorKeys bool
	mouseMode     MouseMode
	sgrMouse      bool

	// charset state: per-slot flag, true = DEC Special Graphics active
	charsetSpecial [2]bool
	activeSlot     int

	scrollTop, scrollBottom int

	scrollback *ScrollbackRing

	// SGR render state
	curFG, curBG         cellbuf.Color
	defaultFG, defaultBG cellbuf.Color
	attr                 cellbuf.Attribute
	boldBright           bool

	// parser state
	state         parserState
	params        []int
	curParam      int
	curParamSet   bool
	designateSlot int

	// UTF-8 decoder state
	utf8Buf      [4]byte
	utf8Fill     int
	utf8Expected int

	// OSC accumulation, used only to detect 0/2 (title) for the optional
	// title-change callback; payload is otherwise ignored per §6.
	oscBuf []byte

	OnTitleChange func(title string)
}

// New creates an emulator with a W x H primary screen.
func New(width, height int) *Emulator {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	e := &Emulator{
		width:         width,
		height:        height,
		primary:       cellbuf.NewBuffer(width, height),
		alt:           cellbuf.NewBuffer(width, height),
		cursorVisible: true,
		scrollTop:     0,
		scrollBottom:  height - 1,
		scrollback:    NewScrollbackRing(defaultScrollbackCapacity),
		defaultFG:     cellbuf.DefaultColor(),
		defaultBG:     cellbuf.DefaultColor(),
	}
	e.curFG = e.defaultFG
	e.curBG = e.defaultBG
	return e
}

// Lock acquires the emulator's lock. Callers reading cursor/mode state
// outside of Process must hold it (§5).
func (e *Emulator) Lock() { e.mu.Lock() }

// Unlock releases the emulator's lock.
func (e *Emulator) Unlock() { e.mu.Unlock() }

// Screen returns the currently visible buffer (primary or alternate).
// Callers must hold the lock while reading from it if they don't want a
// concurrent Process to mutate it mid-read.
func (e *Emulator) Screen() *cellbuf.Buffer {
	if e.usingAlt {
		return e.alt
	}
	return e.primary
}

// Cursor returns the current cursor position (0-based).
func (e *Emulator) Cursor() (x, y int) { return e.cx, e.cy }

// CursorVisible reports whether the cursor should be drawn.
func (e *Emulator) CursorVisible() bool { return e.cursorVisible }

// AppCursorKeys reports whether application-cursor-keys mode is set.
func (e *Emulator) AppCursorKeys() bool { return e.appCursorKeys }

// MouseReportingMode returns the currently active mouse mode.
func (e *Emulator) MouseReportingMode() MouseMode { return e.mouseMode }

// SGRMouseEnabled reports whether SGR (1006) mouse encoding is active.
func (e *Emulator) SGRMouseEnabled() bool { return e.sgrMouse }

// Scrollback returns the n most recently scrolled-off rows (supplemental
// query API — see SPEC_FULL.md).
func (e *Emulator) Scrollback(n int) [][]cellbuf.Cell { return e.scrollback.Recent(n) }

// Resize changes the emulator's screen dimensions, clamping cursor and
// scroll region, per §7 ResizeOutOfRange.
func (e *Emulator) Resize(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	e.width, e.height = width, height
	e.primary.Resize(width, height)
	e.alt.Resize(width, height)
	if e.scrollBottom >= height {
		e.scrollBottom = height - 1
	}
	if e.scrollTop > e.scrollBottom {
		e.scrollTop = 0
	}
	e.clampCursor()
}

func (e *Emulator) clampCursor() {
	if e.cx >= e.width {
		e.cx = e.width - 1
	}
	if e.cx < 0 {
		e.cx = 0
	}
	if e.cy >= e.height {
		e.cy = e.height - 1
	}
	if e.cy < 0 {
		e.cy = 0
	}
}

// Process consumes bytes, mutating screen, cursor, and mode flags. The
// whole call executes under the emulator's lock so a concurrent painter
// never observes a half-parsed escape sequence (§9).
func (e *Emulator) Process(data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, b := range data {
		e.step(b)
	}
}

func (e *Emulator) step(b byte) {
	switch e.state {
	case stateNormal:
		e.stepNormal(b)
	case stateEscape:
		e.stepEscape(b)
	case stateCsi, stateCsiPrivate:
		e.stepCsi(b)
	case stateOscString:
		e.stepOsc(b)
	case stateDesignatingCharset:
		e.charsetSpecial[e.designateSlot] = b == '0'
		e.state = stateNormal
	}
}

func (e *Emulator) stepNormal(b byte) {
	switch b {
	case 0x1B:
		e.state = stateEscape
		e.resetUTF8()
		return
	case 0x0E:
		e.activeSlot = 1
		return
	case 0x0F:
		e.activeSlot = 0
		return
	case '\r':
		e.cx = 0
		return
	case '\n':
		e.lineFeed()
		return
	case '\b':
		if e.cx > 0 {
			e.cx--
		}
		return
	case '\a':
		return
	case '\t':
		next := (e.cx + 8) &^ 7
		if next > e.width-1 {
			next = e.width - 1
		}
		e.cx = next
		return
	}
	e.decodeByte(b)
}

func (e *Emulator) stepEscape(b byte) {
	switch b {
	case '[':
		e.enterCsi(false)
	case ']':
		e.state = stateOscString
		e.oscBuf = e.oscBuf[:0]
	case '(':
		e.state = stateDesignatingCharset
		e.designateSlot = 0
	case ')':
		e.state = stateDesignatingCharset
		e.designateSlot = 1
	case '*':
		e.state = stateDesignatingCharset
		e.designateSlot = 0
	case '+':
		e.state = stateDesignatingCharset
		e.designateSlot = 1
	case 'M':
		if e.cy <= e.scrollTop {
			e.scrollDown()
		} else {
			e.cy--
		}
		e.state = stateNormal
	case '7':
		e.savedCx, e.savedCy = e.cx, e.cy
		e.state = stateNormal
	case '8':
		e.cx, e.cy = e.savedCx, e.savedCy
		e.clampCursor()
		e.state = stateNormal
	case 'c':
		e.reset()
	case '=', '>':
		e.state = stateNormal
	default:
		e.state = stateNormal
	}
}

func (e *Emulator) stepOsc(b byte) {
	if b == 0x07 {
		e.finishOsc()
		e.state = stateNormal
		return
	}
	if b == 0x1B {
		// ST is ESC \: the string ends at the ESC, and the escape state
		// then consumes the trailing backslash (an unrecognised escape
		// final byte) and returns to normal.
		e.finishOsc()
		e.state = stateEscape
		return
	}
	e.oscBuf = append(e.oscBuf, b)
}

func (e *Emulator) finishOsc() {
	if e.OnTitleChange == nil {
		return
	}
	// OSC payloads look like "<code>;<text>". 0 and 2 both set the title.
	s := string(e.oscBuf)
	sep := -1
	for i, c := range s {
		if c == ';' {
			sep = i
			break
		}
	}
	if sep < 0 {
		return
	}
	code := s[:sep]
	if code == "0" || code == "2" {
		e.OnTitleChange(s[sep+1:])
	}
}

func (e *Emulator) reset() {
	e.primary = cellbuf.NewBuffer(e.width, e.height)
	e.alt = cellbuf.NewBuffer(e.width, e.height)
	e.usingAlt = false
	e.cx, e.cy = 0, 0
	e.savedCx, e.savedCy = 0, 0
	e.cursorVisible = true
	e.appCursorKeys = false
	e.mouseMode = MouseOff
	e.sgrMouse = false
	e.charsetSpecial = [2]bool{}
	e.activeSlot = 0
	e.scrollTop = 0
	e.scrollBottom = e.height - 1
	e.curFG = e.defaultFG
	e.curBG = e.defaultBG
	e.attr = cellbuf.AttrNone
	e.boldBright = false
	e.state = stateNormal
	e.params = nil
}

func (e *Emulator) currentStyle() cellbuf.Style {
	return cellbuf.Style{FG: e.curFG, BG: e.curBG, Attr: e.attr}
}

func (e *Emulator) writeChar(r rune) {
	if e.charsetSpecial[e.activeSlot] {
		r = translateSpecialGraphics(r)
	}
	if e.cx >= e.width {
		e.cx = 0
		e.lineFeed()
	}
	w := cellbuf.RuneWidth(r)
	if w <= 0 {
		// Zero-width combining mark: cellbuf.Cell holds one rune, so
		// there is no base glyph to attach it to. Drop it rather than
		// clobbering the preceding cell's content.
		return
	}
	if w == 2 && e.cx+1 >= e.width {
		// Wide rune doesn't fit in the last column; wrap first.
		e.cx = 0
		e.lineFeed()
	}
	scr := e.Screen()
	scr.Set(e.cx, e.cy, r, e.currentStyle())
	e.cx++
	if w == 2 {
		// Continuation cell: holds a blank placeholder so the diff
		// engine still sees a real, equality-comparable cell there.
		scr.Set(e.cx, e.cy, ' ', e.currentStyle())
		e.cx++
	}
}

func (e *Emulator) lineFeed() {
	if e.cy >= e.scrollBottom {
		e.scrollUp()
	} else {
		e.cy++
	}
}

func (e *Emulator) rowCells(y int) []cellbuf.Cell {
	scr := e.Screen()
	row := make([]cellbuf.Cell, e.width)
	for x := 0; x < e.width; x++ {
		row[x] = scr.Get(x, y)
	}
	return row
}

func (e *Emulator) scrollUp() {
	scr := e.Screen()
	if !e.usingAlt && e.scrollTop == 0 {
		e.scrollback.Push(e.rowCells(e.scrollTop))
	}
	for y := e.scrollTop; y < e.scrollBottom; y++ {
		for x := 0; x < e.width; x++ {
			scr.SetCell(x, y, scr.Get(x, y+1))
		}
	}
	blankRow(scr, e.scrollBottom, e.width, e.defaultFG, e.defaultBG)
}

func (e *Emulator) scrollDown() {
	scr := e.Screen()
	for y := e.scrollBottom; y > e.scrollTop; y-- {
		for x := 0; x < e.width; x++ {
			scr.SetCell(x, y, scr.Get(x, y-1))
		}
	}
	blankRow(scr, e.scrollTop, e.width, e.defaultFG, e.defaultBG)
}

func blankRow(b *cellbuf.Buffer, y, width int, fg, bg cellbuf.Color) {
	style := cellbuf.Style{FG: fg, BG: bg}
	for x := 0; x < width; x++ {
		b.Set(x, y, ' ', style)
	}
}

func (e *Emulator) resetUTF8() {
	e.utf8Fill = 0
	e.utf8Expected = 0
}

func (e *Emulator) decodeByte(b byte) {
	if e.utf8Expected == 0 {
		switch {
		case b < 0x80:
			e.writeChar(rune(b))
		case b&0xE0 == 0xC0:
			e.utf8Buf[0] = b
			e.utf8Fill = 1
			e.utf8Expected = 1
		case b&0xF0 == 0xE0:
			e.utf8Buf[0] = b
			e.utf8Fill = 1
			e.utf8Expected = 2
		case b&0xF8 == 0xF0:
			e.utf8Buf[0] = b
			e.utf8Fill = 1
			e.utf8Expected = 3
		default:
			// malformed lead byte: drop silently (§4.D, §7 InvalidEscapeSequence).
		}
		return
	}

	if b&0xC0 != 0x80 {
		// malformed continuation: drop the in-progress sequence and
		// reprocess b as a fresh lead byte.
		e.resetUTF8()
		e.decodeByte(b)
		return
	}
	e.utf8Buf[e.utf8Fill] = b
	e.utf8Fill++
	if e.utf8Fill-1 == e.utf8Expected {
		r := decodeUTF8(e.utf8Buf[:e.utf8Fill])
		e.resetUTF8()
		if r >= 0 {
			e.writeChar(r)
		}
	}
}

// decodeUTF8 decodes a complete, already-validated-by-shape UTF-8
// sequence. Returns -1 on overlong/invalid encodings, which the caller
// drops silently.
func decodeUTF8(buf []byte) rune {
	switch len(buf) {
	case 2:
		r := rune(buf[0]&0x1F)<<6 | rune(buf[1]&0x3F)
		if r < 0x80 {
			return -1
		}
		return r
	case 3:
		r := rune(buf[0]&0x0F)<<12 | rune(buf[1]&0x3F)<<6 | rune(buf[2]&0x3F)
		if r < 0x800 {
			return -1
		}
		return r
	case 4:
		r := rune(buf[0]&0x07)<<18 | rune(buf[1]&0x3F)<<12 | rune(buf[2]&0x3F)<<6 | rune(buf[3]&0x3F)
		if r < 0x10000 || r > 0x10FFFF {
			return -1
		}
		return r
	}
	return -1
}
