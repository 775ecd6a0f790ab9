package vt100

import (
	"testing"

	"github.com/kungfusheep/tvwm/cellbuf"
)

func cellAt(e *Emulator, x, y int) cellbuf.Cell {
	return e.Screen().Get(x, y)
}

// S4: writing 25 newlines on a 24-row screen scrolls twice, leaves the
// cursor on the last row, and captures exactly two rows to scrollback.
func TestNewlineScrollS4(t *testing.T) {
	e := New(80, 24)
	for i := 0; i < 25; i++ {
		e.Process([]byte("\r\n"))
	}
	x, y := e.Cursor()
	if x != 0 || y != 23 {
		t.Fatalf("cursor = (%d,%d), want (0,23)", x, y)
	}
	if e.Scrollback(100) == nil {
		t.Fatalf("expected scrollback rows")
	}
	if got := len(e.Scrollback(100)); got != 2 {
		t.Fatalf("scrollback rows = %d, want 2 (25 newlines on a 24-row screen scroll twice)", got)
	}
}

func TestScrollbackOrderingIsOldestFirst(t *testing.T) {
	e := New(5, 3)
	for i := 0; i < 5; i++ {
		e.Process([]byte{byte('a' + i)})
		e.Process([]byte("\r\n"))
	}
	rows := e.Scrollback(100)
	if len(rows) == 0 {
		t.Fatal("expected scrollback rows")
	}
	first := rows[0][0].Ch
	if first != 'a' {
		t.Fatalf("oldest scrollback row starts with %q, want 'a'", first)
	}
}

func TestScrollbackRingEvictsOldest(t *testing.T) {
	ring := NewScrollbackRing(3)
	for i := 0; i < 5; i++ {
		ring.Push([]cellbuf.Cell{{Ch: rune('0' + i)}})
	}
	rows := ring.Rows()
	if len(rows) != 3 {
		t.Fatalf("len = %d, want 3", len(rows))
	}
	want := []rune{'2', '3', '4'}
	for i, row := range rows {
		if row[0].Ch != want[i] {
			t.Fatalf("rows[%d].Ch = %q, want %q", i, row[0].Ch, want[i])
		}
	}
}

// S5: DEC Special Graphics renders box-drawing characters for the ASCII
// letters xterm maps them from.
func TestDECSpecialGraphicsS5(t *testing.T) {
	e := New(10, 3)
	e.Process([]byte("\x1b(0lqqqk"))
	want := "┌───┐"
	for i, r := range []rune(want) {
		got := cellAt(e, i, 0).Ch
		if got != r {
			t.Fatalf("cell %d = %q, want %q", i, got, r)
		}
	}
}

func TestShiftOutSwitchesToASCIISlot(t *testing.T) {
	e := New(10, 3)
	// ESC(0 designates G0 as special graphics; G1 stays ASCII. SO (0x0E)
	// activates G1, so subsequent bytes render literally again.
	e.Process([]byte("\x1b(0l\x0el"))
	if cellAt(e, 0, 0).Ch != '┌' {
		t.Fatalf("first l should render as box-drawing")
	}
	if cellAt(e, 1, 0).Ch != 'l' {
		t.Fatalf("after SO to ASCII slot, l should render literally, got %q", cellAt(e, 1, 0).Ch)
	}
}

// S6: 256-colour SGR uses the round-trip law (k=0 maps to channel 0, not
// the 55 the narrative arithmetic would suggest).
func TestSGR256ColourS6(t *testing.T) {
	e := New(10, 3)
	e.Process([]byte("\x1b[38;5;196mX"))
	cell := cellAt(e, 0, 0)
	if cell.Style.FG.Mode != cellbuf.ColorRGB {
		t.Fatalf("FG mode = %v, want ColorRGB", cell.Style.FG.Mode)
	}
	if cell.Style.FG.R != 255 || cell.Style.FG.G != 0 || cell.Style.FG.B != 0 {
		t.Fatalf("FG = (%d,%d,%d), want (255,0,0)", cell.Style.FG.R, cell.Style.FG.G, cell.Style.FG.B)
	}
}

func TestSGR24BitRGB(t *testing.T) {
	e := New(10, 3)
	e.Process([]byte("\x1b[38;2;10;20;30mX"))
	cell := cellAt(e, 0, 0)
	if cell.Style.FG.R != 10 || cell.Style.FG.G != 20 || cell.Style.FG.B != 30 {
		t.Fatalf("FG = (%d,%d,%d), want (10,20,30)", cell.Style.FG.R, cell.Style.FG.G, cell.Style.FG.B)
	}
}

func TestSGRBoldPromotesBasicColourToBright(t *testing.T) {
	e := New(10, 3)
	e.Process([]byte("\x1b[1;31mX"))
	cell := cellAt(e, 0, 0)
	if cell.Style.FG.Mode != cellbuf.Color16 || cell.Style.FG.Index != 9 {
		t.Fatalf("FG = %+v, want bright red (index 9)", cell.Style.FG)
	}
}

func TestSGRResetClearsAttributesAndColour(t *testing.T) {
	e := New(10, 3)
	e.Process([]byte("\x1b[1;31;7m\x1b[0mX"))
	cell := cellAt(e, 0, 0)
	if cell.Style.Attr != cellbuf.AttrNone {
		t.Fatalf("Attr = %v, want none after reset", cell.Style.Attr)
	}
	if cell.Style.FG.Mode != cellbuf.ColorDefault {
		t.Fatalf("FG = %+v, want default after reset", cell.Style.FG)
	}
}

func TestSGRReverseToggle(t *testing.T) {
	e := New(10, 3)
	e.Process([]byte("\x1b[7mX\x1b[27mY"))
	if !cellAt(e, 0, 0).Style.Attr.Has(cellbuf.AttrInverse) {
		t.Fatal("expected inverse attribute set")
	}
	if cellAt(e, 1, 0).Style.Attr.Has(cellbuf.AttrInverse) {
		t.Fatal("expected inverse attribute cleared after 27")
	}
}

func TestRISResetIsIdempotent(t *testing.T) {
	e := New(10, 3)
	e.Process([]byte("\x1b[1;31mhello\x1b[5;5H\x1bc"))
	x, y := e.Cursor()
	if x != 0 || y != 0 {
		t.Fatalf("cursor after RIS = (%d,%d), want (0,0)", x, y)
	}
	if cellAt(e, 0, 0).Ch != ' ' {
		t.Fatalf("screen should be blank after RIS")
	}
	e.Process([]byte("\x1bc"))
	x, y = e.Cursor()
	if x != 0 || y != 0 {
		t.Fatal("second RIS should be a no-op change in cursor")
	}
}

func TestCursorClampsAfterOutOfRangeCUP(t *testing.T) {
	e := New(10, 5)
	e.Process([]byte("\x1b[500;500H"))
	x, y := e.Cursor()
	if x != 9 || y != 4 {
		t.Fatalf("cursor = (%d,%d), want clamped to (9,4)", x, y)
	}
}

func TestLineWrapsAtLastColumn(t *testing.T) {
	e := New(5, 3)
	e.Process([]byte("abcdeZ"))
	if cellAt(e, 4, 0).Ch != 'e' {
		t.Fatalf("last column of row 0 = %q, want 'e'", cellAt(e, 4, 0).Ch)
	}
	if cellAt(e, 0, 1).Ch != 'Z' {
		t.Fatalf("expected wrapped char on next row, got %q", cellAt(e, 0, 1).Ch)
	}
}

func TestUTF8RoundTrip(t *testing.T) {
	e := New(10, 3)
	e.Process([]byte("héllo 日本語"))
	want := []rune("héllo 日本語")
	for i, r := range want {
		got := cellAt(e, i, 0).Ch
		if got != r {
			t.Fatalf("cell %d = %q, want %q", i, got, r)
		}
	}
}

func TestMalformedUTF8ContinuationResyncs(t *testing.T) {
	e := New(10, 3)
	// 0xC2 expects one continuation byte; feeding 'A' instead should drop
	// the lead byte and then render 'A' normally.
	e.Process([]byte{0xC2, 'A'})
	if cellAt(e, 0, 0).Ch != 'A' {
		t.Fatalf("expected resync to render 'A', got %q", cellAt(e, 0, 0).Ch)
	}
}

func TestAltScreen1049SavesAndRestoresCursor(t *testing.T) {
	e := New(10, 5)
	e.Process([]byte("\x1b[3;3H"))
	e.Process([]byte("\x1b[?1049h"))
	ax, ay := e.Cursor()
	if ax != 0 || ay != 0 {
		t.Fatalf("alt screen entry cursor = (%d,%d), want (0,0)", ax, ay)
	}
	e.Process([]byte("\x1b[?1049l"))
	x, y := e.Cursor()
	if x != 2 || y != 2 {
		t.Fatalf("cursor after leaving alt = (%d,%d), want (2,2)", x, y)
	}
}

func TestAltScreen47DoesNotSaveCursor(t *testing.T) {
	e := New(10, 5)
	e.Process([]byte("\x1b[3;3H"))
	e.Process([]byte("\x1b[?47h"))
	e.Process([]byte("\x1b[?47l"))
	x, y := e.Cursor()
	if x != 0 || y != 0 {
		t.Fatalf("cursor after leaving mode 47 alt = (%d,%d), want (0,0) (no cursor save)", x, y)
	}
}

func TestAltScreenDoesNotCaptureScrollback(t *testing.T) {
	e := New(5, 3)
	e.Process([]byte("\x1b[?1049h"))
	for i := 0; i < 10; i++ {
		e.Process([]byte("\r\n"))
	}
	if got := len(e.Scrollback(100)); got != 0 {
		t.Fatalf("scrollback rows captured on alt screen = %d, want 0", got)
	}
}

func TestMousePrivateModePreservesMostRecentlySetMode(t *testing.T) {
	e := New(10, 5)
	e.Process([]byte("\x1b[?1000h"))
	e.Process([]byte("\x1b[?1002h"))
	if e.MouseReportingMode() != Mouse1002 {
		t.Fatalf("mode = %v, want Mouse1002 (most recently set)", e.MouseReportingMode())
	}
	// disabling the mode that is NOT currently active must be a no-op.
	e.Process([]byte("\x1b[?1000l"))
	if e.MouseReportingMode() != Mouse1002 {
		t.Fatalf("mode = %v, want still Mouse1002 after disabling a non-active mode", e.MouseReportingMode())
	}
	e.Process([]byte("\x1b[?1002l"))
	if e.MouseReportingMode() != MouseOff {
		t.Fatalf("mode = %v, want MouseOff", e.MouseReportingMode())
	}
}

func TestOSCTitleChangeCallback(t *testing.T) {
	e := New(10, 5)
	var got string
	e.OnTitleChange = func(title string) { got = title }
	e.Process([]byte("\x1b]0;my window\x07"))
	if got != "my window" {
		t.Fatalf("title = %q, want %q", got, "my window")
	}
}

func TestOSCNonTitleCodeIgnored(t *testing.T) {
	e := New(10, 5)
	called := false
	e.OnTitleChange = func(string) { called = true }
	e.Process([]byte("\x1b]52;c;aGVsbG8=\x07"))
	if called {
		t.Fatal("OnTitleChange should not fire for non-0/2 OSC codes")
	}
}

func TestResizeClampsCursorAndScrollRegion(t *testing.T) {
	e := New(10, 10)
	e.Process([]byte("\x1b[9;9H"))
	e.Resize(5, 5)
	x, y := e.Cursor()
	if x != 4 || y != 4 {
		t.Fatalf("cursor after shrink = (%d,%d), want (4,4)", x, y)
	}
}

func TestWideRuneOccupiesTwoColumnsAndAdvancesCursor(t *testing.T) {
	e := New(10, 5)
	e.Process([]byte("\xe6\x97\xa5\xe6\x9c\xac")) // 日本 (U+65E5, U+672C), each width 2
	if got := e.Screen().Get(0, 0).Ch; got != '日' {
		t.Fatalf("cell(0,0) = %q, want 日", got)
	}
	if got := e.Screen().Get(1, 0).Ch; got != ' ' {
		t.Fatalf("cell(1,0) = %q, want blank continuation cell", got)
	}
	if got := e.Screen().Get(2, 0).Ch; got != '本' {
		t.Fatalf("cell(2,0) = %q, want 本", got)
	}
	x, y := e.Cursor()
	if x != 4 || y != 0 {
		t.Fatalf("cursor after two wide runes = (%d,%d), want (4,0)", x, y)
	}
}

func TestWideRuneWrapsWhenItDoesNotFitLastColumn(t *testing.T) {
	e := New(5, 3)
	e.Process([]byte("abc\xe6\x97\xa5")) // "abc" then 日 (width 2)
	// 5-wide buffer: cols 0-4. "abc" fills 0-2, leaving cols 3-4 free — 日 fits exactly.
	if got := e.Screen().Get(3, 0).Ch; got != '日' {
		t.Fatalf("cell(3,0) = %q, want 日", got)
	}
	e2 := New(4, 3)
	e2.Process([]byte("abc\xe6\x97\xa5")) // 4-wide: "abc" fills 0-2, only col 3 left — 日 must wrap
	if got := e2.Screen().Get(3, 0).Ch; got != ' ' {
		t.Fatalf("cell(3,0) on narrow buffer = %q, want blank (wide rune wrapped instead)", got)
	}
	if got := e2.Screen().Get(0, 1).Ch; got != '日' {
		t.Fatalf("cell(0,1) = %q, want 日 wrapped to next row", got)
	}
}
