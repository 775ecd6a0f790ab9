// Package input defines the event shapes the core consumes from an
// external driver (§6 "Input from the physical terminal"). Drivers
// themselves — reading raw bytes off a tty and decoding them into these
// events — are out of scope; only the contract is specified here.
package input

// Key identifies a logical key, independent of any particular encoding.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // printable character; see KeyEvent.Char
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyDelete
	KeyInsert
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Modifier is a bitset of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModAlt
	ModCtrl
)

// Has reports whether m includes mod.
func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

// KeyEvent is the (key, modifiers, char) triple described by §6.
type KeyEvent struct {
	Key  Key
	Mods Modifier
	Char rune // valid when Key == KeyRune
}

// MouseFlag is a bitset over the button/motion/modifier states a mouse
// event may report (§6). 21 flags need more than 16 bits, hence uint32.
type MouseFlag uint32

const (
	Button1Pressed MouseFlag = 1 << iota
	Button1Released
	Button1Clicked
	Button1DoubleClicked
	Button1Dragged
	Button2Pressed
	Button2Released
	Button2Clicked
	Button2DoubleClicked
	Button2Dragged
	Button3Pressed
	Button3Released
	Button3Clicked
	Button3DoubleClicked
	Button3Dragged
	WheelUp
	WheelDown
	MouseShift
	MouseAlt
	MouseCtrl
	ReportMousePosition
)

// Has reports whether flag is set.
func (f MouseFlag) Has(flag MouseFlag) bool { return f&flag != 0 }

// Position is an absolute terminal cell coordinate.
type Position struct {
	X, Y int
}

// MouseEvent is the (flags, position, modifiers) triple described by §6.
// Modifiers are folded into Flags (MouseShift/MouseAlt/MouseCtrl) to
// match the single bitset the external contract specifies.
type MouseEvent struct {
	Flags    MouseFlag
	Position Position
}
