package ptyio

import (
	"fmt"

	"github.com/kungfusheep/tvwm/input"
	"github.com/kungfusheep/tvwm/vt100"
)

// EncodeKey turns a host key event into the xterm byte sequence written
// to the PTY (§4.E "Key encoding"). appCursorKeys selects the ESCO
// variants for arrows/Home/End when application-cursor-keys mode (DECCKM,
// private mode 1) is set.
func EncodeKey(ev input.KeyEvent, appCursorKeys bool) []byte {
	if ev.Mods.Has(input.ModCtrl) && ev.Key == input.KeyRune && ev.Char >= 'a' && ev.Char <= 'z' {
		return []byte{byte(ev.Char) - 'a' + 1}
	}
	if ev.Mods.Has(input.ModCtrl) && ev.Key == input.KeyRune && ev.Char >= 'A' && ev.Char <= 'Z' {
		return []byte{byte(ev.Char) - 'A' + 1}
	}

	switch ev.Key {
	case input.KeyEnter:
		return []byte("\r")
	case input.KeyBackspace:
		return []byte{0x7F}
	case input.KeyTab:
		return []byte("\t")
	case input.KeyEscape:
		return []byte{0x1B}
	case input.KeyUp:
		return cursorSeq('A', appCursorKeys)
	case input.KeyDown:
		return cursorSeq('B', appCursorKeys)
	case input.KeyRight:
		return cursorSeq('C', appCursorKeys)
	case input.KeyLeft:
		return cursorSeq('D', appCursorKeys)
	case input.KeyHome:
		if appCursorKeys {
			return []byte("\x1bOH")
		}
		return []byte("\x1b[H")
	case input.KeyEnd:
		if appCursorKeys {
			return []byte("\x1bOF")
		}
		return []byte("\x1b[F")
	case input.KeyDelete:
		return []byte("\x1b[3~")
	case input.KeyPageUp:
		return []byte("\x1b[5~")
	case input.KeyPageDown:
		return []byte("\x1b[6~")
	case input.KeyInsert:
		return []byte("\x1b[2~")
	case input.KeyF1:
		return []byte("\x1bOP")
	case input.KeyF2:
		return []byte("\x1bOQ")
	case input.KeyF3:
		return []byte("\x1bOR")
	case input.KeyF4:
		return []byte("\x1bOS")
	case input.KeyF5:
		return []byte("\x1b[15~")
	case input.KeyF6:
		return []byte("\x1b[17~")
	case input.KeyF7:
		return []byte("\x1b[18~")
	case input.KeyF8:
		return []byte("\x1b[19~")
	case input.KeyF9:
		return []byte("\x1b[20~")
	case input.KeyF10:
		return []byte("\x1b[21~")
	case input.KeyF11:
		return []byte("\x1b[23~")
	case input.KeyF12:
		return []byte("\x1b[24~")
	case input.KeyRune:
		return []byte(string(ev.Char))
	}
	return nil
}

func cursorSeq(final byte, appCursorKeys bool) []byte {
	if appCursorKeys {
		return []byte{0x1B, 'O', final}
	}
	return []byte{0x1B, '[', final}
}

// EncodeMouse turns a host mouse event into the xterm byte sequence
// written to the PTY (§4.E "Mouse encoding"), or nil if mode is
// vt100.MouseOff. Button code follows xterm convention: 0/1/2 for
// left/middle/right, 64/65 for wheel up/down, 32+button while dragging,
// 35 for motion-any.
func EncodeMouse(ev input.MouseEvent, mode vt100.MouseMode, sgr bool) []byte {
	if mode == vt100.MouseOff {
		return nil
	}
	button, release := mouseButtonCode(ev)
	col, row := ev.Position.X+1, ev.Position.Y+1

	if sgr {
		final := byte('M')
		if release {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", button, col, row, final))
	}

	if col > 222 || row > 222 {
		return nil
	}
	b := byte(button + 32)
	if release {
		b = byte(3 + 32)
	}
	return []byte{0x1B, '[', 'M', b, byte(col + 32), byte(row + 32)}
}

func mouseButtonCode(ev input.MouseEvent) (code int, release bool) {
	switch {
	case ev.Flags.Has(input.WheelUp):
		return 64, false
	case ev.Flags.Has(input.WheelDown):
		return 65, false
	case ev.Flags.Has(input.Button1Released):
		return 0, true
	case ev.Flags.Has(input.Button2Released):
		return 1, true
	case ev.Flags.Has(input.Button3Released):
		return 2, true
	case ev.Flags.Has(input.Button1Dragged):
		return 32 + 0, false
	case ev.Flags.Has(input.Button2Dragged):
		return 32 + 1, false
	case ev.Flags.Has(input.Button3Dragged):
		return 32 + 2, false
	case ev.Flags.Has(input.Button1Pressed):
		return 0, false
	case ev.Flags.Has(input.Button2Pressed):
		return 1, false
	case ev.Flags.Has(input.Button3Pressed):
		return 2, false
	default:
		return 35, false
	}
}
