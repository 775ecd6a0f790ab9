package vt100

import "github.com/kungfusheep/tvwm/cellbuf"

func (e *Emulator) enterCsi(private bool) {
	e.params = nil
	e.curParam = 0
	e.curParamSet = false
	if private {
		e.state = stateCsiPrivate
	} else {
		e.state = stateCsi
	}
}

func (e *Emulator) stepCsi(b byte) {
	switch {
	case b == '?' && len(e.params) == 0 && !e.curParamSet:
		e.state = stateCsiPrivate
	case b >= '0' && b <= '9':
		e.curParam = e.curParam*10 + int(b-'0')
		e.curParamSet = true
	case b == ';':
		e.params = append(e.params, e.curParamValue())
		e.curParam = 0
		e.curParamSet = false
	case b >= 0x20 && b <= 0x2F:
		// intermediate byte, ignored
	case b >= 0x40 && b <= 0x7E:
		e.params = append(e.params, e.curParamValue())
		private := e.state == stateCsiPrivate
		e.dispatchCSI(b, e.params, private)
		e.state = stateNormal
	default:
		// unrecognised param byte in 0x30-0x3F (e.g. ':'); ignored.
	}
}

func (e *Emulator) curParamValue() int {
	if !e.curParamSet {
		return -1 // "absent" — command dispatch supplies its own default
	}
	return e.curParam
}

// paramOr returns params[idx] if present and not the "absent" sentinel,
// otherwise def.
func paramOr(params []int, idx, def int) int {
	if idx < 0 || idx >= len(params) || params[idx] < 0 {
		return def
	}
	return params[idx]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (e *Emulator) dispatchCSI(final byte, params []int, private bool) {
	p1 := paramOr(params, 0, 1)
	if p1 < 1 {
		p1 = 1
	}

	switch final {
	case 'A':
		e.cy = clamp(e.cy-p1, 0, e.height-1)
	case 'B':
		e.cy = clamp(e.cy+p1, 0, e.height-1)
	case 'C':
		e.cx = clamp(e.cx+p1, 0, e.width-1)
	case 'D':
		e.cx = clamp(e.cx-p1, 0, e.width-1)
	case 'E':
		e.cx = 0
		e.cy = clamp(e.cy+p1, 0, e.height-1)
	case 'F':
		e.cx = 0
		e.cy = clamp(e.cy-p1, 0, e.height-1)
	case 'G':
		e.cx = clamp(p1, 1, e.width) - 1
	case 'H', 'f':
		row := paramOr(params, 0, 1)
		col := paramOr(params, 1, 1)
		e.cy = clamp(row, 1, e.height) - 1
		e.cx = clamp(col, 1, e.width) - 1
	case 'J':
		e.eraseDisplay(paramOr(params, 0, 0))
	case 'K':
		e.eraseLine(paramOr(params, 0, 0))
	case 'L':
		e.insertLines(p1)
	case 'M':
		e.deleteLines(p1)
	case 'P':
		e.deleteChars(p1)
	case '@':
		e.insertChars(p1)
	case 'S':
		for i := 0; i < p1; i++ {
			e.scrollUp()
		}
	case 'T':
		for i := 0; i < p1; i++ {
			e.scrollDown()
		}
	case 'd':
		e.cy = clamp(p1, 1, e.height) - 1
	case 'm':
		e.applySGR(params)
	case 'r':
		top := paramOr(params, 0, 1) - 1
		bottom := paramOr(params, 1, e.height) - 1
		top = clamp(top, 0, e.height-1)
		bottom = clamp(bottom, 0, e.height-1)
		if top < bottom {
			e.scrollTop, e.scrollBottom = top, bottom
		} else {
			e.scrollTop, e.scrollBottom = 0, e.height-1
		}
		e.cx, e.cy = 0, 0
	case 's':
		e.savedCx, e.savedCy = e.cx, e.cy
	case 'u':
		e.cx, e.cy = e.savedCx, e.savedCy
		e.clampCursor()
	case 'h':
		if private {
			e.setPrivateModes(params, true)
		}
	case 'l':
		if private {
			e.setPrivateModes(params, false)
		}
	}
}

func (e *Emulator) eraseDisplay(mode int) {
	style := e.currentStyle()
	scr := e.Screen()
	switch mode {
	case 0:
		e.eraseLine(0)
		for y := e.cy + 1; y < e.height; y++ {
			blankRowStyled(scr, y, e.width, style)
		}
	case 1:
		e.eraseLine(1)
		for y := 0; y < e.cy; y++ {
			blankRowStyled(scr, y, e.width, style)
		}
	case 2, 3:
		for y := 0; y < e.height; y++ {
			blankRowStyled(scr, y, e.width, style)
		}
	}
}

func (e *Emulator) eraseLine(mode int) {
	style := e.currentStyle()
	scr := e.Screen()
	switch mode {
	case 0:
		for x := e.cx; x < e.width; x++ {
			scr.Set(x, e.cy, ' ', style)
		}
	case 1:
		for x := 0; x <= e.cx && x < e.width; x++ {
			scr.Set(x, e.cy, ' ', style)
		}
	case 2:
		blankRowStyled(scr, e.cy, e.width, style)
	}
}

func blankRowStyled(b *cellbuf.Buffer, y, width int, style cellbuf.Style) {
	for x := 0; x < width; x++ {
		b.Set(x, y, ' ', style)
	}
}

func (e *Emulator) insertLines(n int) {
	scr := e.Screen()
	for i := 0; i < n; i++ {
		for y := e.scrollBottom; y > e.cy; y-- {
			for x := 0; x < e.width; x++ {
				scr.SetCell(x, y, scr.Get(x, y-1))
			}
		}
		blankRow(scr, e.cy, e.width, e.defaultFG, e.defaultBG)
	}
}

func (e *Emulator) deleteLines(n int) {
	scr := e.Screen()
	for i := 0; i < n; i++ {
		for y := e.cy; y < e.scrollBottom; y++ {
			for x := 0; x < e.width; x++ {
				scr.SetCell(x, y, scr.Get(x, y+1))
			}
		}
		blankRow(scr, e.scrollBottom, e.width, e.defaultFG, e.defaultBG)
	}
}

func (e *Emulator) deleteChars(n int) {
	scr := e.Screen()
	style := e.currentStyle()
	for x := e.cx; x < e.width; x++ {
		src := x + n
		if src < e.width {
			scr.SetCell(x, e.cy, scr.Get(src, e.cy))
		} else {
			scr.Set(x, e.cy, ' ', style)
		}
	}
}

func (e *Emulator) insertChars(n int) {
	scr := e.Screen()
	style := e.currentStyle()
	for x := e.width - 1; x >= e.cx; x-- {
		src := x - n
		if src >= e.cx {
			scr.SetCell(x, e.cy, scr.Get(src, e.cy))
		} else {
			scr.Set(x, e.cy, ' ', style)
		}
	}
}

func (e *Emulator) setPrivateModes(params []int, set bool) {
	for _, p := range params {
		switch p {
		case 1:
			e.appCursorKeys = set
		case 25:
			e.cursorVisible = set
		case 1000:
			if set {
				e.mouseMode = Mouse1000
			} else if e.mouseMode == Mouse1000 {
				e.mouseMode = MouseOff
			}
		case 1002:
			if set {
				e.mouseMode = Mouse1002
			} else if e.mouseMode == Mouse1002 {
				e.mouseMode = MouseOff
			}
		case 1003:
			if set {
				e.mouseMode = Mouse1003
			} else if e.mouseMode == Mouse1003 {
				e.mouseMode = MouseOff
			}
		case 1006:
			e.sgrMouse = set
		case 47:
			e.setAltScreen(set, false)
		case 1047:
			e.setAltScreen(set, false)
		case 1049:
			e.setAltScreen(set, true)
		}
	}
}

func (e *Emulator) setAltScreen(enter bool, saveCursor bool) {
	if enter == e.usingAlt {
		return
	}
	if enter {
		if saveCursor {
			e.altSavedCx, e.altSavedCy = e.cx, e.cy
		}
		e.alt.Clear()
		e.usingAlt = true
		e.cx, e.cy = 0, 0
	} else {
		e.usingAlt = false
		if saveCursor {
			e.cx, e.cy = e.altSavedCx, e.altSavedCy
			e.clampCursor()
		}
	}
}
