package vt100

import "github.com/kungfusheep/tvwm/cellbuf"

// applySGR interprets a CSI ... m parameter list left-to-right (§4.D "SGR
// interpretation").
func (e *Emulator) applySGR(params []int) {
	if len(params) == 0 {
		e.resetSGR()
		return
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		if p < 0 {
			p = 0 // absent parameter in "m" defaults to reset
		}
		switch {
		case p == 0:
			e.resetSGR()
		case p == 1:
			e.boldBright = true
			e.attr = e.attr.With(cellbuf.AttrBold)
		case p == 2:
			e.attr = e.attr.With(cellbuf.AttrDim)
		case p == 3:
			e.attr = e.attr.With(cellbuf.AttrItalic)
		case p == 4:
			e.attr = e.attr.With(cellbuf.AttrUnderline)
		case p == 5:
			e.attr = e.attr.With(cellbuf.AttrBlink)
		case p == 7:
			e.attr = e.attr.With(cellbuf.AttrInverse)
		case p == 9:
			e.attr = e.attr.With(cellbuf.AttrStrikethrough)
		case p == 22:
			e.boldBright = false
			e.attr = e.attr.Without(cellbuf.AttrBold)
		case p == 23:
			e.attr = e.attr.Without(cellbuf.AttrItalic)
		case p == 24:
			e.attr = e.attr.Without(cellbuf.AttrUnderline)
		case p == 27:
			e.attr = e.attr.Without(cellbuf.AttrInverse)
		case p == 39:
			e.curFG = e.defaultFG
		case p == 49:
			e.curBG = e.defaultBG
		case p >= 30 && p <= 37:
			idx := uint8(p - 30)
			if e.boldBright {
				idx += 8
			}
			e.curFG = cellbuf.BasicColor(idx)
		case p >= 40 && p <= 47:
			e.curBG = cellbuf.BasicColor(uint8(p - 40))
		case p >= 90 && p <= 97:
			e.curFG = cellbuf.BasicColor(uint8(p-90) + 8)
		case p >= 100 && p <= 107:
			e.curBG = cellbuf.BasicColor(uint8(p-100) + 8)
		case p == 38 || p == 48:
			consumed := e.applyExtendedColor(p == 38, params, i+1)
			i += consumed
		}
	}
}

// applyExtendedColor handles "38;5;n" (256-colour) and "38;2;r;g;b"
// (24-bit RGB) starting at params[from]. Returns how many extra params
// were consumed.
func (e *Emulator) applyExtendedColor(fg bool, params []int, from int) int {
	if from >= len(params) {
		return 0
	}
	switch params[from] {
	case 5:
		if from+1 >= len(params) {
			return 1
		}
		idx := params[from+1]
		if idx < 0 || idx > 255 {
			return 2
		}
		col := cellbuf.Palette256(uint8(idx))
		if fg {
			e.curFG = col
		} else {
			e.curBG = col
		}
		return 2
	case 2:
		if from+3 >= len(params) {
			return 1
		}
		r, g, b := params[from+1], params[from+2], params[from+3]
		col := cellbuf.RGB(clampByte(r), clampByte(g), clampByte(b))
		if fg {
			e.curFG = col
		} else {
			e.curBG = col
		}
		return 4
	}
	return 1
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func (e *Emulator) resetSGR() {
	e.curFG = e.defaultFG
	e.curBG = e.defaultBG
	e.attr = cellbuf.AttrNone
	e.boldBright = false
}
