package vt100

// decSpecialGraphics maps the ASCII range 0x60-0x7E to the DEC Special
// Graphics character set (box drawing and a handful of symbols), the
// legacy set ncurses still relies on. Grounded on the standard xterm /
// VT100 mapping table.
var decSpecialGraphics = map[rune]rune{
	'`': '◆',
	'a': '▒',
	'b': '␉',
	'c': '␌',
	'd': '␍',
	'e': '␊',
	'f': '°',
	'g': '±',
	'h': '␤',
	'i': '␋',
	'j': '┘',
	'k': '┐',
	'l': '┌',
	'm': '└',
	'n': '┼',
	'o': '⎺',
	'p': '⎻',
	'q': '─',
	'r': '⎼',
	's': '⎽',
	't': '├',
	'u': '┤',
	'v': '┴',
	'w': '┬',
	'x': '│',
	'y': '≤',
	'z': '≥',
	'{': 'π',
	'|': '≠',
	'}': '£',
	'~': '·',
}

func translateSpecialGraphics(r rune) rune {
	if mapped, ok := decSpecialGraphics[r]; ok {
		return mapped
	}
	return r
}
