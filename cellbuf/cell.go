// Package cellbuf implements the character buffer: a dense 2D grid of
// styled cells shared by the compositor, the dirty diff engine, and the
// VT100 emulator.
package cellbuf

import "github.com/mattn/go-runewidth"

// ColorMode selects how a Color's channels are interpreted.
type ColorMode uint8

const (
	ColorDefault ColorMode = iota // terminal default colour
	Color16                      // basic ANSI colours (0-15)
	Color256                     // 256-colour palette (0-255)
	ColorRGB                     // 24-bit true colour
)

// Color is a terminal colour in one of four modes.
type Color struct {
	Mode    ColorMode
	R, G, B uint8
	Index   uint8
}

// DefaultColor returns the terminal's default colour.
func DefaultColor() Color { return Color{Mode: ColorDefault} }

// BasicColor returns one of the 16 basic ANSI colours.
func BasicColor(index uint8) Color { return Color{Mode: Color16, Index: index} }

// PaletteColor returns one of the 256 palette colours.
func PaletteColor(index uint8) Color { return Color{Mode: Color256, Index: index} }

// RGB returns a 24-bit true colour.
func RGB(r, g, b uint8) Color { return Color{Mode: ColorRGB, R: r, G: g, B: b} }

// Palette256 maps a 256-colour index (16..255) to its RGB triple per the
// xterm 6x6x6 cube / greyscale ramp formula.
func Palette256(index uint8) Color {
	if index < 16 {
		return BasicColor(index)
	}
	if index < 232 {
		n := index - 16
		r := n / 36
		g := (n / 6) % 6
		b := n % 6
		comp := func(k uint8) uint8 {
			if k == 0 {
				return 0
			}
			return 55 + k*40
		}
		return RGB(comp(r), comp(g), comp(b))
	}
	grey := 8 + (index-232)*10
	return RGB(grey, grey, grey)
}

// Equal reports whether two colours are identical.
func (c Color) Equal(other Color) bool { return c == other }

// Attribute is a bitset of text attributes.
type Attribute uint8

const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrInverse
	AttrStrikethrough
)

// Has reports whether attr is set.
func (a Attribute) Has(attr Attribute) bool { return a&attr != 0 }

// With returns a new attribute set with attr added.
func (a Attribute) With(attr Attribute) Attribute { return a | attr }

// Without returns a new attribute set with attr removed.
func (a Attribute) Without(attr Attribute) Attribute { return a &^ attr }

// Style is the SGR render state attached to a cell.
type Style struct {
	FG   Color
	BG   Color
	Attr Attribute
}

// DefaultStyle returns default foreground/background, no attributes.
func DefaultStyle() Style {
	return Style{FG: DefaultColor(), BG: DefaultColor()}
}

// Equal reports whether two styles are identical.
func (s Style) Equal(other Style) bool { return s == other }

// Cell is a single grid position: one visible codepoint plus a style and
// a monotonic version tag bumped on every Set. The diff engine does not
// read the version tag — equality of (Ch, Style) alone decides
// dirtiness.
type Cell struct {
	Ch      rune
	Style   Style
	Version uint32
}

// EmptyCell returns a cell holding a space with the default style.
func EmptyCell() Cell { return Cell{Ch: ' ', Style: DefaultStyle()} }

// Equal reports whether two cells render identically. Version is excluded
// deliberately: it is bookkeeping, not content.
func (c Cell) Equal(other Cell) bool {
	return c.Ch == other.Ch && c.Style == other.Style
}

// normalizeRune replaces non-printable codepoints with a space, per the
// buffer's "no transparent cell" invariant.
func normalizeRune(r rune) rune {
	if r < 0x20 || r == 0x7F {
		return ' '
	}
	return r
}

// RuneWidth reports how many terminal columns r occupies: 0 for
// zero-width combining marks, 1 for the common case, 2 for wide
// East-Asian and emoji codepoints. vt100's cursor-advance math goes
// through this rather than assuming 1.
func RuneWidth(r rune) int { return runewidth.RuneWidth(r) }

// Width reports how many terminal columns the cell's rune occupies. A
// cell holding a zero-width combining mark still reports 1, since it
// always occupies the column it was placed in; callers writing wide
// glyphs are responsible for advancing past the continuation column
// themselves (see vt100's writeChar).
func (c Cell) Width() int {
	if w := RuneWidth(c.Ch); w > 0 {
		return w
	}
	return 1
}
