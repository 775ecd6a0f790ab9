// Package diffrender implements the dirty diff engine: it compares a
// front and back cellbuf.Buffer, picks a per-row rendering strategy, and
// emits the minimal ANSI byte stream needed to bring the physical
// terminal's state into agreement with the back buffer.
//
// Per-cell diff, cursor positioning only on discontinuity, SGR-run
// coalescing, and allocation-free integer formatting, extended with
// three adaptive per-row modes instead of always emitting runs.
package diffrender

import (
	"bytes"

	"github.com/kungfusheep/tvwm/cellbuf"
)

// Mode selects the per-row dirty-tracking strategy.
type Mode int

const (
	// Cell always emits only the dirty runs (minimum bytes).
	Cell Mode = iota
	// Line always emits the full row.
	Line
	// Smart chooses per row: full row once coverage or segment count
	// cross the fixed thresholds, runs otherwise.
	Smart
)

// Smart mode thresholds (§4.C Pass 2) — contractual, not tunable.
const (
	smartCoverageThreshold = 0.60
	smartSegmentThreshold  = 5
)

// Metrics reports what a single Render pass did.
type Metrics struct {
	DirtyCellsMarked      int
	CellsActuallyRendered int
	CharactersChanged     int
	BytesWritten          int
	EfficiencyRatio       float64
	IsStaticFrame         bool
}

type run struct {
	y, x0, x1 int // inclusive-exclusive [x0,x1) on row y
}

// Render compares front against back, writes the resulting byte stream to
// dst, advances front to match back for every cell it touched, and
// returns the frame's metrics. front and back must have identical
// dimensions; mismatched buffers render nothing (callers resize both
// buffers together before calling Render).
func Render(dst *bytes.Buffer, front, back *cellbuf.Buffer, mode Mode) Metrics {
	if front.Width() != back.Width() || front.Height() != back.Height() {
		return Metrics{IsStaticFrame: true}
	}
	w, h := back.Width(), back.Height()

	// Pass 1 — dirty detection.
	totalDirty := 0
	rowDirtyCount := make([]int, h)
	rowSegments := make([]int, h)
	dirtyMask := make([][]bool, h)
	for y := 0; y < h; y++ {
		if !back.RowDirty(y) && !front.RowDirty(y) {
			continue
		}
		mask := make([]bool, w)
		inRun := false
		for x := 0; x < w; x++ {
			d := !front.Get(x, y).Equal(back.Get(x, y))
			mask[x] = d
			if d {
				totalDirty++
				rowDirtyCount[y]++
				if !inRun {
					rowSegments[y]++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
		dirtyMask[y] = mask
	}

	if totalDirty == 0 {
		back.ClearDirtyFlags()
		return Metrics{IsStaticFrame: true}
	}

	// Pass 2 — per-row mode decision, building the run list.
	var runs []run
	for y := 0; y < h; y++ {
		if rowDirtyCount[y] == 0 {
			continue
		}
		fullRow := mode == Line
		if mode == Smart {
			coverage := float64(rowDirtyCount[y]) / float64(w)
			if coverage > smartCoverageThreshold || rowSegments[y] > smartSegmentThreshold {
				fullRow = true
			}
		}
		if fullRow {
			runs = append(runs, run{y: y, x0: 0, x1: w})
			continue
		}
		mask := dirtyMask[y]
		x := 0
		for x < w {
			if !mask[x] {
				x++
				continue
			}
			start := x
			for x < w && mask[x] {
				x++
			}
			runs = append(runs, run{y: y, x0: start, x1: x})
		}
	}

	// Pass 3 — emission.
	cursorX, cursorY := -1, -1
	lastStyle := cellbuf.DefaultStyle()
	styleSet := false
	cellsRendered := 0
	charsChanged := 0

	for _, r := range runs {
		if cursorX != r.x0 || cursorY != r.y {
			dst.WriteString("\x1b[")
			writeInt(dst, r.y+1)
			dst.WriteByte(';')
			writeInt(dst, r.x0+1)
			dst.WriteByte('H')
		}
		for x := r.x0; x < r.x1; x++ {
			c := back.Get(x, r.y)
			if !styleSet || !c.Style.Equal(lastStyle) {
				writeStyle(dst, c.Style)
				lastStyle = c.Style
				styleSet = true
			}
			dst.WriteRune(c.Ch)
			front.SetCell(x, r.y, c)
			cellsRendered++
			if mask := dirtyMask[r.y]; mask != nil && mask[x] {
				charsChanged++
			}
		}
		cursorX = r.x1
		cursorY = r.y
	}

	if cellsRendered > 0 {
		dst.WriteString("\x1b[0m")
	}

	back.ClearDirtyFlags()
	// front.SetCell above marks front's own rows dirty as content-tracking
	// bookkeeping, but front never needs to participate in the next
	// frame's dirty-row skip as "dirty" — clear it too, or Pass 1's
	// row_dirty(y) short-circuit never skips an already-touched row again.
	front.ClearDirtyFlags()

	efficiency := 1.0
	if cellsRendered > 0 {
		efficiency = float64(totalDirty) / float64(cellsRendered)
		if efficiency > 1.0 {
			efficiency = 1.0
		}
	}

	return Metrics{
		DirtyCellsMarked:      totalDirty,
		CellsActuallyRendered: cellsRendered,
		CharactersChanged:     charsChanged,
		BytesWritten:          dst.Len(),
		EfficiencyRatio:       efficiency,
		IsStaticFrame:         false,
	}
}

// writeStyle writes a full SGR reset-and-apply sequence for style,
// allocation-free aside from the io.Writer's own growth.
func writeStyle(dst *bytes.Buffer, style cellbuf.Style) {
	dst.WriteString("\x1b[0")
	if style.Attr.Has(cellbuf.AttrBold) {
		dst.WriteString(";1")
	}
	if style.Attr.Has(cellbuf.AttrDim) {
		dst.WriteString(";2")
	}
	if style.Attr.Has(cellbuf.AttrItalic) {
		dst.WriteString(";3")
	}
	if style.Attr.Has(cellbuf.AttrUnderline) {
		dst.WriteString(";4")
	}
	if style.Attr.Has(cellbuf.AttrBlink) {
		dst.WriteString(";5")
	}
	if style.Attr.Has(cellbuf.AttrInverse) {
		dst.WriteString(";7")
	}
	if style.Attr.Has(cellbuf.AttrStrikethrough) {
		dst.WriteString(";9")
	}
	writeColor(dst, style.FG, true)
	writeColor(dst, style.BG, false)
	dst.WriteByte('m')
}

func writeColor(dst *bytes.Buffer, c cellbuf.Color, fg bool) {
	switch c.Mode {
	case cellbuf.ColorDefault:
		if fg {
			dst.WriteString(";39")
		} else {
			dst.WriteString(";49")
		}
	case cellbuf.Color16:
		base := 30
		if !fg {
			base = 40
		}
		if c.Index >= 8 {
			dst.WriteByte(';')
			writeInt(dst, base+60+int(c.Index-8))
		} else {
			dst.WriteByte(';')
			writeInt(dst, base+int(c.Index))
		}
	case cellbuf.Color256:
		if fg {
			dst.WriteString(";38;5;")
		} else {
			dst.WriteString(";48;5;")
		}
		writeInt(dst, int(c.Index))
	case cellbuf.ColorRGB:
		if fg {
			dst.WriteString(";38;2;")
		} else {
			dst.WriteString(";48;2;")
		}
		writeInt(dst, int(c.R))
		dst.WriteByte(';')
		writeInt(dst, int(c.G))
		dst.WriteByte(';')
		writeInt(dst, int(c.B))
	}
}

// writeInt appends a decimal integer without allocation, matching the
// teacher's writeIntToBuf.
func writeInt(dst *bytes.Buffer, n int) {
	if n == 0 {
		dst.WriteByte('0')
		return
	}
	if n < 0 {
		dst.WriteByte('-')
		n = -n
	}
	var scratch [10]byte
	i := len(scratch)
	for n > 0 {
		i--
		scratch[i] = byte('0' + n%10)
		n /= 10
	}
	dst.Write(scratch[i:])
}
