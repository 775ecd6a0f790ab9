package vt100

import "github.com/kungfusheep/tvwm/cellbuf"

// ScrollbackRing is a fixed-capacity circular buffer of rows that have
// scrolled off the top of the primary screen (§3 "Scrollback ring").
type ScrollbackRing struct {
	rows     [][]cellbuf.Cell
	capacity int
	start    int
	count    int
}

// NewScrollbackRing allocates a ring holding at most capacity rows.
func NewScrollbackRing(capacity int) *ScrollbackRing {
	if capacity < 1 {
		capacity = 1
	}
	return &ScrollbackRing{rows: make([][]cellbuf.Cell, capacity), capacity: capacity}
}

// Push records row as the most recently scrolled-off row. Once the ring
// is full, each push evicts the oldest row (head advances, count
// saturates at capacity).
func (s *ScrollbackRing) Push(row []cellbuf.Cell) {
	cp := make([]cellbuf.Cell, len(row))
	copy(cp, row)
	if s.count < s.capacity {
		idx := (s.start + s.count) % s.capacity
		s.rows[idx] = cp
		s.count++
		return
	}
	s.rows[s.start] = cp
	s.start = (s.start + 1) % s.capacity
}

// Len returns the number of rows currently held.
func (s *ScrollbackRing) Len() int { return s.count }

// Capacity returns the ring's fixed capacity.
func (s *ScrollbackRing) Capacity() int { return s.capacity }

// Rows returns the held rows ordered oldest to newest.
func (s *ScrollbackRing) Rows() [][]cellbuf.Cell {
	out := make([][]cellbuf.Cell, s.count)
	for i := 0; i < s.count; i++ {
		out[i] = s.rows[(s.start+i)%s.capacity]
	}
	return out
}

// Recent returns the n most recently scrolled-off rows, oldest first
// within that window, clamped to Len(). Supplements the distilled spec
// with a query API a headless-terminal-style caller needs (see
// SPEC_FULL.md "Scrollback query API").
func (s *ScrollbackRing) Recent(n int) [][]cellbuf.Cell {
	all := s.Rows()
	if n >= len(all) {
		return all
	}
	if n < 0 {
		n = 0
	}
	return all[len(all)-n:]
}
