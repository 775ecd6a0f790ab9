// Package ptyio implements the PTY Backend (§4.E): a platform-specific
// pseudo-terminal that pumps bytes between a child process and a
// background reader thread. The emulator and renderer never import this
// package's platform-specific files directly — they consume the Backend
// interface.
package ptyio

import (
	"errors"
	"fmt"
	"io"
)

// ErrUnavailable is returned when a PTY cannot be allocated or the child
// cannot be spawned. Per §7 PtyUnavailable, the caller's constructor must
// fail outright — nothing is partially initialised.
var ErrUnavailable = errors.New("ptyio: pty unavailable")

// ErrEOF is returned by Read once the child has exited and the reader has
// drained the master side. It is io.EOF under errors.Is.
var ErrEOF = fmt.Errorf("ptyio: pty closed: %w", io.EOF)

// Backend is the platform-independent PTY contract (§4.E "Contract").
// Read returns (0, ErrEOF) once the child has exited; Write sends bytes
// to the child's stdin; Resize delivers a new terminal size (and, on
// Linux, SIGWINCH to the foreground process group); Dispose tears the
// session down and is safe to call more than once.
type Backend interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Resize(rows, cols int) error
	Dispose() error
}

// Options configures a new PTY session.
type Options struct {
	Command string
	Args    []string
	Rows    int
	Cols    int
}
