//go:build darwin

package desktop

import "golang.org/x/sys/unix"

// Grounded on the teacher's termios_darwin.go: BSD/Darwin's termios
// ioctls are named TIOCGETA/TIOCSETA, not Linux's TCGETS/TCSETS.
const (
	ioctlGetTermios = unix.TIOCGETA
	ioctlSetTermios = unix.TIOCSETA
)
