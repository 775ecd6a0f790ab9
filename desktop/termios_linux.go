//go:build linux

package desktop

import "golang.org/x/sys/unix"

// Linux's raw termios ioctl requests, distinct from the BSD/Darwin
// TIOCGETA/TIOCSETA names the teacher's termios_darwin.go uses.
const (
	ioctlGetTermios = unix.TCGETS
	ioctlSetTermios = unix.TCSETS
)
