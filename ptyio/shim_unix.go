//go:build !windows

package ptyio

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/docker/docker/pkg/reexec"
	"golang.org/x/sys/unix"
)

func lookPath(name string) (string, error) { return exec.LookPath(name) }

// shimCommandName is the distinguished command-line marker (§4.E step 3,
// §6 "Self-exec shim contract"). reexec.Command sets this as argv[0] of
// the re-launched process; reexec.Init detects it before main ever
// touches stdin/stdout.
const shimCommandName = "tvwm-pty-shim"

func init() {
	reexec.Register(shimCommandName, shimMain)
}

// Init must be called as the very first statement of main(), before
// anything reads stdin or writes stdout. It returns true if this process
// was launched as the self-exec shim, in which case shimMain has already
// run (and os.Exit has already been called) by the time Init returns —
// callers never observe a false return in that branch.
func Init() bool {
	return reexec.Init()
}

// shimMain performs the session-leader dance described in §4.E step 3:
// new session, slave becomes the controlling TTY, dup2 onto 0/1/2, close
// the extra fd, execvp the target. It never returns.
func shimMain() {
	// os.Args: [tvwm-pty-shim, <slave-fd>, <target>, <target-args>...]
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "tvwm-pty-shim: missing slave fd or target command")
		os.Exit(1)
	}
	fd, err := strconv.Atoi(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "tvwm-pty-shim: bad slave fd %q: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	target := os.Args[2]
	targetArgs := os.Args[2:]

	if _, err := unix.Setsid(); err != nil {
		fmt.Fprintf(os.Stderr, "tvwm-pty-shim: setsid: %v\n", err)
		os.Exit(1)
	}
	if err := unix.IoctlSetInt(fd, unix.TIOCSCTTY, 0); err != nil {
		fmt.Fprintf(os.Stderr, "tvwm-pty-shim: TIOCSCTTY: %v\n", err)
		os.Exit(1)
	}
	for _, dst := range []int{0, 1, 2} {
		if dst == fd {
			continue
		}
		if err := unix.Dup2(fd, dst); err != nil {
			fmt.Fprintf(os.Stderr, "tvwm-pty-shim: dup2(%d,%d): %v\n", fd, dst, err)
			os.Exit(1)
		}
	}
	if fd > 2 {
		unix.Close(fd)
	}

	path, err := lookPath(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tvwm-pty-shim: %v\n", err)
		os.Exit(127)
	}
	if err := unix.Exec(path, targetArgs, os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "tvwm-pty-shim: execve %s: %v\n", path, err)
		os.Exit(126)
	}
}
