//go:build windows

package ptyio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/containerd/console"
)

// Init is a no-op on Windows: the self-exec shim dance (§4.E step 3) is
// Linux-only, since ConPTY handles session/console attachment itself.
func Init() bool { return false }

// windowsBackend is the §4.E Windows implementation: ConPTY via
// github.com/containerd/console, which already wraps the extended
// startup-info / PROC_THREAD_ATTRIBUTE_PSEUDOCONSOLE dance §4.E describes
// rather than hand-rolling the syscalls.
type windowsBackend struct {
	pty console.ConsolePty
	cmd *exec.Cmd
}

// Start creates a ConPTY of the given size and launches the target
// command attached to it.
func Start(opts Options) (Backend, error) {
	pty, err := console.ConPty(uint16(opts.Cols), uint16(opts.Rows))
	if err != nil {
		return nil, fmt.Errorf("%w: CreatePseudoConsole: %v", ErrUnavailable, err)
	}

	cmd := exec.Command(opts.Command, opts.Args...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	cmd.SysProcAttr = pty.Attr()
	cmd.Stdin = pty.InPipe()
	cmd.Stdout = pty.OutPipe()
	cmd.Stderr = pty.OutPipe()

	if err := cmd.Start(); err != nil {
		pty.Close()
		return nil, fmt.Errorf("%w: CreateProcess: %v", ErrUnavailable, err)
	}

	return &windowsBackend{pty: pty, cmd: cmd}, nil
}

func (b *windowsBackend) Read(p []byte) (int, error) {
	n, err := b.pty.OutPipe().Read(p)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, ErrEOF
		}
		return n, ErrEOF
	}
	return n, nil
}

func (b *windowsBackend) Write(p []byte) (int, error) {
	return b.pty.InPipe().Write(p)
}

func (b *windowsBackend) Resize(rows, cols int) error {
	return b.pty.Resize(console.WinSize{Height: uint16(rows), Width: uint16(cols)})
}

// Dispose closes the input stream (EOF to the child's stdin), then the
// ConPTY, then the output stream, then waits briefly on the child (§4.E
// step 6).
func (b *windowsBackend) Dispose() error {
	b.pty.InPipe().Close()
	closeErr := b.pty.Close()

	done := make(chan error, 1)
	go func() { done <- b.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		if b.cmd.Process != nil {
			b.cmd.Process.Kill()
		}
		<-done
	}
	return closeErr
}
