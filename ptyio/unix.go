//go:build !windows

package ptyio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/creack/pty"
	"github.com/docker/docker/pkg/reexec"
)

// linuxBackend is the §4.E Linux implementation: openpty + self-exec shim
// via github.com/creack/pty and github.com/docker/docker/pkg/reexec,
// grounded on majorcontext-moat's apple.go pty.Start/pty.Setsize idiom.
type linuxBackend struct {
	master *os.File
	cmd    *exec.Cmd
}

// Start allocates a master/slave pair, re-launches the current executable
// as the self-exec shim (§4.E step 3), and closes the parent's copy of
// the slave fd once the child has it (step 4).
func Start(opts Options) (Backend, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: openpty: %v", ErrUnavailable, err)
	}
	if err := pty.Setsize(master, &pty.Winsize{
		Rows: uint16(opts.Rows),
		Cols: uint16(opts.Cols),
	}); err != nil {
		master.Close()
		slave.Close()
		return nil, fmt.Errorf("%w: setsize: %v", ErrUnavailable, err)
	}

	args := append([]string{"3", opts.Command}, opts.Args...)
	cmd := reexec.Command(append([]string{shimCommandName}, args...)...)
	cmd.ExtraFiles = []*os.File{slave}
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	if err := cmd.Start(); err != nil {
		master.Close()
		slave.Close()
		return nil, fmt.Errorf("%w: spawn shim: %v", ErrUnavailable, err)
	}
	// Parent's copy of the slave fd is no longer needed once the child has
	// inherited it (§4.E step 4); keeping it open would leave the master
	// side without a final EOF when the child exits.
	slave.Close()

	return &linuxBackend{master: master, cmd: cmd}, nil
}

func (b *linuxBackend) Read(p []byte) (int, error) {
	n, err := b.master.Read(p)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, ErrEOF
		}
		// A closed master (our own Dispose) surfaces as a PathError on
		// Linux; treat any post-close read failure as EOF too.
		return n, ErrEOF
	}
	return n, nil
}

func (b *linuxBackend) Write(p []byte) (int, error) {
	return b.master.Write(p)
}

func (b *linuxBackend) Resize(rows, cols int) error {
	return pty.Setsize(b.master, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Dispose closes the master (the reader's next read then returns EOF),
// then waits a bounded interval for the child before reaping it (§5
// "Cancellation & shutdown").
func (b *linuxBackend) Dispose() error {
	closeErr := b.master.Close()

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
