// Command tvshell is the demo application: a desktop with two embedded
// terminals, wired to logx, ptyio, and vt100 end-to-end. It exists only
// to exercise desktop + embterm, so it is intentionally tiny and
// undecorated — no widgets, no theme, no layout engine.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/kungfusheep/tvwm/desktop"
	"github.com/kungfusheep/tvwm/embterm"
	"github.com/kungfusheep/tvwm/logx"
	"github.com/kungfusheep/tvwm/ptyio"
)

func main() {
	// Must run before anything touches stdin/stdout (§4.E step 3, §6
	// "Self-exec shim contract"). On Windows this is a no-op.
	if ptyio.Init() {
		return
	}

	log := logx.New(nil, logx.LevelFromEnv())

	width, height, err := desktop.TerminalSize(int(os.Stdout.Fd()))
	if err != nil {
		width, height = 80, 24
	}

	d := desktop.New(os.Stdout, width, height, desktop.WithLogger(log))
	host := desktop.NewHost(d)
	if err := host.EnterRawMode(); err != nil {
		fmt.Fprintln(os.Stderr, "tvshell: enter raw mode:", err)
		os.Exit(1)
	}
	defer host.ExitRawMode()

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	leftRect := desktop.Rect{X: 0, Y: 0, Width: width / 2, Height: height}
	rightRect := desktop.Rect{X: width / 2, Y: 0, Width: width - width/2, Height: height}

	closed := make(chan *embterm.Terminal, 2)
	onClose := embterm.OnClose(func(t *embterm.Terminal) { closed <- t })

	left, err := embterm.New(leftRect, shell, nil, embterm.WithLogger(log), embterm.WithZOrder(0), onClose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tvshell: spawn left terminal:", err)
		os.Exit(1)
	}
	right, err := embterm.New(rightRect, shell, nil, embterm.WithLogger(log), embterm.WithZOrder(0), onClose)
	if err != nil {
		left.Dispose()
		fmt.Fprintln(os.Stderr, "tvshell: spawn right terminal:", err)
		os.Exit(1)
	}

	d.AddWindow(left)
	d.AddWindow(right)
	d.Focus().Register(left)
	d.Focus().Register(right)

	// Raw passthrough from the host terminal to whichever pane holds
	// focus. Ctrl+A cycles focus; everything else goes to the child
	// verbatim — stdin is already in raw mode, so the bytes are already
	// xterm-encoded and need no KeyEvent round trip.
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			for _, b := range buf[:n] {
				if b == 0x01 {
					d.Focus().Next()
					continue
				}
				if t, ok := d.Focus().Current().(*embterm.Terminal); ok {
					t.Write([]byte{b})
				}
			}
		}
	}()

	remaining := 2
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for remaining > 0 {
		select {
		case t := <-closed:
			d.RemoveWindow(t)
			d.Focus().Unregister(t)
			remaining--
		case <-ticker.C:
			d.UpdateDisplay()
		}
	}
	// Final clearing frame so the physical terminal is left clean (§5
	// "Disposing the whole system... the last frame must include a
	// clearing pass").
	d.Invalidate()
	d.UpdateDisplay()
}
