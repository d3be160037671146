//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// setupResizeSignal delivers SIGWINCH so the editor can redraw after the
// terminal is resized.
func setupResizeSignal() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	return ch, func() { signal.Stop(ch) }
}
