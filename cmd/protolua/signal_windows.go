//go:build windows

package main

import "os"

// setupResizeSignal returns a channel that never fires: there is no
// SIGWINCH on Windows.
func setupResizeSignal() (<-chan os.Signal, func()) {
	return make(chan os.Signal), func() {}
}
