//go:build !windows

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// terminalSize returns the column count of f and whether f is a terminal.
func terminalSize(f *os.File) (int, bool) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err == nil && ws != nil && ws.Col > 0 {
		return int(ws.Col), true
	}
	return envColumns(), false
}
