//go:build windows

package main

import "os"

// terminalSize only knows $COLUMNS on windows and never reports a terminal.
func terminalSize(*os.File) (int, bool) {
	return envColumns(), false
}
