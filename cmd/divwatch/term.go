package main

import (
	"os"
	"strconv"
)

// envColumns reads $COLUMNS, the fallback when stdout is not a terminal.
func envColumns() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	return 0
}

// useColor resolves --color: "always", "never" or "auto" (color on a
// terminal unless NO_COLOR is set).
func useColor(mode string, tty bool) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return tty && os.Getenv("NO_COLOR") == ""
}
