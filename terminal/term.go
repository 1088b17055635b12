package terminal

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal returns true if file is attached to a terminal.
func IsTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// Size returns the columns and rows of the terminal on file, or the
// Screen defaults if file is not a terminal.
func Size(file *os.File) (width, height int) {
	width, height = SCREEN_WIDTH, SCREEN_HEIGHT
	if !IsTerminal(file) {
		return
	}
	w, h, err := term.GetSize(int(file.Fd()))
	if err != nil {
		return
	}
	width, height = w, h
	return
}
