package terminal

import (
	"fmt"
	"io"
)

// ANSI draws on a terminal using ANSI escape sequences.
type ANSI struct {
	Output io.Writer
}

var _ Display = (*ANSI)(nil)

// Clear clears the screen and moves the cursor home.
func (ac *ANSI) Clear() {
	fmt.Fprint(ac.Output, "\033[2J\033[H")
	ac.flush()
}

// Plot moves the cursor to row y+1, column x+1 and writes ch.
func (ac *ANSI) Plot(x, y uint32, ch byte) {
	fmt.Fprintf(ac.Output, "\033[%d;%dH%c", uint64(y)+1, uint64(x)+1, ch)
	ac.flush()
}

// flush pushes out buffered output, if the writer buffers.
func (ac *ANSI) flush() {
	type flusher interface {
		Flush() error
	}
	if fl, ok := ac.Output.(flusher); ok {
		fl.Flush()
	}
}
