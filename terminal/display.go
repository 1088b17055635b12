// Package terminal provides the output sinks of the mighf machine: a
// Display for the TDRAW_CLEAR and TDRAW_PIXEL instructions, and a Printer
// for PRINT. ANSI draws with escape sequences on a real terminal, Screen
// keeps an in-memory character grid, and Console formats PRINT output.
package terminal

// Display defines the drawing primitives used by the machine.
// Both are fire-and-forget; there is no error channel.
type Display interface {
	// Clear clears the screen and homes the cursor.
	Clear()
	// Plot places a character at column x, row y (both from 0).
	Plot(x, y uint32, ch byte)
}

// Printer defines the register and memory print operation of PRINT.
type Printer interface {
	// PrintRegister prints register index and its value.
	PrintRegister(index uint32, value uint32)
	// PrintMemory prints memory address and its value.
	PrintMemory(address uint32, value uint8)
}
