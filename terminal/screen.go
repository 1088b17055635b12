package terminal

import (
	"strings"
)

const (
	SCREEN_WIDTH  = 80 // Default Screen columns.
	SCREEN_HEIGHT = 25 // Default Screen rows.
)

// Screen is an in-memory character grid Display.
// Plots outside the grid are dropped.
type Screen struct {
	Width  int
	Height int

	cells []byte
	dirty bool
}

var _ Display = (*Screen)(nil)

// NewScreen creates a blank screen; a zero size selects the default.
func NewScreen(width, height int) (sc *Screen) {
	if width <= 0 {
		width = SCREEN_WIDTH
	}
	if height <= 0 {
		height = SCREEN_HEIGHT
	}

	sc = &Screen{Width: width, Height: height}
	sc.Clear()

	return
}

// Clear blanks the grid.
func (sc *Screen) Clear() {
	size := sc.Width * sc.Height
	if len(sc.cells) != size {
		sc.cells = make([]byte, size)
	}
	for n := range sc.cells {
		sc.cells[n] = ' '
	}
	sc.dirty = false
}

// Plot sets the cell at column x, row y.
func (sc *Screen) Plot(x, y uint32, ch byte) {
	if uint64(x) >= uint64(sc.Width) || uint64(y) >= uint64(sc.Height) {
		return
	}
	sc.cells[int(y)*sc.Width+int(x)] = ch
	sc.dirty = true
}

// At returns the character at column x, row y, or 0 outside the grid.
func (sc *Screen) At(x, y int) byte {
	if x < 0 || y < 0 || x >= sc.Width || y >= sc.Height {
		return 0
	}
	return sc.cells[y*sc.Width+x]
}

// Dirty returns true if anything was plotted since the last Clear.
func (sc *Screen) Dirty() bool {
	return sc.dirty
}

// String renders the grid, one line per row, without trailing blanks or
// trailing empty rows.
func (sc *Screen) String() string {
	var rows []string
	for y := range sc.Height {
		row := string(sc.cells[y*sc.Width : (y+1)*sc.Width])
		rows = append(rows, strings.TrimRight(row, " "))
	}
	for len(rows) > 0 && rows[len(rows)-1] == "" {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return ""
	}
	return strings.Join(rows, "\n") + "\n"
}
