package cpu

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strings"
)

// LINE_LIMIT is the longest line the loader reads in one piece; longer
// lines are split and each piece is assembled on its own.
const LINE_LIMIT = 127

// Program is the fixed capacity instruction store.
type Program struct {
	Code  [PROGRAM_SIZE]Instruction // Instruction slots; unused slots are NOP.
	Count int                       // Number of loaded instructions.
}

// Fetch returns the instruction at pc, or a NOP when pc is past the store.
func (prog *Program) Fetch(pc uint32) (inst Instruction) {
	if pc >= PROGRAM_SIZE {
		return
	}
	return prog.Code[pc]
}

// Reset empties the store.
func (prog *Program) Reset() {
	clear(prog.Code[:])
	prog.Count = 0
}

// Append stores an instruction in the next free slot.
// Returns false if the store is full.
func (prog *Program) Append(inst Instruction) (ok bool) {
	if prog.Count >= PROGRAM_SIZE {
		return
	}

	prog.Code[prog.Count] = inst
	prog.Count++
	return true
}

// Codes iterates over the loaded instructions.
func (prog *Program) Codes() iter.Seq2[uint32, Instruction] {
	return func(yield func(pc uint32, inst Instruction) bool) {
		for n := range prog.Count {
			if !yield(uint32(n), prog.Code[n]) {
				return
			}
		}
	}
}

// Binary returns the 64-bit encoding of the loaded instructions.
func (prog *Program) Binary() (bins []uint64) {
	for _, inst := range prog.Codes() {
		bins = append(bins, inst.Word())
	}

	return
}

// readLines yields the input as lines of at most LINE_LIMIT bytes.
func readLines(input io.Reader) iter.Seq2[string, error] {
	return func(yield func(line string, err error) bool) {
		reader := bufio.NewReader(input)
		for {
			text, err := reader.ReadString('\n')
			if len(text) == 0 && err != nil {
				if !errors.Is(err, io.EOF) {
					yield("", err)
				}
				return
			}
			text = strings.TrimSuffix(text, "\n")
			for len(text) > LINE_LIMIT {
				if !yield(text[:LINE_LIMIT], nil) {
					return
				}
				text = text[LINE_LIMIT:]
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

// Load replaces the program with the lines read from input.
//
// Each line is assembled by asm (or by a default Assembler if nil); lines
// that do not assemble are dropped. Loading stops once the store is full.
// The returned count is the number of instructions stored, which is valid
// even when a read error is returned.
func (prog *Program) Load(input io.Reader, asm *Assembler) (count int, err error) {
	if asm == nil {
		asm = &Assembler{}
	}

	prog.Reset()
	asm.Rejected = asm.Rejected[:0]

	lineno := 0
	for line, rerr := range readLines(input) {
		if rerr != nil {
			err = rerr
			break
		}
		if prog.Count >= PROGRAM_SIZE {
			break
		}
		lineno++

		inst, aerr := asm.Line(line)
		if aerr != nil {
			asm.reject(ErrSyntax{LineNo: lineno, Line: line, Err: aerr})
			continue
		}
		prog.Append(inst)
	}

	count = prog.Count
	return
}
