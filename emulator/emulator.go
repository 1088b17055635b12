// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"
	"os"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/ezrec/mighf/cpu"
	"github.com/ezrec/mighf/internal"
	"github.com/ezrec/mighf/terminal"
	"github.com/ezrec/mighf/translate"
)

var _emulator_defines = map[string]string{
	"SCREEN_WIDTH":  fmt.Sprintf("%v", terminal.SCREEN_WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%v", terminal.SCREEN_HEIGHT),
}

// Emulator state. Machine + assembler + output sinks.
type Emulator struct {
	Verbose      bool          // If set, enables verbose logging.
	*cpu.Machine               // Reference to the machine simulation.
	Assembler    cpu.Assembler // Assembler used by Load.

	Output io.Writer    // Destination of user messages.
	Logger hclog.Logger // Logger shared with the machine and assembler.
}

// NewEmulator creates a new emulator that prints and draws to output.
func NewEmulator(output io.Writer) (emu *Emulator) {
	emu = &Emulator{
		Machine: cpu.NewMachine(),
		Output:  output,
		Logger:  hclog.NewNullLogger(),
	}

	emu.Machine.Display = &terminal.ANSI{Output: output}
	emu.Machine.Printer = &terminal.Console{Output: output}

	for equ, value := range emu.Defines() {
		emu.Assembler.Predefine(equ, value)
	}

	emu.SetLogger(emu.Logger)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Machine.Defines(),
	)
}

// SetLogger sets the logger of the emulator, machine and assembler.
func (emu *Emulator) SetLogger(logger hclog.Logger) {
	emu.Logger = logger
	emu.Machine.Logger = logger.Named("machine")
	emu.Assembler.Logger = logger.Named("asm")
}

// SetVerbose sets verbose logging of the emulator, machine and assembler.
func (emu *Emulator) SetVerbose(verbose bool) {
	emu.Verbose = verbose
	emu.Machine.Verbose = verbose
	emu.Assembler.Verbose = verbose
}

// Load replaces the program with the text read from input.
func (emu *Emulator) Load(input io.Reader) (count int, err error) {
	count, err = emu.Machine.Program.Load(input, &emu.Assembler)

	if emu.Verbose {
		emu.Logger.Info("loaded", "count", count, "dropped", len(emu.Assembler.Rejected))
	}

	return
}

// LoadFile replaces the program with the text of the file at path.
func (emu *Emulator) LoadFile(path string) (count int, err error) {
	inf, err := os.Open(path)
	if err != nil {
		err = &ErrLoad{Path: path, Err: err}
		return
	}
	defer inf.Close()

	count, err = emu.Load(inf)
	if err != nil {
		err = &ErrLoad{Path: path, Err: err}
	}

	return
}

// Tick performs a single step of the machine.
func (emu *Emulator) Tick() (done bool, err error) {
	pc := emu.Machine.PC

	done, err = emu.Machine.Step()
	if err != nil {
		err = &ErrRuntime{PC: pc, Err: err}
	}

	return
}

// Run runs the loaded program from instruction 0 until it halts.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	err = emu.Machine.Run(ctx)
	if err != nil {
		pc := emu.Machine.PC
		if errors.Is(err, cpu.ErrOpcode{}) {
			// Failed instruction, not the one after it.
			pc = emu.Machine.LastPC
		}
		err = &ErrRuntime{PC: pc, Err: err}
	}

	if emu.Verbose {
		emu.Logger.Info("finished", "ticks", emu.Machine.Ticks, "pc", emu.Machine.PC)
	}

	return
}

// RunFile loads the file at path and runs it once, reporting progress on
// Output. A file that cannot be opened is reported and not run.
func (emu *Emulator) RunFile(ctx context.Context, path string) (err error) {
	count, err := emu.LoadFile(path)
	if err != nil {
		translate.Fprintln(emu.Output, "Cannot open file: %v", path)
		return
	}
	translate.Fprintln(emu.Output, "Loaded %v instructions from %v", strconv.Itoa(count), path)

	err = emu.Run(ctx)
	translate.Fprintln(emu.Output, "Program finished.")

	return
}
