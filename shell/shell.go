// Package shell implements the interactive command surface of mighf.
//
// Commands are matched by prefix, so "regsX" runs regs:
//
//	help          show the commands
//	load <file>   load a program
//	run           run the program from instruction 0
//	regs          show the registers
//	mem <addr>    show one memory byte
//	list          disassemble the loaded program
//	step          execute one instruction
//	reset         clear registers, memory and flags
//	dump          pretty-print the machine state
//	exit          leave the shell
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"

	"github.com/k0kubun/pp/v3"

	"github.com/ezrec/mighf/config"
	"github.com/ezrec/mighf/cpu"
	"github.com/ezrec/mighf/emulator"
	"github.com/ezrec/mighf/translate"
)

var f = translate.From

// LINE_LIMIT is the longest command line read in one piece.
const LINE_LIMIT = 127

// Command is one shell command.
type Command struct {
	Name  string // Prefix that selects the command.
	Usage string // Usage text for help.
	Help  string // Description for help.

	run func(sh *Shell, line string)
}

// Shell dispatches command lines to an emulator.
type Shell struct {
	Emulator *emulator.Emulator // Machine the commands act on.
	Output   io.Writer          // Command output.
	Prompt   string             // Prompt printed before each line.
	Context  context.Context    // Parent context of every run; nil is Background.

	done bool
}

// New creates a shell for emu, writing to output.
func New(emu *emulator.Emulator, output io.Writer) (sh *Shell) {
	sh = &Shell{
		Emulator: emu,
		Output:   output,
		Prompt:   config.DEFAULT_PROMPT,
	}

	return
}

// commands in match order.
var commands []Command

func init() {
	commands = []Command{
		{"exit", "exit", "Exit shell", (*Shell).cmdExit},
		{"help", "help", "Show commands", (*Shell).cmdHelp},
		{"regs", "regs", "Show registers", (*Shell).cmdRegs},
		{"mem", "mem <addr>", "Show memory at addr", (*Shell).cmdMem},
		{"load", "load <file>", "Load program", (*Shell).cmdLoad},
		{"run", "run", "Run program", (*Shell).cmdRun},
		{"list", "list", "Disassemble program", (*Shell).cmdList},
		{"step", "step", "Execute one instruction", (*Shell).cmdStep},
		{"reset", "reset", "Clear registers and memory", (*Shell).cmdReset},
		{"dump", "dump", "Show machine state", (*Shell).cmdDump},
	}
}

// Commands returns the shell commands in match order.
func Commands() []Command {
	return commands
}

// Done returns true once exit has been run.
func (sh *Shell) Done() bool {
	return sh.done
}

func (sh *Shell) context() context.Context {
	if sh.Context == nil {
		return context.Background()
	}
	return sh.Context
}

// Banner prints the welcome text.
func (sh *Shell) Banner() {
	translate.Fprintln(sh.Output, "Welcome to mighf-embedded micro-arch shell!")
	translate.Fprintln(sh.Output, "Host platform: %v (%v)", hostName(runtime.GOOS), runtime.GOARCH)
	translate.Fprintln(sh.Output, "Type 'help' for commands.")
}

// hostName returns the display name of a GOOS value.
func hostName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "windows":
		return "Windows"
	case "darwin":
		return "macOS"
	}
	return goos
}

// Execute runs a single command line.
// It returns true once the shell should exit.
func (sh *Shell) Execute(line string) (exit bool) {
	line = strings.TrimRight(line, "\r\n")

	for _, cmd := range commands {
		if strings.HasPrefix(line, cmd.Name) {
			cmd.run(sh, line)
			return sh.done
		}
	}

	translate.Fprintln(sh.Output, "Unknown command. Type 'help'.")
	return sh.done
}

// Run reads command lines from input until exit or end of input,
// printing the prompt before each line.
func (sh *Shell) Run(input io.Reader) (err error) {
	reader := bufio.NewReader(input)

	for !sh.done {
		fmt.Fprint(sh.Output, sh.Prompt)

		var line string
		line, err = readLine(reader)
		if len(line) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			return
		}

		sh.Execute(line)
	}

	return nil
}

// readLine reads up to LINE_LIMIT bytes, stopping after a newline.
func readLine(reader *bufio.Reader) (line string, err error) {
	var buf strings.Builder
	for buf.Len() < LINE_LIMIT {
		var ch byte
		ch, err = reader.ReadByte()
		if err != nil {
			break
		}
		buf.WriteByte(ch)
		if ch == '\n' {
			break
		}
	}
	line = buf.String()
	return
}

// argument returns the text of line after the command name and one
// separator byte.
func argument(line string, name string) string {
	if len(line) <= len(name)+1 {
		return ""
	}
	return line[len(name)+1:]
}

func (sh *Shell) cmdExit(line string) {
	sh.done = true
}

func (sh *Shell) cmdHelp(line string) {
	translate.Fprintln(sh.Output, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(sh.Output, "  %-13s - %s\n", cmd.Usage, f(cmd.Help))
	}
}

func (sh *Shell) cmdRegs(line string) {
	for n, value := range sh.Emulator.Machine.Register {
		fmt.Fprintf(sh.Output, "R%d: %d\n", n, value)
	}
}

func (sh *Shell) cmdMem(line string) {
	addr := atoi(argument(line, "mem"))
	if addr >= 0 && addr < cpu.MEM_SIZE {
		fmt.Fprintf(sh.Output, "MEM[%d]: %d\n", addr, sh.Emulator.Machine.Memory[addr])
	} else {
		translate.Fprintln(sh.Output, "Invalid address")
	}
}

func (sh *Shell) cmdLoad(line string) {
	words := strings.Fields(line[len("load"):])
	if len(words) == 0 {
		translate.Fprintln(sh.Output, "Usage: load <file>")
		return
	}

	path := words[0]
	if len(path) > 63 {
		path = path[:63]
	}

	count, err := sh.Emulator.LoadFile(path)
	if err != nil && count == 0 {
		translate.Fprintln(sh.Output, "Cannot open file")
		return
	}
	if err != nil {
		translate.Fprintln(sh.Output, "Error: %v", err)
	}
	translate.Fprintln(sh.Output, "Loaded %v instructions", strconv.Itoa(count))
}

func (sh *Shell) cmdRun(line string) {
	// An interrupt stops this run only.
	ctx, stop := signal.NotifyContext(sh.context(), os.Interrupt)
	defer stop()

	err := sh.Emulator.Run(ctx)
	if err != nil {
		translate.Fprintln(sh.Output, "Error: %v", err)
	}
	translate.Fprintln(sh.Output, "Program finished.")
}

func (sh *Shell) cmdList(line string) {
	prog := &sh.Emulator.Machine.Program
	for pc, inst := range prog.Codes() {
		fmt.Fprintf(sh.Output, "%04d: %016x  %v\n", pc, inst.Word(), inst)
	}
}

func (sh *Shell) cmdStep(line string) {
	emu := sh.Emulator
	if emu.Machine.Halted() {
		emu.Machine.Restart()
	}

	inst := emu.Machine.Program.Fetch(emu.Machine.PC)
	fmt.Fprintf(sh.Output, "%04d: %v\n", emu.Machine.PC, inst)

	done, err := emu.Tick()
	if err != nil {
		translate.Fprintln(sh.Output, "Error: %v", err)
	}
	if done {
		translate.Fprintln(sh.Output, "Machine halted.")
	}
}

func (sh *Shell) cmdReset(line string) {
	sh.Emulator.Machine.Reset()
	translate.Fprintln(sh.Output, "Machine reset.")
}

// state is the view of the machine printed by dump.
type state struct {
	PC       uint32
	Running  bool
	Zero     bool
	Ticks    int
	Loaded   int
	Register [cpu.REG_COUNT]uint32
	Memory   map[int]uint8
}

func (sh *Shell) cmdDump(line string) {
	m := sh.Emulator.Machine

	view := state{
		PC:       m.PC,
		Running:  m.Running,
		Zero:     m.Zero,
		Ticks:    m.Ticks,
		Loaded:   m.Program.Count,
		Register: m.Register,
		Memory:   map[int]uint8{},
	}
	for addr, value := range m.Memory {
		if value != 0 {
			view.Memory[addr] = value
		}
	}

	printer := pp.New()
	printer.SetColoringEnabled(false)
	printer.SetOutput(sh.Output)
	printer.Println(view)
}

// atoi converts the leading decimal digits of word, as the command
// arguments are read. A word without digits is 0.
func atoi(word string) int {
	word = strings.TrimLeft(word, " \t\n\v\f\r")

	negative := false
	if len(word) > 0 && (word[0] == '-' || word[0] == '+') {
		negative = word[0] == '-'
		word = word[1:]
	}

	value := 0
	for n := 0; n < len(word) && word[n] >= '0' && word[n] <= '9'; n++ {
		value = value*10 + int(word[n]-'0')
		if value > cpu.MEM_SIZE*10 {
			// Already out of range; stop before overflow.
			break
		}
	}

	if negative {
		value = -value
	}

	return value
}
