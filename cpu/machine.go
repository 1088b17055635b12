package cpu

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"

	"github.com/hashicorp/go-hclog"

	"github.com/ezrec/mighf/terminal"
)

const (
	REG_COUNT    = 8        // Number of general purpose registers.
	MEM_SIZE     = 1024     // Bytes of data memory.
	PROGRAM_SIZE = MEM_SIZE // Slots in the instruction store.
)

var _machine_defines = map[string]string{
	"REG_COUNT":    fmt.Sprintf("%d", REG_COUNT),
	"MEM_SIZE":     fmt.Sprintf("%d", MEM_SIZE),
	"PROGRAM_SIZE": fmt.Sprintf("%d", PROGRAM_SIZE),
}

// Display is the drawing sink used by TDRAW_CLEAR and TDRAW_PIXEL.
type Display terminal.Display

// Printer is the sink used by PRINT.
type Printer terminal.Printer

// Machine is the complete state of one virtual CPU.
type Machine struct {
	Verbose  bool         // Set to enable per-instruction trace logging.
	Strict   bool         // Set to report skipped instructions as errors.
	MaxSteps int          // Maximum steps for Run; 0 is unlimited.
	Logger   hclog.Logger // Logger, nil to discard.

	Register [REG_COUNT]uint32 // Register bank.
	Memory   [MEM_SIZE]uint8   // Data memory.
	PC       uint32            // Index of the next instruction to fetch.
	LastPC   uint32            // Index of the most recently executed instruction.
	Running  bool              // Cleared by HALT or running off the store.
	Zero     bool              // Set by CMP, tested by JE.

	Program Program // Instruction store.

	Display Display // Drawing sink, nil to discard.
	Printer Printer // PRINT sink, nil to discard.

	Ticks int // Instructions executed since the last Reset.
}

// NewMachine creates a zeroed machine, ready to run.
func NewMachine() (m *Machine) {
	m = &Machine{
		Running: true,
	}

	return
}

// Defines for the machine.
func (m *Machine) Defines() iter.Seq2[string, string] {
	return maps.All(_machine_defines)
}

func (m *Machine) logger() hclog.Logger {
	if m.Logger == nil {
		return hclog.NewNullLogger()
	}
	return m.Logger
}

// Reset the machine state.
// - Clears the registers, memory and zero flag.
// - Sets the PC to 0 and marks the machine running.
// - Zeros the tick counter.
// The instruction store is left alone.
func (m *Machine) Reset() {
	if m.Verbose {
		m.logger().Debug("machine: reset")
	}

	clear(m.Register[:])
	clear(m.Memory[:])
	m.PC = 0
	m.LastPC = 0
	m.Running = true
	m.Zero = false
	m.Ticks = 0
}

// String returns the current machine state as a string.
func (m *Machine) String() (text string) {
	text += fmt.Sprintf("% 5s: %04d\n", "pc", m.PC)
	text += fmt.Sprintf("% 5s: %v\n", "run", m.Running)
	text += fmt.Sprintf("% 5s: %v\n", "zero", m.Zero)
	for n, val := range m.Register {
		text += fmt.Sprintf("% 5s: %04X_%04X\n", fmt.Sprintf("r%d", n), val>>16, val&0xffff)
	}

	return
}

// checkReg verifies that all register selectors are in range.
func checkReg(regs ...uint8) error {
	for _, reg := range regs {
		if int(reg) >= REG_COUNT {
			return ErrRegisterRange
		}
	}
	return nil
}

// checkAddr verifies a memory or instruction store address.
func checkAddr(addr uint32) error {
	if addr >= MEM_SIZE {
		return ErrAddressRange
	}
	return nil
}

// Execute executes a single decoded instruction at the current PC, then
// moves the PC to the following instruction or to a taken jump target.
//
// An instruction whose operands are out of range, or that divides by zero,
// changes nothing but the PC. A Strict machine returns the reason.
func (m *Machine) Execute(inst Instruction) (err error) {
	pc := m.PC
	next := pc + 1

	err = m.execute(inst, &next)
	m.PC = next

	if err != nil {
		if m.Verbose {
			m.logger().Debug("skipped", "pc", pc, "instruction", inst.String(), "reason", err)
		}
		if m.Strict {
			err = errors.Join(ErrOpcode(inst), err)
		} else {
			err = nil
		}
	}

	return
}

// execute performs the instruction; next holds the address of the
// following instruction and is replaced by a taken jump.
func (m *Machine) execute(inst Instruction, next *uint32) (err error) {
	r1, r2, imm := inst.Op1, inst.Op2, inst.Imm
	reg := &m.Register

	switch inst.Opcode {
	case OP_NOP:
		// pass
	case OP_MOV:
		if err = checkReg(r1); err != nil {
			return
		}
		reg[r1] = imm
	case OP_ADD, OP_SUB, OP_AND, OP_ORR, OP_EOR, OP_MUL, OP_UDIV:
		if err = checkReg(r1, r2); err != nil {
			return
		}
		reg[r1], err = doAlu(inst.Opcode, reg[r1], reg[r2])
	case OP_LSL, OP_LSR:
		if err = checkReg(r1); err != nil {
			return
		}
		reg[r1], err = doAlu(inst.Opcode, reg[r1], imm)
	case OP_LOAD:
		if err = checkReg(r1); err != nil {
			return
		}
		if err = checkAddr(imm); err != nil {
			return
		}
		reg[r1] = uint32(m.Memory[imm])
	case OP_STORE:
		if err = checkReg(r1); err != nil {
			return
		}
		if err = checkAddr(imm); err != nil {
			return
		}
		m.Memory[imm] = uint8(reg[r1] & 0xff)
	case OP_JMP:
		if imm >= PROGRAM_SIZE {
			err = ErrAddressRange
			return
		}
		*next = imm
	case OP_CMP:
		if err = checkReg(r1, r2); err != nil {
			return
		}
		m.Zero = reg[r1] == reg[r2]
	case OP_JE:
		if !m.Zero {
			return
		}
		if imm >= PROGRAM_SIZE {
			err = ErrAddressRange
			return
		}
		*next = imm
	case OP_HALT:
		m.Running = false
	case OP_NEG:
		if err = checkReg(r1); err != nil {
			return
		}
		reg[r1] = -reg[r1]
	case OP_MOVZ:
		if err = checkReg(r1); err != nil {
			return
		}
		reg[r1] = uint32(uint16(imm))
	case OP_MOVN:
		if err = checkReg(r1); err != nil {
			return
		}
		reg[r1] = ^imm
	case OP_PRINT:
		switch r1 {
		case PRINT_REG:
			if imm >= REG_COUNT {
				err = ErrRegisterRange
				return
			}
			if m.Printer != nil {
				m.Printer.PrintRegister(imm, reg[imm])
			}
		case PRINT_MEM:
			if err = checkAddr(imm); err != nil {
				return
			}
			if m.Printer != nil {
				m.Printer.PrintMemory(imm, m.Memory[imm])
			}
		default:
			err = ErrPrintMode
		}
	case OP_TDRAW_CLEAR:
		if m.Display != nil {
			m.Display.Clear()
		}
	case OP_TDRAW_PIXEL:
		x, y, ch := UnpackPixel(imm)
		if err = checkReg(x, y); err != nil {
			return
		}
		if m.Display != nil {
			m.Display.Plot(reg[x], reg[y], ch)
		}
	default:
		err = ErrOpcodeInvalid
	}

	return
}

// doAlu performs the requested ALU action, and returns the output value.
// On error the input is returned unchanged.
func doAlu(op Opcode, input uint32, value uint32) (output uint32, err error) {
	switch op {
	case OP_ADD:
		output = input + value
	case OP_SUB:
		output = input - value
	case OP_AND:
		output = input & value
	case OP_ORR:
		output = input | value
	case OP_EOR:
		output = input ^ value
	case OP_MUL:
		output = input * value
	case OP_UDIV:
		if value == 0 {
			output = input
			err = ErrDivideByZero
			return
		}
		output = input / value
	case OP_LSL:
		output = input << value
	case OP_LSR:
		output = input >> value
	default:
		output = input
		err = ErrOpcodeInvalid
	}

	return
}

// Restart moves the PC back to instruction 0 and marks the machine running.
func (m *Machine) Restart() {
	m.PC = 0
	m.Running = true
}

// Halted returns true once the machine can no longer fetch.
func (m *Machine) Halted() bool {
	return !m.Running || m.PC >= PROGRAM_SIZE
}

// Step fetches and executes one instruction.
// done is set once the machine has halted, either by HALT or by the PC
// leaving the instruction store.
func (m *Machine) Step() (done bool, err error) {
	if m.Halted() {
		m.Running = false
		done = true
		return
	}

	m.LastPC = m.PC
	inst := m.Program.Fetch(m.PC)
	if m.Verbose {
		m.logger().Trace("step", "pc", m.PC, "instruction", inst.String())
	}

	err = m.Execute(inst)
	m.Ticks++

	if m.Halted() {
		m.Running = false
		done = true
	}

	return
}

// Run restarts the loaded program from instruction 0 and steps until the
// machine halts. Registers and memory are not cleared.
//
// Run also stops when ctx is done, when MaxSteps instructions have run, or
// on the first error of a Strict machine.
func (m *Machine) Run(ctx context.Context) (err error) {
	m.Restart()

	for steps := 0; ; steps++ {
		if m.MaxSteps > 0 && steps >= m.MaxSteps {
			err = ErrStepLimit
			return
		}
		if err = ctx.Err(); err != nil {
			return
		}

		var done bool
		done, err = m.Step()
		if err != nil || done {
			return
		}
	}
}
