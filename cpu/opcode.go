package cpu

import (
	"fmt"
)

// Opcode is the operation selector of an Instruction.
type Opcode uint8

const (
	OP_NOP         = Opcode(0)  // NOP
	OP_MOV         = Opcode(1)  // MOV
	OP_ADD         = Opcode(2)  // ADD
	OP_SUB         = Opcode(3)  // SUB
	OP_LOAD        = Opcode(4)  // LOAD
	OP_STORE       = Opcode(5)  // STORE
	OP_JMP         = Opcode(6)  // JMP
	OP_CMP         = Opcode(7)  // CMP
	OP_JE          = Opcode(8)  // JE
	OP_HALT        = Opcode(9)  // HALT
	OP_AND         = Opcode(10) // AND
	OP_ORR         = Opcode(11) // ORR
	OP_EOR         = Opcode(12) // EOR
	OP_LSL         = Opcode(13) // LSL
	OP_LSR         = Opcode(14) // LSR
	OP_MUL         = Opcode(15) // MUL
	OP_UDIV        = Opcode(16) // UDIV
	OP_NEG         = Opcode(17) // NEG
	OP_MOVZ        = Opcode(18) // MOVZ
	OP_MOVN        = Opcode(19) // MOVN
	OP_PRINT       = Opcode(20) // PRINT
	OP_TDRAW_CLEAR = Opcode(21) // TDRAW_CLEAR
	OP_TDRAW_PIXEL = Opcode(22) // TDRAW_PIXEL
)

// Form is the operand layout of an opcode, both in text and in an Instruction.
type Form int

const (
	FORM_NONE    = Form(0) // no operands
	FORM_REG_IMM = Form(1) // Rd imm
	FORM_REG_REG = Form(2) // Rd Rs
	FORM_IMM     = Form(3) // imm
	FORM_REG     = Form(4) // Rd
	FORM_PRINT   = Form(5) // REG|MEM idx
	FORM_PIXEL   = Form(6) // Rx Ry c
)

// Fields returns the number of text fields, mnemonic included, the form needs.
// FORM_NONE returns 0, as those mnemonics ignore whatever follows them.
func (form Form) Fields() int {
	switch form {
	case FORM_REG_IMM, FORM_REG_REG, FORM_PRINT:
		return 3
	case FORM_IMM, FORM_REG:
		return 2
	case FORM_PIXEL:
		return 4
	}
	return 0
}

type opcodeInfo struct {
	name string
	form Form
}

var opcodeTable = [...]opcodeInfo{
	OP_NOP:         {"NOP", FORM_NONE},
	OP_MOV:         {"MOV", FORM_REG_IMM},
	OP_ADD:         {"ADD", FORM_REG_REG},
	OP_SUB:         {"SUB", FORM_REG_REG},
	OP_LOAD:        {"LOAD", FORM_REG_IMM},
	OP_STORE:       {"STORE", FORM_REG_IMM},
	OP_JMP:         {"JMP", FORM_IMM},
	OP_CMP:         {"CMP", FORM_REG_REG},
	OP_JE:          {"JE", FORM_IMM},
	OP_HALT:        {"HALT", FORM_NONE},
	OP_AND:         {"AND", FORM_REG_REG},
	OP_ORR:         {"ORR", FORM_REG_REG},
	OP_EOR:         {"EOR", FORM_REG_REG},
	OP_LSL:         {"LSL", FORM_REG_IMM},
	OP_LSR:         {"LSR", FORM_REG_IMM},
	OP_MUL:         {"MUL", FORM_REG_REG},
	OP_UDIV:        {"UDIV", FORM_REG_REG},
	OP_NEG:         {"NEG", FORM_REG},
	OP_MOVZ:        {"MOVZ", FORM_REG_IMM},
	OP_MOVN:        {"MOVN", FORM_REG_IMM},
	OP_PRINT:       {"PRINT", FORM_PRINT},
	OP_TDRAW_CLEAR: {"TDRAW_CLEAR", FORM_NONE},
	OP_TDRAW_PIXEL: {"TDRAW_PIXEL", FORM_PIXEL},
}

// mnemonicMap maps the case-sensitive mnemonic to its opcode.
var mnemonicMap = func() map[string]Opcode {
	mnemonics := make(map[string]Opcode, len(opcodeTable))
	for n, info := range opcodeTable {
		mnemonics[info.name] = Opcode(n)
	}
	return mnemonics
}()

// Valid returns true if op is one of the known opcodes.
func (op Opcode) Valid() bool {
	return int(op) < len(opcodeTable)
}

// Form returns the operand layout of the opcode.
func (op Opcode) Form() Form {
	if !op.Valid() {
		return FORM_NONE
	}
	return opcodeTable[op].form
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Opcode(%d)", uint8(op))
	}
	return opcodeTable[op].name
}

// LookupOpcode returns the opcode for a mnemonic.
func LookupOpcode(mnemonic string) (op Opcode, ok bool) {
	op, ok = mnemonicMap[mnemonic]
	return
}

// PRINT modes, held in Op1.
const (
	PRINT_REG = uint8(0) // REG
	PRINT_MEM = uint8(1) // MEM
)

// Instruction is a single decoded instruction.
type Instruction struct {
	Opcode Opcode // Operation.
	Op1    uint8  // First register selector, or the PRINT mode.
	Op2    uint8  // Second register selector.
	Imm    uint32 // Literal, address, shift count or packed pixel.
}

// MakeOp creates an instruction without operands.
func MakeOp(op Opcode) Instruction {
	return Instruction{Opcode: op}
}

// MakeRegImm creates a register and immediate instruction, such as MOV.
func MakeRegImm(op Opcode, reg uint8, imm uint32) Instruction {
	return Instruction{Opcode: op, Op1: reg, Imm: imm}
}

// MakeRegReg creates a two register instruction, such as ADD.
func MakeRegReg(op Opcode, dst, src uint8) Instruction {
	return Instruction{Opcode: op, Op1: dst, Op2: src}
}

// MakeJump creates a JMP or JE to an absolute instruction index.
func MakeJump(op Opcode, target uint32) Instruction {
	return Instruction{Opcode: op, Imm: target}
}

// MakePrint creates a PRINT of a register (PRINT_REG) or memory cell (PRINT_MEM).
func MakePrint(mode uint8, index uint32) Instruction {
	return Instruction{Opcode: OP_PRINT, Op1: mode, Imm: index}
}

// MakePixel creates a TDRAW_PIXEL that draws ch at the column and row held
// in registers x and y.
func MakePixel(x, y uint8, ch byte) Instruction {
	return Instruction{Opcode: OP_TDRAW_PIXEL, Imm: PackPixel(x, y, ch)}
}

// PackPixel packs the TDRAW_PIXEL operands into an immediate.
//
// Bit layout:
//
//	 0..7   x register selector
//	 8..15  y register selector
//	16..23  character code
//	24..31  zero
//
// The selectors are full bytes so that a malformed register token survives
// assembly and is rejected by the range check at execution.
func PackPixel(x, y uint8, ch byte) uint32 {
	return uint32(x) | (uint32(y) << 8) | (uint32(ch) << 16)
}

// UnpackPixel splits a TDRAW_PIXEL immediate into its fields.
func UnpackPixel(imm uint32) (x, y uint8, ch byte) {
	x = uint8(imm & 0xff)
	y = uint8((imm >> 8) & 0xff)
	ch = byte((imm >> 16) & 0xff)
	return
}

// Word returns the 64-bit encoding of the instruction:
// opcode in bits 56..63, Op1 in 48..55, Op2 in 40..47, Imm in 0..31.
func (inst Instruction) Word() uint64 {
	return (uint64(inst.Opcode) << 56) |
		(uint64(inst.Op1) << 48) |
		(uint64(inst.Op2) << 40) |
		uint64(inst.Imm)
}

// DecodeWord decodes a 64-bit instruction word, rejecting unknown opcodes
// and non-zero reserved bits.
func DecodeWord(word uint64) (inst Instruction, err error) {
	op := Opcode(word >> 56)
	if !op.Valid() {
		err = ErrOpcodeDecode
		return
	}
	if (word>>32)&0xff != 0 {
		err = ErrOpcodeDecode
		return
	}

	inst = Instruction{
		Opcode: op,
		Op1:    uint8(word >> 48),
		Op2:    uint8(word >> 40),
		Imm:    uint32(word),
	}
	return
}

// regName returns the register token for a selector. Selectors past a
// single digit print as "R?", which assembles to an out of range selector.
func regName(sel uint8) string {
	if sel > 9 {
		return "R?"
	}
	return fmt.Sprintf("R%d", sel)
}

// String returns the assembly language text of the instruction.
//
// A TDRAW_PIXEL character that is blank or unprintable has no text form;
// it is printed as-is and will not reassemble to the same instruction.
func (inst Instruction) String() (out string) {
	op := inst.Opcode

	switch op.Form() {
	case FORM_NONE:
		out = op.String()
	case FORM_REG_IMM:
		out = fmt.Sprintf("%v %v %d", op, regName(inst.Op1), inst.Imm)
	case FORM_REG_REG:
		out = fmt.Sprintf("%v %v %v", op, regName(inst.Op1), regName(inst.Op2))
	case FORM_IMM:
		out = fmt.Sprintf("%v %d", op, inst.Imm)
	case FORM_REG:
		out = fmt.Sprintf("%v %v", op, regName(inst.Op1))
	case FORM_PRINT:
		switch inst.Op1 {
		case PRINT_REG:
			out = fmt.Sprintf("%v REG %d", op, inst.Imm)
		case PRINT_MEM:
			out = fmt.Sprintf("%v MEM %d", op, inst.Imm)
		default:
			out = fmt.Sprintf("%v %d %d", op, inst.Op1, inst.Imm)
		}
	case FORM_PIXEL:
		x, y, ch := UnpackPixel(inst.Imm)
		out = fmt.Sprintf("%v %v %v %c", op, regName(x), regName(y), ch)
	}

	return
}
