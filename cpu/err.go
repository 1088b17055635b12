package cpu

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ezrec/mighf/translate"
)

var f = translate.From

var (
	// Execution errors, reported only by a Strict machine.
	ErrRegisterRange = errors.New(f("register out of range"))
	ErrAddressRange  = errors.New(f("address out of range"))
	ErrDivideByZero  = errors.New(f("divide by zero"))
	ErrPrintMode     = errors.New(f("print mode invalid"))
	ErrOpcodeInvalid = errors.New(f("opcode invalid"))
	ErrStepLimit     = errors.New(f("step limit reached"))

	// Instruction decode errors
	ErrOpcodeDecode = errors.New(f("decode"))

	// Assembler errors
	ErrLineEmpty       = errors.New(f("line empty"))
	ErrOpcodeUnknown   = errors.New(f("opcode unknown"))
	ErrArgumentCount   = errors.New(f("wrong argument count"))
	ErrPrintModeSyntax = errors.New(f("print mode must be REG or MEM"))
)

// ErrOpcode identifies the instruction that was skipped.
type ErrOpcode Instruction

func (eo ErrOpcode) Error() string {
	inst := Instruction(eo)
	return f("bad instruction %v %v", fmt.Sprintf("0x%016x", inst.Word()), inst.String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %v '%v' %v", strconv.Itoa(err.LineNo), err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
