// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"maps"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const (
	FIELD_LIMIT  = 4  // Mnemonic plus up to three arguments.
	FIELD_LENGTH = 31 // Longest field; the rest of a longer field is dropped.
)

// Predefined system equates
var sysEquate = maps.Collect(NewMachine().Defines())

// Assembler turns single lines of text into instructions.
//
// Lines may contain $(expr) compile-time expressions, evaluated as
// starlark over the system equates (MEM_SIZE, REG_COUNT, PROGRAM_SIZE) and
// any predefines, and replaced by their decimal value before the line is
// split into fields.
type Assembler struct {
	Verbose bool         // If set, logs every rejected line.
	Logger  hclog.Logger // Logger, nil to discard.

	Rejected []ErrSyntax // Lines dropped by the last Program.Load.

	predefine map[string]string // Predefines
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// reject records a dropped line.
func (asm *Assembler) reject(err ErrSyntax) {
	asm.Rejected = append(asm.Rejected, err)
	if asm.Verbose && asm.Logger != nil {
		asm.Logger.Debug("line dropped", "line", err.LineNo, "text", err.Line, "reason", err.Err)
	}
}

// Assemble assembles one line with the default assembler.
// ok is false for blank, unknown or malformed lines.
func Assemble(line string) (inst Instruction, ok bool) {
	asm := &Assembler{}
	inst, err := asm.Line(line)
	ok = err == nil
	return
}

// atoi converts the leading decimal digits of word, ignoring anything
// after them. A word without digits is 0. Negative values wrap.
func atoi(word string) uint32 {
	word = strings.TrimLeft(word, " \t\n\v\f\r")

	negative := false
	if len(word) > 0 && (word[0] == '-' || word[0] == '+') {
		negative = word[0] == '-'
		word = word[1:]
	}

	var value int64
	for n := 0; n < len(word) && word[n] >= '0' && word[n] <= '9'; n++ {
		digit := int64(word[n] - '0')
		if value > (math.MaxInt64-digit)/10 {
			value = math.MaxInt64
			break
		}
		value = value*10 + digit
	}

	if negative {
		value = -value
	}

	return uint32(value)
}

// regIndex returns the register selector of an R<digit> word.
// Only the second byte is read; anything else is caught at execution.
func regIndex(word string) uint8 {
	var digit byte
	if len(word) > 1 {
		digit = word[1]
	}
	return digit - '0'
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	equates := maps.Clone(sysEquate)
	maps.Copy(equates, asm.predefine)
	for key, str := range equates {
		v64, perr := strconv.ParseInt(str, 0, 64)
		if perr != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

var parenRegexp = regexp.MustCompile(`\$\([^\$]*\)`)

// expand replaces every $(...) in line with its decimal value.
func (asm *Assembler) expand(line string) (out string, err error) {
	out = parenRegexp.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
			return str
		}
		return fmt.Sprintf("%d", value)
	})
	return
}

// fields splits a line into at most FIELD_LIMIT fields of at most
// FIELD_LENGTH bytes.
func fields(line string) (words []string) {
	words = strings.Fields(line)
	if len(words) > FIELD_LIMIT {
		words = words[:FIELD_LIMIT]
	}
	for n, word := range words {
		if len(word) > FIELD_LENGTH {
			words[n] = word[:FIELD_LENGTH]
		}
	}
	return
}

// Line assembles a single line of text.
//
// The mnemonic is matched exactly, and must have exactly the argument
// count of its form; NOP, HALT and TDRAW_CLEAR ignore any arguments.
func (asm *Assembler) Line(line string) (inst Instruction, err error) {
	line, err = asm.expand(line)
	if err != nil {
		return
	}

	words := fields(line)
	if len(words) == 0 {
		err = ErrLineEmpty
		return
	}

	op, ok := LookupOpcode(words[0])
	if !ok {
		err = ErrOpcodeUnknown
		return
	}

	form := op.Form()
	if form != FORM_NONE && len(words) != form.Fields() {
		err = ErrArgumentCount
		return
	}

	switch form {
	case FORM_NONE:
		inst = MakeOp(op)
	case FORM_REG_IMM:
		inst = MakeRegImm(op, regIndex(words[1]), atoi(words[2]))
	case FORM_REG_REG:
		inst = MakeRegReg(op, regIndex(words[1]), regIndex(words[2]))
	case FORM_IMM:
		inst = MakeJump(op, atoi(words[1]))
	case FORM_REG:
		inst = Instruction{Opcode: op, Op1: regIndex(words[1])}
	case FORM_PRINT:
		switch words[1] {
		case "REG":
			inst = MakePrint(PRINT_REG, atoi(words[2]))
		case "MEM":
			inst = MakePrint(PRINT_MEM, atoi(words[2]))
		default:
			err = ErrPrintModeSyntax
			return
		}
	case FORM_PIXEL:
		inst = MakePixel(regIndex(words[1]), regIndex(words[2]), words[3][0])
	}

	return
}
