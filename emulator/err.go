package emulator

import (
	"strconv"

	"github.com/ezrec/mighf/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	PC  uint32
	Err error
}

func (err *ErrRuntime) Error() string {
	return f("pc %v %v", strconv.FormatUint(uint64(err.PC), 10), err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrLoad indicates a program file that could not be read.
type ErrLoad struct {
	Path string
	Err  error
}

func (err *ErrLoad) Error() string {
	return f("%v: %v", err.Path, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}
