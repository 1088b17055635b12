package emulator

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/mighf/cpu"
)

func writeProgram(t *testing.T, lines ...string) (path string) {
	path = filepath.Join(t.TempDir(), "prog.asm")
	err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
	assert.NoError(t, err)
	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(&bytes.Buffer{})

	assert.False(emu.Verbose)
	assert.True(emu.Machine.Running)
	assert.NotNil(emu.Machine.Display)
	assert.NotNil(emu.Machine.Printer)

	defines := maps.Collect(emu.Defines())
	assert.Equal("80", defines["SCREEN_WIDTH"])
	assert.Equal("1024", defines["MEM_SIZE"])

	emu.SetVerbose(true)
	assert.True(emu.Machine.Verbose)
	assert.True(emu.Assembler.Verbose)
}

func TestEmulator_Load(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(&bytes.Buffer{})

	count, err := emu.Load(strings.NewReader("MOV R0 $(SCREEN_WIDTH - 1)\nnonsense\nHALT\n"))
	assert.NoError(err)
	assert.Equal(2, count)
	assert.Equal(cpu.MakeRegImm(cpu.OP_MOV, 0, 79), emu.Machine.Program.Code[0])
	assert.Len(emu.Assembler.Rejected, 1)
}

func TestEmulator_LoadFile_Missing(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(&bytes.Buffer{})

	path := filepath.Join(t.TempDir(), "missing.asm")
	count, err := emu.LoadFile(path)
	assert.Equal(0, count)
	assert.ErrorIs(err, os.ErrNotExist)

	var lerr *ErrLoad
	assert.True(errors.As(err, &lerr))
	assert.Equal(path, lerr.Path)
}

func TestEmulator_RunFile(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	emu := NewEmulator(out)

	path := writeProgram(t, "MOV R0 42", "PRINT REG 0", "HALT")
	err := emu.RunFile(context.Background(), path)
	assert.NoError(err)
	assert.Equal("Loaded 3 instructions from "+path+"\nR0 = 42\nProgram finished.\n", out.String())
}

func TestEmulator_RunFile_Missing(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	emu := NewEmulator(out)

	path := filepath.Join(t.TempDir(), "missing.asm")
	err := emu.RunFile(context.Background(), path)
	assert.Error(err)
	assert.Equal("Cannot open file: "+path+"\n", out.String())
	assert.Equal(0, emu.Machine.Ticks)
}

func TestEmulator_Run_Strict(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(&bytes.Buffer{})
	emu.Machine.Strict = true

	_, err := emu.Load(strings.NewReader("NOP\nSTORE R0 2000\n"))
	assert.NoError(err)

	err = emu.Run(context.Background())
	assert.ErrorIs(err, cpu.ErrAddressRange)

	var rerr *ErrRuntime
	assert.True(errors.As(err, &rerr))
	assert.Equal(uint32(1), rerr.PC)

	// Stepping reports the same instruction.
	emu.Machine.Restart()
	_, err = emu.Tick()
	assert.NoError(err)
	_, err = emu.Tick()
	assert.True(errors.As(err, &rerr))
	assert.Equal(uint32(1), rerr.PC)

	// A run stopped between instructions reports the next one.
	emu.Machine.Strict = false
	emu.Machine.MaxSteps = 3
	err = emu.Run(context.Background())
	assert.ErrorIs(err, cpu.ErrStepLimit)
	assert.True(errors.As(err, &rerr))
	assert.Equal(uint32(3), rerr.PC)
}

func TestEmulator_RunFile_Full(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	emu := NewEmulator(out)

	lines := make([]string, cpu.PROGRAM_SIZE)
	for n := range lines {
		lines[n] = "NOP"
	}
	path := writeProgram(t, lines...)

	err := emu.RunFile(context.Background(), path)
	assert.NoError(err)
	assert.Equal("Loaded 1024 instructions from "+path+"\nProgram finished.\n", out.String())

	rerr := &ErrRuntime{PC: 1023, Err: cpu.ErrStepLimit}
	assert.True(strings.HasPrefix(rerr.Error(), "pc 1023 "))
}

func TestEmulator_Tick(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(&bytes.Buffer{})
	emu.Machine.Strict = true

	_, err := emu.Load(strings.NewReader("MOV R8 1\nHALT\n"))
	assert.NoError(err)

	done, err := emu.Tick()
	assert.False(done)
	var rerr *ErrRuntime
	assert.True(errors.As(err, &rerr))
	assert.Equal(uint32(0), rerr.PC)

	done, err = emu.Tick()
	assert.True(done)
	assert.NoError(err)
}
