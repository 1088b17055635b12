package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/c-bata/go-prompt"
	"github.com/stretchr/testify/assert"

	"github.com/ezrec/mighf/emulator"
)

func newShell() (sh *Shell, out *bytes.Buffer) {
	out = &bytes.Buffer{}
	sh = New(emulator.NewEmulator(out), out)
	return
}

func writeProgram(t *testing.T, lines ...string) (path string) {
	path = filepath.Join(t.TempDir(), "prog.asm")
	err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
	assert.NoError(t, err)
	return
}

func TestShell_Regs(t *testing.T) {
	assert := assert.New(t)

	sh, out := newShell()
	sh.Emulator.Machine.Register[2] = 42

	assert.False(sh.Execute("regs"))
	assert.Equal("R0: 0\nR1: 0\nR2: 42\nR3: 0\nR4: 0\nR5: 0\nR6: 0\nR7: 0\n", out.String())

	// Commands match by prefix.
	out.Reset()
	sh.Execute("regsXYZ")
	assert.Contains(out.String(), "R2: 42\n")
}

func TestShell_Mem(t *testing.T) {
	assert := assert.New(t)

	sh, out := newShell()
	sh.Emulator.Machine.Memory[5] = 9

	sh.Execute("mem 5")
	assert.Equal("MEM[5]: 9\n", out.String())

	table := []string{"mem 2000", "mem 1024", "mem -1"}
	for _, line := range table {
		out.Reset()
		sh.Execute(line)
		assert.Equal("Invalid address\n", out.String(), line)
	}

	out.Reset()
	sh.Execute("mem")
	assert.Equal("MEM[0]: 0\n", out.String())
}

func TestShell_Unknown(t *testing.T) {
	assert := assert.New(t)

	sh, out := newShell()

	assert.False(sh.Execute("frobnicate"))
	assert.Equal("Unknown command. Type 'help'.\n", out.String())

	// Blank lines are unknown commands too.
	out.Reset()
	sh.Execute("")
	sh.Execute("   ")
	assert.Equal("Unknown command. Type 'help'.\nUnknown command. Type 'help'.\n", out.String())
}

func TestShell_Help(t *testing.T) {
	assert := assert.New(t)

	sh, out := newShell()
	sh.Execute("help")

	for _, cmd := range Commands() {
		assert.Contains(out.String(), cmd.Usage)
	}
}

func TestShell_Exit(t *testing.T) {
	assert := assert.New(t)

	sh, _ := newShell()
	assert.False(sh.Done())
	assert.True(sh.Execute("exit"))
	assert.True(sh.Done())
}

func TestShell_LoadRun(t *testing.T) {
	assert := assert.New(t)

	sh, out := newShell()

	path := writeProgram(t, "MOV R0 42", "PRINT REG 0", "HALT")
	sh.Execute("load " + path)
	assert.Equal("Loaded 3 instructions\n", out.String())

	out.Reset()
	sh.Execute("run")
	assert.Equal("R0 = 42\nProgram finished.\n", out.String())

	// A second run starts from instruction 0 again.
	out.Reset()
	sh.Execute("run")
	assert.Equal("R0 = 42\nProgram finished.\n", out.String())

	out.Reset()
	sh.Execute("load " + filepath.Join(t.TempDir(), "missing.asm"))
	assert.Equal("Cannot open file\n", out.String())

	out.Reset()
	sh.Execute("load")
	assert.Equal("Usage: load <file>\n", out.String())
}

func TestShell_LoadFull(t *testing.T) {
	assert := assert.New(t)

	sh, out := newShell()

	lines := make([]string, 1024)
	for n := range lines {
		lines[n] = "NOP"
	}
	sh.Execute("load " + writeProgram(t, lines...))
	assert.Equal("Loaded 1024 instructions\n", out.String())
}

// interruptPrinter interrupts the process on its first PRINT.
type interruptPrinter struct {
	t    *testing.T
	sent bool
}

func (ip *interruptPrinter) PrintRegister(index uint32, value uint32) {
	if ip.sent {
		return
	}
	ip.sent = true

	proc, err := os.FindProcess(os.Getpid())
	if err == nil {
		err = proc.Signal(os.Interrupt)
	}
	assert.NoError(ip.t, err)
}

func (ip *interruptPrinter) PrintMemory(address uint32, value uint8) {}

func TestShell_RunInterrupt(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("os.Interrupt cannot be sent on windows")
	}

	assert := assert.New(t)

	sh, out := newShell()
	sh.Emulator.Machine.Printer = &interruptPrinter{t: t}

	sh.Execute("load " + writeProgram(t, "PRINT REG 0", "JMP 0"))
	out.Reset()
	sh.Execute("run")
	assert.Contains(out.String(), "context canceled")
	assert.Contains(out.String(), "Program finished.\n")

	// The next run is not affected by the interrupt.
	sh.Execute("load " + writeProgram(t, "MOV R1 7", "HALT"))
	out.Reset()
	sh.Execute("run")
	assert.Equal("Program finished.\n", out.String())
	assert.Equal(uint32(7), sh.Emulator.Machine.Register[1])
}

func TestShell_StepListReset(t *testing.T) {
	assert := assert.New(t)

	sh, out := newShell()

	path := writeProgram(t, "MOV R0 7", "HALT")
	sh.Execute("load " + path)

	out.Reset()
	sh.Execute("list")
	assert.Equal("0000: 0100000000000007  MOV R0 7\n0001: 0900000000000000  HALT\n", out.String())

	out.Reset()
	sh.Execute("step")
	assert.Equal("0000: MOV R0 7\n", out.String())
	assert.Equal(uint32(7), sh.Emulator.Machine.Register[0])

	out.Reset()
	sh.Execute("step")
	assert.Equal("0001: HALT\nMachine halted.\n", out.String())

	out.Reset()
	sh.Execute("reset")
	assert.Equal("Machine reset.\n", out.String())
	assert.Equal(uint32(0), sh.Emulator.Machine.Register[0])
}

func TestShell_Dump(t *testing.T) {
	assert := assert.New(t)

	sh, out := newShell()
	sh.Emulator.Machine.Memory[3] = 1

	sh.Execute("dump")
	assert.Contains(out.String(), "Register")
	assert.Contains(out.String(), "Running")
	assert.Contains(out.String(), "Memory")
}

func TestShell_Run(t *testing.T) {
	assert := assert.New(t)

	sh, out := newShell()
	sh.Prompt = "> "

	err := sh.Run(strings.NewReader("mem 1\n\nexit\nregs\n"))
	assert.NoError(err)
	assert.True(sh.Done())
	assert.Equal("> MEM[1]: 0\n> Unknown command. Type 'help'.\n> ", out.String())

	// End of input without exit.
	sh, out = newShell()
	sh.Prompt = "> "
	err = sh.Run(strings.NewReader("mem 1"))
	assert.NoError(err)
	assert.False(sh.Done())
	assert.Equal("> MEM[1]: 0\n> ", out.String())
}

func TestShell_Banner(t *testing.T) {
	assert := assert.New(t)

	sh, out := newShell()
	sh.Banner()
	assert.True(strings.HasPrefix(out.String(), "Welcome to mighf-embedded micro-arch shell!\nHost platform: "))
	assert.True(strings.HasSuffix(out.String(), "Type 'help' for commands.\n"))

	assert.Equal("Linux", hostName("linux"))
	assert.Equal("plan9", hostName("plan9"))
}

func TestShell_Complete(t *testing.T) {
	assert := assert.New(t)

	sh, _ := newShell()

	buf := prompt.NewBuffer()
	buf.InsertText("re", false, true)

	var names []string
	for _, suggest := range sh.Complete(*buf.Document()) {
		names = append(names, suggest.Text)
	}
	assert.Equal([]string{"regs", "reset"}, names)

	buf = prompt.NewBuffer()
	buf.InsertText("load fi", false, true)
	assert.Empty(sh.Complete(*buf.Document()))
}
