package terminal

import (
	"fmt"
	"io"
)

// Console writes PRINT output as text lines.
type Console struct {
	Output io.Writer
}

var _ Printer = (*Console)(nil)

// PrintRegister writes "R<index> = <value>".
func (cc *Console) PrintRegister(index uint32, value uint32) {
	fmt.Fprintf(cc.Output, "R%d = %d\n", index, value)
}

// PrintMemory writes "MEM[<address>] = <value>".
func (cc *Console) PrintMemory(address uint32, value uint8) {
	fmt.Fprintf(cc.Output, "MEM[%d] = %d\n", address, value)
}
