// Package cpu implements the machine and assembler for the mighf virtual CPU.
//
// The machine has eight 32-bit registers (R0-R7), 1024 bytes of memory, a
// 1024 slot instruction store, a program counter and a single zero flag set
// by CMP and consumed by JE. Every instruction is a fixed-width Instruction:
// an opcode, two small register selectors and one 32-bit immediate.
//
// The machine is permissive: an out of range register or address, or a
// division by zero, turns the instruction into a no-op. Setting Strict on a
// Machine reports those no-ops as errors instead.
//
// The assembler turns one line of mnemonic text into an Instruction, and
// supports compile-time $(...) expressions over predefined values.
package cpu
