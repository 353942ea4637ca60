// Package microop is the catalog of single-cycle primitives a 65xx
// pipeline is built from: opcode/operand fetch, address-mode
// computation, ALU operations, stack access, branch resolution, and
// interrupt sequencing. Every exported function here is either a
// state.MicroOp itself or a builder that composes a fixed-length
// state.Pipeline segment out of such primitives.
//
// A micro-op's only contract is: read prev if needed, mutate cur, touch
// the bus at most once. Builders close over that contract to assemble
// the addressing-mode and instruction-class segments the decode tables
// plug opcodes into.
package microop

import (
	"github.com/go65xx/cycleemu/bus"
	"github.com/go65xx/cycleemu/state"
)

// AccessKind distinguishes how an addressing-mode segment terminates:
// a Load reads the effective operand for an ALU micro-op to consume, a
// Store writes a value supplied by the caller, and an RMW reads, writes
// the unmodified value back (the classic dummy cycle), then writes the
// modified value.
type AccessKind int

const (
	Load AccessKind = iota
	Store
	RMW
)

// FetchOpcode is always micro-op 0 of a normal (non-interrupt) pipeline.
// The decode table has already been selected by a non-observable Peek
// of this same byte; this performs the real, observable read.
func FetchOpcode(prev, cur *state.Registers, b bus.Bus) {
	cur.InstructionComplete = false
	cur.CurrentOpcode = b.Read(cur.PC)
	cur.OpcodeAddress = cur.PC
	cur.PC++
}

// Complete marks the instruction finished. It performs no bus access.
func Complete(prev, cur *state.Registers, b bus.Bus) {
	cur.InstructionComplete = true
}

// NopCycle is a pure internal cycle: no bus access, no state change.
func NopCycle(prev, cur *state.Registers, b bus.Bus) {}

// NopCycleComplete is an internal cycle that also ends the instruction.
// The decode tables build their NOP padding from their own helpers, not
// from this primitive.
func NopCycleComplete(prev, cur *state.Registers, b bus.Bus) {
	cur.InstructionComplete = true
}

// DiscardRead performs a throwaway bus read (used for addressing-mode
// dummy cycles whose value is never consulted) without completing.
func DiscardRead(addr func(*state.Registers) uint16) state.MicroOp {
	return func(prev, cur *state.Registers, b bus.Bus) {
		_ = b.Read(addr(cur))
	}
}

// Jam halts the CPU permanently (until Reset) at an NMOS illegal JAM
// opcode. It records the opcode that caused it and completes the JAM
// instruction (decode wires FetchOpcode followed by Jam into JAM
// slots); from then on the engine sees Status==Jammed and runs no
// further micro-ops until Reset.
func Jam(prev, cur *state.Registers, b bus.Bus) {
	cur.Status = state.Jammed
	cur.HaltOpcode = cur.CurrentOpcode
	cur.InstructionComplete = true
}

// Wait enters the WAI halt: Status becomes Waiting until an interrupt
// latches (the engine's interrupt-priority check wakes it; see cpu.Clock).
func Wait(prev, cur *state.Registers, b bus.Bus) {
	cur.Status = state.Waiting
	cur.InstructionComplete = true
}

// Stop enters the STP halt: Status becomes Stopped until Reset.
func Stop(prev, cur *state.Registers, b bus.Bus) {
	cur.Status = state.Stopped
	cur.InstructionComplete = true
}
