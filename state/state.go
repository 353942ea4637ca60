// Package state defines the register/flag model for a 65xx core, the
// Prev/Current snapshot buffer that backs the cycle-accurate test
// contract, and the micro-op/pipeline types the decode tables are built
// from.
package state

import (
	"fmt"

	"github.com/go65xx/cycleemu/bus"
)

// Status flags within P.
const (
	FlagNegative  = uint8(0x80)
	FlagOverflow  = uint8(0x40)
	FlagUnused    = uint8(0x20) // Always reads 1.
	FlagBreak     = uint8(0x10) // Only meaningful in the pushed copy of P.
	FlagDecimal   = uint8(0x08)
	FlagInterrupt = uint8(0x04)
	FlagZero      = uint8(0x02)
	FlagCarry     = uint8(0x01)
)

// Vector addresses. Little-endian in memory: lo byte first.
const (
	NMIVector   = uint16(0xFFFA)
	ResetVector = uint16(0xFFFC)
	IRQVector   = uint16(0xFFFE)
)

// InitialStack is the stack pointer value after a reset (three bytes
// "pushed" during the reset sequence without ever being written).
const InitialStack = uint8(0xFD)

// Status is the CPU's execution status.
type Status int

const (
	// Running is the normal fetch/execute status.
	Running Status = iota
	// Waiting is entered by WAI and left only when an interrupt latches.
	Waiting
	// Stopped is entered by STP and left only by Reset.
	Stopped
	// Jammed is entered by an NMOS illegal JAM opcode and left only by Reset.
	Jammed
	// Bypassed is defined for completeness; no code path in this module
	// sets it (HandlePendingInterrupt leaves the CPU Running).
	Bypassed
)

func (s Status) String() string {
	switch s {
	case Running:
		return "Running"
	case Waiting:
		return "Waiting"
	case Stopped:
		return "Stopped"
	case Jammed:
		return "Jammed"
	case Bypassed:
		return "Bypassed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// PendingInterrupt is the latched interrupt state. At most one is ever
// latched; Reset overrides Nmi overrides Irq.
type PendingInterrupt int

const (
	// None means no interrupt is latched.
	None PendingInterrupt = iota
	// Irq is a level-triggered maskable interrupt request.
	Irq
	// Nmi is an edge-triggered non-maskable interrupt request.
	Nmi
	// Reset is the highest-priority latch and survives across the reset
	// sequence itself.
	Reset
)

func (p PendingInterrupt) String() string {
	switch p {
	case None:
		return "None"
	case Irq:
		return "Irq"
	case Nmi:
		return "Nmi"
	case Reset:
		return "Reset"
	default:
		return fmt.Sprintf("PendingInterrupt(%d)", int(p))
	}
}

// MicroOp is a single-clock-cycle primitive. It may read prev (the
// pre-instruction snapshot), and may mutate cur and perform at most one
// bus access. It is the unit of composition for a Pipeline.
type MicroOp func(prev *Registers, cur *Registers, b bus.Bus)

// Pipeline is a fixed, ordered sequence of micro-ops describing one
// opcode's (or one interrupt sequence's) full cycle schedule. Pipelines
// are immutable once built; variant decode tables hand out the same
// slice value to every Step that decodes to that opcode.
type Pipeline []MicroOp

// Registers holds one snapshot of CPU register/flag/pipeline-cursor
// state. A Buffer holds two: Prev and Current.
type Registers struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       uint8

	Status           Status
	PendingInterrupt PendingInterrupt

	// CurrentOpcode/OpcodeAddress record the opcode byte of the
	// instruction in flight and the PC value it was fetched from.
	CurrentOpcode uint8
	OpcodeAddress uint16

	// Pipeline/PipelineIndex are the cursor into the currently
	// installed micro-op sequence. InstructionComplete is set by the
	// terminal micro-op of that sequence.
	Pipeline            Pipeline
	PipelineIndex       int
	InstructionComplete bool

	// Scratch fields used by micro-ops to carry partial addressing-mode
	// and ALU state across ticks within one instruction. Not part of
	// the architectural model; never part of a before/after comparison.
	ScratchAddr        uint16
	ScratchVal         uint8
	ScratchPageCrossed bool
	ScratchHi          uint8
	HaltOpcode         uint8

	// DecimalExtraCycle is set by ADC/SBC (alu.go) when CMOS decimal-mode
	// correction actually ran, requesting the one extra cycle real
	// WDC/Rockwell silicon costs in that case; decode's decimalAware
	// wrapper consumes and clears it.
	DecimalExtraCycle bool

	// SkipInterrupt/PrevSkipInterrupt model the one-instruction delay a
	// taken branch imposes on interrupt servicing (a real silicon
	// pipelining effect): a branch taken on tick 3 suppresses interrupt
	// latch checks for the instruction that follows it.
	SkipInterrupt     bool
	PrevSkipInterrupt bool
}

// Clone returns a field-for-field copy of r. Pipeline is copied by
// slice-header (the underlying micro-op slice is immutable so sharing
// it is safe).
func (r *Registers) Clone() *Registers {
	cp := *r
	return &cp
}

// FlagSet reports whether any bit in mask is set in P.
func (r *Registers) FlagSet(mask uint8) bool {
	return r.P&mask != 0
}

// SetFlag sets or clears the bits in mask within P.
func (r *Registers) SetFlag(mask uint8, set bool) {
	if set {
		r.P |= mask
	} else {
		r.P &^= mask
	}
}

// CheckZero sets FlagZero from v.
func (r *Registers) CheckZero(v uint8) {
	r.SetFlag(FlagZero, v == 0)
}

// CheckNegative sets FlagNegative from bit 7 of v.
func (r *Registers) CheckNegative(v uint8) {
	r.SetFlag(FlagNegative, v&FlagNegative != 0)
}

// CheckCarry sets FlagCarry if res (accumulated as a 16 bit quantity so
// BCD overflow past 0x100 still registers) produced a carry out.
func (r *Registers) CheckCarry(res uint16) {
	r.SetFlag(FlagCarry, res >= 0x100)
}

// CheckOverflow sets FlagOverflow per the standard two's-complement
// sign-change test: http://www.righto.com/2012/12/the-6502-overflow-flag-explained.html
func (r *Registers) CheckOverflow(reg, arg, res uint8) {
	r.SetFlag(FlagOverflow, (reg^res)&(arg^res)&0x80 != 0)
}

// StackAddr returns the effective address of the current top-of-stack
// byte ($0100-$01FF).
func (r *Registers) StackAddr() uint16 {
	return 0x0100 + uint16(r.SP)
}

// InvalidStateError reports a programming fault: a pipeline ran past
// its own length, or otherwise observed an impossible tick count. The
// engine never raises this for ordinary emulated behavior.
type InvalidStateError struct {
	Reason string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("invalid CPU state: %s", e.Reason)
}

// Buffer holds the Prev/Current register snapshots and the snapshot
// discipline that guarantees Prev always reflects the committed
// pre-instruction state once a Step returns.
type Buffer struct {
	Prev    *Registers
	Current *Registers
}

// NewBuffer returns a zeroed buffer. Callers should follow with a Reset
// sequence (see the cpu package) before running it.
func NewBuffer() *Buffer {
	return &Buffer{
		Prev:    &Registers{},
		Current: &Registers{},
	}
}

// SaveStateBeforeInstruction overwrites Prev with a field-for-field copy
// of Current. Apart from Reset, this is the only place Prev is replaced, and it must
// happen exactly once, at the moment a new instruction or interrupt
// sequence is about to begin (never at completion of the prior one).
func (b *Buffer) SaveStateBeforeInstruction() {
	b.Prev = b.Current.Clone()
}

// Reset clears Current to power-on defaults (SP at InitialStack, P with
// only the unused and interrupt-disable bits set, status Running, no
// pipeline in flight, no latched interrupt) and copies that same state
// into Prev, so the buffer starts Coherent. PC is left at zero: callers
// load it separately, either immediately via LoadResetVector or
// cycle-accurately by driving microop.Reset (see the cpu package, which
// layers the 7-cycle reset pipeline on top of this).
func (b *Buffer) Reset() {
	b.Current = &Registers{SP: InitialStack, P: FlagUnused | FlagInterrupt, Status: Running}
	b.Prev = b.Current.Clone()
}

// LoadResetVector reads the two-byte reset vector at ResetVector/+1 and
// sets Current.PC to it immediately, with no cycle cost. It is the
// non-cycle-accurate counterpart to microop.Reset's 7-cycle vector
// fetch, for callers that only need the end state (e.g. building a
// buffer to seed a snapshot test) rather than a real bus trace.
func (b *Buffer) LoadResetVector(bus bus.Bus) {
	lo := bus.Read(ResetVector)
	hi := bus.Read(ResetVector + 1)
	b.Current.PC = uint16(hi)<<8 | uint16(lo)
}

// Coherent reports whether Current's pipeline cursor is in a state safe
// to resume ticking: either no pipeline installed (PipelineIndex==0,
// Pipeline==nil) or mid-pipeline with a valid index. Used when a caller
// swaps buffers on a live CPU at what it believes is an instruction
// boundary.
func (b *Buffer) Coherent() bool {
	cur := b.Current
	if cur.Pipeline == nil {
		return cur.PipelineIndex == 0
	}
	return cur.PipelineIndex >= 0 && cur.PipelineIndex <= len(cur.Pipeline)
}
