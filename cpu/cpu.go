// Package cpu is the execution engine: it drives a decode.Table's
// pipelines one micro-op per Clock call, owns the Prev/Current state
// buffer, and arbitrates pending interrupts against the priority order
// Reset > Nmi > Irq.
package cpu

import (
	"fmt"

	"github.com/go65xx/cycleemu/bus"
	"github.com/go65xx/cycleemu/decode"
	"github.com/go65xx/cycleemu/irq"
	"github.com/go65xx/cycleemu/microop"
	"github.com/go65xx/cycleemu/state"
)

// maxStepTicks bounds Step's internal loop so a programming fault in a
// pipeline (one that never sets InstructionComplete) cannot hang the
// caller forever.
const maxStepTicks = 100

// HaltError reports that the CPU executed an NMOS JAM opcode and can
// no longer make forward progress without a Reset.
type HaltError struct {
	Opcode uint8
}

func (e HaltError) Error() string {
	return fmt.Sprintf("cpu: halted on opcode $%02X", e.Opcode)
}

// StepOverrunError reports that a pipeline ran past maxStepTicks
// without completing: an internal programming fault, never a
// consequence of ordinary emulated behavior.
type StepOverrunError struct {
	Ticks int
}

func (e StepOverrunError) Error() string {
	return fmt.Sprintf("cpu: step exceeded %d ticks without completing", e.Ticks)
}

// CPU is one 65xx core. It is not safe for concurrent use.
type CPU struct {
	variant decode.Variant
	table   [256]state.Pipeline
	buf     *state.Buffer

	irqLine      bool
	nmiEdge      bool
	resetPending bool

	rdy irq.Sender
}

// SetRDY installs an optional RDY-line source. While it reports
// Raised()==false, Clock stalls entirely: no micro-op runs and no bus
// access occurs, modeling a DMA controller or similar peripheral
// holding the bus. A nil Sender (the default) never stalls.
func (c *CPU) SetRDY(s irq.Sender) { c.rdy = s }

// New builds a CPU for the given variant. It returns
// decode.InvalidVariantError if variant is out of range.
func New(variant decode.Variant) (*CPU, error) {
	t, err := decode.Table(variant)
	if err != nil {
		return nil, err
	}
	return &CPU{
		variant: variant,
		table:   t,
		buf:     state.NewBuffer(),
	}, nil
}

// Variant reports the CPU's decode table variant.
func (c *CPU) Variant() decode.Variant { return c.variant }

// Buffer returns the live Prev/Current register buffer.
func (c *CPU) Buffer() *state.Buffer { return c.buf }

// SetBuffer installs a caller-supplied buffer (for restoring a
// snapshot taken earlier). It is rejected unless the buffer is
// Coherent: Current has no pipeline installed, or its PipelineIndex
// lies within the installed pipeline. The pipeline is not checked
// against this CPU's table.
func (c *CPU) SetBuffer(b *state.Buffer) error {
	if !b.Coherent() {
		return state.InvalidStateError{Reason: "buffer not at a coherent pipeline boundary"}
	}
	c.buf = b
	return nil
}

// SignalIrq raises the level-triggered IRQ line. It stays latched
// until ClearIrq is called; if the interrupt-disable flag is set, it
// remains pending without being serviced.
func (c *CPU) SignalIrq() { c.irqLine = true }

// ClearIrq lowers the IRQ line.
func (c *CPU) ClearIrq() { c.irqLine = false }

// SignalNmi raises the edge-triggered NMI line. It is consumed the
// instant it is serviced; calling it again before service is a no-op
// (the edge already latched).
func (c *CPU) SignalNmi() { c.nmiEdge = true }

// SignalReset forces the next instruction boundary to run the reset
// sequence instead. Reset outranks every other pending interrupt.
func (c *CPU) SignalReset() {
	c.resetPending = true
}

func (c *CPU) pendingPriority() state.PendingInterrupt {
	if c.resetPending {
		return state.Reset
	}
	if c.nmiEdge {
		return state.Nmi
	}
	if c.irqLine && !c.buf.Current.FlagSet(state.FlagInterrupt) {
		return state.Irq
	}
	return state.None
}

// atInstructionBoundary reports whether cur has no pipeline installed
// (the only time a new instruction or interrupt sequence may begin).
func atInstructionBoundary(cur *state.Registers) bool {
	return cur.Pipeline == nil
}

// HandlePendingInterrupt installs the highest-priority latched
// interrupt's sequence if the CPU is at an instruction boundary and
// nothing suppresses it (a taken branch's one-instruction delay, or a
// Stopped/Jammed status that only Reset may break — Nmi/Irq wake a
// Waiting CPU but must not resume one that is Stopped or Jammed). It is
// idempotent: calling it repeatedly with nothing newly pending, or
// while mid-instruction, is a harmless no-op.
func (c *CPU) HandlePendingInterrupt(b bus.Bus) bool {
	cur := c.buf.Current
	if !atInstructionBoundary(cur) {
		return false
	}
	if cur.PrevSkipInterrupt {
		cur.PrevSkipInterrupt = false
		return false
	}

	pending := c.pendingPriority()
	cur.PendingInterrupt = pending
	if pending == state.None {
		return false
	}
	if (cur.Status == state.Stopped || cur.Status == state.Jammed) && pending != state.Reset {
		return false
	}

	c.buf.SaveStateBeforeInstruction()
	cur.Status = state.Running

	switch pending {
	case state.Reset:
		c.resetPending = false
		cur.SP = 0
		cur.Pipeline = microop.Reset()
	case state.Nmi:
		c.nmiEdge = false
		cur.Pipeline = microop.HardwareInterrupt(c.variant.IsCMOS(), func(*state.Registers) uint16 { return state.NMIVector })
	case state.Irq:
		cur.Pipeline = microop.HardwareInterrupt(c.variant.IsCMOS(), func(*state.Registers) uint16 { return state.IRQVector })
	}
	cur.PipelineIndex = 0
	cur.InstructionComplete = false
	return true
}

// Clock runs at most one micro-op: none while the RDY Sender holds the
// line low, or while a Waiting/Stopped/Jammed CPU has no interrupt to
// service. It returns true when that micro-op completed the in-flight
// instruction or interrupt sequence. At every instruction boundary it
// first gives a latched interrupt the chance to intercept the next
// fetch.
func (c *CPU) Clock(b bus.Bus) (bool, error) {
	if c.rdy != nil && !c.rdy.Raised() {
		return false, nil
	}

	cur := c.buf.Current

	if atInstructionBoundary(cur) {
		cur.PrevSkipInterrupt = cur.SkipInterrupt
		cur.SkipInterrupt = false
		if !c.HandlePendingInterrupt(b) {
			if cur.Status == state.Waiting || cur.Status == state.Stopped || cur.Status == state.Jammed {
				return false, nil
			}
			c.buf.SaveStateBeforeInstruction()
			op := b.Peek(cur.PC)
			cur.Pipeline = c.table[op]
			cur.PipelineIndex = 0
			cur.InstructionComplete = false
		}
	}

	if cur.PipelineIndex >= len(cur.Pipeline) {
		return false, state.InvalidStateError{Reason: "pipeline index ran past its own length"}
	}

	mop := cur.Pipeline[cur.PipelineIndex]
	mop(c.buf.Prev, cur, b)
	cur.PipelineIndex++

	if cur.InstructionComplete {
		cur.Pipeline = nil
		cur.PipelineIndex = 0
		return true, nil
	}
	return false, nil
}

// Step runs Clock until an instruction completes (or the CPU is
// halted/waiting/stopped and cannot make progress), returning the
// number of cycles consumed. It returns HaltError if the CPU is
// Jammed, and StepOverrunError if maxStepTicks is exceeded without
// completing — a programming fault in a pipeline, not an emulated
// condition.
func (c *CPU) Step(b bus.Bus) (int, error) {
	if c.buf.Current.Status == state.Jammed {
		return 0, HaltError{Opcode: c.buf.Current.HaltOpcode}
	}
	ticks := 0
	for ticks < maxStepTicks {
		done, err := c.Clock(b)
		ticks++
		if err != nil {
			return ticks, err
		}
		if done {
			return ticks, nil
		}
		if c.buf.Current.Status == state.Waiting || c.buf.Current.Status == state.Stopped {
			return ticks, nil
		}
	}
	return ticks, StepOverrunError{Ticks: ticks}
}

// Run calls Clock exactly n times irrespective of instruction
// boundaries, the raw cycle-driven form used for timed cooperative
// scheduling. It always returns n: Clock itself has no recoverable
// failure except a corrupt pipeline index, an internal programming
// fault, which Run reports by returning early with that error instead
// of the full n.
func (c *CPU) Run(b bus.Bus, n int) (int, error) {
	for i := 0; i < n; i++ {
		if _, err := c.Clock(b); err != nil {
			return i, err
		}
	}
	return n, nil
}

// Reset runs the full power-on/reset micro-op sequence to completion,
// discarding any instruction in flight. It always succeeds: a Reset
// sequence never halts.
func (c *CPU) Reset(b bus.Bus) {
	cur := c.buf.Current
	cur.Pipeline = nil
	cur.PipelineIndex = 0
	c.buf.SaveStateBeforeInstruction()
	cur.Pipeline = microop.Reset()
	cur.PipelineIndex = 0
	cur.InstructionComplete = false
	cur.Status = state.Running
	cur.SP = 0
	for !cur.InstructionComplete {
		mop := cur.Pipeline[cur.PipelineIndex]
		mop(c.buf.Prev, cur, b)
		cur.PipelineIndex++
	}
	cur.Pipeline = nil
	cur.PipelineIndex = 0
}
