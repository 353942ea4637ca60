package microop

import (
	"github.com/go65xx/cycleemu/bus"
	"github.com/go65xx/cycleemu/state"
)

func pushPCH(prev, cur *state.Registers, b bus.Bus) {
	b.Write(cur.StackAddr(), uint8(cur.PC>>8))
	cur.SP--
}

func pushPCL(prev, cur *state.Registers, b bus.Bus) {
	b.Write(cur.StackAddr(), uint8(cur.PC))
	cur.SP--
}

func pushP(brk bool, clearDecimalOnEntry bool) state.MicroOp {
	return func(prev, cur *state.Registers, b bus.Bus) {
		p := cur.P | state.FlagUnused
		if brk {
			p |= state.FlagBreak
		} else {
			p &^= state.FlagBreak
		}
		b.Write(cur.StackAddr(), p)
		cur.SP--
		cur.SetFlag(state.FlagInterrupt, true)
		if clearDecimalOnEntry {
			cur.SetFlag(state.FlagDecimal, false)
		}
	}
}

// BRK builds the 6-micro-op tail of the software BRK instruction (7
// cycles total once FetchOpcode is prepended): a discarded padding
// byte, push PCH/PCL/P with B=1, then fetch the IRQ vector. vector
// supplies the vector address both fetch ticks read; the decode tables
// always pass IRQVector, so a coincident NMI does not redirect BRK.
func BRK(clearDecimalOnEntry bool, vector func(cur *state.Registers) uint16) state.Pipeline {
	return state.Pipeline{
		func(prev, cur *state.Registers, b bus.Bus) {
			_ = b.Read(cur.PC)
			cur.PC++
		},
		pushPCH,
		pushPCL,
		pushP(true, clearDecimalOnEntry),
		func(prev, cur *state.Registers, b bus.Bus) {
			cur.ScratchVal = b.Read(vector(cur))
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			hi := b.Read(vector(cur) + 1)
			cur.PC = uint16(hi)<<8 | uint16(cur.ScratchVal)
			cur.InstructionComplete = true
		},
	}
}

// HardwareInterrupt builds the full 7-cycle IRQ/NMI sequence. Unlike
// BRK it is not attached behind a FetchOpcode micro-op: the engine
// installs this pipeline directly in place of the next instruction
// fetch, pushing the PC of the instruction that would otherwise have
// run next, with B=0.
func HardwareInterrupt(clearDecimalOnEntry bool, vector func(cur *state.Registers) uint16) state.Pipeline {
	return state.Pipeline{
		func(prev, cur *state.Registers, b bus.Bus) {
			_ = b.Read(cur.PC)
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			_ = b.Read(cur.PC)
		},
		pushPCH,
		pushPCL,
		pushP(false, clearDecimalOnEntry),
		func(prev, cur *state.Registers, b bus.Bus) {
			cur.ScratchVal = b.Read(vector(cur))
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			hi := b.Read(vector(cur) + 1)
			cur.PC = uint16(hi)<<8 | uint16(cur.ScratchVal)
			cur.InstructionComplete = true
		},
	}
}

// Reset builds the 7-cycle power-on/reset sequence: two internal
// cycles (the second setting the interrupt-disable and unused flags), three
// stack-pointer decrements that never actually write (the bus sees no
// writes during reset on real silicon), then the two-byte vector fetch
// into PC.
func Reset() state.Pipeline {
	return state.Pipeline{
		func(prev, cur *state.Registers, b bus.Bus) {
			_ = b.Read(cur.PC)
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			_ = b.Read(cur.PC)
			cur.SetFlag(state.FlagInterrupt|state.FlagUnused, true)
			cur.Status = state.Running
		},
		func(prev, cur *state.Registers, b bus.Bus) { cur.SP-- },
		func(prev, cur *state.Registers, b bus.Bus) { cur.SP-- },
		func(prev, cur *state.Registers, b bus.Bus) { cur.SP-- },
		func(prev, cur *state.Registers, b bus.Bus) {
			cur.ScratchVal = b.Read(state.ResetVector)
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			hi := b.Read(state.ResetVector + 1)
			cur.PC = uint16(hi)<<8 | uint16(cur.ScratchVal)
			cur.InstructionComplete = true
		},
	}
}
