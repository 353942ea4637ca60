// Package decode builds the per-variant 256-entry opcode pipeline
// tables the execution engine indexes into. Each table entry is a
// complete, immutable state.Pipeline: FetchOpcode followed by the
// addressing-mode and ALU micro-ops that opcode byte requires for that
// CPU variant.
package decode

import (
	"github.com/go65xx/cycleemu/bus"
	"github.com/go65xx/cycleemu/microop"
	"github.com/go65xx/cycleemu/state"
)

func storeA(cur *state.Registers) uint8 { return cur.A }
func storeX(cur *state.Registers) uint8 { return cur.X }
func storeY(cur *state.Registers) uint8 { return cur.Y }

func op(seg state.Pipeline) state.Pipeline {
	p := make(state.Pipeline, 0, len(seg)+1)
	p = append(p, microop.FetchOpcode)
	p = append(p, seg...)
	return p
}

func discardPC(prev, cur *state.Registers, b bus.Bus) {
	_ = b.Read(cur.PC)
}

// pha/php/pla/plp/jsr/rts/rti are built directly rather than through
// the generic addressing-mode builders: each has its own fixed,
// idiosyncratic internal-cycle shape that no other opcode shares.

func pha(src func(cur *state.Registers) uint8) state.Pipeline {
	return state.Pipeline{
		discardPC,
		func(prev, cur *state.Registers, b bus.Bus) {
			microop.Push(src)(prev, cur, b)
			cur.InstructionComplete = true
		},
	}
}

func plp() state.Pipeline {
	return state.Pipeline{
		discardPC,
		microop.PreIncrementDummyRead,
		func(prev, cur *state.Registers, b bus.Bus) {
			microop.Pull(prev, cur, b)
			cur.P = cur.ScratchVal | state.FlagUnused
			cur.InstructionComplete = true
		},
	}
}

func jsr() state.Pipeline {
	return state.Pipeline{
		func(prev, cur *state.Registers, b bus.Bus) {
			cur.ScratchAddr = uint16(b.Read(cur.PC))
			cur.PC++
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			_ = b.Read(cur.StackAddr())
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			b.Write(cur.StackAddr(), uint8(cur.PC>>8))
			cur.SP--
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			b.Write(cur.StackAddr(), uint8(cur.PC))
			cur.SP--
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			hi := b.Read(cur.PC)
			cur.PC = uint16(hi)<<8 | cur.ScratchAddr
			cur.InstructionComplete = true
		},
	}
}

func rts() state.Pipeline {
	return state.Pipeline{
		discardPC,
		microop.PreIncrementDummyRead,
		func(prev, cur *state.Registers, b bus.Bus) {
			microop.Pull(prev, cur, b)
			cur.ScratchAddr = uint16(cur.ScratchVal)
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			microop.Pull(prev, cur, b)
			cur.ScratchAddr |= uint16(cur.ScratchVal) << 8
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			cur.PC = cur.ScratchAddr + 1
			cur.InstructionComplete = true
		},
	}
}

func rti() state.Pipeline {
	return state.Pipeline{
		discardPC,
		microop.PreIncrementDummyRead,
		func(prev, cur *state.Registers, b bus.Bus) {
			microop.Pull(prev, cur, b)
			cur.P = cur.ScratchVal | state.FlagUnused
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			microop.Pull(prev, cur, b)
			cur.ScratchAddr = uint16(cur.ScratchVal)
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			microop.Pull(prev, cur, b)
			cur.PC = uint16(cur.ScratchVal)<<8 | cur.ScratchAddr
			cur.InstructionComplete = true
		},
	}
}

func implied(f func(prev, cur *state.Registers, b bus.Bus)) state.Pipeline {
	return op(microop.Implied(f))
}

// decimalAware wraps an already-built ADC/SBC addressing segment so
// that, whichever micro-op actually completes it, a pending CMOS
// decimal-mode extra cycle (cur.DecimalExtraCycle, set by ADC/SBC in
// alu.go when CMOSFixup correction ran) defers completion one further
// tick instead of finishing immediately — the one extra cycle real
// WDC/Rockwell silicon costs whenever D=1 during ADC/SBC. Every
// addressing mode's load segment may set InstructionComplete from a
// different tick (AbsoluteIndexed/IndirectY have two, depending on a
// page cross), so every tick is wrapped uniformly rather than only the
// last. When D=0 at runtime the wrapped ticks behave exactly as before
// and the appended tail tick is never reached.
func decimalAware(p state.Pipeline) state.Pipeline {
	n := len(p)
	wrapped := make(state.Pipeline, n, n+1)
	for i := range p {
		mop := p[i]
		wrapped[i] = func(prev, cur *state.Registers, b bus.Bus) {
			mop(prev, cur, b)
			if cur.InstructionComplete && cur.DecimalExtraCycle {
				cur.DecimalExtraCycle = false
				cur.InstructionComplete = false
				// Skip any remaining segment ticks: op() puts FetchOpcode
				// ahead of this segment and the engine increments
				// PipelineIndex after this micro-op, so the next tick run
				// is the appended tail.
				cur.PipelineIndex = n
			}
		}
	}
	return append(wrapped, func(prev, cur *state.Registers, b bus.Bus) {
		cur.InstructionComplete = true
	})
}

// documented fills every opcode byte common to all four variants: the
// officially documented 6502 instruction set, identical in cycle
// shape across NMOS and CMOS apart from the CMOS decimal-mode extra
// ADC/SBC cycle, and otherwise differing only in ADC/SBC decimal flag
// math (both governed by dec), in the NMOS-vs-CMOS JMP-indirect
// page-wrap fault (governed by jmpIndirectBuggy), and in whether BRK
// clears D (governed by clearDecimalOnEntry).
func documented(dec microop.Decimal, jmpIndirectBuggy bool, clearDecimalOnEntry bool) [256]state.Pipeline {
	var t [256]state.Pipeline

	adc := microop.ADC(dec)
	sbc := microop.SBC(dec)

	// wrapDec applies decimalAware only for the CMOS variants; NMOS
	// decimal ADC/SBC never costs an extra cycle (§4.2/§4.4).
	wrapDec := func(p state.Pipeline) state.Pipeline {
		if dec.CMOSFixup {
			return decimalAware(p)
		}
		return p
	}

	// Software break. Vector hijacking by a coincident NMI (a real
	// silicon quirk where BRK's own vector fetch can be redirected mid
	// sequence) is not modeled; BRK always vectors through IRQVector.
	t[0x00] = op(microop.BRK(clearDecimalOnEntry, func(cur *state.Registers) uint16 { return state.IRQVector }))

	// Stack and subroutine instructions.
	t[0x08] = op(pha(func(cur *state.Registers) uint8 { return cur.P | state.FlagUnused | state.FlagBreak }))
	t[0x28] = op(plp())
	t[0x48] = op(pha(storeA))
	t[0x20] = op(jsr())
	t[0x40] = op(rti())
	t[0x60] = op(rts())
	t[0x68] = op(state.Pipeline{
		discardPC,
		microop.PreIncrementDummyRead,
		func(prev, cur *state.Registers, b bus.Bus) {
			microop.Pull(prev, cur, b)
			cur.A = cur.ScratchVal
			cur.CheckZero(cur.A)
			cur.CheckNegative(cur.A)
			cur.InstructionComplete = true
		},
	})

	// Flag and register instructions (2 cycles).
	t[0x18] = implied(func(prev, cur *state.Registers, b bus.Bus) { cur.SetFlag(state.FlagCarry, false) })
	t[0x38] = implied(func(prev, cur *state.Registers, b bus.Bus) { cur.SetFlag(state.FlagCarry, true) })
	t[0x58] = implied(func(prev, cur *state.Registers, b bus.Bus) { cur.SetFlag(state.FlagInterrupt, false) })
	t[0x78] = implied(func(prev, cur *state.Registers, b bus.Bus) { cur.SetFlag(state.FlagInterrupt, true) })
	t[0xB8] = implied(func(prev, cur *state.Registers, b bus.Bus) { cur.SetFlag(state.FlagOverflow, false) })
	t[0xD8] = implied(func(prev, cur *state.Registers, b bus.Bus) { cur.SetFlag(state.FlagDecimal, false) })
	t[0xF8] = implied(func(prev, cur *state.Registers, b bus.Bus) { cur.SetFlag(state.FlagDecimal, true) })
	t[0xEA] = implied(func(prev, cur *state.Registers, b bus.Bus) {})

	t[0xAA] = implied(func(prev, cur *state.Registers, b bus.Bus) { microop.LoadReg(&cur.X, cur.A, cur) })
	t[0x8A] = implied(func(prev, cur *state.Registers, b bus.Bus) { microop.LoadReg(&cur.A, cur.X, cur) })
	t[0xA8] = implied(func(prev, cur *state.Registers, b bus.Bus) { microop.LoadReg(&cur.Y, cur.A, cur) })
	t[0x98] = implied(func(prev, cur *state.Registers, b bus.Bus) { microop.LoadReg(&cur.A, cur.Y, cur) })
	t[0xBA] = implied(func(prev, cur *state.Registers, b bus.Bus) { microop.LoadReg(&cur.X, cur.SP, cur) })
	t[0x9A] = implied(func(prev, cur *state.Registers, b bus.Bus) { cur.SP = cur.X })
	t[0xE8] = implied(func(prev, cur *state.Registers, b bus.Bus) { microop.LoadReg(&cur.X, cur.X+1, cur) })
	t[0xC8] = implied(func(prev, cur *state.Registers, b bus.Bus) { microop.LoadReg(&cur.Y, cur.Y+1, cur) })
	t[0xCA] = implied(func(prev, cur *state.Registers, b bus.Bus) { microop.LoadReg(&cur.X, cur.X-1, cur) })
	t[0x88] = implied(func(prev, cur *state.Registers, b bus.Bus) { microop.LoadReg(&cur.Y, cur.Y-1, cur) })

	// Accumulator shift/rotate instructions.
	t[0x0A] = op(microop.Accumulator(microop.ASLAcc))
	t[0x4A] = op(microop.Accumulator(microop.LSRAcc))
	t[0x2A] = op(microop.Accumulator(microop.ROLAcc))
	t[0x6A] = op(microop.Accumulator(microop.RORAcc))

	// Jumps and branches.
	t[0x4C] = op(microop.JMPAbsolute())
	t[0x6C] = op(microop.JMPIndirect(jmpIndirectBuggy))
	t[0x10] = op(microop.Branch(func(cur *state.Registers) bool { return !cur.FlagSet(state.FlagNegative) }))
	t[0x30] = op(microop.Branch(func(cur *state.Registers) bool { return cur.FlagSet(state.FlagNegative) }))
	t[0x50] = op(microop.Branch(func(cur *state.Registers) bool { return !cur.FlagSet(state.FlagOverflow) }))
	t[0x70] = op(microop.Branch(func(cur *state.Registers) bool { return cur.FlagSet(state.FlagOverflow) }))
	t[0x90] = op(microop.Branch(func(cur *state.Registers) bool { return !cur.FlagSet(state.FlagCarry) }))
	t[0xB0] = op(microop.Branch(func(cur *state.Registers) bool { return cur.FlagSet(state.FlagCarry) }))
	t[0xD0] = op(microop.Branch(func(cur *state.Registers) bool { return !cur.FlagSet(state.FlagZero) }))
	t[0xF0] = op(microop.Branch(func(cur *state.Registers) bool { return cur.FlagSet(state.FlagZero) }))

	// Immediate-mode ALU instructions.
	t[0x09] = op(microop.Immediate(microop.ORA))
	t[0x29] = op(microop.Immediate(microop.AND))
	t[0x49] = op(microop.Immediate(microop.EOR))
	t[0x69] = op(wrapDec(microop.Immediate(adc)))
	t[0xE9] = op(wrapDec(microop.Immediate(sbc)))
	t[0xA9] = op(microop.Immediate(microop.LoadA))
	t[0xA2] = op(microop.Immediate(microop.LoadX))
	t[0xA0] = op(microop.Immediate(microop.LoadY))
	t[0xC9] = op(microop.Immediate(microop.CompareA))
	t[0xE0] = op(microop.Immediate(microop.CompareX))
	t[0xC0] = op(microop.Immediate(microop.CompareY))

	// Zero page.
	t[0x05] = op(microop.ZeroPage(microop.Load, microop.ORA, nil, nil))
	t[0x25] = op(microop.ZeroPage(microop.Load, microop.AND, nil, nil))
	t[0x45] = op(microop.ZeroPage(microop.Load, microop.EOR, nil, nil))
	t[0x65] = op(wrapDec(microop.ZeroPage(microop.Load, adc, nil, nil)))
	t[0xE5] = op(wrapDec(microop.ZeroPage(microop.Load, sbc, nil, nil)))
	t[0xA5] = op(microop.ZeroPage(microop.Load, microop.LoadA, nil, nil))
	t[0xA6] = op(microop.ZeroPage(microop.Load, microop.LoadX, nil, nil))
	t[0xA4] = op(microop.ZeroPage(microop.Load, microop.LoadY, nil, nil))
	t[0x24] = op(microop.ZeroPage(microop.Load, microop.BIT, nil, nil))
	t[0xC5] = op(microop.ZeroPage(microop.Load, microop.CompareA, nil, nil))
	t[0xE4] = op(microop.ZeroPage(microop.Load, microop.CompareX, nil, nil))
	t[0xC4] = op(microop.ZeroPage(microop.Load, microop.CompareY, nil, nil))
	t[0x85] = op(microop.ZeroPage(microop.Store, nil, storeA, nil))
	t[0x86] = op(microop.ZeroPage(microop.Store, nil, storeX, nil))
	t[0x84] = op(microop.ZeroPage(microop.Store, nil, storeY, nil))
	t[0x06] = op(microop.ZeroPage(microop.RMW, nil, nil, microop.ASLVal))
	t[0x46] = op(microop.ZeroPage(microop.RMW, nil, nil, microop.LSRVal))
	t[0x26] = op(microop.ZeroPage(microop.RMW, nil, nil, microop.ROLVal))
	t[0x66] = op(microop.ZeroPage(microop.RMW, nil, nil, microop.RORVal))
	t[0xC6] = op(microop.ZeroPage(microop.RMW, nil, nil, microop.DECVal))
	t[0xE6] = op(microop.ZeroPage(microop.RMW, nil, nil, microop.INCVal))

	// Zero page indexed.
	idxX := func(cur *state.Registers) uint8 { return cur.X }
	idxY := func(cur *state.Registers) uint8 { return cur.Y }
	t[0x15] = op(microop.ZeroPageIndexed(microop.Load, idxX, microop.ORA, nil, nil))
	t[0x35] = op(microop.ZeroPageIndexed(microop.Load, idxX, microop.AND, nil, nil))
	t[0x55] = op(microop.ZeroPageIndexed(microop.Load, idxX, microop.EOR, nil, nil))
	t[0x75] = op(wrapDec(microop.ZeroPageIndexed(microop.Load, idxX, adc, nil, nil)))
	t[0xF5] = op(wrapDec(microop.ZeroPageIndexed(microop.Load, idxX, sbc, nil, nil)))
	t[0xB5] = op(microop.ZeroPageIndexed(microop.Load, idxX, microop.LoadA, nil, nil))
	t[0xB4] = op(microop.ZeroPageIndexed(microop.Load, idxX, microop.LoadY, nil, nil))
	t[0xB6] = op(microop.ZeroPageIndexed(microop.Load, idxY, microop.LoadX, nil, nil))
	t[0xD5] = op(microop.ZeroPageIndexed(microop.Load, idxX, microop.CompareA, nil, nil))
	t[0x95] = op(microop.ZeroPageIndexed(microop.Store, idxX, nil, storeA, nil))
	t[0x94] = op(microop.ZeroPageIndexed(microop.Store, idxX, nil, storeY, nil))
	t[0x96] = op(microop.ZeroPageIndexed(microop.Store, idxY, nil, storeX, nil))
	t[0x16] = op(microop.ZeroPageIndexed(microop.RMW, idxX, nil, nil, microop.ASLVal))
	t[0x56] = op(microop.ZeroPageIndexed(microop.RMW, idxX, nil, nil, microop.LSRVal))
	t[0x36] = op(microop.ZeroPageIndexed(microop.RMW, idxX, nil, nil, microop.ROLVal))
	t[0x76] = op(microop.ZeroPageIndexed(microop.RMW, idxX, nil, nil, microop.RORVal))
	t[0xD6] = op(microop.ZeroPageIndexed(microop.RMW, idxX, nil, nil, microop.DECVal))
	t[0xF6] = op(microop.ZeroPageIndexed(microop.RMW, idxX, nil, nil, microop.INCVal))

	// Absolute.
	t[0x0D] = op(microop.Absolute(microop.Load, microop.ORA, nil, nil))
	t[0x2D] = op(microop.Absolute(microop.Load, microop.AND, nil, nil))
	t[0x4D] = op(microop.Absolute(microop.Load, microop.EOR, nil, nil))
	t[0x6D] = op(wrapDec(microop.Absolute(microop.Load, adc, nil, nil)))
	t[0xED] = op(wrapDec(microop.Absolute(microop.Load, sbc, nil, nil)))
	t[0xAD] = op(microop.Absolute(microop.Load, microop.LoadA, nil, nil))
	t[0xAE] = op(microop.Absolute(microop.Load, microop.LoadX, nil, nil))
	t[0xAC] = op(microop.Absolute(microop.Load, microop.LoadY, nil, nil))
	t[0x2C] = op(microop.Absolute(microop.Load, microop.BIT, nil, nil))
	t[0xCD] = op(microop.Absolute(microop.Load, microop.CompareA, nil, nil))
	t[0xEC] = op(microop.Absolute(microop.Load, microop.CompareX, nil, nil))
	t[0xCC] = op(microop.Absolute(microop.Load, microop.CompareY, nil, nil))
	t[0x8D] = op(microop.Absolute(microop.Store, nil, storeA, nil))
	t[0x8E] = op(microop.Absolute(microop.Store, nil, storeX, nil))
	t[0x8C] = op(microop.Absolute(microop.Store, nil, storeY, nil))
	t[0x0E] = op(microop.Absolute(microop.RMW, nil, nil, microop.ASLVal))
	t[0x4E] = op(microop.Absolute(microop.RMW, nil, nil, microop.LSRVal))
	t[0x2E] = op(microop.Absolute(microop.RMW, nil, nil, microop.ROLVal))
	t[0x6E] = op(microop.Absolute(microop.RMW, nil, nil, microop.RORVal))
	t[0xCE] = op(microop.Absolute(microop.RMW, nil, nil, microop.DECVal))
	t[0xEE] = op(microop.Absolute(microop.RMW, nil, nil, microop.INCVal))

	// Absolute indexed.
	t[0x1D] = op(microop.AbsoluteIndexed(microop.Load, idxX, microop.ORA, nil, nil))
	t[0x3D] = op(microop.AbsoluteIndexed(microop.Load, idxX, microop.AND, nil, nil))
	t[0x5D] = op(microop.AbsoluteIndexed(microop.Load, idxX, microop.EOR, nil, nil))
	t[0x7D] = op(wrapDec(microop.AbsoluteIndexed(microop.Load, idxX, adc, nil, nil)))
	t[0xFD] = op(wrapDec(microop.AbsoluteIndexed(microop.Load, idxX, sbc, nil, nil)))
	t[0xBD] = op(microop.AbsoluteIndexed(microop.Load, idxX, microop.LoadA, nil, nil))
	t[0xBC] = op(microop.AbsoluteIndexed(microop.Load, idxX, microop.LoadY, nil, nil))
	t[0xDD] = op(microop.AbsoluteIndexed(microop.Load, idxX, microop.CompareA, nil, nil))
	t[0x19] = op(microop.AbsoluteIndexed(microop.Load, idxY, microop.ORA, nil, nil))
	t[0x39] = op(microop.AbsoluteIndexed(microop.Load, idxY, microop.AND, nil, nil))
	t[0x59] = op(microop.AbsoluteIndexed(microop.Load, idxY, microop.EOR, nil, nil))
	t[0x79] = op(wrapDec(microop.AbsoluteIndexed(microop.Load, idxY, adc, nil, nil)))
	t[0xF9] = op(wrapDec(microop.AbsoluteIndexed(microop.Load, idxY, sbc, nil, nil)))
	t[0xB9] = op(microop.AbsoluteIndexed(microop.Load, idxY, microop.LoadA, nil, nil))
	t[0xBE] = op(microop.AbsoluteIndexed(microop.Load, idxY, microop.LoadX, nil, nil))
	t[0xD9] = op(microop.AbsoluteIndexed(microop.Load, idxY, microop.CompareA, nil, nil))
	t[0x9D] = op(microop.AbsoluteIndexed(microop.Store, idxX, nil, storeA, nil))
	t[0x99] = op(microop.AbsoluteIndexed(microop.Store, idxY, nil, storeA, nil))
	t[0x1E] = op(microop.AbsoluteIndexed(microop.RMW, idxX, nil, nil, microop.ASLVal))
	t[0x5E] = op(microop.AbsoluteIndexed(microop.RMW, idxX, nil, nil, microop.LSRVal))
	t[0x3E] = op(microop.AbsoluteIndexed(microop.RMW, idxX, nil, nil, microop.ROLVal))
	t[0x7E] = op(microop.AbsoluteIndexed(microop.RMW, idxX, nil, nil, microop.RORVal))
	t[0xDE] = op(microop.AbsoluteIndexed(microop.RMW, idxX, nil, nil, microop.DECVal))
	t[0xFE] = op(microop.AbsoluteIndexed(microop.RMW, idxX, nil, nil, microop.INCVal))

	// Indexed indirect / indirect indexed.
	t[0x01] = op(microop.IndirectX(microop.Load, microop.ORA, nil, nil))
	t[0x21] = op(microop.IndirectX(microop.Load, microop.AND, nil, nil))
	t[0x41] = op(microop.IndirectX(microop.Load, microop.EOR, nil, nil))
	t[0x61] = op(wrapDec(microop.IndirectX(microop.Load, adc, nil, nil)))
	t[0xE1] = op(wrapDec(microop.IndirectX(microop.Load, sbc, nil, nil)))
	t[0xA1] = op(microop.IndirectX(microop.Load, microop.LoadA, nil, nil))
	t[0xC1] = op(microop.IndirectX(microop.Load, microop.CompareA, nil, nil))
	t[0x81] = op(microop.IndirectX(microop.Store, nil, storeA, nil))

	t[0x11] = op(microop.IndirectY(microop.Load, microop.ORA, nil, nil))
	t[0x31] = op(microop.IndirectY(microop.Load, microop.AND, nil, nil))
	t[0x51] = op(microop.IndirectY(microop.Load, microop.EOR, nil, nil))
	t[0x71] = op(wrapDec(microop.IndirectY(microop.Load, adc, nil, nil)))
	t[0xF1] = op(wrapDec(microop.IndirectY(microop.Load, sbc, nil, nil)))
	t[0xB1] = op(microop.IndirectY(microop.Load, microop.LoadA, nil, nil))
	t[0xD1] = op(microop.IndirectY(microop.Load, microop.CompareA, nil, nil))
	t[0x91] = op(microop.IndirectY(microop.Store, nil, storeA, nil))

	return t
}
