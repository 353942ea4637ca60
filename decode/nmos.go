package decode

import (
	"github.com/go65xx/cycleemu/bus"
	"github.com/go65xx/cycleemu/microop"
	"github.com/go65xx/cycleemu/state"
)

// nopImmediate builds a read-only addressing segment whose only effect is
// to consume the right number of operand bytes/cycles, used both for
// the documented multi-byte NOPs and for the simplified illegal-opcode
// table's stand-ins.
func nopImmediate() state.Pipeline {
	return state.Pipeline{
		func(prev, cur *state.Registers, b bus.Bus) {
			_ = b.Read(cur.PC)
			cur.PC++
			cur.InstructionComplete = true
		},
	}
}

func nopImplied() state.Pipeline {
	return state.Pipeline{
		func(prev, cur *state.Registers, b bus.Bus) { cur.InstructionComplete = true },
	}
}

// nmosIllegalFull overlays the full matrix of NMOS undocumented
// opcodes onto a documented base table: the combinational SLO/RLA/
// SRE/RRA/DCP/ISC read-modify-write hybrids, the SAX/LAX store/load
// combos, the immediate-mode oddities (ANC/ALR/ARR/AXS/LAX#/XAA), the
// highly unstable AHX/SHX/SHY/TAS/LAS family, the documented-length
// NOP/SKB/SKW filler opcodes, and the JAM opcodes that lock the bus.
func nmosIllegalFull(t *[256]state.Pipeline, dec microop.Decimal) {
	idxX := func(cur *state.Registers) uint8 { return cur.X }
	idxY := func(cur *state.Registers) uint8 { return cur.Y }
	rra := microop.RRA(dec)
	isc := microop.ISC(dec)

	// SLO: ASL+ORA.
	t[0x07] = op(microop.ZeroPage(microop.RMW, nil, nil, microop.SLO))
	t[0x17] = op(microop.ZeroPageIndexed(microop.RMW, idxX, nil, nil, microop.SLO))
	t[0x0F] = op(microop.Absolute(microop.RMW, nil, nil, microop.SLO))
	t[0x1F] = op(microop.AbsoluteIndexed(microop.RMW, idxX, nil, nil, microop.SLO))
	t[0x1B] = op(microop.AbsoluteIndexed(microop.RMW, idxY, nil, nil, microop.SLO))
	t[0x03] = op(microop.IndirectX(microop.RMW, nil, nil, microop.SLO))
	t[0x13] = op(microop.IndirectY(microop.RMW, nil, nil, microop.SLO))

	// RLA: ROL+AND.
	t[0x27] = op(microop.ZeroPage(microop.RMW, nil, nil, microop.RLA))
	t[0x37] = op(microop.ZeroPageIndexed(microop.RMW, idxX, nil, nil, microop.RLA))
	t[0x2F] = op(microop.Absolute(microop.RMW, nil, nil, microop.RLA))
	t[0x3F] = op(microop.AbsoluteIndexed(microop.RMW, idxX, nil, nil, microop.RLA))
	t[0x3B] = op(microop.AbsoluteIndexed(microop.RMW, idxY, nil, nil, microop.RLA))
	t[0x23] = op(microop.IndirectX(microop.RMW, nil, nil, microop.RLA))
	t[0x33] = op(microop.IndirectY(microop.RMW, nil, nil, microop.RLA))

	// SRE: LSR+EOR.
	t[0x47] = op(microop.ZeroPage(microop.RMW, nil, nil, microop.SRE))
	t[0x57] = op(microop.ZeroPageIndexed(microop.RMW, idxX, nil, nil, microop.SRE))
	t[0x4F] = op(microop.Absolute(microop.RMW, nil, nil, microop.SRE))
	t[0x5F] = op(microop.AbsoluteIndexed(microop.RMW, idxX, nil, nil, microop.SRE))
	t[0x5B] = op(microop.AbsoluteIndexed(microop.RMW, idxY, nil, nil, microop.SRE))
	t[0x43] = op(microop.IndirectX(microop.RMW, nil, nil, microop.SRE))
	t[0x53] = op(microop.IndirectY(microop.RMW, nil, nil, microop.SRE))

	// RRA: ROR+ADC.
	t[0x67] = op(microop.ZeroPage(microop.RMW, nil, nil, rra))
	t[0x77] = op(microop.ZeroPageIndexed(microop.RMW, idxX, nil, nil, rra))
	t[0x6F] = op(microop.Absolute(microop.RMW, nil, nil, rra))
	t[0x7F] = op(microop.AbsoluteIndexed(microop.RMW, idxX, nil, nil, rra))
	t[0x7B] = op(microop.AbsoluteIndexed(microop.RMW, idxY, nil, nil, rra))
	t[0x63] = op(microop.IndirectX(microop.RMW, nil, nil, rra))
	t[0x73] = op(microop.IndirectY(microop.RMW, nil, nil, rra))

	// DCP: DEC+CMP.
	t[0xC7] = op(microop.ZeroPage(microop.RMW, nil, nil, microop.DCP))
	t[0xD7] = op(microop.ZeroPageIndexed(microop.RMW, idxX, nil, nil, microop.DCP))
	t[0xCF] = op(microop.Absolute(microop.RMW, nil, nil, microop.DCP))
	t[0xDF] = op(microop.AbsoluteIndexed(microop.RMW, idxX, nil, nil, microop.DCP))
	t[0xDB] = op(microop.AbsoluteIndexed(microop.RMW, idxY, nil, nil, microop.DCP))
	t[0xC3] = op(microop.IndirectX(microop.RMW, nil, nil, microop.DCP))
	t[0xD3] = op(microop.IndirectY(microop.RMW, nil, nil, microop.DCP))

	// ISC (aka ISB/INS): INC+SBC.
	t[0xE7] = op(microop.ZeroPage(microop.RMW, nil, nil, isc))
	t[0xF7] = op(microop.ZeroPageIndexed(microop.RMW, idxX, nil, nil, isc))
	t[0xEF] = op(microop.Absolute(microop.RMW, nil, nil, isc))
	t[0xFF] = op(microop.AbsoluteIndexed(microop.RMW, idxX, nil, nil, isc))
	t[0xFB] = op(microop.AbsoluteIndexed(microop.RMW, idxY, nil, nil, isc))
	t[0xE3] = op(microop.IndirectX(microop.RMW, nil, nil, isc))
	t[0xF3] = op(microop.IndirectY(microop.RMW, nil, nil, isc))

	// SAX: store A&X.
	storeAX := func(cur *state.Registers) uint8 { return cur.A & cur.X }
	t[0x87] = op(microop.ZeroPage(microop.Store, nil, storeAX, nil))
	t[0x97] = op(microop.ZeroPageIndexed(microop.Store, idxY, nil, storeAX, nil))
	t[0x8F] = op(microop.Absolute(microop.Store, nil, storeAX, nil))
	t[0x83] = op(microop.IndirectX(microop.Store, nil, storeAX, nil))

	// LAX: load A and X together.
	t[0xA7] = op(microop.ZeroPage(microop.Load, microop.LAX, nil, nil))
	t[0xB7] = op(microop.ZeroPageIndexed(microop.Load, idxY, microop.LAX, nil, nil))
	t[0xAF] = op(microop.Absolute(microop.Load, microop.LAX, nil, nil))
	t[0xBF] = op(microop.AbsoluteIndexed(microop.Load, idxY, microop.LAX, nil, nil))
	t[0xA3] = op(microop.IndirectX(microop.Load, microop.LAX, nil, nil))
	t[0xB3] = op(microop.IndirectY(microop.Load, microop.LAX, nil, nil))

	// Immediate-mode combos.
	t[0x0B] = op(microop.Immediate(microop.ANC))
	t[0x2B] = op(microop.Immediate(microop.ANC))
	t[0x4B] = op(microop.Immediate(microop.ALR))
	t[0x6B] = op(microop.Immediate(microop.ARR))
	t[0xCB] = op(microop.Immediate(microop.AXS))
	t[0xAB] = op(microop.Immediate(microop.OAL))
	t[0x8B] = op(microop.Immediate(microop.XAA))
	t[0xEB] = op(microop.Immediate(microop.SBC(dec))) // duplicate of SBC #i

	// LAS: AND memory with SP, load into A/X/SP.
	t[0xBB] = op(microop.AbsoluteIndexed(microop.Load, idxY, microop.LAS, nil, nil))

	// AHX/SHX/SHY/TAS: highly unstable store-combos whose result
	// depends on the high byte of the effective address. This module
	// follows the commonly measured val&(hi+1) behavior.
	hiPlusOne := func(cur *state.Registers) uint8 { return uint8(cur.ScratchAddr>>8) + 1 }
	t[0x9F] = op(microop.AbsoluteIndexed(microop.Store, idxY, nil, func(cur *state.Registers) uint8 {
		return cur.A & cur.X & hiPlusOne(cur)
	}, nil))
	t[0x93] = op(microop.IndirectY(microop.Store, nil, func(cur *state.Registers) uint8 {
		return cur.A & cur.X & hiPlusOne(cur)
	}, nil))
	t[0x9E] = op(microop.AbsoluteIndexed(microop.Store, idxX, nil, func(cur *state.Registers) uint8 {
		return cur.X & hiPlusOne(cur)
	}, nil))
	t[0x9C] = op(microop.AbsoluteIndexed(microop.Store, idxY, nil, func(cur *state.Registers) uint8 {
		return cur.Y & hiPlusOne(cur)
	}, nil))
	t[0x9B] = op(microop.AbsoluteIndexed(microop.Store, idxY, nil, func(cur *state.Registers) uint8 {
		cur.SP = cur.A & cur.X
		return cur.SP & hiPlusOne(cur)
	}, nil))

	// NOP/SKB/SKW filler opcodes: correct operand length and cycle
	// count, no architectural effect.
	for _, o := range []int{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		t[o] = implied(func(prev, cur *state.Registers, b bus.Bus) {})
	}
	for _, o := range []int{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		t[o] = op(nopImmediate())
	}
	for _, o := range []int{0x04, 0x44, 0x64} {
		t[o] = op(microop.ZeroPage(microop.Load, func(prev, cur *state.Registers, b bus.Bus) {}, nil, nil))
	}
	for _, o := range []int{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		t[o] = op(microop.ZeroPageIndexed(microop.Load, idxX, func(prev, cur *state.Registers, b bus.Bus) {}, nil, nil))
	}
	for _, o := range []int{0x0C} {
		t[o] = op(microop.Absolute(microop.Load, func(prev, cur *state.Registers, b bus.Bus) {}, nil, nil))
	}
	for _, o := range []int{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		t[o] = op(microop.AbsoluteIndexed(microop.Load, idxX, func(prev, cur *state.Registers, b bus.Bus) {}, nil, nil))
	}

	// JAM: locks the bus until Reset.
	for _, o := range []int{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		t[o] = state.Pipeline{microop.FetchOpcode, microop.Jam}
	}
}

// nmosIllegalSimple overlays the same opcode slots with deterministic,
// architecturally inert NOPs of the right operand length and cycle
// count, for the variant that models a simpler NMOS part without
// committing to one specific silicon's unstable-opcode behavior.
func nmosIllegalSimple(t *[256]state.Pipeline) {
	idxX := func(cur *state.Registers) uint8 { return cur.X }
	twoByteImplied := []int{0x0B, 0x2B, 0x4B, 0x6B, 0x80, 0x82, 0x89, 0xAB, 0xC2, 0xCB, 0xE2, 0x8B, 0xEB}
	for _, o := range twoByteImplied {
		t[o] = op(nopImmediate())
	}
	oneByteImplied := []int{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA}
	for _, o := range oneByteImplied {
		t[o] = implied(func(prev, cur *state.Registers, b bus.Bus) {})
	}
	zp := []int{0x04, 0x44, 0x64, 0x07, 0x27, 0x47, 0x67, 0xC7, 0xE7, 0x87, 0xA7}
	for _, o := range zp {
		t[o] = op(microop.ZeroPage(microop.Load, func(prev, cur *state.Registers, b bus.Bus) {}, nil, nil))
	}
	zpx := []int{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4, 0x17, 0x37, 0x57, 0x77, 0xD7, 0xF7, 0x97, 0xB7}
	for _, o := range zpx {
		t[o] = op(microop.ZeroPageIndexed(microop.Load, idxX, func(prev, cur *state.Registers, b bus.Bus) {}, nil, nil))
	}
	abs := []int{0x0C, 0x0F, 0x2F, 0x4F, 0x6F, 0xCF, 0xEF, 0x8F, 0xAF}
	for _, o := range abs {
		t[o] = op(microop.Absolute(microop.Load, func(prev, cur *state.Registers, b bus.Bus) {}, nil, nil))
	}
	absIdxX := []int{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC, 0x1F, 0x3F, 0x5F, 0x7F, 0xDF, 0xFF, 0x9E, 0x9C}
	for _, o := range absIdxX {
		t[o] = op(microop.AbsoluteIndexed(microop.Load, idxX, func(prev, cur *state.Registers, b bus.Bus) {}, nil, nil))
	}
	idxY := func(cur *state.Registers) uint8 { return cur.Y }
	absIdxY := []int{0x1B, 0x3B, 0x5B, 0x7B, 0xDB, 0xFB, 0xBF, 0xBB, 0x9F, 0x9B}
	for _, o := range absIdxY {
		t[o] = op(microop.AbsoluteIndexed(microop.Load, idxY, func(prev, cur *state.Registers, b bus.Bus) {}, nil, nil))
	}
	indX := []int{0x03, 0x23, 0x43, 0x63, 0xC3, 0xE3, 0x83, 0xA3}
	for _, o := range indX {
		t[o] = op(microop.IndirectX(microop.Load, func(prev, cur *state.Registers, b bus.Bus) {}, nil, nil))
	}
	indY := []int{0x13, 0x33, 0x53, 0x73, 0xD3, 0xF3, 0x93, 0xB3}
	for _, o := range indY {
		t[o] = op(microop.IndirectY(microop.Load, func(prev, cur *state.Registers, b bus.Bus) {}, nil, nil))
	}
	for _, o := range []int{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		t[o] = implied(func(prev, cur *state.Registers, b bus.Bus) {})
	}
}
