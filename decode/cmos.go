package decode

import (
	"github.com/go65xx/cycleemu/bus"
	"github.com/go65xx/cycleemu/microop"
	"github.com/go65xx/cycleemu/state"
)

// indirectZP builds the CMOS-only (zp) addressing mode: no index, so
// there is never a page-cross penalty. 5 cycles total for both load
// and store.
func indirectZP(kind microop.AccessKind, load microop.LoadOp, src microop.StoreSource) state.Pipeline {
	fetchPtr := func(prev, cur *state.Registers, b bus.Bus) {
		cur.ScratchAddr = uint16(b.Read(cur.PC))
		cur.PC++
	}
	readLo := func(prev, cur *state.Registers, b bus.Bus) {
		cur.ScratchVal = b.Read(cur.ScratchAddr)
	}
	readHi := func(prev, cur *state.Registers, b bus.Bus) {
		hi := b.Read(uint16(uint8(cur.ScratchAddr) + 1))
		cur.ScratchAddr = uint16(hi)<<8 | uint16(cur.ScratchVal)
	}
	if kind == microop.Store {
		return state.Pipeline{
			fetchPtr, readLo, readHi,
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, src(cur))
				cur.InstructionComplete = true
			},
		}
	}
	return state.Pipeline{
		fetchPtr, readLo, readHi,
		func(prev, cur *state.Registers, b bus.Bus) {
			cur.ScratchVal = b.Read(cur.ScratchAddr)
			load(prev, cur, b)
			cur.InstructionComplete = true
		},
	}
}

func stz(prev, cur *state.Registers, b bus.Bus) {}

// cmosCore overlays the 65C02 extensions common to both the WDC and
// Rockwell variants: PHX/PHY/PLX/PLY, STZ, TRB/TSB, BRA, accumulator
// INC/DEC, the extra BIT forms, the (zp) addressing mode, JMP
// (abs,X), and the RMBn/SMBn/BBRn/BBSn bit instructions. WAI/STP at
// $CB/$DB are left to the caller since the two CMOS variants disagree
// on them.
func cmosCore(t *[256]state.Pipeline, dec microop.Decimal) {
	// Pad every former-NMOS-illegal slot with an architecturally inert
	// NOP of the right length first; the real CMOS opcode assignments
	// below then overwrite the slots 65C02 actually redefines.
	nmosIllegalSimple(t)

	idxX := func(cur *state.Registers) uint8 { return cur.X }

	t[0xDA] = op(pha(storeX))
	t[0x5A] = op(pha(storeY))
	t[0xFA] = op(state.Pipeline{
		discardPC,
		microop.PreIncrementDummyRead,
		func(prev, cur *state.Registers, b bus.Bus) {
			microop.Pull(prev, cur, b)
			cur.X = cur.ScratchVal
			cur.CheckZero(cur.X)
			cur.CheckNegative(cur.X)
			cur.InstructionComplete = true
		},
	})
	t[0x7A] = op(state.Pipeline{
		discardPC,
		microop.PreIncrementDummyRead,
		func(prev, cur *state.Registers, b bus.Bus) {
			microop.Pull(prev, cur, b)
			cur.Y = cur.ScratchVal
			cur.CheckZero(cur.Y)
			cur.CheckNegative(cur.Y)
			cur.InstructionComplete = true
		},
	})

	t[0x64] = op(microop.ZeroPage(microop.Store, nil, func(*state.Registers) uint8 { return 0 }, nil))
	t[0x74] = op(microop.ZeroPageIndexed(microop.Store, idxX, nil, func(*state.Registers) uint8 { return 0 }, nil))
	t[0x9C] = op(microop.Absolute(microop.Store, nil, func(*state.Registers) uint8 { return 0 }, nil))
	t[0x9E] = op(microop.AbsoluteIndexed(microop.Store, idxX, nil, func(*state.Registers) uint8 { return 0 }, nil))

	trb := func(cur *state.Registers, v uint8) uint8 {
		cur.CheckZero(cur.A & v)
		return v &^ cur.A
	}
	tsb := func(cur *state.Registers, v uint8) uint8 {
		cur.CheckZero(cur.A & v)
		return v | cur.A
	}
	t[0x14] = op(microop.ZeroPage(microop.RMW, nil, nil, trb))
	t[0x1C] = op(microop.Absolute(microop.RMW, nil, nil, trb))
	t[0x04] = op(microop.ZeroPage(microop.RMW, nil, nil, tsb))
	t[0x0C] = op(microop.Absolute(microop.RMW, nil, nil, tsb))

	t[0x1A] = op(microop.Accumulator(func(prev, cur *state.Registers, b bus.Bus) {
		cur.A = microop.INCVal(cur, cur.A)
	}))
	t[0x3A] = op(microop.Accumulator(func(prev, cur *state.Registers, b bus.Bus) {
		cur.A = microop.DECVal(cur, cur.A)
	}))

	t[0x89] = op(microop.Immediate(microop.BITImmediate))
	t[0x34] = op(microop.ZeroPageIndexed(microop.Load, idxX, microop.BIT, nil, nil))
	t[0x3C] = op(microop.AbsoluteIndexed(microop.Load, idxX, microop.BIT, nil, nil))

	t[0x12] = op(indirectZP(microop.Load, microop.ORA, nil))
	t[0x32] = op(indirectZP(microop.Load, microop.AND, nil))
	t[0x52] = op(indirectZP(microop.Load, microop.EOR, nil))
	t[0x72] = op(decimalAware(indirectZP(microop.Load, microop.ADC(dec), nil)))
	t[0xB2] = op(indirectZP(microop.Load, microop.LoadA, nil))
	t[0xD2] = op(indirectZP(microop.Load, microop.CompareA, nil))
	t[0xF2] = op(decimalAware(indirectZP(microop.Load, microop.SBC(dec), nil)))
	t[0x92] = op(indirectZP(microop.Store, nil, storeA))

	t[0x80] = op(microop.Branch(func(cur *state.Registers) bool { return true }))
	t[0x7C] = op(microop.JMPAbsoluteIndexedX())

	for n := uint8(0); n < 8; n++ {
		t[0x07+int(n)*0x10] = op(microop.RMB(n))
		t[0x87+int(n)*0x10] = op(microop.SMB(n))
		t[0x0F+int(n)*0x10] = op(microop.ZPRelativeTest(n, false))
		t[0x8F+int(n)*0x10] = op(microop.ZPRelativeTest(n, true))
	}
}
