package microop

import (
	"github.com/go65xx/cycleemu/bus"
	"github.com/go65xx/cycleemu/state"
)

// Decimal configures ADC/SBC's BCD behavior; decode builds one per
// variant table. Enabled=false disables BCD correction entirely (the
// NES's 6510-like Ricoh 2A03 never implemented decimal mode).
type Decimal struct {
	// Enabled reports whether D=1 triggers BCD correction at all. NMOS
	// Ricoh variants wire this false; every other variant true.
	Enabled bool
	// CMOSFixup requests the post-correction N/Z re-evaluation CMOS
	// decimal ADC/SBC uses, and causes ADC/SBC to set
	// cur.DecimalExtraCycle when they actually enter decimal-mode
	// correction; decode's decimalAware wrapper turns that into the one
	// extra cycle real WDC/Rockwell silicon costs (cycle count is a
	// pipeline-shape concern handled there, not here).
	CMOSFixup bool
}

// ADC implements ADC against cur.A using cur.ScratchVal as the operand.
// Mirrors the teacher's decimal-mode fixup math exactly: NMOS decimal
// N/V/Z come from the pre-correction binary/BCD-seq values, CMOS
// decimal re-evaluates N/Z from the corrected result.
func ADC(dec Decimal) state.MicroOp {
	return func(prev, cur *state.Registers, b bus.Bus) {
		carry := cur.P & state.FlagCarry
		val := cur.ScratchVal
		if dec.Enabled && cur.FlagSet(state.FlagDecimal) {
			aL := (cur.A & 0x0F) + (val & 0x0F) + carry
			if aL >= 0x0A {
				aL = ((aL + 0x06) & 0x0F) + 0x10
			}
			sum := uint16(cur.A&0xF0) + uint16(val&0xF0) + uint16(aL)
			if sum >= 0xA0 {
				sum += 0x60
			}
			res := uint8(sum & 0xFF)
			seq := (cur.A & 0xF0) + (val & 0xF0) + aL
			bin := cur.A + val + carry
			cur.CheckOverflow(cur.A, val, seq)
			cur.CheckCarry(sum)
			if dec.CMOSFixup {
				cur.CheckNegative(res)
				cur.CheckZero(res)
			} else {
				cur.CheckNegative(seq)
				cur.CheckZero(bin)
			}
			cur.A = res
			if dec.CMOSFixup {
				cur.DecimalExtraCycle = true
			}
			return
		}
		sum := cur.A + val + carry
		cur.CheckOverflow(cur.A, val, sum)
		cur.CheckCarry(uint16(cur.A) + uint16(val) + uint16(carry))
		cur.A = sum
		cur.CheckZero(cur.A)
		cur.CheckNegative(cur.A)
	}
}

// SBC implements SBC against cur.A using cur.ScratchVal as the operand.
// Binary mode is ADC against the ones-complemented operand (standard
// 6502 identity). Decimal mode applies its own BCD borrow correction.
func SBC(dec Decimal) state.MicroOp {
	return func(prev, cur *state.Registers, b bus.Bus) {
		carry := cur.P & state.FlagCarry
		val := cur.ScratchVal
		if dec.Enabled && cur.FlagSet(state.FlagDecimal) {
			aL := int16(cur.A&0x0F) - int16(val&0x0F) - int16(1-carry)
			aH := int16(cur.A&0xF0>>4) - int16(val&0xF0>>4)
			if aL < 0 {
				aL = ((aL - 0x06) & 0x0F) - 0x10
				aH--
			}
			if aH < 0 {
				aH = (aH - 0x06) & 0x0F
			}
			bin := cur.A - val - (1 - carry)
			cur.CheckOverflow(cur.A, ^val, bin)
			cur.CheckCarry(uint16(cur.A) + uint16(^val) + uint16(carry))
			res := uint8(aH<<4) | uint8(aL&0x0F)
			if dec.CMOSFixup {
				cur.CheckNegative(res)
				cur.CheckZero(res)
			} else {
				cur.CheckNegative(bin)
				cur.CheckZero(bin)
			}
			cur.A = res
			if dec.CMOSFixup {
				cur.DecimalExtraCycle = true
			}
			return
		}
		nv := ^val
		sum := cur.A + nv + carry
		cur.CheckOverflow(cur.A, nv, sum)
		cur.CheckCarry(uint16(cur.A) + uint16(nv) + uint16(carry))
		cur.A = sum
		cur.CheckZero(cur.A)
		cur.CheckNegative(cur.A)
	}
}

// AND implements the AND instruction.
func AND(prev, cur *state.Registers, b bus.Bus) {
	cur.A &= cur.ScratchVal
	cur.CheckZero(cur.A)
	cur.CheckNegative(cur.A)
}

// ORA implements the ORA instruction.
func ORA(prev, cur *state.Registers, b bus.Bus) {
	cur.A |= cur.ScratchVal
	cur.CheckZero(cur.A)
	cur.CheckNegative(cur.A)
}

// EOR implements the EOR instruction.
func EOR(prev, cur *state.Registers, b bus.Bus) {
	cur.A ^= cur.ScratchVal
	cur.CheckZero(cur.A)
	cur.CheckNegative(cur.A)
}

// BIT implements BIT: Z from A&val, N/V copied directly from bits 7/6
// of val (not of the AND result).
func BIT(prev, cur *state.Registers, b bus.Bus) {
	cur.CheckZero(cur.A & cur.ScratchVal)
	cur.CheckNegative(cur.ScratchVal)
	cur.SetFlag(state.FlagOverflow, cur.ScratchVal&state.FlagOverflow != 0)
}

// BITImmediate implements the CMOS BIT #i form, which only updates Z
// (no memory operand means no N/V source bits).
func BITImmediate(prev, cur *state.Registers, b bus.Bus) {
	cur.CheckZero(cur.A & cur.ScratchVal)
}

func compare(cur *state.Registers, reg uint8) {
	val := cur.ScratchVal
	cur.CheckZero(reg - val)
	cur.CheckNegative(reg - val)
	cur.CheckCarry(uint16(reg) + uint16(^val) + uint16(1))
}

// CompareA implements CMP.
func CompareA(prev, cur *state.Registers, b bus.Bus) { compare(cur, cur.A) }

// CompareX implements CPX.
func CompareX(prev, cur *state.Registers, b bus.Bus) { compare(cur, cur.X) }

// CompareY implements CPY.
func CompareY(prev, cur *state.Registers, b bus.Bus) { compare(cur, cur.Y) }

// shiftFlags sets C/Z/N for the shift/rotate primitives below so the
// same logic can feed both the accumulator (1-cycle) and memory
// (multi-cycle RMW) forms.
func shiftFlags(cur *state.Registers, carryOut uint16, result uint8) {
	cur.CheckCarry(carryOut)
	cur.CheckZero(result)
	cur.CheckNegative(result)
}

// ASLVal computes ASL of v and updates flags, returning the new value.
func ASLVal(cur *state.Registers, v uint8) uint8 {
	res := v << 1
	shiftFlags(cur, uint16(v)<<1, res)
	return res
}

// LSRVal computes LSR of v and updates flags, returning the new value.
func LSRVal(cur *state.Registers, v uint8) uint8 {
	res := v >> 1
	cur.SetFlag(state.FlagCarry, v&0x01 != 0)
	cur.CheckZero(res)
	cur.CheckNegative(res)
	return res
}

// ROLVal computes ROL of v through the carry flag and updates flags.
func ROLVal(cur *state.Registers, v uint8) uint8 {
	carryIn := cur.P & state.FlagCarry
	res := (v << 1) | carryIn
	shiftFlags(cur, uint16(v)<<1, res)
	return res
}

// RORVal computes ROR of v through the carry flag and updates flags.
func RORVal(cur *state.Registers, v uint8) uint8 {
	carryIn := cur.P & state.FlagCarry
	res := (v >> 1) | (carryIn << 7)
	cur.SetFlag(state.FlagCarry, v&0x01 != 0)
	cur.CheckZero(res)
	cur.CheckNegative(res)
	return res
}

// ASLAcc implements the accumulator-mode ASL.
func ASLAcc(prev, cur *state.Registers, b bus.Bus) { cur.A = ASLVal(cur, cur.A) }

// LSRAcc implements the accumulator-mode LSR.
func LSRAcc(prev, cur *state.Registers, b bus.Bus) { cur.A = LSRVal(cur, cur.A) }

// ROLAcc implements the accumulator-mode ROL.
func ROLAcc(prev, cur *state.Registers, b bus.Bus) { cur.A = ROLVal(cur, cur.A) }

// RORAcc implements the accumulator-mode ROR.
func RORAcc(prev, cur *state.Registers, b bus.Bus) { cur.A = RORVal(cur, cur.A) }

// INCVal/DECVal implement the value transform for INC/DEC and set flags.
func INCVal(cur *state.Registers, v uint8) uint8 {
	res := v + 1
	cur.CheckZero(res)
	cur.CheckNegative(res)
	return res
}

func DECVal(cur *state.Registers, v uint8) uint8 {
	res := v - 1
	cur.CheckZero(res)
	cur.CheckNegative(res)
	return res
}

// LoadReg stores val into *reg and sets Z/N from it. Used for register
// transfer opcodes (TAX, TAY, TXA, ...) and INX/INY/DEX/DEY.
func LoadReg(reg *uint8, val uint8, cur *state.Registers) {
	*reg = val
	cur.CheckZero(val)
	cur.CheckNegative(val)
}

// LoadA/LoadX/LoadY implement LDA/LDX/LDY, consuming cur.ScratchVal.
func LoadA(prev, cur *state.Registers, b bus.Bus) { LoadReg(&cur.A, cur.ScratchVal, cur) }
func LoadX(prev, cur *state.Registers, b bus.Bus) { LoadReg(&cur.X, cur.ScratchVal, cur) }
func LoadY(prev, cur *state.Registers, b bus.Bus) { LoadReg(&cur.Y, cur.ScratchVal, cur) }

// Illegal-opcode combinators (NMOS only). These mirror the teacher's
// undocumented-opcode matrix in cpu/cpu.go exactly.

// SLO: ASL memory then ORA A with the result.
func SLO(cur *state.Registers, v uint8) uint8 {
	res := ASLVal(cur, v)
	cur.A |= res
	cur.CheckZero(cur.A)
	cur.CheckNegative(cur.A)
	return res
}

// RLA: ROL memory then AND A with the result.
func RLA(cur *state.Registers, v uint8) uint8 {
	res := ROLVal(cur, v)
	cur.A &= res
	cur.CheckZero(cur.A)
	cur.CheckNegative(cur.A)
	return res
}

// SRE: LSR memory then EOR A with the result.
func SRE(cur *state.Registers, v uint8) uint8 {
	res := LSRVal(cur, v)
	cur.A ^= res
	cur.CheckZero(cur.A)
	cur.CheckNegative(cur.A)
	return res
}

// RRA: ROR memory then ADC A with the result.
func RRA(dec Decimal) func(cur *state.Registers, v uint8) uint8 {
	return func(cur *state.Registers, v uint8) uint8 {
		res := RORVal(cur, v)
		cur.ScratchVal = res
		ADC(dec)(nil, cur, nil)
		return res
	}
}

// DCP: DEC memory then CMP A against the result.
func DCP(cur *state.Registers, v uint8) uint8 {
	res := v - 1
	cur.ScratchVal = res
	compare(cur, cur.A)
	return res
}

// ISC: INC memory then SBC A against the result.
func ISC(dec Decimal) func(cur *state.Registers, v uint8) uint8 {
	return func(cur *state.Registers, v uint8) uint8 {
		res := v + 1
		cur.ScratchVal = res
		SBC(dec)(nil, cur, nil)
		return res
	}
}

// ANC: AND #i then copy N into C (used to quickly test/clear carry via
// immediate mask).
func ANC(prev, cur *state.Registers, b bus.Bus) {
	cur.A &= cur.ScratchVal
	cur.CheckZero(cur.A)
	cur.CheckNegative(cur.A)
	cur.SetFlag(state.FlagCarry, cur.FlagSet(state.FlagNegative))
}

// ALR: AND #i then LSR A.
func ALR(prev, cur *state.Registers, b bus.Bus) {
	cur.A &= cur.ScratchVal
	cur.A = LSRVal(cur, cur.A)
}

// ARR: AND #i then ROR A, with the odd carry/overflow rule real silicon
// exhibits (derived from the bit patterns of the rotated result).
func ARR(prev, cur *state.Registers, b bus.Bus) {
	cur.A &= cur.ScratchVal
	carryIn := cur.P & state.FlagCarry
	cur.A = (cur.A >> 1) | (carryIn << 7)
	cur.CheckZero(cur.A)
	cur.CheckNegative(cur.A)
	cur.SetFlag(state.FlagCarry, cur.A&0x40 != 0)
	cur.SetFlag(state.FlagOverflow, (cur.A>>6)&0x01^(cur.A>>5)&0x01 != 0)
}

// AXS (aka SBX): (A&X) - #i into X, setting C as an unsigned borrow and
// Z/N from the result.
func AXS(prev, cur *state.Registers, b bus.Bus) {
	t := cur.A & cur.X
	val := cur.ScratchVal
	cur.SetFlag(state.FlagCarry, t >= val)
	cur.X = t - val
	cur.CheckZero(cur.X)
	cur.CheckNegative(cur.X)
}

// LAX: load both A and X from the same fetched value.
func LAX(prev, cur *state.Registers, b bus.Bus) {
	LoadReg(&cur.A, cur.ScratchVal, cur)
	cur.X = cur.A
}

// OAL (aka ANE/XAA-on-immediate-LAX, opcode 0xAB): highly unstable on
// real silicon; this module follows the commonly measured
// ((A | magic) & X & #i) behavior with magic=0xEE, matching the
// teacher's documented choice for deterministic test behavior.
func OAL(prev, cur *state.Registers, b bus.Bus) {
	cur.A = (cur.A | 0xEE) & cur.X & cur.ScratchVal
	cur.CheckZero(cur.A)
	cur.CheckNegative(cur.A)
}

// XAA (opcode 0x8B): unstable; same magic-constant convention as OAL.
func XAA(prev, cur *state.Registers, b bus.Bus) {
	cur.A = (cur.A | 0xEE) & cur.X & cur.ScratchVal
	cur.CheckZero(cur.A)
	cur.CheckNegative(cur.A)
}

// LAS: AND memory with SP, store into A, X, and SP.
func LAS(prev, cur *state.Registers, b bus.Bus) {
	cur.SP &= cur.ScratchVal
	LoadReg(&cur.X, cur.SP, cur)
	LoadReg(&cur.A, cur.SP, cur)
}
