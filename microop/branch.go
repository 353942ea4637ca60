package microop

import (
	"github.com/go65xx/cycleemu/bus"
	"github.com/go65xx/cycleemu/state"
)

// Condition reports whether a branch should be taken given the flags
// in cur.
type Condition func(cur *state.Registers) bool

// Branch builds a relative-branch pipeline. Not-taken is 2 cycles
// total, taken-same-page is 3, taken-crossing-a-page is 4. A taken
// branch also sets SkipInterrupt, delaying interrupt servicing by one
// more instruction boundary exactly as real silicon's internal
// pipelining does.
func Branch(cond Condition) state.Pipeline {
	return state.Pipeline{
		func(prev, cur *state.Registers, b bus.Bus) {
			offset := int8(b.Read(cur.PC))
			cur.PC++
			if !cond(cur) {
				cur.InstructionComplete = true
				return
			}
			cur.ScratchAddr = cur.PC
			target := uint16(int32(cur.PC) + int32(offset))
			cur.ScratchHi = uint8(target >> 8)
			cur.ScratchVal = uint8(target)
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			cur.SkipInterrupt = true
			oldHi := uint8(cur.ScratchAddr >> 8)
			if cur.ScratchHi == oldHi {
				cur.PC = uint16(cur.ScratchHi)<<8 | uint16(cur.ScratchVal)
				cur.InstructionComplete = true
				return
			}
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			cur.PC = uint16(cur.ScratchHi)<<8 | uint16(cur.ScratchVal)
			cur.InstructionComplete = true
		},
	}
}

// ZPRelativeTest builds the CMOS BBRn/BBSn pipeline: test bit `bit` of
// a zero-page operand against `set`, then branch relative exactly like
// Branch. Always 5 cycles when not taken, 6 when taken, 7 when taken
// across a page (fetch zp addr, read value, dummy re-read of the same
// zp address, then Branch's offset fetch and its taken-branch ticks).
func ZPRelativeTest(bit uint8, set bool) state.Pipeline {
	cond := func(cur *state.Registers) bool {
		return (cur.ScratchVal&(1<<bit) != 0) == set
	}
	tail := Branch(cond)
	return state.Pipeline{
		fetchZP,
		func(prev, cur *state.Registers, b bus.Bus) {
			cur.ScratchVal = b.Read(cur.ScratchAddr)
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			_ = b.Read(cur.ScratchAddr)
		},
		tail[0],
		tail[1],
		tail[2],
	}
}

// RMB builds the CMOS RMBn zero-page-clear-bit instruction (5 cycles:
// fetch addr, read, dummy write, write cleared value).
func RMB(bit uint8) state.Pipeline {
	return ZeroPage(RMW, nil, nil, func(cur *state.Registers, v uint8) uint8 {
		return v &^ (1 << bit)
	})
}

// SMB builds the CMOS SMBn zero-page-set-bit instruction.
func SMB(bit uint8) state.Pipeline {
	return ZeroPage(RMW, nil, nil, func(cur *state.Registers, v uint8) uint8 {
		return v | (1 << bit)
	})
}
