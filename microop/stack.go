package microop

import (
	"github.com/go65xx/cycleemu/bus"
	"github.com/go65xx/cycleemu/state"
)

// Push writes val(cur) to the current stack address and decrements SP.
// SP wraps within $00-$FF via uint8 arithmetic, so a push never leaves
// the $0100-$01FF page.
func Push(val func(cur *state.Registers) uint8) state.MicroOp {
	return func(prev, cur *state.Registers, b bus.Bus) {
		b.Write(cur.StackAddr(), val(cur))
		cur.SP--
	}
}

// Pull increments SP and reads the byte now on top of the stack into
// ScratchVal, for a following micro-op to consume.
func Pull(prev, cur *state.Registers, b bus.Bus) {
	cur.SP++
	cur.ScratchVal = b.Read(cur.StackAddr())
}

// PreIncrementDummyRead performs the throwaway read of the current
// stack location the pull-family instructions (PLA/PLP/PLX/PLY/RTS/RTI)
// perform before Pull moves SP (real silicon reads the bus every cycle).
func PreIncrementDummyRead(prev, cur *state.Registers, b bus.Bus) {
	_ = b.Read(cur.StackAddr())
}
