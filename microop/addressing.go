package microop

import (
	"github.com/go65xx/cycleemu/bus"
	"github.com/go65xx/cycleemu/state"
)

// LoadOp consumes cur.ScratchVal (already fetched by the addressing
// segment) and completes the instruction.
type LoadOp = state.MicroOp

// StoreSource supplies the byte an addressing segment should write.
type StoreSource func(cur *state.Registers) uint8

// RMWOp transforms the value read from an RMW addressing segment,
// returning the value to write back. Flags are updated as a side
// effect on cur exactly as the ALU helpers in alu.go do.
type RMWOp func(cur *state.Registers, v uint8) uint8

func finishLoad(op LoadOp) state.MicroOp {
	return func(prev, cur *state.Registers, b bus.Bus) {
		op(prev, cur, b)
		cur.InstructionComplete = true
	}
}

// Immediate builds the 1-micro-op segment for #i addressing: fetch the
// operand byte and immediately apply op. Total instruction length is 2
// cycles once FetchOpcode is prepended by the decode table.
func Immediate(op LoadOp) state.Pipeline {
	return state.Pipeline{
		func(prev, cur *state.Registers, b bus.Bus) {
			cur.ScratchVal = b.Read(cur.PC)
			cur.PC++
			op(prev, cur, b)
			cur.InstructionComplete = true
		},
	}
}

// Accumulator builds the 1-micro-op, no-bus-access segment used by the
// accumulator forms of ASL/LSR/ROL/ROR. Total instruction length is 2.
func Accumulator(op LoadOp) state.Pipeline {
	return state.Pipeline{finishLoad(op)}
}

// Implied builds the 1-internal-cycle segment used by register and
// flag instructions (INX, CLC, TAX, ...). Total instruction length is 2.
func Implied(op LoadOp) state.Pipeline {
	return state.Pipeline{finishLoad(op)}
}

func fetchZP(prev, cur *state.Registers, b bus.Bus) {
	cur.ScratchAddr = uint16(b.Read(cur.PC))
	cur.PC++
}

// ZeroPage builds the addressing segment for zp. Lengths: Load/Store
// 2 (total 3), RMW 4 (total 5).
func ZeroPage(kind AccessKind, load LoadOp, src StoreSource, rmw RMWOp) state.Pipeline {
	switch kind {
	case Load:
		return state.Pipeline{
			fetchZP,
			func(prev, cur *state.Registers, b bus.Bus) {
				cur.ScratchVal = b.Read(cur.ScratchAddr)
				load(prev, cur, b)
				cur.InstructionComplete = true
			},
		}
	case Store:
		return state.Pipeline{
			fetchZP,
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, src(cur))
				cur.InstructionComplete = true
			},
		}
	default: // RMW
		return state.Pipeline{
			fetchZP,
			func(prev, cur *state.Registers, b bus.Bus) {
				cur.ScratchVal = b.Read(cur.ScratchAddr)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, cur.ScratchVal)
				cur.ScratchVal = rmw(cur, cur.ScratchVal)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, cur.ScratchVal)
				cur.InstructionComplete = true
			},
		}
	}
}

func zpIndexed(index func(cur *state.Registers) uint8) state.MicroOp {
	return func(prev, cur *state.Registers, b bus.Bus) {
		base := cur.ScratchAddr
		_ = b.Read(base) // dummy read of the unindexed address
		cur.ScratchAddr = uint16(uint8(base) + index(cur))
	}
}

// ZeroPageIndexed builds the zp,X / zp,Y segment. index reports the
// register value to add (wrapping within page 0, never crossing).
// Lengths: Load/Store 3 (total 4), RMW 5 (total 6).
func ZeroPageIndexed(kind AccessKind, index func(*state.Registers) uint8, load LoadOp, src StoreSource, rmw RMWOp) state.Pipeline {
	idx := zpIndexed(index)
	switch kind {
	case Load:
		return state.Pipeline{
			fetchZP,
			idx,
			func(prev, cur *state.Registers, b bus.Bus) {
				cur.ScratchVal = b.Read(cur.ScratchAddr)
				load(prev, cur, b)
				cur.InstructionComplete = true
			},
		}
	case Store:
		return state.Pipeline{
			fetchZP,
			idx,
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, src(cur))
				cur.InstructionComplete = true
			},
		}
	default:
		return state.Pipeline{
			fetchZP,
			idx,
			func(prev, cur *state.Registers, b bus.Bus) {
				cur.ScratchVal = b.Read(cur.ScratchAddr)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, cur.ScratchVal)
				cur.ScratchVal = rmw(cur, cur.ScratchVal)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, cur.ScratchVal)
				cur.InstructionComplete = true
			},
		}
	}
}

func fetchAbsolute(prev, cur *state.Registers, b bus.Bus) {
	cur.ScratchAddr = uint16(b.Read(cur.PC))
	cur.PC++
}

func fetchAbsoluteHi(prev, cur *state.Registers, b bus.Bus) {
	cur.ScratchHi = b.Read(cur.PC)
	cur.PC++
	cur.ScratchAddr |= uint16(cur.ScratchHi) << 8
}

// Absolute builds the abs segment. Lengths: Load/Store 3 (total 4),
// RMW 5 (total 6).
func Absolute(kind AccessKind, load LoadOp, src StoreSource, rmw RMWOp) state.Pipeline {
	switch kind {
	case Load:
		return state.Pipeline{
			fetchAbsolute,
			fetchAbsoluteHi,
			func(prev, cur *state.Registers, b bus.Bus) {
				cur.ScratchVal = b.Read(cur.ScratchAddr)
				load(prev, cur, b)
				cur.InstructionComplete = true
			},
		}
	case Store:
		return state.Pipeline{
			fetchAbsolute,
			fetchAbsoluteHi,
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, src(cur))
				cur.InstructionComplete = true
			},
		}
	default:
		return state.Pipeline{
			fetchAbsolute,
			fetchAbsoluteHi,
			func(prev, cur *state.Registers, b bus.Bus) {
				cur.ScratchVal = b.Read(cur.ScratchAddr)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, cur.ScratchVal)
				cur.ScratchVal = rmw(cur, cur.ScratchVal)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, cur.ScratchVal)
				cur.InstructionComplete = true
			},
		}
	}
}

// absoluteIndexedHi computes the unindexed hi byte, the indexed target
// address, and whether the index crossed a page, leaving ScratchAddr
// as the *uncorrected* address (same hi byte, wrapped lo byte) for the
// caller's next dummy/real access, and recording in ScratchPageCrossed
// whether correctedAbsoluteIndexed must add 0x100 to reach the real
// target.
func absoluteIndexedHi(index func(*state.Registers) uint8) state.MicroOp {
	return func(prev, cur *state.Registers, b bus.Bus) {
		hi := b.Read(cur.PC)
		cur.PC++
		lo := uint8(cur.ScratchAddr)
		newLo := lo + index(cur)
		cur.ScratchPageCrossed = newLo < lo
		cur.ScratchHi = hi
		// Uncorrected address: same hi, wrapped lo. Used for the
		// dummy/early read every indexed mode performs on this cycle's
		// successor.
		cur.ScratchAddr = uint16(hi)<<8 | uint16(newLo)
	}
}

func correctedAbsoluteIndexed(cur *state.Registers) uint16 {
	if cur.ScratchPageCrossed {
		return cur.ScratchAddr + 0x100
	}
	return cur.ScratchAddr
}

// AbsoluteIndexed builds the abs,X / abs,Y segment. Load is 3-or-4
// (total 4-or-5, cheap when the index does not cross a page). Store
// and RMW are always worst case (total 5 and 7) since real silicon
// always performs the dummy read/write at the uncorrected address.
func AbsoluteIndexed(kind AccessKind, index func(*state.Registers) uint8, load LoadOp, src StoreSource, rmw RMWOp) state.Pipeline {
	hi := absoluteIndexedHi(index)
	switch kind {
	case Load:
		return state.Pipeline{
			fetchAbsolute,
			hi,
			func(prev, cur *state.Registers, b bus.Bus) {
				v := b.Read(cur.ScratchAddr)
				if !cur.ScratchPageCrossed {
					cur.ScratchVal = v
					load(prev, cur, b)
					cur.InstructionComplete = true
					return
				}
				// Wrong-page read is discarded; the teacher's hardware
				// model never reuses it even as a speculative value.
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				cur.ScratchVal = b.Read(correctedAbsoluteIndexed(cur))
				load(prev, cur, b)
				cur.InstructionComplete = true
			},
		}
	case Store:
		return state.Pipeline{
			fetchAbsolute,
			hi,
			func(prev, cur *state.Registers, b bus.Bus) {
				_ = b.Read(cur.ScratchAddr)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(correctedAbsoluteIndexed(cur), src(cur))
				cur.InstructionComplete = true
			},
		}
	default:
		return state.Pipeline{
			fetchAbsolute,
			hi,
			func(prev, cur *state.Registers, b bus.Bus) {
				_ = b.Read(cur.ScratchAddr)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				cur.ScratchAddr = correctedAbsoluteIndexed(cur)
				cur.ScratchVal = b.Read(cur.ScratchAddr)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, cur.ScratchVal)
				cur.ScratchVal = rmw(cur, cur.ScratchVal)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, cur.ScratchVal)
				cur.InstructionComplete = true
			},
		}
	}
}

// IndirectX builds the (zp,X) segment: total 6 (Load/Store; this mode
// has no RMW forms in any variant except the SLO/RLA/... illegal
// combos, which reuse the RMW branch).
func IndirectX(kind AccessKind, load LoadOp, src StoreSource, rmw RMWOp) state.Pipeline {
	addIndex := func(prev, cur *state.Registers, b bus.Bus) {
		ptr := cur.ScratchAddr
		_ = b.Read(ptr)
		cur.ScratchAddr = uint16(uint8(ptr) + cur.X)
	}
	readPtr := func(prev, cur *state.Registers, b bus.Bus) {
		lo := b.Read(cur.ScratchAddr)
		cur.ScratchHi = uint8(cur.ScratchAddr) // stash ptr lo byte for the +1 wrap below
		cur.ScratchVal = lo
	}
	readPtrHi := func(prev, cur *state.Registers, b bus.Bus) {
		zp := cur.ScratchHi + 1
		hi := b.Read(uint16(zp))
		cur.ScratchAddr = uint16(hi)<<8 | uint16(cur.ScratchVal)
	}
	switch kind {
	case Store:
		return state.Pipeline{
			fetchZP, addIndex, readPtr, readPtrHi,
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, src(cur))
				cur.InstructionComplete = true
			},
		}
	case RMW:
		return state.Pipeline{
			fetchZP, addIndex, readPtr, readPtrHi,
			func(prev, cur *state.Registers, b bus.Bus) {
				cur.ScratchVal = b.Read(cur.ScratchAddr)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, cur.ScratchVal)
				cur.ScratchVal = rmw(cur, cur.ScratchVal)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, cur.ScratchVal)
				cur.InstructionComplete = true
			},
		}
	default:
		return state.Pipeline{
			fetchZP, addIndex, readPtr, readPtrHi,
			func(prev, cur *state.Registers, b bus.Bus) {
				cur.ScratchVal = b.Read(cur.ScratchAddr)
				load(prev, cur, b)
				cur.InstructionComplete = true
			},
		}
	}
}

// IndirectY builds the (zp),Y segment. Load is 4-or-5 (total 5-or-6).
// Store (and the illegal RMW combos riding this mode) are always
// worst case (total 6 / 8).
func IndirectY(kind AccessKind, load LoadOp, src StoreSource, rmw RMWOp) state.Pipeline {
	readPtrLo := func(prev, cur *state.Registers, b bus.Bus) {
		cur.ScratchVal = b.Read(cur.ScratchAddr)
	}
	readPtrHi := func(prev, cur *state.Registers, b bus.Bus) {
		zp := uint8(cur.ScratchAddr) + 1
		hi := b.Read(uint16(zp))
		lo := cur.ScratchVal
		newLo := lo + cur.Y
		cur.ScratchPageCrossed = newLo < lo
		cur.ScratchHi = hi
		cur.ScratchAddr = uint16(hi)<<8 | uint16(newLo)
	}
	switch kind {
	case Store:
		return state.Pipeline{
			fetchZP, readPtrLo, readPtrHi,
			func(prev, cur *state.Registers, b bus.Bus) {
				_ = b.Read(cur.ScratchAddr)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(correctedAbsoluteIndexed(cur), src(cur))
				cur.InstructionComplete = true
			},
		}
	case RMW:
		return state.Pipeline{
			fetchZP, readPtrLo, readPtrHi,
			func(prev, cur *state.Registers, b bus.Bus) {
				_ = b.Read(cur.ScratchAddr)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				cur.ScratchAddr = correctedAbsoluteIndexed(cur)
				cur.ScratchVal = b.Read(cur.ScratchAddr)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, cur.ScratchVal)
				cur.ScratchVal = rmw(cur, cur.ScratchVal)
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				b.Write(cur.ScratchAddr, cur.ScratchVal)
				cur.InstructionComplete = true
			},
		}
	default:
		return state.Pipeline{
			fetchZP, readPtrLo, readPtrHi,
			func(prev, cur *state.Registers, b bus.Bus) {
				v := b.Read(cur.ScratchAddr)
				if !cur.ScratchPageCrossed {
					cur.ScratchVal = v
					load(prev, cur, b)
					cur.InstructionComplete = true
				}
			},
			func(prev, cur *state.Registers, b bus.Bus) {
				cur.ScratchVal = b.Read(correctedAbsoluteIndexed(cur))
				load(prev, cur, b)
				cur.InstructionComplete = true
			},
		}
	}
}

// JMPAbsolute builds plain 3-cycle JMP $nnnn.
func JMPAbsolute() state.Pipeline {
	return state.Pipeline{
		fetchAbsolute,
		func(prev, cur *state.Registers, b bus.Bus) {
			hi := b.Read(cur.PC)
			cur.PC = uint16(hi)<<8 | cur.ScratchAddr
			cur.InstructionComplete = true
		},
	}
}

// JMPIndirect builds JMP ($nnnn). buggy selects the NMOS page-wrap
// fault (the hi-byte fetch wraps within the same page instead of
// crossing into the next one); CMOS variants pass buggy=false.
func JMPIndirect(buggy bool) state.Pipeline {
	return state.Pipeline{
		fetchAbsolute,
		fetchAbsoluteHi,
		func(prev, cur *state.Registers, b bus.Bus) {
			cur.ScratchVal = b.Read(cur.ScratchAddr)
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			ptr := cur.ScratchAddr
			var hiAddr uint16
			if buggy {
				hiAddr = uint16(cur.ScratchHi)<<8 | uint16(uint8(ptr)+1)
			} else {
				hiAddr = ptr + 1
			}
			hi := b.Read(hiAddr)
			cur.PC = uint16(hi)<<8 | uint16(cur.ScratchVal)
			cur.InstructionComplete = true
		},
	}
}

// JMPAbsoluteIndexedX builds the CMOS-only JMP ($nnnn,X), 6 cycles
// total: the extra internal cycle over JMP (abs) pays for the index
// add before the pointer is dereferenced.
func JMPAbsoluteIndexedX() state.Pipeline {
	return state.Pipeline{
		fetchAbsolute,
		func(prev, cur *state.Registers, b bus.Bus) {
			cur.ScratchHi = b.Read(cur.PC)
			cur.PC++
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			base := uint16(cur.ScratchHi)<<8 | cur.ScratchAddr
			cur.ScratchAddr = base + uint16(cur.X)
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			cur.ScratchVal = b.Read(cur.ScratchAddr)
		},
		func(prev, cur *state.Registers, b bus.Bus) {
			hi := b.Read(cur.ScratchAddr + 1)
			cur.PC = uint16(hi)<<8 | uint16(cur.ScratchVal)
			cur.InstructionComplete = true
		},
	}
}
