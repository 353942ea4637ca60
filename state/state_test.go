package state

import "testing"

func TestFlagSetAndClear(t *testing.T) {
	r := &Registers{}
	r.SetFlag(FlagCarry, true)
	if !r.FlagSet(FlagCarry) {
		t.Fatalf("expected carry set, P=%02X", r.P)
	}
	r.SetFlag(FlagCarry, false)
	if r.FlagSet(FlagCarry) {
		t.Fatalf("expected carry clear, P=%02X", r.P)
	}
}

func TestCheckZeroNegative(t *testing.T) {
	r := &Registers{}
	r.CheckZero(0)
	if !r.FlagSet(FlagZero) {
		t.Fatalf("expected zero flag set for 0")
	}
	r.CheckZero(1)
	if r.FlagSet(FlagZero) {
		t.Fatalf("expected zero flag clear for 1")
	}
	r.CheckNegative(0x80)
	if !r.FlagSet(FlagNegative) {
		t.Fatalf("expected negative flag set for 0x80")
	}
	r.CheckNegative(0x7F)
	if r.FlagSet(FlagNegative) {
		t.Fatalf("expected negative flag clear for 0x7F")
	}
}

func TestCheckCarry(t *testing.T) {
	r := &Registers{}
	r.CheckCarry(0x100)
	if !r.FlagSet(FlagCarry) {
		t.Fatalf("expected carry set for 0x100")
	}
	r.CheckCarry(0xFF)
	if r.FlagSet(FlagCarry) {
		t.Fatalf("expected carry clear for 0xFF")
	}
}

func TestCheckOverflow(t *testing.T) {
	r := &Registers{}
	// 0x50 + 0x50 = 0xA0: positive + positive = negative, overflow.
	r.CheckOverflow(0x50, 0x50, 0xA0)
	if !r.FlagSet(FlagOverflow) {
		t.Fatalf("expected overflow for 0x50+0x50=0xA0")
	}
	r.P = 0
	r.CheckOverflow(0x50, 0x10, 0x60)
	if r.FlagSet(FlagOverflow) {
		t.Fatalf("expected no overflow for 0x50+0x10=0x60")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	r := &Registers{A: 1}
	cp := r.Clone()
	cp.A = 2
	if r.A != 1 {
		t.Fatalf("mutating clone affected original: %d", r.A)
	}
}

func TestBufferSaveStateBeforeInstruction(t *testing.T) {
	b := NewBuffer()
	b.Current.A = 0x42
	b.SaveStateBeforeInstruction()
	b.Current.A = 0x99
	if b.Prev.A != 0x42 {
		t.Fatalf("Prev.A = %02X, want 42", b.Prev.A)
	}
	if b.Current.A != 0x99 {
		t.Fatalf("Current.A = %02X, want 99", b.Current.A)
	}
}

func TestBufferCoherent(t *testing.T) {
	b := NewBuffer()
	if !b.Coherent() {
		t.Fatalf("fresh buffer should be coherent")
	}
	b.Current.Pipeline = Pipeline{nil, nil, nil}
	b.Current.PipelineIndex = 1
	if !b.Coherent() {
		t.Fatalf("mid-pipeline index within bounds should be coherent")
	}
	b.Current.PipelineIndex = 5
	if b.Coherent() {
		t.Fatalf("out-of-bounds pipeline index should not be coherent")
	}
}

func TestStackAddr(t *testing.T) {
	r := &Registers{SP: 0xFD}
	if got := r.StackAddr(); got != 0x01FD {
		t.Fatalf("StackAddr() = %04X, want 01FD", got)
	}
}
