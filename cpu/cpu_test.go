package cpu_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"

	"github.com/go65xx/cycleemu/cpu"
	"github.com/go65xx/cycleemu/decode"
	"github.com/go65xx/cycleemu/state"
)

// flatMemory is a flat 64KB RAM, private to this package's tests, the
// same shape the microop tests use rather than depending on a shared
// public memory package.
type flatMemory struct {
	ram [65536]uint8
}

func (m *flatMemory) Read(addr uint16) uint8     { return m.ram[addr] }
func (m *flatMemory) Write(addr uint16, v uint8) { m.ram[addr] = v }
func (m *flatMemory) Peek(addr uint16) uint8     { return m.ram[addr] }

func newCPU(t *testing.T, v decode.Variant) (*cpu.CPU, *flatMemory) {
	t.Helper()
	c, err := cpu.New(v)
	if err != nil {
		t.Fatalf("cpu.New(%s): %v", v, err)
	}
	mem := &flatMemory{}
	mem.ram[state.ResetVector] = 0x00
	mem.ram[state.ResetVector+1] = 0x02
	c.Reset(mem)
	return c, mem
}

func TestNewRejectsInvalidVariant(t *testing.T) {
	if _, err := cpu.New(decode.Variant(42)); err == nil {
		t.Fatalf("expected error for invalid variant")
	}
}

func TestResetSetsPCFromVector(t *testing.T) {
	c, _ := newCPU(t, decode.NMOS)
	if c.Buffer().Current.PC != 0x0200 {
		t.Fatalf("PC = %04X, want 0200", c.Buffer().Current.PC)
	}
	if c.Buffer().Current.SP != 0xFD {
		t.Fatalf("SP = %02X, want FD", c.Buffer().Current.SP)
	}
}

func TestStepLDAImmediateTakesTwoCycles(t *testing.T) {
	c, mem := newCPU(t, decode.NMOS)
	mem.ram[0x0200] = 0xA9 // LDA #$42
	mem.ram[0x0201] = 0x42
	ticks, err := c.Step(mem)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if ticks != 2 {
		t.Fatalf("ticks = %d, want 2", ticks)
	}
	if c.Buffer().Current.A != 0x42 {
		t.Fatalf("A = %02X, want 42", c.Buffer().Current.A)
	}
}

func TestStepSnapshotDiscipline(t *testing.T) {
	c, mem := newCPU(t, decode.NMOS)
	mem.ram[0x0200] = 0xA9
	mem.ram[0x0201] = 0x42
	before := c.Buffer().Current.Clone()
	if _, err := c.Step(mem); err != nil {
		t.Fatal(err)
	}
	// Prev after Step must be a field-for-field copy of Current as it
	// stood immediately before the instruction began.
	if diff := deep.Equal(before, c.Buffer().Prev); diff != nil {
		t.Fatalf("Prev does not match the pre-instruction snapshot: %v\nbefore:\n%s\nPrev:\n%s",
			diff, spew.Sdump(before), spew.Sdump(c.Buffer().Prev))
	}
	if c.Buffer().Current.A != 0x42 {
		t.Fatalf("Current.A = %02X, want 42\n%s", c.Buffer().Current.A, spew.Sdump(c.Buffer().Current))
	}
}

func TestJamHalts(t *testing.T) {
	c, mem := newCPU(t, decode.NMOS)
	mem.ram[0x0200] = 0x02 // JAM
	if _, err := c.Step(mem); err != nil {
		t.Fatalf("first step should not itself error: %v", err)
	}
	if _, err := c.Step(mem); err == nil {
		t.Fatalf("expected HaltError on second Step after JAM")
	} else if _, ok := err.(cpu.HaltError); !ok {
		t.Fatalf("expected HaltError, got %T: %v", err, err)
	}
}

func TestIrqMaskedByInterruptDisable(t *testing.T) {
	c, mem := newCPU(t, decode.NMOS)
	mem.ram[0x0200] = 0x78 // SEI
	if _, err := c.Step(mem); err != nil {
		t.Fatal(err)
	}
	c.SignalIrq()
	pcBefore := c.Buffer().Current.PC
	mem.ram[int(pcBefore)] = 0xEA // NOP
	if _, err := c.Step(mem); err != nil {
		t.Fatal(err)
	}
	if c.Buffer().Current.PC != pcBefore+1 {
		t.Fatalf("expected masked IRQ to leave the NOP uninterrupted, PC=%04X", c.Buffer().Current.PC)
	}
}

func TestNmiOverridesMaskedIrq(t *testing.T) {
	c, mem := newCPU(t, decode.NMOS)
	mem.ram[state.NMIVector] = 0x00
	mem.ram[state.NMIVector+1] = 0x40
	mem.ram[0x0200] = 0x78 // SEI: mask IRQ, but NMI is non-maskable
	if _, err := c.Step(mem); err != nil {
		t.Fatal(err)
	}
	c.SignalIrq()
	c.SignalNmi()
	mem.ram[0x0201] = 0xEA
	if _, err := c.Step(mem); err != nil {
		t.Fatal(err)
	}
	if c.Buffer().Current.PC != 0x4000 {
		t.Fatalf("expected NMI to service despite masked IRQ, PC=%04X", c.Buffer().Current.PC)
	}
}

func TestResetOutranksEverything(t *testing.T) {
	c, mem := newCPU(t, decode.NMOS)
	mem.ram[0x0200] = 0xEA
	c.SignalIrq()
	c.SignalNmi()
	c.SignalReset()
	if _, err := c.Step(mem); err != nil {
		t.Fatal(err)
	}
	if c.Buffer().Current.PC != 0x0200 {
		t.Fatalf("expected reset vector PC, got %04X", c.Buffer().Current.PC)
	}
}

func TestPHAPLARoundTrip(t *testing.T) {
	c, mem := newCPU(t, decode.NMOS)
	mem.ram[0x0200] = 0xA9 // LDA #$7E
	mem.ram[0x0201] = 0x7E
	mem.ram[0x0202] = 0x48 // PHA
	mem.ram[0x0203] = 0xA9 // LDA #$00
	mem.ram[0x0204] = 0x00
	mem.ram[0x0205] = 0x68 // PLA
	for i := 0; i < 4; i++ {
		if _, err := c.Step(mem); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if c.Buffer().Current.A != 0x7E {
		t.Fatalf("A = %02X, want 7E after PHA/PLA round trip", c.Buffer().Current.A)
	}
}

func TestRunAdvancesExactlyNClocksThroughJam(t *testing.T) {
	c, mem := newCPU(t, decode.NMOS)
	mem.ram[0x0200] = 0xEA
	mem.ram[0x0201] = 0x02 // JAM
	n, err := c.Run(mem, 10)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 10 {
		t.Fatalf("n = %d, want 10 (Run always advances exactly n clocks)", n)
	}
	if c.Buffer().Current.Status != state.Jammed {
		t.Fatalf("expected CPU to be Jammed after running past the JAM opcode, got %v", c.Buffer().Current.Status)
	}
}
