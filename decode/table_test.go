package decode_test

import (
	"testing"

	"github.com/go65xx/cycleemu/decode"
)

func TestTableRejectsInvalidVariant(t *testing.T) {
	if _, err := decode.Table(decode.Variant(99)); err == nil {
		t.Fatalf("expected error for invalid variant")
	}
}

func TestEveryOpcodeIsWired(t *testing.T) {
	for _, v := range []decode.Variant{decode.NMOS, decode.NMOSSimple, decode.WDC65C02, decode.Rockwell65C02} {
		table, err := decode.Table(v)
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		for op := 0; op < 256; op++ {
			if table[op] == nil {
				t.Fatalf("%s: opcode $%02X has no pipeline", v, op)
			}
		}
	}
}

func TestNMOSIllegalOpcodesDifferFromSimple(t *testing.T) {
	full, err := decode.Table(decode.NMOS)
	if err != nil {
		t.Fatal(err)
	}
	simple, err := decode.Table(decode.NMOSSimple)
	if err != nil {
		t.Fatal(err)
	}
	// 0x07 is SLO zp on full NMOS (5 cycles) vs a NOP zp (3 cycles) on
	// the simplified table.
	if len(full[0x07]) == len(simple[0x07]) {
		t.Fatalf("expected full and simple NMOS tables to diverge at $07")
	}
}

func TestCMOSVariantsDifferOnlyAtWaitStop(t *testing.T) {
	wdc, err := decode.Table(decode.WDC65C02)
	if err != nil {
		t.Fatal(err)
	}
	rockwell, err := decode.Table(decode.Rockwell65C02)
	if err != nil {
		t.Fatal(err)
	}
	for op := 0; op < 256; op++ {
		if op == 0xCB || op == 0xDB {
			continue
		}
		if len(wdc[op]) != len(rockwell[op]) {
			t.Fatalf("opcode $%02X: WDC/Rockwell pipeline length mismatch (%d vs %d)", op, len(wdc[op]), len(rockwell[op]))
		}
	}
}
