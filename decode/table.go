package decode

import (
	"fmt"

	"github.com/go65xx/cycleemu/microop"
	"github.com/go65xx/cycleemu/state"
)

// Variant selects which of the four 65xx opcode maps a Table call
// builds.
type Variant int

const (
	// NMOS is the original MOS 6502/6510: full BCD ADC/SBC and the
	// complete matrix of undocumented combinational opcodes.
	NMOS Variant = iota
	// NMOSSimple models a plainer NMOS-family part (e.g. the Ricoh
	// 2A03/2A07 used in the NES, which drops decimal mode) and treats
	// every undocumented opcode as an inert NOP rather than committing
	// to one silicon revision's unstable combinational behavior.
	NMOSSimple
	// WDC65C02 is the WDC CMOS part: BCD-corrected N/Z on decimal
	// ADC/SBC, the fixed JMP (abs,X)/JMP (ind) bug, and WAI/STP.
	WDC65C02
	// Rockwell65C02 is the Rockwell CMOS part: identical to WDC65C02
	// except opcodes $CB/$DB are plain NOPs rather than WAI/STP.
	Rockwell65C02
	// variantCount is a bound, not a selectable variant.
	variantCount
)

func (v Variant) String() string {
	switch v {
	case NMOS:
		return "NMOS"
	case NMOSSimple:
		return "NMOSSimple"
	case WDC65C02:
		return "WDC65C02"
	case Rockwell65C02:
		return "Rockwell65C02"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// InvalidVariantError reports a Variant value outside the defined set.
type InvalidVariantError struct {
	Variant Variant
}

func (e InvalidVariantError) Error() string {
	return fmt.Sprintf("decode: invalid CPU variant %d", int(e.Variant))
}

// IsCMOS reports whether v is one of the 65C02 family.
func (v Variant) IsCMOS() bool {
	return v == WDC65C02 || v == Rockwell65C02
}

// Table builds the full 256-entry opcode pipeline table for v.
func Table(v Variant) ([256]state.Pipeline, error) {
	switch v {
	case NMOS:
		dec := microop.Decimal{Enabled: true, CMOSFixup: false}
		t := documented(dec, true, false)
		nmosIllegalFull(&t, dec)
		return t, nil
	case NMOSSimple:
		dec := microop.Decimal{Enabled: false, CMOSFixup: false}
		t := documented(dec, true, false)
		nmosIllegalSimple(&t)
		return t, nil
	case WDC65C02:
		dec := microop.Decimal{Enabled: true, CMOSFixup: true}
		t := documented(dec, false, true)
		cmosCore(&t, dec)
		t[0xCB] = state.Pipeline{microop.FetchOpcode, microop.Wait}
		t[0xDB] = state.Pipeline{microop.FetchOpcode, microop.Stop}
		return t, nil
	case Rockwell65C02:
		dec := microop.Decimal{Enabled: true, CMOSFixup: true}
		t := documented(dec, false, true)
		cmosCore(&t, dec)
		t[0xCB] = op(nopImplied())
		t[0xDB] = op(nopImplied())
		return t, nil
	default:
		var zero [256]state.Pipeline
		return zero, InvalidVariantError{Variant: v}
	}
}
