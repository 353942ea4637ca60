// Package irq defines the minimal interface external components use
// to assert a line into the CPU without the CPU depending on their
// concrete types. The CPU accepts a Sender only for the RDY wait-state
// input; IRQ and NMI are raised through the CPU's SignalIrq/SignalNmi
// methods, and there is no Sender hookup for them.
package irq

// Sender reports whether a line is currently held asserted. The
// engine polls an installed RDY Sender (see cpu.CPU.SetRDY) once per
// Clock call.
type Sender interface {
	// Raised indicates whether the line is currently held high.
	Raised() bool
}

// SenderFunc adapts a plain func into a Sender.
type SenderFunc func() bool

// Raised implements Sender.
func (f SenderFunc) Raised() bool { return f() }
