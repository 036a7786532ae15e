// Package hal separates the generator logic from the timer hardware so the
// solver, the services and the tests all run against a simulated register
// set; only the AVR backend touches real registers.
package hal

import (
	"wavegen-go/timer1"
)

// Timer programs the 16-bit CTC timer.
type Timer interface {
	// ApplyState writes prescaler, compare and output-routing registers and
	// always leaves the timer interrupt masked: output toggling is done
	// entirely by the hardware comparator.
	ApplyState(s timer1.State)

	// SetOutputPin reroutes the comparator to the given pin, disconnecting
	// the other one. Prescaler and compare value are untouched.
	SetOutputPin(pin timer1.OutputPin)

	// ReadState reads the live registers back. Idempotent, no side effects.
	ReadState() (timer1.State, error)
}

// Lamp is the heartbeat indicator.
type Lamp interface {
	Set(on bool)
}
