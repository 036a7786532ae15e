// Package timer1 models a 16-bit clear-timer-on-compare (CTC) timer whose
// comparator toggles an output pin in hardware, and computes prescaler and
// compare-register settings for requested frequencies and periods.
package timer1

import (
	"wavegen-go/errcode"
)

// ClockBase is the toggle clock in Hz: half of the 16 MHz CPU clock, so a
// compare value of 0 at prescaler 1 yields an 8 MHz square wave.
const ClockBase = 8_000_000

// MaxCompare is the largest value the 16-bit compare register holds.
const MaxCompare = 0xFFFF

// -----------------------------------------------------------------------------
// Prescaler
// -----------------------------------------------------------------------------

// Prescaler is the 3-bit clock-select code (1..5). Code 0 would stop the
// timer and codes 6..7 select external clocking; neither is used here.
type Prescaler uint8

const (
	Prescaler1    Prescaler = 1
	Prescaler8    Prescaler = 2
	Prescaler64   Prescaler = 3
	Prescaler256  Prescaler = 4
	Prescaler1024 Prescaler = 5
)

// ratios is indexed by selector code.
var ratios = [6]uint32{0, 1, 8, 64, 256, 1024}

// prescalers in ascending ratio order, for smallest-first scans.
var prescalers = [5]Prescaler{Prescaler1, Prescaler8, Prescaler64, Prescaler256, Prescaler1024}

func (p Prescaler) Valid() bool { return p >= Prescaler1 && p <= Prescaler1024 }

// Ratio returns the clock divider, or 0 for an invalid code.
func (p Prescaler) Ratio() uint32 {
	if !p.Valid() {
		return 0
	}
	return ratios[p]
}

// -----------------------------------------------------------------------------
// Output pin
// -----------------------------------------------------------------------------

// OutputPin selects which of the two compare-output pins carries the wave.
// Exactly one is connected to the comparator at any time.
type OutputPin uint8

const (
	PinA OutputPin = iota
	PinB
)

func (p OutputPin) String() string {
	if p == PinB {
		return "B"
	}
	return "A"
}

// Other returns the opposite pin.
func (p OutputPin) Other() OutputPin {
	if p == PinA {
		return PinB
	}
	return PinA
}

// PinByName maps "A"/"B" (as found in config) to an OutputPin.
func PinByName(name string) (OutputPin, error) {
	switch name {
	case "A", "a":
		return PinA, nil
	case "B", "b":
		return PinB, nil
	}
	return PinA, errcode.UnknownPin
}

// -----------------------------------------------------------------------------
// State
// -----------------------------------------------------------------------------

// State is the single source of truth for the generator: prescaler code,
// compare value and output routing. Frequency and period are always derived
// from it, never stored.
type State struct {
	Prescaler Prescaler
	Compare   uint16
	Pin       OutputPin
}

// Frequency returns the effective output frequency in Hz:
// ClockBase / ((compare+1) * ratio).
func (s State) Frequency() float64 {
	return float64(ClockBase) / (float64(uint32(s.Compare)+1) * float64(s.Prescaler.Ratio()))
}

// Period returns the effective output period in seconds.
func (s State) Period() float64 {
	return float64(uint32(s.Compare)+1) * float64(s.Prescaler.Ratio()) / float64(ClockBase)
}

// PeriodMicros returns the effective output period in microseconds.
func (s State) PeriodMicros() float64 {
	return float64(uint32(s.Compare)+1) * float64(s.Prescaler.Ratio()) / 8.0
}

// -----------------------------------------------------------------------------
// Register codec
// -----------------------------------------------------------------------------

// Control register layout (AVR Timer1 compatible):
// ctrlA holds the compare-output-enable bits, ctrlB the CTC mode bit and the
// 3-bit clock-select code. The 16-bit compare register rides alongside.
const (
	CtrlAToggleA   uint8 = 1 << 6 // connect comparator to pin A (toggle on match)
	CtrlAToggleB   uint8 = 1 << 4 // connect comparator to pin B
	CtrlBModeCTC   uint8 = 1 << 3 // clear counter on compare match
	CtrlBClockMask uint8 = 0x07
)

// Registers encodes the state into control-register bytes and compare value.
func (s State) Registers() (ctrlA, ctrlB uint8, compare uint16) {
	if s.Pin == PinB {
		ctrlA = CtrlAToggleB
	} else {
		ctrlA = CtrlAToggleA
	}
	ctrlB = CtrlBModeCTC | (uint8(s.Prescaler) & CtrlBClockMask)
	return ctrlA, ctrlB, s.Compare
}

// FromRegisters decodes live register contents back into a State.
// Clock-select codes outside 1..5 (stopped or externally clocked timer)
// cannot be represented and yield errcode.BadRegister.
func FromRegisters(ctrlA, ctrlB uint8, compare uint16) (State, error) {
	p := Prescaler(ctrlB & CtrlBClockMask)
	if !p.Valid() {
		return State{}, errcode.BadRegister
	}
	pin := PinA
	if ctrlA&CtrlAToggleB != 0 {
		pin = PinB
	}
	return State{Prescaler: p, Compare: compare, Pin: pin}, nil
}
