package timer1

import (
	"math"

	"wavegen-go/errcode"
)

// Targets accepted by both solvers: 1 Hz .. 8 MHz, 1 µs .. 8 s.
const (
	MinTarget = 1
	MaxTarget = 8_000_000
)

// SolveFrequency picks the smallest prescaler whose rounded compare count
// still fits the 16-bit register, then rounds the real-valued count to the
// nearest integer. Smaller prescalers keep the discretization step
// (ratio/ClockBase) fine, so the effective output stays closest to the
// request; once round(ClockBase/ratio/hz) exceeds 65536 the next ratio is
// needed. For integer inputs this switches at 123 Hz, 16 Hz and 2 Hz.
//
// The returned state is not applied to hardware; it keeps the default pin.
func SolveFrequency(hz uint32) (State, error) {
	if hz < MinTarget || hz > MaxTarget {
		return State{}, errcode.OutOfRange
	}
	for _, p := range prescalers {
		count := math.Round(float64(ClockBase) / float64(p.Ratio()) / float64(hz))
		if count <= MaxCompare+1 {
			return State{Prescaler: p, Compare: uint16(count - 1)}, nil
		}
	}
	// Unreachable for valid input: 1 Hz at ratio 1024 counts to 7813.
	return State{}, errcode.OutOfRange
}

// SolvePeriod is the period-domain counterpart. The base prescaler is 8
// (a 1 µs step); the ratio is raised to 64, 256 or 1024 as soon as
// us*8/ratio would overflow the compare register, which happens above
// 65536 µs, 524288 µs and 2097152 µs. Unlike the frequency path the count
// is TRUNCATED, not rounded; the two paths intentionally differ.
func SolvePeriod(us uint32) (State, error) {
	if us < MinTarget || us > MaxTarget {
		return State{}, errcode.OutOfRange
	}
	return solvePeriod(us), nil
}

func solvePeriod(us uint32) State {
	if us == 0 {
		// Defensive: cannot be reached through SolvePeriod. The finest
		// step (0.125 µs) is the least wrong answer for "no period".
		return State{Prescaler: Prescaler1, Compare: 0}
	}
	for _, p := range prescalers[1:] {
		// Upgrade once the real-valued count us*8/ratio passes 65536. The
		// truncated count may still squeeze in at the boundary, but the
		// switch happens on the exact quotient.
		if us <= (MaxCompare+1)/8*p.Ratio() {
			return State{Prescaler: p, Compare: uint16(us*8/p.Ratio() - 1)}
		}
	}
	// Unreachable: 8e6 µs at ratio 1024 counts to 62500.
	return State{Prescaler: Prescaler1024, Compare: MaxCompare}
}
