package hal

import (
	"sync"

	"wavegen-go/timer1"
)

// SimTimer is a register-accurate stand-in for the hardware timer: it stores
// the same control bytes the AVR backend would write, so readback decoding
// and pin-routing behavior are exercised exactly.
type SimTimer struct {
	mu      sync.Mutex
	ctrlA   uint8
	ctrlB   uint8
	compare uint16
	intMask uint8
}

func NewSimTimer() *SimTimer {
	return &SimTimer{intMask: 0xFF} // power-on garbage until first ApplyState
}

func (t *SimTimer) ApplyState(s timer1.State) {
	ctrlA, ctrlB, compare := s.Registers()
	t.mu.Lock()
	t.ctrlA = ctrlA
	t.ctrlB = ctrlB
	t.compare = compare
	t.intMask = 0
	t.mu.Unlock()
}

func (t *SimTimer) SetOutputPin(pin timer1.OutputPin) {
	t.mu.Lock()
	t.ctrlA = 0
	if pin == timer1.PinB {
		t.ctrlA = timer1.CtrlAToggleB
	} else {
		t.ctrlA = timer1.CtrlAToggleA
	}
	t.mu.Unlock()
}

func (t *SimTimer) ReadState() (timer1.State, error) {
	t.mu.Lock()
	ctrlA, ctrlB, compare := t.ctrlA, t.ctrlB, t.compare
	t.mu.Unlock()
	return timer1.FromRegisters(ctrlA, ctrlB, compare)
}

// InterruptMask exposes the simulated mask register for assertions.
func (t *SimTimer) InterruptMask() uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.intMask
}

// SimLamp records the indicator level.
type SimLamp struct {
	mu    sync.Mutex
	on    bool
	edges int
}

func (l *SimLamp) Set(on bool) {
	l.mu.Lock()
	if on != l.on {
		l.edges++
	}
	l.on = on
	l.mu.Unlock()
}

func (l *SimLamp) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

// Edges counts level changes since creation.
func (l *SimLamp) Edges() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.edges
}
