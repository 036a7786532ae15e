//go:build avr

package hal

import (
	"device/avr"

	"wavegen-go/timer1"
)

// HWTimer drives the real Timer1 register block.
type HWTimer struct{}

func (HWTimer) ApplyState(s timer1.State) {
	ctrlA, ctrlB, compare := s.Registers()
	avr.TCCR1A.Set(ctrlA)
	avr.TCCR1B.Set(ctrlB)
	// 16-bit compare register: high byte first, per the shared TEMP latch.
	avr.OCR1AH.Set(uint8(compare >> 8))
	avr.OCR1AL.Set(uint8(compare))
	avr.TIMSK1.Set(0)
}

func (HWTimer) SetOutputPin(pin timer1.OutputPin) {
	v := timer1.CtrlAToggleA
	if pin == timer1.PinB {
		v = timer1.CtrlAToggleB
	}
	avr.TCCR1A.Set(v)
}

func (HWTimer) ReadState() (timer1.State, error) {
	lo := avr.OCR1AL.Get() // low byte first latches the high byte
	hi := avr.OCR1AH.Get()
	return timer1.FromRegisters(avr.TCCR1A.Get(), avr.TCCR1B.Get(),
		uint16(hi)<<8|uint16(lo))
}
