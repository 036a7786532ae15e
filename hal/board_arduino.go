//go:build arduino

package hal

import (
	"machine"

	"wavegen-go/timer1"
)

// The comparator outputs are fixed by the silicon: pin A is D9 (OC1A) and
// pin B is D10 (OC1B). The heartbeat lamp is the built-in LED on D13.

// ConfigureBoard puts the wave pins and the LED into output mode. The
// comparator only drives a pin whose data direction is output.
func ConfigureBoard() {
	machine.D9.Configure(machine.PinConfig{Mode: machine.PinOutput})
	machine.D10.Configure(machine.PinConfig{Mode: machine.PinOutput})
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
}

// WavePin returns the board pin carrying the given comparator output.
func WavePin(pin timer1.OutputPin) machine.Pin {
	if pin == timer1.PinB {
		return machine.D10
	}
	return machine.D9
}

// LEDLamp drives the built-in LED.
type LEDLamp struct{}

func (LEDLamp) Set(on bool) { machine.LED.Set(on) }

// SerialPort adapts machine.Serial to io.ReadWriter for the console.
// Read drains what is buffered and returns immediately; the console loop
// polls it.
type SerialPort struct{}

func (SerialPort) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}

func (SerialPort) Write(p []byte) (int, error) {
	return machine.Serial.Write(p)
}
