//go:build arduino

// Firmware for the Arduino Uno: square wave on D9/D10, menu on the USB
// serial port at 115200 baud, heartbeat on the built-in LED and an
// optional 16x2 I2C LCD showing the live settings.
package main

import (
	"context"
	"machine"
	"time"

	"wavegen-go/bus"
	"wavegen-go/hal"
	"wavegen-go/services/config"
	"wavegen-go/services/console"
	"wavegen-go/services/display"
	"wavegen-go/services/generator"
	"wavegen-go/services/heartbeat"
)

func main() {
	// Let the serial link settle before the menu is printed.
	time.Sleep(2 * time.Second)

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "uno")

	b := bus.NewBus(4)
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	hal.ConfigureBoard()
	gen := generator.New(hal.HWTimer{}, b.NewConnection("generator"))
	gen.Start(ctx)

	heartbeat.New(hal.LEDLamp{}, b.NewConnection("heartbeat")).Start(ctx)

	if err := machine.I2C0.Configure(machine.I2CConfig{}); err != nil {
		println("Warning: I2C init failed:", err.Error())
	} else if disp, err := display.NewLCD(machine.I2C0, b.NewConnection("display"), display.DefaultAddr); err != nil {
		println("Warning: no LCD found:", err.Error())
	} else {
		disp.Start(ctx)
	}

	cons := console.New(gen, b.NewConnection("console"), hal.SerialPort{})
	cons.Run(ctx)
}
