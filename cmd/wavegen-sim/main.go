// Host build of the generator: the timer is simulated, the menu runs on
// stdin/stdout. Useful for trying the solver without a board attached.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"wavegen-go/bus"
	"wavegen-go/hal"
	"wavegen-go/services/config"
	"wavegen-go/services/console"
	"wavegen-go/services/generator"
	"wavegen-go/services/heartbeat"
)

// stdio bundles stdin and stdout into the console's port.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = context.WithValue(ctx, config.CtxDeviceKey, "sim")

	println("[main] bootstrapping bus ...")
	b := bus.NewBus(8)

	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	gen := generator.New(hal.NewSimTimer(), b.NewConnection("generator"))
	gen.Start(ctx)

	heartbeat.New(&hal.SimLamp{}, b.NewConnection("heartbeat")).Start(ctx)

	println("[main] starting console on stdio ...")
	cons := console.New(gen, b.NewConnection("console"), stdio{})
	if err := cons.Run(ctx); err != nil && err != context.Canceled {
		println("[main] console:", err.Error())
	}
}
