// Serial terminal for the board: bridges stdin and stdout to the
// generator's menu, so no separate monitor program is needed.
//
//	wavegen-term [-list] [-baud 115200] /dev/ttyACM0
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.bug.st/serial"
)

func main() {
	baud := flag.Int("baud", 115200, "baud rate")
	list := flag.Bool("list", false, "list serial ports and exit")
	flag.Parse()

	if *list {
		ports, err := serial.GetPortsList()
		if err != nil {
			println("Error:", err.Error())
			os.Exit(1)
		}
		for _, p := range ports {
			println(p)
		}
		return
	}

	if flag.NArg() != 1 {
		println("Usage: wavegen-term [-list] [-baud 115200] <port>")
		os.Exit(2)
	}

	port, err := serial.Open(flag.Arg(0), &serial.Mode{BaudRate: *baud})
	if err != nil {
		println("Error: open", flag.Arg(0)+":", err.Error())
		os.Exit(1)
	}
	defer port.Close()

	// Bounded reads so the pump loop can notice shutdown.
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		println("Error: set read timeout:", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go pump(os.Stdin, port)

	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, err := port.Read(buf)
		if n > 0 {
			os.Stdout.Write(buf[:n])
		}
		if err != nil {
			println("Error: read:", err.Error())
			return
		}
	}
}

// pump copies keystrokes to the board until stdin closes.
func pump(in io.Reader, out io.Writer) {
	buf := make([]byte, 64)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
