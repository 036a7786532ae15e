// Package display mirrors the generator status on a 16x2 character LCD,
// so the effective output is visible without a serial monitor attached.
package display

import (
	"context"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hd44780i2c"

	"wavegen-go/bus"
	"wavegen-go/types"
	"wavegen-go/x/fmtx"
)

// DefaultAddr is the usual PCF8574 backpack address.
const DefaultAddr = 0x27

var topicStatus = bus.Topic{"status", "generator"}

// Screen is the subset of the LCD driver the service needs; a fake can
// stand in for the hardware in tests.
type Screen interface {
	ClearDisplay() error
	SetCursor(col, row uint8) error
	Print(data []byte) error
}

type Service struct {
	screen Screen
	conn   *bus.Connection
	cols   int
}

func New(screen Screen, conn *bus.Connection) *Service {
	return &Service{screen: screen, conn: conn, cols: 16}
}

// NewLCD wires the service to an HD44780 behind an I2C backpack.
func NewLCD(i2cBus drivers.I2C, conn *bus.Connection, addr uint8) (*Service, error) {
	d := hd44780i2c.New(i2cBus, addr)
	err := d.Configure(hd44780i2c.Config{
		Width:  16,
		Height: 2,
	})
	if err != nil {
		return nil, err
	}
	return New(&d, conn), nil
}

// Start launches the status watcher in a goroutine. The retained status
// message paints the first frame immediately.
func (s *Service) Start(ctx context.Context) error {
	go s.serviceLoop(ctx)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context) {
	sub := s.conn.Subscribe(topicStatus)
	defer s.conn.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			println("Info: display service stopping")
			return
		case msg := <-sub.Channel():
			st, ok := msg.Payload.(types.GeneratorStatus)
			if !ok {
				continue
			}
			if err := s.show(st); err != nil {
				println("Warning: display:", err.Error())
			}
		}
	}
}

func (s *Service) show(st types.GeneratorStatus) error {
	line1 := fmtx.Sprintf("%.2f Hz %s", st.FreqHz, st.Pin)
	line2 := fmtx.Sprintf("P%d OCR %d", int(st.Prescaler), int(st.Compare))

	if err := s.screen.ClearDisplay(); err != nil {
		return err
	}
	if err := s.screen.SetCursor(0, 0); err != nil {
		return err
	}
	if err := s.screen.Print(s.trunc(line1)); err != nil {
		return err
	}
	if err := s.screen.SetCursor(0, 1); err != nil {
		return err
	}
	return s.screen.Print(s.trunc(line2))
}

// trunc cuts a line to the panel width in place, no allocation.
func (s *Service) trunc(line string) []byte {
	b := []byte(line)
	if len(b) > s.cols {
		return b[:s.cols]
	}
	return b
}
