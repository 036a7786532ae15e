// Package console runs the serial text menu. A single key selects an
// action; the numeric actions then collect digits until end of line, so
// the loop never blocks waiting for a slow typist.
package console

import (
	"context"
	"io"
	"time"

	"wavegen-go/bus"
	"wavegen-go/services/generator"
	"wavegen-go/timer1"
	"wavegen-go/types"
	"wavegen-go/x/fmtx"
	"wavegen-go/x/strconvx"
)

type InputMode uint8

const (
	ModeFrequency InputMode = iota
	ModePeriod
)

type MenuItem struct {
	Key    byte
	Text   string
	Action func(c *Console)
}

var menu []MenuItem

// Assigned in init to break the menu -> showMenu -> menu initialization cycle.
func init() {
	menu = []MenuItem{
		{'f', "[f] Toggle input mode frequency <--> period", (*Console).toggleInputMode},
		{'e', "[e] Enter a value 1 .. 8000000 (freq or per)", (*Console).enterValue},
		{'p', "[p] Enter prescaler 1=1 2=8 3=64 4=256 5=1024", (*Console).enterPrescaler},
		{'r', "[r] Enter compare value 0 .. 65535", (*Console).enterCompare},
		{'o', "[o] Toggle output pin A <--> B", (*Console).toggleOutputPin},
		{'h', "[h] Toggle heartbeat on <--> off", (*Console).toggleHeartbeat},
		{'s', "[s] Show settings", (*Console).showSettings},
		{'S', "[S] Show menu", (*Console).showMenu},
	}
}

const menuTitle = "\r\n" +
	"------------------------------\r\n" +
	" Timer 1 Square Wave Generator\r\n" +
	"    0.12  ..  8000000 Hz\r\n" +
	"------------------------------\r\n"

// clrLine returns the cursor to the line start, blanks it and returns again.
const clrLine = "\r                                                                                \r"

var topicHeartbeatSet = bus.Topic{"heartbeat", "set"}

type Console struct {
	gen  *generator.Generator
	conn *bus.Connection
	port io.ReadWriter

	mode    InputMode
	pending func(c *Console, v int64)
	line    []byte
}

func New(gen *generator.Generator, conn *bus.Connection, port io.ReadWriter) *Console {
	return &Console{gen: gen, conn: conn, port: port}
}

// Run prints the menu and processes input bytes until ctx is cancelled.
// A zero-length read means no data is pending; back off briefly instead
// of spinning.
func (c *Console) Run(ctx context.Context) error {
	c.showMenu()

	buf := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := c.port.Read(buf)
		for _, b := range buf[:n] {
			c.handleByte(b)
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
}

// Start launches Run in a goroutine, matching the other services.
func (c *Console) Start(ctx context.Context) error {
	go func() {
		if err := c.Run(ctx); err != nil && err != context.Canceled {
			println("Warning: console:", err.Error())
		}
	}()
	return nil
}

func (c *Console) handleByte(b byte) {
	if c.pending != nil {
		switch b {
		case '\r':
		case '\n':
			c.finishEntry()
		default:
			c.line = append(c.line, b)
		}
		return
	}
	if b == '\r' || b == '\n' {
		return
	}
	c.print(clrLine)
	for _, item := range menu {
		if item.Key == b {
			item.Action(c)
			return
		}
	}
}

func (c *Console) beginEntry(prompt string, done func(c *Console, v int64)) {
	c.print(prompt)
	c.line = c.line[:0]
	c.pending = done
}

// finishEntry parses the collected digits. A garbled line parses as zero,
// which every range check below rejects.
func (c *Console) finishEntry() {
	done := c.pending
	c.pending = nil
	v, err := strconvx.ParseInt(string(c.line), 10, 64)
	if err != nil {
		v = 0
	}
	done(c, v)
}

func (c *Console) toggleInputMode() {
	if c.mode == ModeFrequency {
		c.mode = ModePeriod
		c.print("Input mode set to PERIOD ")
	} else {
		c.mode = ModeFrequency
		c.print("Input mode set to FREQUENCY ")
	}
}

func (c *Console) enterValue() {
	c.beginEntry("Enter value: ", func(c *Console, v int64) {
		if v < timer1.MinTarget || v > timer1.MaxTarget {
			c.print("Value out of range, allowed: 1 .. 8000000 (Hz or us)")
			return
		}
		if c.mode == ModeFrequency {
			c.gen.SetFrequency(uint32(v))
		} else {
			c.gen.SetPeriod(uint32(v))
		}
		c.showSettings()
	})
}

func (c *Console) enterPrescaler() {
	c.beginEntry("Enter prescaler code: ", func(c *Console, v int64) {
		if v < 1 || v > 5 {
			c.print("Value out of range, allowed: 1 .. 5 ")
			return
		}
		c.gen.SetPrescaler(uint8(v))
		c.showSettings()
	})
}

func (c *Console) enterCompare() {
	c.beginEntry("Enter compare value: ", func(c *Console, v int64) {
		if v < 0 || v > timer1.MaxCompare {
			c.print("Value out of range, allowed: 0 .. 65535 ")
			return
		}
		c.gen.SetCompare(uint32(v))
		c.showSettings()
	})
}

func (c *Console) toggleOutputPin() {
	s := c.gen.TogglePin()
	c.print("Output pin set to " + s.Pin.String())
}

// toggleHeartbeat asks the heartbeat service to flip its state; the reply
// carries the new state so the confirmation matches reality.
func (c *Console) toggleHeartbeat() {
	if c.conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	msg, err := c.conn.RequestWait(ctx, &bus.Message{
		Topic:   topicHeartbeatSet,
		Payload: types.HeartbeatToggle{},
	})
	if err != nil {
		c.print("Heartbeat service not responding ")
		return
	}
	if on, ok := msg.Payload.(bool); ok && on {
		c.print("Heartbeat on ")
	} else {
		c.print("Heartbeat off ")
	}
}

// showSettings prints the effective output values read back from the
// registers, plus the raw prescaler and compare settings.
func (c *Console) showSettings() {
	st := c.gen.Status()
	fmtx.Fprintf(c.port, "%.2f Hz  /  %.2f us, PRESC: %d, OCR1A: 0x%04X / %d ",
		st.FreqHz, st.PeriodUs, int(st.Prescaler), int(st.Compare), int(st.Compare))
}

func (c *Console) showMenu() {
	c.print(menuTitle)
	for _, item := range menu {
		c.print(item.Text)
		c.print("\r\n")
	}
	c.print("\r\nPress a key: ")
}

func (c *Console) print(s string) {
	c.port.Write([]byte(s))
}
