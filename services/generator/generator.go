// Package generator owns the timer state: it is the only writer of the
// hardware registers. The square wave itself is produced by the comparator;
// nothing here runs per-cycle.
package generator

import (
	"context"
	"sync"

	"wavegen-go/bus"
	"wavegen-go/errcode"
	"wavegen-go/hal"
	"wavegen-go/timer1"
	"wavegen-go/types"
)

var (
	topicConfig = bus.Topic{"config", "generator"}
	topicStatus = bus.Topic{"status", "generator"}
)

// DefaultFreqHz is applied at startup, before any config arrives.
const DefaultFreqHz = 1000

type Generator struct {
	hw   hal.Timer
	conn *bus.Connection

	mu    sync.Mutex
	state timer1.State
}

// New programs the default signal (1000 Hz on pin A) and publishes the
// first retained status.
func New(hw hal.Timer, conn *bus.Connection) *Generator {
	g := &Generator{hw: hw, conn: conn}
	s, _ := timer1.SolveFrequency(DefaultFreqHz)
	g.state = s
	g.hw.ApplyState(s)
	g.publish()
	return g
}

// SetFrequency solves for hz, keeps the current pin routing, applies and
// returns the new state.
func (g *Generator) SetFrequency(hz uint32) (timer1.State, error) {
	s, err := timer1.SolveFrequency(hz)
	if err != nil {
		return timer1.State{}, err
	}
	return g.apply(s), nil
}

// SetPeriod is the period-domain counterpart of SetFrequency.
func (g *Generator) SetPeriod(us uint32) (timer1.State, error) {
	s, err := timer1.SolvePeriod(us)
	if err != nil {
		return timer1.State{}, err
	}
	return g.apply(s), nil
}

// SetPrescaler overrides the clock-select code (1..5) directly, keeping the
// compare value. Together with SetCompare this reaches fractional
// frequencies the integer solvers cannot express, down to 0.12 Hz.
func (g *Generator) SetPrescaler(code uint8) (timer1.State, error) {
	p := timer1.Prescaler(code)
	if !p.Valid() {
		return timer1.State{}, errcode.OutOfRange
	}
	g.mu.Lock()
	s := g.state
	g.mu.Unlock()
	s.Prescaler = p
	return g.apply(s), nil
}

// SetCompare overrides the compare register directly (0..65535).
func (g *Generator) SetCompare(v uint32) (timer1.State, error) {
	if v > timer1.MaxCompare {
		return timer1.State{}, errcode.OutOfRange
	}
	g.mu.Lock()
	s := g.state
	g.mu.Unlock()
	s.Compare = uint16(v)
	return g.apply(s), nil
}

// TogglePin switches the comparator output to the other pin. Prescaler and
// compare registers are not rewritten.
func (g *Generator) TogglePin() timer1.State {
	g.mu.Lock()
	g.state.Pin = g.state.Pin.Other()
	s := g.state
	g.mu.Unlock()
	g.hw.SetOutputPin(s.Pin)
	g.publish()
	return s
}

func (g *Generator) apply(s timer1.State) timer1.State {
	g.mu.Lock()
	s.Pin = g.state.Pin
	g.state = s
	g.mu.Unlock()
	g.hw.ApplyState(s)
	g.publish()
	return s
}

// State reads the registers back; the hardware is the source of truth.
func (g *Generator) State() timer1.State {
	if s, err := g.hw.ReadState(); err == nil {
		return s
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Status derives the effective output values from the live register state.
func (g *Generator) Status() types.GeneratorStatus {
	s := g.State()
	return types.GeneratorStatus{
		FreqHz:    s.Frequency(),
		PeriodUs:  s.PeriodMicros(),
		Prescaler: s.Prescaler.Ratio(),
		Compare:   s.Compare,
		Pin:       s.Pin.String(),
	}
}

func (g *Generator) publish() {
	if g.conn == nil {
		return
	}
	g.conn.Publish(&bus.Message{Topic: topicStatus, Payload: g.Status(), Retained: true})
}

// Start watches config/generator and applies the configured startup signal.
func (g *Generator) Start(ctx context.Context) error {
	if g.conn == nil {
		return nil
	}
	go g.serviceLoop(ctx)
	return nil
}

func (g *Generator) serviceLoop(ctx context.Context) {
	sub := g.conn.Subscribe(topicConfig)
	defer g.conn.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			println("Info: generator service stopping")
			return
		case msg := <-sub.Channel():
			m, ok := msg.Payload.(map[string]any)
			if !ok {
				continue
			}
			g.applyConfig(m)
		}
	}
}

func (g *Generator) applyConfig(m map[string]any) {
	if v, ok := m["freq_hz"]; ok {
		if hz, ok := asUint32(v); ok {
			if _, err := g.SetFrequency(hz); err != nil {
				println("Warning: generator: configured freq_hz rejected:", string(errcode.Of(err)))
			}
		}
	}
	if v, ok := m["pin"].(string); ok {
		pin, err := timer1.PinByName(v)
		if err != nil {
			println("Warning: generator: configured pin rejected:", v)
			return
		}
		if g.State().Pin != pin {
			g.TogglePin()
		}
	}
}

func asUint32(v any) (uint32, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint32(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint32(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint32(n), true
	case uint32:
		return n, true
	default:
		return 0, false
	}
}
