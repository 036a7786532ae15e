// Package heartbeat blinks the board LED with a short pulse so a stuck
// main loop is visible at a glance. The wave output is untouched; only
// the LED is driven here.
package heartbeat

import (
	"context"
	"sync"
	"time"

	"wavegen-go/bus"
	"wavegen-go/hal"
)

const (
	DefaultPeriodMs = 1000
	DefaultPulseMs  = 20

	tickInterval = 10 * time.Millisecond
)

var (
	topicConfig = bus.Topic{"config", "heartbeat"}
	topicSet    = bus.Topic{"heartbeat", "set"}
)

type Service struct {
	lamp hal.Lamp
	conn *bus.Connection

	mu       sync.Mutex
	periodMs uint32
	pulseMs  uint32
	enabled  bool
}

func New(lamp hal.Lamp, conn *bus.Connection) *Service {
	return &Service{
		lamp:     lamp,
		conn:     conn,
		periodMs: DefaultPeriodMs,
		pulseMs:  DefaultPulseMs,
		enabled:  true,
	}
}

// lampOn reports whether the lamp is lit at the given elapsed time.
func lampOn(elapsedMs, periodMs, pulseMs uint32) bool {
	if periodMs == 0 {
		return false
	}
	return elapsedMs%periodMs < pulseMs
}

func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Toggle flips the enabled state and returns the new value. The lamp is
// forced off immediately when disabled so it never sticks on mid-pulse.
func (s *Service) Toggle() bool {
	s.mu.Lock()
	s.enabled = !s.enabled
	on := s.enabled
	s.mu.Unlock()
	if !on {
		s.lamp.Set(false)
	}
	return on
}

// Start launches the blink loop in a goroutine.
func (s *Service) Start(ctx context.Context) error {
	go s.serviceLoop(ctx)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context) {
	var cfgCh, setCh <-chan *bus.Message
	if s.conn != nil {
		cfgSub := s.conn.Subscribe(topicConfig)
		setSub := s.conn.Subscribe(topicSet)
		defer s.conn.Unsubscribe(cfgSub)
		defer s.conn.Unsubscribe(setSub)
		cfgCh = cfgSub.Channel()
		setCh = setSub.Channel()
	}

	start := time.Now()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.lamp.Set(false)
			println("Info: heartbeat service stopping")
			return
		case msg := <-cfgCh:
			if m, ok := msg.Payload.(map[string]any); ok {
				s.applyConfig(m)
			}
		case msg := <-setCh:
			on := s.Toggle()
			if s.conn != nil {
				s.conn.Reply(msg, on, false)
			}
		case <-ticker.C:
			s.mu.Lock()
			enabled, period, pulse := s.enabled, s.periodMs, s.pulseMs
			s.mu.Unlock()
			if enabled {
				s.lamp.Set(lampOn(uint32(time.Since(start).Milliseconds()), period, pulse))
			}
		}
	}
}

func (s *Service) applyConfig(m map[string]any) {
	s.mu.Lock()
	if v, ok := asUint32(m["period_ms"]); ok && v > 0 {
		s.periodMs = v
	}
	if v, ok := asUint32(m["pulse_ms"]); ok {
		s.pulseMs = v
	}
	enabled := s.enabled
	if v, ok := m["enabled"].(bool); ok {
		s.enabled = v
		enabled = v
	}
	s.mu.Unlock()
	if !enabled {
		s.lamp.Set(false)
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
	default:
		return 0, false
	}
}
