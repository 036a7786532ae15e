// Package types holds the payloads exchanged over the bus.
package types

// GeneratorStatus is the retained payload on status/generator. Frequency and
// period are derived from the register state at publish time, never stored
// independently of it.
type GeneratorStatus struct {
	FreqHz    float64 `json:"freq_hz"`
	PeriodUs  float64 `json:"period_us"`
	Prescaler uint32  `json:"prescaler"` // divider ratio (1..1024), not the selector code
	Compare   uint16  `json:"compare"`
	Pin       string  `json:"pin"` // "A" or "B"
}

// HeartbeatToggle flips the heartbeat on heartbeat/set.
type HeartbeatToggle struct{}
