package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgUno = `{
  "generator": {
      "freq_hz": 1000,
      "pin": "A"
  },
  "heartbeat": {
      "period_ms": 1000,
      "pulse_ms": 20,
      "enabled": true
  },
  "display": {
      "addr": 39,
      "width": 16,
      "height": 2
  }
}`

const cfgSim = `{
  "generator": {
      "freq_hz": 1000,
      "pin": "A"
  },
  "heartbeat": {
      "period_ms": 1000,
      "pulse_ms": 20,
      "enabled": true
  }
}`

var embeddedConfigs = map[string][]byte{
	"uno": []byte(cfgUno),
	"sim": []byte(cfgSim),
}
