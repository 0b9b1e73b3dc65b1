package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Validate checks a loaded configuration. It never mutates it; zero
// values are fine where Normalize has a default.
func Validate(cfg *Config) error {
	c := cfg.Controller
	switch c.Transport {
	case "", TransportRTUOverTCP, TransportModbusTCP:
	case TransportSerial:
		if c.Device == "" {
			return fmt.Errorf("controller: device is required for %s",
				TransportSerial)
		}
		if c.Baudrate < 0 {
			return fmt.Errorf("controller: invalid baudrate %d", c.Baudrate)
		}
		if c.StopBits < 0 || c.StopBits > 2 {
			return fmt.Errorf("controller: invalid stop_bits %d", c.StopBits)
		}
	default:
		return fmt.Errorf("controller: unknown transport %q", c.Transport)
	}

	if !c.Parity.IsValid() {
		return fmt.Errorf("controller: invalid parity %s", c.Parity)
	}
	if c.UnitID > 247 {
		return fmt.Errorf("controller: unit_id %d out of range 1..247",
			c.UnitID)
	}
	if c.TimeoutMs < 0 || c.GapMs < 0 {
		return fmt.Errorf("controller: timeout_ms and gap_ms must not be negative")
	}
	if c.Attempts < 0 || c.Attempts > 10 {
		return fmt.Errorf("controller: attempts %d out of range 1..10",
			c.Attempts)
	}

	if cfg.Poll.IntervalMs < 0 || cfg.Poll.RetryIntervalMs < 0 {
		return fmt.Errorf("poll: intervals must not be negative")
	}

	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log: %w", err)
		}
	}
	return nil
}
