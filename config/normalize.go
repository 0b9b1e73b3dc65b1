package config

import rtu "github.com/bangzek/powerworld-rtu"

const (
	DefaultAddress = "127.0.0.1:1470"
	DefaultUnitID  = 1

	DefaultIntervalMs      = 30000
	DefaultRetryIntervalMs = 5000
)

// Normalize fills in the defaults. Call it after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	c := &cfg.Controller
	if c.Transport == "" {
		c.Transport = TransportRTUOverTCP
	}
	if c.Transport != TransportSerial && c.Address == "" {
		c.Address = DefaultAddress
	}
	if c.Transport == TransportSerial && c.Baudrate == 0 {
		c.Baudrate = rtu.BAUDRATE
	}
	if c.UnitID == 0 {
		c.UnitID = DefaultUnitID
	}
	if c.TimeoutMs == 0 {
		c.TimeoutMs = int(rtu.TIMEOUT.Milliseconds())
	}
	if c.GapMs == 0 {
		c.GapMs = int(rtu.GAP.Milliseconds())
	}
	if c.Attempts == 0 {
		c.Attempts = rtu.ATTEMPTS
	}

	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = DefaultIntervalMs
	}
	if cfg.Poll.RetryIntervalMs == 0 {
		cfg.Poll.RetryIntervalMs = DefaultRetryIntervalMs
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
