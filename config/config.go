package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	rtu "github.com/bangzek/powerworld-rtu"
)

type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Poll       PollConfig       `yaml:"poll"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

// ---- CONTROLLER ----

const (
	TransportRTUOverTCP = "rtu-tcp"
	TransportSerial     = "serial"
	TransportModbusTCP  = "modbus-tcp"
)

type ControllerConfig struct {
	Transport string `yaml:"transport"`

	// rtu-tcp and modbus-tcp
	Address string `yaml:"address"`

	// serial
	Device   string     `yaml:"device"`
	Baudrate int        `yaml:"baudrate"`
	Parity   rtu.Parity `yaml:"parity"`
	StopBits int        `yaml:"stop_bits"`

	UnitID    uint8 `yaml:"unit_id"`
	TimeoutMs int   `yaml:"timeout_ms"`
	GapMs     int   `yaml:"gap_ms"`
	Attempts  int   `yaml:"attempts"`
}

func (c ControllerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c ControllerConfig) Gap() time.Duration {
	return time.Duration(c.GapMs) * time.Millisecond
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs      int `yaml:"interval_ms"`
	RetryIntervalMs int `yaml:"retry_interval_ms"`
}

func (c PollConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

func (c PollConfig) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalMs) * time.Millisecond
}

// ---- METRICS ----

type MetricsConfig struct {
	// Listen is the address of the /metrics endpoint, off when empty.
	Listen string `yaml:"listen"`
}

// ---- LOG ----

type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// Load reads a YAML file. It neither validates nor normalizes.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	cfg := new(Config)
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
