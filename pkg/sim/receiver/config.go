package receiver

import (
	"flag"
	"time"

	"github.com/robotalks/rclink/pkg/l0/frame"
)

// Config defines the simulated receiver.
type Config struct {
	Listen   string `yaml:"listen"`
	DeviceID byte   `yaml:"device_id"`
	// Features, Modules and Board are announced as capabilities.
	Features byte            `yaml:"features"`
	Modules  byte            `yaml:"modules"`
	Board    frame.BoardType `yaml:"board"`

	TelemetryInterval time.Duration `yaml:"telemetry_interval"`
	// SafeTimeout enters safe mode when nothing is received for this long.
	SafeTimeout time.Duration `yaml:"safe_timeout"`

	// Battery voltages and drain in volts per second.
	BatteryFull  float64 `yaml:"battery_full"`
	BatteryEmpty float64 `yaml:"battery_empty"`
	IdleDrain    float64 `yaml:"idle_drain"`
	DriveDrain   float64 `yaml:"drive_drain"`

	// DriveSpeedMax is in mm/s, TurnSpeedMax in degrees/s.
	DriveSpeedMax float64 `yaml:"drive_speed_max"`
	TurnSpeedMax  float64 `yaml:"turn_speed_max"`
}

// Defaults
const (
	DefaultListen            = ":7070"
	DefaultTelemetryInterval = time.Second
	DefaultSafeTimeout       = 10 * time.Second
)

var defaultConfig = Config{
	Listen:            DefaultListen,
	DeviceID:          frame.DefaultDeviceID,
	Features:          frame.CapServoX | frame.CapServoY | frame.CapMotor | frame.CapWiFi,
	Board:             frame.BoardUNOR4WiFi,
	TelemetryInterval: DefaultTelemetryInterval,
	SafeTimeout:       DefaultSafeTimeout,
	BatteryFull:       8.4,
	BatteryEmpty:      6.0,
	IdleDrain:         0.0005,
	DriveDrain:        0.005,
	DriveSpeedMax:     500,
	TurnSpeedMax:      180,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Address accepting link connections.")
	flag.DurationVar(&defaultConfig.TelemetryInterval, "telemetry-interval", defaultConfig.TelemetryInterval, "Interval between telemetry frames.")
	flag.DurationVar(&defaultConfig.SafeTimeout, "safe-timeout", defaultConfig.SafeTimeout, "Enter safe mode when nothing is received for this long.")
	flag.Float64Var(&defaultConfig.DriveSpeedMax, "drive-speed-max", defaultConfig.DriveSpeedMax, "Maximum drive speed (mm/s).")
	flag.Float64Var(&defaultConfig.TurnSpeedMax, "turn-speed-max", defaultConfig.TurnSpeedMax, "Maximum turn speed (degrees/s).")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Capabilities returns the announced capabilities.
func (c *Config) Capabilities() frame.Capabilities {
	return frame.Capabilities{Features: c.Features, Modules: c.Modules, Board: c.Board}
}

// NewReceiver creates the Receiver.
func (c *Config) NewReceiver() *Receiver {
	r := NewReceiver()
	r.Config = *c
	r.Reset()
	return r
}
