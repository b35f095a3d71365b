package joystick

import (
	"flag"
)

// Config defines the configurations for the controller.
type Config struct {
	DeviceIndex int  `yaml:"device"`
	Verbose     bool `yaml:"verbose"`
	// Axis indices, -1 disables the axis.
	LeftX  int `yaml:"left_x"`
	LeftY  int `yaml:"left_y"`
	RightX int `yaml:"right_x"`
	RightY int `yaml:"right_y"`
	ServoZ int `yaml:"servo_z"`
	// InvertY makes pushing a stick forward positive.
	InvertY  bool    `yaml:"invert_y"`
	Deadzone float64 `yaml:"deadzone"`
	// Buttons mapped to aux bits, -1 disables.
	AuxW int `yaml:"aux_w"`
	AuxA int `yaml:"aux_a"`
	AuxL int `yaml:"aux_l"`
	AuxR int `yaml:"aux_r"`
	// EStop is the button sending an emergency stop.
	EStop int `yaml:"estop"`
}

var defaultConfig = Config{
	DeviceIndex: -1,
	LeftX:       0,
	LeftY:       1,
	RightX:      3,
	RightY:      4,
	ServoZ:      -1,
	InvertY:     true,
	Deadzone:    0.05,
	AuxW:        0,
	AuxA:        1,
	AuxL:        4,
	AuxR:        5,
	EStop:       8,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.DeviceIndex, "device", defaultConfig.DeviceIndex, "Device index, -1 for auto detection.")
	flag.BoolVar(&defaultConfig.Verbose, "verbose", defaultConfig.Verbose, "Print Joystick events.")
	flag.IntVar(&defaultConfig.EStop, "estop-button", defaultConfig.EStop, "Button sending emergency stop, -1 to disable.")
	flag.Float64Var(&defaultConfig.Deadzone, "deadzone", defaultConfig.Deadzone, "Axis deadzone (0..1).")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates a controller using the config.
func (c *Config) NewController(sender Sender) *Controller {
	ctl := NewController(sender)
	ctl.Config = *c
	return ctl
}
