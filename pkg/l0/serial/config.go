package serial

import (
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/robotalks/rclink/pkg/l0/comm"
)

// Config provides options to open the transport of a link.
type Config struct {
	// Port is a serial device path, or tcp://host:port.
	Port        string        `yaml:"port"`
	Options     Options       `yaml:"serial"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

var defaultConfig = Config{
	Port:        "/dev/ttyACM0",
	Options:     Options{BaudRate: DefaultBaudRate},
	ReadTimeout: 50 * time.Millisecond,
}

func init() {
	if val := os.Getenv("RCLINK_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val, err := strconv.Atoi(os.Getenv("RCLINK_BAUD")); err == nil && val > 0 {
		defaultConfig.Options.BaudRate = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port or tcp://host:port")
	flag.IntVar(&defaultConfig.Options.BaudRate, "baud", defaultConfig.Options.BaudRate, "Serial baud rate")
	flag.StringVar(&defaultConfig.Options.Parity, "parity", defaultConfig.Options.Parity, "Serial parity: N, E or O")
	flag.DurationVar(&defaultConfig.ReadTimeout, "read-timeout", defaultConfig.ReadTimeout, "Serial read timeout, 0 for blocking reads")
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

// Open opens the configured transport.
func (c *Config) Open() (*Conn, error) {
	return Open(c.Port, c.Options, c.ReadTimeout)
}

// NewLink opens the transport and wraps it with a link.
func (c *Config) NewLink(name string) (*comm.Link, *Conn, error) {
	conn, err := c.Open()
	if err != nil {
		return nil, nil, err
	}
	link := comm.NewLink(name, conn)
	link.ReadTimeout = conn.ReadTimeout
	return link, conn, nil
}

// MustNewLink creates the link and fails on error.
func (c *Config) MustNewLink(name string) (*comm.Link, *Conn) {
	link, conn, err := c.NewLink(name)
	if err != nil {
		log.Fatalln(err)
	}
	return link, conn
}
