package mqtt

import (
	"flag"
	"log"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/robotalks/rclink/pkg/env"
)

// Config provides options to connect to the MQTT broker.
type Config struct {
	// BrokerURL e.g. mqtt://host:port/topic-prefix, empty disables MQTT.
	BrokerURL string `yaml:"url"`
	// ClientID defaults to the program name and machine ID.
	ClientID string `yaml:"client_id"`
	// StatusInterval is the interval to publish link status.
	StatusInterval time.Duration `yaml:"status_interval"`
}

var defaultConfig = Config{
	StatusInterval: 5 * time.Second,
}

func init() {
	if val := os.Getenv("RCLINK_MQTT_URL"); val != "" {
		defaultConfig.BrokerURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.BrokerURL, "mqtt", defaultConfig.BrokerURL, "MQTT broker URL, e.g. mqtt://localhost:1883/rclink/")
	flag.StringVar(&defaultConfig.ClientID, "mqtt-client-id", defaultConfig.ClientID, "MQTT client ID")
	flag.DurationVar(&defaultConfig.StatusInterval, "status-interval", defaultConfig.StatusInterval, "Interval to publish link status")
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

// Enabled indicates a broker is configured.
func (c *Config) Enabled() bool {
	return c.BrokerURL != ""
}

func (c *Config) clientOptions(program string) (*paho.ClientOptions, string, error) {
	opts, prefix, err := ClientOptionsFromURL(c.BrokerURL)
	if err != nil {
		return nil, "", err
	}
	if c.ClientID != "" {
		opts.SetClientID(c.ClientID)
	} else if opts.ClientID == "" {
		opts.SetClientID(env.ClientID(program))
	}
	return opts, prefix, nil
}

// NewQueue creates a Queue for program.
func (c *Config) NewQueue(program string) (*Queue, error) {
	opts, prefix, err := c.clientOptions(program)
	if err != nil {
		return nil, err
	}
	return NewQueue(opts, prefix), nil
}

// NewPublisher creates a Publisher for the named link.
// The broker marks the link offline if the publisher disappears.
func (c *Config) NewPublisher(program, link string) (*Publisher, error) {
	opts, prefix, err := c.clientOptions(program)
	if err != nil {
		return nil, err
	}
	will, err := offlineStatus(link)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(prefix+StatusTopic(link), will, 1, true)
	p := NewPublisher(NewQueue(opts, prefix), link)
	p.StatusInterval = c.StatusInterval
	return p, nil
}

// MustNewPublisher creates a Publisher and fails on error.
func (c *Config) MustNewPublisher(program, link string) *Publisher {
	p, err := c.NewPublisher(program, link)
	if err != nil {
		log.Fatalln(err)
	}
	return p
}
