package comm

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/robotalks/rclink/pkg/l0/frame"
)

// Default client timings.
const (
	DefaultHeartbeatInterval = 4 * time.Second
	DefaultStaleTimeout      = 20 * time.Second
)

// Health is the link health seen by a Client.
type Health int

// Health values.
const (
	HealthUnknown Health = iota
	HealthConnected
	HealthStale
)

// String implements fmt.Stringer.
func (h Health) String() string {
	switch h {
	case HealthConnected:
		return "connected"
	case HealthStale:
		return "stale"
	}
	return "unknown"
}

// Event is a received frame not consumed by the client itself.
type Event struct {
	Frame  frame.Frame
	Packet frame.ControlPacket
}

// Client provides controller side operations over a Link.
type Client struct {
	DeviceID          byte
	HeartbeatInterval time.Duration
	StaleTimeout      time.Duration

	link        *Link
	eventCh     chan Event
	telemetryCh chan frame.TelemetryReport
	capsCh      chan frame.Capabilities
	healthCh    chan Health
	started     time.Time

	lock     sync.Mutex
	caps     *frame.Capabilities
	health   Health
	lastRecv time.Time
	seq      uint16
}

// NewClient creates client and wraps the link.
func NewClient(link *Link) *Client {
	c := &Client{
		DeviceID:          frame.DefaultDeviceID,
		HeartbeatInterval: DefaultHeartbeatInterval,
		StaleTimeout:      DefaultStaleTimeout,
		link:              link,
		eventCh:           make(chan Event, 16),
		telemetryCh:       make(chan frame.TelemetryReport, 16),
		capsCh:            make(chan frame.Capabilities, 1),
		healthCh:          make(chan Health, 4),
		started:           time.Now(),
	}
	c.link.Handler = c
	return c
}

// Link gets wrapped Link.
func (c *Client) Link() *Link {
	return c.link
}

// EventChan retrieves frames other than telemetry and announcements.
func (c *Client) EventChan() <-chan Event {
	return c.eventCh
}

// TelemetryChan retrieves decoded telemetry reports.
func (c *Client) TelemetryChan() <-chan frame.TelemetryReport {
	return c.telemetryCh
}

// CapabilitiesChan reports capability announcements.
func (c *Client) CapabilitiesChan() <-chan frame.Capabilities {
	return c.capsCh
}

// HealthChan reports health changes.
func (c *Client) HealthChan() <-chan Health {
	return c.healthCh
}

// Capabilities returns the last announced capabilities,
// or frame.DefaultCapabilities if the device never announced.
func (c *Client) Capabilities() (frame.Capabilities, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.caps == nil {
		return frame.DefaultCapabilities, false
	}
	return *c.caps, true
}

// Health returns the current health.
func (c *Client) Health() Health {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.health
}

// HandleFrame implements FrameHandler.
func (c *Client) HandleFrame(ctx context.Context, f *frame.Frame, pkt frame.ControlPacket) {
	c.touch(time.Now())
	switch pkt.Cmd {
	case frame.CmdTelemetry:
		if r, ok := frame.ParseTelemetry(f); ok {
			notify(c.telemetryCh, r, "telemetry")
		}
		return
	case frame.CmdAnnounceCapabilities:
		if caps, ok := frame.ParseCapabilities(f); ok {
			c.lock.Lock()
			c.caps = &caps
			c.lock.Unlock()
			glog.Infof("%s: device 0x%02x capabilities: %s (%s)", c.link.Name, f.DeviceID(), caps, caps.Board)
			notify(c.capsCh, caps, "capabilities")
		}
		return
	}
	notify(c.eventCh, Event{Frame: *f, Packet: pkt}, "event")
}

func notify[T any](ch chan T, v T, what string) {
	select {
	case ch <- v:
	default:
		glog.V(2).Infof("%s dropped, receiver too slow", what)
	}
}

func (c *Client) touch(now time.Time) {
	c.lock.Lock()
	c.lastRecv = now
	changed := c.health != HealthConnected
	c.health = HealthConnected
	c.lock.Unlock()
	if changed {
		notify(c.healthCh, HealthConnected, "health")
	}
}

func (c *Client) checkStale(now time.Time) {
	c.lock.Lock()
	stale := c.health == HealthConnected && c.StaleTimeout > 0 &&
		now.Sub(c.lastRecv) >= c.StaleTimeout
	if stale {
		c.health = HealthStale
	}
	c.lock.Unlock()
	if stale {
		glog.Warningf("%s: no frame received in %s", c.link.Name, c.StaleTimeout)
		notify(c.healthCh, HealthStale, "health")
	}
}

// Heartbeat sends a heartbeat frame with the next sequence number.
func (c *Client) Heartbeat() error {
	c.lock.Lock()
	seq := c.seq
	c.seq++
	c.lock.Unlock()
	uptime := uint64(time.Since(c.started).Milliseconds())
	f := frame.EncodeHeartbeat(c.DeviceID, seq, uptime)
	return c.link.Send(&f)
}

// EStop sends an emergency stop. It's never throttled.
func (c *Client) EStop() error {
	f := frame.EncodeEStop(c.DeviceID)
	if c.link.Throttle != nil {
		c.link.Throttle.Reset()
	}
	return c.link.Send(&f)
}

// Joystick sends normalized axes, subject to the throttle.
func (c *Client) Joystick(leftX, leftY, rightX, rightY float64, aux frame.AuxBits) error {
	f := frame.EncodeJoystick(c.DeviceID, leftX, leftY, rightX, rightY, aux)
	return c.link.SendThrottled(&f)
}

// ServoZ sends the Z servo position, subject to the throttle.
func (c *Client) ServoZ(z float64) error {
	f := frame.EncodeServoZ(c.DeviceID, z)
	return c.link.SendThrottled(&f)
}

// Button sends a button press or release.
func (c *Client) Button(id byte, pressed bool) error {
	f := frame.EncodeButton(c.DeviceID, id, pressed)
	return c.link.Send(&f)
}

// RequestCapabilities asks the device to announce its capabilities.
// The reply arrives on CapabilitiesChan.
func (c *Client) RequestCapabilities() error {
	f := frame.EncodeAnnounce(c.DeviceID, frame.Capabilities{})
	return c.link.Send(&f)
}

// Custom sends a user-defined command.
func (c *Client) Custom(cmd frame.Command, payload []byte) error {
	f, err := frame.EncodeCustom(c.DeviceID, cmd, payload)
	if err != nil {
		return err
	}
	return c.link.Send(&f)
}

// Run wraps Link.Run to implement Runnable, and sends heartbeats
// in the background.
func (c *Client) Run(ctx context.Context) error {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if c.HeartbeatInterval > 0 {
		go c.keepAlive(subCtx)
	}
	return c.link.Run(subCtx)
}

func (c *Client) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(c.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := c.Heartbeat(); err != nil {
				glog.Errorf("%s: heartbeat: %v", c.link.Name, err)
			}
			c.checkStale(now)
		}
	}
}
