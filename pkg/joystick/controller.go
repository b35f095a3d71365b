package joystick

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/golang/glog"
	"github.com/robotalks/rclink/pkg/joystick/device"
	"github.com/robotalks/rclink/pkg/l0/comm"
	"github.com/robotalks/rclink/pkg/l0/frame"
)

// Sender sends control frames. It's implemented by comm.Client.
type Sender interface {
	Joystick(leftX, leftY, rightX, rightY float64, aux frame.AuxBits) error
	ServoZ(z float64) error
	Button(id byte, pressed bool) error
	EStop() error
}

const (
	axisLeftX = iota
	axisLeftY
	axisRightX
	axisRightY
	axisServoZ
	axisCount
)

// retryInterval is how often a rate limited control state is resent.
const retryInterval = 2 * comm.DefaultMinSendInterval

// Controller reads a joystick device and sends control frames.
type Controller struct {
	Config
	Sender Sender
	// OpenDevice opens a device by index, defaults to device.Open.
	OpenDevice func(index int) (device.Device, error)
	// DetectDevice finds a device, defaults to device.DetectAndOpen.
	DetectDevice func(startIndex int) (device.Device, error)

	device      device.Device
	eventCh     chan device.Event
	deviceTimer <-chan time.Time

	axes         [axisCount]float64
	aux          frame.AuxBits
	pendingJoy   bool
	pendingServo bool
}

// NewController creates a Controller.
func NewController(sender Sender) *Controller {
	return &Controller{
		Config:       defaultConfig,
		Sender:       sender,
		OpenDevice:   device.Open,
		DetectDevice: device.DetectAndOpen,
	}
}

// Run implements Runnable.
func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		if c.device != nil {
			c.device.Close()
		}
	}()
	retry := time.NewTicker(retryInterval)
	defer retry.Stop()
	c.deviceTimer = time.After(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.deviceTimer:
			c.deviceTimer = nil
			if !c.open(ctx) {
				c.deviceTimer = time.After(time.Second)
			}
		case ev, ok := <-c.eventCh:
			if ok {
				c.handleEvent(ev)
				continue
			}
			glog.Warning("Joystick disconnected, stopping.")
			c.neutral()
			if c.device != nil {
				c.device.Close()
			}
			c.device, c.eventCh = nil, nil
			c.deviceTimer = time.After(time.Second)
		case <-retry.C:
			c.flush()
		}
	}
}

func (c *Controller) open(ctx context.Context) bool {
	var js device.Device
	var err error
	if c.DeviceIndex >= 0 {
		if js, err = c.OpenDevice(c.DeviceIndex); err != nil {
			glog.Errorf("Open joystick %d error: %v", c.DeviceIndex, err)
		}
	} else {
		glog.V(2).Info("Detecting joystick ...")
		if js, err = c.DetectDevice(0); err != nil {
			glog.Errorf("Detect joystick error: %v", err)
		} else if js == nil {
			glog.V(2).Info("No joystick detected.")
		}
	}
	if err != nil || js == nil {
		return false
	}
	glog.Infof("Joystick %d %q opened, %d axes, %d buttons", js.Index(), js.Name(), js.AxisCount(), js.ButtonCount())
	c.device, c.eventCh = js, make(chan device.Event, 1)
	go c.pollJoystick(ctx, js, c.eventCh)
	return true
}

func (c *Controller) pollJoystick(ctx context.Context, dev device.Device, ch chan device.Event) {
	defer close(ch)
	for {
		ev, err := dev.ReadEvent()
		if err != nil {
			glog.Errorf("Joystick read error: %v", err)
			return
		}
		if ev == nil {
			continue
		}
		if c.Verbose {
			var prefix string
			if ev.IsInit() {
				prefix = "[INIT] "
			}
			switch evt := ev.(type) {
			case device.AxisEvent:
				glog.Infof(prefix+"Axis %d: %d", evt.Index(), evt.Value())
			case device.ButtonEvent:
				glog.Infof(prefix+"Button %d: %v", evt.Index(), evt.Pressed())
			}
		}
		select {
		case ch <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Controller) axisOf(index int) int {
	for axis, mapped := range [axisCount]int{c.LeftX, c.LeftY, c.RightX, c.RightY, c.ServoZ} {
		if mapped >= 0 && mapped == index {
			return axis
		}
	}
	return -1
}

func (c *Controller) auxOf(index int) frame.AuxBits {
	var bits frame.AuxBits
	for _, m := range []struct {
		button int
		bit    frame.AuxBits
	}{
		{c.AuxW, frame.AuxW},
		{c.AuxA, frame.AuxA},
		{c.AuxL, frame.AuxL},
		{c.AuxR, frame.AuxR},
	} {
		if m.button >= 0 && m.button == index {
			bits |= m.bit
		}
	}
	return bits
}

// normalize converts a raw axis value into -1..1 applying the deadzone.
func (c *Controller) normalize(raw int) float64 {
	v := float64(raw) / device.AxisMax
	v = math.Max(-1, math.Min(1, v))
	if math.Abs(v) < c.Deadzone {
		return 0
	}
	return v
}

func (c *Controller) handleEvent(ev device.Event) {
	switch evt := ev.(type) {
	case device.AxisEvent:
		axis := c.axisOf(evt.Index())
		if axis < 0 {
			return
		}
		v := c.normalize(evt.Value())
		if c.InvertY && (axis == axisLeftY || axis == axisRightY) {
			v = -v
		}
		c.axes[axis] = v
		if axis == axisServoZ {
			c.pendingServo = true
		} else {
			c.pendingJoy = true
		}
		c.flush()
	case device.ButtonEvent:
		c.handleButton(evt.Index(), evt.Pressed(), evt.IsInit())
	}
}

func (c *Controller) handleButton(index int, pressed, init bool) {
	if c.EStop >= 0 && index == c.EStop {
		if pressed && !init {
			glog.Warning("Emergency stop!")
			if err := c.Sender.EStop(); err != nil {
				glog.Errorf("Send ESTOP error: %v", err)
			}
		}
		return
	}
	if bits := c.auxOf(index); bits != 0 {
		if pressed {
			c.aux |= bits
		} else {
			c.aux &^= bits
		}
		c.pendingJoy = true
		c.flush()
		return
	}
	if init || index > 0xff {
		return
	}
	if err := c.Sender.Button(byte(index), pressed); err != nil {
		glog.Errorf("Send BUTTON error: %v", err)
	}
}

// flush sends pending control state. A rate limited state stays pending
// and is resent on the next retry tick.
func (c *Controller) flush() {
	if c.pendingJoy {
		err := c.Sender.Joystick(c.axes[axisLeftX], c.axes[axisLeftY], c.axes[axisRightX], c.axes[axisRightY], c.aux)
		c.pendingJoy = c.keepPending(err, "JOYSTICK")
	}
	if c.pendingServo {
		err := c.Sender.ServoZ(c.axes[axisServoZ])
		c.pendingServo = c.keepPending(err, "SERVO_Z")
	}
}

func (c *Controller) keepPending(err error, what string) bool {
	switch {
	case err == nil, errors.Is(err, comm.ErrDuplicate):
		return false
	case errors.Is(err, comm.ErrThrottled):
		return true
	}
	glog.Errorf("Send %s error: %v", what, err)
	return false
}

// neutral centers all axes and releases aux buttons.
func (c *Controller) neutral() {
	c.axes = [axisCount]float64{}
	c.aux = 0
	c.pendingJoy = true
	c.pendingServo = c.ServoZ >= 0
	c.flush()
}
