package joystick

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/robotalks/rclink/pkg/joystick/device"
	"github.com/robotalks/rclink/pkg/l0/comm"
	"github.com/robotalks/rclink/pkg/l0/frame"
	"github.com/stretchr/testify/require"
)

type axisEvent struct {
	index int
	value int
}

func (e axisEvent) IsInit() bool { return false }
func (e axisEvent) Index() int   { return e.index }
func (e axisEvent) Value() int   { return e.value }

type buttonEvent struct {
	index   int
	pressed bool
}

func (e buttonEvent) IsInit() bool  { return false }
func (e buttonEvent) Index() int    { return e.index }
func (e buttonEvent) Pressed() bool { return e.pressed }

func axis(index, value int) device.Event {
	return axisEvent{index: index, value: value}
}

func button(index int, pressed bool) device.Event {
	return buttonEvent{index: index, pressed: pressed}
}

type fakeDevice struct {
	events chan device.Event
	once   sync.Once
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{events: make(chan device.Event, 16)}
}

func (d *fakeDevice) Close() error {
	d.once.Do(func() { close(d.events) })
	return nil
}

func (d *fakeDevice) Index() int       { return 0 }
func (d *fakeDevice) Name() string     { return "fake" }
func (d *fakeDevice) AxisCount() int   { return 6 }
func (d *fakeDevice) ButtonCount() int { return 12 }

func (d *fakeDevice) ReadEvent() (device.Event, error) {
	ev, ok := <-d.events
	if !ok {
		return nil, io.EOF
	}
	return ev, nil
}

type joyState struct {
	lx, ly, rx, ry float64
	aux            frame.AuxBits
}

type fakeSender struct {
	joyCh    chan joyState
	servoCh  chan float64
	buttonCh chan [2]int
	estopCh  chan struct{}

	lock      sync.Mutex
	throttles int
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		joyCh:    make(chan joyState, 16),
		servoCh:  make(chan float64, 16),
		buttonCh: make(chan [2]int, 16),
		estopCh:  make(chan struct{}, 16),
	}
}

func (s *fakeSender) throttled() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.throttles > 0 {
		s.throttles--
		return true
	}
	return false
}

func (s *fakeSender) Joystick(lx, ly, rx, ry float64, aux frame.AuxBits) error {
	if s.throttled() {
		return comm.ErrThrottled
	}
	s.joyCh <- joyState{lx, ly, rx, ry, aux}
	return nil
}

func (s *fakeSender) ServoZ(z float64) error {
	if s.throttled() {
		return comm.ErrThrottled
	}
	s.servoCh <- z
	return nil
}

func (s *fakeSender) Button(id byte, pressed bool) error {
	v := 0
	if pressed {
		v = 1
	}
	s.buttonCh <- [2]int{int(id), v}
	return nil
}

func (s *fakeSender) EStop() error {
	s.estopCh <- struct{}{}
	return nil
}

func recv[T any](t *testing.T, ch chan T) (v T) {
	select {
	case v = <-ch:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
	return
}

func startController(conf *Config) (*fakeDevice, *fakeSender, context.CancelFunc) {
	dev, sender := newFakeDevice(), newFakeSender()
	ctl := conf.NewController(sender)
	ctl.OpenDevice = func(int) (device.Device, error) { return dev, nil }
	ctl.DetectDevice = func(int) (device.Device, error) { return dev, nil }
	ctx, cancel := context.WithCancel(context.Background())
	go ctl.Run(ctx)
	return dev, sender, cancel
}

func TestControllerAxes(t *testing.T) {
	dev, sender, cancel := startController(NewConfig())
	defer cancel()

	dev.events <- axis(0, device.AxisMax)
	require.Equal(t, joyState{lx: 1}, recv(t, sender.joyCh))
	dev.events <- axis(1, -device.AxisMax)
	require.Equal(t, joyState{lx: 1, ly: 1}, recv(t, sender.joyCh))
	// within deadzone
	dev.events <- axis(0, 1000)
	require.Equal(t, joyState{ly: 1}, recv(t, sender.joyCh))
	dev.events <- axis(4, device.AxisMax)
	require.Equal(t, joyState{ly: 1, ry: -1}, recv(t, sender.joyCh))
	// unmapped axis
	dev.events <- axis(2, device.AxisMax)
	dev.events <- axis(3, -device.AxisMax)
	require.Equal(t, joyState{ly: 1, rx: -1, ry: -1}, recv(t, sender.joyCh))
}

func TestControllerButtons(t *testing.T) {
	dev, sender, cancel := startController(NewConfig())
	defer cancel()

	dev.events <- button(4, true)
	require.Equal(t, joyState{aux: frame.AuxL}, recv(t, sender.joyCh))
	dev.events <- button(1, true)
	require.Equal(t, joyState{aux: frame.AuxL | frame.AuxA}, recv(t, sender.joyCh))
	dev.events <- button(4, false)
	require.Equal(t, joyState{aux: frame.AuxA}, recv(t, sender.joyCh))

	dev.events <- button(9, true)
	require.Equal(t, [2]int{9, 1}, recv(t, sender.buttonCh))
	dev.events <- button(9, false)
	require.Equal(t, [2]int{9, 0}, recv(t, sender.buttonCh))

	dev.events <- button(8, true)
	recv(t, sender.estopCh)
	// release doesn't stop again
	dev.events <- button(8, false)
	dev.events <- button(10, true)
	require.Equal(t, [2]int{10, 1}, recv(t, sender.buttonCh))
	require.Empty(t, sender.estopCh)
}

func TestControllerServoZ(t *testing.T) {
	conf := NewConfig()
	conf.ServoZ = 5
	dev, sender, cancel := startController(conf)
	defer cancel()

	dev.events <- axis(5, device.AxisMax)
	require.Equal(t, 1.0, recv(t, sender.servoCh))
	require.Empty(t, sender.joyCh)
}

func TestControllerRetryThrottled(t *testing.T) {
	dev, sender, cancel := startController(NewConfig())
	defer cancel()

	sender.lock.Lock()
	sender.throttles = 2
	sender.lock.Unlock()
	dev.events <- axis(0, device.AxisMax)
	require.Equal(t, joyState{lx: 1}, recv(t, sender.joyCh))
}

func TestControllerDisconnect(t *testing.T) {
	conf := NewConfig()
	conf.ServoZ = 5
	dev, sender, cancel := startController(conf)
	defer cancel()

	dev.events <- axis(0, device.AxisMax)
	require.Equal(t, joyState{lx: 1}, recv(t, sender.joyCh))
	dev.events <- axis(5, -device.AxisMax)
	require.Equal(t, -1.0, recv(t, sender.servoCh))

	dev.Close()
	require.Equal(t, joyState{}, recv(t, sender.joyCh))
	require.Equal(t, 0.0, recv(t, sender.servoCh))
}

func TestControllerNormalize(t *testing.T) {
	ctl := NewController(nil)
	testCases := []struct {
		raw    int
		expect float64
	}{
		{0, 0},
		{device.AxisMax, 1},
		{-device.AxisMax, -1},
		{-device.AxisMax - 1, -1},
		{device.AxisMax / 100, 0},
		{device.AxisMax / 2, float64(device.AxisMax/2) / device.AxisMax},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expect, ctl.normalize(tc.raw), "raw %d", tc.raw)
	}
}
