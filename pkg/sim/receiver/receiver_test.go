package receiver

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	fx "github.com/robotalks/rclink/pkg/framework"
	"github.com/robotalks/rclink/pkg/l0/comm"
	"github.com/robotalks/rclink/pkg/l0/frame"
	"github.com/stretchr/testify/require"
)

type bufferLink struct {
	bytes.Buffer
}

func (b *bufferLink) frames() (frames []frame.Frame) {
	for b.Len() >= frame.Size {
		f, _ := frame.FromBytes(b.Next(frame.Size))
		frames = append(frames, f)
	}
	return
}

type receiverTestEnv struct {
	t    *testing.T
	r    *Receiver
	loop *fx.Loop
	buf  *bufferLink
	link *comm.Link
	now  time.Time
}

func newReceiverTestEnv(t *testing.T) *receiverTestEnv {
	conf := NewConfig()
	conf.TelemetryInterval = time.Second
	conf.SafeTimeout = 5 * time.Second
	conf.IdleDrain, conf.DriveDrain = 0.01, 0.1
	env := &receiverTestEnv{
		t:    t,
		r:    conf.NewReceiver(),
		loop: fx.NewLoop(),
		buf:  &bufferLink{},
		now:  time.Unix(1000, 0),
	}
	env.loop.Add(env.r)
	env.link = comm.NewLink("test", env.buf)
	env.r.Attach(env.link)
	return env
}

// inject delivers frames as the link would and runs one iteration after
// advancing the clock.
func (e *receiverTestEnv) inject(advance time.Duration, frames ...frame.Frame) []frame.Frame {
	for n := range frames {
		e.link.Handler.HandleFrame(context.Background(), &frames[n], frame.Decode(&frames[n]))
	}
	e.now = e.now.Add(advance)
	e.loop.RunIteration(context.Background(), e.now)
	return e.buf.frames()
}

func TestReceiverAttach(t *testing.T) {
	env := newReceiverTestEnv(t)
	out := env.inject(0)
	require.Len(t, out, 2)
	caps, ok := frame.ParseCapabilities(&out[0])
	require.True(t, ok)
	require.Equal(t, env.r.Capabilities(), caps)

	report, ok := frame.ParseTelemetry(&out[1])
	require.True(t, ok)
	require.True(t, report.SafeMode())
	require.InDelta(t, 8.4, report.Voltage, 0.01)
	require.Equal(t, 1, env.r.State().Links)

	// announce request
	out = env.inject(0, frame.EncodeAnnounce(frame.DefaultDeviceID, frame.DefaultCapabilities))
	require.Len(t, out, 1)
	require.Equal(t, frame.CmdAnnounceCapabilities, out[0].Command())

	env.r.Detach(env.link)
	require.Empty(t, env.inject(time.Second))
	require.Zero(t, env.r.State().Links)
}

func TestReceiverApply(t *testing.T) {
	testCases := []struct {
		name   string
		frames []frame.Frame
		check  func(*testing.T, State)
	}{
		{
			"joystick",
			[]frame.Frame{frame.EncodeJoystick(1, 1, 0.5, 0, -1, frame.AuxW)},
			func(t *testing.T, s State) {
				require.Equal(t, frame.Joystick{LeftX: 100, LeftY: 50, RightY: -100, Aux: frame.AuxW}, s.Axes)
				require.False(t, s.SafeMode)
			},
		},
		{
			"servo and buttons",
			[]frame.Frame{
				frame.EncodeServoZ(1, -1),
				frame.EncodeButton(1, 3, true),
				frame.EncodeButton(1, 4, true),
				frame.EncodeButton(1, 3, false),
			},
			func(t *testing.T, s State) {
				require.Equal(t, int8(-100), s.ServoZ)
				require.Equal(t, map[byte]bool{3: false, 4: true}, s.Buttons)
				require.Equal(t, uint32(4), s.PacketsReceived)
			},
		},
		{
			"estop latch",
			[]frame.Frame{
				frame.EncodeJoystick(1, 0, 1, 0, 0, 0),
				frame.EncodeEStop(1),
				frame.EncodeJoystick(1, 0, 0.5, 0, 0, 0),
				frame.EncodeServoZ(1, 1),
			},
			func(t *testing.T, s State) {
				require.True(t, s.EStopped)
				require.Equal(t, frame.Joystick{}, s.Axes)
				require.Zero(t, s.ServoZ)
			},
		},
		{
			"estop released by centered sticks",
			[]frame.Frame{
				frame.EncodeEStop(1),
				frame.EncodeJoystick(1, 0, 0, 0, 0, frame.AuxL),
			},
			func(t *testing.T, s State) {
				require.False(t, s.EStopped)
				require.Equal(t, frame.Joystick{Aux: frame.AuxL}, s.Axes)
			},
		},
		{
			"heartbeat",
			[]frame.Frame{frame.EncodeHeartbeat(1, 7, 0x12345)},
			func(t *testing.T, s State) {
				require.Equal(t, frame.Heartbeat{Seq: 7, Uptime: 0x2345}, s.Heartbeat)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newReceiverTestEnv(t)
			env.inject(0, tc.frames...)
			tc.check(t, env.r.State())
		})
	}
}

func TestReceiverDrive(t *testing.T) {
	env := newReceiverTestEnv(t)
	env.inject(0, frame.EncodeJoystick(1, 0, 1, 0, 0, 0))
	env.inject(2 * time.Second)
	s := env.r.State()
	require.InDelta(t, 1000, s.Pose.X, 1e-6)
	require.InDelta(t, 0, s.Pose.Y, 1e-6)
	require.InDelta(t, 8.4-2*(0.01+0.1), s.Voltage, 1e-6)

	// safe mode stops driving
	env.inject(4 * time.Second)
	s = env.r.State()
	require.True(t, s.SafeMode)
	require.Equal(t, frame.Joystick{}, s.Axes)
	x := s.Pose.X
	env.inject(time.Second)
	require.Equal(t, x, env.r.State().Pose.X)
}

func TestReceiverTurn(t *testing.T) {
	env := newReceiverTestEnv(t)
	// half right steer at 180 degrees/s
	env.inject(0, frame.EncodeJoystick(1, 0.5, 0, 0, 0, 0))
	env.inject(time.Second)
	s := env.r.State()
	require.InDelta(t, -90, s.Heading(), 1e-6)
	require.InDelta(t, 0, s.Pose.X, 1e-6)

	env.inject(0, frame.EncodeJoystick(1, 0, 1, 0, 0, 0))
	env.inject(time.Second)
	s = env.r.State()
	require.InDelta(t, -90, s.Heading(), 1e-6)
	require.InDelta(t, -500, s.Pose.Y, 1e-6)
}

func TestReceiverTelemetry(t *testing.T) {
	env := newReceiverTestEnv(t)
	env.inject(0)
	out := env.inject(500*time.Millisecond, frame.EncodeHeartbeat(1, 0, 0))
	require.Empty(t, out)
	out = env.inject(500 * time.Millisecond)
	require.Len(t, out, 1)
	report, ok := frame.ParseTelemetry(&out[0])
	require.True(t, ok)
	require.False(t, report.SafeMode())
	require.Equal(t, byte(1), report.PacketsReceived)
	require.Equal(t, frame.DefaultDeviceID, report.DeviceID)
}

func TestReceiverServe(t *testing.T) {
	r := NewReceiver()
	r.TelemetryInterval = time.Hour
	loop := fx.NewLoop().Add(r)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runner := fx.NewRunnerWith(ctx).Go(loop, fx.RunFunc(func(ctx context.Context) error {
		return r.Serve(ctx, ln)
	}))
	defer func() {
		cancel()
		runner.Wait()
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(time.Second))

	buf := make([]byte, frame.Size)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)
	f, err := frame.FromBytes(buf)
	require.NoError(t, err)
	require.Equal(t, frame.CmdAnnounceCapabilities, f.Command())

	estop := frame.EncodeEStop(1)
	_, err = conn.Write(estop.Bytes())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return r.State().EStopped
	}, time.Second, 5*time.Millisecond)
}
