// Package receiver simulates a motorized device at the far end of a link.
package receiver

import (
	"context"
	"math"
	"net"
	"sync"
	"time"

	"github.com/golang/glog"
	fx "github.com/robotalks/rclink/pkg/framework"
	"github.com/robotalks/rclink/pkg/l0/comm"
	"github.com/robotalks/rclink/pkg/l0/frame"
	"github.com/robotalks/rclink/pkg/sim"
)

// State is a snapshot of the simulated device.
type State struct {
	Axes            frame.Joystick
	ServoZ          int8
	Buttons         map[byte]bool
	EStopped        bool
	SafeMode        bool
	Pose            sim.Pose2D
	Voltage         float64
	PacketsReceived uint32
	Heartbeat       frame.Heartbeat
	Links           int
}

// Heading is the orientation in degrees, counter-clockwise from X.
func (s State) Heading() float64 {
	return s.Pose.Orientation.Degrees()
}

type linkMsg struct {
	link   *comm.Link
	attach bool
}

type packetMsg struct {
	link  *comm.Link
	frame frame.Frame
	pkt   frame.ControlPacket
}

type outFrame struct {
	link  *comm.Link
	frame frame.Frame
}

// Receiver applies control packets to a simulated device and reports
// telemetry to all attached links.
type Receiver struct {
	Config
	Loop *fx.Loop

	lock          sync.RWMutex
	state         State
	links         map[*comm.Link]struct{}
	lastRecv      time.Time
	lastUpdate    time.Time
	lastTelemetry time.Time
}

// NewReceiver creates a Receiver with default configuration.
func NewReceiver() *Receiver {
	r := &Receiver{Config: defaultConfig, links: make(map[*comm.Link]struct{})}
	r.Reset()
	return r
}

// Name implements Named.
func (r *Receiver) Name() string {
	return "receiver"
}

// Reset powers the device off and on again.
func (r *Receiver) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.state = State{
		Buttons:  make(map[byte]bool),
		SafeMode: true,
		Voltage:  r.BatteryFull,
		Links:    len(r.links),
	}
	r.lastRecv, r.lastUpdate, r.lastTelemetry = time.Time{}, time.Time{}, time.Time{}
}

// State returns a snapshot.
func (r *Receiver) State() State {
	r.lock.RLock()
	defer r.lock.RUnlock()
	s := r.state
	s.Buttons = make(map[byte]bool, len(r.state.Buttons))
	for id, pressed := range r.state.Buttons {
		s.Buttons[id] = pressed
	}
	return s
}

// AddToLoop implements LoopAdder.
func (r *Receiver) AddToLoop(l *fx.Loop) {
	r.Loop = l
	l.AddController(r)
}

// Attach starts receiving frames from the link and sending replies and
// telemetry to it.
func (r *Receiver) Attach(link *comm.Link) {
	link.Handler = comm.HandleFrameFunc(func(ctx context.Context, f *frame.Frame, pkt frame.ControlPacket) {
		r.Loop.PostMessage(&packetMsg{link: link, frame: *f, pkt: pkt})
		r.Loop.TriggerNext()
	})
	r.Loop.PostMessage(&linkMsg{link: link, attach: true})
	r.Loop.TriggerNext()
}

// Detach stops sending to the link.
func (r *Receiver) Detach(link *comm.Link) {
	r.Loop.PostMessage(&linkMsg{link: link})
	r.Loop.TriggerNext()
}

// Control implements Controller.
func (r *Receiver) Control(cc fx.ControlContext) error {
	for _, out := range r.step(cc.Time(), cc.Messages()) {
		if err := out.link.Send(&out.frame); err != nil {
			glog.V(2).Infof("link %s: %v", out.link.Name, err)
		}
	}
	return nil
}

func (r *Receiver) step(now time.Time, msgs []fx.Message) (out []outFrame) {
	r.lock.Lock()
	defer r.lock.Unlock()
	announce := frame.EncodeAnnounce(r.DeviceID, r.Capabilities())
	for _, m := range msgs {
		switch msg := m.(type) {
		case *linkMsg:
			if msg.attach {
				r.links[msg.link] = struct{}{}
				out = append(out, outFrame{link: msg.link, frame: announce})
			} else {
				delete(r.links, msg.link)
			}
		case *packetMsg:
			r.lastRecv = now
			if r.apply(msg) {
				out = append(out, outFrame{link: msg.link, frame: announce})
			}
		}
	}
	r.state.Links = len(r.links)
	r.update(now)
	if r.TelemetryInterval > 0 && now.Sub(r.lastTelemetry) >= r.TelemetryInterval {
		r.lastTelemetry = now
		var status byte
		if r.state.SafeMode {
			status |= frame.StatusSafeMode
		}
		f := frame.EncodeTelemetry(r.DeviceID, float32(r.state.Voltage), status, r.state.PacketsReceived)
		for link := range r.links {
			out = append(out, outFrame{link: link, frame: f})
		}
	}
	return
}

// apply applies a packet to the state and reports whether the
// capabilities should be announced.
func (r *Receiver) apply(msg *packetMsg) (announce bool) {
	s := &r.state
	s.PacketsReceived++
	switch p := msg.pkt.Payload.(type) {
	case frame.Joystick:
		if s.EStopped {
			if p.LeftX != 0 || p.LeftY != 0 || p.RightX != 0 || p.RightY != 0 {
				return
			}
			s.EStopped = false
			glog.Info("e-stop released")
		}
		s.Axes = p
	case frame.ServoZ:
		if !s.EStopped {
			s.ServoZ = p.Z
		}
	case frame.Button:
		s.Buttons[p.ID] = p.Pressed()
	default:
		switch msg.pkt.Cmd {
		case frame.CmdEStop:
			if !s.EStopped {
				glog.Warning("e-stop engaged")
			}
			s.EStopped, s.Axes = true, frame.Joystick{}
		case frame.CmdHeartbeat:
			s.Heartbeat, _ = frame.ParseHeartbeat(&msg.frame)
		case frame.CmdAnnounceCapabilities:
			return true
		default:
			glog.V(2).Infof("%s from %s", msg.frame, msg.link.Name)
		}
	}
	return
}

func (r *Receiver) update(now time.Time) {
	s := &r.state
	dt := 0.0
	if !r.lastUpdate.IsZero() && now.After(r.lastUpdate) {
		dt = now.Sub(r.lastUpdate).Seconds()
	}
	r.lastUpdate = now

	safeMode := r.lastRecv.IsZero() || (r.SafeTimeout > 0 && now.Sub(r.lastRecv) > r.SafeTimeout)
	if safeMode && !s.SafeMode {
		glog.Warning("nothing received, entering safe mode")
	}
	s.SafeMode = safeMode
	if s.SafeMode {
		s.Axes = frame.Joystick{}
	}

	drain := r.IdleDrain
	if !s.EStopped && !s.SafeMode {
		throttle, steer := float64(s.Axes.LeftY)/100, float64(s.Axes.LeftX)/100
		s.Pose = s.Pose.Advance(throttle*r.DriveSpeedMax*dt, -steer*r.TurnSpeedMax*dt)
		drain += r.DriveDrain * math.Max(math.Abs(throttle), math.Abs(steer))
	}
	s.Voltage = math.Max(r.BatteryEmpty, s.Voltage-drain*dt)
}

// Serve accepts link connections until ctx is done.
func (r *Receiver) Serve(ctx context.Context, ln net.Listener) error {
	glog.Infof("receiver listening on %s", ln.Addr())
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			go r.serveConn(ctx, conn)
		}
	})
}

func (r *Receiver) serveConn(ctx context.Context, conn net.Conn) {
	name := conn.RemoteAddr().String()
	glog.Infof("link %s connected", name)
	link := comm.NewLink(name, conn)
	r.Attach(link)
	err := fx.RunWithContextCloser(ctx, conn, func() error {
		return link.Run(ctx)
	})
	r.Detach(link)
	glog.Infof("link %s disconnected: %v", name, err)
}
