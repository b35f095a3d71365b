package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/robotalks/rclink/pkg/l0/comm"
	"github.com/robotalks/rclink/pkg/l0/frame"
	"github.com/robotalks/rclink/pkg/msgs"
)

// Topic kinds under a device.
const (
	KindTelemetry = "telemetry"
	KindControl   = "control"
	KindAnnounce  = "announce"
)

// OfflineStatus is the health published when a link goes away.
const OfflineStatus = "offline"

// DeviceTopic returns the topic for messages of kind from a device.
func DeviceTopic(deviceID byte, kind string) string {
	return fmt.Sprintf("%02x/%s", deviceID, kind)
}

// StatusTopic returns the topic for status of a link.
func StatusTopic(link string) string {
	return "link/" + link + "/status"
}

func offlineStatus(link string) ([]byte, error) {
	return msgs.Encode(&msgs.LinkStatus{Link: link, Health: OfflineStatus})
}

// Publisher publishes frames received on a link as msgs.
type Publisher struct {
	Pub  Publishing
	Link string
	QoS  byte
	// SkipHeartbeats excludes HEARTBEAT frames from control events.
	SkipHeartbeats bool
	// Status provides the link status published periodically by Run.
	Status         func() *msgs.LinkStatus
	StatusInterval time.Duration

	queue *Queue
	now   func() time.Time
}

// NewPublisher creates a Publisher on the queue.
func NewPublisher(q *Queue, link string) *Publisher {
	return &Publisher{
		Pub:            q,
		Link:           link,
		SkipHeartbeats: true,
		queue:          q,
	}
}

func (p *Publisher) timeNow() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

// Publish encodes msg and publishes it to topic.
func (p *Publisher) Publish(topic string, msg msgs.Message, retain bool) error {
	data, err := msgs.Encode(msg)
	if err != nil {
		return err
	}
	p.Pub.PubWith(topic, data, p.QoS, retain)
	return nil
}

// HandleFrame implements comm.FrameHandler.
func (p *Publisher) HandleFrame(ctx context.Context, f *frame.Frame, pkt frame.ControlPacket) {
	var (
		msg    msgs.Message
		kind   string
		retain bool
	)
	switch pkt.Cmd {
	case frame.CmdTelemetry:
		r, ok := frame.ParseTelemetry(f)
		if !ok {
			return
		}
		msg, kind = msgs.NewTelemetryReport(&r, p.timeNow()), KindTelemetry
	case frame.CmdAnnounceCapabilities:
		caps, ok := frame.ParseCapabilities(f)
		if !ok {
			return
		}
		msg, kind, retain = msgs.NewDeviceAnnounce(f.DeviceID(), caps), KindAnnounce, true
	case frame.CmdHeartbeat:
		if p.SkipHeartbeats {
			return
		}
		fallthrough
	default:
		msg, kind = msgs.NewControlEvent(f, pkt, p.timeNow()), KindControl
	}
	if err := p.Publish(DeviceTopic(f.DeviceID(), kind), msg, retain); err != nil {
		glog.Errorf("publish %s: %v", kind, err)
	}
}

// SentHandler returns the handler for frames written to the link.
// Sent frames are published as control events, including ANNOUNCE
// requests, which carry no capabilities of a device.
func (p *Publisher) SentHandler() comm.FrameHandler {
	return comm.HandleFrameFunc(func(ctx context.Context, f *frame.Frame, pkt frame.ControlPacket) {
		if pkt.Cmd == frame.CmdHeartbeat && p.SkipHeartbeats {
			return
		}
		msg := msgs.NewControlEvent(f, pkt, p.timeNow())
		if err := p.Publish(DeviceTopic(f.DeviceID(), KindControl), msg, false); err != nil {
			glog.Errorf("publish %s: %v", KindControl, err)
		}
	})
}

// PublishStatus publishes the link status as a retained message.
func (p *Publisher) PublishStatus() error {
	if p.Status == nil {
		return nil
	}
	return p.Publish(StatusTopic(p.Link), p.Status(), true)
}

// Run implements Runnable. It connects the queue, publishes link status
// periodically, and marks the link offline before disconnecting.
func (p *Publisher) Run(ctx context.Context) error {
	if p.queue != nil {
		token := p.queue.Connect()
		token.Wait()
		if err := token.Error(); err != nil {
			return err
		}
		defer p.queue.Close()
	}

	var tick <-chan time.Time
	if p.Status != nil && p.StatusInterval > 0 {
		ticker := time.NewTicker(p.StatusInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			if data, err := offlineStatus(p.Link); err == nil {
				p.Pub.PubWith(StatusTopic(p.Link), data, 1, true).WaitTimeout(time.Second)
			}
			return nil
		case <-tick:
			if err := p.PublishStatus(); err != nil {
				glog.Errorf("publish status: %v", err)
			}
		}
	}
}
