// Package websocket bridges frames between a link and websocket clients.
// Every binary message carries exactly one frame.
package websocket

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"github.com/robotalks/rclink/pkg/l0/comm"
	"github.com/robotalks/rclink/pkg/l0/frame"
	"golang.org/x/net/websocket"
)

// Bridge forwards frames from websocket clients to a link and
// broadcasts frames received from the link to all clients.
type Bridge struct {
	Link *comm.Link

	lock  sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

// NewBridge creates a Bridge.
func NewBridge(link *comm.Link) *Bridge {
	return &Bridge{Link: link, conns: make(map[*websocket.Conn]struct{})}
}

// Handler returns the http.Handler accepting websocket clients.
func (b *Bridge) Handler() http.Handler {
	return websocket.Handler(b.serve)
}

// NumClients returns the number of connected clients.
func (b *Bridge) NumClients() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return len(b.conns)
}

func (b *Bridge) serve(conn *websocket.Conn) {
	conn.PayloadType = websocket.BinaryFrame
	b.lock.Lock()
	b.conns[conn] = struct{}{}
	b.lock.Unlock()
	glog.V(2).Infof("websocket client %s connected", conn.Request().RemoteAddr)

	defer func() {
		b.lock.Lock()
		delete(b.conns, conn)
		b.lock.Unlock()
		conn.Close()
		glog.V(2).Infof("websocket client %s disconnected", conn.Request().RemoteAddr)
	}()

	for {
		var msg []byte
		if err := websocket.Message.Receive(conn, &msg); err != nil {
			if err != io.EOF {
				glog.Warningf("websocket receive: %v", err)
			}
			return
		}
		f, err := frame.FromBytes(msg)
		if err != nil || !frame.Validate(&f) {
			glog.V(2).Infof("websocket client %s sent invalid frame % x", conn.Request().RemoteAddr, msg)
			continue
		}
		if err = b.send(&f); err != nil && err != comm.ErrThrottled && err != comm.ErrDuplicate {
			glog.Errorf("websocket forward: %v", err)
		}
	}
}

func (b *Bridge) send(f *frame.Frame) error {
	switch f.Command() {
	case frame.CmdJoystick, frame.CmdServoZ:
		return b.Link.SendThrottled(f)
	}
	return b.Link.Send(f)
}

// HandleFrame implements comm.FrameHandler.
func (b *Bridge) HandleFrame(ctx context.Context, f *frame.Frame, pkt frame.ControlPacket) {
	b.lock.RLock()
	conns := make([]*websocket.Conn, 0, len(b.conns))
	for conn := range b.conns {
		conns = append(conns, conn)
	}
	b.lock.RUnlock()
	for _, conn := range conns {
		if err := websocket.Message.Send(conn, f.Bytes()); err != nil {
			glog.V(2).Infof("websocket send to %s: %v", conn.Request().RemoteAddr, err)
		}
	}
}
