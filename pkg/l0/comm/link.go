package comm

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/robotalks/rclink/pkg/l0/frame"
)

// DefaultTimeout is the default inter-byte timeout while receiving a frame.
const DefaultTimeout = 100 * time.Millisecond

// FrameHandler is called when a valid frame is received.
type FrameHandler interface {
	HandleFrame(context.Context, *frame.Frame, frame.ControlPacket)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, *frame.Frame, frame.ControlPacket)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, fr *frame.Frame, pkt frame.ControlPacket) {
	f(ctx, fr, pkt)
}

// StateNotifier is called when the parser state changed.
type StateNotifier interface {
	StateChanged(context.Context, SyncState)
}

// StateChangedFunc is func type of StateNotifier.
type StateChangedFunc func(context.Context, SyncState)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(ctx context.Context, state SyncState) {
	f(ctx, state)
}

// Link sends and receives frames over a byte stream.
type Link struct {
	Name       string
	ReadWriter io.ReadWriter
	Handler    FrameHandler
	// InvalidHandler receives aligned frames failing checksum.
	InvalidHandler FrameHandler
	// SentHandler receives every frame after it's written.
	SentHandler FrameHandler
	Notifier    StateNotifier
	Timeout     time.Duration
	ReadTimeout bool // set to true if ReadWriter already supports timeout with Read
	Stats       *Stats
	Throttle    *Throttle

	state SyncState
	lock  sync.RWMutex
	wlock sync.Mutex

	syncTimer <-chan time.Time
	parser    Parser
}

// NewLink creates a Link with unregistered stats and the default throttle.
func NewLink(name string, rw io.ReadWriter) *Link {
	return &Link{
		Name:       name,
		ReadWriter: rw,
		Timeout:    DefaultTimeout,
		Stats:      NewStats(name, nil),
		Throttle:   NewThrottle(DefaultMinSendInterval),
	}
}

// State gets the parser state.
func (l *Link) State() SyncState {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.state
}

// Send writes a frame regardless of the throttle.
func (l *Link) Send(f *frame.Frame) error {
	if l.ReadWriter == nil {
		return ErrNoLink
	}
	l.wlock.Lock()
	_, err := l.ReadWriter.Write(f.Bytes())
	l.wlock.Unlock()
	if err != nil {
		return &WriteError{Frame: *f, Err: err}
	}
	l.Stats.addSent()
	glog.V(4).Infof("%s: sent %s %s", l.Name, f.Command(), f)
	if h := l.SentHandler; h != nil {
		h.HandleFrame(context.Background(), f, frame.Decode(f))
	}
	return nil
}

// SendThrottled writes a frame unless it's a duplicate of the last
// throttled frame (ErrDuplicate) or sent too soon after it (ErrThrottled).
func (l *Link) SendThrottled(f *frame.Frame) error {
	if l.Throttle != nil {
		if err := l.Throttle.Check(f); err != nil {
			l.Stats.addSuppressed()
			return err
		}
	}
	return l.Send(f)
}

// Run receives frames until the context is done or reading fails.
func (l *Link) Run(ctx context.Context) error {
	l.applyParseResult(ctx, l.parser.Reset())

	if l.ReadTimeout {
		buf := make([]byte, 1)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.syncTimer:
				l.applyParseResult(ctx, l.parser.Timeout())
			default:
				n, err := l.ReadWriter.Read(buf)
				if err != nil {
					if !os.IsTimeout(err) {
						return err
					}
				} else if n > 0 {
					l.applyParseResult(ctx, l.parser.Parse(buf[0]))
				}
			}
		}
	}

	byteCh, errCh := make(chan byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(subCtx, byteCh, errCh)
	for {
		select {
		case b := <-byteCh:
			l.applyParseResult(ctx, l.parser.Parse(b))
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-l.syncTimer:
			l.applyParseResult(ctx, l.parser.Timeout())
		}
	}
}

func (l *Link) readLoop(ctx context.Context, byteCh chan byte, errCh chan error) {
	buf := make([]byte, 1)
	for {
		n, err := l.ReadWriter.Read(buf)
		if err != nil {
			errCh <- err
			return
		}
		if n == 0 {
			continue
		}
		select {
		case byteCh <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}

func (l *Link) applyParseResult(ctx context.Context, pr ParseResult) {
	var notifier StateNotifier
	l.lock.Lock()
	if l.state != pr.State {
		l.state = pr.State
		notifier = l.Notifier
	}
	l.lock.Unlock()

	switch pr.WhatAboutTimer() {
	case TimerRestart:
		timeout := l.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		l.syncTimer = time.After(timeout)
	case TimerStop:
		l.syncTimer = nil
	}

	if pr.Discarded > 0 {
		l.Stats.addDiscarded(pr.Discarded)
		glog.V(4).Infof("%s: discarded %d bytes", l.Name, pr.Discarded)
	}
	if notifier != nil {
		notifier.StateChanged(ctx, pr.State)
	}
	if pr.Frame == nil {
		return
	}
	pkt := frame.Decode(pr.Frame)
	if !pkt.Valid {
		l.Stats.addInvalid()
		glog.V(2).Infof("%s: checksum mismatch %s", l.Name, pr.Frame)
		if h := l.InvalidHandler; h != nil {
			h.HandleFrame(ctx, pr.Frame, pkt)
		}
		return
	}
	l.Stats.addReceived()
	glog.V(4).Infof("%s: received %s %s", l.Name, pkt.Cmd, pr.Frame)
	if h := l.Handler; h != nil {
		h.HandleFrame(ctx, pr.Frame, pkt)
	}
}
