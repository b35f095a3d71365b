package comm

import (
	"github.com/robotalks/rclink/pkg/l0/frame"
)

// Parser aligns frames from bytes received.
type Parser struct {
	buf [frame.Size]byte
	n   int
}

// SyncState indicates the state of the parser.
type SyncState int

const (
	// SyncStateHunting means the parser is looking for a START byte.
	SyncStateHunting SyncState = 0
	// SyncStateReceiving means a frame is partially received.
	SyncStateReceiving SyncState = 0x01
)

// IsReceiving indicates if it's in the middle of receiving a frame.
func (s SyncState) IsReceiving() bool {
	return s&SyncStateReceiving != 0
}

// TimerAction defines what to do with the inter-byte timer.
type TimerAction int

const (
	// TimerNoChange indicates keep the timer as-is.
	TimerNoChange TimerAction = iota
	// TimerRestart to restart the timer.
	TimerRestart
	// TimerStop to stop/cancel the timer.
	TimerStop
)

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	State SyncState
	// Frame is set when a frame with both sentinels is aligned.
	Frame *frame.Frame
	// Discarded is the number of bytes dropped in this step.
	Discarded int
}

// WhatAboutTimer decides what to do with timer.
func (r ParseResult) WhatAboutTimer() TimerAction {
	if r.State.IsReceiving() {
		return TimerRestart
	}
	return TimerStop
}

// State gets the current sync state.
func (p *Parser) State() SyncState {
	if p.n > 0 {
		return SyncStateReceiving
	}
	return SyncStateHunting
}

// Reset drops any partially received frame.
func (p *Parser) Reset() (pr ParseResult) {
	pr.Discarded, p.n = p.n, 0
	pr.State = p.State()
	return
}

// Timeout notifies the parser timer expires.
func (p *Parser) Timeout() ParseResult {
	return p.Reset()
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	pr.Frame, pr.Discarded = p.parseByte(b)
	pr.State = p.State()
	return
}

func (p *Parser) parseByte(b byte) (*frame.Frame, int) {
	if p.n == 0 {
		if b != frame.StartByte {
			return nil, 1
		}
	}
	p.buf[p.n] = b
	p.n++
	if p.n < frame.Size {
		return nil, 0
	}
	if p.buf[frame.Size-1] == frame.EndByte {
		f := frame.Frame(p.buf)
		p.n = 0
		return &f, 0
	}
	return nil, p.resync()
}

// resync moves the next START byte after position 0 to the front,
// and returns the number of bytes skipped.
func (p *Parser) resync() int {
	for i := 1; i < p.n; i++ {
		if p.buf[i] == frame.StartByte {
			p.n = copy(p.buf[:], p.buf[i:p.n])
			return i
		}
	}
	skipped := p.n
	p.n = 0
	return skipped
}
