package comm

import (
	"sync"
	"time"

	"github.com/robotalks/rclink/pkg/l0/frame"
	"golang.org/x/time/rate"
)

// DefaultMinSendInterval is the minimum interval between two
// throttled frames.
const DefaultMinSendInterval = 16 * time.Millisecond

// Throttle drops repeated and too frequent control frames.
// A frame is considered a duplicate of the last one sent if all bytes
// except the checksum are the same.
type Throttle struct {
	limiter *rate.Limiter
	lock    sync.Mutex
	last    frame.Frame
	hasLast bool
}

// NewThrottle creates a Throttle allowing one frame per interval.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = DefaultMinSendInterval
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Check returns ErrDuplicate or ErrThrottled if f should not be sent now,
// otherwise records f as the last frame.
func (t *Throttle) Check(f *frame.Frame) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.hasLast && sameContent(&t.last, f) {
		return ErrDuplicate
	}
	if !t.limiter.Allow() {
		return ErrThrottled
	}
	t.last, t.hasLast = *f, true
	return nil
}

// Allow reports whether f should be sent now.
func (t *Throttle) Allow(f *frame.Frame) bool {
	return t.Check(f) == nil
}

// Reset forgets the last frame so the next one is always considered new.
func (t *Throttle) Reset() {
	t.lock.Lock()
	t.hasLast = false
	t.lock.Unlock()
}

func sameContent(a, b *frame.Frame) bool {
	for i := 0; i < frame.Size-2; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return a[frame.Size-1] == b[frame.Size-1]
}
