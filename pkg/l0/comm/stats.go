package comm

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// StatsSnapshot is a point-in-time copy of link counters.
type StatsSnapshot struct {
	Received   uint64 `json:"received"`
	Invalid    uint64 `json:"invalid"`
	Sent       uint64 `json:"sent"`
	Suppressed uint64 `json:"suppressed"`
	Discarded  uint64 `json:"discarded"`
}

// Stats counts frames on a link. A nil *Stats counts nothing.
type Stats struct {
	received   atomic.Uint64
	invalid    atomic.Uint64
	sent       atomic.Uint64
	suppressed atomic.Uint64
	discarded  atomic.Uint64

	receivedTotal   prometheus.Counter
	invalidTotal    prometheus.Counter
	sentTotal       prometheus.Counter
	suppressedTotal prometheus.Counter
	discardedTotal  prometheus.Counter
}

// NewStats creates Stats labelled by the link name.
// Counters are registered to reg if not nil.
func NewStats(link string, reg prometheus.Registerer) *Stats {
	labels := prometheus.Labels{"link": link}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rclink",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	s := &Stats{
		receivedTotal:   counter("frames_received_total", "Valid frames received."),
		invalidTotal:    counter("frames_invalid_total", "Aligned frames failing checksum."),
		sentTotal:       counter("frames_sent_total", "Frames written to the link."),
		suppressedTotal: counter("frames_suppressed_total", "Frames dropped by the send throttle."),
		discardedTotal:  counter("bytes_discarded_total", "Bytes dropped while aligning frames."),
	}
	if reg != nil {
		reg.MustRegister(s.receivedTotal, s.invalidTotal, s.sentTotal, s.suppressedTotal, s.discardedTotal)
	}
	return s
}

func (s *Stats) addReceived() {
	if s == nil {
		return
	}
	s.received.Add(1)
	s.receivedTotal.Inc()
}

func (s *Stats) addInvalid() {
	if s == nil {
		return
	}
	s.invalid.Add(1)
	s.invalidTotal.Inc()
}

func (s *Stats) addSent() {
	if s == nil {
		return
	}
	s.sent.Add(1)
	s.sentTotal.Inc()
}

func (s *Stats) addSuppressed() {
	if s == nil {
		return
	}
	s.suppressed.Add(1)
	s.suppressedTotal.Inc()
}

func (s *Stats) addDiscarded(n int) {
	if s == nil || n <= 0 {
		return
	}
	s.discarded.Add(uint64(n))
	s.discardedTotal.Add(float64(n))
}

// Snapshot copies current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}
	return StatsSnapshot{
		Received:   s.received.Load(),
		Invalid:    s.invalid.Load(),
		Sent:       s.sent.Load(),
		Suppressed: s.suppressed.Load(),
		Discarded:  s.discarded.Load(),
	}
}
