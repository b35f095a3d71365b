package device

import "encoding/binary"

// EventSize is the size of a raw js_event.
const EventSize = 8

// Event type bits.
const (
	evBTN  uint8 = 0x01
	evAXIS uint8 = 0x02
	evINIT uint8 = 0x80
)

// AxisMax is the absolute maximum of an axis value.
const AxisMax = 32767

type event struct {
	time   uint32
	value  int16
	typ    uint8
	number uint8
}

// DecodeEvent decodes a raw js_event (little-endian).
// Events neither axis nor button are returned as plain Event.
func DecodeEvent(buf []byte) Event {
	ev := event{
		time:   binary.LittleEndian.Uint32(buf[0:4]),
		value:  int16(binary.LittleEndian.Uint16(buf[4:6])),
		typ:    buf[6],
		number: buf[7],
	}
	switch ev.typ &^ evINIT {
	case evBTN:
		return &buttonEvent{event: ev}
	case evAXIS:
		return &axisEvent{event: ev}
	}
	return &ev
}

func (e *event) IsInit() bool {
	return e.typ&evINIT != 0
}

func (e *event) Index() int {
	return int(e.number)
}

type axisEvent struct {
	event
}

func (e *axisEvent) Value() int {
	return int(e.value)
}

type buttonEvent struct {
	event
}

func (e *buttonEvent) Pressed() bool {
	return e.value != 0
}
