package msgs

import (
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/robotalks/rclink/pkg/l0/comm"
	"github.com/robotalks/rclink/pkg/l0/frame"
)

// TelemetryReport is published for every telemetry frame.
type TelemetryReport struct {
	DeviceID        uint32  `protobuf:"varint,1,opt,name=device_id,json=deviceId,proto3" json:"device_id,omitempty"`
	Voltage         float32 `protobuf:"fixed32,2,opt,name=voltage,proto3" json:"voltage,omitempty"`
	Status          uint32  `protobuf:"varint,3,opt,name=status,proto3" json:"status,omitempty"`
	SafeMode        bool    `protobuf:"varint,4,opt,name=safe_mode,json=safeMode,proto3" json:"safe_mode,omitempty"`
	PacketsReceived uint32  `protobuf:"varint,5,opt,name=packets_received,json=packetsReceived,proto3" json:"packets_received,omitempty"`
	Counters        []byte  `protobuf:"bytes,6,opt,name=counters,proto3" json:"counters,omitempty"`
	Timestamp       int64   `protobuf:"varint,7,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

// NewTelemetryReport converts a decoded telemetry frame.
func NewTelemetryReport(r *frame.TelemetryReport, at time.Time) *TelemetryReport {
	m := &TelemetryReport{
		DeviceID:  uint32(r.DeviceID),
		Voltage:   r.Voltage,
		Status:    uint32(r.Status),
		SafeMode:  r.SafeMode(),
		Timestamp: at.UnixMilli(),
	}
	if r.Custom() {
		m.Counters = append([]byte(nil), r.Counters[:]...)
	} else {
		m.PacketsReceived = uint32(r.PacketsReceived)
	}
	return m
}

// NewMessage implements Message.
func (m *TelemetryReport) NewMessage() Message { return &TelemetryReport{} }

// TypeID implements Message.
func (m *TelemetryReport) TypeID() uint32 { return TelemetryReportTypeID }

// ProtoMessage implements proto.Message.
func (m *TelemetryReport) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TelemetryReport) Reset() { *m = TelemetryReport{} }

// String implements proto.Message.
func (m *TelemetryReport) String() string { return proto.CompactTextString(m) }

// ControlEvent is published for control frames seen on a link.
// Axis fields carry the flat decoded representation.
type ControlEvent struct {
	DeviceID    uint32 `protobuf:"varint,1,opt,name=device_id,json=deviceId,proto3" json:"device_id,omitempty"`
	Command     uint32 `protobuf:"varint,2,opt,name=command,proto3" json:"command,omitempty"`
	CommandName string `protobuf:"bytes,3,opt,name=command_name,json=commandName,proto3" json:"command_name,omitempty"`
	LeftX       int32  `protobuf:"zigzag32,4,opt,name=left_x,json=leftX,proto3" json:"left_x,omitempty"`
	LeftY       int32  `protobuf:"zigzag32,5,opt,name=left_y,json=leftY,proto3" json:"left_y,omitempty"`
	RightX      int32  `protobuf:"zigzag32,6,opt,name=right_x,json=rightX,proto3" json:"right_x,omitempty"`
	RightY      int32  `protobuf:"zigzag32,7,opt,name=right_y,json=rightY,proto3" json:"right_y,omitempty"`
	RightZ      int32  `protobuf:"zigzag32,8,opt,name=right_z,json=rightZ,proto3" json:"right_z,omitempty"`
	AuxBits     uint32 `protobuf:"varint,9,opt,name=aux_bits,json=auxBits,proto3" json:"aux_bits,omitempty"`
	Raw         []byte `protobuf:"bytes,10,opt,name=raw,proto3" json:"raw,omitempty"`
	Timestamp   int64  `protobuf:"varint,11,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

// NewControlEvent converts a decoded frame.
func NewControlEvent(f *frame.Frame, pkt frame.ControlPacket, at time.Time) *ControlEvent {
	fields := pkt.Fields()
	return &ControlEvent{
		DeviceID:    uint32(f.DeviceID()),
		Command:     uint32(pkt.Cmd),
		CommandName: pkt.Cmd.String(),
		LeftX:       int32(fields.LeftX),
		LeftY:       int32(fields.LeftY),
		RightX:      int32(fields.RightX),
		RightY:      int32(fields.RightY),
		RightZ:      int32(fields.RightZ),
		AuxBits:     uint32(fields.AuxBits),
		Raw:         append([]byte(nil), f.Bytes()...),
		Timestamp:   at.UnixMilli(),
	}
}

// NewMessage implements Message.
func (m *ControlEvent) NewMessage() Message { return &ControlEvent{} }

// TypeID implements Message.
func (m *ControlEvent) TypeID() uint32 { return ControlEventTypeID }

// ProtoMessage implements proto.Message.
func (m *ControlEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ControlEvent) Reset() { *m = ControlEvent{} }

// String implements proto.Message.
func (m *ControlEvent) String() string { return proto.CompactTextString(m) }

// DeviceAnnounce is published when a device announces capabilities.
type DeviceAnnounce struct {
	DeviceID  uint32 `protobuf:"varint,1,opt,name=device_id,json=deviceId,proto3" json:"device_id,omitempty"`
	Features  uint32 `protobuf:"varint,2,opt,name=features,proto3" json:"features,omitempty"`
	Modules   uint32 `protobuf:"varint,3,opt,name=modules,proto3" json:"modules,omitempty"`
	Board     uint32 `protobuf:"varint,4,opt,name=board,proto3" json:"board,omitempty"`
	BoardName string `protobuf:"bytes,5,opt,name=board_name,json=boardName,proto3" json:"board_name,omitempty"`
	Summary   string `protobuf:"bytes,6,opt,name=summary,proto3" json:"summary,omitempty"`
}

// NewDeviceAnnounce converts announced capabilities.
func NewDeviceAnnounce(deviceID byte, caps frame.Capabilities) *DeviceAnnounce {
	return &DeviceAnnounce{
		DeviceID:  uint32(deviceID),
		Features:  uint32(caps.Features),
		Modules:   uint32(caps.Modules),
		Board:     uint32(caps.Board),
		BoardName: caps.Board.String(),
		Summary:   caps.String(),
	}
}

// Capabilities converts back to frame.Capabilities.
func (m *DeviceAnnounce) Capabilities() frame.Capabilities {
	return frame.Capabilities{
		Features: byte(m.Features),
		Modules:  byte(m.Modules),
		Board:    frame.BoardType(m.Board),
	}
}

// NewMessage implements Message.
func (m *DeviceAnnounce) NewMessage() Message { return &DeviceAnnounce{} }

// TypeID implements Message.
func (m *DeviceAnnounce) TypeID() uint32 { return DeviceAnnounceTypeID }

// ProtoMessage implements proto.Message.
func (m *DeviceAnnounce) ProtoMessage() {}

// Reset implements proto.Message.
func (m *DeviceAnnounce) Reset() { *m = DeviceAnnounce{} }

// String implements proto.Message.
func (m *DeviceAnnounce) String() string { return proto.CompactTextString(m) }

// LinkStatus reports health and counters of a link.
type LinkStatus struct {
	Link       string `protobuf:"bytes,1,opt,name=link,proto3" json:"link,omitempty"`
	Health     string `protobuf:"bytes,2,opt,name=health,proto3" json:"health,omitempty"`
	Received   uint64 `protobuf:"varint,3,opt,name=received,proto3" json:"received,omitempty"`
	Invalid    uint64 `protobuf:"varint,4,opt,name=invalid,proto3" json:"invalid,omitempty"`
	Sent       uint64 `protobuf:"varint,5,opt,name=sent,proto3" json:"sent,omitempty"`
	Suppressed uint64 `protobuf:"varint,6,opt,name=suppressed,proto3" json:"suppressed,omitempty"`
	Discarded  uint64 `protobuf:"varint,7,opt,name=discarded,proto3" json:"discarded,omitempty"`
}

// NewLinkStatus creates LinkStatus from link counters.
func NewLinkStatus(link string, health comm.Health, stats comm.StatsSnapshot) *LinkStatus {
	return &LinkStatus{
		Link:       link,
		Health:     health.String(),
		Received:   stats.Received,
		Invalid:    stats.Invalid,
		Sent:       stats.Sent,
		Suppressed: stats.Suppressed,
		Discarded:  stats.Discarded,
	}
}

// NewMessage implements Message.
func (m *LinkStatus) NewMessage() Message { return &LinkStatus{} }

// TypeID implements Message.
func (m *LinkStatus) TypeID() uint32 { return LinkStatusTypeID }

// ProtoMessage implements proto.Message.
func (m *LinkStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *LinkStatus) Reset() { *m = LinkStatus{} }

// String implements proto.Message.
func (m *LinkStatus) String() string { return proto.CompactTextString(m) }
