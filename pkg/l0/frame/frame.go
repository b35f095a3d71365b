package frame

import (
	"encoding/hex"
	"fmt"
)

// Wire constants.
const (
	// Size is the length of every frame.
	Size = 10
	// PayloadSize is the length of the command-specific payload.
	PayloadSize = 5

	StartByte byte = 0xAA
	EndByte   byte = 0x55

	// DefaultDeviceID is used by controllers which don't address
	// a specific device.
	DefaultDeviceID byte = 0x01
)

// Byte offsets within a frame.
const (
	offStart    = 0
	offDevice   = 1
	offCmd      = 2
	offPayload  = 3
	offChecksum = 8
	offEnd      = 9
)

// Command is the command code carried in byte 2.
type Command byte

// Commands
const (
	CmdJoystick             Command = 0x01
	CmdButton               Command = 0x02
	CmdHeartbeat            Command = 0x03
	CmdEStop                Command = 0x04
	CmdAnnounceCapabilities Command = 0x05
	CmdServoZ               Command = 0x06
	CmdTelemetry            Command = 0x10

	// CmdCustomFirst and CmdCustomLast bound the user-defined commands.
	CmdCustomFirst Command = 0x20
	CmdCustomLast  Command = 0x3F
)

var commandNames = map[Command]string{
	CmdJoystick:             "JOYSTICK",
	CmdButton:               "BUTTON",
	CmdHeartbeat:            "HEARTBEAT",
	CmdEStop:                "ESTOP",
	CmdAnnounceCapabilities: "ANNOUNCE_CAPABILITIES",
	CmdServoZ:               "SERVO_Z",
	CmdTelemetry:            "TELEMETRY",
}

// IsCustom indicates the command is in the user-defined range.
func (c Command) IsCustom() bool {
	return c >= CmdCustomFirst && c <= CmdCustomLast
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	if c.IsCustom() {
		return fmt.Sprintf("CUSTOM(0x%02x)", byte(c))
	}
	return fmt.Sprintf("0x%02x", byte(c))
}

// AuxBits is the bitmask of auxiliary buttons sent with joystick data.
type AuxBits byte

// Aux button bits.
const (
	AuxW AuxBits = 0x01 // forward/start, servo Z +
	AuxA AuxBits = 0x02
	AuxL AuxBits = 0x04
	AuxR AuxBits = 0x08
	// AuxB shares the bit with AuxA on the default layout (servo Z -).
	AuxB AuxBits = 0x02
)

// Has checks if all bits in mask are set.
func (b AuxBits) Has(mask AuxBits) bool {
	return b&mask == mask
}

// Frame is one raw frame on the wire.
type Frame [Size]byte

// New builds a sealed frame.
func New(deviceID byte, cmd Command, payload [PayloadSize]byte) Frame {
	var f Frame
	f[offDevice], f[offCmd] = deviceID, byte(cmd)
	copy(f[offPayload:offChecksum], payload[:])
	f.Seal()
	return f
}

// FromBytes copies exactly one frame from b.
// Sentinels and checksum are not verified, use Validate for that.
func FromBytes(b []byte) (f Frame, err error) {
	if len(b) != Size {
		return f, ErrFrameSize
	}
	copy(f[:], b)
	return f, nil
}

// Checksum calculates the XOR of the device, command and payload bytes.
func Checksum(f *Frame) byte {
	var x byte
	for _, b := range f[offDevice:offChecksum] {
		x ^= b
	}
	return x
}

// Validate checks sentinels and checksum.
func Validate(f *Frame) bool {
	return f[offStart] == StartByte &&
		f[offEnd] == EndByte &&
		f[offChecksum] == Checksum(f)
}

// Seal writes sentinels and checksum.
func (f *Frame) Seal() {
	f[offStart], f[offEnd] = StartByte, EndByte
	f[offChecksum] = Checksum(f)
}

// DeviceID returns byte 1.
func (f *Frame) DeviceID() byte {
	return f[offDevice]
}

// Command returns byte 2.
func (f *Frame) Command() Command {
	return Command(f[offCmd])
}

// Payload returns a copy of bytes 3..7.
func (f *Frame) Payload() (p [PayloadSize]byte) {
	copy(p[:], f[offPayload:offChecksum])
	return
}

// Bytes returns the frame as a slice for writing.
func (f *Frame) Bytes() []byte {
	return f[:]
}

// String formats the frame as hex.
func (f Frame) String() string {
	return hex.EncodeToString(f[:])
}
