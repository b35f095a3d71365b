package frame

import "encoding/binary"

// EncodeJoystick builds a joystick frame from normalized axes (-1.0..1.0).
func EncodeJoystick(deviceID byte, leftX, leftY, rightX, rightY float64, aux AuxBits) Frame {
	return New(deviceID, CmdJoystick, [PayloadSize]byte{
		AxisByte(leftX),
		AxisByte(leftY),
		AxisByte(rightX),
		AxisByte(rightY),
		byte(aux),
	})
}

// EncodeServoZ builds a servo Z frame from a normalized position.
func EncodeServoZ(deviceID byte, z float64) Frame {
	return New(deviceID, CmdServoZ, [PayloadSize]byte{AxisByte(z)})
}

// EncodeButton builds a button press/release frame.
func EncodeButton(deviceID, buttonID byte, pressed bool) Frame {
	var state byte
	if pressed {
		state = 1
	}
	return New(deviceID, CmdButton, [PayloadSize]byte{buttonID, state})
}

// EncodeEStop builds an emergency stop frame.
func EncodeEStop(deviceID byte) Frame {
	return New(deviceID, CmdEStop, [PayloadSize]byte{})
}

// EncodeHeartbeat builds a heartbeat frame. Only the low 16 bits of
// uptime (milliseconds) are sent, both values big-endian.
func EncodeHeartbeat(deviceID byte, seq uint16, uptime uint64) Frame {
	var payload [PayloadSize]byte
	binary.BigEndian.PutUint16(payload[0:], seq)
	binary.BigEndian.PutUint16(payload[2:], uint16(uptime))
	return New(deviceID, CmdHeartbeat, payload)
}

// Heartbeat is a decoded heartbeat frame.
type Heartbeat struct {
	Seq    uint16
	Uptime uint16
}

// ParseHeartbeat decodes a heartbeat frame.
func ParseHeartbeat(f *Frame) (hb Heartbeat, ok bool) {
	if !Validate(f) || f.Command() != CmdHeartbeat {
		return
	}
	d := f[offPayload:offChecksum]
	hb.Seq = binary.BigEndian.Uint16(d[0:])
	hb.Uptime = binary.BigEndian.Uint16(d[2:])
	return hb, true
}

// EncodeCustom builds a frame for a user-defined command.
func EncodeCustom(deviceID byte, cmd Command, payload []byte) (Frame, error) {
	if !cmd.IsCustom() {
		return Frame{}, &CustomCommandError{Cmd: cmd}
	}
	if len(payload) != PayloadSize {
		return Frame{}, ErrPayloadSize
	}
	var p [PayloadSize]byte
	copy(p[:], payload)
	return New(deviceID, cmd, p), nil
}
