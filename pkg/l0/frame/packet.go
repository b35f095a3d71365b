package frame

// Payload is the command-specific content of a decoded frame.
// Implementations: Joystick, Button, ServoZ and Empty.
type Payload interface {
	// Fields returns the legacy flat representation.
	Fields() Fields
}

// Fields is the flat record used by existing firmware. The meaning of
// each field depends on the command.
type Fields struct {
	LeftX   int8
	LeftY   int8
	RightX  int8
	RightY  int8
	RightZ  int8
	AuxBits byte
}

// Joystick carries four remapped axes and aux buttons.
type Joystick struct {
	LeftX  int8
	LeftY  int8
	RightX int8
	RightY int8
	Aux    AuxBits
}

// Fields implements Payload.
func (p Joystick) Fields() Fields {
	return Fields{
		LeftX:   p.LeftX,
		LeftY:   p.LeftY,
		RightX:  p.RightX,
		RightY:  p.RightY,
		AuxBits: byte(p.Aux),
	}
}

// Button carries a button ID and its state byte (1 pressed, 0 released).
type Button struct {
	ID    byte
	State byte
}

// Pressed indicates the button is down.
func (p Button) Pressed() bool {
	return p.State != 0
}

// Fields implements Payload. The button ID appears both as LeftX and
// AuxBits, LeftY carries the state, all without remapping.
func (p Button) Fields() Fields {
	return Fields{
		LeftX:   int8(p.ID),
		LeftY:   int8(p.State),
		AuxBits: p.ID,
	}
}

// ServoZ carries the remapped servo Z position.
type ServoZ struct {
	Z int8
}

// Fields implements Payload.
func (p ServoZ) Fields() Fields {
	return Fields{RightZ: p.Z}
}

// Empty is the payload of commands without decoded fields.
type Empty struct{}

// Fields implements Payload.
func (Empty) Fields() Fields {
	return Fields{}
}

// ControlPacket is the result of Decode.
type ControlPacket struct {
	Valid   bool
	Cmd     Command
	Payload Payload
}

// Fields returns the flat representation of the payload.
func (p ControlPacket) Fields() Fields {
	if p.Payload == nil {
		return Fields{}
	}
	return p.Payload.Fields()
}

// Decode validates a frame and decodes its payload by command.
// Invalid frames produce a packet with Valid false and Cmd 0.
func Decode(f *Frame) ControlPacket {
	pkt := ControlPacket{Payload: Empty{}}
	if !Validate(f) {
		return pkt
	}
	pkt.Valid, pkt.Cmd = true, f.Command()
	d := f[offPayload:offChecksum]
	switch pkt.Cmd {
	case CmdJoystick:
		pkt.Payload = Joystick{
			LeftX:  Remap(d[0]),
			LeftY:  Remap(d[1]),
			RightX: Remap(d[2]),
			RightY: Remap(d[3]),
			Aux:    AuxBits(d[4]),
		}
	case CmdButton:
		pkt.Payload = Button{ID: d[0], State: d[1]}
	case CmdServoZ:
		pkt.Payload = ServoZ{Z: Remap(d[0])}
	}
	return pkt
}
