package frame

import "strings"

// Capability bits in payload byte 0.
const (
	CapServoX    byte = 0x01
	CapServoY    byte = 0x02
	CapMotor     byte = 0x04
	CapLEDMatrix byte = 0x08
	CapBuzzer    byte = 0x10
	CapWiFi      byte = 0x20
	CapBLE       byte = 0x40
)

// Modulino module bits in payload byte 1.
const (
	ModPixels   byte = 0x01
	ModThermo   byte = 0x02
	ModDistance byte = 0x04
	ModBuzzer   byte = 0x08
	ModButtons  byte = 0x10
	ModKnob     byte = 0x20
	ModMovement byte = 0x40
)

// BoardType identifies the receiver hardware (payload byte 2).
type BoardType byte

// Board types
const (
	BoardUnknown     BoardType = 0x00
	BoardUNO         BoardType = 0x01
	BoardUNOR4WiFi   BoardType = 0x02
	BoardUNOR4Minima BoardType = 0x03
	BoardESP32       BoardType = 0x04
)

// String implements fmt.Stringer.
func (b BoardType) String() string {
	switch b {
	case BoardUNO:
		return "Arduino UNO"
	case BoardUNOR4WiFi:
		return "Arduino UNO R4 WiFi"
	case BoardUNOR4Minima:
		return "Arduino UNO R4 Minima"
	case BoardESP32:
		return "ESP32"
	}
	return "Unknown"
}

// Capabilities is announced by a receiver after connecting.
type Capabilities struct {
	Features byte
	Modules  byte
	Board    BoardType
}

// DefaultCapabilities is assumed for devices which never announce.
var DefaultCapabilities = Capabilities{
	Features: CapServoX | CapServoY | CapMotor,
}

// Has checks a feature bit.
func (c Capabilities) Has(feature byte) bool {
	return c.Features&feature != 0
}

// HasModule checks a module bit.
func (c Capabilities) HasModule(module byte) bool {
	return c.Modules&module != 0
}

// String returns a short human readable feature list.
func (c Capabilities) String() string {
	var features []string
	if c.Has(CapServoX) || c.Has(CapServoY) {
		features = append(features, "Servo")
	}
	for _, f := range []struct {
		on   bool
		name string
	}{
		{c.Has(CapMotor), "Motor"},
		{c.Has(CapLEDMatrix), "Matrix"},
		{c.Has(CapBuzzer), "Buzzer"},
		{c.Has(CapWiFi), "WiFi"},
		{c.Has(CapBLE), "BLE"},
		{c.HasModule(ModPixels), "Pixels"},
		{c.HasModule(ModThermo), "Thermo"},
		{c.HasModule(ModDistance), "Distance"},
	} {
		if f.on {
			features = append(features, f.name)
		}
	}
	if len(features) == 0 {
		return "Basic"
	}
	return strings.Join(features, ", ")
}

// EncodeAnnounce builds a capability announcement frame.
func EncodeAnnounce(deviceID byte, caps Capabilities) Frame {
	return New(deviceID, CmdAnnounceCapabilities, [PayloadSize]byte{
		caps.Features & 0x7f,
		caps.Modules & 0x7f,
		byte(caps.Board),
	})
}

// ParseCapabilities decodes a capability announcement frame.
func ParseCapabilities(f *Frame) (caps Capabilities, ok bool) {
	if !Validate(f) || f.Command() != CmdAnnounceCapabilities {
		return
	}
	d := f[offPayload:offChecksum]
	caps.Features, caps.Modules = d[0]&0x7f, d[1]&0x7f
	switch b := BoardType(d[2]); b {
	case BoardUNO, BoardUNOR4WiFi, BoardUNOR4Minima, BoardESP32:
		caps.Board = b
	}
	return caps, true
}
