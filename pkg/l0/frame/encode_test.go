package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncoders(t *testing.T) {
	testCases := []struct {
		name   string
		frame  Frame
		cmd    Command
		expect [PayloadSize]byte
	}{
		{"joystick", EncodeJoystick(1, 0, -1, 1, 0.5, AuxA|AuxL), CmdJoystick, [PayloadSize]byte{100, 0, 200, 150, 0x06}},
		{"servo z", EncodeServoZ(1, -0.5), CmdServoZ, [PayloadSize]byte{50}},
		{"button pressed", EncodeButton(1, 3, true), CmdButton, [PayloadSize]byte{3, 1}},
		{"button released", EncodeButton(1, 3, false), CmdButton, [PayloadSize]byte{3, 0}},
		{"estop", EncodeEStop(1), CmdEStop, [PayloadSize]byte{}},
		{"heartbeat", EncodeHeartbeat(1, 0x1234, 0xabcde), CmdHeartbeat, [PayloadSize]byte{0x12, 0x34, 0xbc, 0xde}},
		{"announce", EncodeAnnounce(1, Capabilities{Features: 0xff, Modules: CapBLE, Board: BoardESP32}), CmdAnnounceCapabilities, [PayloadSize]byte{0x7f, 0x40, 0x04}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, Validate(&tc.frame))
			require.Equal(t, byte(1), tc.frame.DeviceID())
			require.Equal(t, tc.cmd, tc.frame.Command())
			require.Equal(t, tc.expect, tc.frame.Payload())
		})
	}
}

func TestEncodeDecodeControl(t *testing.T) {
	f := EncodeJoystick(4, -1, -0.5, 0.5, 1, AuxW)
	require.Equal(t, Joystick{LeftX: -100, LeftY: -50, RightX: 50, RightY: 100, Aux: AuxW}, Decode(&f).Payload)

	f = EncodeServoZ(4, 0.25)
	require.Equal(t, ServoZ{Z: 25}, Decode(&f).Payload)

	f = EncodeButton(4, 9, true)
	require.Equal(t, Button{ID: 9, State: 1}, Decode(&f).Payload)
}

func TestHeartbeat(t *testing.T) {
	f := EncodeHeartbeat(1, 0xfffe, 70000)
	hb, ok := ParseHeartbeat(&f)
	require.True(t, ok)
	require.Equal(t, Heartbeat{Seq: 0xfffe, Uptime: uint16(70000 & 0xffff)}, hb)

	f = EncodeEStop(1)
	_, ok = ParseHeartbeat(&f)
	require.False(t, ok)
}

func TestEncodeCustom(t *testing.T) {
	f, err := EncodeCustom(1, 0x20, []byte{1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.True(t, Validate(&f))
	require.Equal(t, Command(0x20), f.Command())
	require.Equal(t, Empty{}, Decode(&f).Payload)

	_, err = EncodeCustom(1, 0x3f, []byte{1, 2, 3, 4, 5})
	require.NoError(t, err)

	_, err = EncodeCustom(1, CmdJoystick, []byte{1, 2, 3, 4, 5})
	require.Error(t, err)
	require.IsType(t, &CustomCommandError{}, err)
	require.Contains(t, err.Error(), "0x01")

	_, err = EncodeCustom(1, 0x40, []byte{1, 2, 3, 4, 5})
	require.Error(t, err)

	_, err = EncodeCustom(1, 0x21, []byte{1, 2, 3})
	require.Equal(t, ErrPayloadSize, err)
}

func TestCapabilities(t *testing.T) {
	caps := Capabilities{
		Features: CapServoX | CapMotor | CapWiFi,
		Modules:  ModThermo,
		Board:    BoardUNOR4WiFi,
	}
	f := EncodeAnnounce(2, caps)
	parsed, ok := ParseCapabilities(&f)
	require.True(t, ok)
	require.Equal(t, caps, parsed)
	require.Equal(t, "Servo, Motor, WiFi, Thermo", parsed.String())
	require.Equal(t, "Arduino UNO R4 WiFi", parsed.Board.String())

	f = sealed(2, CmdAnnounceCapabilities, 0, 0, 0x99)
	parsed, ok = ParseCapabilities(&f)
	require.True(t, ok)
	require.Equal(t, BoardUnknown, parsed.Board)
	require.Equal(t, "Basic", parsed.String())

	require.Equal(t, "Servo, Motor", DefaultCapabilities.String())

	f = EncodeEStop(2)
	_, ok = ParseCapabilities(&f)
	require.False(t, ok)
}
