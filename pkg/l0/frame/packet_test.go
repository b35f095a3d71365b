package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sealed(dev byte, cmd Command, d ...byte) Frame {
	var p [PayloadSize]byte
	copy(p[:], d)
	return New(dev, cmd, p)
}

func TestDecodeInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		frame Frame
	}{
		{"zero", Frame{}},
		{"bad start", Frame{0x00, 1, 1, 100, 100, 100, 100, 0, 0x01, EndByte}},
		{"bad end", Frame{StartByte, 1, 1, 100, 100, 100, 100, 0, 0x01, 0x00}},
		{"bad checksum", Frame{StartByte, 1, 1, 100, 0, 200, 0, 0, 0xad, EndByte}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pkt := Decode(&tc.frame)
			require.False(t, pkt.Valid)
			require.Equal(t, Command(0), pkt.Cmd)
			require.Equal(t, Empty{}, pkt.Payload)
			require.Equal(t, Fields{}, pkt.Fields())
		})
	}
}

func TestDecodeJoystick(t *testing.T) {
	f := Frame{StartByte, 0x01, 0x01, 100, 0, 200, 0, 0x00, 0xac, EndByte}
	pkt := Decode(&f)
	require.True(t, pkt.Valid)
	require.Equal(t, CmdJoystick, pkt.Cmd)
	require.Equal(t, Joystick{LeftX: 0, LeftY: -100, RightX: 100, RightY: -100}, pkt.Payload)
	require.Equal(t, Fields{LeftX: 0, LeftY: -100, RightX: 100, RightY: -100}, pkt.Fields())

	f = sealed(2, CmdJoystick, 255, 150, 50, 100, byte(AuxW|AuxR))
	pkt = Decode(&f)
	require.Equal(t, Joystick{LeftX: 100, LeftY: 50, RightX: -50, RightY: 0, Aux: AuxW | AuxR}, pkt.Payload)
	require.Equal(t, byte(0x09), pkt.Fields().AuxBits)
	require.Equal(t, int8(0), pkt.Fields().RightZ)
}

func TestDecodeButton(t *testing.T) {
	f := sealed(1, CmdButton, 0x04, 1, 0x77, 0x66, 0x55)
	pkt := Decode(&f)
	require.True(t, pkt.Valid)
	require.Equal(t, CmdButton, pkt.Cmd)
	btn, ok := pkt.Payload.(Button)
	require.True(t, ok)
	require.Equal(t, byte(0x04), btn.ID)
	require.True(t, btn.Pressed())
	require.Equal(t, Fields{LeftX: 4, LeftY: 1, AuxBits: 4}, pkt.Fields())

	// raw bytes are not remapped, IDs above 127 wrap like the firmware's int8.
	f = sealed(1, CmdButton, 0xc8, 0)
	pkt = Decode(&f)
	require.False(t, pkt.Payload.(Button).Pressed())
	require.Equal(t, Fields{LeftX: -56, LeftY: 0, AuxBits: 0xc8}, pkt.Fields())
}

func TestDecodeServoZ(t *testing.T) {
	f := sealed(1, CmdServoZ, 150, 200, 200, 200, 0xff)
	pkt := Decode(&f)
	require.True(t, pkt.Valid)
	require.Equal(t, ServoZ{Z: 50}, pkt.Payload)
	require.Equal(t, Fields{RightZ: 50}, pkt.Fields())
}

func TestDecodeWithoutPayloadFields(t *testing.T) {
	for _, cmd := range []Command{
		CmdHeartbeat,
		CmdEStop,
		CmdAnnounceCapabilities,
		CmdTelemetry,
		Command(0x00),
		Command(0x25),
		Command(0xff),
	} {
		t.Run(cmd.String(), func(t *testing.T) {
			f := sealed(9, cmd, 1, 2, 3, 4, 5)
			pkt := Decode(&f)
			require.True(t, pkt.Valid)
			require.Equal(t, cmd, pkt.Cmd)
			require.Equal(t, Empty{}, pkt.Payload)
			require.Equal(t, Fields{}, pkt.Fields())
		})
	}
}

func TestControlPacketNilPayload(t *testing.T) {
	var pkt ControlPacket
	require.Equal(t, Fields{}, pkt.Fields())
}
