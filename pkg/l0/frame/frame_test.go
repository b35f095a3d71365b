package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	f := Frame{StartByte, 0x05, 0x10, 0x4a, 0x03, 0x2c, 0, 0, 0, EndByte}
	require.Equal(t, byte(0x70), Checksum(&f))
	require.Equal(t, Checksum(&f), Checksum(&f))

	f[0], f[8], f[9] = 0x12, 0x34, 0x56
	require.Equal(t, byte(0x70), Checksum(&f), "only bytes 1..7 count")
}

func TestValidate(t *testing.T) {
	good := Frame{StartByte, 0x01, 0x01, 100, 0, 200, 0, 0, 0xac, EndByte}
	require.True(t, Validate(&good))

	testCases := []struct {
		name   string
		offset int
		value  byte
	}{
		{"bad start", 0, 0xab},
		{"bad end", 9, 0x54},
		{"bad checksum", 8, 0xad},
		{"payload flipped", 5, 201},
		{"device flipped", 1, 0x02},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := good
			f[tc.offset] = tc.value
			require.False(t, Validate(&f))
		})
	}
}

func TestNewSeals(t *testing.T) {
	f := New(0x07, CmdCustomFirst, [PayloadSize]byte{1, 2, 3, 4, 5})
	require.Equal(t, StartByte, f[0])
	require.Equal(t, EndByte, f[9])
	require.Equal(t, byte(0x07), f.DeviceID())
	require.Equal(t, CmdCustomFirst, f.Command())
	require.Equal(t, [PayloadSize]byte{1, 2, 3, 4, 5}, f.Payload())
	require.True(t, Validate(&f))
}

func TestFromBytes(t *testing.T) {
	_, err := FromBytes([]byte{StartByte, 1, 2})
	require.Equal(t, ErrFrameSize, err)
	_, err = FromBytes(make([]byte, Size+1))
	require.Equal(t, ErrFrameSize, err)

	src := EncodeEStop(3)
	f, err := FromBytes(src.Bytes())
	require.NoError(t, err)
	require.Equal(t, src, f)
	require.Equal(t, "aa030400000000000755", f.String())
}

func TestCommandString(t *testing.T) {
	require.Equal(t, "JOYSTICK", CmdJoystick.String())
	require.Equal(t, "TELEMETRY", CmdTelemetry.String())
	require.Equal(t, "CUSTOM(0x21)", Command(0x21).String())
	require.Equal(t, "0x7f", Command(0x7f).String())
	require.True(t, Command(0x3f).IsCustom())
	require.False(t, Command(0x40).IsCustom())
	require.False(t, Command(0x1f).IsCustom())
}

func TestAuxBits(t *testing.T) {
	require.Equal(t, AuxA, AuxB)
	bits := AuxW | AuxL
	require.True(t, bits.Has(AuxW))
	require.True(t, bits.Has(AuxW|AuxL))
	require.False(t, bits.Has(AuxR))
	require.False(t, bits.Has(AuxW|AuxR))
}
