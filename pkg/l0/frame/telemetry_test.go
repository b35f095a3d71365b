package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeTelemetry(t *testing.T) {
	f := EncodeTelemetry(5, 7.4, 0x03, 300)
	require.Equal(t, Frame{StartByte, 5, 0x10, 74, 0x03, 44, 0, 0, 0x70, EndByte}, f)
	require.Equal(t, byte(5^0x10^74^0x03^44), f[8])
	require.True(t, Validate(&f))
	require.Equal(t, f, EncodeTelemetry(5, 7.4, 0x03, 300))
}

func TestEncodeTelemetryVoltage(t *testing.T) {
	testCases := []struct {
		name    string
		voltage float32
		expect  byte
	}{
		{"zero", 0, 0},
		{"nominal", 12.6, 126},
		{"max", 25, 250},
		{"saturated", 30, 250},
		{"way above", 1000, 250},
		{"negative", -3, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := EncodeTelemetry(1, tc.voltage, 0, 0)
			require.Equal(t, tc.expect, f[3])
			require.True(t, Validate(&f))
		})
	}
}

func TestTelemetryRoundTrip(t *testing.T) {
	for _, v := range []float32{0, 3.3, 7.4, 11.1, 24.9, 25} {
		for _, dev := range []byte{0, 1, 0x7f, 0xff} {
			f := EncodeTelemetry(dev, v, 0xff, 0xdeadbeef)
			pkt := Decode(&f)
			require.True(t, pkt.Valid)
			require.Equal(t, CmdTelemetry, pkt.Cmd)
			require.Equal(t, Fields{}, pkt.Fields())
		}
	}
}

func TestParseTelemetry(t *testing.T) {
	f := EncodeTelemetry(5, 7.4, StatusSafeMode, 300)
	r, ok := ParseTelemetry(&f)
	require.True(t, ok)
	require.Equal(t, byte(5), r.DeviceID)
	require.InDelta(t, 7.4, r.Voltage, 0.001)
	require.True(t, r.SafeMode())
	require.False(t, r.Custom())
	require.Equal(t, byte(44), r.PacketsReceived)

	f = EncodeTelemetryCounters(2, 11.1, 0, [3]byte{7, 8, 9})
	r, ok = ParseTelemetry(&f)
	require.True(t, ok)
	require.True(t, r.Custom())
	require.False(t, r.SafeMode())
	require.Equal(t, [3]byte{7, 8, 9}, r.Counters)
	require.Equal(t, byte(0), r.PacketsReceived)

	f = EncodeEStop(1)
	_, ok = ParseTelemetry(&f)
	require.False(t, ok)

	f = EncodeTelemetry(5, 7.4, 0, 1)
	f[8]++
	_, ok = ParseTelemetry(&f)
	require.False(t, ok)
}
