package frame

// MaxVoltage is the highest voltage representable in a telemetry frame.
const MaxVoltage float32 = 25.0

// Telemetry status flags (byte 4).
const (
	StatusSafeMode byte = 0x01
	// StatusCustom indicates bytes 5..7 carry three custom counters
	// instead of the packet counter.
	StatusCustom byte = 0x80
)

// voltageByte saturates v into 0..MaxVoltage and scales it by 10.
func voltageByte(v float32) byte {
	switch {
	case v > MaxVoltage:
		v = MaxVoltage
	case !(v > 0):
		v = 0
	}
	return byte(v * 10)
}

// EncodeTelemetry builds a sealed telemetry frame. Voltage is clamped to
// MaxVoltage and sent in 0.1V units, only the low byte of packetsReceived
// is kept.
func EncodeTelemetry(deviceID byte, voltage float32, statusFlags byte, packetsReceived uint32) Frame {
	return New(deviceID, CmdTelemetry, [PayloadSize]byte{
		voltageByte(voltage),
		statusFlags,
		byte(packetsReceived & 0xff),
	})
}

// EncodeTelemetryCounters builds a telemetry frame carrying three custom
// counters. StatusCustom is set in the status byte.
func EncodeTelemetryCounters(deviceID byte, voltage float32, statusFlags byte, counters [3]byte) Frame {
	return New(deviceID, CmdTelemetry, [PayloadSize]byte{
		voltageByte(voltage),
		statusFlags | StatusCustom,
		counters[0],
		counters[1],
		counters[2],
	})
}

// TelemetryReport is a decoded telemetry frame.
type TelemetryReport struct {
	DeviceID byte
	Voltage  float32
	Status   byte
	// PacketsReceived is the low byte of the device side counter,
	// only meaningful when Custom is false.
	PacketsReceived byte
	// Counters holds the custom counters when Custom is true.
	Counters [3]byte
}

// SafeMode indicates the device entered safe mode.
func (r *TelemetryReport) SafeMode() bool {
	return r.Status&StatusSafeMode != 0
}

// Custom indicates the report carries custom counters.
func (r *TelemetryReport) Custom() bool {
	return r.Status&StatusCustom != 0
}

// ParseTelemetry decodes a telemetry frame.
// ok is false if the frame is invalid or not a telemetry frame.
func ParseTelemetry(f *Frame) (r TelemetryReport, ok bool) {
	if !Validate(f) || f.Command() != CmdTelemetry {
		return
	}
	d := f[offPayload:offChecksum]
	r.DeviceID = f.DeviceID()
	r.Voltage = float32(d[0]) / 10
	r.Status = d[1]
	if r.Custom() {
		copy(r.Counters[:], d[2:5])
	} else {
		r.PacketsReceived = d[2]
	}
	return r, true
}
