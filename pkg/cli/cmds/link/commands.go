package link

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rclink/pkg/cli/sh"
	"github.com/robotalks/rclink/pkg/l0/comm"
	"github.com/robotalks/rclink/pkg/l0/frame"
)

// Decoded is the printable form of a decoded frame.
type Decoded struct {
	Frame        string                 `json:"frame"`
	Valid        bool                   `json:"valid"`
	DeviceID     byte                   `json:"device_id"`
	Command      string                 `json:"command"`
	Fields       frame.Fields           `json:"fields"`
	Heartbeat    *frame.Heartbeat       `json:"heartbeat,omitempty"`
	Telemetry    *frame.TelemetryReport `json:"telemetry,omitempty"`
	Capabilities *frame.Capabilities    `json:"capabilities,omitempty"`
}

// Decode decodes a frame including the command specific views.
func Decode(f *frame.Frame) *Decoded {
	pkt := frame.Decode(f)
	d := &Decoded{
		Frame:    f.String(),
		Valid:    pkt.Valid,
		DeviceID: f.DeviceID(),
		Command:  f.Command().String(),
		Fields:   pkt.Fields(),
	}
	if hb, ok := frame.ParseHeartbeat(f); ok {
		d.Heartbeat = &hb
	}
	if r, ok := frame.ParseTelemetry(f); ok {
		d.Telemetry = &r
	}
	if caps, ok := frame.ParseCapabilities(f); ok {
		d.Capabilities = &caps
	}
	return d
}

// String implements fmt.Stringer.
func (d *Decoded) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s valid=%v dev=0x%02x %s %+v", d.Frame, d.Valid, d.DeviceID, d.Command, d.Fields)
	switch {
	case d.Heartbeat != nil:
		fmt.Fprintf(&sb, " seq=%d uptime=%d", d.Heartbeat.Seq, d.Heartbeat.Uptime)
	case d.Telemetry != nil:
		fmt.Fprintf(&sb, " %s", formatTelemetry(*d.Telemetry))
	case d.Capabilities != nil:
		fmt.Fprintf(&sb, " %s (%s)", d.Capabilities, d.Capabilities.Board)
	}
	return sb.String()
}

func formatTelemetry(r frame.TelemetryReport) string {
	s := fmt.Sprintf("dev=0x%02x voltage=%.1fV safe=%v", r.DeviceID, r.Voltage, r.SafeMode())
	if r.Custom() {
		return s + fmt.Sprintf(" counters=%v", r.Counters)
	}
	return s + fmt.Sprintf(" packets=%d", r.PacketsReceived)
}

// ParseHexFrame parses a frame from hex bytes, separators are ignored.
func ParseHexFrame(args ...string) (frame.Frame, error) {
	s := strings.NewReplacer(" ", "", ":", "", "-", "", "0x", "", "0X", "").Replace(strings.Join(args, ""))
	b, err := hex.DecodeString(s)
	if err != nil {
		return frame.Frame{}, err
	}
	return frame.FromBytes(b)
}

func parseFloats(args []string) ([]float64, error) {
	vals := make([]float64, len(args))
	for n, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, err
		}
		vals[n] = v
	}
	return vals, nil
}

func parseByte(arg string) (byte, error) {
	v, err := strconv.ParseUint(arg, 0, 8)
	return byte(v), err
}

func parsePressed(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "down", "press", "pressed":
		return true, nil
	case "off", "up", "release", "released":
		return false, nil
	}
	return strconv.ParseBool(arg)
}

// Status is the link status printed by the stats command.
type Status struct {
	Addr         string             `json:"addr"`
	Health       string             `json:"health"`
	Stats        comm.StatsSnapshot `json:"stats"`
	Capabilities frame.Capabilities `json:"capabilities"`
	Announced    bool               `json:"announced"`
}

var (
	// EStopCmd sends ESTOP.
	EStopCmd = ishell.Cmd{
		Name:    "estop",
		Aliases: []string{"stop", "x"},
		Help:    "send emergency stop",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoSend(c, (*comm.Client).EStop)
		}),
	}

	// JoystickCmd sends JOYSTICK.
	JoystickCmd = ishell.Cmd{
		Name:    "joy",
		Aliases: []string{"j"},
		Help:    "LX LY RX RY [AUX]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 4 {
				c.Err(fmt.Errorf("expect 4 axes"))
				return
			}
			axes, err := parseFloats(c.Args[:4])
			if err != nil {
				c.Err(err)
				return
			}
			var aux byte
			if len(c.Args) > 4 {
				if aux, err = parseByte(c.Args[4]); err != nil {
					c.Err(err)
					return
				}
			}
			sh.DoSend(c, func(client *comm.Client) error {
				return client.Joystick(axes[0], axes[1], axes[2], axes[3], frame.AuxBits(aux))
			})
		}),
	}

	// ServoZCmd sends SERVO_Z.
	ServoZCmd = ishell.Cmd{
		Name:    "servo",
		Aliases: []string{"z"},
		Help:    "Z",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			vals, err := parseFloats(c.Args)
			if err == nil && len(vals) != 1 {
				err = fmt.Errorf("expect 1 value")
			}
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoSend(c, func(client *comm.Client) error {
				return client.ServoZ(vals[0])
			})
		}),
	}

	// ButtonCmd sends BUTTON.
	ButtonCmd = ishell.Cmd{
		Name:    "button",
		Aliases: []string{"b"},
		Help:    "ID on|off",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Err(fmt.Errorf("expect ID and state"))
				return
			}
			id, err := parseByte(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			pressed, err := parsePressed(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoSend(c, func(client *comm.Client) error {
				return client.Button(id, pressed)
			})
		}),
	}

	// HeartbeatCmd sends HEARTBEAT.
	HeartbeatCmd = ishell.Cmd{
		Name:    "heartbeat",
		Aliases: []string{"hb"},
		Help:    "send a heartbeat",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoSend(c, (*comm.Client).Heartbeat)
		}),
	}

	// AnnounceCmd requests and prints device capabilities.
	AnnounceCmd = ishell.Cmd{
		Name:    "announce",
		Aliases: []string{"caps"},
		Help:    "query device capabilities",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			client := sh.ClientFrom(c)
			capsCh := client.CapabilitiesChan()
			for drained := false; !drained; {
				select {
				case <-capsCh:
				default:
					drained = true
				}
			}
			if err := client.RequestCapabilities(); err != nil {
				c.Err(err)
				return
			}
			caps, err := sh.WaitFor(c, capsCh)
			if err != nil {
				return
			}
			sh.Print(c, caps, fmt.Sprintf("%s (%s)", caps, caps.Board))
		}),
	}

	// CustomCmd sends a user-defined command.
	CustomCmd = ishell.Cmd{
		Name:    "custom",
		Aliases: []string{"cc"},
		Help:    "CMD B1 B2 B3 B4 B5",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) != 1+frame.PayloadSize {
				c.Err(fmt.Errorf("expect command and %d payload bytes", frame.PayloadSize))
				return
			}
			vals := make([]byte, len(c.Args))
			for n, arg := range c.Args {
				v, err := parseByte(arg)
				if err != nil {
					c.Err(err)
					return
				}
				vals[n] = v
			}
			sh.DoSend(c, func(client *comm.Client) error {
				return client.Custom(frame.Command(vals[0]), vals[1:])
			})
		}),
	}

	// DecodeCmd decodes a frame given in hex.
	DecodeCmd = ishell.Cmd{
		Name:    "decode",
		Aliases: []string{"dec"},
		Help:    "HEX",
		Func: func(c *ishell.Context) {
			f, err := ParseHexFrame(c.Args...)
			if err != nil {
				c.Err(err)
				return
			}
			d := Decode(&f)
			sh.Print(c, d, d.String())
		},
	}

	// TelemetryCmd waits and prints the next telemetry report.
	TelemetryCmd = ishell.Cmd{
		Name:    "telemetry",
		Aliases: []string{"t"},
		Help:    "wait for the next telemetry report",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			r, err := sh.WaitFor(c, sh.ClientFrom(c).TelemetryChan())
			if err != nil {
				return
			}
			sh.Print(c, r, formatTelemetry(r))
		}),
	}

	// StatsCmd prints link status and counters.
	StatsCmd = ishell.Cmd{
		Name:    "stats",
		Aliases: []string{"s"},
		Help:    "show link health and counters",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			client := s.Conn.Client
			st := Status{
				Addr:   s.Conn.Addr,
				Health: client.Health().String(),
				Stats:  client.Link().Stats.Snapshot(),
			}
			st.Capabilities, st.Announced = client.Capabilities()
			sh.Print(c, st, fmt.Sprintf("%s %s received=%d invalid=%d sent=%d suppressed=%d discarded=%d caps=%s",
				st.Addr, st.Health, st.Stats.Received, st.Stats.Invalid, st.Stats.Sent,
				st.Stats.Suppressed, st.Stats.Discarded, st.Capabilities))
		}),
	}
)

func init() {
	sh.AddCmds(
		&EStopCmd,
		&JoystickCmd,
		&ServoZCmd,
		&ButtonCmd,
		&HeartbeatCmd,
		&AnnounceCmd,
		&CustomCmd,
		&DecodeCmd,
		&TelemetryCmd,
		&StatsCmd,
	)
}
