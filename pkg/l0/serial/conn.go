package serial

import (
	"io"
	"net"
	"strings"
	"time"

	"go.bug.st/serial"
)

// TCPScheme prefixes addresses dialed over TCP instead of a serial port.
const TCPScheme = "tcp://"

// Conn is an opened transport.
type Conn struct {
	io.ReadWriteCloser
	Addr string
	// ReadTimeout is true if Read returns 0 bytes after a timeout
	// instead of blocking.
	ReadTimeout bool
}

// Open opens a serial port, or dials TCP if addr starts with tcp://.
// readTimeout only applies to serial ports, 0 blocks reads.
func Open(addr string, opts Options, readTimeout time.Duration) (*Conn, error) {
	if strings.HasPrefix(addr, TCPScheme) {
		conn, err := net.Dial("tcp", strings.TrimPrefix(addr, TCPScheme))
		if err != nil {
			return nil, err
		}
		return &Conn{ReadWriteCloser: conn, Addr: addr}, nil
	}
	mode, err := opts.Mode()
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(addr, mode)
	if err != nil {
		return nil, err
	}
	c := &Conn{ReadWriteCloser: port, Addr: addr}
	if readTimeout > 0 {
		if err = port.SetReadTimeout(readTimeout); err != nil {
			port.Close()
			return nil, err
		}
		c.ReadTimeout = true
	}
	return c, nil
}

// Ports lists serial ports available on the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
