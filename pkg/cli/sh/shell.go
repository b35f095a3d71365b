package sh

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/rclink/pkg/env"
	fx "github.com/robotalks/rclink/pkg/framework"
	"github.com/robotalks/rclink/pkg/l0/comm"
	"github.com/robotalks/rclink/pkg/l0/serial"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *serial.Config
	Conn   *LinkConn
}

// LinkConn is a running client on an opened link.
type LinkConn struct {
	Ctx    context.Context
	Cancel func()
	Addr   string
	Client *comm.Client

	doneCh chan struct{}
}

// Close stops the client and closes the transport.
func (c *LinkConn) Close() {
	c.Cancel()
	<-c.doneCh
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

// ReplyTimeout is how long commands wait for a reply from the device.
var ReplyTimeout = time.Second

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *serial.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// ClientFrom gets the connected client, nil if not connected.
func ClientFrom(c *ishell.Context) *comm.Client {
	if conn := ShellFrom(c).Conn; conn != nil {
		return conn.Client
	}
	return nil
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Print prints v as JSON when OutputJSON is set, otherwise text.
func Print(c *ishell.Context, v interface{}, text string) {
	if !ShellFrom(c).OutputJSON {
		c.Println(text)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// DoSend runs a send func and reports the result.
func DoSend(c *ishell.Context, send func(*comm.Client) error) error {
	client := ClientFrom(c)
	if client == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	if err := send(client); err != nil {
		c.Err(err)
		return err
	}
	Print(c, map[string]bool{"ok": true}, "OK")
	return nil
}

// WaitFor waits a value from ch for ReplyTimeout.
func WaitFor[T any](c *ishell.Context, ch <-chan T) (v T, err error) {
	select {
	case v = <-ch:
	case <-time.After(ReplyTimeout):
		err = fmt.Errorf("reply timeout")
		c.Err(err)
	}
	return
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect opens the link at addr and starts a client on it.
func (s *Shell) Connect(addr string) error {
	conf := *s.Config
	conf.Port = addr
	link, conn, err := conf.NewLink(addr)
	if err != nil {
		return err
	}
	lc := &LinkConn{
		Addr:   addr,
		Client: comm.NewClient(link),
		doneCh: make(chan struct{}),
	}
	lc.Ctx, lc.Cancel = context.WithCancel(context.Background())
	s.Disconnect()
	s.Conn = lc
	go func() {
		defer close(lc.doneCh)
		err := fx.RunWithContextCloser(lc.Ctx, conn, func() error {
			return lc.Client.Run(lc.Ctx)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.Shell.Printf("link %s closed: %v\n", addr, err)
		}
	}()
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", addr))
	return nil
}

// Disconnect disconnects current link.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Port)
		}
		if err := s.Connect(s.Config.Port); err != nil {
			s.Shell.Printf("connect %q failed: %v\n", s.Config.Port, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "list serial ports",
		Func: func(c *ishell.Context) {
			ports, err := serial.Ports()
			if err != nil {
				c.Err(err)
				return
			}
			if ShellFrom(c).OutputJSON {
				if ports == nil {
					ports = []string{}
				}
				Print(c, ports, "")
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}

	// ConnectCmd connects a link.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT|tcp://HOST:PORT]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			addr := s.Config.Port
			if len(c.Args) > 0 {
				addr = c.Args[0]
			}
			if err := s.Connect(addr); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current link.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "close the current link",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	env.SetupFlags()
	serial.SetupFlags()
	env.Register("link", serial.Default())
	env.MustParse()
	New(serial.Default()).WithAutoConnect(true).Run(flag.Args()...)
}
