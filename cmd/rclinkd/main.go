package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/rclink/pkg/env"
	"github.com/robotalks/rclink/pkg/framework"
	"github.com/robotalks/rclink/pkg/joystick"
	"github.com/robotalks/rclink/pkg/l0/comm"
	"github.com/robotalks/rclink/pkg/l0/comm/websocket"
	"github.com/robotalks/rclink/pkg/l0/serial"
	"github.com/robotalks/rclink/pkg/msgs"
	"github.com/robotalks/rclink/pkg/telemetry/mqtt"
)

const program = "rclinkd"

var (
	httpAddr = ":8080"
	deviceID = uint(1)
)

func init() {
	env.SetupFlags()
	serial.SetupFlags()
	joystick.SetupFlags()
	mqtt.SetupFlags()
	flag.StringVar(&httpAddr, "http", httpAddr, "Address serving /ws and /metrics, empty to disable.")
	flag.UintVar(&deviceID, "device-id", deviceID, "Target device ID.")

	env.Register("link", serial.Default())
	env.Register("joystick", joystick.Default())
	env.Register("mqtt", mqtt.Default())
}

func deviceByte(id uint) (byte, error) {
	if id > 0xff {
		return 0, fmt.Errorf("invalid -device-id %d, must be 0-255", id)
	}
	return byte(id), nil
}

func main() {
	env.MustParse()
	id, err := deviceByte(deviceID)
	if err != nil {
		log.Fatalln(err)
	}

	link, conn := serial.Default().MustNewLink(program)
	link.Stats = comm.NewStats(link.Name, prometheus.DefaultRegisterer)
	client := comm.NewClient(link)
	client.DeviceID = id
	handlers := comm.FrameHandlers{client}

	runnables := []framework.Runnable{
		framework.NamedRun("link", framework.RunFunc(func(ctx context.Context) error {
			return framework.RunWithContextCloser(ctx, conn, func() error {
				return client.Run(ctx)
			})
		})),
		framework.NamedRun("joystick", joystick.Default().NewController(client)),
	}

	if conf := mqtt.Default(); conf.Enabled() {
		pub := conf.MustNewPublisher(program, link.Name)
		pub.Status = func() *msgs.LinkStatus {
			return msgs.NewLinkStatus(link.Name, client.Health(), link.Stats.Snapshot())
		}
		handlers = append(handlers, pub)
		link.SentHandler = pub.SentHandler()
		runnables = append(runnables, framework.NamedRun("mqtt", pub))
	}

	if httpAddr != "" {
		bridge := websocket.NewBridge(link)
		handlers = append(handlers, bridge)
		mux := http.NewServeMux()
		mux.Handle("/ws", bridge.Handler())
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: httpAddr, Handler: mux}
		ln, err := net.Listen("tcp", httpAddr)
		if err != nil {
			log.Fatalln(err)
		}
		runnables = append(runnables, framework.NamedRun("http", framework.RunFunc(func(ctx context.Context) error {
			return framework.RunWithContextCloser(ctx, srv, func() error {
				return srv.Serve(ln)
			})
		})))
	}
	link.Handler = handlers

	err = framework.NewRunner().HandleSignals().Go(runnables...).Wait()
	if err != nil {
		log.Fatalln(err)
	}
}
