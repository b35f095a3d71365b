package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"log"
	"net"

	"github.com/robotalks/rclink/pkg/env"
	"github.com/robotalks/rclink/pkg/framework"
	"github.com/robotalks/rclink/pkg/sim/receiver"
)

func init() {
	env.SetupFlags()
	receiver.SetupFlags()
	env.Register("sim", receiver.Default())
}

func main() {
	env.MustParse()

	r := receiver.Default().NewReceiver()
	loop := framework.NewLoop().Add(r)
	ln, err := net.Listen("tcp", r.Listen)
	if err != nil {
		log.Fatalln(err)
	}
	err = framework.NewRunner().HandleSignals().Go(
		framework.NamedRun("loop", loop),
		framework.NamedRun("listener", framework.RunFunc(func(ctx context.Context) error {
			return r.Serve(ctx, ln)
		})),
	).Wait()
	if err != nil {
		log.Fatalln(err)
	}
}
