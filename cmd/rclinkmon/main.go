package main

import (
	"log"
	"reflect"

	"github.com/robotalks/rclink/pkg/env"
	"github.com/robotalks/rclink/pkg/framework"
	"github.com/robotalks/rclink/pkg/msgs"
	"github.com/robotalks/rclink/pkg/telemetry/mqtt"
)

const program = "rclinkmon"

func init() {
	env.SetupFlags()
	mqtt.SetupFlags()
	env.Register("mqtt", mqtt.Default())
}

func main() {
	env.MustParse()
	log.SetFlags(log.Lmicroseconds)

	conf := mqtt.Default()
	if !conf.Enabled() {
		log.Fatalln("MQTT broker URL required, use -mqtt or RCLINK_MQTT_URL")
	}
	q, err := conf.NewQueue(program)
	if err != nil {
		log.Fatalln(err)
	}
	mon := mqtt.NewMonitor(q, func(topic string, msg msgs.Message) {
		log.Printf("%s: [%s] %s", topic,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(), msg.String())
	})
	err = framework.NewRunner().HandleSignals().Go(framework.NamedRun("monitor", mon)).Wait()
	if err != nil {
		log.Fatalln(err)
	}
}
