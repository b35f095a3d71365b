package mqtt

import (
	"context"

	"github.com/golang/glog"
	"github.com/robotalks/rclink/pkg/msgs"
)

// MessageHandler receives decoded messages.
type MessageHandler func(topic string, msg msgs.Message)

// Monitor subscribes to everything under the queue prefix and decodes
// messages published by Publishers.
type Monitor struct {
	Queue   *Queue
	Topic   string
	Handler MessageHandler
}

// NewMonitor creates a Monitor subscribing all topics.
func NewMonitor(q *Queue, handler MessageHandler) *Monitor {
	return &Monitor{Queue: q, Topic: "#", Handler: handler}
}

// HandleMessage implements Handler.
func (m *Monitor) HandleMessage(topic string, payload []byte) {
	msg, err := msgs.Decode(payload)
	if err != nil {
		glog.Warningf("%s: bad message: %v", topic, err)
		return
	}
	m.Handler(topic, msg)
}

// Run implements Runnable.
func (m *Monitor) Run(ctx context.Context) error {
	token := m.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	defer m.Queue.Close()
	sub := m.Queue.Sub(m.Topic, m.HandleMessage)
	defer sub.Close()
	if sub.Token.Wait(); sub.Token.Error() != nil {
		return sub.Token.Error()
	}
	<-ctx.Done()
	return ctx.Err()
}
