package comm

import (
	"context"

	"github.com/robotalks/rclink/pkg/l0/frame"
)

// FrameHandlers dispatches a frame to all handlers in order.
type FrameHandlers []FrameHandler

// HandleFrame implements FrameHandler.
func (h FrameHandlers) HandleFrame(ctx context.Context, f *frame.Frame, pkt frame.ControlPacket) {
	for _, handler := range h {
		handler.HandleFrame(ctx, f, pkt)
	}
}
