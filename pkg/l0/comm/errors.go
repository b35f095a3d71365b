package comm

import (
	"errors"
	"fmt"

	"github.com/robotalks/rclink/pkg/l0/frame"
)

var (
	// ErrThrottled indicates a control frame was suppressed because it's
	// sent too soon after the previous one.
	ErrThrottled = errors.New("throttled")
	// ErrDuplicate indicates a control frame was suppressed because it
	// repeats the previous one.
	ErrDuplicate = errors.New("duplicate frame")
	// ErrNoLink indicates the client has no link attached.
	ErrNoLink = errors.New("no link")
)

// WriteError wraps a transport error with the frame being written.
type WriteError struct {
	Frame frame.Frame
	Err   error
}

// Error implements error.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s %s: %v", e.Frame.Command(), e.Frame, e.Err)
}

// Unwrap returns the transport error.
func (e *WriteError) Unwrap() error {
	return e.Err
}
