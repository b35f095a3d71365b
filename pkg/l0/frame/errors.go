package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrFrameSize indicates the byte slice is not exactly one frame.
	ErrFrameSize = errors.New("frame: size must be 10 bytes")
	// ErrPayloadSize indicates a payload is not exactly 5 bytes.
	ErrPayloadSize = errors.New("frame: payload must be 5 bytes")
)

// CustomCommandError is returned when a custom command is outside of the
// reserved range.
type CustomCommandError struct {
	Cmd Command
}

// Error implements error.
func (e *CustomCommandError) Error() string {
	return fmt.Sprintf("frame: command 0x%02x not in custom range 0x%02x-0x%02x",
		byte(e.Cmd), byte(CmdCustomFirst), byte(CmdCustomLast))
}
