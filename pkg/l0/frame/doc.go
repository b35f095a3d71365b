// Package frame provides the 10-byte control link codec.
package frame

// The control link is communicated between a controller (joystick/button
// control surface) and an actuated device (receiver) over a peer-to-peer
// channel, e.g. a serial port or Bluetooth SPP.
//
// Every frame has a fixed layout:
//
//	[START][DEV][CMD][D1][D2][D3][D4][D5][CHK][END]
//
// CHK is the XOR of DEV..D5. A frame is well-formed only if START, END and
// CHK all match. Frames are expected to be aligned by the transport, this
// package never scans a byte stream.
//
// Producer: controller (commands), receiver (telemetry, announcement)
// Consumer: receiver (commands), controller (telemetry, announcement)
