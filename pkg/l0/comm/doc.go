// Package comm provides the stream side of the control link.
package comm

// Frames travel over a byte stream (serial port, TCP, Bluetooth SPP) with
// no length prefix. The Parser hunts for the START sentinel, collects a
// full frame and confirms the END sentinel, rescanning the collected bytes
// when END doesn't match. A partially received frame is dropped when the
// inter-byte timer expires.
//
// Checksum verification is left to frame.Decode; Link counts and drops
// invalid frames before they reach a FrameHandler.
