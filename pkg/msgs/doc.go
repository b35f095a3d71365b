// Package msgs defines the messages published for observers of a link.
//
// Frames received on a link are converted to protobuf messages and
// wrapped in a Typed envelope carrying the type ID, so consumers can
// decode them without knowing the topic.
package msgs
