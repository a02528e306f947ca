// Package ledserial implements the LED serial protocol spoken between the
// host and an LED controller.
//
// Every packet is a one byte type, a type specific body and a little endian
// CRC-32 (IEEE) of the type and body. The controller answers every incoming
// packet it handled with an AckPacket.
package ledserial

import (
	"encoding/binary"
	"fmt"
)

// Endianness defines the endianness of the protocol.
var Endianness = binary.LittleEndian

// IncomingPacketType is the type of a packet sent to the controller.
type IncomingPacketType uint8

const (
	TypeInitializePacket IncomingPacketType = iota
	TypeClearPacket
	TypeSetPacket
)

func (t IncomingPacketType) String() string {
	switch t {
	case TypeInitializePacket:
		return "initialize"
	case TypeClearPacket:
		return "clear"
	case TypeSetPacket:
		return "set"
	default:
		return fmt.Sprintf("IncomingPacketType(%d)", t)
	}
}

// IncomingPacket is a packet sent to the controller.
type IncomingPacket interface {
	Type() IncomingPacketType
}

// InitializePacket tells the controller how many LEDs are on the strip.
type InitializePacket struct {
	NumLEDs uint16
}

// ClearPacket turns every LED off.
type ClearPacket struct{}

// SetPacket sets the strip to the given pixels, three bytes per LED.
type SetPacket struct {
	Pix []uint8
}

func (InitializePacket) Type() IncomingPacketType { return TypeInitializePacket }
func (ClearPacket) Type() IncomingPacketType      { return TypeClearPacket }
func (SetPacket) Type() IncomingPacketType        { return TypeSetPacket }

// OutgoingPacketType is the type of a packet sent by the controller.
type OutgoingPacketType uint8

const (
	TypeErrorPacket OutgoingPacketType = iota
	TypePanicPacket
	TypeLogPacket
	TypeAckPacket
)

func (t OutgoingPacketType) String() string {
	switch t {
	case TypeErrorPacket:
		return "error"
	case TypePanicPacket:
		return "panic"
	case TypeLogPacket:
		return "log"
	case TypeAckPacket:
		return "ack"
	default:
		return fmt.Sprintf("OutgoingPacketType(%d)", t)
	}
}

// OutgoingPacket is a packet sent by the controller.
type OutgoingPacket interface {
	Type() OutgoingPacketType
}

// ErrorPacket reports a recoverable error on the controller.
type ErrorPacket struct {
	Message string
}

// PanicPacket reports that the controller cannot recover.
type PanicPacket struct{}

// LogPacket carries a log line from the controller.
type LogPacket struct {
	Message string
}

// AckPacket acknowledges a handled incoming packet.
type AckPacket struct {
	IncomingPacketType IncomingPacketType
}

func (ErrorPacket) Type() OutgoingPacketType { return TypeErrorPacket }
func (PanicPacket) Type() OutgoingPacketType { return TypePanicPacket }
func (LogPacket) Type() OutgoingPacketType   { return TypeLogPacket }
func (AckPacket) Type() OutgoingPacketType   { return TypeAckPacket }

// ReadContext holds the state needed to parse incoming packets.
type ReadContext struct {
	// NumLEDs is the number of LEDs in the strip, as set by the last
	// InitializePacket.
	NumLEDs uint16
}
