// Package protocol implements the compact binary framing used to stream
// converter readings over a serial link.
//
// A frame is laid out like a Klipper message block:
//
//	<len> <0x10|seq> <payload...> <crc hi> <crc lo> <0x7E>
//
// The payload is a sequence of VLQ encoded integers.
package protocol

// Version is the frame format version reported by the host tool.
const Version = "1"

const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
	MessageSeqMask     = 0x0F

	// MessageMax bounds a scratch buffer holding several frames.
	MessageMax = 256
)

// Reading is one reported converter result.
type Reading struct {
	Millis     uint32 // Timebase at the end of the averaging window
	Config     uint8  // Active configuration id
	Counts     int32  // Averaged raw result
	Microvolts int32  // Calibrated result
}
