package protocol

import "errors"

var (
	ErrFrameLength = errors.New("frame length out of range")
	ErrFrameCRC    = errors.New("frame CRC mismatch")
	ErrFrameSync   = errors.New("frame missing sync byte")
)

// Encoder writes readings as frames. The sequence number advances with
// every frame so a receiver can detect drops.
type Encoder struct {
	seq uint8
}

// NewEncoder creates an Encoder starting at sequence 0.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// EncodeFrame writes one frame whose payload is produced by frameData.
func (e *Encoder) EncodeFrame(output OutputBuffer, frameData func(output OutputBuffer)) {
	cursor := output.CurPosition()

	// Length placeholder and sequence
	output.Output([]byte{0, MessageDest | e.seq})
	frameData(output)

	changed := len(output.DataSince(cursor))
	output.Update(cursor, uint8(changed+MessageTrailerSize))

	crc := CRC16(output.DataSince(cursor))
	output.Output([]byte{
		uint8(crc >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})

	e.seq = (e.seq + 1) & MessageSeqMask
}

// EncodeReading writes r as one frame.
func (e *Encoder) EncodeReading(output OutputBuffer, r Reading) {
	e.EncodeFrame(output, func(out OutputBuffer) {
		EncodeVLQUint(out, r.Millis)
		EncodeVLQUint(out, uint32(r.Config))
		EncodeVLQInt(out, r.Counts)
		EncodeVLQInt(out, r.Microvolts)
	})
}

// DecodeReading parses a frame payload produced by EncodeReading.
func DecodeReading(payload []byte) (Reading, error) {
	var r Reading
	var err error
	if r.Millis, err = DecodeVLQUint(&payload); err != nil {
		return r, err
	}
	cfg, err := DecodeVLQUint(&payload)
	if err != nil {
		return r, err
	}
	r.Config = uint8(cfg)
	if r.Counts, err = DecodeVLQInt(&payload); err != nil {
		return r, err
	}
	if r.Microvolts, err = DecodeVLQInt(&payload); err != nil {
		return r, err
	}
	return r, nil
}

// Decoder reassembles frames from a byte stream. On any framing error it
// drops back to hunting for the next sync byte.
type Decoder struct {
	input        *FifoBuffer
	synchronized bool
	expectSeq    int // -1 until the first frame

	// Dropped counts frames missed according to the sequence number.
	Dropped int
	// Errors counts discarded frames.
	Errors int
}

// NewDecoder creates a Decoder with room for a few frames of backlog.
func NewDecoder() *Decoder {
	return &Decoder{
		input:        NewFifoBuffer(4 * MessageLengthMax),
		synchronized: true,
		expectSeq:    -1,
	}
}

// Feed appends data and calls fn for every complete reading. It returns
// the number of bytes accepted; bytes beyond the buffer's free space are
// refused and must be fed again.
func (d *Decoder) Feed(data []byte, fn func(Reading)) int {
	n := d.input.Write(data)
	d.Receive(d.input, fn)
	return n
}

// Receive parses the frames available in input and pops what it consumed.
func (d *Decoder) Receive(input InputBuffer, fn func(Reading)) {
	data := input.Data()

	for len(data) > 0 {
		if !d.synchronized {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				data = nil
				break
			}
			data = data[syncPos+1:]
			d.synchronized = true
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}

		payload, msgLen, err := parseFrame(data)
		if err != nil {
			if err == errShortFrame {
				break
			}
			d.Errors++
			d.synchronized = false
			continue
		}

		seq := int(data[MessagePositionSeq] & MessageSeqMask)
		if d.expectSeq >= 0 && seq != d.expectSeq {
			d.Dropped += (seq - d.expectSeq) & MessageSeqMask
		}
		d.expectSeq = (seq + 1) & MessageSeqMask
		data = data[msgLen:]

		r, err := DecodeReading(payload)
		if err != nil {
			d.Errors++
			continue
		}
		if fn != nil {
			fn(r)
		}
	}

	consumed := input.Available() - len(data)
	if consumed > 0 {
		input.Pop(consumed)
	}
}

var errShortFrame = errors.New("short frame")

// parseFrame validates the frame at the start of data and returns its
// payload and total length.
func parseFrame(data []byte) ([]byte, int, error) {
	msgLen := int(data[MessagePositionLen])
	if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
		return nil, 0, ErrFrameLength
	}
	if data[MessagePositionSeq]&^MessageSeqMask != MessageDest {
		return nil, 0, ErrFrameLength
	}
	if len(data) < msgLen {
		return nil, 0, errShortFrame
	}
	if data[msgLen-MessageTrailerSync] != MessageValueSync {
		return nil, 0, ErrFrameSync
	}
	frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
		uint16(data[msgLen-MessageTrailerCRC+1])
	if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
		return nil, 0, ErrFrameCRC
	}
	return data[MessageHeaderSize : msgLen-MessageTrailerSize], msgLen, nil
}
