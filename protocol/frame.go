// Package protocol implements the framing used between the host tools and
// the SPIM bring-up monitor.
//
// A frame is
//
//	[len][seq][payload ...][crc hi][crc lo][0x7E]
//
// where len counts the whole frame, seq is SeqDest|n with n a 4-bit
// sequence number, and the CRC covers len, seq and the payload. Payload
// fields are VLQ encoded.
package protocol

const (
	HeaderSize  = 2
	TrailerSize = 3
	FrameMin    = HeaderSize + TrailerSize
	FrameMax    = 64
	PayloadMax  = FrameMax - FrameMin

	SyncByte = 0x7E
	SeqMask  = 0x0F
	SeqDest  = 0x10

	posLen = 0
	posSeq = 1
)

// Frame is a decoded frame.
type Frame struct {
	Seq     uint8
	Payload []byte
}

// NextSeq returns the sequence number following seq.
func NextSeq(seq uint8) uint8 {
	return (seq+1)&SeqMask | SeqDest
}

// AppendFrame appends a frame carrying payload to dst.
func AppendFrame(dst []byte, seq uint8, payload []byte) ([]byte, error) {
	if len(payload) > PayloadMax {
		return dst, ErrFrameTooLong
	}
	start := len(dst)
	dst = append(dst, byte(len(payload)+FrameMin), seq&SeqMask|SeqDest)
	dst = append(dst, payload...)
	crc := CRC16(dst[start:])
	return append(dst, byte(crc>>8), byte(crc), SyncByte), nil
}
