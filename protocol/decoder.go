package protocol

import "bytes"

// Decoder extracts frames from a byte stream. After a malformed frame it
// drops input up to the next sync byte and carries on from there.
type Decoder struct {
	buf    []byte
	synced bool

	// Dropped counts frames rejected for a bad length, sequence, sync byte
	// or CRC.
	Dropped int
}

// NewDecoder returns a Decoder that expects a frame boundary at the start
// of the stream.
func NewDecoder() *Decoder {
	return &Decoder{synced: true}
}

// Write queues stream data. It never fails.
func (d *Decoder) Write(p []byte) (int, error) {
	d.buf = append(d.buf, p...)
	return len(p), nil
}

// Buffered returns the number of queued bytes not yet consumed.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Reset discards queued data.
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
	d.synced = true
}

// Next returns the next complete frame. It returns false when more data is
// needed. The returned payload does not alias the Decoder's buffer.
func (d *Decoder) Next() (Frame, bool) {
	for len(d.buf) > 0 {
		if !d.synced {
			i := bytes.IndexByte(d.buf, SyncByte)
			if i < 0 {
				d.consume(len(d.buf))
				return Frame{}, false
			}
			d.consume(i + 1)
			d.synced = true
			continue
		}
		if d.buf[0] == SyncByte {
			d.consume(1)
			continue
		}
		if len(d.buf) < FrameMin {
			break
		}

		n := int(d.buf[posLen])
		if n < FrameMin || n > FrameMax {
			d.desync()
			continue
		}
		seq := d.buf[posSeq]
		if seq&^SeqMask != SeqDest {
			d.desync()
			continue
		}
		if len(d.buf) < n {
			break
		}
		if d.buf[n-1] != SyncByte {
			d.desync()
			continue
		}
		crc := uint16(d.buf[n-TrailerSize])<<8 | uint16(d.buf[n-TrailerSize+1])
		if crc != CRC16(d.buf[:n-TrailerSize]) {
			d.desync()
			continue
		}

		payload := make([]byte, n-FrameMin)
		copy(payload, d.buf[HeaderSize:n-TrailerSize])
		d.consume(n)
		return Frame{Seq: seq, Payload: payload}, true
	}
	return Frame{}, false
}

func (d *Decoder) desync() {
	d.synced = false
	d.Dropped++
}

func (d *Decoder) consume(n int) {
	rest := copy(d.buf, d.buf[n:])
	d.buf = d.buf[:rest]
}

