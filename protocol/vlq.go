package protocol

import (
	"errors"

	"golang.org/x/exp/constraints"
)

var (
	ErrBufferTooSmall = errors.New("protocol: buffer too small")
	ErrFrameTooLong   = errors.New("protocol: frame too long")
)

// AppendVLQ appends v as a variable length quantity. Values are encoded as
// 32-bit signed integers, so a uint32 survives the round trip unchanged.
// Small negative numbers take one byte, the same as small positive ones.
func AppendVLQ[T constraints.Integer](dst []byte, v T) []byte {
	x := int32(v)
	if !(-(1<<26) <= x && x < (3<<26)) {
		dst = append(dst, byte(x>>28)&0x7F|0x80)
	}
	if !(-(1<<19) <= x && x < (3<<19)) {
		dst = append(dst, byte(x>>21)&0x7F|0x80)
	}
	if !(-(1<<12) <= x && x < (3<<12)) {
		dst = append(dst, byte(x>>14)&0x7F|0x80)
	}
	if !(-(1<<5) <= x && x < (3<<5)) {
		dst = append(dst, byte(x>>7)&0x7F|0x80)
	}
	return append(dst, byte(x)&0x7F)
}

// DecodeVLQ decodes one VLQ from the front of data and advances data past
// it.
func DecodeVLQ[T constraints.Integer](data *[]byte) (T, error) {
	if len(*data) == 0 {
		return 0, ErrBufferTooSmall
	}
	c := uint32((*data)[0])
	*data = (*data)[1:]

	v := c & 0x7F
	if c&0x60 == 0x60 {
		// Sign extend.
		v |= ^uint32(0x1F)
	}
	for c&0x80 != 0 {
		if len(*data) == 0 {
			return 0, ErrBufferTooSmall
		}
		c = uint32((*data)[0])
		*data = (*data)[1:]
		v = v<<7 | c&0x7F
	}
	return T(int32(v)), nil
}

// AppendBytes appends b with a VLQ length prefix.
func AppendBytes(dst []byte, b []byte) []byte {
	dst = AppendVLQ(dst, len(b))
	return append(dst, b...)
}

// DecodeBytes decodes a length prefixed byte string. The result aliases
// data.
func DecodeBytes(data *[]byte) ([]byte, error) {
	n, err := DecodeVLQ[uint32](data)
	if err != nil {
		return nil, err
	}
	if uint32(len(*data)) < n {
		return nil, ErrBufferTooSmall
	}
	b := (*data)[:n]
	*data = (*data)[n:]
	return b, nil
}
