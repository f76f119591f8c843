package protocol

import (
	"bytes"
	"testing"
)

func TestVLQEncodeDecodeInt(t *testing.T) {
	testCases := []int32{
		0, 1, -1, 95, -32, 96, -33,
		127, -127, 128, -128,
		1000, -1000, 65535, -65535,
		1000000, -1000000,
		1<<31 - 1, -1 << 31,
	}

	for _, expected := range testCases {
		encoded := AppendVLQ(nil, expected)
		data := encoded
		decoded, err := DecodeVLQ[int32](&data)
		if err != nil {
			t.Errorf("Failed to decode VLQ for value %d: %v", expected, err)
			continue
		}
		if decoded != expected {
			t.Errorf("VLQ mismatch: expected %d, got %d (encoded as %v)", expected, decoded, encoded)
		}
		if len(data) != 0 {
			t.Errorf("VLQ decode left %d bytes for value %d", len(data), expected)
		}
	}
}

func TestVLQEncodeDecodeUint(t *testing.T) {
	testCases := []uint32{
		0, 1, 127, 128, 255, 1000, 65535,
		0x02000000, 0x80000000, 0xFFFFFFFF,
	}

	for _, expected := range testCases {
		data := AppendVLQ(nil, expected)
		decoded, err := DecodeVLQ[uint32](&data)
		if err != nil {
			t.Errorf("Failed to decode VLQ for value %d: %v", expected, err)
			continue
		}
		if decoded != expected {
			t.Errorf("VLQ mismatch: expected 0x%X, got 0x%X", expected, decoded)
		}
	}
}

func TestVLQLength(t *testing.T) {
	testCases := []struct {
		value  int32
		length int
	}{
		{0, 1},
		{95, 1},
		{96, 2},
		{-32, 1},
		{-33, 2},
		{-1, 1},
		{1 << 20, 3},
		{-1 << 31, 5},
	}
	for _, tc := range testCases {
		if got := len(AppendVLQ(nil, tc.value)); got != tc.length {
			t.Errorf("AppendVLQ(%d): expected %d bytes, got %d", tc.value, tc.length, got)
		}
	}
}

func TestVLQBytes(t *testing.T) {
	testCases := [][]byte{
		{},
		{0x01},
		{0xFF, 0xFE, 0xFD},
		make([]byte, 50),
	}

	for i, expected := range testCases {
		data := AppendBytes(nil, expected)
		decoded, err := DecodeBytes(&data)
		if err != nil {
			t.Errorf("Test case %d: Failed to decode bytes: %v", i, err)
			continue
		}
		if !bytes.Equal(decoded, expected) {
			t.Errorf("Test case %d: expected %v, got %v", i, expected, decoded)
		}
	}
}

func TestVLQBufferTooSmall(t *testing.T) {
	data := []byte{0x80} // Continuation byte but no following byte
	if _, err := DecodeVLQ[uint32](&data); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}

	data = nil
	if _, err := DecodeVLQ[uint32](&data); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall on empty input, got %v", err)
	}

	data = []byte{5, 1, 2}
	if _, err := DecodeBytes(&data); err != ErrBufferTooSmall {
		t.Errorf("Expected ErrBufferTooSmall for short byte string, got %v", err)
	}
}
