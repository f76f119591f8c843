// Package serial opens the host side of the monitor link.
package serial

import (
	"io"
	"time"
)

// Port is a serial link to a board running the monitor. Tests substitute
// an in-memory pipe.
type Port interface {
	io.ReadWriteCloser

	// Flush discards data not yet read or written.
	Flush() error
}

// Config holds serial port configuration.
type Config struct {
	// Device path, e.g. "/dev/ttyACM0" or "COM3".
	Device string

	// Baud rate. USB CDC ignores it.
	Baud int

	// ReadTimeout bounds a single Read. Zero blocks.
	ReadTimeout time.Duration
}

// DefaultBaud is the UART rate the nRF52 monitor firmware uses.
const DefaultBaud = 115200

// DefaultConfig returns the configuration for the monitor firmware on
// device.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100 * time.Millisecond,
	}
}
