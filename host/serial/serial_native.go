package serial

import (
	"errors"
	"fmt"

	"github.com/tarm/serial"
)

// NativePort is a Port backed by github.com/tarm/serial.
type NativePort struct {
	port *serial.Port
	cfg  Config
}

// Open opens the serial device described by cfg.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("serial: nil config")
	}
	if cfg.Device == "" {
		return nil, errors.New("serial: no device")
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return &NativePort{port: port, cfg: *cfg}, nil
}

func (p *NativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the device.
func (p *NativePort) Close() error {
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}

// Flush discards buffered input and output.
func (p *NativePort) Flush() error {
	return p.port.Flush()
}

// Device returns the device path the port was opened with.
func (p *NativePort) Device() string {
	return p.cfg.Device
}
