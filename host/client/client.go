// Package client drives a SPIM bring-up monitor over a serial link.
//
// A Client has at most one request outstanding. Each request carries the
// next sequence number and the matching response is the next frame with
// that sequence; responses left over from cancelled calls are skipped.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"nrfspim/monitor"
	"nrfspim/protocol"
	"nrfspim/spim"
)

var (
	ErrUnknownCommand = errors.New("monitor: unknown command")
	ErrBadArgument    = errors.New("monitor: bad argument")
	ErrBadInstance    = errors.New("monitor: bad instance")
	ErrUnsupported    = errors.New("monitor: unsupported by variant")
	ErrMalformed      = errors.New("client: malformed response")
	ErrClosed         = errors.New("client: closed")
)

// A read that ends in EOF sooner than eofFast did not wait out the port's
// read timeout. maxFastEOF of those in a row means the device is gone.
const (
	eofFast    = time.Millisecond
	maxFastEOF = 50
)

var statusErrors = map[monitor.Status]error{
	monitor.StatusUnknownCommand: ErrUnknownCommand,
	monitor.StatusBadArgument:    ErrBadArgument,
	monitor.StatusBadInstance:    ErrBadInstance,
	monitor.StatusUnsupported:    ErrUnsupported,
}

// Client is the host side of the monitor protocol.
type Client struct {
	port io.ReadWriteCloser
	log  *slog.Logger

	mu  sync.Mutex
	seq uint8
	out []byte

	frames  chan protocol.Frame
	closing atomic.Bool
	done    chan struct{}
	readErr error
}

// New starts a Client on port. A nil logger uses slog.Default.
func New(port io.ReadWriteCloser, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		port:   port,
		log:    logger,
		seq:    protocol.SeqDest,
		out:    make([]byte, 0, protocol.FrameMax),
		frames: make(chan protocol.Frame, 16),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Close closes the port and waits for the read loop to exit.
func (c *Client) Close() error {
	if c.closing.Swap(true) {
		<-c.done
		return nil
	}
	err := c.port.Close()
	<-c.done
	return err
}

func (c *Client) readLoop() {
	defer close(c.done)
	d := protocol.NewDecoder()
	buf := make([]byte, 256)
	dropped := 0
	fastEOF := 0
	for {
		start := time.Now()
		n, err := c.port.Read(buf)
		if n > 0 {
			fastEOF = 0
			d.Write(buf[:n])
			for {
				f, ok := d.Next()
				if !ok {
					break
				}
				c.deliver(f)
			}
			if d.Dropped != dropped {
				c.log.Debug("discarded corrupt input", "frames", d.Dropped-dropped)
				dropped = d.Dropped
			}
		}
		if err != nil {
			if c.closing.Load() {
				return
			}
			if errors.Is(err, io.EOF) {
				// Serial reads time out with EOF.
				if n == 0 && time.Since(start) < eofFast {
					fastEOF++
				} else {
					fastEOF = 0
				}
				if fastEOF < maxFastEOF {
					time.Sleep(10 * time.Millisecond)
					continue
				}
				err = fmt.Errorf("port hung up: %w", err)
			}
			c.readErr = err
			c.log.Error("serial read failed", "err", err)
			return
		}
	}
}

func (c *Client) deliver(f protocol.Frame) {
	select {
	case c.frames <- f:
	default:
		// Drop the oldest frame.
		select {
		case <-c.frames:
		default:
		}
		c.frames <- f
	}
}

// call sends one request and returns the response values after the
// status. instance is omitted when negative.
func (c *Client) call(ctx context.Context, cmd monitor.Command, instance int, args ...uint32) ([]byte, error) {
	req := protocol.AppendVLQ(make([]byte, 0, protocol.PayloadMax), uint8(cmd))
	if instance >= 0 {
		req = protocol.AppendVLQ(req, uint32(instance))
	}
	for _, a := range args {
		req = protocol.AppendVLQ(req, a)
	}
	return c.roundTrip(ctx, cmd, req)
}

func (c *Client) roundTrip(ctx context.Context, cmd monitor.Command, req []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seq := c.seq
	c.seq = protocol.NextSeq(seq)
	frame, err := protocol.AppendFrame(c.out[:0], seq, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd, err)
	}
	c.log.Debug("request", "cmd", cmd, "seq", seq, "len", len(req))
	if _, err := c.port.Write(frame); err != nil {
		return nil, fmt.Errorf("%s: write: %w", cmd, err)
	}

	for {
		select {
		case f := <-c.frames:
			if f.Seq != seq {
				c.log.Debug("stale response", "seq", f.Seq, "want", seq)
				continue
			}
			return c.status(cmd, f.Payload)
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", cmd, ctx.Err())
		case <-c.done:
			if c.readErr != nil {
				return nil, fmt.Errorf("%s: %w", cmd, c.readErr)
			}
			return nil, fmt.Errorf("%s: %w", cmd, ErrClosed)
		}
	}
}

func (c *Client) status(cmd monitor.Command, resp []byte) ([]byte, error) {
	st, err := protocol.DecodeVLQ[uint8](&resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd, ErrMalformed)
	}
	s := monitor.Status(st)
	if s == monitor.StatusOK {
		return resp, nil
	}
	c.log.Debug("request rejected", "cmd", cmd, "status", s)
	if err, ok := statusErrors[s]; ok {
		return nil, fmt.Errorf("%s: %w", cmd, err)
	}
	return nil, fmt.Errorf("%s: %s: %w", cmd, s, ErrMalformed)
}

func decodeBool(cmd monitor.Command, resp []byte) (bool, error) {
	v, err := protocol.DecodeVLQ[uint32](&resp)
	if err != nil {
		return false, fmt.Errorf("%s: %w", cmd, ErrMalformed)
	}
	return v != 0, nil
}

// Identify returns the variant of every instance the monitor serves.
func (c *Client) Identify(ctx context.Context) ([]spim.Variant, error) {
	resp, err := c.call(ctx, monitor.CmdIdentify, -1)
	if err != nil {
		return nil, err
	}
	n, err := protocol.DecodeVLQ[uint32](&resp)
	if err != nil || n > uint32(len(resp)) {
		return nil, fmt.Errorf("%s: %w", monitor.CmdIdentify, ErrMalformed)
	}
	variants := make([]spim.Variant, n)
	for i := range variants {
		v, err := protocol.DecodeVLQ[uint8](&resp)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", monitor.CmdIdentify, ErrMalformed)
		}
		variants[i] = spim.Variant(v)
	}
	return variants, nil
}

// Trigger writes 1 to a task register.
func (c *Client) Trigger(ctx context.Context, instance int, task spim.Task) error {
	_, err := c.call(ctx, monitor.CmdTrigger, instance, uint32(task))
	return err
}

// ClearEvent writes 0 to an event register.
func (c *Client) ClearEvent(ctx context.Context, instance int, ev spim.Event) error {
	_, err := c.call(ctx, monitor.CmdEventClear, instance, uint32(ev))
	return err
}

// EventSet reports whether the event register reads non-zero.
func (c *Client) EventSet(ctx context.Context, instance int, ev spim.Event) (bool, error) {
	resp, err := c.call(ctx, monitor.CmdEventCheck, instance, uint32(ev))
	if err != nil {
		return false, err
	}
	return decodeBool(monitor.CmdEventCheck, resp)
}

// EnableShorts sets the shortcut bits in mask.
func (c *Client) EnableShorts(ctx context.Context, instance int, mask spim.Short) error {
	_, err := c.call(ctx, monitor.CmdShortsEnable, instance, uint32(mask))
	return err
}

// DisableShorts clears the shortcut bits in mask. Other bits are kept.
func (c *Client) DisableShorts(ctx context.Context, instance int, mask spim.Short) error {
	_, err := c.call(ctx, monitor.CmdShortsDisable, instance, uint32(mask))
	return err
}

// EnableInterrupts writes mask to INTENSET.
func (c *Client) EnableInterrupts(ctx context.Context, instance int, mask spim.Interrupt) error {
	_, err := c.call(ctx, monitor.CmdInterruptEnable, instance, uint32(mask))
	return err
}

// DisableInterrupts writes mask to INTENCLR.
func (c *Client) DisableInterrupts(ctx context.Context, instance int, mask spim.Interrupt) error {
	_, err := c.call(ctx, monitor.CmdInterruptDisable, instance, uint32(mask))
	return err
}

// InterruptEnabled reports whether any interrupt in mask is enabled.
func (c *Client) InterruptEnabled(ctx context.Context, instance int, mask spim.Interrupt) (bool, error) {
	resp, err := c.call(ctx, monitor.CmdInterruptCheck, instance, uint32(mask))
	if err != nil {
		return false, err
	}
	return decodeBool(monitor.CmdInterruptCheck, resp)
}

// Enable switches the instance on in SPIM mode.
func (c *Client) Enable(ctx context.Context, instance int) error {
	_, err := c.call(ctx, monitor.CmdEnable, instance)
	return err
}

// Disable switches the instance off.
func (c *Client) Disable(ctx context.Context, instance int) error {
	_, err := c.call(ctx, monitor.CmdDisable, instance)
	return err
}

// SetPins selects the SCK, MOSI and MISO pins. Use spim.PinNotConnected
// to leave a line unused.
func (c *Client) SetPins(ctx context.Context, instance int, sck, mosi, miso spim.Pin) error {
	_, err := c.call(ctx, monitor.CmdPins, instance, uint32(sck), uint32(mosi), uint32(miso))
	return err
}

// SetFrequency writes one of the predefined SCK frequencies.
func (c *Client) SetFrequency(ctx context.Context, instance int, f spim.Frequency) error {
	_, err := c.call(ctx, monitor.CmdFrequency, instance, uint32(f))
	return err
}

// Configure sets the SPI mode and bit order.
func (c *Client) Configure(ctx context.Context, instance int, mode spim.Mode, order spim.BitOrder) error {
	_, err := c.call(ctx, monitor.CmdConfigure, instance, uint32(mode), uint32(order))
	return err
}

// SetORC sets the byte clocked out once TXD.MAXCNT bytes are sent.
func (c *Client) SetORC(ctx context.Context, instance int, orc byte) error {
	_, err := c.call(ctx, monitor.CmdORC, instance, uint32(orc))
	return err
}

// WriteTx copies data into the instance's TX staging buffer at offset,
// split into chunks that fit a frame.
func (c *Client) WriteTx(ctx context.Context, instance, offset int, data []byte) error {
	if offset < 0 || offset+len(data) > monitor.BufferSize {
		return fmt.Errorf("%s: %d bytes at %d: %w", monitor.CmdTxWrite, len(data), offset, ErrBadArgument)
	}
	for len(data) > 0 {
		n := min(len(data), monitor.ChunkMax)
		req := protocol.AppendVLQ(nil, uint8(monitor.CmdTxWrite))
		req = protocol.AppendVLQ(req, uint32(instance))
		req = protocol.AppendVLQ(req, uint32(offset))
		req = protocol.AppendBytes(req, data[:n])
		if _, err := c.roundTrip(ctx, monitor.CmdTxWrite, req); err != nil {
			return err
		}
		data = data[n:]
		offset += n
	}
	return nil
}

// SetTxBuffer points TXD at the first n staged bytes.
func (c *Client) SetTxBuffer(ctx context.Context, instance, n int) error {
	_, err := c.call(ctx, monitor.CmdTxBuffer, instance, uint32(n))
	return err
}

// SetRxBuffer points RXD at the RX staging buffer with room for n bytes.
func (c *Client) SetRxBuffer(ctx context.Context, instance, n int) error {
	_, err := c.call(ctx, monitor.CmdRxBuffer, instance, uint32(n))
	return err
}

// ReadRx returns n bytes of the RX staging buffer starting at offset.
func (c *Client) ReadRx(ctx context.Context, instance, offset, n int) ([]byte, error) {
	if offset < 0 || n < 0 || offset+n > monitor.BufferSize {
		return nil, fmt.Errorf("%s: %d bytes at %d: %w", monitor.CmdRxRead, n, offset, ErrBadArgument)
	}
	out := make([]byte, 0, n)
	for n > 0 {
		chunk := min(n, monitor.ChunkMax)
		resp, err := c.call(ctx, monitor.CmdRxRead, instance, uint32(offset), uint32(chunk))
		if err != nil {
			return nil, err
		}
		data, err := protocol.DecodeBytes(&resp)
		if err != nil || len(data) != chunk {
			return nil, fmt.Errorf("%s: %w", monitor.CmdRxRead, ErrMalformed)
		}
		out = append(out, data...)
		offset += chunk
		n -= chunk
	}
	return out, nil
}

// Registers returns a snapshot of the instance's registers.
func (c *Client) Registers(ctx context.Context, instance int) (monitor.Registers, error) {
	var r monitor.Registers
	resp, err := c.call(ctx, monitor.CmdRegisters, instance)
	if err != nil {
		return r, err
	}
	for _, f := range r.Fields() {
		v, err := protocol.DecodeVLQ[uint32](&resp)
		if err != nil {
			return r, fmt.Errorf("%s: %w", monitor.CmdRegisters, ErrMalformed)
		}
		*f = v
	}
	return r, nil
}
