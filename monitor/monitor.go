// Package monitor is a bring-up monitor for SPIM peripherals. It answers
// framed requests from a host by calling one spim accessor per request, so
// a board can be driven register by register over a serial link.
//
// The monitor does not sequence transfers. Starting a transaction is an
// explicit CmdTrigger, and completion is observed with CmdEventCheck, the
// same way firmware would use the accessors.
package monitor

import (
	"io"
	"strconv"

	"nrfspim/protocol"
	"nrfspim/spim"
)

// DebugWriter receives debug messages.
type DebugWriter func(string)

// instance is a peripheral with its DMA staging buffers. The buffers live
// as long as the Monitor, so EasyDMA never points at freed memory.
type instance struct {
	spim.Peripheral
	tx [BufferSize]byte
	rx [BufferSize]byte
}

// Monitor dispatches requests to a fixed set of SPIM instances.
type Monitor struct {
	instances []*instance
	debug     DebugWriter
	resp      []byte
	frame     []byte

	// Handled counts processed requests, including rejected ones.
	Handled uint32
}

// New returns a Monitor serving the given instances. The index of each
// peripheral is its instance number on the wire.
func New(peripherals ...spim.Peripheral) *Monitor {
	m := &Monitor{
		debug: func(string) {},
		resp:  make([]byte, 0, protocol.PayloadMax),
		frame: make([]byte, 0, protocol.FrameMax),
	}
	for _, p := range peripherals {
		m.instances = append(m.instances, &instance{Peripheral: p})
	}
	return m
}

// SetDebugWriter sets where debug messages go. They are dropped by default.
func (m *Monitor) SetDebugWriter(w DebugWriter) {
	if w == nil {
		w = func(string) {}
	}
	m.debug = w
}

// Process handles every complete frame queued in d and writes one response
// frame per request to w.
func (m *Monitor) Process(d *protocol.Decoder, w io.Writer) error {
	for {
		f, ok := d.Next()
		if !ok {
			return nil
		}
		resp := m.Handle(f.Payload)
		out, err := protocol.AppendFrame(m.frame[:0], f.Seq, resp)
		if err != nil {
			return err
		}
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
}

// Handle executes one request payload and returns the response payload.
// The result is valid until the next call.
func (m *Monitor) Handle(req []byte) []byte {
	m.Handled++
	m.resp = m.resp[:0]

	cmd, err := protocol.DecodeVLQ[uint32](&req)
	if err != nil {
		return m.status(StatusBadArgument)
	}
	if cmd >= uint32(cmdCount) {
		m.debug("monitor: unknown command " + strconv.Itoa(int(cmd)))
		return m.status(StatusUnknownCommand)
	}
	c := Command(cmd)
	if c == CmdIdentify {
		return m.identify()
	}

	idx, err := protocol.DecodeVLQ[uint32](&req)
	if err != nil {
		return m.status(StatusBadArgument)
	}
	if idx >= uint32(len(m.instances)) {
		m.debug("monitor: " + c.String() + ": no instance " + strconv.Itoa(int(idx)))
		return m.status(StatusBadInstance)
	}

	st := m.dispatch(c, m.instances[idx], &req)
	if st != StatusOK {
		m.debug("monitor: " + c.String() + ": " + st.String())
		// Drop any partial result.
		m.resp = m.resp[:0]
		return m.status(st)
	}
	return m.resp
}

func (m *Monitor) status(s Status) []byte {
	m.resp = protocol.AppendVLQ(m.resp[:0], uint8(s))
	return m.resp
}

func (m *Monitor) identify() []byte {
	m.status(StatusOK)
	m.resp = protocol.AppendVLQ(m.resp, len(m.instances))
	for _, inst := range m.instances {
		m.resp = protocol.AppendVLQ(m.resp, uint8(inst.Variant))
	}
	return m.resp
}

// args decodes n VLQ arguments.
func args(req *[]byte, n int) ([]uint32, bool) {
	vals := make([]uint32, n)
	for i := range vals {
		v, err := protocol.DecodeVLQ[uint32](req)
		if err != nil {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

func (m *Monitor) dispatch(c Command, inst *instance, req *[]byte) Status {
	p := inst.Peripheral
	switch c {
	case CmdTrigger:
		a, ok := args(req, 1)
		if !ok || !validTask(spim.Task(a[0])) {
			return StatusBadArgument
		}
		p.Trigger(spim.Task(a[0]))

	case CmdEventClear, CmdEventCheck:
		a, ok := args(req, 1)
		if !ok || !validEvent(spim.Event(a[0])) {
			return StatusBadArgument
		}
		ev := spim.Event(a[0])
		if !p.Variant.Supports(ev) {
			return StatusUnsupported
		}
		if c == CmdEventClear {
			p.ClearEvent(ev)
		} else {
			m.status(StatusOK)
			m.resp = appendBool(m.resp, p.EventSet(ev))
			return StatusOK
		}

	case CmdShortsEnable, CmdShortsDisable:
		a, ok := args(req, 1)
		if !ok {
			return StatusBadArgument
		}
		s, ok := p.Shortcuts()
		if !ok || spim.Short(a[0])&^p.Variant.Shorts() != 0 {
			return StatusUnsupported
		}
		if c == CmdShortsEnable {
			s.Enable(spim.Short(a[0]))
		} else {
			s.Disable(spim.Short(a[0]))
		}

	case CmdInterruptEnable, CmdInterruptDisable, CmdInterruptCheck:
		a, ok := args(req, 1)
		if !ok {
			return StatusBadArgument
		}
		mask := spim.Interrupt(a[0])
		if mask&^p.Variant.Interrupts() != 0 {
			return StatusUnsupported
		}
		switch c {
		case CmdInterruptEnable:
			p.EnableInterrupts(mask)
		case CmdInterruptDisable:
			p.DisableInterrupts(mask)
		default:
			m.status(StatusOK)
			m.resp = appendBool(m.resp, p.InterruptEnabled(mask))
			return StatusOK
		}

	case CmdEnable:
		p.Enable()

	case CmdDisable:
		p.Disable()

	case CmdPins:
		a, ok := args(req, 3)
		if !ok {
			return StatusBadArgument
		}
		p.SetPins(spim.Pin(a[0]), spim.Pin(a[1]), spim.Pin(a[2]))

	case CmdFrequency:
		a, ok := args(req, 1)
		if !ok || spim.Frequency(a[0]).Hz() == 0 {
			return StatusBadArgument
		}
		p.SetFrequency(spim.Frequency(a[0]))

	case CmdConfigure:
		a, ok := args(req, 2)
		if !ok || a[0] > 0xFF || a[1] > 0xFF {
			return StatusBadArgument
		}
		p.Configure(spim.Mode(a[0]), spim.BitOrder(a[1]))

	case CmdORC:
		a, ok := args(req, 1)
		if !ok || a[0] > 0xFF {
			return StatusBadArgument
		}
		p.SetORC(byte(a[0]))

	case CmdTxWrite:
		a, ok := args(req, 1)
		if !ok {
			return StatusBadArgument
		}
		data, err := protocol.DecodeBytes(req)
		if err != nil || len(data) > ChunkMax || a[0] > BufferSize || uint32(len(data)) > BufferSize-a[0] {
			return StatusBadArgument
		}
		copy(inst.tx[a[0]:], data)

	case CmdTxBuffer:
		a, ok := args(req, 1)
		if !ok || a[0] > BufferSize {
			return StatusBadArgument
		}
		p.SetTxBuffer(&inst.tx[0], uint8(a[0]))

	case CmdRxBuffer:
		a, ok := args(req, 1)
		if !ok || a[0] > BufferSize {
			return StatusBadArgument
		}
		p.SetRxBuffer(&inst.rx[0], uint8(a[0]))

	case CmdRxRead:
		a, ok := args(req, 2)
		if !ok || a[1] > ChunkMax || a[0] > BufferSize || a[1] > BufferSize-a[0] {
			return StatusBadArgument
		}
		m.status(StatusOK)
		m.resp = protocol.AppendBytes(m.resp, inst.rx[a[0]:a[0]+a[1]])
		return StatusOK

	case CmdRegisters:
		regs := snapshot(p)
		m.status(StatusOK)
		for _, f := range regs.Fields() {
			m.resp = protocol.AppendVLQ(m.resp, *f)
		}
		return StatusOK

	default:
		return StatusUnknownCommand
	}
	m.status(StatusOK)
	return StatusOK
}

func snapshot(p spim.Peripheral) Registers {
	b := p.Bus
	r := Registers{
		Enable:    b.ENABLE.Get(),
		Frequency: b.FREQUENCY.Get(),
		Config:    b.CONFIG.Get(),
		ORC:       b.ORC.Get(),
		IntEnable: b.INTENSET.Get(),
		SCK:       b.PSEL.SCK.Get(),
		MOSI:      b.PSEL.MOSI.Get(),
		MISO:      b.PSEL.MISO.Get(),
		TxMaxCnt:  b.TXD.MAXCNT.Get() & spim.MAXCNT_Msk,
		TxAmount:  uint32(p.TxAmount()),
		RxMaxCnt:  b.RXD.MAXCNT.Get() & spim.MAXCNT_Msk,
		RxAmount:  uint32(p.RxAmount()),
	}
	if p.Variant.HasEnd() {
		r.Shorts = b.SHORTS.Get()
	}
	for _, ev := range p.Variant.Events() {
		if p.EventSet(ev) {
			r.Events |= uint32(ev.Interrupt())
		}
	}
	return r
}

func validTask(t spim.Task) bool {
	switch t {
	case spim.TaskStart, spim.TaskStop, spim.TaskSuspend, spim.TaskResume:
		return true
	}
	return false
}

func validEvent(e spim.Event) bool {
	switch e {
	case spim.EventStopped, spim.EventEndRx, spim.EventEnd, spim.EventEndTx, spim.EventStarted:
		return true
	}
	return false
}

func appendBool(dst []byte, b bool) []byte {
	if b {
		return append(dst, 1)
	}
	return append(dst, 0)
}
