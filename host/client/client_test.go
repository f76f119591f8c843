package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"nrfspim/monitor"
	"nrfspim/protocol"
	"nrfspim/spim"
	"nrfspim/spim/spimtest"
)

// serve runs m on conn until the connection closes.
func serve(conn net.Conn, m *monitor.Monitor) {
	d := protocol.NewDecoder()
	buf := make([]byte, 64)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		d.Write(buf[:n])
		if err := m.Process(d, conn); err != nil {
			return
		}
	}
}

type fixture struct {
	client *Client
	mon    *monitor.Monitor
	a, b   *spimtest.Block
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	a, b := spimtest.New(), spimtest.New()
	m := monitor.New(a.Peripheral(spim.NRF52), b.Peripheral(spim.Baseline))
	host, target := net.Pipe()
	go serve(target, m)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(host, logger)
	t.Cleanup(func() {
		c.Close()
		target.Close()
	})
	return &fixture{client: c, mon: m, a: a, b: b}
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestIdentify(t *testing.T) {
	f := newFixture(t)
	variants, err := f.client.Identify(testContext(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(variants) != 2 || variants[0] != spim.NRF52 || variants[1] != spim.Baseline {
		t.Errorf("variants: %v", variants)
	}
}

func TestBringUpSequence(t *testing.T) {
	f := newFixture(t)
	ctx := testContext(t)
	c := f.client

	steps := []struct {
		name string
		run  func() error
	}{
		{"pins", func() error { return c.SetPins(ctx, 0, 3, 4, spim.PinNotConnected) }},
		{"frequency", func() error { return c.SetFrequency(ctx, 0, spim.Freq2M) }},
		{"configure", func() error { return c.Configure(ctx, 0, spim.Mode2, spim.LSBFirst) }},
		{"orc", func() error { return c.SetORC(ctx, 0, 0xFF) }},
		{"interrupts", func() error { return c.EnableInterrupts(ctx, 0, spim.InterruptEnd|spim.InterruptStarted) }},
		{"shorts", func() error { return c.EnableShorts(ctx, 0, spim.ShortEndStart) }},
		{"enable", func() error { return c.Enable(ctx, 0) }},
		{"start", func() error { return c.Trigger(ctx, 0, spim.TaskStart) }},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
	}

	r := f.a.Regs
	if r.PSEL.SCK.Get() != 3 || r.PSEL.MOSI.Get() != 4 || r.PSEL.MISO.Get() != uint32(spim.PinNotConnected) {
		t.Error("pins not written")
	}
	if r.FREQUENCY.Get() != uint32(spim.Freq2M) {
		t.Errorf("FREQUENCY: %08X", r.FREQUENCY.Get())
	}
	if r.CONFIG.Get() != spim.ConfigValue(spim.Mode2, spim.LSBFirst) {
		t.Errorf("CONFIG: %b", r.CONFIG.Get())
	}
	if r.ORC.Get() != 0xFF || r.ENABLE.Get() != spim.ENABLE_Enabled || r.TASKS_START.Get() != 1 {
		t.Error("orc, enable or start not written")
	}
	if r.INTENSET.Get() != uint32(spim.InterruptEnd|spim.InterruptStarted) {
		t.Errorf("INTENSET: %08X", r.INTENSET.Get())
	}
	if r.SHORTS.Get() != uint32(spim.ShortEndStart) {
		t.Errorf("SHORTS: %08X", r.SHORTS.Get())
	}
}

func TestEventAndInterruptQueries(t *testing.T) {
	f := newFixture(t)
	ctx := testContext(t)

	f.a.SetWord(uintptr(spim.EventEndRx), 1)
	set, err := f.client.EventSet(ctx, 0, spim.EventEndRx)
	if err != nil || !set {
		t.Fatalf("EventSet: %v %v", set, err)
	}
	if err := f.client.ClearEvent(ctx, 0, spim.EventEndRx); err != nil {
		t.Fatal(err)
	}
	if set, _ := f.client.EventSet(ctx, 0, spim.EventEndRx); set {
		t.Error("event still set after clear")
	}

	if err := f.client.EnableInterrupts(ctx, 0, spim.InterruptStopped); err != nil {
		t.Fatal(err)
	}
	f.a.Settle()
	on, err := f.client.InterruptEnabled(ctx, 0, spim.InterruptStopped)
	if err != nil || !on {
		t.Errorf("InterruptEnabled: %v %v", on, err)
	}
	if err := f.client.DisableInterrupts(ctx, 0, spim.InterruptStopped); err != nil {
		t.Fatal(err)
	}
	f.a.Settle()
	if on, _ := f.client.InterruptEnabled(ctx, 0, spim.InterruptStopped); on {
		t.Error("interrupt still enabled")
	}
	if err := f.client.DisableShorts(ctx, 0, spim.ShortEndStart); err != nil {
		t.Error(err)
	}
	if err := f.client.Disable(ctx, 0); err != nil {
		t.Error(err)
	}
}

func TestStatusErrors(t *testing.T) {
	f := newFixture(t)
	ctx := testContext(t)

	testCases := []struct {
		name   string
		err    error
		expect error
	}{
		{"bad instance", f.client.Enable(ctx, 5), ErrBadInstance},
		{"END on baseline", f.client.ClearEvent(ctx, 1, spim.EventEnd), ErrUnsupported},
		{"shorts on baseline", f.client.EnableShorts(ctx, 1, spim.ShortEndStart), ErrUnsupported},
		{"bad task", f.client.Trigger(ctx, 0, spim.Task(0x18)), ErrBadArgument},
		{"bad frequency", f.client.SetFrequency(ctx, 0, spim.Frequency(1)), ErrBadArgument},
	}
	for _, tc := range testCases {
		if !errors.Is(tc.err, tc.expect) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.expect, tc.err)
		}
	}

	// The link stays usable after rejected requests.
	if _, err := f.client.Identify(ctx); err != nil {
		t.Errorf("identify after errors: %v", err)
	}
}

func TestStagingRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := testContext(t)

	data := make([]byte, 120)
	for i := range data {
		data[i] = byte(i * 3)
	}
	if err := f.client.WriteTx(ctx, 0, 10, data); err != nil {
		t.Fatal(err)
	}
	if err := f.client.SetTxBuffer(ctx, 0, 130); err != nil {
		t.Fatal(err)
	}
	if f.a.Regs.TXD.MAXCNT.Get() != 130 {
		t.Errorf("TXD.MAXCNT: %d", f.a.Regs.TXD.MAXCNT.Get())
	}
	if err := f.client.SetRxBuffer(ctx, 0, 200); err != nil {
		t.Fatal(err)
	}

	// Nothing has written the RX buffer, so it reads back zeroed.
	rx, err := f.client.ReadRx(ctx, 0, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rx, make([]byte, 100)) {
		t.Errorf("rx: %x", rx)
	}

	if err := f.client.WriteTx(ctx, 0, 250, make([]byte, 10)); !errors.Is(err, ErrBadArgument) {
		t.Errorf("overlong write: %v", err)
	}
	if _, err := f.client.ReadRx(ctx, 0, 250, 10); !errors.Is(err, ErrBadArgument) {
		t.Errorf("overlong read: %v", err)
	}
}

func TestRegisters(t *testing.T) {
	f := newFixture(t)
	ctx := testContext(t)

	p := f.a.Peripheral(spim.NRF52)
	p.Enable()
	p.SetFrequency(spim.Freq1M)
	f.a.SetWord(uintptr(spim.EventStopped), 1)
	f.a.Regs.RXD.AMOUNT.Set(0x1FF)

	r, err := f.client.Registers(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.Enable != spim.ENABLE_Enabled || r.Frequency != uint32(spim.Freq1M) {
		t.Errorf("registers: %+v", r)
	}
	if r.RxAmount != 0xFF {
		t.Errorf("RxAmount not masked: %X", r.RxAmount)
	}
	if r.Events != uint32(spim.InterruptStopped) {
		t.Errorf("Events: %08X", r.Events)
	}
}

func TestContextCancel(t *testing.T) {
	host, target := net.Pipe()
	defer target.Close()

	// Drain requests without answering.
	go io.Copy(io.Discard, target)

	c := New(host, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := c.Enable(ctx, 0); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestStaleResponseSkipped(t *testing.T) {
	host, target := net.Pipe()
	defer target.Close()

	c := New(host, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer c.Close()

	go func() {
		buf := make([]byte, protocol.FrameMax)
		n, err := target.Read(buf)
		if err != nil {
			return
		}
		d := protocol.NewDecoder()
		d.Write(buf[:n])
		req, ok := d.Next()
		if !ok {
			return
		}
		ok1 := protocol.AppendVLQ(nil, uint8(monitor.StatusOK))
		stale, _ := protocol.AppendFrame(nil, protocol.NextSeq(req.Seq), append(ok1, 1))
		good, _ := protocol.AppendFrame(nil, req.Seq, append(ok1, 0))
		target.Write(append(stale, good...))
	}()

	set, err := c.EventSet(testContext(t), 0, spim.EventStarted)
	if err != nil {
		t.Fatal(err)
	}
	if set {
		t.Error("answer taken from a response with the wrong sequence")
	}
}

func TestClosed(t *testing.T) {
	host, target := net.Pipe()
	defer target.Close()
	c := New(host, nil)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if err := c.Enable(testContext(t), 0); err == nil {
		t.Error("request on closed client succeeded")
	}
}

// eofPort answers every read with EOF after delay and swallows writes.
type eofPort struct {
	delay time.Duration
}

func (p eofPort) Read(b []byte) (int, error) {
	time.Sleep(p.delay)
	return 0, io.EOF
}

func (p eofPort) Write(b []byte) (int, error) { return len(b), nil }
func (p eofPort) Close() error                { return nil }

func TestEOFReads(t *testing.T) {
	testCases := []struct {
		name    string
		delay   time.Duration
		timeout time.Duration
		expect  error
	}{
		// Immediate EOFs mean the device went away.
		{"hung up port", 0, 0, io.EOF},
		// EOFs that wait out the read timeout are an idle link.
		{"idle port", 5 * time.Millisecond, time.Second, context.DeadlineExceeded},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c := New(eofPort{delay: tc.delay}, slog.New(slog.NewTextHandler(io.Discard, nil)))
			defer c.Close()

			ctx := context.Background()
			if tc.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tc.timeout)
				defer cancel()
			}
			errc := make(chan error, 1)
			go func() { errc <- c.Enable(ctx, 0) }()
			select {
			case err := <-errc:
				if !errors.Is(err, tc.expect) {
					t.Errorf("expected %v, got %v", tc.expect, err)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("request never returned")
			}
		})
	}
}
