package profile

import (
	"fmt"
	"strconv"
	"strings"

	"nrfspim/spim"
)

var (
	tasks  = []spim.Task{spim.TaskStart, spim.TaskStop, spim.TaskSuspend, spim.TaskResume}
	events = []spim.Event{spim.EventStopped, spim.EventEndRx, spim.EventEnd, spim.EventEndTx, spim.EventStarted}
	freqs  = []spim.Frequency{
		spim.Freq125K, spim.Freq250K, spim.Freq500K,
		spim.Freq1M, spim.Freq2M, spim.Freq4M, spim.Freq8M,
	}
)

// normalize upper-cases s and drops separators, so "end_rx", "EndRx" and
// "ENDRX" compare equal.
func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

// ParseTask parses a task name such as "start" or "TASKS_STOP".
func ParseTask(s string) (spim.Task, error) {
	n := strings.TrimPrefix(normalize(s), "TASKS")
	for _, t := range tasks {
		if n == t.String() {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown task %q", s)
}

// ParseEvent parses an event name such as "end_rx" or "EVENTS_STOPPED".
func ParseEvent(s string) (spim.Event, error) {
	n := strings.TrimPrefix(normalize(s), "EVENTS")
	for _, e := range events {
		if n == e.String() {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown event %q", s)
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})
}

// ParseInterrupts parses a list of event names separated by '|', ',' or
// spaces into an interrupt mask. A hex number is taken as a raw mask and
// "none" as zero.
func ParseInterrupts(s string) (spim.Interrupt, error) {
	var mask spim.Interrupt
	for _, f := range splitList(s) {
		if strings.EqualFold(f, "none") {
			continue
		}
		if v, err := strconv.ParseUint(f, 0, 32); err == nil {
			mask |= spim.Interrupt(v)
			continue
		}
		e, err := ParseEvent(f)
		if err != nil {
			return 0, fmt.Errorf("unknown interrupt %q", f)
		}
		mask |= e.Interrupt()
	}
	return mask, nil
}

// ParseShorts parses a list of shortcut names, e.g. "end_start".
func ParseShorts(s string) (spim.Short, error) {
	var mask spim.Short
	for _, f := range splitList(s) {
		switch n := normalize(f); {
		case n == "NONE":
		case n == normalize(spim.ShortEndStart.String()):
			mask |= spim.ShortEndStart
		default:
			if v, err := strconv.ParseUint(f, 0, 32); err == nil {
				mask |= spim.Short(v)
				continue
			}
			return 0, fmt.Errorf("unknown shortcut %q", f)
		}
	}
	return mask, nil
}

// ParseFrequency accepts a rate name ("125k" to "8M", with an optional
// "Hz" or "bps" suffix), an exact bit rate in Hz, or a raw register code.
func ParseFrequency(s string) (spim.Frequency, error) {
	n := normalize(s)
	n = strings.TrimSuffix(n, "HZ")
	n = strings.TrimSuffix(n, "BPS")
	for _, f := range freqs {
		if n == f.String() {
			return f, nil
		}
	}
	if v, err := strconv.ParseUint(n, 0, 32); err == nil {
		if f := spim.Frequency(v); f.Hz() != 0 {
			return f, nil
		}
		for _, f := range freqs {
			if f.Hz() == uint32(v) {
				return f, nil
			}
		}
	}
	return 0, fmt.Errorf("unsupported frequency %q", s)
}

// ParseMode accepts "0" to "3" or "MODE_n".
func ParseMode(s string) (spim.Mode, error) {
	n := strings.TrimPrefix(normalize(s), "MODE")
	v, err := strconv.ParseUint(n, 10, 8)
	if err != nil || spim.Mode(v) > spim.Mode3 {
		return 0, fmt.Errorf("unknown SPI mode %q", s)
	}
	return spim.Mode(v), nil
}

// ParseBitOrder accepts "msb", "lsb", "msb_first" or "lsb_first".
func ParseBitOrder(s string) (spim.BitOrder, error) {
	switch strings.TrimSuffix(normalize(s), "FIRST") {
	case "MSB":
		return spim.MSBFirst, nil
	case "LSB":
		return spim.LSBFirst, nil
	}
	return 0, fmt.Errorf("unknown bit order %q", s)
}

// ParsePin accepts a pin number, nRF port notation ("P0.13", "P1.02") or
// "nc" for a disconnected pin.
func ParsePin(s string) (spim.Pin, error) {
	n := normalize(s)
	if n == "NC" {
		return spim.PinNotConnected, nil
	}
	if rest, ok := strings.CutPrefix(n, "P"); ok {
		port, pin, found := strings.Cut(rest, ".")
		p, err1 := strconv.ParseUint(port, 10, 8)
		q, err2 := strconv.ParseUint(pin, 10, 8)
		if !found || err1 != nil || err2 != nil || p > 1 || q > 31 {
			return 0, fmt.Errorf("bad pin %q", s)
		}
		return spim.Pin(p*32 + q), nil
	}
	v, err := strconv.ParseUint(n, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad pin %q", s)
	}
	return spim.Pin(v), nil
}
