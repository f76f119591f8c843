package spim

import "strconv"

func (t Task) String() string {
	switch t {
	case TaskStart:
		return "START"
	case TaskStop:
		return "STOP"
	case TaskSuspend:
		return "SUSPEND"
	case TaskResume:
		return "RESUME"
	}
	return "Task(0x" + strconv.FormatUint(uint64(t), 16) + ")"
}

func (e Event) String() string {
	switch e {
	case EventStopped:
		return "STOPPED"
	case EventEndRx:
		return "ENDRX"
	case EventEnd:
		return "END"
	case EventEndTx:
		return "ENDTX"
	case EventStarted:
		return "STARTED"
	}
	return "Event(0x" + strconv.FormatUint(uint64(e), 16) + ")"
}

var interruptNames = [...]struct {
	mask Interrupt
	name string
}{
	{InterruptStopped, "STOPPED"},
	{InterruptEndRx, "ENDRX"},
	{InterruptEnd, "END"},
	{InterruptEndTx, "ENDTX"},
	{InterruptStarted, "STARTED"},
}

// String joins the names of the set bits with '|'.
func (i Interrupt) String() string {
	if i == 0 {
		return "0"
	}
	var s string
	for _, n := range interruptNames {
		if i&n.mask == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += n.name
		i &^= n.mask
	}
	if i != 0 {
		if s != "" {
			s += "|"
		}
		s += "0x" + strconv.FormatUint(uint64(i), 16)
	}
	return s
}

func (s Short) String() string {
	switch s {
	case 0:
		return "0"
	case ShortEndStart:
		return "END_START"
	}
	return "Short(0x" + strconv.FormatUint(uint64(s), 16) + ")"
}

func (f Frequency) String() string {
	switch f {
	case Freq125K:
		return "125K"
	case Freq250K:
		return "250K"
	case Freq500K:
		return "500K"
	case Freq1M:
		return "1M"
	case Freq2M:
		return "2M"
	case Freq4M:
		return "4M"
	case Freq8M:
		return "8M"
	}
	return "Frequency(0x" + strconv.FormatUint(uint64(f), 16) + ")"
}

func (m Mode) String() string {
	if m <= Mode3 {
		return "MODE_" + strconv.Itoa(int(m))
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

func (o BitOrder) String() string {
	switch o {
	case MSBFirst:
		return "MSB_FIRST"
	case LSBFirst:
		return "LSB_FIRST"
	}
	return "BitOrder(" + strconv.Itoa(int(o)) + ")"
}

func (v Variant) String() string {
	switch v {
	case Baseline:
		return "baseline"
	case NRF52:
		return "nrf52"
	}
	return "Variant(" + strconv.Itoa(int(v)) + ")"
}

func (p Pin) String() string {
	if p == PinNotConnected {
		return "NC"
	}
	return strconv.FormatUint(uint64(p), 10)
}
