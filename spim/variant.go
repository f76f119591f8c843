package spim

// Variant describes which optional SPIM features a chip implements.
type Variant uint8

const (
	// Baseline SPIM: no END event and no SHORTS register.
	Baseline Variant = iota
	// NRF52 adds the END event, its interrupt and the END_START shortcut.
	NRF52
)

// HasEnd reports whether the END event and SHORTS register exist.
func (v Variant) HasEnd() bool {
	return v == NRF52
}

// Supports reports whether e exists on this variant.
func (v Variant) Supports(e Event) bool {
	switch e {
	case EventStopped, EventEndRx, EventEndTx, EventStarted:
		return true
	case EventEnd:
		return v.HasEnd()
	}
	return false
}

// Events lists the events of this variant in register order.
func (v Variant) Events() []Event {
	if v.HasEnd() {
		return []Event{EventStopped, EventEndRx, EventEnd, EventEndTx, EventStarted}
	}
	return []Event{EventStopped, EventEndRx, EventEndTx, EventStarted}
}

// Interrupts returns the mask of every interrupt this variant implements.
func (v Variant) Interrupts() Interrupt {
	var mask Interrupt
	for _, e := range v.Events() {
		mask |= e.Interrupt()
	}
	return mask
}

// Shorts returns the mask of every shortcut this variant implements.
func (v Variant) Shorts() Short {
	if v.HasEnd() {
		return ShortEndStart
	}
	return 0
}
