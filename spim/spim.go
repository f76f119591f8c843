// Package spim is a register-level HAL for the nRF52 SPI master with
// EasyDMA (SPIM).
//
// Every accessor performs a single volatile access (SHORTS updates are one
// read followed by one write) on the register block of one instance. There
// is no validation beyond the types: passing an event or mode the variant
// does not know is a caller error, not a runtime one. Nothing here locks;
// callers sharing an instance between thread mode and an interrupt handler
// bring their own critical sections.
package spim

// Task is the byte offset of a task register from the peripheral base.
type Task uintptr

// SPIM tasks.
const (
	TaskStart   Task = 0x010 // Start SPI transaction.
	TaskStop    Task = 0x014 // Stop SPI transaction.
	TaskSuspend Task = 0x01C // Suspend SPI transaction.
	TaskResume  Task = 0x020 // Resume SPI transaction.
)

// Event is the byte offset of an event register from the peripheral base.
type Event uintptr

// SPIM events.
const (
	EventStopped Event = 0x104 // SPI transaction has stopped.
	EventEndRx   Event = 0x110 // End of RXD buffer reached.
	EventEnd     Event = 0x118 // End of RXD and TXD buffer reached. NRF52 only.
	EventEndTx   Event = 0x120 // End of TXD buffer reached.
	EventStarted Event = 0x14C // Transaction started.
)

// eventBase is the offset of the first event register. The INTEN bit of an
// event is its word index from here.
const eventBase = 0x100

// Interrupt is a mask of INTENSET/INTENCLR bits.
type Interrupt uint32

// SPIM interrupts, one per event.
const (
	InterruptStopped Interrupt = 1 << ((EventStopped - eventBase) / 4) // bit 1
	InterruptEndRx   Interrupt = 1 << ((EventEndRx - eventBase) / 4)   // bit 4
	InterruptEnd     Interrupt = 1 << ((EventEnd - eventBase) / 4)     // bit 6
	InterruptEndTx   Interrupt = 1 << ((EventEndTx - eventBase) / 4)   // bit 8
	InterruptStarted Interrupt = 1 << ((EventStarted - eventBase) / 4) // bit 19
)

// Interrupt returns the INTEN bit that fires on e.
func (e Event) Interrupt() Interrupt {
	return 1 << ((e - eventBase) / 4)
}

// Short is a mask of SHORTS bits.
type Short uint32

// SPIM shortcuts.
const (
	// ShortEndStart triggers START when END fires.
	ShortEndStart Short = 1 << SHORTS_END_START_Pos
)

// Frequency is a raw FREQUENCY register code. The codes are vendor defined;
// use Hz to get the bit rate instead of doing arithmetic on them.
type Frequency uint32

// SPI master data rates.
const (
	Freq125K Frequency = 0x02000000 // 125 kbps
	Freq250K Frequency = 0x04000000 // 250 kbps
	Freq500K Frequency = 0x08000000 // 500 kbps
	Freq1M   Frequency = 0x10000000 // 1 Mbps
	Freq2M   Frequency = 0x20000000 // 2 Mbps
	Freq4M   Frequency = 0x40000000 // 4 Mbps
	Freq8M   Frequency = 0x80000000 // 8 Mbps
)

// frequencies is ordered from fastest to slowest.
var frequencies = [...]struct {
	code Frequency
	hz   uint32
}{
	{Freq8M, 8000000},
	{Freq4M, 4000000},
	{Freq2M, 2000000},
	{Freq1M, 1000000},
	{Freq500K, 500000},
	{Freq250K, 250000},
	{Freq125K, 125000},
}

// Hz returns the bit rate of f, or 0 for an unknown code.
func (f Frequency) Hz() uint32 {
	for _, e := range frequencies {
		if e.code == f {
			return e.hz
		}
	}
	return 0
}

// FrequencyFor returns the fastest supported rate not above hz. Anything
// below 250 kHz gets the slowest rate.
func FrequencyFor(hz uint32) Frequency {
	for _, e := range frequencies {
		if hz >= e.hz {
			return e.code
		}
	}
	return Freq125K
}

// Mode is the SPI clock polarity/phase combination.
type Mode uint8

// SPI modes.
const (
	Mode0 Mode = iota // SCK active high, sample on leading edge of clock.
	Mode1             // SCK active high, sample on trailing edge of clock.
	Mode2             // SCK active low, sample on leading edge of clock.
	Mode3             // SCK active low, sample on trailing edge of clock.
)

// BitOrder selects which bit of each byte is shifted out first.
type BitOrder uint8

// SPI bit orders.
const (
	MSBFirst BitOrder = CONFIG_ORDER_MsbFirst
	LSBFirst BitOrder = CONFIG_ORDER_LsbFirst
)

// Pin is a PSEL register value.
type Pin uint32

// PinNotConnected leaves a signal disconnected from every physical pin.
const PinNotConnected Pin = 0xFFFFFFFF
