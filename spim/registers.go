package spim

import "nrfspim/volatile"

// Registers is the SPIM register block. Field placement follows the nRF52
// memory map; padding fields keep every register at its hardware offset.
type Registers struct {
	_              [16]byte
	TASKS_START    volatile.Register32 // 0x010
	TASKS_STOP     volatile.Register32 // 0x014
	_              [4]byte
	TASKS_SUSPEND  volatile.Register32 // 0x01C
	TASKS_RESUME   volatile.Register32 // 0x020
	_              [224]byte
	EVENTS_STOPPED volatile.Register32 // 0x104
	_              [8]byte
	EVENTS_ENDRX   volatile.Register32 // 0x110
	_              [4]byte
	EVENTS_END     volatile.Register32 // 0x118
	_              [4]byte
	EVENTS_ENDTX   volatile.Register32 // 0x120
	_              [40]byte
	EVENTS_STARTED volatile.Register32 // 0x14C
	_              [176]byte
	SHORTS         volatile.Register32 // 0x200
	_              [256]byte
	INTENSET       volatile.Register32 // 0x304
	INTENCLR       volatile.Register32 // 0x308
	_              [500]byte
	ENABLE         volatile.Register32 // 0x500
	_              [4]byte
	PSEL           PinSelect           // 0x508
	_              [16]byte
	FREQUENCY      volatile.Register32 // 0x524
	_              [12]byte
	RXD            DMAChannel          // 0x534
	TXD            DMAChannel          // 0x544
	CONFIG         volatile.Register32 // 0x554
	_              [104]byte
	ORC            volatile.Register32 // 0x5C0
}

// PinSelect holds the PSEL registers.
type PinSelect struct {
	SCK  volatile.Register32
	MOSI volatile.Register32
	MISO volatile.Register32
}

// DMAChannel is one EasyDMA descriptor (RXD or TXD).
type DMAChannel struct {
	PTR    volatile.Register32
	MAXCNT volatile.Register32
	AMOUNT volatile.Register32
	LIST   volatile.Register32
}

// Register field values.
const (
	ENABLE_Disabled = 0
	ENABLE_Enabled  = 7

	CONFIG_ORDER_Pos       = 0
	CONFIG_ORDER_MsbFirst  = 0
	CONFIG_ORDER_LsbFirst  = 1
	CONFIG_CPHA_Pos        = 1
	CONFIG_CPHA_Leading    = 0
	CONFIG_CPHA_Trailing   = 1
	CONFIG_CPOL_Pos        = 2
	CONFIG_CPOL_ActiveHigh = 0
	CONFIG_CPOL_ActiveLow  = 1

	SHORTS_END_START_Pos = 17

	MAXCNT_Msk = 0xFF
	AMOUNT_Msk = 0xFF
)
