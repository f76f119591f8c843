//go:build nrf52 || nrf52833 || nrf52840

package spim

import "unsafe"

// Base addresses of the SPIM register blocks.
const (
	SPIM0_BASE uintptr = 0x40003000
	SPIM1_BASE uintptr = 0x40004000
	SPIM2_BASE uintptr = 0x40023000
)

// SPIM instances. SPIM0 and SPIM1 share their address space with the TWI
// and SPIS peripherals of the same index; only one of them may be enabled.
var (
	SPIM0 = New((*Registers)(unsafe.Pointer(SPIM0_BASE)), NRF52)
	SPIM1 = New((*Registers)(unsafe.Pointer(SPIM1_BASE)), NRF52)
	SPIM2 = New((*Registers)(unsafe.Pointer(SPIM2_BASE)), NRF52)
)

// Instances lists the SPIM instances of the chip by index.
var Instances = []Peripheral{SPIM0, SPIM1, SPIM2}
