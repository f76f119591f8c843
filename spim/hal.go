package spim

import (
	"unsafe"

	"nrfspim/volatile"
)

// Peripheral is one SPIM instance. The register block is not owned by the
// Peripheral; on hardware it is a fixed address for the life of the device.
type Peripheral struct {
	Bus     *Registers
	Variant Variant
}

// New returns the Peripheral for the register block at bus.
func New(bus *Registers, variant Variant) Peripheral {
	return Peripheral{Bus: bus, Variant: variant}
}

func (p Peripheral) reg(offset uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Add(unsafe.Pointer(p.Bus), offset))
}

// Trigger starts task t.
func (p Peripheral) Trigger(t Task) {
	p.reg(uintptr(t)).Set(1)
}

// TaskAddress returns the absolute address of the register of task t, for
// wiring the task to another peripheral's event through PPI.
func (p Peripheral) TaskAddress(t Task) uintptr {
	return uintptr(unsafe.Pointer(p.Bus)) + uintptr(t)
}

// ClearEvent acknowledges event e. An event that is not cleared reads as
// set forever.
func (p Peripheral) ClearEvent(e Event) {
	p.reg(uintptr(e)).Set(0)
}

// EventSet reports whether event e has been generated.
func (p Peripheral) EventSet(e Event) bool {
	return p.reg(uintptr(e)).Get() != 0
}

// EventAddress returns the absolute address of the register of event e.
func (p Peripheral) EventAddress(e Event) uintptr {
	return uintptr(unsafe.Pointer(p.Bus)) + uintptr(e)
}

// Shortcuts returns the SHORTS accessor. The second result is false when
// the variant has no SHORTS register.
func (p Peripheral) Shortcuts() (Shortcuts, bool) {
	if !p.Variant.HasEnd() {
		return Shortcuts{}, false
	}
	return Shortcuts{reg: &p.Bus.SHORTS}, true
}

// Shortcuts updates the SHORTS register of one instance.
type Shortcuts struct {
	reg *volatile.Register32
}

// Enable sets the shortcuts in mask, leaving the others as they are.
func (s Shortcuts) Enable(mask Short) {
	s.reg.SetBits(uint32(mask))
}

// Disable clears the shortcuts in mask, leaving the others as they are.
func (s Shortcuts) Disable(mask Short) {
	s.reg.ClearBits(uint32(mask))
}

// Enabled reports whether any shortcut in mask is enabled.
func (s Shortcuts) Enabled(mask Short) bool {
	return s.reg.HasBits(uint32(mask))
}

// EnableInterrupts enables the interrupts in mask. INTENSET only sets the
// written one bits, so no read-modify-write is needed.
func (p Peripheral) EnableInterrupts(mask Interrupt) {
	p.Bus.INTENSET.Set(uint32(mask))
}

// DisableInterrupts disables the interrupts in mask through INTENCLR.
func (p Peripheral) DisableInterrupts(mask Interrupt) {
	p.Bus.INTENCLR.Set(uint32(mask))
}

// InterruptEnabled reports whether interrupt i is enabled.
func (p Peripheral) InterruptEnabled(i Interrupt) bool {
	return p.Bus.INTENSET.HasBits(uint32(i))
}

// Enable turns the peripheral on.
func (p Peripheral) Enable() {
	p.Bus.ENABLE.Set(ENABLE_Enabled)
}

// Disable turns the peripheral off.
func (p Peripheral) Disable() {
	p.Bus.ENABLE.Set(ENABLE_Disabled)
}

// SetPins selects the SCK, MOSI and MISO pins. Pass PinNotConnected for a
// signal that should not reach any pin.
func (p Peripheral) SetPins(sck, mosi, miso Pin) {
	p.Bus.PSEL.SCK.Set(uint32(sck))
	p.Bus.PSEL.MOSI.Set(uint32(mosi))
	p.Bus.PSEL.MISO.Set(uint32(miso))
}

// SetFrequency sets the SPI data rate.
func (p Peripheral) SetFrequency(f Frequency) {
	p.Bus.FREQUENCY.Set(uint32(f))
}

// SetTxBuffer points TXD at length bytes starting at buf. The memory must
// stay valid and unchanged until the transfer ends; EasyDMA reads it while
// the CPU runs.
func (p Peripheral) SetTxBuffer(buf *byte, length uint8) {
	p.Bus.TXD.PTR.Set(uint32(uintptr(unsafe.Pointer(buf))))
	p.Bus.TXD.MAXCNT.Set(uint32(length))
}

// SetRxBuffer points RXD at length bytes starting at buf. The memory must
// stay valid until the transfer ends.
func (p Peripheral) SetRxBuffer(buf *byte, length uint8) {
	p.Bus.RXD.PTR.Set(uint32(uintptr(unsafe.Pointer(buf))))
	p.Bus.RXD.MAXCNT.Set(uint32(length))
}

// TxAmount returns the number of bytes sent in the last transaction.
func (p Peripheral) TxAmount() uint8 {
	return uint8(p.Bus.TXD.AMOUNT.Get() & AMOUNT_Msk)
}

// RxAmount returns the number of bytes received in the last transaction.
func (p Peripheral) RxAmount() uint8 {
	return uint8(p.Bus.RXD.AMOUNT.Get() & AMOUNT_Msk)
}

// Configure sets the SPI mode and bit order in a single CONFIG write.
// Unknown modes are encoded as Mode0.
func (p Peripheral) Configure(mode Mode, order BitOrder) {
	p.Bus.CONFIG.Set(ConfigValue(mode, order))
}

// ConfigValue returns the CONFIG register value for mode and order.
func ConfigValue(mode Mode, order BitOrder) uint32 {
	config := uint32(CONFIG_ORDER_MsbFirst)
	if order != MSBFirst {
		config = CONFIG_ORDER_LsbFirst
	}
	config <<= CONFIG_ORDER_Pos

	switch mode {
	default:
		fallthrough
	case Mode0:
		config |= CONFIG_CPOL_ActiveHigh<<CONFIG_CPOL_Pos | CONFIG_CPHA_Leading<<CONFIG_CPHA_Pos
	case Mode1:
		config |= CONFIG_CPOL_ActiveHigh<<CONFIG_CPOL_Pos | CONFIG_CPHA_Trailing<<CONFIG_CPHA_Pos
	case Mode2:
		config |= CONFIG_CPOL_ActiveLow<<CONFIG_CPOL_Pos | CONFIG_CPHA_Leading<<CONFIG_CPHA_Pos
	case Mode3:
		config |= CONFIG_CPOL_ActiveLow<<CONFIG_CPOL_Pos | CONFIG_CPHA_Trailing<<CONFIG_CPHA_Pos
	}
	return config
}

// SetORC sets the over-read character, clocked out once TXD is exhausted
// while the transaction is still receiving.
func (p Peripheral) SetORC(orc byte) {
	p.Bus.ORC.Set(uint32(orc))
}
