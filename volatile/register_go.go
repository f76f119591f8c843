//go:build !tinygo

package volatile

import "sync/atomic"

// Register32 is a 32-bit memory-mapped register.
// Host builds keep the same layout as the TinyGo type: a single uint32.
type Register32 struct {
	Reg uint32
}

// Get loads the register value.
func (r *Register32) Get() uint32 {
	return atomic.LoadUint32(&r.Reg)
}

// Set stores value into the register.
func (r *Register32) Set(value uint32) {
	atomic.StoreUint32(&r.Reg, value)
}

// SetBits reads the register, sets the bits in mask and writes it back.
// This is one load followed by one store, like the hardware equivalent.
func (r *Register32) SetBits(mask uint32) {
	r.Set(r.Get() | mask)
}

// ClearBits reads the register, clears the bits in mask and writes it back.
func (r *Register32) ClearBits(mask uint32) {
	r.Set(r.Get() &^ mask)
}

// HasBits reports whether any bit in mask is set.
func (r *Register32) HasBits(mask uint32) bool {
	return r.Get()&mask != 0
}

// ReplaceBits replaces the field selected by mask<<pos with value<<pos.
func (r *Register32) ReplaceBits(value uint32, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | (value&mask)<<pos)
}
