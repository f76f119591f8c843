// Package spimtest provides a simulated SPIM register block backed by
// ordinary memory.
//
// Plain memory does not reproduce the write-one-to-set/clear behaviour of
// INTENSET and INTENCLR, so Block keeps a shadow of the interrupt enable
// state and folds pending writes into it on Settle.
package spimtest

import (
	"unsafe"

	"nrfspim/spim"
)

// Size is the size of the register block in bytes.
const Size = unsafe.Sizeof(spim.Registers{})

// Block is a simulated register block.
type Block struct {
	Regs  spim.Registers
	inten uint32
}

// New returns a zeroed register block.
func New() *Block {
	return &Block{}
}

// Peripheral returns a Peripheral that accesses this block.
func (b *Block) Peripheral(variant spim.Variant) spim.Peripheral {
	return spim.New(&b.Regs, variant)
}

// Bytes returns the block as raw memory.
func (b *Block) Bytes() *[Size]byte {
	return (*[Size]byte)(unsafe.Pointer(&b.Regs))
}

// Snapshot returns a copy of the raw register memory.
func (b *Block) Snapshot() [Size]byte {
	return *b.Bytes()
}

// Word returns the 32-bit word at byte offset off.
func (b *Block) Word(off uintptr) uint32 {
	return *(*uint32)(unsafe.Pointer(&b.Bytes()[off]))
}

// SetWord stores v at byte offset off, as the hardware would when it sets
// an event or updates a status register.
func (b *Block) SetWord(off uintptr, v uint32) {
	*(*uint32)(unsafe.Pointer(&b.Bytes()[off])) = v
}

// Settle applies the INTENSET/INTENCLR writes made since the last call:
// set bits are ORed into the enable state and cleared bits are removed.
// INTENSET then reads back the enable state and INTENCLR reads zero, so the
// next write to either register is seen on its own.
func (b *Block) Settle() {
	set := b.Regs.INTENSET.Get()
	clr := b.Regs.INTENCLR.Get()
	b.inten = (b.inten | set) &^ clr
	b.Regs.INTENSET.Set(b.inten)
	b.Regs.INTENCLR.Set(0)
}

// Interrupts returns the settled interrupt enable state.
func (b *Block) Interrupts() spim.Interrupt {
	return spim.Interrupt(b.inten)
}
