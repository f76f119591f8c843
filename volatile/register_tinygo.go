//go:build tinygo

package volatile

import rtvolatile "runtime/volatile"

// Register32 is a 32-bit memory-mapped register.
type Register32 = rtvolatile.Register32
