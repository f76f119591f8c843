// Package volatile provides memory-mapped register types whose loads and
// stores are never elided, merged or reordered by the compiler.
//
// Under TinyGo the types alias runtime/volatile, so register structs built
// from them can be placed directly over peripheral memory. Host builds back
// them with sync/atomic so the same register structs can live in ordinary
// memory for simulation and tests.
package volatile
