//go:build tinygo

// Package mmio provides volatile access to memory-mapped peripheral
// registers. On TinyGo targets the types alias runtime/volatile so every
// access compiles to a real load or store. Off-target builds get RAM-backed
// equivalents with the same method set, which is what lets the rest of this
// module run under plain `go test`.
package mmio

import "runtime/volatile"

type Register8 = volatile.Register8

type Register16 = volatile.Register16

type Register32 = volatile.Register32
