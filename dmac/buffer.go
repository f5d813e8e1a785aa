package dmac

import "unsafe"

// Beat is the atomic hardware-transferable unit: one byte, halfword or
// word. A transfer's source and destination must agree on the beat type;
// the type parameter makes that agreement a compile-time fact.
type Beat interface {
	~uint8 | ~uint16 | ~uint32
}

// Buffer is the contract a source or destination of a DMA transfer must
// satisfy.
//
// Implementers guarantee the returned address stays valid (and, for
// destinations, exclusively writable by the hardware) for the whole life
// of the transfer. The engine does not and cannot check this.
type Buffer[T Beat] interface {
	// DMAPtr returns the address the controller consumes. Following the
	// DMAC's addressing rule, an incrementing buffer reports the address
	// just past the end of its region; a fixed buffer reports the address
	// itself.
	DMAPtr() unsafe.Pointer
	// Incrementing reports whether successive beats use successive
	// addresses.
	Incrementing() bool
	// Len returns the total beat count.
	Len() int
}

// Register adapts a fixed peripheral data-register address to the Buffer
// contract. It is never incrementing and its length is one by construction,
// so the length-1 invariant the engine relies on for the peripheral side of
// a transfer cannot be violated by callers.
type Register[T Beat] struct {
	ptr unsafe.Pointer
}

// RegisterAt wraps the peripheral data register at ptr.
func RegisterAt[T Beat](ptr unsafe.Pointer) Register[T] {
	return Register[T]{ptr: ptr}
}

func (r Register[T]) DMAPtr() unsafe.Pointer { return r.ptr }
func (r Register[T]) Incrementing() bool     { return false }
func (r Register[T]) Len() int               { return 1 }

// Slice adapts a caller-owned slice to the Buffer contract. It may be used
// as a source or a destination. The caller must keep the slice's backing
// memory untouched (and alive) until the transfer is observed stopped or
// complete.
type Slice[T Beat] struct {
	start unsafe.Pointer
	n     int
}

// NewSlice wraps s. The adapter keeps only the address range; recovering
// the data after a transfer is done through the slice the caller already
// holds.
func NewSlice[T Beat](s []T) *Slice[T] {
	if len(s) == 0 {
		return &Slice[T]{}
	}
	return &Slice[T]{start: unsafe.Pointer(&s[0]), n: len(s)}
}

func (b *Slice[T]) DMAPtr() unsafe.Pointer {
	if b.Incrementing() {
		return unsafe.Add(b.start, b.n*beatBytes[T]())
	}
	return b.start
}

func (b *Slice[T]) Incrementing() bool { return b.n > 1 }
func (b *Slice[T]) Len() int           { return b.n }

func beatBytes[T Beat]() int {
	var v T
	return int(unsafe.Sizeof(v))
}
