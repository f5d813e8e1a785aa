package sercom

import (
	"unsafe"

	"github.com/embedded-go/atsamd/dmac"
)

// TxTransfer is an in-flight memory-to-peripheral transfer.
type TxTransfer = dmac.Transfer[uint8, dmac.Buffer[uint8], dmac.Register[uint8]]

// RxTransfer is an in-flight peripheral-to-memory transfer.
type RxTransfer = dmac.Transfer[uint8, dmac.Register[uint8], dmac.Buffer[uint8]]

// writeDMA arms ch to feed the SERCOM's DATA register from src, paced by
// the transmitter's request line. It is the single arming path behind every
// peripheral send operation; the I2C, UART and SPI entry points differ only
// in what they do around it.
//
// The caller must not touch src or the channel again until the transfer is
// observed stopped or complete.
func (s *SERCOM) writeDMA(ch dmac.ReadyChannel, src dmac.Buffer[uint8], callback dmac.Callback) *TxTransfer {
	return s.writeDMALinked(ch, src, callback, nil)
}

// writeDMALinked is writeDMA with an optional second leg chained behind the
// first. link must be fully filled before the call; the controller can
// follow it with no CPU involvement in between.
func (s *SERCOM) writeDMALinked(ch dmac.ReadyChannel, src dmac.Buffer[uint8], callback dmac.Callback, link *dmac.Descriptor) *TxTransfer {
	ch.EnableInterrupts(dmac.InterruptTCMPL | dmac.InterruptTERR)
	xfer := dmac.NewTransferUnchecked[uint8](ch, src, s.dataRegister())
	xfer.BeginLinked(s.txTrigger, peripheralTriggerAction, callback, link)
	return xfer
}

// readDMA arms ch to drain the SERCOM's DATA register into dst, paced by
// the receiver's request line. Same contract as writeDMA.
func (s *SERCOM) readDMA(ch dmac.ReadyChannel, dst dmac.Buffer[uint8], callback dmac.Callback) *RxTransfer {
	return s.readDMALinked(ch, dst, callback, nil)
}

// readDMALinked is readDMA with an optional chained second leg.
func (s *SERCOM) readDMALinked(ch dmac.ReadyChannel, dst dmac.Buffer[uint8], callback dmac.Callback, link *dmac.Descriptor) *RxTransfer {
	ch.EnableInterrupts(dmac.InterruptTCMPL | dmac.InterruptTERR)
	xfer := dmac.NewTransferUnchecked[uint8](ch, s.dataRegister(), dst)
	xfer.BeginLinked(s.rxTrigger, peripheralTriggerAction, callback, link)
	return xfer
}

// SharedSlice adapts a read-shared slice as a transfer source. Unlike
// dmac.Slice it takes no exclusivity over the memory, so it may wrap
// buffers the caller only borrowed, but it must never be used as a
// destination.
type SharedSlice[T dmac.Beat] struct {
	start unsafe.Pointer
	n     int
}

// NewSharedSlice wraps s as a source-only buffer.
func NewSharedSlice[T dmac.Beat](s []T) *SharedSlice[T] {
	if len(s) == 0 {
		return &SharedSlice[T]{}
	}
	return &SharedSlice[T]{start: unsafe.Pointer(&s[0]), n: len(s)}
}

func (b *SharedSlice[T]) DMAPtr() unsafe.Pointer {
	if b.Incrementing() {
		var v T
		return unsafe.Add(b.start, b.n*int(unsafe.Sizeof(v)))
	}
	return b.start
}

func (b *SharedSlice[T]) Incrementing() bool { return b.n > 1 }
func (b *SharedSlice[T]) Len() int           { return b.n }

// fixedBuf repeats a single memory word for n beats: the address never
// increments. As a source it feeds the same word n times (SPI dummy
// clocking); as a destination it swallows n beats into one word (SPI
// receive sink).
type fixedBuf[T dmac.Beat] struct {
	ptr unsafe.Pointer
	n   int
}

func fixedAt[T dmac.Beat](p *T, n int) *fixedBuf[T] {
	return &fixedBuf[T]{ptr: unsafe.Pointer(p), n: n}
}

func (b *fixedBuf[T]) DMAPtr() unsafe.Pointer { return b.ptr }
func (b *fixedBuf[T]) Incrementing() bool     { return false }
func (b *fixedBuf[T]) Len() int               { return b.n }
