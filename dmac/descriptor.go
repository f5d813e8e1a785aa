package dmac

import "unsafe"

// Descriptor is the memory-resident description of one transfer leg. The
// controller reads it from SRAM, so descriptors handed to a channel (or
// linked from another descriptor) must stay put and 16-byte aligned for the
// duration of the transfer.
type Descriptor struct {
	btctrl   uint16
	btcnt    uint16
	srcaddr  unsafe.Pointer
	dstaddr  unsafe.Pointer
	descaddr unsafe.Pointer
}

// BTCTRL fields. See the DMAC chapter of the SAMD21/SAMD5x datasheets.
const (
	descValid       = 1 << 0
	descEvoselPos   = 1 // EVOSEL, event output unused here
	descBlockActPos = 3
	descBeatSizePos = 8
	descSrcInc      = 1 << 10
	descDstInc      = 1 << 11
	descStepSelSrc  = 1 << 12
	descStepSizePos = 13

	// Block actions. NOACT on a linked (non-final) leg is what makes a
	// two-leg chain raise a single completion interrupt: only the last
	// descriptor of the transaction sets TCMPL.
	blockActNoAct = 0x0
	blockActInt   = 0x1
)

// BeatCount returns the number of beats the descriptor transfers.
func (d *Descriptor) BeatCount() int { return int(d.btcnt) }

// BeatBytes returns the size of one beat in bytes.
func (d *Descriptor) BeatBytes() int { return 1 << (d.btctrl >> descBeatSizePos & 0x3) }

// Linked reports whether the descriptor chains into a following leg.
func (d *Descriptor) Linked() bool { return d.descaddr != nil }

// FillDescriptor populates desc for one leg moving from src to dst,
// optionally linking a following leg. Lengths are not validated here; use
// NewTransfer for the checked path.
//
// The caller must guarantee desc (and link, if any) outlives the transfer.
func FillDescriptor[T Beat, S Buffer[T], D Buffer[T]](desc *Descriptor, src S, dst D, link *Descriptor) {
	n := src.Len()
	if d := dst.Len(); d > n {
		n = d
	}
	if n > 0xFFFF {
		panic(badTransferLength)
	}

	ctrl := uint16(descValid | blockActNoAct<<descBlockActPos)
	switch beatBytes[T]() {
	case 1:
		ctrl |= 0x0 << descBeatSizePos
	case 2:
		ctrl |= 0x1 << descBeatSizePos
	case 4:
		ctrl |= 0x2 << descBeatSizePos
	}
	if src.Incrementing() {
		ctrl |= descSrcInc | descStepSelSrc
	}
	if dst.Incrementing() {
		ctrl |= descDstInc
	}

	desc.btctrl = ctrl
	desc.btcnt = uint16(n)
	desc.srcaddr = src.DMAPtr()
	desc.dstaddr = dst.DMAPtr()
	if link != nil {
		desc.descaddr = unsafe.Pointer(link)
	} else {
		desc.descaddr = nil
	}
}
