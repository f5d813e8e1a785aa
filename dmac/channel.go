package dmac

// Descriptor SRAM sections. The controller is pointed at these by Init;
// each channel owns the slot matching its index. Hardware requires 16-byte
// alignment.
//
//go:align 16
var descriptorSection [numChannels]Descriptor

//go:align 16
var writebackSection [numChannels]Descriptor

// linkSection gives every channel one spare, correctly aligned descriptor
// for use as the second leg of a linked transfer. Linked descriptors are
// fetched by the controller directly from SRAM and carry the same 16-byte
// alignment requirement as the channel slots, which a stack variable or a
// struct field cannot guarantee.
//
//go:align 16
var linkSection [numChannels]Descriptor

// channel is the single source of truth for one DMA channel's software
// state. The Ready/Busy distinction callers see lives in the wrapper types
// below; this struct never escapes the package.
type channel struct {
	id       uint8
	callback Callback
	armed    bool
	resolved bool
}

var (
	channels    [numChannels]channel
	claimedMask uint32
)

// NumChannels is the channel count of the compiled-in chip family.
const NumChannels = numChannels

// ReadyChannel is a claimed, idle DMA channel. It is a single-owner token:
// beginning a transfer spends it, and the only way to obtain it again is to
// consume the resulting Transfer after completion. A spent token panics on
// reuse.
type ReadyChannel struct {
	ch *channel
}

// BusyChannel is a channel embedded in an in-flight Transfer. It cannot be
// armed or unclaimed until the Transfer is consumed.
type BusyChannel struct {
	ch *channel
}

// ClaimChannel claims DMA channel id for the caller. It fails with
// ErrChannelClaimed when the channel is already held elsewhere.
func ClaimChannel(id uint8) (ReadyChannel, error) {
	if !initialized {
		panic(badUninitialized)
	}
	if id >= numChannels {
		panic(badChannelIndex)
	}
	if claimedMask&(1<<id) != 0 {
		return ReadyChannel{}, ErrChannelClaimed
	}
	claimedMask |= 1 << id
	ch := &channels[id]
	ch.id = id
	return ReadyChannel{ch: ch}, nil
}

// Unclaim releases the channel for use by other code. It panics if the
// token was already spent on a transfer.
func (r ReadyChannel) Unclaim() {
	ch := r.mustState()
	if ch.armed {
		panic(badChannelBusy)
	}
	claimedMask &^= 1 << ch.id
}

// ID returns the hardware channel index.
func (r ReadyChannel) ID() uint8 { return r.mustState().id }

// LinkDescriptor returns the channel's spare aligned descriptor slot,
// intended as the link target of a two-leg chained transfer. Fill it with
// FillDescriptor before passing it to BeginLinked; it must not be reused
// until that transfer is consumed.
func (r ReadyChannel) LinkDescriptor() *Descriptor {
	return &linkSection[r.mustState().id]
}

// EnableInterrupts enables the selected interrupt sources on the channel.
// Peripheral entry points enable TCMPL here before arming, so the
// completion callback fires when the (last) leg finishes.
func (r ReadyChannel) EnableInterrupts(flags InterruptFlags) {
	hwEnableChannelInterrupts(r.mustState().id, flags)
}

// ID returns the hardware channel index.
func (b BusyChannel) ID() uint8 { return b.ch.id }

func (r ReadyChannel) mustState() *channel {
	if r.ch == nil {
		panic(badChannelSpent)
	}
	return r.ch
}

// arm commits the channel's descriptor slot and enables the channel so the
// trigger source can start moving data. Callers must not touch the channel
// or the buffers behind desc until the transfer is observed stopped or
// complete.
func (ch *channel) arm(desc *Descriptor, trig TriggerSource, act TriggerAction) {
	if ch.armed {
		panic(badChannelBusy)
	}
	descriptorSection[ch.id] = *desc
	ch.resolved = false
	ch.armed = true
	hwEnableChannel(ch.id, trig, act)
}

// resolveChannel delivers the completion outcome for a channel. It runs in
// interrupt context and resolves each transfer exactly once; late or
// duplicate interrupts for an already-resolved channel are dropped.
func resolveChannel(id uint8, status CallbackStatus) {
	ch := &channels[id]
	if !ch.armed || ch.resolved {
		return
	}
	ch.resolved = true
	if ch.callback != nil {
		ch.callback(status)
	}
}
