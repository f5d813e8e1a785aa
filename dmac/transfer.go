package dmac

// BufferPair couples the source and destination of a transfer so the
// Transfer can own both for the operation's lifetime and hand both back
// intact when it is consumed. For peripheral-initiated transfers one side
// is the peripheral instance itself.
type BufferPair[T Beat, S Buffer[T], D Buffer[T]] struct {
	Source      S
	Destination D
}

// Transfer owns a busy channel, the buffer pair it moves data between and
// the one-shot completion callback. It exists from Begin until the caller
// consumes it with Unwrap after confirming completion; no other lifecycle
// transitions exist.
type Transfer[T Beat, S Buffer[T], D Buffer[T]] struct {
	ch    *channel
	bufs  BufferPair[T, S, D]
	begun bool
}

// NewTransfer prepares a transfer between src and dst on a claimed channel.
// Lengths must match, except that either side may have length one (a fixed
// register paced by a trigger).
func NewTransfer[T Beat, S Buffer[T], D Buffer[T]](ch ReadyChannel, src S, dst D) (*Transfer[T, S, D], error) {
	sn, dn := src.Len(), dst.Len()
	if sn != dn && sn != 1 && dn != 1 {
		return nil, ErrLengthMismatch
	}
	return NewTransferUnchecked[T, S, D](ch, src, dst), nil
}

// NewTransferUnchecked is NewTransfer without the length-compatibility
// check. Peripheral layers use it where one side is length one by
// construction (see Register).
func NewTransferUnchecked[T Beat, S Buffer[T], D Buffer[T]](ch ReadyChannel, src S, dst D) *Transfer[T, S, D] {
	return &Transfer[T, S, D]{
		ch:   ch.mustState(),
		bufs: BufferPair[T, S, D]{Source: src, Destination: dst},
	}
}

// Begin commits the transfer descriptor and enables the channel, moving it
// to the busy state. callback is invoked exactly once, from interrupt
// context, when the transfer completes or errors (provided the TCMPL/TERR
// interrupts were enabled on the channel).
//
// From this point neither the channel nor the buffers may be touched until
// the transfer is confirmed stopped or complete.
func (t *Transfer[T, S, D]) Begin(trig TriggerSource, act TriggerAction, callback Callback) {
	t.BeginLinked(trig, act, callback, nil)
}

// BeginLinked is Begin with an optional second transfer leg chained behind
// the first. The linked descriptor must be fully prepared (see
// FillDescriptor) before this call: the controller may follow the link
// without any CPU involvement, so there is no moment to fix it up later.
// One completion interrupt fires for the whole chain.
func (t *Transfer[T, S, D]) BeginLinked(trig TriggerSource, act TriggerAction, callback Callback, link *Descriptor) {
	if t.ch == nil {
		panic(badTransferConsumed)
	}
	if t.begun {
		panic(badChannelBusy)
	}
	var desc Descriptor
	FillDescriptor[T, S, D](&desc, t.bufs.Source, t.bufs.Destination, link)
	t.ch.callback = callback
	t.begun = true
	t.ch.arm(&desc, trig, act)
}

// Channel returns the busy channel handle backing the transfer.
func (t *Transfer[T, S, D]) Channel() BusyChannel {
	if t.ch == nil {
		panic(badTransferConsumed)
	}
	return BusyChannel{ch: t.ch}
}

// Done reports whether the hardware has finished (or never started) the
// transfer. It observes the channel, not software state, so it is also the
// safe gate for callers that run without completion interrupts.
func (t *Transfer[T, S, D]) Done() bool {
	if t.ch == nil {
		panic(badTransferConsumed)
	}
	if !t.begun {
		return true
	}
	return t.ch.resolved || !hwChannelBusy(t.ch.id)
}

// Unwrap consumes the transfer, recovering the channel (ready again) and
// the buffer pair. Calling it before the transfer is done is a contract
// violation and panics; so does consuming a transfer twice.
func (t *Transfer[T, S, D]) Unwrap() (ReadyChannel, S, D) {
	if !t.Done() {
		panic(badTransferBusy)
	}
	ch := t.ch
	t.ch = nil
	ch.armed = false
	ch.resolved = false
	ch.callback = nil
	return ReadyChannel{ch: ch}, t.bufs.Source, t.bufs.Destination
}
