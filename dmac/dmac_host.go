//go:build !atsamd21 && !atsamd51

package dmac

// Off-target builds get a simulated DMA controller so the engine and the
// peripheral packages can be exercised with plain `go test`. The simulation
// records what the hardware backends would have written and lets tests
// resolve transfers the way the interrupt handler would.

const numChannels = 12

// SimChannel is the recorded hardware-facing state of one simulated
// channel.
type SimChannel struct {
	Enabled   bool
	Trigger   TriggerSource
	Action    TriggerAction
	IntEnable InterruptFlags
	EnableSeq int // 1-based order in which the channel was enabled; 0 if never
}

// SimController stands in for the DMAC hardware on host builds.
type SimController struct {
	Channels [numChannels]SimChannel

	// OnEnable, when set, runs synchronously at the moment a channel is
	// enabled (armed). Tests use it to observe ordering against peripheral
	// register writes, or to resolve a transfer immediately.
	OnEnable func(id uint8)

	seq int
}

var sim SimController

// Sim returns the simulated controller. Host builds only.
func Sim() *SimController { return &sim }

// Reset returns the controller, the channel claim state and the descriptor
// sections to their power-on state. Tests call it between cases.
func (s *SimController) Reset() {
	*s = SimController{}
	claimedMask = 0
	channels = [numChannels]channel{}
	descriptorSection = [numChannels]Descriptor{}
	writebackSection = [numChannels]Descriptor{}
	linkSection = [numChannels]Descriptor{}
	initialized = false
}

// Descriptor returns the committed descriptor slot for a channel.
func (s *SimController) Descriptor(id uint8) *Descriptor {
	return &descriptorSection[id]
}

// Complete retires the channel's transaction and delivers the completion
// interrupt, exactly as the hardware path would.
func (s *SimController) Complete(id uint8) {
	s.finish(id, TransferComplete)
}

// Fail retires the channel's transaction with a transfer error.
func (s *SimController) Fail(id uint8) {
	s.finish(id, TransferError)
}

func (s *SimController) finish(id uint8, status CallbackStatus) {
	ch := &s.Channels[id]
	ch.Enabled = false
	if status == TransferError && ch.IntEnable&InterruptTERR == 0 {
		return
	}
	if status == TransferComplete && ch.IntEnable&InterruptTCMPL == 0 {
		return
	}
	resolveChannel(id, status)
}

func hwInit() {
	sim.seq = 0
}

func hwEnableChannelInterrupts(id uint8, flags InterruptFlags) {
	sim.Channels[id].IntEnable |= flags
}

func hwEnableChannel(id uint8, trig TriggerSource, act TriggerAction) {
	ch := &sim.Channels[id]
	sim.seq++
	ch.Enabled = true
	ch.Trigger = trig
	ch.Action = act
	ch.EnableSeq = sim.seq
	if sim.OnEnable != nil {
		sim.OnEnable(id)
	}
}

func hwChannelBusy(id uint8) bool {
	return sim.Channels[id].Enabled
}
