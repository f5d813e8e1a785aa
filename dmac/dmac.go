// Package dmac drives the SAMD Direct Memory Access Controller: channel
// claiming, transfer descriptors and interrupt-resolved transfers.
//
// The controller moves data between memories and peripherals without CPU
// involvement per beat. Higher layers (sercom, adc) arm transfers through
// the Transfer type; this package owns the descriptor SRAM sections and the
// channel register plumbing for each chip family.
package dmac

import "errors"

// DMAC errors.
var (
	ErrChannelClaimed = errors.New("dmac: channel already claimed")
	ErrLengthMismatch = errors.New("dmac: buffer lengths incompatible")
)

const (
	badChannelIndex     = "dmac:invalid channel index"
	badChannelSpent     = "dmac:channel token already spent"
	badChannelBusy      = "dmac:channel busy"
	badTransferBusy     = "dmac:transfer not complete"
	badTransferConsumed = "dmac:transfer already consumed"
	badTransferLength   = "dmac:transfer longer than 65535 beats"
	badUninitialized    = "dmac:controller not initialized"
)

// TriggerAction selects how much data a single peripheral trigger event
// moves. The granularity a family supports is fixed in silicon; the matching
// register encoding lives in the per-family build files.
type TriggerAction uint8

const (
	// TriggerActionBlock moves a whole block per trigger.
	TriggerActionBlock TriggerAction = iota
	// TriggerActionBeat moves one beat per trigger. SAMD11/21 only.
	TriggerActionBeat
	// TriggerActionBurst moves one burst per trigger. SAMD5x only; with the
	// burst length left at one beat this is the D5x spelling of
	// beat-granularity pacing.
	TriggerActionBurst
	// TriggerActionTransaction moves the complete transaction per trigger.
	TriggerActionTransaction
)

// TriggerSource identifies the peripheral request line that paces a
// channel. Values are chip-family specific and owned by the peripheral
// packages; zero means no trigger (software only).
type TriggerSource uint8

const TriggerSourceDisable TriggerSource = 0

// InterruptFlags selects per-channel interrupt sources. Bit positions match
// the CHINTENSET/CHINTFLAG registers on both supported families.
type InterruptFlags uint8

const (
	InterruptTERR  InterruptFlags = 1 << 0 // transfer error
	InterruptTCMPL InterruptFlags = 1 << 1 // transfer complete
	InterruptSUSP  InterruptFlags = 1 << 2 // channel suspended
)

// CallbackStatus is the two-valued outcome delivered to a transfer's
// completion callback.
type CallbackStatus uint8

const (
	TransferComplete CallbackStatus = iota
	TransferError
)

// Callback is invoked exactly once per transfer, from interrupt context.
// It must not block and must be bounded; typically it records the outcome
// for later, cooperative observation.
type Callback func(CallbackStatus)

var initialized bool

// Init enables the DMA controller, points it at the descriptor SRAM
// sections and wires the completion interrupts. It must be called once
// before any channel is claimed.
func Init() {
	hwInit()
	initialized = true
}
