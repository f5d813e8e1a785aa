//go:build atsamd51

package dmac

import (
	"device/sam"
	"runtime/interrupt"
	"unsafe"
)

// The SAMD5x DMAC has 32 channels, each with its own register block, and
// supports burst-granularity triggering.
const numChannels = 32

func hwInit() {
	sam.MCLK.AHBMASK.SetBits(sam.MCLK_AHBMASK_DMAC_)

	// Descriptor memory must be in SRAM, 16-byte aligned.
	sam.DMAC.BASEADDR.Set(uint32(uintptr(unsafe.Pointer(&descriptorSection))))
	sam.DMAC.WRBADDR.Set(uint32(uintptr(unsafe.Pointer(&writebackSection))))

	// Enable the controller with all priority levels.
	sam.DMAC.CTRL.SetBits(sam.DMAC_CTRL_DMAENABLE |
		sam.DMAC_CTRL_LVLEN0 | sam.DMAC_CTRL_LVLEN1 |
		sam.DMAC_CTRL_LVLEN2 | sam.DMAC_CTRL_LVLEN3)

	// IRQ lines 0..3 serve channels 0..3, line 4 serves the rest. All five
	// funnel into the same dispatch; interrupt.New requires the IRQ number
	// to be a constant, hence the repetition.
	interrupt.New(sam.IRQ_DMAC_0, handleDMACInterrupt).Enable()
	interrupt.New(sam.IRQ_DMAC_1, handleDMACInterrupt).Enable()
	interrupt.New(sam.IRQ_DMAC_2, handleDMACInterrupt).Enable()
	interrupt.New(sam.IRQ_DMAC_3, handleDMACInterrupt).Enable()
	interrupt.New(sam.IRQ_DMAC_4, handleDMACInterrupt).Enable()
}

// hwTriggerAction maps the logical trigger action onto the CHCTRLA.TRIGACT
// encoding. This family has no beat action; a one-beat burst is the D5x
// spelling of beat-granularity pacing.
func hwTriggerAction(act TriggerAction) uint32 {
	switch act {
	case TriggerActionBlock:
		return sam.DMAC_CHANNEL_CHCTRLA_TRIGACT_BLOCK
	case TriggerActionTransaction:
		return sam.DMAC_CHANNEL_CHCTRLA_TRIGACT_TRANSACTION
	default:
		return sam.DMAC_CHANNEL_CHCTRLA_TRIGACT_BURST
	}
}

func hwEnableChannelInterrupts(id uint8, flags InterruptFlags) {
	sam.DMAC.CHANNEL[id].CHINTENSET.Set(uint8(flags))
}

func hwEnableChannel(id uint8, trig TriggerSource, act TriggerAction) {
	ch := &sam.DMAC.CHANNEL[id]
	ch.CHCTRLA.Set(hwTriggerAction(act)<<sam.DMAC_CHANNEL_CHCTRLA_TRIGACT_Pos |
		uint32(trig)<<sam.DMAC_CHANNEL_CHCTRLA_TRIGSRC_Pos |
		sam.DMAC_CHANNEL_CHCTRLA_BURSTLEN_SINGLE<<sam.DMAC_CHANNEL_CHCTRLA_BURSTLEN_Pos)
	ch.CHCTRLA.SetBits(sam.DMAC_CHANNEL_CHCTRLA_ENABLE)
}

func hwChannelBusy(id uint8) bool {
	// The channel clears ENABLE itself once the transaction retires.
	return sam.DMAC.CHANNEL[id].CHCTRLA.HasBits(sam.DMAC_CHANNEL_CHCTRLA_ENABLE)
}

func handleDMACInterrupt(interrupt.Interrupt) {
	// INTPEND reports the lowest pending channel; loop in case several
	// retired back to back.
	for {
		pend := sam.DMAC.INTPEND.Get()
		if pend&(sam.DMAC_INTPEND_TERR|sam.DMAC_INTPEND_TCMPL|sam.DMAC_INTPEND_SUSP) == 0 {
			return
		}
		id := uint8(pend & sam.DMAC_INTPEND_ID_Msk >> sam.DMAC_INTPEND_ID_Pos)
		flags := sam.DMAC.CHANNEL[id].CHINTFLAG.Get()
		sam.DMAC.CHANNEL[id].CHINTFLAG.Set(flags) // write 1 to clear
		status := TransferComplete
		if flags&uint8(InterruptTERR) != 0 {
			status = TransferError
		}
		resolveChannel(id, status)
	}
}
