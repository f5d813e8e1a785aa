//go:build atsamd21

package dmac

import (
	"device/sam"
	"runtime/interrupt"
	"unsafe"
)

// The SAMD21 DMAC has 12 channels, multiplexed through the CHID selector,
// and supports beat-granularity triggering only.
const numChannels = 12

func hwInit() {
	sam.PM.AHBMASK.SetBits(sam.PM_AHBMASK_DMAC_)
	sam.PM.APBBMASK.SetBits(sam.PM_APBBMASK_DMAC_)

	// Descriptor memory must be in SRAM, 16-byte aligned.
	sam.DMAC.BASEADDR.Set(uint32(uintptr(unsafe.Pointer(&descriptorSection))))
	sam.DMAC.WRBADDR.Set(uint32(uintptr(unsafe.Pointer(&writebackSection))))

	// Enable the controller with all priority levels.
	sam.DMAC.CTRL.SetBits(sam.DMAC_CTRL_DMAENABLE |
		sam.DMAC_CTRL_LVLEN0 | sam.DMAC_CTRL_LVLEN1 |
		sam.DMAC_CTRL_LVLEN2 | sam.DMAC_CTRL_LVLEN3)

	interrupt.New(sam.IRQ_DMAC, handleDMACInterrupt).Enable()
}

// hwTriggerAction maps the logical trigger action onto the CHCTRLB.TRIGACT
// encoding. This family has no burst support; burst requests degrade to
// beat, which moves the same amount of data per trigger here.
func hwTriggerAction(act TriggerAction) uint32 {
	switch act {
	case TriggerActionBlock:
		return sam.DMAC_CHCTRLB_TRIGACT_BLOCK
	case TriggerActionTransaction:
		return sam.DMAC_CHCTRLB_TRIGACT_TRANSACTION
	default:
		return sam.DMAC_CHCTRLB_TRIGACT_BEAT
	}
}

// withChannelSelected runs fn with the CHID register pointed at channel id.
// Channel registers are shared behind the selector on this family, so the
// selection must be protected from the interrupt handler, which also
// drives CHID.
func withChannelSelected(id uint8, fn func()) {
	mask := interrupt.Disable()
	prev := sam.DMAC.CHID.Get()
	sam.DMAC.CHID.Set(id)
	fn()
	sam.DMAC.CHID.Set(prev)
	interrupt.Restore(mask)
}

func hwEnableChannelInterrupts(id uint8, flags InterruptFlags) {
	withChannelSelected(id, func() {
		sam.DMAC.CHINTENSET.Set(uint8(flags))
	})
}

func hwEnableChannel(id uint8, trig TriggerSource, act TriggerAction) {
	withChannelSelected(id, func() {
		sam.DMAC.CHCTRLB.Set(sam.DMAC_CHCTRLB_LVL_LVL0<<sam.DMAC_CHCTRLB_LVL_Pos |
			hwTriggerAction(act)<<sam.DMAC_CHCTRLB_TRIGACT_Pos |
			uint32(trig)<<sam.DMAC_CHCTRLB_TRIGSRC_Pos)
		sam.DMAC.CHCTRLA.SetBits(sam.DMAC_CHCTRLA_ENABLE)
	})
}

func hwChannelBusy(id uint8) bool {
	// The channel clears ENABLE itself once the transaction retires.
	busy := false
	withChannelSelected(id, func() {
		busy = sam.DMAC.CHCTRLA.HasBits(sam.DMAC_CHCTRLA_ENABLE)
	})
	return busy
}

func handleDMACInterrupt(interrupt.Interrupt) {
	for {
		pend := sam.DMAC.INTPEND.Get()
		if pend&(sam.DMAC_INTPEND_TERR|sam.DMAC_INTPEND_TCMPL|sam.DMAC_INTPEND_SUSP) == 0 {
			return
		}
		id := uint8(pend & sam.DMAC_INTPEND_ID_Msk >> sam.DMAC_INTPEND_ID_Pos)
		prev := sam.DMAC.CHID.Get()
		sam.DMAC.CHID.Set(id)
		flags := sam.DMAC.CHINTFLAG.Get()
		sam.DMAC.CHINTFLAG.Set(flags) // write 1 to clear
		sam.DMAC.CHID.Set(prev)
		status := TransferComplete
		if flags&uint8(InterruptTERR) != 0 {
			status = TransferError
		}
		resolveChannel(id, status)
	}
}
