// Package adc streams analog conversion results into memory over DMA,
// paced by the converter's result-ready request line.
//
// Converter configuration (reference, resolution, input selection,
// free-running mode) is done elsewhere before an instance is used here.
package adc

import (
	"unsafe"

	"github.com/embedded-go/atsamd/dmac"
	"github.com/embedded-go/atsamd/internal/mmio"
)

// ADC is one analog-to-digital converter. Instances for the compiled-in
// chip are package variables.
type ADC struct {
	result  *mmio.Register16
	swtrig  *mmio.Register8
	trigger dmac.TriggerSource
}

// SWTRIG.START begins a conversion.
const adcSwtrigStart = 1 << 1

// RxTransfer is an in-flight result stream.
type RxTransfer = dmac.Transfer[uint16, dmac.Register[uint16], dmac.Buffer[uint16]]

// DMATrigger returns the DMA request line pulsed when a result is ready.
func (a *ADC) DMATrigger() dmac.TriggerSource { return a.trigger }

// ReceiveWithDMA streams buf.Len() conversion results into buf via DMA on
// ch, then starts a conversion. The channel is armed before the start so
// the first result cannot be missed; in free-running mode results keep
// coming without further starts until the buffer is full.
//
// callback fires once, from interrupt context, when the transfer completes
// or errors. Neither buf nor ch may be reused until the returned transfer
// is consumed.
func (a *ADC) ReceiveWithDMA(buf dmac.Buffer[uint16], ch dmac.ReadyChannel, callback dmac.Callback) *RxTransfer {
	ch.EnableInterrupts(dmac.InterruptTCMPL | dmac.InterruptTERR)
	src := dmac.RegisterAt[uint16](unsafe.Pointer(a.result))
	xfer := dmac.NewTransferUnchecked[uint16](ch, src, buf)
	xfer.Begin(a.trigger, resultTriggerAction, callback)
	a.swtrig.SetBits(adcSwtrigStart)
	return xfer
}
