//go:build !atsamd21 && !atsamd51

package adc

import (
	"github.com/embedded-go/atsamd/dmac"
	"github.com/embedded-go/atsamd/internal/mmio"
)

// Off-target builds get a RAM-backed converter with SAMD51 trigger
// numbering.

const resultTriggerAction = dmac.TriggerActionBurst

var adcRegs struct {
	result mmio.Register16
	swtrig mmio.Register8
}

var ADC0 = &ADC{
	result:  &adcRegs.result,
	swtrig:  &adcRegs.swtrig,
	trigger: dmac.TriggerSource(0x44),
}
