//go:build atsamd21

package adc

import (
	"device/sam"

	"github.com/embedded-go/atsamd/dmac"
)

const resultTriggerAction = dmac.TriggerActionBeat

// The SAMD21 has a single converter.
var ADC0 = &ADC{
	result:  &sam.ADC.RESULT,
	swtrig:  &sam.ADC.SWTRIG,
	trigger: dmac.TriggerSource(0x27),
}
