//go:build atsamd51

package adc

import (
	"device/sam"

	"github.com/embedded-go/atsamd/dmac"
)

const resultTriggerAction = dmac.TriggerActionBurst

// Converters of the SAMD51, with their RESRDY request lines.
var (
	ADC0 = &ADC{
		result:  &sam.ADC0.RESULT,
		swtrig:  &sam.ADC0.SWTRIG,
		trigger: dmac.TriggerSource(0x44),
	}
	ADC1 = &ADC{
		result:  &sam.ADC1.RESULT,
		swtrig:  &sam.ADC1.SWTRIG,
		trigger: dmac.TriggerSource(0x46),
	}
)
