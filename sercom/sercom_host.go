//go:build !atsamd21 && !atsamd51

package sercom

import "github.com/embedded-go/atsamd/dmac"

// Off-target builds get RAM-backed SERCOM instances with SAMD51 trigger
// numbering, so tests can exercise the full arming and sequencing logic
// with plain `go test`.

const peripheralTriggerAction = dmac.TriggerActionBurst

var sercomRegs [6]registers

var (
	SERCOM0 = hostInstance(0)
	SERCOM1 = hostInstance(1)
	SERCOM2 = hostInstance(2)
	SERCOM3 = hostInstance(3)
	SERCOM4 = hostInstance(4)
	SERCOM5 = hostInstance(5)
)

func hostInstance(n uint8) *SERCOM {
	return &SERCOM{
		regs:      &sercomRegs[n],
		rxTrigger: dmac.TriggerSource(0x04 + 2*n),
		txTrigger: dmac.TriggerSource(0x05 + 2*n),
	}
}
