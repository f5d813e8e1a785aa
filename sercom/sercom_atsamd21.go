//go:build atsamd21

package sercom

import (
	"device/sam"
	"unsafe"

	"github.com/embedded-go/atsamd/dmac"
)

// The SAMD21 DMAC only paces channels per beat; the burst encoding of the
// SAMD5x does not exist on this family.
const peripheralTriggerAction = dmac.TriggerActionBeat

// SERCOM instances present on every SAMD21 variant.
var (
	SERCOM0 = sercomInstance(unsafe.Pointer(sam.SERCOM0_I2CM), 0)
	SERCOM1 = sercomInstance(unsafe.Pointer(sam.SERCOM1_I2CM), 1)
	SERCOM2 = sercomInstance(unsafe.Pointer(sam.SERCOM2_I2CM), 2)
	SERCOM3 = sercomInstance(unsafe.Pointer(sam.SERCOM3_I2CM), 3)
)

// sercomInstance builds the handle for SERCOM number n at base. The DMA
// request lines follow the family's fixed numbering: RX = 0x01 + 2n,
// TX = 0x02 + 2n.
func sercomInstance(base unsafe.Pointer, n uint8) *SERCOM {
	return &SERCOM{
		regs:      (*registers)(base),
		rxTrigger: dmac.TriggerSource(0x01 + 2*n),
		txTrigger: dmac.TriggerSource(0x02 + 2*n),
	}
}
