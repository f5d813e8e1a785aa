//go:build atsamd51

package sercom

import (
	"device/sam"
	"unsafe"

	"github.com/embedded-go/atsamd/dmac"
)

// The SAMD5x DMAC paces channels per burst. With the burst length left at
// one beat this is the one-beat-per-request behavior serial peripherals
// need; the beat encoding of the SAMD21 does not exist on this family.
const peripheralTriggerAction = dmac.TriggerActionBurst

// SERCOM instances present on every SAMD51 variant.
var (
	SERCOM0 = sercomInstance(unsafe.Pointer(sam.SERCOM0_I2CM), 0)
	SERCOM1 = sercomInstance(unsafe.Pointer(sam.SERCOM1_I2CM), 1)
	SERCOM2 = sercomInstance(unsafe.Pointer(sam.SERCOM2_I2CM), 2)
	SERCOM3 = sercomInstance(unsafe.Pointer(sam.SERCOM3_I2CM), 3)
	SERCOM4 = sercomInstance(unsafe.Pointer(sam.SERCOM4_I2CM), 4)
	SERCOM5 = sercomInstance(unsafe.Pointer(sam.SERCOM5_I2CM), 5)
)

// sercomInstance builds the handle for SERCOM number n at base. The DMA
// request lines follow the family's fixed numbering: RX = 0x04 + 2n,
// TX = 0x05 + 2n.
func sercomInstance(base unsafe.Pointer, n uint8) *SERCOM {
	return &SERCOM{
		regs:      (*registers)(base),
		rxTrigger: dmac.TriggerSource(0x04 + 2*n),
		txTrigger: dmac.TriggerSource(0x05 + 2*n),
	}
}
