package sercom

import "github.com/embedded-go/atsamd/dmac"

// UART drives a SERCOM configured as a USART. Unlike I2C there is no
// transaction to open: the transmitter requests data as soon as it has
// room and the receiver as soon as it has data, so arming the channel is
// all there is to it.
type UART struct {
	s *SERCOM
}

// NewUART wraps an already configured SERCOM USART.
func NewUART(s *SERCOM) *UART {
	return &UART{s: s}
}

// SendWithDMA transmits buf via DMA on ch. callback fires once on
// completion or error; neither buf nor ch may be reused until the returned
// transfer is consumed.
func (u *UART) SendWithDMA(buf dmac.Buffer[uint8], ch dmac.ReadyChannel, callback dmac.Callback) *TxTransfer {
	return u.s.writeDMA(ch, buf, callback)
}

// ReceiveWithDMA fills buf from the receiver via DMA on ch. Same contract
// as SendWithDMA.
func (u *UART) ReceiveWithDMA(buf dmac.Buffer[uint8], ch dmac.ReadyChannel, callback dmac.Callback) *RxTransfer {
	return u.s.readDMA(ch, buf, callback)
}
