package sercom

import (
	"errors"

	"tinygo.org/x/drivers"

	"github.com/embedded-go/atsamd/dmac"
)

// I2C errors.
var (
	ErrI2CBusBusy  = errors.New("sercom: i2c bus busy")
	ErrI2CNack     = errors.New("sercom: i2c nack")
	ErrI2CBusError = errors.New("sercom: i2c bus error")
	ErrI2CLength   = errors.New("sercom: i2c transfer length out of range")
)

const badI2CLength = "sercom:i2c dma length must be 1..255"

// maxI2CLen is the largest transaction the hardware length counter can
// track; LEN is an 8-bit field.
const maxI2CLen = 255

// I2CM register bits used here.
const (
	i2cStatusBusErr  = 1 << 0
	i2cStatusArbLost = 1 << 1
	i2cStatusRxNack  = 1 << 2
	i2cBusStatePos   = 4
	i2cBusStateMask  = 0x3

	i2cBusStateIdle  = 0x1
	i2cBusStateOwner = 0x2

	i2cAddrLenEn  = 1 << 13
	i2cAddrLenPos = 16

	i2cCtrlbCmdPos = 16
	i2cCmdStop     = 0x3

	i2cSyncSysop = 1 << 2
)

// I2C drives a SERCOM configured as an I2C master.
type I2C struct {
	s *SERCOM
}

// NewI2C wraps an already configured SERCOM I2C master.
func NewI2C(s *SERCOM) *I2C {
	return &I2C{s: s}
}

// I2CBusReady witnesses that the bus was observed idle (or owned by this
// master) when InitDMATransfer was called. The DMA entry points demand one
// so that a transaction cannot be started while another master holds the
// bus.
type I2CBusReady struct{}

// InitDMATransfer checks the bus state and, if the bus is free or already
// owned by this master, issues the readiness token the DMA entry points
// require. A busy or unknown bus is a recoverable condition, not a
// programming error, so it is reported as ErrI2CBusBusy.
func (i *I2C) InitDMATransfer() (I2CBusReady, error) {
	state := uint8(i.s.regs.status.Get()>>i2cBusStatePos) & i2cBusStateMask
	if state != i2cBusStateIdle && state != i2cBusStateOwner {
		return I2CBusReady{}, ErrI2CBusBusy
	}
	return I2CBusReady{}, nil
}

// SendWithDMA writes buf.Len() bytes to the device at addr, fed to the
// peripheral by DMA on ch. The transaction length must be in [1,255]; a
// length outside that window is a contract violation and panics before any
// hardware is touched. The channel is armed strictly before the start
// condition is issued, so the first data-register request cannot be missed.
//
// callback fires once, from interrupt context, when the transfer completes
// or errors. Neither buf nor ch may be reused until the returned transfer
// is consumed.
func (i *I2C) SendWithDMA(addr uint16, buf dmac.Buffer[uint8], ch dmac.ReadyChannel, ready I2CBusReady, callback dmac.Callback) *TxTransfer {
	return i.sendLinked(addr, buf, buf.Len(), ch, ready, callback, nil)
}

// ReceiveWithDMA reads buf.Len() bytes from the device at addr into buf via
// DMA on ch. Same length window, panic discipline, ordering guarantee and
// reuse contract as SendWithDMA.
func (i *I2C) ReceiveWithDMA(addr uint16, buf dmac.Buffer[uint8], ch dmac.ReadyChannel, _ I2CBusReady, callback dmac.Callback) *RxTransfer {
	n := buf.Len()
	if n < 1 || n > maxI2CLen {
		panic(badI2CLength)
	}
	xfer := i.s.readDMA(ch, buf, callback)
	i.startRead(addr, uint8(n))
	return xfer
}

// sendLinked arms the write leg(s) and then issues the start condition for
// a transaction of total bytes. total may exceed src.Len() when a linked
// leg continues the payload.
func (i *I2C) sendLinked(addr uint16, src dmac.Buffer[uint8], total int, ch dmac.ReadyChannel, _ I2CBusReady, callback dmac.Callback, link *dmac.Descriptor) *TxTransfer {
	if total < 1 || total > maxI2CLen {
		panic(badI2CLength)
	}
	xfer := i.s.writeDMALinked(ch, src, callback, link)
	i.startWrite(addr, uint8(total))
	return xfer
}

// startWrite issues the start condition and address for a write of n bytes.
// With LENEN set the hardware counts the bytes and ends the transaction on
// its own, which is what lets the CPU stay out of the data phase entirely.
func (i *I2C) startWrite(addr uint16, n uint8) {
	i.syncWait()
	i.s.regs.addr.Set(uint32(addr)<<1 | i2cAddrLenEn | uint32(n)<<i2cAddrLenPos)
}

// startRead is startWrite with the direction bit set.
func (i *I2C) startRead(addr uint16, n uint8) {
	i.syncWait()
	i.s.regs.addr.Set(uint32(addr)<<1 | 1 | i2cAddrLenEn | uint32(n)<<i2cAddrLenPos)
}

// stop issues a stop condition, releasing the bus.
func (i *I2C) stop() {
	i.syncWait()
	i.s.regs.ctrlb.SetBits(i2cCmdStop << i2cCtrlbCmdPos)
	i.syncWait()
}

func (i *I2C) syncWait() {
	for i.s.regs.syncbusy.HasBits(i2cSyncSysop) {
	}
}

// busError classifies the peripheral's view of the last transaction.
func (i *I2C) busError() error {
	status := i.s.regs.status.Get()
	switch {
	case status&i2cStatusRxNack != 0:
		return ErrI2CNack
	case status&(i2cStatusBusErr|i2cStatusArbLost) != 0:
		return ErrI2CBusError
	}
	return nil
}

// WithDMAChannel couples the bus with a claimed DMA channel, yielding a
// blocking adapter that satisfies the drivers.I2C interface. The adapter
// keeps the channel for its lifetime, recovering it after every
// transaction; if a transaction times out the channel stays busy and
// further use of the adapter panics rather than corrupting an in-flight
// transfer.
func (i *I2C) WithDMAChannel(ch dmac.ReadyChannel) *I2CDMA {
	return &I2CDMA{bus: i, ch: ch}
}

// I2CDMA is a blocking drivers.I2C implementation running every
// transaction over a single held DMA channel.
type I2CDMA struct {
	bus    *I2C
	ch     dmac.ReadyChannel
	failed bool
}

var _ drivers.I2C = (*I2CDMA)(nil)

// Tx performs a write of w then, without releasing the bus, a read into r,
// ending with a stop condition. Either slice may be empty.
func (d *I2CDMA) Tx(addr uint16, w, r []byte) error {
	if len(w) > maxI2CLen || len(r) > maxI2CLen {
		return ErrI2CLength
	}
	if len(w) == 0 && len(r) == 0 {
		return nil
	}
	if len(w) > 0 {
		ready, err := d.bus.InitDMATransfer()
		if err != nil {
			return err
		}
		xfer := d.bus.SendWithDMA(addr, NewSharedSlice(w), d.ch, ready, d.note())
		if err := d.finishTx(xfer); err != nil {
			d.bus.stop()
			return err
		}
	}
	if len(r) > 0 {
		ready, err := d.bus.InitDMATransfer()
		if err != nil {
			return err
		}
		xfer := d.bus.ReceiveWithDMA(addr, dmac.NewSlice(r), d.ch, ready, d.note())
		if err := d.finishRx(xfer); err != nil {
			d.bus.stop()
			return err
		}
	}
	d.bus.stop()
	return nil
}

// ReadRegister reads len(buf) bytes from register reg of the device at
// addr: a one-byte write selecting the register, a repeated start, then the
// read.
func (d *I2CDMA) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	sel := [1]byte{reg}
	return d.Tx(uint16(addr), sel[:], buf)
}

// WriteRegister writes buf to register reg of the device at addr as one
// bus transaction. The register selector and the payload are chained as two
// DMA legs, so no staging copy of buf is needed.
func (d *I2CDMA) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	total := 1 + len(buf)
	if total > maxI2CLen {
		return ErrI2CLength
	}
	ready, err := d.bus.InitDMATransfer()
	if err != nil {
		return err
	}
	var link *dmac.Descriptor
	if len(buf) > 0 {
		link = d.ch.LinkDescriptor()
		dmac.FillDescriptor[uint8](link, NewSharedSlice(buf), d.bus.s.dataRegister(), nil)
	}
	sel := [1]byte{reg}
	xfer := d.bus.sendLinked(uint16(addr), dmac.NewSlice(sel[:]), total, d.ch, ready, d.note(), link)
	if err := d.finishTx(xfer); err != nil {
		d.bus.stop()
		return err
	}
	d.bus.stop()
	return nil
}

// note returns the completion callback recording a DMA-level failure for
// the transaction in flight.
func (d *I2CDMA) note() dmac.Callback {
	d.failed = false
	return func(status dmac.CallbackStatus) {
		if status == dmac.TransferError {
			d.failed = true
		}
	}
}

func (d *I2CDMA) finishTx(xfer *TxTransfer) error {
	if err := waitDone(xfer.Done); err != nil {
		return err
	}
	ch, _, _ := xfer.Unwrap()
	d.ch = ch
	return d.outcome()
}

func (d *I2CDMA) finishRx(xfer *RxTransfer) error {
	if err := waitDone(xfer.Done); err != nil {
		return err
	}
	ch, _, _ := xfer.Unwrap()
	d.ch = ch
	return d.outcome()
}

// outcome folds the DMA completion status and the peripheral's own error
// flags into a single verdict for the finished transaction.
func (d *I2CDMA) outcome() error {
	if err := d.bus.busError(); err != nil {
		return err
	}
	if d.failed {
		return ErrI2CBusError
	}
	return nil
}
