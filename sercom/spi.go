package sercom

import (
	"errors"

	"tinygo.org/x/drivers"

	"github.com/embedded-go/atsamd/dmac"
)

// ErrSPITransfer reports a DMA-level failure during an SPI exchange.
var ErrSPITransfer = errors.New("sercom: spi dma transfer failed")

// SPI drives a SERCOM configured as an SPI master.
type SPI struct {
	s *SERCOM
}

// NewSPI wraps an already configured SERCOM SPI master.
func NewSPI(s *SERCOM) *SPI {
	return &SPI{s: s}
}

// SendWithDMA arms a transmit-only transfer of buf on ch.
//
// Deprecated: a transmit-only transfer overruns the receiver, leaving the
// peripheral with stale data for the next exchange. Use WithDMAChannels,
// which drains the receive side of every transfer.
func (p *SPI) SendWithDMA(buf dmac.Buffer[uint8], ch dmac.ReadyChannel, callback dmac.Callback) *TxTransfer {
	return p.s.writeDMA(ch, buf, callback)
}

// ReceiveWithDMA arms a receive-only transfer into buf on ch. The caller
// must separately make the clock run for buf.Len() beats.
//
// Deprecated: use WithDMAChannels, which generates the clock by feeding the
// transmit side for the full length of the exchange.
func (p *SPI) ReceiveWithDMA(buf dmac.Buffer[uint8], ch dmac.ReadyChannel, callback dmac.Callback) *RxTransfer {
	return p.s.readDMA(ch, buf, callback)
}

// WithDMAChannels couples the bus with a transmit and a receive DMA
// channel, yielding a blocking adapter that satisfies the drivers.SPI
// interface. The adapter keeps both channels for its lifetime.
func (p *SPI) WithDMAChannels(tx, rx dmac.ReadyChannel) *SPIDMA {
	return &SPIDMA{bus: p, tx: tx, rx: rx}
}

// SPIDMA is a blocking drivers.SPI implementation running full-duplex
// exchanges over a held pair of DMA channels.
type SPIDMA struct {
	bus    *SPI
	tx, rx dmac.ReadyChannel

	// dummy feeds the shifter when the caller's write side is shorter than
	// the exchange; sink swallows beats the caller's read side does not
	// want. Both are pinned here so linked legs can reference them for the
	// life of the adapter.
	dummy uint8
	sink  uint8

	txFailed bool
	rxFailed bool
}

var _ drivers.SPI = (*SPIDMA)(nil)

// Tx performs one full-duplex exchange: w is shifted out while r fills.
// The exchange is as long as the longer slice. A short w is padded by
// repeating a dummy word; a short r drains the excess into a sink. Either
// slice may be empty.
//
// The balancing leg is chained as a linked descriptor, fully prepared
// before its channel is enabled, and the receive side is armed before the
// transmit side so the first incoming beat cannot be dropped.
func (d *SPIDMA) Tx(w, r []byte) error {
	total := len(w)
	if len(r) > total {
		total = len(r)
	}
	if total == 0 {
		return nil
	}
	d.txFailed = false
	d.rxFailed = false

	var rxXfer *RxTransfer
	switch {
	case len(r) == 0:
		rxXfer = d.bus.s.readDMA(d.rx, fixedAt(&d.sink, total), d.noteRx)
	case len(r) < total:
		link := d.rx.LinkDescriptor()
		dmac.FillDescriptor[uint8](link, d.bus.s.dataRegister(), fixedAt(&d.sink, total-len(r)), nil)
		rxXfer = d.bus.s.readDMALinked(d.rx, dmac.NewSlice(r), d.noteRx, link)
	default:
		rxXfer = d.bus.s.readDMA(d.rx, dmac.NewSlice(r), d.noteRx)
	}

	// The transmit trigger fires the moment the channel is enabled (the
	// data register starts empty), which is what starts the exchange.
	var txXfer *TxTransfer
	switch {
	case len(w) == 0:
		txXfer = d.bus.s.writeDMA(d.tx, fixedAt(&d.dummy, total), d.noteTx)
	case len(w) < total:
		link := d.tx.LinkDescriptor()
		dmac.FillDescriptor[uint8](link, fixedAt(&d.dummy, total-len(w)), d.bus.s.dataRegister(), nil)
		txXfer = d.bus.s.writeDMALinked(d.tx, NewSharedSlice(w), d.noteTx, link)
	default:
		txXfer = d.bus.s.writeDMA(d.tx, NewSharedSlice(w), d.noteTx)
	}

	errTx := waitDone(txXfer.Done)
	errRx := waitDone(rxXfer.Done)
	if errTx == nil {
		ch, _, _ := txXfer.Unwrap()
		d.tx = ch
	}
	if errRx == nil {
		ch, _, _ := rxXfer.Unwrap()
		d.rx = ch
	}
	if errTx != nil {
		return errTx
	}
	if errRx != nil {
		return errRx
	}
	if d.txFailed || d.rxFailed {
		return ErrSPITransfer
	}
	return nil
}

// Transfer exchanges a single byte.
func (d *SPIDMA) Transfer(b byte) (byte, error) {
	w := [1]byte{b}
	var r [1]byte
	err := d.Tx(w[:], r[:])
	return r[0], err
}

func (d *SPIDMA) noteTx(status dmac.CallbackStatus) {
	if status == dmac.TransferError {
		d.txFailed = true
	}
}

func (d *SPIDMA) noteRx(status dmac.CallbackStatus) {
	if status == dmac.TransferError {
		d.rxFailed = true
	}
}
