// Package sercom provides DMA-driven data movement for the SAMD SERCOM
// serial blocks in their I2C, UART and SPI personalities.
//
// The package does not configure the peripherals: clocks, pins, baud rates
// and addressing modes are set up elsewhere (typically by the board support
// code) before a SERCOM instance is handed to the types here. What it does
// own is the sequencing of DMA against the peripheral: adapting buffers,
// arming channels with the right trigger, and, where the protocol demands
// it (I2C), guaranteeing the channel is armed before the bus transaction is
// started.
package sercom

import (
	"errors"
	"runtime"
	"unsafe"

	"github.com/embedded-go/atsamd/dmac"
	"github.com/embedded-go/atsamd/internal/mmio"
)

// registers is the SERCOM register file. The serial personalities lay out
// their mode-specific registers at the same offsets for everything this
// package touches, so one overlay serves I2C, UART and SPI.
type registers struct {
	ctrla    mmio.Register32 // 0x00
	ctrlb    mmio.Register32 // 0x04
	ctrlc    mmio.Register32 // 0x08
	baud     mmio.Register32 // 0x0C
	rxpl     mmio.Register8  // 0x10
	_        [3]byte
	intenclr mmio.Register8 // 0x14
	_        byte
	intenset mmio.Register8 // 0x16
	_        byte
	intflag  mmio.Register8 // 0x18
	_        byte
	status   mmio.Register16 // 0x1A
	syncbusy mmio.Register32 // 0x1C
	_        [4]byte
	addr     mmio.Register32 // 0x24
	data     mmio.Register32 // 0x28
}

// SERCOM is one serial communication block. Instances for the compiled-in
// chip are package variables (SERCOM0, SERCOM1, ...); each knows the DMA
// request lines its receiver and transmitter are wired to.
type SERCOM struct {
	regs      *registers
	rxTrigger dmac.TriggerSource
	txTrigger dmac.TriggerSource
}

// DMARxTrigger returns the DMA request line pulsed when the receiver holds
// data.
func (s *SERCOM) DMARxTrigger() dmac.TriggerSource { return s.rxTrigger }

// DMATxTrigger returns the DMA request line pulsed when the transmit data
// register is empty.
func (s *SERCOM) DMATxTrigger() dmac.TriggerSource { return s.txTrigger }

// dataRegister adapts the DATA register to the DMA buffer contract. DATA
// sits at the same offset in every serial personality; beats are single
// bytes for all three protocols driven here.
func (s *SERCOM) dataRegister() dmac.Register[uint8] {
	return dmac.RegisterAt[uint8](unsafe.Pointer(&s.regs.data))
}

var errTimeout = errors.New("sercom: timeout awaiting transfer completion")

// timeoutRetries is how many cooperative yields the blocking adapters spend
// waiting on a transfer before giving up.
const timeoutRetries = 1000

func gosched() {
	runtime.Gosched()
}

// waitDone polls done between yields until it reports true or the retries
// run out.
func waitDone(done func() bool) error {
	for retries := timeoutRetries; retries > 0; retries-- {
		if done() {
			return nil
		}
		gosched()
	}
	return errTimeout
}
