//go:build !atsamd21 && !atsamd51

package sercom

import (
	"testing"

	"github.com/embedded-go/atsamd/dmac"
)

func initTest(t *testing.T) {
	t.Helper()
	dmac.Sim().Reset()
	dmac.Init()
	sercomRegs = [6]registers{}
}

func claim(t *testing.T, id uint8) dmac.ReadyChannel {
	t.Helper()
	ch, err := dmac.ClaimChannel(id)
	if err != nil {
		t.Fatal(err)
	}
	return ch
}

func mustPanic(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic %q, got none", want)
		}
		if s, ok := r.(string); !ok || s != want {
			t.Fatalf("expected panic %q, got %v", want, r)
		}
	}()
	fn()
}

func setBusIdle(s *SERCOM) {
	s.regs.status.Set(i2cBusStateIdle << i2cBusStatePos)
}

func busReady(t *testing.T, i *I2C) I2CBusReady {
	t.Helper()
	ready, err := i.InitDMATransfer()
	if err != nil {
		t.Fatal(err)
	}
	return ready
}

func TestI2CInitDMATransfer(t *testing.T) {
	initTest(t)
	i2c := NewI2C(SERCOM0)

	for _, state := range []uint16{0x0, 0x3} { // unknown, busy
		SERCOM0.regs.status.Set(state << i2cBusStatePos)
		if _, err := i2c.InitDMATransfer(); err != ErrI2CBusBusy {
			t.Errorf("bus state %#x: err=%v, want ErrI2CBusBusy", state, err)
		}
	}
	for _, state := range []uint16{i2cBusStateIdle, i2cBusStateOwner} {
		SERCOM0.regs.status.Set(state << i2cBusStatePos)
		if _, err := i2c.InitDMATransfer(); err != nil {
			t.Errorf("bus state %#x: %v", state, err)
		}
	}
}

func TestI2CSendArmsBeforeStart(t *testing.T) {
	initTest(t)
	setBusIdle(SERCOM0)
	i2c := NewI2C(SERCOM0)
	ch := claim(t, 0)

	// At the moment the channel goes live the start condition must not have
	// been issued yet: a trigger raised by the address phase would
	// otherwise be lost.
	var addrAtEnable uint32 = 0xFFFFFFFF
	dmac.Sim().OnEnable = func(id uint8) {
		addrAtEnable = SERCOM0.regs.addr.Get()
	}

	buf := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	var calls int
	xfer := i2c.SendWithDMA(0x50, dmac.NewSlice(buf), ch, busReady(t, i2c), func(dmac.CallbackStatus) { calls++ })

	if addrAtEnable != 0 {
		t.Errorf("ADDR=%#x at channel enable, want 0 (not yet started)", addrAtEnable)
	}
	st := dmac.Sim().Channels[0]
	if !st.Enabled || st.Trigger != SERCOM0.DMATxTrigger() {
		t.Errorf("channel trigger=%#x, want tx trigger %#x", st.Trigger, SERCOM0.DMATxTrigger())
	}
	if st.IntEnable&dmac.InterruptTCMPL == 0 {
		t.Error("completion interrupt not enabled")
	}
	if dmac.Sim().Descriptor(0).BeatCount() != 4 {
		t.Errorf("beat count=%d, want 4", dmac.Sim().Descriptor(0).BeatCount())
	}

	wantAddr := uint32(0x50)<<1 | i2cAddrLenEn | 4<<i2cAddrLenPos
	if got := SERCOM0.regs.addr.Get(); got != wantAddr {
		t.Errorf("ADDR=%#x, want %#x", got, wantAddr)
	}

	dmac.Sim().Complete(0)
	if calls != 1 {
		t.Fatalf("callback invoked %d times, want 1", calls)
	}
	if _, src, _ := xfer.Unwrap(); src == nil {
		t.Error("source buffer lost on unwrap")
	}
}

func TestI2CReceiveWithDMA(t *testing.T) {
	initTest(t)
	setBusIdle(SERCOM0)
	i2c := NewI2C(SERCOM0)
	ch := claim(t, 1)

	buf := make([]byte, 8)
	xfer := i2c.ReceiveWithDMA(0x50, dmac.NewSlice(buf), ch, busReady(t, i2c), nil)

	st := dmac.Sim().Channels[1]
	if st.Trigger != SERCOM0.DMARxTrigger() {
		t.Errorf("channel trigger=%#x, want rx trigger %#x", st.Trigger, SERCOM0.DMARxTrigger())
	}
	wantAddr := uint32(0x50)<<1 | 1 | i2cAddrLenEn | 8<<i2cAddrLenPos
	if got := SERCOM0.regs.addr.Get(); got != wantAddr {
		t.Errorf("ADDR=%#x, want %#x", got, wantAddr)
	}

	dmac.Sim().Complete(1)
	if !xfer.Done() {
		t.Error("transfer not done after completion")
	}
}

func TestI2CLengthWindow(t *testing.T) {
	initTest(t)
	setBusIdle(SERCOM0)
	i2c := NewI2C(SERCOM0)
	ch := claim(t, 0)
	ready := busReady(t, i2c)

	// Out-of-window lengths panic before any hardware is touched.
	for _, n := range []int{0, 256} {
		buf := make([]byte, n)
		mustPanic(t, badI2CLength, func() {
			i2c.SendWithDMA(0x10, dmac.NewSlice(buf), ch, ready, nil)
		})
		mustPanic(t, badI2CLength, func() {
			i2c.ReceiveWithDMA(0x10, dmac.NewSlice(buf), ch, ready, nil)
		})
	}
	if dmac.Sim().Channels[0].Enabled {
		t.Fatal("channel enabled by a rejected transfer")
	}
	if SERCOM0.regs.addr.Get() != 0 {
		t.Fatal("start condition issued by a rejected transfer")
	}

	// Window edges arm normally.
	xfer := i2c.SendWithDMA(0x10, dmac.NewSlice(make([]byte, 255)), ch, ready, nil)
	if dmac.Sim().Descriptor(0).BeatCount() != 255 {
		t.Errorf("beat count=%d, want 255", dmac.Sim().Descriptor(0).BeatCount())
	}
	dmac.Sim().Complete(0)
	ch, _, _ = xfer.Unwrap()

	SERCOM0.regs.addr.Set(0)
	xfer = i2c.SendWithDMA(0x10, dmac.NewSlice(make([]byte, 1)), ch, ready, nil)
	if dmac.Sim().Descriptor(0).BeatCount() != 1 {
		t.Errorf("beat count=%d, want 1", dmac.Sim().Descriptor(0).BeatCount())
	}
	dmac.Sim().Complete(0)
	xfer.Unwrap()
}

// completeOnEnable retires every transfer the moment its channel goes
// live, standing in for the hardware the blocking adapters wait on.
func completeOnEnable() {
	dmac.Sim().OnEnable = func(id uint8) {
		dmac.Sim().Complete(id)
	}
}

func TestI2CDMATx(t *testing.T) {
	initTest(t)
	setBusIdle(SERCOM0)
	dev := NewI2C(SERCOM0).WithDMAChannel(claim(t, 2))

	var triggers []dmac.TriggerSource
	dmac.Sim().OnEnable = func(id uint8) {
		triggers = append(triggers, dmac.Sim().Channels[id].Trigger)
		dmac.Sim().Complete(id)
	}

	w := []byte{0x01, 0x02}
	r := make([]byte, 3)
	if err := dev.Tx(0x42, w, r); err != nil {
		t.Fatal(err)
	}
	if len(triggers) != 2 || triggers[0] != SERCOM0.DMATxTrigger() || triggers[1] != SERCOM0.DMARxTrigger() {
		t.Errorf("trigger sequence %#x, want [tx rx]", triggers)
	}
	if !SERCOM0.regs.ctrlb.HasBits(i2cCmdStop << i2cCtrlbCmdPos) {
		t.Error("no stop condition issued")
	}

	// The read phase reuses the channel the write phase recovered.
	if err := dev.Tx(0x42, w, nil); err != nil {
		t.Errorf("write-only: %v", err)
	}
	if err := dev.Tx(0x42, nil, r); err != nil {
		t.Errorf("read-only: %v", err)
	}
	if err := dev.Tx(0x42, nil, nil); err != nil {
		t.Errorf("empty: %v", err)
	}
	if err := dev.Tx(0x42, make([]byte, 256), nil); err != ErrI2CLength {
		t.Errorf("oversized write: err=%v, want ErrI2CLength", err)
	}
}

func TestI2CDMATxNack(t *testing.T) {
	initTest(t)
	setBusIdle(SERCOM0)
	completeOnEnable()
	dev := NewI2C(SERCOM0).WithDMAChannel(claim(t, 2))

	SERCOM0.regs.status.SetBits(i2cStatusRxNack)
	if err := dev.Tx(0x42, []byte{0x00}, nil); err != ErrI2CNack {
		t.Errorf("err=%v, want ErrI2CNack", err)
	}

	SERCOM0.regs.status.Set(i2cBusStateIdle<<i2cBusStatePos | i2cStatusBusErr)
	if err := dev.Tx(0x42, []byte{0x00}, nil); err != ErrI2CBusError {
		t.Errorf("err=%v, want ErrI2CBusError", err)
	}
}

func TestI2CDMATxBusBusy(t *testing.T) {
	initTest(t)
	dev := NewI2C(SERCOM0).WithDMAChannel(claim(t, 2))

	SERCOM0.regs.status.Set(0x3 << i2cBusStatePos)
	if err := dev.Tx(0x42, []byte{0x00}, nil); err != ErrI2CBusBusy {
		t.Errorf("err=%v, want ErrI2CBusBusy", err)
	}
	if dmac.Sim().Channels[2].Enabled {
		t.Error("channel armed despite busy bus")
	}
}

func TestI2CDMAWriteRegister(t *testing.T) {
	initTest(t)
	setBusIdle(SERCOM0)
	dev := NewI2C(SERCOM0).WithDMAChannel(claim(t, 3))

	var linked bool
	var firstBeats int
	dmac.Sim().OnEnable = func(id uint8) {
		linked = dmac.Sim().Descriptor(id).Linked()
		firstBeats = dmac.Sim().Descriptor(id).BeatCount()
		dmac.Sim().Complete(id)
	}

	payload := []byte{0x10, 0x20, 0x30}
	if err := dev.WriteRegister(0x42, 0x07, payload); err != nil {
		t.Fatal(err)
	}
	if !linked {
		t.Error("payload not chained behind the register selector")
	}
	if firstBeats != 1 {
		t.Errorf("selector leg beats=%d, want 1", firstBeats)
	}
	if got := dev.ch.LinkDescriptor().BeatCount(); got != 3 {
		t.Errorf("payload leg beats=%d, want 3", got)
	}
	wantAddr := uint32(0x42)<<1 | i2cAddrLenEn | 4<<i2cAddrLenPos
	if got := SERCOM0.regs.addr.Get(); got != wantAddr {
		t.Errorf("ADDR=%#x, want %#x (selector plus payload)", got, wantAddr)
	}

	// No payload: a single unlinked leg.
	if err := dev.WriteRegister(0x42, 0x07, nil); err != nil {
		t.Fatal(err)
	}
	if linked {
		t.Error("empty payload must not link a second leg")
	}

	if err := dev.WriteRegister(0x42, 0x07, make([]byte, 255)); err != ErrI2CLength {
		t.Errorf("oversized payload: err=%v, want ErrI2CLength", err)
	}
}

func TestI2CDMAReadRegister(t *testing.T) {
	initTest(t)
	setBusIdle(SERCOM0)
	completeOnEnable()
	dev := NewI2C(SERCOM0).WithDMAChannel(claim(t, 0))

	buf := make([]byte, 4)
	if err := dev.ReadRegister(0x42, 0x07, buf); err != nil {
		t.Fatal(err)
	}
	// The read phase wrote ADDR last: read bit and payload length.
	wantAddr := uint32(0x42)<<1 | 1 | i2cAddrLenEn | 4<<i2cAddrLenPos
	if got := SERCOM0.regs.addr.Get(); got != wantAddr {
		t.Errorf("ADDR=%#x, want %#x", got, wantAddr)
	}
}

func TestI2CDMATimeout(t *testing.T) {
	initTest(t)
	setBusIdle(SERCOM0)
	dev := NewI2C(SERCOM0).WithDMAChannel(claim(t, 1))

	// Nothing completes the transfer.
	if err := dev.Tx(0x42, []byte{0x00}, nil); err != errTimeout {
		t.Errorf("err=%v, want errTimeout", err)
	}
}

func TestUARTDMA(t *testing.T) {
	initTest(t)
	uart := NewUART(SERCOM2)

	var calls int
	tx := uart.SendWithDMA(dmac.NewSlice([]byte("hello")), claim(t, 4), func(dmac.CallbackStatus) { calls++ })
	st := dmac.Sim().Channels[4]
	if st.Trigger != SERCOM2.DMATxTrigger() {
		t.Errorf("trigger=%#x, want tx trigger %#x", st.Trigger, SERCOM2.DMATxTrigger())
	}
	if dmac.Sim().Descriptor(4).BeatCount() != 5 {
		t.Errorf("beat count=%d, want 5", dmac.Sim().Descriptor(4).BeatCount())
	}
	dmac.Sim().Complete(4)
	if calls != 1 {
		t.Fatalf("callback invoked %d times, want 1", calls)
	}
	tx.Unwrap()

	rx := uart.ReceiveWithDMA(dmac.NewSlice(make([]byte, 16)), claim(t, 5), nil)
	if got := dmac.Sim().Channels[5].Trigger; got != SERCOM2.DMARxTrigger() {
		t.Errorf("trigger=%#x, want rx trigger %#x", got, SERCOM2.DMARxTrigger())
	}
	dmac.Sim().Complete(5)
	rx.Unwrap()
}

func TestSPIDMATxDuplex(t *testing.T) {
	initTest(t)
	dev := NewSPI(SERCOM1).WithDMAChannels(claim(t, 6), claim(t, 7))

	var order []uint8
	dmac.Sim().OnEnable = func(id uint8) {
		order = append(order, id)
		dmac.Sim().Complete(id)
	}

	w := []byte{1, 2, 3}
	r := make([]byte, 3)
	if err := dev.Tx(w, r); err != nil {
		t.Fatal(err)
	}
	// Receive side must be live before the write side starts the exchange.
	if len(order) != 2 || order[0] != 7 || order[1] != 6 {
		t.Errorf("enable order %v, want [7 6] (rx before tx)", order)
	}
	if got := dmac.Sim().Channels[7].Trigger; got != SERCOM1.DMARxTrigger() {
		t.Errorf("rx trigger=%#x, want %#x", got, SERCOM1.DMARxTrigger())
	}
	if got := dmac.Sim().Channels[6].Trigger; got != SERCOM1.DMATxTrigger() {
		t.Errorf("tx trigger=%#x, want %#x", got, SERCOM1.DMATxTrigger())
	}
}

func TestSPIDMATxUnequal(t *testing.T) {
	initTest(t)
	dev := NewSPI(SERCOM1).WithDMAChannels(claim(t, 6), claim(t, 7))

	type shape struct {
		beats  int
		linked bool
	}
	var tx, rx shape
	dmac.Sim().OnEnable = func(id uint8) {
		desc := dmac.Sim().Descriptor(id)
		s := shape{beats: desc.BeatCount(), linked: desc.Linked()}
		if id == 6 {
			tx = s
		} else {
			rx = s
		}
		dmac.Sim().Complete(id)
	}

	// Short write: the exchange keeps clocking from the dummy word.
	if err := dev.Tx([]byte{0xA5}, make([]byte, 4)); err != nil {
		t.Fatal(err)
	}
	if tx != (shape{beats: 1, linked: true}) {
		t.Errorf("tx shape=%+v, want 1 beat + linked dummy leg", tx)
	}
	if got := dev.tx.LinkDescriptor().BeatCount(); got != 3 {
		t.Errorf("dummy leg beats=%d, want 3", got)
	}
	if rx != (shape{beats: 4, linked: false}) {
		t.Errorf("rx shape=%+v, want 4 beats unlinked", rx)
	}

	// Short read: the excess drains into the sink word.
	if err := dev.Tx([]byte{1, 2, 3, 4}, make([]byte, 2)); err != nil {
		t.Fatal(err)
	}
	if rx != (shape{beats: 2, linked: true}) {
		t.Errorf("rx shape=%+v, want 2 beats + linked sink leg", rx)
	}
	if got := dev.rx.LinkDescriptor().BeatCount(); got != 2 {
		t.Errorf("sink leg beats=%d, want 2", got)
	}
	if tx != (shape{beats: 4, linked: false}) {
		t.Errorf("tx shape=%+v, want 4 beats unlinked", tx)
	}

	// Write-only: the receiver is still drained, beat for beat.
	if err := dev.Tx([]byte{1, 2, 3}, nil); err != nil {
		t.Fatal(err)
	}
	if rx != (shape{beats: 3, linked: false}) {
		t.Errorf("rx shape=%+v, want 3 sink beats", rx)
	}

	// Read-only: the dummy word clocks the whole exchange.
	if err := dev.Tx(nil, make([]byte, 5)); err != nil {
		t.Fatal(err)
	}
	if tx != (shape{beats: 5, linked: false}) {
		t.Errorf("tx shape=%+v, want 5 dummy beats", tx)
	}

	if err := dev.Tx(nil, nil); err != nil {
		t.Errorf("empty exchange: %v", err)
	}
}

func TestSPIDMATransferByte(t *testing.T) {
	initTest(t)
	completeOnEnable()
	dev := NewSPI(SERCOM1).WithDMAChannels(claim(t, 0), claim(t, 1))

	if _, err := dev.Transfer(0x5A); err != nil {
		t.Fatal(err)
	}
	if dmac.Sim().Descriptor(0).BeatCount() != 1 || dmac.Sim().Descriptor(1).BeatCount() != 1 {
		t.Error("single-byte exchange must arm one beat per side")
	}
}

func TestSPIDMATransferError(t *testing.T) {
	initTest(t)
	dmac.Sim().OnEnable = func(id uint8) {
		dmac.Sim().Fail(id)
	}
	dev := NewSPI(SERCOM1).WithDMAChannels(claim(t, 0), claim(t, 1))

	if err := dev.Tx([]byte{1}, make([]byte, 1)); err != ErrSPITransfer {
		t.Errorf("err=%v, want ErrSPITransfer", err)
	}
}

func TestSPIDeprecatedShims(t *testing.T) {
	initTest(t)
	spi := NewSPI(SERCOM3)

	tx := spi.SendWithDMA(dmac.NewSlice([]byte{1, 2}), claim(t, 2), nil)
	if got := dmac.Sim().Channels[2].Trigger; got != SERCOM3.DMATxTrigger() {
		t.Errorf("trigger=%#x, want tx trigger %#x", got, SERCOM3.DMATxTrigger())
	}
	dmac.Sim().Complete(2)
	tx.Unwrap()

	rx := spi.ReceiveWithDMA(dmac.NewSlice(make([]byte, 2)), claim(t, 3), nil)
	if got := dmac.Sim().Channels[3].Trigger; got != SERCOM3.DMARxTrigger() {
		t.Errorf("trigger=%#x, want rx trigger %#x", got, SERCOM3.DMARxTrigger())
	}
	dmac.Sim().Complete(3)
	rx.Unwrap()
}
