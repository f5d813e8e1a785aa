//go:build !tinygo

package mmio

// RAM-backed register types mirroring the runtime/volatile API. These back
// the simulated peripheral instances used by host tests; nothing here is
// reachable on a real chip.

type Register8 struct {
	Reg uint8
}

func (r *Register8) Get() uint8              { return r.Reg }
func (r *Register8) Set(v uint8)             { r.Reg = v }
func (r *Register8) SetBits(bits uint8)      { r.Reg |= bits }
func (r *Register8) ClearBits(bits uint8)    { r.Reg &^= bits }
func (r *Register8) HasBits(bits uint8) bool { return r.Reg&bits != 0 }

func (r *Register8) ReplaceBits(value, mask uint8, pos uint8) {
	r.Reg = r.Reg&^(mask<<pos) | value<<pos
}

type Register16 struct {
	Reg uint16
}

func (r *Register16) Get() uint16              { return r.Reg }
func (r *Register16) Set(v uint16)             { r.Reg = v }
func (r *Register16) SetBits(bits uint16)      { r.Reg |= bits }
func (r *Register16) ClearBits(bits uint16)    { r.Reg &^= bits }
func (r *Register16) HasBits(bits uint16) bool { return r.Reg&bits != 0 }

func (r *Register16) ReplaceBits(value, mask uint16, pos uint8) {
	r.Reg = r.Reg&^(mask<<pos) | value<<pos
}

type Register32 struct {
	Reg uint32
}

func (r *Register32) Get() uint32              { return r.Reg }
func (r *Register32) Set(v uint32)             { r.Reg = v }
func (r *Register32) SetBits(bits uint32)      { r.Reg |= bits }
func (r *Register32) ClearBits(bits uint32)    { r.Reg &^= bits }
func (r *Register32) HasBits(bits uint32) bool { return r.Reg&bits != 0 }

func (r *Register32) ReplaceBits(value, mask uint32, pos uint8) {
	r.Reg = r.Reg&^(mask<<pos) | value<<pos
}
