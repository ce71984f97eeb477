package vm

import (
	"math"
)

// Selector is a 5-bit register operand field.
type Selector int

//go:generate go tool stringer -linecomment -type=Selector
const (
	REG_R0 = Selector(0)  // r0
	REG_R1 = Selector(1)  // r1
	REG_R2 = Selector(2)  // r2
	REG_R3 = Selector(3)  // r3
	REG_R4 = Selector(4)  // r4
	REG_R5 = Selector(5)  // r5
	REG_R6 = Selector(6)  // r6
	REG_R7 = Selector(7)  // r7
	REG_F0 = Selector(8)  // f0
	REG_F1 = Selector(9)  // f1
	REG_F2 = Selector(10) // f2
	REG_F3 = Selector(11) // f3
	REG_F4 = Selector(12) // f4
	REG_F5 = Selector(13) // f5
	REG_F6 = Selector(14) // f6
	REG_F7 = Selector(15) // f7
)

// Register bank sizes.
const (
	REG_INT_COUNT      = 8 // r0-r7
	REG_FLOAT_COUNT    = 8 // f0-f7
	REG_EXTENDED_COUNT = 5 // r8-r12
)

// Valid returns true if the selector names an operand register.
func (sel Selector) Valid() bool {
	return sel >= REG_R0 && sel <= REG_F7
}

// IsFloat returns true if the selector names a floating register.
func (sel Selector) IsFloat() bool {
	return sel >= REG_F0 && sel <= REG_F7
}

// special names the registers that operand decode cannot reach.
type special int

const (
	special_r8 = special(iota)
	special_r9
	special_r10
	special_r11
	special_r12
	special_ir // Indirect return.
	special_sc // Syscall code.
)

// Registers is the machine register file. Integer and floating registers
// hold raw 64-bit patterns; floating values are IEEE-754 doubles.
type Registers struct {
	Int   [REG_INT_COUNT]uint64   // r0-r7
	Float [REG_FLOAT_COUNT]uint64 // f0-f7

	extended [REG_EXTENDED_COUNT]uint64 // r8-r12
	ir       uint64
	sc       uint64
}

// Operand resolves an instruction register selector to its slot.
func (regs *Registers) Operand(sel Selector) (slot *uint64, err error) {
	switch {
	case sel >= REG_R0 && sel <= REG_R7:
		slot = &regs.Int[sel-REG_R0]
	case sel >= REG_F0 && sel <= REG_F7:
		slot = &regs.Float[sel-REG_F0]
	default:
		err = ErrInvalidRegister(sel)
	}

	return
}

// special resolves a register that only dedicated handlers may touch.
func (regs *Registers) special(id special) *uint64 {
	switch id {
	case special_ir:
		return &regs.ir
	case special_sc:
		return &regs.sc
	default:
		return &regs.extended[id-special_r8]
	}
}

// Get reads an operand register.
func (regs *Registers) Get(sel Selector) (value uint64, err error) {
	slot, err := regs.Operand(sel)
	if err != nil {
		return
	}
	value = *slot
	return
}

// Set writes an operand register.
func (regs *Registers) Set(sel Selector, value uint64) (err error) {
	slot, err := regs.Operand(sel)
	if err != nil {
		return
	}
	*slot = value
	return
}

// SetFloat writes a double into an operand register as its bit pattern.
func (regs *Registers) SetFloat(sel Selector, value float64) (err error) {
	return regs.Set(sel, math.Float64bits(value))
}

// GetFloat reads an operand register as a double.
func (regs *Registers) GetFloat(sel Selector) (value float64, err error) {
	bits, err := regs.Get(sel)
	if err != nil {
		return
	}
	value = math.Float64frombits(bits)
	return
}

// Reset zeros every register.
func (regs *Registers) Reset() {
	*regs = Registers{}
}
