package vm

// Immediate field widths used by the instruction set.
const (
	IMM_WIDTH_BR   = 25 // Branch offset.
	IMM_WIDTH_MOVE = 21 // Move family and ip-relative LEA.
	IMM_WIDTH_MVA  = 18 // Move-accumulate quadrant value.
	IMM_WIDTH_ALU  = 16 // Arithmetic, bitwise, shift and base-relative LEA.
	IMM_WIDTH_MEM  = 14 // Load/store offset.
)

// Field extracts the width bit field starting at bit offset of word.
func Field(word uint32, offset, width uint) uint32 {
	if width == 0 {
		return 0
	}
	if width >= 32 {
		return word >> offset
	}
	return (word >> offset) & ((1 << width) - 1)
}

// Bit returns true if bit n of word is set.
func Bit(word uint32, n uint) bool {
	return (word>>n)&1 == 1
}

// SignExtend widens the low width bits of value to 64 bits, replicating
// bit width-1 into every higher bit.
func SignExtend(value uint64, width uint) int64 {
	if width == 0 {
		return 0
	}
	if width >= 64 {
		return int64(value)
	}
	shift := 64 - width
	return int64(value<<shift) >> shift
}

// ZeroExtend keeps the low width bits of value and clears the rest.
func ZeroExtend(value uint64, width uint) uint64 {
	if width >= 64 {
		return value
	}
	return value & ((1 << width) - 1)
}

// Extend extracts the width bit field at offset from word. If signed, the
// field's most significant bit (bit offset+width-1 of word) is its sign bit.
func Extend(word uint32, offset, width uint, signed bool) int64 {
	raw := uint64(Field(word, offset, width))
	if !signed {
		return int64(raw)
	}
	return SignExtend(raw, width)
}

// immediate truncates value into a width bit field placed at offset.
func immediate(value int64, offset, width uint) uint32 {
	return uint32(ZeroExtend(uint64(value), width)) << offset
}
