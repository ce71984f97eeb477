package vm

import (
	"fmt"
)

// Opcode is the top five bits of an instruction word.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_HALT  = Opcode(0)  // halt
	OP_MVNOT = Opcode(1)  // mvnot
	OP_MVNEG = Opcode(2)  // mvneg
	OP_MOV   = Opcode(3)  // mov
	OP_MVA   = Opcode(4)  // mva
	OP_BR    = Opcode(5)  // br
	OP_LEA   = Opcode(6)  // lea
	OP_ADD   = Opcode(7)  // add
	OP_SUB   = Opcode(8)  // sub
	OP_MULT  = Opcode(9)  // mult
	OP_DIV   = Opcode(10) // div
	OP_MOD   = Opcode(11) // mod
	OP_AND   = Opcode(12) // and
	OP_OR    = Opcode(13) // or
	OP_XOR   = Opcode(14) // xor
	OP_LSL   = Opcode(15) // lsl
	OP_LSR   = Opcode(16) // lsr
	OP_ASR   = Opcode(17) // asr
	OP_CMP   = Opcode(18) // cmp
	OP_CSET  = Opcode(19) // cset
	OP_LDR   = Opcode(20) // ldr
	OP_STR   = Opcode(21) // str
)

// OPCODE_COUNT is the number of defined opcodes.
const OPCODE_COUNT = 22

// IsAlu returns true for the three-operand arithmetic, bitwise and shift opcodes.
func (op Opcode) IsAlu() bool {
	return op >= OP_ADD && op <= OP_ASR
}

// IsMove returns true for the MVNOT, MVNEG and MOV opcodes.
func (op Opcode) IsMove() bool {
	return op >= OP_MVNOT && op <= OP_MOV
}

// HaltKind distinguishes the members of the HALT opcode slot.
type HaltKind int

//go:generate go tool stringer -linecomment -type=HaltKind
const (
	HALT_STOP    = HaltKind(0) // halt
	HALT_RET     = HaltKind(1) // ret
	HALT_SYSCALL = HaltKind(2) // syscall
	HALT_CALL    = HaltKind(3) // call
)

// CodeCond is a compare condition code.
type CodeCond int

//go:generate go tool stringer -linecomment -type=CodeCond
const (
	COND_ALWAYS         = CodeCond(0)  // al
	COND_EQUAL          = CodeCond(1)  // eq
	COND_DIFF           = CodeCond(2)  // ne
	COND_SUP            = CodeCond(3)  // gt
	COND_UNSIGNED_SUP   = CodeCond(4)  // gtu
	COND_SUPEQ          = CodeCond(5)  // ge
	COND_UNSIGNED_SUPEQ = CodeCond(6)  // geu
	COND_INF            = CodeCond(7)  // lt
	COND_UNSIGNED_INF   = CodeCond(8)  // ltu
	COND_INFEQ          = CodeCond(9)  // le
	COND_UNSIGNED_INFEQ = CodeCond(10) // leu
)

// COND_COUNT is the number of defined condition codes.
const COND_COUNT = 11

// Compare evaluates lhs cond rhs. Signed codes treat both values as
// two's-complement.
func (cond CodeCond) Compare(lhs, rhs uint64) (result bool, err error) {
	switch cond {
	case COND_ALWAYS:
		result = true
	case COND_EQUAL:
		result = lhs == rhs
	case COND_DIFF:
		result = lhs != rhs
	case COND_SUP:
		result = int64(lhs) > int64(rhs)
	case COND_UNSIGNED_SUP:
		result = lhs > rhs
	case COND_SUPEQ:
		result = int64(lhs) >= int64(rhs)
	case COND_UNSIGNED_SUPEQ:
		result = lhs >= rhs
	case COND_INF:
		result = int64(lhs) < int64(rhs)
	case COND_UNSIGNED_INF:
		result = lhs < rhs
	case COND_INFEQ:
		result = int64(lhs) <= int64(rhs)
	case COND_UNSIGNED_INFEQ:
		result = lhs <= rhs
	default:
		err = ErrInvalidCondition(cond)
	}

	return
}

// DataSize is the width of a load or store.
type DataSize int

//go:generate go tool stringer -linecomment -type=DataSize
const (
	SIZE_8  = DataSize(0) // 8
	SIZE_16 = DataSize(1) // 16
	SIZE_32 = DataSize(2) // 32
	SIZE_64 = DataSize(3) // 64
)

// Bytes returns the access size in bytes.
func (ds DataSize) Bytes() int {
	return 1 << ds
}

// Bits returns the access size in bits.
func (ds DataSize) Bits() uint {
	return 8 << ds
}

// Code is a single 32-bit instruction word.
type Code uint32

func makeOp(op Opcode, fields uint32) Code {
	return Code(uint32(op)<<27 | (fields & 0x07ff_ffff))
}

func reg(sel Selector, offset uint) uint32 {
	return (uint32(sel) & 0x1f) << offset
}

func flag(set bool, offset uint) uint32 {
	if set {
		return 1 << offset
	}
	return 0
}

// MakeCodeHalt creates a member of the HALT opcode slot.
func MakeCodeHalt(kind HaltKind) Code {
	return makeOp(OP_HALT, (uint32(kind)&0x3)<<25)
}

// MakeCodeMove creates a MVNOT, MVNEG or MOV instruction with a register source.
func MakeCodeMove(op Opcode, dst, src Selector) Code {
	return makeOp(op, reg(dst, 22)|flag(true, 21)|reg(src, 16))
}

// MakeCodeMoveImm creates a MVNOT, MVNEG or MOV instruction with a 21-bit immediate.
func MakeCodeMoveImm(op Opcode, dst Selector, imm int64) Code {
	return makeOp(op, reg(dst, 22)|immediate(imm, 0, IMM_WIDTH_MOVE))
}

// MakeCodeMva creates a move-accumulate of a register into a 16-bit quadrant.
func MakeCodeMva(dst Selector, quad uint, src Selector) Code {
	return makeOp(OP_MVA, reg(dst, 22)|(uint32(quad)&0x3)<<20|flag(true, 19)|reg(src, 14))
}

// MakeCodeMvaImm creates a move-accumulate of an 18-bit immediate into a
// 16-bit quadrant. Unless signed, the immediate is zero-extended.
func MakeCodeMvaImm(dst Selector, quad uint, imm int64, signed bool) Code {
	return makeOp(OP_MVA, reg(dst, 22)|(uint32(quad)&0x3)<<20|flag(signed, 18)|immediate(imm, 0, IMM_WIDTH_MVA))
}

// MakeCodeBranch creates a branch to the code index held in a register.
func MakeCodeBranch(link bool, src Selector) Code {
	return makeOp(OP_BR, flag(link, 26)|flag(true, 25)|reg(src, 20))
}

// MakeCodeBranchImm creates a branch relative to the following instruction.
func MakeCodeBranchImm(link bool, offset int64) Code {
	return makeOp(OP_BR, flag(link, 26)|immediate(offset, 0, IMM_WIDTH_BR))
}

// MakeCodeLea creates a load-effective-address relative to the following instruction.
func MakeCodeLea(dst Selector, offset int64) Code {
	return makeOp(OP_LEA, reg(dst, 22)|immediate(offset, 0, IMM_WIDTH_MOVE))
}

// MakeCodeLeaBase creates a load-effective-address relative to a base register.
func MakeCodeLeaBase(dst, base Selector, offset int64) Code {
	return makeOp(OP_LEA, reg(dst, 22)|flag(true, 21)|reg(base, 16)|immediate(offset, 0, IMM_WIDTH_ALU))
}

// MakeCodeAlu creates a three register arithmetic, bitwise or shift instruction.
func MakeCodeAlu(op Opcode, dst, src, src2 Selector) Code {
	return makeOp(op, reg(dst, 22)|reg(src, 17)|flag(true, 16)|reg(src2, 11))
}

// MakeCodeAluImm creates an arithmetic, bitwise or shift instruction with a 16-bit immediate.
func MakeCodeAluImm(op Opcode, dst, src Selector, imm int64) Code {
	return makeOp(op, reg(dst, 22)|reg(src, 17)|immediate(imm, 0, IMM_WIDTH_ALU))
}

// MakeCodeCmp creates a compare that stores into the comparison latch.
func MakeCodeCmp(cond CodeCond, lhs, rhs Selector) Code {
	return makeOp(OP_CMP, (uint32(cond)&0xf)<<23|reg(lhs, 18)|reg(rhs, 13))
}

// MakeCodeCset creates a compare that writes 0 or 1 into dst.
func MakeCodeCset(cond CodeCond, dst, lhs, rhs Selector) Code {
	return makeOp(OP_CSET, (uint32(cond)&0xf)<<23|reg(lhs, 18)|reg(rhs, 13)|reg(dst, 8))
}

// MakeCodeLoad creates a sized load from base+offset.
func MakeCodeLoad(size DataSize, signed bool, dst, base Selector, offset int64) Code {
	return makeOp(OP_LDR, flag(signed, 26)|(uint32(size)&0x3)<<24|reg(dst, 19)|reg(base, 14)|immediate(offset, 0, IMM_WIDTH_MEM))
}

// MakeCodeStore creates a sized store to base+offset.
func MakeCodeStore(size DataSize, src, base Selector, offset int64) Code {
	return makeOp(OP_STR, (uint32(size)&0x3)<<24|reg(src, 19)|reg(base, 14)|immediate(offset, 0, IMM_WIDTH_MEM))
}

// Opcode returns the opcode from the instruction word.
func (code Code) Opcode() Opcode {
	return Opcode(Field(uint32(code), 27, 5))
}

// HaltDecode returns the HALT slot member.
func (code Code) HaltDecode() HaltKind {
	return HaltKind(Field(uint32(code), 25, 2))
}

// MoveDecode decodes a MVNOT, MVNEG or MOV instruction.
func (code Code) MoveDecode() (dst Selector, is_reg bool, src Selector, imm int64) {
	word := uint32(code)
	dst = Selector(Field(word, 22, 5))
	is_reg = Bit(word, 21)
	src = Selector(Field(word, 16, 5))
	imm = Extend(word, 0, IMM_WIDTH_MOVE, true)
	return
}

// MvaDecode decodes a move-accumulate instruction.
func (code Code) MvaDecode() (dst Selector, quad uint, is_reg bool, src Selector, imm int64) {
	word := uint32(code)
	dst = Selector(Field(word, 22, 5))
	quad = uint(Field(word, 20, 2))
	is_reg = Bit(word, 19)
	src = Selector(Field(word, 14, 5))
	imm = Extend(word, 0, IMM_WIDTH_MVA, Bit(word, 18))
	return
}

// BranchDecode decodes a branch instruction.
func (code Code) BranchDecode() (link bool, is_reg bool, src Selector, offset int64) {
	word := uint32(code)
	link = Bit(word, 26)
	is_reg = Bit(word, 25)
	src = Selector(Field(word, 20, 5))
	offset = Extend(word, 0, IMM_WIDTH_BR, true)
	return
}

// LeaDecode decodes a load-effective-address instruction.
func (code Code) LeaDecode() (dst Selector, is_base bool, base Selector, offset int64) {
	word := uint32(code)
	dst = Selector(Field(word, 22, 5))
	is_base = Bit(word, 21)
	base = Selector(Field(word, 16, 5))
	if is_base {
		offset = Extend(word, 0, IMM_WIDTH_ALU, true)
	} else {
		offset = Extend(word, 0, IMM_WIDTH_MOVE, true)
	}
	return
}

// AluDecode decodes an arithmetic, bitwise or shift instruction.
func (code Code) AluDecode() (dst, src Selector, is_reg bool, src2 Selector, imm int64) {
	word := uint32(code)
	dst = Selector(Field(word, 22, 5))
	src = Selector(Field(word, 17, 5))
	is_reg = Bit(word, 16)
	src2 = Selector(Field(word, 11, 5))
	imm = Extend(word, 0, IMM_WIDTH_ALU, true)
	return
}

// CmpDecode decodes a CMP or CSET instruction. is_cset is the low opcode bit.
func (code Code) CmpDecode() (cond CodeCond, is_cset bool, lhs, rhs, dst Selector) {
	word := uint32(code)
	cond = CodeCond(Field(word, 23, 4))
	is_cset = Bit(word, 27)
	lhs = Selector(Field(word, 18, 5))
	rhs = Selector(Field(word, 13, 5))
	dst = Selector(Field(word, 8, 5))
	return
}

// MemDecode decodes a LDR or STR instruction. is_store is the low opcode bit.
func (code Code) MemDecode() (is_store bool, signed bool, size DataSize, data, base Selector, offset int64) {
	word := uint32(code)
	is_store = Bit(word, 27)
	signed = Bit(word, 26)
	size = DataSize(Field(word, 24, 2))
	data = Selector(Field(word, 19, 5))
	base = Selector(Field(word, 14, 5))
	offset = Extend(word, 0, IMM_WIDTH_MEM, true)
	return
}

// canonical returns the assembly text for the instruction, and ok if that
// text assembles back to exactly this word.
func (code Code) canonical() (out string, ok bool) {
	var canon Code
	var used []Selector

	op := code.Opcode()

	switch {
	case op == OP_HALT:
		kind := code.HaltDecode()
		canon = MakeCodeHalt(kind)
		out = kind.String()
	case op.IsMove():
		dst, is_reg, src, imm := code.MoveDecode()
		if is_reg {
			canon = MakeCodeMove(op, dst, src)
			used = []Selector{dst, src}
			out = fmt.Sprintf("%v %v %v", op, dst, src)
		} else {
			canon = MakeCodeMoveImm(op, dst, imm)
			used = []Selector{dst}
			out = fmt.Sprintf("%v %v %d", op, dst, imm)
		}
	case op == OP_MVA:
		dst, quad, is_reg, src, imm := code.MvaDecode()
		if is_reg {
			canon = MakeCodeMva(dst, quad, src)
			used = []Selector{dst, src}
			out = fmt.Sprintf("%v %v %d %v", op, dst, quad, src)
		} else {
			// The assembler only sets the signed flag for negative values.
			canon = MakeCodeMvaImm(dst, quad, imm, imm < 0)
			used = []Selector{dst}
			out = fmt.Sprintf("%v %v %d %#x", op, dst, quad, imm)
		}
	case op == OP_BR:
		link, is_reg, src, offset := code.BranchDecode()
		name := "br"
		if link {
			name = "bl"
		}
		if is_reg {
			canon = MakeCodeBranch(link, src)
			used = []Selector{src}
			out = fmt.Sprintf("%v %v", name, src)
		} else {
			canon = MakeCodeBranchImm(link, offset)
			out = fmt.Sprintf("%v %+d", name, offset)
		}
	case op == OP_LEA:
		dst, is_base, base, offset := code.LeaDecode()
		if is_base {
			canon = MakeCodeLeaBase(dst, base, offset)
			used = []Selector{dst, base}
			out = fmt.Sprintf("%v %v %v %d", op, dst, base, offset)
		} else {
			canon = MakeCodeLea(dst, offset)
			used = []Selector{dst}
			out = fmt.Sprintf("%v %v %+d", op, dst, offset)
		}
	case op.IsAlu():
		dst, src, is_reg, src2, imm := code.AluDecode()
		if is_reg {
			canon = MakeCodeAlu(op, dst, src, src2)
			used = []Selector{dst, src, src2}
			out = fmt.Sprintf("%v %v %v %v", op, dst, src, src2)
		} else {
			canon = MakeCodeAluImm(op, dst, src, imm)
			used = []Selector{dst, src}
			out = fmt.Sprintf("%v %v %v %d", op, dst, src, imm)
		}
	case op == OP_CMP:
		cond, _, lhs, rhs, _ := code.CmpDecode()
		if cond >= COND_COUNT {
			return
		}
		canon = MakeCodeCmp(cond, lhs, rhs)
		used = []Selector{lhs, rhs}
		out = fmt.Sprintf("%v %v %v %v", op, cond, lhs, rhs)
	case op == OP_CSET:
		cond, _, lhs, rhs, dst := code.CmpDecode()
		if cond >= COND_COUNT {
			return
		}
		canon = MakeCodeCset(cond, dst, lhs, rhs)
		used = []Selector{dst, lhs, rhs}
		out = fmt.Sprintf("%v %v %v %v %v", op, cond, dst, lhs, rhs)
	case op == OP_LDR || op == OP_STR:
		_, signed, size, data, base, offset := code.MemDecode()
		name := op.String()
		if op == OP_LDR {
			canon = MakeCodeLoad(size, signed, data, base, offset)
			if signed {
				name += "s"
			}
		} else {
			canon = MakeCodeStore(size, data, base, offset)
		}
		used = []Selector{data, base}
		out = fmt.Sprintf("%v.%v %v %v %d", name, size, data, base, offset)
	default:
		return
	}

	for _, sel := range used {
		if !sel.Valid() {
			return
		}
	}

	ok = canon == code
	return
}

// String returns the assembly language representation of this instruction.
// Words the assembler cannot produce are shown as a .word directive.
func (code Code) String() (out string) {
	out, ok := code.canonical()
	if !ok {
		out = fmt.Sprintf(".word %#08x", uint32(code))
	}

	return
}
