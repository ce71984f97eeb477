package vm

import (
	"log"
)

// Execute executes a single decoded instruction. The instruction pointer
// only advances when the instruction succeeds.
func (m *Machine) Execute(code Code) (err error) {
	if m.Verbose {
		log.Printf("%04d: %v", m.Ip, code)
	}

	// Relative offsets are taken from the following instruction.
	next_ip := m.Ip + 1

	op := code.Opcode()
	switch op {
	case OP_HALT:
		err = m.doHalt(code)
	case OP_MVNOT, OP_MVNEG, OP_MOV:
		err = m.doMove(op, code)
	case OP_MVA:
		err = m.doMva(code)
	case OP_BR:
		err = m.doBranch(code, &next_ip)
	case OP_LEA:
		err = m.doLea(code, next_ip)
	case OP_ADD, OP_SUB, OP_MULT, OP_AND, OP_OR, OP_XOR, OP_LSL, OP_LSR, OP_ASR:
		err = m.doAlu(op, code)
	case OP_DIV, OP_MOD:
		err = ErrUnsupported(op)
	case OP_CMP, OP_CSET:
		err = m.doCmp(code)
	case OP_LDR, OP_STR:
		err = m.doMem(code)
	default:
		err = ErrUnknownOpcode(op)
	}
	if err != nil {
		return
	}

	m.Ip = next_ip
	m.Ticks++

	return
}

// operands resolves every selector before any handler writes.
func (m *Machine) operands(sels ...Selector) (slots []*uint64, err error) {
	slots = make([]*uint64, len(sels))
	for n, sel := range sels {
		slots[n], err = m.Registers.Operand(sel)
		if err != nil {
			return
		}
	}
	return
}

func (m *Machine) doHalt(code Code) (err error) {
	m.halt = code.HaltDecode()
	m.state = STATE_HALTED
	if m.Verbose {
		log.Printf("vm: %v", m.halt)
	}
	return
}

func (m *Machine) doMove(op Opcode, code Code) (err error) {
	dst_sel, is_reg, src_sel, imm := code.MoveDecode()

	dst, err := m.Registers.Operand(dst_sel)
	if err != nil {
		return
	}

	value := uint64(imm)
	if is_reg {
		var src *uint64
		src, err = m.Registers.Operand(src_sel)
		if err != nil {
			return
		}
		value = *src
	}

	switch op {
	case OP_MVNOT:
		*dst = ^value
	case OP_MVNEG:
		*dst = -value
	case OP_MOV:
		*dst = value
	}

	return
}

func (m *Machine) doMva(code Code) (err error) {
	dst_sel, quad, is_reg, src_sel, imm := code.MvaDecode()

	dst, err := m.Registers.Operand(dst_sel)
	if err != nil {
		return
	}

	value := uint64(imm)
	if is_reg {
		var src *uint64
		src, err = m.Registers.Operand(src_sel)
		if err != nil {
			return
		}
		value = *src
	}

	*dst |= value << (quad * 16)

	return
}

func (m *Machine) doBranch(code Code, next_ip *uint64) (err error) {
	link, is_reg, src_sel, offset := code.BranchDecode()

	var target int64
	if is_reg {
		var src *uint64
		src, err = m.Registers.Operand(src_sel)
		if err != nil {
			return
		}
		target = int64(*src)
	} else {
		target = int64(*next_ip) + offset
	}

	if target < 0 || target >= int64(len(m.code)) {
		err = ErrCodeFault(target)
		return
	}

	if link {
		m.Fp = *next_ip
	}
	*next_ip = uint64(target)

	return
}

func (m *Machine) doLea(code Code, next_ip uint64) (err error) {
	dst_sel, is_base, base_sel, offset := code.LeaDecode()

	dst, err := m.Registers.Operand(dst_sel)
	if err != nil {
		return
	}

	address := next_ip
	if is_base {
		var base *uint64
		base, err = m.Registers.Operand(base_sel)
		if err != nil {
			return
		}
		address = *base
	}

	*dst = address + uint64(offset)

	return
}

// alu performs an arithmetic, bitwise or shift operation.
func alu(op Opcode, input uint64, value uint64) (output uint64) {
	switch op {
	case OP_ADD:
		output = input + value
	case OP_SUB:
		output = input - value
	case OP_MULT:
		output = input * value
	case OP_AND:
		output = input & value
	case OP_OR:
		output = input | value
	case OP_XOR:
		output = input ^ value
	case OP_LSL:
		output = input << (value & 63)
	case OP_LSR:
		output = input >> (value & 63)
	case OP_ASR:
		output = uint64(int64(input) >> (value & 63))
	}

	return
}

func (m *Machine) doAlu(op Opcode, code Code) (err error) {
	dst_sel, src_sel, is_reg, src2_sel, imm := code.AluDecode()

	slots, err := m.operands(dst_sel, src_sel)
	if err != nil {
		return
	}
	dst, src := slots[0], slots[1]

	value := uint64(imm)
	if is_reg {
		var src2 *uint64
		src2, err = m.Registers.Operand(src2_sel)
		if err != nil {
			return
		}
		value = *src2
	}

	*dst = alu(op, *src, value)

	return
}

func (m *Machine) doCmp(code Code) (err error) {
	cond, is_cset, lhs_sel, rhs_sel, dst_sel := code.CmpDecode()

	slots, err := m.operands(lhs_sel, rhs_sel)
	if err != nil {
		return
	}

	var dst *uint64
	if is_cset {
		dst, err = m.Registers.Operand(dst_sel)
		if err != nil {
			return
		}
	}

	result, err := cond.Compare(*slots[0], *slots[1])
	if err != nil {
		return
	}

	if is_cset {
		*dst = 0
		if result {
			*dst = 1
		}
	} else {
		m.LastCmp = result
	}

	return
}

func (m *Machine) doMem(code Code) (err error) {
	is_store, signed, size, data_sel, base_sel, offset := code.MemDecode()

	slots, err := m.operands(data_sel, base_sel)
	if err != nil {
		return
	}
	data, base := slots[0], slots[1]

	address := int64(*base + uint64(offset))

	if is_store {
		err = m.Stack.Store(address, size, *data)
		return
	}

	value, err := m.Stack.Load(address, size)
	if err != nil {
		return
	}
	if signed {
		value = uint64(SignExtend(value, size.Bits()))
	}
	*data = value

	return
}
