package vm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(t *testing.T, asm *Assembler, program ...string) *Program {
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(t, err)
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

func stEqual(t *testing.T, expected, statements []Statement) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(statements))
	if len(expected) == len(statements) {
		for n := range len(expected) {
			assert.Equal(expected[n], statements[n])
		}
	}
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog := assemble(t, asm)
	assert.Equal(0, len(prog.Statements))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("8", asm.Equate["STACK_ALIGN"])
	assert.Equal("8", asm.Equate["STACK_WORD_SIZE"])
	assert.Equal("22", asm.Equate["OPCODE_COUNT"])
}

func TestAssemblerBasic(t *testing.T) {
	asm := &Assembler{}

	prog := assemble(t, asm,
		"mov r0 7",
		"mvnot f1 r0 ; comment",
		"",
		"add r2 r1 3",
		"sub r2 r2 r0",
		"cmp gtu r0 r1",
		"cset le r3 r0 r1",
		"nop",
		"halt",
	)

	expected := []Statement{
		{LineNo: 1, Ip: 0, Words: []string{"mov", "r0", "7"},
			Codes: []Code{MakeCodeMoveImm(OP_MOV, REG_R0, 7)}},
		{LineNo: 2, Ip: 1, Words: []string{"mvnot", "f1", "r0"},
			Codes: []Code{MakeCodeMove(OP_MVNOT, REG_F1, REG_R0)}},
		{LineNo: 4, Ip: 2, Words: []string{"add", "r2", "r1", "3"},
			Codes: []Code{MakeCodeAluImm(OP_ADD, REG_R2, REG_R1, 3)}},
		{LineNo: 5, Ip: 3, Words: []string{"sub", "r2", "r2", "r0"},
			Codes: []Code{MakeCodeAlu(OP_SUB, REG_R2, REG_R2, REG_R0)}},
		{LineNo: 6, Ip: 4, Words: []string{"cmp", "gtu", "r0", "r1"},
			Codes: []Code{MakeCodeCmp(COND_UNSIGNED_SUP, REG_R0, REG_R1)}},
		{LineNo: 7, Ip: 5, Words: []string{"cset", "le", "r3", "r0", "r1"},
			Codes: []Code{MakeCodeCset(COND_INFEQ, REG_R3, REG_R0, REG_R1)}},
		{LineNo: 8, Ip: 6, Words: []string{"nop"},
			Codes: []Code{MakeCodeAluImm(OP_OR, REG_R0, REG_R0, 0)}},
		{LineNo: 9, Ip: 7, Words: []string{"halt"},
			Codes: []Code{MakeCodeHalt(HALT_STOP)}},
	}

	stEqual(t, expected, prog.Statements)
}

func TestAssemblerMemory(t *testing.T) {
	asm := &Assembler{}

	prog := assemble(t, asm,
		"ldr r0 r1",
		"ldrs.8 r0 r1 -4",
		"ldr.16 f0 r7 8191",
		"str.32 r2 r3 -8192",
		"str r4 r5 16",
	)

	expected := []Statement{
		{LineNo: 1, Ip: 0, Words: []string{"ldr", "r0", "r1"},
			Codes: []Code{MakeCodeLoad(SIZE_64, false, REG_R0, REG_R1, 0)}},
		{LineNo: 2, Ip: 1, Words: []string{"ldrs.8", "r0", "r1", "-4"},
			Codes: []Code{MakeCodeLoad(SIZE_8, true, REG_R0, REG_R1, -4)}},
		{LineNo: 3, Ip: 2, Words: []string{"ldr.16", "f0", "r7", "8191"},
			Codes: []Code{MakeCodeLoad(SIZE_16, false, REG_F0, REG_R7, 8191)}},
		{LineNo: 4, Ip: 3, Words: []string{"str.32", "r2", "r3", "-8192"},
			Codes: []Code{MakeCodeStore(SIZE_32, REG_R2, REG_R3, -8192)}},
		{LineNo: 5, Ip: 4, Words: []string{"str", "r4", "r5", "16"},
			Codes: []Code{MakeCodeStore(SIZE_64, REG_R4, REG_R5, 16)}},
	}

	stEqual(t, expected, prog.Statements)
}

func TestAssemblerLoadImmediate(t *testing.T) {
	asm := &Assembler{}

	prog := assemble(t, asm,
		"li r0 -5",
		"li r1 0x123456789",
		"li r2 0xffffffffffffffff",
		"mva r3 1 0x3ffff",
		"mva r3 2 -1",
		"mva r3 3 r4",
	)

	expected := []Statement{
		{LineNo: 1, Ip: 0, Words: []string{"li", "r0", "-5"},
			Codes: []Code{MakeCodeMoveImm(OP_MOV, REG_R0, -5)}},
		{LineNo: 2, Ip: 1, Words: []string{"li", "r1", "0x123456789"},
			Codes: []Code{
				MakeCodeMoveImm(OP_MOV, REG_R1, 0x6789),
				MakeCodeMvaImm(REG_R1, 1, 0x2345, false),
				MakeCodeMvaImm(REG_R1, 2, 0x1, false),
			}},
		{LineNo: 3, Ip: 4, Words: []string{"li", "r2", "0xffffffffffffffff"},
			Codes: []Code{MakeCodeMoveImm(OP_MOV, REG_R2, -1)}},
		{LineNo: 4, Ip: 5, Words: []string{"mva", "r3", "1", "0x3ffff"},
			Codes: []Code{MakeCodeMvaImm(REG_R3, 1, 0x3ffff, false)}},
		{LineNo: 5, Ip: 6, Words: []string{"mva", "r3", "2", "-1"},
			Codes: []Code{MakeCodeMvaImm(REG_R3, 2, -1, true)}},
		{LineNo: 6, Ip: 7, Words: []string{"mva", "r3", "3", "r4"},
			Codes: []Code{MakeCodeMva(REG_R3, 3, REG_R4)}},
	}

	stEqual(t, expected, prog.Statements)
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "100")

	prog := assemble(t, asm,
		".equ TEN 10",
		"mov r0 TEN",
		"add r1 r0 $(TEN * 3)",
		"mov r2 $(LINENO)",
		"mov r3 'A'",
		"mov r4 '\\n'",
		"mov r5 BASE",
		".equ MASK $(~0xff)",
		"and r6 r6 MASK",
		"mov r7 $(STACK_WORD_SIZE * 2)",
	)

	expected := []Statement{
		{LineNo: 2, Ip: 0, Words: []string{"mov", "r0", "10"},
			Codes: []Code{MakeCodeMoveImm(OP_MOV, REG_R0, 10)}},
		{LineNo: 3, Ip: 1, Words: []string{"add", "r1", "r0", "30"},
			Codes: []Code{MakeCodeAluImm(OP_ADD, REG_R1, REG_R0, 30)}},
		{LineNo: 4, Ip: 2, Words: []string{"mov", "r2", "4"},
			Codes: []Code{MakeCodeMoveImm(OP_MOV, REG_R2, 4)}},
		{LineNo: 5, Ip: 3, Words: []string{"mov", "r3", "65"},
			Codes: []Code{MakeCodeMoveImm(OP_MOV, REG_R3, 'A')}},
		{LineNo: 6, Ip: 4, Words: []string{"mov", "r4", "10"},
			Codes: []Code{MakeCodeMoveImm(OP_MOV, REG_R4, '\n')}},
		{LineNo: 7, Ip: 5, Words: []string{"mov", "r5", "100"},
			Codes: []Code{MakeCodeMoveImm(OP_MOV, REG_R5, 100)}},
		{LineNo: 9, Ip: 6, Words: []string{"and", "r6", "r6", "-256"},
			Codes: []Code{MakeCodeAluImm(OP_AND, REG_R6, REG_R6, -256)}},
		{LineNo: 10, Ip: 7, Words: []string{"mov", "r7", "16"},
			Codes: []Code{MakeCodeMoveImm(OP_MOV, REG_R7, 16)}},
	}

	stEqual(t, expected, prog.Statements)

	// Predefines survive a second parse.
	prog = assemble(t, asm, "mov r0 BASE")
	assert.Equal([]Code{MakeCodeMoveImm(OP_MOV, REG_R0, 100)}, prog.Statements[0].Codes)
	_, ok := asm.Equate["TEN"]
	assert.False(ok)
}

func TestAssemblerLabel(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog := assemble(t, asm,
		"bl func",
		"halt",
		".word 0x12",
		"func: lea r0 data",
		"ret",
		"data: .word 0xdeadbeef",
		"loop: AND_ALSO:",
		"b loop",
	)

	assert.Equal(map[string]int{"func": 3, "data": 5, "loop": 6, "AND_ALSO": 6}, asm.Label)

	expected := []Statement{
		{LineNo: 1, Ip: 0, Words: []string{"bl", "func"},
			Codes: []Code{MakeCodeBranchImm(true, 2)}, LinkLabel: "func", LinkWidth: IMM_WIDTH_BR},
		{LineNo: 2, Ip: 1, Words: []string{"halt"},
			Codes: []Code{MakeCodeHalt(HALT_STOP)}},
		{LineNo: 3, Ip: 2, Words: []string{".word", "0x12"},
			Codes: []Code{Code(0x12)}},
		{LineNo: 4, Ip: 3, Words: []string{"lea", "r0", "data"},
			Codes: []Code{MakeCodeLea(REG_R0, 1)}, LinkLabel: "data", LinkWidth: IMM_WIDTH_MOVE},
		{LineNo: 5, Ip: 4, Words: []string{"ret"},
			Codes: []Code{MakeCodeHalt(HALT_RET)}},
		{LineNo: 6, Ip: 5, Words: []string{".word", "0xdeadbeef"},
			Codes: []Code{Code(0xdeadbeef)}},
		{LineNo: 8, Ip: 6, Words: []string{"b", "loop"},
			Codes: []Code{MakeCodeBranchImm(false, -1)}, LinkLabel: "loop", LinkWidth: IMM_WIDTH_BR},
	}

	stEqual(t, expected, prog.Statements)
}

func TestAssemblerMacro(t *testing.T) {
	asm := &Assembler{}
	prog := assemble(t, asm,
		".macro INC reg",
		"add reg reg 1",
		".endm",
		"INC r3",
		".macro SPIN",
		"@top: b @top",
		".endm",
		"SPIN",
		"SPIN",
		".macro NESTED a b",
		"INC a",
		"mov a $(b + 1)",
		".endm",
		"NESTED r4 7",
	)

	expected := []Statement{
		{LineNo: 2, Ip: 0, Words: []string{"add", "r3", "r3", "1"},
			Codes: []Code{MakeCodeAluImm(OP_ADD, REG_R3, REG_R3, 1)}},
		{LineNo: 6, Ip: 1, Words: []string{"b", "SPIN_1_top"},
			Codes: []Code{MakeCodeBranchImm(false, -1)}, LinkLabel: "SPIN_1_top", LinkWidth: IMM_WIDTH_BR},
		{LineNo: 6, Ip: 2, Words: []string{"b", "SPIN_2_top"},
			Codes: []Code{MakeCodeBranchImm(false, -1)}, LinkLabel: "SPIN_2_top", LinkWidth: IMM_WIDTH_BR},
		{LineNo: 2, Ip: 3, Words: []string{"add", "r4", "r4", "1"},
			Codes: []Code{MakeCodeAluImm(OP_ADD, REG_R4, REG_R4, 1)}},
		{LineNo: 12, Ip: 4, Words: []string{"mov", "r4", "8"},
			Codes: []Code{MakeCodeMoveImm(OP_MOV, REG_R4, 8)}},
	}

	stEqual(t, expected, prog.Statements)
}

func TestAssemblerRun(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog := assemble(t, asm,
		"        li r1 10          ; counter",
		"        mov r0 0          ; sum",
		"loop:   add r0 r0 r1",
		"        sub r1 r1 1",
		"        cset eq r2 r1 r7  ; r7 is zero",
		"        lea r3 loop",
		"        lea r4 done",
		"        sub r5 r4 r3",
		"        mult r5 r5 r2",
		"        add r3 r3 r5",
		"        br r3",
		"done:   li r6 0x123456789abcdef0",
		"        li r5 -0x123456789",
		"        halt",
	)

	m, err := NewMachine(prog.Binary(), 16, 0)
	assert.NoError(err)

	result := m.Run()
	assert.Equal(STATE_HALTED, result.State)
	assert.NoError(result.Err)
	assert.Equal(uint64(55), m.Registers.Int[0])
	assert.Equal(uint64(0x123456789abcdef0), m.Registers.Int[6])
	assert.Equal(^uint64(0x123456789)+1, m.Registers.Int[5])
}

func TestAssemblerErrSyntax(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// Various syntax errors
	table := [](struct {
		prog string
		line int
	}){
		{"DUP:\nDUP:\n", 2},
		{"mov r0 nothing", 1},
		{"mov r0 $(\"aaa\")", 1},
		{"mov r0 $(more(\"aaa\"))", 1},
		{"mov r0 $(0x10000000000000000)", 1},
		{"mov r9 1", 1},
		{"mov r0 0x100000", 1},
		{"mov r0", 1},
		{"mov r0 1 2", 1},
		{".equ", 1},
		{".equ A", 1},
		{".equ A 1\n.equ A 2\n", 2},
		{".macro A B C\n.endm\nA 1\n", 3},
		{".macro A B\nmov r0 B\n.endm\nA 1\nA nothing\n", 5},
		{".macro A B\n.macro C\n.endm\n.endm", 2},
		{".macro A\n.endm\n.macro A\n.endm\n", 3},
		{".macro\n", 1},
		{".endm\n", 1},
		{".macro A\nhalt\n", 2},
		{"halt 1", 1},
		{"nop bad", 1},
		{"add r0 r1", 1},
		{"add r0 r1 0x8000", 1},
		{"add r0 r9 1", 1},
		{"zed r0 r1 1", 1},
		{"cmp xx r0 r1", 1},
		{"cmp eq r0", 1},
		{"cset eq r0 r1", 1},
		{"cset eq r0 r1 r9", 1},
		{"ldr.12 r0 r1", 1},
		{"ldr r0 r1 0x2000", 1},
		{"str r0", 1},
		{"ldrs.8 r0 r1 1 2", 1},
		{"mva r0 4 1", 1},
		{"mva r0 0 0x40000", 1},
		{"mva r0 0", 1},
		{".word 0x100000000", 1},
		{".word", 1},
		{"li r0", 1},
		{"li r0 bad", 1},
		{"lea r0 r1", 1},
		{"lea r0 r1 0x8000", 1},
		{"lea r0 0x100000", 1},
		{"b", 1},
		{"b 0x1000000", 1},
		{"halt\nb nowhere\n", 2},
		{"lea r0 nowhere", 1},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		var se *ErrSyntax
		assert.NotNil(err, entry.prog)
		if err != nil {
			assert.True(errors.As(err, &se), entry.prog)
			assert.Equal(entry.line, se.LineNo, entry.prog)
		}
	}
}

func TestAssemblerErrKinds(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	table := [](struct {
		prog string
		err  error
	}){
		{"DUP:\nDUP:\n", ErrLabelDuplicate},
		{"mov r9 1", ErrRegisterInvalid},
		{"mov r0 0x100000", ErrValueRange},
		{"halt 1", ErrOpcodeExtraArgs},
		{"add r0 r1", ErrOpcodeValueMissing},
		{"zed r0", ErrInstructionInvalid},
		{"cmp xx r0 r1", ErrConditionInvalid},
		{"ldr.12 r0 r1", ErrSizeInvalid},
		{"mva r0 4 1", ErrQuadrantInvalid},
		{"b 0x1000000", ErrTargetRange},
		{".equ A 1\n.equ A 2\n", ErrEquateDuplicate},
		{".macro A\n.endm\n.macro A\n.endm\n", ErrMacroDuplicate},
		{".macro A\n.macro B\n", ErrMacroNesting},
		{".macro A\n", ErrMacroLonely},
		{".endm\n", ErrMacroLonelyEndm},
	}

	for _, entry := range table {
		_, err := asm.Parse(strings.NewReader(entry.prog))
		assert.ErrorIs(err, entry.err, entry.prog)
	}

	_, err := asm.Parse(strings.NewReader("b nowhere"))
	var missing ErrLabelMissing
	assert.True(errors.As(err, &missing))
	assert.Equal(ErrLabelMissing("nowhere"), missing)

	_, err = asm.Parse(strings.NewReader(".macro A B\nmov B 1\n.endm\nA r9\n"))
	var macro *ErrMacro
	assert.True(errors.As(err, &macro))
	assert.Equal("A", macro.Macro)
	assert.Equal(2, macro.Line)
	assert.ErrorIs(err, ErrRegisterInvalid)
}
