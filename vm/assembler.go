// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package vm

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass macro assembler for the regvm instruction set.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to code indexes.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to selectors.
var regMap = map[string]Selector{
	"r0": REG_R0, "r1": REG_R1, "r2": REG_R2, "r3": REG_R3,
	"r4": REG_R4, "r5": REG_R5, "r6": REG_R6, "r7": REG_R7,
	"f0": REG_F0, "f1": REG_F1, "f2": REG_F2, "f3": REG_F3,
	"f4": REG_F4, "f5": REG_F5, "f6": REG_F6, "f7": REG_F7,
}

// haltMap maps the HALT slot members.
var haltMap = map[string]HaltKind{
	"halt":    HALT_STOP,
	"ret":     HALT_RET,
	"syscall": HALT_SYSCALL,
	"call":    HALT_CALL,
}

// moveMap maps the move family.
var moveMap = map[string]Opcode{
	"mov":   OP_MOV,
	"mvnot": OP_MVNOT,
	"mvneg": OP_MVNEG,
}

// aluMap maps the three operand arithmetic, bitwise and shift opcodes.
var aluMap = map[string]Opcode{
	"add":  OP_ADD,
	"sub":  OP_SUB,
	"mult": OP_MULT,
	"div":  OP_DIV,
	"mod":  OP_MOD,
	"and":  OP_AND,
	"or":   OP_OR,
	"xor":  OP_XOR,
	"lsl":  OP_LSL,
	"lsr":  OP_LSR,
	"asr":  OP_ASR,
}

// condMap maps condition code names.
var condMap = map[string]CodeCond{
	"al":  COND_ALWAYS,
	"eq":  COND_EQUAL,
	"ne":  COND_DIFF,
	"gt":  COND_SUP,
	"gtu": COND_UNSIGNED_SUP,
	"ge":  COND_SUPEQ,
	"geu": COND_UNSIGNED_SUPEQ,
	"lt":  COND_INF,
	"ltu": COND_UNSIGNED_INF,
	"le":  COND_INFEQ,
	"leu": COND_UNSIGNED_INFEQ,
}

// sizeMap maps load/store size suffixes.
var sizeMap = map[string]DataSize{
	"8":  SIZE_8,
	"16": SIZE_16,
	"32": SIZE_32,
	"64": SIZE_64,
}

var reLabel = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)

// fitsSigned returns true if value is representable in a width bit signed field.
func fitsSigned(value int64, width uint) bool {
	limit := int64(1) << (width - 1)
	return value >= -limit && value < limit
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	invert := false
	if len(word) > 0 && word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		var u64 uint64
		u64, err = strconv.ParseUint(word, 0, 64)
		if err != nil {
			err = ErrParseNumber(word)
			return
		}
		value = int64(u64)
	}

	if invert {
		value = ^value
	}

	return
}

// register returns the selector for a register name.
func (asm *Assembler) register(word string) (sel Selector, err error) {
	sel, ok := regMap[word]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// isLabel returns true if word can only be a label reference.
func (asm *Assembler) isLabel(word string) bool {
	if _, is_reg := regMap[word]; is_reg {
		return false
	}
	if _, err := asm.valueOf(word); err == nil {
		return false
	}
	return reLabel.MatchString(word)
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value64 int64
		value64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		var u64 uint64
		u64, ok = st_int.Uint64()
		if !ok {
			err = ErrParseExpression(expr)
			return
		}
		value = int64(u64)
	}
	return
}

// parseLine parses a single line as a list of words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = slices.DeleteFunc(strings.Fields(line), func(a string) bool { return len(a) == 0 })

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentIp()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// Local labels are unique to each expansion.
		local := fmt.Sprintf("%v_%v_", name, asm.currentIp())
		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentIp gets the code index of the next generated instruction.
func (asm *Assembler) currentIp() int {
	if len(asm.Statement) == 0 {
		return 0
	}

	last := asm.Statement[len(asm.Statement)-1]

	return last.Ip + len(last.Codes)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Statement = asm.Statement[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	maps.Insert(asm.Equate, Defines())
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels into ip-relative offsets.
	for n := range asm.Statement {
		st := &asm.Statement[n]

		if len(st.LinkLabel) == 0 {
			continue
		}
		lineno = st.LineNo
		line = strings.Join(st.Words, " ")

		label := st.LinkLabel
		ip, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}
		if len(st.Codes) < 1 {
			err = ErrInstructionInvalid
			return
		}
		next_ip := st.Ip + len(st.Codes)
		offset := int64(ip) - int64(next_ip)
		if !fitsSigned(offset, st.LinkWidth) {
			err = ErrTargetRange
			return
		}
		linked := &st.Codes[len(st.Codes)-1]
		*linked |= Code(immediate(offset, 0, st.LinkWidth))
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// loadImmediate materializes a 64-bit constant with MOV and MVA quadrant fills.
func loadImmediate(dst Selector, value int64) (codes []Code) {
	if fitsSigned(value, IMM_WIDTH_MOVE) {
		return []Code{MakeCodeMoveImm(OP_MOV, dst, value)}
	}

	u64 := uint64(value)
	codes = append(codes, MakeCodeMoveImm(OP_MOV, dst, int64(u64&0xffff)))
	for quad := uint(1); quad < 4; quad++ {
		chunk := (u64 >> (quad * 16)) & 0xffff
		if chunk != 0 {
			codes = append(codes, MakeCodeMvaImm(dst, quad, int64(chunk), false))
		}
	}

	return
}

// immOrReg parses a word as a register, or as a signed immediate of width bits.
func (asm *Assembler) immOrReg(word string, width uint) (is_reg bool, sel Selector, imm int64, err error) {
	sel, is_reg = regMap[word]
	if is_reg {
		return
	}

	imm, err = asm.valueOf(word)
	if err != nil {
		return
	}

	if !fitsSigned(imm, width) {
		err = ErrValueRange
		return
	}

	return
}

// registers parses a list of register names.
func (asm *Assembler) registers(words ...string) (sels []Selector, err error) {
	sels = make([]Selector, len(words))
	for n, word := range words {
		sels[n], err = asm.register(word)
		if err != nil {
			return
		}
	}
	return
}

// arity checks the argument count of an instruction.
func arity(args []string, least, most int) (err error) {
	switch {
	case len(args) < least:
		err = ErrOpcodeValueMissing
	case len(args) > most:
		err = ErrOpcodeExtraArgs
	}
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []Code
	var label string
	var width uint

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 {
			return
		}
		st := Statement{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Codes: codes, LinkLabel: label, LinkWidth: width}
		asm.Statement = append(asm.Statement, st)
	}()

	name := words[0]
	args := words[1:]

	// Alternate syntax substitutions
	switch {
	case name == "b":
		// b TARGET => br TARGET
		name = "br"
	case name == "nop":
		// nop => or r0 r0 0
		if len(args) != 0 {
			err = ErrOpcodeExtraArgs
			return
		}
		name = "or"
		args = []string{"r0", "r0", "0"}
	default:
		// unchanged
	}

	if kind, ok := haltMap[name]; ok {
		if len(args) != 0 {
			err = ErrOpcodeExtraArgs
			return
		}
		codes = append(codes, MakeCodeHalt(kind))
		return
	}

	if op, ok := moveMap[name]; ok {
		err = arity(args, 2, 2)
		if err != nil {
			return
		}
		var dst, src Selector
		var is_reg bool
		var imm int64
		dst, err = asm.register(args[0])
		if err != nil {
			return
		}
		is_reg, src, imm, err = asm.immOrReg(args[1], IMM_WIDTH_MOVE)
		if err != nil {
			return
		}
		if is_reg {
			codes = append(codes, MakeCodeMove(op, dst, src))
		} else {
			codes = append(codes, MakeCodeMoveImm(op, dst, imm))
		}
		return
	}

	if op, ok := aluMap[name]; ok {
		err = arity(args, 3, 3)
		if err != nil {
			return
		}
		var sels []Selector
		sels, err = asm.registers(args[:2]...)
		if err != nil {
			return
		}
		var is_reg bool
		var src2 Selector
		var imm int64
		is_reg, src2, imm, err = asm.immOrReg(args[2], IMM_WIDTH_ALU)
		if err != nil {
			return
		}
		if is_reg {
			codes = append(codes, MakeCodeAlu(op, sels[0], sels[1], src2))
		} else {
			codes = append(codes, MakeCodeAluImm(op, sels[0], sels[1], imm))
		}
		return
	}

	switch name {
	case ".word":
		err = arity(args, 1, 1)
		if err != nil {
			return
		}
		var value int64
		value, err = asm.valueOf(args[0])
		if err != nil {
			return
		}
		if value < -(1<<31) || value > 0xffffffff {
			err = ErrValueRange
			return
		}
		codes = append(codes, Code(uint32(value)))
	case "li":
		err = arity(args, 2, 2)
		if err != nil {
			return
		}
		var dst Selector
		var value int64
		dst, err = asm.register(args[0])
		if err != nil {
			return
		}
		value, err = asm.valueOf(args[1])
		if err != nil {
			return
		}
		codes = append(codes, loadImmediate(dst, value)...)
	case "mva":
		err = arity(args, 3, 3)
		if err != nil {
			return
		}
		var dst Selector
		var quad int64
		dst, err = asm.register(args[0])
		if err != nil {
			return
		}
		quad, err = asm.valueOf(args[1])
		if err != nil {
			return
		}
		if quad < 0 || quad > 3 {
			err = ErrQuadrantInvalid
			return
		}
		if src, is_reg := regMap[args[2]]; is_reg {
			codes = append(codes, MakeCodeMva(dst, uint(quad), src))
			return
		}
		var value int64
		value, err = asm.valueOf(args[2])
		if err != nil {
			return
		}
		switch {
		case value >= 0 && value < (1<<IMM_WIDTH_MVA):
			codes = append(codes, MakeCodeMvaImm(dst, uint(quad), value, false))
		case fitsSigned(value, IMM_WIDTH_MVA):
			codes = append(codes, MakeCodeMvaImm(dst, uint(quad), value, true))
		default:
			err = ErrValueRange
			return
		}
	case "br", "bl":
		err = arity(args, 1, 1)
		if err != nil {
			return
		}
		link := name == "bl"
		target := args[0]
		if src, is_reg := regMap[target]; is_reg {
			codes = append(codes, MakeCodeBranch(link, src))
			return
		}
		if asm.isLabel(target) {
			codes = append(codes, MakeCodeBranchImm(link, 0))
			label = target
			width = IMM_WIDTH_BR
			return
		}
		var offset int64
		offset, err = asm.valueOf(target)
		if err != nil {
			return
		}
		if !fitsSigned(offset, IMM_WIDTH_BR) {
			err = ErrTargetRange
			return
		}
		codes = append(codes, MakeCodeBranchImm(link, offset))
	case "lea":
		err = arity(args, 2, 3)
		if err != nil {
			return
		}
		var dst Selector
		dst, err = asm.register(args[0])
		if err != nil {
			return
		}
		if len(args) == 3 {
			var base Selector
			var offset int64
			base, err = asm.register(args[1])
			if err != nil {
				return
			}
			offset, err = asm.valueOf(args[2])
			if err != nil {
				return
			}
			if !fitsSigned(offset, IMM_WIDTH_ALU) {
				err = ErrValueRange
				return
			}
			codes = append(codes, MakeCodeLeaBase(dst, base, offset))
			return
		}
		if asm.isLabel(args[1]) {
			codes = append(codes, MakeCodeLea(dst, 0))
			label = args[1]
			width = IMM_WIDTH_MOVE
			return
		}
		var offset int64
		offset, err = asm.valueOf(args[1])
		if err != nil {
			return
		}
		if !fitsSigned(offset, IMM_WIDTH_MOVE) {
			err = ErrTargetRange
			return
		}
		codes = append(codes, MakeCodeLea(dst, offset))
	case "cmp":
		err = arity(args, 3, 3)
		if err != nil {
			return
		}
		cond, ok := condMap[args[0]]
		if !ok {
			err = ErrConditionInvalid
			return
		}
		var sels []Selector
		sels, err = asm.registers(args[1:]...)
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeCmp(cond, sels[0], sels[1]))
	case "cset":
		err = arity(args, 4, 4)
		if err != nil {
			return
		}
		cond, ok := condMap[args[0]]
		if !ok {
			err = ErrConditionInvalid
			return
		}
		var sels []Selector
		sels, err = asm.registers(args[1:]...)
		if err != nil {
			return
		}
		codes = append(codes, MakeCodeCset(cond, sels[0], sels[1], sels[2]))
	default:
		// ldr.SIZE, ldrs.SIZE, str.SIZE
		mnemonic, suffix, has_size := strings.Cut(name, ".")
		size := SIZE_64
		if has_size {
			var ok bool
			size, ok = sizeMap[suffix]
			if !ok {
				err = ErrSizeInvalid
				return
			}
		}
		switch mnemonic {
		case "ldr", "ldrs", "str":
		default:
			err = ErrInstructionInvalid
			return
		}
		err = arity(args, 2, 3)
		if err != nil {
			return
		}
		var sels []Selector
		sels, err = asm.registers(args[:2]...)
		if err != nil {
			return
		}
		var offset int64
		if len(args) == 3 {
			offset, err = asm.valueOf(args[2])
			if err != nil {
				return
			}
			if !fitsSigned(offset, IMM_WIDTH_MEM) {
				err = ErrValueRange
				return
			}
		}
		if mnemonic == "str" {
			codes = append(codes, MakeCodeStore(size, sels[0], sels[1], offset))
		} else {
			codes = append(codes, MakeCodeLoad(size, mnemonic == "ldrs", sels[0], sels[1], offset))
		}
	}

	return
}
