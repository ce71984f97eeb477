package vm

import (
	"errors"

	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrStackOverflow     = errors.New(f("stack overflow"))
	ErrStackUnderflow    = errors.New(f("stack underflow"))
	ErrAllocationFailure = errors.New(f("allocation failure"))
	ErrNotRunning        = errors.New(f("machine not running"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissing      = errors.New(f("opcode missing"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrConditionInvalid   = errors.New(f("condition invalid"))
	ErrSizeInvalid        = errors.New(f("data size invalid"))
	ErrQuadrantInvalid    = errors.New(f("quadrant invalid"))
	ErrTargetRange        = errors.New(f("target out of range"))
	ErrValueRange         = errors.New(f("value out of range"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrInvalidRegister is a register selector outside r0-r7 and f0-f7.
type ErrInvalidRegister Selector

func (err ErrInvalidRegister) Error() string {
	return f("invalid register selector %d", int(err))
}

func (err ErrInvalidRegister) Is(target error) (ok bool) {
	_, ok = target.(ErrInvalidRegister)
	return
}

// ErrUnknownOpcode is an opcode value with no handler.
type ErrUnknownOpcode Opcode

func (err ErrUnknownOpcode) Error() string {
	return f("unknown opcode %d", int(err))
}

func (err ErrUnknownOpcode) Is(target error) (ok bool) {
	_, ok = target.(ErrUnknownOpcode)
	return
}

// ErrUnsupported is a decoded opcode whose result the machine does not compute.
type ErrUnsupported Opcode

func (err ErrUnsupported) Error() string {
	return f("unsupported opcode %v", Opcode(err).String())
}

func (err ErrUnsupported) Is(target error) (ok bool) {
	_, ok = target.(ErrUnsupported)
	return
}

// ErrInvalidCondition is a condition code outside the eleven defined codes.
type ErrInvalidCondition CodeCond

func (err ErrInvalidCondition) Error() string {
	return f("invalid condition code %d", int(err))
}

func (err ErrInvalidCondition) Is(target error) (ok bool) {
	_, ok = target.(ErrInvalidCondition)
	return
}

// ErrInvalidIndex is a stack slot that has not been allocated.
type ErrInvalidIndex uint64

func (err ErrInvalidIndex) Error() string {
	return f("invalid stack index %d", uint64(err))
}

func (err ErrInvalidIndex) Is(target error) (ok bool) {
	_, ok = target.(ErrInvalidIndex)
	return
}

// ErrCodeFault is an instruction pointer outside the code image.
type ErrCodeFault int64

func (err ErrCodeFault) Error() string {
	return f("code fault at %d", int64(err))
}

func (err ErrCodeFault) Is(target error) (ok bool) {
	_, ok = target.(ErrCodeFault)
	return
}

// ErrMemoryFault is a sized access outside the stack memory.
type ErrMemoryFault struct {
	Address int64 // Effective byte address.
	Size    int   // Access size in bytes.
}

func (err ErrMemoryFault) Error() string {
	return f("memory fault at %#x size %d", err.Address, err.Size)
}

func (err ErrMemoryFault) Is(target error) (ok bool) {
	_, ok = target.(ErrMemoryFault)
	return
}

// ErrInstruction locates a fault in the code image.
type ErrInstruction struct {
	Ip      uint64
	Fetched bool // Code is valid only if the fetch succeeded.
	Code    Code
	Err     error
}

func (err *ErrInstruction) Error() string {
	if !err.Fetched {
		return f("ip %d %v", err.Ip, err.Err)
	}
	return f("ip %d 0x%08x (%v) %v", err.Ip, uint32(err.Code), err.Code, err.Err)
}

func (err *ErrInstruction) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
