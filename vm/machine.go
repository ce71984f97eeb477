// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package vm

import (
	"fmt"
	"iter"
	"log"
	"maps"
)

// State is the execution state of a Machine.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_RUNNING = State(0) // running
	STATE_HALTED  = State(1) // halted
	STATE_FAULTED = State(2) // faulted
)

var _vm_defines = map[string]string{
	"STACK_ALIGN":     fmt.Sprintf("%d", STACK_ALIGN),
	"STACK_WORD_SIZE": fmt.Sprintf("%d", STACK_WORD_SIZE),
	"OPCODE_COUNT":    fmt.Sprintf("%d", OPCODE_COUNT),
}

// Defines for the machine.
func Defines() iter.Seq2[string, string] {
	return maps.All(_vm_defines)
}

// Result is the outcome of a run.
type Result struct {
	State State    // STATE_HALTED or STATE_FAULTED once the run is over.
	Halt  HaltKind // Member of the HALT slot that ended a halted run.
	Err   error    // Fault for a faulted run, wrapped in *ErrInstruction.
}

// Snapshot is a read-only copy of the machine registers.
type Snapshot struct {
	Ip       uint64
	Fp       uint64
	Sp       uint64
	LastCmp  bool
	Int      [REG_INT_COUNT]uint64
	Float    [REG_FLOAT_COUNT]uint64
	Extended [REG_EXTENDED_COUNT]uint64
	Ir       uint64
	Sc       uint64
}

// Machine is the execution context for one run of a code image.
type Machine struct {
	Verbose bool // Set to enable verbose logging.

	Ip        uint64    // Index of the next instruction to fetch.
	Fp        uint64    // Frame pointer; holds the link of the last branch-and-link.
	Registers Registers // Register file.
	Stack     *Stack    // Stack and addressable memory.
	LastCmp   bool      // Comparison latch.

	Ticks int // Instructions executed.

	code  []uint32
	state State
	halt  HaltKind
	fault error
}

// NewMachine creates a machine that will start executing code at start,
// with a stack of at least stackWords words.
func NewMachine(code []uint32, stackWords uint64, start uint64) (m *Machine, err error) {
	stack, err := NewStack(stackWords)
	if err != nil {
		return
	}

	m = &Machine{
		Ip:    start,
		Fp:    stack.Sp(),
		Stack: stack,
		code:  code,
	}

	return
}

// Code returns the code image.
func (m *Machine) Code() []uint32 {
	return m.code
}

// State returns the execution state.
func (m *Machine) State() State {
	return m.state
}

// Result returns the state, halt kind and fault of the run so far.
func (m *Machine) Result() Result {
	return Result{State: m.state, Halt: m.halt, Err: m.fault}
}

// Snapshot copies the registers for inspection.
func (m *Machine) Snapshot() (snap Snapshot) {
	regs := &m.Registers
	snap = Snapshot{
		Ip:      m.Ip,
		Fp:      m.Fp,
		Sp:      m.Stack.Sp(),
		LastCmp: m.LastCmp,
		Int:     regs.Int,
		Float:   regs.Float,
		Ir:      *regs.special(special_ir),
		Sc:      *regs.special(special_sc),
	}
	for n := range snap.Extended {
		snap.Extended[n] = *regs.special(special_r8 + special(n))
	}

	return
}

// Push pushes a value on the machine stack.
func (m *Machine) Push(value uint64) (err error) {
	if !m.Stack.Push(value) {
		err = ErrStackOverflow
	}
	return
}

// Pop pops a value from the machine stack.
func (m *Machine) Pop() (value uint64, err error) {
	return m.Stack.Pop()
}

// Frame reserves n uninitialized stack words for locals.
func (m *Machine) Frame(n uint64) (err error) {
	if !m.Stack.Reserve(n) {
		err = ErrStackOverflow
	}
	return
}

// FetchCode fetches the instruction at the instruction pointer.
func (m *Machine) FetchCode() (code Code, err error) {
	if m.Ip >= uint64(len(m.code)) {
		err = ErrCodeFault(m.Ip)
		return
	}

	code = Code(m.code[m.Ip])
	return
}

// Tick executes a single instruction. A fault moves the machine to
// STATE_FAULTED and is returned; a HALT slot member moves it to
// STATE_HALTED. A machine that is not running is left untouched.
func (m *Machine) Tick() (err error) {
	if m.state != STATE_RUNNING {
		err = ErrNotRunning
		return
	}

	ip := m.Ip
	code, err := m.FetchCode()
	fetched := err == nil
	if fetched {
		err = m.Execute(code)
	}
	if err != nil {
		err = &ErrInstruction{Ip: ip, Fetched: fetched, Code: code, Err: err}
		m.state = STATE_FAULTED
		m.fault = err
		if m.Verbose {
			log.Printf("vm: fault: %v", err)
		}
	}

	return
}

// Run ticks the machine until it halts or faults.
func (m *Machine) Run() Result {
	for m.state == STATE_RUNNING {
		m.Tick()
	}

	return m.Result()
}
