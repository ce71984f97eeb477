// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"math"
	"strings"

	"github.com/ezrec/regvm/image"
	"github.com/ezrec/regvm/internal"
	"github.com/ezrec/regvm/vm"
)

const (
	STACK_WORDS = 1024 // Default stack capacity, in words.
)

var _emulator_defines = map[string]string{
	"STACK_WORDS": fmt.Sprintf("%v", STACK_WORDS),
}

// Emulator state. Machine + program listing.
type Emulator struct {
	Verbose     bool        // If set, enables verbose logging.
	*vm.Machine             // Reference to the machine, valid after Reset.
	Program     *vm.Program // Reference to the currently running program listing.

	Image      image.Image // Code image built from the program on Reset.
	StackWords uint64      // Stack capacity, in words.
	Start      uint64      // Code index of the first instruction.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Program:    &vm.Program{},
		StackWords: STACK_WORDS,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		vm.Defines(),
	)
}

// Reset builds a fresh machine from the program.
func (emu *Emulator) Reset() (err error) {
	emu.Image.Data = emu.Program.Binary()

	m, err := vm.NewMachine(emu.Image.Data, emu.StackWords, emu.Start)
	if err != nil {
		return
	}

	emu.Machine = m
	emu.Machine.Verbose = emu.Verbose

	if emu.Verbose {
		log.Printf("emulator: reset: %d words, stack %d, start %d", len(emu.Image.Data), m.Stack.Cap(), emu.Start)
		for ip, word := range emu.Image.Words() {
			log.Printf("emulator: %6d: %v", ip, vm.Code(word))
		}
	}

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	if emu.Machine == nil {
		return 0
	}
	return emu.Machine.Ticks
}

// Code returns the current instruction code.
func (emu *Emulator) Code() vm.Code {
	if emu.Machine == nil {
		return vm.Code(0)
	}

	ip := emu.Machine.Ip
	if ip >= uint64(len(emu.Image.Data)) {
		return vm.Code(0)
	}

	return vm.Code(emu.Image.Data[ip])
}

// LineNo returns the current line number for the executing statement.
func (emu *Emulator) LineNo() int {
	if emu.Machine == nil {
		return 0
	}

	return emu.lineNoAt(emu.Machine.Ip)
}

func (emu *Emulator) lineNoAt(ip uint64) int {
	dbg := emu.Program.Debug(ip)
	if dbg.Statement == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator. done is set once the
// machine has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.Machine == nil {
		err = ErrNotReset
		return
	}

	// Set machine verbosity
	emu.Machine.Verbose = emu.Verbose

	ip := emu.Machine.Ip
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: emu.lineNoAt(ip), Err: err}
		}
	}()

	err = emu.Machine.Tick()
	if err != nil {
		return
	}

	done = emu.Machine.State() == vm.STATE_HALTED

	return
}

// Run ticks until the machine halts or faults.
func (emu *Emulator) Run() (result vm.Result, err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			break
		}
	}

	if emu.Machine != nil {
		result = emu.Machine.Result()
	}

	return
}

// Status returns the machine registers as text.
func (emu *Emulator) Status() (text string) {
	if emu.Machine == nil {
		return
	}

	snap := emu.Machine.Snapshot()

	var sb strings.Builder

	fmt.Fprintf(&sb, "% 5s: %v\n", "cmp", snap.LastCmp)
	fmt.Fprintf(&sb, "% 5s: %d\n", "ip", snap.Ip)
	fmt.Fprintf(&sb, "% 5s: %d\n", "fp", snap.Fp)
	fmt.Fprintf(&sb, "% 5s: %d\n", "sp", snap.Sp)
	fmt.Fprintf(&sb, "% 5s: %d\n", "sc", snap.Sc)
	fmt.Fprintf(&sb, "% 5s: %d\n", "ir", snap.Ir)
	for n, value := range snap.Int {
		fmt.Fprintf(&sb, "% 5s: %d\n", fmt.Sprintf("r%d", n), int64(value))
	}
	for n, value := range snap.Extended {
		fmt.Fprintf(&sb, "% 5s: %d\n", fmt.Sprintf("r%d", n+vm.REG_INT_COUNT), int64(value))
	}
	for n, value := range snap.Float {
		fmt.Fprintf(&sb, "% 5s: %g\n", fmt.Sprintf("f%d", n), math.Float64frombits(value))
	}

	text = sb.String()
	return
}
