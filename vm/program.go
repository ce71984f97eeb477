package vm

import (
	"iter"
	"strings"
)

// Statement is a line of assembled source with its generated instructions.
type Statement struct {
	LineNo    int
	Ip        int
	Words     []string
	Codes     []Code
	LinkLabel string // Label whose ip-relative offset fills the last code.
	LinkWidth uint   // Width of the offset field to fill.
}

type Program struct {
	Statements []Statement
}

// Disassemble builds a listing for a bare code image, one statement per
// word. Line numbers are code indexes plus one.
func Disassemble(code []uint32) (prog *Program) {
	prog = &Program{
		Statements: make([]Statement, len(code)),
	}

	for n, word := range code {
		prog.Statements[n] = Statement{
			LineNo: n + 1,
			Ip:     n,
			Words:  strings.Fields(Code(word).String()),
			Codes:  []Code{Code(word)},
		}
	}

	return
}

type Debug struct {
	*Statement
	Index int
}

// Debug locates the statement that generated the code at ip.
func (prog *Program) Debug(ip uint64) (dbg Debug) {
	for n, st := range prog.Statements {
		if ip >= uint64(st.Ip) && ip < uint64(st.Ip+len(st.Codes)) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(ip - uint64(st.Ip)),
			}
			break
		}
	}

	return
}

// Binary returns the code image.
func (prog *Program) Binary() (bins []uint32) {
	for _, code := range prog.Codes() {
		bins = append(bins, uint32(code))
	}

	return
}

// Codes iterates over the instructions and their code indexes.
func (prog *Program) Codes() iter.Seq2[uint64, Code] {
	return func(yield func(ip uint64, code Code) bool) {
		for _, st := range prog.Statements {
			ip := uint64(st.Ip)
			for n, code := range st.Codes {
				if !yield(ip+uint64(n), code) {
					return
				}
			}
		}
	}
}
