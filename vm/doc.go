// Package vm implements the register machine and assembler for the regvm
// instruction set.
//
// The machine decodes fixed-width 32-bit instruction words. The upper five
// bits select the opcode; the remaining 27 bits hold register selectors,
// mode bits and sign-extended immediates. Execution runs against eight
// 64-bit integer registers (r0-r7), eight 64-bit floating registers (f0-f7)
// holding IEEE-754 bit patterns, a comparison latch, a frame pointer, and a
// bounded word stack that doubles as byte addressable memory for loads and
// stores.
//
// A faulting instruction never mutates machine state: operands are resolved
// and addresses checked before anything is written.
//
// The assembler provides a small assembly language for the instruction set,
// supporting macros, labels, equates, and compile-time expression evaluation.
package vm
