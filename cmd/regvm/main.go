// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/regvm/emulator"
	"github.com/ezrec/regvm/image"
	"github.com/ezrec/regvm/translate"
	"github.com/ezrec/regvm/vm"
)

func main() {
	var compile string
	var input string
	var output string
	var save bool
	var stack uint64
	var start uint64
	var verbose bool
	var status bool
	var lang string

	flag.StringVar(&compile, "c", "", ".s file to assemble")
	flag.StringVar(&input, "i", "", "Code image to load")
	flag.StringVar(&output, "o", "", "Code image to save")
	flag.BoolVar(&save, "s", false, "Save code image only, do not execute")
	flag.Uint64Var(&stack, "n", emulator.STACK_WORDS, "Stack capacity, in words")
	flag.Uint64Var(&start, "e", 0, "Code index of the first instruction")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&status, "d", false, "Dump machine status on exit")
	flag.StringVar(&lang, "l", "", "Locale for runtime messages")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(lang) != 0 {
		translate.SetLocale(lang)
	}

	if len(compile) != 0 && len(input) != 0 {
		log.Fatalf("%v: -c and -i are exclusive", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.StackWords = stack
	emu.Start = start

	// Assemble a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &vm.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		emu.Program, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	// Load a code image.
	if len(input) != 0 {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()

		code, err := image.Read(inf)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		emu.Program = vm.Disassemble(code)
	}

	if len(output) != 0 {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		err = image.Write(ouf, emu.Program.Binary())
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		err = ouf.Close()
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
	}

	if save {
		return
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	result, err := emu.Run()
	if status {
		fmt.Print(emu.Status())
	}
	if err != nil {
		log.Fatal(err)
	}

	if verbose {
		log.Printf("%v: %v after %d ticks", result.State, result.Halt, emu.Ticks())
	}
}
