// Command spvparse parses a SPIR-V module into the IR and prints a dump
// of the result.
//
// Usage:
//
//	spvparse [options] <input>
//
// Inputs ending in .spvasm, or any input with -asm, are read as assembly
// text. Everything else is read as a binary module.
//
// Examples:
//
//	spvparse shader.spv                # Parse and dump
//	spvparse -strict=false shader.spv  # Tolerate unsupported capabilities
//	spvparse -dump-prefix ctx shader.spv
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/gogpu/spvfront"
	"github.com/gogpu/spvfront/ir"
	"github.com/gogpu/spvfront/spirv"
	"github.com/gogpu/spvfront/spirv/spvasm"
)

var (
	strict       = flag.Bool("strict", true, "reject unsupported capabilities instead of warning")
	adjustCoords = flag.Bool("adjust-coords", true, "flip the Y axis of vertex positions")
	dumpPrefix   = flag.String("dump-prefix", "", "write each function's block context to <prefix>-<id>.txt")
	verbose      = flag.Int("v", 0, "log verbosity")
	asm          = flag.Bool("asm", false, "read the input as assembly text")
	quiet        = flag.Bool("q", false, "do not print the module dump")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	commonlog.Configure(*verbose, nil)

	args := flag.Args()
	if len(args) < 1 {
		color.Red("Error: no input file specified")
		usage()
		os.Exit(1)
	}
	inputPath := args[0]

	words, err := readInput(inputPath, *asm || filepath.Ext(inputPath) == ".spvasm")
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}

	opts := spvfront.Options{
		AdjustCoordinateSpace: *adjustCoords,
		StrictCapabilities:    *strict,
		BlockCtxDumpPrefix:    *dumpPrefix,
	}
	result, err := spvfront.ParseWords(words, opts)
	if err != nil {
		if kind, ok := spirv.KindOf(err); ok {
			color.Red("Parse error (%v): %v", kind, err)
		} else {
			color.Red("Parse error: %v", err)
		}
		os.Exit(1)
	}

	for _, w := range result.Warnings {
		color.Yellow("warning: %s", w.Message)
	}
	if !*quiet {
		out := bufio.NewWriter(os.Stdout)
		if err := ir.Dump(out, result.Module); err != nil {
			color.Red("Error writing dump: %v", err)
			os.Exit(1)
		}
		if err := out.Flush(); err != nil {
			color.Red("Error writing dump: %v", err)
			os.Exit(1)
		}
	}

	m := result.Module
	color.Green("Parsed %s: %d functions, %d entry points, %d globals, %d warnings",
		inputPath, len(m.Functions), len(m.EntryPoints), len(m.GlobalVariables), len(result.Warnings))
}

func readInput(path string, text bool) ([]uint32, error) {
	if text {
		return spvasm.AssembleFile(path, spvasm.DefaultOptions())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return spirv.BytesToWords(data)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: spvparse [options] <input.spv|input.spvasm>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  spvparse shader.spv               Parse and dump the IR\n")
	fmt.Fprintf(os.Stderr, "  spvparse -asm shader.txt          Parse assembly text\n")
	fmt.Fprintf(os.Stderr, "  spvparse -strict=false shader.spv Warn on unsupported capabilities\n")
}
