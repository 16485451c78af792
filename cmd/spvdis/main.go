// Command spvdis disassembles SPIR-V binaries into assembly text that
// spvparse -asm accepts.
//
// Usage:
//
//	spvdis [options] <input.spv>
//
// Examples:
//
//	spvdis shader.spv                  # Numeric ids
//	spvdis -names shader.spv           # Ids named after OpName
//	spvdis -o shader.spvasm shader.spv # Write to file
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/gogpu/spvfront/spirv"
	"github.com/gogpu/spvfront/spirv/spvasm"
)

var (
	output  = flag.String("o", "", "output file (default: stdout)")
	names   = flag.Bool("names", false, "print ids with their OpName")
	verbose = flag.Int("v", 0, "log verbosity")
)

var (
	commentColor = color.New(color.FgHiBlack)
	opcodeColor  = color.New(color.FgCyan)
	resultColor  = color.New(color.FgYellow)
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

	data, err := os.ReadFile(args[0])
	if err != nil {
		color.Red("Error reading file: %v", err)
		os.Exit(1)
	}
	words, err := spirv.BytesToWords(data)
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
	text, err := spvasm.Disassemble(words, spvasm.DisassembleOptions{Names: *names})
	if err != nil {
		color.Red("Disassembly error: %v", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(text), 0o644); err != nil {
			color.Red("Error writing output: %v", err)
			os.Exit(1)
		}
		color.Green("Disassembled %s to %s", args[0], *output)
		return
	}

	w := bufio.NewWriter(os.Stdout)
	for _, line := range strings.SplitAfter(text, "\n") {
		highlight(w, line)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

// highlight writes one line of assembly. Colors are dropped when stdout is
// not a terminal.
func highlight(w *bufio.Writer, line string) {
	if strings.HasPrefix(line, ";") {
		commentColor.Fprint(w, line)
		return
	}
	if result, rest, ok := strings.Cut(line, " = "); ok {
		resultColor.Fprint(w, result)
		fmt.Fprint(w, " = ")
		line = rest
	}
	opcode, rest, _ := strings.Cut(line, " ")
	if strings.HasSuffix(opcode, "\n") {
		opcodeColor.Fprint(w, strings.TrimSuffix(opcode, "\n"))
		fmt.Fprint(w, "\n")
		return
	}
	opcodeColor.Fprint(w, opcode)
	if rest != "" {
		fmt.Fprint(w, " ", rest)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: spvdis [options] <input.spv>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  spvdis shader.spv                  Disassemble to stdout\n")
	fmt.Fprintf(os.Stderr, "  spvdis -names shader.spv           Use OpName for ids\n")
	fmt.Fprintf(os.Stderr, "  spvdis -o shader.spvasm shader.spv Write to file\n")
}
