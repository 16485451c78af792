// Package spvfront provides a Pure Go SPIR-V frontend.
//
// spvfront reads SPIR-V binary modules, as produced by glslang, DXC or
// any other shader compiler, and converts them into the structured IR of
// package ir: typed expression arenas, nested statements and entry points
// with explicit arguments and results.
//
// The package provides a simple, high-level API as well as lower-level
// access to the spirv package.
//
// Example usage:
//
//	data, _ := os.ReadFile("shader.spv")
//	result, err := spvfront.Parse(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range result.Warnings {
//	    log.Println(w.Message)
//	}
//	ir.Dump(os.Stdout, result.Module)
//
// SPIR-V assembly text can be turned into a binary with package
// spirv/spvasm, which is handy for tests.
package spvfront

import (
	"os"

	"tlog.app/go/errors"

	"github.com/gogpu/spvfront/ir"
	"github.com/gogpu/spvfront/spirv"
)

// Options configures parsing. See spirv.Options.
type Options = spirv.Options

// Result is a parsed module and its warnings.
type Result = spirv.Result

// DefaultOptions returns the default options: the Y axis of vertex
// positions is flipped and unsupported capabilities are errors.
func DefaultOptions() Options {
	return spirv.DefaultOptions()
}

// Parse parses a little-endian SPIR-V binary using default options.
func Parse(data []byte) (*Result, error) {
	return ParseWithOptions(data, DefaultOptions())
}

// ParseWithOptions parses a little-endian SPIR-V binary.
func ParseWithOptions(data []byte, opts Options) (*Result, error) {
	return spirv.Parse(data, opts)
}

// ParseWords parses a SPIR-V module already split into words.
func ParseWords(words []uint32, opts Options) (*Result, error) {
	return spirv.ParseWords(words, opts)
}

// ParseFile reads and parses the SPIR-V binary at path.
func ParseFile(path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read %v", path)
	}
	return ParseWithOptions(data, opts)
}

// Module parses data with default options and returns only the module,
// dropping warnings.
func Module(data []byte) (*ir.Module, error) {
	result, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return result.Module, nil
}
