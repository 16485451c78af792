// Package spirv translates SPIR-V binary modules into the structured IR of
// package ir.
//
// SPIR-V is the standard intermediate language for GPU shaders, used by
// Vulkan, OpenCL, and other APIs. Its functions are flat lists of basic
// blocks joined by branches; the IR expects structured statements. The
// frontend rebuilds if, loop and switch statements from the merge
// annotations that structured SPIR-V carries.
//
// # Parsing
//
//	result, err := spirv.Parse(data, spirv.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, w := range result.Warnings {
//		log.Println(w.Message)
//	}
//	module := result.Module
//
// Parsing runs in one pass over the instruction stream followed by a few
// finishing passes:
//   - Declarations (capabilities, types, constants, globals) populate the
//     id lookup tables.
//   - Each function is decoded block by block. Block code becomes
//     straight-line statements; terminators and merge instructions build a
//     tree of bodies that is flattened into nested statements.
//   - Phi instructions become function-local variables stored at the end
//     of each predecessor.
//   - Calls are patched once every function is known, and functions are
//     ordered so that callees precede callers.
//   - Types reached by atomic instructions are rewritten to atomic types.
//
// Errors are reported as *Error values carrying an ErrorKind and the word
// offset of the failing instruction.
//
// # Binary Writer
//
// ModuleBuilder constructs modules programmatically:
//
//	builder := spirv.NewModuleBuilder(spirv.Version1_3)
//	builder.AddCapability(spirv.CapabilityShader)
//	builder.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
//	floatType := builder.AddTypeFloat(32)
//	vec4Type := builder.AddTypeVector(floatType, 4)
//	words := builder.Words()
//
// Instructions are kept per section and written in the logical layout
// order, so declarations may be added after function code.
//
// # References
//
// SPIR-V Specification: https://registry.khronos.org/SPIR-V/specs/unified1/SPIRV.html
package spirv
