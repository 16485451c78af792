// Package ir defines the intermediate representation produced by the
// SPIR-V frontend.
//
// # Structure
//
// A Module owns flat arenas, and every cross reference is a typed handle
// (an index) into one of them:
//   - Types: deduplicated through TypeRegistry
//   - Constants and Overrides: named values whose initializers live in
//     GlobalExpressions
//   - GlobalVariables: module-scope storage and resources
//   - Functions: expression arena plus a structured statement tree
//   - EntryPoints: a stage, a name and the wrapper function to run
//
// Functions have no phi nodes and no goto. Control flow is structured
// (If, Loop, Switch) and values that cross scopes go through local
// variables.
//
// # Helpers
//
// ResolveExpressionType and ResolveFunctionTypes compute expression types,
// Layouter computes host-shareable layouts, UpgradeAtomics and
// PatchComparisonSampling rewrite global types after parsing, and Dump
// prints a deterministic listing.
package ir
