package spvasm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvfront/spirv"
)

const roundTripSource = `
OpCapability Shader
OpMemoryModel Logical GLSL450
%glsl = OpExtInstImport "GLSL.std.450"
OpEntryPoint Vertex %main "main" %pos
OpName %main "main"
OpDecorate %pos BuiltIn Position
%void = OpTypeVoid
%fnty = OpTypeFunction %void
%int = OpTypeInt 32 1
%float = OpTypeFloat 32
%double = OpTypeFloat 64
%v4 = OpTypeVector %float 4
%ptr = OpTypePointer Output %v4
%pos = OpVariable %ptr Output
%neg = OpConstant %int -3
%half = OpConstant %float 0.5
%big = OpConstant %double 1.25
%nan = OpConstant %float 0x7fc00000
%vec = OpConstantComposite %v4 %half %half %half %half
%main = OpFunction %void None %fnty
%entry = OpLabel
%abs = OpExtInst %float %glsl FAbs %half
OpSelectionMerge %merge None
OpSwitch %neg %merge 1 %merge -1 %merge
%merge = OpLabel
OpStore %pos %vec
OpReturn
OpFunctionEnd
`

func TestDisassembleRoundTrip(t *testing.T) {
	words := assemble(t, roundTripSource)
	text, err := Disassemble(words, DisassembleOptions{})
	require.NoError(t, err)

	again, err := Assemble("roundtrip", text, DefaultOptions())
	require.NoError(t, err, text)
	assert.Equal(t, words, again, text)
}

func TestDisassembleText(t *testing.T) {
	words := assemble(t, roundTripSource)
	text, err := Disassemble(words, DisassembleOptions{})
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "; SPIR-V", lines[0])
	assert.Equal(t, "; Version: 1.0", lines[1])

	for _, want := range []string{
		"OpCapability Shader",
		"OpMemoryModel Logical GLSL450",
		`OpExtInstImport "GLSL.std.450"`,
		"BuiltIn Position",
		"OpConstant %6 -3",
		"0.5",
		"1.25",
		"0x7fc00000",
		"FAbs",
		"OpSelectionMerge",
		"OpSwitch",
		"4294967295",
	} {
		assert.Contains(t, text, want)
	}
}

func TestDisassembleNames(t *testing.T) {
	words := assemble(t, roundTripSource)
	text, err := Disassemble(words, DisassembleOptions{Names: true})
	require.NoError(t, err)
	assert.Contains(t, text, "%main = OpFunction")
	assert.Contains(t, text, `OpEntryPoint Vertex %main "main"`)

	// Renamed ids get new numbers, the instruction stream keeps its shape.
	again, err := Assemble("names", text, DefaultOptions())
	require.NoError(t, err, text)
	assert.Len(t, again, len(words))
}

func TestDisassembleErrors(t *testing.T) {
	tests := []struct {
		name  string
		words []uint32
	}{
		{name: "empty", words: nil},
		{name: "bad magic", words: []uint32{1, 0x10000, 0, 1, 0}},
		{name: "truncated", words: []uint32{spirv.MagicNumber, 0x10000, 0, 1, 0, 3<<16 | uint32(spirv.OpTypeInt)}},
		{name: "unknown opcode", words: []uint32{spirv.MagicNumber, 0x10000, 0, 1, 0, 1<<16 | 0xfff0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Disassemble(tt.words, DisassembleOptions{})
			assert.Error(t, err)
		})
	}
}
