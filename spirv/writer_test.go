package spirv

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeAll decodes every instruction of words, returning opcodes and
// operands.
func decodeAll(t *testing.T, words []uint32) (Header, []OpCode, [][]uint32) {
	t.Helper()
	d := NewDecoder(words)
	h, err := d.Header()
	require.NoError(t, err)
	var (
		ops      []OpCode
		operands [][]uint32
	)
	for !d.Done() {
		inst, err := d.NextInstruction()
		require.NoError(t, err)
		rest, err := d.Operands(inst)
		require.NoError(t, err)
		require.NoError(t, d.Finish(inst))
		ops = append(ops, inst.Op)
		operands = append(operands, rest)
	}
	return h, ops, operands
}

func TestModuleBuilderMinimalModule(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)
	builder.AddCapability(CapabilityShader)
	builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	data := builder.Build()
	require.Len(t, data, (HeaderWords+2+3)*4)
	assert.Equal(t, uint32(MagicNumber), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint32(1<<16|3<<8), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, uint32(GeneratorID), binary.LittleEndian.Uint32(data[8:12]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[12:16]), "bound with no ids")
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[16:20]), "schema")
}

func TestModuleBuilderSectionOrder(t *testing.T) {
	builder := NewModuleBuilder(Version1_0)

	// Function code first, declarations afterwards: the output must still
	// follow the logical layout.
	voidType := builder.AddTypeVoid()
	fnType := builder.AddTypeFunction(voidType)
	fn := builder.AddFunction(fnType, voidType, FunctionControlNone)
	builder.AddLabel()
	builder.AddReturn()
	builder.AddFunctionEnd()
	builder.AddName(fn, "main")
	builder.AddEntryPoint(ExecutionModelGLCompute, fn, "main")
	builder.AddExecutionMode(fn, ExecutionModeLocalSize, 1, 1, 1)
	builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)
	builder.AddCapability(CapabilityShader)

	h, ops, operands := decodeAll(t, builder.Words())
	assert.Equal(t, Version1_0, h.Version)
	assert.Equal(t, builder.Bound(), h.Bound)
	assert.Equal(t, []OpCode{
		OpCapability, OpMemoryModel, OpEntryPoint, OpExecutionMode, OpName,
		OpTypeVoid, OpTypeFunction, OpFunction, OpLabel, OpReturn, OpFunctionEnd,
	}, ops)
	assert.Equal(t, []uint32{uint32(ExecutionModelGLCompute), fn, 0x6e69616d, 0}, operands[2])
	assert.Equal(t, []uint32{voidType, fn, uint32(FunctionControlNone), fnType}, operands[7])
}

func TestModuleBuilderIDAllocation(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)
	id1 := builder.AllocID()
	id2 := builder.AllocID()
	id3 := builder.AllocID()
	assert.NotZero(t, id1)
	assert.Less(t, id1, id2)
	assert.Less(t, id2, id3)
	assert.Equal(t, id3+1, builder.Bound())
}

func TestModuleBuilderConstants(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)
	f32 := builder.AddTypeFloat(32)
	f64 := builder.AddTypeFloat(64)
	builder.AddConstantFloat32(f32, 1.0)
	builder.AddConstantFloat64(f64, 1.0)

	_, ops, operands := decodeAll(t, builder.Words())
	require.Equal(t, []OpCode{OpTypeFloat, OpTypeFloat, OpConstant, OpConstant}, ops)
	assert.Equal(t, []uint32{f32, 3, 0x3f800000}, operands[2])
	assert.Equal(t, []uint32{f64, 4, 0, 0x3ff00000}, operands[3])
}

func TestModuleBuilderControlFlow(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)
	i32 := builder.AddTypeInt(32, true)
	merge := builder.AllocLabel()
	caseA := builder.AllocLabel()
	sel := builder.AddConstant(i32, 0)
	builder.AddSelectionMerge(merge, SelectionControlNone)
	builder.AddSwitch(sel, merge, SwitchTarget{Literal: 1, Label: caseA})
	builder.PlaceLabel(caseA)
	builder.AddBranch(merge)
	builder.PlaceLabel(merge)
	phi := builder.AddPhi(i32, PhiSource{Value: sel, Parent: caseA})

	_, ops, operands := decodeAll(t, builder.Words())
	require.Equal(t, []OpCode{OpTypeInt, OpConstant, OpSelectionMerge, OpSwitch, OpLabel, OpBranch, OpLabel, OpPhi}, ops)
	assert.Equal(t, []uint32{sel, merge, 1, caseA}, operands[3])
	assert.Equal(t, []uint32{i32, phi, sel, caseA}, operands[7])
}

func TestInstructionBuilderString(t *testing.T) {
	tests := []struct {
		text  string
		words int
	}{
		{text: "", words: 1},
		{text: "abc", words: 1},
		{text: "main", words: 2},
		{text: "GLSL.std.450", words: 4},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			builder := NewInstructionBuilder()
			builder.AddString(tt.text)
			encoded := builder.Build(OpName).Encode()
			assert.Equal(t, OpName, OpCode(encoded[0]&0xffff))
			assert.Equal(t, uint32(tt.words+1), encoded[0]>>16)

			s, used, err := DecodeString(encoded[1:])
			require.NoError(t, err)
			assert.Equal(t, tt.text, s)
			assert.Equal(t, tt.words, used)
		})
	}
}
