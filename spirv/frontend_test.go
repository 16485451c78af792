package spirv_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvfront/ir"
	"github.com/gogpu/spvfront/spirv"
	"github.com/gogpu/spvfront/spirv/spvasm"
)

const preamble = `
OpCapability Shader
OpMemoryModel Logical GLSL450
`

// common declares the types and constants most tests share.
const common = `
%void = OpTypeVoid
%fnty = OpTypeFunction %void
%bool = OpTypeBool
%int = OpTypeInt 32 1
%uint = OpTypeInt 32 0
%float = OpTypeFloat 32
%true = OpConstantTrue %bool
%c0 = OpConstant %int 0
%c1 = OpConstant %int 1
%c2 = OpConstant %int 2
`

func assemble(t *testing.T, source string) []uint32 {
	t.Helper()
	words, err := spvasm.Assemble(t.Name(), source, spvasm.DefaultOptions())
	require.NoError(t, err)
	return words
}

func parse(t *testing.T, source string, opts spirv.Options) *spirv.Result {
	t.Helper()
	result, err := spirv.ParseWords(assemble(t, source), opts)
	require.NoError(t, err)
	require.NotNil(t, result.Module)
	return result
}

func parseErr(t *testing.T, source string, opts spirv.Options) error {
	t.Helper()
	result, err := spirv.ParseWords(assemble(t, source), opts)
	require.Error(t, err)
	assert.Nil(t, result, "no partial module on error")
	return err
}

// statements flattens block depth-first, including nested bodies.
func statements(block ir.Block) []ir.StatementKind {
	var out []ir.StatementKind
	for _, st := range block {
		out = append(out, st.Kind)
		switch s := st.Kind.(type) {
		case ir.StmtBlock:
			out = append(out, statements(s.Block)...)
		case ir.StmtIf:
			out = append(out, statements(s.Accept)...)
			out = append(out, statements(s.Reject)...)
		case ir.StmtLoop:
			out = append(out, statements(s.Body)...)
			out = append(out, statements(s.Continuing)...)
		case ir.StmtSwitch:
			for _, c := range s.Cases {
				out = append(out, statements(c.Body)...)
			}
		}
	}
	return out
}

func find[T ir.StatementKind](t *testing.T, block ir.Block) T {
	t.Helper()
	for _, kind := range statements(block) {
		if s, ok := kind.(T); ok {
			return s
		}
	}
	var zero T
	t.Fatalf("no %T statement", zero)
	return zero
}

func binaries(fn *ir.Function) []ir.ExpressionHandle {
	var out []ir.ExpressionHandle
	for i, e := range fn.Expressions {
		if _, ok := e.Kind.(ir.ExprBinary); ok {
			out = append(out, ir.ExpressionHandle(i))
		}
	}
	return out
}

func TestParseMinimalModule(t *testing.T) {
	words := assemble(t, "OpMemoryModel Logical GLSL450")
	result, err := spirv.Parse(spirv.WordsToBytes(words), spirv.DefaultOptions())
	require.NoError(t, err)

	m := result.Module
	assert.Empty(t, m.Types)
	assert.Empty(t, m.Constants)
	assert.Empty(t, m.GlobalVariables)
	assert.Empty(t, m.Functions)
	assert.Empty(t, m.EntryPoints)
	assert.Empty(t, result.Warnings)
}

func TestParseHeaderErrors(t *testing.T) {
	valid := assemble(t, "OpMemoryModel Logical GLSL450")
	badMagic := append([]uint32(nil), valid...)
	badMagic[0] = 0xdeadbeef

	tests := []struct {
		name string
		data []byte
		kind spirv.ErrorKind
	}{
		{name: "empty", data: nil, kind: spirv.ErrIncompleteData},
		{name: "partial word", data: []byte{0x03, 0x02, 0x23}, kind: spirv.ErrIncompleteData},
		{name: "short header", data: spirv.WordsToBytes(valid[:3]), kind: spirv.ErrIncompleteData},
		{name: "bad magic", data: spirv.WordsToBytes(badMagic), kind: spirv.ErrInvalidHeader},
		{name: "truncated instruction", data: spirv.WordsToBytes(valid[:len(valid)-1]), kind: spirv.ErrIncompleteData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := spirv.Parse(tt.data, spirv.DefaultOptions())
			require.Error(t, err)
			assert.Nil(t, result)
			kind, ok := spirv.KindOf(err)
			require.True(t, ok, "error %v carries no kind", err)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestParseInstructionStreamErrors(t *testing.T) {
	valid := assemble(t, preamble)
	valid[3] = 2 // room for id 1

	tests := []struct {
		name  string
		words []uint32
		kind  spirv.ErrorKind
	}{
		{name: "zero word count", words: []uint32{uint32(spirv.OpNop)}, kind: spirv.ErrInvalidWordCount},
		{name: "unknown opcode", words: []uint32{1<<16 | 0xfff0}, kind: spirv.ErrUnknownInstruction},
		{name: "name not utf-8", words: []uint32{3<<16 | uint32(spirv.OpName), 1, 0x0000feff}, kind: spirv.ErrBadString},
		{name: "name not terminated", words: []uint32{3<<16 | uint32(spirv.OpName), 1, 0x64636261}, kind: spirv.ErrBadString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := append(append([]uint32(nil), valid...), tt.words...)
			result, err := spirv.ParseWords(words, spirv.DefaultOptions())
			require.Error(t, err)
			assert.Nil(t, result)
			kind, ok := spirv.KindOf(err)
			require.True(t, ok, "error %v carries no kind", err)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestParseSectionOrder(t *testing.T) {
	err := parseErr(t, `
OpMemoryModel Logical GLSL450
OpCapability Shader
`, spirv.DefaultOptions())
	assert.True(t, spirv.IsKind(err, spirv.ErrUnsupportedInstruction), "got %v", err)
}

func TestParseCapabilities(t *testing.T) {
	tests := []struct {
		name       string
		capability string
		strict     bool
		kind       spirv.ErrorKind
		warning    string
	}{
		{name: "supported", capability: "Float64", strict: true},
		{name: "unsupported strict", capability: "Geometry", strict: true, kind: spirv.ErrUnsupportedCapability},
		{name: "unsupported lenient", capability: "Geometry", warning: "unsupported capability Geometry"},
		{name: "unknown strict", capability: "9999", strict: true, kind: spirv.ErrUnknownCapability},
		{name: "unknown lenient", capability: "9999", kind: spirv.ErrUnknownCapability},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := "OpCapability " + tt.capability + "\nOpMemoryModel Logical GLSL450\n"
			opts := spirv.DefaultOptions()
			opts.StrictCapabilities = tt.strict

			if tt.kind != 0 {
				err := parseErr(t, source, opts)
				assert.True(t, spirv.IsKind(err, tt.kind), "got %v", err)
				return
			}
			result := parse(t, source, opts)
			if tt.warning == "" {
				assert.Empty(t, result.Warnings)
				return
			}
			require.Len(t, result.Warnings, 1)
			assert.Equal(t, tt.warning, result.Warnings[0].Message)
		})
	}
}

func TestParseExtensions(t *testing.T) {
	source := `
OpCapability Shader
OpExtension "SPV_KHR_storage_buffer_storage_class"
OpExtension "SPV_EXT_made_up"
OpMemoryModel Logical GLSL450
`
	err := parseErr(t, source, spirv.DefaultOptions())
	assert.True(t, spirv.IsKind(err, spirv.ErrUnsupportedExtension), "got %v", err)

	result := parse(t, source, spirv.Options{})
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Message, "SPV_EXT_made_up")
}

func TestParseExtInstImport(t *testing.T) {
	err := parseErr(t, `
OpCapability Shader
%ext = OpExtInstImport "OpenCL.std"
OpMemoryModel Logical GLSL450
`, spirv.DefaultOptions())
	assert.True(t, spirv.IsKind(err, spirv.ErrUnsupportedExtSet), "got %v", err)
}

func TestParseConstantsAndOverrides(t *testing.T) {
	result := parse(t, preamble+`
OpName %limit "limit"
OpName %scale "scale"
OpDecorate %scale SpecId 7
%int = OpTypeInt 32 1
%float = OpTypeFloat 32
%limit = OpConstant %int -3
%scale = OpSpecConstant %float 2.5
`, spirv.DefaultOptions())

	m := result.Module
	require.Len(t, m.Constants, 1)
	assert.Equal(t, "limit", m.Constants[0].Name)
	assert.Equal(t, ir.Literal{Value: ir.LiteralI32(-3)}, m.GlobalExpressions[m.Constants[0].Init].Kind)

	require.Len(t, m.Overrides, 1)
	o := m.Overrides[0]
	assert.Equal(t, "scale", o.Name)
	require.NotNil(t, o.ID)
	assert.Equal(t, uint16(7), *o.ID)
	require.NotNil(t, o.Init)
	assert.Equal(t, ir.Literal{Value: ir.LiteralF32(2.5)}, m.GlobalExpressions[*o.Init].Kind)
	assert.Empty(t, result.Warnings)
}

func TestParseSpecIDTooHigh(t *testing.T) {
	err := parseErr(t, preamble+`
OpDecorate %scale SpecId 70000
%float = OpTypeFloat 32
%scale = OpSpecConstant %float 2.5
`, spirv.DefaultOptions())
	assert.True(t, spirv.IsKind(err, spirv.ErrSpecIDTooHigh), "got %v", err)
}

func TestParseStructLayout(t *testing.T) {
	result := parse(t, preamble+`
OpName %Light "Light"
OpMemberName %Light 0 "color"
OpMemberName %Light 1 "intensity"
%float = OpTypeFloat 32
%v3 = OpTypeVector %float 3
%Light = OpTypeStruct %v3 %float
`, spirv.DefaultOptions())

	m := result.Module
	var light ir.StructType
	for _, ty := range m.Types {
		if ty.Name == "Light" {
			light = ty.Inner.(ir.StructType)
		}
	}
	require.Len(t, light.Members, 2)
	assert.Equal(t, "color", light.Members[0].Name)
	assert.Equal(t, uint32(0), light.Members[0].Offset)
	assert.Equal(t, "intensity", light.Members[1].Name)
	assert.Equal(t, uint32(12), light.Members[1].Offset)
	assert.Equal(t, uint32(16), light.Span)
	assert.Empty(t, result.Warnings)
}

func TestParseIfElse(t *testing.T) {
	result := parse(t, preamble+common+`
%main = OpFunction %void None %fnty
%entry = OpLabel
OpSelectionMerge %merge None
OpBranchConditional %true %then %else
%then = OpLabel
%a = OpIAdd %int %c1 %c2
OpBranch %merge
%else = OpLabel
%b = OpISub %int %c1 %c2
OpBranch %merge
%merge = OpLabel
OpReturn
OpFunctionEnd
`, spirv.DefaultOptions())

	fn := &result.Module.Functions[0]
	stmt := find[ir.StmtIf](t, fn.Body)
	assert.Equal(t, ir.ExprConstant{Constant: 0}, fn.Expressions[stmt.Condition].Kind)
	require.Len(t, stmt.Accept, 1)
	require.Len(t, stmt.Reject, 1)
	assert.IsType(t, ir.StmtEmit{}, stmt.Accept[0].Kind)
	assert.IsType(t, ir.StmtEmit{}, stmt.Reject[0].Kind)
	assert.IsType(t, ir.StmtReturn{}, fn.Body[len(fn.Body)-1].Kind)
	assert.Empty(t, fn.LocalVars)
}

func TestParseLoopSpillsOnce(t *testing.T) {
	result := parse(t, preamble+common+`
%main = OpFunction %void None %fnty
%entry = OpLabel
OpBranch %header
%header = OpLabel
OpLoopMerge %merge %cont None
OpBranch %body
%body = OpLabel
%x = OpIAdd %int %c1 %c1
%y = OpIAdd %int %x %c1
OpBranch %cont
%cont = OpLabel
OpBranchConditional %true %merge %header
%merge = OpLabel
%z = OpIAdd %int %x %c2
%w = OpIMul %int %x %z
OpReturn
OpFunctionEnd
`, spirv.DefaultOptions())

	fn := &result.Module.Functions[0]
	require.Len(t, fn.LocalVars, 1, "one spill for %%x")

	bins := binaries(fn)
	require.Len(t, bins, 4)
	x, y, z, w := bins[0], bins[1], bins[2], bins[3]

	// Inside the loop %x is used directly.
	assert.Equal(t, x, fn.Expressions[y].Kind.(ir.ExprBinary).Left)

	// After the loop both uses load the same spill local.
	for _, h := range []ir.ExpressionHandle{z, w} {
		left := fn.Expressions[h].Kind.(ir.ExprBinary).Left
		load, ok := fn.Expressions[left].Kind.(ir.ExprLoad)
		require.True(t, ok, "expression %d is %T", left, fn.Expressions[left].Kind)
		assert.Equal(t, ir.ExprLocalVariable{Variable: 0}, fn.Expressions[load.Pointer].Kind)
	}

	loop := find[ir.StmtLoop](t, fn.Body)
	require.NotNil(t, loop.BreakIf)
	assert.IsType(t, ir.StmtContinue{}, loop.Body[len(loop.Body)-1].Kind)

	var spillStores int
	for _, kind := range statements(loop.Body) {
		if s, ok := kind.(ir.StmtStore); ok {
			assert.Equal(t, ir.ExprLocalVariable{Variable: 0}, fn.Expressions[s.Pointer].Kind)
			assert.Equal(t, x, s.Value)
			spillStores++
		}
	}
	assert.Equal(t, 1, spillStores)
}

func TestParsePhi(t *testing.T) {
	result := parse(t, preamble+common+`
%main = OpFunction %void None %fnty
%entry = OpLabel
OpSelectionMerge %merge None
OpBranchConditional %true %then %merge
%then = OpLabel
%a = OpIAdd %int %c1 %c2
OpBranch %merge
%merge = OpLabel
%p = OpPhi %int %a %then %c0 %entry
%q = OpIAdd %int %p %c1
OpReturn
OpFunctionEnd
`, spirv.DefaultOptions())

	fn := &result.Module.Functions[0]
	require.Len(t, fn.LocalVars, 1)
	assert.True(t, strings.HasPrefix(fn.LocalVars[0].Name, "phi_"), "name %q", fn.LocalVars[0].Name)

	var stores []ir.StmtStore
	for _, kind := range statements(fn.Body) {
		if s, ok := kind.(ir.StmtStore); ok {
			stores = append(stores, s)
		}
	}
	require.Len(t, stores, 2, "one store per predecessor")
	for _, s := range stores {
		assert.Equal(t, ir.ExprLocalVariable{Variable: 0}, fn.Expressions[s.Pointer].Kind)
	}
}

func TestParseSwitchGrouping(t *testing.T) {
	result := parse(t, preamble+common+`
%main = OpFunction %void None %fnty
%entry = OpLabel
OpSelectionMerge %merge None
OpSwitch %c1 %default 1 %A 2 %A 3 %B
%A = OpLabel
%a = OpIAdd %int %c1 %c2
OpBranch %merge
%B = OpLabel
%b = OpISub %int %c1 %c2
OpBranch %merge
%default = OpLabel
OpBranch %merge
%merge = OpLabel
OpReturn
OpFunctionEnd
`, spirv.DefaultOptions())

	fn := &result.Module.Functions[0]
	sw := find[ir.StmtSwitch](t, fn.Body)
	require.Len(t, sw.Cases, 4)

	values := make([]ir.SwitchValue, len(sw.Cases))
	for i, c := range sw.Cases {
		values[i] = c.Value
	}
	assert.Equal(t, []ir.SwitchValue{
		ir.SwitchValueI32(1), ir.SwitchValueI32(2), ir.SwitchValueI32(3), ir.SwitchValueDefault{},
	}, values)

	// 1 and 2 share A: 1 falls through into the body of 2.
	assert.Empty(t, sw.Cases[0].Body)
	assert.True(t, sw.Cases[0].FallThrough)
	for _, c := range sw.Cases[1:] {
		require.NotEmpty(t, c.Body)
		assert.IsType(t, ir.StmtBreak{}, c.Body[len(c.Body)-1].Kind)
		assert.False(t, c.FallThrough)
	}
	require.Len(t, sw.Cases[1].Body, 2)
	require.Len(t, sw.Cases[2].Body, 2)
	assert.Len(t, sw.Cases[3].Body, 1)
}

func TestParseCallOrder(t *testing.T) {
	result := parse(t, preamble+`
OpName %caller "caller"
OpName %callee "callee"
`+common+`
%caller = OpFunction %void None %fnty
%l1 = OpLabel
%r = OpFunctionCall %void %callee
OpReturn
OpFunctionEnd
%callee = OpFunction %void None %fnty
%l2 = OpLabel
OpReturn
OpFunctionEnd
`, spirv.DefaultOptions())

	fns := result.Module.Functions
	require.Len(t, fns, 2)
	assert.Equal(t, "callee", fns[0].Name)
	assert.Equal(t, "caller", fns[1].Name)
	call := find[ir.StmtCall](t, fns[1].Body)
	assert.Equal(t, ir.FunctionHandle(0), call.Function)
}

func TestParseCallCycle(t *testing.T) {
	err := parseErr(t, preamble+common+`
%a = OpFunction %void None %fnty
%la = OpLabel
%ra = OpFunctionCall %void %b
OpReturn
OpFunctionEnd
%b = OpFunction %void None %fnty
%lb = OpLabel
%rb = OpFunctionCall %void %a
OpReturn
OpFunctionEnd
`, spirv.DefaultOptions())
	assert.True(t, spirv.IsKind(err, spirv.ErrFunctionCallCycle), "got %v", err)
}

const countersSource = preamble + `
OpName %Counter "Counter"
OpMemberName %Counter 0 "value"
OpMemberName %Counter 1 "label"
OpName %counters "counters"
%void = OpTypeVoid
%fnty = OpTypeFunction %void
%int = OpTypeInt 32 1
%uint = OpTypeInt 32 0
%c0 = OpConstant %int 0
%c2 = OpConstant %int 2
%four = OpConstant %uint 4
%scope = OpConstant %uint 2
%sem = OpConstant %uint 0
%one = OpConstant %uint 1
%Counter = OpTypeStruct %uint %uint
%arr = OpTypeArray %Counter %four
%ptr_arr = OpTypePointer Workgroup %arr
%ptr_uint = OpTypePointer Workgroup %uint
%counters = OpVariable %ptr_arr Workgroup
%main = OpFunction %void None %fnty
%entry = OpLabel
%ptr = OpAccessChain %ptr_uint %counters %c2 %c0
%old = OpAtomicIAdd %uint %ptr %scope %sem %one
OpReturn
OpFunctionEnd
`

func TestParseAtomicUpgrade(t *testing.T) {
	result := parse(t, countersSource, spirv.DefaultOptions())
	m := result.Module

	require.Len(t, m.GlobalVariables, 1)
	arr, ok := m.Types[m.GlobalVariables[0].Type].Inner.(ir.ArrayType)
	require.True(t, ok)
	counter := m.Types[arr.Base]
	assert.Equal(t, "Counter", counter.Name)
	st := counter.Inner.(ir.StructType)
	require.Len(t, st.Members, 2)

	u32 := ir.ScalarType{Kind: ir.ScalarUint, Width: 4}
	assert.Equal(t, ir.AtomicType{Scalar: u32}, m.Types[st.Members[0].Type].Inner, "value is atomic")
	assert.Equal(t, u32, m.Types[st.Members[1].Type].Inner, "label stays plain")

	atomic := find[ir.StmtAtomic](t, m.Functions[0].Body)
	assert.IsType(t, ir.AtomicAdd{}, atomic.Fun)
	require.NotNil(t, atomic.Result)
}

const vertexSource = preamble + `
OpEntryPoint Vertex %main "main" %pos
OpName %main "main"
OpName %pos "pos"
OpDecorate %pos BuiltIn Position
%void = OpTypeVoid
%fnty = OpTypeFunction %void
%float = OpTypeFloat 32
%v4 = OpTypeVector %float 4
%ptr_out = OpTypePointer Output %v4
%pos = OpVariable %ptr_out Output
%one = OpConstant %float 1.0
%corner = OpConstantComposite %v4 %one %one %one %one
%main = OpFunction %void None %fnty
%entry = OpLabel
OpStore %pos %corner
OpReturn
OpFunctionEnd
`

// returned finds the value a wrapper returns.
func returned(t *testing.T, fn *ir.Function) ir.ExpressionKind {
	t.Helper()
	require.NotEmpty(t, fn.Body)
	ret, ok := fn.Body[len(fn.Body)-1].Kind.(ir.StmtReturn)
	require.True(t, ok, "wrapper ends in %T", fn.Body[len(fn.Body)-1].Kind)
	require.NotNil(t, ret.Value)
	return fn.Expressions[*ret.Value].Kind
}

func TestParseVertexEntryPoint(t *testing.T) {
	tests := []struct {
		name    string
		adjust  bool
		flipped bool
	}{
		{name: "adjusted", adjust: true, flipped: true},
		{name: "as is", adjust: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := spirv.DefaultOptions()
			opts.AdjustCoordinateSpace = tt.adjust
			m := parse(t, vertexSource, opts).Module

			require.Len(t, m.EntryPoints, 1)
			ep := m.EntryPoints[0]
			assert.Equal(t, "main", ep.Name)
			assert.Equal(t, ir.StageVertex, ep.Stage)
			require.Len(t, m.Functions, 2)
			assert.Equal(t, ir.FunctionHandle(1), ep.Function, "wrappers follow the shader functions")

			wrap := &m.Functions[ep.Function]
			assert.Equal(t, "main_wrap", wrap.Name)
			require.NotNil(t, wrap.Result)
			require.NotNil(t, wrap.Result.Binding)
			assert.Equal(t, ir.BuiltinBinding{Builtin: ir.BuiltinPosition}, *wrap.Result.Binding)

			call := find[ir.StmtCall](t, wrap.Body)
			assert.Equal(t, ir.FunctionHandle(0), call.Function)

			value := returned(t, wrap)
			if !tt.flipped {
				assert.IsType(t, ir.ExprLoad{}, value)
				for i, e := range wrap.Expressions {
					_, negated := e.Kind.(ir.ExprUnary)
					assert.False(t, negated, "expression %d negates", i)
				}
				return
			}
			compose, ok := value.(ir.ExprCompose)
			require.True(t, ok, "returned %T", value)
			require.Len(t, compose.Components, 4)
			neg, ok := wrap.Expressions[compose.Components[1]].Kind.(ir.ExprUnary)
			require.True(t, ok)
			assert.Equal(t, ir.UnaryNegate, neg.Op)
			assert.Equal(t, uint32(1), wrap.Expressions[neg.Expr].Kind.(ir.ExprAccessIndex).Index)
		})
	}
}

const computeSource = preamble + `
OpEntryPoint GLCompute %main "main"
OpExecutionMode %main LocalSize 8 4 1
OpName %main "main"
` + common + `
%main = OpFunction %void None %fnty
%entry = OpLabel
OpSelectionMerge %merge None
OpSwitch %c1 %merge 1 %A 2 %A
%A = OpLabel
OpBranch %merge
%merge = OpLabel
OpReturn
OpFunctionEnd
`

func TestParseComputeEntryPoint(t *testing.T) {
	m := parse(t, computeSource, spirv.DefaultOptions()).Module
	require.Len(t, m.EntryPoints, 1)
	ep := m.EntryPoints[0]
	assert.Equal(t, ir.StageCompute, ep.Stage)
	assert.Equal(t, [3]uint32{8, 4, 1}, ep.Workgroup)

	wrap := &m.Functions[ep.Function]
	assert.Nil(t, wrap.Result)
	assert.Empty(t, wrap.Arguments)
}

func TestParseEntryPointErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   spirv.ErrorKind
	}{
		{
			name: "execution model",
			source: preamble + `
OpEntryPoint Geometry %main "main"
`,
			kind: spirv.ErrUnsupportedExecutionModel,
		},
		{
			name: "mode without entry point",
			source: preamble + `
OpExecutionMode %main LocalSize 1 1 1
`,
			kind: spirv.ErrInvalidID,
		},
		{
			name: "entry point without function",
			source: preamble + `
OpEntryPoint GLCompute %main "main"
`,
			kind: spirv.ErrInvalidID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErr(t, tt.source, spirv.Options{})
			assert.True(t, spirv.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestParseUnusedDecorations(t *testing.T) {
	result := parse(t, preamble+`
OpName %entry "start"
`+common+`
%main = OpFunction %void None %fnty
%entry = OpLabel
OpReturn
OpFunctionEnd
`, spirv.DefaultOptions())

	require.Len(t, result.Warnings, 1)
	assert.True(t, strings.HasPrefix(result.Warnings[0].Message, "unused decoration on %"), result.Warnings[0].Message)
	assert.Contains(t, result.Warnings[0].Message, "start")
}

func TestParseDeterministic(t *testing.T) {
	sources := map[string]string{
		"counters": countersSource,
		"compute":  computeSource,
		"vertex":   vertexSource,
	}
	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			words := assemble(t, source)
			first, err := spirv.ParseWords(words, spirv.DefaultOptions())
			require.NoError(t, err)
			second, err := spirv.ParseWords(words, spirv.DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func samplingSource(extra string) string {
	return preamble + `
OpEntryPoint Fragment %main "main"
OpExecutionMode %main OriginUpperLeft
OpName %tex "shadow_map"
OpName %samp "shadow_sampler"
OpDecorate %tex DescriptorSet 0
OpDecorate %tex Binding 0
OpDecorate %samp DescriptorSet 0
OpDecorate %samp Binding 1
` + common + `
%v2 = OpTypeVector %float 2
%v4 = OpTypeVector %float 4
%half = OpConstant %float 0.5
%uv = OpConstantComposite %v2 %half %half
%img = OpTypeImage %float 2D 0 0 0 1 Unknown
%simg = OpTypeSampledImage %img
%sampler = OpTypeSampler
%ptr_img = OpTypePointer UniformConstant %img
%ptr_sampler = OpTypePointer UniformConstant %sampler
%tex = OpVariable %ptr_img UniformConstant
%samp = OpVariable %ptr_sampler UniformConstant
%main = OpFunction %void None %fnty
%entry = OpLabel
%t = OpLoad %img %tex
%s = OpLoad %sampler %samp
%si = OpSampledImage %simg %t %s
%d = OpImageSampleDrefImplicitLod %float %si %uv %half
` + extra + `
OpReturn
OpFunctionEnd
`
}

func TestParseComparisonSampling(t *testing.T) {
	result := parse(t, samplingSource(""), spirv.DefaultOptions())
	m := result.Module

	require.Len(t, m.GlobalVariables, 2)
	tex, samp := m.GlobalVariables[0], m.GlobalVariables[1]
	assert.Equal(t, "shadow_map", tex.Name)
	assert.Equal(t, &ir.ResourceBinding{Group: 0, Binding: 1}, samp.Binding)

	img, ok := m.Types[tex.Type].Inner.(ir.ImageType)
	require.True(t, ok, "%T", m.Types[tex.Type].Inner)
	assert.Equal(t, ir.ImageClassDepth, img.Class)
	assert.Equal(t, ir.SamplerType{Comparison: true}, m.Types[samp.Type].Inner)

	sample := findExpr[ir.ExprImageSample](t, m.Functions[0])
	assert.NotNil(t, sample.DepthRef)
}

func TestParseInconsistentSampling(t *testing.T) {
	err := parseErr(t, samplingSource("%c = OpImageSampleImplicitLod %v4 %si %uv"), spirv.DefaultOptions())
	assert.True(t, spirv.IsKind(err, spirv.ErrInconsistentComparisonSampling), "%v", err)

	var cause *ir.InconsistentSamplingError
	require.True(t, errors.As(err, &cause), "cause is kept: %v", err)
	assert.Equal(t, "shadow_map", cause.Name)
	assert.Equal(t, ir.GlobalVariableHandle(0), cause.Global)
	assert.Contains(t, err.Error(), "shadow_map")
}

func TestErrorKindNames(t *testing.T) {
	tests := []struct {
		kind spirv.ErrorKind
		want string
	}{
		{kind: 0, want: "Unknown"},
		{kind: spirv.ErrInvalidHeader, want: "InvalidHeader"},
		{kind: spirv.ErrBadString, want: "BadString"},
		{kind: spirv.ErrSpecIDTooHigh, want: "SpecIdTooHigh"},
		{kind: spirv.ErrSpecIDTooHigh + 1, want: "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
	assert.NotZero(t, spirv.ErrInvalidHeader, "the zero kind means no kind")
}

func findExpr[T ir.ExpressionKind](t *testing.T, fn ir.Function) T {
	t.Helper()
	for _, e := range fn.Expressions {
		if k, ok := e.Kind.(T); ok {
			return k
		}
	}
	var zero T
	require.Failf(t, "expression not found", "%T", zero)
	return zero
}
