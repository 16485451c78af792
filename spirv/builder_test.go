package spirv_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvfront/ir"
	"github.com/gogpu/spvfront/spirv"
)

// fixture is a ModuleBuilder preloaded with the capability, memory model
// and scalar types most modules need.
type fixture struct {
	*spirv.ModuleBuilder

	void, fnty        uint32
	boolean, i32, u32 uint32
	f32               uint32
}

func newFixture() *fixture {
	b := spirv.NewModuleBuilder(spirv.Version1_0)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
	f := &fixture{ModuleBuilder: b}
	f.void = b.AddTypeVoid()
	f.fnty = b.AddTypeFunction(f.void)
	f.boolean = b.AddTypeBool()
	f.i32 = b.AddTypeInt(32, true)
	f.u32 = b.AddTypeInt(32, false)
	f.f32 = b.AddTypeFloat(32)
	return f
}

// begin opens a void function and its entry block.
func (f *fixture) begin(name string) (fn, entry uint32) {
	fn = f.AddFunction(f.fnty, f.void, spirv.FunctionControlNone)
	f.AddName(fn, name)
	return fn, f.AddLabel()
}

func (f *fixture) end() {
	f.AddReturn()
	f.AddFunctionEnd()
}

func (f *fixture) parse(t *testing.T) *spirv.Result {
	t.Helper()
	result, err := spirv.ParseWords(f.Words(), spirv.DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, result.Module)
	return result
}

func (f *fixture) parseErr(t *testing.T) error {
	t.Helper()
	result, err := spirv.ParseWords(f.Words(), spirv.DefaultOptions())
	require.Error(t, err)
	assert.Nil(t, result)
	return err
}

func function(t *testing.T, m *ir.Module, name string) (ir.FunctionHandle, *ir.Function) {
	t.Helper()
	for i := range m.Functions {
		if m.Functions[i].Name == name {
			return ir.FunctionHandle(i), &m.Functions[i]
		}
	}
	t.Fatalf("no function %q", name)
	return 0, nil
}

func stores(block ir.Block) []ir.StmtStore {
	var out []ir.StmtStore
	for _, kind := range statements(block) {
		if s, ok := kind.(ir.StmtStore); ok {
			out = append(out, s)
		}
	}
	return out
}

func TestBuildRowMajorMatrix(t *testing.T) {
	f := newFixture()
	v4 := f.AddTypeVector(f.f32, 4)
	mat := f.AddTypeMatrix(v4, 4)
	transform := f.AddTypeStruct(mat)
	f.AddName(transform, "Transform")
	f.AddMemberName(transform, 0, "model")
	f.AddMemberDecorate(transform, 0, spirv.DecorationOffset, 0)
	f.AddMemberDecorate(transform, 0, spirv.DecorationRowMajor)
	f.AddMemberDecorate(transform, 0, spirv.DecorationMatrixStride, 16)
	f.AddDecorate(transform, spirv.DecorationBlock)

	ptrBlock := f.AddTypePointer(spirv.StorageClassUniform, transform)
	ptrMat := f.AddTypePointer(spirv.StorageClassUniform, mat)
	ptrColumn := f.AddTypePointer(spirv.StorageClassUniform, v4)
	ubo := f.AddVariable(ptrBlock, spirv.StorageClassUniform)
	f.AddDecorate(ubo, spirv.DecorationDescriptorSet, 0)
	f.AddDecorate(ubo, spirv.DecorationBinding, 0)
	wholeOut := f.AddVariable(f.AddTypePointer(spirv.StorageClassPrivate, mat), spirv.StorageClassPrivate)
	columnOut := f.AddVariable(f.AddTypePointer(spirv.StorageClassPrivate, v4), spirv.StorageClassPrivate)
	c0 := f.AddConstant(f.i32, 0)
	c2 := f.AddConstant(f.i32, 2)

	f.begin("main")
	f.AddStore(wholeOut, f.AddLoad(mat, f.AddAccessChain(ptrMat, ubo, c0)))
	f.AddStore(columnOut, f.AddLoad(v4, f.AddAccessChain(ptrColumn, ubo, c0, c2)))
	f.end()

	m := f.parse(t).Module
	fn := &m.Functions[0]
	st := stores(fn.Body)
	require.Len(t, st, 2)

	// The whole matrix is loaded and transposed.
	whole, ok := fn.Expressions[st[0].Value].Kind.(ir.ExprMath)
	require.True(t, ok, "whole matrix is %T", fn.Expressions[st[0].Value].Kind)
	assert.Equal(t, ir.MathTranspose, whole.Fun)
	load, ok := fn.Expressions[whole.Arg].Kind.(ir.ExprLoad)
	require.True(t, ok)
	member, ok := fn.Expressions[load.Pointer].Kind.(ir.ExprAccessIndex)
	require.True(t, ok)
	assert.Equal(t, uint32(0), member.Index)

	// A column is taken from the transposed value, not from memory.
	column, ok := fn.Expressions[st[1].Value].Kind.(ir.ExprAccessIndex)
	require.True(t, ok, "column is %T", fn.Expressions[st[1].Value].Kind)
	assert.Equal(t, uint32(2), column.Index)
	transposed, ok := fn.Expressions[column.Base].Kind.(ir.ExprMath)
	require.True(t, ok)
	assert.Equal(t, ir.MathTranspose, transposed.Fun)
	assert.IsType(t, ir.ExprLoad{}, fn.Expressions[transposed.Arg].Kind)
}

func TestBuildMatrixStride(t *testing.T) {
	tests := []struct {
		name    string
		rows    uint32
		stride  uint32
		wantErr bool
	}{
		{name: "mat4 packed", rows: 4, stride: 16},
		{name: "mat4 short", rows: 4, stride: 12, wantErr: true},
		{name: "mat3 padded", rows: 3, stride: 16},
		{name: "mat3 packed", rows: 3, stride: 12, wantErr: true},
		{name: "mat2 packed", rows: 2, stride: 8},
		{name: "mat2 padded", rows: 2, stride: 16, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			column := f.AddTypeVector(f.f32, tt.rows)
			mat := f.AddTypeMatrix(column, tt.rows)
			block := f.AddTypeStruct(mat)
			f.AddMemberDecorate(block, 0, spirv.DecorationOffset, 0)
			f.AddMemberDecorate(block, 0, spirv.DecorationColMajor)
			f.AddMemberDecorate(block, 0, spirv.DecorationMatrixStride, tt.stride)

			if !tt.wantErr {
				f.parse(t)
				return
			}
			err := f.parseErr(t)
			assert.True(t, spirv.IsKind(err, spirv.ErrUnsupportedMatrixStride), "got %v", err)
		})
	}
}

func TestBuildBindingArray(t *testing.T) {
	tests := []struct {
		name    string
		sampler bool
		bound   bool
	}{
		{name: "images", bound: true},
		{name: "samplers", sampler: true, bound: true},
		{name: "images without binding"},
		{name: "samplers without binding", sampler: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			element := f.AddTypeImage(f.f32, spirv.Dim2D, 0, 0, 0, 1, spirv.ImageFormatUnknown)
			if tt.sampler {
				element = f.AddTypeSampler()
			}
			arr := f.AddTypeArray(element, f.AddConstant(f.u32, 4))
			ptrArr := f.AddTypePointer(spirv.StorageClassUniformConstant, arr)
			ptrElement := f.AddTypePointer(spirv.StorageClassUniformConstant, element)
			resources := f.AddVariable(ptrArr, spirv.StorageClassUniformConstant)
			if tt.bound {
				f.AddDecorate(resources, spirv.DecorationDescriptorSet, 0)
				f.AddDecorate(resources, spirv.DecorationBinding, 3)
			}
			c1 := f.AddConstant(f.i32, 1)
			f.begin("main")
			f.AddLoad(element, f.AddAccessChain(ptrElement, resources, c1))
			f.end()

			if !tt.bound {
				err := f.parseErr(t)
				assert.True(t, spirv.IsKind(err, spirv.ErrNonBindingArrayOfImageOrSamplers), "got %v", err)
				return
			}

			m := f.parse(t).Module
			require.Len(t, m.GlobalVariables, 1)
			gv := m.GlobalVariables[0]
			assert.Equal(t, ir.SpaceHandle, gv.Space)
			assert.Equal(t, &ir.ResourceBinding{Group: 0, Binding: 3}, gv.Binding)

			ba, ok := m.Types[gv.Type].Inner.(ir.BindingArrayType)
			require.True(t, ok, "global type is %T", m.Types[gv.Type].Inner)
			require.NotNil(t, ba.Size.Constant)
			assert.Equal(t, uint32(4), *ba.Size.Constant)
			if tt.sampler {
				assert.IsType(t, ir.SamplerType{}, m.Types[ba.Base].Inner)
			} else {
				assert.IsType(t, ir.ImageType{}, m.Types[ba.Base].Inner)
			}

			// Pointers to handles collapse onto the handle type.
			for i, ty := range m.Types {
				_, isPointer := ty.Inner.(ir.PointerType)
				assert.False(t, isPointer, "type %d is a pointer", i)
			}

			access := findExpr[ir.ExprAccessIndex](t, m.Functions[0])
			assert.Equal(t, uint32(1), access.Index)
			assert.Equal(t, ir.ExprGlobalVariable{Variable: 0}, m.Functions[0].Expressions[access.Base].Kind)
		})
	}
}

func TestBuildSampledImage(t *testing.T) {
	f := newFixture()
	v2 := f.AddTypeVector(f.f32, 2)
	v4 := f.AddTypeVector(f.f32, 4)
	img := f.AddTypeImage(f.f32, spirv.Dim2D, 0, 0, 0, 1, spirv.ImageFormatUnknown)
	sampled := f.AddTypeSampledImage(img)
	sampler := f.AddTypeSampler()
	tex := f.AddVariable(f.AddTypePointer(spirv.StorageClassUniformConstant, img), spirv.StorageClassUniformConstant)
	samp := f.AddVariable(f.AddTypePointer(spirv.StorageClassUniformConstant, sampler), spirv.StorageClassUniformConstant)
	f.AddDecorate(tex, spirv.DecorationDescriptorSet, 0)
	f.AddDecorate(tex, spirv.DecorationBinding, 0)
	f.AddDecorate(samp, spirv.DecorationDescriptorSet, 0)
	f.AddDecorate(samp, spirv.DecorationBinding, 1)
	half := f.AddConstantFloat32(f.f32, 0.5)
	uv := f.AddConstantComposite(v2, half, half)
	lod := f.AddConstantFloat32(f.f32, 1)

	f.begin("main")
	si := f.AddResult(spirv.OpSampledImage, sampled, f.AddLoad(img, tex), f.AddLoad(sampler, samp))
	f.AddResult(spirv.OpImageSampleExplicitLod, v4, si, uv, uint32(spirv.ImageOperandsLod), lod)
	f.end()

	fn := f.parse(t).Module.Functions[0]
	sample := findExpr[ir.ExprImageSample](t, fn)
	assert.Equal(t, ir.ExprGlobalVariable{Variable: 0}, fn.Expressions[sample.Image].Kind)
	assert.Equal(t, ir.ExprGlobalVariable{Variable: 1}, fn.Expressions[sample.Sampler].Kind)
	assert.Nil(t, sample.DepthRef)
	level, ok := sample.Level.(ir.SampleLevelExact)
	require.True(t, ok, "level is %T", sample.Level)
	assert.IsType(t, ir.ExprConstant{}, fn.Expressions[level.Level].Kind)
}

func TestBuildLoopWithPhi(t *testing.T) {
	f := newFixture()
	c0 := f.AddConstant(f.i32, 0)
	c1 := f.AddConstant(f.i32, 1)
	c4 := f.AddConstant(f.i32, 4)
	out := f.AddVariable(f.AddTypePointer(spirv.StorageClassPrivate, f.i32), spirv.StorageClassPrivate)

	header, body, cont, merge := f.AllocLabel(), f.AllocLabel(), f.AllocLabel(), f.AllocLabel()
	_, entry := f.begin("count")
	f.AddBranch(header)

	f.PlaceLabel(header)
	i := f.AddPhi(f.i32, spirv.PhiSource{Value: c0, Parent: entry}, spirv.PhiSource{Value: c1, Parent: cont})
	f.AddLoopMerge(merge, cont, spirv.LoopControlNone)
	more := f.AddBinaryOp(spirv.OpSLessThan, f.boolean, i, c4)
	f.AddBranchConditional(more, body, merge)

	f.PlaceLabel(body)
	f.AddBranch(cont)

	f.PlaceLabel(cont)
	f.AddStore(out, f.AddBinaryOp(spirv.OpIAdd, f.i32, i, c1))
	f.AddBranch(header)

	f.PlaceLabel(merge)
	f.end()

	fn := &f.parse(t).Module.Functions[0]
	loop := find[ir.StmtLoop](t, fn.Body)

	var breaks int
	for _, kind := range statements(loop.Body) {
		if _, ok := kind.(ir.StmtBreak); ok {
			breaks++
		}
	}
	assert.Equal(t, 1, breaks, "the loop exits on the false edge")

	require.NotEmpty(t, fn.LocalVars)
	var phiStores int
	for _, s := range stores(fn.Body) {
		if fn.Expressions[s.Pointer].Kind == (ir.ExprLocalVariable{Variable: 0}) {
			phiStores++
		}
	}
	assert.Equal(t, 2, phiStores, "one store per incoming edge")
}

func TestBuildStorageBufferAtomic(t *testing.T) {
	f := newFixture()
	f.AddExtension("SPV_KHR_storage_buffer_storage_class")
	values := f.AddTypeRuntimeArray(f.u32)
	f.AddDecorate(values, spirv.DecorationArrayStride, 4)
	counters := f.AddTypeStruct(values)
	f.AddName(counters, "Counters")
	f.AddMemberDecorate(counters, 0, spirv.DecorationOffset, 0)
	f.AddDecorate(counters, spirv.DecorationBlock)
	ptrBuf := f.AddTypePointer(spirv.StorageClassStorageBuffer, counters)
	ptrValue := f.AddTypePointer(spirv.StorageClassStorageBuffer, f.u32)
	buf := f.AddVariable(ptrBuf, spirv.StorageClassStorageBuffer)
	f.AddDecorate(buf, spirv.DecorationDescriptorSet, 0)
	f.AddDecorate(buf, spirv.DecorationBinding, 0)
	c0 := f.AddConstant(f.i32, 0)
	c1 := f.AddConstant(f.i32, 1)
	device := f.AddConstant(f.u32, uint32(spirv.ScopeDevice))
	relaxed := f.AddConstant(f.u32, 0)
	one := f.AddConstant(f.u32, 1)

	f.begin("main")
	f.AddAtomic(spirv.OpAtomicIAdd, f.u32, f.AddAccessChain(ptrValue, buf, c0, c1), device, relaxed, one)
	f.end()

	m := f.parse(t).Module
	require.Len(t, m.GlobalVariables, 1)
	gv := m.GlobalVariables[0]
	assert.Equal(t, ir.SpaceStorage, gv.Space)

	st, ok := m.Types[gv.Type].Inner.(ir.StructType)
	require.True(t, ok)
	arr, ok := m.Types[st.Members[0].Type].Inner.(ir.ArrayType)
	require.True(t, ok)
	assert.Nil(t, arr.Size.Constant, "runtime sized")
	assert.Equal(t, uint32(4), arr.Stride)
	assert.Equal(t, ir.AtomicType{Scalar: ir.ScalarType{Kind: ir.ScalarUint, Width: 4}}, m.Types[arr.Base].Inner)

	atomic := find[ir.StmtAtomic](t, m.Functions[0].Body)
	assert.IsType(t, ir.AtomicAdd{}, atomic.Fun)
}

func TestBuildFunctionCall(t *testing.T) {
	f := newFixture()
	glsl := f.AddExtInstImport("GLSL.std.450")
	unary := f.AddTypeFunction(f.f32, f.f32)
	out := f.AddVariable(f.AddTypePointer(spirv.StorageClassPrivate, f.f32), spirv.StorageClassPrivate)
	minusTwo := f.AddConstantFloat32(f.f32, -2)

	magnitude := f.AddFunction(unary, f.f32, spirv.FunctionControlNone)
	f.AddName(magnitude, "magnitude")
	x := f.AddFunctionParameter(f.f32)
	f.AddLabel()
	f.AddReturnValue(f.AddExtInst(f.f32, glsl, uint32(spirv.GLSLFAbs), x))
	f.AddFunctionEnd()

	f.begin("main")
	f.AddStore(out, f.AddFunctionCall(f.f32, magnitude, minusTwo))
	f.end()

	m := f.parse(t).Module
	callee, helper := function(t, m, "magnitude")
	require.Len(t, helper.Arguments, 1)
	require.NotNil(t, helper.Result)
	assert.Equal(t, helper.Arguments[0].Type, helper.Result.Type)

	abs := findExpr[ir.ExprMath](t, *helper)
	assert.Equal(t, ir.MathAbs, abs.Fun)
	assert.Equal(t, ir.ExprFunctionArgument{Index: 0}, helper.Expressions[abs.Arg].Kind)
	ret := find[ir.StmtReturn](t, helper.Body)
	require.NotNil(t, ret.Value)

	_, caller := function(t, m, "main")
	call := find[ir.StmtCall](t, caller.Body)
	assert.Equal(t, callee, call.Function)
	require.Len(t, call.Arguments, 1)
	require.NotNil(t, call.Result)
	assert.Equal(t, ir.ExprCallResult{Function: callee}, caller.Expressions[*call.Result].Kind)
	store := find[ir.StmtStore](t, caller.Body)
	assert.Equal(t, *call.Result, store.Value)
}

func TestBuildComposites(t *testing.T) {
	f := newFixture()
	v2 := f.AddTypeVector(f.f32, 2)
	v4 := f.AddTypeVector(f.f32, 4)
	half := f.AddConstantFloat32(f.f32, 0.5)
	quarter := f.AddConstantFloat32(f.f32, 0.25)
	vec := f.AddConstantComposite(v4, half, half, quarter, quarter)
	zero := f.AddConstantNull(v4)
	no := f.AddConstantBool(f.boolean, false)
	scale := f.AddSpecConstant(f.f32, math.Float32bits(2))
	f.AddName(scale, "scale")
	f.AddDecorate(scale, spirv.DecorationSpecID, 7)
	ptrLocal := f.AddTypePointer(spirv.StorageClassFunction, f.f32)

	f.begin("shapes")
	local := f.AddLocalVariable(ptrLocal)
	f.AddCompositeConstruct(v2, half, scale)
	f.AddVectorShuffle(v2, vec, zero, 3, 0)
	third := f.AddCompositeExtract(f.f32, vec, 2)
	negated := f.AddUnaryOp(spirv.OpFNegate, f.f32, third)
	f.AddStore(local, f.AddSelect(f.f32, no, negated, half))
	f.AddStore(local, f.AddResult(spirv.OpDot, f.f32, vec, zero))
	f.end()

	m := f.parse(t).Module
	require.Len(t, m.Overrides, 1)
	require.NotNil(t, m.Overrides[0].ID)
	assert.Equal(t, uint16(7), *m.Overrides[0].ID)
	assert.Equal(t, "scale", m.Overrides[0].Name)

	fn := m.Functions[0]
	require.Len(t, fn.LocalVars, 1)

	compose := findExpr[ir.ExprCompose](t, fn)
	require.Len(t, compose.Components, 2)
	assert.Equal(t, ir.ExprOverride{Override: 0}, fn.Expressions[compose.Components[1]].Kind)

	swizzle := findExpr[ir.ExprSwizzle](t, fn)
	assert.Equal(t, ir.Vec2, swizzle.Size)
	assert.Equal(t, [4]ir.SwizzleComponent{ir.SwizzleW, ir.SwizzleX, ir.SwizzleX, ir.SwizzleX}, swizzle.Pattern)

	extract := findExpr[ir.ExprAccessIndex](t, fn)
	assert.Equal(t, uint32(2), extract.Index)

	unary := findExpr[ir.ExprUnary](t, fn)
	assert.Equal(t, ir.UnaryNegate, unary.Op)

	sel := findExpr[ir.ExprSelect](t, fn)
	assert.IsType(t, ir.ExprConstant{}, fn.Expressions[sel.Condition].Kind)

	dot := findExpr[ir.ExprMath](t, fn)
	assert.Equal(t, ir.MathDot, dot.Fun)
	require.NotNil(t, dot.Arg1)

	st := stores(fn.Body)
	require.Len(t, st, 2)
	assert.Equal(t, ir.ExprLocalVariable{Variable: 0}, fn.Expressions[st[0].Pointer].Kind)
}

func TestBuildFragmentKill(t *testing.T) {
	f := newFixture()
	cond := f.AddConstantBool(f.boolean, true)
	discard, keep, merge := f.AllocLabel(), f.AllocLabel(), f.AllocLabel()

	fn, _ := f.begin("main")
	f.AddEntryPoint(spirv.ExecutionModelFragment, fn, "main")
	f.AddExecutionMode(fn, spirv.ExecutionModeOriginUpperLeft)
	f.AddSelectionMerge(merge, spirv.SelectionControlNone)
	f.AddBranchConditional(cond, discard, keep)
	f.PlaceLabel(discard)
	f.AddKill()
	f.PlaceLabel(keep)
	f.AddBranch(merge)
	f.PlaceLabel(merge)
	f.end()

	never := f.AddFunction(f.fnty, f.void, spirv.FunctionControlNone)
	f.AddName(never, "never")
	f.AddLabel()
	f.AddUnreachable()
	f.AddFunctionEnd()

	m := f.parse(t).Module
	require.Len(t, m.EntryPoints, 1)
	assert.Equal(t, ir.StageFragment, m.EntryPoints[0].Stage)

	_, shader := function(t, m, "main")
	branch := find[ir.StmtIf](t, shader.Body)
	require.NotEmpty(t, branch.Accept)
	assert.IsType(t, ir.StmtKill{}, branch.Accept[len(branch.Accept)-1].Kind)

	// An unreachable block ends without a terminator.
	_, unreachable := function(t, m, "never")
	for _, kind := range statements(unreachable.Body) {
		assert.NotEqual(t, ir.StmtReturn{}, kind)
	}
}

func TestBuildWorkgroupBarrier(t *testing.T) {
	tests := []struct {
		name    string
		scope   spirv.Scope
		want    []ir.StmtBarrier
		warning bool
	}{
		{name: "workgroup", scope: spirv.ScopeWorkgroup, want: []ir.StmtBarrier{{Flags: ir.BarrierWorkGroup}}},
		{name: "subgroup", scope: spirv.ScopeSubgroup, want: []ir.StmtBarrier{{Flags: ir.BarrierWorkGroup}}},
		{name: "device", scope: spirv.ScopeDevice, warning: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			scope := f.AddConstant(f.u32, uint32(tt.scope))
			semantics := f.AddConstant(f.u32, uint32(spirv.MemorySemanticsAcquireRelease|spirv.MemorySemanticsWorkgroupMemory))
			fn, _ := f.begin("main")
			f.AddEntryPoint(spirv.ExecutionModelGLCompute, fn, "main")
			f.AddExecutionMode(fn, spirv.ExecutionModeLocalSize, 64, 1, 1)
			f.AddInstruction(spirv.OpControlBarrier, scope, scope, semantics)
			f.end()

			result := f.parse(t)
			_, shader := function(t, result.Module, "main")
			var got []ir.StmtBarrier
			for _, kind := range statements(shader.Body) {
				if b, ok := kind.(ir.StmtBarrier); ok {
					got = append(got, b)
				}
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.warning, len(result.Warnings) > 0, "warnings: %v", result.Warnings)
			assert.Equal(t, [3]uint32{64, 1, 1}, result.Module.EntryPoints[0].Workgroup)
		})
	}
}

func TestBuildTypeWidthErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(f *fixture)
	}{
		{name: "int 24", build: func(f *fixture) { f.AddTypeInt(24, true) }},
		{name: "int 128", build: func(f *fixture) { f.AddTypeInt(128, false) }},
		{name: "float 8", build: func(f *fixture) { f.AddTypeFloat(8) }},
		{name: "float 128", build: func(f *fixture) { f.AddTypeFloat(128) }},
		{name: "int 16 constant", build: func(f *fixture) { f.AddConstant(f.AddTypeInt(16, true), 1) }},
		{name: "uint 8 constant", build: func(f *fixture) { f.AddConstant(f.AddTypeInt(8, false), 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.build(f)
			err := f.parseErr(t)
			assert.True(t, spirv.IsKind(err, spirv.ErrInvalidTypeWidth), "got %v", err)
		})
	}
}
