package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLiteralType(t *testing.T) {
	tests := []struct {
		name     string
		literal  Literal
		wantType TypeInner
	}{
		{"f32", Literal{Value: LiteralF32(3.14)}, ScalarType{Kind: ScalarFloat, Width: 4}},
		{"f16", Literal{Value: LiteralF16(0x3c00)}, ScalarType{Kind: ScalarFloat, Width: 2}},
		{"f64", Literal{Value: LiteralF64(1)}, ScalarType{Kind: ScalarFloat, Width: 8}},
		{"i32", Literal{Value: LiteralI32(42)}, ScalarType{Kind: ScalarSint, Width: 4}},
		{"u64", Literal{Value: LiteralU64(7)}, ScalarType{Kind: ScalarUint, Width: 8}},
		{"bool", Literal{Value: LiteralBool(true)}, ScalarType{Kind: ScalarBool, Width: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveLiteralType(tt.literal)
			require.NoError(t, err)
			assert.Nil(t, got.Handle)
			assert.Equal(t, tt.wantType, got.Value)
		})
	}
}

// pointerModule has a storage buffer `buf: struct { m: mat4x3<f32>, data: array<u32> }`.
func pointerModule() *Module {
	return &Module{
		Types: []Type{
			{Inner: ScalarType{Kind: ScalarFloat, Width: 4}},                                                  // 0
			{Inner: MatrixType{Columns: Vec4, Rows: Vec3, Scalar: ScalarType{Kind: ScalarFloat, Width: 4}}}, // 1
			{Inner: ScalarType{Kind: ScalarUint, Width: 4}},                                                   // 2
			{Inner: ArrayType{Base: 2, Stride: 4}},                                                            // 3
			{Name: "Buf", Inner: StructType{Members: []StructMember{
				{Name: "m", Type: 1, Offset: 0},
				{Name: "data", Type: 3, Offset: 64},
			}, Span: 64}}, // 4
		},
		GlobalVariables: []GlobalVariable{{Name: "buf", Space: SpaceStorage, Type: 4}},
	}
}

func TestResolveFunctionTypes_Pointers(t *testing.T) {
	module := pointerModule()
	fn := &Function{
		Name: "main",
		Expressions: []Expression{
			{Kind: ExprGlobalVariable{Variable: 0}},    // 0: ptr<storage, Buf>
			{Kind: ExprAccessIndex{Base: 0, Index: 0}}, // 1: ptr<storage, mat4x3>
			{Kind: ExprAccessIndex{Base: 1, Index: 2}}, // 2: value ptr vec3
			{Kind: ExprLoad{Pointer: 2}},               // 3: vec3<f32>
			{Kind: ExprAccessIndex{Base: 0, Index: 1}}, // 4: ptr<storage, array<u32>>
			{Kind: Literal{Value: LiteralU32(3)}},      // 5
			{Kind: ExprAccess{Base: 4, Index: 5}},      // 6: ptr<storage, u32>
			{Kind: ExprLoad{Pointer: 6}},               // 7: u32 handle
			{Kind: ExprArrayLength{Array: 4}},          // 8
		},
	}

	require.NoError(t, ResolveFunctionTypes(module, fn))
	require.Len(t, fn.ExpressionTypes, len(fn.Expressions))

	assert.Equal(t, PointerType{Base: 4, Space: SpaceStorage}, fn.ExpressionTypes[0].Value)
	assert.Equal(t, PointerType{Base: 1, Space: SpaceStorage}, fn.ExpressionTypes[1].Value)
	rows := Vec3
	assert.Equal(t, ValuePointerType{Size: &rows, Scalar: ScalarType{Kind: ScalarFloat, Width: 4}, Space: SpaceStorage},
		fn.ExpressionTypes[2].Value)
	assert.Equal(t, VectorType{Size: Vec3, Scalar: ScalarType{Kind: ScalarFloat, Width: 4}}, fn.ExpressionTypes[3].Value)
	assert.Equal(t, PointerType{Base: 2, Space: SpaceStorage}, fn.ExpressionTypes[6].Value)
	require.NotNil(t, fn.ExpressionTypes[7].Handle)
	assert.Equal(t, TypeHandle(2), *fn.ExpressionTypes[7].Handle)
	assert.Equal(t, ScalarType{Kind: ScalarUint, Width: 4}, fn.ExpressionTypes[8].Value)
}

func TestResolveExpressionType_OutOfOrderOperands(t *testing.T) {
	module := &Module{Types: []Type{{Inner: VectorType{Size: Vec4, Scalar: ScalarType{Kind: ScalarFloat, Width: 4}}}}}
	fn := &Function{
		Arguments: []FunctionArgument{{Name: "v", Type: 0}},
		Expressions: []Expression{
			{Kind: ExprSwizzle{Size: Vec2, Vector: 1, Pattern: [4]SwizzleComponent{SwizzleY, SwizzleX}}},
			{Kind: ExprFunctionArgument{Index: 0}},
		},
	}

	got, err := ResolveExpressionType(module, fn, 0)
	require.NoError(t, err)
	assert.Equal(t, VectorType{Size: Vec2, Scalar: ScalarType{Kind: ScalarFloat, Width: 4}}, got.Value)
}

func TestResolveExpressionType_Binary(t *testing.T) {
	f32 := ScalarType{Kind: ScalarFloat, Width: 4}
	module := &Module{Types: []Type{
		{Inner: MatrixType{Columns: Vec4, Rows: Vec3, Scalar: f32}}, // 0
		{Inner: VectorType{Size: Vec4, Scalar: f32}},                // 1
		{Inner: VectorType{Size: Vec3, Scalar: f32}},                // 2
	}}
	fn := &Function{
		Arguments: []FunctionArgument{{Type: 0}, {Type: 1}, {Type: 2}},
		Expressions: []Expression{
			{Kind: ExprFunctionArgument{Index: 0}},
			{Kind: ExprFunctionArgument{Index: 1}},
			{Kind: ExprFunctionArgument{Index: 2}},
			{Kind: ExprBinary{Op: BinaryMultiply, Left: 0, Right: 1}},
			{Kind: ExprBinary{Op: BinaryMultiply, Left: 2, Right: 0}},
			{Kind: ExprBinary{Op: BinaryLess, Left: 1, Right: 1}},
			{Kind: ExprBinary{Op: BinaryAdd, Left: 1, Right: 1}},
		},
	}

	tests := []struct {
		name string
		expr ExpressionHandle
		want TypeResolution
	}{
		{"matrix times vector", 3, TypeResolution{Value: VectorType{Size: Vec3, Scalar: f32}}},
		{"vector times matrix", 4, TypeResolution{Value: VectorType{Size: Vec4, Scalar: f32}}},
		{"comparison", 5, TypeResolution{Value: VectorType{Size: Vec4, Scalar: ScalarType{Kind: ScalarBool, Width: 1}}}},
		{"add keeps left", 6, TypeResolution{Handle: func() *TypeHandle { h := TypeHandle(1); return &h }()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveExpressionType(module, fn, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveExpressionType_Images(t *testing.T) {
	module := &Module{
		Types: []Type{
			{Inner: ImageType{Dim: Dim2D, Class: ImageClassSampled, SampledKind: ScalarUint}},
			{Inner: ImageType{Dim: Dim2D, Class: ImageClassDepth}},
			{Inner: SamplerType{Comparison: true}},
			{Inner: ImageType{Dim: Dim3D, Class: ImageClassStorage, StorageFormat: StorageFormatRgba8Sint}},
		},
		GlobalVariables: []GlobalVariable{
			{Space: SpaceHandle, Type: 0},
			{Space: SpaceHandle, Type: 1},
			{Space: SpaceHandle, Type: 2},
			{Space: SpaceHandle, Type: 3},
		},
	}
	ref := ExpressionHandle(4)
	fn := &Function{
		Expressions: []Expression{
			{Kind: ExprGlobalVariable{Variable: 0}},
			{Kind: ExprGlobalVariable{Variable: 1}},
			{Kind: ExprGlobalVariable{Variable: 2}},
			{Kind: ExprGlobalVariable{Variable: 3}},
			{Kind: Literal{Value: LiteralF32(0.5)}},
			{Kind: ExprImageSample{Image: 0, Sampler: 2, Coordinate: 4, Level: SampleLevelAuto{}}},
			{Kind: ExprImageSample{Image: 1, Sampler: 2, Coordinate: 4, Level: SampleLevelZero{}, DepthRef: &ref}},
			{Kind: ExprImageLoad{Image: 3, Coordinate: 4}},
			{Kind: ExprImageQuery{Image: 3, Query: ImageQuerySize{}}},
			{Kind: ExprImageQuery{Image: 0, Query: ImageQueryNumLevels{}}},
		},
	}

	require.NoError(t, ResolveFunctionTypes(module, fn))
	assert.Equal(t, VectorType{Size: Vec4, Scalar: ScalarType{Kind: ScalarUint, Width: 4}}, fn.ExpressionTypes[5].Value)
	assert.Equal(t, ScalarType{Kind: ScalarFloat, Width: 4}, fn.ExpressionTypes[6].Value)
	assert.Equal(t, VectorType{Size: Vec4, Scalar: ScalarType{Kind: ScalarSint, Width: 4}}, fn.ExpressionTypes[7].Value)
	assert.Equal(t, VectorType{Size: Vec3, Scalar: ScalarType{Kind: ScalarUint, Width: 4}}, fn.ExpressionTypes[8].Value)
	assert.Equal(t, ScalarType{Kind: ScalarUint, Width: 4}, fn.ExpressionTypes[9].Value)
}

func TestResolveExpressionType_Errors(t *testing.T) {
	module := &Module{Types: []Type{{Inner: ScalarType{Kind: ScalarFloat, Width: 4}}}}
	tests := []struct {
		name  string
		exprs []Expression
	}{
		{"handle out of range", []Expression{{Kind: ExprLoad{Pointer: 5}}}},
		{"self reference", []Expression{{Kind: ExprUnary{Op: UnaryNegate, Expr: 0}}}},
		{"load of value", []Expression{{Kind: ExprZeroValue{Type: 0}}, {Kind: ExprLoad{Pointer: 0}}}},
		{"struct index without constant", []Expression{{Kind: ExprZeroValue{Type: 0}}, {Kind: ExprAccess{Base: 0, Index: 0}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := &Function{Name: "f", Expressions: tt.exprs}
			assert.Error(t, ResolveFunctionTypes(module, fn))
		})
	}
}
