package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32p(v uint32) *uint32 { return &v }

func TestTypeRegistry_Deduplication(t *testing.T) {
	f32 := ScalarType{Kind: ScalarFloat, Width: 4}
	i32 := ScalarType{Kind: ScalarSint, Width: 4}

	tests := []struct {
		name  string
		a, b  TypeInner
		equal bool
	}{
		{"same scalar", f32, f32, true},
		{"different scalar width", f32, ScalarType{Kind: ScalarFloat, Width: 2}, false},
		{"same vector", VectorType{Size: Vec4, Scalar: f32}, VectorType{Size: Vec4, Scalar: f32}, true},
		{"vector size", VectorType{Size: Vec4, Scalar: f32}, VectorType{Size: Vec3, Scalar: f32}, false},
		{"vector scalar", VectorType{Size: Vec4, Scalar: f32}, VectorType{Size: Vec4, Scalar: i32}, false},
		{"matrix shape", MatrixType{Columns: Vec4, Rows: Vec3, Scalar: f32}, MatrixType{Columns: Vec3, Rows: Vec4, Scalar: f32}, false},
		{"array stride", ArrayType{Base: 0, Size: ArraySize{Constant: u32p(4)}, Stride: 4},
			ArrayType{Base: 0, Size: ArraySize{Constant: u32p(4)}, Stride: 16}, false},
		{"array size pointer identity", ArrayType{Base: 0, Size: ArraySize{Constant: u32p(4)}, Stride: 4},
			ArrayType{Base: 0, Size: ArraySize{Constant: u32p(4)}, Stride: 4}, true},
		{"runtime array", ArrayType{Base: 0, Stride: 4}, ArrayType{Base: 0, Size: ArraySize{Constant: u32p(4)}, Stride: 4}, false},
		{"binding array", BindingArrayType{Base: 0}, ArrayType{Base: 0}, false},
		{"atomic vs scalar", AtomicType{Scalar: f32}, f32, false},
		{"pointer space", PointerType{Base: 0, Space: SpaceFunction}, PointerType{Base: 0, Space: SpacePrivate}, false},
		{"sampler comparison", SamplerType{}, SamplerType{Comparison: true}, false},
		{"image format", ImageType{Dim: Dim2D, Class: ImageClassStorage, StorageFormat: StorageFormatR32Float},
			ImageType{Dim: Dim2D, Class: ImageClassStorage, StorageFormat: StorageFormatRgba8Unorm}, false},
		{"image sampled kind", ImageType{Dim: Dim2D, SampledKind: ScalarFloat}, ImageType{Dim: Dim2D, SampledKind: ScalarUint}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTypeRegistry()
			a := r.GetOrCreate("", tt.a)
			b := r.GetOrCreate("", tt.b)
			if tt.equal {
				assert.Equal(t, a, b)
				assert.Equal(t, 1, r.Count())
			} else {
				assert.NotEqual(t, a, b)
				assert.Equal(t, 2, r.Count())
			}
		})
	}
}

func TestTypeRegistry_NamesAreSignificant(t *testing.T) {
	r := NewTypeRegistry()
	f32 := r.GetOrCreate("", ScalarType{Kind: ScalarFloat, Width: 4})
	members := []StructMember{{Name: "x", Type: f32, Offset: 0}}

	a := r.GetOrCreate("A", StructType{Members: members, Span: 4})
	again := r.GetOrCreate("A", StructType{Members: members, Span: 4})
	b := r.GetOrCreate("B", StructType{Members: members, Span: 4})

	assert.Equal(t, a, again)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 3, r.Count())
}

func TestTypeRegistry_MemberBindings(t *testing.T) {
	r := NewTypeRegistry()
	f32 := r.GetOrCreate("", ScalarType{Kind: ScalarFloat, Width: 4})
	var loc0 Binding = LocationBinding{Location: 0}
	var loc1 Binding = LocationBinding{Location: 1}

	a := r.GetOrCreate("", StructType{Members: []StructMember{{Type: f32, Binding: &loc0}}, Span: 4})
	b := r.GetOrCreate("", StructType{Members: []StructMember{{Type: f32, Binding: &loc1}}, Span: 4})
	assert.NotEqual(t, a, b)
}

func TestTypeRegistry_FromAndReplace(t *testing.T) {
	u32 := ScalarType{Kind: ScalarUint, Width: 4}
	types := []Type{
		{Inner: u32},
		{Name: "Counter", Inner: StructType{Members: []StructMember{{Name: "value", Type: 0}}, Span: 4}},
	}

	r := NewTypeRegistryFrom(types)
	require.Equal(t, 2, r.Count())
	assert.Equal(t, TypeHandle(0), r.GetOrCreate("", u32))

	atomic := r.GetOrCreate("", AtomicType{Scalar: u32})
	assert.Equal(t, TypeHandle(2), atomic)

	upgraded := Type{Name: "Counter", Inner: StructType{Members: []StructMember{{Name: "value", Type: atomic}}, Span: 4}}
	require.NoError(t, r.Replace(1, upgraded))

	got, ok := r.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, upgraded, got)
	assert.Equal(t, TypeHandle(1), r.GetOrCreate(upgraded.Name, upgraded.Inner))

	assert.Error(t, r.Replace(9, upgraded))
	_, ok = r.Lookup(9)
	assert.False(t, ok)
}
