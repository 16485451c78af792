package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countersModule declares
//
//	struct Counter { value: u32, label: u32 }
//	var<storage> counters: array<Counter, 4>
//	var<workgroup> total: u32
func countersModule() *Module {
	four := uint32(4)
	return &Module{
		Types: []Type{
			{Inner: ScalarType{Kind: ScalarUint, Width: 4}}, // 0
			{Name: "Counter", Inner: StructType{Members: []StructMember{
				{Name: "value", Type: 0, Offset: 0},
				{Name: "label", Type: 0, Offset: 4},
			}, Span: 8}}, // 1
			{Inner: ArrayType{Base: 1, Size: ArraySize{Constant: &four}, Stride: 8}}, // 2
		},
		GlobalVariables: []GlobalVariable{
			{Name: "counters", Space: SpaceStorage, Type: 2},
			{Name: "total", Space: SpaceWorkGroup, Type: 0},
		},
	}
}

func TestUpgradeAtomics_StructField(t *testing.T) {
	module := countersModule()
	up := NewAtomicUpgrades()
	up.AddGlobal(0)
	up.AddField(1, 0)

	require.NoError(t, UpgradeAtomics(module, up))

	st := module.Types[1].Inner.(StructType)
	valueType := module.Types[st.Members[0].Type].Inner
	assert.Equal(t, AtomicType{Scalar: ScalarType{Kind: ScalarUint, Width: 4}}, valueType)
	assert.Equal(t, TypeHandle(0), st.Members[1].Type, "sibling field stays plain")
	assert.Equal(t, TypeHandle(2), module.GlobalVariables[0].Type, "array keeps its handle")
	assert.Equal(t, TypeHandle(0), module.GlobalVariables[1].Type)
}

func TestUpgradeAtomics_WholeGlobal(t *testing.T) {
	module := countersModule()
	up := NewAtomicUpgrades()
	up.AddGlobal(1)

	require.NoError(t, UpgradeAtomics(module, up))

	gv := module.GlobalVariables[1]
	assert.NotEqual(t, TypeHandle(0), gv.Type)
	assert.Equal(t, AtomicType{Scalar: ScalarType{Kind: ScalarUint, Width: 4}}, module.Types[gv.Type].Inner)
	assert.Equal(t, []GlobalVariableHandle{1}, up.Globals())
}

func TestUpgradeAtomics_Errors(t *testing.T) {
	tests := []struct {
		name   string
		module *Module
	}{
		{"bool", &Module{
			Types:           []Type{{Inner: ScalarType{Kind: ScalarBool, Width: 1}}},
			GlobalVariables: []GlobalVariable{{Name: "flag", Space: SpaceWorkGroup, Type: 0}},
		}},
		{"vector", &Module{
			Types:           []Type{{Inner: VectorType{Size: Vec2, Scalar: ScalarType{Kind: ScalarUint, Width: 4}}}},
			GlobalVariables: []GlobalVariable{{Name: "pair", Space: SpaceWorkGroup, Type: 0}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := NewAtomicUpgrades()
			up.AddGlobal(0)
			err := UpgradeAtomics(tt.module, up)
			var upErr *AtomicUpgradeError
			assert.ErrorAs(t, err, &upErr)
		})
	}
}

func TestUpgradeAtomics_Empty(t *testing.T) {
	module := countersModule()
	before := len(module.Types)
	require.NoError(t, UpgradeAtomics(module, NewAtomicUpgrades()))
	assert.Len(t, module.Types, before)
}
