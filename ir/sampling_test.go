package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplingModule() *Module {
	two := uint32(2)
	return &Module{
		Types: []Type{
			{Inner: SamplerType{}}, // 0
			{Inner: ImageType{Dim: Dim2D, Class: ImageClassSampled, SampledKind: ScalarFloat}}, // 1
			{Inner: BindingArrayType{Base: 0, Size: ArraySize{Constant: &two}}},                // 2
		},
		GlobalVariables: []GlobalVariable{
			{Name: "samp", Space: SpaceHandle, Type: 0},
			{Name: "tex", Space: SpaceHandle, Type: 1},
			{Name: "samps", Space: SpaceHandle, Type: 2},
			{Name: "plain", Space: SpaceHandle, Type: 0},
		},
	}
}

func TestPatchComparisonSampling(t *testing.T) {
	module := samplingModule()
	usage := map[GlobalVariableHandle]SamplingFlags{
		0: SamplingComparison,
		1: SamplingComparison,
		2: SamplingComparison,
		3: SamplingRegular,
	}

	require.NoError(t, PatchComparisonSampling(module, usage))

	inner := func(g int) TypeInner { return module.Types[module.GlobalVariables[g].Type].Inner }
	assert.Equal(t, SamplerType{Comparison: true}, inner(0))
	assert.Equal(t, ImageClassDepth, inner(1).(ImageType).Class)
	ba := inner(2).(BindingArrayType)
	assert.Equal(t, SamplerType{Comparison: true}, module.Types[ba.Base].Inner)
	assert.Equal(t, SamplerType{}, inner(3))
}

func TestPatchComparisonSampling_Inconsistent(t *testing.T) {
	module := samplingModule()
	err := PatchComparisonSampling(module, map[GlobalVariableHandle]SamplingFlags{
		0: SamplingComparison | SamplingRegular,
	})
	var incErr *InconsistentSamplingError
	require.ErrorAs(t, err, &incErr)
	assert.Equal(t, "samp", incErr.Name)
}
