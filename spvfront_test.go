package spvfront

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvfront/ir"
	"github.com/gogpu/spvfront/spirv"
)

// computeModule builds a compute shader that stores a constant into a
// workgroup variable.
func computeModule() []byte {
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	voidType := b.AddTypeVoid()
	fnType := b.AddTypeFunction(voidType)
	u32 := b.AddTypeInt(32, false)
	ptr := b.AddTypePointer(spirv.StorageClassWorkgroup, u32)
	seven := b.AddConstant(u32, 7)
	shared := b.AddVariable(ptr, spirv.StorageClassWorkgroup)

	fn := b.AddFunction(fnType, voidType, spirv.FunctionControlNone)
	b.AddLabel()
	b.AddStore(shared, seven)
	b.AddReturn()
	b.AddFunctionEnd()

	b.AddName(fn, "main")
	b.AddName(shared, "shared")
	b.AddEntryPoint(spirv.ExecutionModelGLCompute, fn, "main")
	b.AddExecutionMode(fn, spirv.ExecutionModeLocalSize, 64, 1, 1)
	return b.Build()
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.True(t, opts.AdjustCoordinateSpace)
	assert.True(t, opts.StrictCapabilities)
	assert.Empty(t, opts.BlockCtxDumpPrefix)
}

func TestParse(t *testing.T) {
	result, err := Parse(computeModule())
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	m := result.Module
	require.Len(t, m.EntryPoints, 1)
	ep := m.EntryPoints[0]
	assert.Equal(t, "main", ep.Name)
	assert.Equal(t, ir.StageCompute, ep.Stage)
	assert.Equal(t, [3]uint32{64, 1, 1}, ep.Workgroup)

	require.Len(t, m.GlobalVariables, 1)
	assert.Equal(t, "shared", m.GlobalVariables[0].Name)
	assert.Equal(t, ir.SpaceWorkGroup, m.GlobalVariables[0].Space)
}

func TestParseWords(t *testing.T) {
	data := computeModule()
	words, err := spirv.BytesToWords(data)
	require.NoError(t, err)

	fromWords, err := ParseWords(words, DefaultOptions())
	require.NoError(t, err)
	fromBytes, err := ParseWithOptions(data, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, fromBytes, fromWords)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compute.spv")
	require.NoError(t, os.WriteFile(path, computeModule(), 0o600))

	result, err := ParseFile(path, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, result.Module.EntryPoints, 1)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.spv"), DefaultOptions())
	assert.Error(t, err)
}

func TestModule(t *testing.T) {
	m, err := Module(computeModule())
	require.NoError(t, err)
	assert.Len(t, m.EntryPoints, 1)

	_, err = Module([]byte{1, 2, 3})
	require.Error(t, err)
	assert.True(t, spirv.IsKind(err, spirv.ErrIncompleteData), "%v", err)
}
