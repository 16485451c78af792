package spirv

import "github.com/gogpu/spvfront/ir"

// lookupType maps a SPIR-V type id to the IR type. baseID is the id of the
// element, column, component or pointee type, or 0 when there is none.
type lookupType struct {
	handle ir.TypeHandle
	baseID uint32
}

// lookupConstant maps a constant id to a module constant or override.
type lookupConstant struct {
	isOverride bool
	constant   ir.ConstantHandle
	override   ir.OverrideHandle
	init       ir.ExpressionHandle // value in Module.GlobalExpressions
	typeID     uint32
}

// expression returns the global expression naming the constant.
func (c lookupConstant) expression() ir.ExpressionKind {
	if c.isOverride {
		return ir.ExprOverride{Override: c.override}
	}
	return ir.ExprConstant{Constant: c.constant}
}

// variableRole classifies a module-scope OpVariable.
type variableRole uint8

const (
	roleGlobal variableRole = iota
	roleInput
	roleOutput
)

// lookupVariable maps a variable id to its global. Inputs and outputs also
// carry the argument or result the entry point wrapper will expose.
type lookupVariable struct {
	role   variableRole
	handle ir.GlobalVariableHandle
	typeID uint32
	arg    ir.FunctionArgument
	result ir.FunctionResult
}

// lookupExpression maps a result id to an expression of the function being
// parsed. blockID is the label of the defining block, 0 for values that are
// valid everywhere in the function.
type lookupExpression struct {
	handle  ir.ExpressionHandle
	typeID  uint32
	blockID uint32
}

// memberRef names a struct member by the IR struct type.
type memberRef struct {
	ty    ir.TypeHandle
	index uint32
}

// lookupMember records what an access chain needs to know about a member.
type lookupMember struct {
	typeID   uint32
	rowMajor bool
}

// lookupFunctionType is the signature declared by OpTypeFunction.
type lookupFunctionType struct {
	paramTypeIDs []uint32
	returnTypeID uint32
}

// lookupFunction is a parsed function. index is its position in definition
// order; the final handle is assigned after sorting the call graph.
type lookupFunction struct {
	index             int
	parameterSampling []ir.SamplingFlags
}

// loadOverride replaces the plain load of an access chain that runs through
// a row-major matrix: the IR stores matrices column-major, so the value is
// loaded and transposed instead. A pending override has not reached the
// matrix yet.
type loadOverride struct {
	loaded bool
	expr   ir.ExpressionHandle
}

// sampledImage is the pair combined by OpSampledImage.
type sampledImage struct {
	image       ir.ExpressionHandle
	sampler     ir.ExpressionHandle
	imageTypeID uint32
}

// entryPoint is an OpEntryPoint waiting for its function.
type entryPoint struct {
	name        string
	stage       ir.ShaderStage
	earlyDepth  *ir.EarlyDepthTest
	workgroup   [3]uint32
	variableIDs []uint32
}
