package ir

// Expression is a single node in a function's (or the module's global)
// expression arena. Expressions are referenced by ExpressionHandle and
// never by pointer.
type Expression struct {
	Kind ExpressionKind
}

// ExpressionKind is implemented by every expression variant.
type ExpressionKind interface {
	expressionKind()
}

// Literal is an inline scalar constant.
type Literal struct {
	Value LiteralValue
}

func (Literal) expressionKind() {}

// LiteralValue is one of the Literal* scalar types below.
type LiteralValue interface {
	literalValue()
}

type (
	LiteralF64  float64
	LiteralF32  float32
	LiteralF16  uint16 // IEEE 754 binary16 bits
	LiteralU32  uint32
	LiteralI32  int32
	LiteralU64  uint64
	LiteralI64  int64
	LiteralBool bool
)

func (LiteralF64) literalValue()  {}
func (LiteralF32) literalValue()  {}
func (LiteralF16) literalValue()  {}
func (LiteralU32) literalValue()  {}
func (LiteralI32) literalValue()  {}
func (LiteralU64) literalValue()  {}
func (LiteralI64) literalValue()  {}
func (LiteralBool) literalValue() {}

// ExprConstant references a module constant.
type ExprConstant struct {
	Constant ConstantHandle
}

func (ExprConstant) expressionKind() {}

// ExprOverride references a pipeline-overridable constant.
type ExprOverride struct {
	Override OverrideHandle
}

func (ExprOverride) expressionKind() {}

// ExprZeroValue is the zero value of Type.
type ExprZeroValue struct {
	Type TypeHandle
}

func (ExprZeroValue) expressionKind() {}

// ExprCompose builds a vector, matrix, array or struct from components.
type ExprCompose struct {
	Type       TypeHandle
	Components []ExpressionHandle
}

func (ExprCompose) expressionKind() {}

// ExprAccess indexes into Base with a dynamic index. When Base is a
// pointer the result is a pointer to the element.
type ExprAccess struct {
	Base  ExpressionHandle
	Index ExpressionHandle
}

func (ExprAccess) expressionKind() {}

// ExprAccessIndex indexes into Base with a constant index. Struct fields
// are only reachable this way.
type ExprAccessIndex struct {
	Base  ExpressionHandle
	Index uint32
}

func (ExprAccessIndex) expressionKind() {}

// ExprSplat broadcasts a scalar to every component of a vector.
type ExprSplat struct {
	Size  VectorSize
	Value ExpressionHandle
}

func (ExprSplat) expressionKind() {}

// ExprSwizzle picks Size components of Vector according to Pattern.
type ExprSwizzle struct {
	Size    VectorSize
	Vector  ExpressionHandle
	Pattern [4]SwizzleComponent
}

func (ExprSwizzle) expressionKind() {}

// SwizzleComponent names one vector lane.
type SwizzleComponent uint8

const (
	SwizzleX SwizzleComponent = iota
	SwizzleY
	SwizzleZ
	SwizzleW
)

// ExprFunctionArgument is the value of the Index-th argument.
type ExprFunctionArgument struct {
	Index uint32
}

func (ExprFunctionArgument) expressionKind() {}

// ExprGlobalVariable references a global. Handle-space globals evaluate
// to the resource itself; everything else evaluates to a pointer.
type ExprGlobalVariable struct {
	Variable GlobalVariableHandle
}

func (ExprGlobalVariable) expressionKind() {}

// ExprLocalVariable is a pointer to Function.LocalVars[Variable].
type ExprLocalVariable struct {
	Variable uint32
}

func (ExprLocalVariable) expressionKind() {}

// ExprLoad reads through Pointer.
type ExprLoad struct {
	Pointer ExpressionHandle
}

func (ExprLoad) expressionKind() {}

// ExprImageSample samples a sampled or depth image.
type ExprImageSample struct {
	Image      ExpressionHandle
	Sampler    ExpressionHandle
	Gather     *SwizzleComponent
	Coordinate ExpressionHandle
	ArrayIndex *ExpressionHandle
	Offset     *ExpressionHandle
	Level      SampleLevel
	DepthRef   *ExpressionHandle
}

func (ExprImageSample) expressionKind() {}

// SampleLevel selects the mip level used by ExprImageSample.
type SampleLevel interface {
	sampleLevel()
}

// SampleLevelAuto derives the level from implicit derivatives.
type SampleLevelAuto struct{}

func (SampleLevelAuto) sampleLevel() {}

// SampleLevelZero always samples level 0.
type SampleLevelZero struct{}

func (SampleLevelZero) sampleLevel() {}

// SampleLevelExact samples an explicit level.
type SampleLevelExact struct {
	Level ExpressionHandle
}

func (SampleLevelExact) sampleLevel() {}

// SampleLevelBias offsets the implicit level.
type SampleLevelBias struct {
	Bias ExpressionHandle
}

func (SampleLevelBias) sampleLevel() {}

// SampleLevelGradient uses explicit derivatives.
type SampleLevelGradient struct {
	X ExpressionHandle
	Y ExpressionHandle
}

func (SampleLevelGradient) sampleLevel() {}

// ExprImageLoad fetches a single texel without a sampler.
type ExprImageLoad struct {
	Image      ExpressionHandle
	Coordinate ExpressionHandle
	ArrayIndex *ExpressionHandle
	Sample     *ExpressionHandle
	Level      *ExpressionHandle
}

func (ExprImageLoad) expressionKind() {}

// ExprImageQuery reads image metadata.
type ExprImageQuery struct {
	Image ExpressionHandle
	Query ImageQuery
}

func (ExprImageQuery) expressionKind() {}

// ImageQuery selects what ExprImageQuery returns.
type ImageQuery interface {
	imageQuery()
}

// ImageQuerySize returns the extent at Level, or level 0 when nil.
type ImageQuerySize struct {
	Level *ExpressionHandle
}

func (ImageQuerySize) imageQuery() {}

type ImageQueryNumLevels struct{}

func (ImageQueryNumLevels) imageQuery() {}

type ImageQueryNumLayers struct{}

func (ImageQueryNumLayers) imageQuery() {}

type ImageQueryNumSamples struct{}

func (ImageQueryNumSamples) imageQuery() {}

// ExprUnary applies Op to Expr.
type ExprUnary struct {
	Op   UnaryOperator
	Expr ExpressionHandle
}

func (ExprUnary) expressionKind() {}

// UnaryOperator enumerates unary operators.
type UnaryOperator uint8

const (
	UnaryNegate UnaryOperator = iota
	UnaryLogicalNot
	UnaryBitwiseNot
)

// ExprBinary applies Op to Left and Right.
type ExprBinary struct {
	Op    BinaryOperator
	Left  ExpressionHandle
	Right ExpressionHandle
}

func (ExprBinary) expressionKind() {}

// BinaryOperator enumerates binary operators. Signedness comes from the
// operand types, so SPIR-V's S/U opcode pairs collapse onto one operator.
type BinaryOperator uint8

const (
	BinaryAdd BinaryOperator = iota
	BinarySubtract
	BinaryMultiply
	BinaryDivide
	BinaryModulo
	BinaryEqual
	BinaryNotEqual
	BinaryLess
	BinaryLessEqual
	BinaryGreater
	BinaryGreaterEqual
	BinaryAnd
	BinaryExclusiveOr
	BinaryInclusiveOr
	BinaryLogicalAnd
	BinaryLogicalOr
	BinaryShiftLeft
	BinaryShiftRight // arithmetic for signed operands
)

// ExprSelect is Condition ? Accept : Reject, componentwise for vectors.
type ExprSelect struct {
	Condition ExpressionHandle
	Accept    ExpressionHandle
	Reject    ExpressionHandle
}

func (ExprSelect) expressionKind() {}

// ExprDerivative is a screen-space derivative of Expr.
type ExprDerivative struct {
	Axis    DerivativeAxis
	Control DerivativeControl
	Expr    ExpressionHandle
}

func (ExprDerivative) expressionKind() {}

// DerivativeAxis selects the derivative direction.
type DerivativeAxis uint8

const (
	DerivativeX DerivativeAxis = iota
	DerivativeY
	DerivativeWidth
)

// DerivativeControl is the precision hint of a derivative.
type DerivativeControl uint8

const (
	DerivativeCoarse DerivativeControl = iota
	DerivativeFine
	DerivativeNone
)

// ExprRelational applies a boolean test.
type ExprRelational struct {
	Fun      RelationalFunction
	Argument ExpressionHandle
}

func (ExprRelational) expressionKind() {}

// RelationalFunction enumerates boolean tests.
type RelationalFunction uint8

const (
	RelationalAll RelationalFunction = iota
	RelationalAny
	RelationalIsNan
	RelationalIsInf
)

// ExprMath applies a built-in math function to up to four arguments.
type ExprMath struct {
	Fun  MathFunction
	Arg  ExpressionHandle
	Arg1 *ExpressionHandle
	Arg2 *ExpressionHandle
	Arg3 *ExpressionHandle
}

func (ExprMath) expressionKind() {}

// MathFunction enumerates built-in math functions.
type MathFunction uint8

const (
	MathAbs MathFunction = iota
	MathMin
	MathMax
	MathClamp
	MathSaturate
	MathCos
	MathCosh
	MathSin
	MathSinh
	MathTan
	MathTanh
	MathAcos
	MathAsin
	MathAtan
	MathAtan2
	MathAsinh
	MathAcosh
	MathAtanh
	MathRadians
	MathDegrees
	MathCeil
	MathFloor
	MathRound
	MathFract
	MathTrunc
	MathModf
	MathFrexp
	MathLdexp
	MathExp
	MathExp2
	MathLog
	MathLog2
	MathPow
	MathDot
	MathOuter
	MathCross
	MathDistance
	MathLength
	MathNormalize
	MathFaceForward
	MathReflect
	MathRefract
	MathSign
	MathFma
	MathMix
	MathStep
	MathSmoothStep
	MathSqrt
	MathInverseSqrt
	MathInverse
	MathTranspose
	MathDeterminant
	MathCountOneBits
	MathReverseBits
	MathExtractBits
	MathInsertBits
	MathFirstTrailingBit
	MathFirstLeadingBit
	MathPack4x8snorm
	MathPack4x8unorm
	MathPack2x16snorm
	MathPack2x16unorm
	MathPack2x16float
	MathUnpack4x8snorm
	MathUnpack4x8unorm
	MathUnpack2x16snorm
	MathUnpack2x16unorm
	MathUnpack2x16float
)

// ExprAs reinterprets (Convert == nil) or converts Expr to Kind.
type ExprAs struct {
	Expr    ExpressionHandle
	Kind    ScalarKind
	Convert *uint8 // target width in bytes
}

func (ExprAs) expressionKind() {}

// ExprCallResult is the value returned by the StmtCall naming it.
type ExprCallResult struct {
	Function FunctionHandle
}

func (ExprCallResult) expressionKind() {}

// ExprArrayLength is the element count of a runtime-sized array,
// given a pointer to it.
type ExprArrayLength struct {
	Array ExpressionHandle
}

func (ExprArrayLength) expressionKind() {}

// ExprAtomicResult is the previous value produced by a StmtAtomic.
// Comparison is set for compare-exchange, whose result is the
// {old_value, exchanged} pair.
type ExprAtomicResult struct {
	Type       TypeHandle
	Comparison bool
}

func (ExprAtomicResult) expressionKind() {}
