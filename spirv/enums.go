package spirv

import (
	"fmt"
	"sort"
	"strings"
)

// Capability represents a SPIR-V capability.
type Capability uint32

const (
	CapabilityMatrix                            Capability = 0
	CapabilityShader                            Capability = 1
	CapabilityGeometry                          Capability = 2
	CapabilityTessellation                      Capability = 3
	CapabilityAddresses                         Capability = 4
	CapabilityLinkage                           Capability = 5
	CapabilityKernel                            Capability = 6
	CapabilityVector16                          Capability = 7
	CapabilityFloat16Buffer                     Capability = 8
	CapabilityFloat16                           Capability = 9
	CapabilityFloat64                           Capability = 10
	CapabilityInt64                             Capability = 11
	CapabilityInt64Atomics                      Capability = 12
	CapabilityImageBasic                        Capability = 13
	CapabilityImageReadWrite                    Capability = 14
	CapabilityImageMipmap                       Capability = 15
	CapabilityPipes                             Capability = 17
	CapabilityGroups                            Capability = 18
	CapabilityDeviceEnqueue                     Capability = 19
	CapabilityLiteralSampler                    Capability = 20
	CapabilityAtomicStorage                     Capability = 21
	CapabilityInt16                             Capability = 22
	CapabilityTessellationPointSize             Capability = 23
	CapabilityGeometryPointSize                 Capability = 24
	CapabilityImageGatherExtended               Capability = 25
	CapabilityStorageImageMultisample           Capability = 27
	CapabilityUniformBufferArrayDynamicIndexing Capability = 28
	CapabilitySampledImageArrayDynamicIndexing  Capability = 29
	CapabilityStorageBufferArrayDynamicIndexing Capability = 30
	CapabilityStorageImageArrayDynamicIndexing  Capability = 31
	CapabilityClipDistance                      Capability = 32
	CapabilityCullDistance                      Capability = 33
	CapabilityImageCubeArray                    Capability = 34
	CapabilitySampleRateShading                 Capability = 35
	CapabilityImageRect                         Capability = 36
	CapabilitySampledRect                       Capability = 37
	CapabilityGenericPointer                    Capability = 38
	CapabilityInt8                              Capability = 39
	CapabilityInputAttachment                   Capability = 40
	CapabilitySparseResidency                   Capability = 41
	CapabilityMinLod                            Capability = 42
	CapabilitySampled1D                         Capability = 43
	CapabilityImage1D                           Capability = 44
	CapabilitySampledCubeArray                  Capability = 45
	CapabilitySampledBuffer                     Capability = 46
	CapabilityImageBuffer                       Capability = 47
	CapabilityImageMSArray                      Capability = 48
	CapabilityStorageImageExtendedFormats       Capability = 49
	CapabilityImageQuery                        Capability = 50
	CapabilityDerivativeControl                 Capability = 51
	CapabilityInterpolationFunction             Capability = 52
	CapabilityTransformFeedback                 Capability = 53
	CapabilityGeometryStreams                   Capability = 54
	CapabilityStorageImageReadWithoutFormat     Capability = 55
	CapabilityStorageImageWriteWithoutFormat    Capability = 56
	CapabilityMultiViewport                     Capability = 57
	CapabilityGroupNonUniform                   Capability = 61
	CapabilityGroupNonUniformVote               Capability = 62
	CapabilityGroupNonUniformArithmetic         Capability = 63
	CapabilityGroupNonUniformBallot             Capability = 64
	CapabilityShaderLayer                       Capability = 69
	CapabilityShaderViewportIndex               Capability = 70
	CapabilityDrawParameters                    Capability = 4427
	CapabilityStorageBuffer16BitAccess          Capability = 4433
	CapabilityMultiView                         Capability = 4439
	CapabilityVariablePointersStorageBuffer     Capability = 4441
	CapabilityVariablePointers                  Capability = 4442
	CapabilityStorageBuffer8BitAccess           Capability = 4448
	CapabilityRayQueryKHR                       Capability = 4472
	CapabilityRayTracingKHR                     Capability = 4479
	CapabilityShaderNonUniform                  Capability = 5301
	CapabilityRuntimeDescriptorArray            Capability = 5302
	CapabilityVulkanMemoryModel                 Capability = 5345
	CapabilityPhysicalStorageBufferAddresses    Capability = 5347
	CapabilityDemoteToHelperInvocation          Capability = 5379
)

// supportedCapabilities are the capabilities whose features the frontend
// can translate.
var supportedCapabilities = map[Capability]struct{}{
	CapabilityMatrix:                         {},
	CapabilityShader:                         {},
	CapabilityFloat16:                        {},
	CapabilityFloat64:                        {},
	CapabilityInt8:                           {},
	CapabilityInt16:                          {},
	CapabilityInt64:                          {},
	CapabilityInt64Atomics:                   {},
	CapabilityClipDistance:                   {},
	CapabilityCullDistance:                   {},
	CapabilitySampleRateShading:              {},
	CapabilityDerivativeControl:              {},
	CapabilityImageQuery:                     {},
	CapabilitySampled1D:                      {},
	CapabilityImage1D:                        {},
	CapabilitySampledCubeArray:               {},
	CapabilityImageCubeArray:                 {},
	CapabilityImageMSArray:                   {},
	CapabilityStorageImageExtendedFormats:    {},
	CapabilityStorageImageReadWithoutFormat:  {},
	CapabilityStorageImageWriteWithoutFormat: {},
	CapabilityDrawParameters:                 {},
	CapabilityMultiView:                      {},
	CapabilityVulkanMemoryModel:              {},
}

// Supported reports whether modules declaring c can be translated.
func (c Capability) Supported() bool {
	_, ok := supportedCapabilities[c]
	return ok
}

// supportedExtensions lists the extensions that change nothing the
// frontend relies on.
var supportedExtensions = map[string]struct{}{
	"SPV_KHR_storage_buffer_storage_class": {},
	"SPV_KHR_vulkan_memory_model":          {},
	"SPV_KHR_multiview":                    {},
	"SPV_KHR_shader_draw_parameters":       {},
	"SPV_KHR_non_semantic_info":            {},
	"SPV_GOOGLE_decorate_string":           {},
	"SPV_GOOGLE_hlsl_functionality1":       {},
	"SPV_GOOGLE_user_type":                 {},
}

// ExtensionSupported reports whether the named extension is tolerated.
func ExtensionSupported(name string) bool {
	_, ok := supportedExtensions[name]
	return ok
}

// GLSLStd450 is the only extended instruction set the frontend imports.
const GLSLStd450 = "GLSL.std.450"

// AddressingModel represents a SPIR-V addressing model.
type AddressingModel uint32

const (
	AddressingModelLogical                 AddressingModel = 0
	AddressingModelPhysical32              AddressingModel = 1
	AddressingModelPhysical64              AddressingModel = 2
	AddressingModelPhysicalStorageBuffer64 AddressingModel = 5348
)

// MemoryModel represents a SPIR-V memory model.
type MemoryModel uint32

const (
	MemoryModelSimple  MemoryModel = 0
	MemoryModelGLSL450 MemoryModel = 1
	MemoryModelOpenCL  MemoryModel = 2
	MemoryModelVulkan  MemoryModel = 3
)

// ExecutionModel represents a SPIR-V execution model.
type ExecutionModel uint32

const (
	ExecutionModelVertex                 ExecutionModel = 0
	ExecutionModelTessellationControl    ExecutionModel = 1
	ExecutionModelTessellationEvaluation ExecutionModel = 2
	ExecutionModelGeometry               ExecutionModel = 3
	ExecutionModelFragment               ExecutionModel = 4
	ExecutionModelGLCompute              ExecutionModel = 5
	ExecutionModelKernel                 ExecutionModel = 6
)

// ExecutionMode represents a SPIR-V execution mode.
type ExecutionMode uint32

const (
	ExecutionModeInvocations        ExecutionMode = 0
	ExecutionModePixelCenterInteger ExecutionMode = 6
	ExecutionModeOriginUpperLeft    ExecutionMode = 7
	ExecutionModeOriginLowerLeft    ExecutionMode = 8
	ExecutionModeEarlyFragmentTests ExecutionMode = 9
	ExecutionModeDepthReplacing     ExecutionMode = 12
	ExecutionModeDepthGreater       ExecutionMode = 14
	ExecutionModeDepthLess          ExecutionMode = 15
	ExecutionModeDepthUnchanged     ExecutionMode = 16
	ExecutionModeLocalSize          ExecutionMode = 17
	ExecutionModeLocalSizeHint      ExecutionMode = 18
	ExecutionModeInputPoints        ExecutionMode = 19
	ExecutionModeTriangles          ExecutionMode = 22
	ExecutionModeOutputVertices     ExecutionMode = 26
	ExecutionModeLocalSizeID        ExecutionMode = 38
)

// StorageClass represents SPIR-V storage classes.
type StorageClass uint32

const (
	StorageClassUniformConstant       StorageClass = 0
	StorageClassInput                 StorageClass = 1
	StorageClassUniform               StorageClass = 2
	StorageClassOutput                StorageClass = 3
	StorageClassWorkgroup             StorageClass = 4
	StorageClassCrossWorkgroup        StorageClass = 5
	StorageClassPrivate               StorageClass = 6
	StorageClassFunction              StorageClass = 7
	StorageClassGeneric               StorageClass = 8
	StorageClassPushConstant          StorageClass = 9
	StorageClassAtomicCounter         StorageClass = 10
	StorageClassImage                 StorageClass = 11
	StorageClassStorageBuffer         StorageClass = 12
	StorageClassPhysicalStorageBuffer StorageClass = 5349
)

// Decoration represents SPIR-V decorations.
type Decoration uint32

const (
	DecorationRelaxedPrecision Decoration = 0
	DecorationSpecID           Decoration = 1
	DecorationBlock            Decoration = 2
	DecorationBufferBlock      Decoration = 3
	DecorationRowMajor         Decoration = 4
	DecorationColMajor         Decoration = 5
	DecorationArrayStride      Decoration = 6
	DecorationMatrixStride     Decoration = 7
	DecorationGLSLShared       Decoration = 8
	DecorationGLSLPacked       Decoration = 9
	DecorationCPacked          Decoration = 10
	DecorationBuiltIn          Decoration = 11
	DecorationNoPerspective    Decoration = 13
	DecorationFlat             Decoration = 14
	DecorationPatch            Decoration = 15
	DecorationCentroid         Decoration = 16
	DecorationSample           Decoration = 17
	DecorationInvariant        Decoration = 18
	DecorationRestrict         Decoration = 19
	DecorationAliased          Decoration = 20
	DecorationVolatile         Decoration = 21
	DecorationConstant         Decoration = 22
	DecorationCoherent         Decoration = 23
	DecorationNonWritable      Decoration = 24
	DecorationNonReadable      Decoration = 25
	DecorationUniform          Decoration = 26
	DecorationLocation         Decoration = 30
	DecorationComponent        Decoration = 31
	DecorationIndex            Decoration = 32
	DecorationBinding          Decoration = 33
	DecorationDescriptorSet    Decoration = 34
	DecorationOffset           Decoration = 35
	DecorationNoContraction    Decoration = 42
	DecorationNonUniform       Decoration = 5300
	DecorationUserSemantic     Decoration = 5635
	DecorationUserTypeGOOGLE   Decoration = 5636
)

// BuiltIn represents SPIR-V built-in variables.
type BuiltIn uint32

const (
	BuiltInPosition                  BuiltIn = 0
	BuiltInPointSize                 BuiltIn = 1
	BuiltInClipDistance              BuiltIn = 3
	BuiltInCullDistance              BuiltIn = 4
	BuiltInVertexID                  BuiltIn = 5
	BuiltInInstanceID                BuiltIn = 6
	BuiltInPrimitiveID               BuiltIn = 7
	BuiltInInvocationID              BuiltIn = 8
	BuiltInLayer                     BuiltIn = 9
	BuiltInViewportIndex             BuiltIn = 10
	BuiltInFragCoord                 BuiltIn = 15
	BuiltInPointCoord                BuiltIn = 16
	BuiltInFrontFacing               BuiltIn = 17
	BuiltInSampleID                  BuiltIn = 18
	BuiltInSamplePosition            BuiltIn = 19
	BuiltInSampleMask                BuiltIn = 20
	BuiltInFragDepth                 BuiltIn = 22
	BuiltInHelperInvocation          BuiltIn = 23
	BuiltInNumWorkgroups             BuiltIn = 24
	BuiltInWorkgroupSize             BuiltIn = 25
	BuiltInWorkgroupID               BuiltIn = 26
	BuiltInLocalInvocationID         BuiltIn = 27
	BuiltInGlobalInvocationID        BuiltIn = 28
	BuiltInLocalInvocationIndex      BuiltIn = 29
	BuiltInSubgroupSize              BuiltIn = 36
	BuiltInNumSubgroups              BuiltIn = 38
	BuiltInSubgroupID                BuiltIn = 40
	BuiltInSubgroupLocalInvocationID BuiltIn = 41
	BuiltInVertexIndex               BuiltIn = 42
	BuiltInInstanceIndex             BuiltIn = 43
	BuiltInBaseVertex                BuiltIn = 4424
	BuiltInBaseInstance              BuiltIn = 4425
	BuiltInDrawIndex                 BuiltIn = 4426
	BuiltInViewIndex                 BuiltIn = 4440
)

// Dim is the dimensionality of an OpTypeImage.
type Dim uint32

const (
	Dim1D          Dim = 0
	Dim2D          Dim = 1
	Dim3D          Dim = 2
	DimCube        Dim = 3
	DimRect        Dim = 4
	DimBuffer      Dim = 5
	DimSubpassData Dim = 6
)

// ImageFormat is the texel format of an OpTypeImage.
type ImageFormat uint32

const (
	ImageFormatUnknown      ImageFormat = 0
	ImageFormatRgba32f      ImageFormat = 1
	ImageFormatRgba16f      ImageFormat = 2
	ImageFormatR32f         ImageFormat = 3
	ImageFormatRgba8        ImageFormat = 4
	ImageFormatRgba8Snorm   ImageFormat = 5
	ImageFormatRg32f        ImageFormat = 6
	ImageFormatRg16f        ImageFormat = 7
	ImageFormatR11fG11fB10f ImageFormat = 8
	ImageFormatR16f         ImageFormat = 9
	ImageFormatRgba16       ImageFormat = 10
	ImageFormatRgb10A2      ImageFormat = 11
	ImageFormatRg16         ImageFormat = 12
	ImageFormatRg8          ImageFormat = 13
	ImageFormatR16          ImageFormat = 14
	ImageFormatR8           ImageFormat = 15
	ImageFormatRgba16Snorm  ImageFormat = 16
	ImageFormatRg16Snorm    ImageFormat = 17
	ImageFormatRg8Snorm     ImageFormat = 18
	ImageFormatR16Snorm     ImageFormat = 19
	ImageFormatR8Snorm      ImageFormat = 20
	ImageFormatRgba32i      ImageFormat = 21
	ImageFormatRgba16i      ImageFormat = 22
	ImageFormatRgba8i       ImageFormat = 23
	ImageFormatR32i         ImageFormat = 24
	ImageFormatRg32i        ImageFormat = 25
	ImageFormatRg16i        ImageFormat = 26
	ImageFormatRg8i         ImageFormat = 27
	ImageFormatR16i         ImageFormat = 28
	ImageFormatR8i          ImageFormat = 29
	ImageFormatRgba32ui     ImageFormat = 30
	ImageFormatRgba16ui     ImageFormat = 31
	ImageFormatRgba8ui      ImageFormat = 32
	ImageFormatR32ui        ImageFormat = 33
	ImageFormatRgb10a2ui    ImageFormat = 34
	ImageFormatRg32ui       ImageFormat = 35
	ImageFormatRg16ui       ImageFormat = 36
	ImageFormatRg8ui        ImageFormat = 37
	ImageFormatR16ui        ImageFormat = 38
	ImageFormatR8ui         ImageFormat = 39
)

// FunctionControl is the control mask of OpFunction.
type FunctionControl uint32

const (
	FunctionControlNone       FunctionControl = 0
	FunctionControlInline     FunctionControl = 0x1
	FunctionControlDontInline FunctionControl = 0x2
	FunctionControlPure       FunctionControl = 0x4
	FunctionControlConst      FunctionControl = 0x8
)

// SelectionControl is the control mask of OpSelectionMerge.
type SelectionControl uint32

const (
	SelectionControlNone        SelectionControl = 0
	SelectionControlFlatten     SelectionControl = 0x1
	SelectionControlDontFlatten SelectionControl = 0x2
)

// LoopControl is the control mask of OpLoopMerge.
type LoopControl uint32

const (
	LoopControlNone       LoopControl = 0
	LoopControlUnroll     LoopControl = 0x1
	LoopControlDontUnroll LoopControl = 0x2
)

// ImageOperands is the optional operand mask of image instructions.
type ImageOperands uint32

const (
	ImageOperandsNone         ImageOperands = 0
	ImageOperandsBias         ImageOperands = 0x1
	ImageOperandsLod          ImageOperands = 0x2
	ImageOperandsGrad         ImageOperands = 0x4
	ImageOperandsConstOffset  ImageOperands = 0x8
	ImageOperandsOffset       ImageOperands = 0x10
	ImageOperandsConstOffsets ImageOperands = 0x20
	ImageOperandsSample       ImageOperands = 0x40
	ImageOperandsMinLod       ImageOperands = 0x80
)

// MemoryAccess is the optional operand mask of OpLoad and OpStore.
type MemoryAccess uint32

const (
	MemoryAccessNone        MemoryAccess = 0
	MemoryAccessVolatile    MemoryAccess = 0x1
	MemoryAccessAligned     MemoryAccess = 0x2
	MemoryAccessNontemporal MemoryAccess = 0x4
)

// Scope is an execution or memory scope operand.
type Scope uint32

const (
	ScopeCrossDevice Scope = 0
	ScopeDevice      Scope = 1
	ScopeWorkgroup   Scope = 2
	ScopeSubgroup    Scope = 3
	ScopeInvocation  Scope = 4
)

// MemorySemantics is the memory semantics mask of barriers and atomics.
type MemorySemantics uint32

const (
	MemorySemanticsNone                   MemorySemantics = 0
	MemorySemanticsAcquire                MemorySemantics = 0x2
	MemorySemanticsRelease                MemorySemantics = 0x4
	MemorySemanticsAcquireRelease         MemorySemantics = 0x8
	MemorySemanticsSequentiallyConsistent MemorySemantics = 0x10
	MemorySemanticsUniformMemory          MemorySemantics = 0x40
	MemorySemanticsSubgroupMemory         MemorySemantics = 0x80
	MemorySemanticsWorkgroupMemory        MemorySemantics = 0x100
	MemorySemanticsCrossWorkgroupMemory   MemorySemantics = 0x200
	MemorySemanticsAtomicCounterMemory    MemorySemantics = 0x400
	MemorySemanticsImageMemory            MemorySemantics = 0x800
)

// SourceLanguage is the language named by OpSource.
type SourceLanguage uint32

const (
	SourceLanguageUnknown   SourceLanguage = 0
	SourceLanguageESSL      SourceLanguage = 1
	SourceLanguageGLSL      SourceLanguage = 2
	SourceLanguageOpenCLC   SourceLanguage = 3
	SourceLanguageOpenCLCPP SourceLanguage = 4
	SourceLanguageHLSL      SourceLanguage = 5
)

// GLSLInstruction is an instruction number of the GLSL.std.450 set.
type GLSLInstruction uint32

const (
	GLSLRound GLSLInstruction = 1 + iota
	GLSLRoundEven
	GLSLTrunc
	GLSLFAbs
	GLSLSAbs
	GLSLFSign
	GLSLSSign
	GLSLFloor
	GLSLCeil
	GLSLFract
	GLSLRadians
	GLSLDegrees
	GLSLSin
	GLSLCos
	GLSLTan
	GLSLAsin
	GLSLAcos
	GLSLAtan
	GLSLSinh
	GLSLCosh
	GLSLTanh
	GLSLAsinh
	GLSLAcosh
	GLSLAtanh
	GLSLAtan2
	GLSLPow
	GLSLExp
	GLSLLog
	GLSLExp2
	GLSLLog2
	GLSLSqrt
	GLSLInverseSqrt
	GLSLDeterminant
	GLSLMatrixInverse
	GLSLModf
	GLSLModfStruct
	GLSLFMin
	GLSLUMin
	GLSLSMin
	GLSLFMax
	GLSLUMax
	GLSLSMax
	GLSLFClamp
	GLSLUClamp
	GLSLSClamp
	GLSLFMix
	GLSLIMix
	GLSLStep
	GLSLSmoothStep
	GLSLFma
	GLSLFrexp
	GLSLFrexpStruct
	GLSLLdexp
	GLSLPackSnorm4x8
	GLSLPackUnorm4x8
	GLSLPackSnorm2x16
	GLSLPackUnorm2x16
	GLSLPackHalf2x16
	GLSLPackDouble2x32
	GLSLUnpackSnorm2x16
	GLSLUnpackUnorm2x16
	GLSLUnpackHalf2x16
	GLSLUnpackSnorm4x8
	GLSLUnpackUnorm4x8
	GLSLUnpackDouble2x32
	GLSLLength
	GLSLDistance
	GLSLCross
	GLSLNormalize
	GLSLFaceForward
	GLSLReflect
	GLSLRefract
	GLSLFindILsb
	GLSLFindSMsb
	GLSLFindUMsb
	GLSLInterpolateAtCentroid
	GLSLInterpolateAtSample
	GLSLInterpolateAtOffset
	GLSLNMin
	GLSLNMax
	GLSLNClamp
)

var glslNames = []string{
	"Round", "RoundEven", "Trunc", "FAbs", "SAbs", "FSign", "SSign", "Floor", "Ceil", "Fract",
	"Radians", "Degrees", "Sin", "Cos", "Tan", "Asin", "Acos", "Atan", "Sinh", "Cosh", "Tanh",
	"Asinh", "Acosh", "Atanh", "Atan2", "Pow", "Exp", "Log", "Exp2", "Log2", "Sqrt", "InverseSqrt",
	"Determinant", "MatrixInverse", "Modf", "ModfStruct", "FMin", "UMin", "SMin", "FMax", "UMax",
	"SMax", "FClamp", "UClamp", "SClamp", "FMix", "IMix", "Step", "SmoothStep", "Fma", "Frexp",
	"FrexpStruct", "Ldexp", "PackSnorm4x8", "PackUnorm4x8", "PackSnorm2x16", "PackUnorm2x16",
	"PackHalf2x16", "PackDouble2x32", "UnpackSnorm2x16", "UnpackUnorm2x16", "UnpackHalf2x16",
	"UnpackSnorm4x8", "UnpackUnorm4x8", "UnpackDouble2x32", "Length", "Distance", "Cross",
	"Normalize", "FaceForward", "Reflect", "Refract", "FindILsb", "FindSMsb", "FindUMsb",
	"InterpolateAtCentroid", "InterpolateAtSample", "InterpolateAtOffset", "NMin", "NMax", "NClamp",
}

// EnumKind names an operand kind with symbolic enumerants.
type EnumKind uint8

const (
	KindCapability EnumKind = iota
	KindAddressingModel
	KindMemoryModel
	KindExecutionModel
	KindExecutionMode
	KindStorageClass
	KindDecoration
	KindBuiltIn
	KindDim
	KindImageFormat
	KindFunctionControl
	KindSelectionControl
	KindLoopControl
	KindImageOperands
	KindMemoryAccess
	KindSourceLanguage
	KindGLSLInstruction
)

type enumTable struct {
	flags  bool
	names  map[uint32]string
	values map[string]uint32
}

func newEnumTable(flags bool, entries map[string]uint32) *enumTable {
	t := &enumTable{flags: flags, names: make(map[uint32]string, len(entries)), values: entries}
	for name, v := range entries {
		t.names[v] = name
	}
	return t
}

var enumTables = map[EnumKind]*enumTable{
	KindCapability: newEnumTable(false, map[string]uint32{
		"Matrix": 0, "Shader": 1, "Geometry": 2, "Tessellation": 3, "Addresses": 4, "Linkage": 5,
		"Kernel": 6, "Vector16": 7, "Float16Buffer": 8, "Float16": 9, "Float64": 10, "Int64": 11,
		"Int64Atomics": 12, "ImageBasic": 13, "ImageReadWrite": 14, "ImageMipmap": 15, "Pipes": 17,
		"Groups": 18, "DeviceEnqueue": 19, "LiteralSampler": 20, "AtomicStorage": 21, "Int16": 22,
		"TessellationPointSize": 23, "GeometryPointSize": 24, "ImageGatherExtended": 25,
		"StorageImageMultisample": 27, "UniformBufferArrayDynamicIndexing": 28,
		"SampledImageArrayDynamicIndexing": 29, "StorageBufferArrayDynamicIndexing": 30,
		"StorageImageArrayDynamicIndexing": 31, "ClipDistance": 32, "CullDistance": 33,
		"ImageCubeArray": 34, "SampleRateShading": 35, "ImageRect": 36, "SampledRect": 37,
		"GenericPointer": 38, "Int8": 39, "InputAttachment": 40, "SparseResidency": 41, "MinLod": 42,
		"Sampled1D": 43, "Image1D": 44, "SampledCubeArray": 45, "SampledBuffer": 46, "ImageBuffer": 47,
		"ImageMSArray": 48, "StorageImageExtendedFormats": 49, "ImageQuery": 50,
		"DerivativeControl": 51, "InterpolationFunction": 52, "TransformFeedback": 53,
		"GeometryStreams": 54, "StorageImageReadWithoutFormat": 55, "StorageImageWriteWithoutFormat": 56,
		"MultiViewport": 57, "GroupNonUniform": 61, "GroupNonUniformVote": 62,
		"GroupNonUniformArithmetic": 63, "GroupNonUniformBallot": 64, "ShaderLayer": 69,
		"ShaderViewportIndex": 70, "DrawParameters": 4427, "StorageBuffer16BitAccess": 4433,
		"MultiView": 4439, "VariablePointersStorageBuffer": 4441, "VariablePointers": 4442,
		"StorageBuffer8BitAccess": 4448, "RayQueryKHR": 4472, "RayTracingKHR": 4479,
		"ShaderNonUniform": 5301, "RuntimeDescriptorArray": 5302, "VulkanMemoryModel": 5345,
		"PhysicalStorageBufferAddresses": 5347, "DemoteToHelperInvocation": 5379,
	}),
	KindAddressingModel: newEnumTable(false, map[string]uint32{
		"Logical": 0, "Physical32": 1, "Physical64": 2, "PhysicalStorageBuffer64": 5348,
	}),
	KindMemoryModel: newEnumTable(false, map[string]uint32{
		"Simple": 0, "GLSL450": 1, "OpenCL": 2, "Vulkan": 3,
	}),
	KindExecutionModel: newEnumTable(false, map[string]uint32{
		"Vertex": 0, "TessellationControl": 1, "TessellationEvaluation": 2, "Geometry": 3,
		"Fragment": 4, "GLCompute": 5, "Kernel": 6,
	}),
	KindExecutionMode: newEnumTable(false, map[string]uint32{
		"Invocations": 0, "PixelCenterInteger": 6, "OriginUpperLeft": 7, "OriginLowerLeft": 8,
		"EarlyFragmentTests": 9, "DepthReplacing": 12, "DepthGreater": 14, "DepthLess": 15,
		"DepthUnchanged": 16, "LocalSize": 17, "LocalSizeHint": 18, "InputPoints": 19,
		"Triangles": 22, "OutputVertices": 26, "LocalSizeId": 38,
	}),
	KindStorageClass: newEnumTable(false, map[string]uint32{
		"UniformConstant": 0, "Input": 1, "Uniform": 2, "Output": 3, "Workgroup": 4,
		"CrossWorkgroup": 5, "Private": 6, "Function": 7, "Generic": 8, "PushConstant": 9,
		"AtomicCounter": 10, "Image": 11, "StorageBuffer": 12, "PhysicalStorageBuffer": 5349,
	}),
	KindDecoration: newEnumTable(false, map[string]uint32{
		"RelaxedPrecision": 0, "SpecId": 1, "Block": 2, "BufferBlock": 3, "RowMajor": 4,
		"ColMajor": 5, "ArrayStride": 6, "MatrixStride": 7, "GLSLShared": 8, "GLSLPacked": 9,
		"CPacked": 10, "BuiltIn": 11, "NoPerspective": 13, "Flat": 14, "Patch": 15, "Centroid": 16,
		"Sample": 17, "Invariant": 18, "Restrict": 19, "Aliased": 20, "Volatile": 21, "Constant": 22,
		"Coherent": 23, "NonWritable": 24, "NonReadable": 25, "Uniform": 26, "Location": 30,
		"Component": 31, "Index": 32, "Binding": 33, "DescriptorSet": 34, "Offset": 35,
		"NoContraction": 42, "NonUniform": 5300, "UserSemantic": 5635, "UserTypeGOOGLE": 5636,
	}),
	KindBuiltIn: newEnumTable(false, map[string]uint32{
		"Position": 0, "PointSize": 1, "ClipDistance": 3, "CullDistance": 4, "VertexId": 5,
		"InstanceId": 6, "PrimitiveId": 7, "InvocationId": 8, "Layer": 9, "ViewportIndex": 10,
		"FragCoord": 15, "PointCoord": 16, "FrontFacing": 17, "SampleId": 18, "SamplePosition": 19,
		"SampleMask": 20, "FragDepth": 22, "HelperInvocation": 23, "NumWorkgroups": 24,
		"WorkgroupSize": 25, "WorkgroupId": 26, "LocalInvocationId": 27, "GlobalInvocationId": 28,
		"LocalInvocationIndex": 29, "SubgroupSize": 36, "NumSubgroups": 38, "SubgroupId": 40,
		"SubgroupLocalInvocationId": 41, "VertexIndex": 42, "InstanceIndex": 43, "BaseVertex": 4424,
		"BaseInstance": 4425, "DrawIndex": 4426, "ViewIndex": 4440,
	}),
	KindDim: newEnumTable(false, map[string]uint32{
		"1D": 0, "2D": 1, "3D": 2, "Cube": 3, "Rect": 4, "Buffer": 5, "SubpassData": 6,
	}),
	KindImageFormat: newEnumTable(false, map[string]uint32{
		"Unknown": 0, "Rgba32f": 1, "Rgba16f": 2, "R32f": 3, "Rgba8": 4, "Rgba8Snorm": 5, "Rg32f": 6,
		"Rg16f": 7, "R11fG11fB10f": 8, "R16f": 9, "Rgba16": 10, "Rgb10A2": 11, "Rg16": 12, "Rg8": 13,
		"R16": 14, "R8": 15, "Rgba16Snorm": 16, "Rg16Snorm": 17, "Rg8Snorm": 18, "R16Snorm": 19,
		"R8Snorm": 20, "Rgba32i": 21, "Rgba16i": 22, "Rgba8i": 23, "R32i": 24, "Rg32i": 25,
		"Rg16i": 26, "Rg8i": 27, "R16i": 28, "R8i": 29, "Rgba32ui": 30, "Rgba16ui": 31,
		"Rgba8ui": 32, "R32ui": 33, "Rgb10a2ui": 34, "Rg32ui": 35, "Rg16ui": 36, "Rg8ui": 37,
		"R16ui": 38, "R8ui": 39,
	}),
	KindFunctionControl: newEnumTable(true, map[string]uint32{
		"None": 0, "Inline": 0x1, "DontInline": 0x2, "Pure": 0x4, "Const": 0x8,
	}),
	KindSelectionControl: newEnumTable(true, map[string]uint32{
		"None": 0, "Flatten": 0x1, "DontFlatten": 0x2,
	}),
	KindLoopControl: newEnumTable(true, map[string]uint32{
		"None": 0, "Unroll": 0x1, "DontUnroll": 0x2,
	}),
	KindImageOperands: newEnumTable(true, map[string]uint32{
		"None": 0, "Bias": 0x1, "Lod": 0x2, "Grad": 0x4, "ConstOffset": 0x8, "Offset": 0x10,
		"ConstOffsets": 0x20, "Sample": 0x40, "MinLod": 0x80,
	}),
	KindMemoryAccess: newEnumTable(true, map[string]uint32{
		"None": 0, "Volatile": 0x1, "Aligned": 0x2, "Nontemporal": 0x4,
	}),
	KindSourceLanguage: newEnumTable(false, map[string]uint32{
		"Unknown": 0, "ESSL": 1, "GLSL": 2, "OpenCL_C": 3, "OpenCL_CPP": 4, "HLSL": 5,
	}),
	KindGLSLInstruction: newEnumTable(false, func() map[string]uint32 {
		m := make(map[string]uint32, len(glslNames))
		for i, name := range glslNames {
			m[name] = uint32(i) + 1
		}
		return m
	}()),
}

// LookupEnum resolves an enumerant name of the given kind. Mask kinds
// accept several names joined with '|'.
func LookupEnum(kind EnumKind, name string) (uint32, bool) {
	t, ok := enumTables[kind]
	if !ok {
		return 0, false
	}
	if !t.flags {
		v, ok := t.values[name]
		return v, ok
	}
	var mask uint32
	for _, part := range strings.Split(name, "|") {
		v, ok := t.values[part]
		if !ok {
			return 0, false
		}
		mask |= v
	}
	return mask, true
}

// EnumName renders v as an enumerant of the given kind. Unknown values are
// printed as numbers; masks are split into their named bits.
func EnumName(kind EnumKind, v uint32) string {
	t, ok := enumTables[kind]
	if !ok {
		return fmt.Sprint(v)
	}
	if name, ok := t.names[v]; ok {
		return name
	}
	if !t.flags {
		return fmt.Sprint(v)
	}
	var bits []uint32
	for bit := range t.names {
		if bit != 0 && v&bit == bit {
			bits = append(bits, bit)
		}
	}
	sort.Slice(bits, func(i, j int) bool { return bits[i] < bits[j] })
	var parts []string
	rest := v
	for _, bit := range bits {
		parts = append(parts, t.names[bit])
		rest &^= bit
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", rest))
	}
	return strings.Join(parts, "|")
}

func (c Capability) String() string { return EnumName(KindCapability, uint32(c)) }
func (s StorageClass) String() string { return EnumName(KindStorageClass, uint32(s)) }
func (d Decoration) String() string { return EnumName(KindDecoration, uint32(d)) }
func (b BuiltIn) String() string { return EnumName(KindBuiltIn, uint32(b)) }
func (m ExecutionModel) String() string { return EnumName(KindExecutionModel, uint32(m)) }
func (m ExecutionMode) String() string { return EnumName(KindExecutionMode, uint32(m)) }
func (d Dim) String() string { return EnumName(KindDim, uint32(d)) }
func (f ImageFormat) String() string { return EnumName(KindImageFormat, uint32(f)) }
func (i GLSLInstruction) String() string { return EnumName(KindGLSLInstruction, uint32(i)) }

// enumDefined reports whether v is a named enumerant of kind.
func enumDefined(kind EnumKind, v uint32) bool {
	t, ok := enumTables[kind]
	if !ok {
		return false
	}
	_, ok = t.names[v]
	return ok
}
