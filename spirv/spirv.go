package spirv

import "fmt"

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_4 = Version{1, 4}
	Version1_5 = Version{1, 5}
	Version1_6 = Version{1, 6}
)

// Word encodes the version as it appears in the module header.
func (v Version) Word() uint32 {
	return uint32(v.Major)<<16 | uint32(v.Minor)<<8
}

// VersionFromWord decodes a header version word.
func VersionFromWord(w uint32) Version {
	return Version{Major: uint8(w >> 16), Minor: uint8(w >> 8)}
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// SPIR-V magic number
const MagicNumber = 0x07230203

// GeneratorID is written into modules produced by ModuleBuilder.
const GeneratorID = 0x00000000

// HeaderWords is the number of words before the first instruction.
const HeaderWords = 5

// OpCode represents a SPIR-V opcode.
type OpCode uint16

// SPIR-V opcodes (https://registry.khronos.org/SPIR-V/specs/unified1/SPIRV.html).
const (
	OpNop                            OpCode = 0
	OpUndef                          OpCode = 1
	OpSourceContinued                OpCode = 2
	OpSource                         OpCode = 3
	OpSourceExtension                OpCode = 4
	OpName                           OpCode = 5
	OpMemberName                     OpCode = 6
	OpString                         OpCode = 7
	OpLine                           OpCode = 8
	OpExtension                      OpCode = 10
	OpExtInstImport                  OpCode = 11
	OpExtInst                        OpCode = 12
	OpMemoryModel                    OpCode = 14
	OpEntryPoint                     OpCode = 15
	OpExecutionMode                  OpCode = 16
	OpCapability                     OpCode = 17
	OpTypeVoid                       OpCode = 19
	OpTypeBool                       OpCode = 20
	OpTypeInt                        OpCode = 21
	OpTypeFloat                      OpCode = 22
	OpTypeVector                     OpCode = 23
	OpTypeMatrix                     OpCode = 24
	OpTypeImage                      OpCode = 25
	OpTypeSampler                    OpCode = 26
	OpTypeSampledImage               OpCode = 27
	OpTypeArray                      OpCode = 28
	OpTypeRuntimeArray               OpCode = 29
	OpTypeStruct                     OpCode = 30
	OpTypeOpaque                     OpCode = 31
	OpTypePointer                    OpCode = 32
	OpTypeFunction                   OpCode = 33
	OpTypeEvent                      OpCode = 34
	OpTypeDeviceEvent                OpCode = 35
	OpTypeReserveID                  OpCode = 36
	OpTypeQueue                      OpCode = 37
	OpTypePipe                       OpCode = 38
	OpTypeForwardPointer             OpCode = 39
	OpConstantTrue                   OpCode = 41
	OpConstantFalse                  OpCode = 42
	OpConstant                       OpCode = 43
	OpConstantComposite              OpCode = 44
	OpConstantSampler                OpCode = 45
	OpConstantNull                   OpCode = 46
	OpSpecConstantTrue               OpCode = 48
	OpSpecConstantFalse              OpCode = 49
	OpSpecConstant                   OpCode = 50
	OpSpecConstantComposite          OpCode = 51
	OpSpecConstantOp                 OpCode = 52
	OpFunction                       OpCode = 54
	OpFunctionParameter              OpCode = 55
	OpFunctionEnd                    OpCode = 56
	OpFunctionCall                   OpCode = 57
	OpVariable                       OpCode = 59
	OpImageTexelPointer              OpCode = 60
	OpLoad                           OpCode = 61
	OpStore                          OpCode = 62
	OpCopyMemory                     OpCode = 63
	OpCopyMemorySized                OpCode = 64
	OpAccessChain                    OpCode = 65
	OpInBoundsAccessChain            OpCode = 66
	OpPtrAccessChain                 OpCode = 67
	OpArrayLength                    OpCode = 68
	OpGenericPtrMemSemantics         OpCode = 69
	OpInBoundsPtrAccessChain         OpCode = 70
	OpDecorate                       OpCode = 71
	OpMemberDecorate                 OpCode = 72
	OpDecorationGroup                OpCode = 73
	OpGroupDecorate                  OpCode = 74
	OpGroupMemberDecorate            OpCode = 75
	OpVectorExtractDynamic           OpCode = 77
	OpVectorInsertDynamic            OpCode = 78
	OpVectorShuffle                  OpCode = 79
	OpCompositeConstruct             OpCode = 80
	OpCompositeExtract               OpCode = 81
	OpCompositeInsert                OpCode = 82
	OpCopyObject                     OpCode = 83
	OpTranspose                      OpCode = 84
	OpSampledImage                   OpCode = 86
	OpImageSampleImplicitLod         OpCode = 87
	OpImageSampleExplicitLod         OpCode = 88
	OpImageSampleDrefImplicitLod     OpCode = 89
	OpImageSampleDrefExplicitLod     OpCode = 90
	OpImageSampleProjImplicitLod     OpCode = 91
	OpImageSampleProjExplicitLod     OpCode = 92
	OpImageSampleProjDrefImplicitLod OpCode = 93
	OpImageSampleProjDrefExplicitLod OpCode = 94
	OpImageFetch                     OpCode = 95
	OpImageGather                    OpCode = 96
	OpImageDrefGather                OpCode = 97
	OpImageRead                      OpCode = 98
	OpImageWrite                     OpCode = 99
	OpImage                          OpCode = 100
	OpImageQueryFormat               OpCode = 101
	OpImageQueryOrder                OpCode = 102
	OpImageQuerySizeLod              OpCode = 103
	OpImageQuerySize                 OpCode = 104
	OpImageQueryLod                  OpCode = 105
	OpImageQueryLevels               OpCode = 106
	OpImageQuerySamples              OpCode = 107
	OpConvertFToU                    OpCode = 109
	OpConvertFToS                    OpCode = 110
	OpConvertSToF                    OpCode = 111
	OpConvertUToF                    OpCode = 112
	OpUConvert                       OpCode = 113
	OpSConvert                       OpCode = 114
	OpFConvert                       OpCode = 115
	OpQuantizeToF16                  OpCode = 116
	OpConvertPtrToU                  OpCode = 117
	OpSatConvertSToU                 OpCode = 118
	OpSatConvertUToS                 OpCode = 119
	OpConvertUToPtr                  OpCode = 120
	OpPtrCastToGeneric               OpCode = 121
	OpGenericCastToPtr               OpCode = 122
	OpGenericCastToPtrExplicit       OpCode = 123
	OpBitcast                        OpCode = 124
	OpSNegate                        OpCode = 126
	OpFNegate                        OpCode = 127
	OpIAdd                           OpCode = 128
	OpFAdd                           OpCode = 129
	OpISub                           OpCode = 130
	OpFSub                           OpCode = 131
	OpIMul                           OpCode = 132
	OpFMul                           OpCode = 133
	OpUDiv                           OpCode = 134
	OpSDiv                           OpCode = 135
	OpFDiv                           OpCode = 136
	OpUMod                           OpCode = 137
	OpSRem                           OpCode = 138
	OpSMod                           OpCode = 139
	OpFRem                           OpCode = 140
	OpFMod                           OpCode = 141
	OpVectorTimesScalar              OpCode = 142
	OpMatrixTimesScalar              OpCode = 143
	OpVectorTimesMatrix              OpCode = 144
	OpMatrixTimesVector              OpCode = 145
	OpMatrixTimesMatrix              OpCode = 146
	OpOuterProduct                   OpCode = 147
	OpDot                            OpCode = 148
	OpIAddCarry                      OpCode = 149
	OpISubBorrow                     OpCode = 150
	OpUMulExtended                   OpCode = 151
	OpSMulExtended                   OpCode = 152
	OpAny                            OpCode = 154
	OpAll                            OpCode = 155
	OpIsNan                          OpCode = 156
	OpIsInf                          OpCode = 157
	OpIsFinite                       OpCode = 158
	OpIsNormal                       OpCode = 159
	OpSignBitSet                     OpCode = 160
	OpLessOrGreater                  OpCode = 161
	OpOrdered                        OpCode = 162
	OpUnordered                      OpCode = 163
	OpLogicalEqual                   OpCode = 164
	OpLogicalNotEqual                OpCode = 165
	OpLogicalOr                      OpCode = 166
	OpLogicalAnd                     OpCode = 167
	OpLogicalNot                     OpCode = 168
	OpSelect                         OpCode = 169
	OpIEqual                         OpCode = 170
	OpINotEqual                      OpCode = 171
	OpUGreaterThan                   OpCode = 172
	OpSGreaterThan                   OpCode = 173
	OpUGreaterThanEqual              OpCode = 174
	OpSGreaterThanEqual              OpCode = 175
	OpULessThan                      OpCode = 176
	OpSLessThan                      OpCode = 177
	OpULessThanEqual                 OpCode = 178
	OpSLessThanEqual                 OpCode = 179
	OpFOrdEqual                      OpCode = 180
	OpFUnordEqual                    OpCode = 181
	OpFOrdNotEqual                   OpCode = 182
	OpFUnordNotEqual                 OpCode = 183
	OpFOrdLessThan                   OpCode = 184
	OpFUnordLessThan                 OpCode = 185
	OpFOrdGreaterThan                OpCode = 186
	OpFUnordGreaterThan              OpCode = 187
	OpFOrdLessThanEqual              OpCode = 188
	OpFUnordLessThanEqual            OpCode = 189
	OpFOrdGreaterThanEqual           OpCode = 190
	OpFUnordGreaterThanEqual         OpCode = 191
	OpShiftRightLogical              OpCode = 194
	OpShiftRightArithmetic           OpCode = 195
	OpShiftLeftLogical               OpCode = 196
	OpBitwiseOr                      OpCode = 197
	OpBitwiseXor                     OpCode = 198
	OpBitwiseAnd                     OpCode = 199
	OpNot                            OpCode = 200
	OpBitFieldInsert                 OpCode = 201
	OpBitFieldSExtract               OpCode = 202
	OpBitFieldUExtract               OpCode = 203
	OpBitReverse                     OpCode = 204
	OpBitCount                       OpCode = 205
	OpDPdx                           OpCode = 207
	OpDPdy                           OpCode = 208
	OpFwidth                         OpCode = 209
	OpDPdxFine                       OpCode = 210
	OpDPdyFine                       OpCode = 211
	OpFwidthFine                     OpCode = 212
	OpDPdxCoarse                     OpCode = 213
	OpDPdyCoarse                     OpCode = 214
	OpFwidthCoarse                   OpCode = 215
	OpEmitVertex                     OpCode = 218
	OpEndPrimitive                   OpCode = 219
	OpEmitStreamVertex               OpCode = 220
	OpEndStreamPrimitive             OpCode = 221
	OpControlBarrier                 OpCode = 224
	OpMemoryBarrier                  OpCode = 225
	OpAtomicLoad                     OpCode = 227
	OpAtomicStore                    OpCode = 228
	OpAtomicExchange                 OpCode = 229
	OpAtomicCompareExchange          OpCode = 230
	OpAtomicCompareExchangeWeak      OpCode = 231
	OpAtomicIIncrement               OpCode = 232
	OpAtomicIDecrement               OpCode = 233
	OpAtomicIAdd                     OpCode = 234
	OpAtomicISub                     OpCode = 235
	OpAtomicSMin                     OpCode = 236
	OpAtomicUMin                     OpCode = 237
	OpAtomicSMax                     OpCode = 238
	OpAtomicUMax                     OpCode = 239
	OpAtomicAnd                      OpCode = 240
	OpAtomicOr                       OpCode = 241
	OpAtomicXor                      OpCode = 242
	OpPhi                            OpCode = 245
	OpLoopMerge                      OpCode = 246
	OpSelectionMerge                 OpCode = 247
	OpLabel                          OpCode = 248
	OpBranch                         OpCode = 249
	OpBranchConditional              OpCode = 250
	OpSwitch                         OpCode = 251
	OpKill                           OpCode = 252
	OpReturn                         OpCode = 253
	OpReturnValue                    OpCode = 254
	OpUnreachable                    OpCode = 255
	OpLifetimeStart                  OpCode = 256
	OpLifetimeStop                   OpCode = 257
	OpNoLine                         OpCode = 317
	OpModuleProcessed                OpCode = 330
	OpExecutionModeID                OpCode = 331
	OpDecorateID                     OpCode = 332
	OpGroupNonUniformElect           OpCode = 333
	OpGroupNonUniformAll             OpCode = 334
	OpGroupNonUniformAny             OpCode = 335
	OpGroupNonUniformBallot          OpCode = 339
	OpGroupNonUniformBroadcast       OpCode = 337
	OpCopyLogical                    OpCode = 400
	OpPtrEqual                       OpCode = 401
	OpPtrNotEqual                    OpCode = 402
	OpPtrDiff                        OpCode = 403
	OpTerminateInvocation            OpCode = 4416
	OpSubgroupBallotKHR              OpCode = 4421
	OpDemoteToHelperInvocation       OpCode = 5380
	OpIsHelperInvocationEXT          OpCode = 5381
	OpDecorateString                 OpCode = 5632
	OpMemberDecorateString           OpCode = 5633
)

var opNames = map[OpCode]string{
	OpNop: "OpNop", OpUndef: "OpUndef", OpSourceContinued: "OpSourceContinued", OpSource: "OpSource",
	OpSourceExtension: "OpSourceExtension", OpName: "OpName", OpMemberName: "OpMemberName",
	OpString: "OpString", OpLine: "OpLine", OpExtension: "OpExtension", OpExtInstImport: "OpExtInstImport",
	OpExtInst: "OpExtInst", OpMemoryModel: "OpMemoryModel", OpEntryPoint: "OpEntryPoint",
	OpExecutionMode: "OpExecutionMode", OpCapability: "OpCapability",

	OpTypeVoid: "OpTypeVoid", OpTypeBool: "OpTypeBool", OpTypeInt: "OpTypeInt", OpTypeFloat: "OpTypeFloat",
	OpTypeVector: "OpTypeVector", OpTypeMatrix: "OpTypeMatrix", OpTypeImage: "OpTypeImage",
	OpTypeSampler: "OpTypeSampler", OpTypeSampledImage: "OpTypeSampledImage", OpTypeArray: "OpTypeArray",
	OpTypeRuntimeArray: "OpTypeRuntimeArray", OpTypeStruct: "OpTypeStruct", OpTypeOpaque: "OpTypeOpaque",
	OpTypePointer: "OpTypePointer", OpTypeFunction: "OpTypeFunction", OpTypeEvent: "OpTypeEvent",
	OpTypeDeviceEvent: "OpTypeDeviceEvent", OpTypeReserveID: "OpTypeReserveId", OpTypeQueue: "OpTypeQueue",
	OpTypePipe: "OpTypePipe", OpTypeForwardPointer: "OpTypeForwardPointer",

	OpConstantTrue: "OpConstantTrue", OpConstantFalse: "OpConstantFalse", OpConstant: "OpConstant",
	OpConstantComposite: "OpConstantComposite", OpConstantSampler: "OpConstantSampler",
	OpConstantNull: "OpConstantNull", OpSpecConstantTrue: "OpSpecConstantTrue",
	OpSpecConstantFalse: "OpSpecConstantFalse", OpSpecConstant: "OpSpecConstant",
	OpSpecConstantComposite: "OpSpecConstantComposite", OpSpecConstantOp: "OpSpecConstantOp",

	OpFunction: "OpFunction", OpFunctionParameter: "OpFunctionParameter", OpFunctionEnd: "OpFunctionEnd",
	OpFunctionCall: "OpFunctionCall", OpVariable: "OpVariable", OpImageTexelPointer: "OpImageTexelPointer",
	OpLoad: "OpLoad", OpStore: "OpStore", OpCopyMemory: "OpCopyMemory", OpCopyMemorySized: "OpCopyMemorySized",
	OpAccessChain: "OpAccessChain", OpInBoundsAccessChain: "OpInBoundsAccessChain",
	OpPtrAccessChain: "OpPtrAccessChain", OpArrayLength: "OpArrayLength",
	OpGenericPtrMemSemantics: "OpGenericPtrMemSemantics", OpInBoundsPtrAccessChain: "OpInBoundsPtrAccessChain",
	OpDecorate: "OpDecorate", OpMemberDecorate: "OpMemberDecorate", OpDecorationGroup: "OpDecorationGroup",
	OpGroupDecorate: "OpGroupDecorate", OpGroupMemberDecorate: "OpGroupMemberDecorate",

	OpVectorExtractDynamic: "OpVectorExtractDynamic", OpVectorInsertDynamic: "OpVectorInsertDynamic",
	OpVectorShuffle: "OpVectorShuffle", OpCompositeConstruct: "OpCompositeConstruct",
	OpCompositeExtract: "OpCompositeExtract", OpCompositeInsert: "OpCompositeInsert",
	OpCopyObject: "OpCopyObject", OpTranspose: "OpTranspose",

	OpSampledImage: "OpSampledImage", OpImageSampleImplicitLod: "OpImageSampleImplicitLod",
	OpImageSampleExplicitLod: "OpImageSampleExplicitLod", OpImageSampleDrefImplicitLod: "OpImageSampleDrefImplicitLod",
	OpImageSampleDrefExplicitLod: "OpImageSampleDrefExplicitLod",
	OpImageSampleProjImplicitLod: "OpImageSampleProjImplicitLod",
	OpImageSampleProjExplicitLod: "OpImageSampleProjExplicitLod",
	OpImageSampleProjDrefImplicitLod: "OpImageSampleProjDrefImplicitLod",
	OpImageSampleProjDrefExplicitLod: "OpImageSampleProjDrefExplicitLod",
	OpImageFetch: "OpImageFetch", OpImageGather: "OpImageGather", OpImageDrefGather: "OpImageDrefGather",
	OpImageRead: "OpImageRead", OpImageWrite: "OpImageWrite", OpImage: "OpImage",
	OpImageQueryFormat: "OpImageQueryFormat", OpImageQueryOrder: "OpImageQueryOrder",
	OpImageQuerySizeLod: "OpImageQuerySizeLod", OpImageQuerySize: "OpImageQuerySize",
	OpImageQueryLod: "OpImageQueryLod", OpImageQueryLevels: "OpImageQueryLevels",
	OpImageQuerySamples: "OpImageQuerySamples",

	OpConvertFToU: "OpConvertFToU", OpConvertFToS: "OpConvertFToS", OpConvertSToF: "OpConvertSToF",
	OpConvertUToF: "OpConvertUToF", OpUConvert: "OpUConvert", OpSConvert: "OpSConvert",
	OpFConvert: "OpFConvert", OpQuantizeToF16: "OpQuantizeToF16", OpConvertPtrToU: "OpConvertPtrToU",
	OpSatConvertSToU: "OpSatConvertSToU", OpSatConvertUToS: "OpSatConvertUToS",
	OpConvertUToPtr: "OpConvertUToPtr", OpPtrCastToGeneric: "OpPtrCastToGeneric",
	OpGenericCastToPtr: "OpGenericCastToPtr", OpGenericCastToPtrExplicit: "OpGenericCastToPtrExplicit",
	OpBitcast: "OpBitcast",

	OpSNegate: "OpSNegate", OpFNegate: "OpFNegate", OpIAdd: "OpIAdd", OpFAdd: "OpFAdd", OpISub: "OpISub",
	OpFSub: "OpFSub", OpIMul: "OpIMul", OpFMul: "OpFMul", OpUDiv: "OpUDiv", OpSDiv: "OpSDiv",
	OpFDiv: "OpFDiv", OpUMod: "OpUMod", OpSRem: "OpSRem", OpSMod: "OpSMod", OpFRem: "OpFRem",
	OpFMod: "OpFMod", OpVectorTimesScalar: "OpVectorTimesScalar", OpMatrixTimesScalar: "OpMatrixTimesScalar",
	OpVectorTimesMatrix: "OpVectorTimesMatrix", OpMatrixTimesVector: "OpMatrixTimesVector",
	OpMatrixTimesMatrix: "OpMatrixTimesMatrix", OpOuterProduct: "OpOuterProduct", OpDot: "OpDot",
	OpIAddCarry: "OpIAddCarry", OpISubBorrow: "OpISubBorrow", OpUMulExtended: "OpUMulExtended",
	OpSMulExtended: "OpSMulExtended",

	OpAny: "OpAny", OpAll: "OpAll", OpIsNan: "OpIsNan", OpIsInf: "OpIsInf", OpIsFinite: "OpIsFinite",
	OpIsNormal: "OpIsNormal", OpSignBitSet: "OpSignBitSet", OpLessOrGreater: "OpLessOrGreater",
	OpOrdered: "OpOrdered", OpUnordered: "OpUnordered", OpLogicalEqual: "OpLogicalEqual",
	OpLogicalNotEqual: "OpLogicalNotEqual", OpLogicalOr: "OpLogicalOr", OpLogicalAnd: "OpLogicalAnd",
	OpLogicalNot: "OpLogicalNot", OpSelect: "OpSelect", OpIEqual: "OpIEqual", OpINotEqual: "OpINotEqual",
	OpUGreaterThan: "OpUGreaterThan", OpSGreaterThan: "OpSGreaterThan",
	OpUGreaterThanEqual: "OpUGreaterThanEqual", OpSGreaterThanEqual: "OpSGreaterThanEqual",
	OpULessThan: "OpULessThan", OpSLessThan: "OpSLessThan", OpULessThanEqual: "OpULessThanEqual",
	OpSLessThanEqual: "OpSLessThanEqual", OpFOrdEqual: "OpFOrdEqual", OpFUnordEqual: "OpFUnordEqual",
	OpFOrdNotEqual: "OpFOrdNotEqual", OpFUnordNotEqual: "OpFUnordNotEqual",
	OpFOrdLessThan: "OpFOrdLessThan", OpFUnordLessThan: "OpFUnordLessThan",
	OpFOrdGreaterThan: "OpFOrdGreaterThan", OpFUnordGreaterThan: "OpFUnordGreaterThan",
	OpFOrdLessThanEqual: "OpFOrdLessThanEqual", OpFUnordLessThanEqual: "OpFUnordLessThanEqual",
	OpFOrdGreaterThanEqual: "OpFOrdGreaterThanEqual", OpFUnordGreaterThanEqual: "OpFUnordGreaterThanEqual",

	OpShiftRightLogical: "OpShiftRightLogical", OpShiftRightArithmetic: "OpShiftRightArithmetic",
	OpShiftLeftLogical: "OpShiftLeftLogical", OpBitwiseOr: "OpBitwiseOr", OpBitwiseXor: "OpBitwiseXor",
	OpBitwiseAnd: "OpBitwiseAnd", OpNot: "OpNot", OpBitFieldInsert: "OpBitFieldInsert",
	OpBitFieldSExtract: "OpBitFieldSExtract", OpBitFieldUExtract: "OpBitFieldUExtract",
	OpBitReverse: "OpBitReverse", OpBitCount: "OpBitCount",

	OpDPdx: "OpDPdx", OpDPdy: "OpDPdy", OpFwidth: "OpFwidth", OpDPdxFine: "OpDPdxFine",
	OpDPdyFine: "OpDPdyFine", OpFwidthFine: "OpFwidthFine", OpDPdxCoarse: "OpDPdxCoarse",
	OpDPdyCoarse: "OpDPdyCoarse", OpFwidthCoarse: "OpFwidthCoarse",

	OpEmitVertex: "OpEmitVertex", OpEndPrimitive: "OpEndPrimitive", OpEmitStreamVertex: "OpEmitStreamVertex",
	OpEndStreamPrimitive: "OpEndStreamPrimitive", OpControlBarrier: "OpControlBarrier",
	OpMemoryBarrier: "OpMemoryBarrier",

	OpAtomicLoad: "OpAtomicLoad", OpAtomicStore: "OpAtomicStore", OpAtomicExchange: "OpAtomicExchange",
	OpAtomicCompareExchange: "OpAtomicCompareExchange", OpAtomicCompareExchangeWeak: "OpAtomicCompareExchangeWeak",
	OpAtomicIIncrement: "OpAtomicIIncrement", OpAtomicIDecrement: "OpAtomicIDecrement",
	OpAtomicIAdd: "OpAtomicIAdd", OpAtomicISub: "OpAtomicISub", OpAtomicSMin: "OpAtomicSMin",
	OpAtomicUMin: "OpAtomicUMin", OpAtomicSMax: "OpAtomicSMax", OpAtomicUMax: "OpAtomicUMax",
	OpAtomicAnd: "OpAtomicAnd", OpAtomicOr: "OpAtomicOr", OpAtomicXor: "OpAtomicXor",

	OpPhi: "OpPhi", OpLoopMerge: "OpLoopMerge", OpSelectionMerge: "OpSelectionMerge", OpLabel: "OpLabel",
	OpBranch: "OpBranch", OpBranchConditional: "OpBranchConditional", OpSwitch: "OpSwitch",
	OpKill: "OpKill", OpReturn: "OpReturn", OpReturnValue: "OpReturnValue", OpUnreachable: "OpUnreachable",
	OpLifetimeStart: "OpLifetimeStart", OpLifetimeStop: "OpLifetimeStop",

	OpNoLine: "OpNoLine", OpModuleProcessed: "OpModuleProcessed", OpExecutionModeID: "OpExecutionModeId",
	OpDecorateID: "OpDecorateId", OpGroupNonUniformElect: "OpGroupNonUniformElect",
	OpGroupNonUniformAll: "OpGroupNonUniformAll", OpGroupNonUniformAny: "OpGroupNonUniformAny",
	OpGroupNonUniformBroadcast: "OpGroupNonUniformBroadcast", OpGroupNonUniformBallot: "OpGroupNonUniformBallot",
	OpCopyLogical: "OpCopyLogical", OpPtrEqual: "OpPtrEqual", OpPtrNotEqual: "OpPtrNotEqual",
	OpPtrDiff: "OpPtrDiff", OpTerminateInvocation: "OpTerminateInvocation",
	OpSubgroupBallotKHR: "OpSubgroupBallotKHR", OpDemoteToHelperInvocation: "OpDemoteToHelperInvocation",
	OpIsHelperInvocationEXT: "OpIsHelperInvocationEXT", OpDecorateString: "OpDecorateString",
	OpMemberDecorateString: "OpMemberDecorateString",
}

var opByName = func() map[string]OpCode {
	m := make(map[string]OpCode, len(opNames))
	for op, name := range opNames {
		m[name] = op
	}
	return m
}()

// Known reports whether op is an opcode this package has a name for.
func (op OpCode) Known() bool {
	_, ok := opNames[op]
	return ok
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint16(op))
}

// LookupOpCode finds an opcode by its assembly name ("OpIAdd").
func LookupOpCode(name string) (OpCode, bool) {
	op, ok := opByName[name]
	return op, ok
}

// HasResult reports whether instructions with this opcode define a
// result id, and whether that id is preceded by a result type id.
func (op OpCode) HasResult() (result, resultType bool) {
	switch op {
	case OpString, OpExtInstImport, OpDecorationGroup, OpLabel:
		return true, false
	}
	if op >= OpTypeVoid && op <= OpTypeForwardPointer {
		return op != OpTypeForwardPointer, false
	}
	switch op {
	case OpNop, OpSourceContinued, OpSource, OpSourceExtension, OpName, OpMemberName, OpLine,
		OpExtension, OpMemoryModel, OpEntryPoint, OpExecutionMode, OpCapability, OpFunctionEnd,
		OpStore, OpCopyMemory, OpCopyMemorySized, OpDecorate, OpMemberDecorate, OpGroupDecorate,
		OpGroupMemberDecorate, OpImageWrite, OpEmitVertex, OpEndPrimitive, OpEmitStreamVertex,
		OpEndStreamPrimitive, OpControlBarrier, OpMemoryBarrier, OpAtomicStore, OpLoopMerge,
		OpSelectionMerge, OpBranch, OpBranchConditional, OpSwitch, OpKill, OpReturn, OpReturnValue,
		OpUnreachable, OpLifetimeStart, OpLifetimeStop, OpNoLine, OpModuleProcessed,
		OpExecutionModeID, OpDecorateID, OpTerminateInvocation, OpDemoteToHelperInvocation,
		OpDecorateString, OpMemberDecorateString:
		return false, false
	}
	return true, true
}
