package spirv

import (
	"encoding/binary"
	"math"
)

// RawInstruction is an encoded instruction waiting to be written: an
// opcode and the words that follow the opcode word.
type RawInstruction struct {
	Opcode OpCode
	Words  []uint32
}

// Encode returns the instruction with its leading word count and opcode.
func (i RawInstruction) Encode() []uint32 {
	count := uint32(len(i.Words) + 1)
	out := make([]uint32, 0, count)
	out = append(out, count<<16|uint32(i.Opcode))
	return append(out, i.Words...)
}

// InstructionBuilder accumulates the operand words of one instruction.
type InstructionBuilder struct {
	words []uint32
}

// NewInstructionBuilder creates a new instruction builder.
func NewInstructionBuilder() *InstructionBuilder {
	return &InstructionBuilder{words: make([]uint32, 0, 8)}
}

// AddWord appends one operand word.
func (b *InstructionBuilder) AddWord(words ...uint32) {
	b.words = append(b.words, words...)
}

// AddString appends a nul-terminated UTF-8 literal padded to a word
// boundary.
func (b *InstructionBuilder) AddString(s string) {
	b.words = append(b.words, EncodeString(s)...)
}

// Build returns the instruction with the given opcode.
func (b *InstructionBuilder) Build(opcode OpCode) RawInstruction {
	return RawInstruction{Opcode: opcode, Words: b.words}
}

// EncodeString encodes s as a literal string operand.
func EncodeString(s string) []uint32 {
	data := append([]byte(s), 0)
	for len(data)%4 != 0 {
		data = append(data, 0)
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words
}

// WordsToBytes serializes words in little-endian order.
func WordsToBytes(words []uint32) []byte {
	data := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(data[i*4:], w)
	}
	return data
}

type section uint8

// Sections in the order the logical layout requires.
const (
	sectionCapability section = iota
	sectionExtension
	sectionExtInstImport
	sectionMemoryModel
	sectionEntryPoint
	sectionExecutionMode
	sectionDebug
	sectionAnnotation
	sectionDeclaration
	sectionFunction
	sectionCount
)

// ModuleBuilder assembles a module programmatically. Instructions are
// grouped by section so declarations can be added after function code
// and still land in a valid layout.
type ModuleBuilder struct {
	version   Version
	generator uint32
	sections  [sectionCount][]RawInstruction
	nextID    uint32
}

// NewModuleBuilder creates a builder for a module of the given version.
func NewModuleBuilder(version Version) *ModuleBuilder {
	return &ModuleBuilder{
		version:   version,
		generator: GeneratorID,
		nextID:    1,
	}
}

// AllocID allocates a new result id.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

// Bound is one past the largest id allocated so far.
func (b *ModuleBuilder) Bound() uint32 { return b.nextID }

func (b *ModuleBuilder) emit(sec section, op OpCode, words ...uint32) {
	b.sections[sec] = append(b.sections[sec], RawInstruction{Opcode: op, Words: words})
}

// result emits an instruction whose first operand is a fresh result id.
func (b *ModuleBuilder) result(sec section, op OpCode, words ...uint32) uint32 {
	id := b.AllocID()
	b.emit(sec, op, append([]uint32{id}, words...)...)
	return id
}

// typed emits an instruction with a result type and a fresh result id.
func (b *ModuleBuilder) typed(sec section, op OpCode, typeID uint32, words ...uint32) uint32 {
	id := b.AllocID()
	b.emit(sec, op, append([]uint32{typeID, id}, words...)...)
	return id
}

// AddInstruction appends an arbitrary instruction to the function section.
func (b *ModuleBuilder) AddInstruction(op OpCode, words ...uint32) {
	b.emit(sectionFunction, op, words...)
}

// AddResult appends a function-section instruction with a result type and
// returns its fresh result id.
func (b *ModuleBuilder) AddResult(op OpCode, resultType uint32, operands ...uint32) uint32 {
	return b.typed(sectionFunction, op, resultType, operands...)
}

// AddCapability adds a capability.
func (b *ModuleBuilder) AddCapability(capability Capability) {
	b.emit(sectionCapability, OpCapability, uint32(capability))
}

// AddExtension adds an extension.
func (b *ModuleBuilder) AddExtension(name string) {
	b.emit(sectionExtension, OpExtension, EncodeString(name)...)
}

// AddExtInstImport imports an extended instruction set.
func (b *ModuleBuilder) AddExtInstImport(name string) uint32 {
	return b.result(sectionExtInstImport, OpExtInstImport, EncodeString(name)...)
}

// SetMemoryModel sets the memory model, replacing any earlier one.
func (b *ModuleBuilder) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	b.sections[sectionMemoryModel] = nil
	b.emit(sectionMemoryModel, OpMemoryModel, uint32(addressing), uint32(memory))
}

// AddEntryPoint adds an entry point.
func (b *ModuleBuilder) AddEntryPoint(model ExecutionModel, fn uint32, name string, interfaces ...uint32) {
	words := []uint32{uint32(model), fn}
	words = append(words, EncodeString(name)...)
	b.emit(sectionEntryPoint, OpEntryPoint, append(words, interfaces...)...)
}

// AddExecutionMode adds an execution mode.
func (b *ModuleBuilder) AddExecutionMode(entryPoint uint32, mode ExecutionMode, params ...uint32) {
	b.emit(sectionExecutionMode, OpExecutionMode, append([]uint32{entryPoint, uint32(mode)}, params...)...)
}

// AddName adds a debug name.
func (b *ModuleBuilder) AddName(id uint32, name string) {
	b.emit(sectionDebug, OpName, append([]uint32{id}, EncodeString(name)...)...)
}

// AddMemberName adds a debug member name.
func (b *ModuleBuilder) AddMemberName(structID, member uint32, name string) {
	b.emit(sectionDebug, OpMemberName, append([]uint32{structID, member}, EncodeString(name)...)...)
}

// AddDecorate adds a decoration.
func (b *ModuleBuilder) AddDecorate(id uint32, decoration Decoration, params ...uint32) {
	b.emit(sectionAnnotation, OpDecorate, append([]uint32{id, uint32(decoration)}, params...)...)
}

// AddMemberDecorate adds a member decoration.
func (b *ModuleBuilder) AddMemberDecorate(structID, member uint32, decoration Decoration, params ...uint32) {
	b.emit(sectionAnnotation, OpMemberDecorate, append([]uint32{structID, member, uint32(decoration)}, params...)...)
}

// AddTypeVoid adds OpTypeVoid.
func (b *ModuleBuilder) AddTypeVoid() uint32 { return b.result(sectionDeclaration, OpTypeVoid) }

// AddTypeBool adds OpTypeBool.
func (b *ModuleBuilder) AddTypeBool() uint32 { return b.result(sectionDeclaration, OpTypeBool) }

// AddTypeFloat adds OpTypeFloat.
func (b *ModuleBuilder) AddTypeFloat(width uint32) uint32 {
	return b.result(sectionDeclaration, OpTypeFloat, width)
}

// AddTypeInt adds OpTypeInt.
func (b *ModuleBuilder) AddTypeInt(width uint32, signed bool) uint32 {
	var signedness uint32
	if signed {
		signedness = 1
	}
	return b.result(sectionDeclaration, OpTypeInt, width, signedness)
}

// AddTypeVector adds OpTypeVector.
func (b *ModuleBuilder) AddTypeVector(component, count uint32) uint32 {
	return b.result(sectionDeclaration, OpTypeVector, component, count)
}

// AddTypeMatrix adds OpTypeMatrix.
func (b *ModuleBuilder) AddTypeMatrix(column, columns uint32) uint32 {
	return b.result(sectionDeclaration, OpTypeMatrix, column, columns)
}

// AddTypeArray adds OpTypeArray. length is the id of a constant.
func (b *ModuleBuilder) AddTypeArray(element, length uint32) uint32 {
	return b.result(sectionDeclaration, OpTypeArray, element, length)
}

// AddTypeRuntimeArray adds OpTypeRuntimeArray.
func (b *ModuleBuilder) AddTypeRuntimeArray(element uint32) uint32 {
	return b.result(sectionDeclaration, OpTypeRuntimeArray, element)
}

// AddTypeStruct adds OpTypeStruct.
func (b *ModuleBuilder) AddTypeStruct(members ...uint32) uint32 {
	return b.result(sectionDeclaration, OpTypeStruct, members...)
}

// AddTypePointer adds OpTypePointer.
func (b *ModuleBuilder) AddTypePointer(storageClass StorageClass, base uint32) uint32 {
	return b.result(sectionDeclaration, OpTypePointer, uint32(storageClass), base)
}

// AddTypeFunction adds OpTypeFunction.
func (b *ModuleBuilder) AddTypeFunction(returnType uint32, params ...uint32) uint32 {
	return b.result(sectionDeclaration, OpTypeFunction, append([]uint32{returnType}, params...)...)
}

// AddTypeImage adds OpTypeImage. depth, arrayed and ms use the encoding of
// the instruction itself; sampled is 1 for sampled images and 2 for storage.
func (b *ModuleBuilder) AddTypeImage(sampledType uint32, dim Dim, depth, arrayed, ms, sampled uint32, format ImageFormat) uint32 {
	return b.result(sectionDeclaration, OpTypeImage, sampledType, uint32(dim), depth, arrayed, ms, sampled, uint32(format))
}

// AddTypeSampler adds OpTypeSampler.
func (b *ModuleBuilder) AddTypeSampler() uint32 { return b.result(sectionDeclaration, OpTypeSampler) }

// AddTypeSampledImage adds OpTypeSampledImage.
func (b *ModuleBuilder) AddTypeSampledImage(image uint32) uint32 {
	return b.result(sectionDeclaration, OpTypeSampledImage, image)
}

// AddConstant adds OpConstant.
func (b *ModuleBuilder) AddConstant(typeID uint32, values ...uint32) uint32 {
	return b.typed(sectionDeclaration, OpConstant, typeID, values...)
}

// AddConstantFloat32 adds a 32-bit float constant.
func (b *ModuleBuilder) AddConstantFloat32(typeID uint32, value float32) uint32 {
	return b.AddConstant(typeID, math.Float32bits(value))
}

// AddConstantFloat64 adds a 64-bit float constant.
func (b *ModuleBuilder) AddConstantFloat64(typeID uint32, value float64) uint32 {
	bits := math.Float64bits(value)
	return b.AddConstant(typeID, uint32(bits), uint32(bits>>32))
}

// AddConstantBool adds OpConstantTrue or OpConstantFalse.
func (b *ModuleBuilder) AddConstantBool(typeID uint32, value bool) uint32 {
	if value {
		return b.typed(sectionDeclaration, OpConstantTrue, typeID)
	}
	return b.typed(sectionDeclaration, OpConstantFalse, typeID)
}

// AddConstantNull adds OpConstantNull.
func (b *ModuleBuilder) AddConstantNull(typeID uint32) uint32 {
	return b.typed(sectionDeclaration, OpConstantNull, typeID)
}

// AddConstantComposite adds OpConstantComposite.
func (b *ModuleBuilder) AddConstantComposite(typeID uint32, constituents ...uint32) uint32 {
	return b.typed(sectionDeclaration, OpConstantComposite, typeID, constituents...)
}

// AddSpecConstant adds OpSpecConstant.
func (b *ModuleBuilder) AddSpecConstant(typeID uint32, values ...uint32) uint32 {
	return b.typed(sectionDeclaration, OpSpecConstant, typeID, values...)
}

// AddVariable adds a module-scope OpVariable, with an optional initializer.
func (b *ModuleBuilder) AddVariable(pointerType uint32, storageClass StorageClass, init ...uint32) uint32 {
	return b.typed(sectionDeclaration, OpVariable, pointerType, append([]uint32{uint32(storageClass)}, init...)...)
}

// AddLocalVariable adds a function-scope OpVariable. It must directly
// follow the first label of the function.
func (b *ModuleBuilder) AddLocalVariable(pointerType uint32, init ...uint32) uint32 {
	return b.typed(sectionFunction, OpVariable, pointerType, append([]uint32{uint32(StorageClassFunction)}, init...)...)
}

// AddFunction opens a function definition.
func (b *ModuleBuilder) AddFunction(funcType, returnType uint32, control FunctionControl) uint32 {
	return b.typed(sectionFunction, OpFunction, returnType, uint32(control), funcType)
}

// AddFunctionParameter adds a function parameter.
func (b *ModuleBuilder) AddFunctionParameter(typeID uint32) uint32 {
	return b.typed(sectionFunction, OpFunctionParameter, typeID)
}

// AddFunctionEnd closes the current function.
func (b *ModuleBuilder) AddFunctionEnd() { b.emit(sectionFunction, OpFunctionEnd) }

// AllocLabel reserves an id for a block that is placed later with
// PlaceLabel, so branches can target blocks not yet emitted.
func (b *ModuleBuilder) AllocLabel() uint32 { return b.AllocID() }

// PlaceLabel starts the block with a previously allocated id.
func (b *ModuleBuilder) PlaceLabel(id uint32) { b.emit(sectionFunction, OpLabel, id) }

// AddLabel starts a new block.
func (b *ModuleBuilder) AddLabel() uint32 { return b.result(sectionFunction, OpLabel) }

// AddReturn adds OpReturn.
func (b *ModuleBuilder) AddReturn() { b.emit(sectionFunction, OpReturn) }

// AddReturnValue adds OpReturnValue.
func (b *ModuleBuilder) AddReturnValue(value uint32) { b.emit(sectionFunction, OpReturnValue, value) }

// AddKill adds OpKill.
func (b *ModuleBuilder) AddKill() { b.emit(sectionFunction, OpKill) }

// AddUnreachable adds OpUnreachable.
func (b *ModuleBuilder) AddUnreachable() { b.emit(sectionFunction, OpUnreachable) }

// AddBranch adds OpBranch.
func (b *ModuleBuilder) AddBranch(target uint32) { b.emit(sectionFunction, OpBranch, target) }

// AddBranchConditional adds OpBranchConditional.
func (b *ModuleBuilder) AddBranchConditional(condition, trueLabel, falseLabel uint32) {
	b.emit(sectionFunction, OpBranchConditional, condition, trueLabel, falseLabel)
}

// SwitchTarget is one literal/label pair of OpSwitch.
type SwitchTarget struct {
	Literal uint32
	Label   uint32
}

// AddSwitch adds OpSwitch with a 32-bit selector.
func (b *ModuleBuilder) AddSwitch(selector, defaultLabel uint32, targets ...SwitchTarget) {
	words := []uint32{selector, defaultLabel}
	for _, t := range targets {
		words = append(words, t.Literal, t.Label)
	}
	b.emit(sectionFunction, OpSwitch, words...)
}

// AddSelectionMerge adds OpSelectionMerge.
func (b *ModuleBuilder) AddSelectionMerge(merge uint32, control SelectionControl) {
	b.emit(sectionFunction, OpSelectionMerge, merge, uint32(control))
}

// AddLoopMerge adds OpLoopMerge.
func (b *ModuleBuilder) AddLoopMerge(merge, continuing uint32, control LoopControl) {
	b.emit(sectionFunction, OpLoopMerge, merge, continuing, uint32(control))
}

// PhiSource is one incoming value of OpPhi.
type PhiSource struct {
	Value  uint32
	Parent uint32
}

// AddPhi adds OpPhi.
func (b *ModuleBuilder) AddPhi(resultType uint32, sources ...PhiSource) uint32 {
	words := make([]uint32, 0, len(sources)*2)
	for _, s := range sources {
		words = append(words, s.Value, s.Parent)
	}
	return b.typed(sectionFunction, OpPhi, resultType, words...)
}

// AddBinaryOp adds a two-operand instruction.
func (b *ModuleBuilder) AddBinaryOp(opcode OpCode, resultType, left, right uint32) uint32 {
	return b.typed(sectionFunction, opcode, resultType, left, right)
}

// AddUnaryOp adds a one-operand instruction.
func (b *ModuleBuilder) AddUnaryOp(opcode OpCode, resultType, operand uint32) uint32 {
	return b.typed(sectionFunction, opcode, resultType, operand)
}

// AddLoad adds OpLoad.
func (b *ModuleBuilder) AddLoad(resultType, pointer uint32) uint32 {
	return b.typed(sectionFunction, OpLoad, resultType, pointer)
}

// AddStore adds OpStore.
func (b *ModuleBuilder) AddStore(pointer, value uint32) { b.emit(sectionFunction, OpStore, pointer, value) }

// AddAccessChain adds OpAccessChain.
func (b *ModuleBuilder) AddAccessChain(resultType, base uint32, indices ...uint32) uint32 {
	return b.typed(sectionFunction, OpAccessChain, resultType, append([]uint32{base}, indices...)...)
}

// AddCompositeConstruct adds OpCompositeConstruct.
func (b *ModuleBuilder) AddCompositeConstruct(resultType uint32, constituents ...uint32) uint32 {
	return b.typed(sectionFunction, OpCompositeConstruct, resultType, constituents...)
}

// AddCompositeExtract adds OpCompositeExtract.
func (b *ModuleBuilder) AddCompositeExtract(resultType, composite uint32, indices ...uint32) uint32 {
	return b.typed(sectionFunction, OpCompositeExtract, resultType, append([]uint32{composite}, indices...)...)
}

// AddVectorShuffle adds OpVectorShuffle.
func (b *ModuleBuilder) AddVectorShuffle(resultType, vec1, vec2 uint32, components ...uint32) uint32 {
	return b.typed(sectionFunction, OpVectorShuffle, resultType, append([]uint32{vec1, vec2}, components...)...)
}

// AddSelect adds OpSelect.
func (b *ModuleBuilder) AddSelect(resultType, condition, accept, reject uint32) uint32 {
	return b.typed(sectionFunction, OpSelect, resultType, condition, accept, reject)
}

// AddFunctionCall adds OpFunctionCall.
func (b *ModuleBuilder) AddFunctionCall(resultType, fn uint32, args ...uint32) uint32 {
	return b.typed(sectionFunction, OpFunctionCall, resultType, append([]uint32{fn}, args...)...)
}

// AddExtInst adds OpExtInst.
func (b *ModuleBuilder) AddExtInst(resultType, set, instruction uint32, operands ...uint32) uint32 {
	return b.typed(sectionFunction, OpExtInst, resultType, append([]uint32{set, instruction}, operands...)...)
}

// AddAtomic adds a read-modify-write atomic taking a single value, such
// as OpAtomicIAdd. scope and semantics are constant ids.
func (b *ModuleBuilder) AddAtomic(opcode OpCode, resultType, pointer, scope, semantics, value uint32) uint32 {
	return b.typed(sectionFunction, opcode, resultType, pointer, scope, semantics, value)
}

// Words returns the module as words, header included.
func (b *ModuleBuilder) Words() []uint32 {
	total := HeaderWords
	for _, sec := range b.sections {
		for _, inst := range sec {
			total += len(inst.Words) + 1
		}
	}
	words := make([]uint32, 0, total)
	words = append(words, MagicNumber, b.version.Word(), b.generator, b.nextID, 0)
	for _, sec := range b.sections {
		for _, inst := range sec {
			words = append(words, inst.Encode()...)
		}
	}
	return words
}

// Build returns the module as little-endian bytes.
func (b *ModuleBuilder) Build() []byte {
	return WordsToBytes(b.Words())
}
