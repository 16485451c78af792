package spirv

import (
	"fmt"

	"github.com/tliron/commonlog"
	"tlog.app/go/errors"

	"github.com/gogpu/spvfront/ir"
)

// Options configures the frontend.
type Options struct {
	// AdjustCoordinateSpace negates the Y component of vertex position
	// outputs, converting SPIR-V clip space to the IR convention.
	AdjustCoordinateSpace bool

	// StrictCapabilities rejects recognized capabilities the frontend does
	// not support. When false they are reported as warnings.
	StrictCapabilities bool

	// BlockCtxDumpPrefix, when not empty, writes the block context of every
	// function to "<prefix>-<function id>.txt".
	BlockCtxDumpPrefix string
}

// DefaultOptions returns the default frontend options.
func DefaultOptions() Options {
	return Options{
		AdjustCoordinateSpace: true,
		StrictCapabilities:    true,
	}
}

// Warning is a non-fatal diagnostic.
type Warning struct {
	Message string
}

// Result is a parsed module and the warnings produced along the way.
type Result struct {
	Module   *ir.Module
	Warnings []Warning
}

// Parse decodes a little-endian SPIR-V binary into an IR module.
func Parse(data []byte, opts Options) (*Result, error) {
	words, err := BytesToWords(data)
	if err != nil {
		return nil, err
	}
	return ParseWords(words, opts)
}

// ParseWords decodes a SPIR-V module given as words.
func ParseWords(words []uint32, opts Options) (*Result, error) {
	f := newFrontend(words, opts)
	module, err := f.parse()
	if err != nil {
		return nil, err
	}
	return &Result{Module: module, Warnings: f.warnings}, nil
}

// frontend holds the state of one parse. It is used once and discarded.
type frontend struct {
	opts  Options
	log   commonlog.Logger
	dec   *Decoder
	phase phaseGuard

	module   *ir.Module
	types    *ir.TypeRegistry
	layouter ir.Layouter
	decor    decorations

	glslSet    uint32 // id of the GLSL.std.450 import, 0 when absent
	voidTypeID uint32

	lookupType         map[uint32]lookupType
	lookupConstant     map[uint32]lookupConstant
	lookupVariable     map[uint32]lookupVariable
	lookupFunctionType map[uint32]lookupFunctionType
	lookupFunction     map[uint32]*lookupFunction
	lookupMember       map[memberRef]lookupMember
	entryPoints        map[uint32]*entryPoint
	entryOrder         []uint32
	storageBuffers     map[ir.TypeHandle]ir.StorageAccess
	handleSampling     map[ir.GlobalVariableHandle]ir.SamplingFlags
	upgrades           *ir.AtomicUpgrades
	perVertexAccess    map[ir.BuiltinValue]struct{}

	// Per function.
	fn            *ir.Function
	fnID          uint32
	em            *emitter
	lookupExpr    map[uint32]lookupExpression
	loadOverrides map[uint32]loadOverride
	sampledImages map[uint32]sampledImage
	paramSampling []ir.SamplingFlags

	// Parsed functions in definition order, patched into the module by
	// patchCalls.
	functions   []ir.Function
	functionIDs []uint32
	calls       *callGraph
	wrappers    []entryWrapper

	warnings []Warning
}

func newFrontend(words []uint32, opts Options) *frontend {
	return &frontend{
		opts:               opts,
		log:                commonlog.GetLogger("spvfront.spirv"),
		dec:                NewDecoder(words),
		module:             &ir.Module{},
		types:              ir.NewTypeRegistry(),
		decor:              newDecorations(),
		lookupType:         make(map[uint32]lookupType),
		lookupConstant:     make(map[uint32]lookupConstant),
		lookupVariable:     make(map[uint32]lookupVariable),
		lookupFunctionType: make(map[uint32]lookupFunctionType),
		lookupFunction:     make(map[uint32]*lookupFunction),
		lookupMember:       make(map[memberRef]lookupMember),
		entryPoints:        make(map[uint32]*entryPoint),
		storageBuffers:     make(map[ir.TypeHandle]ir.StorageAccess),
		handleSampling:     make(map[ir.GlobalVariableHandle]ir.SamplingFlags),
		upgrades:           ir.NewAtomicUpgrades(),
		perVertexAccess:    make(map[ir.BuiltinValue]struct{}),
		calls:              newCallGraph(),
	}
}

func (f *frontend) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	f.log.Warning(msg)
	f.warnings = append(f.warnings, Warning{Message: msg})
}

func (f *frontend) parse() (*ir.Module, error) {
	header, err := f.dec.Header()
	if err != nil {
		return nil, err
	}
	f.log.Debugf("version %v, generator 0x%08x, bound %d", header.Version, header.Generator, header.Bound)

	for !f.dec.Done() {
		inst, err := f.dec.NextInstruction()
		if err != nil {
			return nil, err
		}
		start := f.dec.InstructionOffset()
		if err := f.instruction(inst); err != nil {
			return nil, errors.Wrap(atOffset(err, start), "%v", inst.Op)
		}
	}
	return f.finish()
}

// instruction handles one module-level instruction.
func (f *frontend) instruction(inst Instruction) error {
	switch inst.Op {
	case OpNop, OpLine, OpNoLine:
		return f.dec.Finish(inst)
	}
	phase, ok := phaseOf(inst.Op)
	if !ok {
		return unsupportedInstruction(f.phase.current, inst.Op)
	}
	if err := f.phase.advance(phase, inst.Op); err != nil {
		return err
	}
	if inst.Op == OpFunction {
		return f.parseFunction(inst)
	}

	ops, err := f.dec.Operands(inst)
	if err != nil {
		return err
	}
	switch inst.Op {
	case OpCapability:
		err = f.parseCapability(inst, ops)
	case OpExtension:
		err = f.parseExtension(inst, ops)
	case OpExtInstImport:
		err = f.parseExtInstImport(inst, ops)
	case OpMemoryModel:
		err = inst.Expect(3)
	case OpEntryPoint:
		err = f.parseEntryPoint(inst, ops)
	case OpExecutionMode:
		err = f.parseExecutionMode(inst, ops)
	case OpSource, OpSourceExtension, OpSourceContinued, OpString, OpModuleProcessed:
		f.log.Debugf("skipping %v", inst.Op)
	case OpName:
		err = f.parseName(inst, ops)
	case OpMemberName:
		err = f.parseMemberName(inst, ops)
	case OpDecorate:
		err = f.parseDecorate(inst, ops)
	case OpMemberDecorate:
		err = f.parseMemberDecorate(inst, ops)
	case OpDecorateString, OpMemberDecorateString:
		f.log.Debugf("skipping %v", inst.Op)
	case OpTypeVoid:
		err = f.parseTypeVoid(inst, ops)
	case OpTypeBool:
		err = f.parseTypeBool(inst, ops)
	case OpTypeInt:
		err = f.parseTypeInt(inst, ops)
	case OpTypeFloat:
		err = f.parseTypeFloat(inst, ops)
	case OpTypeVector:
		err = f.parseTypeVector(inst, ops)
	case OpTypeMatrix:
		err = f.parseTypeMatrix(inst, ops)
	case OpTypeFunction:
		err = f.parseTypeFunction(inst, ops)
	case OpTypePointer:
		err = f.parseTypePointer(inst, ops)
	case OpTypeArray:
		err = f.parseTypeArray(inst, ops)
	case OpTypeRuntimeArray:
		err = f.parseTypeRuntimeArray(inst, ops)
	case OpTypeStruct:
		err = f.parseTypeStruct(inst, ops)
	case OpTypeImage:
		err = f.parseTypeImage(inst, ops)
	case OpTypeSampledImage:
		err = f.parseTypeSampledImage(inst, ops)
	case OpTypeSampler:
		err = f.parseTypeSampler(inst, ops)
	case OpConstant, OpSpecConstant:
		err = f.parseConstant(inst, ops)
	case OpConstantComposite, OpSpecConstantComposite:
		err = f.parseCompositeConstant(inst, ops)
	case OpConstantNull, OpUndef:
		err = f.parseNullConstant(inst, ops)
	case OpConstantTrue, OpSpecConstantTrue:
		err = f.parseBoolConstant(inst, ops, true)
	case OpConstantFalse, OpSpecConstantFalse:
		err = f.parseBoolConstant(inst, ops, false)
	case OpVariable:
		err = f.parseGlobalVariable(inst, ops)
	default:
		err = unsupportedInstruction(f.phase.current, inst.Op)
	}
	if err != nil {
		return err
	}
	return f.dec.Finish(inst)
}

func (f *frontend) parseCapability(inst Instruction, ops []uint32) error {
	if err := inst.Expect(2); err != nil {
		return err
	}
	c := Capability(ops[0])
	if !enumDefined(KindCapability, ops[0]) {
		return newError(ErrUnknownCapability, "capability %d", ops[0])
	}
	if c.Supported() {
		return nil
	}
	if f.opts.StrictCapabilities {
		return newError(ErrUnsupportedCapability, "capability %v", c)
	}
	f.warnf("unsupported capability %v", c)
	return nil
}

func (f *frontend) parseExtension(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(2); err != nil {
		return err
	}
	name, _, err := DecodeString(ops)
	if err != nil {
		return err
	}
	if ExtensionSupported(name) {
		return nil
	}
	if f.opts.StrictCapabilities {
		return newError(ErrUnsupportedExtension, "extension %q", name)
	}
	f.warnf("unsupported extension %q", name)
	return nil
}

func (f *frontend) parseExtInstImport(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(3); err != nil {
		return err
	}
	name, _, err := DecodeString(ops[1:])
	if err != nil {
		return err
	}
	if name != GLSLStd450 {
		return newError(ErrUnsupportedExtSet, "extended instruction set %q", name)
	}
	f.glslSet = ops[0]
	return nil
}

func (f *frontend) parseEntryPoint(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(4); err != nil {
		return err
	}
	model := ExecutionModel(ops[0])
	fnID := ops[1]
	name, used, err := DecodeString(ops[2:])
	if err != nil {
		return err
	}

	var stage ir.ShaderStage
	switch model {
	case ExecutionModelVertex:
		stage = ir.StageVertex
	case ExecutionModelFragment:
		stage = ir.StageFragment
	case ExecutionModelGLCompute:
		stage = ir.StageCompute
	default:
		return newError(ErrUnsupportedExecutionModel, "execution model %v", model)
	}

	if _, ok := f.entryPoints[fnID]; !ok {
		f.entryOrder = append(f.entryOrder, fnID)
	}
	f.entryPoints[fnID] = &entryPoint{
		name:        name,
		stage:       stage,
		variableIDs: append([]uint32(nil), ops[2+used:]...),
	}
	return nil
}

func (f *frontend) parseExecutionMode(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(3); err != nil {
		return err
	}
	ep, ok := f.entryPoints[ops[0]]
	if !ok {
		return newError(ErrInvalidID, "execution mode for %%%d, which is not an entry point", ops[0])
	}
	mode := ExecutionMode(ops[1])

	conservative := func(c ir.ConservativeDepth) {
		if ep.earlyDepth == nil {
			ep.earlyDepth = &ir.EarlyDepthTest{}
		}
		ep.earlyDepth.Conservative = &c
	}

	switch mode {
	case ExecutionModeEarlyFragmentTests:
		if ep.earlyDepth == nil {
			ep.earlyDepth = &ir.EarlyDepthTest{}
		}
	case ExecutionModeDepthUnchanged:
		conservative(ir.ConservativeDepthUnchanged)
	case ExecutionModeDepthGreater:
		conservative(ir.ConservativeDepthGreaterEqual)
	case ExecutionModeDepthLess:
		conservative(ir.ConservativeDepthLessEqual)
	case ExecutionModeDepthReplacing, ExecutionModeOriginUpperLeft:
		// Implied by the IR.
	case ExecutionModeLocalSize:
		if err := inst.Expect(6); err != nil {
			return err
		}
		ep.workgroup = [3]uint32{ops[2], ops[3], ops[4]}
	default:
		return newError(ErrUnsupportedExecutionMode, "execution mode %v", mode)
	}
	return nil
}

func (f *frontend) parseName(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(3); err != nil {
		return err
	}
	name, _, err := DecodeString(ops[1:])
	if err != nil {
		return err
	}
	f.decor.item(ops[0]).name = name
	return nil
}

func (f *frontend) parseMemberName(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(4); err != nil {
		return err
	}
	name, _, err := DecodeString(ops[2:])
	if err != nil {
		return err
	}
	f.decor.member(ops[0], ops[1]).name = name
	return nil
}

func (f *frontend) parseDecorate(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(3); err != nil {
		return err
	}
	return f.decor.item(ops[0]).apply(f.log, Decoration(ops[1]), ops[2:])
}

func (f *frontend) parseMemberDecorate(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(4); err != nil {
		return err
	}
	return f.decor.member(ops[0], ops[1]).apply(f.log, Decoration(ops[2]), ops[3:])
}

// finish runs the whole-module passes once every function is parsed.
func (f *frontend) finish() (*ir.Module, error) {
	if err := f.buildEntryPoints(); err != nil {
		return nil, err
	}
	if err := f.patchCalls(); err != nil {
		return nil, err
	}

	f.module.Types = f.types.GetTypes()
	if err := ir.UpgradeAtomics(f.module, f.upgrades); err != nil {
		return nil, wrapError(ErrAtomicUpgrade, err)
	}
	if err := ir.PatchComparisonSampling(f.module, f.handleSampling); err != nil {
		return nil, wrapError(ErrInconsistentComparisonSampling, err)
	}
	if err := ir.ResolveModuleTypes(f.module); err != nil {
		f.log.Errorf("type resolution: %v", err)
		f.warnf("type resolution incomplete: %v", err)
	}

	for _, msg := range f.decor.leftovers() {
		f.warnf("%s", msg)
	}
	return f.module, nil
}
