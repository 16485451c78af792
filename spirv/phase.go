package spirv

// ModulePhase is a section of a SPIR-V module. Sections must appear in
// ascending order; the current phase never decreases.
type ModulePhase uint8

const (
	PhaseNone ModulePhase = iota
	PhaseCapability
	PhaseExtension
	PhaseExtInstImport
	PhaseMemoryModel
	PhaseEntryPoint
	PhaseExecutionMode
	PhaseSource
	PhaseName
	PhaseModuleProcessed
	PhaseAnnotation
	PhaseType
	PhaseFunction
)

var phaseNames = [...]string{
	PhaseNone:            "None",
	PhaseCapability:      "Capability",
	PhaseExtension:       "Extension",
	PhaseExtInstImport:   "ExtInstImport",
	PhaseMemoryModel:     "MemoryModel",
	PhaseEntryPoint:      "EntryPoint",
	PhaseExecutionMode:   "ExecutionMode",
	PhaseSource:          "Source",
	PhaseName:            "Name",
	PhaseModuleProcessed: "ModuleProcessed",
	PhaseAnnotation:      "Annotation",
	PhaseType:            "Type",
	PhaseFunction:        "Function",
}

func (p ModulePhase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "Unknown"
}

// phaseOf returns the module section an opcode belongs to outside of a
// function body. ok is false for opcodes that have no fixed section.
func phaseOf(op OpCode) (phase ModulePhase, ok bool) {
	switch op {
	case OpCapability:
		return PhaseCapability, true
	case OpExtension:
		return PhaseExtension, true
	case OpExtInstImport:
		return PhaseExtInstImport, true
	case OpMemoryModel:
		return PhaseMemoryModel, true
	case OpEntryPoint:
		return PhaseEntryPoint, true
	case OpExecutionMode, OpExecutionModeID:
		return PhaseExecutionMode, true
	case OpSource, OpSourceExtension, OpSourceContinued, OpString:
		return PhaseSource, true
	case OpName, OpMemberName:
		return PhaseName, true
	case OpModuleProcessed:
		return PhaseModuleProcessed, true
	case OpDecorate, OpMemberDecorate, OpDecorationGroup, OpGroupDecorate, OpGroupMemberDecorate,
		OpDecorateID, OpDecorateString, OpMemberDecorateString:
		return PhaseAnnotation, true
	case OpFunction:
		return PhaseFunction, true
	}
	if op >= OpTypeVoid && op <= OpTypeForwardPointer {
		return PhaseType, true
	}
	switch op {
	case OpConstantTrue, OpConstantFalse, OpConstant, OpConstantComposite, OpConstantSampler,
		OpConstantNull, OpSpecConstantTrue, OpSpecConstantFalse, OpSpecConstant,
		OpSpecConstantComposite, OpSpecConstantOp, OpVariable, OpUndef:
		return PhaseType, true
	}
	return PhaseNone, false
}

// phaseGuard tracks the current module section.
type phaseGuard struct {
	current ModulePhase
}

// advance moves to target. Moving backwards is an out-of-order section.
func (g *phaseGuard) advance(target ModulePhase, op OpCode) error {
	if target < g.current {
		return unsupportedInstruction(g.current, op)
	}
	g.current = target
	return nil
}
