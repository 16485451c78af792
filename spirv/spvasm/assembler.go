// Package spvasm assembles SPIR-V assembly text into binary words.
//
// The accepted syntax is the one printed by common disassemblers:
//
//	; comment
//	OpCapability Shader
//	%void = OpTypeVoid
//	%f32 = OpTypeFloat 32
//	%one = OpConstant %f32 1.0
//
// Ids are written as %name. Purely numeric names keep their number; other
// names are numbered after the largest numeric id in order of first use.
// Enumerant operands are written by name and mask operands may join
// several names with '|'.
package spvasm

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
	"tlog.app/go/errors"

	"github.com/gogpu/spvfront/spirv"
)

var log = commonlog.GetLogger("spvfront.spvasm")

// Options configures the assembler.
type Options struct {
	// Version is written into the module header.
	Version spirv.Version
}

// DefaultOptions returns the default assembler options.
func DefaultOptions() Options {
	return Options{Version: spirv.Version1_0}
}

// AssembleFile reads and assembles the file at path.
func AssembleFile(path string, opts Options) ([]uint32, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}
	return Assemble(path, string(source), opts)
}

// Assemble assembles source. filename is used in error positions only.
func Assemble(filename, source string, opts Options) ([]uint32, error) {
	if !strings.HasSuffix(source, "\n") {
		source += "\n"
	}
	module, err := parser.ParseString(filename, source)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}
	a := newAssembler(opts)
	return a.assemble(module)
}

// scalar records the declared width of numeric types, so constants can be
// encoded with the right number of words.
type scalar struct {
	float  bool
	signed bool
	width  uint32
}

type assembler struct {
	opts    Options
	ids     map[string]uint32
	next    uint32
	scalars map[uint32]scalar
}

func newAssembler(opts Options) *assembler {
	return &assembler{
		opts:    opts,
		ids:     make(map[string]uint32),
		scalars: make(map[uint32]scalar),
	}
}

func (a *assembler) assemble(m *Module) ([]uint32, error) {
	a.numberIDs(m)

	words := []uint32{spirv.MagicNumber, a.opts.Version.Word(), spirv.GeneratorID, 0, 0}
	for _, line := range m.Lines {
		inst, err := a.line(line)
		if err != nil {
			return nil, errors.Wrap(err, "%v", line.Pos)
		}
		words = append(words, inst.Encode()...)
	}
	words[3] = a.next
	log.Debugf("assembled %d instructions, bound %d", len(m.Lines), a.next)
	return words, nil
}

// numberIDs assigns ids: numeric names first, then the rest in order of
// appearance.
func (a *assembler) numberIDs(m *Module) {
	var highest uint32
	visit := func(name string, numeric bool) {
		if _, ok := a.ids[name]; ok {
			return
		}
		n, err := strconv.ParseUint(name[1:], 10, 32)
		if numeric && err == nil {
			a.ids[name] = uint32(n)
			highest = max(highest, uint32(n))
		}
		if !numeric && err != nil {
			highest++
			a.ids[name] = highest
		}
	}
	for _, numeric := range []bool{true, false} {
		for _, line := range m.Lines {
			if line.Result != nil {
				visit(*line.Result, numeric)
			}
			for _, op := range line.Operands {
				if op.ID != nil {
					visit(*op.ID, numeric)
				}
			}
		}
	}
	a.next = highest + 1
}

func (a *assembler) line(line *Line) (spirv.RawInstruction, error) {
	op, ok := spirv.LookupOpCode(line.Opcode)
	if !ok {
		return spirv.RawInstruction{}, errors.New("unknown opcode %q", line.Opcode)
	}
	hasResult, hasType := op.HasResult()
	if hasResult != (line.Result != nil) {
		if hasResult {
			return spirv.RawInstruction{}, errors.New("%v needs a result id", op)
		}
		return spirv.RawInstruction{}, errors.New("%v has no result id", op)
	}

	operands := line.Operands
	b := spirv.NewInstructionBuilder()
	var resultType uint32
	if hasType {
		if len(operands) == 0 || operands[0].ID == nil {
			return spirv.RawInstruction{}, errors.New("%v needs a result type", op)
		}
		resultType = a.ids[*operands[0].ID]
		b.AddWord(resultType)
		operands = operands[1:]
	}
	if hasResult {
		b.AddWord(a.ids[*line.Result])
	}

	for i, operand := range operands {
		if err := a.operand(b, op, resultType, operand); err != nil {
			return spirv.RawInstruction{}, errors.Wrap(err, "operand %d", i)
		}
	}
	if hasResult {
		a.declare(op, a.ids[*line.Result], operands)
	}
	return b.Build(op), nil
}

// declare remembers numeric type declarations.
func (a *assembler) declare(op spirv.OpCode, id uint32, operands []*Operand) {
	literal := func(i int) uint32 {
		if i >= len(operands) || operands[i].Int == nil {
			return 0
		}
		v, _ := strconv.ParseUint(*operands[i].Int, 0, 32)
		return uint32(v)
	}
	switch op {
	case spirv.OpTypeInt:
		a.scalars[id] = scalar{signed: literal(1) != 0, width: literal(0)}
	case spirv.OpTypeFloat:
		a.scalars[id] = scalar{float: true, width: literal(0)}
	}
}

func (a *assembler) operand(b *spirv.InstructionBuilder, op spirv.OpCode, resultType uint32, operand *Operand) error {
	switch {
	case operand.ID != nil:
		b.AddWord(a.ids[*operand.ID])
	case operand.String != nil:
		b.AddString(*operand.String)
	case operand.Float != nil, operand.Int != nil:
		words, err := a.number(op, resultType, operand)
		if err != nil {
			return err
		}
		b.AddWord(words...)
	case operand.Word != nil:
		v, err := enumerant(op, *operand.Word)
		if err != nil {
			return err
		}
		b.AddWord(v)
	}
	return nil
}

// number encodes a numeric literal. Constants take the width of their
// result type; any other literal is a single word.
func (a *assembler) number(op spirv.OpCode, resultType uint32, operand *Operand) ([]uint32, error) {
	s := scalar{width: 32}
	if op == spirv.OpConstant || op == spirv.OpSpecConstant {
		if declared, ok := a.scalars[resultType]; ok {
			s = declared
		}
	}
	if operand.Float != nil {
		s.float = true
	}

	// Hex integers give the raw bits of a float, which is how values that
	// are not finite are written.
	if s.float && operand.Int != nil && strings.HasPrefix(strings.ToLower(*operand.Int), "0x") {
		bits, err := strconv.ParseUint(*operand.Int, 0, int(s.width))
		if err != nil {
			return nil, errors.Wrap(err, "float bits %q", *operand.Int)
		}
		if s.width == 64 {
			return []uint32{uint32(bits), uint32(bits >> 32)}, nil
		}
		return []uint32{uint32(bits)}, nil
	}
	if s.float {
		text := lexerValue(operand)
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errors.Wrap(err, "float literal %q", text)
		}
		if s.width == 64 {
			bits := math.Float64bits(f)
			return []uint32{uint32(bits), uint32(bits >> 32)}, nil
		}
		return []uint32{math.Float32bits(float32(f))}, nil
	}

	text := *operand.Int
	var bits uint64
	if strings.HasPrefix(text, "-") {
		v, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return nil, errors.Wrap(err, "integer literal %q", text)
		}
		bits = uint64(v)
	} else {
		v, err := strconv.ParseUint(strings.TrimPrefix(text, "+"), 0, 64)
		if err != nil {
			return nil, errors.Wrap(err, "integer literal %q", text)
		}
		bits = v
	}
	if s.width == 64 {
		return []uint32{uint32(bits), uint32(bits >> 32)}, nil
	}
	return []uint32{uint32(bits)}, nil
}

func lexerValue(operand *Operand) string {
	if operand.Float != nil {
		return *operand.Float
	}
	return *operand.Int
}

// enumerant resolves a symbolic operand against the operand kinds that
// op accepts.
func enumerant(op spirv.OpCode, name string) (uint32, error) {
	for _, kind := range operandKinds[op] {
		if v, ok := spirv.LookupEnum(kind, name); ok {
			return v, nil
		}
	}
	return 0, errors.New("%q is not an operand of %v", name, op)
}

var imageOperands = []spirv.EnumKind{spirv.KindImageOperands}

// operandKinds lists, per opcode, the enumerant kinds its symbolic
// operands are looked up in, in order of preference.
var operandKinds = map[spirv.OpCode][]spirv.EnumKind{
	spirv.OpCapability:      {spirv.KindCapability},
	spirv.OpMemoryModel:     {spirv.KindAddressingModel, spirv.KindMemoryModel},
	spirv.OpEntryPoint:      {spirv.KindExecutionModel},
	spirv.OpExecutionMode:   {spirv.KindExecutionMode},
	spirv.OpSource:          {spirv.KindSourceLanguage},
	spirv.OpDecorate:        {spirv.KindDecoration, spirv.KindBuiltIn},
	spirv.OpMemberDecorate:  {spirv.KindDecoration, spirv.KindBuiltIn},
	spirv.OpTypePointer:     {spirv.KindStorageClass},
	spirv.OpVariable:        {spirv.KindStorageClass},
	spirv.OpTypeImage:       {spirv.KindDim, spirv.KindImageFormat},
	spirv.OpFunction:        {spirv.KindFunctionControl},
	spirv.OpSelectionMerge:  {spirv.KindSelectionControl},
	spirv.OpLoopMerge:       {spirv.KindLoopControl},
	spirv.OpLoad:            {spirv.KindMemoryAccess},
	spirv.OpStore:           {spirv.KindMemoryAccess},
	spirv.OpExtInst:         {spirv.KindGLSLInstruction},
	spirv.OpImageFetch:      imageOperands,
	spirv.OpImageRead:       imageOperands,
	spirv.OpImageWrite:      imageOperands,
	spirv.OpImageGather:     imageOperands,
	spirv.OpImageDrefGather: imageOperands,

	spirv.OpImageSampleImplicitLod:     imageOperands,
	spirv.OpImageSampleExplicitLod:     imageOperands,
	spirv.OpImageSampleDrefImplicitLod: imageOperands,
	spirv.OpImageSampleDrefExplicitLod: imageOperands,
}
