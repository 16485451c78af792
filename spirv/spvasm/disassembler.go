package spvasm

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"tlog.app/go/errors"

	"github.com/gogpu/spvfront/spirv"
)

// DisassembleOptions configures the disassembler.
type DisassembleOptions struct {
	// Names prints ids with the name given by OpName where the name is a
	// valid, unique id token. Other ids are printed as numbers.
	Names bool
}

type operandClass uint8

const (
	classID operandClass = iota
	classLiteral
	classString
	classEnum
	// classPair alternates literal and id, as in OpSwitch targets.
	classPair
)

type operandSpec struct {
	class operandClass
	kind  spirv.EnumKind
}

// layout describes the operands following the result type and result id.
// Words past the listed operands are printed as rest.
type layout struct {
	operands []operandSpec
	rest     operandClass
}

var (
	opID  = operandSpec{class: classID}
	opLit = operandSpec{class: classLiteral}
	opStr = operandSpec{class: classString}
)

func enum(kind spirv.EnumKind) operandSpec {
	return operandSpec{class: classEnum, kind: kind}
}

var (
	imageLayout  = layout{operands: []operandSpec{opID, opID, enum(spirv.KindImageOperands)}}
	image3Layout = layout{operands: []operandSpec{opID, opID, opID, enum(spirv.KindImageOperands)}}
)

var layouts = map[spirv.OpCode]layout{
	spirv.OpSource:           {operands: []operandSpec{enum(spirv.KindSourceLanguage), opLit, opID, opStr}},
	spirv.OpSourceExtension:  {operands: []operandSpec{opStr}},
	spirv.OpName:             {operands: []operandSpec{opID, opStr}},
	spirv.OpMemberName:       {operands: []operandSpec{opID, opLit, opStr}},
	spirv.OpString:           {operands: []operandSpec{opStr}},
	spirv.OpLine:             {operands: []operandSpec{opID, opLit, opLit}},
	spirv.OpExtension:        {operands: []operandSpec{opStr}},
	spirv.OpExtInstImport:    {operands: []operandSpec{opStr}},
	spirv.OpExtInst:          {operands: []operandSpec{opID, enum(spirv.KindGLSLInstruction)}},
	spirv.OpMemoryModel:      {operands: []operandSpec{enum(spirv.KindAddressingModel), enum(spirv.KindMemoryModel)}},
	spirv.OpEntryPoint:       {operands: []operandSpec{enum(spirv.KindExecutionModel), opID, opStr}},
	spirv.OpExecutionMode:    {operands: []operandSpec{opID, enum(spirv.KindExecutionMode)}, rest: classLiteral},
	spirv.OpCapability:       {operands: []operandSpec{enum(spirv.KindCapability)}},
	spirv.OpTypeInt:          {operands: []operandSpec{opLit, opLit}},
	spirv.OpTypeFloat:        {operands: []operandSpec{opLit}},
	spirv.OpTypeVector:       {operands: []operandSpec{opID, opLit}},
	spirv.OpTypeMatrix:       {operands: []operandSpec{opID, opLit}},
	spirv.OpTypeImage:        {operands: []operandSpec{opID, enum(spirv.KindDim), opLit, opLit, opLit, opLit, enum(spirv.KindImageFormat)}, rest: classLiteral},
	spirv.OpTypePointer:      {operands: []operandSpec{enum(spirv.KindStorageClass), opID}},
	spirv.OpConstantSampler:  {operands: []operandSpec{opLit, opLit, opLit}},
	spirv.OpFunction:         {operands: []operandSpec{enum(spirv.KindFunctionControl), opID}},
	spirv.OpVariable:         {operands: []operandSpec{enum(spirv.KindStorageClass), opID}},
	spirv.OpLoad:             {operands: []operandSpec{opID, enum(spirv.KindMemoryAccess)}, rest: classLiteral},
	spirv.OpStore:            {operands: []operandSpec{opID, opID, enum(spirv.KindMemoryAccess)}, rest: classLiteral},
	spirv.OpDecorate:         {operands: []operandSpec{opID, enum(spirv.KindDecoration)}, rest: classLiteral},
	spirv.OpMemberDecorate:   {operands: []operandSpec{opID, opLit, enum(spirv.KindDecoration)}, rest: classLiteral},
	spirv.OpVectorShuffle:    {operands: []operandSpec{opID, opID}, rest: classLiteral},
	spirv.OpCompositeExtract: {operands: []operandSpec{opID}, rest: classLiteral},
	spirv.OpCompositeInsert:  {operands: []operandSpec{opID, opID}, rest: classLiteral},
	spirv.OpSpecConstantOp:   {operands: []operandSpec{opLit}},
	spirv.OpSelectionMerge:   {operands: []operandSpec{opID, enum(spirv.KindSelectionControl)}},
	spirv.OpLoopMerge:        {operands: []operandSpec{opID, opID, enum(spirv.KindLoopControl)}, rest: classLiteral},
	spirv.OpSwitch:           {operands: []operandSpec{opID, opID}, rest: classPair},
	spirv.OpModuleProcessed:  {operands: []operandSpec{opStr}},

	spirv.OpBranchConditional:          {operands: []operandSpec{opID, opID, opID}, rest: classLiteral},
	spirv.OpImageSampleImplicitLod:     imageLayout,
	spirv.OpImageSampleExplicitLod:     imageLayout,
	spirv.OpImageFetch:                 imageLayout,
	spirv.OpImageRead:                  imageLayout,
	spirv.OpImageSampleDrefImplicitLod: image3Layout,
	spirv.OpImageSampleDrefExplicitLod: image3Layout,
	spirv.OpImageGather:                image3Layout,
	spirv.OpImageDrefGather:            image3Layout,
	spirv.OpImageWrite:                 image3Layout,
}

var nameToken = regexp.MustCompile(`^[A-Za-z_][\w.]*$`)

type disassembler struct {
	opts    DisassembleOptions
	names   map[uint32]string
	scalars map[uint32]scalar
	out     strings.Builder
}

// Disassemble prints words as assembly text that Assemble accepts. The
// module header is printed as comments.
//
// Floating point constants that are not finite are printed as raw hex
// bits.
func Disassemble(words []uint32, opts DisassembleOptions) (string, error) {
	d := &disassembler{opts: opts, names: make(map[uint32]string), scalars: make(map[uint32]scalar)}
	dec := spirv.NewDecoder(words)
	h, err := dec.Header()
	if err != nil {
		return "", err
	}
	if opts.Names {
		if err := d.collectNames(words); err != nil {
			return "", err
		}
	}
	fmt.Fprintf(&d.out, "; SPIR-V\n; Version: %v\n; Generator: 0x%08x\n; Bound: %d\n; Schema: %d\n", h.Version, h.Generator, h.Bound, h.Schema)

	for !dec.Done() {
		offset := dec.Offset()
		inst, err := dec.NextInstruction()
		if err != nil {
			return "", err
		}
		ops, err := dec.Operands(inst)
		if err != nil {
			return "", err
		}
		if err := dec.Finish(inst); err != nil {
			return "", err
		}
		if err := d.instruction(inst.Op, ops); err != nil {
			return "", errors.Wrap(err, "word %d: %v", offset, inst.Op)
		}
	}
	log.Debugf("disassembled %d words", len(words))
	return d.out.String(), nil
}

// collectNames gathers the OpName of every id in a first pass, so forward
// references print the same token as the definition.
func (d *disassembler) collectNames(words []uint32) error {
	dec := spirv.NewDecoder(words)
	if _, err := dec.Header(); err != nil {
		return err
	}
	users := make(map[string]int)
	named := make(map[uint32]string)
	for !dec.Done() {
		inst, err := dec.NextInstruction()
		if err != nil {
			return err
		}
		ops, err := dec.Operands(inst)
		if err != nil {
			return err
		}
		if err := dec.Finish(inst); err != nil {
			return err
		}
		if inst.Op != spirv.OpName || len(ops) < 2 {
			continue
		}
		name, _, err := spirv.DecodeString(ops[1:])
		if err != nil || !nameToken.MatchString(name) {
			continue
		}
		named[ops[0]] = name
		users[name]++
	}
	for target, name := range named {
		if users[name] == 1 {
			d.names[target] = name
		}
	}
	return nil
}

func (d *disassembler) id(v uint32) string {
	if name, ok := d.names[v]; ok {
		return "%" + name
	}
	return "%" + strconv.FormatUint(uint64(v), 10)
}

func (d *disassembler) instruction(op spirv.OpCode, ops []uint32) error {
	if !op.Known() {
		return errors.New("unknown opcode %d", uint16(op))
	}
	hasResult, hasType := op.HasResult()
	var fields []string
	var resultType uint32
	if hasType {
		if len(ops) == 0 {
			return errors.New("missing result type")
		}
		resultType = ops[0]
		fields = append(fields, d.id(resultType))
		ops = ops[1:]
	}
	var result uint32
	if hasResult {
		if len(ops) == 0 {
			return errors.New("missing result id")
		}
		result = ops[0]
		ops = ops[1:]
	}

	var (
		rest []string
		err  error
	)
	switch op {
	case spirv.OpConstant, spirv.OpSpecConstant:
		rest, err = d.constant(resultType, ops)
	default:
		rest, err = d.operands(op, ops)
	}
	if err != nil {
		return err
	}
	fields = append(fields, rest...)

	if hasResult {
		fmt.Fprintf(&d.out, "%s = ", d.id(result))
		d.declare(op, result, ops)
	}
	d.out.WriteString(op.String())
	for _, f := range fields {
		d.out.WriteByte(' ')
		d.out.WriteString(f)
	}
	d.out.WriteByte('\n')
	return nil
}

// declare remembers numeric types for decoding constants.
func (d *disassembler) declare(op spirv.OpCode, result uint32, ops []uint32) {
	switch {
	case op == spirv.OpTypeInt && len(ops) == 2:
		d.scalars[result] = scalar{signed: ops[1] != 0, width: ops[0]}
	case op == spirv.OpTypeFloat && len(ops) >= 1:
		d.scalars[result] = scalar{float: true, width: ops[0]}
	}
}

func (d *disassembler) operands(op spirv.OpCode, ops []uint32) ([]string, error) {
	l := layouts[op]
	var fields []string
	var decoration spirv.Decoration
	for i, want := range l.operands {
		if len(ops) == 0 {
			return fields, nil
		}
		switch want.class {
		case classID:
			fields = append(fields, d.id(ops[0]))
			ops = ops[1:]
		case classLiteral:
			fields = append(fields, strconv.FormatUint(uint64(ops[0]), 10))
			ops = ops[1:]
		case classEnum:
			if want.kind == spirv.KindDecoration {
				decoration = spirv.Decoration(ops[0])
			}
			fields = append(fields, spirv.EnumName(want.kind, ops[0]))
			ops = ops[1:]
		case classString:
			s, used, err := spirv.DecodeString(ops)
			if err != nil {
				return nil, errors.Wrap(err, "operand %d", i)
			}
			fields = append(fields, strconv.Quote(s))
			ops = ops[used:]
		}
	}

	if decoration == spirv.DecorationBuiltIn && len(ops) == 1 {
		return append(fields, spirv.EnumName(spirv.KindBuiltIn, ops[0])), nil
	}
	for i, w := range ops {
		switch {
		case l.rest == classLiteral, l.rest == classPair && i%2 == 0:
			fields = append(fields, strconv.FormatUint(uint64(w), 10))
		default:
			fields = append(fields, d.id(w))
		}
	}
	return fields, nil
}

// constant prints the value words of OpConstant according to the
// declared width of its type.
func (d *disassembler) constant(resultType uint32, ops []uint32) ([]string, error) {
	s, ok := d.scalars[resultType]
	if !ok {
		return nil, errors.New("constant of non-numeric type %s", d.id(resultType))
	}
	var bits uint64
	switch {
	case s.width == 64 && len(ops) == 2:
		bits = uint64(ops[0]) | uint64(ops[1])<<32
	case s.width != 64 && len(ops) == 1:
		bits = uint64(ops[0])
	default:
		return nil, errors.New("%d value words for a %d-bit constant", len(ops), s.width)
	}

	var text string
	switch {
	case s.float && s.width == 64:
		text = formatFloat(math.Float64frombits(bits), 64, bits)
	case s.float:
		text = formatFloat(float64(math.Float32frombits(uint32(bits))), 32, bits)
	case s.signed && s.width == 64:
		text = strconv.FormatInt(int64(bits), 10)
	case s.signed:
		text = strconv.FormatInt(int64(int32(uint32(bits))), 10)
	default:
		text = strconv.FormatUint(bits, 10)
	}
	return []string{text}, nil
}

func formatFloat(f float64, size int, bits uint64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Sprintf("%#x", bits)
	}
	text := strconv.FormatFloat(f, 'f', -1, size)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text
}
