package spirv

import "github.com/gogpu/spvfront/ir"

var binaryOperators = map[OpCode]ir.BinaryOperator{
	OpIAdd:                   ir.BinaryAdd,
	OpFAdd:                   ir.BinaryAdd,
	OpISub:                   ir.BinarySubtract,
	OpFSub:                   ir.BinarySubtract,
	OpIMul:                   ir.BinaryMultiply,
	OpFMul:                   ir.BinaryMultiply,
	OpVectorTimesScalar:      ir.BinaryMultiply,
	OpVectorTimesMatrix:      ir.BinaryMultiply,
	OpMatrixTimesScalar:      ir.BinaryMultiply,
	OpMatrixTimesVector:      ir.BinaryMultiply,
	OpMatrixTimesMatrix:      ir.BinaryMultiply,
	OpUDiv:                   ir.BinaryDivide,
	OpSDiv:                   ir.BinaryDivide,
	OpFDiv:                   ir.BinaryDivide,
	OpUMod:                   ir.BinaryModulo,
	OpSRem:                   ir.BinaryModulo,
	OpFRem:                   ir.BinaryModulo,
	OpIEqual:                 ir.BinaryEqual,
	OpFOrdEqual:              ir.BinaryEqual,
	OpFUnordEqual:            ir.BinaryEqual,
	OpLogicalEqual:           ir.BinaryEqual,
	OpINotEqual:              ir.BinaryNotEqual,
	OpFOrdNotEqual:           ir.BinaryNotEqual,
	OpFUnordNotEqual:         ir.BinaryNotEqual,
	OpLogicalNotEqual:        ir.BinaryNotEqual,
	OpULessThan:              ir.BinaryLess,
	OpSLessThan:              ir.BinaryLess,
	OpFOrdLessThan:           ir.BinaryLess,
	OpFUnordLessThan:         ir.BinaryLess,
	OpULessThanEqual:         ir.BinaryLessEqual,
	OpSLessThanEqual:         ir.BinaryLessEqual,
	OpFOrdLessThanEqual:      ir.BinaryLessEqual,
	OpFUnordLessThanEqual:    ir.BinaryLessEqual,
	OpUGreaterThan:           ir.BinaryGreater,
	OpSGreaterThan:           ir.BinaryGreater,
	OpFOrdGreaterThan:        ir.BinaryGreater,
	OpFUnordGreaterThan:      ir.BinaryGreater,
	OpUGreaterThanEqual:      ir.BinaryGreaterEqual,
	OpSGreaterThanEqual:      ir.BinaryGreaterEqual,
	OpFOrdGreaterThanEqual:   ir.BinaryGreaterEqual,
	OpFUnordGreaterThanEqual: ir.BinaryGreaterEqual,
	OpBitwiseAnd:             ir.BinaryAnd,
	OpBitwiseXor:             ir.BinaryExclusiveOr,
	OpBitwiseOr:              ir.BinaryInclusiveOr,
	OpLogicalAnd:             ir.BinaryLogicalAnd,
	OpLogicalOr:              ir.BinaryLogicalOr,
}

// operands resolves the operands after the result type and id.
func (b *blockBuilder) operands(ops []uint32, n int) ([]ir.ExpressionHandle, []lookupExpression, error) {
	handles := make([]ir.ExpressionHandle, n)
	lookups := make([]lookupExpression, n)
	for i := 0; i < n; i++ {
		h, le, err := b.value(ops[2+i])
		if err != nil {
			return nil, nil, err
		}
		handles[i], lookups[i] = h, le
	}
	return handles, lookups, nil
}

func (b *blockBuilder) parseUnary(inst Instruction, ops []uint32, op ir.UnaryOperator) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	arg, _, err := b.value(ops[2])
	if err != nil {
		return err
	}
	b.define(ops[1], ops[0], b.em.add(ir.ExprUnary{Op: op, Expr: arg}))
	return nil
}

// parseUnarySigned reinterprets the operand as the result's kind first.
func (b *blockBuilder) parseUnarySigned(inst Instruction, ops []uint32, op ir.UnaryOperator) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	typeID := ops[0]
	arg, le, err := b.value(ops[2])
	if err != nil {
		return err
	}
	if le.typeID != typeID {
		s, err := b.scalarKind(typeID)
		if err != nil {
			return err
		}
		arg = b.em.add(ir.ExprAs{Expr: arg, Kind: s.Kind})
	}
	b.define(ops[1], typeID, b.em.add(ir.ExprUnary{Op: op, Expr: arg}))
	return nil
}

func (b *blockBuilder) parseBinary(inst Instruction, ops []uint32, op ir.BinaryOperator) error {
	if err := inst.Expect(5); err != nil {
		return err
	}
	args, _, err := b.operands(ops, 2)
	if err != nil {
		return err
	}
	b.define(ops[1], ops[0], b.em.add(ir.ExprBinary{Op: op, Left: args[0], Right: args[1]}))
	return nil
}

// parseBinarySigned handles integer instructions whose signedness is not
// part of the opcode. Operands whose type differs from the anchor, the
// result type or else the first operand's type, are reinterpreted as the
// anchor's kind.
func (b *blockBuilder) parseBinarySigned(inst Instruction, ops []uint32, op ir.BinaryOperator, anchorResult bool) error {
	if err := inst.Expect(5); err != nil {
		return err
	}
	args, lookups, err := b.operands(ops, 2)
	if err != nil {
		return err
	}
	anchor := lookups[0].typeID
	if anchorResult {
		anchor = ops[0]
	}
	s, err := b.scalarKind(anchor)
	if err != nil {
		return err
	}
	for i := range args {
		if lookups[i].typeID != anchor {
			args[i] = b.em.add(ir.ExprAs{Expr: args[i], Kind: s.Kind})
		}
	}
	b.define(ops[1], ops[0], b.em.add(ir.ExprBinary{Op: op, Left: args[0], Right: args[1]}))
	return nil
}

// parseBinaryKind handles instructions that fix the signedness of their
// operands. With castResult the value is reinterpreted back to the result
// type's kind.
func (b *blockBuilder) parseBinaryKind(inst Instruction, ops []uint32, op ir.BinaryOperator, kind ir.ScalarKind, castResult bool) error {
	if err := inst.Expect(5); err != nil {
		return err
	}
	args, lookups, err := b.operands(ops, 2)
	if err != nil {
		return err
	}
	for i := range args {
		if args[i], err = b.cast(args[i], lookups[i].typeID, kind); err != nil {
			return err
		}
	}
	h := b.em.add(ir.ExprBinary{Op: op, Left: args[0], Right: args[1]})
	if castResult {
		if h, err = b.castFrom(h, kind, ops[0]); err != nil {
			return err
		}
	}
	b.define(ops[1], ops[0], h)
	return nil
}

// castFrom reinterprets h, of kind from, as the kind of typeID.
func (b *blockBuilder) castFrom(h ir.ExpressionHandle, from ir.ScalarKind, typeID uint32) (ir.ExpressionHandle, error) {
	s, err := b.scalarKind(typeID)
	if err != nil {
		return 0, err
	}
	if s.Kind == from {
		return h, nil
	}
	return b.em.add(ir.ExprAs{Expr: h, Kind: s.Kind}), nil
}

// parseSMod computes ((x % y) + y) % y so the result takes the sign of y.
func (b *blockBuilder) parseSMod(inst Instruction, ops []uint32) error {
	if err := inst.Expect(5); err != nil {
		return err
	}
	args, lookups, err := b.operands(ops, 2)
	if err != nil {
		return err
	}
	for i := range args {
		if args[i], err = b.cast(args[i], lookups[i].typeID, ir.ScalarSint); err != nil {
			return err
		}
	}
	x, y := args[0], args[1]
	rem := b.em.add(ir.ExprBinary{Op: ir.BinaryModulo, Left: x, Right: y})
	sum := b.em.add(ir.ExprBinary{Op: ir.BinaryAdd, Left: rem, Right: y})
	h := b.em.add(ir.ExprBinary{Op: ir.BinaryModulo, Left: sum, Right: y})
	if h, err = b.castFrom(h, ir.ScalarSint, ops[0]); err != nil {
		return err
	}
	b.define(ops[1], ops[0], h)
	return nil
}

// parseFMod computes x - y * floor(x / y).
func (b *blockBuilder) parseFMod(inst Instruction, ops []uint32) error {
	if err := inst.Expect(5); err != nil {
		return err
	}
	args, _, err := b.operands(ops, 2)
	if err != nil {
		return err
	}
	x, y := args[0], args[1]
	div := b.em.add(ir.ExprBinary{Op: ir.BinaryDivide, Left: x, Right: y})
	floor := b.em.add(ir.ExprMath{Fun: ir.MathFloor, Arg: div})
	mul := b.em.add(ir.ExprBinary{Op: ir.BinaryMultiply, Left: y, Right: floor})
	b.define(ops[1], ops[0], b.em.add(ir.ExprBinary{Op: ir.BinarySubtract, Left: x, Right: mul}))
	return nil
}

// parseShift reinterprets the shift amount as unsigned. For right shifts,
// kind selects logical or arithmetic behavior through the base's kind.
func (b *blockBuilder) parseShift(inst Instruction, ops []uint32, op ir.BinaryOperator, kind *ir.ScalarKind) error {
	if err := inst.Expect(5); err != nil {
		return err
	}
	args, lookups, err := b.operands(ops, 2)
	if err != nil {
		return err
	}
	base := args[0]
	if kind != nil {
		if base, err = b.cast(base, lookups[0].typeID, *kind); err != nil {
			return err
		}
	}
	amount, err := b.cast(args[1], lookups[1].typeID, ir.ScalarUint)
	if err != nil {
		return err
	}
	h := b.em.add(ir.ExprBinary{Op: op, Left: base, Right: amount})
	if kind != nil {
		if h, err = b.castFrom(h, *kind, ops[0]); err != nil {
			return err
		}
	}
	b.define(ops[1], ops[0], h)
	return nil
}

func (b *blockBuilder) parseSelect(inst Instruction, ops []uint32) error {
	if err := inst.Expect(6); err != nil {
		return err
	}
	args, _, err := b.operands(ops, 3)
	if err != nil {
		return err
	}
	b.define(ops[1], ops[0], b.em.add(ir.ExprSelect{Condition: args[0], Accept: args[1], Reject: args[2]}))
	return nil
}

// parseConvert converts to the result's scalar. The opcode fixes the
// signedness of integer sources, so those are reinterpreted first.
func (b *blockBuilder) parseConvert(inst Instruction, ops []uint32) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	typeID := ops[0]
	arg, le, err := b.value(ops[2])
	if err != nil {
		return err
	}
	switch inst.Op {
	case OpConvertSToF, OpSConvert:
		arg, err = b.cast(arg, le.typeID, ir.ScalarSint)
	case OpConvertUToF, OpUConvert:
		arg, err = b.cast(arg, le.typeID, ir.ScalarUint)
	}
	if err != nil {
		return err
	}
	s, err := b.scalarKind(typeID)
	if err != nil {
		return newError(ErrInvalidAsType, "conversion to %%%d", typeID)
	}
	as := ir.ExprAs{Expr: arg, Kind: s.Kind}
	if s.Kind != ir.ScalarBool {
		width := s.Width
		as.Convert = &width
	}
	b.define(ops[1], typeID, b.em.add(as))
	return nil
}

func (b *blockBuilder) parseBitcast(inst Instruction, ops []uint32) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	typeID := ops[0]
	arg, _, err := b.value(ops[2])
	if err != nil {
		return err
	}
	lt, err := b.typeOf(typeID)
	if err != nil {
		return err
	}
	var kind ir.ScalarKind
	switch t := b.inner(lt.handle).(type) {
	case ir.ScalarType:
		kind = t.Kind
	case ir.VectorType:
		kind = t.Scalar.Kind
	default:
		return newError(ErrInvalidAsType, "bitcast to %%%d", typeID)
	}
	b.define(ops[1], typeID, b.em.add(ir.ExprAs{Expr: arg, Kind: kind}))
	return nil
}

// parseMath maps an instruction with n value operands onto a math function.
func (b *blockBuilder) parseMath(inst Instruction, ops []uint32, fun ir.MathFunction, n int) error {
	if err := inst.Expect(uint16(3 + n)); err != nil {
		return err
	}
	args, _, err := b.operands(ops, n)
	if err != nil {
		return err
	}
	b.define(ops[1], ops[0], b.em.add(mathExpr(fun, args)))
	return nil
}

func mathExpr(fun ir.MathFunction, args []ir.ExpressionHandle) ir.ExprMath {
	m := ir.ExprMath{Fun: fun, Arg: args[0]}
	slots := []**ir.ExpressionHandle{&m.Arg1, &m.Arg2, &m.Arg3}
	for i, h := range args[1:] {
		h := h
		*slots[i] = &h
	}
	return m
}

// parseBitFieldInsert passes offset and count as unsigned values.
func (b *blockBuilder) parseBitFieldInsert(inst Instruction, ops []uint32) error {
	if err := inst.Expect(7); err != nil {
		return err
	}
	args, lookups, err := b.operands(ops, 4)
	if err != nil {
		return err
	}
	for i := 2; i < 4; i++ {
		if args[i], err = b.cast(args[i], lookups[i].typeID, ir.ScalarUint); err != nil {
			return err
		}
	}
	b.define(ops[1], ops[0], b.em.add(mathExpr(ir.MathInsertBits, args)))
	return nil
}

// parseBitFieldExtract reinterprets the base as kind so the extracted field
// is sign or zero extended as the opcode asks.
func (b *blockBuilder) parseBitFieldExtract(inst Instruction, ops []uint32, kind ir.ScalarKind) error {
	if err := inst.Expect(6); err != nil {
		return err
	}
	args, lookups, err := b.operands(ops, 3)
	if err != nil {
		return err
	}
	if args[0], err = b.cast(args[0], lookups[0].typeID, kind); err != nil {
		return err
	}
	for i := 1; i < 3; i++ {
		if args[i], err = b.cast(args[i], lookups[i].typeID, ir.ScalarUint); err != nil {
			return err
		}
	}
	h := b.em.add(mathExpr(ir.MathExtractBits, args))
	if h, err = b.castFrom(h, kind, ops[0]); err != nil {
		return err
	}
	b.define(ops[1], ops[0], h)
	return nil
}

func (b *blockBuilder) parseRelational(inst Instruction, ops []uint32, fun ir.RelationalFunction) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	arg, _, err := b.value(ops[2])
	if err != nil {
		return err
	}
	b.define(ops[1], ops[0], b.em.add(ir.ExprRelational{Fun: fun, Argument: arg}))
	return nil
}

func (b *blockBuilder) parseDerivative(inst Instruction, ops []uint32) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	arg, _, err := b.value(ops[2])
	if err != nil {
		return err
	}
	d := ir.ExprDerivative{Expr: arg}
	switch inst.Op {
	case OpDPdx:
		d.Axis, d.Control = ir.DerivativeX, ir.DerivativeNone
	case OpDPdy:
		d.Axis, d.Control = ir.DerivativeY, ir.DerivativeNone
	case OpFwidth:
		d.Axis, d.Control = ir.DerivativeWidth, ir.DerivativeNone
	case OpDPdxFine:
		d.Axis, d.Control = ir.DerivativeX, ir.DerivativeFine
	case OpDPdyFine:
		d.Axis, d.Control = ir.DerivativeY, ir.DerivativeFine
	case OpFwidthFine:
		d.Axis, d.Control = ir.DerivativeWidth, ir.DerivativeFine
	case OpDPdxCoarse:
		d.Axis, d.Control = ir.DerivativeX, ir.DerivativeCoarse
	case OpDPdyCoarse:
		d.Axis, d.Control = ir.DerivativeY, ir.DerivativeCoarse
	case OpFwidthCoarse:
		d.Axis, d.Control = ir.DerivativeWidth, ir.DerivativeCoarse
	}
	b.define(ops[1], ops[0], b.em.add(d))
	return nil
}

// glslFunction is the math function and operand count of a GLSL.std.450
// instruction.
type glslFunction struct {
	fun  ir.MathFunction
	args int
}

var glslFunctions = map[GLSLInstruction]glslFunction{
	GLSLRound:           {ir.MathRound, 1},
	GLSLRoundEven:       {ir.MathRound, 1},
	GLSLTrunc:           {ir.MathTrunc, 1},
	GLSLFAbs:            {ir.MathAbs, 1},
	GLSLSAbs:            {ir.MathAbs, 1},
	GLSLFSign:           {ir.MathSign, 1},
	GLSLSSign:           {ir.MathSign, 1},
	GLSLFloor:           {ir.MathFloor, 1},
	GLSLCeil:            {ir.MathCeil, 1},
	GLSLFract:           {ir.MathFract, 1},
	GLSLRadians:         {ir.MathRadians, 1},
	GLSLDegrees:         {ir.MathDegrees, 1},
	GLSLSin:             {ir.MathSin, 1},
	GLSLCos:             {ir.MathCos, 1},
	GLSLTan:             {ir.MathTan, 1},
	GLSLAsin:            {ir.MathAsin, 1},
	GLSLAcos:            {ir.MathAcos, 1},
	GLSLAtan:            {ir.MathAtan, 1},
	GLSLSinh:            {ir.MathSinh, 1},
	GLSLCosh:            {ir.MathCosh, 1},
	GLSLTanh:            {ir.MathTanh, 1},
	GLSLAsinh:           {ir.MathAsinh, 1},
	GLSLAcosh:           {ir.MathAcosh, 1},
	GLSLAtanh:           {ir.MathAtanh, 1},
	GLSLAtan2:           {ir.MathAtan2, 2},
	GLSLPow:             {ir.MathPow, 2},
	GLSLExp:             {ir.MathExp, 1},
	GLSLLog:             {ir.MathLog, 1},
	GLSLExp2:            {ir.MathExp2, 1},
	GLSLLog2:            {ir.MathLog2, 1},
	GLSLSqrt:            {ir.MathSqrt, 1},
	GLSLInverseSqrt:     {ir.MathInverseSqrt, 1},
	GLSLDeterminant:     {ir.MathDeterminant, 1},
	GLSLMatrixInverse:   {ir.MathInverse, 1},
	GLSLModfStruct:      {ir.MathModf, 1},
	GLSLFMin:            {ir.MathMin, 2},
	GLSLUMin:            {ir.MathMin, 2},
	GLSLSMin:            {ir.MathMin, 2},
	GLSLNMin:            {ir.MathMin, 2},
	GLSLFMax:            {ir.MathMax, 2},
	GLSLUMax:            {ir.MathMax, 2},
	GLSLSMax:            {ir.MathMax, 2},
	GLSLNMax:            {ir.MathMax, 2},
	GLSLFClamp:          {ir.MathClamp, 3},
	GLSLUClamp:          {ir.MathClamp, 3},
	GLSLSClamp:          {ir.MathClamp, 3},
	GLSLNClamp:          {ir.MathClamp, 3},
	GLSLFMix:            {ir.MathMix, 3},
	GLSLStep:            {ir.MathStep, 2},
	GLSLSmoothStep:      {ir.MathSmoothStep, 3},
	GLSLFma:             {ir.MathFma, 3},
	GLSLFrexpStruct:     {ir.MathFrexp, 1},
	GLSLLdexp:           {ir.MathLdexp, 2},
	GLSLPackSnorm4x8:    {ir.MathPack4x8snorm, 1},
	GLSLPackUnorm4x8:    {ir.MathPack4x8unorm, 1},
	GLSLPackSnorm2x16:   {ir.MathPack2x16snorm, 1},
	GLSLPackUnorm2x16:   {ir.MathPack2x16unorm, 1},
	GLSLPackHalf2x16:    {ir.MathPack2x16float, 1},
	GLSLUnpackSnorm2x16: {ir.MathUnpack2x16snorm, 1},
	GLSLUnpackUnorm2x16: {ir.MathUnpack2x16unorm, 1},
	GLSLUnpackHalf2x16:  {ir.MathUnpack2x16float, 1},
	GLSLUnpackSnorm4x8:  {ir.MathUnpack4x8snorm, 1},
	GLSLUnpackUnorm4x8:  {ir.MathUnpack4x8unorm, 1},
	GLSLLength:          {ir.MathLength, 1},
	GLSLDistance:        {ir.MathDistance, 2},
	GLSLCross:           {ir.MathCross, 2},
	GLSLNormalize:       {ir.MathNormalize, 1},
	GLSLFaceForward:     {ir.MathFaceForward, 3},
	GLSLReflect:         {ir.MathReflect, 2},
	GLSLRefract:         {ir.MathRefract, 3},
	GLSLFindILsb:        {ir.MathFirstTrailingBit, 1},
	GLSLFindSMsb:        {ir.MathFirstLeadingBit, 1},
	GLSLFindUMsb:        {ir.MathFirstLeadingBit, 1},
}

func (b *blockBuilder) parseExtInst(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(5); err != nil {
		return err
	}
	set, number := ops[2], GLSLInstruction(ops[3])
	if b.glslSet == 0 || set != b.glslSet {
		return newError(ErrUnsupportedExtSet, "extended instruction set %%%d", set)
	}
	g, ok := glslFunctions[number]
	if !ok {
		return newError(ErrUnsupportedExtInst, "GLSL.std.450 instruction %v", number)
	}
	if err := inst.Expect(uint16(5 + g.args)); err != nil {
		return err
	}
	args, err := b.values(ops[4:])
	if err != nil {
		return err
	}
	b.define(ops[1], ops[0], b.em.add(mathExpr(g.fun, args)))
	return nil
}

func (b *blockBuilder) parseCompositeConstruct(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(3); err != nil {
		return err
	}
	lt, err := b.typeOf(ops[0])
	if err != nil {
		return err
	}
	components, err := b.values(ops[2:])
	if err != nil {
		return err
	}
	b.define(ops[1], ops[0], b.em.add(ir.ExprCompose{Type: lt.handle, Components: components}))
	return nil
}

// memberTypeID returns the type id of element index of typeID.
func (b *blockBuilder) memberTypeID(typeID, index uint32) (uint32, error) {
	lt, err := b.typeOf(typeID)
	if err != nil {
		return 0, err
	}
	switch b.inner(lt.handle).(type) {
	case ir.StructType:
		m, ok := b.lookupMember[memberRef{ty: lt.handle, index: index}]
		if !ok {
			return 0, newError(ErrInvalidAccessIndex, "member %d of %%%d", index, typeID)
		}
		return m.typeID, nil
	case ir.ArrayType, ir.VectorType, ir.MatrixType:
		if lt.baseID == 0 {
			return 0, newError(ErrInvalidAccessType, "%%%d has no element type", typeID)
		}
		return lt.baseID, nil
	}
	return 0, newError(ErrUnsupportedType, "cannot extract from %%%d", typeID)
}

func (b *blockBuilder) parseCompositeExtract(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(4); err != nil {
		return err
	}
	h, le, err := b.value(ops[2])
	if err != nil {
		return err
	}
	typeID := le.typeID
	for _, index := range ops[3:] {
		if typeID, err = b.memberTypeID(typeID, index); err != nil {
			return err
		}
		h = b.em.add(ir.ExprAccessIndex{Base: h, Index: index})
	}
	b.define(ops[1], ops[0], h)
	return nil
}

func (b *blockBuilder) parseCompositeInsert(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(5); err != nil {
		return err
	}
	object, _, err := b.value(ops[2])
	if err != nil {
		return err
	}
	root, le, err := b.value(ops[3])
	if err != nil {
		return err
	}
	h, err := b.insertComposite(root, le.typeID, object, ops[4:])
	if err != nil {
		return err
	}
	b.define(ops[1], ops[0], h)
	return nil
}

// insertComposite rebuilds root with the element at path replaced by
// object.
func (b *blockBuilder) insertComposite(root ir.ExpressionHandle, typeID uint32, object ir.ExpressionHandle, path []uint32) (ir.ExpressionHandle, error) {
	if len(path) == 0 {
		return object, nil
	}
	lt, err := b.typeOf(typeID)
	if err != nil {
		return 0, err
	}
	var count uint32
	switch t := b.inner(lt.handle).(type) {
	case ir.StructType:
		count = uint32(len(t.Members))
	case ir.ArrayType:
		if t.Size.Constant == nil {
			return 0, newError(ErrInvalidAccessType, "insert into runtime array %%%d", typeID)
		}
		count = *t.Size.Constant
	case ir.VectorType:
		count = uint32(t.Size)
	case ir.MatrixType:
		count = uint32(t.Columns)
	default:
		return 0, newError(ErrInvalidAccessType, "insert into %%%d", typeID)
	}
	if path[0] >= count {
		return 0, newError(ErrInvalidAccessIndex, "index %d of %%%d with %d elements", path[0], typeID, count)
	}
	childTypeID, err := b.memberTypeID(typeID, path[0])
	if err != nil {
		return 0, err
	}

	components := make([]ir.ExpressionHandle, count)
	for i := range components {
		components[i] = b.em.add(ir.ExprAccessIndex{Base: root, Index: uint32(i)})
	}
	if components[path[0]], err = b.insertComposite(components[path[0]], childTypeID, object, path[1:]); err != nil {
		return 0, err
	}
	return b.em.add(ir.ExprCompose{Type: lt.handle, Components: components}), nil
}

// vectorSize returns the component count of a vector type id.
func (b *blockBuilder) vectorSize(typeID uint32) (uint32, error) {
	lt, err := b.typeOf(typeID)
	if err != nil {
		return 0, err
	}
	v, ok := b.inner(lt.handle).(ir.VectorType)
	if !ok {
		return 0, newError(ErrInvalidInnerType, "%%%d is not a vector", typeID)
	}
	return uint32(v.Size), nil
}

func (b *blockBuilder) parseVectorExtractDynamic(inst Instruction, ops []uint32) error {
	if err := inst.Expect(5); err != nil {
		return err
	}
	args, lookups, err := b.operands(ops, 2)
	if err != nil {
		return err
	}
	if _, err := b.vectorSize(lookups[0].typeID); err != nil {
		return err
	}
	b.define(ops[1], ops[0], b.em.add(ir.ExprAccess{Base: args[0], Index: args[1]}))
	return nil
}

// parseVectorInsertDynamic selects per component between the old value and
// the inserted one.
func (b *blockBuilder) parseVectorInsertDynamic(inst Instruction, ops []uint32) error {
	if err := inst.Expect(6); err != nil {
		return err
	}
	args, lookups, err := b.operands(ops, 3)
	if err != nil {
		return err
	}
	vector, object, index := args[0], args[1], args[2]
	n, err := b.vectorSize(lookups[0].typeID)
	if err != nil {
		return err
	}
	s, err := b.scalarKind(lookups[2].typeID)
	if err != nil {
		return err
	}
	lt, _ := b.typeOf(lookups[0].typeID)

	components := make([]ir.ExpressionHandle, n)
	for i := uint32(0); i < n; i++ {
		var lit ir.LiteralValue = ir.LiteralU32(i)
		if s.Kind == ir.ScalarSint {
			lit = ir.LiteralI32(int32(i))
		}
		literal := b.em.add(ir.Literal{Value: lit})
		old := b.em.add(ir.ExprAccessIndex{Base: vector, Index: i})
		cond := b.em.add(ir.ExprBinary{Op: ir.BinaryEqual, Left: literal, Right: index})
		components[i] = b.em.add(ir.ExprSelect{Condition: cond, Accept: object, Reject: old})
	}
	b.define(ops[1], ops[0], b.em.add(ir.ExprCompose{Type: lt.handle, Components: components}))
	return nil
}

// parseVectorShuffle becomes a swizzle when every component comes from the
// first vector, and a composition otherwise. An undefined component
// (0xFFFFFFFF) reads lane 0.
func (b *blockBuilder) parseVectorShuffle(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(5); err != nil {
		return err
	}
	args, lookups, err := b.operands(ops, 2)
	if err != nil {
		return err
	}
	n1, err := b.vectorSize(lookups[0].typeID)
	if err != nil {
		return err
	}
	n2, err := b.vectorSize(lookups[1].typeID)
	if err != nil {
		return err
	}
	selectors := append([]uint32(nil), ops[4:]...)
	if len(selectors) < 2 || len(selectors) > 4 {
		return newError(ErrInvalidVectorSize, "shuffle into %d components", len(selectors))
	}
	highest := uint32(0)
	for i, s := range selectors {
		if s == 0xFFFFFFFF {
			selectors[i] = 0
		}
		highest = max(highest, selectors[i])
	}

	if highest < n1 {
		var pattern [4]ir.SwizzleComponent
		for i, s := range selectors {
			pattern[i] = ir.SwizzleComponent(s)
		}
		size := ir.VectorSize(len(selectors))
		b.define(ops[1], ops[0], b.em.add(ir.ExprSwizzle{Size: size, Vector: args[0], Pattern: pattern}))
		return nil
	}

	lt, err := b.typeOf(ops[0])
	if err != nil {
		return err
	}
	components := make([]ir.ExpressionHandle, 0, len(selectors))
	for _, s := range selectors {
		var kind ir.ExprAccessIndex
		switch {
		case s < n1:
			kind = ir.ExprAccessIndex{Base: args[0], Index: s}
		case s < n1+n2:
			kind = ir.ExprAccessIndex{Base: args[1], Index: s - n1}
		default:
			return newError(ErrInvalidAccessIndex, "shuffle component %d of %d", s, n1+n2)
		}
		components = append(components, b.em.add(kind))
	}
	b.define(ops[1], ops[0], b.em.add(ir.ExprCompose{Type: lt.handle, Components: components}))
	return nil
}

func barrierFlags(semantics MemorySemantics) ir.BarrierFlags {
	var flags ir.BarrierFlags
	if semantics&MemorySemanticsUniformMemory != 0 {
		flags |= ir.BarrierStorage
	}
	if semantics&MemorySemanticsWorkgroupMemory != 0 {
		flags |= ir.BarrierWorkGroup
	}
	if semantics&MemorySemanticsSubgroupMemory != 0 {
		flags |= ir.BarrierSubGroup
	}
	if semantics&MemorySemanticsImageMemory != 0 {
		flags |= ir.BarrierTexture
	}
	return flags
}

func (b *blockBuilder) parseControlBarrier(inst Instruction, ops []uint32) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	exec, ok := b.constU32(ops[0])
	if !ok {
		return newError(ErrInvalidBarrierScope, "execution scope %%%d is not a constant", ops[0])
	}
	semantics, ok := b.constU32(ops[2])
	if !ok {
		return newError(ErrInvalidBarrierScope, "memory semantics %%%d is not a constant", ops[2])
	}
	switch Scope(exec) {
	case ScopeWorkgroup, ScopeSubgroup:
		b.em.push(ir.StmtBarrier{Flags: barrierFlags(MemorySemantics(semantics))})
	default:
		b.warnf("control barrier with execution scope %d dropped", exec)
	}
	return nil
}

func (b *blockBuilder) parseMemoryBarrier(inst Instruction, ops []uint32) error {
	if err := inst.Expect(3); err != nil {
		return err
	}
	if _, ok := b.constU32(ops[0]); !ok {
		return newError(ErrInvalidBarrierScope, "memory scope %%%d is not a constant", ops[0])
	}
	semantics, ok := b.constU32(ops[1])
	if !ok {
		return newError(ErrInvalidBarrierScope, "memory semantics %%%d is not a constant", ops[1])
	}
	b.em.push(ir.StmtBarrier{Flags: barrierFlags(MemorySemantics(semantics))})
	return nil
}
