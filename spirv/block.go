package spirv

import (
	"fmt"

	"tlog.app/go/errors"

	"github.com/gogpu/spvfront/ir"
)

// blockBuilder decodes the instructions of one basic block.
type blockBuilder struct {
	*frontend
	ctx     *blockContext
	blockID uint32
	bodyIdx int

	// selectionMerge is the merge block named by an OpSelectionMerge in
	// this block, 0 when there is none.
	selectionMerge uint32
}

// nextBlock decodes the block labelled blockID up to and including its
// terminator.
func (f *frontend) nextBlock(blockID uint32, ctx *blockContext) error {
	ctx.setBodyIfUnset(blockID, 0)
	b := &blockBuilder{
		frontend: f,
		ctx:      ctx,
		blockID:  blockID,
		bodyIdx:  ctx.bodyOf(blockID),
	}
	f.em = newEmitter(f.fn, nil)
	defer func() { f.em = nil }()

	for {
		inst, err := f.dec.NextInstruction()
		if err != nil {
			return err
		}
		start := f.dec.InstructionOffset()
		ops, err := f.dec.Operands(inst)
		if err != nil {
			return err
		}
		done, err := b.instruction(inst, ops)
		if err == nil {
			err = f.dec.Finish(inst)
		}
		if err != nil {
			return errors.Wrap(atOffset(err, start), "%v in block %%%d", inst.Op, blockID)
		}
		if done {
			return nil
		}
	}
}

// value resolves id for use in the current body. A value defined in a body
// that does not enclose the current one is spilled to a local on first such
// use and loaded from it here.
func (b *blockBuilder) value(id uint32) (ir.ExpressionHandle, lookupExpression, error) {
	le, err := b.exprOf(id)
	if err != nil {
		return 0, le, err
	}
	if b.ctx.isParent(b.bodyIdx, b.ctx.bodyOf(le.blockID)) {
		return le.handle, le, nil
	}
	local, ok := b.ctx.spills[id]
	if !ok {
		lt, err := b.typeOf(le.typeID)
		if err != nil {
			return 0, le, err
		}
		local = appendLocal(b.fn, ir.LocalVariable{Type: lt.handle})
		b.ctx.spills[id] = local
		b.ctx.phis = append(b.ctx.phis, phiRecord{
			local:   local,
			sources: []phiSource{{id: id, blockID: le.blockID}},
		})
		b.log.Debugf("spilling %%%d from block %%%d into local %d", id, le.blockID, local)
	}
	ptr := b.em.add(ir.ExprLocalVariable{Variable: local})
	return b.em.add(ir.ExprLoad{Pointer: ptr}), le, nil
}

// values resolves a list of ids.
func (b *blockBuilder) values(ids []uint32) ([]ir.ExpressionHandle, error) {
	out := make([]ir.ExpressionHandle, 0, len(ids))
	for _, id := range ids {
		h, _, err := b.value(id)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// define records the result of an instruction.
func (b *blockBuilder) define(id, typeID uint32, h ir.ExpressionHandle) {
	b.lookupExpr[id] = lookupExpression{handle: h, typeID: typeID, blockID: b.blockID}
}

// scalarKind returns the scalar kind of a scalar or vector type id.
func (b *blockBuilder) scalarKind(typeID uint32) (ir.ScalarType, error) {
	lt, err := b.typeOf(typeID)
	if err != nil {
		return ir.ScalarType{}, err
	}
	s, ok := scalarOf(b.inner(lt.handle))
	if !ok {
		return ir.ScalarType{}, newError(ErrInvalidInnerType, "%%%d has no scalar kind", typeID)
	}
	return s, nil
}

// cast reinterprets h as kind unless its type already has that kind.
func (b *blockBuilder) cast(h ir.ExpressionHandle, typeID uint32, kind ir.ScalarKind) (ir.ExpressionHandle, error) {
	s, err := b.scalarKind(typeID)
	if err != nil {
		return 0, err
	}
	if s.Kind == kind {
		return h, nil
	}
	return b.em.add(ir.ExprAs{Expr: h, Kind: kind}), nil
}

// instruction handles one instruction and reports whether it ended the
// block.
func (b *blockBuilder) instruction(inst Instruction, ops []uint32) (bool, error) {
	switch inst.Op {
	case OpLine, OpNoLine, OpNop:
		return false, nil

	case OpLabel, OpBranch, OpBranchConditional, OpSwitch, OpReturn, OpReturnValue,
		OpKill, OpUnreachable, OpSelectionMerge, OpLoopMerge:
		return b.flow(inst, ops)
	}

	var err error
	switch inst.Op {
	case OpUndef:
		err = b.parseUndef(inst, ops)
	case OpVariable:
		err = b.parseLocalVariable(inst, ops)
	case OpPhi:
		err = b.parsePhi(inst, ops)
	case OpAccessChain, OpInBoundsAccessChain:
		err = b.parseAccessChain(inst, ops)
	case OpLoad:
		err = b.parseLoad(inst, ops)
	case OpStore:
		err = b.parseStore(inst, ops)
	case OpCopyMemory:
		err = b.parseCopyMemory(inst, ops)
	case OpCopyObject:
		err = b.parseCopyObject(inst, ops)
	case OpArrayLength:
		err = b.parseArrayLength(inst, ops)

	case OpVectorExtractDynamic:
		err = b.parseVectorExtractDynamic(inst, ops)
	case OpVectorInsertDynamic:
		err = b.parseVectorInsertDynamic(inst, ops)
	case OpVectorShuffle:
		err = b.parseVectorShuffle(inst, ops)
	case OpCompositeConstruct:
		err = b.parseCompositeConstruct(inst, ops)
	case OpCompositeExtract:
		err = b.parseCompositeExtract(inst, ops)
	case OpCompositeInsert:
		err = b.parseCompositeInsert(inst, ops)

	case OpSNegate:
		err = b.parseUnarySigned(inst, ops, ir.UnaryNegate)
	case OpNot:
		err = b.parseUnarySigned(inst, ops, ir.UnaryBitwiseNot)
	case OpFNegate:
		err = b.parseUnary(inst, ops, ir.UnaryNegate)
	case OpLogicalNot:
		err = b.parseUnary(inst, ops, ir.UnaryLogicalNot)

	case OpIAdd, OpISub, OpIMul, OpSDiv, OpSRem, OpBitwiseOr, OpBitwiseXor, OpBitwiseAnd:
		err = b.parseBinarySigned(inst, ops, binaryOperators[inst.Op], true)
	case OpIEqual, OpINotEqual:
		err = b.parseBinarySigned(inst, ops, binaryOperators[inst.Op], false)
	case OpUDiv, OpUMod:
		err = b.parseBinaryKind(inst, ops, binaryOperators[inst.Op], ir.ScalarUint, true)
	case OpULessThan, OpULessThanEqual, OpUGreaterThan, OpUGreaterThanEqual:
		err = b.parseBinaryKind(inst, ops, binaryOperators[inst.Op], ir.ScalarUint, false)
	case OpSLessThan, OpSLessThanEqual, OpSGreaterThan, OpSGreaterThanEqual:
		err = b.parseBinaryKind(inst, ops, binaryOperators[inst.Op], ir.ScalarSint, false)
	case OpFAdd, OpFSub, OpFMul, OpFDiv, OpFRem,
		OpVectorTimesScalar, OpVectorTimesMatrix, OpMatrixTimesScalar, OpMatrixTimesVector, OpMatrixTimesMatrix,
		OpFOrdEqual, OpFUnordEqual, OpFOrdNotEqual, OpFUnordNotEqual,
		OpFOrdLessThan, OpFUnordLessThan, OpFOrdGreaterThan, OpFUnordGreaterThan,
		OpFOrdLessThanEqual, OpFUnordLessThanEqual, OpFOrdGreaterThanEqual, OpFUnordGreaterThanEqual,
		OpLogicalEqual, OpLogicalNotEqual, OpLogicalOr, OpLogicalAnd:
		err = b.parseBinary(inst, ops, binaryOperators[inst.Op])
	case OpSMod:
		err = b.parseSMod(inst, ops)
	case OpFMod:
		err = b.parseFMod(inst, ops)
	case OpShiftLeftLogical:
		err = b.parseShift(inst, ops, ir.BinaryShiftLeft, nil)
	case OpShiftRightLogical:
		kind := ir.ScalarUint
		err = b.parseShift(inst, ops, ir.BinaryShiftRight, &kind)
	case OpShiftRightArithmetic:
		kind := ir.ScalarSint
		err = b.parseShift(inst, ops, ir.BinaryShiftRight, &kind)
	case OpSelect:
		err = b.parseSelect(inst, ops)

	case OpConvertFToU, OpConvertFToS, OpConvertSToF, OpConvertUToF, OpUConvert, OpSConvert, OpFConvert:
		err = b.parseConvert(inst, ops)
	case OpBitcast:
		err = b.parseBitcast(inst, ops)

	case OpTranspose:
		err = b.parseMath(inst, ops, ir.MathTranspose, 1)
	case OpDot:
		err = b.parseMath(inst, ops, ir.MathDot, 2)
	case OpOuterProduct:
		err = b.parseMath(inst, ops, ir.MathOuter, 2)
	case OpBitReverse:
		err = b.parseMath(inst, ops, ir.MathReverseBits, 1)
	case OpBitCount:
		err = b.parseMath(inst, ops, ir.MathCountOneBits, 1)
	case OpBitFieldInsert:
		err = b.parseBitFieldInsert(inst, ops)
	case OpBitFieldSExtract:
		err = b.parseBitFieldExtract(inst, ops, ir.ScalarSint)
	case OpBitFieldUExtract:
		err = b.parseBitFieldExtract(inst, ops, ir.ScalarUint)
	case OpExtInst:
		err = b.parseExtInst(inst, ops)

	case OpAny:
		err = b.parseRelational(inst, ops, ir.RelationalAny)
	case OpAll:
		err = b.parseRelational(inst, ops, ir.RelationalAll)
	case OpIsNan:
		err = b.parseRelational(inst, ops, ir.RelationalIsNan)
	case OpIsInf:
		err = b.parseRelational(inst, ops, ir.RelationalIsInf)

	case OpDPdx, OpDPdy, OpFwidth, OpDPdxFine, OpDPdyFine, OpFwidthFine, OpDPdxCoarse, OpDPdyCoarse, OpFwidthCoarse:
		err = b.parseDerivative(inst, ops)

	case OpControlBarrier:
		err = b.parseControlBarrier(inst, ops)
	case OpMemoryBarrier:
		err = b.parseMemoryBarrier(inst, ops)

	case OpFunctionCall:
		err = b.parseFunctionCall(inst, ops)

	case OpSampledImage:
		err = b.parseSampledImage(inst, ops)
	case OpImage:
		err = b.parseImage(inst, ops)
	case OpImageSampleImplicitLod, OpImageSampleExplicitLod:
		err = b.parseImageSample(inst, ops, samplingOptions{})
	case OpImageSampleDrefImplicitLod, OpImageSampleDrefExplicitLod:
		err = b.parseImageSample(inst, ops, samplingOptions{compare: true})
	case OpImageGather:
		err = b.parseImageSample(inst, ops, samplingOptions{gather: true})
	case OpImageDrefGather:
		err = b.parseImageSample(inst, ops, samplingOptions{compare: true, gather: true})
	case OpImageFetch, OpImageRead:
		err = b.parseImageLoad(inst, ops)
	case OpImageWrite:
		err = b.parseImageWrite(inst, ops)
	case OpImageQuerySize:
		err = b.parseImageQuerySize(inst, ops, false)
	case OpImageQuerySizeLod:
		err = b.parseImageQuerySize(inst, ops, true)
	case OpImageQueryLevels:
		err = b.parseImageQuery(inst, ops, ir.ImageQueryNumLevels{})
	case OpImageQuerySamples:
		err = b.parseImageQuery(inst, ops, ir.ImageQueryNumSamples{})

	case OpAtomicLoad:
		err = b.parseAtomicLoad(inst, ops)
	case OpAtomicStore:
		err = b.parseAtomicStore(inst, ops)
	case OpAtomicIIncrement:
		err = b.parseAtomicIncrement(inst, ops, ir.AtomicAdd{})
	case OpAtomicIDecrement:
		err = b.parseAtomicIncrement(inst, ops, ir.AtomicSubtract{})
	case OpAtomicCompareExchange:
		err = b.parseAtomicCompareExchange(inst, ops)
	case OpAtomicExchange, OpAtomicIAdd, OpAtomicISub, OpAtomicSMin, OpAtomicUMin,
		OpAtomicSMax, OpAtomicUMax, OpAtomicAnd, OpAtomicOr, OpAtomicXor:
		err = b.parseAtomic(inst, ops, atomicFunctions[inst.Op])

	default:
		err = unsupportedInstruction(PhaseFunction, inst.Op)
	}
	return false, err
}

func (b *blockBuilder) parseUndef(inst Instruction, ops []uint32) error {
	if err := inst.Expect(3); err != nil {
		return err
	}
	lt, err := b.typeOf(ops[0])
	if err != nil {
		return err
	}
	b.define(ops[1], ops[0], b.em.add(ir.ExprZeroValue{Type: lt.handle}))
	return nil
}

func (b *blockBuilder) parseLocalVariable(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(4); err != nil {
		return err
	}
	typeID, id := ops[0], ops[1]
	var init *ir.ExpressionHandle
	if inst.WordCount > 4 {
		if err := inst.Expect(5); err != nil {
			return err
		}
		c, err := b.constantOf(ops[3])
		if err != nil {
			return err
		}
		h := b.em.add(c.expression())
		init = &h
	}
	lt, err := b.typeOf(typeID)
	if err != nil {
		return err
	}
	ty := lt.handle
	if p, ok := b.inner(ty).(ir.PointerType); ok {
		ty = p.Base
	}
	local := appendLocal(b.fn, ir.LocalVariable{Name: b.decor.take(id).name, Type: ty, Init: init})
	b.define(id, typeID, b.em.add(ir.ExprLocalVariable{Variable: local}))
	return nil
}

// parsePhi allocates the local every predecessor stores into and loads it.
func (b *blockBuilder) parsePhi(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(3); err != nil {
		return err
	}
	typeID, id := ops[0], ops[1]
	lt, err := b.typeOf(typeID)
	if err != nil {
		return err
	}
	if (len(ops)-2)%2 != 0 {
		return newError(ErrInvalidOperandCount, "OpPhi with an unpaired operand")
	}
	local := appendLocal(b.fn, ir.LocalVariable{Name: fmt.Sprintf("phi_%d", id), Type: lt.handle})
	phi := phiRecord{local: local}
	for i := 2; i+1 < len(ops); i += 2 {
		phi.sources = append(phi.sources, phiSource{id: ops[i], blockID: ops[i+1]})
	}
	b.ctx.phis = append(b.ctx.phis, phi)

	ptr := b.em.add(ir.ExprLocalVariable{Variable: local})
	b.define(id, typeID, b.em.add(ir.ExprLoad{Pointer: ptr}))
	return nil
}

func (b *blockBuilder) parseLoad(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(4); err != nil {
		return err
	}
	typeID, id, ptrID := ops[0], ops[1], ops[2]
	ptr, le, err := b.value(ptrID)
	if err != nil {
		return err
	}
	lt, err := b.typeOf(le.typeID)
	if err != nil {
		return err
	}
	switch b.inner(lt.handle).(type) {
	case ir.ImageType, ir.SamplerType, ir.BindingArrayType:
		// Handles are used directly.
		b.define(id, typeID, ptr)
		return nil
	}
	if o, ok := b.loadOverrides[ptrID]; ok && o.loaded {
		b.define(id, typeID, o.expr)
		return nil
	}
	b.define(id, typeID, b.em.add(ir.ExprLoad{Pointer: ptr}))
	return nil
}

func (b *blockBuilder) parseStore(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(3); err != nil {
		return err
	}
	ptr, _, err := b.value(ops[0])
	if err != nil {
		return err
	}
	value, _, err := b.value(ops[1])
	if err != nil {
		return err
	}
	b.em.push(ir.StmtStore{Pointer: ptr, Value: value})
	return nil
}

func (b *blockBuilder) parseCopyMemory(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(3); err != nil {
		return err
	}
	target, _, err := b.value(ops[0])
	if err != nil {
		return err
	}
	source, _, err := b.value(ops[1])
	if err != nil {
		return err
	}
	value := b.em.add(ir.ExprLoad{Pointer: source})
	b.em.push(ir.StmtStore{Pointer: target, Value: value})
	return nil
}

func (b *blockBuilder) parseCopyObject(inst Instruction, ops []uint32) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	h, _, err := b.value(ops[2])
	if err != nil {
		return err
	}
	b.define(ops[1], ops[0], h)
	return nil
}

func (b *blockBuilder) parseArrayLength(inst Instruction, ops []uint32) error {
	if err := inst.Expect(5); err != nil {
		return err
	}
	structure, _, err := b.value(ops[2])
	if err != nil {
		return err
	}
	member := b.em.add(ir.ExprAccessIndex{Base: structure, Index: ops[3]})
	b.define(ops[1], ops[0], b.em.add(ir.ExprArrayLength{Array: member}))
	return nil
}

// constIndex returns the value of an index that names an integer
// constant.
func (b *blockBuilder) constIndex(h ir.ExpressionHandle) (uint32, bool) {
	c, ok := b.fn.Expressions[h].Kind.(ir.ExprConstant)
	if !ok {
		return 0, false
	}
	lit, ok := b.module.GlobalExpressions[b.module.Constants[c.Constant].Init].Kind.(ir.Literal)
	if !ok {
		return 0, false
	}
	switch v := lit.Value.(type) {
	case ir.LiteralU32:
		return uint32(v), true
	case ir.LiteralI32:
		return uint32(v), v >= 0
	case ir.LiteralU64:
		return uint32(v), v <= 0xFFFFFFFF
	case ir.LiteralI64:
		return uint32(v), v >= 0 && v <= 0xFFFFFFFF
	}
	return 0, false
}

// parseAccessChain lowers each index to Access or AccessIndex. Indexing
// through a row-major matrix also builds the transposed value that a later
// load of the result must use.
func (b *blockBuilder) parseAccessChain(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(4); err != nil {
		return err
	}
	typeID, id, baseID := ops[0], ops[1], ops[2]

	base, le, err := b.value(baseID)
	if err != nil {
		return err
	}
	lt, err := b.typeOf(le.typeID)
	if err != nil {
		return err
	}
	// Pointers to handles were collapsed onto the handle type, so a binding
	// array is indexed as is.
	curTypeID := le.typeID
	if _, ok := b.inner(lt.handle).(ir.BindingArrayType); !ok {
		if lt.baseID == 0 {
			return newError(ErrInvalidAccessType, "access chain base %%%d has no pointee", le.typeID)
		}
		curTypeID = lt.baseID
	}
	var override *loadOverride
	if o, ok := b.loadOverrides[baseID]; ok {
		override = &o
	}

	for _, indexID := range ops[3:] {
		index, _, err := b.value(indexID)
		if err != nil {
			return err
		}
		constIdx, isConst := b.constIndex(index)

		cur, err := b.typeOf(curTypeID)
		if err != nil {
			return err
		}
		switch t := b.inner(cur.handle).(type) {
		case ir.StructType:
			if !isConst {
				return newError(ErrInvalidAccess, "struct %%%d indexed by non-constant %%%d", curTypeID, indexID)
			}
			m, ok := b.lookupMember[memberRef{ty: cur.handle, index: constIdx}]
			if !ok || int(constIdx) >= len(t.Members) {
				return newError(ErrInvalidAccessIndex, "member %d of %%%d", constIdx, curTypeID)
			}
			base = b.em.add(ir.ExprAccessIndex{Base: base, Index: constIdx})
			if binding := t.Members[constIdx].Binding; binding != nil {
				if bb, ok := (*binding).(ir.BuiltinBinding); ok {
					b.perVertexAccess[bb.Builtin] = struct{}{}
				}
			}
			override = nil
			if m.rowMajor {
				mt, err := b.typeOf(m.typeID)
				if err != nil {
					return err
				}
				if _, ok := b.inner(mt.handle).(ir.MatrixType); ok {
					loaded := b.em.add(ir.ExprLoad{Pointer: base})
					override = &loadOverride{loaded: true, expr: b.em.add(ir.ExprMath{Fun: ir.MathTranspose, Arg: loaded})}
				} else {
					override = &loadOverride{}
				}
			}
			curTypeID = m.typeID

		case ir.MatrixType:
			var next *loadOverride
			if override != nil && override.loaded {
				if !isConst {
					return newError(ErrInvalidAccess, "row-major matrix indexed by non-constant %%%d", indexID)
				}
				next = &loadOverride{loaded: true, expr: b.em.add(ir.ExprAccessIndex{Base: override.expr, Index: constIdx})}
			}
			if isConst {
				base = b.em.add(ir.ExprAccessIndex{Base: base, Index: constIdx})
			} else {
				base = b.em.add(ir.ExprAccess{Base: base, Index: index})
			}
			override = next
			curTypeID = cur.baseID

		default:
			if isConst {
				base = b.em.add(ir.ExprAccessIndex{Base: base, Index: constIdx})
			} else {
				base = b.em.add(ir.ExprAccess{Base: base, Index: index})
			}
			if override != nil {
				var sub ir.ExpressionHandle
				if override.loaded {
					sub = b.em.add(ir.ExprAccess{Base: override.expr, Index: index})
				} else {
					loaded := b.em.add(ir.ExprLoad{Pointer: base})
					sub = b.em.add(ir.ExprMath{Fun: ir.MathTranspose, Arg: loaded})
				}
				override = &loadOverride{loaded: true, expr: sub}
			}
			curTypeID = cur.baseID
		}
		if curTypeID == 0 {
			return newError(ErrInvalidAccessType, "cannot index into %%%d", cur.handle)
		}
	}

	if override != nil {
		b.loadOverrides[id] = *override
	}
	b.define(id, typeID, base)
	return nil
}
