package spirv

import (
	"bytes"
	"fmt"
	"os"

	"tlog.app/go/errors"

	"github.com/gogpu/spvfront/ir"
)

// parseFunction decodes OpFunction through OpFunctionEnd. The decoder is
// positioned after the OpFunction header word.
func (f *frontend) parseFunction(inst Instruction) error {
	ops, err := f.dec.Operands(inst)
	if err != nil {
		return err
	}
	if err := inst.Expect(5); err != nil {
		return err
	}
	if err := f.dec.Finish(inst); err != nil {
		return err
	}
	resultTypeID, fnID, fnTypeID := ops[0], ops[1], ops[3]
	if err := f.function(resultTypeID, fnID, fnTypeID); err != nil {
		return errors.Wrap(err, "function %%%d", fnID)
	}
	return nil
}

func (f *frontend) function(resultTypeID, fnID, fnTypeID uint32) error {
	ft, ok := f.lookupFunctionType[fnTypeID]
	if !ok {
		return newError(ErrInvalidID, "%%%d is not a function type", fnTypeID)
	}
	if ft.returnTypeID != resultTypeID {
		return newError(ErrWrongFunctionResultType, "result %%%d, function type returns %%%d", resultTypeID, ft.returnTypeID)
	}

	fn := &ir.Function{Name: f.decor.take(fnID).name}
	if resultTypeID != f.voidTypeID {
		lt, err := f.typeOf(resultTypeID)
		if err != nil {
			return err
		}
		fn.Result = &ir.FunctionResult{Type: lt.handle}
	}

	f.fn, f.fnID, f.em = fn, fnID, nil
	f.lookupExpr = make(map[uint32]lookupExpression)
	f.loadOverrides = make(map[uint32]loadOverride)
	f.sampledImages = make(map[uint32]sampledImage)
	f.paramSampling = make([]ir.SamplingFlags, len(ft.paramTypeIDs))
	defer func() { f.fn, f.em = nil, nil }()

	for i, want := range ft.paramTypeIDs {
		if err := f.parameter(uint32(i), want); err != nil {
			return err
		}
	}

	ctx := newBlockContext()
	for done := false; !done; {
		inst, err := f.dec.NextInstruction()
		if err != nil {
			return err
		}
		start := f.dec.InstructionOffset()
		switch inst.Op {
		case OpLine, OpNoLine, OpNop:
		case OpLabel:
			var label uint32
			if err = inst.Expect(2); err == nil {
				label, err = f.dec.Next()
			}
			if err == nil {
				err = f.nextBlock(label, ctx)
			}
		case OpFunctionEnd:
			err = inst.Expect(1)
			done = true
		default:
			err = unsupportedInstruction(PhaseFunction, inst.Op)
		}
		if err == nil && inst.Op != OpLabel {
			err = f.dec.Finish(inst)
		}
		if err != nil {
			return errors.Wrap(atOffset(err, start), "%v", inst.Op)
		}
	}

	if f.opts.BlockCtxDumpPrefix != "" {
		f.dumpBlockContext(ctx)
	}
	if err := f.finishPhis(ctx); err != nil {
		return err
	}
	fn.Body = ctx.lower()

	f.lookupFunction[fnID] = &lookupFunction{
		index:             len(f.functions),
		parameterSampling: f.paramSampling,
	}
	f.functions = append(f.functions, *fn)
	f.functionIDs = append(f.functionIDs, fnID)
	f.log.Debugf("function %%%d: %d expressions, %d locals", fnID, len(fn.Expressions), len(fn.LocalVars))
	return nil
}

func (f *frontend) parameter(index, wantTypeID uint32) error {
	inst, err := f.dec.NextInstruction()
	if err != nil {
		return err
	}
	if inst.Op != OpFunctionParameter {
		return newError(ErrInvalidOperand, "parameter %d: expected OpFunctionParameter, found %v", index, inst.Op)
	}
	if err := inst.Expect(3); err != nil {
		return err
	}
	ops, err := f.dec.Operands(inst)
	if err != nil {
		return err
	}
	typeID, id := ops[0], ops[1]
	if typeID != wantTypeID {
		return newError(ErrWrongFunctionArgumentType, "parameter %d has type %%%d, function type says %%%d", index, typeID, wantTypeID)
	}
	lt, err := f.typeOf(typeID)
	if err != nil {
		return err
	}
	f.fn.Arguments = append(f.fn.Arguments, ir.FunctionArgument{Name: f.decor.take(id).name, Type: lt.handle})
	h := appendExpression(f.fn, ir.ExprFunctionArgument{Index: index})
	f.lookupExpr[id] = lookupExpression{handle: h, typeID: typeID}
	return f.dec.Finish(inst)
}

// exprOf resolves an id used inside a function body. Constants and globals
// get their expression on first use and are valid in every block.
func (f *frontend) exprOf(id uint32) (lookupExpression, error) {
	if le, ok := f.lookupExpr[id]; ok {
		return le, nil
	}
	var (
		kind   ir.ExpressionKind
		typeID uint32
	)
	if c, ok := f.lookupConstant[id]; ok {
		kind, typeID = c.expression(), c.typeID
	} else if v, ok := f.lookupVariable[id]; ok {
		kind, typeID = ir.ExprGlobalVariable{Variable: v.handle}, v.typeID
	} else {
		return lookupExpression{}, newError(ErrInvalidID, "%%%d is not a value", id)
	}
	var h ir.ExpressionHandle
	if f.em != nil {
		h = f.em.add(kind)
	} else {
		h = appendExpression(f.fn, kind)
	}
	le := lookupExpression{handle: h, typeID: typeID}
	f.lookupExpr[id] = le
	return le, nil
}

// finishPhis stores every phi source into its local at the end of the
// predecessor block. A source that is not in scope there is first spilled
// from its own block.
func (f *frontend) finishPhis(ctx *blockContext) error {
	f.em = nil
	appendTo := func(blockID uint32, kind ir.StatementKind) {
		ctx.blocks[blockID] = append(ctx.blocks[blockID], ir.Statement{Kind: kind})
	}
	for _, phi := range ctx.phis {
		ptr := appendExpression(f.fn, ir.ExprLocalVariable{Variable: phi.local})
		for _, src := range phi.sources {
			le, err := f.exprOf(src.id)
			if err != nil {
				return err
			}
			value := le.handle
			if !ctx.isParent(ctx.bodyOf(src.blockID), ctx.bodyOf(le.blockID)) {
				lt, err := f.typeOf(le.typeID)
				if err != nil {
					return err
				}
				spill := appendLocal(f.fn, ir.LocalVariable{Type: lt.handle})
				spillPtr := appendExpression(f.fn, ir.ExprLocalVariable{Variable: spill})
				appendTo(le.blockID, ir.StmtStore{Pointer: spillPtr, Value: le.handle})

				value = appendExpression(f.fn, ir.ExprLoad{Pointer: spillPtr})
				appendTo(src.blockID, ir.StmtEmit{Range: ir.Range{Start: value, End: value + 1}})
			}
			appendTo(src.blockID, ir.StmtStore{Pointer: ptr, Value: value})
		}
	}
	return nil
}

func (f *frontend) dumpBlockContext(ctx *blockContext) {
	var buf bytes.Buffer
	if err := ctx.dump(&buf, f.fnID); err != nil {
		f.warnf("block context of %%%d: %v", f.fnID, err)
		return
	}
	path := fmt.Sprintf("%s-%d.txt", f.opts.BlockCtxDumpPrefix, f.fnID)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		f.warnf("block context of %%%d: %v", f.fnID, err)
		return
	}
	f.log.Infof("wrote block context of %%%d to %s", f.fnID, path)
}
