package spirv

import (
	"math"

	"github.com/gogpu/spvfront/ir"
)

func (f *frontend) appendGlobalExpression(kind ir.ExpressionKind) ir.ExpressionHandle {
	h := ir.ExpressionHandle(len(f.module.GlobalExpressions))
	f.module.GlobalExpressions = append(f.module.GlobalExpressions, ir.Expression{Kind: kind})
	return h
}

func (f *frontend) constantOf(id uint32) (lookupConstant, error) {
	c, ok := f.lookupConstant[id]
	if !ok {
		return lookupConstant{}, newError(ErrInvalidID, "%%%d is not a constant", id)
	}
	return c, nil
}

func (f *frontend) parseConstant(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(4); err != nil {
		return err
	}
	typeID, id := ops[0], ops[1]
	lt, err := f.typeOf(typeID)
	if err != nil {
		return err
	}
	scalar, ok := f.inner(lt.handle).(ir.ScalarType)
	if !ok {
		return newError(ErrUnsupportedType, "constant %%%d of non-scalar type %%%d", id, typeID)
	}

	low := ops[2]
	wide := func() (uint64, error) {
		if err := inst.Expect(5); err != nil {
			return 0, err
		}
		return uint64(ops[3])<<32 | uint64(low), nil
	}

	var lit ir.LiteralValue
	switch {
	case scalar.Kind == ir.ScalarUint && scalar.Width == 4:
		lit = ir.LiteralU32(low)
	case scalar.Kind == ir.ScalarUint && scalar.Width == 8:
		v, err := wide()
		if err != nil {
			return err
		}
		lit = ir.LiteralU64(v)
	case scalar.Kind == ir.ScalarSint && scalar.Width == 4:
		lit = ir.LiteralI32(int32(low))
	case scalar.Kind == ir.ScalarSint && scalar.Width == 8:
		v, err := wide()
		if err != nil {
			return err
		}
		lit = ir.LiteralI64(int64(v))
	case scalar.Kind == ir.ScalarFloat && scalar.Width == 2:
		lit = ir.LiteralF16(uint16(low))
	case scalar.Kind == ir.ScalarFloat && scalar.Width == 4:
		lit = ir.LiteralF32(math.Float32frombits(low))
	case scalar.Kind == ir.ScalarFloat && scalar.Width == 8:
		v, err := wide()
		if err != nil {
			return err
		}
		lit = ir.LiteralF64(math.Float64frombits(v))
	default:
		return newError(ErrInvalidTypeWidth, "constant of %d-byte %v", scalar.Width, scalar.Kind)
	}

	init := f.appendGlobalExpression(ir.Literal{Value: lit})
	return f.insertConstant(id, typeID, lt.handle, init)
}

func (f *frontend) parseCompositeConstant(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(3); err != nil {
		return err
	}
	typeID, id := ops[0], ops[1]
	lt, err := f.typeOf(typeID)
	if err != nil {
		return err
	}
	components := make([]ir.ExpressionHandle, 0, len(ops)-2)
	for _, cid := range ops[2:] {
		c, err := f.constantOf(cid)
		if err != nil {
			return err
		}
		components = append(components, f.appendGlobalExpression(c.expression()))
	}
	init := f.appendGlobalExpression(ir.ExprCompose{Type: lt.handle, Components: components})
	return f.insertConstant(id, typeID, lt.handle, init)
}

func (f *frontend) parseNullConstant(inst Instruction, ops []uint32) error {
	if err := inst.Expect(3); err != nil {
		return err
	}
	lt, err := f.typeOf(ops[0])
	if err != nil {
		return err
	}
	init := f.appendGlobalExpression(ir.ExprZeroValue{Type: lt.handle})
	return f.insertConstant(ops[1], ops[0], lt.handle, init)
}

func (f *frontend) parseBoolConstant(inst Instruction, ops []uint32, value bool) error {
	if err := inst.Expect(3); err != nil {
		return err
	}
	lt, err := f.typeOf(ops[0])
	if err != nil {
		return err
	}
	init := f.appendGlobalExpression(ir.Literal{Value: ir.LiteralBool(value)})
	return f.insertConstant(ops[1], ops[0], lt.handle, init)
}

// insertConstant registers a constant, or an override when the id carries
// a SpecId decoration.
func (f *frontend) insertConstant(id, typeID uint32, ty ir.TypeHandle, init ir.ExpressionHandle) error {
	dec := f.decor.take(id)
	if dec.specID != nil {
		if *dec.specID > math.MaxUint16 {
			return newError(ErrSpecIDTooHigh, "SpecId %d", *dec.specID)
		}
		specID := uint16(*dec.specID)
		h := ir.OverrideHandle(len(f.module.Overrides))
		f.module.Overrides = append(f.module.Overrides, ir.Override{Name: dec.name, ID: &specID, Type: ty, Init: &init})
		f.lookupConstant[id] = lookupConstant{isOverride: true, override: h, init: init, typeID: typeID}
		return nil
	}
	h := ir.ConstantHandle(len(f.module.Constants))
	f.module.Constants = append(f.module.Constants, ir.Constant{Name: dec.name, Type: ty, Init: init})
	f.lookupConstant[id] = lookupConstant{constant: h, init: init, typeID: typeID}
	return nil
}

// constU32 returns the value of a non-specializable integer constant.
func (f *frontend) constU32(id uint32) (uint32, bool) {
	c, ok := f.lookupConstant[id]
	if !ok || c.isOverride {
		return 0, false
	}
	lit, ok := f.module.GlobalExpressions[c.init].Kind.(ir.Literal)
	if !ok {
		return 0, false
	}
	switch v := lit.Value.(type) {
	case ir.LiteralU32:
		return uint32(v), true
	case ir.LiteralI32:
		return uint32(v), true
	}
	return 0, false
}
