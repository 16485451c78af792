package spirv

import (
	"fmt"

	"github.com/gogpu/spvfront/ir"
)

var atomicFunctions = map[OpCode]ir.AtomicFunction{
	OpAtomicExchange: ir.AtomicExchange{},
	OpAtomicIAdd:     ir.AtomicAdd{},
	OpAtomicISub:     ir.AtomicSubtract{},
	OpAtomicSMin:     ir.AtomicMin{},
	OpAtomicUMin:     ir.AtomicMin{},
	OpAtomicSMax:     ir.AtomicMax{},
	OpAtomicUMax:     ir.AtomicMax{},
	OpAtomicAnd:      ir.AtomicAnd{},
	OpAtomicOr:       ir.AtomicInclusiveOr{},
	OpAtomicXor:      ir.AtomicExclusiveOr{},
}

// pointee returns the type a pointer expression points at. Only the
// shapes produced by access chains over globals are understood.
func (b *blockBuilder) pointee(h ir.ExpressionHandle) (ir.TypeHandle, error) {
	switch e := b.fn.Expressions[h].Kind.(type) {
	case ir.ExprGlobalVariable:
		return b.module.GlobalVariables[e.Variable].Type, nil
	case ir.ExprAccessIndex:
		base, err := b.pointee(e.Base)
		if err != nil {
			return 0, err
		}
		return b.elementType(base, &e.Index)
	case ir.ExprAccess:
		base, err := b.pointee(e.Base)
		if err != nil {
			return 0, err
		}
		return b.elementType(base, nil)
	}
	return 0, newError(ErrAtomicUpgrade, "expression %d is not a pointer into a global", h)
}

// elementType returns the element of an aggregate. index is needed for
// structs only.
func (b *blockBuilder) elementType(ty ir.TypeHandle, index *uint32) (ir.TypeHandle, error) {
	switch t := b.inner(ty).(type) {
	case ir.StructType:
		if index == nil || int(*index) >= len(t.Members) {
			return 0, newError(ErrAtomicUpgrade, "struct type %d indexed dynamically", ty)
		}
		return t.Members[*index].Type, nil
	case ir.ArrayType:
		return t.Base, nil
	case ir.BindingArrayType:
		return t.Base, nil
	}
	return 0, newError(ErrAtomicUpgrade, "type %d cannot hold atomics", ty)
}

// recordAtomicAccess marks the global and struct members that the pointer
// reaches, so they are retyped as atomics once the module is complete.
func (b *blockBuilder) recordAtomicAccess(ptr ir.ExpressionHandle) error {
	h := ptr
	for {
		switch e := b.fn.Expressions[h].Kind.(type) {
		case ir.ExprGlobalVariable:
			b.upgrades.AddGlobal(e.Variable)
			return nil
		case ir.ExprAccessIndex:
			base, err := b.pointee(e.Base)
			if err != nil {
				return err
			}
			if _, ok := b.inner(base).(ir.StructType); ok {
				b.upgrades.AddField(base, e.Index)
			}
			h = e.Base
		case ir.ExprAccess:
			h = e.Base
		default:
			return newError(ErrAtomicUpgrade, "atomic through expression %d, which does not reach a global", h)
		}
	}
}

// atomicPointer resolves the pointer operand of an atomic instruction and
// records the access.
func (b *blockBuilder) atomicPointer(id uint32) (ir.ExpressionHandle, lookupExpression, error) {
	ptr, le, err := b.value(id)
	if err != nil {
		return 0, le, err
	}
	if err := b.recordAtomicAccess(ptr); err != nil {
		return 0, le, err
	}
	return ptr, le, nil
}

func (b *blockBuilder) parseAtomicLoad(inst Instruction, ops []uint32) error {
	if err := inst.Expect(6); err != nil {
		return err
	}
	ptr, _, err := b.atomicPointer(ops[2])
	if err != nil {
		return err
	}
	b.define(ops[1], ops[0], b.em.add(ir.ExprLoad{Pointer: ptr}))
	return nil
}

func (b *blockBuilder) parseAtomicStore(inst Instruction, ops []uint32) error {
	if err := inst.Expect(5); err != nil {
		return err
	}
	ptr, _, err := b.atomicPointer(ops[0])
	if err != nil {
		return err
	}
	value, _, err := b.value(ops[3])
	if err != nil {
		return err
	}
	b.em.push(ir.StmtStore{Pointer: ptr, Value: value})
	return nil
}

// atomicStatement emits a StmtAtomic and defines id as its result.
func (b *blockBuilder) atomicStatement(id, typeID uint32, ptr ir.ExpressionHandle, fun ir.AtomicFunction, value ir.ExpressionHandle) error {
	lt, err := b.typeOf(typeID)
	if err != nil {
		return err
	}
	r := b.em.add(ir.ExprAtomicResult{Type: lt.handle})
	b.em.push(ir.StmtAtomic{Pointer: ptr, Fun: fun, Value: value, Result: &r})
	b.define(id, typeID, r)
	return nil
}

// parseAtomicIncrement handles OpAtomicIIncrement and OpAtomicIDecrement
// as an add or subtract of one.
func (b *blockBuilder) parseAtomicIncrement(inst Instruction, ops []uint32, fun ir.AtomicFunction) error {
	if err := inst.Expect(6); err != nil {
		return err
	}
	typeID := ops[0]
	ptr, _, err := b.atomicPointer(ops[2])
	if err != nil {
		return err
	}
	s, err := b.scalarKind(typeID)
	if err != nil {
		return err
	}
	var one ir.LiteralValue
	switch {
	case s.Kind == ir.ScalarSint && s.Width == 8:
		one = ir.LiteralI64(1)
	case s.Kind == ir.ScalarSint:
		one = ir.LiteralI32(1)
	case s.Width == 8:
		one = ir.LiteralU64(1)
	default:
		one = ir.LiteralU32(1)
	}
	value := b.em.add(ir.Literal{Value: one})
	return b.atomicStatement(ops[1], typeID, ptr, fun, value)
}

func (b *blockBuilder) parseAtomic(inst Instruction, ops []uint32, fun ir.AtomicFunction) error {
	if err := inst.Expect(7); err != nil {
		return err
	}
	ptr, _, err := b.atomicPointer(ops[2])
	if err != nil {
		return err
	}
	value, _, err := b.value(ops[5])
	if err != nil {
		return err
	}
	return b.atomicStatement(ops[1], ops[0], ptr, fun, value)
}

// parseAtomicCompareExchange produces the {old_value, exchanged} pair and
// defines the result id as its old value.
func (b *blockBuilder) parseAtomicCompareExchange(inst Instruction, ops []uint32) error {
	if err := inst.Expect(9); err != nil {
		return err
	}
	typeID, id := ops[0], ops[1]
	ptr, _, err := b.atomicPointer(ops[2])
	if err != nil {
		return err
	}
	value, _, err := b.value(ops[6])
	if err != nil {
		return err
	}
	comparator, _, err := b.value(ops[7])
	if err != nil {
		return err
	}
	lt, err := b.typeOf(typeID)
	if err != nil {
		return err
	}
	s, ok := b.inner(lt.handle).(ir.ScalarType)
	if !ok {
		return newError(ErrInvalidInnerType, "compare-exchange of non-scalar %%%d", typeID)
	}
	result := b.compareExchangeResult(lt.handle, s)

	r := b.em.add(ir.ExprAtomicResult{Type: result, Comparison: true})
	b.em.push(ir.StmtAtomic{
		Pointer: ptr,
		Fun:     ir.AtomicExchange{Compare: &comparator},
		Value:   value,
		Result:  &r,
	})
	b.define(id, typeID, b.em.add(ir.ExprAccessIndex{Base: r, Index: 0}))
	return nil
}

// compareExchangeResult returns the struct type holding the result of a
// compare-exchange on values of type ty.
func (b *blockBuilder) compareExchangeResult(ty ir.TypeHandle, s ir.ScalarType) ir.TypeHandle {
	kind := "u"
	switch s.Kind {
	case ir.ScalarSint:
		kind = "i"
	case ir.ScalarFloat:
		kind = "f"
	}
	exchanged := b.types.GetOrCreate("", ir.ScalarType{Kind: ir.ScalarBool, Width: 1})
	name := fmt.Sprintf("__atomic_compare_exchange_result<%s%d>", kind, uint32(s.Width)*8)
	return b.types.GetOrCreate(name, ir.StructType{
		Members: []ir.StructMember{
			{Name: "old_value", Type: ty, Offset: 0},
			{Name: "exchanged", Type: exchanged, Offset: uint32(s.Width)},
		},
		Span: uint32(s.Width) * 2,
	})
}
