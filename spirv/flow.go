package spirv

import "github.com/gogpu/spvfront/ir"

// flow handles merge instructions and block terminators. It reports
// whether the block ended.
func (b *blockBuilder) flow(inst Instruction, ops []uint32) (bool, error) {
	switch inst.Op {
	case OpLabel:
		return false, newError(ErrInvalidTerminator, "block %%%d has no terminator", b.blockID)

	case OpSelectionMerge:
		if err := inst.Expect(3); err != nil {
			return false, err
		}
		merge := ops[0]
		b.ctx.setBodyIfUnset(merge, b.bodyIdx)
		b.ctx.mergers[merge] = mergeSelection
		b.selectionMerge = merge
		return false, nil

	case OpLoopMerge:
		if err := inst.ExpectAtLeast(4); err != nil {
			return false, err
		}
		merge, continuing := ops[0], ops[1]
		b.ctx.setBodyIfUnset(merge, b.bodyIdx)
		b.ctx.mergers[merge] = mergeLoop

		loopBody := b.ctx.newBody(b.bodyIdx)
		continuingBody := b.ctx.newBody(loopBody)
		b.ctx.setBodyIfUnset(continuing, continuingBody)
		b.ctx.mergers[continuing] = mergeLoopContinue

		// The header itself is the first block of the loop body.
		b.ctx.bodyForLabel[b.blockID] = loopBody
		b.ctx.pushFragment(b.bodyIdx, fragLoop{body: loopBody, continuing: continuingBody})
		b.bodyIdx = loopBody
		return false, nil

	case OpBranch:
		if err := inst.Expect(2); err != nil {
			return false, err
		}
		target := ops[0]
		if kind, ok := b.ctx.mergers[target]; ok {
			b.finishBlock(nil)
			b.merger(b.bodyIdx, kind)
			return true, nil
		}
		b.ctx.setBodyIfUnset(target, b.bodyIdx)
		b.finishBlock(nil)
		return true, nil

	case OpBranchConditional:
		return true, b.branchConditional(inst, ops)

	case OpSwitch:
		return true, b.switchBranch(inst, ops)

	case OpReturn:
		if err := inst.Expect(1); err != nil {
			return false, err
		}
		b.finishBlock(ir.StmtReturn{})
		return true, nil

	case OpReturnValue:
		if err := inst.Expect(2); err != nil {
			return false, err
		}
		value, _, err := b.value(ops[0])
		if err != nil {
			return false, err
		}
		b.finishBlock(ir.StmtReturn{Value: &value})
		return true, nil

	case OpKill:
		if err := inst.Expect(1); err != nil {
			return false, err
		}
		b.finishBlock(ir.StmtKill{})
		return true, nil

	case OpUnreachable:
		if err := inst.Expect(1); err != nil {
			return false, err
		}
		b.finishBlock(nil)
		return true, nil
	}
	return false, unsupportedInstruction(PhaseFunction, inst.Op)
}

// finishBlock appends term, if any, and stores the block as the next
// fragment of the current body.
func (b *blockBuilder) finishBlock(term ir.StatementKind) {
	if term != nil {
		b.em.push(term)
	} else {
		b.em.flush()
	}
	b.ctx.storeBlock(b.blockID, b.em.block)
	b.ctx.pushFragment(b.bodyIdx, fragBlock{id: b.blockID})
}

// merger appends the jump that a branch to a merge block of the given kind
// stands for.
func (b *blockBuilder) merger(bodyIdx int, kind mergeKind) {
	switch kind {
	case mergeLoopContinue:
		b.ctx.pushFragment(bodyIdx, fragContinue{})
	case mergeLoop, mergeSwitch:
		b.ctx.pushFragment(bodyIdx, fragBreak{})
	}
}

func (b *blockBuilder) branchConditional(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(4); err != nil {
		return err
	}
	condition, _, err := b.value(ops[0])
	if err != nil {
		return err
	}
	trueID, falseID := ops[1], ops[2]

	// A conditional branch at the end of a loop's continuing construct that
	// either leaves the loop or jumps back to its header is the loop's
	// break-if.
	parent := b.ctx.bodies[b.bodyIdx].parent
	grand := b.ctx.bodies[parent].parent
	if frags := b.ctx.bodies[grand].data; len(frags) > 0 {
		last := len(frags) - 1
		if loop, ok := frags[last].(fragLoop); ok && loop.continuing == b.bodyIdx && loop.breakIf == nil {
			for _, negate := range []bool{false, true} {
				breakID, backID := trueID, falseID
				if negate {
					breakID, backID = falseID, trueID
				}
				if kind, ok := b.ctx.mergers[breakID]; !ok || kind != mergeLoop {
					continue
				}
				if _, merged := b.ctx.mergers[backID]; merged {
					continue
				}
				if body, ok := b.ctx.bodyForLabel[backID]; !ok || body != loop.body {
					continue
				}
				cond := condition
				if negate {
					cond = b.em.add(ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: condition})
				}
				loop.breakIf = &cond
				frags[last] = loop
				b.finishBlock(nil)
				return nil
			}
		}
	}

	b.finishBlock(nil)

	if trueID == falseID {
		if kind, ok := b.ctx.mergers[trueID]; ok {
			b.merger(b.bodyIdx, kind)
		} else {
			b.ctx.bodyForLabel[trueID] = b.bodyIdx
		}
		return nil
	}

	branch := func(target uint32) int {
		idx := b.ctx.newBody(b.bodyIdx)
		if kind, ok := b.ctx.mergers[target]; ok {
			b.merger(idx, kind)
		} else {
			b.ctx.bodyForLabel[target] = idx
		}
		return idx
	}
	accept := branch(trueID)
	reject := branch(falseID)
	b.ctx.pushFragment(b.bodyIdx, fragIf{condition: condition, accept: accept, reject: reject})
	return nil
}

// switchBranch groups case literals by target so literals sharing a block
// share a body, in order of first appearance.
func (b *blockBuilder) switchBranch(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(3); err != nil {
		return err
	}
	if (len(ops)-2)%2 != 0 {
		return newError(ErrInvalidOperandCount, "switch literal without target")
	}
	if b.selectionMerge != 0 {
		b.ctx.mergers[b.selectionMerge] = mergeSwitch
	}

	selector, le, err := b.value(ops[0])
	if err != nil {
		return err
	}
	s, err := b.scalarKind(le.typeID)
	if err != nil {
		return err
	}
	switch s.Kind {
	case ir.ScalarUint:
		selector = b.em.add(ir.ExprAs{Expr: selector, Kind: ir.ScalarSint})
	case ir.ScalarSint:
	default:
		return newError(ErrInvalidOperand, "switch selector %%%d is not an integer", ops[0])
	}

	target := func(label uint32) int {
		idx := b.ctx.newBody(b.bodyIdx)
		if kind, ok := b.ctx.mergers[label]; ok {
			b.merger(idx, kind)
		}
		b.ctx.setBodyIfUnset(label, idx)
		return idx
	}
	defaultBody := target(ops[1])

	type group struct {
		body     int
		literals []int32
	}
	var groups []*group
	byTarget := make(map[uint32]*group)
	for i := 2; i+1 < len(ops); i += 2 {
		literal, label := int32(ops[i]), ops[i+1]
		g, ok := byTarget[label]
		if !ok {
			g = &group{body: target(label)}
			byTarget[label] = g
			groups = append(groups, g)
		}
		g.literals = append(g.literals, literal)
	}

	var cases []switchEntry
	for _, g := range groups {
		for _, literal := range g.literals {
			cases = append(cases, switchEntry{value: literal, body: g.body})
		}
	}

	b.finishBlock(nil)
	b.ctx.pushFragment(b.bodyIdx, fragSwitch{selector: selector, cases: cases, defaultBody: defaultBody})
	return nil
}
