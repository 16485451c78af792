package spirv

import "github.com/gogpu/spvfront/ir"

// entryWrapper is the synthesized function behind an entry point. It moves
// inputs from bound arguments into the private globals the shader reads,
// calls the shader's function and returns the outputs.
type entryWrapper struct {
	entry ir.EntryPoint
	fn    ir.Function
}

// buildEntryPoints creates one wrapper per OpEntryPoint, in declaration
// order.
func (f *frontend) buildEntryPoints() error {
	for i, fnID := range f.entryOrder {
		ep := f.entryPoints[fnID]
		if _, ok := f.lookupFunction[fnID]; !ok {
			return newError(ErrInvalidID, "entry point %q names %%%d, which is not a function", ep.name, fnID)
		}
		w, err := f.entryWrapper(uint32(i), fnID, ep)
		if err != nil {
			return err
		}
		f.wrappers = append(f.wrappers, w)
	}
	return nil
}

func (f *frontend) entryWrapper(index, fnID uint32, ep *entryPoint) (entryWrapper, error) {
	fn := ir.Function{Name: ep.name + "_wrap"}
	em := newEmitter(&fn, nil)

	for _, id := range ep.variableIDs {
		lv, ok := f.lookupVariable[id]
		if !ok {
			return entryWrapper{}, newError(ErrInvalidID, "entry point %q interface %%%d is not a variable", ep.name, id)
		}
		if lv.role != roleInput {
			continue
		}
		argIndex := uint32(len(fn.Arguments))
		fn.Arguments = append(fn.Arguments, lv.arg)
		value := em.add(ir.ExprFunctionArgument{Index: argIndex})

		// Integer built-ins arrive unsigned; the global keeps the declared
		// signedness.
		declared := f.module.GlobalVariables[lv.handle].Type
		if declared != lv.arg.Type {
			if s, ok := scalarOf(f.inner(declared)); ok {
				width := s.Width
				value = em.add(ir.ExprAs{Expr: value, Kind: s.Kind, Convert: &width})
			}
		}
		ptr := em.add(ir.ExprGlobalVariable{Variable: lv.handle})
		em.push(ir.StmtStore{Pointer: ptr, Value: value})
	}

	placeholder := f.calls.addCall(callNode{kind: nodeEntry, id: index}, fnID)
	em.push(ir.StmtCall{Function: placeholder})

	var (
		members    []ir.StructMember
		components []ir.ExpressionHandle
	)
	for _, id := range ep.variableIDs {
		lv := f.lookupVariable[id]
		if lv.role != roleOutput {
			continue
		}
		gv := f.module.GlobalVariables[lv.handle]
		ptr := em.add(ir.ExprGlobalVariable{Variable: lv.handle})

		if lv.result.Binding != nil {
			value := em.add(ir.ExprLoad{Pointer: ptr})
			value = f.adjustOutput(em, ep.stage, value, lv.result.Binding, gv.Type)
			members = append(members, ir.StructMember{Name: gv.Name, Type: gv.Type, Binding: lv.result.Binding})
			components = append(components, value)
			continue
		}

		st, ok := f.inner(gv.Type).(ir.StructType)
		if !ok {
			f.warnf("entry point %q output %%%d has no binding and is dropped", ep.name, id)
			continue
		}
		for mi, m := range st.Members {
			if m.Binding == nil {
				continue
			}
			if bb, ok := (*m.Binding).(ir.BuiltinBinding); ok && bb.Builtin != ir.BuiltinPosition {
				if _, used := f.perVertexAccess[bb.Builtin]; !used {
					continue
				}
			}
			mptr := em.add(ir.ExprAccessIndex{Base: ptr, Index: uint32(mi)})
			value := em.add(ir.ExprLoad{Pointer: mptr})
			value = f.adjustOutput(em, ep.stage, value, m.Binding, m.Type)
			members = append(members, ir.StructMember{Name: m.Name, Type: m.Type, Binding: m.Binding})
			components = append(components, value)
		}
	}

	switch len(members) {
	case 0:
		em.push(ir.StmtReturn{})
	case 1:
		fn.Result = &ir.FunctionResult{Type: members[0].Type, Binding: members[0].Binding}
		em.push(ir.StmtReturn{Value: &components[0]})
	default:
		ty, err := f.outputStruct(ep.name, members)
		if err != nil {
			return entryWrapper{}, err
		}
		fn.Result = &ir.FunctionResult{Type: ty}
		value := em.add(ir.ExprCompose{Type: ty, Components: components})
		em.push(ir.StmtReturn{Value: &value})
	}
	fn.Body = em.block

	f.log.Debugf("entry point %q: %d inputs, %d outputs", ep.name, len(fn.Arguments), len(members))
	return entryWrapper{
		entry: ir.EntryPoint{
			Name:           ep.name,
			Stage:          ep.stage,
			Workgroup:      ep.workgroup,
			EarlyDepthTest: ep.earlyDepth,
		},
		fn: fn,
	}, nil
}

// adjustOutput flips the Y component of a vertex position when the
// coordinate space is adjusted.
func (f *frontend) adjustOutput(em *emitter, stage ir.ShaderStage, value ir.ExpressionHandle, binding *ir.Binding, ty ir.TypeHandle) ir.ExpressionHandle {
	if !f.opts.AdjustCoordinateSpace || stage != ir.StageVertex || binding == nil {
		return value
	}
	if bb, ok := (*binding).(ir.BuiltinBinding); !ok || bb.Builtin != ir.BuiltinPosition {
		return value
	}
	components := make([]ir.ExpressionHandle, 4)
	for i := range components {
		components[i] = em.add(ir.ExprAccessIndex{Base: value, Index: uint32(i)})
	}
	components[1] = em.add(ir.ExprUnary{Op: ir.UnaryNegate, Expr: components[1]})
	return em.add(ir.ExprCompose{Type: ty, Components: components})
}

// outputStruct lays out the members of a multi-value entry point result.
func (f *frontend) outputStruct(name string, members []ir.StructMember) (ir.TypeHandle, error) {
	var offset, align uint32 = 0, 1
	for i := range members {
		l, err := f.layout(members[i].Type)
		if err != nil {
			return 0, err
		}
		offset = ir.AlignUp(offset, l.Alignment)
		members[i].Offset = offset
		offset += l.Size
		align = max(align, l.Alignment)
	}
	return f.types.GetOrCreate(name+"Output", ir.StructType{Members: members, Span: ir.AlignUp(offset, align)}), nil
}
