package spirv

import "github.com/gogpu/spvfront/ir"

func (f *frontend) parseGlobalVariable(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(4); err != nil {
		return err
	}
	typeID, id, sc := ops[0], ops[1], StorageClass(ops[2])

	var init *ir.ExpressionHandle
	if inst.WordCount > 4 {
		if err := inst.Expect(5); err != nil {
			return err
		}
		c, err := f.constantOf(ops[3])
		if err != nil {
			return err
		}
		h := f.appendGlobalExpression(c.expression())
		init = &h
	}

	dec := f.decor.take(id)
	lt, err := f.typeOf(typeID)
	if err != nil {
		return err
	}
	original := lt.handle
	ty := original
	if p, ok := f.inner(original).(ir.PointerType); ok {
		ty = p.Base
	}

	if _, ok := f.inner(original).(ir.BindingArrayType); ok {
		if dec.descSet == nil || dec.binding == nil {
			return newError(ErrNonBindingArrayOfImageOrSamplers, "%%%d has no descriptor set and binding", id)
		}
	}

	// One SPIR-V storage image type serves images with different access
	// decorations, so each variable gets its own IR type.
	if img, ok := f.inner(ty).(ir.ImageType); ok && img.Class == ir.ImageClassStorage {
		img.StorageAccess = dec.storageAccess()
		ty = f.types.GetOrCreate("", img)
	}

	var (
		space ir.AddressSpace
		role  variableRole
	)
	access, isBuffer := f.storageBuffers[ty]
	if isBuffer {
		space, role = ir.SpaceStorage, roleGlobal
	} else {
		space, role, err = mapStorageClass(sc)
		if err != nil {
			return err
		}
		access = ir.StorageAccessReadWrite
	}

	lv := lookupVariable{role: role, typeID: typeID}
	gv := ir.GlobalVariable{Name: dec.name, Space: space, Type: ty}

	switch role {
	case roleGlobal:
		if space == ir.SpaceStorage {
			gv.Access = access & dec.storageAccess()
		}
		gv.Binding = dec.resourceBinding()
		gv.Init = init

	case roleInput:
		binding, err := dec.ioBinding()
		if err != nil {
			return err
		}
		argType := ty
		if bb, ok := binding.(ir.BuiltinBinding); ok {
			argType = f.unsignedBuiltinType(bb.Builtin, ty)
		}
		lv.arg = ir.FunctionArgument{Name: dec.name, Type: argType, Binding: &binding}

	case roleOutput:
		var bp *ir.Binding
		if binding, err := dec.ioBinding(); err == nil {
			bp = &binding
		}
		def, err := f.defaultOutput(bp, ty)
		if err != nil {
			return err
		}
		gv.Init = def
		lv.result = ir.FunctionResult{Type: ty, Binding: bp}
	}

	lv.handle = ir.GlobalVariableHandle(len(f.module.GlobalVariables))
	f.module.GlobalVariables = append(f.module.GlobalVariables, gv)

	if f.comparable(ty) {
		f.log.Debugf("tracking global %d for sampling", lv.handle)
		f.handleSampling[lv.handle] = 0
	}
	f.lookupVariable[id] = lv
	return nil
}

// unsignedBuiltinType returns the type the IR requires for an integer
// input built-in, which is unsigned even when the shader declared it
// signed. The entry point wrapper converts.
func (f *frontend) unsignedBuiltinType(b ir.BuiltinValue, ty ir.TypeHandle) ir.TypeHandle {
	var want ir.TypeInner
	u32 := ir.ScalarType{Kind: ir.ScalarUint, Width: 4}
	switch b {
	case ir.BuiltinBaseInstance, ir.BuiltinBaseVertex, ir.BuiltinInstanceIndex, ir.BuiltinSampleIndex,
		ir.BuiltinVertexIndex, ir.BuiltinPrimitiveIndex, ir.BuiltinLocalInvocationIndex:
		want = u32
	case ir.BuiltinGlobalInvocationID, ir.BuiltinLocalInvocationID, ir.BuiltinWorkGroupID, ir.BuiltinWorkGroupSize:
		want = ir.VectorType{Size: ir.Vec3, Scalar: u32}
	default:
		return ty
	}
	if s, ok := scalarOf(f.inner(ty)); !ok || s.Kind != ir.ScalarSint {
		return ty
	}
	return f.types.GetOrCreate("", want)
}

// defaultOutput builds the initializer of an output variable so that
// unwritten built-ins have well-defined values.
func (f *frontend) defaultOutput(binding *ir.Binding, ty ir.TypeHandle) (*ir.ExpressionHandle, error) {
	if binding != nil {
		bb, ok := (*binding).(ir.BuiltinBinding)
		if !ok {
			return nil, nil
		}
		h := f.defaultBuiltin(&bb.Builtin, ty)
		return &h, nil
	}
	st, ok := f.inner(ty).(ir.StructType)
	if !ok {
		return nil, nil
	}
	components := make([]ir.ExpressionHandle, 0, len(st.Members))
	for _, m := range st.Members {
		var b *ir.BuiltinValue
		if m.Binding != nil {
			if bb, ok := (*m.Binding).(ir.BuiltinBinding); ok {
				b = &bb.Builtin
			}
		}
		components = append(components, f.defaultBuiltin(b, m.Type))
	}
	h := f.appendGlobalExpression(ir.ExprCompose{Type: ty, Components: components})
	return &h, nil
}

func (f *frontend) defaultBuiltin(b *ir.BuiltinValue, ty ir.TypeHandle) ir.ExpressionHandle {
	if b == nil {
		return f.appendGlobalExpression(ir.ExprZeroValue{Type: ty})
	}
	switch *b {
	case ir.BuiltinPosition:
		zero := f.appendGlobalExpression(ir.Literal{Value: ir.LiteralF32(0)})
		one := f.appendGlobalExpression(ir.Literal{Value: ir.LiteralF32(1)})
		return f.appendGlobalExpression(ir.ExprCompose{Type: ty, Components: []ir.ExpressionHandle{zero, zero, zero, one}})
	case ir.BuiltinPointSize:
		return f.appendGlobalExpression(ir.Literal{Value: ir.LiteralF32(1)})
	case ir.BuiltinFragDepth:
		return f.appendGlobalExpression(ir.Literal{Value: ir.LiteralF32(0)})
	case ir.BuiltinSampleMask:
		return f.appendGlobalExpression(ir.Literal{Value: ir.LiteralU32(0xFFFFFFFF)})
	}
	return f.appendGlobalExpression(ir.ExprZeroValue{Type: ty})
}

// comparable reports whether a global of this type can take part in
// comparison sampling.
func (f *frontend) comparable(ty ir.TypeHandle) bool {
	switch t := f.inner(ty).(type) {
	case ir.SamplerType:
		return true
	case ir.ImageType:
		return t.Class != ir.ImageClassStorage
	case ir.BindingArrayType:
		return f.comparable(t.Base)
	}
	return false
}
