package spirv

import "github.com/gogpu/spvfront/ir"

// typeOf resolves a type id.
func (f *frontend) typeOf(id uint32) (lookupType, error) {
	lt, ok := f.lookupType[id]
	if !ok {
		return lookupType{}, newError(ErrInvalidID, "%%%d is not a type", id)
	}
	return lt, nil
}

// inner returns the definition of a registered type.
func (f *frontend) inner(h ir.TypeHandle) ir.TypeInner {
	ty, _ := f.types.Lookup(h)
	return ty.Inner
}

func (f *frontend) insertType(id uint32, name string, inner ir.TypeInner, baseID uint32) ir.TypeHandle {
	h := f.types.GetOrCreate(name, inner)
	f.lookupType[id] = lookupType{handle: h, baseID: baseID}
	return h
}

// layout returns the layout of h, computing layouts of new types first.
func (f *frontend) layout(h ir.TypeHandle) (ir.TypeLayout, error) {
	if err := f.layouter.Update(f.types.GetTypes()); err != nil {
		return ir.TypeLayout{}, newError(ErrUnsupportedType, "layout: %v", err)
	}
	return f.layouter.Layout(h), nil
}

// scalarOf returns the scalar of a scalar, vector, matrix or atomic type.
func scalarOf(inner ir.TypeInner) (ir.ScalarType, bool) {
	switch t := inner.(type) {
	case ir.ScalarType:
		return t, true
	case ir.VectorType:
		return t.Scalar, true
	case ir.MatrixType:
		return t.Scalar, true
	case ir.AtomicType:
		return t.Scalar, true
	}
	return ir.ScalarType{}, false
}

func mapVectorSize(n uint32) (ir.VectorSize, error) {
	switch n {
	case 2:
		return ir.Vec2, nil
	case 3:
		return ir.Vec3, nil
	case 4:
		return ir.Vec4, nil
	}
	return 0, newError(ErrInvalidVectorSize, "%d components", n)
}

func (f *frontend) parseTypeVoid(inst Instruction, ops []uint32) error {
	if err := inst.Expect(2); err != nil {
		return err
	}
	f.decor.take(ops[0])
	f.voidTypeID = ops[0]
	return nil
}

func (f *frontend) parseTypeBool(inst Instruction, ops []uint32) error {
	if err := inst.Expect(2); err != nil {
		return err
	}
	dec := f.decor.take(ops[0])
	f.insertType(ops[0], dec.name, ir.ScalarType{Kind: ir.ScalarBool, Width: 1}, 0)
	return nil
}

func (f *frontend) parseTypeInt(inst Instruction, ops []uint32) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	id, width, sign := ops[0], ops[1], ops[2]
	var kind ir.ScalarKind
	switch sign {
	case 0:
		kind = ir.ScalarUint
	case 1:
		kind = ir.ScalarSint
	default:
		return newError(ErrInvalidSign, "signedness %d", sign)
	}
	switch width {
	case 8, 16, 32, 64:
	default:
		return newError(ErrInvalidTypeWidth, "integer width %d", width)
	}
	dec := f.decor.take(id)
	f.insertType(id, dec.name, ir.ScalarType{Kind: kind, Width: uint8(width / 8)}, 0)
	return nil
}

func (f *frontend) parseTypeFloat(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(3); err != nil {
		return err
	}
	id, width := ops[0], ops[1]
	switch width {
	case 16, 32, 64:
	default:
		return newError(ErrInvalidTypeWidth, "float width %d", width)
	}
	dec := f.decor.take(id)
	f.insertType(id, dec.name, ir.ScalarType{Kind: ir.ScalarFloat, Width: uint8(width / 8)}, 0)
	return nil
}

func (f *frontend) parseTypeVector(inst Instruction, ops []uint32) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	id, componentID := ops[0], ops[1]
	component, err := f.typeOf(componentID)
	if err != nil {
		return err
	}
	scalar, ok := f.inner(component.handle).(ir.ScalarType)
	if !ok {
		return newError(ErrInvalidInnerType, "vector component %%%d is not a scalar", componentID)
	}
	size, err := mapVectorSize(ops[2])
	if err != nil {
		return err
	}
	dec := f.decor.take(id)
	f.insertType(id, dec.name, ir.VectorType{Size: size, Scalar: scalar}, componentID)
	return nil
}

func (f *frontend) parseTypeMatrix(inst Instruction, ops []uint32) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	id, columnID := ops[0], ops[1]
	column, err := f.typeOf(columnID)
	if err != nil {
		return err
	}
	vec, ok := f.inner(column.handle).(ir.VectorType)
	if !ok {
		return newError(ErrInvalidInnerType, "matrix column %%%d is not a vector", columnID)
	}
	columns, err := mapVectorSize(ops[2])
	if err != nil {
		return err
	}
	dec := f.decor.take(id)
	f.insertType(id, dec.name, ir.MatrixType{Columns: columns, Rows: vec.Size, Scalar: vec.Scalar}, columnID)
	return nil
}

func (f *frontend) parseTypeFunction(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(3); err != nil {
		return err
	}
	f.decor.take(ops[0])
	f.lookupFunctionType[ops[0]] = lookupFunctionType{
		returnTypeID: ops[1],
		paramTypeIDs: append([]uint32(nil), ops[2:]...),
	}
	return nil
}

// isHandle reports whether values of the type live in the handle space.
func (f *frontend) isHandle(inner ir.TypeInner) bool {
	switch t := inner.(type) {
	case ir.ImageType, ir.SamplerType:
		return true
	case ir.BindingArrayType:
		return f.isHandle(f.inner(t.Base))
	}
	return false
}

// mapStorageClass returns the address space of a storage class. Inputs
// and outputs become private globals behind the entry point wrapper.
func mapStorageClass(sc StorageClass) (ir.AddressSpace, variableRole, error) {
	switch sc {
	case StorageClassFunction:
		return ir.SpaceFunction, roleGlobal, nil
	case StorageClassInput:
		return ir.SpacePrivate, roleInput, nil
	case StorageClassOutput:
		return ir.SpacePrivate, roleOutput, nil
	case StorageClassPrivate:
		return ir.SpacePrivate, roleGlobal, nil
	case StorageClassUniformConstant:
		return ir.SpaceHandle, roleGlobal, nil
	case StorageClassStorageBuffer:
		return ir.SpaceStorage, roleGlobal, nil
	case StorageClassUniform:
		return ir.SpaceUniform, roleGlobal, nil
	case StorageClassWorkgroup:
		return ir.SpaceWorkGroup, roleGlobal, nil
	case StorageClassPushConstant:
		return ir.SpacePushConstant, roleGlobal, nil
	}
	return 0, roleGlobal, newError(ErrUnsupportedStorageClass, "storage class %v", sc)
}

func (f *frontend) parseTypePointer(inst Instruction, ops []uint32) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	id, sc, baseID := ops[0], StorageClass(ops[1]), ops[2]
	dec := f.decor.take(id)
	base, err := f.typeOf(baseID)
	if err != nil {
		return err
	}
	baseInner := f.inner(base.handle)

	var space ir.AddressSpace
	if f.isHandle(baseInner) {
		space = ir.SpaceHandle
	} else if _, ok := f.storageBuffers[base.handle]; ok {
		space = ir.SpaceStorage
	} else if space, _, err = mapStorageClass(sc); err != nil {
		return err
	}

	if arr, ok := baseInner.(ir.ArrayType); ok && arr.Size.Constant == nil && space != ir.SpaceStorage {
		return newError(ErrUnsupportedRuntimeArrayStorageClass, "runtime array in %v", sc)
	}

	// Images and samplers are passed by handle, so their pointers collapse
	// onto the pointee.
	if space == ir.SpaceHandle {
		f.lookupType[id] = base
		return nil
	}
	f.insertType(id, dec.name, ir.PointerType{Base: base.handle, Space: space}, baseID)
	return nil
}

// arrayLength evaluates the constant length operand of OpTypeArray.
func (f *frontend) arrayLength(id uint32) (uint32, error) {
	c, ok := f.lookupConstant[id]
	if !ok {
		return 0, newError(ErrInvalidID, "array length %%%d is not a constant", id)
	}
	if c.isOverride {
		return 0, newError(ErrUnsupportedType, "array length %%%d is a specialization constant", id)
	}
	var n uint64
	switch v := f.module.GlobalExpressions[c.init].Kind.(type) {
	case ir.Literal:
		switch lit := v.Value.(type) {
		case ir.LiteralU32:
			n = uint64(lit)
		case ir.LiteralI32:
			if lit > 0 {
				n = uint64(lit)
			}
		case ir.LiteralU64:
			n = uint64(lit)
		case ir.LiteralI64:
			if lit > 0 {
				n = uint64(lit)
			}
		}
	}
	if n == 0 || n > 0xFFFFFFFF {
		return 0, newError(ErrInvalidOperand, "array length %%%d is not a positive 32-bit integer", id)
	}
	return uint32(n), nil
}

func (f *frontend) parseTypeArray(inst Instruction, ops []uint32) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	length, err := f.arrayLength(ops[2])
	if err != nil {
		return err
	}
	return f.insertArray(ops[0], ops[1], ir.ArraySize{Constant: &length})
}

func (f *frontend) parseTypeRuntimeArray(inst Instruction, ops []uint32) error {
	if err := inst.Expect(3); err != nil {
		return err
	}
	return f.insertArray(ops[0], ops[1], ir.ArraySize{})
}

// insertArray registers an array. Arrays of images or samplers are taken
// to be binding arrays; globals of such a type must carry a binding.
func (f *frontend) insertArray(id, baseID uint32, size ir.ArraySize) error {
	dec := f.decor.take(id)
	base, err := f.typeOf(baseID)
	if err != nil {
		return err
	}
	switch f.inner(base.handle).(type) {
	case ir.ImageType, ir.SamplerType:
		f.insertType(id, dec.name, ir.BindingArrayType{Base: base.handle, Size: size}, baseID)
		return nil
	}

	var stride uint32
	if dec.arrayStride != nil {
		stride = *dec.arrayStride
	} else {
		l, err := f.layout(base.handle)
		if err != nil {
			return err
		}
		stride = l.Stride()
	}
	f.insertType(id, dec.name, ir.ArrayType{Base: base.handle, Size: size, Stride: stride}, baseID)
	return nil
}

func (f *frontend) parseTypeStruct(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(2); err != nil {
		return err
	}
	id := ops[0]
	dec := f.decor.take(id)

	memberIDs := ops[1:]
	members := make([]ir.StructMember, 0, len(memberIDs))
	lookups := make([]lookupMember, 0, len(memberIDs))
	var access ir.StorageAccess
	var span uint32
	alignment := uint32(1)

	for i, typeID := range memberIDs {
		lt, err := f.typeOf(typeID)
		if err != nil {
			return err
		}
		md := f.decor.takeMember(id, uint32(i))
		access |= md.storageAccess()
		lookups = append(lookups, lookupMember{typeID: typeID, rowMajor: md.rowMajor})

		l, err := f.layout(lt.handle)
		if err != nil {
			return err
		}
		span = ir.AlignUp(span, l.Alignment)
		alignment = max(alignment, l.Alignment)
		if md.offset != nil {
			span = *md.offset
		}
		offset := span
		span += l.Size

		if m, ok := f.inner(lt.handle).(ir.MatrixType); ok && md.matrixStride != nil {
			rows := uint32(m.Rows)
			if rows == 3 {
				rows = 4
			}
			if expected := rows * uint32(m.Scalar.Width); *md.matrixStride != expected {
				return newError(ErrUnsupportedMatrixStride, "stride %d for mat%dx%d of %d-byte scalars, expected %d",
					*md.matrixStride, m.Columns, m.Rows, m.Scalar.Width, expected)
			}
		}

		binding, err := md.optionalBinding()
		if err != nil {
			f.log.Debugf("member %d of %%%d: %v", i, id, err)
			binding = nil
		}
		members = append(members, ir.StructMember{Name: md.name, Type: lt.handle, Binding: binding, Offset: offset})
	}
	span = ir.AlignUp(span, alignment)

	h := f.insertType(id, dec.name, ir.StructType{Members: members, Span: span}, 0)
	if dec.bufferBlock {
		f.storageBuffers[h] = access
	}
	for i, m := range lookups {
		f.lookupMember[memberRef{ty: h, index: uint32(i)}] = m
	}
	return nil
}

func mapImageDim(d Dim) (ir.ImageDimension, error) {
	switch d {
	case Dim1D:
		return ir.Dim1D, nil
	case Dim2D:
		return ir.Dim2D, nil
	case Dim3D:
		return ir.Dim3D, nil
	case DimCube:
		return ir.DimCube, nil
	}
	return 0, newError(ErrUnsupportedImageDim, "dimension %v", d)
}

var storageFormats = map[ImageFormat]ir.StorageFormat{
	ImageFormatUnknown:      ir.StorageFormatUnknown,
	ImageFormatRgba32f:      ir.StorageFormatRgba32Float,
	ImageFormatRgba16f:      ir.StorageFormatRgba16Float,
	ImageFormatR32f:         ir.StorageFormatR32Float,
	ImageFormatRgba8:        ir.StorageFormatRgba8Unorm,
	ImageFormatRgba8Snorm:   ir.StorageFormatRgba8Snorm,
	ImageFormatRg32f:        ir.StorageFormatRg32Float,
	ImageFormatRg16f:        ir.StorageFormatRg16Float,
	ImageFormatR11fG11fB10f: ir.StorageFormatRg11b10Ufloat,
	ImageFormatR16f:         ir.StorageFormatR16Float,
	ImageFormatRgb10A2:      ir.StorageFormatRgb10a2Unorm,
	ImageFormatRg8:          ir.StorageFormatRg8Unorm,
	ImageFormatR8:           ir.StorageFormatR8Unorm,
	ImageFormatRg8Snorm:     ir.StorageFormatRg8Snorm,
	ImageFormatR8Snorm:      ir.StorageFormatR8Snorm,
	ImageFormatRgba32i:      ir.StorageFormatRgba32Sint,
	ImageFormatRgba16i:      ir.StorageFormatRgba16Sint,
	ImageFormatRgba8i:       ir.StorageFormatRgba8Sint,
	ImageFormatR32i:         ir.StorageFormatR32Sint,
	ImageFormatRg32i:        ir.StorageFormatRg32Sint,
	ImageFormatRg16i:        ir.StorageFormatRg16Sint,
	ImageFormatRg8i:         ir.StorageFormatRg8Sint,
	ImageFormatR16i:         ir.StorageFormatR16Sint,
	ImageFormatR8i:          ir.StorageFormatR8Sint,
	ImageFormatRgba32ui:     ir.StorageFormatRgba32Uint,
	ImageFormatRgba16ui:     ir.StorageFormatRgba16Uint,
	ImageFormatRgba8ui:      ir.StorageFormatRgba8Uint,
	ImageFormatR32ui:        ir.StorageFormatR32Uint,
	ImageFormatRgb10a2ui:    ir.StorageFormatRgb10a2Uint,
	ImageFormatRg32ui:       ir.StorageFormatRg32Uint,
	ImageFormatRg16ui:       ir.StorageFormatRg16Uint,
	ImageFormatRg8ui:        ir.StorageFormatRg8Uint,
	ImageFormatR16ui:        ir.StorageFormatR16Uint,
	ImageFormatR8ui:         ir.StorageFormatR8Uint,
}

func (f *frontend) parseTypeImage(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(9); err != nil {
		return err
	}
	id, sampledTypeID := ops[0], ops[1]
	depth, arrayed, multisampled, sampled, format := ops[3], ops[4] != 0, ops[5] != 0, ops[6], ImageFormat(ops[7])

	dim, err := mapImageDim(Dim(ops[2]))
	if err != nil {
		return err
	}
	dec := f.decor.take(id)
	st, err := f.typeOf(sampledTypeID)
	if err != nil {
		return err
	}
	scalar, ok := scalarOf(f.inner(st.handle))
	if !ok {
		return newError(ErrInvalidInnerType, "image sampled type %%%d is not numeric", sampledTypeID)
	}

	img := ir.ImageType{Dim: dim, Arrayed: arrayed, Multisampled: multisampled}
	switch {
	case depth == 1:
		img.Class = ir.ImageClassDepth
		img.SampledKind = ir.ScalarFloat
	case sampled == 2:
		sf, ok := storageFormats[format]
		if !ok {
			return newError(ErrUnsupportedImageFormat, "format %v", format)
		}
		img.Class = ir.ImageClassStorage
		img.SampledKind = scalar.Kind
		img.StorageFormat = sf
		img.StorageAccess = ir.StorageAccessReadWrite
	default:
		img.Class = ir.ImageClassSampled
		img.SampledKind = scalar.Kind
	}
	f.insertType(id, dec.name, img, sampledTypeID)
	return nil
}

func (f *frontend) parseTypeSampledImage(inst Instruction, ops []uint32) error {
	if err := inst.Expect(3); err != nil {
		return err
	}
	f.decor.take(ops[0])
	image, err := f.typeOf(ops[1])
	if err != nil {
		return err
	}
	f.lookupType[ops[0]] = lookupType{handle: image.handle, baseID: ops[1]}
	return nil
}

func (f *frontend) parseTypeSampler(inst Instruction, ops []uint32) error {
	if err := inst.Expect(2); err != nil {
		return err
	}
	dec := f.decor.take(ops[0])
	f.insertType(ops[0], dec.name, ir.SamplerType{}, 0)
	return nil
}
