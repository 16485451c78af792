package spirv

import "github.com/gogpu/spvfront/ir"

// samplingOptions distinguishes the sampling instruction families.
type samplingOptions struct {
	compare bool
	gather  bool
}

// imageOf returns the image type behind a value of type typeID.
func (b *blockBuilder) imageOf(typeID uint32) (ir.ImageType, error) {
	lt, err := b.typeOf(typeID)
	if err != nil {
		return ir.ImageType{}, err
	}
	inner := b.inner(lt.handle)
	if ba, ok := inner.(ir.BindingArrayType); ok {
		inner = b.inner(ba.Base)
	}
	img, ok := inner.(ir.ImageType)
	if !ok {
		return ir.ImageType{}, newError(ErrInvalidImageExpression, "%%%d is not an image type", typeID)
	}
	return img, nil
}

// markSampling records flags on the global or parameter that a handle
// expression of fn refers to.
func markSampling(fn *ir.Function, h ir.ExpressionHandle, flags ir.SamplingFlags, globals map[ir.GlobalVariableHandle]ir.SamplingFlags, params []ir.SamplingFlags) {
	for {
		switch e := fn.Expressions[h].Kind.(type) {
		case ir.ExprGlobalVariable:
			if cur, ok := globals[e.Variable]; ok {
				globals[e.Variable] = cur | flags
			}
			return
		case ir.ExprFunctionArgument:
			if int(e.Index) < len(params) {
				params[e.Index] |= flags
			}
			return
		case ir.ExprAccess:
			h = e.Base
		case ir.ExprAccessIndex:
			h = e.Base
		default:
			return
		}
	}
}

func (b *blockBuilder) parseSampledImage(inst Instruction, ops []uint32) error {
	if err := inst.Expect(5); err != nil {
		return err
	}
	image, le, err := b.value(ops[2])
	if err != nil {
		return err
	}
	sampler, _, err := b.value(ops[3])
	if err != nil {
		return err
	}
	b.sampledImages[ops[1]] = sampledImage{image: image, sampler: sampler, imageTypeID: le.typeID}
	return nil
}

// parseImage extracts the image of a sampled image.
func (b *blockBuilder) parseImage(inst Instruction, ops []uint32) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	si, ok := b.sampledImages[ops[2]]
	if !ok {
		return newError(ErrInvalidID, "%%%d is not a sampled image", ops[2])
	}
	b.define(ops[1], ops[0], si.image)
	return nil
}

// coordinateDims is the number of coordinate components an image of
// dimension d takes, not counting the array layer.
func coordinateDims(d ir.ImageDimension) uint32 {
	switch d {
	case ir.Dim1D:
		return 1
	case ir.Dim2D:
		return 2
	default:
		return 3
	}
}

// extractImageCoordinates splits a SPIR-V coordinate, which carries the
// array layer as its last component, into the coordinate and layer
// operands of the IR. Extra components beyond the image dimension are
// dropped.
func (b *blockBuilder) extractImageCoordinates(img ir.ImageType, coord ir.ExpressionHandle, coordTypeID uint32) (ir.ExpressionHandle, *ir.ExpressionHandle, error) {
	lt, err := b.typeOf(coordTypeID)
	if err != nil {
		return 0, nil, err
	}
	var (
		given uint32
		kind  ir.ScalarKind
	)
	switch t := b.inner(lt.handle).(type) {
	case ir.ScalarType:
		given, kind = 1, t.Kind
	case ir.VectorType:
		given, kind = uint32(t.Size), t.Scalar.Kind
	default:
		return 0, nil, newError(ErrInvalidImageExpression, "coordinate of type %%%d", coordTypeID)
	}

	required := coordinateDims(img.Dim)
	want := required
	if img.Arrayed {
		want++
	}
	if given < want {
		return 0, nil, newError(ErrInvalidImageExpression, "%d coordinate components, need %d", given, want)
	}

	var arrayIndex *ir.ExpressionHandle
	if img.Arrayed {
		layer := b.em.add(ir.ExprAccessIndex{Base: coord, Index: required})
		if kind == ir.ScalarFloat {
			width := uint8(4)
			layer = b.em.add(ir.ExprAs{Expr: layer, Kind: ir.ScalarSint, Convert: &width})
		}
		arrayIndex = &layer
	}
	if given == required {
		return coord, arrayIndex, nil
	}
	if required == 1 {
		return b.em.add(ir.ExprAccessIndex{Base: coord, Index: 0}), arrayIndex, nil
	}
	swizzle := ir.ExprSwizzle{
		Size:    ir.VectorSize(required),
		Vector:  coord,
		Pattern: [4]ir.SwizzleComponent{ir.SwizzleX, ir.SwizzleY, ir.SwizzleZ, ir.SwizzleW},
	}
	return b.em.add(swizzle), arrayIndex, nil
}

// imageOperands walks the optional operand mask that follows the fixed
// operands of an image instruction.
func imageOperands(ops []uint32) (ImageOperands, []uint32) {
	if len(ops) == 0 {
		return ImageOperandsNone, nil
	}
	return ImageOperands(ops[0]), ops[1:]
}

func (b *blockBuilder) parseImageSample(inst Instruction, ops []uint32, opts samplingOptions) error {
	fixed := 5
	if opts.compare || opts.gather {
		fixed = 6
	}
	if err := inst.ExpectAtLeast(uint16(fixed)); err != nil {
		return err
	}
	typeID, id := ops[0], ops[1]
	si, ok := b.sampledImages[ops[2]]
	if !ok {
		return newError(ErrInvalidID, "%%%d is not a sampled image", ops[2])
	}
	img, err := b.imageOf(si.imageTypeID)
	if err != nil {
		return err
	}
	coordValue, coordLE, err := b.value(ops[3])
	if err != nil {
		return err
	}
	coord, arrayIndex, err := b.extractImageCoordinates(img, coordValue, coordLE.typeID)
	if err != nil {
		return err
	}

	sample := ir.ExprImageSample{Image: si.image, Sampler: si.sampler, Level: ir.SampleLevelAuto{}}
	rest := ops[4:]
	if opts.compare {
		ref, _, err := b.value(rest[0])
		if err != nil {
			return err
		}
		sample.DepthRef = &ref
		rest = rest[1:]
	}
	if opts.gather {
		component := ir.SwizzleX
		if !opts.compare {
			v, ok := b.constU32(rest[0])
			if !ok || v > 3 {
				return newError(ErrInvalidOperand, "gather component %%%d is not a constant lane", rest[0])
			}
			component = ir.SwizzleComponent(v)
			rest = rest[1:]
		}
		sample.Gather = &component
	}

	mask, args := imageOperands(rest)
	next := func() (ir.ExpressionHandle, error) {
		if len(args) == 0 {
			return 0, newError(ErrInvalidOperandCount, "image operands %#x need more operands", uint32(mask))
		}
		h, _, err := b.value(args[0])
		args = args[1:]
		return h, err
	}
	if mask&ImageOperandsBias != 0 {
		bias, err := next()
		if err != nil {
			return err
		}
		sample.Level = ir.SampleLevelBias{Bias: bias}
	}
	if mask&ImageOperandsLod != 0 {
		lod, err := next()
		if err != nil {
			return err
		}
		switch {
		case opts.compare:
			sample.Level = ir.SampleLevelZero{}
		case img.Class == ir.ImageClassDepth:
			width := uint8(4)
			sample.Level = ir.SampleLevelExact{Level: b.em.add(ir.ExprAs{Expr: lod, Kind: ir.ScalarSint, Convert: &width})}
		default:
			sample.Level = ir.SampleLevelExact{Level: lod}
		}
	}
	if mask&ImageOperandsGrad != 0 {
		x, err := next()
		if err != nil {
			return err
		}
		y, err := next()
		if err != nil {
			return err
		}
		if opts.compare {
			sample.Level = ir.SampleLevelZero{}
		} else {
			sample.Level = ir.SampleLevelGradient{X: x, Y: y}
		}
	}
	if mask&ImageOperandsConstOffset != 0 {
		if len(args) == 0 {
			return newError(ErrInvalidOperandCount, "ConstOffset without operand")
		}
		c, err := b.constantOf(args[0])
		if err != nil {
			return err
		}
		args = args[1:]
		offset := b.appendGlobalExpression(c.expression())
		sample.Offset = &offset
	}
	if unknown := mask &^ (ImageOperandsBias | ImageOperandsLod | ImageOperandsGrad | ImageOperandsConstOffset); unknown != 0 {
		return newError(ErrInvalidOperand, "unsupported image operands %#x", uint32(unknown))
	}
	sample.Coordinate = coord
	sample.ArrayIndex = arrayIndex

	flags := ir.SamplingRegular
	if opts.compare {
		flags = ir.SamplingComparison
	}
	markSampling(b.fn, si.image, flags, b.handleSampling, b.paramSampling)
	markSampling(b.fn, si.sampler, flags, b.handleSampling, b.paramSampling)

	h := b.em.add(sample)
	if img.Class == ir.ImageClassDepth && sample.DepthRef == nil && sample.Gather == nil {
		if size, err := b.vectorSize(typeID); err == nil {
			h = b.em.add(ir.ExprSplat{Size: ir.VectorSize(size), Value: h})
		}
	}
	b.define(id, typeID, h)
	return nil
}

// parseImageLoad handles OpImageFetch and OpImageRead.
func (b *blockBuilder) parseImageLoad(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(5); err != nil {
		return err
	}
	typeID, id := ops[0], ops[1]
	image, imageLE, err := b.value(ops[2])
	if err != nil {
		return err
	}
	img, err := b.imageOf(imageLE.typeID)
	if err != nil {
		return err
	}
	coordValue, coordLE, err := b.value(ops[3])
	if err != nil {
		return err
	}
	coord, arrayIndex, err := b.extractImageCoordinates(img, coordValue, coordLE.typeID)
	if err != nil {
		return err
	}

	load := ir.ExprImageLoad{Image: image, Coordinate: coord, ArrayIndex: arrayIndex}
	mask, args := imageOperands(ops[4:])
	if unknown := mask &^ (ImageOperandsLod | ImageOperandsSample); unknown != 0 {
		return newError(ErrInvalidOperand, "unsupported image operands %#x", uint32(unknown))
	}
	if mask&ImageOperandsLod != 0 {
		if len(args) == 0 {
			return newError(ErrInvalidOperandCount, "Lod without operand")
		}
		lod, _, err := b.value(args[0])
		if err != nil {
			return err
		}
		args = args[1:]
		load.Level = &lod
	}
	if mask&ImageOperandsSample != 0 {
		if len(args) == 0 {
			return newError(ErrInvalidOperandCount, "Sample without operand")
		}
		sample, _, err := b.value(args[0])
		if err != nil {
			return err
		}
		load.Sample = &sample
	}
	if load.Level == nil && img.Class != ir.ImageClassStorage && !img.Multisampled {
		zero := b.em.add(ir.Literal{Value: ir.LiteralI32(0)})
		load.Level = &zero
	}

	h := b.em.add(load)
	if img.Class == ir.ImageClassDepth {
		if size, err := b.vectorSize(typeID); err == nil {
			h = b.em.add(ir.ExprSplat{Size: ir.VectorSize(size), Value: h})
		}
	}
	b.define(id, typeID, h)
	return nil
}

func (b *blockBuilder) parseImageWrite(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(4); err != nil {
		return err
	}
	image, imageLE, err := b.value(ops[0])
	if err != nil {
		return err
	}
	img, err := b.imageOf(imageLE.typeID)
	if err != nil {
		return err
	}
	coordValue, coordLE, err := b.value(ops[1])
	if err != nil {
		return err
	}
	coord, arrayIndex, err := b.extractImageCoordinates(img, coordValue, coordLE.typeID)
	if err != nil {
		return err
	}
	value, _, err := b.value(ops[2])
	if err != nil {
		return err
	}
	if mask, _ := imageOperands(ops[3:]); mask != ImageOperandsNone {
		return newError(ErrInvalidOperand, "unsupported image operands %#x", uint32(mask))
	}
	b.em.push(ir.StmtImageStore{Image: image, Coordinate: coord, ArrayIndex: arrayIndex, Value: value})
	return nil
}

// parseImageQuerySize returns the extent, with the layer count appended for
// arrayed images.
func (b *blockBuilder) parseImageQuerySize(inst Instruction, ops []uint32, withLod bool) error {
	if withLod {
		if err := inst.Expect(5); err != nil {
			return err
		}
	} else if err := inst.Expect(4); err != nil {
		return err
	}
	typeID, id := ops[0], ops[1]
	image, imageLE, err := b.value(ops[2])
	if err != nil {
		return err
	}
	img, err := b.imageOf(imageLE.typeID)
	if err != nil {
		return err
	}
	var level *ir.ExpressionHandle
	if withLod {
		lod, _, err := b.value(ops[3])
		if err != nil {
			return err
		}
		level = &lod
	}

	h := b.em.add(ir.ExprImageQuery{Image: image, Query: ir.ImageQuerySize{Level: level}})
	if img.Arrayed {
		dims := coordinateDims(img.Dim)
		if img.Dim == ir.DimCube {
			dims = 2
		}
		components := make([]ir.ExpressionHandle, 0, dims+1)
		if dims == 1 {
			components = append(components, h)
		} else {
			for i := uint32(0); i < dims; i++ {
				components = append(components, b.em.add(ir.ExprAccessIndex{Base: h, Index: i}))
			}
		}
		components = append(components, b.em.add(ir.ExprImageQuery{Image: image, Query: ir.ImageQueryNumLayers{}}))
		vec := b.types.GetOrCreate("", ir.VectorType{
			Size:   ir.VectorSize(dims + 1),
			Scalar: ir.ScalarType{Kind: ir.ScalarUint, Width: 4},
		})
		h = b.em.add(ir.ExprCompose{Type: vec, Components: components})
	}
	if h, err = b.castFrom(h, ir.ScalarUint, typeID); err != nil {
		return err
	}
	b.define(id, typeID, h)
	return nil
}

func (b *blockBuilder) parseImageQuery(inst Instruction, ops []uint32, query ir.ImageQuery) error {
	if err := inst.Expect(4); err != nil {
		return err
	}
	typeID, id := ops[0], ops[1]
	image, _, err := b.value(ops[2])
	if err != nil {
		return err
	}
	h := b.em.add(ir.ExprImageQuery{Image: image, Query: query})
	if h, err = b.castFrom(h, ir.ScalarUint, typeID); err != nil {
		return err
	}
	b.define(id, typeID, h)
	return nil
}
