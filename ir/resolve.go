package ir

import "fmt"

var (
	scalarBool = ScalarType{Kind: ScalarBool, Width: 1}
	scalarU32  = ScalarType{Kind: ScalarUint, Width: 4}
	scalarF32  = ScalarType{Kind: ScalarFloat, Width: 4}
)

// ResolveExpressionType resolves the type of one expression of fn.
// Operands whose entry in fn.ExpressionTypes is already filled are reused;
// the rest are resolved on demand.
func ResolveExpressionType(module *Module, fn *Function, handle ExpressionHandle) (TypeResolution, error) {
	r := newResolver(module, fn)
	for i, res := range fn.ExpressionTypes {
		if i < len(r.types) && (res.Handle != nil || res.Value != nil) {
			r.types[i] = res
			r.state[i] = resolved
		}
	}
	return r.resolve(handle)
}

// ResolveFunctionTypes fills fn.ExpressionTypes for every expression.
// It is run once a function is final, after call targets are patched and
// atomic types are upgraded. Expressions that fail to resolve keep an
// empty TypeResolution; the first failure is returned.
func ResolveFunctionTypes(module *Module, fn *Function) error {
	r := newResolver(module, fn)
	var first error
	for i := range fn.Expressions {
		if _, err := r.resolve(ExpressionHandle(i)); err != nil && first == nil {
			first = fmt.Errorf("function %q: expression %d: %w", fn.Name, i, err)
		}
	}
	fn.ExpressionTypes = r.types
	return first
}

// ResolveModuleTypes runs ResolveFunctionTypes over every function and
// returns the first failure.
func ResolveModuleTypes(module *Module) error {
	var first error
	for i := range module.Functions {
		if err := ResolveFunctionTypes(module, &module.Functions[i]); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type resolveState uint8

const (
	unresolved resolveState = iota
	resolving
	resolved
)

type resolver struct {
	module *Module
	fn     *Function
	types  []TypeResolution
	state  []resolveState
}

func newResolver(module *Module, fn *Function) *resolver {
	return &resolver{
		module: module,
		fn:     fn,
		types:  make([]TypeResolution, len(fn.Expressions)),
		state:  make([]resolveState, len(fn.Expressions)),
	}
}

func (r *resolver) resolve(handle ExpressionHandle) (TypeResolution, error) {
	if int(handle) >= len(r.fn.Expressions) {
		return TypeResolution{}, fmt.Errorf("expression handle %d out of range (max %d)", handle, len(r.fn.Expressions))
	}
	switch r.state[handle] {
	case resolved:
		return r.types[handle], nil
	case resolving:
		return TypeResolution{}, fmt.Errorf("expression %d depends on itself", handle)
	}
	r.state[handle] = resolving
	res, err := r.resolveKind(r.fn.Expressions[handle].Kind)
	if err != nil {
		r.state[handle] = unresolved
		return TypeResolution{}, err
	}
	r.types[handle] = res
	r.state[handle] = resolved
	return res, nil
}

// inner resolves handle and returns the underlying TypeInner.
func (r *resolver) inner(handle ExpressionHandle) (TypeInner, error) {
	res, err := r.resolve(handle)
	if err != nil {
		return nil, err
	}
	return r.module.inner(res)
}

func (m *Module) inner(res TypeResolution) (TypeInner, error) {
	if res.Handle == nil {
		return res.Value, nil
	}
	return m.typeInner(*res.Handle)
}

func (m *Module) typeInner(h TypeHandle) (TypeInner, error) {
	if int(h) >= len(m.Types) {
		return nil, fmt.Errorf("type handle %d out of range", h)
	}
	return m.Types[h].Inner, nil
}

func byHandle(h TypeHandle) TypeResolution { return TypeResolution{Handle: &h} }

func inline(inner TypeInner) TypeResolution { return TypeResolution{Value: inner} }

//nolint:gocyclo,cyclop,funlen // one case per expression kind
func (r *resolver) resolveKind(kind ExpressionKind) (TypeResolution, error) {
	m := r.module
	switch k := kind.(type) {
	case Literal:
		return resolveLiteralType(k)
	case ExprConstant:
		if int(k.Constant) >= len(m.Constants) {
			return TypeResolution{}, fmt.Errorf("constant %d out of range", k.Constant)
		}
		return byHandle(m.Constants[k.Constant].Type), nil
	case ExprOverride:
		if int(k.Override) >= len(m.Overrides) {
			return TypeResolution{}, fmt.Errorf("override %d out of range", k.Override)
		}
		return byHandle(m.Overrides[k.Override].Type), nil
	case ExprZeroValue:
		return byHandle(k.Type), nil
	case ExprCompose:
		return byHandle(k.Type), nil
	case ExprAccess:
		return r.resolveAccess(k.Base, nil)
	case ExprAccessIndex:
		idx := k.Index
		return r.resolveAccess(k.Base, &idx)
	case ExprSplat:
		inner, err := r.inner(k.Value)
		if err != nil {
			return TypeResolution{}, err
		}
		s, ok := inner.(ScalarType)
		if !ok {
			return TypeResolution{}, fmt.Errorf("splat of non-scalar %T", inner)
		}
		return inline(VectorType{Size: k.Size, Scalar: s}), nil
	case ExprSwizzle:
		inner, err := r.inner(k.Vector)
		if err != nil {
			return TypeResolution{}, err
		}
		v, ok := inner.(VectorType)
		if !ok {
			return TypeResolution{}, fmt.Errorf("swizzle of non-vector %T", inner)
		}
		return inline(VectorType{Size: k.Size, Scalar: v.Scalar}), nil
	case ExprFunctionArgument:
		if int(k.Index) >= len(r.fn.Arguments) {
			return TypeResolution{}, fmt.Errorf("function argument index %d out of range", k.Index)
		}
		return byHandle(r.fn.Arguments[k.Index].Type), nil
	case ExprGlobalVariable:
		if int(k.Variable) >= len(m.GlobalVariables) {
			return TypeResolution{}, fmt.Errorf("global variable %d out of range", k.Variable)
		}
		gv := m.GlobalVariables[k.Variable]
		if gv.Space == SpaceHandle {
			return byHandle(gv.Type), nil
		}
		return inline(PointerType{Base: gv.Type, Space: gv.Space}), nil
	case ExprLocalVariable:
		if int(k.Variable) >= len(r.fn.LocalVars) {
			return TypeResolution{}, fmt.Errorf("local variable %d out of range", k.Variable)
		}
		return inline(PointerType{Base: r.fn.LocalVars[k.Variable].Type, Space: SpaceFunction}), nil
	case ExprLoad:
		return r.resolveLoad(k)
	case ExprImageSample:
		img, err := r.image(k.Image)
		if err != nil {
			return TypeResolution{}, err
		}
		if img.Class == ImageClassDepth {
			if k.Gather != nil {
				return inline(VectorType{Size: Vec4, Scalar: scalarF32}), nil
			}
			return inline(scalarF32), nil
		}
		return inline(VectorType{Size: Vec4, Scalar: ScalarType{Kind: img.SampledKind, Width: 4}}), nil
	case ExprImageLoad:
		img, err := r.image(k.Image)
		if err != nil {
			return TypeResolution{}, err
		}
		switch img.Class {
		case ImageClassDepth:
			return inline(scalarF32), nil
		case ImageClassStorage:
			return inline(VectorType{Size: Vec4, Scalar: ScalarType{Kind: img.StorageFormat.ScalarKind(), Width: 4}}), nil
		default:
			return inline(VectorType{Size: Vec4, Scalar: ScalarType{Kind: img.SampledKind, Width: 4}}), nil
		}
	case ExprImageQuery:
		if _, ok := k.Query.(ImageQuerySize); !ok {
			return inline(scalarU32), nil
		}
		img, err := r.image(k.Image)
		if err != nil {
			return TypeResolution{}, err
		}
		switch img.Dim {
		case Dim1D:
			return inline(scalarU32), nil
		case Dim3D:
			return inline(VectorType{Size: Vec3, Scalar: scalarU32}), nil
		default:
			return inline(VectorType{Size: Vec2, Scalar: scalarU32}), nil
		}
	case ExprUnary:
		return r.resolve(k.Expr)
	case ExprBinary:
		return r.resolveBinary(k)
	case ExprSelect:
		return r.resolve(k.Accept)
	case ExprDerivative:
		return r.resolve(k.Expr)
	case ExprRelational:
		if k.Fun == RelationalAll || k.Fun == RelationalAny {
			return inline(scalarBool), nil
		}
		inner, err := r.inner(k.Argument)
		if err != nil {
			return TypeResolution{}, err
		}
		return inline(withScalar(inner, scalarBool)), nil
	case ExprMath:
		return r.resolveMath(k)
	case ExprAs:
		inner, err := r.inner(k.Expr)
		if err != nil {
			return TypeResolution{}, err
		}
		return resolveAsType(inner, k)
	case ExprCallResult:
		if int(k.Function) >= len(m.Functions) {
			return TypeResolution{}, fmt.Errorf("function %d out of range", k.Function)
		}
		result := m.Functions[k.Function].Result
		if result == nil {
			return TypeResolution{}, fmt.Errorf("function %q has no return type", m.Functions[k.Function].Name)
		}
		return byHandle(result.Type), nil
	case ExprArrayLength:
		return inline(scalarU32), nil
	case ExprAtomicResult:
		return byHandle(k.Type), nil
	default:
		return TypeResolution{}, fmt.Errorf("unsupported expression kind: %T", kind)
	}
}

func resolveLiteralType(lit Literal) (TypeResolution, error) {
	switch v := lit.Value.(type) {
	case LiteralF64:
		return inline(ScalarType{Kind: ScalarFloat, Width: 8}), nil
	case LiteralF32:
		return inline(scalarF32), nil
	case LiteralF16:
		return inline(ScalarType{Kind: ScalarFloat, Width: 2}), nil
	case LiteralU32:
		return inline(scalarU32), nil
	case LiteralI32:
		return inline(ScalarType{Kind: ScalarSint, Width: 4}), nil
	case LiteralU64:
		return inline(ScalarType{Kind: ScalarUint, Width: 8}), nil
	case LiteralI64:
		return inline(ScalarType{Kind: ScalarSint, Width: 8}), nil
	case LiteralBool:
		return inline(scalarBool), nil
	default:
		return TypeResolution{}, fmt.Errorf("unknown literal type: %T", v)
	}
}

// resolveAccess handles both Access (index == nil) and AccessIndex.
func (r *resolver) resolveAccess(base ExpressionHandle, index *uint32) (TypeResolution, error) {
	inner, err := r.inner(base)
	if err != nil {
		return TypeResolution{}, err
	}

	switch t := inner.(type) {
	case PointerType:
		pointee, err := r.module.typeInner(t.Base)
		if err != nil {
			return TypeResolution{}, err
		}
		switch p := pointee.(type) {
		case ArrayType:
			return inline(PointerType{Base: p.Base, Space: t.Space}), nil
		case BindingArrayType:
			return inline(PointerType{Base: p.Base, Space: t.Space}), nil
		case VectorType:
			return inline(ValuePointerType{Scalar: p.Scalar, Space: t.Space}), nil
		case MatrixType:
			rows := p.Rows
			return inline(ValuePointerType{Size: &rows, Scalar: p.Scalar, Space: t.Space}), nil
		case StructType:
			member, err := structMember(p, index)
			if err != nil {
				return TypeResolution{}, err
			}
			return inline(PointerType{Base: member.Type, Space: t.Space}), nil
		default:
			return TypeResolution{}, fmt.Errorf("cannot index through pointer to %T", pointee)
		}
	case ValuePointerType:
		if t.Size == nil {
			return TypeResolution{}, fmt.Errorf("cannot index through pointer to scalar")
		}
		return inline(ValuePointerType{Scalar: t.Scalar, Space: t.Space}), nil
	case ArrayType:
		return byHandle(t.Base), nil
	case BindingArrayType:
		return byHandle(t.Base), nil
	case VectorType:
		return inline(t.Scalar), nil
	case MatrixType:
		return inline(VectorType{Size: t.Rows, Scalar: t.Scalar}), nil
	case StructType:
		member, err := structMember(t, index)
		if err != nil {
			return TypeResolution{}, err
		}
		return byHandle(member.Type), nil
	default:
		return TypeResolution{}, fmt.Errorf("cannot index into %T", inner)
	}
}

func structMember(st StructType, index *uint32) (StructMember, error) {
	if index == nil {
		return StructMember{}, fmt.Errorf("struct members require a constant index")
	}
	if int(*index) >= len(st.Members) {
		return StructMember{}, fmt.Errorf("struct member index %d out of range (%d members)", *index, len(st.Members))
	}
	return st.Members[*index], nil
}

func (r *resolver) resolveLoad(expr ExprLoad) (TypeResolution, error) {
	inner, err := r.inner(expr.Pointer)
	if err != nil {
		return TypeResolution{}, err
	}
	switch p := inner.(type) {
	case PointerType:
		pointee, err := r.module.typeInner(p.Base)
		if err != nil {
			return TypeResolution{}, err
		}
		if atomic, ok := pointee.(AtomicType); ok {
			return inline(atomic.Scalar), nil
		}
		return byHandle(p.Base), nil
	case ValuePointerType:
		if p.Size == nil {
			return inline(p.Scalar), nil
		}
		return inline(VectorType{Size: *p.Size, Scalar: p.Scalar}), nil
	default:
		return TypeResolution{}, fmt.Errorf("load through non-pointer %T", inner)
	}
}

func (r *resolver) image(h ExpressionHandle) (ImageType, error) {
	inner, err := r.inner(h)
	if err != nil {
		return ImageType{}, err
	}
	img, ok := inner.(ImageType)
	if !ok {
		return ImageType{}, fmt.Errorf("expected image type, got %T", inner)
	}
	return img, nil
}

func (r *resolver) resolveBinary(expr ExprBinary) (TypeResolution, error) {
	left, err := r.resolve(expr.Left)
	if err != nil {
		return TypeResolution{}, err
	}
	leftInner, err := r.module.inner(left)
	if err != nil {
		return TypeResolution{}, err
	}

	switch expr.Op {
	case BinaryEqual, BinaryNotEqual, BinaryLess, BinaryLessEqual, BinaryGreater, BinaryGreaterEqual,
		BinaryLogicalAnd, BinaryLogicalOr:
		return inline(withScalar(leftInner, scalarBool)), nil
	case BinaryMultiply:
		rightInner, err := r.inner(expr.Right)
		if err != nil {
			return TypeResolution{}, err
		}
		return multiplyResult(left, leftInner, rightInner), nil
	default:
		return left, nil
	}
}

func multiplyResult(left TypeResolution, l, r TypeInner) TypeResolution {
	switch lt := l.(type) {
	case ScalarType:
		switch r.(type) {
		case VectorType, MatrixType:
			return inline(r)
		}
	case MatrixType:
		switch rt := r.(type) {
		case VectorType:
			return inline(VectorType{Size: lt.Rows, Scalar: lt.Scalar})
		case MatrixType:
			return inline(MatrixType{Columns: rt.Columns, Rows: lt.Rows, Scalar: lt.Scalar})
		}
	case VectorType:
		if rt, ok := r.(MatrixType); ok {
			return inline(VectorType{Size: rt.Columns, Scalar: lt.Scalar})
		}
	}
	return left
}

// withScalar keeps the shape of inner and swaps its scalar.
func withScalar(inner TypeInner, s ScalarType) TypeInner {
	switch t := inner.(type) {
	case VectorType:
		return VectorType{Size: t.Size, Scalar: s}
	case MatrixType:
		return MatrixType{Columns: t.Columns, Rows: t.Rows, Scalar: s}
	default:
		return s
	}
}

func scalarOf(inner TypeInner) (ScalarType, bool) {
	switch t := inner.(type) {
	case ScalarType:
		return t, true
	case VectorType:
		return t.Scalar, true
	case MatrixType:
		return t.Scalar, true
	case AtomicType:
		return t.Scalar, true
	default:
		return ScalarType{}, false
	}
}

func (r *resolver) resolveMath(expr ExprMath) (TypeResolution, error) {
	arg, err := r.resolve(expr.Arg)
	if err != nil {
		return TypeResolution{}, err
	}
	inner, err := r.module.inner(arg)
	if err != nil {
		return TypeResolution{}, err
	}

	switch expr.Fun {
	case MathDot, MathLength, MathDistance, MathDeterminant:
		s, ok := scalarOf(inner)
		if !ok {
			return TypeResolution{}, fmt.Errorf("math function %d on %T", expr.Fun, inner)
		}
		return inline(s), nil
	case MathOuter:
		if expr.Arg1 == nil {
			return TypeResolution{}, fmt.Errorf("outer product needs two arguments")
		}
		right, err := r.inner(*expr.Arg1)
		if err != nil {
			return TypeResolution{}, err
		}
		lv, lok := inner.(VectorType)
		rv, rok := right.(VectorType)
		if !lok || !rok {
			return TypeResolution{}, fmt.Errorf("outer product of %T and %T", inner, right)
		}
		return inline(MatrixType{Columns: rv.Size, Rows: lv.Size, Scalar: lv.Scalar}), nil
	case MathTranspose:
		mat, ok := inner.(MatrixType)
		if !ok {
			return TypeResolution{}, fmt.Errorf("transpose of %T", inner)
		}
		return inline(MatrixType{Columns: mat.Rows, Rows: mat.Columns, Scalar: mat.Scalar}), nil
	case MathPack4x8snorm, MathPack4x8unorm, MathPack2x16snorm, MathPack2x16unorm, MathPack2x16float:
		return inline(scalarU32), nil
	case MathUnpack4x8snorm, MathUnpack4x8unorm:
		return inline(VectorType{Size: Vec4, Scalar: scalarF32}), nil
	case MathUnpack2x16snorm, MathUnpack2x16unorm, MathUnpack2x16float:
		return inline(VectorType{Size: Vec2, Scalar: scalarF32}), nil
	default:
		return arg, nil
	}
}

func resolveAsType(inner TypeInner, expr ExprAs) (TypeResolution, error) {
	s, ok := scalarOf(inner)
	if !ok {
		return TypeResolution{}, fmt.Errorf("cast of non-numeric %T", inner)
	}
	target := ScalarType{Kind: expr.Kind, Width: s.Width}
	if expr.Convert != nil {
		target.Width = *expr.Convert
	}
	return inline(withScalar(inner, target)), nil
}

// ScalarKind returns the component kind of texels in the format.
func (f StorageFormat) ScalarKind() ScalarKind {
	switch f {
	case StorageFormatR8Uint, StorageFormatR16Uint, StorageFormatRg8Uint, StorageFormatR32Uint,
		StorageFormatRg16Uint, StorageFormatRgba8Uint, StorageFormatRgb10a2Uint, StorageFormatRg32Uint,
		StorageFormatRgba16Uint, StorageFormatRgba32Uint:
		return ScalarUint
	case StorageFormatR8Sint, StorageFormatR16Sint, StorageFormatRg8Sint, StorageFormatR32Sint,
		StorageFormatRg16Sint, StorageFormatRgba8Sint, StorageFormatRg32Sint, StorageFormatRgba16Sint,
		StorageFormatRgba32Sint:
		return ScalarSint
	default:
		return ScalarFloat
	}
}
