package ir

import "fmt"

// TypeLayout is the size and alignment of a type in host-shareable memory.
type TypeLayout struct {
	Size      uint32
	Alignment uint32
}

// Stride returns the distance between consecutive array elements of this
// type: the size rounded up to the alignment.
func (l TypeLayout) Stride() uint32 {
	return AlignUp(l.Size, l.Alignment)
}

// AlignUp rounds offset up to a multiple of align. align must be a power of two.
func AlignUp(offset, align uint32) uint32 {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// Layouter computes layouts for a type arena incrementally. Call Update
// after new types are appended; layouts of existing handles never change
// unless Clear is called.
type Layouter struct {
	layouts []TypeLayout
}

// Clear forgets every computed layout.
func (l *Layouter) Clear() {
	l.layouts = l.layouts[:0]
}

// Layout returns the layout of handle. Update must have covered it.
func (l *Layouter) Layout(handle TypeHandle) TypeLayout {
	return l.layouts[handle]
}

// Len returns the number of types with a computed layout.
func (l *Layouter) Len() int {
	return len(l.layouts)
}

// Update computes layouts for every type in types that has none yet.
// Types may only reference earlier handles.
func (l *Layouter) Update(types []Type) error {
	for i := len(l.layouts); i < len(types); i++ {
		layout, err := l.compute(TypeHandle(i), types[i].Inner)
		if err != nil {
			return err
		}
		l.layouts = append(l.layouts, layout)
	}
	return nil
}

// vectorAlignment is the alignment multiplier for a vector of n components:
// vec3 aligns like vec4.
func vectorAlignment(n VectorSize) uint32 {
	if n == Vec2 {
		return 2
	}
	return 4
}

func (l *Layouter) base(self, base TypeHandle) (TypeLayout, error) {
	if base >= self || int(base) >= len(l.layouts) {
		return TypeLayout{}, fmt.Errorf("type %d references type %d which has no layout yet", self, base)
	}
	return l.layouts[base], nil
}

func (l *Layouter) compute(self TypeHandle, inner TypeInner) (TypeLayout, error) {
	switch t := inner.(type) {
	case ScalarType:
		w := uint32(t.Width)
		return TypeLayout{Size: w, Alignment: w}, nil
	case AtomicType:
		w := uint32(t.Scalar.Width)
		return TypeLayout{Size: w, Alignment: w}, nil
	case VectorType:
		w := uint32(t.Scalar.Width)
		return TypeLayout{Size: uint32(t.Size) * w, Alignment: vectorAlignment(t.Size) * w}, nil
	case MatrixType:
		align := vectorAlignment(t.Rows) * uint32(t.Scalar.Width)
		return TypeLayout{Size: align * uint32(t.Columns), Alignment: align}, nil
	case ArrayType:
		elem, err := l.base(self, t.Base)
		if err != nil {
			return TypeLayout{}, err
		}
		stride := t.Stride
		if stride == 0 {
			stride = elem.Stride()
		}
		count := uint32(1)
		if t.Size.Constant != nil {
			count = *t.Size.Constant
		}
		return TypeLayout{Size: stride * count, Alignment: elem.Alignment}, nil
	case BindingArrayType:
		elem, err := l.base(self, t.Base)
		if err != nil {
			return TypeLayout{}, err
		}
		count := uint32(1)
		if t.Size.Constant != nil {
			count = *t.Size.Constant
		}
		return TypeLayout{Size: elem.Stride() * count, Alignment: elem.Alignment}, nil
	case StructType:
		align := uint32(1)
		for _, m := range t.Members {
			ml, err := l.base(self, m.Type)
			if err != nil {
				return TypeLayout{}, err
			}
			if ml.Alignment > align {
				align = ml.Alignment
			}
		}
		return TypeLayout{Size: t.Span, Alignment: align}, nil
	default:
		// Pointers and opaque handles have no host-shareable representation.
		return TypeLayout{Size: 0, Alignment: 1}, nil
	}
}
