package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeRegistry deduplicates types as they are added to a module.
// Structurally identical types with the same name share one handle,
// so distinct SPIR-V ids may resolve to the same TypeHandle.
type TypeRegistry struct {
	types   []Type
	typeMap map[string]TypeHandle
	keyBuf  []byte // reusable buffer for building scalar keys
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types:   make([]Type, 0, 16),
		typeMap: make(map[string]TypeHandle, 16),
		keyBuf:  make([]byte, 0, 64),
	}
}

// NewTypeRegistryFrom seeds a registry with an existing type arena, keeping
// every handle stable. Later GetOrCreate calls reuse matching entries.
func NewTypeRegistryFrom(types []Type) *TypeRegistry {
	r := NewTypeRegistry()
	for i, ty := range types {
		r.types = append(r.types, ty)
		key := r.key(ty.Name, ty.Inner)
		if _, exists := r.typeMap[key]; !exists {
			r.typeMap[key] = TypeHandle(i)
		}
	}
	return r
}

// GetOrCreate returns the handle of an identical type, registering it
// first when it is new.
func (r *TypeRegistry) GetOrCreate(name string, inner TypeInner) TypeHandle {
	key := r.key(name, inner)
	if handle, exists := r.typeMap[key]; exists {
		return handle
	}

	handle := TypeHandle(len(r.types))
	r.types = append(r.types, Type{Name: name, Inner: inner})
	r.typeMap[key] = handle
	return handle
}

// Replace overwrites the type stored at handle. Other handles are unchanged.
func (r *TypeRegistry) Replace(handle TypeHandle, ty Type) error {
	if int(handle) >= len(r.types) {
		return fmt.Errorf("type handle %d out of range", handle)
	}
	old := r.types[handle]
	if r.typeMap[r.key(old.Name, old.Inner)] == handle {
		delete(r.typeMap, r.key(old.Name, old.Inner))
	}
	r.types[handle] = ty
	r.typeMap[r.key(ty.Name, ty.Inner)] = handle
	return nil
}

// GetTypes returns all registered types in handle order.
func (r *TypeRegistry) GetTypes() []Type {
	return r.types
}

// Lookup finds a type by its handle.
func (r *TypeRegistry) Lookup(handle TypeHandle) (Type, bool) {
	if int(handle) >= len(r.types) {
		return Type{}, false
	}
	return r.types[handle], true
}

// Count returns the number of unique types registered.
func (r *TypeRegistry) Count() int {
	return len(r.types)
}

func (r *TypeRegistry) key(name string, inner TypeInner) string {
	if name == "" {
		return r.normalizeType(inner)
	}
	return strconv.Quote(name) + "=" + r.normalizeType(inner)
}

// normalizeType creates a key for a type based on its structure.
func (r *TypeRegistry) normalizeType(inner TypeInner) string {
	switch t := inner.(type) {
	case ScalarType:
		b := r.keyBuf[:0]
		b = append(b, "scalar:"...)
		b = strconv.AppendInt(b, int64(t.Kind), 10)
		b = append(b, ':')
		b = strconv.AppendUint(b, uint64(t.Width), 10)
		r.keyBuf = b
		return string(b)

	case VectorType:
		return "vec:" + strconv.FormatUint(uint64(t.Size), 10) + ":" + r.normalizeType(t.Scalar)

	case MatrixType:
		return "mat:" + strconv.FormatUint(uint64(t.Columns), 10) + "x" +
			strconv.FormatUint(uint64(t.Rows), 10) + ":" + r.normalizeType(t.Scalar)

	case AtomicType:
		return "atomic:" + r.normalizeType(t.Scalar)

	case ArrayType:
		return "array:" + strconv.FormatUint(uint64(t.Base), 10) + ":" + sizeKey(t.Size) +
			":" + strconv.FormatUint(uint64(t.Stride), 10)

	case BindingArrayType:
		return "binding_array:" + strconv.FormatUint(uint64(t.Base), 10) + ":" + sizeKey(t.Size)

	case StructType:
		var sb strings.Builder
		fmt.Fprintf(&sb, "struct:%d:%d", len(t.Members), t.Span)
		for _, member := range t.Members {
			fmt.Fprintf(&sb, ":m(%q,%d,%d,%s)", member.Name, member.Type, member.Offset, bindingKey(member.Binding))
		}
		return sb.String()

	case PointerType:
		return "ptr:" + strconv.FormatUint(uint64(t.Base), 10) + ":" + strconv.FormatUint(uint64(t.Space), 10)

	case SamplerType:
		return "sampler:" + strconv.FormatBool(t.Comparison)

	case ImageType:
		return fmt.Sprintf("image:%d:%v:%d:%v:%d:%d:%d",
			t.Dim, t.Arrayed, t.Class, t.Multisampled, t.SampledKind, t.StorageFormat, t.StorageAccess)

	default:
		return fmt.Sprintf("unknown:%T", inner)
	}
}

func sizeKey(size ArraySize) string {
	if size.Constant == nil {
		return "runtime"
	}
	return strconv.FormatUint(uint64(*size.Constant), 10)
}

func bindingKey(b *Binding) string {
	if b == nil || *b == nil {
		return "-"
	}
	switch v := (*b).(type) {
	case BuiltinBinding:
		return fmt.Sprintf("builtin%d/%v", v.Builtin, v.Invariant)
	case LocationBinding:
		if v.Interpolation == nil {
			return fmt.Sprintf("loc%d", v.Location)
		}
		return fmt.Sprintf("loc%d/%d/%d", v.Location, v.Interpolation.Kind, v.Interpolation.Sampling)
	default:
		return fmt.Sprintf("%T", v)
	}
}
