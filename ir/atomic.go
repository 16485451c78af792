package ir

import (
	"fmt"
	"sort"
)

// AtomicUpgrades is the set of globals and struct fields that are the
// target of atomic operations and must be retyped to atomic variants.
type AtomicUpgrades struct {
	globals map[GlobalVariableHandle]struct{}
	fields  map[TypeHandle]map[uint32]struct{}
}

// NewAtomicUpgrades returns an empty upgrade set.
func NewAtomicUpgrades() *AtomicUpgrades {
	return &AtomicUpgrades{
		globals: make(map[GlobalVariableHandle]struct{}),
		fields:  make(map[TypeHandle]map[uint32]struct{}),
	}
}

// AddGlobal marks a global whose storage is accessed atomically.
func (u *AtomicUpgrades) AddGlobal(h GlobalVariableHandle) {
	u.globals[h] = struct{}{}
}

// AddField marks member index of the struct type st.
func (u *AtomicUpgrades) AddField(st TypeHandle, index uint32) {
	set, ok := u.fields[st]
	if !ok {
		set = make(map[uint32]struct{})
		u.fields[st] = set
	}
	set[index] = struct{}{}
}

// Empty reports whether nothing was marked.
func (u *AtomicUpgrades) Empty() bool {
	return len(u.globals) == 0 && len(u.fields) == 0
}

// Globals returns the marked globals in ascending handle order.
func (u *AtomicUpgrades) Globals() []GlobalVariableHandle {
	out := make([]GlobalVariableHandle, 0, len(u.globals))
	for h := range u.globals {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Fields returns the marked member indices of st in ascending order.
func (u *AtomicUpgrades) Fields(st TypeHandle) []uint32 {
	out := make([]uint32, 0, len(u.fields[st]))
	for idx := range u.fields[st] {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AtomicUpgradeError reports a type on an atomic access path that has no
// atomic counterpart.
type AtomicUpgradeError struct {
	Type  TypeHandle
	Inner TypeInner
}

func (e *AtomicUpgradeError) Error() string {
	return fmt.Sprintf("type %d (%T) cannot be upgraded to atomic", e.Type, e.Inner)
}

// UpgradeAtomics retypes every marked global so that the storage touched by
// atomic operations has atomic type. Marked struct types are rewritten in
// place, so every user of the struct sees the atomic members. Scalars get a
// new Atomic type handle; arrays are re-registered over their upgraded base.
func UpgradeAtomics(module *Module, upgrades *AtomicUpgrades) error {
	if upgrades.Empty() {
		return nil
	}
	u := atomicUpgrader{
		reg:     NewTypeRegistryFrom(module.Types),
		marks:   upgrades,
		visited: make(map[TypeHandle]TypeHandle),
	}
	for _, gh := range upgrades.Globals() {
		if int(gh) >= len(module.GlobalVariables) {
			return fmt.Errorf("global variable %d out of range", gh)
		}
		gv := &module.GlobalVariables[gh]
		ty, err := u.upgrade(gv.Type)
		if err != nil {
			return fmt.Errorf("global %q: %w", gv.Name, err)
		}
		gv.Type = ty
	}
	module.Types = u.reg.GetTypes()
	return nil
}

type atomicUpgrader struct {
	reg     *TypeRegistry
	marks   *AtomicUpgrades
	visited map[TypeHandle]TypeHandle
}

func (u *atomicUpgrader) upgrade(h TypeHandle) (TypeHandle, error) {
	if done, ok := u.visited[h]; ok {
		return done, nil
	}
	ty, ok := u.reg.Lookup(h)
	if !ok {
		return 0, fmt.Errorf("type handle %d out of range", h)
	}

	var out TypeHandle
	switch t := ty.Inner.(type) {
	case ScalarType:
		if t.Kind == ScalarBool {
			return 0, &AtomicUpgradeError{Type: h, Inner: t}
		}
		out = u.reg.GetOrCreate("", AtomicType{Scalar: t})
	case AtomicType:
		out = h
	case ArrayType:
		base, err := u.upgrade(t.Base)
		if err != nil {
			return 0, err
		}
		out = h
		if base != t.Base {
			t.Base = base
			out = u.reg.GetOrCreate(ty.Name, t)
		}
	case BindingArrayType:
		base, err := u.upgrade(t.Base)
		if err != nil {
			return 0, err
		}
		out = h
		if base != t.Base {
			t.Base = base
			out = u.reg.GetOrCreate(ty.Name, t)
		}
	case StructType:
		out = h
		fields := u.marks.Fields(h)
		if len(fields) == 0 {
			break
		}
		// Mark before descending so self-referencing paths terminate.
		u.visited[h] = h
		members := append([]StructMember(nil), t.Members...)
		for _, idx := range fields {
			if int(idx) >= len(members) {
				return 0, fmt.Errorf("struct %q has no member %d", ty.Name, idx)
			}
			mt, err := u.upgrade(members[idx].Type)
			if err != nil {
				return 0, err
			}
			members[idx].Type = mt
		}
		if err := u.reg.Replace(h, Type{Name: ty.Name, Inner: StructType{Members: members, Span: t.Span}}); err != nil {
			return 0, err
		}
	default:
		return 0, &AtomicUpgradeError{Type: h, Inner: ty.Inner}
	}
	u.visited[h] = out
	return out, nil
}
