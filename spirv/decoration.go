package spirv

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/gogpu/spvfront/ir"
)

// decoration accumulates the annotations of one id or struct member.
// Fields are pointers where "absent" differs from the zero value.
type decoration struct {
	name          string
	builtIn       *BuiltIn
	location      *uint32
	descSet       *uint32
	binding       *uint32
	specID        *uint32
	offset        *uint32
	arrayStride   *uint32
	matrixStride  *uint32
	block         bool
	bufferBlock   bool
	rowMajor      bool
	invariant     bool
	interpolation *ir.InterpolationKind
	sampling      *ir.InterpolationSampling
	nonReadable   bool
	nonWritable   bool
}

// memberKey names a struct member by the struct's id and member index.
type memberKey struct {
	id    uint32
	index uint32
}

// apply merges one OpDecorate/OpMemberDecorate into d. operands are the
// literal words that follow the decoration. Decorations with no effect on
// the IR are logged and dropped.
func (d *decoration) apply(log commonlog.Logger, dec Decoration, operands []uint32) error {
	need := func(n int) error {
		if len(operands) < n {
			return newError(ErrInvalidOperandCount, "decoration %v needs %d operands, has %d", dec, n, len(operands))
		}
		return nil
	}
	word := func() (*uint32, error) {
		if err := need(1); err != nil {
			return nil, err
		}
		v := operands[0]
		return &v, nil
	}

	var err error
	switch dec {
	case DecorationBuiltIn:
		if err = need(1); err == nil {
			b := BuiltIn(operands[0])
			d.builtIn = &b
		}
	case DecorationLocation:
		d.location, err = word()
	case DecorationDescriptorSet:
		d.descSet, err = word()
	case DecorationBinding:
		d.binding, err = word()
	case DecorationSpecID:
		d.specID, err = word()
	case DecorationOffset:
		d.offset, err = word()
	case DecorationArrayStride:
		d.arrayStride, err = word()
	case DecorationMatrixStride:
		d.matrixStride, err = word()
	case DecorationBlock:
		d.block = true
	case DecorationBufferBlock:
		d.bufferBlock = true
	case DecorationRowMajor:
		d.rowMajor = true
	case DecorationColMajor:
		d.rowMajor = false
	case DecorationInvariant:
		d.invariant = true
	case DecorationNoPerspective:
		k := ir.InterpolationLinear
		d.interpolation = &k
	case DecorationFlat:
		k := ir.InterpolationFlat
		d.interpolation = &k
	case DecorationCentroid:
		s := ir.SamplingCentroid
		d.sampling = &s
	case DecorationSample:
		s := ir.SamplingSample
		d.sampling = &s
	case DecorationNonReadable:
		d.nonReadable = true
	case DecorationNonWritable:
		d.nonWritable = true
	default:
		log.Debugf("ignoring decoration %v", dec)
	}
	return err
}

// storageAccess derives the access flags left after NonReadable and
// NonWritable.
func (d *decoration) storageAccess() ir.StorageAccess {
	access := ir.StorageAccessReadWrite
	if d.nonReadable {
		access &^= ir.StorageAccessLoad
	}
	if d.nonWritable {
		access &^= ir.StorageAccessStore
	}
	return access
}

// resourceBinding returns the descriptor set/binding pair, if both are set.
func (d *decoration) resourceBinding() *ir.ResourceBinding {
	if d.descSet == nil || d.binding == nil {
		return nil
	}
	return &ir.ResourceBinding{Group: *d.descSet, Binding: *d.binding}
}

// ioBinding turns the built-in or location decoration into an IR binding.
func (d *decoration) ioBinding() (ir.Binding, error) {
	switch {
	case d.builtIn != nil && d.location == nil:
		b, err := mapBuiltIn(*d.builtIn, d.invariant)
		if err != nil {
			return nil, err
		}
		return b, nil
	case d.location != nil && d.builtIn == nil:
		lb := ir.LocationBinding{Location: *d.location}
		if d.interpolation != nil || d.sampling != nil {
			interp := ir.Interpolation{Kind: ir.InterpolationPerspective, Sampling: ir.SamplingCenter}
			if d.interpolation != nil {
				interp.Kind = *d.interpolation
			}
			if d.sampling != nil {
				interp.Sampling = *d.sampling
			}
			lb.Interpolation = &interp
		}
		return lb, nil
	default:
		return nil, newError(ErrInvalidDecoration, "io binding needs exactly one of BuiltIn and Location, have %s", d)
	}
}

// optionalBinding is ioBinding for members and results where no
// decoration at all is legal.
func (d *decoration) optionalBinding() (*ir.Binding, error) {
	if d.builtIn == nil && d.location == nil {
		return nil, nil
	}
	b, err := d.ioBinding()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// String lists the recorded fields, for diagnostics.
func (d *decoration) String() string {
	var parts []string
	if d.name != "" {
		parts = append(parts, fmt.Sprintf("name=%q", d.name))
	}
	opt := func(label string, v *uint32) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s=%d", label, *v))
		}
	}
	if d.builtIn != nil {
		parts = append(parts, "builtin="+d.builtIn.String())
	}
	opt("location", d.location)
	opt("set", d.descSet)
	opt("binding", d.binding)
	opt("spec_id", d.specID)
	opt("offset", d.offset)
	opt("array_stride", d.arrayStride)
	opt("matrix_stride", d.matrixStride)
	flag := func(label string, on bool) {
		if on {
			parts = append(parts, label)
		}
	}
	flag("block", d.block)
	flag("buffer_block", d.bufferBlock)
	flag("row_major", d.rowMajor)
	flag("invariant", d.invariant)
	flag("non_readable", d.nonReadable)
	flag("non_writable", d.nonWritable)
	if d.interpolation != nil {
		parts = append(parts, fmt.Sprintf("interpolation=%d", *d.interpolation))
	}
	if d.sampling != nil {
		parts = append(parts, fmt.Sprintf("sampling=%d", *d.sampling))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// decorations is the accumulator for annotations whose target may not be
// defined yet. Definitions consume their entry.
type decorations struct {
	items   map[uint32]*decoration
	members map[memberKey]*decoration
}

func newDecorations() decorations {
	return decorations{
		items:   make(map[uint32]*decoration),
		members: make(map[memberKey]*decoration),
	}
}

func (ds *decorations) item(id uint32) *decoration {
	d, ok := ds.items[id]
	if !ok {
		d = &decoration{}
		ds.items[id] = d
	}
	return d
}

func (ds *decorations) member(id, index uint32) *decoration {
	key := memberKey{id: id, index: index}
	d, ok := ds.members[key]
	if !ok {
		d = &decoration{}
		ds.members[key] = d
	}
	return d
}

// take removes and returns the decoration of id, or an empty one.
func (ds *decorations) take(id uint32) decoration {
	d, ok := ds.items[id]
	if !ok {
		return decoration{}
	}
	delete(ds.items, id)
	return *d
}

// takeMember removes and returns a member decoration, or an empty one.
func (ds *decorations) takeMember(id, index uint32) decoration {
	key := memberKey{id: id, index: index}
	d, ok := ds.members[key]
	if !ok {
		return decoration{}
	}
	delete(ds.members, key)
	return *d
}

// leftovers renders every unconsumed decoration in id order.
func (ds *decorations) leftovers() []string {
	var out []string
	ids := make([]uint32, 0, len(ds.items))
	for id := range ds.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		out = append(out, fmt.Sprintf("unused decoration on %%%d: %s", id, ds.items[id]))
	}

	keys := make([]memberKey, 0, len(ds.members))
	for k := range ds.members {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].id != keys[j].id {
			return keys[i].id < keys[j].id
		}
		return keys[i].index < keys[j].index
	})
	for _, k := range keys {
		out = append(out, fmt.Sprintf("unused decoration on member %d of %%%d: %s", k.index, k.id, ds.members[k]))
	}
	return out
}

// mapBuiltIn translates a SPIR-V built-in to the IR's value.
func mapBuiltIn(b BuiltIn, invariant bool) (ir.BuiltinBinding, error) {
	var v ir.BuiltinValue
	switch b {
	case BuiltInPosition, BuiltInFragCoord:
		v = ir.BuiltinPosition
	case BuiltInVertexID, BuiltInVertexIndex:
		v = ir.BuiltinVertexIndex
	case BuiltInInstanceID, BuiltInInstanceIndex:
		v = ir.BuiltinInstanceIndex
	case BuiltInPointSize:
		v = ir.BuiltinPointSize
	case BuiltInClipDistance:
		v = ir.BuiltinClipDistance
	case BuiltInCullDistance:
		v = ir.BuiltinCullDistance
	case BuiltInPrimitiveID:
		v = ir.BuiltinPrimitiveIndex
	case BuiltInPointCoord:
		v = ir.BuiltinPointCoord
	case BuiltInFrontFacing:
		v = ir.BuiltinFrontFacing
	case BuiltInSampleID:
		v = ir.BuiltinSampleIndex
	case BuiltInSampleMask:
		v = ir.BuiltinSampleMask
	case BuiltInFragDepth:
		v = ir.BuiltinFragDepth
	case BuiltInBaseVertex:
		v = ir.BuiltinBaseVertex
	case BuiltInBaseInstance:
		v = ir.BuiltinBaseInstance
	case BuiltInViewIndex:
		v = ir.BuiltinViewIndex
	case BuiltInGlobalInvocationID:
		v = ir.BuiltinGlobalInvocationID
	case BuiltInLocalInvocationID:
		v = ir.BuiltinLocalInvocationID
	case BuiltInLocalInvocationIndex:
		v = ir.BuiltinLocalInvocationIndex
	case BuiltInWorkgroupID:
		v = ir.BuiltinWorkGroupID
	case BuiltInWorkgroupSize:
		v = ir.BuiltinWorkGroupSize
	case BuiltInNumWorkgroups:
		v = ir.BuiltinNumWorkGroups
	case BuiltInSubgroupSize:
		v = ir.BuiltinSubgroupSize
	case BuiltInNumSubgroups:
		v = ir.BuiltinNumSubgroups
	case BuiltInSubgroupID:
		v = ir.BuiltinSubgroupID
	case BuiltInSubgroupLocalInvocationID:
		v = ir.BuiltinSubgroupInvocationID
	default:
		return ir.BuiltinBinding{}, newError(ErrUnsupportedBuiltIn, "built-in %v", b)
	}
	return ir.BuiltinBinding{Builtin: v, Invariant: invariant && v == ir.BuiltinPosition}, nil
}
