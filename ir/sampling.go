package ir

import (
	"fmt"
	"sort"
)

// SamplingFlags records how an image or sampler global is used.
type SamplingFlags uint8

const (
	// SamplingRegular marks plain filtered sampling.
	SamplingRegular SamplingFlags = 1 << 0
	// SamplingComparison marks depth-reference sampling.
	SamplingComparison SamplingFlags = 1 << 1
)

// InconsistentSamplingError is returned when one global is used both for
// regular and for comparison sampling.
type InconsistentSamplingError struct {
	Global GlobalVariableHandle
	Name   string
}

func (e *InconsistentSamplingError) Error() string {
	return fmt.Sprintf("global %d (%q) is used for both regular and comparison sampling", e.Global, e.Name)
}

// PatchComparisonSampling rewrites every global whose recorded usage
// includes comparison sampling: samplers become comparison samplers and
// sampled images become depth images. Binding arrays are rewritten through
// their element type.
func PatchComparisonSampling(module *Module, usage map[GlobalVariableHandle]SamplingFlags) error {
	handles := make([]GlobalVariableHandle, 0, len(usage))
	for h := range usage {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	reg := NewTypeRegistryFrom(module.Types)
	for _, h := range handles {
		flags := usage[h]
		if int(h) >= len(module.GlobalVariables) {
			return fmt.Errorf("global variable %d out of range", h)
		}
		gv := &module.GlobalVariables[h]
		if flags&SamplingComparison == 0 {
			continue
		}
		if flags&SamplingRegular != 0 {
			return &InconsistentSamplingError{Global: h, Name: gv.Name}
		}
		ty, err := comparisonVariant(reg, gv.Type)
		if err != nil {
			return fmt.Errorf("global %q: %w", gv.Name, err)
		}
		gv.Type = ty
	}
	module.Types = reg.GetTypes()
	return nil
}

func comparisonVariant(reg *TypeRegistry, h TypeHandle) (TypeHandle, error) {
	ty, ok := reg.Lookup(h)
	if !ok {
		return 0, fmt.Errorf("type handle %d out of range", h)
	}
	switch t := ty.Inner.(type) {
	case SamplerType:
		if t.Comparison {
			return h, nil
		}
		return reg.GetOrCreate(ty.Name, SamplerType{Comparison: true}), nil
	case ImageType:
		if t.Class == ImageClassDepth {
			return h, nil
		}
		if t.Class != ImageClassSampled {
			return 0, fmt.Errorf("storage image cannot be used for comparison sampling")
		}
		t.Class = ImageClassDepth
		t.SampledKind = ScalarFloat
		return reg.GetOrCreate(ty.Name, t), nil
	case BindingArrayType:
		base, err := comparisonVariant(reg, t.Base)
		if err != nil {
			return 0, err
		}
		if base == t.Base {
			return h, nil
		}
		t.Base = base
		return reg.GetOrCreate(ty.Name, t), nil
	default:
		return 0, fmt.Errorf("type %T is neither an image nor a sampler", ty.Inner)
	}
}
