package ir

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

// Dump writes a deterministic, human-readable listing of the module.
// Handles are printed as indices into their arenas.
func Dump(w io.Writer, module *Module) error {
	d := &dumper{w: w}
	d.line(0, "types:")
	for i, ty := range module.Types {
		d.line(1, "[%d] %q %s", i, ty.Name, formatValue(reflect.ValueOf(ty.Inner)))
	}
	if len(module.Constants) > 0 {
		d.line(0, "constants:")
		for i, c := range module.Constants {
			d.line(1, "[%d] %q type=%d init=%d", i, c.Name, c.Type, c.Init)
		}
	}
	if len(module.Overrides) > 0 {
		d.line(0, "overrides:")
		for i, o := range module.Overrides {
			d.line(1, "[%d] %q id=%s type=%d init=%s", i, o.Name,
				formatValue(reflect.ValueOf(o.ID)), o.Type, formatValue(reflect.ValueOf(o.Init)))
		}
	}
	if len(module.GlobalExpressions) > 0 {
		d.line(0, "global expressions:")
		for i, e := range module.GlobalExpressions {
			d.line(1, "[%d] %s", i, formatValue(reflect.ValueOf(e.Kind)))
		}
	}
	if len(module.GlobalVariables) > 0 {
		d.line(0, "globals:")
		for i, gv := range module.GlobalVariables {
			d.line(1, "[%d] %q space=%s access=%d type=%d binding=%s init=%s", i, gv.Name, gv.Space, gv.Access,
				gv.Type, formatValue(reflect.ValueOf(gv.Binding)), formatValue(reflect.ValueOf(gv.Init)))
		}
	}
	for i := range module.Functions {
		d.function(i, &module.Functions[i])
	}
	if len(module.EntryPoints) > 0 {
		d.line(0, "entry points:")
		for _, ep := range module.EntryPoints {
			d.line(1, "%q stage=%s function=%d workgroup=%v early_depth=%s", ep.Name, ep.Stage, ep.Function,
				ep.Workgroup, formatValue(reflect.ValueOf(ep.EarlyDepthTest)))
		}
	}
	return d.err
}

// DumpFunction writes the listing of a single function.
func DumpFunction(w io.Writer, index int, fn *Function) error {
	d := &dumper{w: w}
	d.function(index, fn)
	return d.err
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) line(depth int, format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (d *dumper) function(index int, fn *Function) {
	d.line(0, "function [%d] %q:", index, fn.Name)
	for i, arg := range fn.Arguments {
		d.line(1, "arg %d %q type=%d binding=%s", i, arg.Name, arg.Type, formatValue(reflect.ValueOf(arg.Binding)))
	}
	if fn.Result != nil {
		d.line(1, "result type=%d binding=%s", fn.Result.Type, formatValue(reflect.ValueOf(fn.Result.Binding)))
	}
	for i, lv := range fn.LocalVars {
		d.line(1, "local %d %q type=%d init=%s", i, lv.Name, lv.Type, formatValue(reflect.ValueOf(lv.Init)))
	}
	for i, e := range fn.Expressions {
		d.line(1, "expr %d = %s", i, formatValue(reflect.ValueOf(e.Kind)))
	}
	d.line(1, "body:")
	d.block(2, fn.Body)
}

func (d *dumper) block(depth int, b Block) {
	for _, st := range b {
		switch s := st.Kind.(type) {
		case StmtBlock:
			d.line(depth, "Block")
			d.block(depth+1, s.Block)
		case StmtIf:
			d.line(depth, "If %d", s.Condition)
			d.line(depth, "accept:")
			d.block(depth+1, s.Accept)
			d.line(depth, "reject:")
			d.block(depth+1, s.Reject)
		case StmtLoop:
			d.line(depth, "Loop break_if=%s", formatValue(reflect.ValueOf(s.BreakIf)))
			d.line(depth, "body:")
			d.block(depth+1, s.Body)
			d.line(depth, "continuing:")
			d.block(depth+1, s.Continuing)
		case StmtSwitch:
			d.line(depth, "Switch %d", s.Selector)
			for _, c := range s.Cases {
				d.line(depth+1, "case %s fall_through=%v", formatValue(reflect.ValueOf(c.Value)), c.FallThrough)
				d.block(depth+2, c.Body)
			}
		default:
			d.line(depth, "%s", formatValue(reflect.ValueOf(st.Kind)))
		}
	}
}

// formatValue renders v without pointer addresses so that dumps of
// equal modules are byte-identical.
func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return "nil"
		}
		return formatValue(v.Elem())
	case reflect.Struct:
		var sb strings.Builder
		sb.WriteString(v.Type().Name())
		if v.NumField() == 0 {
			return sb.String()
		}
		sb.WriteByte('{')
		for i := 0; i < v.NumField(); i++ {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(v.Type().Field(i).Name)
			sb.WriteByte(':')
			sb.WriteString(formatValue(v.Field(i)))
		}
		sb.WriteByte('}')
		return sb.String()
	case reflect.Slice, reflect.Array:
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatValue(v.Index(i))
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%v", v.Interface())
	}
}
