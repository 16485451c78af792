package spirv

import "github.com/gogpu/spvfront/ir"

// nodeKind tells ordinary functions from synthesized entry point wrappers,
// which have no SPIR-V id of their own.
type nodeKind uint8

const (
	nodeFunction nodeKind = iota
	nodeEntry
)

// callNode is a caller in the call graph. id is a function id for
// nodeFunction and an index into the wrapper list for nodeEntry.
type callNode struct {
	kind nodeKind
	id   uint32
}

// callGraph collects calls while functions are parsed. Callees may be
// defined after their callers, so every call site gets a placeholder
// handle that patchCalls rewrites once the final order is known.
type callGraph struct {
	edges map[callNode][]uint32
	// deferred maps a placeholder handle to the callee's function id.
	deferred []uint32
}

func newCallGraph() *callGraph {
	return &callGraph{edges: make(map[callNode][]uint32)}
}

// addCall records a call from caller to callee and returns the
// placeholder handle for the call site.
func (g *callGraph) addCall(caller callNode, callee uint32) ir.FunctionHandle {
	g.edges[caller] = append(g.edges[caller], callee)
	g.deferred = append(g.deferred, callee)
	return ir.FunctionHandle(len(g.deferred) - 1)
}

// sort orders the functions so that every callee precedes its callers.
// Functions unrelated by calls keep their definition order.
func (g *callGraph) sort(defined []uint32, known map[uint32]*lookupFunction) ([]uint32, error) {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[uint32]int, len(defined))
	order := make([]uint32, 0, len(defined))

	var visit func(id uint32) error
	visit = func(id uint32) error {
		switch state[id] {
		case visiting:
			return newError(ErrFunctionCallCycle, "function %%%d calls itself through its callees", id)
		case visited:
			return nil
		}
		state[id] = visiting
		for _, callee := range g.edges[callNode{kind: nodeFunction, id: id}] {
			if _, ok := known[callee]; !ok {
				return newError(ErrInvalidID, "function %%%d calls %%%d, which is not a function", id, callee)
			}
			if err := visit(callee); err != nil {
				return err
			}
		}
		state[id] = visited
		order = append(order, id)
		return nil
	}
	for _, id := range defined {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (b *blockBuilder) parseFunctionCall(inst Instruction, ops []uint32) error {
	if err := inst.ExpectAtLeast(4); err != nil {
		return err
	}
	typeID, id, calleeID := ops[0], ops[1], ops[2]
	args, err := b.values(ops[3:])
	if err != nil {
		return err
	}
	placeholder := b.calls.addCall(callNode{kind: nodeFunction, id: b.fnID}, calleeID)
	call := ir.StmtCall{Function: placeholder, Arguments: args}
	if typeID != b.voidTypeID {
		r := b.em.add(ir.ExprCallResult{Function: placeholder})
		call.Result = &r
		b.define(id, typeID, r)
	}
	b.em.push(call)
	return nil
}

// patchCalls moves the parsed functions into the module in call order,
// appends the entry point wrappers and rewrites every placeholder.
func (f *frontend) patchCalls() error {
	order, err := f.calls.sort(f.functionIDs, f.lookupFunction)
	if err != nil {
		return err
	}

	handles := make(map[uint32]ir.FunctionHandle, len(order))
	f.module.Functions = make([]ir.Function, 0, len(order)+len(f.wrappers))
	for _, id := range order {
		lf := f.lookupFunction[id]
		handles[id] = ir.FunctionHandle(len(f.module.Functions))
		fn := f.functions[lf.index]
		f.propagateSampling(&fn, lf.parameterSampling)
		f.module.Functions = append(f.module.Functions, fn)
	}
	for i := range f.wrappers {
		w := &f.wrappers[i]
		f.propagateSampling(&w.fn, nil)
		w.entry.Function = ir.FunctionHandle(len(f.module.Functions))
		f.module.Functions = append(f.module.Functions, w.fn)
		f.module.EntryPoints = append(f.module.EntryPoints, w.entry)
	}

	resolve := func(p ir.FunctionHandle) ir.FunctionHandle {
		return handles[f.calls.deferred[p]]
	}
	for i := range f.module.Functions {
		fn := &f.module.Functions[i]
		for j := range fn.Expressions {
			if cr, ok := fn.Expressions[j].Kind.(ir.ExprCallResult); ok {
				fn.Expressions[j].Kind = ir.ExprCallResult{Function: resolve(cr.Function)}
			}
		}
		patchBlock(fn.Body, resolve)
	}
	f.log.Debugf("patched %d call sites across %d functions", len(f.calls.deferred), len(f.module.Functions))
	return nil
}

// propagateSampling copies the sampling usage of callee parameters onto
// the arguments passed by fn. Callees are processed first, so usage flows
// through any depth of calls.
func (f *frontend) propagateSampling(fn *ir.Function, params []ir.SamplingFlags) {
	walkCalls(fn.Body, func(call ir.StmtCall) {
		callee, ok := f.lookupFunction[f.calls.deferred[call.Function]]
		if !ok {
			return
		}
		for i, arg := range call.Arguments {
			if i < len(callee.parameterSampling) && callee.parameterSampling[i] != 0 {
				markSampling(fn, arg, callee.parameterSampling[i], f.handleSampling, params)
			}
		}
	})
}

// walkCalls calls visit for every call statement in block, in order.
func walkCalls(block ir.Block, visit func(ir.StmtCall)) {
	for _, st := range block {
		switch s := st.Kind.(type) {
		case ir.StmtCall:
			visit(s)
		case ir.StmtBlock:
			walkCalls(s.Block, visit)
		case ir.StmtIf:
			walkCalls(s.Accept, visit)
			walkCalls(s.Reject, visit)
		case ir.StmtLoop:
			walkCalls(s.Body, visit)
			walkCalls(s.Continuing, visit)
		case ir.StmtSwitch:
			for _, c := range s.Cases {
				walkCalls(c.Body, visit)
			}
		}
	}
}

// patchBlock rewrites the callee of every call statement in place.
func patchBlock(block ir.Block, resolve func(ir.FunctionHandle) ir.FunctionHandle) {
	for i := range block {
		switch s := block[i].Kind.(type) {
		case ir.StmtCall:
			s.Function = resolve(s.Function)
			block[i].Kind = s
		case ir.StmtBlock:
			patchBlock(s.Block, resolve)
		case ir.StmtIf:
			patchBlock(s.Accept, resolve)
			patchBlock(s.Reject, resolve)
		case ir.StmtLoop:
			patchBlock(s.Body, resolve)
			patchBlock(s.Continuing, resolve)
		case ir.StmtSwitch:
			for _, c := range s.Cases {
				patchBlock(c.Body, resolve)
			}
		}
	}
}
