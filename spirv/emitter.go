package spirv

import "github.com/gogpu/spvfront/ir"

// emitter appends expressions to a function and covers every run of
// expressions that must be evaluated in place with a StmtEmit.
type emitter struct {
	fn    *ir.Function
	block ir.Block
	start int
}

func newEmitter(fn *ir.Function, block ir.Block) *emitter {
	return &emitter{fn: fn, block: block, start: len(fn.Expressions)}
}

// preEmitted reports whether kind is valid without a StmtEmit.
func preEmitted(kind ir.ExpressionKind) bool {
	switch kind.(type) {
	case ir.Literal, ir.ExprConstant, ir.ExprOverride, ir.ExprZeroValue,
		ir.ExprFunctionArgument, ir.ExprGlobalVariable, ir.ExprLocalVariable,
		ir.ExprCallResult, ir.ExprAtomicResult:
		return true
	}
	return false
}

// add appends an expression. Pre-emitted kinds close the current emit
// range so they stay outside of it.
func (e *emitter) add(kind ir.ExpressionKind) ir.ExpressionHandle {
	if preEmitted(kind) {
		e.flush()
		h := appendExpression(e.fn, kind)
		e.start = len(e.fn.Expressions)
		return h
	}
	return appendExpression(e.fn, kind)
}

// flush emits the pending range, if any.
func (e *emitter) flush() {
	end := len(e.fn.Expressions)
	if end > e.start {
		e.block = append(e.block, ir.Statement{Kind: ir.StmtEmit{Range: ir.Range{
			Start: ir.ExpressionHandle(e.start),
			End:   ir.ExpressionHandle(end),
		}}})
	}
	e.start = end
}

// push flushes and appends a statement.
func (e *emitter) push(kind ir.StatementKind) {
	e.flush()
	e.block = append(e.block, ir.Statement{Kind: kind})
}

func appendExpression(fn *ir.Function, kind ir.ExpressionKind) ir.ExpressionHandle {
	h := ir.ExpressionHandle(len(fn.Expressions))
	fn.Expressions = append(fn.Expressions, ir.Expression{Kind: kind})
	return h
}

func appendLocal(fn *ir.Function, local ir.LocalVariable) uint32 {
	idx := uint32(len(fn.LocalVars))
	fn.LocalVars = append(fn.LocalVars, local)
	return idx
}
