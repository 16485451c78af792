package ir

// Statement is a node of a function body. Statements carry side effects
// and structured control flow; values live in the expression arena.
type Statement struct {
	Kind StatementKind
}

// StatementKind is implemented by every statement variant.
type StatementKind interface {
	statementKind()
}

// Block is a sequence of statements executed in order.
type Block []Statement

// Range is a half-open range of expression handles.
type Range struct {
	Start ExpressionHandle
	End   ExpressionHandle // exclusive
}

// Len returns the number of handles in the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return int(r.End - r.Start)
}

// StmtEmit evaluates the expressions in Range at this point of the body.
type StmtEmit struct {
	Range Range
}

func (StmtEmit) statementKind() {}

// StmtBlock is a nested scope.
type StmtBlock struct {
	Block Block
}

func (StmtBlock) statementKind() {}

// StmtIf runs Accept when Condition holds and Reject otherwise. There are
// no phi nodes: values flowing out of either arm go through a local.
type StmtIf struct {
	Condition ExpressionHandle
	Accept    Block
	Reject    Block
}

func (StmtIf) statementKind() {}

// StmtSwitch dispatches on an integer Selector. Exactly one case is the
// default and it may appear anywhere in Cases.
type StmtSwitch struct {
	Selector ExpressionHandle
	Cases    []SwitchCase
}

func (StmtSwitch) statementKind() {}

// SwitchCase is one arm of a switch. With FallThrough set, control
// continues into the next case after Body.
type SwitchCase struct {
	Value       SwitchValue
	Body        Block
	FallThrough bool
}

// SwitchValue is the label of a switch case.
type SwitchValue interface {
	switchValue()
}

type SwitchValueI32 int32

func (SwitchValueI32) switchValue() {}

type SwitchValueU32 uint32

func (SwitchValueU32) switchValue() {}

type SwitchValueDefault struct{}

func (SwitchValueDefault) switchValue() {}

// StmtLoop repeats Body then Continuing. When BreakIf is set it is
// evaluated after Continuing and the loop exits once it holds.
type StmtLoop struct {
	Body       Block
	Continuing Block
	BreakIf    *ExpressionHandle
}

func (StmtLoop) statementKind() {}

// StmtBreak leaves the innermost loop or switch.
type StmtBreak struct{}

func (StmtBreak) statementKind() {}

// StmtContinue jumps to the continuing block of the innermost loop.
type StmtContinue struct{}

func (StmtContinue) statementKind() {}

// StmtReturn leaves the function.
type StmtReturn struct {
	Value *ExpressionHandle
}

func (StmtReturn) statementKind() {}

// StmtKill discards the current fragment.
type StmtKill struct{}

func (StmtKill) statementKind() {}

// StmtBarrier is a control barrier. With no flags set it only
// synchronizes execution.
type StmtBarrier struct {
	Flags BarrierFlags
}

func (StmtBarrier) statementKind() {}

// BarrierFlags selects which memory a barrier orders.
type BarrierFlags uint32

const (
	BarrierStorage   BarrierFlags = 1 << 0
	BarrierWorkGroup BarrierFlags = 1 << 1
	BarrierSubGroup  BarrierFlags = 1 << 2
	BarrierTexture   BarrierFlags = 1 << 3
)

// StmtStore writes Value through Pointer.
type StmtStore struct {
	Pointer ExpressionHandle
	Value   ExpressionHandle
}

func (StmtStore) statementKind() {}

// StmtImageStore writes one texel of a storage image.
type StmtImageStore struct {
	Image      ExpressionHandle
	Coordinate ExpressionHandle
	ArrayIndex *ExpressionHandle
	Value      ExpressionHandle
}

func (StmtImageStore) statementKind() {}

// StmtAtomic performs a read-modify-write on the atomic behind Pointer.
// Result, when set, is an ExprAtomicResult receiving the old value.
type StmtAtomic struct {
	Pointer ExpressionHandle
	Fun     AtomicFunction
	Value   ExpressionHandle
	Result  *ExpressionHandle
}

func (StmtAtomic) statementKind() {}

// AtomicFunction is the operation of a StmtAtomic.
type AtomicFunction interface {
	atomicFunction()
}

type AtomicAdd struct{}

func (AtomicAdd) atomicFunction() {}

type AtomicSubtract struct{}

func (AtomicSubtract) atomicFunction() {}

type AtomicAnd struct{}

func (AtomicAnd) atomicFunction() {}

type AtomicExclusiveOr struct{}

func (AtomicExclusiveOr) atomicFunction() {}

type AtomicInclusiveOr struct{}

func (AtomicInclusiveOr) atomicFunction() {}

type AtomicMin struct{}

func (AtomicMin) atomicFunction() {}

type AtomicMax struct{}

func (AtomicMax) atomicFunction() {}

// AtomicExchange swaps in Value. With Compare set the swap only happens
// when the current value equals *Compare.
type AtomicExchange struct {
	Compare *ExpressionHandle
}

func (AtomicExchange) atomicFunction() {}

// StmtCall calls Function. Result, when set, is an ExprCallResult.
type StmtCall struct {
	Function  FunctionHandle
	Arguments []ExpressionHandle
	Result    *ExpressionHandle
}

func (StmtCall) statementKind() {}
