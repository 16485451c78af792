package spirv

import (
	"fmt"
	"io"
	"sort"

	"github.com/gogpu/spvfront/ir"
)

// mergeKind is what a branch into a merge or continue block means.
type mergeKind uint8

const (
	mergeLoop mergeKind = iota
	mergeLoopContinue
	mergeSelection
	mergeSwitch
)

func (k mergeKind) String() string {
	switch k {
	case mergeLoop:
		return "LoopMerge"
	case mergeLoopContinue:
		return "LoopContinue"
	case mergeSelection:
		return "SelectionMerge"
	default:
		return "SwitchMerge"
	}
}

// bodyFragment is one element of a body.
type bodyFragment interface {
	bodyFragment()
}

type (
	// fragBlock refers to the statements of a decoded block.
	fragBlock struct{ id uint32 }

	fragIf struct {
		condition ir.ExpressionHandle
		accept    int
		reject    int
	}

	fragLoop struct {
		body       int
		continuing int
		breakIf    *ir.ExpressionHandle
	}

	fragSwitch struct {
		selector    ir.ExpressionHandle
		cases       []switchEntry
		defaultBody int
	}

	fragBreak    struct{}
	fragContinue struct{}
)

func (fragBlock) bodyFragment()    {}
func (fragIf) bodyFragment()       {}
func (fragLoop) bodyFragment()     {}
func (fragSwitch) bodyFragment()   {}
func (fragBreak) bodyFragment()    {}
func (fragContinue) bodyFragment() {}

// switchEntry is one case literal and the body it jumps to.
type switchEntry struct {
	value int32
	body  int
}

// body is a node of the structured control flow tree. Body 0 is the
// function body and is its own parent.
type body struct {
	parent int
	data   []bodyFragment
}

// phiSource is a value flowing into a phi from one predecessor.
type phiSource struct {
	id      uint32
	blockID uint32
}

// phiRecord asks for every source to be stored to local at the end of
// its block.
type phiRecord struct {
	local   uint32
	sources []phiSource
}

// blockContext is the per-function state of the body builder.
type blockContext struct {
	phis         []phiRecord
	blocks       map[uint32]ir.Block
	blockOrder   []uint32
	bodyForLabel map[uint32]int
	mergers      map[uint32]mergeKind
	bodies       []body
	spills       map[uint32]uint32
}

func newBlockContext() *blockContext {
	return &blockContext{
		blocks:       make(map[uint32]ir.Block),
		bodyForLabel: make(map[uint32]int),
		mergers:      make(map[uint32]mergeKind),
		bodies:       []body{{parent: 0}},
		spills:       make(map[uint32]uint32),
	}
}

// newBody appends a child of parent and returns its index.
func (c *blockContext) newBody(parent int) int {
	c.bodies = append(c.bodies, body{parent: parent})
	return len(c.bodies) - 1
}

func (c *blockContext) pushFragment(bodyIdx int, frag bodyFragment) {
	c.bodies[bodyIdx].data = append(c.bodies[bodyIdx].data, frag)
}

// bodyOf returns the body a block belongs to. Unknown blocks, including
// the pseudo block 0 of function-wide values, belong to body 0.
func (c *blockContext) bodyOf(blockID uint32) int {
	return c.bodyForLabel[blockID]
}

// setBodyIfUnset records that label continues bodyIdx unless an earlier
// merge instruction already placed it.
func (c *blockContext) setBodyIfUnset(label uint32, bodyIdx int) {
	if _, ok := c.bodyForLabel[label]; !ok {
		c.bodyForLabel[label] = bodyIdx
	}
}

// isParent reports whether parent is child or one of its ancestors.
func (c *blockContext) isParent(child, parent int) bool {
	for {
		if child == parent {
			return true
		}
		if child == 0 {
			return false
		}
		child = c.bodies[child].parent
	}
}

// storeBlock records the statements of a finished block.
func (c *blockContext) storeBlock(id uint32, block ir.Block) {
	if _, ok := c.blocks[id]; !ok {
		c.blockOrder = append(c.blockOrder, id)
	}
	c.blocks[id] = block
}

// lower folds the body tree into the final statement tree. Each block is
// used once; a body visited again through a shared switch case is empty.
func (c *blockContext) lower() ir.Block {
	return c.lowerBody(0)
}

func (c *blockContext) lowerBody(idx int) ir.Block {
	var out ir.Block
	for _, frag := range c.bodies[idx].data {
		switch fr := frag.(type) {
		case fragBlock:
			out = append(out, c.blocks[fr.id]...)
			delete(c.blocks, fr.id)
		case fragIf:
			accept := c.lowerBody(fr.accept)
			reject := c.lowerBody(fr.reject)
			out = append(out, ir.Statement{Kind: ir.StmtIf{Condition: fr.condition, Accept: accept, Reject: reject}})
		case fragLoop:
			loopBody := c.lowerBody(fr.body)
			continuing := c.lowerBody(fr.continuing)
			out = append(out, ir.Statement{Kind: ir.StmtLoop{Body: loopBody, Continuing: continuing, BreakIf: fr.breakIf}})
		case fragSwitch:
			out = append(out, ir.Statement{Kind: c.lowerSwitch(fr)})
		case fragBreak:
			out = append(out, ir.Statement{Kind: ir.StmtBreak{}})
		case fragContinue:
			out = append(out, ir.Statement{Kind: ir.StmtContinue{}})
		}
	}
	return out
}

// lowerSwitch turns every entry that shares its body with the next entry
// into an empty fall-through case, so literals keep their order.
func (c *blockContext) lowerSwitch(fr fragSwitch) ir.StmtSwitch {
	cases := make([]ir.SwitchCase, 0, len(fr.cases)+1)
	for i, entry := range fr.cases {
		if i+1 < len(fr.cases) && fr.cases[i+1].body == entry.body {
			cases = append(cases, ir.SwitchCase{Value: ir.SwitchValueI32(entry.value), FallThrough: true})
			continue
		}
		b := c.lowerBody(entry.body)
		cases = append(cases, ir.SwitchCase{
			Value:       ir.SwitchValueI32(entry.value),
			Body:        b,
			FallThrough: !endsInTerminator(b),
		})
	}
	cases = append(cases, ir.SwitchCase{Value: ir.SwitchValueDefault{}, Body: c.lowerBody(fr.defaultBody)})
	return ir.StmtSwitch{Selector: fr.selector, Cases: cases}
}

func endsInTerminator(b ir.Block) bool {
	if len(b) == 0 {
		return false
	}
	switch b[len(b)-1].Kind.(type) {
	case ir.StmtBreak, ir.StmtContinue, ir.StmtReturn, ir.StmtKill:
		return true
	}
	return false
}

// dump writes the body tree, label map and merge map for debugging.
func (c *blockContext) dump(w io.Writer, fnID uint32) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}
	printf("function %%%d\n", fnID)
	printf("bodies:\n")
	for i, b := range c.bodies {
		printf("  %d (parent %d):", i, b.parent)
		for _, frag := range b.data {
			switch fr := frag.(type) {
			case fragBlock:
				printf(" block(%%%d)", fr.id)
			case fragIf:
				printf(" if(%d ? %d : %d)", fr.condition, fr.accept, fr.reject)
			case fragLoop:
				if fr.breakIf != nil {
					printf(" loop(%d, continuing %d, break_if %d)", fr.body, fr.continuing, *fr.breakIf)
				} else {
					printf(" loop(%d, continuing %d)", fr.body, fr.continuing)
				}
			case fragSwitch:
				printf(" switch(%d", fr.selector)
				for _, e := range fr.cases {
					printf(", %d => %d", e.value, e.body)
				}
				printf(", default => %d)", fr.defaultBody)
			case fragBreak:
				printf(" break")
			case fragContinue:
				printf(" continue")
			}
		}
		printf("\n")
	}

	labels := make([]uint32, 0, len(c.bodyForLabel))
	for id := range c.bodyForLabel {
		labels = append(labels, id)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	printf("labels:\n")
	for _, id := range labels {
		printf("  %%%d => body %d\n", id, c.bodyForLabel[id])
	}

	merges := make([]uint32, 0, len(c.mergers))
	for id := range c.mergers {
		merges = append(merges, id)
	}
	sort.Slice(merges, func(i, j int) bool { return merges[i] < merges[j] })
	printf("mergers:\n")
	for _, id := range merges {
		printf("  %%%d => %v\n", id, c.mergers[id])
	}

	printf("phis:\n")
	for _, phi := range c.phis {
		printf("  local %d <=", phi.local)
		for _, s := range phi.sources {
			printf(" (%%%d from %%%d)", s.id, s.blockID)
		}
		printf("\n")
	}
	return err
}
