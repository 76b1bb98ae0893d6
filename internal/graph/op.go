package graph

import (
	"github.com/vic/gofan/internal/color"
	"github.com/vic/gofan/internal/heap"
	"github.com/vic/gofan/internal/link"
)

// Op is the per-worker handle used to mutate a Runtime: it pairs the shared
// Runtime with this worker's own heap partition and color generator
// (spec.md §4.6 — each worker owns these, never shares them), plus a local
// rewrite-cost counter. Op satisfies ruletable.Builder structurally.
type Op struct {
	Rt    *Runtime
	Heap  *heap.Heap
	Color *color.Generator
	Cost  uint64
}

// NewOp binds a Runtime to one worker's heap and color generator.
func NewOp(rt *Runtime, h *heap.Heap, c *color.Generator) *Op {
	return &Op{Rt: rt, Heap: h, Color: c}
}

// Alloc reserves size fresh words from this worker's partition. Exhaustion
// is fatal (spec.md §7) and surfaces as a panic recovered at the worker
// boundary (internal/worker) rather than an error return threaded through
// every rule body.
func (o *Op) Alloc(size uint32) uint32 {
	loc, err := o.Heap.Alloc(size)
	if err != nil {
		panic(err)
	}
	return loc
}

// Clear recycles a size-word block back onto this worker's free-list.
func (o *Op) Clear(loc, size uint32) { o.Heap.Clear(loc, size) }

// FreshColor mints a color owned exclusively by this worker.
func (o *Op) FreshColor() uint32 { return o.Color.Fresh() }

// IncCost bumps the rewrite counter; spec.md §8 invariant 4 requires
// ffi_cost to equal the sum of these events across workers.
func (o *Op) IncCost() { o.Cost++ }

// AskLnk/AskArg proxy to the shared Runtime for convenience in rule bodies.
func (o *Op) AskLnk(l uint32) link.Lnk                { return o.Rt.AskLnk(l) }
func (o *Op) AskArg(term link.Lnk, i uint32) link.Lnk { return o.Rt.AskArg(term, i) }

// Link writes lnk at loc (spec.md §4.3). If lnk is a variable-class link
// (DP0, DP1, VAR) it also writes Arg(loc) into the corresponding binder
// slot, maintaining the back-pointer invariant of spec.md §3.4: slot 0 of
// the binder for DP0/VAR, slot 1 for DP1 (a duplication node's own two
// projection slots, or a LAM's single binder slot at index 0).
func (o *Op) Link(loc uint32, l link.Lnk) {
	o.Rt.Mem[loc] = l
	switch l.Tag() {
	case link.VAR, link.DP0:
		o.Rt.Mem[l.Val()+0] = link.Arg(loc)
	case link.DP1:
		o.Rt.Mem[l.Val()+1] = link.Arg(loc)
	}
}

// Subst performs the substitution protocol of spec.md §4.3: if the
// binder's current slot value is Arg(L), splice value into L; if it is
// ERA, the variable was never used and value is erased instead.
func (o *Op) Subst(binderSlotValue link.Lnk, value link.Lnk) {
	if binderSlotValue.Tag() == link.ARG {
		o.Link(binderSlotValue.Val(), value)
		return
	}
	// ERA: the bound variable has no occurrences.
	o.Collect(value)
}

// Collect recursively deallocates an unreachable subterm (spec.md §4.3).
// Occurrence-class links (VAR, DP0, DP1) cascade into the binder they
// reference, turning its slot into ERA so a still-live sibling projection
// or a distant binder learns this occurrence died; compound nodes recurse
// into their children before clearing their own block; NUM and ERA are
// no-ops (they own no heap words beyond the link value itself).
func (o *Op) Collect(t link.Lnk) {
	switch t.Tag() {
	case link.NUM, link.ERA:
		return
	case link.VAR:
		o.Link(link.Loc(t, 0), link.Era())
	case link.DP0:
		o.Link(link.Loc(t, 0), link.Era())
		if o.AskLnk(link.Loc(t, 1)).Tag() == link.ERA {
			o.Collect(o.AskArg(t, 2))
			o.Clear(t.Val(), 3)
		}
	case link.DP1:
		o.Link(link.Loc(t, 1), link.Era())
		if o.AskLnk(link.Loc(t, 0)).Tag() == link.ERA {
			o.Collect(o.AskArg(t, 2))
			o.Clear(t.Val(), 3)
		}
	case link.LAM:
		o.Collect(o.AskArg(t, 1))
		o.Clear(t.Val(), 2)
	case link.APP, link.SUP, link.OP2:
		o.Collect(o.AskArg(t, 0))
		o.Collect(o.AskArg(t, 1))
		o.Clear(t.Val(), 2)
	case link.CTR:
		arity := uint32(o.Rt.Table.AskAriCtr(t.Ext()))
		for i := uint32(0); i < arity; i++ {
			o.Collect(o.AskArg(t, i))
		}
		if arity > 0 {
			o.Clear(t.Val(), arity)
		}
	case link.FUN:
		arity := uint32(o.Rt.Table.AskAriFun(t.Ext()))
		for i := uint32(0); i < arity; i++ {
			o.Collect(o.AskArg(t, i))
		}
		if arity > 0 {
			o.Clear(t.Val(), arity)
		}
	}
}
