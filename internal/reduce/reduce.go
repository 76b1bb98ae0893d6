// Package reduce implements the weak-head-normal-form reducer of spec.md
// §4.4: a stack-driven interaction engine with an explicit (host, phase)
// stack in place of native call-stack recursion (spec.md §9 design note —
// this shape is load-bearing, not a style choice, so it is kept exactly).
package reduce

import (
	"github.com/vic/gofan/internal/graph"
	"github.com/vic/gofan/internal/link"
	"github.com/vic/gofan/internal/ruletable"
)

// frame is one entry of the reducer's explicit stack. init marks descent
// (true) vs ascent (false) — spec.md §9 open question (a): the phase bit is
// conceptually packed into the host address in the reference design; this
// port keeps host and phase as separate struct fields instead of stealing a
// bit from a 32-bit address, since Go gives us a real struct and nothing in
// spec.md requires the packed representation itself, only the fact that a
// valid host address space leaves a bit free for it.
type frame struct {
	host uint32
	init bool
}

// Reduce drives the term at host to weak head normal form and returns its
// final link. slen is the worker budget available to the caller of normal —
// used only to decide whether OP2 may be forced in-line or should be left
// for normal to parallelize (spec.md §4.4).
func Reduce(op *graph.Op, host uint32, slen int) link.Lnk {
	stack := []frame{{host: host, init: true}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		term := op.AskLnk(top.host)

		if top.init {
			switch term.Tag() {
			case link.APP:
				top.init = false
				stack = append(stack, frame{host: link.Loc(term, 0), init: true})
				continue

			case link.DP0, link.DP1:
				if !op.Rt.TryLockDup(term.Val()) {
					// Retry from the top of the loop (spec.md §5).
					continue
				}
				top.init = false
				stack = append(stack, frame{host: link.Loc(term, 2), init: true})
				continue

			case link.OP2:
				if slen == 1 || len(stack) > 1 {
					top.init = false
					stack = append(stack, frame{host: link.Loc(term, 1), init: true})
					continue
				}
				// No headroom and nothing else pending: stop here and let
				// normal() fork across this OP2's two operands instead.
				return op.AskLnk(host)

			case link.FUN:
				def, ok := op.Rt.Table.Lookup(term.Ext())
				if !ok {
					stack = stack[:len(stack)-1]
					continue
				}
				if pos, ready := nextStrictToForce(op, term, def); !ready {
					top.init = false
					stack = append(stack, frame{host: link.Loc(term, uint32(pos)), init: true})
					continue
				}
				top.init = false
				continue

			default:
				// Already a value head; nothing to descend into.
				stack = stack[:len(stack)-1]
				continue
			}
		}

		// Ascent: the relevant child of term (if any) is now in WHNF; try
		// the interaction rule whose shape term's tag names.
		rewrote := ascend(op, top.host, term, slen)
		if rewrote {
			top.init = true
			continue
		}
		stack = stack[:len(stack)-1]
	}

	return op.AskLnk(host)
}

// ascend dispatches to the single interaction rule (if any) that applies
// given term's tag and the now-forced state of its relevant child/children.
func ascend(op *graph.Op, host uint32, term link.Lnk, slen int) bool {
	switch term.Tag() {
	case link.APP:
		return ascendApp(op, host, term)
	case link.DP0, link.DP1:
		defer op.Rt.UnlockDup(term.Val())
		return ascendDup(op, host, term)
	case link.OP2:
		return ascendOp2(op, host, term)
	case link.FUN:
		return ascendFun(op, host, term)
	default:
		return false
	}
}

// nextStrictToForce reports the first strict-position argument of term that
// is not yet in WHNF, or ready=true if every strict position already is
// (spec.md §4.4: FUN's "fast match... descends into one of those arguments
// to force WHNF there first").
func nextStrictToForce(op *graph.Op, term link.Lnk, def ruletable.FuncDef) (int, bool) {
	for _, pos := range def.Strict {
		v := op.AskArg(term, uint32(pos))
		if !isForced(v) {
			return pos, false
		}
	}
	return 0, true
}

func isForced(t link.Lnk) bool {
	switch t.Tag() {
	case link.APP, link.OP2, link.FUN, link.DP0, link.DP1:
		return false
	default:
		return true
	}
}
