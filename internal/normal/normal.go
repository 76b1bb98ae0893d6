// Package normal implements the parallel normalizer of spec.md §4.5: a
// recursive head-then-children traversal that reduces the head at a
// location, recurses into its children (optionally farming subtrees out to
// idle workers), and repeats until a full pass produces no new rewrites.
package normal

import (
	"golang.org/x/sync/errgroup"

	"github.com/vic/gofan/internal/graph"
	"github.com/vic/gofan/internal/link"
	"github.com/vic/gofan/internal/reduce"
	"github.com/vic/gofan/internal/worker"
)

// childSlots reports which of term's heap slots hold normalizable
// subterms, given its tag — the set of compound nodes normal descends into
// after reducing the head (spec.md §4.5: APP, SUP, CTR, FUN's arguments,
// plus OP2's two operands when slen>1 lets normal parallelize across them
// instead of reduce forcing them serially). LAM's slot 0 holds its binder
// back-pointer, not a subterm, so only slot 1 (the body) is normalizable.
func childSlots(rt *graph.Runtime, term link.Lnk) []uint32 {
	switch term.Tag() {
	case link.APP, link.SUP, link.OP2:
		return []uint32{0, 1}
	case link.LAM:
		return []uint32{1}
	case link.CTR:
		return sequential(rt.Table.AskAriCtr(term.Ext()))
	case link.FUN:
		return sequential(rt.Table.AskAriFun(term.Ext()))
	default:
		return nil
	}
}

func sequential(n int) []uint32 {
	s := make([]uint32, n)
	for i := range s {
		s[i] = uint32(i)
	}
	return s
}

// Normal is the Func the worker pool runs: drive host to full normal form
// using the worker range [sidx, sidx+slen). pool is the worker's own owning
// Pool (threaded in by internal/worker), so a forked child can itself fork
// further descendants instead of only the top-level caller ever splitting
// slen (spec.md §4.5: forking is a property of the recursion, not just its
// root).
func Normal(op *graph.Op, host uint32, sidx, slen int, pool *worker.Pool) link.Lnk {
	return normalGo(op, host, sidx, slen, pool)
}

// normalGo performs one head-reduce-then-recurse step and returns the fully
// normalized link at host. pool is nil only when called directly by a test
// with no backing pool (slen==1 in that case, so the fork branch below never
// triggers); every path reachable from a worker or from NormalAll supplies
// the real pool so forked children can themselves keep forking.
func normalGo(op *graph.Op, host uint32, sidx, slen int, pool *worker.Pool) link.Lnk {
	if op.Rt.MarkVisited(host) {
		return op.Rt.AskLnk(host)
	}

	term := reduce.Reduce(op, host, slen)
	slots := childSlots(op.Rt, term)
	k := len(slots)
	if k == 0 {
		return term
	}

	if slen >= k && k >= 2 && pool != nil {
		space := slen / k
		g := new(errgroup.Group)
		for i := 1; i < k; i++ {
			childSidx := sidx + i*space
			childHost := link.Loc(term, slots[i])
			g.Go(func() error {
				pool.Fork(childSidx, childHost, childSidx, space)
				result := pool.Join(childSidx)
				op.Link(childHost, result)
				return nil
			})
		}
		firstHost := link.Loc(term, slots[0])
		result := normalGo(op, firstHost, sidx, space, pool)
		op.Link(firstHost, result)
		_ = g.Wait()
	} else {
		for _, slot := range slots {
			childHost := link.Loc(term, slot)
			result := normalGo(op, childHost, sidx, slen, pool)
			op.Link(childHost, result)
		}
	}

	// OP2 mop-up: if slen==1 collapsed an OP2 into something else during
	// reduce's own forced descent, term's tag already changed above and this
	// branch is moot; if a parallel pass above truly left it an OP2 (both
	// operands now forced to values), give reduce one more chance to fire
	// OP2-NUM/OP2-SUP now that both sides are settled. The budget passed is 1
	// so reduce forces the OP2 here instead of deferring it again.
	if term.Tag() == link.OP2 {
		term = reduce.Reduce(op, host, 1)
	}

	return op.Rt.AskLnk(host)
}

// NormalAll runs one pass over root with the caller's budget slen, then
// repeats single-worker passes (slen 1, which forces any OP2 the first pass
// deferred), resetting the visited bitmap before each pass, until a pass
// leaves the pool's total rewrite cost unchanged (spec.md §4.5: "until a
// full pass produces no new rewrites").
func NormalAll(op *graph.Op, pool *worker.Pool, root uint32, slen int) link.Lnk {
	op.Rt.ResetVisited()
	normalGo(op, root, 0, slen, pool)
	for {
		before := pool.TotalCost()
		op.Rt.ResetVisited()
		normalGo(op, root, 0, 1, pool)
		if pool.TotalCost() == before {
			return op.Rt.AskLnk(root)
		}
	}
}
