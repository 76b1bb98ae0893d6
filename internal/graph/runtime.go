// Package graph bundles the shared heap, the visited bitmap, and the
// generated rule table into a single Runtime value (spec.md §9: "model
// [global mutable state] as fields of a single Runtime value passed to
// every operation"), plus the link/subst/collect primitives of spec.md §4.3
// that every worker's Op exercises against it.
package graph

import (
	"sync/atomic"

	"github.com/vic/gofan/internal/link"
	"github.com/vic/gofan/internal/ruletable"
)

// Runtime is the process-wide shared state: the flat memory array every
// worker's partition lives inside of, the visited bitmap the parallel
// normalizer uses to avoid revisiting a host, and the rule table the
// reducer dispatches FUN nodes against.
type Runtime struct {
	Mem     []link.Lnk
	visited []uint32 // 0/1 per address; races are benign (spec.md §5)
	locks   []int32  // duplication-node lock bits, keyed by dup node address
	Table   ruletable.Table
}

// NewRuntime allocates a Runtime over a memory array of the given word
// capacity. Word 0 is reserved for the root link by convention (spec.md
// §3.1) but is not written here — the caller's builder does that.
func NewRuntime(capacity uint32, table ruletable.Table) *Runtime {
	return &Runtime{
		Mem:     make([]link.Lnk, capacity),
		visited: make([]uint32, capacity),
		locks:   make([]int32, capacity),
		Table:   table,
	}
}

// TryLockDup attempts to acquire the single-bit flag guarding concurrent
// descent through a duplication node's shared subject (spec.md §5: two
// workers may race through DP0 and DP1 of the same fan). loc is the
// duplication node's own address.
func (rt *Runtime) TryLockDup(loc uint32) bool {
	return atomic.CompareAndSwapInt32(&rt.locks[loc], 0, 1)
}

// UnlockDup releases the flag acquired by TryLockDup. Cleared on every
// ascent exit path — whether a rule rewrote the duplication or not.
func (rt *Runtime) UnlockDup(loc uint32) {
	atomic.StoreInt32(&rt.locks[loc], 0)
}

// ResetVisited clears the visited bitmap; normal.NormalAll calls this before
// the forked pass and before each OP2 mop-up pass (spec.md §4.5 step 3).
func (rt *Runtime) ResetVisited() {
	for i := range rt.visited {
		rt.visited[i] = 0
	}
}

// MarkVisited reports whether host was already visited, marking it visited
// as a side effect (atomic test-and-set; a missed bit merely costs an extra
// pass, spec.md §5).
func (rt *Runtime) MarkVisited(host uint32) bool {
	return atomic.SwapUint32(&rt.visited[host], 1) == 1
}

// AskLnk reads the link currently stored at address L.
func (rt *Runtime) AskLnk(l uint32) link.Lnk { return rt.Mem[l] }

// AskArg reads child i of a compound link term.
func (rt *Runtime) AskArg(term link.Lnk, i uint32) link.Lnk {
	return rt.AskLnk(link.Loc(term, i))
}
