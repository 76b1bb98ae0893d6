// Package heap implements the per-worker bump region and exact-arity
// free-lists described in spec.md §3.1 and §4.2: each worker owns a disjoint
// half-open range of the shared memory array and never touches another
// worker's range except through the fork/join protocol in internal/worker.
package heap

import (
	"github.com/pkg/errors"

	"github.com/vic/gofan/internal/link"
)

// MaxArity bounds the largest node any rule ever allocates.
const MaxArity = 256

// ErrExhausted is wrapped with the offending worker/size context and
// returned (never panicked) so callers can decide how to abort; spec.md §7
// treats heap exhaustion as fatal, but the decision to os.Exit lives in
// cmd/gofan, not here.
var ErrExhausted = errors.New("heap: partition exhausted")

// Heap is one worker's bump-allocated slice of the shared memory array plus
// its family of per-exact-size free-lists.
type Heap struct {
	Mem       []link.Lnk // the full shared array (all workers' partitions)
	Base      uint32     // start of this worker's partition
	Limit     uint32     // end of this worker's partition (exclusive)
	frontier  uint32     // next unused word within [Base, Limit)
	freeLists [MaxArity + 1][]uint32
}

// New creates a heap view over [base, limit) of mem. frontier starts at base;
// the caller is responsible for reserving word 0 of the whole array for the
// root link before any worker starts allocating (spec.md §3.1).
func New(mem []link.Lnk, base, limit uint32) *Heap {
	return &Heap{Mem: mem, Base: base, Limit: limit, frontier: base}
}

// Alloc returns a fresh block of size contiguous words, or 0 if size == 0
// (spec.md §4.2). It first tries the exact-size free-list; on a miss it
// bumps the frontier. Returned words have undefined contents — callers must
// Link them before exposing (spec.md §3.4).
func (h *Heap) Alloc(size uint32) (uint32, error) {
	if size == 0 {
		return 0, nil
	}
	if int(size) < len(h.freeLists) {
		if fl := h.freeLists[size]; len(fl) > 0 {
			loc := fl[len(fl)-1]
			h.freeLists[size] = fl[:len(fl)-1]
			return loc, nil
		}
	}
	if h.frontier+size > h.Limit {
		return 0, errors.Wrapf(ErrExhausted, "base=%d limit=%d frontier=%d size=%d", h.Base, h.Limit, h.frontier, size)
	}
	loc := h.frontier
	h.frontier += size
	return loc, nil
}

// Clear recycles loc, a block of size words, onto the exact-size free-list.
func (h *Heap) Clear(loc, size uint32) {
	if size == 0 {
		return
	}
	if int(size) >= len(h.freeLists) {
		// Arity above MaxArity never occurs in practice (spec.md §4.2); drop
		// silently rather than growing the table for an impossible size.
		return
	}
	h.freeLists[size] = append(h.freeLists[size], loc)
}

// FreeCount reports how many blocks of the given size are currently on the
// free-list, used by tests asserting invariant 3 of spec.md §8 (free
// addresses disjoint from the live frontier).
func (h *Heap) FreeCount(size uint32) int {
	if int(size) >= len(h.freeLists) {
		return 0
	}
	return len(h.freeLists[size])
}

// Frontier reports the current bump pointer, used to compute ffi_size.
func (h *Heap) Frontier() uint32 { return h.frontier }

// Used returns the number of words allocated from the bump region so far.
// Words recycled back via free-lists are still counted: they remain "used"
// in the sense that they were once bumped.
func (h *Heap) Used() uint32 { return h.frontier - h.Base }
