// Package color generates the 24-bit fan/duplication colors of spec.md §3.3:
// every worker owns a disjoint slice of the color space so that no two
// workers can ever mint the same color (spec.md §9, "the only cross-worker
// ordering concern for duplication correctness").
package color

// MaxColors is the size of the 24-bit color space (ext field width).
const MaxColors = 1 << 24

// Generator hands out a monotonically increasing sequence of colors drawn
// from a fixed partition of the color space.
type Generator struct {
	base  uint32
	next  uint32
	limit uint32
}

// NewGenerator seeds a generator for worker t of w, each getting an equal
// share of MaxColors (spec.md §4.6: "seeded with t * MAX_DUPS / W").
func NewGenerator(t, w int) *Generator {
	if w <= 0 {
		w = 1
	}
	share := uint32(MaxColors / w)
	base := uint32(t) * share
	limit := base + share
	if t == w-1 {
		limit = MaxColors
	}
	return &Generator{base: base, next: base, limit: limit}
}

// Fresh returns the next unused color owned by this worker. Colors wrap
// within the worker's own partition rather than ever crossing into another
// worker's range — a long-running program may reuse colors, which is safe
// because a color's scope is always a single still-live duplication/fan
// pair (spec.md §3.4 invariant 2).
func (g *Generator) Fresh() uint32 {
	c := g.next
	g.next++
	if g.next >= g.limit {
		g.next = g.base
	}
	return c
}
