// Package buildgraph stands in for the external front-end builder spec.md
// §2 assumes writes an initial graph at heap position 0: a small set of
// helpers for splicing literal NUM arguments onto a root FUN/APP spine, used
// by tests and by cmd/gofan's Main-application path. It deliberately does
// not parse surface syntax (spec.md §1 Non-goals).
package buildgraph

import "github.com/vic/gofan/internal/link"

// Builder accumulates links into a flat []link.Lnk buffer, reserving word 0
// for the root (spec.md §3.1).
type Builder struct {
	Mem []link.Lnk
}

// New starts a Builder with capacity words pre-sized, word 0 left for the
// caller to set once the whole graph is built.
func New(capacity uint32) *Builder {
	return &Builder{Mem: make([]link.Lnk, capacity, capacity)}
}

// alloc grows Mem by size words (used only at build time, before any worker
// partition exists) and returns the base address of the new block.
func (b *Builder) alloc(size uint32) uint32 {
	loc := uint32(len(b.Mem))
	b.Mem = append(b.Mem, make([]link.Lnk, size)...)
	return loc
}

// Link writes lnk at loc, maintaining the VAR/DP0/DP1 back-pointer
// convention of internal/graph.Op.Link — duplicated here rather than
// imported so buildgraph has no dependency on a live Runtime/worker pool.
func (b *Builder) Link(loc uint32, lnk link.Lnk) {
	b.Mem[loc] = lnk
	switch lnk.Tag() {
	case link.VAR, link.DP0:
		b.Mem[lnk.Val()+0] = link.Arg(loc)
	case link.DP1:
		b.Mem[lnk.Val()+1] = link.Arg(loc)
	}
}

// SetRoot installs root as the top-level link at address 0.
func (b *Builder) SetRoot(root link.Lnk) {
	b.Link(0, root)
}

// Num builds a bare NUM literal — no heap allocation needed, it is returned
// by value for the caller to Link wherever it belongs.
func (b *Builder) Num(n uint64) link.Lnk {
	return link.Num(n)
}

// Lam allocates a 2-word lambda node with an initially-unused (ERA) binder
// and the given body, returning the LAM link.
func (b *Builder) Lam(body link.Lnk) link.Lnk {
	loc := b.alloc(2)
	b.Link(loc+0, link.Era())
	b.Link(loc+1, body)
	return link.Lam(loc)
}

// LamVar allocates a 2-word lambda node and returns both the LAM link and a
// VAR occurrence of its bound variable, for callers that need to reference
// the bound variable while still constructing the body.
func (b *Builder) LamVar() (lam link.Lnk, v link.Lnk) {
	loc := b.alloc(2)
	return link.Lam(loc), link.Var(loc)
}

// FinishLam completes a lambda started with LamVar by linking its body.
func (b *Builder) FinishLam(lam link.Lnk, body link.Lnk) {
	b.Link(lam.Val()+1, body)
}

// App allocates a 2-word application node.
func (b *Builder) App(fn, arg link.Lnk) link.Lnk {
	loc := b.alloc(2)
	b.Link(loc+0, fn)
	b.Link(loc+1, arg)
	return link.App(loc)
}

// Ctr allocates an arity-word constructor node (arity 0 allocates nothing).
func (b *Builder) Ctr(id uint32, args ...link.Lnk) link.Lnk {
	if len(args) == 0 {
		return link.Ctr(id, 0)
	}
	loc := b.alloc(uint32(len(args)))
	for i, a := range args {
		b.Link(loc+uint32(i), a)
	}
	return link.Ctr(id, loc)
}

// Fun allocates an arity-word function-call node.
func (b *Builder) Fun(id uint32, args ...link.Lnk) link.Lnk {
	if len(args) == 0 {
		return link.Fun(id, 0)
	}
	loc := b.alloc(uint32(len(args)))
	for i, a := range args {
		b.Link(loc+uint32(i), a)
	}
	return link.Fun(id, loc)
}

// Op2 allocates a binary-operator node.
func (b *Builder) Op2(op link.Op, left, right link.Lnk) link.Lnk {
	loc := b.alloc(2)
	b.Link(loc+0, left)
	b.Link(loc+1, right)
	return link.Op2(op, loc)
}

// BuildMainArgv builds the spec.md §6.3 CLI application spine into b:
// Main(argc) applied in turn to each decimal NUM decoded from the
// command-line tokens. With no tokens the root is the nullary Main call
// itself. Returns the root link; the caller still calls b.SetRoot on it.
func BuildMainArgv(b *Builder, mainFunID uint32, argc int, args []uint64) link.Lnk {
	call := b.Fun(mainFunID, b.Num(uint64(argc)))
	for _, a := range args {
		call = b.App(call, b.Num(a))
	}
	return call
}
