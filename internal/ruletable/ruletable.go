// Package ruletable models the data the external rule compiler emits
// (spec.md §6.2): per-function strict positions, match arms, and the
// constructor/function arity table. Generating this data is explicitly out
// of scope (spec.md §1); this package only defines the shape of the table
// and ships one small builtin table standing in for a compiler's output, so
// the reducer and the end-to-end scenarios in spec.md §8 have something
// concrete to dispatch against.
package ruletable

import "github.com/vic/gofan/internal/link"

// PatternKind is the shape of a single match-arm pattern over one strict
// argument.
type PatternKind int

const (
	// Wildcard matches any link without forcing a particular shape.
	Wildcard PatternKind = iota
	// CtrTag matches a CTR link whose ext equals CtrID.
	CtrTag
	// NumEq matches a NUM link whose value equals NumVal.
	NumEq
)

// Pattern is one arm's expectation for a single strict argument position.
type Pattern struct {
	Kind   PatternKind
	CtrID  uint32
	NumVal uint64
}

// Matches reports whether arg (already reduced to WHNF) satisfies p.
func (p Pattern) Matches(arg link.Lnk) bool {
	switch p.Kind {
	case Wildcard:
		return true
	case CtrTag:
		return arg.Tag() == link.CTR && arg.Ext() == p.CtrID
	case NumEq:
		return arg.Tag() == link.NUM && arg.Num() == p.NumVal
	default:
		return false
	}
}

// Builder is the minimal surface an arm's Rhs needs to splice a replacement
// subgraph in: allocate nodes, write links, erase unused subterms, and mint
// colors for any non-linear RHS variable. internal/graph.Op satisfies this
// interface structurally; ruletable never imports internal/graph to avoid a
// dependency cycle (reduce wires the two together).
type Builder interface {
	Alloc(size uint32) uint32
	Link(loc uint32, l link.Lnk)
	AskArg(term link.Lnk, i uint32) link.Lnk
	Collect(t link.Lnk)
	FreshColor() uint32
}

// Rhs builds the replacement subgraph for a matched FUN call and returns the
// link that should be spliced in place of the call. args holds the FUN
// call's argument links in call order (not just the strict ones); a Rhs
// that needs to discard an argument it doesn't reference must Collect it.
type Rhs func(b Builder, args []link.Lnk) link.Lnk

// Arm pairs one pattern per strict position with the Rhs to run when all of
// them match. Arms are tried in order; the first fully-matching arm fires
// (spec.md §9 open question (b) — resolved as "match the first arm").
type Arm struct {
	Patterns []Pattern
	Build    Rhs
}

// FuncDef is one function id's entry in the table.
type FuncDef struct {
	Arity  int
	Strict []int // argument indices that must be in WHNF before arms are tried
	Arms   []Arm
}

// Table is the full generated-rule-table surface consumed by the reducer.
type Table struct {
	Funcs    map[uint32]FuncDef
	CtrArity map[uint32]int
	FunArity map[uint32]int
	CtrNames map[uint32]string
	FunNames map[uint32]string
}

// AskAriCtr returns the arity of constructor id, or 0 if id is unknown
// (spec.md §7: an out-of-range ext is treated as arity 0, never matches,
// and leaves the term stuck).
func (t Table) AskAriCtr(id uint32) int {
	if a, ok := t.CtrArity[id]; ok {
		return a
	}
	return 0
}

// AskAriFun returns the arity of function id, or 0 if id is unknown.
func (t Table) AskAriFun(id uint32) int {
	if a, ok := t.FunArity[id]; ok {
		return a
	}
	return 0
}

// Lookup returns the FuncDef for a FUN ext, or false if the id has no rules
// registered (a stuck FUN node, spec.md §7 "rule lookup miss").
func (t Table) Lookup(id uint32) (FuncDef, bool) {
	f, ok := t.Funcs[id]
	return f, ok
}

// Match tries each arm in order against the given strict argument values
// (already reduced to WHNF, aligned with FuncDef.Strict) and returns the
// first arm whose every pattern matches.
func (f FuncDef) Match(strictVals []link.Lnk) (Rhs, bool) {
	for _, arm := range f.Arms {
		if len(arm.Patterns) != len(strictVals) {
			continue
		}
		ok := true
		for i, p := range arm.Patterns {
			if !p.Matches(strictVals[i]) {
				ok = false
				break
			}
		}
		if ok {
			return arm.Build, true
		}
	}
	return nil, false
}
