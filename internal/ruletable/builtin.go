package ruletable

import "github.com/vic/gofan/internal/link"

// Builtin constructor ids, standing in for the id→name table an upstream
// compiler would emit (spec.md §1: "out of scope; supplied as data").
const (
	CtrTrue  uint32 = iota // True, arity 0
	CtrFalse               // False, arity 0
	CtrPair                // Pair a b, arity 2
	CtrLeaf                // Leaf v, arity 1 (FFT-style tree leaf)
	CtrBoth                // Both l r, arity 2 (FFT-style tree branch)
	CtrNil                 // Nil, arity 0
)

// Builtin function ids.
const (
	FunK    uint32 = iota // K a b = a
	FunNot                // Not True = False; Not False = True
	FunAnd                // And True True = True; otherwise False
	FunF                  // F 0 = 0; stuck on every other argument (spec.md §8 scenario 6)
	FunMain               // Main n = a curried n-ary function summing its arguments (spec.md §6.3 CLI entry)
)

// Builtin returns a small hand-authored table covering the constructors and
// functions named by the end-to-end scenarios in spec.md §8. It is data,
// not logic: internal/reduce never special-cases a function id, it only
// walks this table.
func Builtin() Table {
	return Table{
		CtrArity: map[uint32]int{
			CtrTrue:  0,
			CtrFalse: 0,
			CtrPair:  2,
			CtrLeaf:  1,
			CtrBoth:  2,
			CtrNil:   0,
		},
		CtrNames: map[uint32]string{
			CtrTrue:  "True",
			CtrFalse: "False",
			CtrPair:  "Pair",
			CtrLeaf:  "Leaf",
			CtrBoth:  "Both",
			CtrNil:   "Nil",
		},
		FunArity: map[uint32]int{
			FunK:    2,
			FunNot:  1,
			FunAnd:  2,
			FunF:    1,
			FunMain: 1,
		},
		FunNames: map[uint32]string{
			FunK:    "K",
			FunNot:  "Not",
			FunAnd:  "And",
			FunF:    "F",
			FunMain: "Main",
		},
		Funcs: map[uint32]FuncDef{
			FunK: {
				Arity:  2,
				Strict: nil, // K fires unconditionally; neither argument is forced
				Arms: []Arm{{
					Patterns: nil,
					Build: func(b Builder, args []link.Lnk) link.Lnk {
						b.Collect(args[1])
						return args[0]
					},
				}},
			},
			FunNot: {
				Arity:  1,
				Strict: []int{0},
				Arms: []Arm{
					{
						Patterns: []Pattern{{Kind: CtrTag, CtrID: CtrTrue}},
						Build: func(b Builder, args []link.Lnk) link.Lnk {
							return link.Ctr(CtrFalse, 0)
						},
					},
					{
						Patterns: []Pattern{{Kind: CtrTag, CtrID: CtrFalse}},
						Build: func(b Builder, args []link.Lnk) link.Lnk {
							return link.Ctr(CtrTrue, 0)
						},
					},
				},
			},
			FunAnd: {
				Arity:  2,
				Strict: []int{0, 1},
				Arms: []Arm{
					{
						Patterns: []Pattern{
							{Kind: CtrTag, CtrID: CtrTrue},
							{Kind: CtrTag, CtrID: CtrTrue},
						},
						Build: func(b Builder, args []link.Lnk) link.Lnk {
							return link.Ctr(CtrTrue, 0)
						},
					},
					{
						Patterns: []Pattern{{Kind: Wildcard}, {Kind: Wildcard}},
						Build: func(b Builder, args []link.Lnk) link.Lnk {
							return link.Ctr(CtrFalse, 0)
						},
					},
				},
			},
			FunF: {
				Arity:  1,
				Strict: []int{0},
				Arms: []Arm{
					{
						Patterns: []Pattern{{Kind: NumEq, NumVal: 0}},
						Build: func(b Builder, args []link.Lnk) link.Lnk {
							return link.Num(0)
						},
					},
				},
			},
			FunMain: {
				Arity:  1,
				Strict: []int{0},
				Arms: []Arm{
					{
						Patterns: []Pattern{{Kind: Wildcard}},
						Build:    buildMain,
					},
				},
			},
		},
	}
}

// buildMain implements the CLI entry point's demo program: given n (the
// CLI argument count), it builds a curried n-ary function that sums
// whatever n further NUM arguments it is applied to — enough structure to
// exercise LAM/APP/OP2 end to end without a surface parser (spec.md §6.3).
// n == 0 returns the literal 0 directly (the nullary Main case).
func buildMain(b Builder, args []link.Lnk) link.Lnk {
	n := int(args[0].Num())
	if n == 0 {
		return link.Num(0)
	}

	lamLocs := make([]uint32, n)
	vars := make([]link.Lnk, n)
	for i := 0; i < n; i++ {
		loc := b.Alloc(2)
		lamLocs[i] = loc
		b.Link(loc+0, link.Era())
		vars[i] = link.Var(loc)
	}

	body := vars[0]
	for i := 1; i < n; i++ {
		opLoc := b.Alloc(2)
		b.Link(opLoc+0, body)
		b.Link(opLoc+1, vars[i])
		body = link.Op2(link.ADD, opLoc)
	}
	b.Link(lamLocs[n-1]+1, body)
	for i := n - 2; i >= 0; i-- {
		b.Link(lamLocs[i]+1, link.Lam(lamLocs[i+1]))
	}
	return link.Lam(lamLocs[0])
}
