// Package readback implements the two-pass pretty-printer of spec.md §4.7:
// a variable-enumeration DFS followed by a print DFS that resolves
// duplication/superposition scopes through a per-color direction stack.
package readback

import (
	"strconv"
	"strings"

	"github.com/vic/gofan/internal/graph"
	"github.com/vic/gofan/internal/link"
)

// Printer holds the state shared by both DFS passes over one final graph.
type Printer struct {
	rt      *graph.Runtime
	seen    map[uint32]bool
	varName map[uint32]int // LAM binder address -> variable index
	nextVar int
	dirs    map[uint32][]int // fan color -> stack of chosen sides (0 or 1)
	buf     strings.Builder
	cap     int
}

// New builds a Printer bound to rt with buf, truncating the printed text at
// capacity bytes (0 means unbounded) rather than growing unboundedly (spec.md §7: "Readback
// buffer overflow: truncate at capacity... do not fail").
func New(rt *graph.Runtime, capacity int) *Printer {
	return &Printer{
		rt:      rt,
		seen:    make(map[uint32]bool),
		varName: make(map[uint32]int),
		dirs:    make(map[uint32][]int),
		cap:     capacity,
	}
}

// Sprint runs both passes over the graph rooted at host and returns the
// pretty-printed text.
func Sprint(rt *graph.Runtime, host uint32, capacity int) string {
	p := New(rt, capacity)
	p.enumerate(host)
	p.seen = make(map[uint32]bool)
	p.print(host)
	return p.buf.String()
}

// enumerate is pass 1: DFS the graph, recording every LAM whose binder slot
// is not ERA as a named variable, in first-occurrence order.
func (p *Printer) enumerate(host uint32) {
	term := p.rt.AskLnk(host)
	switch term.Tag() {
	case link.LAM:
		loc := term.Val()
		if !p.seen[loc] {
			p.seen[loc] = true
			if p.rt.AskLnk(loc+0).Tag() != link.ERA {
				p.varName[loc] = p.nextVar
				p.nextVar++
			}
			p.enumerate(loc + 1)
		}
	case link.APP, link.SUP, link.OP2:
		loc := term.Val()
		if !p.seen[loc] {
			p.seen[loc] = true
			p.enumerate(loc + 0)
			p.enumerate(loc + 1)
		}
	case link.CTR:
		p.enumerateArgs(term, p.rt.Table.AskAriCtr(term.Ext()))
	case link.FUN:
		p.enumerateArgs(term, p.rt.Table.AskAriFun(term.Ext()))
	case link.DP0, link.DP1:
		p.enumerate(link.Loc(term, 2))
	}
}

func (p *Printer) enumerateArgs(term link.Lnk, arity int) {
	if arity == 0 {
		return
	}
	loc := term.Val()
	if p.seen[loc] {
		return
	}
	p.seen[loc] = true
	for i := 0; i < arity; i++ {
		p.enumerate(loc + uint32(i))
	}
}

func (p *Printer) write(s string) {
	if p.cap > 0 && p.buf.Len() >= p.cap {
		return
	}
	if p.cap > 0 && p.buf.Len()+len(s) > p.cap {
		s = s[:p.cap-p.buf.Len()]
	}
	p.buf.WriteString(s)
}

// print is pass 2: DFS again, emitting the grammar of spec.md §6.4.
func (p *Printer) print(host uint32) {
	term := p.rt.AskLnk(host)
	switch term.Tag() {
	case link.LAM:
		loc := term.Val()
		if idx, ok := p.varName[loc]; ok {
			p.write("@x" + strconv.Itoa(idx) + " ")
		} else {
			p.write("@_ ")
		}
		p.print(loc + 1)

	case link.APP:
		p.write("(")
		p.print(link.Loc(term, 0))
		p.write(" ")
		p.print(link.Loc(term, 1))
		p.write(")")

	case link.OP2:
		p.write("(")
		p.print(link.Loc(term, 0))
		p.write(" " + link.Op(term.Ext()).Symbol() + " ")
		p.print(link.Loc(term, 1))
		p.write(")")

	case link.CTR:
		p.printTagged(p.rt.Table.CtrNames, term)

	case link.FUN:
		p.printTagged(p.rt.Table.FunNames, term)

	case link.NUM:
		p.write(strconv.FormatUint(term.Num(), 10))

	case link.VAR:
		p.printVarOccurrence(term)

	case link.DP0:
		p.printDup(term, 0)
	case link.DP1:
		p.printDup(term, 1)

	case link.SUP:
		color := term.Ext()
		stack := p.dirs[color]
		if len(stack) == 0 {
			p.write("<")
			p.print(link.Loc(term, 0))
			p.write(" ")
			p.print(link.Loc(term, 1))
			p.write(">")
			return
		}
		side := stack[len(stack)-1]
		p.print(link.Loc(term, uint32(side)))

	case link.ERA:
		p.write("_")

	default:
		p.write("?" + term.Tag().String())
	}
}

func (p *Printer) printVarOccurrence(v link.Lnk) {
	lamLoc := v.Val()
	if idx, ok := p.varName[lamLoc]; ok {
		p.write("x" + strconv.Itoa(idx))
		return
	}
	p.write("x?")
}

// printDup pushes side onto the fan-color direction stack, recurses into
// the shared subject, and pops — so a nested fan of the same color two
// levels down still consults the stack correctly (spec.md §4.7).
func (p *Printer) printDup(term link.Lnk, side int) {
	color := term.Ext()
	p.dirs[color] = append(p.dirs[color], side)
	p.print(link.Loc(term, 2))
	p.dirs[color] = p.dirs[color][:len(p.dirs[color])-1]
}

func (p *Printer) printTagged(names map[uint32]string, term link.Lnk) {
	name, ok := names[term.Ext()]
	if !ok {
		name = "$" + strconv.FormatUint(uint64(term.Ext()), 10)
	}
	var arity int
	if term.Tag() == link.CTR {
		arity = p.rt.Table.AskAriCtr(term.Ext())
	} else {
		arity = p.rt.Table.AskAriFun(term.Ext())
	}
	p.write("(" + name)
	for i := 0; i < arity; i++ {
		p.write(" ")
		p.print(link.Loc(term, uint32(i)))
	}
	p.write(")")
}
