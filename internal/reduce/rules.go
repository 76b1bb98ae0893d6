package reduce

import (
	"github.com/vic/gofan/internal/graph"
	"github.com/vic/gofan/internal/link"
)

// ascendApp tries APP-LAM or APP-SUP against an APP node whose function
// slot is now in WHNF.
func ascendApp(op *graph.Op, host uint32, term link.Lnk) bool {
	fn := op.AskArg(term, 0)
	switch fn.Tag() {
	case link.LAM:
		return appLam(op, host, term, fn)
	case link.SUP:
		return appSup(op, host, term, fn)
	default:
		return false
	}
}

// appLam is beta reduction: substitute the argument for the lambda's bound
// variable and replace the call with the body.
func appLam(op *graph.Op, host uint32, appTerm, lam link.Lnk) bool {
	arg := op.AskArg(appTerm, 1)
	binderSlot := op.AskLnk(lam.Val() + 0)
	op.Subst(binderSlot, arg)
	body := op.AskArg(lam, 1)
	op.Clear(appTerm.Val(), 2)
	op.Clear(lam.Val(), 2)
	op.IncCost()
	op.Link(host, body)
	return true
}

// appSup distributes an application over a fan in its function position:
// (&L{f0,f1} x) becomes &L{(f0 a0), (f1 a1)} with x duplicated across a
// fresh color. The original app and sup 2-word blocks are recycled as the
// two new app nodes.
func appSup(op *graph.Op, host uint32, appTerm, sup link.Lnk) bool {
	arg := op.AskArg(appTerm, 1)
	left := op.AskArg(sup, 0)
	right := op.AskArg(sup, 1)
	supColor := sup.Ext()

	dupLoc := op.Alloc(3)
	dupColor := op.FreshColor()
	op.Link(dupLoc+2, arg)

	app0 := appTerm.Val()
	app1 := sup.Val()

	op.Link(app0+0, left)
	op.Link(app0+1, link.Dp0(dupColor, dupLoc))
	op.Link(app1+0, right)
	op.Link(app1+1, link.Dp1(dupColor, dupLoc))

	resLoc := op.Alloc(2)
	op.Link(resLoc+0, link.App(app0))
	op.Link(resLoc+1, link.App(app1))
	op.IncCost()
	op.Link(host, link.Sup(supColor, resLoc))
	return true
}

// ascendDup tries the duplication rule matching the shape the dup's subject
// has now reduced to.
func ascendDup(op *graph.Op, host uint32, dp link.Lnk) bool {
	sub := op.AskArg(dp, 2)
	switch sub.Tag() {
	case link.LAM:
		return dupLam(op, host, dp, sub)
	case link.SUP:
		if dp.Ext() == sub.Ext() {
			return dupSupAnnihilate(op, host, dp, sub)
		}
		return dupSupCommute(op, host, dp, sub)
	case link.NUM:
		return dupNum(op, host, dp, sub)
	case link.CTR:
		return dupCtr(op, host, dp, sub)
	case link.ERA:
		return dupEra(op, host, dp)
	default:
		return false
	}
}

// otherProjSlot returns the address of the sibling projection's own
// back-pointer slot inside a 3-word duplication block: slot 1 when dp is
// the DP0 occurrence, slot 0 when dp is the DP1 occurrence.
func otherProjSlot(dp link.Lnk) uint32 {
	if dp.Tag() == link.DP0 {
		return dp.Val() + 1
	}
	return dp.Val() + 0
}

// dupLam splits a lambda across both projections: two fresh lambdas sharing
// a superposed bound variable, with the body itself duplicated under a new
// color. The projection not under reduction has its own occurrence site
// resolved via Subst before the dup block is freed, mirroring dupNum.
func dupLam(op *graph.Op, host uint32, dp, lam link.Lnk) bool {
	col := dp.Ext()
	bodyDupLoc := op.Alloc(3)
	bodyColor := op.FreshColor()

	lam0 := op.Alloc(2)
	lam1 := op.Alloc(2)

	op.Link(lam0+1, link.Dp0(bodyColor, bodyDupLoc))
	op.Link(lam1+1, link.Dp1(bodyColor, bodyDupLoc))

	body := op.AskArg(lam, 1)
	op.Link(bodyDupLoc+2, body)

	supLoc := op.Alloc(2)
	op.Link(supLoc+0, link.Var(lam0))
	op.Link(supLoc+1, link.Var(lam1))

	binderSlot := op.AskLnk(lam.Val() + 0)
	op.Subst(binderSlot, link.Sup(col, supLoc))

	other := op.AskLnk(otherProjSlot(dp))
	op.Clear(lam.Val(), 2)

	if dp.Tag() == link.DP0 {
		op.Subst(other, link.Lam(lam1))
		op.Clear(dp.Val(), 3)
		op.IncCost()
		op.Link(host, link.Lam(lam0))
	} else {
		op.Subst(other, link.Lam(lam0))
		op.Clear(dp.Val(), 3)
		op.IncCost()
		op.Link(host, link.Lam(lam1))
	}
	return true
}

// dupSupAnnihilate handles a duplication meeting a fan of its own color:
// the two no longer need each other and each projection takes its matching
// branch directly. The sibling projection's occurrence site is resolved via
// Subst before the dup block is freed, mirroring dupNum.
func dupSupAnnihilate(op *graph.Op, host uint32, dp, sup link.Lnk) bool {
	left := op.AskArg(sup, 0)
	right := op.AskArg(sup, 1)
	other := op.AskLnk(otherProjSlot(dp))

	op.Clear(sup.Val(), 2)

	var result link.Lnk
	if dp.Tag() == link.DP0 {
		result = left
		op.Subst(other, right)
	} else {
		result = right
		op.Subst(other, left)
	}
	op.Clear(dp.Val(), 3)
	op.IncCost()
	op.Link(host, result)
	return true
}

// dupSupCommute handles a duplication meeting a fan of a different color:
// neither side can be discarded, so the fan and the duplication pass through
// each other, each of the fan's two branches re-duplicated under the dup's
// original color. The sibling projection's occurrence site is resolved via
// Subst before the dup block is freed, mirroring dupNum.
func dupSupCommute(op *graph.Op, host uint32, dp, sup link.Lnk) bool {
	left := op.AskArg(sup, 0)
	right := op.AskArg(sup, 1)
	supColor := sup.Ext()
	dpColor := dp.Ext()

	dupX := op.Alloc(3)
	dupY := op.Alloc(3)
	op.Link(dupX+2, left)
	op.Link(dupY+2, right)

	aLoc := op.Alloc(2)
	bLoc := op.Alloc(2)
	op.Link(aLoc+0, link.Dp0(dpColor, dupX))
	op.Link(aLoc+1, link.Dp0(dpColor, dupY))
	op.Link(bLoc+0, link.Dp1(dpColor, dupX))
	op.Link(bLoc+1, link.Dp1(dpColor, dupY))

	other := op.AskLnk(otherProjSlot(dp))
	op.Clear(sup.Val(), 2)

	if dp.Tag() == link.DP0 {
		op.Subst(other, link.Sup(supColor, bLoc))
		op.Clear(dp.Val(), 3)
		op.IncCost()
		op.Link(host, link.Sup(supColor, aLoc))
	} else {
		op.Subst(other, link.Sup(supColor, aLoc))
		op.Clear(dp.Val(), 3)
		op.IncCost()
		op.Link(host, link.Sup(supColor, bLoc))
	}
	return true
}

// dupNum handles duplicating an unboxed integer: there is no structure to
// split, so the same value is substituted into both this occurrence and the
// sibling projection's recorded site.
func dupNum(op *graph.Op, host uint32, dp, num link.Lnk) bool {
	other := op.AskLnk(otherProjSlot(dp))
	op.Subst(other, num)
	op.Clear(dp.Val(), 3)
	op.IncCost()
	op.Link(host, num)
	return true
}

// dupEra handles duplicating an erasure: both sides get erased.
func dupEra(op *graph.Op, host uint32, dp link.Lnk) bool {
	other := op.AskLnk(otherProjSlot(dp))
	op.Subst(other, link.Era())
	op.Clear(dp.Val(), 3)
	op.IncCost()
	op.Link(host, link.Era())
	return true
}

// dupCtr handles duplicating a constructor: a nullary constructor behaves
// like dupNum (no structure, same value both sides); otherwise each field is
// re-duplicated under the dup's own color and two independent constructor copies
// are built, mirroring dupSupCommute arity-generalized to n fields. Either
// way, the sibling projection's occurrence site is resolved via Subst before
// the dup block is freed, mirroring dupNum.
func dupCtr(op *graph.Op, host uint32, dp, ctr link.Lnk) bool {
	arity := uint32(op.Rt.Table.AskAriCtr(ctr.Ext()))
	if arity == 0 {
		other := op.AskLnk(otherProjSlot(dp))
		op.Subst(other, ctr)
		op.Clear(dp.Val(), 3)
		op.IncCost()
		op.Link(host, ctr)
		return true
	}

	dpColor := dp.Ext()
	dupLocs := make([]uint32, arity)
	for i := uint32(0); i < arity; i++ {
		dupLocs[i] = op.Alloc(3)
		op.Link(dupLocs[i]+2, op.AskArg(ctr, i))
	}

	aLoc := op.Alloc(arity)
	bLoc := op.Alloc(arity)
	for i := uint32(0); i < arity; i++ {
		op.Link(aLoc+i, link.Dp0(dpColor, dupLocs[i]))
		op.Link(bLoc+i, link.Dp1(dpColor, dupLocs[i]))
	}

	other := op.AskLnk(otherProjSlot(dp))
	op.Clear(ctr.Val(), arity)

	if dp.Tag() == link.DP0 {
		op.Subst(other, link.Ctr(ctr.Ext(), bLoc))
		op.Clear(dp.Val(), 3)
		op.IncCost()
		op.Link(host, link.Ctr(ctr.Ext(), aLoc))
	} else {
		op.Subst(other, link.Ctr(ctr.Ext(), aLoc))
		op.Clear(dp.Val(), 3)
		op.IncCost()
		op.Link(host, link.Ctr(ctr.Ext(), bLoc))
	}
	return true
}

// ascendOp2 tries OP2-NUM when both operands have settled to literals, else
// OP2-SUP when the (already-forced) right operand is a fan. A left operand
// that is itself still unreduced is left stuck — spec.md only describes
// forcing the right operand explicitly, so this reducer never speculatively
// forces the left one too.
func ascendOp2(op *graph.Op, host uint32, term link.Lnk) bool {
	left := op.AskArg(term, 0)
	right := op.AskArg(term, 1)
	if left.Tag() == link.NUM && right.Tag() == link.NUM {
		return op2Num(op, host, term, left, right)
	}
	if right.Tag() == link.SUP {
		return op2Sup(op, host, term, left, right)
	}
	return false
}

func boolNum(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// op2Num evaluates a binary operator over two literal operands.
func op2Num(op *graph.Op, host uint32, term, left, right link.Lnk) bool {
	a := left.Num()
	b := right.Num()
	var result uint64
	switch link.Op(term.Ext()) {
	case link.ADD:
		result = a + b
	case link.SUB:
		result = a - b
	case link.MUL:
		result = a * b
	case link.DIV:
		if b != 0 {
			result = a / b
		}
	case link.MOD:
		if b != 0 {
			result = a % b
		}
	case link.AND:
		result = a & b
	case link.OR:
		result = a | b
	case link.XOR:
		result = a ^ b
	case link.SHL:
		result = a << (b & 63)
	case link.SHR:
		result = a >> (b & 63)
	case link.LTN:
		result = boolNum(a < b)
	case link.LTE:
		result = boolNum(a <= b)
	case link.EQL:
		result = boolNum(a == b)
	case link.GTE:
		result = boolNum(a >= b)
	case link.GTN:
		result = boolNum(a > b)
	case link.NEQ:
		result = boolNum(a != b)
	}
	op.Clear(term.Val(), 2)
	op.IncCost()
	op.Link(host, link.Num(result))
	return true
}

// op2Sup distributes an operator over a fan in its right operand, mirroring
// appSup: the left operand is duplicated across a fresh color and the
// original op2/sup blocks are recycled as the two new op2 nodes.
func op2Sup(op *graph.Op, host uint32, term, left, sup link.Lnk) bool {
	opc := term.Ext()
	supColor := sup.Ext()
	right0 := op.AskArg(sup, 0)
	right1 := op.AskArg(sup, 1)

	dupLoc := op.Alloc(3)
	dupColor := op.FreshColor()
	op.Link(dupLoc+2, left)

	op0 := term.Val()
	op1 := sup.Val()

	op.Link(op0+0, link.Dp0(dupColor, dupLoc))
	op.Link(op0+1, right0)
	op.Link(op1+0, link.Dp1(dupColor, dupLoc))
	op.Link(op1+1, right1)

	resLoc := op.Alloc(2)
	op.Link(resLoc+0, link.Op2(link.Op(opc), op0))
	op.Link(resLoc+1, link.Op2(link.Op(opc), op1))
	op.IncCost()
	op.Link(host, link.Sup(supColor, resLoc))
	return true
}

// ascendFun re-checks the function's strict positions: if any has settled
// to a fan it generically lifts the call over both branches (FUN-SUP);
// otherwise it tries the rule table's arms against the now-forced strict
// arguments.
func ascendFun(op *graph.Op, host uint32, term link.Lnk) bool {
	def, ok := op.Rt.Table.Lookup(term.Ext())
	if !ok {
		return false
	}

	for _, pos := range def.Strict {
		v := op.AskArg(term, uint32(pos))
		if v.Tag() == link.SUP {
			return funSup(op, host, term, def.Arity, pos)
		}
	}

	strictVals := make([]link.Lnk, len(def.Strict))
	for i, pos := range def.Strict {
		strictVals[i] = op.AskArg(term, uint32(pos))
	}
	build, ok := def.Match(strictVals)
	if !ok {
		return false
	}

	args := make([]link.Lnk, def.Arity)
	for i := 0; i < def.Arity; i++ {
		args[i] = op.AskArg(term, uint32(i))
	}
	result := build(op, args)
	op.Clear(term.Val(), uint32(def.Arity))
	op.IncCost()
	op.Link(host, result)
	return true
}

// funSup generically lifts a function call over a fan found in one of its
// strict argument positions: every other argument is re-duplicated under a
// fresh color, the differing argument is split along the fan's two
// branches, and the two resulting calls are wrapped back in a fan of the
// original color.
func funSup(op *graph.Op, host uint32, term link.Lnk, arity int, supIdx int) bool {
	fid := term.Ext()
	sup := op.AskArg(term, uint32(supIdx))
	supColor := sup.Ext()

	block0 := op.Alloc(uint32(arity))
	block1 := op.Alloc(uint32(arity))

	for j := 0; j < arity; j++ {
		if j == supIdx {
			continue
		}
		aj := op.AskArg(term, uint32(j))
		dupLoc := op.Alloc(3)
		dupColor := op.FreshColor()
		op.Link(dupLoc+2, aj)
		op.Link(block0+uint32(j), link.Dp0(dupColor, dupLoc))
		op.Link(block1+uint32(j), link.Dp1(dupColor, dupLoc))
	}

	left := op.AskArg(sup, 0)
	right := op.AskArg(sup, 1)
	op.Link(block0+uint32(supIdx), left)
	op.Link(block1+uint32(supIdx), right)

	op.Clear(sup.Val(), 2)
	op.Clear(term.Val(), uint32(arity))

	resLoc := op.Alloc(2)
	op.Link(resLoc+0, link.Fun(fid, block0))
	op.Link(resLoc+1, link.Fun(fid, block1))
	op.IncCost()
	op.Link(host, link.Sup(supColor, resLoc))
	return true
}
