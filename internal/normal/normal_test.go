package normal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vic/gofan/internal/color"
	"github.com/vic/gofan/internal/graph"
	"github.com/vic/gofan/internal/heap"
	"github.com/vic/gofan/internal/link"
	"github.com/vic/gofan/internal/ruletable"
	"github.com/vic/gofan/internal/worker"
)

// TestNormalReducesNestedApp drives ((@x x) (@y y)) 5 to 5 with a single
// worker (no forking), exercising the head-then-recurse loop end to end.
func TestNormalReducesNestedApp(t *testing.T) {
	rt := graph.NewRuntime(64, ruletable.Builtin())
	h := heap.New(rt.Mem, 0, 64)
	c := color.NewGenerator(0, 1)
	op := graph.NewOp(rt, h, c)

	// Word 0 holds the root; reserve it before any node is allocated.
	root := op.Alloc(1)

	// @x x
	idLoc := op.Alloc(2)
	op.Link(idLoc+0, link.Era())
	op.Link(idLoc+1, link.Var(idLoc))
	idFn := link.Lam(idLoc)

	// @y y
	idYLoc := op.Alloc(2)
	op.Link(idYLoc+0, link.Era())
	op.Link(idYLoc+1, link.Var(idYLoc))
	idYFn := link.Lam(idYLoc)

	innerAppLoc := op.Alloc(2)
	op.Link(innerAppLoc+0, idFn)
	op.Link(innerAppLoc+1, idYFn)

	outerAppLoc := op.Alloc(2)
	op.Link(outerAppLoc+0, link.App(innerAppLoc))
	op.Link(outerAppLoc+1, link.Num(5))

	op.Link(root, link.App(outerAppLoc))

	result := Normal(op, root, 0, 1, nil)
	assert.Equal(t, link.Num(5), result)
}

// TestNormalAllConvergesOnStableCost runs NormalAll against a 4-worker pool
// and checks it terminates with the fully reduced value and a stable cost.
func TestNormalAllConvergesOnStableCost(t *testing.T) {
	rt := graph.NewRuntime(128, ruletable.Builtin())
	pool := worker.New(rt, 4, Normal)
	defer pool.Shutdown()

	op := pool.Workers[0].Op

	callLoc := op.Alloc(2)
	op.Link(callLoc+0, link.Ctr(ruletable.CtrTrue, 0))
	op.Link(callLoc+1, link.Ctr(ruletable.CtrTrue, 0))

	root := uint32(100)
	op.Link(root, link.Fun(ruletable.FunAnd, callLoc))

	result := NormalAll(op, pool, root, 4)
	require.Equal(t, link.CTR, result.Tag())
	assert.Equal(t, ruletable.CtrTrue, result.Ext())
}

// TestChildSlotsSkipsLamBinderSlot ensures LAM's own back-pointer slot is
// never treated as a normalizable subterm.
func TestChildSlotsSkipsLamBinderSlot(t *testing.T) {
	rt := graph.NewRuntime(8, ruletable.Builtin())
	slots := childSlots(rt, link.Lam(0))
	assert.Equal(t, []uint32{1}, slots)
}

func TestChildSlotsForCtrIsSequentialByArity(t *testing.T) {
	rt := graph.NewRuntime(8, ruletable.Builtin())
	slots := childSlots(rt, link.Ctr(ruletable.CtrPair, 0))
	assert.Equal(t, []uint32{0, 1}, slots)
}
