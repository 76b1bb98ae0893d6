package readback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vic/gofan/internal/graph"
	"github.com/vic/gofan/internal/link"
	"github.com/vic/gofan/internal/ruletable"
)

func TestSprintNumber(t *testing.T) {
	rt := graph.NewRuntime(4, ruletable.Builtin())
	rt.Mem[0] = link.Num(42)
	assert.Equal(t, "42", Sprint(rt, 0, 0))
}

func TestSprintLambdaNamesItsVariable(t *testing.T) {
	rt := graph.NewRuntime(4, ruletable.Builtin())
	rt.Mem[0] = link.Lam(1)
	rt.Mem[1] = link.Arg(2) // occupied binder slot (not ERA)
	rt.Mem[2] = link.Var(1)

	got := Sprint(rt, 0, 0)
	assert.Equal(t, "@x0 x0", got)
}

func TestSprintEraseLambdaBinderPrintsUnderscore(t *testing.T) {
	rt := graph.NewRuntime(4, ruletable.Builtin())
	rt.Mem[0] = link.Lam(1)
	rt.Mem[1] = link.Era()
	rt.Mem[2] = link.Num(9)

	got := Sprint(rt, 0, 0)
	assert.Equal(t, "@_ 9", got)
}

func TestSprintCtrUsesNameTable(t *testing.T) {
	rt := graph.NewRuntime(4, ruletable.Builtin())
	rt.Mem[0] = link.Ctr(ruletable.CtrTrue, 0)
	assert.Equal(t, "(True)", Sprint(rt, 0, 0))
}

func TestSprintUnresolvedSupPrintsFanBrackets(t *testing.T) {
	rt := graph.NewRuntime(4, ruletable.Builtin())
	rt.Mem[0] = link.Sup(3, 1)
	rt.Mem[1] = link.Num(1)
	rt.Mem[2] = link.Num(2)

	assert.Equal(t, "<1 2>", Sprint(rt, 0, 0))
}

func TestSprintTruncatesAtCapacity(t *testing.T) {
	rt := graph.NewRuntime(4, ruletable.Builtin())
	rt.Mem[0] = link.Num(123456789)
	got := Sprint(rt, 0, 3)
	assert.Equal(t, "123", got)
}

func TestSprintUnknownCtrIdFallsBackToDollarName(t *testing.T) {
	rt := graph.NewRuntime(4, ruletable.Builtin())
	rt.Mem[0] = link.Ctr(9999, 0)
	assert.Equal(t, "($9999)", Sprint(rt, 0, 0))
}
