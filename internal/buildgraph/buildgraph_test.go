package buildgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vic/gofan/internal/link"
)

func TestLamVarFinishLamRoundTrips(t *testing.T) {
	b := New(1)
	lam, v := b.LamVar()
	b.FinishLam(lam, v)

	require.Equal(t, link.LAM, lam.Tag())
	assert.Equal(t, link.Var(lam.Val()), b.Mem[lam.Val()+1])
	assert.Equal(t, link.Arg(lam.Val()+1), b.Mem[lam.Val()+0])
}

func TestCtrArityZeroAllocatesNothing(t *testing.T) {
	b := New(1)
	before := len(b.Mem)
	ctr := b.Ctr(7)
	assert.Equal(t, before, len(b.Mem))
	assert.Equal(t, uint32(0), ctr.Val())
}

func TestCtrWithArgsAllocatesAndLinks(t *testing.T) {
	b := New(1)
	pair := b.Ctr(7, link.Num(1), link.Num(2))
	require.Equal(t, link.CTR, pair.Tag())
	assert.Equal(t, link.Num(1), b.Mem[pair.Val()+0])
	assert.Equal(t, link.Num(2), b.Mem[pair.Val()+1])
}

func TestBuildMainArgvChainsAppsOverTokens(t *testing.T) {
	b := New(1)
	root := BuildMainArgv(b, 42, 2, []uint64{10, 20})
	b.SetRoot(root)

	require.Equal(t, link.APP, root.Tag())
	outer := root
	assert.Equal(t, link.Num(20), b.Mem[outer.Val()+1])

	inner := b.Mem[outer.Val()+0]
	require.Equal(t, link.APP, inner.Tag())
	assert.Equal(t, link.Num(10), b.Mem[inner.Val()+1])

	call := b.Mem[inner.Val()+0]
	require.Equal(t, link.FUN, call.Tag())
	assert.Equal(t, uint32(42), call.Ext())
	assert.Equal(t, link.Num(2), b.Mem[call.Val()+0])
}

func TestBuildMainArgvWithNoTokensReturnsBareCall(t *testing.T) {
	b := New(1)
	root := BuildMainArgv(b, 42, 0, nil)
	require.Equal(t, link.FUN, root.Tag())
}
