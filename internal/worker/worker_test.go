package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vic/gofan/internal/graph"
	"github.com/vic/gofan/internal/link"
	"github.com/vic/gofan/internal/ruletable"
)

func echoHost(op *graph.Op, host uint32, sidx, slen int, pool *Pool) link.Lnk {
	return op.AskLnk(host)
}

// TestWorkerSeesOwningPool checks that New wires each worker's own Pool
// reference before starting its goroutine, so a Func invoked on that
// worker can itself fork further descendants (spec.md §4.5).
func TestWorkerSeesOwningPool(t *testing.T) {
	rt := graph.NewRuntime(16, ruletable.Builtin())
	var seen *Pool
	captureFn := func(op *graph.Op, host uint32, sidx, slen int, pool *Pool) link.Lnk {
		seen = pool
		return op.AskLnk(host)
	}
	p := New(rt, 2, captureFn)
	defer p.Shutdown()

	p.Fork(0, 0, 0, 1)
	p.Join(0)
	assert.Same(t, p, seen)
}

// TestRunJobRecoversPanicAndStaysAlive checks that a panicking Func records
// a fatal error on the owning Pool instead of crashing the process, and that
// the worker's goroutine keeps serving later jobs normally.
func TestRunJobRecoversPanicAndStaysAlive(t *testing.T) {
	rt := graph.NewRuntime(16, ruletable.Builtin())
	panicOnce := func(op *graph.Op, host uint32, sidx, slen int, pool *Pool) link.Lnk {
		panic("simulated heap exhaustion")
	}
	p := New(rt, 1, panicOnce)
	defer p.Shutdown()

	p.Fork(0, 0, 0, 1)
	result := p.Join(0)
	assert.Equal(t, link.Lnk(0), result)
	require.Error(t, p.Err())
	assert.Contains(t, p.Err().Error(), "simulated heap exhaustion")

	// The worker's goroutine survived the panic and serves another job.
	p.Fork(0, 0, 0, 1)
	p.Join(0)
}

func TestForkJoinReturnsWorkerResult(t *testing.T) {
	rt := graph.NewRuntime(64, ruletable.Builtin())
	p := New(rt, 4, echoHost)
	defer p.Shutdown()

	host := uint32(3)
	rt.Mem[host] = link.Num(11)

	p.Fork(2, host, 0, 1)
	result := p.Join(2)
	assert.Equal(t, link.Num(11), result)
}

func TestPoolPartitionsHeapDisjointly(t *testing.T) {
	rt := graph.NewRuntime(16, ruletable.Builtin())
	p := New(rt, 4, echoHost)
	defer p.Shutdown()

	require.Len(t, p.Workers, 4)
	for i, w := range p.Workers {
		assert.Equal(t, uint32(i)*4, w.Op.Heap.Base)
	}
}

func TestTotalCostSumsAcrossWorkers(t *testing.T) {
	rt := graph.NewRuntime(16, ruletable.Builtin())
	p := New(rt, 2, echoHost)
	defer p.Shutdown()

	p.Workers[0].Op.IncCost()
	p.Workers[1].Op.IncCost()
	p.Workers[1].Op.IncCost()

	assert.Equal(t, uint64(3), p.TotalCost())
}

func TestShutdownStopsAllWorkers(t *testing.T) {
	rt := graph.NewRuntime(16, ruletable.Builtin())
	p := New(rt, 3, echoHost)
	p.Shutdown()
}
