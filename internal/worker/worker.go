// Package worker implements the fixed-size worker pool of spec.md §4.6: each
// worker owns a disjoint heap partition, a color generator, and a cost
// counter, and blocks on its own one-shot work/result slots guarded by a
// mutex and condition variable (spec.md §5 "Scheduling model" /
// "Suspension points") rather than a shared priority queue of arbitrary
// work items — cross-worker handoff only ever happens at a fork/join
// boundary here, never through a shared queue.
package worker

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/vic/gofan/internal/color"
	"github.com/vic/gofan/internal/graph"
	"github.com/vic/gofan/internal/heap"
	"github.com/vic/gofan/internal/link"
)

// Func is the unit of work a worker executes: normalize (or reduce) the
// term at host using sidx..sidx+slen-1 as its available worker range. pool
// is the worker's own owning Pool, passed back in so the call can itself
// fork subtrees onto idle workers at any recursion depth (spec.md §4.5),
// not only from the top-level caller.
type Func func(op *graph.Op, host uint32, sidx, slen int, pool *Pool) link.Lnk

type job struct {
	host     uint32
	sidx     int
	slen     int
	shutdown bool
}

// Worker is one pool member: its own Op (heap partition + color generator +
// cost counter) plus the one-shot work and result slots.
type Worker struct {
	ID int
	Op *graph.Op

	workMu   sync.Mutex
	workCond *sync.Cond
	hasWork  bool
	work     job

	resultMu   sync.Mutex
	resultCond *sync.Cond
	hasResult bool
	result    link.Lnk

	fn   Func
	pool *Pool
	wg   *sync.WaitGroup
}

func newWorker(id int, op *graph.Op, fn Func) *Worker {
	w := &Worker{ID: id, Op: op, fn: fn}
	w.workCond = sync.NewCond(&w.workMu)
	w.resultCond = sync.NewCond(&w.resultMu)
	return w
}

// run is the worker's goroutine body: wait for work, execute it, publish the
// result, repeat until the shutdown sentinel arrives.
func (w *Worker) run() {
	for {
		w.workMu.Lock()
		for !w.hasWork {
			w.workCond.Wait()
		}
		j := w.work
		w.hasWork = false
		w.workMu.Unlock()

		if j.shutdown {
			return
		}

		res := w.runJob(j)

		w.resultMu.Lock()
		w.result = res
		w.hasResult = true
		w.resultCond.Signal()
		w.resultMu.Unlock()
	}
}

// runJob calls fn for j, recovering a panic (spec.md §7: heap exhaustion
// panics at internal/graph.Op.Alloc) so one worker's fatal condition
// propagates to the pool instead of taking the whole process down from
// inside an unrelated goroutine. The recovered failure is recorded on the
// owning Pool; the worker itself keeps running and publishes the zero Lnk as
// this job's result so its Fork/Join caller is never left blocked.
func (w *Worker) runJob(j job) (result link.Lnk) {
	defer func() {
		if r := recover(); r != nil {
			w.pool.recordFatal(errors.Errorf("worker %d: %v", w.ID, r))
		}
	}()
	return w.fn(w.Op, j.host, j.sidx, j.slen, w.pool)
}

// post delivers a work descriptor to the worker, waking it if it is
// blocked on workCond.
func (w *Worker) post(j job) {
	w.workMu.Lock()
	w.work = j
	w.hasWork = true
	w.workCond.Signal()
	w.workMu.Unlock()
}

// await blocks until the worker's current job has published a result, then
// consumes and returns it.
func (w *Worker) await() link.Lnk {
	w.resultMu.Lock()
	for !w.hasResult {
		w.resultCond.Wait()
	}
	res := w.result
	w.hasResult = false
	w.resultMu.Unlock()
	return res
}

// Pool is the fixed-size collection of workers sharing one Runtime, each
// with its own disjoint heap partition (spec.md §3.1: worker t owns
// [t*S, (t+1)*S)).
type Pool struct {
	Workers []*Worker
	rt      *graph.Runtime

	errMu sync.Mutex
	err   error
}

// New partitions rt.Mem into w equal (last one absorbs any remainder) heap
// regions, seeds each worker's color generator at its partition index, and
// starts each worker's goroutine. fn is the function every Fork call runs.
func New(rt *graph.Runtime, w int, fn Func) *Pool {
	if w <= 0 {
		w = 1
	}
	capacity := uint32(len(rt.Mem))
	share := capacity / uint32(w)

	p := &Pool{rt: rt}
	for t := 0; t < w; t++ {
		base := uint32(t) * share
		limit := base + share
		if t == w-1 {
			limit = capacity
		}
		h := heap.New(rt.Mem, base, limit)
		c := color.NewGenerator(t, w)
		op := graph.NewOp(rt, h, c)
		wk := newWorker(t, op, fn)
		wk.pool = p
		p.Workers = append(p.Workers, wk)
	}
	for _, wk := range p.Workers {
		go wk.run()
	}
	return p
}

// Fork hands work to worker tid; the caller later retrieves the result with
// Join(tid). Workers never fork to themselves (spec.md §4.6 assigns only
// idle workers).
func (p *Pool) Fork(tid int, host uint32, sidx, slen int) {
	p.Workers[tid].post(job{host: host, sidx: sidx, slen: slen})
}

// Join blocks until worker tid's current job has a result, and returns it.
func (p *Pool) Join(tid int) link.Lnk {
	return p.Workers[tid].await()
}

// recordFatal stores the first fatal error recovered from any worker; later
// calls are no-ops (first failure wins).
func (p *Pool) recordFatal(err error) {
	p.errMu.Lock()
	if p.err == nil {
		p.err = err
	}
	p.errMu.Unlock()
}

// Err reports the first fatal error recovered from a worker's panic, or nil
// if none occurred. spec.md §7 treats heap exhaustion as fatal, but the
// decision to abort the process lives in cmd/gofan, not here — callers poll
// Err after driving a computation to completion and decide how to abort.
func (p *Pool) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// TotalCost sums the rewrite counters of every worker (spec.md §7 invariant
// 4: ffi_cost must equal this sum).
func (p *Pool) TotalCost() uint64 {
	var total uint64
	for _, w := range p.Workers {
		total += w.Op.Cost
	}
	return total
}

// TotalUsed sums the allocated-word count across every worker's partition
// (ffi_size).
func (p *Pool) TotalUsed() uint64 {
	var total uint64
	for _, w := range p.Workers {
		total += uint64(w.Op.Heap.Used())
	}
	return total
}

// Shutdown posts the shutdown sentinel to every worker and returns once every
// post has been delivered; it does not wait for the worker goroutines to exit.
func (p *Pool) Shutdown() {
	var wg sync.WaitGroup
	for _, w := range p.Workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			w.post(job{shutdown: true})
		}(w)
	}
	wg.Wait()
}
