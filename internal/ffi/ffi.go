// Package ffi exposes the single runtime entry point of spec.md §6.1:
// initialize the worker pool, run the normalizer to completion, tear the
// pool down, and report the rewrite cost and allocated-word size.
package ffi

import (
	"github.com/pkg/errors"

	"github.com/vic/gofan/internal/graph"
	"github.com/vic/gofan/internal/link"
	"github.com/vic/gofan/internal/normal"
	"github.com/vic/gofan/internal/ruletable"
	"github.com/vic/gofan/internal/worker"
)

// Result reports the statistics ffi_normal exposes to its caller, plus the
// final Runtime so the caller can run readback over it.
type Result struct {
	Root link.Lnk
	Cost uint64
	Size uint64
	Rt   *graph.Runtime
	// Err is the first fatal error recovered from a worker panic (spec.md
	// §7: heap exhaustion), or nil. Root/Cost/Size are left at whatever the
	// pool reached before the panic and are not meaningful when Err != nil.
	Err error
}

// Normal runs the full normalize-to-completion protocol over mem, whose
// word 0 already holds the root link written by a graph builder. workers
// is the pool size W; a non-positive value is clamped to 1.
func Normal(mem []link.Lnk, table ruletable.Table, workers int) Result {
	if workers <= 0 {
		workers = 1
	}
	rt := graph.NewRuntime(uint32(len(mem)), table)
	copy(rt.Mem, mem)

	pool := worker.New(rt, workers, normal.Normal)
	defer pool.Shutdown()

	driver := pool.Workers[0].Op
	root, err := driveNormalAll(driver, pool, workers)
	if err == nil {
		err = pool.Err()
	}

	return Result{
		Root: root,
		Cost: pool.TotalCost(),
		Size: pool.TotalUsed(),
		Rt:   rt,
		Err:  err,
	}
}

// driveNormalAll runs NormalAll on the calling goroutine (worker 0's own Op,
// driven directly rather than through Fork/Join) and recovers a panic the
// same way internal/worker.Worker.runJob does for forked descendants — the
// top-level driver is still a worker boundary, just one invoked synchronously
// instead of across a goroutine handoff.
func driveNormalAll(op *graph.Op, pool *worker.Pool, workers int) (result link.Lnk, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("driver: %v", r)
		}
	}()
	result = normal.NormalAll(op, pool, 0, workers)
	return
}
