// Package compute provides the executors that run per-particle work.
//
//   - [Pool]: persistent worker goroutines sized to the machine
//   - [Serial]: in-order execution on the calling goroutine
//
// # Lifetime
//
// A Pool is created once per run and reused for every step:
//
//	pool := compute.NewPool(0) // runtime.NumCPU() workers
//	defer pool.Close()
//	err := pool.ParallelFor(n, func(i int) error { ... })
//
// ParallelFor returns only after every index has been processed, which
// makes it the step barrier. A panic inside a task is reported as
// [ErrTaskPanic] instead of crashing the worker.
package compute
