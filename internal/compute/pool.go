package compute

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	ErrPoolClosed = errors.New("compute: pool closed")
	ErrTaskPanic  = errors.New("compute: task panicked")
)

type chunk struct {
	start, end int
	fn         func(i int) error
	err        *error
	wg         *sync.WaitGroup
}

func (c chunk) run() {
	defer c.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			*c.err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()

	for i := c.start; i < c.end; i++ {
		if err := c.fn(i); err != nil {
			*c.err = err
			return
		}
	}
}

// Pool is a fixed set of worker goroutines that lives until Close. Each
// ParallelFor call splits its range into contiguous chunks, one per worker
// at most, and blocks until every chunk has finished.
type Pool struct {
	workers int
	chunks  chan chunk
	group   *errgroup.Group

	mu     sync.RWMutex
	closed bool
}

// NewPool starts workers goroutines, or runtime.NumCPU() when workers <= 0.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := &Pool{
		workers: workers,
		chunks:  make(chan chunk),
		group:   new(errgroup.Group),
	}
	for w := 0; w < workers; w++ {
		p.group.Go(func() error {
			for c := range p.chunks {
				c.run()
			}
			return nil
		})
	}
	return p
}

func (p *Pool) Workers() int { return p.workers }

func (p *Pool) ParallelFor(n int, fn func(i int) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	if n <= 0 {
		return nil
	}

	parts := p.workers
	if n < parts {
		parts = n
	}
	size := (n + parts - 1) / parts
	errs := make([]error, parts)

	var wg sync.WaitGroup
	for c := 0; c < parts; c++ {
		start := c * size
		if start >= n {
			break
		}
		end := start + size
		if end > n {
			end = n
		}

		wg.Add(1)
		p.chunks <- chunk{start: start, end: end, fn: fn, err: &errs[c], wg: &wg}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Close stops the workers and waits for them to exit. It is safe to call
// more than once.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.chunks)
	p.mu.Unlock()

	return p.group.Wait()
}

// Serial runs every index in order on the calling goroutine.
type Serial struct{}

func (Serial) ParallelFor(n int, fn func(i int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()

	for i := 0; i < n; i++ {
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}
