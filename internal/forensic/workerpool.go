package forensic

import (
	"runtime"
	"sync"
)

// workerPool bounds CPU-bound fan-out (block hashing, FFT row/column
// passes) to GOMAXPROCS workers, so a single large image can't flood the
// scheduler with goroutines while several requests are in flight.
type workerPool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// newWorkerPool returns a pool sized to the current GOMAXPROCS.
func newWorkerPool() *workerPool {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	return &workerPool{sem: make(chan struct{}, n)}
}

// submit runs fn on a pool worker, blocking the caller only when all
// workers are busy.
func (p *workerPool) submit(fn func()) {
	p.wg.Add(1)
	p.sem <- struct{}{}
	go func() {
		defer p.wg.Done()
		defer func() { <-p.sem }()
		fn()
	}()
}

// wait blocks until every submitted job has completed.
func (p *workerPool) wait() {
	p.wg.Wait()
}
