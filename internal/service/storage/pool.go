package storage

import (
	"context"
	"sync"
)

// Pool runs persistence jobs on a fixed set of workers so a slow bucket
// never stalls a request. Jobs are fire-and-forget: callers learn about
// saturation from Submit's return value and nothing else.
type Pool struct {
	jobs chan func(context.Context)
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool starts workers goroutines draining a queue of queueSize jobs.
func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < workers {
		queueSize = workers
	}

	p := &Pool{jobs: make(chan func(context.Context), queueSize)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job(context.Background())
	}
}

// Submit enqueues a job without blocking. It reports false when the queue
// is full or the pool is closed; the caller decides whether that is worth
// logging.
func (p *Pool) Submit(job func(context.Context)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}

	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Close stops accepting jobs, drains the queue, and waits for the workers.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	p.wg.Wait()
}
