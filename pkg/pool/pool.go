package pool

import (
	"sync"
	"time"
)

// Pool runs jobs on a bounded number of goroutines. An optional minimum
// interval between job starts keeps request bursts observable to a remote
// source small.
type Pool struct {
	semaphore chan struct{}
	wg        sync.WaitGroup

	mu        sync.Mutex
	interval  time.Duration
	lastStart time.Time
}

// New creates a Pool with the given concurrency. interval <= 0 disables
// rate limiting.
func New(maxWorkers int, interval time.Duration) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Pool{
		semaphore: make(chan struct{}, maxWorkers),
		interval:  interval,
	}
}

// Submit enqueues a job for execution. It blocks while all workers are busy.
func (p *Pool) Submit(job func()) {
	p.wg.Add(1)
	p.semaphore <- struct{}{}

	go func() {
		defer p.wg.Done()
		defer func() { <-p.semaphore }()

		p.throttle()
		job()
	}()
}

// Wait blocks until every submitted job has completed.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) throttle() {
	if p.interval <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if elapsed := time.Since(p.lastStart); elapsed < p.interval {
		time.Sleep(p.interval - elapsed)
	}
	p.lastStart = time.Now()
}
