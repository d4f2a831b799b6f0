package engine

import "sync"

// Job is a host task the ThreadPool runs off the scheduler's single
// simulation thread — e.g. reading a file for $fread, or the synthesis
// subprocess kicked off by a remote compile request. A Job reports
// completion by returning; the scheduler never cancels one mid-flight, it
// only waits for results, per spec.md §5's "pool must never invoke
// scheduler callbacks directly" rule.
type Job func()

// ThreadPool is a bounded worker pool draining a shared queue, built
// directly on the sync.Mutex/sync.WaitGroup idiom the teacher's
// pkg/search/worker.go WorkerPool uses for its channel-fed goroutines,
// rather than golang.org/x/sync/errgroup: errgroup cancels every
// in-flight goroutine's context the moment one job returns an error, and
// a host job failing (a bad file read, a synthesis subprocess crash)
// must not reach back into the scheduler — it reports failure through its
// own result value, not by unwinding the pool.
type ThreadPool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	stopped bool
	mu      sync.Mutex
}

// NewThreadPool starts n workers (n<1 is treated as 1) pulling from a
// buffered job channel of capacity 64; Submit blocks while it is full.
func NewThreadPool(n int) *ThreadPool {
	if n < 1 {
		n = 1
	}
	p := &ThreadPool{jobs: make(chan Job, 64)}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

func (p *ThreadPool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Submit enqueues job for execution on some worker goroutine. Submit
// after Stop is a no-op: the scheduler's DoneSimulation path stops the
// pool once, and any trailing host job at that point has no consumer
// left to report its result to.
func (p *ThreadPool) Submit(job Job) {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return
	}
	p.jobs <- job
}

// Stop closes the job queue and waits for every in-flight job to finish.
// Idempotent.
func (p *ThreadPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()
	close(p.jobs)
	p.wg.Wait()
}

// SubmitAndWait runs jobs concurrently across the pool and blocks until
// all have returned — used by the scheduler when a Step needs every
// queued host read to resolve before it can decide ThereAreUpdates.
func (p *ThreadPool) SubmitAndWait(jobs []Job) {
	var wg sync.WaitGroup
	wg.Add(len(jobs))
	for _, j := range jobs {
		j := j
		p.Submit(func() {
			defer wg.Done()
			j()
		})
	}
	wg.Wait()
}
