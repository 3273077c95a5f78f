package worker

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/alde/glassmap/pkg/progress"
)

// Job is one unit of rendering work
type Job interface {
	Process(ctx context.Context) error
	ID() string
}

// Result is the outcome of a single job
type Result struct {
	JobID    string
	Error    error
	Duration time.Duration
}

// Pool runs jobs on a fixed number of goroutines
type Pool struct {
	workerCount int
	jobs        chan Job
	results     chan Result
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	tracker     *progress.Tracker
	stopOnce    sync.Once
}

// Option configures a Pool
type Option func(*Pool)

// WithTracker reports job progress to t.
func WithTracker(t *progress.Tracker) Option {
	return func(p *Pool) {
		p.tracker = t
	}
}

// Size returns the worker count a pool created with n will use: n itself,
// or one worker per CPU when n is not positive.
func Size(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// NewPool creates a pool bound to ctx. A non-positive workerCount uses
// one worker per CPU.
func NewPool(ctx context.Context, workerCount int, opts ...Option) *Pool {
	workerCount = Size(workerCount)

	ctx, cancel := context.WithCancel(ctx)

	p := &Pool{
		workerCount: workerCount,
		jobs:        make(chan Job, workerCount*2),
		results:     make(chan Result, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop waits for queued jobs to drain, then closes Results.
func (p *Pool) Stop() {
	p.shutdown(false)
}

// ForceStop cancels in-flight jobs. Jobs still queued are reported as
// failed with the context error, then Results is closed.
func (p *Pool) ForceStop() {
	p.shutdown(true)
}

func (p *Pool) shutdown(force bool) {
	p.stopOnce.Do(func() {
		if force {
			p.cancel()
		}
		close(p.jobs)
		p.wg.Wait()
		close(p.results)
		p.cancel()

		if p.tracker != nil {
			p.tracker.Finish()
		}
	})
}

// Submit queues a job. If the pool is already cancelled the job is not
// queued and is reported as failed with the context error.
func (p *Pool) Submit(job Job) {
	if err := p.ctx.Err(); err != nil {
		p.results <- Result{JobID: job.ID(), Error: err}
		return
	}

	select {
	case p.jobs <- job:
	case <-p.ctx.Done():
		p.results <- Result{JobID: job.ID(), Error: p.ctx.Err()}
	}
}

// Results returns the results channel
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Run submits every job, waits for them and returns the results in
// completion order. Each job yields exactly one Result, including jobs
// skipped because ctx was cancelled.
func (p *Pool) Run(jobs []Job) []Result {
	p.Start()

	collected := make([]Result, 0, len(jobs))
	done := make(chan struct{})
	go func() {
		for r := range p.results {
			collected = append(collected, r)
		}
		close(done)
	}()

	for _, job := range jobs {
		p.Submit(job)
	}
	p.Stop()
	<-done

	return collected
}

// worker keeps receiving until jobs is closed so that every queued job
// produces exactly one Result. Jobs dequeued after cancellation are
// reported with the context error without being processed.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		if err := p.ctx.Err(); err != nil {
			if p.tracker != nil {
				p.tracker.Done(id, job.ID(), err)
			}
			p.results <- Result{JobID: job.ID(), Error: err}
			continue
		}

		if p.tracker != nil {
			p.tracker.Begin(id, job.ID())
		}

		start := time.Now()
		err := job.Process(p.ctx)

		if p.tracker != nil {
			p.tracker.Done(id, job.ID(), err)
		}

		p.results <- Result{
			JobID:    job.ID(),
			Error:    err,
			Duration: time.Since(start),
		}
	}
}

// WorkerCount returns the number of workers in the pool
func (p *Pool) WorkerCount() int {
	return p.workerCount
}
