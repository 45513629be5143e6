// Package worker runs settlement workflows detached from the HTTP request
// that triggered them. A caller may abandon waiting for a result; the job
// keeps running server-side until the transaction reaches a terminal status.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samuelmanoizy/intuipay-dashboard/internal/metrics"
)

// Job is one unit of background work. The context it receives is independent
// of any request context and is only cancelled by job-internal budgets.
type Job func(ctx context.Context)

// Pool is a fixed-size worker pool with a buffered queue.
type Pool struct {
	wg     sync.WaitGroup
	jobs   chan Job
	logger *slog.Logger
}

// NewPool starts n workers draining a queue of the given size.
func NewPool(n int, queueSize int, logger *slog.Logger) *Pool {
	p := &Pool{
		jobs:   make(chan Job, queueSize),
		logger: logger,
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.invoke(job)
		metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
	}
}

func (p *Pool) invoke(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker job panicked", slog.Any("panic", r))
		}
	}()
	job(context.Background())
}

// Submit enqueues a job. Blocks if the queue is full.
func (p *Pool) Submit(job Job) {
	p.jobs <- job
	metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
