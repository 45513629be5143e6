package worker_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/samuelmanoizy/intuipay-dashboard/internal/worker"
	"github.com/stretchr/testify/assert"
	"log/slog"
)

func TestPoolRunsSubmittedJobs(t *testing.T) {
	p := worker.NewPool(4, 16, slog.Default())

	var count atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		p.Submit(func(ctx context.Context) {
			defer wg.Done()
			count.Add(1)
		})
	}
	wg.Wait()
	p.Stop()

	assert.Equal(t, int64(20), count.Load())
}

func TestPoolStopDrainsQueue(t *testing.T) {
	p := worker.NewPool(1, 16, slog.Default())

	var count atomic.Int64
	for i := 0; i < 10; i++ {
		p.Submit(func(ctx context.Context) {
			count.Add(1)
		})
	}
	p.Stop()

	assert.Equal(t, int64(10), count.Load())
}

func TestPoolSurvivesPanickingJob(t *testing.T) {
	p := worker.NewPool(1, 4, slog.Default())

	p.Submit(func(ctx context.Context) {
		panic("boom")
	})

	done := make(chan struct{})
	p.Submit(func(ctx context.Context) {
		close(done)
	})
	<-done
	p.Stop()
}
