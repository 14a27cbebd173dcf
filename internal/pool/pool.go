// Package pool runs a fixed number of concurrent fetches over the
// outstanding identifier set.
package pool

import (
	"context"
	"fmt"
	"sync"

	"hfharvest/pkg/logger"
	"hfharvest/pkg/ratelimit"
	"hfharvest/pkg/record"
)

// Fetcher fetches the record for a single identifier
type Fetcher interface {
	Fetch(ctx context.Context, id string) record.Record
}

// WorkerPool manages concurrent fetch workers. Records arrive on the
// results channel in completion order, not submission order; the only
// guarantee is bounded concurrency. A stuck identifier occupies one
// worker slot and nothing else.
type WorkerPool struct {
	numWorkers int
	jobQueue   chan string
	results    chan record.Record
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	fetcher    Fetcher
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewWorkerPool creates a pool of numWorkers fetch workers sharing one
// rate limiter
func NewWorkerPool(ctx context.Context, numWorkers int, fetcher Fetcher, limiter ratelimit.Limiter, log logger.Logger) *WorkerPool {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers: numWorkers,
		jobQueue:   make(chan string, numWorkers*2),
		results:    make(chan record.Record, numWorkers),
		ctx:        ctx,
		cancel:     cancel,
		fetcher:    fetcher,
		limiter:    limiter,
		logger:     log,
	}
}

// Start initializes and starts all workers
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop signals that no more jobs will be submitted and closes the results
// channel once all workers have drained the queue
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
	wp.logger.Debug("worker pool stopped")
}

// Submit queues an identifier for fetching
func (wp *WorkerPool) Submit(id string) error {
	select {
	case wp.jobQueue <- id:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	}
}

// Results returns the channel of completed records
func (wp *WorkerPool) Results() <-chan record.Record {
	return wp.results
}

// worker is the main worker routine
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for dataset := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			return
		default:
		}

		if !wp.limiter.Allow() {
			wp.logger.DebugWithFields("worker waiting for rate limit", map[string]interface{}{
				"worker_id": id,
				"dataset":   dataset,
			})
			wp.limiter.Wait()
		}

		rec := wp.fetcher.Fetch(wp.ctx, dataset)

		select {
		case wp.results <- rec:
		case <-wp.ctx.Done():
			return
		}
	}
}
