// Package worker defines worker contracts for asynchronous partition
// rebuilds.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/podium/internal/adapters/mq/queue"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 4
	poolShutdownTimeout = 30 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = queue.Job

// Rebuilder reconstructs the top of one partition and journals any
// record events it finds.
type Rebuilder interface {
	Rebuild(ctx context.Context, p Job) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs pulled from the queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker without waiting for the queue to
	// drain.
	Shutdown(ctx context.Context) error
}

// RebuildWorker implements Worker for processing partition rebuilds.
type RebuildWorker struct {
	queue     Queue
	rebuilder Rebuilder
	name      string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewRebuildWorker creates a new worker with configuration options.
func NewRebuildWorker(queue Queue, rebuilder Rebuilder, opts ...Option) *RebuildWorker {
	w := &RebuildWorker{
		queue:     queue,
		rebuilder: rebuilder,
		name:      "worker", // default name
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *RebuildWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *RebuildWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	close(w.shutdown)

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob rebuilds a single partition.
func (w *RebuildWorker) processJob(ctx context.Context, j Job) error {
	// Track rebuild latency
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordRebuildLatency(float64(latency))
	}()

	if err := w.rebuilder.Rebuild(ctx, j); err != nil {
		metrics.RecordRebuildError()
		w.logger.Error(ctx, "rebuild failed",
			logger.String("partition", j.Key()),
			logger.Error(err),
		)
		return fmt.Errorf("rebuild partition %s: %w", j.Key(), err)
	}

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers   []*RebuildWorker
	queue     Queue
	rebuilder Rebuilder

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, rebuilder Rebuilder) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers:   make([]*RebuildWorker, workerCount),
		queue:     queue,
		rebuilder: rebuilder,
		logger:    logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewRebuildWorker(
			queue,
			rebuilder,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	// Initialize worker metrics
	metrics.UpdateWorkerActiveCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	// Close the queue first so no new jobs arrive and the dequeue
	// channels drain and close
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerActiveCount(0)

	return nil
}
