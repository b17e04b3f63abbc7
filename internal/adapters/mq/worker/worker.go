// Package worker runs the snapshot refresh workers.
package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/kinetiq/gaitway/internal/adapters/cache"
	"github.com/kinetiq/gaitway/internal/adapters/mq/queue"
	"github.com/kinetiq/gaitway/internal/domain/model"
	"github.com/kinetiq/gaitway/pkg/logger"
	"github.com/kinetiq/gaitway/pkg/metrics"
)

const workerShutdownTimeout = 5 * time.Second

// Fetcher retrieves a fresh dashboard payload from the clinical backend.
type Fetcher interface {
	Dashboard(ctx context.Context, bearer string) (model.DashboardSnapshot, error)
}

// Warmer stores refreshed payloads. Satisfied by the snapshot cache.
type Warmer interface {
	Set(ctx context.Context, key string, val any)
}

// Worker consumes refresh jobs until stopped.
type Worker struct {
	queue   queue.Queue
	fetcher Fetcher
	warmer  Warmer
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// New creates a refresh worker with configuration options.
func New(q queue.Queue, fetcher Fetcher, warmer Warmer, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		fetcher:  fetcher,
		warmer:   warmer,
		name:     "refresh-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("refresh-worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop until the context is canceled, the queue closes,
// or Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown stops the worker, waiting briefly for the in-flight job.
func (w *Worker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "worker shutdown timed out", logger.String("worker", w.name))
		return ctx.Err()
	}
}

func (w *Worker) process(ctx context.Context, job queue.Job) {
	snap, err := w.fetcher.Dashboard(ctx, job.Bearer)
	if err != nil {
		// Refresh is best-effort; a failure only means the next view
		// pays for a synchronous fetch.
		metrics.RecordRefreshError()
		metrics.RecordErrorByComponent("refresh", "fetch")
		w.logger.Debug(ctx, "snapshot refresh failed",
			logger.String("patient_id", job.PatientID),
			logger.Error(err),
		)
		return
	}

	w.warmer.Set(ctx, cache.DashboardKey(job.PatientID), snap)
	metrics.RecordRefreshJob()
	w.logger.Debug(ctx, "snapshot refreshed", logger.String("patient_id", job.PatientID))
}

// Pool manages a fixed set of refresh workers.
type Pool struct {
	workers []*Worker
}

// NewPool creates and wires workerCount refresh workers.
func NewPool(workerCount int, q queue.Queue, fetcher Fetcher, warmer Warmer) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool{workers: make([]*Worker, workerCount)}
	for i := range p.workers {
		p.workers[i] = New(q, fetcher, warmer, WithName("refresh-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop shuts down every worker, bounding the wait per worker.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
		_ = w.Shutdown(ctx)
		cancel()
	}
	metrics.UpdateWorkerCount(0)
}
