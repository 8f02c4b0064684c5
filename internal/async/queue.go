// Package async runs pipeline invocations on a bounded worker pool for the
// batch CLI. Invocations are independent, so workers share nothing but the
// pipeline itself.
package async

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/expensio/receipt-scan/internal/common"
	"github.com/expensio/receipt-scan/internal/pipeline"
)

// Job is one file to analyze.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

// ResultFunc receives the outcome of one job. err is non-nil only for input
// errors; degraded extractions arrive as a Success=false Result.
type ResultFunc func(job Job, res pipeline.Result, err error)

type Queue struct {
	pipe     *pipeline.Pipeline
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	onResult ResultFunc

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithJobTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}
func WithResultFunc(f ResultFunc) Option {
	return func(q *Queue) {
		if f != nil {
			q.onResult = f
		}
	}
}

func NewQueue(pipe *pipeline.Pipeline, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		pipe:     pipe,
		logger:   logger,
		workers:  4,
		timeout:  3 * time.Minute,
		ch:       make(chan Job, 256),
		onResult: func(Job, pipeline.Result, error) {},
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.run(workerID, job)
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *Queue) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if job.TraceID != "" {
		ctx = common.WithRequestID(ctx, job.TraceID)
	}

	data, err := os.ReadFile(job.Path)
	if err != nil {
		q.logger.Error("read file failed", "worker_id", workerID, "path", job.Path, "error", err)
		q.onResult(job, pipeline.Result{}, err)
		return
	}

	res, err := q.pipe.Analyze(ctx, pipeline.RawDocument{
		Data:     data,
		Filename: filepath.Base(job.Path),
	})
	if err != nil {
		q.logger.Error("analysis rejected", "worker_id", workerID, "path", job.Path, "error", err)
	} else if !res.Success {
		q.logger.Warn("analysis degraded", "worker_id", workerID, "path", job.Path, "error", res.Error)
	} else {
		q.logger.Info("analyzed file", "worker_id", workerID, "path", job.Path, "needs_review", res.Data.NeedsReview)
	}
	q.onResult(job, res, err)
}

// Enqueue submits one job, blocking when the queue is full. The read lock is
// shared between producers, so a slow backpressure send never serializes the
// others; Shutdown's write lock waits only for sends already in flight.
func (q *Queue) Enqueue(_ context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued file", "path", job.Path)
	default:
		q.logger.Warn("queue full, applying backpressure", "path", job.Path)
		q.ch <- job
	}
	return nil
}

func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-done:
	case <-ctx.Done():
		q.logger.Warn("shutdown timed out before workers drained")
	}
}
