// Package jobs runs transcode work on a bounded worker pool so a burst of
// uploads cannot spawn an unbounded number of ffmpeg processes.
package jobs

import (
	"context"
	"sync"

	"kinora/internal/shared/config"
	"kinora/internal/shared/errors"
	"kinora/internal/shared/goroutine"
	"kinora/internal/shared/logger"
)

var (
	// ErrQueueFull means every worker is busy and the backlog is at capacity.
	ErrQueueFull = errors.NewUnavailableError("transcoding queue is full, try again later")
	// ErrTitleBusy means the title already has a job queued or running.
	ErrTitleBusy = errors.NewConflictError("title is already being processed")
)

// Job is one unit of transcode work keyed by the movie it belongs to.
type Job struct {
	MovieID uint
	Run     func(ctx context.Context)
}

// Dispatcher owns a fixed worker pool fed by a bounded queue. At most one
// job per movie may be in flight; submitting a second one is rejected
// rather than queued behind the first.
type Dispatcher struct {
	queue    chan Job
	workers  int
	logger   logger.Interface
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.Mutex
	inflight map[uint]struct{}
	closed   bool
}

func NewDispatcher(cfg *config.WorkerConfig, logger logger.Interface) *Dispatcher {
	workers := cfg.TranscodeWorkers
	if workers < 1 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize < 1 {
		queueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		queue:    make(chan Job, queueSize),
		workers:  workers,
		logger:   logger.With("component", "jobs.dispatcher"),
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[uint]struct{}),
	}
}

// Start launches the worker goroutines.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		worker := i
		goroutine.SafeGo(d.logger, "transcode-worker", func() {
			defer d.wg.Done()
			d.workerLoop(worker)
		})
	}
	d.logger.Infow("dispatcher started", "workers", d.workers, "queue_size", cap(d.queue))
}

// Submit enqueues a job. It never blocks: a full queue returns ErrQueueFull
// and a movie that is already queued or encoding returns ErrTitleBusy.
// Submitting after Shutdown is rejected the same way a full queue is.
func (d *Dispatcher) Submit(job Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrQueueFull
	}
	if _, busy := d.inflight[job.MovieID]; busy {
		return ErrTitleBusy
	}

	// The send stays under the mutex so Shutdown can never close the queue
	// between the closed check and the send. It cannot block: the channel is
	// buffered and the default arm handles a full buffer.
	select {
	case d.queue <- job:
		d.inflight[job.MovieID] = struct{}{}
		d.logger.Debugw("job queued", "movie_id", job.MovieID, "backlog", len(d.queue))
		return nil
	default:
		return ErrQueueFull
	}
}

// Busy reports whether the movie has a job queued or running.
func (d *Dispatcher) Busy(movieID uint) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, busy := d.inflight[movieID]
	return busy
}

// Shutdown stops accepting jobs and waits for in-flight ones to finish.
// Calling it more than once is a no-op.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
	d.logger.Infow("dispatcher stopped")
}

func (d *Dispatcher) workerLoop(worker int) {
	for job := range d.queue {
		job := job
		goroutine.SafeRun(d.logger, "transcode-job", func() {
			defer d.release(job.MovieID)
			d.logger.Infow("job started", "worker", worker, "movie_id", job.MovieID)
			job.Run(d.ctx)
		})
	}
}

func (d *Dispatcher) release(movieID uint) {
	d.mu.Lock()
	delete(d.inflight, movieID)
	d.mu.Unlock()
}
