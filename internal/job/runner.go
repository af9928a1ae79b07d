package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskr-api/internal/redact"
)

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// WorkerCount determines how many jobs run concurrently
	WorkerCount int

	// QueueSize determines the buffer size of the in-memory queue
	QueueSize int

	// JobTimeout bounds a single job execution. Zero means no timeout.
	JobTimeout time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
		JobTimeout:  10 * time.Second,
	}
}

// Runner executes submitted jobs on a fixed pool of workers.
type Runner struct {
	queue      *Queue
	config     RunnerConfig
	logger     *slog.Logger
	errHandler func(job Job, err error)

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewRunner creates a Runner. Call Start before submitting work.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "job_runner"))

	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.WorkerCount),
			slog.Int("default_count", 1))
		config.WorkerCount = 1
	}

	return &Runner{
		queue:  NewQueue(config.QueueSize, logger),
		config: config,
		logger: logger,
	}
}

// SetErrorHandler sets a callback invoked after a job fails or panics.
// It must be called before Start.
func (r *Runner) SetErrorHandler(handler func(job Job, err error)) {
	r.errHandler = handler
}

// Start launches the workers. Calling it more than once has no effect.
func (r *Runner) Start() {
	r.startOnce.Do(func() {
		for i := 0; i < r.config.WorkerCount; i++ {
			r.wg.Add(1)
			go r.worker(i)
		}
		r.logger.Info("job runner started",
			slog.Int("workers", r.config.WorkerCount),
			slog.Int("queue_size", cap(r.queue.jobs)))
	})
}

// Submit queues a job without blocking.
func (r *Runner) Submit(job Job) error {
	return r.queue.Enqueue(job)
}

// Stop closes the queue and waits until the workers have drained it or ctx
// is done, whichever comes first.
func (r *Runner) Stop(ctx context.Context) error {
	r.stopOnce.Do(r.queue.Close)

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("job runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("job runner stop timed out",
			slog.Int("pending_jobs", r.queue.Len()))
		return ctx.Err()
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", slog.Int("worker_id", id))
	for job := range r.queue.Channel() {
		r.process(job, id)
	}
	r.logger.Debug("job channel closed, stopping worker", slog.Int("worker_id", id))
}

func (r *Runner) process(job Job, workerID int) {
	log := r.logger.With(
		slog.String("job_id", job.ID().String()),
		slog.String("job_type", job.Type()),
		slog.Int("worker_id", workerID),
	)

	ctx := context.Background()
	if r.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := r.execute(ctx, job)
	if err != nil {
		log.Error("job execution failed",
			slog.String("error", redact.Error(err)),
			slog.Duration("duration", time.Since(start)))
		if r.errHandler != nil {
			r.errHandler(job, err)
		}
		return
	}

	log.Debug("job completed", slog.Duration("duration", time.Since(start)))
}

// execute runs the job, converting a panic into an error.
func (r *Runner) execute(ctx context.Context, job Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	return job.Execute(ctx)
}
