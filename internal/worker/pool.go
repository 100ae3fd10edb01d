package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dontdude/goscribe/internal/domain"
)

// Task is one unit of work. The context it receives is never cancelled by the
// pool, so a job that has started runs to completion.
type Task func(ctx context.Context)

// Pool implements a fixed-size worker pool pattern.
// At most workerCount tasks run at once and at most queueDepth wait.
type Pool struct {
	// workerCount determines how many jobs can run concurrently.
	workerCount int
	// tasksCh is the queue for accepted tasks.
	tasksCh chan Task
	// wg tracks active workers to ensure graceful shutdown.
	wg sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
	// stopping is closed when Stop begins and releases blocked submitters.
	stopping chan struct{}
	stopOnce sync.Once

	active atomic.Int64
}

// NewPool initializes the worker pool with a fixed concurrency limit and queue depth.
func NewPool(concurrency, queueDepth int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueDepth < 0 {
		queueDepth = 0
	}
	return &Pool{
		workerCount: concurrency,
		tasksCh:     make(chan Task, queueDepth),
		stopping:    make(chan struct{}),
	}
}

// Start spawns the fixed number of worker goroutines.
// It returns immediately.
func (p *Pool) Start() {
	slog.Info("Starting worker pool", "concurrency", p.workerCount, "queueDepth", cap(p.tasksCh))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues task. It blocks while the queue is full, which applies
// backpressure to the caller, and returns early if ctx is done or the pool
// begins stopping.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return domain.ErrPoolStopped
	}

	select {
	case p.tasksCh <- task:
		return nil
	case <-p.stopping:
		return domain.ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Active returns the number of tasks currently running.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Stop initiates a graceful shutdown.
// It stops intake and waits for queued and running tasks until ctx is done.
// Tasks still running after that are abandoned.
func (p *Pool) Stop(ctx context.Context) error {
	// Submitters blocked on a full queue hold the read lock.
	p.stopOnce.Do(func() { close(p.stopping) })
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.tasksCh)
	p.mu.Unlock()

	slog.Info("Stopping worker pool, waiting for tasks to drain...")
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Worker pool stopped")
		return nil
	case <-ctx.Done():
		n := p.Active() + len(p.tasksCh)
		slog.Warn("Worker pool grace period expired, abandoning jobs", "abandoned", n)
		return fmt.Errorf("worker pool stop: %d jobs abandoned: %w", n, ctx.Err())
	}
}

// worker is the core logic that runs inside a goroutine.
func (p *Pool) worker(id int) {
	defer p.wg.Done()
	slog.Debug("Worker started", "workerID", id)

	// Range over the channel continuously reads tasks until the channel is closed.
	for task := range p.tasksCh {
		p.run(id, task)
	}

	slog.Debug("Worker stopped", "workerID", id)
}

func (p *Pool) run(id int, task Task) {
	p.active.Add(1)
	defer p.active.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Task panicked", "workerID", id, "panic", r)
		}
	}()
	task(context.Background())
}
