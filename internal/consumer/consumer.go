// Package consumer subscribes to the request topic and feeds jobs to the worker pool.
package consumer

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dontdude/goscribe/internal/domain"
	"github.com/dontdude/goscribe/internal/worker"
)

// State is the subscription state of a Consumer.
type State int32

const (
	StateIdle State = iota
	StateSubscribed
	StateReceiving
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateSubscribed:
		return "subscribed"
	case StateReceiving:
		return "receiving"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "idle"
	}
}

// Processor turns a job into its Result.
type Processor interface {
	Process(ctx context.Context, job domain.Job) domain.Result
}

// Publisher sends a Result to the output topic.
type Publisher interface {
	Publish(ctx context.Context, res domain.Result) (string, error)
}

// Submitter accepts tasks for bounded execution.
type Submitter interface {
	Submit(ctx context.Context, task worker.Task) error
}

// Options selects the subscription and its supervision timings.
type Options struct {
	Topic string
	Group string
	Tags  string
	// Backoff is the wait before re-subscribing after a failure.
	Backoff time.Duration
	// HealthInterval is how often the transport health is logged. Zero disables it.
	HealthInterval time.Duration
}

// Consumer owns one subscription for the lifetime of the process.
type Consumer struct {
	transport domain.Transport
	pool      Submitter
	proc      Processor
	pub       Publisher
	opts      Options

	state atomic.Int32
}

// New wires a consumer. It does not subscribe until Run.
func New(t domain.Transport, pool Submitter, proc Processor, pub Publisher, opts Options) *Consumer {
	if opts.Backoff <= 0 {
		opts.Backoff = 5 * time.Second
	}
	return &Consumer{transport: t, pool: pool, proc: proc, pub: pub, opts: opts}
}

// State returns the current subscription state.
func (c *Consumer) State() State {
	return State(c.state.Load())
}

func (c *Consumer) setState(s State) {
	if old := State(c.state.Swap(int32(s))); old != s {
		slog.Debug("Consumer state changed", "topic", c.opts.Topic, "from", old, "to", s)
	}
}

// Run subscribes and dispatches jobs until ctx is done. Subscribe failures and
// closed subscriptions are retried after the backoff, indefinitely.
func (c *Consumer) Run(ctx context.Context) error {
	if c.opts.HealthInterval > 0 {
		go c.watchHealth(ctx)
	}

	for ctx.Err() == nil {
		msgs, err := c.transport.Subscribe(ctx, c.opts.Topic, c.opts.Group, c.opts.Tags)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Error("Subscribe failed", "topic", c.opts.Topic, "group", c.opts.Group, "error", err, "backoff", c.opts.Backoff)
			c.setState(StateReconnecting)
			c.wait(ctx)
			continue
		}

		c.setState(StateSubscribed)
		slog.Info("Consuming jobs", "topic", c.opts.Topic, "group", c.opts.Group, "tags", c.opts.Tags)
		c.receive(ctx, msgs)
		if ctx.Err() != nil {
			break
		}

		slog.Warn("Subscription ended, re-subscribing", "topic", c.opts.Topic, "backoff", c.opts.Backoff)
		c.setState(StateReconnecting)
		c.wait(ctx)
	}

	if err := c.transport.Unsubscribe(c.opts.Topic); err != nil {
		slog.Warn("Unsubscribe failed", "topic", c.opts.Topic, "error", err)
	}
	c.setState(StateIdle)
	slog.Info("Consumer stopped", "topic", c.opts.Topic)
	return nil
}

func (c *Consumer) wait(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(c.opts.Backoff):
	}
}

func (c *Consumer) receive(ctx context.Context, msgs <-chan domain.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			c.setState(StateReceiving)
			c.handle(ctx, m)
		}
	}
}

// handle decodes m and submits it. Malformed messages are acknowledged and
// dropped; messages the pool does not accept stay unacknowledged.
func (c *Consumer) handle(ctx context.Context, m domain.Message) {
	job, err := domain.DecodeJob(m.Body)
	if err != nil {
		slog.Warn("Dropping invalid job message", "msgID", m.ID, "kind", domain.KindOf(err), "error", err)
		ack(ctx, m)
		return
	}
	job.MessageID = m.ID

	err = c.pool.Submit(ctx, func(ctx context.Context) {
		res := c.proc.Process(ctx, job)
		if _, err := c.pub.Publish(ctx, res); err != nil {
			slog.Error("Dropping result after failed publish", "audioID", job.AudioID, "status", res.Status, "error", err)
		}
		ack(ctx, m)
	})
	if err != nil {
		slog.Warn("Job not accepted, left for redelivery", "audioID", job.AudioID, "msgID", m.ID, "error", err)
		return
	}
	slog.Debug("Job accepted", "audioID", job.AudioID, "msgID", m.ID)
}

func ack(ctx context.Context, m domain.Message) {
	if err := m.Ack(ctx); err != nil {
		slog.Error("Failed to ack message", "msgID", m.ID, "error", err)
	}
}

func (c *Consumer) watchHealth(ctx context.Context) {
	ticker := time.NewTicker(c.opts.HealthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st, err := c.transport.HealthCheck(ctx)
			if err != nil || st != domain.HealthServing {
				slog.Warn("Transport unhealthy", "status", st, "state", c.State(), "error", err)
				continue
			}
			slog.Debug("Transport healthy", "status", st, "state", c.State())
		}
	}
}
