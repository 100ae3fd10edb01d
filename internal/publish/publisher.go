// Package publish sends job Results to the output topic.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dontdude/goscribe/internal/domain"
)

// Options controls where and how Results are sent.
type Options struct {
	Topic string
	Tag   string
	// Retries is the number of extra attempts after a failed publish.
	Retries int
	// Timeout caps each attempt. Zero means no cap.
	Timeout time.Duration
	// Backoff is the pause between attempts.
	Backoff time.Duration
}

// Publisher encodes Results and publishes them through a transport.
type Publisher struct {
	transport domain.Transport
	opts      Options
}

// New returns a Publisher. An empty tag defaults to domain.ResultTag.
func New(t domain.Transport, opts Options) *Publisher {
	if opts.Tag == "" {
		opts.Tag = domain.ResultTag
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	return &Publisher{transport: t, opts: opts}
}

// Publish sends res and returns the broker message id. After the last failed
// attempt the error is returned; the caller logs it and moves on.
func (p *Publisher) Publish(ctx context.Context, res domain.Result) (string, error) {
	body, err := res.Encode()
	if err != nil {
		return "", fmt.Errorf("failed to encode result for %s: %w", res.AudioID, err)
	}

	var lastErr error
	for attempt := 0; attempt <= p.opts.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(p.opts.Backoff):
			}
		}

		id, err := p.send(ctx, body)
		if err == nil {
			slog.Info("Result published", "audioID", res.AudioID, "status", res.Status, "topic", p.opts.Topic, "msgID", id)
			return id, nil
		}
		lastErr = err
		slog.Warn("Result publish failed", "audioID", res.AudioID, "attempt", attempt+1, "error", err)
	}
	return "", fmt.Errorf("failed to publish result for %s: %w", res.AudioID, lastErr)
}

func (p *Publisher) send(ctx context.Context, body []byte) (string, error) {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}
	return p.transport.Publish(ctx, p.opts.Topic, body, p.opts.Tag)
}
