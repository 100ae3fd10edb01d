package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/consumer"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/dontdude/goscribe/internal/domain"
	"github.com/google/uuid"
)

// RocketMQOptions configures the native RocketMQ client.
type RocketMQOptions struct {
	NameServer    string
	ProducerGroup string
	// Retries is the SDK-level retry count for synchronous sends.
	Retries int
}

// RocketMQTransport implements domain.Transport with the RocketMQ Go SDK.
// Reconnection is left to the SDK. One push consumer runs per topic:group and
// hands each message to one of the local subscribers; the message is
// acknowledged to the broker once a subscriber accepted it.
type RocketMQTransport struct {
	opts RocketMQOptions

	mu        sync.Mutex
	producer  rocketmq.Producer
	consumers map[string]*rocketConsumer // keyed by topic:group
}

type rocketConsumer struct {
	push  rocketmq.PushConsumer
	topic string

	mu   sync.RWMutex
	subs map[string]*rocketSub
}

type rocketSub struct {
	ctx    context.Context
	cancel context.CancelFunc
	outCh  chan domain.Message
}

var _ domain.Transport = (*RocketMQTransport)(nil)

// NewRocketMQTransport returns an unconnected RocketMQ transport.
func NewRocketMQTransport(opts RocketMQOptions) *RocketMQTransport {
	if opts.Retries <= 0 {
		opts.Retries = 2
	}
	return &RocketMQTransport{
		opts:      opts,
		consumers: make(map[string]*rocketConsumer),
	}
}

// Connect starts the producer.
func (t *RocketMQTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.producer != nil {
		return nil
	}

	slog.Info("Initializing RocketMQ producer", "nameserver", t.opts.NameServer, "group", t.opts.ProducerGroup)
	p, err := rocketmq.NewProducer(
		producer.WithNameServer([]string{t.opts.NameServer}),
		producer.WithGroupName(t.opts.ProducerGroup),
		producer.WithRetry(t.opts.Retries),
	)
	if err != nil {
		return &domain.TransportError{Op: "connect", Err: fmt.Errorf("failed to create producer: %w", err)}
	}
	if err := p.Start(); err != nil {
		return &domain.TransportError{Op: "connect", Err: fmt.Errorf("failed to start producer: %w", err)}
	}

	t.producer = p
	return nil
}

// Publish sends synchronously and returns the broker message id.
func (t *RocketMQTransport) Publish(ctx context.Context, topic string, body []byte, tag string) (string, error) {
	t.mu.Lock()
	p := t.producer
	t.mu.Unlock()
	if p == nil {
		return "", &domain.TransportError{Op: "publish", Err: domain.ErrNotConnected}
	}

	msg := primitive.NewMessage(topic, body)
	if tag != "" {
		msg.WithTag(tag)
	}
	res, err := p.SendSync(ctx, msg)
	if err != nil {
		return "", &domain.TransportError{Op: "publish", Err: fmt.Errorf("failed to send message: %w", err)}
	}
	if res.Status != primitive.SendOK {
		return "", &domain.TransportError{Op: "publish", Err: fmt.Errorf("broker rejected message: %s", res.String())}
	}
	return res.MsgID, nil
}

// selectorFor converts a tag expression into a broker-side selector.
func selectorFor(tags string) consumer.MessageSelector {
	if f := parseTags(tags); f != nil {
		parts := make([]string, 0, len(f))
		for _, part := range strings.Split(tags, "||") {
			if tag := strings.TrimSpace(part); tag != "" {
				parts = append(parts, tag)
			}
		}
		return consumer.MessageSelector{Type: consumer.TAG, Expression: strings.Join(parts, " || ")}
	}
	return consumer.MessageSelector{}
}

// Subscribe registers a local subscriber, starting the push consumer for
// topic:group if it is not running yet. Tags are fixed by the first subscriber.
func (t *RocketMQTransport) Subscribe(ctx context.Context, topic, group, tags string) (<-chan domain.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.producer == nil {
		return nil, &domain.TransportError{Op: "subscribe", Err: domain.ErrNotConnected}
	}

	key := topic + ":" + group
	rc, ok := t.consumers[key]
	if !ok {
		var err error
		rc, err = t.startConsumer(topic, group, tags)
		if err != nil {
			return nil, &domain.TransportError{Op: "subscribe", Err: err}
		}
		t.consumers[key] = rc
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &rocketSub{ctx: subCtx, cancel: cancel, outCh: make(chan domain.Message)}
	id := uuid.NewString()
	rc.mu.Lock()
	rc.subs[id] = sub
	rc.mu.Unlock()

	go func() {
		<-subCtx.Done()
		rc.mu.Lock()
		delete(rc.subs, id)
		close(sub.outCh)
		rc.mu.Unlock()
	}()

	return sub.outCh, nil
}

func (t *RocketMQTransport) startConsumer(topic, group, tags string) (*rocketConsumer, error) {
	slog.Info("Starting RocketMQ consumer", "topic", topic, "group", group, "tags", tags)

	push, err := rocketmq.NewPushConsumer(
		consumer.WithGroupName(group),
		consumer.WithNameServer([]string{t.opts.NameServer}),
		consumer.WithConsumeFromWhere(consumer.ConsumeFromLastOffset),
		consumer.WithConsumerModel(consumer.Clustering),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	rc := &rocketConsumer{push: push, topic: topic, subs: make(map[string]*rocketSub)}
	err = push.Subscribe(topic, selectorFor(tags), func(ctx context.Context, msgs ...*primitive.MessageExt) (consumer.ConsumeResult, error) {
		for _, msg := range msgs {
			m := domain.Message{
				Topic: msg.Topic,
				Body:  msg.Body,
				ID:    msg.MsgId,
				Tag:   msg.GetTags(),
			}
			if !rc.dispatch(ctx, m) {
				// Nobody took it; let the broker redeliver.
				return consumer.ConsumeRetryLater, nil
			}
		}
		return consumer.ConsumeSuccess, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}
	if err := push.Start(); err != nil {
		return nil, fmt.Errorf("failed to start consumer: %w", err)
	}
	return rc, nil
}

// dispatch hands m to the first local subscriber that accepts it.
func (rc *rocketConsumer) dispatch(ctx context.Context, m domain.Message) bool {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	for _, sub := range rc.subs {
		select {
		case sub.outCh <- m:
			return true
		case <-sub.ctx.Done():
		case <-ctx.Done():
			return false
		}
	}
	return false
}

// Unsubscribe shuts down every consumer on topic and ends its subscriptions.
func (t *RocketMQTransport) Unsubscribe(topic string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.producer == nil {
		return &domain.TransportError{Op: "unsubscribe", Err: domain.ErrNotConnected}
	}

	for key, rc := range t.consumers {
		if rc.topic != topic {
			continue
		}
		if err := rc.shutdown(); err != nil {
			slog.Error("Error shutting down consumer", "consumer", key, "error", err)
		}
		delete(t.consumers, key)
	}
	return nil
}

func (rc *rocketConsumer) shutdown() error {
	rc.mu.RLock()
	for _, sub := range rc.subs {
		sub.cancel()
	}
	rc.mu.RUnlock()
	if err := rc.push.Unsubscribe(rc.topic); err != nil {
		slog.Warn("RocketMQ unsubscribe failed", "topic", rc.topic, "error", err)
	}
	return rc.push.Shutdown()
}

// HealthCheck reports SERVING while the producer is running.
// The SDK does not expose a cheap broker ping.
func (t *RocketMQTransport) HealthCheck(ctx context.Context) (domain.HealthStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.producer == nil {
		return domain.HealthNotServing, &domain.TransportError{Op: "health", Err: domain.ErrNotConnected}
	}
	return domain.HealthServing, nil
}

// Close shuts down all consumers and the producer.
func (t *RocketMQTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.producer == nil {
		return fmt.Errorf("close: %w", domain.ErrNotConnected)
	}

	slog.Info("Shutting down RocketMQ consumers", "count", len(t.consumers))
	for key, rc := range t.consumers {
		if err := rc.shutdown(); err != nil {
			slog.Error("Error shutting down consumer", "consumer", key, "error", err)
		}
	}
	t.consumers = make(map[string]*rocketConsumer)

	err := t.producer.Shutdown()
	t.producer = nil
	if err != nil {
		return fmt.Errorf("failed to shut down producer: %w", err)
	}
	return nil
}
