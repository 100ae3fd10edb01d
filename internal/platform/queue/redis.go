package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dontdude/goscribe/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Stream entry fields.
const (
	fieldBody = "body"
	fieldTag  = "tag"
)

// RedisOptions tunes reads and pending-entry recovery.
type RedisOptions struct {
	// Block is how long one XREADGROUP waits before re-checking the context.
	Block time.Duration
	// ClaimInterval is how often stale pending entries are reclaimed. Zero disables recovery.
	ClaimInterval time.Duration
	// ClaimMinIdle is how long an entry must sit unacknowledged before it is reclaimed.
	ClaimMinIdle time.Duration
	// MaxDeliveries moves an entry to "<topic>:dead" once it was delivered more often.
	MaxDeliveries int64
	// MaxLen caps each stream approximately on XADD. Zero leaves streams unbounded.
	MaxLen int64
}

// RedisTransport implements domain.Transport using Redis Streams.
// A topic is a stream; a consumer group is a stream consumer group.
type RedisTransport struct {
	addr string
	opts RedisOptions

	mu     sync.Mutex
	client *redis.Client
	subs   map[string]map[string]context.CancelFunc // topic -> consumer -> cancel
}

// Ensure RedisTransport satisfies the interface
var _ domain.Transport = (*RedisTransport)(nil)

// NewRedisTransport returns an unconnected Redis-backed transport.
func NewRedisTransport(addr string, opts RedisOptions) *RedisTransport {
	if opts.Block <= 0 {
		opts.Block = 2 * time.Second
	}
	return &RedisTransport{
		addr: addr,
		opts: opts,
		subs: make(map[string]map[string]context.CancelFunc),
	}
}

// Connect dials Redis and verifies the connection with PING.
func (r *RedisTransport) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: r.addr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return &domain.TransportError{Op: "connect", Err: fmt.Errorf("failed to connect to redis at %s: %w", r.addr, err)}
	}

	r.client = rdb
	slog.Info("Redis transport connected", "addr", r.addr)
	return nil
}

func (r *RedisTransport) conn() (*redis.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil, domain.ErrNotConnected
	}
	return r.client, nil
}

// Publish appends the message to the topic stream using XADD.
func (r *RedisTransport) Publish(ctx context.Context, topic string, body []byte, tag string) (string, error) {
	client, err := r.conn()
	if err != nil {
		return "", &domain.TransportError{Op: "publish", Err: err}
	}

	// "*" lets Redis generate a timestamp-based ID.
	args := &redis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{
			fieldBody: body,
			fieldTag:  tag,
		},
	}
	if r.opts.MaxLen > 0 {
		args.MaxLen = r.opts.MaxLen
		args.Approx = true
	}
	id, err := client.XAdd(ctx, args).Result()
	if err != nil {
		return "", &domain.TransportError{Op: "publish", Err: fmt.Errorf("redis XADD %s failed: %w", topic, err)}
	}
	return id, nil
}

// subscription is one consumer inside a group.
type subscription struct {
	client   *redis.Client
	topic    string
	group    string
	consumer string
	filter   tagFilter

	mu       sync.Mutex
	inflight map[string]struct{}
}

// Subscribe returns a channel of messages read with XREADGROUP.
// Messages stay pending until Message.Ack issues XACK.
func (r *RedisTransport) Subscribe(ctx context.Context, topic, group, tags string) (<-chan domain.Message, error) {
	client, err := r.conn()
	if err != nil {
		return nil, &domain.TransportError{Op: "subscribe", Err: err}
	}

	// 1. Ensure the Consumer Group exists.
	// Starting at "0" hands a brand new group every job already queued on the stream.
	if err := client.XGroupCreateMkStream(ctx, topic, group, "0").Err(); err != nil {
		if !strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return nil, &domain.TransportError{Op: "subscribe", Err: fmt.Errorf("failed to create consumer group: %w", err)}
		}
	}

	sub := &subscription{
		client:   client,
		topic:    topic,
		group:    group,
		consumer: consumerName(),
		filter:   parseTags(tags),
		inflight: make(map[string]struct{}),
	}

	subCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	if r.subs[topic] == nil {
		r.subs[topic] = make(map[string]context.CancelFunc)
	}
	r.subs[topic][sub.consumer] = cancel
	r.mu.Unlock()

	// 2. Spawn a background listener
	outCh := make(chan domain.Message)
	go func() {
		defer close(outCh)
		defer r.forget(topic, sub.consumer)
		r.consume(subCtx, sub, outCh)
	}()

	slog.Info("Subscribed to redis stream", "topic", topic, "group", group, "consumer", sub.consumer)
	return outCh, nil
}

func (r *RedisTransport) consume(ctx context.Context, sub *subscription, outCh chan<- domain.Message) {
	var claimC <-chan time.Time
	if r.opts.ClaimInterval > 0 {
		ticker := time.NewTicker(r.opts.ClaimInterval)
		defer ticker.Stop()
		claimC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-claimC:
			if !r.reclaim(ctx, sub, outCh) {
				return
			}
		default:
			// XREADGROUP blocks until a message is available or Block elapses.
			streams, err := sub.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    sub.group,
				Consumer: sub.consumer,
				Streams:  []string{sub.topic, ">"}, // ">" means new messages
				Count:    10,
				Block:    r.opts.Block,
			}).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue // Timeout, retry
				}
				if ctx.Err() != nil {
					return
				}
				// go-redis redials on its own; back off so a dead server is not hammered.
				slog.Error("Redis read error", "topic", sub.topic, "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}

			for _, stream := range streams {
				for _, msg := range stream.Messages {
					if !sub.deliver(ctx, msg, outCh) {
						return
					}
				}
			}
		}
	}
}

// deliver forwards one stream entry. Entries that are malformed or excluded by
// the tag filter are acknowledged and skipped. It returns false once ctx is done.
func (s *subscription) deliver(ctx context.Context, msg redis.XMessage, outCh chan<- domain.Message) bool {
	body, ok := msg.Values[fieldBody].(string)
	if !ok {
		slog.Error("Invalid message format, dropping", "topic", s.topic, "msgID", msg.ID)
		s.ack(ctx, msg.ID)
		return true
	}
	tag, _ := msg.Values[fieldTag].(string)
	if !s.filter.match(tag) {
		s.ack(ctx, msg.ID)
		return true
	}

	s.mu.Lock()
	s.inflight[msg.ID] = struct{}{}
	s.mu.Unlock()

	id := msg.ID
	m := domain.Message{
		Topic: s.topic,
		Body:  []byte(body),
		ID:    id,
		Tag:   tag,
		AckFunc: func(ctx context.Context) error {
			return s.ack(ctx, id)
		},
	}

	select {
	case outCh <- m:
		return true
	case <-ctx.Done():
		return false
	}
}

// ack confirms processing using XACK.
func (s *subscription) ack(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()

	if err := s.client.XAck(ctx, s.topic, s.group, id).Err(); err != nil {
		slog.Error("Redis XACK failed", "topic", s.topic, "msgID", id, "error", err)
		return &domain.TransportError{Op: "ack", Err: err}
	}
	return nil
}

func (r *RedisTransport) forget(topic, consumer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.subs[topic]; ok {
		if cancel, ok := m[consumer]; ok {
			cancel()
			delete(m, consumer)
		}
		if len(m) == 0 {
			delete(r.subs, topic)
		}
	}
}

// Unsubscribe stops every local consumer on topic. The group itself is kept.
func (r *RedisTransport) Unsubscribe(topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return &domain.TransportError{Op: "unsubscribe", Err: domain.ErrNotConnected}
	}
	for _, cancel := range r.subs[topic] {
		cancel()
	}
	return nil
}

func (r *RedisTransport) HealthCheck(ctx context.Context) (domain.HealthStatus, error) {
	client, err := r.conn()
	if err != nil {
		return domain.HealthNotServing, &domain.TransportError{Op: "health", Err: err}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return domain.HealthNotServing, &domain.TransportError{Op: "health", Err: err}
	}
	return domain.HealthServing, nil
}

// Close stops all subscriptions and closes the client.
func (r *RedisTransport) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return fmt.Errorf("close: %w", domain.ErrNotConnected)
	}
	for _, m := range r.subs {
		for _, cancel := range m {
			cancel()
		}
	}
	err := r.client.Close()
	r.client = nil
	return err
}

// consumerName generates a unique consumer name (e.g. hostname-1a2b3c4d).
func consumerName() string {
	host, _ := os.Hostname()
	if host == "" {
		host = "consumer"
	}
	return host + "-" + uuid.NewString()[:8]
}
