package queue

import (
	"context"
	"log/slog"

	"github.com/dontdude/goscribe/internal/domain"
	"github.com/redis/go-redis/v9"
)

// reclaim keeps this consumer's in-flight entries fresh, then takes over entries
// left pending by dead consumers and re-emits them. It returns false once ctx is done.
func (r *RedisTransport) reclaim(ctx context.Context, sub *subscription, outCh chan<- domain.Message) bool {
	sub.refresh(ctx)

	// XAUTOCLAIM: finds entries pending for > ClaimMinIdle and claims them.
	start := "0-0"
	for {
		messages, next, err := sub.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   sub.topic,
			Group:    sub.group,
			MinIdle:  r.opts.ClaimMinIdle,
			Start:    start,
			Count:    10,
			Consumer: sub.consumer,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			slog.Error("Recovery routine failed", "topic", sub.topic, "error", err)
			return true
		}

		for _, msg := range messages {
			if r.exhausted(ctx, sub, msg) {
				continue
			}
			slog.Warn("Stale job reclaimed, redelivering", "topic", sub.topic, "msgID", msg.ID)
			if !sub.deliver(ctx, msg, outCh) {
				return false
			}
		}

		if len(messages) == 0 || next == "0-0" {
			return true
		}
		start = next
	}
}

// refresh resets the idle time of entries this consumer is still working on,
// so long-running jobs are not reclaimed by other consumers.
func (s *subscription) refresh(ctx context.Context) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.inflight))
	for id := range s.inflight {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	if len(ids) == 0 {
		return
	}

	err := s.client.XClaimJustID(ctx, &redis.XClaimArgs{
		Stream:   s.topic,
		Group:    s.group,
		Consumer: s.consumer,
		MinIdle:  0,
		Messages: ids,
	}).Err()
	if err != nil && ctx.Err() == nil {
		slog.Error("Failed to refresh in-flight jobs", "topic", s.topic, "count", len(ids), "error", err)
	}
}

// exhausted moves an entry that keeps failing to "<topic>:dead" and acknowledges it.
func (r *RedisTransport) exhausted(ctx context.Context, sub *subscription, msg redis.XMessage) bool {
	if r.opts.MaxDeliveries <= 0 {
		return false
	}

	pending, err := sub.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: sub.topic,
		Group:  sub.group,
		Start:  msg.ID,
		End:    msg.ID,
		Count:  1,
	}).Result()
	if err != nil || len(pending) == 0 {
		return false
	}
	if pending[0].RetryCount <= r.opts.MaxDeliveries {
		return false
	}

	values := make(map[string]interface{}, len(msg.Values)+1)
	for k, v := range msg.Values {
		values[k] = v
	}
	values["source_id"] = msg.ID
	if err := sub.client.XAdd(ctx, &redis.XAddArgs{Stream: sub.topic + ":dead", Values: values}).Err(); err != nil {
		slog.Error("Failed to dead-letter job", "topic", sub.topic, "msgID", msg.ID, "error", err)
		return false
	}
	sub.ack(ctx, msg.ID)
	slog.Error("Job exceeded max deliveries, moved to dead letter stream",
		"topic", sub.topic, "msgID", msg.ID, "deliveries", pending[0].RetryCount)
	return true
}
