package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dontdude/goscribe/internal/domain"
	"github.com/google/uuid"
)

// memoryGroupBuffer bounds the per-group backlog of the in-process broker.
const memoryGroupBuffer = 1024

// MemoryTransport is an in-process broker with consumer-group semantics.
// Every group sees each message once; subscribers of one group compete.
// Messages published before any group exists are kept for the first group.
type MemoryTransport struct {
	mu        sync.Mutex
	connected bool
	topics    map[string]*memoryTopic
}

type memoryTopic struct {
	backlog []domain.Message
	groups  map[string]chan domain.Message
	cancels map[string]context.CancelFunc
}

var _ domain.Transport = (*MemoryTransport)(nil)

// NewMemoryTransport returns an unconnected in-process transport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{topics: make(map[string]*memoryTopic)}
}

func (m *MemoryTransport) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

func (m *MemoryTransport) topic(name string) *memoryTopic {
	t, ok := m.topics[name]
	if !ok {
		t = &memoryTopic{
			groups:  make(map[string]chan domain.Message),
			cancels: make(map[string]context.CancelFunc),
		}
		m.topics[name] = t
	}
	return t
}

// Publish fans the message out to every group of topic.
func (m *MemoryTransport) Publish(ctx context.Context, topic string, body []byte, tag string) (string, error) {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return "", &domain.TransportError{Op: "publish", Err: domain.ErrNotConnected}
	}
	msg := domain.Message{
		Topic: topic,
		Body:  append([]byte(nil), body...),
		ID:    uuid.NewString(),
		Tag:   tag,
	}
	t := m.topic(topic)
	if len(t.groups) == 0 {
		t.backlog = append(t.backlog, msg)
		m.mu.Unlock()
		return msg.ID, nil
	}
	queues := make([]chan domain.Message, 0, len(t.groups))
	for _, q := range t.groups {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	for _, q := range queues {
		select {
		case q <- msg:
		case <-ctx.Done():
			return "", &domain.TransportError{Op: "publish", Err: ctx.Err()}
		}
	}
	return msg.ID, nil
}

// Subscribe attaches a competing consumer to group on topic.
func (m *MemoryTransport) Subscribe(ctx context.Context, topic, group, tags string) (<-chan domain.Message, error) {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil, &domain.TransportError{Op: "subscribe", Err: domain.ErrNotConnected}
	}
	t := m.topic(topic)
	q, ok := t.groups[group]
	if !ok {
		q = make(chan domain.Message, memoryGroupBuffer)
		for _, msg := range t.backlog {
			select {
			case q <- msg:
			default:
				slog.Warn("Memory broker backlog overflow, message dropped", "topic", topic, "msgID", msg.ID)
			}
		}
		t.backlog = nil
		t.groups[group] = q
	}
	subCtx, cancel := context.WithCancel(ctx)
	subID := uuid.NewString()
	t.cancels[subID] = cancel
	m.mu.Unlock()

	filter := parseTags(tags)
	outCh := make(chan domain.Message)
	go func() {
		defer close(outCh)
		defer func() {
			m.mu.Lock()
			delete(t.cancels, subID)
			m.mu.Unlock()
			cancel()
		}()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg := <-q:
				if !filter.match(msg.Tag) {
					continue
				}
				select {
				case outCh <- msg:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()
	return outCh, nil
}

func (m *MemoryTransport) Unsubscribe(topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return &domain.TransportError{Op: "unsubscribe", Err: domain.ErrNotConnected}
	}
	t, ok := m.topics[topic]
	if !ok {
		return nil
	}
	for id, cancel := range t.cancels {
		cancel()
		delete(t.cancels, id)
	}
	return nil
}

func (m *MemoryTransport) HealthCheck(ctx context.Context) (domain.HealthStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return domain.HealthNotServing, &domain.TransportError{Op: "health", Err: domain.ErrNotConnected}
	}
	return domain.HealthServing, nil
}

// Close cancels every subscription. Queued messages are discarded.
func (m *MemoryTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return fmt.Errorf("close: %w", domain.ErrNotConnected)
	}
	for _, t := range m.topics {
		for _, cancel := range t.cancels {
			cancel()
		}
	}
	m.topics = make(map[string]*memoryTopic)
	m.connected = false
	return nil
}
