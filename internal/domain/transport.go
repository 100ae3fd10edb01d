package domain

import "context"

// Message is one inbound delivery from a broker subscription.
type Message struct {
	Topic string
	Body  []byte
	ID    string
	Tag   string

	// AckFunc confirms the delivery to the broker. Transports that acknowledge on
	// hand-off leave it nil.
	AckFunc func(ctx context.Context) error `json:"-"`
}

// Ack confirms the message. It is a no-op for auto-acknowledged deliveries.
func (m Message) Ack(ctx context.Context) error {
	if m.AckFunc == nil {
		return nil
	}
	return m.AckFunc(ctx)
}

// HealthStatus mirrors the serving states of the gRPC health protocol.
type HealthStatus int

const (
	HealthUnknown HealthStatus = iota
	HealthServing
	HealthNotServing
	HealthServiceUnknown
)

func (s HealthStatus) String() string {
	switch s {
	case HealthServing:
		return "SERVING"
	case HealthNotServing:
		return "NOT_SERVING"
	case HealthServiceUnknown:
		return "SERVICE_UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// Transport defines the contract for a message broker connection.
// It decouples the pipeline from the broker that carries jobs and results
// (Redis Streams, RocketMQ, or the gRPC gateway sidecar).
type Transport interface {
	// Connect opens the session. Calling it on a connected transport is a no-op.
	Connect(ctx context.Context) error

	// Publish sends body to topic with the given tag and returns the broker message id.
	Publish(ctx context.Context, topic string, body []byte, tag string) (string, error)

	// Subscribe returns a channel that streams messages from topic for the consumer
	// group, filtered by a tag expression ("" or "*" for all, "a || b" for several).
	// The channel stays open across transient broker errors and is closed only when
	// ctx is done, the topic is unsubscribed, or the transport is closed.
	Subscribe(ctx context.Context, topic, group, tags string) (<-chan Message, error)

	// Unsubscribe stops every active subscription on topic.
	Unsubscribe(topic string) error

	// HealthCheck reports the broker's serving state on a best-effort basis.
	HealthCheck(ctx context.Context) (HealthStatus, error)

	// Close releases the session. All later calls fail with ErrNotConnected.
	Close() error
}
