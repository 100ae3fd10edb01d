// Package gateway speaks the mq.RocketMQGateway RPC surface: Client is a
// domain.Transport backed by a remote gateway, Server bridges the surface onto
// a direct transport.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dontdude/goscribe/internal/domain"
	"github.com/dontdude/goscribe/proto/mqpb"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DefaultReconnectBackoff is the wait between a failed subscribe stream and the next attempt.
const DefaultReconnectBackoff = 5 * time.Second

// ServiceName is the fully qualified gateway service, also used as the health service key.
var ServiceName = mqpb.RocketMQGateway_ServiceDesc.ServiceName

// Client implements domain.Transport by talking to the gateway sidecar.
// A subscription survives stream failures: the client waits the backoff and
// re-subscribes with the same parameters until the subscription is cancelled.
type Client struct {
	target   string
	backoff  time.Duration
	dialOpts []grpc.DialOption

	mu   sync.Mutex
	conn *grpc.ClientConn
	stub mqpb.RocketMQGatewayClient
	subs map[string]map[string]context.CancelFunc // topic -> subscription -> cancel
}

var _ domain.Transport = (*Client)(nil)

// NewClient returns an unconnected gateway client for target.
func NewClient(target string, backoff time.Duration, opts ...grpc.DialOption) *Client {
	if backoff <= 0 {
		backoff = DefaultReconnectBackoff
	}
	return &Client{
		target:   target,
		backoff:  backoff,
		dialOpts: opts,
		subs:     make(map[string]map[string]context.CancelFunc),
	}
}

// Connect creates the gRPC channel. The channel dials lazily and reconnects on its own.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}

	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, c.dialOpts...)
	conn, err := grpc.NewClient(c.target, opts...)
	if err != nil {
		return &domain.TransportError{Op: "connect", Err: fmt.Errorf("failed to create gateway client for %s: %w", c.target, err)}
	}
	c.conn = conn
	c.stub = mqpb.NewRocketMQGatewayClient(conn)
	slog.Info("Gateway client ready", "target", c.target)
	return nil
}

func (c *Client) client() (mqpb.RocketMQGatewayClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, domain.ErrNotConnected
	}
	return c.stub, nil
}

// Publish calls SendMessage and returns the broker message id.
func (c *Client) Publish(ctx context.Context, topic string, body []byte, tag string) (string, error) {
	stub, err := c.client()
	if err != nil {
		return "", &domain.TransportError{Op: "publish", Err: err}
	}

	resp, err := stub.SendMessage(ctx, &mqpb.SendRequest{Topic: topic, Body: body, Tags: tag})
	if err != nil {
		return "", &domain.TransportError{Op: "publish", Err: err}
	}
	// Older gateways only fill result and report failures as RPC errors.
	if !resp.GetSuccess() && resp.GetResult() == "" {
		return "", &domain.TransportError{Op: "publish", Err: fmt.Errorf("gateway rejected message: %s", resp.GetError())}
	}
	if id := resp.GetMsgId(); id != "" {
		return id, nil
	}
	return resp.GetResult(), nil
}

// Subscribe opens a Subscribe stream and keeps it alive until ctx is done,
// Unsubscribe is called for topic, or the client is closed.
func (c *Client) Subscribe(ctx context.Context, topic, group, tags string) (<-chan domain.Message, error) {
	id := uuid.NewString()
	subCtx, cancel := context.WithCancel(ctx)

	// The conn check and the registration share one critical section so a
	// concurrent Close either sees this subscription or rejects it.
	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		cancel()
		return nil, &domain.TransportError{Op: "subscribe", Err: domain.ErrNotConnected}
	}
	stub := c.stub
	if c.subs[topic] == nil {
		c.subs[topic] = make(map[string]context.CancelFunc)
	}
	c.subs[topic][id] = cancel
	c.mu.Unlock()

	req := &mqpb.SubscribeRequest{Topic: topic, ConsumerGroup: group, Tags: tags, ClientId: id}
	outCh := make(chan domain.Message)
	go func() {
		defer close(outCh)
		defer c.forget(topic, id)
		for {
			err := c.stream(subCtx, stub, req, outCh)
			if subCtx.Err() != nil {
				return
			}
			slog.Error("Gateway subscription failed, reconnecting",
				"topic", topic, "group", group, "error", err, "backoff", c.backoff)
			select {
			case <-subCtx.Done():
				return
			case <-time.After(c.backoff):
			}
		}
	}()

	return outCh, nil
}

// stream runs one Subscribe call until it fails or ctx is done.
func (c *Client) stream(ctx context.Context, stub mqpb.RocketMQGatewayClient, req *mqpb.SubscribeRequest, outCh chan<- domain.Message) error {
	stream, err := stub.Subscribe(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	slog.Info("Gateway stream open", "topic", req.Topic, "group", req.ConsumerGroup, "clientID", req.ClientId)

	for {
		m, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("stream closed by gateway")
			}
			return err
		}
		select {
		case outCh <- domain.Message{Topic: m.GetTopic(), Body: m.GetBody(), ID: m.GetMsgId(), Tag: m.GetTags()}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) forget(topic, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.subs[topic]; ok {
		if cancel, ok := m[id]; ok {
			cancel()
			delete(m, id)
		}
		if len(m) == 0 {
			delete(c.subs, topic)
		}
	}
}

// Unsubscribe cancels every subscription on topic.
func (c *Client) Unsubscribe(topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return &domain.TransportError{Op: "unsubscribe", Err: domain.ErrNotConnected}
	}
	for _, cancel := range c.subs[topic] {
		cancel()
	}
	return nil
}

// HealthCheck calls the gateway's HealthCheck RPC.
func (c *Client) HealthCheck(ctx context.Context) (domain.HealthStatus, error) {
	stub, err := c.client()
	if err != nil {
		return domain.HealthNotServing, &domain.TransportError{Op: "health", Err: err}
	}

	resp, err := stub.HealthCheck(ctx, &mqpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return domain.HealthNotServing, &domain.TransportError{Op: "health", Err: err}
	}
	return fromProto(resp.GetStatus()), nil
}

// Close cancels all subscriptions and closes the channel.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("close: %w", domain.ErrNotConnected)
	}
	for _, m := range c.subs {
		for _, cancel := range m {
			cancel()
		}
	}
	err := c.conn.Close()
	c.conn = nil
	c.stub = nil
	return err
}

func fromProto(s mqpb.HealthCheckResponse_ServingStatus) domain.HealthStatus {
	switch s {
	case mqpb.HealthCheckResponse_SERVING:
		return domain.HealthServing
	case mqpb.HealthCheckResponse_NOT_SERVING:
		return domain.HealthNotServing
	case mqpb.HealthCheckResponse_SERVICE_UNKNOWN:
		return domain.HealthServiceUnknown
	default:
		return domain.HealthUnknown
	}
}

func toProto(s domain.HealthStatus) mqpb.HealthCheckResponse_ServingStatus {
	switch s {
	case domain.HealthServing:
		return mqpb.HealthCheckResponse_SERVING
	case domain.HealthNotServing:
		return mqpb.HealthCheckResponse_NOT_SERVING
	case domain.HealthServiceUnknown:
		return mqpb.HealthCheckResponse_SERVICE_UNKNOWN
	default:
		return mqpb.HealthCheckResponse_UNKNOWN
	}
}
