package gateway

import (
	"context"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/dontdude/goscribe/internal/domain"
	"github.com/dontdude/goscribe/proto/mqpb"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// defaultGroup is used when a subscriber does not name a consumer group.
const defaultGroup = "gateway-group"

// Stats are the gateway counters served at /stats.
type Stats struct {
	MessagesSent     int64  `json:"messages_sent"`
	MessagesReceived int64  `json:"messages_received"`
	Subscribers      int64  `json:"subscribers"`
	Errors           int64  `json:"errors"`
	Health           string `json:"health"`
}

// Server bridges the gateway RPC surface onto a direct broker transport.
type Server struct {
	mqpb.UnimplementedRocketMQGatewayServer

	backend domain.Transport
	health  *health.Server

	sent        atomic.Int64
	received    atomic.Int64
	subscribers atomic.Int64
	errs        atomic.Int64
	status      atomic.Int32
}

var _ mqpb.RocketMQGatewayServer = (*Server)(nil)

// NewServer returns a gateway server publishing to and consuming from backend.
func NewServer(backend domain.Transport) *Server {
	s := &Server{
		backend: backend,
		health:  health.NewServer(),
	}
	s.setHealth(domain.HealthNotServing)
	return s
}

// Register installs the gateway service and the standard gRPC health service on g.
func (s *Server) Register(g *grpc.Server) {
	mqpb.RegisterRocketMQGatewayServer(g, s)
	healthpb.RegisterHealthServer(g, s.health)
}

func (s *Server) SendMessage(ctx context.Context, req *mqpb.SendRequest) (*mqpb.SendResponse, error) {
	if req.Topic == "" {
		return nil, status.Error(codes.InvalidArgument, "topic cannot be empty")
	}
	if len(req.Body) == 0 {
		return nil, status.Error(codes.InvalidArgument, "message body cannot be empty")
	}

	id, err := s.backend.Publish(ctx, req.Topic, req.Body, req.Tags)
	if err != nil {
		s.errs.Add(1)
		slog.Error("Failed to send message", "topic", req.Topic, "error", err)
		return &mqpb.SendResponse{Success: false, Error: err.Error()}, nil
	}

	s.sent.Add(1)
	slog.Debug("Message sent", "topic", req.Topic, "msgID", id)
	return &mqpb.SendResponse{Success: true, MsgId: id, Result: "SEND_OK"}, nil
}

// Subscribe streams backend messages to the caller. A message is acknowledged
// to the backend once it was written to the stream.
func (s *Server) Subscribe(req *mqpb.SubscribeRequest, stream mqpb.RocketMQGateway_SubscribeServer) error {
	if req.Topic == "" {
		return status.Error(codes.InvalidArgument, "topic cannot be empty")
	}
	clientID := req.ClientId
	if clientID == "" {
		clientID = "cli-" + uuid.NewString()[:8]
	}
	group := req.ConsumerGroup
	if group == "" {
		group = defaultGroup
	}

	ctx := stream.Context()
	msgs, err := s.backend.Subscribe(ctx, req.Topic, group, req.Tags)
	if err != nil {
		s.errs.Add(1)
		slog.Error("Failed to subscribe backend", "clientID", clientID, "topic", req.Topic, "error", err)
		return status.Errorf(codes.Unavailable, "failed to subscribe: %v", err)
	}

	s.subscribers.Add(1)
	defer s.subscribers.Add(-1)
	slog.Info("Client subscribed", "clientID", clientID, "topic", req.Topic, "group", group, "tags", req.Tags)
	defer slog.Info("Client unsubscribed", "clientID", clientID, "topic", req.Topic)

	for m := range msgs {
		err := stream.Send(&mqpb.MessageResponse{Topic: m.Topic, Body: m.Body, MsgId: m.ID, Tags: m.Tag})
		if err != nil {
			// Left unacknowledged so the backend redelivers it.
			s.errs.Add(1)
			slog.Error("Failed to forward message", "clientID", clientID, "msgID", m.ID, "error", err)
			return err
		}
		if err := m.Ack(ctx); err != nil {
			slog.Error("Failed to ack forwarded message", "clientID", clientID, "msgID", m.ID, "error", err)
		}
		s.received.Add(1)
	}

	if ctx.Err() != nil {
		return nil
	}
	return status.Error(codes.Unavailable, "backend subscription closed")
}

// HealthCheck reports the last observed backend status.
func (s *Server) HealthCheck(ctx context.Context, req *mqpb.HealthCheckRequest) (*mqpb.HealthCheckResponse, error) {
	st := s.Health()
	return &mqpb.HealthCheckResponse{
		Status:  toProto(st),
		Message: "backend " + st.String(),
	}, nil
}

// RefreshHealth checks the backend and publishes the result on the health service.
func (s *Server) RefreshHealth(ctx context.Context) domain.HealthStatus {
	st, err := s.backend.HealthCheck(ctx)
	if err != nil {
		slog.Warn("Backend health check failed", "status", st, "error", err)
	}
	s.setHealth(st)
	return st
}

// WatchHealth refreshes the health status every interval until ctx is done.
func (s *Server) WatchHealth(ctx context.Context, interval time.Duration) {
	s.RefreshHealth(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RefreshHealth(ctx)
		}
	}
}

func (s *Server) setHealth(st domain.HealthStatus) {
	s.status.Store(int32(st))
	s.health.SetServingStatus(ServiceName, toStandard(st))
	s.health.SetServingStatus("", toStandard(st))
}

// Health returns the last observed backend status.
func (s *Server) Health() domain.HealthStatus {
	return domain.HealthStatus(s.status.Load())
}

// Stats returns a snapshot of the counters.
func (s *Server) Stats() Stats {
	return Stats{
		MessagesSent:     s.sent.Load(),
		MessagesReceived: s.received.Load(),
		Subscribers:      s.subscribers.Load(),
		Errors:           s.errs.Load(),
		Health:           s.Health().String(),
	}
}

// Shutdown marks every service NOT_SERVING.
func (s *Server) Shutdown() {
	s.health.Shutdown()
}

// Limiter decides whether a caller identified by key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// RateLimitInterceptor throttles SendMessage per peer host.
func RateLimitInterceptor(l Limiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if info.FullMethod != mqpb.RocketMQGateway_SendMessage_FullMethodName {
			return handler(ctx, req)
		}
		if !l.Allow(peerKey(ctx)) {
			return nil, status.Error(codes.ResourceExhausted, "too many requests")
		}
		return handler(ctx, req)
	}
}

func peerKey(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func toStandard(s domain.HealthStatus) healthpb.HealthCheckResponse_ServingStatus {
	switch s {
	case domain.HealthServing:
		return healthpb.HealthCheckResponse_SERVING
	case domain.HealthNotServing:
		return healthpb.HealthCheckResponse_NOT_SERVING
	case domain.HealthServiceUnknown:
		return healthpb.HealthCheckResponse_SERVICE_UNKNOWN
	default:
		return healthpb.HealthCheckResponse_UNKNOWN
	}
}
