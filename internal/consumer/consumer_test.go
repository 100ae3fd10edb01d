package consumer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dontdude/goscribe/internal/domain"
	"github.com/dontdude/goscribe/internal/worker"
)

// scriptedTransport hands out one prepared channel per Subscribe call.
type scriptedTransport struct {
	mu        sync.Mutex
	subErrs   []error
	chans     []chan domain.Message
	subCalls  int
	unsubbed  atomic.Bool
	published atomic.Int64
}

func (s *scriptedTransport) Connect(context.Context) error { return nil }

func (s *scriptedTransport) Publish(context.Context, string, []byte, string) (string, error) {
	s.published.Add(1)
	return "id", nil
}

func (s *scriptedTransport) Subscribe(ctx context.Context, topic, group, tags string) (<-chan domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.subCalls
	s.subCalls++
	if i < len(s.subErrs) && s.subErrs[i] != nil {
		return nil, s.subErrs[i]
	}
	if i < len(s.chans) {
		return s.chans[i], nil
	}
	return make(chan domain.Message), nil
}

func (s *scriptedTransport) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subCalls
}

func (s *scriptedTransport) Unsubscribe(string) error {
	s.unsubbed.Store(true)
	return nil
}

func (s *scriptedTransport) HealthCheck(context.Context) (domain.HealthStatus, error) {
	return domain.HealthServing, nil
}

func (s *scriptedTransport) Close() error { return nil }

type echoProcessor struct{}

func (echoProcessor) Process(_ context.Context, job domain.Job) domain.Result {
	now := time.Now()
	return domain.NewSuccess(job.AudioID, "ok", now, now)
}

type recordingPublisher struct {
	mu      sync.Mutex
	results []domain.Result
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, res domain.Result) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, res)
	return "r", p.err
}

func (p *recordingPublisher) ids() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.results))
	for _, r := range p.results {
		out = append(out, r.AudioID)
	}
	return out
}

func message(body string, acks *atomic.Int64) domain.Message {
	return domain.Message{
		Topic: "jobs",
		Body:  []byte(body),
		ID:    body,
		AckFunc: func(context.Context) error {
			acks.Add(1)
			return nil
		},
	}
}

func eventually(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func startConsumer(t *testing.T, tr domain.Transport, pub Publisher) (*Consumer, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	pool := worker.NewPool(2, 2)
	pool.Start()
	c := New(tr, pool, echoProcessor{}, pub, Options{Topic: "jobs", Group: "g", Backoff: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = pool.Stop(context.Background())
	})
	return c, cancel, done
}

func TestInvalidMessagesDropped(t *testing.T) {
	ch := make(chan domain.Message, 4)
	tr := &scriptedTransport{chans: []chan domain.Message{ch}}
	pub := &recordingPublisher{}
	startConsumer(t, tr, pub)

	var acks atomic.Int64
	ch <- message(`not json`, &acks)
	ch <- message(`{"id":"b1"}`, &acks)
	ch <- message(`{"id":"a1","filePath":"http://store/bucket/x.wav"}`, &acks)

	eventually(t, func() bool { return acks.Load() == 3 }, "three acks")
	if got := pub.ids(); len(got) != 1 || got[0] != "a1" {
		t.Fatalf("published = %v, want [a1]", got)
	}
}

func TestResubscribeAfterSubscribeError(t *testing.T) {
	ch := make(chan domain.Message, 1)
	tr := &scriptedTransport{
		subErrs: []error{&domain.TransportError{Op: "subscribe", Err: errors.New("connection refused")}},
		chans:   []chan domain.Message{nil, ch},
	}
	pub := &recordingPublisher{}
	startConsumer(t, tr, pub)

	var acks atomic.Int64
	ch <- message(`{"id":"a1","filePath":"u"}`, &acks)
	eventually(t, func() bool { return len(pub.ids()) == 1 }, "result after resubscribe")
	if tr.calls() < 2 {
		t.Fatalf("subscribe calls = %d, want >= 2", tr.calls())
	}
}

func TestResubscribeAfterStreamEnds(t *testing.T) {
	first := make(chan domain.Message, 1)
	second := make(chan domain.Message, 1)
	tr := &scriptedTransport{chans: []chan domain.Message{first, second}}
	pub := &recordingPublisher{}
	c, _, _ := startConsumer(t, tr, pub)

	var acks atomic.Int64
	first <- message(`{"id":"a1","filePath":"u"}`, &acks)
	eventually(t, func() bool { return len(pub.ids()) == 1 }, "first result")
	close(first)

	second <- message(`{"id":"a2","filePath":"u"}`, &acks)
	eventually(t, func() bool { return len(pub.ids()) == 2 }, "second result")
	eventually(t, func() bool { return c.State() != StateReconnecting }, "state after resubscribe")
}

func TestAckAfterFailedPublish(t *testing.T) {
	ch := make(chan domain.Message, 1)
	tr := &scriptedTransport{chans: []chan domain.Message{ch}}
	pub := &recordingPublisher{err: errors.New("broker down")}
	startConsumer(t, tr, pub)

	var acks atomic.Int64
	ch <- message(`{"id":"a1","filePath":"u"}`, &acks)
	eventually(t, func() bool { return acks.Load() == 1 }, "ack")
}

func TestRunUnsubscribesOnShutdown(t *testing.T) {
	tr := &scriptedTransport{}
	c, cancel, done := startConsumer(t, tr, &recordingPublisher{})
	eventually(t, func() bool { return c.State() == StateSubscribed }, "subscribed")

	cancel()
	<-done
	if !tr.unsubbed.Load() {
		t.Fatal("Unsubscribe not called on shutdown")
	}
	if c.State() != StateIdle {
		t.Fatalf("state = %s, want idle", c.State())
	}
}
