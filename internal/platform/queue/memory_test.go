package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dontdude/goscribe/internal/domain"
)

func recv(t *testing.T, ch <-chan domain.Message) domain.Message {
	t.Helper()
	select {
	case m, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return domain.Message{}
}

func TestMemoryNotConnected(t *testing.T) {
	m := NewMemoryTransport()
	_, err := m.Publish(context.Background(), "t", []byte("x"), "")
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("Publish() error = %v, want ErrNotConnected", err)
	}
	if _, err := m.Subscribe(context.Background(), "t", "g", ""); !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("Subscribe() error = %v, want ErrNotConnected", err)
	}
	if st, _ := m.HealthCheck(context.Background()); st != domain.HealthNotServing {
		t.Fatalf("health = %s, want NOT_SERVING", st)
	}
}

func TestMemoryBacklogReachesFirstGroup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewMemoryTransport()
	if err := m.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	id, err := m.Publish(ctx, "jobs", []byte(`{"id":"a1"}`), "tag_a")
	if err != nil || id == "" {
		t.Fatalf("Publish() = %q, %v", id, err)
	}

	ch, err := m.Subscribe(ctx, "jobs", "g", "")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	got := recv(t, ch)
	if got.ID != id || string(got.Body) != `{"id":"a1"}` || got.Tag != "tag_a" {
		t.Fatalf("message = %+v", got)
	}
	if err := got.Ack(ctx); err != nil {
		t.Fatalf("Ack() error = %v", err)
	}
}

func TestMemoryTagFilter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewMemoryTransport()
	_ = m.Connect(ctx)

	ch, err := m.Subscribe(ctx, "jobs", "g", "keep")
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	_, _ = m.Publish(ctx, "jobs", []byte("1"), "drop")
	_, _ = m.Publish(ctx, "jobs", []byte("2"), "keep")

	if got := recv(t, ch); string(got.Body) != "2" {
		t.Fatalf("body = %q, want 2", got.Body)
	}
}

func TestMemoryGroupsEachSeeMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewMemoryTransport()
	_ = m.Connect(ctx)

	a, _ := m.Subscribe(ctx, "results", "ga", "")
	b, _ := m.Subscribe(ctx, "results", "gb", "")
	_, _ = m.Publish(ctx, "results", []byte("r"), "")

	if got := recv(t, a); string(got.Body) != "r" {
		t.Fatalf("group a body = %q", got.Body)
	}
	if got := recv(t, b); string(got.Body) != "r" {
		t.Fatalf("group b body = %q", got.Body)
	}
}

func TestMemoryUnsubscribeClosesChannel(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryTransport()
	_ = m.Connect(ctx)

	ch, _ := m.Subscribe(ctx, "jobs", "g", "")
	if err := m.Unsubscribe("jobs"); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("unexpected message after unsubscribe")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}
}

func TestMemoryCloseResets(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryTransport()
	_ = m.Connect(ctx)
	ch, _ := m.Subscribe(ctx, "jobs", "g", "")

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	for range ch {
	}
	if err := m.Close(); !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("second Close() error = %v, want ErrNotConnected", err)
	}
}
