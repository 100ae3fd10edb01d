package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dontdude/goscribe/internal/domain"
	"github.com/dontdude/goscribe/internal/platform/queue"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, hub *Hub, health domain.HealthStatus) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rl, _ := newTestLimiter(t, 100, 100)
	router := NewRouter(
		func() domain.HealthStatus { return health },
		func() any { return map[string]int{"messages_sent": 3} },
		hub, rl,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	for st, want := range map[domain.HealthStatus]int{
		domain.HealthServing:    http.StatusOK,
		domain.HealthNotServing: http.StatusServiceUnavailable,
	} {
		srv := newTestServer(t, NewHub(domain.ResultTag, 0), st)
		resp, err := http.Get(srv.URL + "/healthz")
		if err != nil {
			t.Fatalf("GET /healthz: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Fatalf("status %s code = %d, want %d", st, resp.StatusCode, want)
		}
	}
}

func TestWSRequiresAudioID(t *testing.T) {
	srv := newTestServer(t, NewHub(domain.ResultTag, 0), domain.HealthServing)
	resp, err := http.Get(srv.URL + "/api/ws")
	if err != nil {
		t.Fatalf("GET /api/ws: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", resp.StatusCode)
	}
}

// watch dials /api/ws for audioID and waits until the hub registered it.
func watch(t *testing.T, hub *Hub, audioID string) *websocket.Conn {
	t.Helper()
	srv := newTestServer(t, hub, domain.HealthServing)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?audio_id=" + audioID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.Watchers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("watcher never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
	return conn
}

func readResult(t *testing.T, conn *websocket.Conn) domain.Result {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, body, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	res, err := domain.DecodeResult(body)
	if err != nil {
		t.Fatalf("DecodeResult() error = %v", err)
	}
	return res
}

func TestHubForwardsResultToWatcher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport := queue.NewMemoryTransport()
	if err := transport.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	hub := NewHub(domain.ResultTag, 10*time.Millisecond)
	go hub.Run(ctx, transport, "results", "watch")
	conn := watch(t, hub, "a1")

	now := time.Now()
	other, _ := domain.NewSuccess("a2", "nope", now, now).Encode()
	mine, _ := domain.NewSuccess("a1", "你好", now, now).Encode()
	if _, err := transport.Publish(ctx, "results", other, domain.ResultTag); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := transport.Publish(ctx, "results", mine, domain.ResultTag); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if res := readResult(t, conn); res.AudioID != "a1" || res.Text != "你好" {
		t.Fatalf("result = %+v", res)
	}
}

// droppingTransport fails the first Subscribe, closes the second stream at once
// and delegates afterwards.
type droppingTransport struct {
	*queue.MemoryTransport

	mu    sync.Mutex
	calls int
	tags  []string
}

func (d *droppingTransport) Subscribe(ctx context.Context, topic, group, tags string) (<-chan domain.Message, error) {
	d.mu.Lock()
	d.calls++
	n := d.calls
	d.tags = append(d.tags, tags)
	d.mu.Unlock()

	switch n {
	case 1:
		return nil, &domain.TransportError{Op: "subscribe", Err: errors.New("connection refused")}
	case 2:
		ch := make(chan domain.Message)
		close(ch)
		return ch, nil
	}
	return d.MemoryTransport.Subscribe(ctx, topic, group, tags)
}

func (d *droppingTransport) seen() (int, []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls, append([]string(nil), d.tags...)
}

func TestHubResubscribesWithConfiguredTag(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := queue.NewMemoryTransport()
	if err := mem.Connect(ctx); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	transport := &droppingTransport{MemoryTransport: mem}
	hub := NewHub("tag_custom_result", 10*time.Millisecond)
	go hub.Run(ctx, transport, "results", "watch")
	conn := watch(t, hub, "a1")

	deadline := time.Now().Add(2 * time.Second)
	for {
		if n, _ := transport.seen(); n >= 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("hub never re-subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	now := time.Now()
	wrongTag, _ := domain.NewSuccess("a1", "wrong tag", now, now).Encode()
	mine, _ := domain.NewSuccess("a1", "right tag", now, now).Encode()
	if _, err := mem.Publish(ctx, "results", wrongTag, domain.ResultTag); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := mem.Publish(ctx, "results", mine, "tag_custom_result"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if res := readResult(t, conn); res.Text != "right tag" {
		t.Fatalf("result = %+v", res)
	}
	_, tags := transport.seen()
	for _, tag := range tags {
		if tag != "tag_custom_result" {
			t.Fatalf("subscribed with tags %q, want tag_custom_result", tag)
		}
	}
}
