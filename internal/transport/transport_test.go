package transport

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
)

type recorder struct {
	mu     sync.Mutex
	frames map[Handle][]string
	closed map[Handle]bool
	seen   chan Handle
}

func newRecorder() *recorder {
	return &recorder{
		frames: make(map[Handle][]string),
		closed: make(map[Handle]bool),
		seen:   make(chan Handle, 16),
	}
}

func (r *recorder) Frame(h Handle, data []byte) {
	r.mu.Lock()
	r.frames[h] = append(r.frames[h], string(data))
	r.mu.Unlock()
	r.seen <- h
}

func (r *recorder) Closed(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed[h] = true
}

func (r *recorder) isClosed(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed[h]
}

func (r *recorder) framesFor(h Handle) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.frames[h]...)
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func startHub(t *testing.T) (*Hub, *recorder, string) {
	t.Helper()
	events := newRecorder()
	hub := NewHub(events)
	router := httprouter.New()
	router.GET("/ws", hub.ServeWS)
	ts := newTestServer(t, router)
	t.Cleanup(ts.Close)
	t.Cleanup(hub.Shutdown)
	return hub, events, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) (*Client, *recorder) {
	t.Helper()
	events := newRecorder()
	client, err := Dial(context.Background(), url, events)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(client.Close)
	return client, events
}

func waitSeen(t *testing.T, r *recorder) Handle {
	t.Helper()
	select {
	case h := <-r.seen:
		return h
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for frame")
	}
	return ""
}

func TestClientToHubAndBack(t *testing.T) {
	hub, hostEvents, url := startHub(t)
	client, clientEvents := dial(t, url)

	if err := client.Send([]byte("hello")); err != nil {
		t.Fatalf("send: %v", err)
	}
	handle := waitSeen(t, hostEvents)
	if got := hostEvents.framesFor(handle); len(got) != 1 || got[0] != "hello" {
		t.Fatalf("host frames = %v", got)
	}

	if !hub.Send(handle, []byte("welcome")) {
		t.Fatalf("hub send failed")
	}
	if h := waitSeen(t, clientEvents); h != Upstream {
		t.Fatalf("client frame handle = %q, want %q", h, Upstream)
	}
	if got := clientEvents.framesFor(Upstream); got[0] != "welcome" {
		t.Fatalf("client frames = %v", got)
	}
}

func TestBroadcastReachesOnlyListedLinks(t *testing.T) {
	hub, hostEvents, url := startHub(t)
	first, firstEvents := dial(t, url)
	second, secondEvents := dial(t, url)

	if err := first.Send([]byte("me")); err != nil {
		t.Fatalf("send: %v", err)
	}
	waitSeen(t, hostEvents)
	if err := second.Send([]byte("me too")); err != nil {
		t.Fatalf("send: %v", err)
	}
	secondHandle := waitSeen(t, hostEvents)

	hub.Broadcast([]byte("news"), []Handle{secondHandle, "gone"})
	waitSeen(t, secondEvents)
	select {
	case <-firstEvents.seen:
		t.Fatalf("unlisted link received the broadcast")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestHubCloseNotifiesBothEnds(t *testing.T) {
	hub, hostEvents, url := startHub(t)
	client, _ := dial(t, url)
	if err := client.Send([]byte("hi")); err != nil {
		t.Fatalf("send: %v", err)
	}
	handle := waitSeen(t, hostEvents)

	hub.Close(handle)
	select {
	case <-client.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("client did not notice the close")
	}
	waitFor(t, func() bool { return hostEvents.isClosed(handle) })
	if hub.Send(handle, []byte("late")) {
		t.Fatalf("send to closed link succeeded")
	}
	if err := client.Send([]byte("late")); err == nil {
		t.Fatalf("expected error sending on closed client")
	}
}

func TestDialFailure(t *testing.T) {
	if _, err := Dial(context.Background(), "ws://127.0.0.1:1/ws", newRecorder()); err == nil {
		t.Fatalf("expected dial error")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met")
}
