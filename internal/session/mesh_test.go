package session

import (
	"sync"
	"testing"
	"time"

	"wavelength/internal/random"
)

const upstream Handle = "upstream"

type packet struct {
	to     string
	from   Handle
	msg    Message
	closed bool
}

// mesh is an in-memory star network. Deliveries are queued and pumped by
// the test goroutine, and every message crosses the JSON codec.
type mesh struct {
	t     *testing.T
	host  string
	mu    sync.Mutex
	queue []packet
	nodes map[string]*Session
	order []string
}

type port struct {
	m     *mesh
	owner string
}

func (p port) Send(to Handle, msg Message) {
	if p.owner == p.m.host {
		p.m.enqueue(string(to), upstream, msg)
		return
	}
	p.m.enqueue(p.m.host, Handle(p.owner), msg)
}

func (p port) Broadcast(msg Message, to []Handle) {
	for _, h := range to {
		p.m.enqueue(string(h), upstream, msg)
	}
}

func (p port) Disconnect(h Handle) {
	p.m.cut(string(h))
}

func (m *mesh) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

func (m *mesh) enqueue(to string, from Handle, msg Message) {
	raw, err := Encode(msg)
	if err != nil {
		m.t.Fatalf("encode %s: %v", msg.Kind(), err)
	}
	decoded, err := Decode(raw)
	if err != nil {
		m.t.Fatalf("decode %s: %v", msg.Kind(), err)
	}
	m.mu.Lock()
	m.queue = append(m.queue, packet{to: to, from: from, msg: decoded})
	m.mu.Unlock()
}

// cut closes the link between the host and name on both ends.
func (m *mesh) cut(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue,
		packet{to: m.host, from: Handle(name), closed: true},
		packet{to: name, from: upstream, closed: true},
	)
}

func (m *mesh) pump() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		p := m.queue[0]
		m.queue = m.queue[1:]
		node := m.nodes[p.to]
		m.mu.Unlock()
		if node == nil {
			continue
		}
		if p.closed {
			node.LinkClosed(p.from)
			continue
		}
		node.Receive(p.from, p.msg)
	}
}

func (m *mesh) leave(name string) {
	m.cut(name)
	m.pump()
	m.mu.Lock()
	delete(m.nodes, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
}

func testConfig(authority bool) Config {
	cfg := DefaultConfig()
	cfg.Authority = authority
	cfg.Upstream = upstream
	cfg.EstimateThrottle = 0
	cfg.Rand = random.Seeded(7)
	return cfg
}

func newMesh(t *testing.T, host string, configure func(*Config)) *mesh {
	t.Helper()
	m := &mesh{t: t, host: host, nodes: make(map[string]*Session)}
	cfg := testConfig(true)
	if configure != nil {
		configure(&cfg)
	}
	m.add(host, cfg)
	return m
}

func (m *mesh) add(name string, cfg Config) *Session {
	s := New(cfg, Participant{Identity: name}, port{m: m, owner: name})
	m.t.Cleanup(s.Close)
	m.mu.Lock()
	m.nodes[name] = s
	if name != m.host {
		m.order = append(m.order, name)
	}
	m.mu.Unlock()
	return s
}

// join adds replicas and announces them in order.
func (m *mesh) join(names ...string) {
	m.t.Helper()
	for _, name := range names {
		s := m.add(name, testConfig(false))
		if err := s.Join(); err != nil {
			m.t.Fatalf("join %s: %v", name, err)
		}
		m.pump()
	}
}

func (m *mesh) node(name string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nodes[name]
}

func (m *mesh) all() []*Session {
	out := []*Session{m.node(m.host)}
	for _, name := range m.names() {
		out = append(out, m.node(name))
	}
	return out
}

func (m *mesh) start() {
	m.t.Helper()
	if err := m.node(m.host).StartMatch(); err != nil {
		m.t.Fatalf("start match: %v", err)
	}
	m.pump()
}

func (m *mesh) submitAll() {
	m.t.Helper()
	for _, s := range m.all() {
		id := s.Self().Identity
		if err := s.SubmitClues([2]string{id + " one", id + " two"}); err != nil {
			m.t.Fatalf("submit %s: %v", id, err)
		}
		m.pump()
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}
