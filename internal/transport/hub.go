package transport

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub is the host end: it accepts participant links and fans frames out to
// them.
type Hub struct {
	mu     sync.Mutex
	links  map[Handle]*link
	events Events
}

func NewHub(events Events) *Hub {
	return &Hub{
		links:  make(map[Handle]*link),
		events: events,
	}
}

// ServeWS upgrades the request and runs the link until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed remote=%s error=%v", r.RemoteAddr, err)
		return
	}
	l := newLink(Handle(uuid.NewString()), conn)
	h.mu.Lock()
	h.links[l.handle] = l
	h.mu.Unlock()
	log.Printf("ws connected handle=%s remote=%s", l.handle, r.RemoteAddr)

	go l.writePump()
	l.readPump(h.events, func() {
		h.remove(l.handle)
		log.Printf("ws disconnected handle=%s", l.handle)
	})
}

// Send queues a frame for one link. A link whose buffer is full is dropped.
func (h *Hub) Send(to Handle, data []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.links[to]
	if !ok {
		return false
	}
	return h.enqueueLocked(l, data)
}

// Broadcast queues one frame for each listed link. Unknown handles are
// skipped.
func (h *Hub) Broadcast(data []byte, to []Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, handle := range to {
		if l, ok := h.links[handle]; ok {
			h.enqueueLocked(l, data)
		}
	}
}

func (h *Hub) enqueueLocked(l *link, data []byte) bool {
	select {
	case l.send <- data:
		return true
	default:
		log.Printf("ws send buffer full handle=%s", l.handle)
		delete(h.links, l.handle)
		l.stop()
		return false
	}
}

// Close drops a link; its Closed event follows once the reader notices.
func (h *Hub) Close(handle Handle) {
	h.remove(handle)
}

func (h *Hub) remove(handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if l, ok := h.links[handle]; ok {
		delete(h.links, handle)
		l.stop()
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.links)
}

// Shutdown closes every link.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for handle, l := range h.links {
		delete(h.links, handle)
		l.stop()
	}
}
