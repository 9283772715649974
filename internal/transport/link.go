// Package transport carries opaque text frames between the host and its
// participants over websockets.
package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Handle names one link from the local side.
type Handle string

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxFrameSize   = 64 << 10
	sendBufferSize = 64

	// JoinTimeout bounds how long a participant waits to reach the host.
	JoinTimeout = 10 * time.Second
)

// Events receives link activity. Calls for one link are sequential.
type Events interface {
	Frame(h Handle, data []byte)
	Closed(h Handle)
}

type link struct {
	handle Handle
	conn   *websocket.Conn
	send   chan []byte

	closeOnce sync.Once
}

func newLink(handle Handle, conn *websocket.Conn) *link {
	return &link{
		handle: handle,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
}

// stop ends the writer, which in turn closes the socket.
func (l *link) stop() {
	l.closeOnce.Do(func() {
		close(l.send)
	})
}

// readPump delivers frames until the socket fails, then reports the close.
func (l *link) readPump(events Events, done func()) {
	defer func() {
		done()
		_ = l.conn.Close()
		events.Closed(l.handle)
	}()
	l.conn.SetReadLimit(maxFrameSize)
	_ = l.conn.SetReadDeadline(time.Now().Add(pongWait))
	l.conn.SetPongHandler(func(string) error {
		return l.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			return
		}
		events.Frame(l.handle, data)
	}
}

func (l *link) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = l.conn.Close()
	}()
	for {
		select {
		case data, ok := <-l.send:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = l.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := l.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
