package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Upstream is the handle a participant uses for its single link to the
// host.
const Upstream Handle = "upstream"

var ErrClosed = errors.New("link closed")

// Client is the participant end of a link.
type Client struct {
	l    *link
	mu   sync.Mutex
	done chan struct{}
	shut bool
}

// Dial connects to the host's websocket URL, giving up after JoinTimeout.
func Dial(ctx context.Context, url string, events Events) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, JoinTimeout)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial host: %w", err)
	}
	c := &Client{
		l:    newLink(Upstream, conn),
		done: make(chan struct{}),
	}
	go c.l.writePump()
	go c.l.readPump(events, c.markClosed)
	return c, nil
}

func (c *Client) markClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.shut {
		c.shut = true
		c.l.stop()
		close(c.done)
	}
}

// Send queues a frame for the host.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shut {
		return ErrClosed
	}
	select {
	case c.l.send <- data:
		return nil
	default:
		return fmt.Errorf("send buffer full: %w", ErrClosed)
	}
}

func (c *Client) Close() {
	c.markClosed()
}

// Done is closed once the link is gone.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
