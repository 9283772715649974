// Package node runs a session over real links: the host serves websocket
// participants, and a participant dials the host.
package node

import (
	"log"

	"wavelength/internal/session"
	"wavelength/internal/transport"
)

// deliver decodes a frame and hands it to the session. Frames that fail to
// decode are dropped.
func deliver(sess *session.Session, h transport.Handle, data []byte) {
	msg, err := session.Decode(data)
	if err != nil {
		log.Printf("frame dropped handle=%s error=%v", h, err)
		return
	}
	sess.Receive(session.Handle(h), msg)
}

func encode(m session.Message) ([]byte, bool) {
	data, err := session.Encode(m)
	if err != nil {
		log.Printf("message encode failed kind=%s error=%v", m.Kind(), err)
		return nil, false
	}
	return data, true
}

type hubOutbound struct {
	hub *transport.Hub
}

func (o hubOutbound) Send(to session.Handle, m session.Message) {
	if data, ok := encode(m); ok {
		o.hub.Send(transport.Handle(to), data)
	}
}

func (o hubOutbound) Broadcast(m session.Message, to []session.Handle) {
	data, ok := encode(m)
	if !ok {
		return
	}
	handles := make([]transport.Handle, len(to))
	for i, h := range to {
		handles[i] = transport.Handle(h)
	}
	o.hub.Broadcast(data, handles)
}

func (o hubOutbound) Disconnect(h session.Handle) {
	o.hub.Close(transport.Handle(h))
}

type hostEvents struct {
	h *Host
}

func (e hostEvents) Frame(h transport.Handle, data []byte) {
	deliver(e.h.sess, h, data)
}

func (e hostEvents) Closed(h transport.Handle) {
	e.h.sess.LinkClosed(session.Handle(h))
}

type clientOutbound struct {
	p *Participant
}

func (o clientOutbound) Send(_ session.Handle, m session.Message) {
	client := o.p.client.Load()
	if client == nil {
		return
	}
	data, ok := encode(m)
	if !ok {
		return
	}
	if err := client.Send(data); err != nil {
		log.Printf("send to host failed kind=%s error=%v", m.Kind(), err)
	}
}

func (o clientOutbound) Broadcast(m session.Message, _ []session.Handle) {
	o.Send(session.Handle(transport.Upstream), m)
}

func (o clientOutbound) Disconnect(session.Handle) {
	if client := o.p.client.Load(); client != nil {
		client.Close()
	}
}

type clientEvents struct {
	p *Participant
}

func (e clientEvents) Frame(h transport.Handle, data []byte) {
	deliver(e.p.sess, h, data)
}

func (e clientEvents) Closed(h transport.Handle) {
	e.p.sess.LinkClosed(session.Handle(h))
}
