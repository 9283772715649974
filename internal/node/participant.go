package node

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"wavelength/internal/rendezvous"
	"wavelength/internal/session"
	"wavelength/internal/transport"
)

type JoinOptions struct {
	Self session.Participant
	// Target is a websocket URL or a room code resolved through Directory.
	Target    string
	Directory rendezvous.Directory
	Session   session.Config
}

// Participant is a replica connected to a host.
type Participant struct {
	sess   *session.Session
	client atomic.Pointer[transport.Client]
}

// Join resolves the host, connects and announces the participant.
func Join(ctx context.Context, opts JoinOptions) (*Participant, error) {
	url, err := resolveTarget(ctx, opts.Target, opts.Directory)
	if err != nil {
		return nil, err
	}
	p := &Participant{}
	cfg := opts.Session
	cfg.Authority = false
	cfg.Upstream = session.Handle(transport.Upstream)
	p.sess = session.New(cfg, opts.Self, clientOutbound{p: p})

	client, err := transport.Dial(ctx, url, clientEvents{p: p})
	if err != nil {
		p.sess.Close()
		return nil, err
	}
	p.client.Store(client)
	if err := p.sess.Join(); err != nil {
		client.Close()
		return nil, err
	}
	return p, nil
}

func resolveTarget(ctx context.Context, target string, dir rendezvous.Directory) (string, error) {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://") {
		return target, nil
	}
	code := rendezvous.Normalize(target)
	if !rendezvous.Valid(code) {
		return "", fmt.Errorf("%w: %q", rendezvous.ErrInvalidCode, target)
	}
	if dir == nil {
		return "", fmt.Errorf("room code %s given without a rendezvous directory", code)
	}
	return dir.Resolve(ctx, code)
}

func (p *Participant) Session() *session.Session {
	return p.sess
}

// Done is closed when the link to the host is gone.
func (p *Participant) Done() <-chan struct{} {
	return p.client.Load().Done()
}

func (p *Participant) Close() {
	p.client.Load().Close()
	p.sess.Close()
}
