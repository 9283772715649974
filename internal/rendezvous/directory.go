package rendezvous

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Directory stores which address currently hosts each room.
type Directory interface {
	Register(ctx context.Context, code, addr string) error
	Resolve(ctx context.Context, code string) (string, error)
	Release(ctx context.Context, code string) error
}

const claimAttempts = 16

// Claim registers addr under a fresh room code, retrying on collisions.
func Claim(ctx context.Context, dir Directory, addr string) (string, error) {
	for range claimAttempts {
		code := NewRoomCode()
		err := dir.Register(ctx, code, addr)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, ErrRoomTaken) {
			return "", err
		}
	}
	return "", ErrRoomTaken
}

type entry struct {
	addr      string
	createdAt time.Time
}

// Memory is an in-process Directory.
type Memory struct {
	mu    sync.Mutex
	rooms map[string]entry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		rooms: make(map[string]entry),
		now:   time.Now,
	}
}

func (m *Memory) Register(_ context.Context, code, addr string) error {
	code = Normalize(code)
	if !Valid(code) {
		return ErrInvalidCode
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.rooms[code]; ok && existing.addr != addr {
		return ErrRoomTaken
	}
	m.rooms[code] = entry{addr: addr, createdAt: m.now()}
	return nil
}

func (m *Memory) Resolve(_ context.Context, code string) (string, error) {
	code = Normalize(code)
	if !Valid(code) {
		return "", ErrInvalidCode
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rooms[code]
	if !ok {
		return "", ErrRoomNotFound
	}
	return e.addr, nil
}

func (m *Memory) Release(_ context.Context, code string) error {
	code = Normalize(code)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[code]; !ok {
		return ErrRoomNotFound
	}
	delete(m.rooms, code)
	return nil
}

// Prune drops rooms registered before cutoff and reports how many went.
func (m *Memory) Prune(maxAge time.Duration) int {
	cutoff := m.now().Add(-maxAge)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for code, e := range m.rooms {
		if e.createdAt.Before(cutoff) {
			delete(m.rooms, code)
			removed++
		}
	}
	return removed
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}
