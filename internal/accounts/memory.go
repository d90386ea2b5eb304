package accounts

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is a development-only store used when no database or Redis is configured.
// It serves registered and ephemeral accounts alike. With AutoProvision set,
// unknown registered usernames are created on first lookup.
type Memory struct {
	StartRating   float64
	AutoProvision bool

	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewMemory() *Memory {
	return &Memory{profiles: make(map[string]Profile)}
}

// Put inserts or replaces a profile.
func (m *Memory) Put(p Profile) {
	m.mu.Lock()
	m.profiles[p.Username] = p
	m.mu.Unlock()
}

func (m *Memory) FetchPublicProfile(ctx context.Context, username string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[username]
	if !ok {
		if !m.AutoProvision || username == "" || IsTemporary(username) {
			return nil, ErrNotFound
		}
		p = Profile{Username: username, Displayname: username, Rating: startRating(m.StartRating)}
		m.profiles[username] = p
	}
	return &p, nil
}

func (m *Memory) SetRating(ctx context.Context, username string, rating float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[username]
	if !ok {
		return ErrNotFound
	}
	p.Rating = rating
	m.profiles[username] = p
	return nil
}

func (m *Memory) CreateGuest(ctx context.Context, displayname string) (*Profile, error) {
	p := Profile{Username: GuestPrefix + uuid.NewString(), Displayname: guestDisplayname(displayname), Rating: startRating(m.StartRating), IsTemp: true}
	m.Put(p)
	return &p, nil
}

func (m *Memory) CreateAI(ctx context.Context) (*Profile, error) {
	p := Profile{Username: AIPrefix + uuid.NewString(), Displayname: aiDisplayname, Rating: startRating(m.StartRating), IsTemp: true}
	m.Put(p)
	return &p, nil
}

func (m *Memory) Remove(ctx context.Context, username string) error {
	m.mu.Lock()
	delete(m.profiles, username)
	m.mu.Unlock()
	return nil
}
