// Package lobby holds queued matches waiting for a second player.
package lobby

import (
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownEntry = errors.New("queued match not found")
	ErrEntryFull    = errors.New("queued match already has two players")
)

// Settings are the options a match was queued with.
type Settings struct {
	SecsPerPlayer int
	VsAI          bool
}

// Entry is one queued match. Waiting holds at most two usernames.
type Entry struct {
	ID        string
	Waiting   []string
	Settings  Settings
	CreatedAt time.Time
	seq       uint64
}

func (e *Entry) clone() *Entry {
	c := *e
	c.Waiting = slices.Clone(e.Waiting)
	return &c
}

// Lobby is a mutex-guarded table of queued matches.
type Lobby struct {
	mu      sync.Mutex
	entries map[string]*Entry
	seq     uint64
	now     func() time.Time
}

func New() *Lobby {
	return &Lobby{entries: make(map[string]*Entry), now: time.Now}
}

// Create registers an empty entry and returns a copy of it.
func (l *Lobby) Create(s Settings) *Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	e := &Entry{ID: uuid.NewString(), Settings: s, CreatedAt: l.now(), seq: l.seq}
	l.entries[e.ID] = e
	return e.clone()
}

// Get returns a copy of the entry.
func (l *Lobby) Get(id string) (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok {
		return nil, false
	}
	return e.clone(), true
}

// Append adds username to the entry and returns the number of waiting players.
// Adding a username already waiting is a no-op.
func (l *Lobby) Append(id, username string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok {
		return 0, ErrUnknownEntry
	}
	if slices.Contains(e.Waiting, username) {
		return len(e.Waiting), nil
	}
	if len(e.Waiting) >= 2 {
		return len(e.Waiting), ErrEntryFull
	}
	e.Waiting = append(e.Waiting, username)
	return len(e.Waiting), nil
}

// Remove drops username from the entry and deletes the entry once nobody waits.
func (l *Lobby) Remove(id, username string) (deleted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok {
		return false
	}
	if i := slices.Index(e.Waiting, username); i >= 0 {
		e.Waiting = slices.Delete(e.Waiting, i, i+1)
	}
	if len(e.Waiting) == 0 {
		delete(l.entries, id)
		return true
	}
	return false
}

// Take removes the entry and hands it to the caller for promotion.
func (l *Lobby) Take(id string) (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok {
		return nil, false
	}
	delete(l.entries, id)
	return e, true
}

// List returns up to limit entries that have a waiting player, oldest first.
func (l *Lobby) List(limit int) []*Entry {
	l.mu.Lock()
	out := make([]*Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if len(e.Waiting) > 0 {
			out = append(out, e.clone())
		}
	}
	l.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Len is the number of entries.
func (l *Lobby) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
