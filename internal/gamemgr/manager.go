// Package gamemgr routes player intents to matches: matchmaking, the player
// registry, per-match serialization and completion bookkeeping.
package gamemgr

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/paint-chess/internal/accounts"
	"github.com/park285/paint-chess/internal/archive"
	"github.com/park285/paint-chess/internal/board"
	"github.com/park285/paint-chess/internal/catalog"
	"github.com/park285/paint-chess/internal/lobby"
	"github.com/park285/paint-chess/internal/match"
	"github.com/park285/paint-chess/internal/obslog"
	"github.com/park285/paint-chess/pkg/paintdto"
)

// Sink receives events addressed to one player. Send must not block.
// Implementations must be comparable; Detach matches sinks with ==.
type Sink interface {
	Send(ev paintdto.Event)
}

// Settings are the options a player picks when queueing.
type Settings = lobby.Settings

// Archiver persists finished matches.
type Archiver interface {
	SaveResult(ctx context.Context, rec *archive.Record) error
}

// Notifier announces finished matches to an external service.
type Notifier interface {
	PostResult(ctx context.Context, rec *archive.Record) error
}

// AIAccounts creates and removes the synthetic accounts AI players run under.
type AIAccounts interface {
	CreateAI(ctx context.Context) (*accounts.Profile, error)
	Remove(ctx context.Context, username string) error
}

// Config wires a Manager. Accounts and Catalog are required.
type Config struct {
	Accounts accounts.Store
	Catalog  *catalog.Catalog
	Archive  Archiver
	Notifier Notifier

	// SpawnAI builds the sink that plays for an AI account. VsAI queueing is
	// refused when it is nil or Accounts cannot create AI accounts.
	SpawnAI func(m *Manager, username string) Sink

	MinSecs      int
	MaxSecs      int
	EloK         float64
	ChatHistory  int
	ChatMaxRunes int
	QueueSlice   int

	TickInterval time.Duration
	StartTimeout time.Duration
	Now          func() time.Time

	// IOTimeout bounds the store calls made when a match completes.
	IOTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.MinSecs <= 0 {
		c.MinSecs = 60
	}
	if c.MaxSecs <= 0 {
		c.MaxSecs = 5400
	}
	if c.EloK <= 0 {
		c.EloK = 10
	}
	if c.ChatHistory <= 0 {
		c.ChatHistory = 9
	}
	if c.ChatMaxRunes <= 0 {
		c.ChatMaxRunes = 300
	}
	if c.QueueSlice <= 0 {
		c.QueueSlice = 10
	}
	if c.IOTimeout <= 0 {
		c.IOTimeout = 10 * time.Second
	}
}

// registration is what the manager knows about one connected player.
type registration struct {
	matchID  string
	joined   bool
	active   bool
	queueing bool
	sink     Sink
}

func (r *registration) reset() {
	r.matchID = ""
	r.joined = false
	r.active = false
	r.queueing = false
}

// activeMatch pairs a running match with the lock that serializes player
// actions and completion handling for it.
type activeMatch struct {
	m       *match.Match
	actions sync.Mutex
}

// Manager is safe for concurrent use. mu guards registry and active; the lobby
// is only touched with mu held. Sinks are never called while mu is held.
type Manager struct {
	cfg Config
	ai  AIAccounts

	mu       sync.Mutex
	registry map[string]*registration
	active   map[string]*activeMatch
	lobby    *lobby.Lobby

	watchers sync.WaitGroup
}

// New builds a Manager from cfg.
func New(cfg Config) *Manager {
	cfg.applyDefaults()
	m := &Manager{
		cfg:      cfg,
		registry: make(map[string]*registration),
		active:   make(map[string]*activeMatch),
		lobby:    lobby.New(),
	}
	if ai, ok := cfg.Accounts.(AIAccounts); ok {
		m.ai = ai
	}
	return m
}

// Register binds sink to username. A second registration replaces the sink,
// so a reconnecting player resumes receiving events for their match.
func (m *Manager) Register(username string, sink Sink) {
	if username == "" || sink == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.registry[username]; ok {
		r.sink = sink
		obslog.L().Debug("player_reattach", zap.String("username", username), zap.String("match_id", r.matchID))
		return
	}
	m.registry[username] = &registration{sink: sink}
	obslog.L().Debug("player_register", zap.String("username", username))
}

// Detach drops sink if it is still the one bound to username. A queued player
// leaves the queue; a player in a match keeps their seat and can reconnect.
func (m *Manager) Detach(username string, sink Sink) {
	m.mu.Lock()
	r, ok := m.registry[username]
	if !ok || r.sink != sink {
		m.mu.Unlock()
		return
	}
	r.sink = nil
	left := false
	if r.queueing {
		m.dequeueLocked(username, r)
		left = true
	}
	if !r.active {
		delete(m.registry, username)
	}
	m.mu.Unlock()

	obslog.L().Debug("player_detach", zap.String("username", username), zap.Bool("left_queue", left))
	if left {
		m.broadcastQueue(context.Background())
	}
}

func (m *Manager) sinkOf(username string) Sink {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.registry[username]; ok {
		return r.sink
	}
	return nil
}

func (m *Manager) send(username string, ev paintdto.Event) {
	if s := m.sinkOf(username); s != nil {
		s.Send(ev)
	}
}

// activeFor resolves the match username is seated in.
func (m *Manager) activeFor(username string) (*activeMatch, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.registry[username]
	if !ok || !r.active {
		return nil, false
	}
	am, ok := m.active[r.matchID]
	return am, ok
}

// Snapshot returns the board and palette of a running match.
func (m *Manager) Snapshot(matchID string) (board.Description, catalog.Palette, bool) {
	m.mu.Lock()
	am, found := m.active[matchID]
	m.mu.Unlock()
	if !found {
		return nil, catalog.Palette{}, false
	}
	return am.m.Description(), am.m.Palette(), true
}

// ActiveMatches is the number of matches currently running.
func (m *Manager) ActiveMatches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Close aborts every running match and waits for completion handling.
func (m *Manager) Close() {
	m.mu.Lock()
	running := make([]*activeMatch, 0, len(m.active))
	for _, am := range m.active {
		running = append(running, am)
	}
	m.mu.Unlock()
	for _, am := range running {
		am.m.Finish(match.Result{Method: match.MethodAborted})
	}
	m.watchers.Wait()
}

// Wait blocks until every completion watcher started so far has returned.
func (m *Manager) Wait() { m.watchers.Wait() }
