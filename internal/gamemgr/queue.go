package gamemgr

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"

	"go.uber.org/zap"

	"github.com/park285/paint-chess/internal/accounts"
	"github.com/park285/paint-chess/internal/lobby"
	"github.com/park285/paint-chess/internal/match"
	"github.com/park285/paint-chess/internal/obslog"
	"github.com/park285/paint-chess/pkg/paintdto"
)

// QueueNewMatch opens a queue entry with s and seats username in it.
func (m *Manager) QueueNewMatch(ctx context.Context, username string, s Settings) {
	if s.SecsPerPlayer < m.cfg.MinSecs || s.SecsPerPlayer > m.cfg.MaxSecs {
		obslog.L().Debug("match_queue_reject", zap.String("username", username), zap.String("reason", "time control out of range"), zap.Int("secs_per_player", s.SecsPerPlayer))
		return
	}
	if s.VsAI && (m.cfg.SpawnAI == nil || m.ai == nil) {
		obslog.L().Debug("match_queue_reject", zap.String("username", username), zap.String("reason", "ai unavailable"))
		return
	}

	m.mu.Lock()
	r, ok := m.registry[username]
	if !ok || r.active || r.queueing {
		m.mu.Unlock()
		obslog.L().Debug("match_queue_reject", zap.String("username", username), zap.String("reason", "not idle"))
		return
	}
	e := m.lobby.Create(s)
	m.joinLocked(username, r, e.ID)
	m.mu.Unlock()
	m.send(username, queueSuccess(e.ID))

	obslog.L().Info("match_queue_create",
		zap.String("match_id", e.ID),
		zap.String("username", username),
		zap.Int("secs_per_player", s.SecsPerPlayer),
		zap.Bool("vs_ai", s.VsAI),
	)

	if s.VsAI {
		m.seatAI(ctx, e.ID)
	}
	m.broadcastQueue(ctx)
}

// seatAI creates an AI account, registers its player and joins it to matchID.
func (m *Manager) seatAI(ctx context.Context, matchID string) {
	prof, err := m.ai.CreateAI(ctx)
	if err != nil {
		obslog.L().Error("ai_account_create_error", zap.String("match_id", matchID), zap.Error(err))
		return
	}
	sink := m.cfg.SpawnAI(m, prof.Username)
	m.Register(prof.Username, sink)
	if !m.join(ctx, prof.Username, matchID) {
		m.dropAI(ctx, prof.Username)
	}
}

// JoinQueuedMatch seats username in the queue entry matchID. A player queued
// elsewhere is moved. The second player promotes the entry to a match.
func (m *Manager) JoinQueuedMatch(ctx context.Context, username, matchID string) {
	if m.join(ctx, username, matchID) {
		m.broadcastQueue(ctx)
	}
}

func (m *Manager) join(ctx context.Context, username, matchID string) bool {
	m.mu.Lock()
	r, ok := m.registry[username]
	if !ok || r.active {
		m.mu.Unlock()
		obslog.L().Debug("match_join_reject", zap.String("username", username), zap.String("match_id", matchID), zap.String("reason", "not idle"))
		return false
	}
	if _, ok := m.lobby.Get(matchID); !ok {
		m.mu.Unlock()
		obslog.L().Debug("match_join_reject", zap.String("username", username), zap.String("match_id", matchID), zap.String("reason", "unknown queue entry"))
		return false
	}
	if r.queueing && r.matchID == matchID {
		m.mu.Unlock()
		return false
	}
	promoted := m.joinLocked(username, r, matchID)
	waiting := r.queueing && r.matchID == matchID
	m.mu.Unlock()

	switch {
	case promoted != nil:
		m.promote(ctx, promoted)
	case waiting:
		m.send(username, queueSuccess(matchID))
	}
	return true
}

// joinLocked는 username을 id 항목으로 옮기고, 두 명이 모이면 항목을 로비에서 꺼낸다.
// 두 좌석은 같은 임계 구역에서 active로 전환.
func (m *Manager) joinLocked(username string, r *registration, id string) *lobby.Entry {
	if r.queueing {
		m.dequeueLocked(username, r)
	}
	n, err := m.lobby.Append(id, username)
	if err != nil {
		obslog.L().Debug("match_join_reject", zap.String("username", username), zap.String("match_id", id), zap.Error(err))
		return nil
	}
	r.matchID = id
	r.queueing = true
	if n < 2 {
		return nil
	}

	e, ok := m.lobby.Take(id)
	if !ok {
		return nil
	}
	for _, u := range e.Waiting {
		if w, ok := m.registry[u]; ok {
			w.reset()
			w.matchID = id
			w.active = true
		}
	}
	return e
}

// dequeueLocked removes username from its waiting entry, deleting the entry
// when it empties.
func (m *Manager) dequeueLocked(username string, r *registration) {
	if m.lobby.Remove(r.matchID, username) {
		obslog.L().Debug("match_queue_delete", zap.String("match_id", r.matchID))
	}
	r.matchID = ""
	r.queueing = false
}

// SendQueueStatus tells username which entry it is waiting in. Nothing is sent
// when it is not queueing.
func (m *Manager) SendQueueStatus(username string) {
	m.mu.Lock()
	r, ok := m.registry[username]
	queueing := ok && r.queueing
	var id string
	if queueing {
		id = r.matchID
	}
	m.mu.Unlock()
	if queueing {
		m.send(username, queueSuccess(id))
	}
}

// LeaveQueue takes username out of the entry it is waiting in.
func (m *Manager) LeaveQueue(ctx context.Context, username string) {
	m.mu.Lock()
	r, ok := m.registry[username]
	if !ok || !r.queueing {
		m.mu.Unlock()
		return
	}
	m.dequeueLocked(username, r)
	m.mu.Unlock()
	m.broadcastQueue(ctx)
}

// promote turns a full queue entry into a running match.
func (m *Manager) promote(ctx context.Context, e *lobby.Entry) {
	a, b := e.Waiting[0], e.Waiting[1]
	// 역할 배정: crypto/rand 동전 던지기
	if coinFlip() {
		a, b = b, a
	}
	p1, p2 := m.player(ctx, a), m.player(ctx, b)

	mt := match.New(match.Meta{
		ID:            e.ID,
		P1:            p1,
		P2:            p2,
		SecsPerPlayer: e.Settings.SecsPerPlayer,
	}, match.Options{
		Palette:      m.cfg.Catalog.RandomPalette(),
		TickInterval: m.cfg.TickInterval,
		StartTimeout: m.cfg.StartTimeout,
		Now:          m.cfg.Now,
	})
	am := &activeMatch{m: mt}

	m.mu.Lock()
	m.active[e.ID] = am
	m.mu.Unlock()

	m.watchers.Add(1)
	go m.watch(am)

	obslog.L().Info("match_promote",
		zap.String("match_id", e.ID),
		zap.String("p1", p1.Username),
		zap.String("p2", p2.Username),
		zap.Int("secs_per_player", e.Settings.SecsPerPlayer),
	)
	ev := foundGame(e.ID)
	m.send(p1.Username, ev)
	m.send(p2.Username, ev)
}

// player fetches the profile for username, falling back to a placeholder so a
// store outage cannot strand a promoted entry.
func (m *Manager) player(ctx context.Context, username string) match.Player {
	prof, err := m.cfg.Accounts.FetchPublicProfile(ctx, username)
	if err != nil {
		if !errors.Is(err, accounts.ErrNotFound) {
			obslog.L().Error("profile_fetch_error", zap.String("username", username), zap.Error(err))
		}
		return match.Player{Username: username, Displayname: username, Rating: accounts.DefaultRating}
	}
	return match.Player{Username: username, Displayname: prof.Displayname, Rating: prof.Rating}
}

func coinFlip() bool {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	return err == nil && n.Int64() == 0
}

// QueueSummaries lists open entries, oldest first, with the waiting player's
// profile. A profile that cannot be loaded shows as the placeholder promotion
// would use.
func (m *Manager) QueueSummaries(ctx context.Context) []paintdto.QueuedGame {
	m.mu.Lock()
	entries := m.lobby.List(m.cfg.QueueSlice)
	m.mu.Unlock()

	out := make([]paintdto.QueuedGame, 0, len(entries))
	for _, e := range entries {
		u := e.Waiting[0]
		p := m.player(ctx, u)
		out = append(out, paintdto.QueuedGame{
			GameID:             e.ID,
			WaitingUsername:    u,
			WaitingDisplayname: p.Displayname,
			WaitingELO:         int(math.Floor(p.Rating)),
			GameMins:           float64(e.Settings.SecsPerPlayer) / 60,
			VsAI:               e.Settings.VsAI,
		})
	}
	return out
}

// SendQueue sends the current queue to username only.
func (m *Manager) SendQueue(ctx context.Context, username string) {
	m.send(username, currentQueue(m.QueueSummaries(ctx)))
}

// broadcastQueue sends the current queue to every registered player.
func (m *Manager) broadcastQueue(ctx context.Context) {
	ev := currentQueue(m.QueueSummaries(ctx))
	m.mu.Lock()
	sinks := make([]Sink, 0, len(m.registry))
	for _, r := range m.registry {
		if r.sink != nil {
			sinks = append(sinks, r.sink)
		}
	}
	m.mu.Unlock()
	for _, s := range sinks {
		s.Send(ev)
	}
}
