package gamemgr

import (
	"context"

	"go.uber.org/zap"

	"github.com/park285/paint-chess/internal/accounts"
	"github.com/park285/paint-chess/internal/archive"
	"github.com/park285/paint-chess/internal/board"
	"github.com/park285/paint-chess/internal/match"
	"github.com/park285/paint-chess/internal/obslog"
	"github.com/park285/paint-chess/pkg/paintdto"
)

// watch waits for the match result and runs completion.
func (m *Manager) watch(am *activeMatch) {
	defer m.watchers.Done()
	res, ok := <-am.m.Events()
	if !ok {
		return
	}
	m.complete(am, res)
}

func (m *Manager) complete(am *activeMatch, res match.Result) {
	mt := am.m
	users := mt.Users()

	am.actions.Lock()
	m.sendView(mt, paintdto.KindMovePerformed, users[0], users[1])
	m.sendBoth(mt, gameEnded(mt, res))
	m.sendBoth(mt, sound(paintdto.SoundGameEnd))
	am.actions.Unlock()

	// 등록 초기화 + 진행 중 목록에서 제거
	m.mu.Lock()
	for _, u := range users {
		if r, ok := m.registry[u]; ok && r.matchID == mt.ID() {
			r.reset()
			if r.sink == nil {
				delete(m.registry, u)
			}
		}
	}
	delete(m.active, mt.ID())
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.IOTimeout)
	defer cancel()

	if res.Rated() && !accounts.IsAI(users[0]) && !accounts.IsAI(users[1]) {
		m.updateRatings(ctx, users, res)
	}
	rec := m.record(mt, res)
	m.persist(ctx, rec)
	for _, u := range users {
		if accounts.IsAI(u) {
			m.dropAI(ctx, u)
		}
	}
}

// updateRatings applies the Elo update to the ratings stored now, not the
// snapshot taken when the match started.
func (m *Manager) updateRatings(ctx context.Context, users [2]string, res match.Result) {
	var ratings [2]float64
	for i, u := range users {
		prof, err := m.cfg.Accounts.FetchPublicProfile(ctx, u)
		if err != nil {
			obslog.L().Error("rating_fetch_error", zap.String("username", u), zap.Error(err))
			return
		}
		ratings[i] = prof.Rating
	}
	n1, n2 := NewRatings(ratings[0], ratings[1], m.cfg.EloK, res.Outcome())
	for i, r := range [2]float64{n1, n2} {
		if err := m.cfg.Accounts.SetRating(ctx, users[i], r); err != nil {
			obslog.L().Error("rating_set_error", zap.String("username", users[i]), zap.Error(err))
		}
	}
	obslog.L().Info("rating_update",
		zap.String("p1", users[0]),
		zap.Float64("p1_before", ratings[0]),
		zap.Float64("p1_after", n1),
		zap.String("p2", users[1]),
		zap.Float64("p2_before", ratings[1]),
		zap.Float64("p2_after", n2),
	)
}

func (m *Manager) record(mt *match.Match, res match.Result) *archive.Record {
	meta := mt.Meta()
	created, ended := mt.Timing()
	rec := &archive.Record{
		MatchID:        meta.ID,
		P1:             meta.P1.Username,
		P2:             meta.P2.Username,
		Winner:         mt.UserOf(res.Winner),
		WinnerRole:     res.Winner,
		Method:         string(res.Method),
		SecsPerPlayer:  meta.SecsPerPlayer,
		CompletedTurns: mt.CompletedTurns(),
		StartedAt:      created,
		EndedAt:        ended,
		FinalBoard:     mt.Description(),
	}
	rec.Summary = m.summary(meta, res)
	return rec
}

// summary renders the one-line result text from the catalog.
func (m *Manager) summary(meta match.Meta, res match.Result) string {
	data := map[string]string{
		"P1":     meta.P1.Displayname,
		"P2":     meta.P2.Displayname,
		"Method": string(res.Method),
	}
	key := "result.draw"
	switch {
	case res.Method == match.MethodAborted:
		key = "result.aborted"
	case res.Winner == board.P1:
		key, data["Winner"], data["Loser"] = "result.win", meta.P1.Displayname, meta.P2.Displayname
	case res.Winner == board.P2:
		key, data["Winner"], data["Loser"] = "result.win", meta.P2.Displayname, meta.P1.Displayname
	}
	s, err := m.cfg.Catalog.Render(key, data)
	if err != nil {
		obslog.L().Warn("result_summary_error", zap.String("match_id", meta.ID), zap.Error(err))
		return ""
	}
	return s
}

func (m *Manager) persist(ctx context.Context, rec *archive.Record) {
	if m.cfg.Archive != nil {
		if err := m.cfg.Archive.SaveResult(ctx, rec); err != nil {
			obslog.L().Error("match_persist_error", zap.String("match_id", rec.MatchID), zap.Error(err))
		} else {
			obslog.L().Info("match_persist", zap.String("match_id", rec.MatchID), zap.String("score", rec.Score()), zap.String("method", rec.Method))
		}
	}
	if m.cfg.Notifier != nil {
		if err := m.cfg.Notifier.PostResult(ctx, rec); err != nil {
			obslog.L().Error("match_notify_error", zap.String("match_id", rec.MatchID), zap.Error(err))
		}
	}
}

// dropAI unregisters an AI player and deletes its account.
func (m *Manager) dropAI(ctx context.Context, username string) {
	m.mu.Lock()
	var sink Sink
	if r, ok := m.registry[username]; ok {
		if r.queueing {
			m.dequeueLocked(username, r)
		}
		sink = r.sink
		delete(m.registry, username)
	}
	m.mu.Unlock()

	if c, ok := sink.(interface{ Close() }); ok {
		c.Close()
	}
	if m.ai != nil {
		if err := m.ai.Remove(ctx, username); err != nil {
			obslog.L().Error("ai_account_remove_error", zap.String("username", username), zap.Error(err))
		}
	}
}
