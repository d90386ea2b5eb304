package gamemgr

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/park285/paint-chess/internal/match"
	"github.com/park285/paint-chess/internal/obslog"
	"github.com/park285/paint-chess/pkg/paintdto"
)

// StartGame marks username as present in its match. The second arrival starts
// the match for both; a player who already joined gets the current state again.
func (m *Manager) StartGame(username string) {
	m.mu.Lock()
	r, ok := m.registry[username]
	if !ok || !r.active {
		m.mu.Unlock()
		obslog.L().Debug("match_start_reject", zap.String("username", username), zap.String("reason", "no active match"))
		return
	}
	am, ok := m.active[r.matchID]
	if !ok {
		m.mu.Unlock()
		return
	}
	rejoin := r.joined
	r.joined = true
	m.mu.Unlock()

	am.actions.Lock()
	defer am.actions.Unlock()
	mt := am.m
	if _, ended := mt.Ended(); ended {
		return
	}
	if rejoin {
		m.sendView(mt, paintdto.KindGameStart, username)
		return
	}
	mt.JoinPlayer()
	if mt.JoinedPlayers() == 2 && !mt.Started() {
		mt.Start()
		obslog.L().Info("match_start", zap.String("match_id", mt.ID()))
		u := mt.Users()
		m.sendView(mt, paintdto.KindGameStart, u[0], u[1])
	}
}

// PerformMove applies raw for username. A rejected move is reported to the
// mover only.
func (m *Manager) PerformMove(username string, raw match.RawMove) {
	am, ok := m.activeFor(username)
	if !ok {
		obslog.L().Debug("match_move_reject", zap.String("username", username), zap.String("reason", "no active match"))
		return
	}
	am.actions.Lock()
	defer am.actions.Unlock()

	mt := am.m
	raw.Username = username
	if err := mt.ProcessMove(raw); err != nil {
		obslog.L().Debug("match_move_reject",
			zap.String("match_id", mt.ID()),
			zap.String("username", username),
			zap.String("from", raw.From),
			zap.String("to", raw.To),
			zap.String("reason", err.Error()),
		)
		m.send(username, moveRejected(err))
		return
	}
	obslog.L().Debug("match_move",
		zap.String("match_id", mt.ID()),
		zap.String("username", username),
		zap.String("from", raw.From),
		zap.String("to", raw.To),
	)
	u := mt.Users()
	m.sendView(mt, paintdto.KindMovePerformed, u[0], u[1])
	m.sendBoth(mt, sound(paintdto.SoundMove))
}

// PublishMessage appends a chat line from username and sends the recent
// history to both players.
func (m *Manager) PublishMessage(username, content string) {
	content = norm.NFC.String(strings.TrimSpace(content))
	if content == "" || utf8.RuneCountInString(content) > m.cfg.ChatMaxRunes {
		obslog.L().Debug("chat_reject", zap.String("username", username), zap.Int("runes", utf8.RuneCountInString(content)))
		return
	}
	am, ok := m.activeFor(username)
	if !ok {
		return
	}
	am.actions.Lock()
	defer am.actions.Unlock()
	am.m.PublishMessage(match.Message{By: username, Content: content})
	m.sendBoth(am.m, chatHistory(am.m.History(m.cfg.ChatHistory)))
}

// ChatHistory sends the recent chat of username's match to username.
func (m *Manager) ChatHistory(username string) {
	am, ok := m.activeFor(username)
	if !ok {
		return
	}
	am.actions.Lock()
	defer am.actions.Unlock()
	m.send(username, chatHistory(am.m.History(m.cfg.ChatHistory)))
}

// Resign concedes username's match.
func (m *Manager) Resign(username string) {
	am, ok := m.activeFor(username)
	if !ok {
		return
	}
	am.actions.Lock()
	defer am.actions.Unlock()
	if err := am.m.Resign(username); err != nil {
		obslog.L().Debug("match_resign_reject", zap.String("match_id", am.m.ID()), zap.String("username", username), zap.Error(err))
	}
}
